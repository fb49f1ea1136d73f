// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import "database/sql"

// querier is satisfied by both *sql.DB and *sql.Tx; row operations go
// through it so they work identically whether or not a transaction guard
// is active.
type querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// conn returns the active transaction if a guard is open, otherwise the
// library's autocommit connection.
func (l *Library) conn() querier {
	if l.tx != nil {
		return l.tx
	}
	return l.db
}

// WithTransaction runs fn inside an exclusive write transaction: every
// write fn performs through l is committed as one atomic group if fn
// returns nil, and rolled back (including on panic) otherwise. Guards do
// not nest — calling WithTransaction from within an already-open
// transaction just runs fn against the existing one; the inner call is an
// observer, not a second transaction.
func (l *Library) WithTransaction(fn func(*Library) error) (err error) {
	if err := l.checkOpen(); err != nil {
		return err
	}

	if l.tx != nil {
		return fn(l)
	}

	tx, err := l.db.Begin()
	if err != nil {
		return wrapStorage("transaction: begin", err)
	}
	l.tx = tx

	defer func() {
		l.tx = nil
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(l); err != nil {
		tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return wrapStorage("transaction: commit", err)
	}
	return nil
}
