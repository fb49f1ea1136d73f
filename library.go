// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	_ "github.com/mattn/go-sqlite3"

	"github.com/engineprime-go/enginelib/internal/log"
)

// state is the lifecycle of a Library handle: Uninitialized -> Open ->
// Closed. Only Open accepts operations; Closed is terminal.
type state int

const (
	stateUninitialized state = iota
	stateOpen
	stateClosed
)

// musicFileName and perfFileName are the two files an on-disk library
// directory holds (spec §6).
const (
	musicFileName = "m.db"
	perfFileName  = "p.db"
)

// Library is a versioned storage facade over a paired music/performance
// Engine Library store. It owns one *sql.DB connection with two ATTACHed
// schemas, "music" and "perfdata" (spec §6), and is the sole conduit for
// row operations once open.
type Library struct {
	db      *sql.DB
	tx      *sql.Tx
	version Version
	schema  SchemaDef
	uuid    string
	state   state
	logger  *log.Helper
}

// Options configures Open/OpenNew/OpenInMemory. A nil Options behaves as
// the zero value.
type Options struct {
	// Logger receives Debug diagnostics around recoverable situations
	// (a missing performance row, a schema variant probe).
	// Defaults to a stderr logger at Warn level and above.
	Logger log.Logger
}

func (o *Options) helper() *log.Helper {
	if o == nil || o.Logger == nil {
		return log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelWarn)))
	}
	return log.NewHelper(o.Logger)
}

// Open attaches the two existing database files under dir and detects
// their schema version. It returns ErrLibraryNotFound if dir or either
// file is absent.
func Open(dir string, opts *Options) (*Library, error) {
	musicPath := filepath.Join(dir, musicFileName)
	perfPath := filepath.Join(dir, perfFileName)
	for _, p := range []string{dir, musicPath, perfPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, ErrLibraryNotFound
		}
	}

	db, err := openAttached(musicPath, perfPath)
	if err != nil {
		return nil, err
	}
	return finishOpen(db, opts)
}

// OpenNew creates dir if absent and materializes a brand-new library at
// version v.
func OpenNew(dir string, v Version, opts *Options) (*Library, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrapStorage("open new: mkdir", err)
	}
	musicPath := filepath.Join(dir, musicFileName)
	perfPath := filepath.Join(dir, perfFileName)

	db, err := openAttached(musicPath, perfPath)
	if err != nil {
		return nil, err
	}
	return createLibrary(db, v, opts)
}

// OpenInMemory creates a brand-new library in two anonymous in-memory
// stores; no files are written.
func OpenInMemory(v Version, opts *Options) (*Library, error) {
	db, err := openAttached(":memory:", ":memory:")
	if err != nil {
		return nil, err
	}
	return createLibrary(db, v, opts)
}

// openAttached opens one connection and ATTACHes musicPath/perfPath as the
// "music"/"perfdata" schemas. A single pooled connection is forced
// (SetMaxOpenConns(1)) because SQLite ATTACH is a per-connection effect; a
// second connection from the pool would not see the attached schemas.
// _txlock=exclusive makes every transaction on it start with BEGIN
// EXCLUSIVE.
func openAttached(musicPath, perfPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:?_txlock=exclusive")
	if err != nil {
		return nil, wrapStorage("open: connect", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(fmt.Sprintf("ATTACH DATABASE '%s' AS music", musicPath)); err != nil {
		db.Close()
		return nil, wrapStorage("open: attach music", err)
	}
	if _, err := db.Exec(fmt.Sprintf("ATTACH DATABASE '%s' AS perfdata", perfPath)); err != nil {
		db.Close()
		return nil, wrapStorage("open: attach perfdata", err)
	}
	return db, nil
}

func finishOpen(db *sql.DB, opts *Options) (*Library, error) {
	helper := opts.helper()
	v, err := DetectVersion(db, helper)
	if err != nil {
		db.Close()
		return nil, err
	}

	reg := NewRegistry()
	schema, err := reg.Lookup(v)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := schema.Validate(db); err != nil {
		db.Close()
		return nil, err
	}

	id, err := readUUID(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	lib := &Library{
		db:      db,
		version: v,
		schema:  schema,
		uuid:    id,
		state:   stateOpen,
		logger:  helper,
	}
	return lib, nil
}

func createLibrary(db *sql.DB, v Version, opts *Options) (*Library, error) {
	reg := NewRegistry()
	schema, err := reg.Lookup(v)
	if err != nil {
		db.Close()
		return nil, err
	}

	id := uuid.NewString()
	if err := schema.Create(db, id); err != nil {
		db.Close()
		return nil, err
	}
	if err := schema.Validate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Library{
		db:      db,
		version: v,
		schema:  schema,
		uuid:    id,
		state:   stateOpen,
		logger:  opts.helper(),
	}, nil
}

func readUUID(db *sql.DB) (string, error) {
	var id string
	err := db.QueryRow("SELECT uuid FROM music.Information WHERE id = 1").Scan(&id)
	if err != nil {
		return "", wrapStorage("open: read uuid", err)
	}
	return id, nil
}

// Version reports the library's detected or created schema version.
func (l *Library) Version() Version { return l.version }

// UUID reports the library's stable identity, generated once at creation
// and identical in both stores.
func (l *Library) UUID() string { return l.uuid }

// Close releases the underlying connection. Safe to call more than once.
func (l *Library) Close() error {
	if l.state == stateClosed {
		return nil
	}
	l.state = stateClosed
	return l.db.Close()
}

func (l *Library) checkOpen() error {
	switch l.state {
	case stateOpen:
		return nil
	case stateClosed:
		return ErrClosed
	default:
		return ErrClosed
	}
}

// hasColumn reports whether the active schema version's Track or
// PerformanceData table carries the named column, so field-projection
// (spec Design Notes) can decide what to bind or ignore.
func (l *Library) hasColumn(store, table, column string) bool {
	t, ok := l.schema.table(store, table)
	if !ok {
		return false
	}
	for _, c := range t.Columns {
		if c.Name == column {
			return true
		}
	}
	return false
}
