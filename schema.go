// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// ColumnDef describes one column of a table, in the canonical form needed
// both to generate its DDL and to validate an existing column against it.
type ColumnDef struct {
	Name       string
	SQLType    string
	NotNull    bool
	HasDefault bool
	Default    string // literal SQL default expression, meaningful only if HasDefault
	PKRank     int    // 1-based position within a composite primary key, 0 if not a PK column
}

// IndexColumn is one column participant of an index, in rank order.
type IndexColumn struct {
	Name string
	Rank int
}

// IndexDef describes one index (or unique constraint materialized as an
// index) on a table.
type IndexDef struct {
	Name    string
	Unique  bool
	Origin  string // sqlite index_list "origin": "c" (CREATE INDEX), "u" (UNIQUE constraint), "pk" (PRIMARY KEY)
	Partial bool
	Where   string // partial index predicate, only meaningful if Partial
	Columns []IndexColumn
}

// TableDef is the canonical, version-specific shape of one table.
type TableDef struct {
	Store   string // "music" or "perfdata" — the ATTACH'd schema name
	Name    string
	Columns []ColumnDef
	Indexes []IndexDef
}

// qualified returns "store.Name".
func (t TableDef) qualified() string {
	return t.Store + "." + t.Name
}

// CreateSQL renders the CREATE TABLE statement for t from its ColumnDefs.
func (t TableDef) CreateSQL() string {
	var cols []string
	var pk []string
	pkRanked := make([]ColumnDef, 0)
	for _, c := range t.Columns {
		def := fmt.Sprintf("%s %s", c.Name, c.SQLType)
		if c.NotNull {
			def += " NOT NULL"
		}
		if c.HasDefault {
			def += " DEFAULT " + c.Default
		}
		cols = append(cols, def)
		if c.PKRank > 0 {
			pkRanked = append(pkRanked, c)
		}
	}
	sort.Slice(pkRanked, func(i, j int) bool { return pkRanked[i].PKRank < pkRanked[j].PKRank })
	for _, c := range pkRanked {
		pk = append(pk, c.Name)
	}
	if len(pk) > 0 {
		cols = append(cols, "PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", t.qualified(), strings.Join(cols, ",\n\t"))
}

// IndexSQL renders the CREATE [UNIQUE] INDEX statements for every
// CREATE-INDEX-origin index of t (origin "c" — "u"/"pk" indexes are
// materialized implicitly by the table's own UNIQUE/PRIMARY KEY clauses).
func (t TableDef) IndexSQL() []string {
	var stmts []string
	for _, idx := range t.Indexes {
		if idx.Origin != "c" {
			continue
		}
		cols := make([]IndexColumn, len(idx.Columns))
		copy(cols, idx.Columns)
		sort.Slice(cols, func(i, j int) bool { return cols[i].Rank < cols[j].Rank })
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.Name
		}
		uniq := ""
		if idx.Unique {
			uniq = "UNIQUE "
		}
		// The index name is schema-qualified so the index (and the table it
		// is looked up on) lands in t's ATTACH'd store rather than "main".
		stmt := fmt.Sprintf("CREATE %sINDEX %s.%s ON %s(%s)", uniq, t.Store, idx.Name, t.Name, strings.Join(names, ", "))
		if idx.Partial {
			stmt += " WHERE " + idx.Where
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

// SchemaDef is the complete, version-specific schema: every table the
// music and performance stores carry, plus the seed statements Create
// issues once the tables exist.
type SchemaDef struct {
	Version Version
	Tables  []TableDef
	// Seed populates the Information row(s) (and any other required seed
	// rows) given the freshly generated library UUID.
	Seed func(tx *sql.Tx, uuid string, v Version) error
}

func (s SchemaDef) table(store, name string) (TableDef, bool) {
	for _, t := range s.Tables {
		if t.Store == store && t.Name == name {
			return t, true
		}
	}
	return TableDef{}, false
}

// Create executes the DDL that materializes every table, index, and seed
// row of s against db, which must already have the "music" and "perfdata"
// schemas attached and empty.
func (s SchemaDef) Create(db *sql.DB, uuid string) error {
	tx, err := db.Begin()
	if err != nil {
		return wrapStorage("schema create: begin", err)
	}
	defer tx.Rollback()

	for _, t := range s.Tables {
		if _, err := tx.Exec(t.CreateSQL()); err != nil {
			return wrapStorage(fmt.Sprintf("schema create: table %s", t.qualified()), err)
		}
		for _, stmt := range t.IndexSQL() {
			if _, err := tx.Exec(stmt); err != nil {
				return wrapStorage(fmt.Sprintf("schema create: index on %s", t.qualified()), err)
			}
		}
	}

	if s.Seed != nil {
		if err := s.Seed(tx, uuid, s.Version); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapStorage("schema create: commit", err)
	}
	return nil
}

// observedColumn mirrors one row of `PRAGMA table_info`.
type observedColumn struct {
	cid        int
	name       string
	sqlType    string
	notNull    bool
	dflt       sql.NullString
	pk         int
}

// observedIndex mirrors one row of `PRAGMA index_list` plus its resolved
// `PRAGMA index_info` columns.
type observedIndex struct {
	name    string
	unique  bool
	origin  string
	partial bool
	columns []IndexColumn
}

func readColumns(db *sql.DB, store, table string) ([]observedColumn, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA %s.table_info(%s)", store, table))
	if err != nil {
		return nil, wrapStorage("validate: table_info", err)
	}
	defer rows.Close()

	var out []observedColumn
	for rows.Next() {
		var c observedColumn
		var notNull int
		if err := rows.Scan(&c.cid, &c.name, &c.sqlType, &notNull, &c.dflt, &c.pk); err != nil {
			return nil, wrapStorage("validate: table_info scan", err)
		}
		c.notNull = notNull != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func readIndexes(db *sql.DB, store, table string) ([]observedIndex, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA %s.index_list(%s)", store, table))
	if err != nil {
		return nil, wrapStorage("validate: index_list", err)
	}
	defer rows.Close()

	var out []observedIndex
	for rows.Next() {
		var seq int
		var idx observedIndex
		var unique, partial int
		if err := rows.Scan(&seq, &idx.name, &unique, &idx.origin, &partial); err != nil {
			return nil, wrapStorage("validate: index_list scan", err)
		}
		idx.unique = unique != 0
		idx.partial = partial != 0
		out = append(out, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		cols, err := readIndexInfo(db, store, out[i].name)
		if err != nil {
			return nil, err
		}
		out[i].columns = cols
	}
	return out, nil
}

func readIndexInfo(db *sql.DB, store, index string) ([]IndexColumn, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA %s.index_info(%s)", store, index))
	if err != nil {
		return nil, wrapStorage("validate: index_info", err)
	}
	defer rows.Close()

	var out []IndexColumn
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, wrapStorage("validate: index_info scan", err)
		}
		out = append(out, IndexColumn{Name: name.String, Rank: seqno})
	}
	return out, rows.Err()
}

func tableExists(db *sql.DB, store, table string) (bool, error) {
	var name string
	err := db.QueryRow(
		fmt.Sprintf("SELECT name FROM %s.sqlite_master WHERE type='table' AND name=?", store),
		table,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, wrapStorage("validate: sqlite_master lookup", err)
	}
	return true, nil
}

func observedTableNames(db *sql.DB, store string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf(
		"SELECT name FROM %s.sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%%'", store))
	if err != nil {
		return nil, wrapStorage("validate: sqlite_master list", err)
	}
	defer rows.Close()

	names := map[string]bool{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names[n] = true
	}
	return names, rows.Err()
}

// Validate confirms, in the canonical ordering of every table's declared
// column list and of every index's declared column list, that db's "music"
// and "perfdata" schemas match s exactly: same tables, same columns (name,
// type, nullability, default, PK membership and rank), same indexes (name,
// uniqueness, creation method, partiality, column list and rank). The first
// mismatch raises a *DatabaseInconsistencyError naming the diverging
// object.
func (s SchemaDef) Validate(db *sql.DB) error {
	seen := map[string]map[string]bool{"music": {}, "perfdata": {}}

	for _, t := range s.Tables {
		seen[t.Store][t.Name] = true

		exists, err := tableExists(db, t.Store, t.Name)
		if err != nil {
			return err
		}
		if !exists {
			return &DatabaseInconsistencyError{Object: t.qualified(), Reason: "missing table"}
		}

		if err := validateColumns(db, t); err != nil {
			return err
		}
		if err := validateIndexes(db, t); err != nil {
			return err
		}
	}

	for _, store := range []string{"music", "perfdata"} {
		observed, err := observedTableNames(db, store)
		if err != nil {
			return err
		}
		for name := range observed {
			if !seen[store][name] {
				return &DatabaseInconsistencyError{Object: store + "." + name, Reason: "extra table not in schema"}
			}
		}
	}
	return nil
}

func validateColumns(db *sql.DB, t TableDef) error {
	observed, err := readColumns(db, t.Store, t.Name)
	if err != nil {
		return err
	}
	if len(observed) != len(t.Columns) {
		return &DatabaseInconsistencyError{
			Object: t.qualified(),
			Reason: fmt.Sprintf("expected %d columns, found %d (extra or missing entries)", len(t.Columns), len(observed)),
		}
	}

	for i, want := range t.Columns {
		got := observed[i]
		obj := fmt.Sprintf("%s.%s", t.qualified(), want.Name)

		if got.name != want.Name {
			return &DatabaseInconsistencyError{Object: obj, Reason: fmt.Sprintf("wrong order: found %q at position %d", got.name, i)}
		}
		if !strings.EqualFold(got.sqlType, want.SQLType) {
			return &DatabaseInconsistencyError{Object: obj, Reason: fmt.Sprintf("wrong type: found %q, want %q", got.sqlType, want.SQLType)}
		}
		if got.notNull != want.NotNull {
			return &DatabaseInconsistencyError{Object: obj, Reason: "wrong nullability"}
		}
		if want.HasDefault != got.dflt.Valid || (want.HasDefault && got.dflt.String != want.Default) {
			return &DatabaseInconsistencyError{Object: obj, Reason: "wrong default"}
		}
		wantPK := want.PKRank > 0
		gotPK := got.pk > 0
		if wantPK != gotPK {
			return &DatabaseInconsistencyError{Object: obj, Reason: "wrong PK membership"}
		}
		if wantPK && got.pk != want.PKRank {
			return &DatabaseInconsistencyError{Object: obj, Reason: "wrong PK rank"}
		}
	}
	return nil
}

func validateIndexes(db *sql.DB, t TableDef) error {
	observed, err := readIndexes(db, t.Store, t.Name)
	if err != nil {
		return err
	}

	byName := map[string]observedIndex{}
	for _, idx := range observed {
		byName[idx.name] = idx
	}

	seen := map[string]bool{}
	for _, want := range t.Indexes {
		obj := fmt.Sprintf("%s index %s", t.qualified(), want.Name)
		got, ok := byName[want.Name]
		if !ok {
			return &DatabaseInconsistencyError{Object: obj, Reason: "missing index"}
		}
		seen[want.Name] = true

		if got.unique != want.Unique {
			return &DatabaseInconsistencyError{Object: obj, Reason: "wrong uniqueness"}
		}
		if got.origin != want.Origin {
			return &DatabaseInconsistencyError{Object: obj, Reason: fmt.Sprintf("wrong creation method: found %q, want %q", got.origin, want.Origin)}
		}
		if got.partial != want.Partial {
			return &DatabaseInconsistencyError{Object: obj, Reason: "wrong partiality"}
		}
		if len(got.columns) != len(want.Columns) {
			return &DatabaseInconsistencyError{Object: obj, Reason: "wrong column count"}
		}
		wantCols := make([]IndexColumn, len(want.Columns))
		copy(wantCols, want.Columns)
		sort.Slice(wantCols, func(i, j int) bool { return wantCols[i].Rank < wantCols[j].Rank })
		for i, wc := range wantCols {
			gc := got.columns[i]
			if gc.Name != wc.Name {
				return &DatabaseInconsistencyError{Object: obj, Reason: fmt.Sprintf("wrong rank: column %q at rank %d, want %q", gc.Name, i, wc.Name)}
			}
		}
	}

	for name, got := range byName {
		if seen[name] {
			continue
		}
		// sqlite auto-creates an index for a PRIMARY KEY or UNIQUE
		// constraint that isn't its own CREATE INDEX statement; PK/UNIQUE
		// membership is already checked column-by-column in
		// validateColumns, so these aren't "extra" in any meaningful sense.
		if got.origin == "pk" || got.origin == "u" {
			continue
		}
		return &DatabaseInconsistencyError{Object: fmt.Sprintf("%s index %s", t.qualified(), name), Reason: "extra index not in schema"}
	}
	return nil
}
