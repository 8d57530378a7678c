package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"haushalt/internal/core"
	"haushalt/internal/store"

	_ "modernc.org/sqlite"
)

// tables lists the collections backed by the schema in migrations/.
var tables = map[string]bool{
	"expenses": true,
	"income":   true,
}

// columns maps filterable field names to table columns.
var columns = map[string]string{
	core.FieldID:      "id",
	core.FieldName:    "name",
	core.FieldDetails: "details",
	core.FieldAmount:  "amount",
	core.FieldPrio:    "prio",
}

// SQLiteDatabase is a store.Database on a single SQLite file.
type SQLiteDatabase struct {
	db *sql.DB
}

var _ store.Database = (*SQLiteDatabase)(nil)

// NewSQLiteDatabase opens dbPath, or a private in-memory database for
// MemoryPath, and migrates it to the latest schema.
func NewSQLiteDatabase(dbPath string) (*SQLiteDatabase, error) {
	inMemory := dbPath == MemoryPath
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if inMemory {
		// Every new connection would see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migrateUp(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}
	slog.Info("SQLite database ready", "path", dbPath, "schema_version", version)

	return &SQLiteDatabase{db: db}, nil
}

func (d *SQLiteDatabase) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

func (d *SQLiteDatabase) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Collection returns the table-backed collection. Names outside the schema
// yield a collection whose operations fail.
func (d *SQLiteDatabase) Collection(name string) store.Collection {
	return &sqliteCollection{db: d.db, table: name}
}

type sqliteCollection struct {
	db    *sql.DB
	table string
}

func (c *sqliteCollection) check() error {
	if !tables[c.table] {
		return fmt.Errorf("unknown collection %q", c.table)
	}
	return nil
}

func (c *sqliteCollection) Find(ctx context.Context, filter store.Filter, sortBy ...string) ([]core.Entry, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	// Sorted keys keep the generated SQL stable for the statement cache.
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		col, ok := columns[k]
		if !ok {
			// No document carries an unknown field.
			return []core.Entry{}, nil
		}
		where = append(where, col+" = ?")
		args = append(args, filter[k])
	}

	var order []string
	for _, f := range sortBy {
		if col, ok := columns[f]; ok {
			order = append(order, col)
		}
	}
	order = append(order, "seq")

	query := "SELECT id, name, details, amount, prio FROM " + c.table
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + strings.Join(order, ", ")

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.table, err)
	}
	defer rows.Close()

	out := []core.Entry{}
	for rows.Next() {
		var e core.Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Details, &e.Amount, &e.Prio); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", c.table, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", c.table, err)
	}
	return out, nil
}

func (c *sqliteCollection) InsertOne(ctx context.Context, doc core.Entry) (string, error) {
	if err := c.check(); err != nil {
		return "", err
	}
	id := store.NewID()
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO "+c.table+" (id, name, details, amount, prio) VALUES (?, ?, ?, ?, ?)",
		id, doc.Name, doc.Details, doc.Amount, doc.Prio)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", c.table, err)
	}

	slog.DebugContext(ctx, "Entry saved to SQLite", "collection", c.table, "id", id)
	return id, nil
}

func (c *sqliteCollection) FindOne(ctx context.Context, id string) (core.Entry, bool, error) {
	if err := c.check(); err != nil {
		return core.Entry{}, false, err
	}
	id, err := store.ParseID(id)
	if err != nil {
		return core.Entry{}, false, err
	}

	var e core.Entry
	err = c.db.QueryRowContext(ctx,
		"SELECT id, name, details, amount, prio FROM "+c.table+" WHERE id = ?", id).
		Scan(&e.ID, &e.Name, &e.Details, &e.Amount, &e.Prio)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, false, nil
	}
	if err != nil {
		return core.Entry{}, false, fmt.Errorf("find %s by id: %w", c.table, err)
	}
	return e, true, nil
}

func (c *sqliteCollection) UpdateOne(ctx context.Context, id string, set map[string]string) (int64, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	id, err := store.ParseID(id)
	if err != nil {
		return 0, err
	}

	names := make([]string, 0, len(set))
	for name := range set {
		if name == core.FieldID {
			continue
		}
		if _, ok := columns[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	assignments := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		assignments = append(assignments, columns[name]+" = ?")
		args = append(args, set[name])
	}
	args = append(args, id)

	res, err := c.db.ExecContext(ctx,
		"UPDATE "+c.table+" SET "+strings.Join(assignments, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", c.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update %s rows affected: %w", c.table, err)
	}
	return n, nil
}

func (c *sqliteCollection) DeleteOne(ctx context.Context, id string) (int64, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	id, err := store.ParseID(id)
	if err != nil {
		return 0, err
	}

	res, err := c.db.ExecContext(ctx, "DELETE FROM "+c.table+" WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", c.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete from %s rows affected: %w", c.table, err)
	}
	if n > 0 {
		slog.DebugContext(ctx, "Entry deleted from SQLite", "collection", c.table, "id", id)
	}
	return n, nil
}
