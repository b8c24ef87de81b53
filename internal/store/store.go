// Package store is the data access layer: it executes single-row
// INSERT/UPDATE/DELETE statements and row listings against the configured
// database. Each operation runs exactly one parameterized statement and is
// never retried; failures are classified into a small error taxonomy and
// surfaced to the caller as-is.
package store

import (
	"context"
	"errors"

	"github.com/tablekit/tablekit/internal/schema"
)

// Row is one record of a table, keyed by column name. Rows exist only
// transiently between fetch and display; the database is the source of truth.
type Row = map[string]any

// Error taxonomy for database-reported failures.
var (
	// ErrNotFound means the targeted primary key does not exist.
	ErrNotFound = errors.New("row not found")
	// ErrConstraint means the database rejected a write (e.g. duplicate
	// primary key, NOT NULL violation).
	ErrConstraint = errors.New("constraint violation")
	// ErrConnection means the database could not be reached.
	ErrConnection = errors.New("connection error")
	// ErrQuery covers all other statement failures.
	ErrQuery = errors.New("query error")
)

// Store executes single-row edits against a database. Implementations own
// the connection for the process lifetime: opened once at startup, closed
// on exit.
type Store interface {
	// ListRows returns all rows of the table ordered by primary key.
	ListRows(ctx context.Context, table schema.TableSchema) ([]Row, error)

	// InsertRow inserts one row. The row must already be validated
	// against the table schema.
	InsertRow(ctx context.Context, table schema.TableSchema, row Row) error

	// UpdateRow applies a partial row to the row with the given primary
	// key. Fails with ErrNotFound if the key does not exist.
	UpdateRow(ctx context.Context, table schema.TableSchema, pk any, partial Row) error

	// DeleteRow deletes the row with the given primary key. Fails with
	// ErrNotFound if the key does not exist, so deleting the same key
	// twice yields success then ErrNotFound.
	DeleteRow(ctx context.Context, table schema.TableSchema, pk any) error

	// Introspect reads the column specs of a table from the database
	// itself, for tables configured without an explicit column list.
	Introspect(ctx context.Context, table string) ([]schema.ColumnSpec, error)

	Close() error
}
