// Package editor validates raw field input against a table schema and turns
// it into edit requests for the data access layer. Validation always happens
// here, before any database call: the store never sees malformed field data.
package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/tablekit/tablekit/internal/schema"
	"github.com/tablekit/tablekit/internal/store"
)

// Validation errors, detected before any store call.
var (
	ErrMissingField = errors.New("missing required field")
	ErrTypeMismatch = errors.New("type mismatch")
)

// Op is the kind of edit an EditRequest carries.
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpDelete
)

// String returns the operation name for messages.
func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// EditRequest is a validated intent to insert, update, or delete one row.
// It is created from user input, consumed once by Apply, then discarded.
type EditRequest struct {
	Op    Op
	Table schema.TableSchema
	// Row holds the full row for inserts, or the changed columns for updates.
	Row store.Row
	// PK identifies the target row for updates and deletes.
	PK any
}

// BuildInsert validates raw field input and builds an insert request.
// Empty input on a nullable column means the column is omitted; empty input
// on a required column without a default fails with ErrMissingField.
func BuildInsert(table schema.TableSchema, fields map[string]string) (EditRequest, error) {
	row := make(store.Row, len(fields))
	for name := range fields {
		if _, err := table.Column(name); err != nil {
			return EditRequest{}, err
		}
	}
	for _, col := range table.Columns {
		raw, ok := fields[col.Name]
		if !ok || raw == "" {
			if !col.Nullable && col.Default == "" {
				return EditRequest{}, fmt.Errorf("%w: %s", ErrMissingField, col.Name)
			}
			continue
		}
		v, err := Parse(col.Type, raw)
		if err != nil {
			return EditRequest{}, fmt.Errorf("%s: %w", col.Name, err)
		}
		row[col.Name] = v
	}
	return EditRequest{Op: OpInsert, Table: table, Row: row}, nil
}

// BuildUpdate validates a partial set of raw fields against the schema and
// builds an update request for the row identified by rawPK. Only the fields
// present are validated and applied; the primary key column itself is not
// updatable.
func BuildUpdate(table schema.TableSchema, rawPK string, fields map[string]string) (EditRequest, error) {
	pk, err := parsePK(table, rawPK)
	if err != nil {
		return EditRequest{}, err
	}

	row := make(store.Row, len(fields))
	for name, raw := range fields {
		col, err := table.Column(name)
		if err != nil {
			return EditRequest{}, err
		}
		if col.PrimaryKey {
			continue
		}
		if raw == "" {
			if !col.Nullable {
				return EditRequest{}, fmt.Errorf("%w: %s", ErrMissingField, col.Name)
			}
			row[col.Name] = nil
			continue
		}
		v, err := Parse(col.Type, raw)
		if err != nil {
			return EditRequest{}, fmt.Errorf("%s: %w", col.Name, err)
		}
		row[col.Name] = v
	}
	return EditRequest{Op: OpUpdate, Table: table, Row: row, PK: pk}, nil
}

// BuildDelete builds a delete request for the row identified by rawPK.
func BuildDelete(table schema.TableSchema, rawPK string) (EditRequest, error) {
	pk, err := parsePK(table, rawPK)
	if err != nil {
		return EditRequest{}, err
	}
	return EditRequest{Op: OpDelete, Table: table, PK: pk}, nil
}

func parsePK(table schema.TableSchema, raw string) (any, error) {
	pkCol, ok := table.PrimaryKey()
	if !ok {
		return nil, fmt.Errorf("table %s has no primary key", table.Name)
	}
	if raw == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, pkCol.Name)
	}
	v, err := Parse(pkCol.Type, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pkCol.Name, err)
	}
	return v, nil
}

// Apply dispatches the request to the store and propagates its result
// unchanged; there is no local recovery.
func (r EditRequest) Apply(ctx context.Context, st store.Store) error {
	switch r.Op {
	case OpInsert:
		return st.InsertRow(ctx, r.Table, r.Row)
	case OpUpdate:
		return st.UpdateRow(ctx, r.Table, r.PK, r.Row)
	case OpDelete:
		return st.DeleteRow(ctx, r.Table, r.PK)
	default:
		return fmt.Errorf("unhandled edit operation %d", r.Op)
	}
}
