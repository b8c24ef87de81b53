// Package schema holds the static description of every table tablekit is
// allowed to edit. The registry is built once at startup from configuration
// (or sqlite introspection) and is read-only afterwards.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for registry lookups.
var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
)

// Type is the declared type of a column. It is deliberately small: the
// original curation schemas only ever used these four.
type Type string

const (
	TypeText    Type = "text"
	TypeInteger Type = "integer"
	TypeReal    Type = "real"
	TypeBoolean Type = "boolean"
)

// ParseType converts a configuration string into a Type.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeText:
		return TypeText, nil
	case TypeInteger, "int":
		return TypeInteger, nil
	case TypeReal, "float":
		return TypeReal, nil
	case TypeBoolean, "bool":
		return TypeBoolean, nil
	default:
		return "", fmt.Errorf("unknown column type %q", s)
	}
}

// Action is an edit operation a table allows.
type Action string

const (
	ActionAdd    Action = "add"
	ActionModify Action = "modify"
	ActionDelete Action = "delete"
)

// AllActions is the default action set for tables that don't restrict it.
var AllActions = []Action{ActionAdd, ActionModify, ActionDelete}

// ParseAction converts a configuration string into an Action.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionAdd:
		return ActionAdd, nil
	case ActionModify:
		return ActionModify, nil
	case ActionDelete:
		return ActionDelete, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// ColumnSpec describes one column of an editable table.
type ColumnSpec struct {
	Name       string
	Type       Type
	Nullable   bool
	PrimaryKey bool
	// Default is the raw default value used to prefill the add form.
	// Empty means no default.
	Default string
}

// Info returns a short human-readable summary, e.g. "PK, integer".
func (c ColumnSpec) Info() string {
	parts := make([]string, 0, 3)
	if c.PrimaryKey {
		parts = append(parts, "PK")
	}
	if !c.Nullable && !c.PrimaryKey {
		parts = append(parts, "required")
	}
	parts = append(parts, string(c.Type))
	return strings.Join(parts, ", ")
}

// TableSchema is the static structural description of one editable table.
type TableSchema struct {
	Name        string
	DisplayName string
	Columns     []ColumnSpec
	Actions     []Action
}

// PrimaryKey returns the table's primary key column.
func (t TableSchema) PrimaryKey() (ColumnSpec, bool) {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Column looks up a column by name.
func (t TableSchema) Column(name string) (ColumnSpec, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return ColumnSpec{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.Name, name)
}

// ColumnNames returns the column names in declaration order.
func (t TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Allows reports whether the table permits the given edit action.
func (t TableSchema) Allows(a Action) bool {
	for _, allowed := range t.Actions {
		if allowed == a {
			return true
		}
	}
	return false
}

// Title returns the display name, falling back to the table name.
func (t TableSchema) Title() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Name
}

func (t TableSchema) validate() error {
	if t.Name == "" {
		return errors.New("table name is required")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	pks := 0
	for _, c := range t.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %s has a column without a name", t.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("table %s declares column %s twice", t.Name, c.Name)
		}
		seen[c.Name] = true
		if c.PrimaryKey {
			pks++
		}
		switch c.Type {
		case TypeText, TypeInteger, TypeReal, TypeBoolean:
		default:
			return fmt.Errorf("table %s column %s has unknown type %q", t.Name, c.Name, c.Type)
		}
	}
	if pks != 1 {
		return fmt.Errorf("table %s must declare exactly one primary key, has %d", t.Name, pks)
	}
	return nil
}

// Registry is the read-only set of editable tables.
type Registry struct {
	tables []TableSchema
	byName map[string]int
}

// NewRegistry validates the given schemas and builds a registry.
func NewRegistry(tables []TableSchema) (*Registry, error) {
	r := &Registry{
		tables: make([]TableSchema, 0, len(tables)),
		byName: make(map[string]int, len(tables)),
	}
	for _, t := range tables {
		if len(t.Actions) == 0 {
			t.Actions = AllActions
		}
		if err := t.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("table %s registered twice", t.Name)
		}
		r.byName[t.Name] = len(r.tables)
		r.tables = append(r.tables, t)
	}
	return r, nil
}

// Get returns the schema for the named table.
func (r *Registry) Get(name string) (TableSchema, error) {
	i, ok := r.byName[name]
	if !ok {
		return TableSchema{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return r.tables[i], nil
}

// Tables returns all registered schemas in declaration order.
func (r *Registry) Tables() []TableSchema {
	out := make([]TableSchema, len(r.tables))
	copy(out, r.tables)
	return out
}

// Len returns the number of registered tables.
func (r *Registry) Len() int {
	return len(r.tables)
}
