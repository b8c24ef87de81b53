// Package config loads tablekit configuration: the database connection and
// the declarations of the tables the tool is allowed to edit.
package config

import (
	"fmt"

	"github.com/tablekit/tablekit/internal/schema"
)

// Default configuration values.
const (
	DefaultDriver = "sqlite"
	DefaultDSN    = "./data/site-content.db"
	DefaultOutput = "auto" // auto-detect: TTY=styled text, non-TTY=markdown
)

// Config holds all tablekit configuration options.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Tables   []TableConfig  `koanf:"tables"`
	Verbose  bool           `koanf:"verbose"`
	Output   string         `koanf:"output"`
}

// DatabaseConfig holds the database connection parameters.
type DatabaseConfig struct {
	Driver string `koanf:"driver"` // sqlite | postgres
	DSN    string `koanf:"dsn"`
}

// TableConfig declares one editable table.
type TableConfig struct {
	Name        string         `koanf:"name"`
	DisplayName string         `koanf:"display_name"`
	// Introspect fills the column list from the database at startup
	// instead of requiring it in the config file.
	Introspect bool           `koanf:"introspect"`
	Actions    []string       `koanf:"actions"`
	Columns    []ColumnConfig `koanf:"columns"`
}

// ColumnConfig declares one column of an editable table.
type ColumnConfig struct {
	Name       string `koanf:"name"`
	Type       string `koanf:"type"`
	Nullable   bool   `koanf:"nullable"`
	PrimaryKey bool   `koanf:"primary_key"`
	Default    string `koanf:"default"`
}

// Validate checks the parts of the configuration that can be checked
// without touching the database.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q (want sqlite or postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	for _, t := range c.Tables {
		if t.Name == "" {
			return fmt.Errorf("every table needs a name")
		}
		if !t.Introspect && len(t.Columns) == 0 {
			return fmt.Errorf("table %s declares no columns and introspect is off", t.Name)
		}
	}
	return nil
}

// TableSchema converts a table declaration into a registry schema. Tables
// with Introspect set have their columns filled in by the caller first.
func (t TableConfig) TableSchema() (schema.TableSchema, error) {
	out := schema.TableSchema{
		Name:        t.Name,
		DisplayName: t.DisplayName,
	}
	for _, a := range t.Actions {
		action, err := schema.ParseAction(a)
		if err != nil {
			return schema.TableSchema{}, fmt.Errorf("table %s: %w", t.Name, err)
		}
		out.Actions = append(out.Actions, action)
	}
	for _, c := range t.Columns {
		typ, err := schema.ParseType(c.Type)
		if err != nil {
			return schema.TableSchema{}, fmt.Errorf("table %s column %s: %w", t.Name, c.Name, err)
		}
		out.Columns = append(out.Columns, schema.ColumnSpec{
			Name:       c.Name,
			Type:       typ,
			Nullable:   c.Nullable,
			PrimaryKey: c.PrimaryKey,
			Default:    c.Default,
		})
	}
	return out, nil
}
