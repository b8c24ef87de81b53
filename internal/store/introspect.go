package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tablekit/tablekit/internal/schema"
)

// Introspect reads the column specs of a table from the database itself.
// sqlite uses pragma_table_info, postgres information_schema.columns.
func (s *SQLStore) Introspect(ctx context.Context, table string) ([]schema.ColumnSpec, error) {
	switch s.driver {
	case DriverSQLite:
		return s.introspectSQLite(ctx, table)
	case DriverPostgres:
		return s.introspectPostgres(ctx, table)
	default:
		return nil, fmt.Errorf("%w: introspection unsupported for driver %s", ErrQuery, s.driver)
	}
}

func (s *SQLStore) introspectSQLite(ctx context.Context, table string) ([]schema.ColumnSpec, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var specs []schema.ColumnSpec
	for rows.Next() {
		var (
			name, declared string
			notNull, pk    int
			dflt           sql.NullString
		)
		if err := rows.Scan(&name, &declared, &notNull, &dflt, &pk); err != nil {
			return nil, s.mapError(err)
		}
		specs = append(specs, schema.ColumnSpec{
			Name:       name,
			Type:       sqliteType(declared),
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk != 0,
			Default:    unquoteDefault(dflt.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: %s", schema.ErrUnknownTable, table)
	}
	return specs, nil
}

func (s *SQLStore) introspectPostgres(ctx context.Context, table string) ([]schema.ColumnSpec, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.column_name, c.data_type, c.is_nullable, c.column_default,
		       EXISTS (
		           SELECT 1
		           FROM information_schema.table_constraints tc
		           JOIN information_schema.key_column_usage kcu
		             ON tc.constraint_name = kcu.constraint_name
		            AND tc.table_name = kcu.table_name
		           WHERE tc.table_name = c.table_name
		             AND tc.constraint_type = 'PRIMARY KEY'
		             AND kcu.column_name = c.column_name
		       ) AS is_pk
		FROM information_schema.columns c
		WHERE c.table_name = $1
		ORDER BY c.ordinal_position`, table)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var specs []schema.ColumnSpec
	for rows.Next() {
		var (
			name, dataType, nullable string
			dflt                     sql.NullString
			isPK                     bool
		)
		if err := rows.Scan(&name, &dataType, &nullable, &dflt, &isPK); err != nil {
			return nil, s.mapError(err)
		}
		specs = append(specs, schema.ColumnSpec{
			Name:       name,
			Type:       postgresType(dataType),
			Nullable:   nullable == "YES" && !isPK,
			PrimaryKey: isPK,
			Default:    unquoteDefault(dflt.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: %s", schema.ErrUnknownTable, table)
	}
	return specs, nil
}

// sqliteType maps a declared sqlite column type to the registry type model
// following sqlite's affinity rules.
func sqliteType(declared string) schema.Type {
	d := strings.ToUpper(declared)
	switch {
	case strings.Contains(d, "BOOL"):
		return schema.TypeBoolean
	case strings.Contains(d, "INT"):
		return schema.TypeInteger
	case strings.Contains(d, "REAL"), strings.Contains(d, "FLOA"), strings.Contains(d, "DOUB"):
		return schema.TypeReal
	default:
		return schema.TypeText
	}
}

// postgresType maps an information_schema data_type to the registry type model.
func postgresType(dataType string) schema.Type {
	switch strings.ToLower(dataType) {
	case "smallint", "integer", "bigint":
		return schema.TypeInteger
	case "real", "double precision", "numeric", "decimal":
		return schema.TypeReal
	case "boolean":
		return schema.TypeBoolean
	default:
		return schema.TypeText
	}
}

// unquoteDefault strips the quoting around a literal column default so it
// can prefill a form field, e.g. 'home' -> home.
func unquoteDefault(dflt string) string {
	dflt = strings.TrimSpace(dflt)
	if len(dflt) >= 2 && dflt[0] == '\'' && dflt[len(dflt)-1] == '\'' {
		return strings.ReplaceAll(dflt[1:len(dflt)-1], "''", "'")
	}
	return dflt
}
