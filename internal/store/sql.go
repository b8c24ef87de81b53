package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver (pure Go)

	"github.com/tablekit/tablekit/internal/schema"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLStore implements Store over database/sql with either the sqlite or
// the postgres driver.
type SQLStore struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open opens and pings the database. A ping failure is returned as
// ErrConnection; callers treat it as fatal at startup.
func Open(ctx context.Context, driverName, dsn string, logger *slog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var db *sql.DB
	var err error
	switch driverName {
	case DriverSQLite:
		db, err = sql.Open("sqlite", dsn)
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driverName)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrConnection, driverName, err)
	}

	// The connection is a single shared resource for the process lifetime:
	// one thread of control, one connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrConnection, driverName, err)
	}

	logger.Debug("database opened", "driver", driverName)
	return &SQLStore{db: db, driver: driverName, logger: logger}, nil
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Debug("closing database connection")
	return s.db.Close()
}

// placeholder returns the parameter placeholder for the 1-based position n.
func (s *SQLStore) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// quoteIdent double-quotes an identifier. Identifiers only ever come from
// the static schema registry, never from user input.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ListRows returns all rows of the table ordered by primary key.
func (s *SQLStore) ListRows(ctx context.Context, table schema.TableSchema) ([]Row, error) {
	cols := table.ColumnNames()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), quoteIdent(table.Name))
	if pk, ok := table.PrimaryKey(); ok {
		query += " ORDER BY " + quoteIdent(pk.Name)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, s.mapError(err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(values[i], table.Columns[i].Type)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

// InsertRow inserts one row with a single parameterized statement. Columns
// absent from the row are left to the database (defaults or NULL).
func (s *SQLStore) InsertRow(ctx context.Context, table schema.TableSchema, row Row) error {
	var cols []string
	var marks []string
	var args []any
	for _, c := range table.Columns {
		v, ok := row[c.Name]
		if !ok {
			continue
		}
		cols = append(cols, quoteIdent(c.Name))
		marks = append(marks, s.placeholder(len(args)+1))
		args = append(args, v)
	}
	if len(cols) == 0 {
		return fmt.Errorf("%w: insert into %s with no columns", ErrQuery, table.Name)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table.Name), strings.Join(cols, ", "), strings.Join(marks, ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return s.mapError(err)
	}
	s.logger.Debug("row inserted", "table", table.Name)
	return nil
}

// UpdateRow applies a partial row to the row identified by pk.
func (s *SQLStore) UpdateRow(ctx context.Context, table schema.TableSchema, pk any, partial Row) error {
	pkCol, ok := table.PrimaryKey()
	if !ok {
		return fmt.Errorf("%w: table %s has no primary key", ErrQuery, table.Name)
	}

	var sets []string
	var args []any
	for _, c := range table.Columns {
		v, present := partial[c.Name]
		if !present {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = %s", quoteIdent(c.Name), s.placeholder(len(args)+1)))
		args = append(args, v)
	}
	if len(sets) == 0 {
		return fmt.Errorf("%w: update of %s changes no columns", ErrQuery, table.Name)
	}
	args = append(args, pk)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		quoteIdent(table.Name), strings.Join(sets, ", "),
		quoteIdent(pkCol.Name), s.placeholder(len(args)))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return s.mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.mapError(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s=%v", ErrNotFound, table.Name, pkCol.Name, pk)
	}
	s.logger.Debug("row updated", "table", table.Name, "pk", pk)
	return nil
}

// DeleteRow deletes the row identified by pk.
func (s *SQLStore) DeleteRow(ctx context.Context, table schema.TableSchema, pk any) error {
	pkCol, ok := table.PrimaryKey()
	if !ok {
		return fmt.Errorf("%w: table %s has no primary key", ErrQuery, table.Name)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		quoteIdent(table.Name), quoteIdent(pkCol.Name), s.placeholder(1))

	res, err := s.db.ExecContext(ctx, query, pk)
	if err != nil {
		return s.mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.mapError(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s=%v", ErrNotFound, table.Name, pkCol.Name, pk)
	}
	s.logger.Debug("row deleted", "table", table.Name, "pk", pk)
	return nil
}

// DB exposes the underlying handle for the ad-hoc query REPL.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Driver returns the driver name the store was opened with.
func (s *SQLStore) Driver() string {
	return s.driver
}

// normalizeValue converts driver-specific scan results into the value
// model used by the editor: []byte to string, and integer-backed booleans
// to bool for columns declared boolean.
func normalizeValue(v any, t schema.Type) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if t == schema.TypeBoolean {
		switch x := v.(type) {
		case int64:
			return x != 0
		case bool:
			return x
		}
	}
	return v
}

// mapError classifies a driver error into the store error taxonomy.
func (s *SQLStore) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"): // integrity constraint violation
			return fmt.Errorf("%w: %v", ErrConstraint, err)
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return fmt.Errorf("%w: %v", ErrConnection, err)
		default:
			return fmt.Errorf("%w: %v", ErrQuery, err)
		}
	}

	// The sqlite driver reports constraint failures only through the
	// message text, e.g. "UNIQUE constraint failed: pages.id (1555)".
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "constraint"):
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	case strings.Contains(msg, "unable to open database"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "database is closed"):
		return fmt.Errorf("%w: %v", ErrConnection, err)
	default:
		return fmt.Errorf("%w: %v", ErrQuery, err)
	}
}
