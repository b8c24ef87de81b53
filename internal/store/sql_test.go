package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablekit/tablekit/internal/schema"
	"github.com/tablekit/tablekit/internal/testutil"
)

func pagesTable() schema.TableSchema {
	return schema.TableSchema{
		Name:        "pages",
		DisplayName: "Pages",
		Columns: []schema.ColumnSpec{
			{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
			{Name: "title", Type: schema.TypeText},
			{Name: "url", Type: schema.TypeText},
			{Name: "visible", Type: schema.TypeBoolean, Nullable: true},
		},
	}
}

func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()

	st, err := Open(ctx, DriverSQLite, ":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	_, err = st.DB().ExecContext(ctx, `
		CREATE TABLE pages (
			id      INTEGER PRIMARY KEY,
			title   TEXT NOT NULL,
			url     TEXT NOT NULL DEFAULT '/',
			visible BOOLEAN
		)`)
	require.NoError(t, err)
	return st
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown database driver")
}

func TestOpen_UnreachableDatabase(t *testing.T) {
	_, err := Open(context.Background(), DriverSQLite,
		"file:/does/not/exist/site.db?mode=rw", nil)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestInsertThenListContainsRowOnce(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	tbl := pagesTable()

	row := Row{"id": int64(1), "title": "Home", "url": "/", "visible": true}
	require.NoError(t, st.InsertRow(ctx, tbl, row))

	rows, err := st.ListRows(ctx, tbl)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, "Home", rows[0]["title"])
	assert.Equal(t, "/", rows[0]["url"])
	assert.Equal(t, true, rows[0]["visible"])
}

func TestInsertDuplicatePrimaryKey(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	tbl := pagesTable()

	require.NoError(t, st.InsertRow(ctx, tbl, Row{"id": int64(1), "title": "Home", "url": "/"}))
	err := st.InsertRow(ctx, tbl, Row{"id": int64(1), "title": "Dup", "url": "/x"})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestInsertOmittedColumnUsesDatabaseDefault(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	tbl := pagesTable()

	require.NoError(t, st.InsertRow(ctx, tbl, Row{"id": int64(2), "title": "About"}))

	rows, err := st.ListRows(ctx, tbl)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "/", rows[0]["url"])
	assert.Nil(t, rows[0]["visible"])
}

func TestUpdatePartialRow(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	tbl := pagesTable()

	require.NoError(t, st.InsertRow(ctx, tbl, Row{"id": int64(1), "title": "Home", "url": "/"}))
	require.NoError(t, st.UpdateRow(ctx, tbl, int64(1), Row{"title": "Homepage"}))

	rows, err := st.ListRows(ctx, tbl)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Homepage", rows[0]["title"])
	assert.Equal(t, "/", rows[0]["url"], "untouched column must keep its value")
}

func TestUpdateMissingRow(t *testing.T) {
	st := setupTestStore(t)
	err := st.UpdateRow(context.Background(), pagesTable(), int64(99), Row{"title": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIdempotence(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	tbl := pagesTable()

	require.NoError(t, st.InsertRow(ctx, tbl, Row{"id": int64(1), "title": "Home", "url": "/"}))

	require.NoError(t, st.DeleteRow(ctx, tbl, int64(1)))
	err := st.DeleteRow(ctx, tbl, int64(1))
	assert.ErrorIs(t, err, ErrNotFound, "second delete must fail, never succeed")

	rows, err := st.ListRows(ctx, tbl)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// Full walk through the row-edit contract: insert, duplicate, partial
// update, delete, delete again.
func TestEditScenario(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	tbl := pagesTable()

	require.NoError(t, st.InsertRow(ctx, tbl, Row{"id": int64(1), "title": "Home", "url": "/"}))
	assert.ErrorIs(t,
		st.InsertRow(ctx, tbl, Row{"id": int64(1), "title": "Dup", "url": "/x"}),
		ErrConstraint)

	require.NoError(t, st.UpdateRow(ctx, tbl, int64(1), Row{"title": "Homepage"}))
	rows, err := st.ListRows(ctx, tbl)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Homepage", rows[0]["title"])
	assert.Equal(t, "/", rows[0]["url"])

	require.NoError(t, st.DeleteRow(ctx, tbl, int64(1)))
	rows, err = st.ListRows(ctx, tbl)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListRowsOrderedByPrimaryKey(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	tbl := pagesTable()

	for _, id := range []int64{3, 1, 2} {
		require.NoError(t, st.InsertRow(ctx, tbl, Row{"id": id, "title": "t", "url": "/"}))
	}

	rows, err := st.ListRows(ctx, tbl)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, want := range []int64{1, 2, 3} {
		assert.Equal(t, want, rows[i]["id"])
	}
}

func TestNotNullConstraintSurfaces(t *testing.T) {
	st := setupTestStore(t)
	// bypassing editor validation on purpose: the database still enforces it
	err := st.InsertRow(context.Background(), pagesTable(), Row{"id": int64(1), "title": nil, "url": "/"})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestIntrospectSQLite(t *testing.T) {
	st := setupTestStore(t)

	specs, err := st.Introspect(context.Background(), "pages")
	require.NoError(t, err)
	require.Len(t, specs, 4)

	assert.Equal(t, schema.ColumnSpec{Name: "id", Type: schema.TypeInteger, PrimaryKey: true}, specs[0])
	assert.Equal(t, schema.ColumnSpec{Name: "title", Type: schema.TypeText}, specs[1])
	assert.Equal(t, schema.ColumnSpec{Name: "url", Type: schema.TypeText, Default: "/"}, specs[2])
	assert.Equal(t, schema.ColumnSpec{Name: "visible", Type: schema.TypeBoolean, Nullable: true}, specs[3])
}

func TestIntrospectUnknownTable(t *testing.T) {
	st := setupTestStore(t)
	_, err := st.Introspect(context.Background(), "missing")
	assert.ErrorIs(t, err, schema.ErrUnknownTable)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"pages"`, quoteIdent("pages"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
}

func TestSQLiteTypeMapping(t *testing.T) {
	tests := []struct {
		declared string
		want     schema.Type
	}{
		{"INTEGER", schema.TypeInteger},
		{"int", schema.TypeInteger},
		{"BIGINT", schema.TypeInteger},
		{"TEXT", schema.TypeText},
		{"VARCHAR(20)", schema.TypeText},
		{"REAL", schema.TypeReal},
		{"DOUBLE", schema.TypeReal},
		{"BOOLEAN", schema.TypeBoolean},
		{"", schema.TypeText},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteType(tt.declared), "declared %q", tt.declared)
	}
}

func TestUnquoteDefault(t *testing.T) {
	assert.Equal(t, "/", unquoteDefault("'/'"))
	assert.Equal(t, "it's", unquoteDefault("'it''s'"))
	assert.Equal(t, "0", unquoteDefault("0"))
	assert.Equal(t, "", unquoteDefault(""))
}
