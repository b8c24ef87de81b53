package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablekit/tablekit/internal/schema"
	"github.com/tablekit/tablekit/internal/store"
)

// fakeStore counts calls so tests can assert validation happens first.
type fakeStore struct {
	inserts, updates, deletes int
	err                       error
}

func (f *fakeStore) ListRows(context.Context, schema.TableSchema) ([]store.Row, error) {
	return nil, nil
}

func (f *fakeStore) InsertRow(context.Context, schema.TableSchema, store.Row) error {
	f.inserts++
	return f.err
}

func (f *fakeStore) UpdateRow(context.Context, schema.TableSchema, any, store.Row) error {
	f.updates++
	return f.err
}

func (f *fakeStore) DeleteRow(context.Context, schema.TableSchema, any) error {
	f.deletes++
	return f.err
}

func (f *fakeStore) Introspect(context.Context, string) ([]schema.ColumnSpec, error) {
	return nil, nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) calls() int { return f.inserts + f.updates + f.deletes }

func pagesTable() schema.TableSchema {
	return schema.TableSchema{
		Name: "pages",
		Columns: []schema.ColumnSpec{
			{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
			{Name: "title", Type: schema.TypeText},
			{Name: "url", Type: schema.TypeText},
			{Name: "weight", Type: schema.TypeReal, Nullable: true},
			{Name: "visible", Type: schema.TypeBoolean, Nullable: true},
		},
	}
}

func TestBuildInsert(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]string
		wantErr error
		wantRow store.Row
	}{
		{
			name:   "all fields",
			fields: map[string]string{"id": "1", "title": "Home", "url": "/", "weight": "0.5", "visible": "true"},
			wantRow: store.Row{
				"id": int64(1), "title": "Home", "url": "/", "weight": 0.5, "visible": true,
			},
		},
		{
			name:    "nullable fields omitted",
			fields:  map[string]string{"id": "1", "title": "Home", "url": "/"},
			wantRow: store.Row{"id": int64(1), "title": "Home", "url": "/"},
		},
		{
			name:    "missing required field",
			fields:  map[string]string{"id": "1", "url": "/"},
			wantErr: ErrMissingField,
		},
		{
			name:    "empty required field",
			fields:  map[string]string{"id": "1", "title": "", "url": "/"},
			wantErr: ErrMissingField,
		},
		{
			name:    "non-numeric integer",
			fields:  map[string]string{"id": "one", "title": "Home", "url": "/"},
			wantErr: ErrTypeMismatch,
		},
		{
			name:    "non-numeric real",
			fields:  map[string]string{"id": "1", "title": "Home", "url": "/", "weight": "heavy"},
			wantErr: ErrTypeMismatch,
		},
		{
			name:    "bad boolean",
			fields:  map[string]string{"id": "1", "title": "Home", "url": "/", "visible": "maybe"},
			wantErr: ErrTypeMismatch,
		},
		{
			name:    "unknown field",
			fields:  map[string]string{"id": "1", "title": "Home", "url": "/", "color": "red"},
			wantErr: schema.ErrUnknownColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := BuildInsert(pagesTable(), tt.fields)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, OpInsert, req.Op)
			assert.Equal(t, tt.wantRow, req.Row)
		})
	}
}

func TestBuildInsert_DefaultSatisfiesRequired(t *testing.T) {
	tbl := pagesTable()
	tbl.Columns[1].Default = "untitled" // title

	req, err := BuildInsert(tbl, map[string]string{"id": "1", "url": "/"})
	require.NoError(t, err)
	// the column is omitted so the database applies its own default
	_, present := req.Row["title"]
	assert.False(t, present)
}

func TestBuildUpdate(t *testing.T) {
	req, err := BuildUpdate(pagesTable(), "1", map[string]string{"title": "Homepage"})
	require.NoError(t, err)
	assert.Equal(t, OpUpdate, req.Op)
	assert.Equal(t, int64(1), req.PK)
	assert.Equal(t, store.Row{"title": "Homepage"}, req.Row)

	// clearing a nullable column stores NULL
	req, err = BuildUpdate(pagesTable(), "1", map[string]string{"weight": ""})
	require.NoError(t, err)
	assert.Equal(t, store.Row{"weight": nil}, req.Row)

	// clearing a required column is a validation error
	_, err = BuildUpdate(pagesTable(), "1", map[string]string{"title": ""})
	assert.ErrorIs(t, err, ErrMissingField)

	// bad primary key
	_, err = BuildUpdate(pagesTable(), "abc", map[string]string{"title": "x"})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	// primary key field is ignored, not updated
	req, err = BuildUpdate(pagesTable(), "1", map[string]string{"id": "2", "title": "x"})
	require.NoError(t, err)
	_, present := req.Row["id"]
	assert.False(t, present)
}

func TestBuildDelete(t *testing.T) {
	req, err := BuildDelete(pagesTable(), "7")
	require.NoError(t, err)
	assert.Equal(t, OpDelete, req.Op)
	assert.Equal(t, int64(7), req.PK)

	_, err = BuildDelete(pagesTable(), "")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = BuildDelete(pagesTable(), "x")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestValidationHappensBeforeStoreCalls(t *testing.T) {
	st := &fakeStore{}

	_, err := BuildInsert(pagesTable(), map[string]string{"id": "1"})
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = BuildUpdate(pagesTable(), "nope", map[string]string{"title": "x"})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = BuildDelete(pagesTable(), "")
	assert.ErrorIs(t, err, ErrMissingField)

	assert.Zero(t, st.calls(), "no store call may happen before validation passes")
}

func TestEditRequest_Apply(t *testing.T) {
	ctx := context.Background()

	st := &fakeStore{}
	req, err := BuildInsert(pagesTable(), map[string]string{"id": "1", "title": "Home", "url": "/"})
	require.NoError(t, err)
	require.NoError(t, req.Apply(ctx, st))
	assert.Equal(t, 1, st.inserts)

	req, err = BuildUpdate(pagesTable(), "1", map[string]string{"title": "Homepage"})
	require.NoError(t, err)
	require.NoError(t, req.Apply(ctx, st))
	assert.Equal(t, 1, st.updates)

	req, err = BuildDelete(pagesTable(), "1")
	require.NoError(t, err)
	require.NoError(t, req.Apply(ctx, st))
	assert.Equal(t, 1, st.deletes)
}

func TestEditRequest_ApplyPropagatesErrors(t *testing.T) {
	st := &fakeStore{err: store.ErrConstraint}
	req, err := BuildInsert(pagesTable(), map[string]string{"id": "1", "title": "Home", "url": "/"})
	require.NoError(t, err)

	err = req.Apply(context.Background(), st)
	assert.ErrorIs(t, err, store.ErrConstraint)
}

func TestParse(t *testing.T) {
	tests := []struct {
		typ     schema.Type
		raw     string
		want    any
		wantErr bool
	}{
		{typ: schema.TypeText, raw: "hello", want: "hello"},
		{typ: schema.TypeText, raw: "", want: ""},
		{typ: schema.TypeInteger, raw: "42", want: int64(42)},
		{typ: schema.TypeInteger, raw: "-7", want: int64(-7)},
		{typ: schema.TypeInteger, raw: "4.2", wantErr: true},
		{typ: schema.TypeReal, raw: "3.14", want: 3.14},
		{typ: schema.TypeReal, raw: "pi", wantErr: true},
		{typ: schema.TypeBoolean, raw: "true", want: true},
		{typ: schema.TypeBoolean, raw: "0", want: false},
		{typ: schema.TypeBoolean, raw: "yes", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.typ, tt.raw)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrTypeMismatch, "%s %q", tt.typ, tt.raw)
			continue
		}
		require.NoError(t, err, "%s %q", tt.typ, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "NULL", Format(nil))
	assert.Equal(t, "Home", Format("Home"))
	assert.Equal(t, "Home", Format([]byte("Home")))
	assert.Equal(t, "42", Format(int64(42)))
	assert.Equal(t, "3.14", Format(3.14))
	assert.Equal(t, "true", Format(true))
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "insert", OpInsert.String())
	assert.Equal(t, "update", OpUpdate.String())
	assert.Equal(t, "delete", OpDelete.String())
}

func TestFakeStoreImplementsStore(t *testing.T) {
	var _ store.Store = (*fakeStore)(nil)
	assert.True(t, errors.Is(store.ErrNotFound, store.ErrNotFound))
}
