package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
database:
  driver: sqlite
  dsn: ./testdata/site.db
tables:
  - name: category
    display_name: Category
    actions: [add, modify, delete]
    columns:
      - {name: id, type: integer, primary_key: true}
      - {name: title, type: text}
      - {name: slug, type: text, nullable: true}
  - name: document
    introspect: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tablekit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfigYAML), nil)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "./testdata/site.db", cfg.Database.DSN)
	require.Len(t, cfg.Tables, 2)

	cat := cfg.Tables[0]
	assert.Equal(t, "category", cat.Name)
	assert.Equal(t, "Category", cat.DisplayName)
	assert.Equal(t, []string{"add", "modify", "delete"}, cat.Actions)
	require.Len(t, cat.Columns, 3)
	assert.True(t, cat.Columns[0].PrimaryKey)
	assert.True(t, cat.Columns[2].Nullable)

	assert.True(t, cfg.Tables[1].Introspect)
	assert.Empty(t, cfg.Tables[1].Columns)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("TABLEKIT_DATABASE_DSN", "/elsewhere/site.db")

	cfg, err := Load(writeConfig(t, testConfigYAML), nil)
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/site.db", cfg.Database.DSN)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("TABLEKIT_DATABASE_DSN", "/from-env/site.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dsn", "", "")
	flags.String("driver", "", "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Parse([]string{"--dsn", "/from-flag/site.db", "--verbose"}))

	cfg, err := Load(writeConfig(t, testConfigYAML), flags)
	require.NoError(t, err)
	assert.Equal(t, "/from-flag/site.db", cfg.Database.DSN)
	assert.True(t, cfg.Verbose)
}

func TestLoad_UnchangedFlagsIgnored(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dsn", "", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(writeConfig(t, testConfigYAML), flags)
	require.NoError(t, err)
	assert.Equal(t, "./testdata/site.db", cfg.Database.DSN)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "database: [not a map"), nil)
	assert.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown driver",
			yaml:    "database: {driver: oracle, dsn: x}\ntables: [{name: t, introspect: true}]",
			wantErr: "unknown database driver",
		},
		{
			name:    "no tables",
			yaml:    "database: {driver: sqlite, dsn: x}",
			wantErr: "at least one table",
		},
		{
			name:    "table without columns or introspect",
			yaml:    "database: {driver: sqlite, dsn: x}\ntables: [{name: t}]",
			wantErr: "declares no columns",
		},
		{
			name:    "table without name",
			yaml:    "database: {driver: sqlite, dsn: x}\ntables: [{introspect: true}]",
			wantErr: "needs a name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTableConfig_TableSchema(t *testing.T) {
	tc := TableConfig{
		Name:        "category",
		DisplayName: "Category",
		Actions:     []string{"modify"},
		Columns: []ColumnConfig{
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "title", Type: "text", Default: "untitled"},
		},
	}

	ts, err := tc.TableSchema()
	require.NoError(t, err)
	assert.Equal(t, "category", ts.Name)
	require.Len(t, ts.Columns, 2)
	assert.Equal(t, "untitled", ts.Columns[1].Default)
	require.Len(t, ts.Actions, 1)

	tc.Columns[0].Type = "uuid"
	_, err = tc.TableSchema()
	assert.Error(t, err)

	tc.Columns[0].Type = "integer"
	tc.Actions = []string{"explode"}
	_, err = tc.TableSchema()
	assert.Error(t, err)
}
