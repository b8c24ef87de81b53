package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tablekit/tablekit/internal/cli/output"
	"github.com/tablekit/tablekit/internal/config"
	"github.com/tablekit/tablekit/internal/schema"
	"github.com/tablekit/tablekit/internal/store"
)

type configKey struct{}

type loggerKey struct{}

// WithConfig stores the loaded configuration on the context; the root
// command does this once in its PersistentPreRunE.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// ConfigFrom returns the configuration stored on the context.
func ConfigFrom(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver: config.DefaultDriver,
			DSN:    config.DefaultDSN,
		},
		Output: config.DefaultOutput,
	}
}

// WithLogger stores the process logger on the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFrom returns the logger stored on the context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// CommandContext holds the dependencies shared by all database-touching
// commands: the open store and the table registry built from configuration.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Registry *schema.Registry
	Store    *store.SQLStore
}

// NewCommandContext opens the database and builds the table registry.
// Returns a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := ConfigFrom(cmd.Context())
	logger := LoggerFrom(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))

	st, err := store.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return nil, nil, err
	}

	reg, err := BuildRegistry(cmd.Context(), cfg, st)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	cleanup := func() { _ = st.Close() }
	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
		Registry: reg,
		Store:    st,
	}, cleanup, nil
}

// BuildRegistry converts the configured table declarations into a registry,
// introspecting column specs from the database where the config asks for it.
func BuildRegistry(ctx context.Context, cfg *config.Config, st store.Store) (*schema.Registry, error) {
	tables := make([]schema.TableSchema, 0, len(cfg.Tables))
	for _, tc := range cfg.Tables {
		ts, err := tc.TableSchema()
		if err != nil {
			return nil, err
		}
		if tc.Introspect {
			cols, err := st.Introspect(ctx, tc.Name)
			if err != nil {
				return nil, fmt.Errorf("introspecting table %s: %w", tc.Name, err)
			}
			ts.Columns = cols
		}
		tables = append(tables, ts)
	}
	return schema.NewRegistry(tables)
}
