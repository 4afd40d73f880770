package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phrazzld/thinkforge-api/internal/config"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/platform/postgres"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := postgres.Open(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}

			app, err := newApplication(ctx, cfg, log, db)
			if err != nil {
				_ = db.Close()
				return err
			}
			return app.Run(ctx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := postgres.Open(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			log.Info("running migrations", slog.String("command", args[0]))
			if err := postgres.Migrate(ctx, db.DB, args[0], log); err != nil {
				return fmt.Errorf("migration %s failed: %w", args[0], err)
			}
			log.Info("migrations finished", slog.String("command", args[0]))
			return nil
		},
	}
}

// loadConfig reads configuration using the root flags and installs the
// configured logger as the process default.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	opts := config.DefaultOptions()
	if dir, _ := cmd.Flags().GetString("config-dir"); dir != "" {
		opts.ConfigDirs = []string{dir}
	}
	if envFile, err := cmd.Flags().GetString("env-file"); err == nil {
		opts.EnvFile = envFile
	}

	cfg, err := config.LoadWithOptions(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("llm_provider", cfg.LLM.Provider))
	return cfg, log, nil
}
