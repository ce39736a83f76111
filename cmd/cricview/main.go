package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/utakatalp/cricview/internal/config"
	"github.com/utakatalp/cricview/internal/cricbuzz"
	"github.com/utakatalp/cricview/internal/server"
	"github.com/utakatalp/cricview/internal/store"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cricview",
	Short: "Cricket analytics dashboard over the Cricbuzz API and Postgres",
	Long: `cricview serves a cricket analytics dashboard backed by two sources:
the Cricbuzz API on RapidAPI for live matches and player statistics, and
Postgres for the top-players table and predefined analytics queries.

Configuration comes from CRICVIEW_* environment variables; at minimum set
CRICVIEW_RAPIDAPI_KEY and CRICVIEW_DATABASE_URL.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateAPI(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.DatabaseURL, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	client := cricbuzz.New(cricbuzz.Config{
		Host:         cfg.RapidAPIHost,
		Key:          cfg.RapidAPIKey,
		Timeout:      cfg.RequestTimeout,
		Rate:         cfg.APIRate,
		LiveTTL:      cfg.LiveTTL,
		ScorecardTTL: cfg.ScorecardTTL,
		PlayerTTL:    cfg.PlayerTTL,
	}, logger.Named("cricbuzz"))

	handler := server.NewHandler(client, st, logger.Named("http"))
	srv, err := server.New(cfg.Addr, handler, logger.Named("http"))
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DatabaseURL, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(cmd.Context()); err != nil {
		return err
	}
	logger.Info("schema is up to date")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
