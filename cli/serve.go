package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/wrenlabs/docsmith/config"
	"github.com/wrenlabs/docsmith/engine/convert"
	"github.com/wrenlabs/docsmith/engine/ooxml"
	"github.com/wrenlabs/docsmith/history"
	docotel "github.com/wrenlabs/docsmith/otel"
	"github.com/wrenlabs/docsmith/server"
	"github.com/wrenlabs/docsmith/tool"
	"github.com/wrenlabs/docsmith/workspace"
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve document operations over MCP on stdin/stdout",
		RunE:  runServe,
	}

	cmd.Flags().String("config", "", "Path to docsmith.yaml config file")
	cmd.Flags().String("root", "", "Documents root directory (overrides config and WORD_FILES_PATH)")
	cmd.Flags().String("soffice", "", "Path to the external converter binary")
	cmd.Flags().String("history-db", "", "SQLite database for conversion history (default: in-memory)")
	cmd.Flags().Duration("history-retention", 0, "Prune conversion history older than this window (0 disables)")
	cmd.Flags().String("history-schedule", "", "Cron schedule for the history sweep (default hourly)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd)
	slog.SetDefault(logger)

	explicitConfigPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(explicitConfigPath)
	if err != nil {
		return exitError(exitConfig, "loading configuration: %v", err)
	}
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		cfg.RootDir = root
	}
	if soffice, _ := cmd.Flags().GetString("soffice"); soffice != "" {
		cfg.SofficePath = soffice
	}
	if db, _ := cmd.Flags().GetString("history-db"); db != "" {
		cfg.HistoryDB = db
	}
	retention, _ := cmd.Flags().GetDuration("history-retention")
	if retention < 0 {
		return exitError(exitValidation, "--history-retention must not be negative, got %s", retention)
	}
	if retention > 0 {
		cfg.HistoryRetention = config.Duration(retention)
	}
	if schedule, _ := cmd.Flags().GetString("history-schedule"); schedule != "" {
		cfg.HistorySchedule = schedule
	}

	version := "dev"
	if root := cmd.Root(); root != nil && root.Version != "" {
		version = root.Version
	}

	shutdownTracing, err := docotel.Setup(cmd.Context(), "docsmith", version)
	if err != nil {
		return exitError(exitConfig, "initializing tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	observer, err := docotel.NewOperationObserver(
		otelapi.GetMeterProvider().Meter("docsmith/tool"),
		otelapi.GetTracerProvider().Tracer("docsmith/tool"),
	)
	if err != nil {
		return fmt.Errorf("initializing operation observability: %w", err)
	}
	tool.SetObserver(observer)
	defer tool.SetObserver(nil)

	ws, err := workspace.New(cfg.RootDir)
	if err != nil {
		return exitError(exitConfig, "preparing documents root: %v", err)
	}
	logger.Info("documents root ready", "root", ws.Root())

	eng := ooxml.New()
	converter, err := convert.New(convert.Options{
		Engine:      eng,
		SofficePath: cfg.SofficePath,
	})
	if err != nil {
		return fmt.Errorf("creating converter: %w", err)
	}

	var store history.Store
	if cfg.HistoryDB != "" {
		sqlStore, err := history.NewSQLiteStore(cfg.HistoryDB)
		if err != nil {
			return exitError(exitConfig, "opening history database: %v", err)
		}
		defer func() {
			_ = sqlStore.Close()
		}()
		store = sqlStore
		logger.Info("conversion history persisted", "path", cfg.HistoryDB)
	} else {
		store = history.NewMemStore()
	}

	if cfg.HistoryRetention.Std() > 0 {
		sweeper, err := history.NewSweeper(history.SweeperConfig{
			Store:     store,
			Retention: cfg.HistoryRetention.Std(),
			Schedule:  cfg.HistorySchedule,
			Logger:    logger,
		})
		if err != nil {
			return exitError(exitConfig, "configuring history sweep: %v", err)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	dispatcher, err := tool.NewDispatcher(tool.Config{
		Workspace: ws,
		Engine:    eng,
		Merger:    eng,
		Converter: converter,
		History:   store,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	srv, err := server.New(server.Options{
		Name:       "docsmith",
		Version:    version,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(srv)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return nil
	case err := <-errCh:
		if err != nil {
			return exitError(exitRuntime, "mcp server: %v", err)
		}
		return nil
	}
}

// newLogger builds the process logger. Output goes to stderr because stdout
// carries the MCP stream.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
