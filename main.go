package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/vigil/demo-requests/internal/config"
	"github.com/vigil/demo-requests/internal/handler"
	"github.com/vigil/demo-requests/internal/logging"
	"github.com/vigil/demo-requests/internal/manager"
	"github.com/vigil/demo-requests/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol; logs go to stderr.
	logger := logging.New(cfg.LogLevel, os.Stderr)

	st, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Backend).Msg("failed to open store")
	}

	m := manager.NewRequestManager(st, manager.NewBroker(), cfg.AllowedStatuses)

	s := server.NewMCPServer(
		"demo-requests",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	handler.New(m).Register(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go handler.ForwardEvents(ctx, s, m.Broker())

	logger.Info().Str("backend", cfg.Backend).Msg("serving demo requests over stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Error().Err(err).Msg("server error")
	}
}

func openStore(cfg *config.Config, logger zerolog.Logger) (store.Store, error) {
	opts := []store.Option{store.WithLogger(logger)}

	if cfg.Backend == config.BackendMemory {
		return store.NewMemoryStore(opts...), nil
	}

	if err := os.MkdirAll(cfg.DataPath(), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := store.OpenSQLite(cfg.SQLitePath())
		if err != nil {
			return nil, err
		}
		return store.NewSQLiteStore(db, opts...), nil
	default:
		return store.NewFileStore(cfg.RequestsPath(), opts...), nil
	}
}
