package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tgienger/taskdesk/internal/config"
	"github.com/tgienger/taskdesk/internal/db"
	"github.com/tgienger/taskdesk/internal/logger"
	"github.com/tgienger/taskdesk/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference task service",
	Long: `Run the reference task service backed by SQLite.

Examples:
  taskdesk serve
  taskdesk serve --listen :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "listen", "", "listen address (overrides TASKDESK_LISTEN_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	log, err := logger.New(cfg, os.Stdout)
	if err != nil {
		return err
	}

	database, err := db.New(cfg.ServerDBPath())
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("addr", cfg.ListenAddr).Str("db", cfg.ServerDBPath()).Msg("serving")
	return server.New(database, log).Run(ctx, cfg.ListenAddr)
}
