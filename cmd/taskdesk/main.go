package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/tgienger/taskdesk/internal/api"
	"github.com/tgienger/taskdesk/internal/config"
	"github.com/tgienger/taskdesk/internal/db"
	"github.com/tgienger/taskdesk/internal/logger"
	"github.com/tgienger/taskdesk/internal/state"
	"github.com/tgienger/taskdesk/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var apiURL string

func main() {
	rootCmd := &cobra.Command{
		Use:     "taskdesk",
		Short:   "Terminal client for a task tracking service",
		Long:    "Terminal client for a task tracking service.\n\nEnvironment:\n" + config.Usage(),
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE:    runTUI,
	}
	rootCmd.Flags().StringVar(&apiURL, "api-url", "", "task service base URL (overrides TASKDESK_API_URL)")

	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// the terminal belongs to the UI, so logs go to a file
	log, closer, err := logger.NewFile(cfg, cfg.LogPath())
	if err != nil {
		return err
	}
	defer closer.Close()

	database, err := db.New(cfg.ClientDBPath())
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer database.Close()

	client := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(log),
	)
	log.Info().Str("api_url", cfg.APIURL).Str("version", version).Msg("starting")

	app := ui.NewApp(state.New(client, log), database, log)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
