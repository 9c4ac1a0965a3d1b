package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

// Config holds every runtime setting, read from the environment (and .env)
type Config struct {
	Env         string        `env:"TASKDESK_ENV" env-default:"prod"`
	APIURL      string        `env:"TASKDESK_API_URL" env-default:"http://localhost:5000"`
	HTTPTimeout time.Duration `env:"TASKDESK_HTTP_TIMEOUT" env-default:"0s"`
	DataDir     string        `env:"TASKDESK_DATA_DIR"`
	LogLevel    string        `env:"TASKDESK_LOG_LEVEL" env-default:"info"`
	ListenAddr  string        `env:"TASKDESK_LISTEN_ADDR" env-default:":5000"`
}

// Load reads the environment and fills in derived defaults
func Load() (*Config, error) {
	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	switch cfg.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return nil, fmt.Errorf("unknown env: %s", cfg.Env)
	}

	if cfg.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}

	return cfg, nil
}

// EnsureDataDir creates the data directory if needed
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

// ClientDBPath is where the TUI keeps its settings
func (c *Config) ClientDBPath() string {
	return filepath.Join(c.DataDir, "taskdesk.db")
}

// ServerDBPath is the reference server's database
func (c *Config) ServerDBPath() string {
	return filepath.Join(c.DataDir, "server.db")
}

// LogPath is the TUI's log file; stdout belongs to the terminal UI
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "taskdesk.log")
}

// Usage describes the environment variables for --help output
func Usage() string {
	desc, err := cleanenv.GetDescription(new(Config), nil)
	if err != nil {
		return ""
	}
	return desc
}

// defaultDataDir uses the XDG data directory or falls back to the home directory
func defaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "taskdesk"), nil
}
