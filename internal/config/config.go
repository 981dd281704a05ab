package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config carries everything the client and the server read from the
// environment. DataDir defaults to ~/.soryn when unset.
type Config struct {
	APIBaseURL string `env:"SORYN_API_URL" envDefault:"http://localhost:5000"`
	ListenAddr string `env:"SORYN_LISTEN" envDefault:":5000"`
	DataDir    string `env:"SORYN_DATA_DIR"`
	OllamaHost string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OpenAIKey  string `env:"OPENAI_API_KEY"`
	GeminiKey  string `env:"GOOGLE_API_KEY"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	if cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(homeDir, ".soryn")
	}

	return cfg, nil
}

func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "soryn_history.db")
}

func (c *Config) ModelsPath() string {
	return filepath.Join(c.DataDir, "user_config.json")
}

func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "settings.json")
}
