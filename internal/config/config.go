package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultAPIURL = "http://localhost:8082/api/v1"

type App struct {
	Name string `yaml:"name" env:"APP_NAME"`
	Host string `yaml:"host" env:"HTTP_HOST"`
	Port string `yaml:"port" env:"HTTP_PORT"`
}

type API struct {
	BaseURL string        `yaml:"base_url" env:"STOREFRONT_API_URL"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT"`
}

type Storage struct {
	// Path of the bolt file keeping the session. Empty keeps it in memory.
	Path string `yaml:"path" env:"SESSION_DB_PATH"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
}

type Config struct {
	App     App     `yaml:"app"`
	API     API     `yaml:"api"`
	Storage Storage `yaml:"storage"`
	Log     Log     `yaml:"log"`
}

func defaults() *Config {
	return &Config{
		App: App{
			Name: "storefront",
			Host: "127.0.0.1",
			Port: "3000",
		},
		API: API{
			BaseURL: DefaultAPIURL,
			Timeout: 30 * time.Second,
		},
		Storage: Storage{
			Path: "storefront.db",
		},
		Log: Log{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at yamlPath (if
// given), then .env at envPath (if present), then the process environment.
func Load(yamlPath, envPath string) (*Config, error) {
	cfg := defaults()

	if yamlPath != "" {
		file, err := os.Open(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("failed open config file: %w", err)
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file: %w", err)
		}
	}

	if envPath != "" {
		// .env необязателен
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	if cfg.API.BaseURL == "" {
		return nil, errors.New("STOREFRONT_API_URL must not be empty")
	}
	if cfg.API.Timeout <= 0 {
		return nil, fmt.Errorf("API_TIMEOUT must be positive, got %s", cfg.API.Timeout)
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return c.App.Host + ":" + c.App.Port
}
