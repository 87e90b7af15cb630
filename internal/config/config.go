package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from a yaml file with environment overrides.
type Config struct {
	LogLevel    string `yaml:"log_level" env:"TASKLINE_LOG_LEVEL" env-default:"INFO"`
	DatabaseURL string `yaml:"database_url" env:"TASKLINE_DATABASE_URL" env-required:"true"`
}

// Load reads the config file at path, or the environment alone when
// the path is empty or the file does not exist.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return Config{}, fmt.Errorf("read env: %w", err)
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	return cfg, nil
}

// SlogLevel maps the configured level name onto slog, defaulting to
// info for anything unknown.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "warn":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
