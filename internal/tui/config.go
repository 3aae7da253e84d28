package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const defaultServerURL = "http://localhost:8080"

type Config struct {
	ServerURL string `mapstructure:"server_url"`
	Email     string `mapstructure:"email"`
	LogFile   string `mapstructure:"log_file"`
	LogLevel  string `mapstructure:"log_level"`
}

// ConfigDir is ~/.config/taskboard, or the working directory when the home
// directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "taskboard")
}

func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func defaultConfig() *Config {
	return &Config{
		ServerURL: defaultServerURL,
		LogFile:   filepath.Join(ConfigDir(), "tui.log"),
		LogLevel:  "info",
	}
}

// LoadConfig reads the YAML file at path. A missing file yields the defaults.
// TASKBOARD_SERVER_URL and TASKBOARD_EMAIL override the file.
func LoadConfig(path string) (*Config, error) {
	defaults := defaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("taskboard")
	v.AutomaticEnv()

	v.SetDefault("server_url", defaults.ServerURL)
	v.SetDefault("email", defaults.Email)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("log_level", defaults.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError

		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}

	return cfg, nil
}

// SaveConfig writes cfg to path, creating parent directories if needed.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("server_url", cfg.ServerURL)
	v.Set("email", cfg.Email)
	v.Set("log_file", cfg.LogFile)
	v.Set("log_level", cfg.LogLevel)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
