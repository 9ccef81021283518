package config

import (
	"errors"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultBackendAddress = "127.0.0.1:8844"

const (
	defaultHistoryLimit           = 100
	defaultTaskLimit              = 100
	defaultPollIntervalSeconds    = 3
	defaultRefreshCooldownSeconds = 5
)

type Config struct {
	Backend BackendConfig `toml:"backend"`
	Console ConsoleConfig `toml:"console"`
	Logging LoggingConfig `toml:"logging"`
}

type BackendConfig struct {
	Address string `toml:"address"`
}

type ConsoleConfig struct {
	HistoryLimit           int `toml:"history_limit"`
	TaskLimit              int `toml:"task_limit"`
	PollIntervalSeconds    int `toml:"poll_interval_seconds"`
	RefreshCooldownSeconds int `toml:"refresh_cooldown_seconds"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		Backend: BackendConfig{
			Address: defaultBackendAddress,
		},
		Console: ConsoleConfig{
			HistoryLimit:           defaultHistoryLimit,
			TaskLimit:              defaultTaskLimit,
			PollIntervalSeconds:    defaultPollIntervalSeconds,
			RefreshCooldownSeconds: defaultRefreshCooldownSeconds,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFromPath(path)
}

func loadFromPath(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) BackendAddress() string {
	addr := strings.TrimSpace(c.Backend.Address)
	if addr == "" {
		return defaultBackendAddress
	}
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultBackendAddress
	}
	return addr
}

func (c Config) BackendBaseURL() string {
	return "http://" + c.BackendAddress()
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) HistoryLimit() int {
	if c.Console.HistoryLimit <= 0 {
		return defaultHistoryLimit
	}
	return c.Console.HistoryLimit
}

func (c Config) TaskLimit() int {
	if c.Console.TaskLimit <= 0 {
		return defaultTaskLimit
	}
	return c.Console.TaskLimit
}

func (c Config) PollInterval() time.Duration {
	seconds := c.Console.PollIntervalSeconds
	if seconds <= 0 {
		seconds = defaultPollIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

func (c Config) RefreshCooldown() time.Duration {
	seconds := c.Console.RefreshCooldownSeconds
	if seconds <= 0 {
		seconds = defaultRefreshCooldownSeconds
	}
	return time.Duration(seconds) * time.Second
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
