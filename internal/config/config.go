package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the desk's runtime settings.
type Config struct {
	APIURL             string
	LogFile            string
	LogLevel           string
	RequestTimeout     time.Duration
	ConsoleFallbackURL string
	Greeting           string
}

const (
	defaultConfigPath = "~/.config/triagedesk/config.toml"
	defaultLogFile    = "~/.local/state/triagedesk/triagedesk.log"
	defaultAPIURL     = "127.0.0.1:5000"
	defaultLogLevel   = "info"
	defaultGreeting   = "Olá. Eu sou o CardioIA.\n\nPosso ajudar com atendimento inicial, triagem de sinais de alerta e pré-agendamento de consulta.\n\nComo posso te ajudar agora?"
)

// Environment variables that override the file.
const (
	EnvAPIURL   = "TRIAGEDESK_API_URL"
	EnvLogLevel = "TRIAGEDESK_LOG_LEVEL"
	EnvLogFile  = "TRIAGEDESK_LOG_FILE"
)

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		APIURL:   defaultAPIURL,
		LogFile:  mustExpand(defaultLogFile),
		LogLevel: defaultLogLevel,
		Greeting: defaultGreeting,
	}
}

// Load reads the config file at path (or the default location), then applies
// a .env file from the working directory and the TRIAGEDESK_* environment
// variables on top. A missing file is not an error.
func Load(path string) (Config, error) {
	// Variables already set in the environment win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := loadFile(path)
	if err != nil {
		return Config{}, err
	}
	applyEnv(&cfg, os.LookupEnv)
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL             string  `toml:"api_url"`
		LogFile            string  `toml:"log_file"`
		LogLevel           string  `toml:"log_level"`
		RequestTimeout     string  `toml:"request_timeout"`
		ConsoleFallbackURL string  `toml:"console_fallback_url"`
		Greeting           *string `toml:"greeting"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("parse config: request_timeout %q is not a valid duration", v)
		}
		cfg.RequestTimeout = d
	}
	cfg.ConsoleFallbackURL = strings.TrimSpace(raw.ConsoleFallbackURL)
	// An explicit empty greeting turns it off.
	if raw.Greeting != nil {
		cfg.Greeting = strings.TrimSpace(*raw.Greeting)
	}

	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		cfg.APIURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvLogFile); ok && strings.TrimSpace(v) != "" {
		cfg.LogFile = mustExpand(v)
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
