// Package config provides centralized configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// DefaultBaseURL is the OpenRouter OpenAI-compatible API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Env holds the environment variables the client reads.
type Env struct {
	// APIKey is the OpenRouter bearer credential (OPENROUTER_API_KEY)
	APIKey string

	// BaseURL overrides the API root (OPENROUTER_BASE_URL)
	BaseURL string

	// PanelPath points at an explicit panel config file (OPENROUTER_PANEL)
	PanelPath string

	// LogLevel is the logrus level name (LOG_LEVEL)
	LogLevel string
}

var (
	env     *Env
	envOnce sync.Once
)

// Load returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Load() *Env {
	envOnce.Do(func() {
		env = &Env{
			APIKey:    strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
			BaseURL:   getEnvDefault("OPENROUTER_BASE_URL", DefaultBaseURL),
			PanelPath: os.Getenv("OPENROUTER_PANEL"),
			LogLevel:  os.Getenv("LOG_LEVEL"),
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MissingCredentialError reports that no API key is configured.
type MissingCredentialError struct {
	Var string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s not set", e.Var)
}

// RequireCredential is the pre-flight check run before any backend call.
func (e *Env) RequireCredential() error {
	if e.APIKey == "" {
		return &MissingCredentialError{Var: "OPENROUTER_API_KEY"}
	}
	return nil
}

// DotEnvCandidates lists .env locations in lookup order:
// working directory, home directory, then the executable's directory.
func DotEnvCandidates() []string {
	candidates := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".env"))
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), ".env"))
	}
	return candidates
}

// LoadDotEnv loads the first existing file among candidates into the process
// environment. Variables already set are not overridden. Returns the loaded
// path, or "" when none exists.
func LoadDotEnv(candidates ...string) (string, error) {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return path, fmt.Errorf("load %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

// Paths holds standard client directory paths.
type Paths struct {
	// Home is the config directory (~/.config/openrouter)
	Home string

	// Panel is the global panel file (~/.config/openrouter/panel.json)
	Panel string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration.
// XDG_CONFIG_HOME is honoured when set.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				home = "."
			}
			base = filepath.Join(home, ".config")
		}
		dir := filepath.Join(base, "openrouter")
		paths = &Paths{
			Home:  dir,
			Panel: filepath.Join(dir, "panel.json"),
		}
	})
	return paths
}

// ResetPaths resets the cached paths (for testing).
func ResetPaths() {
	pathsOnce = sync.Once{}
	paths = nil
}

