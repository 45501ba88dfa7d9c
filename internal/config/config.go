// Package config loads GlazePal configuration from flags, environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Store  StoreConfig
	Edits  EditConfig
	Search SearchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StoreConfig holds the local store configuration.
type StoreConfig struct {
	// DataPath is the directory holding the badger database, the search
	// index and the local image copies (default: ~/GlazePal).
	DataPath string
	// QueryRetryAttempts is the number of attempts for a read query (default: 2).
	QueryRetryAttempts int
}

// EditConfig holds timings for the edit boundary.
type EditConfig struct {
	// SaveCooldown re-enables a save action after submission (default: 400ms).
	SaveCooldown time.Duration
	// DeleteCooldown re-enables a delete action after submission (default: 1s).
	DeleteCooldown time.Duration
}

// SearchConfig holds search configuration.
type SearchConfig struct {
	// Enabled keeps the full-text catalog index in sync (default: true).
	Enabled bool
	// Debounce is the quiet period before a typed query is applied (default: 400ms).
	Debounce time.Duration
}

// Flags carries raw command-line values. Empty strings mean "not set".
// The CLI binds these to its persistent flags.
type Flags struct {
	Env            string
	LogLevel       string
	DataPath       string
	QueryRetries   string
	SaveCooldown   string
	DeleteCooldown string
	Debounce       string
	SearchEnabled  string
	EnvFile        string
}

// Load builds a Config with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(flags Flags) (*Config, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env file is fine.
	_ = loadEnvFile(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(flags.LogLevel, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			DataPath:           getConfigValue(flags.DataPath, "DATA_PATH", ""),
			QueryRetryAttempts: getIntConfigValue(flags.QueryRetries, "QUERY_RETRY_ATTEMPTS", 2),
		},
		Search: SearchConfig{
			Enabled: getBoolConfigValue(flags.SearchEnabled, "SEARCH_ENABLED", true),
		},
	}

	var err error
	if cfg.Edits.SaveCooldown, err = getDurationConfigValue(flags.SaveCooldown, "SAVE_COOLDOWN", "400ms"); err != nil {
		return nil, err
	}
	if cfg.Edits.DeleteCooldown, err = getDurationConfigValue(flags.DeleteCooldown, "DELETE_COOLDOWN", "1s"); err != nil {
		return nil, err
	}
	if cfg.Search.Debounce, err = getDurationConfigValue(flags.Debounce, "SEARCH_DEBOUNCE", "400ms"); err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when nothing is set, rooted at dataPath.
func Default(dataPath string) *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Store:  StoreConfig{DataPath: dataPath, QueryRetryAttempts: 2},
		Edits:  EditConfig{SaveCooldown: 400 * time.Millisecond, DeleteCooldown: time.Second},
		Search: SearchConfig{Enabled: true, Debounce: 400 * time.Millisecond},
	}
}

// DatabasePath is the badger directory under the data path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Store.DataPath, "db")
}

// SearchIndexPath is the bleve index directory under the data path.
func (c *Config) SearchIndexPath() string {
	return filepath.Join(c.Store.DataPath, "search")
}

// ImagesPath is the local image copy directory under the data path.
func (c *Config) ImagesPath() string {
	return filepath.Join(c.Store.DataPath, "images")
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"test":        true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, test, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Store.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Store.QueryRetryAttempts < 1 {
		return fmt.Errorf("query retry attempts must be at least 1, got %d", c.Store.QueryRetryAttempts)
	}

	if c.Edits.SaveCooldown < 0 || c.Edits.DeleteCooldown < 0 || c.Search.Debounce < 0 {
		return errors.New("durations cannot be negative")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data path to ~/GlazePal.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Store.DataPath, filepath.Join(homeDir, "GlazePal"))
	if err != nil {
		return err
	}
	c.Store.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
