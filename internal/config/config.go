package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/spf13/viper"
)

// logRetention is how long log files are kept before pruning.
const logRetention = 7 * 24 * time.Hour

type Config struct {
	v      *viper.Viper
	Logger *log.Logger

	logMu   sync.Mutex
	logFile *os.File
}

// NewConfig loads the bot configuration. A bot token is required.
func NewConfig() (*Config, error) {
	cfg, err := load(true)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewToolConfig loads the configuration for command line tools. It logs to
// stderr only and does not require a bot token.
func NewToolConfig() (*Config, error) {
	return load(false)
}

func load(withLogFile bool) (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Try to read config file (don't error if it doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		// Config file can't be read, continue with env vars and defaults
		l := log.New(os.Stderr)
		l.Warnf("error reading config file: %v\nContinuing with envs...", err)
	}

	// Bind environment variables
	if err := bindEnvs(v); err != nil {
		// If env binding also fails, we'll basically have no config
		// and need to exit at this point.
		return nil, fmt.Errorf("error binding environment variables: %w", err)
	}

	cfg := &Config{
		v:      v,
		Logger: log.New(os.Stderr),
	}

	if withLogFile {
		// Log both to a file and to stderr
		if err := cfg.RotateAndPruneLogs(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// RotateAndPruneLogs starts a fresh log file and removes files older than a
// week.
func (c *Config) RotateAndPruneLogs() error {
	dir := c.GetLogDir()

	f, err := newLogFile(dir)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	c.logMu.Lock()
	old := c.logFile
	c.logFile = f
	c.Logger.SetOutput(io.MultiWriter(os.Stderr, f))
	c.logMu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	if err := pruneOldLogFiles(dir, time.Now()); err != nil {
		return fmt.Errorf("failed to prune old log files: %w", err)
	}
	return nil
}

// newLogFile generates a new log file
func newLogFile(dir string) (*os.File, error) {
	if dir == "" {
		return nil, fmt.Errorf("log directory is not set")
	}

	// Create dir if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create a new log file with timestamp
	name := fmt.Sprintf("palbot_%s.log", time.Now().Format("20060102_150405.000"))
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// pruneOldLogFiles removes log files last written before now - logRetention.
func pruneOldLogFiles(dir string, now time.Time) error {
	logFiles, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	for _, file := range logFiles {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".log") {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > logRetention {
			if err := os.Remove(filepath.Join(dir, file.Name())); err != nil {
				return fmt.Errorf("failed to remove old log file %s: %w", file.Name(), err)
			}
		}
	}

	return nil
}

// NewMockConfig creates a mock configuration for testing
func NewMockConfig(kv map[string]interface{}) *Config {
	v := viper.New()
	setDefaults(v)
	for k, val := range kv {
		v.Set(k, val)
	}
	return &Config{
		v:      v,
		Logger: log.New(os.Stderr),
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_dir", "./logs")
	v.SetDefault("database_path", "./palbot.db")
	v.SetDefault("duckling_port", 8000)
	v.SetDefault("time_parser", "duckling")
	v.SetDefault("mangadex_base_url", "https://api.mangadex.org")
	v.SetDefault("pagination_timeout", 3*time.Minute)
	v.SetDefault("page_prompt_timeout", 2*time.Minute)
}

// bindEnvs binds environment variables to viper keys
func bindEnvs(v *viper.Viper) error {
	keys := []string{
		"bot_token",
		"owner_id",
		"log_dir",
		"database_path",
		"duckling_host",
		"duckling_port",
		"time_parser",
		"reddit_user_agent",
		"mangadex_base_url",
		"igdb_client_id",
		"igdb_client_token",
		"pagination_timeout",
		"page_prompt_timeout",
	}

	for _, key := range keys {
		env := "PALBOT_" + strings.ToUpper(key)
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("error binding %s environment variable: %w", key, err)
		}
	}
	return nil
}

// validateConfig validates that all required configuration fields are present
func validateConfig(cfg *Config) error {
	if cfg.GetBotToken() == "" {
		return fmt.Errorf("bot_token is required (set PALBOT_BOT_TOKEN environment variable)")
	}

	if cfg.GetTimeParser() == TimeParserDuckling && cfg.GetDucklingURL() == "" {
		cfg.Logger.Warn("duckling_host is not set, time arguments will fail (set PALBOT_DUCKLING_HOST or time_parser: dateparser)")
	}

	if cfg.GetIGDBClientID() == "" || cfg.GetIGDBClientToken() == "" {
		cfg.Logger.Warn("igdb_client_id or igdb_client_token is not set, /game is disabled")
	}

	if cfg.GetOwnerID() == "" {
		cfg.Logger.Warn("owner_id is not set, only the invoking user can control pagination menus")
	}

	return nil
}
