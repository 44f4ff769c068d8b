package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	API     APIConfig
	Log     LogConfig
	Console ConsoleConfig
}

type ServerConfig struct {
	Port               int
	RenderWait         time.Duration
	SessionIdleTimeout time.Duration
	MaxSessions        int
}

// APIConfig points at the orders backend.
type APIConfig struct {
	URL     string
	Timeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type ConsoleConfig struct {
	LowStockThreshold  int
	DashboardListLimit int
	NotificationTTL    time.Duration
	Locale             string
	Currency           string
	MessagesFile       string
}

// Load reads the configuration from the environment. The given dotenv files
// are applied first when they exist; variables already set win.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	if err := v.BindEnv("API_URL", "API_URL", "REACT_APP_API_URL"); err != nil {
		return nil, err
	}

	v.SetDefault("SERVER_PORT", 3000)
	v.SetDefault("API_URL", "http://localhost:8080/api")
	v.SetDefault("API_TIMEOUT", "10000ms")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOW_STOCK_THRESHOLD", 10)
	v.SetDefault("DASHBOARD_LIST_LIMIT", 5)
	v.SetDefault("NOTIFICATION_TTL", "6s")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "30m")
	v.SetDefault("SESSION_MAX", 1000)
	v.SetDefault("RENDER_WAIT", "300ms")
	v.SetDefault("LOCALE", "pt-BR")
	v.SetDefault("CURRENCY", "BRL")
	v.SetDefault("MESSAGES_FILE", "")

	apiTimeout, err := parseDuration(v.GetString("API_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("API_TIMEOUT: %w", err)
	}
	notificationTTL, err := parseDuration(v.GetString("NOTIFICATION_TTL"))
	if err != nil {
		return nil, fmt.Errorf("NOTIFICATION_TTL: %w", err)
	}
	idleTimeout, err := parseDuration(v.GetString("SESSION_IDLE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT: %w", err)
	}
	renderWait, err := parseDuration(v.GetString("RENDER_WAIT"))
	if err != nil {
		return nil, fmt.Errorf("RENDER_WAIT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               v.GetInt("SERVER_PORT"),
			RenderWait:         renderWait,
			SessionIdleTimeout: idleTimeout,
			MaxSessions:        v.GetInt("SESSION_MAX"),
		},
		API: APIConfig{
			URL:     strings.TrimRight(v.GetString("API_URL"), "/"),
			Timeout: apiTimeout,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Console: ConsoleConfig{
			LowStockThreshold:  v.GetInt("LOW_STOCK_THRESHOLD"),
			DashboardListLimit: v.GetInt("DASHBOARD_LIST_LIMIT"),
			NotificationTTL:    notificationTTL,
			Locale:             v.GetString("LOCALE"),
			Currency:           v.GetString("CURRENCY"),
			MessagesFile:       v.GetString("MESSAGES_FILE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT %d out of range", c.Server.Port)
	}
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_URL %q must be an absolute URL", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	if c.Console.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}
	if c.Console.DashboardListLimit <= 0 {
		return errors.New("DASHBOARD_LIST_LIMIT must be positive")
	}
	return nil
}

// parseDuration accepts Go durations and bare millisecond counts.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}
