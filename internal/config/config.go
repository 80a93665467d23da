// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
)

type StoreConfig struct {
	Backend string `yaml:"backend"`
	File    struct {
		Path string `yaml:"path"`
	} `yaml:"file"`
	SQLite struct {
		Filename string `yaml:"filename"`
	} `yaml:"sqlite"`
	Sheets struct {
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		Worksheet       string `yaml:"worksheet"`
		CredentialsFile string `yaml:"credentials_file"`
		CredentialsJSON string `yaml:"-"` // Loaded from environment
	} `yaml:"sheets"`
}

type ScheduleConfig struct {
	OpenHour  int  `yaml:"open_hour"`
	CloseHour int  `yaml:"close_hour"`
	ShowTimes bool `yaml:"show_times"`
}

type LimitsConfig struct {
	SubmitCooldown   time.Duration `yaml:"submit_cooldown"`
	SubmitMaxPerHour int           `yaml:"submit_max_per_hour"`
	TrustProxy       bool          `yaml:"trust_proxy"`
}

type NotificationsConfig struct {
	SlackWebhookURL string `yaml:"-"` // Loaded from environment
	SlackBotToken   string `yaml:"-"` // Loaded from environment
	SlackChannel    string `yaml:"slack_channel"`
	Email           struct {
		To              string `yaml:"to"`
		From            string `yaml:"from"`
		Region          string `yaml:"region"`
		AccessKeyID     string `yaml:"-"` // Loaded from environment
		SecretAccessKey string `yaml:"-"` // Loaded from environment
	} `yaml:"email"`
}

type JobsConfig struct {
	HealthProbe string `yaml:"health_probe"`
	DailyAgenda string `yaml:"daily_agenda"`
}

type Config struct {
	App struct {
		Name            string        `yaml:"name"`
		Environment     string        `yaml:"environment"`
		Port            int           `yaml:"port"`
		BaseURL         string        `yaml:"base_url"`
		StaticDir       string        `yaml:"static_dir"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"app"`

	Store         StoreConfig         `yaml:"store"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Limits        LimitsConfig        `yaml:"limits"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Jobs          JobsConfig          `yaml:"jobs"`
}

// Default returns the configuration used when no file overrides a value.
func Default() Config {
	var cfg Config
	cfg.App.Name = "Room Booking"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.App.StaticDir = "web/static"
	cfg.App.ShutdownTimeout = 30 * time.Second
	cfg.Store.Backend = BackendFile
	cfg.Store.File.Path = "data/reservations.json"
	cfg.Schedule.OpenHour = 9
	cfg.Schedule.CloseHour = 18
	cfg.Limits.SubmitCooldown = 2 * time.Second
	cfg.Limits.SubmitMaxPerHour = 60
	cfg.Notifications.Email.Region = "us-east-1"
	cfg.Jobs.HealthProbe = "*/5 * * * *"
	return cfg
}

// Load loads both .env and yaml configuration. A missing yaml file leaves the
// defaults in place.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnv loads secrets and deployment overrides from the environment.
func (c *Config) applyEnv() {
	c.Store.Sheets.CredentialsJSON = os.Getenv("SHEETS_CREDENTIALS_JSON")
	c.Notifications.SlackWebhookURL = os.Getenv("SLACK_WEBHOOK_URL")
	c.Notifications.SlackBotToken = os.Getenv("SLACK_BOT_TOKEN")
	c.Notifications.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	c.Notifications.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	if value, ok := os.LookupEnv("PORT"); ok {
		if port, err := strconv.Atoi(value); err == nil {
			c.App.Port = port
		}
	}
	if value, ok := os.LookupEnv("ENVIRONMENT"); ok && value != "" {
		c.App.Environment = value
	}
	if value, ok := os.LookupEnv("STATIC_DIR"); ok && value != "" {
		c.App.StaticDir = value
	}
	if value, ok := os.LookupEnv("STORE_BACKEND"); ok && value != "" {
		c.Store.Backend = value
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app port must be between 1 and 65535")
	}

	switch c.Store.Backend {
	case BackendFile:
		if c.Store.File.Path == "" {
			return fmt.Errorf("store file path is required for file backend")
		}
	case BackendSQLite:
		if c.Store.SQLite.Filename == "" {
			return fmt.Errorf("store sqlite filename is required for sqlite backend")
		}
	case BackendSheets:
		if c.Store.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("store sheets spreadsheet_id is required for sheets backend")
		}
		if c.Store.Sheets.CredentialsJSON == "" && c.Store.Sheets.CredentialsFile == "" {
			return fmt.Errorf("sheets credentials are required (SHEETS_CREDENTIALS_JSON or credentials_file)")
		}
	case "":
		return fmt.Errorf("store backend is required")
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Backend)
	}

	if c.Schedule.OpenHour < 0 || c.Schedule.CloseHour > 23 || c.Schedule.OpenHour >= c.Schedule.CloseHour {
		return fmt.Errorf("schedule hours must satisfy 0 <= open_hour < close_hour <= 23")
	}

	if c.Limits.SubmitCooldown < 0 || c.Limits.SubmitMaxPerHour < 0 {
		return fmt.Errorf("submission limits must not be negative")
	}

	if c.Notifications.Email.To != "" {
		if c.Notifications.Email.From == "" {
			return fmt.Errorf("notifications email from is required when to is set")
		}
		if c.Notifications.Email.Region == "" {
			return fmt.Errorf("notifications email region is required when to is set")
		}
	}

	if c.Notifications.SlackBotToken != "" && c.Notifications.SlackWebhookURL == "" && c.Notifications.SlackChannel == "" {
		return fmt.Errorf("notifications slack_channel is required with SLACK_BOT_TOKEN")
	}

	for name, expr := range map[string]string{
		"health_probe": c.Jobs.HealthProbe,
		"daily_agenda": c.Jobs.DailyAgenda,
	} {
		if expr == "" {
			continue
		}
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("jobs %s: invalid cron expression %q: %w", name, expr, err)
		}
	}

	return nil
}

// EmailEnabled reports whether SES notifications are configured. Static
// keys are optional; without them the default AWS credential chain is used.
func (c *Config) EmailEnabled() bool {
	e := c.Notifications.Email
	return e.To != "" && e.From != "" && e.Region != ""
}
