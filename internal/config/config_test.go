package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesYAMLOverDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")
	path := writeConfig(t, `app:
  name: "Office Rooms"
  port: 9090
store:
  backend: sqlite
  sqlite:
    filename: data/rooms.db
schedule:
  open_hour: 8
  close_hour: 20
  show_times: true
limits:
  submit_cooldown: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Name != "Office Rooms" || cfg.App.Port != 9090 {
		t.Fatalf("app = %+v", cfg.App)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.SQLite.Filename != "data/rooms.db" {
		t.Fatalf("store = %+v", cfg.Store)
	}
	if cfg.Schedule.OpenHour != 8 || cfg.Schedule.CloseHour != 20 || !cfg.Schedule.ShowTimes {
		t.Fatalf("schedule = %+v", cfg.Schedule)
	}
	if cfg.Limits.SubmitCooldown != 5*time.Second {
		t.Fatalf("cooldown = %v", cfg.Limits.SubmitCooldown)
	}
	// Untouched defaults survive.
	if cfg.Limits.SubmitMaxPerHour != 60 || cfg.Jobs.HealthProbe != "*/5 * * * *" {
		t.Fatalf("defaults lost: %+v %+v", cfg.Limits, cfg.Jobs)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != BackendFile || cfg.Schedule.OpenHour != 9 || cfg.Schedule.CloseHour != 18 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadReadsSecretsFromEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SLACK_WEBHOOK_URL=https://hooks.example.com/abc\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("SLACK_WEBHOOK_URL") })
	t.Setenv("SHEETS_CREDENTIALS_JSON", `{"type":"service_account"}`)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("store:\n  backend: sheets\n  sheets:\n    spreadsheet_id: abc123\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Notifications.SlackWebhookURL != "https://hooks.example.com/abc" {
		t.Fatalf("slack webhook = %q", cfg.Notifications.SlackWebhookURL)
	}
	if cfg.Store.Sheets.CredentialsJSON == "" {
		t.Fatalf("sheets credentials not loaded from env")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, "unsupported store backend"},
		{"sheets without id", func(c *Config) { c.Store.Backend = BackendSheets }, "spreadsheet_id"},
		{"sheets without credentials", func(c *Config) {
			c.Store.Backend = BackendSheets
			c.Store.Sheets.SpreadsheetID = "abc"
		}, "credentials"},
		{"inverted hours", func(c *Config) { c.Schedule.OpenHour, c.Schedule.CloseHour = 18, 9 }, "open_hour < close_hour"},
		{"close past midnight", func(c *Config) { c.Schedule.CloseHour = 24 }, "close_hour <= 23"},
		{"bad cron", func(c *Config) { c.Jobs.DailyAgenda = "every morning" }, "daily_agenda"},
		{"email without from", func(c *Config) { c.Notifications.Email.To = "office@example.com" }, "from is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestEmailEnabled(t *testing.T) {
	tests := []struct {
		name              string
		to, from, region  string
		accessKey, secret string
		want              bool
	}{
		{"unset", "", "", "us-east-1", "", "", false},
		{"default credential chain", "office@example.com", "rooms@example.com", "us-east-1", "", "", true},
		{"static keys", "office@example.com", "rooms@example.com", "eu-west-1", "AKIA", "secret", true},
		{"missing sender", "office@example.com", "", "us-east-1", "AKIA", "secret", false},
		{"missing region", "office@example.com", "rooms@example.com", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Notifications.Email.To = tt.to
			cfg.Notifications.Email.From = tt.from
			cfg.Notifications.Email.Region = tt.region
			cfg.Notifications.Email.AccessKeyID = tt.accessKey
			cfg.Notifications.Email.SecretAccessKey = tt.secret
			if got := cfg.EmailEnabled(); got != tt.want {
				t.Fatalf("EmailEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadReadsBaseURL(t *testing.T) {
	path := writeConfig(t, "app:\n  base_url: \"https://rooms.example.com\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.BaseURL != "https://rooms.example.com" {
		t.Fatalf("base_url = %q", cfg.App.BaseURL)
	}
}
