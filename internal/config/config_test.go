package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
telegram:
  token: "123:abc"
  admin_id: 42
  news_channel_url: "https://t.me/school_news"

source:
  page_url: "https://school.example/raspisanie/"
  fetch_timeout: "10s"
  probe_parallelism: 3

database:
  dsn: "postgres://u:p@localhost:5432/timetable"
  max_conns: 4
  min_conns: 1

watcher:
  min_interval: "1m"
  max_interval: "2m"

extract:
  dialect: "paired"

log:
  level: "debug"
  format: "text"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("telegram.token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 42 {
		t.Errorf("telegram.admin_id = %d, want 42", cfg.Telegram.AdminID)
	}
	if cfg.Source.PageURL != "https://school.example/raspisanie/" {
		t.Errorf("source.page_url = %q", cfg.Source.PageURL)
	}
	if cfg.Source.FetchTimeout != 10*time.Second {
		t.Errorf("source.fetch_timeout = %v, want 10s", cfg.Source.FetchTimeout)
	}
	if cfg.Source.ProbeParallelism != 3 {
		t.Errorf("source.probe_parallelism = %d, want 3", cfg.Source.ProbeParallelism)
	}
	if cfg.Source.UserAgent != "ScheduleBot/1.0" {
		t.Errorf("source.user_agent = %q, want default", cfg.Source.UserAgent)
	}
	if cfg.Database.MaxConns != 4 {
		t.Errorf("database.max_conns = %d, want 4", cfg.Database.MaxConns)
	}
	if cfg.Watcher.MaxInterval != 2*time.Minute {
		t.Errorf("watcher.max_interval = %v, want 2m", cfg.Watcher.MaxInterval)
	}
	if cfg.Extract.Dialect != "paired" {
		t.Errorf("extract.dialect = %q, want paired", cfg.Extract.Dialect)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want text", cfg.Log.Format)
	}
	if err := cfg.ValidateBot(); err != nil {
		t.Errorf("ValidateBot() = %v", err)
	}
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Source.ProbeParallelism != 6 {
		t.Errorf("source.probe_parallelism = %d, want 6", cfg.Source.ProbeParallelism)
	}
	if cfg.Watcher.MinInterval != 5*time.Minute || cfg.Watcher.MaxInterval != 10*time.Minute {
		t.Errorf("watcher intervals = %v..%v, want 5m..10m", cfg.Watcher.MinInterval, cfg.Watcher.MaxInterval)
	}
	if cfg.Extract.Dialect != "fallback" {
		t.Errorf("extract.dialect = %q, want fallback", cfg.Extract.Dialect)
	}

	err = cfg.ValidateBot()
	if err == nil {
		t.Fatal("ValidateBot() should fail without token and dsn")
	}
	for _, want := range []string{"telegram.token", "database.dsn"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("ValidateBot() = %q, want mention of %s", err, want)
		}
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Source: SourceConfig{
				PageURL:          "https://school.example/",
				FetchTimeout:     time.Second,
				ProbeParallelism: 6,
			},
			Watcher: WatcherConfig{MinInterval: time.Minute, MaxInterval: time.Minute},
			Extract: ExtractConfig{Dialect: "fallback"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Valid", func(*Config) {}, ""},
		{"Bad page url", func(c *Config) { c.Source.PageURL = "not a url" }, "source.page_url"},
		{"Zero parallelism", func(c *Config) { c.Source.ProbeParallelism = 0 }, "probe_parallelism"},
		{"Inverted intervals", func(c *Config) { c.Watcher.MaxInterval = time.Second }, "watcher"},
		{"Unknown dialect", func(c *Config) { c.Extract.Dialect = "columns" }, "extract.dialect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
