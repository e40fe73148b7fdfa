package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithConfigFile(writeFile(t, t.TempDir(), "config.yml", "")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Scrapper.Port != 8888 {
		t.Errorf("scrapper port = %d, want 8888", cfg.Scrapper.Port)
	}
	if cfg.Bot.Port != 7777 {
		t.Errorf("bot port = %d, want 7777", cfg.Bot.Port)
	}
	if cfg.Database.Port != 6577 || cfg.Database.Name != "tbank" {
		t.Errorf("database defaults = %+v", cfg.Database)
	}
	if cfg.Notify.Type != "kafka" {
		t.Errorf("notify type = %q", cfg.Notify.Type)
	}
}

func TestLoadConfigFile(t *testing.T) {
	content := `
logging:
  level: debug
scrapper:
  port: 9999
scheduler:
  timezone: UTC
`
	cfg, err := Load(WithConfigFile(writeFile(t, t.TempDir(), "config.yml", content)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Scrapper.Port != 9999 {
		t.Errorf("scrapper port = %d", cfg.Scrapper.Port)
	}
	if cfg.Scheduler.Timezone != "UTC" {
		t.Errorf("timezone = %q", cfg.Scheduler.Timezone)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	content := "logging:\n  level: info\n"
	t.Setenv("LINKTRACK_LOGGING_LEVEL", "warn")
	t.Setenv("LINKTRACK_DATABASE_PAGE_SIZE", "25")

	cfg, err := Load(WithConfigFile(writeFile(t, t.TempDir(), "config.yml", content)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q, env must win over file", cfg.Logging.Level)
	}
	if cfg.Database.PageSize != 25 {
		t.Errorf("page size = %d", cfg.Database.PageSize)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "LINKTRACK_TELEGRAM_TOKEN=123:abc\n")
	cfgFile := writeFile(t, dir, "config.yml", "")

	cfg, err := Load(WithConfigFile(cfgFile), WithEnvFile(envFile))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	t.Cleanup(func() { os.Unsetenv("LINKTRACK_TELEGRAM_TOKEN") })
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	content := "scrapper:\n  port: -5\n"
	if _, err := Load(WithConfigFile(writeFile(t, t.TempDir(), "config.yml", content))); err == nil {
		t.Fatal("invalid port must fail validation")
	}
}
