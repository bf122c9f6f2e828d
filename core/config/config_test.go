package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{Telegram: TelegramConfig{Token: "token"}}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if cfg.Catalog.Backend != CatalogFile || cfg.Catalog.Path != defaultCatalogPath || cfg.Catalog.PageSize != defaultPageSize {
		t.Fatalf("catalog = %+v", cfg.Catalog)
	}
	if cfg.Sessions.Backend != SessionsMemory || cfg.Sessions.IdleTimeoutMinutes != defaultIdleTimeoutMin {
		t.Fatalf("sessions = %+v", cfg.Sessions)
	}
	if cfg.Events.SubjectPrefix != defaultSubjectPrefix {
		t.Fatalf("subject prefix = %q", cfg.Events.SubjectPrefix)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"missing token":   func(c *Config) { c.Telegram.Token = "" },
		"bad run mode":    func(c *Config) { c.Telegram.RunMode = "push" },
		"webhook no url":  func(c *Config) { c.Telegram.RunMode = RunModeWebhook },
		"bad exclusion":   func(c *Config) { c.RateLimit.ExcludeUpdates = []string{"poll"} },
		"bad backend":     func(c *Config) { c.Catalog.Backend = "sqlite" },
		"postgres no db":  func(c *Config) { c.Catalog.Backend = CatalogPostgres },
		"negative page":   func(c *Config) { c.Catalog.PageSize = -1 },
		"redis no addr":   func(c *Config) { c.Sessions.Backend = SessionsRedis },
		"bad sessions":    func(c *Config) { c.Sessions.Backend = "etcd" },
		"redis no expiry": func(c *Config) { c.Sessions = SessionsConfig{Backend: SessionsRedis, IdleTimeoutMinutes: -1, Redis: RedisConfig{Addr: "x:6379"}} },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(cfg)
		if err := Normalize(cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNormalizeAcceptsPollingAliasAndPostgres(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = " Polling "
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", ""}
	cfg.Catalog.Backend = "POSTGRES"
	cfg.Database = DatabaseConfig{Host: "db", Name: "games"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll || cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Fatalf("normalized = %+v / %v", cfg.Telegram, cfg.RateLimit.ExcludeUpdates)
	}
	if cfg.Catalog.Backend != CatalogPostgres || cfg.Database.Port != "5432" || cfg.Database.SSLMode != "disable" {
		t.Fatalf("database = %+v", cfg.Database)
	}
}

func TestNormalizeMemorySessionsMayDisableEviction(t *testing.T) {
	cfg := validConfig()
	cfg.Sessions.IdleTimeoutMinutes = -1
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Sessions.IdleTimeoutMinutes != -1 {
		t.Fatalf("idle timeout = %d", cfg.Sessions.IdleTimeoutMinutes)
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := strings.Join([]string{
		"telegram:",
		"  token: from-file",
		"catalog:",
		"  page_size: 10",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CATALOG_PAGE_SIZE", "20")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "from-file" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Catalog.PageSize != 20 {
		t.Fatalf("page size = %d", cfg.Catalog.PageSize)
	}
	if cfg.CoreConfig() != cfg {
		t.Fatalf("CoreConfig must return the receiver")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
