package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
// - "inline_query": inline query updates
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// CatalogConfig selects where registered games are kept.
type CatalogConfig struct {
	Backend  string `yaml:"backend" envconfig:"CATALOG_BACKEND"`
	Path     string `yaml:"path" envconfig:"CATALOG_PATH"`
	PageSize int    `yaml:"page_size" envconfig:"CATALOG_PAGE_SIZE"`
}

// DatabaseConfig holds Postgres connection settings used by the postgres catalog backend.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// RedisConfig points the redis session backend at a server.
type RedisConfig struct {
	Addr      string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password  string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB        int    `yaml:"db" envconfig:"REDIS_DB"`
	KeyPrefix string `yaml:"key_prefix" envconfig:"REDIS_KEY_PREFIX"`
}

// SessionsConfig controls the registration session table.
type SessionsConfig struct {
	Backend string `yaml:"backend" envconfig:"SESSIONS_BACKEND"`
	// IdleTimeoutMinutes evicts wizard runs nobody touched for that long.
	// 0 selects the default, a negative value disables eviction (memory backend only).
	IdleTimeoutMinutes   int         `yaml:"idle_timeout_minutes" envconfig:"SESSIONS_IDLE_TIMEOUT_MINUTES"`
	SweepIntervalSeconds int         `yaml:"sweep_interval_seconds" envconfig:"SESSIONS_SWEEP_INTERVAL_SECONDS"`
	Redis                RedisConfig `yaml:"redis"`
}

// EventsConfig enables publishing catalog changes to NATS.
type EventsConfig struct {
	NATSURL       string `yaml:"nats_url" envconfig:"NATS_URL"`
	SubjectPrefix string `yaml:"subject_prefix" envconfig:"NATS_SUBJECT_PREFIX"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

const (
	// CatalogFile keeps the catalog as a JSON list on disk.
	CatalogFile = "file"
	// CatalogPostgres keeps the catalog in a Postgres table.
	CatalogPostgres = "postgres"

	// SessionsMemory keeps wizard sessions in process memory.
	SessionsMemory = "memory"
	// SessionsRedis keeps wizard sessions in redis with a TTL.
	SessionsRedis = "redis"

	defaultCatalogPath     = "./gameList.json"
	defaultPageSize        = 30
	defaultIdleTimeoutMin  = 30
	defaultSweepSeconds    = 60
	defaultRedisKeyPrefix  = "boardbot:registration:"
	defaultSubjectPrefix   = "boardbot.catalog"
	defaultDBMaxConnection = 4
)

// Config aggregates the bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Database  DatabaseConfig  `yaml:"database"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Events    EventsConfig    `yaml:"events"`
}

// CoreConfig lets *Config satisfy the runner's ConfigCarrier.
func (c *Config) CoreConfig() *Config {
	return c
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback:    {},
		UpdateMessage:     {},
		UpdateInlineQuery: {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, inline_query", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	if err := normalizeCatalog(cfg); err != nil {
		return err
	}
	if err := normalizeSessions(&cfg.Sessions); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Events.SubjectPrefix) == "" {
		cfg.Events.SubjectPrefix = defaultSubjectPrefix
	}
	return nil
}

func normalizeCatalog(cfg *Config) error {
	backend := strings.ToLower(strings.TrimSpace(cfg.Catalog.Backend))
	if backend == "" {
		backend = CatalogFile
	}
	switch backend {
	case CatalogFile:
		if strings.TrimSpace(cfg.Catalog.Path) == "" {
			cfg.Catalog.Path = defaultCatalogPath
		}
	case CatalogPostgres:
		if strings.TrimSpace(cfg.Database.Host) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.host and database.name are required when catalog.backend is 'postgres'")
		}
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
		if cfg.Database.MaxConnections <= 0 {
			cfg.Database.MaxConnections = defaultDBMaxConnection
		}
	default:
		return fmt.Errorf("invalid catalog.backend %q; allowed: file, postgres", cfg.Catalog.Backend)
	}
	cfg.Catalog.Backend = backend

	if cfg.Catalog.PageSize < 0 {
		return fmt.Errorf("catalog.page_size must be >= 0")
	}
	if cfg.Catalog.PageSize == 0 {
		cfg.Catalog.PageSize = defaultPageSize
	}
	return nil
}

func normalizeSessions(s *SessionsConfig) error {
	backend := strings.ToLower(strings.TrimSpace(s.Backend))
	if backend == "" {
		backend = SessionsMemory
	}
	switch backend {
	case SessionsMemory:
	case SessionsRedis:
		if strings.TrimSpace(s.Redis.Addr) == "" {
			return fmt.Errorf("sessions.redis.addr is required when sessions.backend is 'redis'")
		}
		if s.Redis.KeyPrefix == "" {
			s.Redis.KeyPrefix = defaultRedisKeyPrefix
		}
	default:
		return fmt.Errorf("invalid sessions.backend %q; allowed: memory, redis", s.Backend)
	}
	s.Backend = backend

	if s.IdleTimeoutMinutes < 0 && backend == SessionsRedis {
		return fmt.Errorf("sessions.idle_timeout_minutes must be > 0 when sessions.backend is 'redis'")
	}
	if s.IdleTimeoutMinutes == 0 {
		s.IdleTimeoutMinutes = defaultIdleTimeoutMin
	}
	if s.SweepIntervalSeconds <= 0 {
		s.SweepIntervalSeconds = defaultSweepSeconds
	}
	return nil
}
