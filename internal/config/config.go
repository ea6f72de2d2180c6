package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the JobSniper pipeline.
type Config struct {
	ProfilePath  string
	Source       SourceConfig
	Storage      StorageConfig
	Audit        AuditConfig
	Notification NotificationConfig
	Schedule     ScheduleConfig
}

// SourceConfig describes where raw posting batches come from.
type SourceConfig struct {
	Type string // "file" or "http"
	Path string // for "file": path to a JSON or CSV batch
	URL  string // for "http": scraper bridge endpoint
}

// StorageConfig selects the verified-store backend and state locations.
type StorageConfig struct {
	Backend     string // "sqlite" or "postgres"
	SQLitePath  string // path to the state database file
	PostgresURL string // expanded from env by Load
	ExportCSV   string // optional CSV export path for the verified set
}

// AuditConfig controls the classifier/scorer stage.
type AuditConfig struct {
	Retention time.Duration // ledger retention window
	MinScore  int           // digest eligibility threshold
	Cooldown  time.Duration // minimum gap between scorer calls
	Scorer    ScorerConfig
}

// ScorerConfig selects the local heuristic or the LLM-backed scorer.
type ScorerConfig struct {
	Mode    string        // "local" (default) or "llm"
	BaseURL string        // OpenAI-compatible endpoint
	Model   string        // model identifier
	APIKey  string        // expanded from env var by Load
	Timeout time.Duration // per-request timeout
}

// NotificationConfig controls which notifier dispatches the digest.
type NotificationConfig struct {
	Type       string         `yaml:"type"`        // "log", "slack", "email" or "telegram"
	WebhookURL string         `yaml:"webhook_url"` // required if type is "slack"
	SMTP       SMTPConfig     `yaml:"smtp"`
	Telegram   TelegramConfig `yaml:"telegram"`
}

// SMTPConfig holds email transport settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Password string `yaml:"password"` // expanded from env var by Load
}

// TelegramConfig holds bot transport settings.
type TelegramConfig struct {
	Token  string `yaml:"token"` // expanded from env var by Load
	ChatID int64  `yaml:"chat_id"`
}

// ScheduleConfig controls the daemon interval.
type ScheduleConfig struct {
	IntervalHours int `yaml:"interval_hours"`
}

const (
	defaultRetention   = 7 * 24 * time.Hour
	defaultMinScore    = 55
	defaultCooldown    = 2 * time.Second
	defaultSQLitePath  = "jobsniper.db"
	defaultProfilePath = "profile.json"
	defaultLLMBaseURL  = "https://api.openai.com/v1"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	ProfilePath  string             `yaml:"profile_path"`
	Source       SourceConfig       `yaml:"source"`
	Storage      rawStorageConfig   `yaml:"storage"`
	Audit        rawAuditConfig     `yaml:"audit"`
	Notification NotificationConfig `yaml:"notification"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
}

type rawStorageConfig struct {
	Backend     string `yaml:"backend"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresURL string `yaml:"postgres_url"`
	ExportCSV   string `yaml:"export_csv"`
}

type rawAuditConfig struct {
	RetentionDays int             `yaml:"retention_days"`
	MinScore      *int            `yaml:"min_score"`
	Cooldown      string          `yaml:"cooldown"`
	Scorer        rawScorerConfig `yaml:"scorer"`
}

type rawScorerConfig struct {
	Mode    string `yaml:"mode"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

// Load reads .env (if present), then reads and parses the YAML config file at
// path, expands environment variables, validates, and returns Config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables so secrets stay out of the YAML.
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	retention := defaultRetention
	if raw.Audit.RetentionDays != 0 {
		if raw.Audit.RetentionDays < 0 {
			return nil, fmt.Errorf("audit.retention_days must be positive, got %d", raw.Audit.RetentionDays)
		}
		retention = time.Duration(raw.Audit.RetentionDays) * 24 * time.Hour
	}

	minScore := defaultMinScore
	if raw.Audit.MinScore != nil {
		minScore = *raw.Audit.MinScore
	}

	cooldown := defaultCooldown
	if raw.Audit.Cooldown != "" {
		cooldown, err = time.ParseDuration(raw.Audit.Cooldown)
		if err != nil {
			return nil, fmt.Errorf("parse audit.cooldown %q: %w", raw.Audit.Cooldown, err)
		}
	}

	scorerTimeout := 30 * time.Second // default
	if raw.Audit.Scorer.Timeout != "" {
		scorerTimeout, err = time.ParseDuration(raw.Audit.Scorer.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse audit.scorer.timeout %q: %w", raw.Audit.Scorer.Timeout, err)
		}
	}

	scorerMode := raw.Audit.Scorer.Mode
	if scorerMode == "" {
		scorerMode = "local"
	}

	scorerBaseURL := raw.Audit.Scorer.BaseURL
	if scorerBaseURL == "" {
		scorerBaseURL = defaultLLMBaseURL
	}

	backend := raw.Storage.Backend
	if backend == "" {
		backend = "sqlite"
	}

	sqlitePath := raw.Storage.SQLitePath
	if sqlitePath == "" {
		sqlitePath = defaultSQLitePath
	}

	profilePath := raw.ProfilePath
	if profilePath == "" {
		profilePath = defaultProfilePath
	}

	sourceType := raw.Source.Type
	if sourceType == "" {
		sourceType = "file"
	}

	cfg := &Config{
		ProfilePath: profilePath,
		Source: SourceConfig{
			Type: sourceType,
			Path: raw.Source.Path,
			URL:  raw.Source.URL,
		},
		Storage: StorageConfig{
			Backend:     backend,
			SQLitePath:  sqlitePath,
			PostgresURL: raw.Storage.PostgresURL,
			ExportCSV:   raw.Storage.ExportCSV,
		},
		Audit: AuditConfig{
			Retention: retention,
			MinScore:  minScore,
			Cooldown:  cooldown,
			Scorer: ScorerConfig{
				Mode:    scorerMode,
				BaseURL: scorerBaseURL,
				Model:   raw.Audit.Scorer.Model,
				APIKey:  raw.Audit.Scorer.APIKey,
				Timeout: scorerTimeout,
			},
		},
		Notification: raw.Notification,
		Schedule:     raw.Schedule,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Source.Type {
	case "file":
		if cfg.Source.Path == "" {
			return fmt.Errorf("source.path is required when source.type is \"file\"")
		}
	case "http":
		if cfg.Source.URL == "" {
			return fmt.Errorf("source.url is required when source.type is \"http\"")
		}
	default:
		return fmt.Errorf("source.type must be \"file\" or \"http\", got %q", cfg.Source.Type)
	}

	switch cfg.Storage.Backend {
	case "sqlite":
	case "postgres":
		if cfg.Storage.PostgresURL == "" {
			return fmt.Errorf("storage.postgres_url is required when backend is \"postgres\"")
		}
	default:
		return fmt.Errorf("storage.backend must be \"sqlite\" or \"postgres\", got %q", cfg.Storage.Backend)
	}

	if cfg.Audit.MinScore < 0 || cfg.Audit.MinScore > 100 {
		return fmt.Errorf("audit.min_score must be between 0 and 100, got %d", cfg.Audit.MinScore)
	}

	switch cfg.Audit.Scorer.Mode {
	case "local":
	case "llm":
		if cfg.Audit.Scorer.APIKey == "" {
			return fmt.Errorf("audit.scorer.api_key is required when mode is \"llm\"")
		}
		if cfg.Audit.Scorer.Model == "" {
			return fmt.Errorf("audit.scorer.model is required when mode is \"llm\"")
		}
	default:
		return fmt.Errorf("audit.scorer.mode must be \"local\" or \"llm\", got %q", cfg.Audit.Scorer.Mode)
	}

	switch cfg.Notification.Type {
	case "", "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
	case "email":
		if cfg.Notification.SMTP.Host == "" || cfg.Notification.SMTP.From == "" || cfg.Notification.SMTP.To == "" {
			return fmt.Errorf("notification.smtp.host, from and to are required when type is \"email\"")
		}
	case "telegram":
		if cfg.Notification.Telegram.Token == "" {
			return fmt.Errorf("notification.telegram.token is required when type is \"telegram\"")
		}
		if cfg.Notification.Telegram.ChatID == 0 {
			return fmt.Errorf("notification.telegram.chat_id is required when type is \"telegram\"")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\", \"slack\", \"email\" or \"telegram\", got %q", cfg.Notification.Type)
	}

	if cfg.Schedule.IntervalHours < 0 {
		return fmt.Errorf("schedule.interval_hours must be positive, got %d", cfg.Schedule.IntervalHours)
	}

	return nil
}
