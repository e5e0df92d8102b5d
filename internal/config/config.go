// Package config loads and validates meteodb configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
	Export  ExportConfig  `mapstructure:"export"`
}

// CrawlerConfig governs the crawl run itself.
type CrawlerConfig struct {
	// StartDate (YYYY-MM-DD) is where the init-mode backward walk begins.
	// Empty means the run start time.
	StartDate string `mapstructure:"start_date"`

	// StationCodes restricts the run to the listed codes. Empty means all.
	StationCodes []int `mapstructure:"station_codes"`

	// CleanDatabase drops all persisted data before an init run.
	CleanDatabase bool `mapstructure:"clean_database"`
}

// HTTPConfig configures the remote-source client and its retry policy.
type HTTPConfig struct {
	// BaseURL overrides the production observation endpoint. Empty means
	// the real site; point it at a mirror for offline runs.
	BaseURL          string `mapstructure:"base_url"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	UserAgent        string `mapstructure:"user_agent"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int    `mapstructure:"backoff_max_ms"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// ArchiveConfig selects the raw-page archival backend.
type ArchiveConfig struct {
	Provider  string `mapstructure:"provider"` // noop | local | gcs
	LocalDir  string `mapstructure:"local_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// NotifyConfig selects the run-report sink.
type NotifyConfig struct {
	Provider  string `mapstructure:"provider"` // log | pubsub | noop
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// MetricsConfig controls the optional metrics/health endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// ExportConfig controls the CSV export command.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("METEODB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", "meteodb/0.1")
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 5000)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("archive.provider", "noop")
	v.SetDefault("notify.provider", "log")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("logging.development", true)
	v.SetDefault("export.dir", "./csv")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Crawler.StartDate != "" {
		if _, err := time.Parse(time.DateOnly, c.Crawler.StartDate); err != nil {
			return fmt.Errorf("crawler.start_date must be YYYY-MM-DD: %w", err)
		}
	}
	switch c.Archive.Provider {
	case "noop":
	case "local":
		if c.Archive.LocalDir == "" {
			return fmt.Errorf("archive.local_dir must be set when archive.provider is local")
		}
	case "gcs":
		if c.Archive.GCSBucket == "" {
			return fmt.Errorf("archive.gcs_bucket must be set when archive.provider is gcs")
		}
	default:
		return fmt.Errorf("unknown archive provider %q", c.Archive.Provider)
	}
	switch c.Notify.Provider {
	case "log", "noop":
	case "pubsub":
		if c.Notify.ProjectID == "" || c.Notify.TopicID == "" {
			return fmt.Errorf("notify.project_id and notify.topic_id must be set when notify.provider is pubsub")
		}
	default:
		return fmt.Errorf("unknown notify provider %q", c.Notify.Provider)
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return fmt.Errorf("metrics.port must be > 0 when metrics are enabled")
	}
	return nil
}

// StartTime resolves the configured start date, falling back to now.
func (c Config) StartTime(now time.Time) time.Time {
	if c.Crawler.StartDate == "" {
		return now
	}
	t, err := time.Parse(time.DateOnly, c.Crawler.StartDate)
	if err != nil {
		// Validate rejects malformed dates before a run starts.
		return now
	}
	return t
}

// HTTPTimeout converts the timeout knob into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// Summary renders a log-friendly one-line description of the configuration.
func (c Config) Summary() string {
	start := c.Crawler.StartDate
	if start == "" {
		start = "now"
	}
	return fmt.Sprintf("start=%s codes=%v clean=%t archive=%s notify=%s metrics=%t",
		start, c.Crawler.StationCodes, c.Crawler.CleanDatabase,
		c.Archive.Provider, c.Notify.Provider, c.Metrics.Enabled)
}
