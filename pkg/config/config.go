// Package config loads and validates the exporter configuration from a
// YAML file. All values are resolved once at startup and read-only
// afterwards.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tsouza/eventdump/pkg/compress"
	"github.com/tsouza/eventdump/pkg/filter"
	"github.com/tsouza/eventdump/pkg/serialize"
)

// Defaults applied before the file is parsed.
const (
	DefaultMaxBatchSize  = 1000             // records per upload
	DefaultFlushInterval = 30 * time.Second // time-based flush
	DefaultUploadTimeout = 30 * time.Second // per PutObject attempt
	DefaultMaxAttempts   = 5                // delivery attempts per batch
	DefaultBaseDelay     = 200 * time.Millisecond
	DefaultMaxDelay      = 30 * time.Second
)

// Server-side encryption modes accepted in s3.sse.
const (
	SSENone   = "none"
	SSEAES256 = "AES256"
	SSEKMS    = "aws:kms"
)

type S3Config struct {
	Bucket        string        `yaml:"bucket"`
	Region        string        `yaml:"region"`
	Endpoint      string        `yaml:"endpoint"`
	AccessKey     string        `yaml:"accessKey"`
	SecretKey     string        `yaml:"secretKey"`
	Prefix        string        `yaml:"prefix"`
	PathStyle     bool          `yaml:"pathStyle"`
	SSE           string        `yaml:"sse"`
	KMSKeyID      string        `yaml:"kmsKeyID"`
	UploadTimeout time.Duration `yaml:"uploadTimeout"`
}

type ExportConfig struct {
	Format         string        `yaml:"format"`
	Compression    string        `yaml:"compression"`
	MaxBatchSize   int           `yaml:"maxBatchSize"`
	FlushInterval  time.Duration `yaml:"flushInterval"`
	EventsToIgnore string        `yaml:"eventsToIgnore"`
	EventsToExport string        `yaml:"eventsToExport"`
	UniqueKeys     bool          `yaml:"uniqueKeys"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseDelay   time.Duration `yaml:"baseDelay"`
	MaxDelay    time.Duration `yaml:"maxDelay"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"groupID"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type AppConfig struct {
	S3      S3Config      `yaml:"s3"`
	Export  ExportConfig  `yaml:"export"`
	Retry   RetryConfig   `yaml:"retry"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Logging LoggingConfig `yaml:"logging"`
}

// Load reads and parses a YAML config file, applies defaults and
// validates the result. Any error here is fatal for the process; the
// caller must not retry.
func Load(path string) (AppConfig, error) {
	cfg := AppConfig{
		S3: S3Config{
			SSE:           SSENone,
			UploadTimeout: DefaultUploadTimeout,
		},
		Export: ExportConfig{
			Format:        string(serialize.FormatJSONL),
			Compression:   string(compress.ModeNone),
			MaxBatchSize:  DefaultMaxBatchSize,
			FlushInterval: DefaultFlushInterval,
			UniqueKeys:    true,
		},
		Retry: RetryConfig{
			MaxAttempts: DefaultMaxAttempts,
			BaseDelay:   DefaultBaseDelay,
			MaxDelay:    DefaultMaxDelay,
		},
		Logging: LoggingConfig{Level: "info"},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate fails fast on missing or contradictory settings.
func (c *AppConfig) Validate() error {
	if c.S3.Bucket == "" {
		return fmt.Errorf("config: s3.bucket is required")
	}
	if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
		return fmt.Errorf("config: s3.accessKey and s3.secretKey are required")
	}
	if c.S3.Region == "" && c.S3.Endpoint == "" {
		return fmt.Errorf("config: one of s3.region or s3.endpoint is required")
	}

	switch c.S3.SSE {
	case SSENone, SSEAES256:
	case SSEKMS:
		if c.S3.KMSKeyID == "" {
			return fmt.Errorf("config: s3.sse %q requires s3.kmsKeyID", SSEKMS)
		}
	default:
		return fmt.Errorf("config: unknown s3.sse mode %q", c.S3.SSE)
	}

	if _, err := serialize.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("config: export.format: %w", err)
	}
	if _, err := compress.ParseMode(c.Export.Compression); err != nil {
		return fmt.Errorf("config: export.compression: %w", err)
	}
	if _, err := filter.Parse(c.Export.EventsToIgnore, c.Export.EventsToExport); err != nil {
		return fmt.Errorf("config: export.eventsToExport: %w", err)
	}

	if c.Export.MaxBatchSize <= 0 {
		return fmt.Errorf("config: export.maxBatchSize must be positive, got %d", c.Export.MaxBatchSize)
	}
	if c.Export.FlushInterval <= 0 {
		return fmt.Errorf("config: export.flushInterval must be positive, got %v", c.Export.FlushInterval)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("config: retry.maxAttempts must be positive, got %d", c.Retry.MaxAttempts)
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers is required")
	}
	if c.Kafka.Topic == "" {
		return fmt.Errorf("config: kafka.topic is required")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.groupID is required")
	}

	return nil
}
