package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config location.
const ConfigPath = "config.yaml"

const (
	defaultRequestTimeoutSeconds  = 10
	defaultAnalysisTimeoutSeconds = 120
	defaultLanguage               = "en"
	defaultJournalPath            = "dermatrack.db"
	defaultMaxImageBytes          = 10 << 20 // 10 MiB
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	APIBaseURL             string `yaml:"apiBaseURL"`
	AuthToken              string `yaml:"authToken"`
	Language               string `yaml:"language"`
	LogLevel               string `yaml:"logLevel"`
	RequestTimeoutSeconds  int    `yaml:"requestTimeoutSeconds"`
	AnalysisTimeoutSeconds int    `yaml:"analysisTimeoutSeconds"`
	JournalPath            string `yaml:"journalPath"`

	UploadBackend   string `yaml:"uploadBackend"` // "api" or "s3"
	S3Endpoint      string `yaml:"s3Endpoint"`
	S3AccessKey     string `yaml:"s3AccessKey"`
	S3SecretKey     string `yaml:"s3SecretKey"`
	S3Bucket        string `yaml:"s3Bucket"`
	S3UseSSL        bool   `yaml:"s3UseSSL"`
	S3PublicBaseURL string `yaml:"s3PublicBaseURL"`
	MaxImageBytes   int64  `yaml:"maxImageBytes"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("DERMATRACK_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("DERMATRACK_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = strings.TrimSpace(v)
	}
	if v := os.Getenv("DERMATRACK_LANGUAGE"); v != "" {
		cfg.Language = strings.TrimSpace(v)
	}
	if v := os.Getenv("DERMATRACK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("DERMATRACK_REQUEST_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.RequestTimeoutSeconds = n
		}
	}
	if v := os.Getenv("DERMATRACK_ANALYSIS_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.AnalysisTimeoutSeconds = n
		}
	}
	if v := os.Getenv("DERMATRACK_JOURNAL_PATH"); v != "" {
		cfg.JournalPath = strings.TrimSpace(v)
	}
	if v := os.Getenv("DERMATRACK_UPLOAD_BACKEND"); v != "" {
		cfg.UploadBackend = strings.TrimSpace(v)
	}
	if v := os.Getenv("DERMATRACK_S3_ENDPOINT"); v != "" {
		cfg.S3Endpoint = strings.TrimSpace(v)
	}
	if v := os.Getenv("DERMATRACK_S3_ACCESS_KEY"); v != "" {
		cfg.S3AccessKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("DERMATRACK_S3_SECRET_KEY"); v != "" {
		cfg.S3SecretKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("DERMATRACK_S3_BUCKET"); v != "" {
		cfg.S3Bucket = strings.TrimSpace(v)
	}
	if v := os.Getenv("DERMATRACK_S3_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.S3UseSSL = b
		}
	}
	if v := os.Getenv("DERMATRACK_MAX_IMAGE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.MaxImageBytes = n
		}
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if cfg.AnalysisTimeoutSeconds == 0 {
		cfg.AnalysisTimeoutSeconds = defaultAnalysisTimeoutSeconds
	}
	if cfg.JournalPath == "" {
		cfg.JournalPath = defaultJournalPath
	}
	if cfg.UploadBackend == "" {
		cfg.UploadBackend = "api"
	}
	if cfg.MaxImageBytes == 0 {
		cfg.MaxImageBytes = defaultMaxImageBytes
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.APIBaseURL == "" {
		return errors.New("config: apiBaseURL is required (set in config.yaml or DERMATRACK_API_BASE_URL)")
	}
	if cfg.RequestTimeoutSeconds < 0 || cfg.AnalysisTimeoutSeconds < 0 {
		return errors.New("config: timeouts must be >= 0")
	}
	if cfg.MaxImageBytes < 0 {
		return errors.New("config: maxImageBytes must be >= 0")
	}
	if cfg.AnalysisTimeoutSeconds < cfg.RequestTimeoutSeconds {
		return errors.New("config: analysisTimeoutSeconds must not be shorter than requestTimeoutSeconds")
	}
	switch cfg.UploadBackend {
	case "api":
	case "s3":
		if cfg.S3Endpoint == "" || cfg.S3Bucket == "" {
			return errors.New("config: s3Endpoint and s3Bucket are required when uploadBackend is s3")
		}
	default:
		return fmt.Errorf("config: unknown uploadBackend %q (expected api or s3)", cfg.UploadBackend)
	}
	return nil
}

// RequestTimeout returns the short deadline used for ordinary CRUD calls.
func (c FileConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// AnalysisTimeout returns the extended deadline used exclusively for
// case analysis and snapshot comparison calls.
func (c FileConfig) AnalysisTimeout() time.Duration {
	return time.Duration(c.AnalysisTimeoutSeconds) * time.Second
}
