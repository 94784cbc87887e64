package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the notification pipeline.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	SES     SESConfig     `yaml:"ses"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Sending SendingConfig `yaml:"sending"`
}

// ServerConfig holds HTTP server configuration for the operator API.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container environment detection.
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// SESConfig holds AWS SES API configuration for the provider client and the
// email transport adapter.
type SESConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration.
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig holds DynamoDB storage configuration. An empty table name is
// a valid state: the corresponding component degrades to "feature disabled"
// rather than erroring.
type StorageConfig struct {
	AWSRegion        string `yaml:"aws_region"`
	AWSProfile       string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
	SuppressionTable string `yaml:"suppression_table"`
	MetricsTable     string `yaml:"metrics_table"`
}

// GetAWSProfile returns the AWS profile, with environment variable override.
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	// On ECS/Lambda, don't use a profile - use IAM role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// CacheConfig holds the optional redis read-through cache for suppression
// checks. Disabled by default; the pipeline is fully functional without it.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TTL returns the cache entry TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// SendingConfig holds sending-identity settings used by rendering and
// dispatch.
type SendingConfig struct {
	// BaseURL resolves relative file links in templates to absolute URLs.
	BaseURL string `yaml:"base_url"`
	// FromAddress is the default sender for the email transport adapter.
	FromAddress string `yaml:"from_address"`
}

// Load reads and parses the configuration file, filling defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-west-2"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = cfg.SES.Region
	}
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = "localhost:6379"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 60
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if accessKey := os.Getenv("AWS_SES_ACCESS_KEY"); accessKey != "" {
		cfg.SES.AccessKey = accessKey
	}
	if secretKey := os.Getenv("AWS_SES_SECRET_KEY"); secretKey != "" {
		cfg.SES.SecretKey = secretKey
	}
	if region := os.Getenv("AWS_SES_REGION"); region != "" {
		cfg.SES.Region = region
	}
	if table := os.Getenv("SUPPRESSION_TABLE"); table != "" {
		cfg.Storage.SuppressionTable = table
	}
	if table := os.Getenv("METRICS_TABLE"); table != "" {
		cfg.Storage.MetricsTable = table
	}
	if region := os.Getenv("STORAGE_AWS_REGION"); region != "" {
		cfg.Storage.AWSRegion = region
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Cache.Addr = addr
		cfg.Cache.Enabled = true
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Cache.Password = pw
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.Cache.DB = n
		}
	}
	if base := os.Getenv("SENDING_BASE_URL"); base != "" {
		cfg.Sending.BaseURL = base
	}
	if from := os.Getenv("SENDING_FROM_ADDRESS"); from != "" {
		cfg.Sending.FromAddress = from
	}

	return cfg, nil
}
