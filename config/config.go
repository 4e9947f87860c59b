package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Okxflow OkxflowConfig `yaml:"okxflow"`
	Reader  ReaderConfig  `yaml:"reader"`
	Source  SourceConfig  `yaml:"source"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

type OkxflowConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type ReaderConfig struct {
	Timeout            time.Duration   `yaml:"timeout"`
	ConnectTimeout     time.Duration   `yaml:"connect_timeout"`
	IdleTimeout        time.Duration   `yaml:"idle_timeout"`
	Backoff            time.Duration   `yaml:"backoff"`
	LocalIP            string          `yaml:"local_ip"`
	RateLimit          RateLimitConfig `yaml:"rate_limit"`
	SubscribeRateLimit RateLimitConfig `yaml:"subscribe_rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

type SourceConfig struct {
	Okx OkxSourceConfig `yaml:"okx"`
}

type OkxSourceConfig struct {
	RestURL     string             `yaml:"rest_url"`
	WsURL       string             `yaml:"ws_url"`
	Instruments []InstrumentConfig `yaml:"instruments"`
}

// InstrumentConfig binds a canonical trading pair to its exchange-native
// instrument identifier.
type InstrumentConfig struct {
	Pair   string `yaml:"pair"`
	InstID string `yaml:"inst_id"`
}

type MetricsConfig struct {
	ChannelSize bool             `yaml:"channel_size"`
	CloudWatch  CloudWatchConfig `yaml:"cloudwatch"`
}

type CloudWatchConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Region        string `yaml:"region"`
	Namespace     string `yaml:"namespace"`
	DashboardName string `yaml:"dashboard_name"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

// Pairs returns the canonical-pair to native-identifier mapping of the
// configured instruments.
func (c *OkxSourceConfig) Pairs() map[string]string {
	pairs := make(map[string]string, len(c.Instruments))
	for _, inst := range c.Instruments {
		pairs[inst.Pair] = inst.InstID
	}
	return pairs
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Metrics: MetricsConfig{ChannelSize: true},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if config.Metrics.CloudWatch.Enabled {
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Metrics.CloudWatch.Region = strings.TrimSpace(v)
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Reader.Timeout <= 0 {
		cfg.Reader.Timeout = 10 * time.Second
	}
	if cfg.Reader.ConnectTimeout <= 0 {
		cfg.Reader.ConnectTimeout = 10 * time.Second
	}
	if cfg.Reader.IdleTimeout <= 0 {
		cfg.Reader.IdleTimeout = 30 * time.Second
	}
	if cfg.Reader.Backoff <= 0 {
		cfg.Reader.Backoff = 5 * time.Second
	}
	if cfg.Reader.RateLimit.RequestsPerSecond <= 0 {
		cfg.Reader.RateLimit.RequestsPerSecond = 5
	}
	if cfg.Reader.RateLimit.BurstSize <= 0 {
		cfg.Reader.RateLimit.BurstSize = 1
	}
	if cfg.Reader.SubscribeRateLimit.RequestsPerSecond <= 0 {
		cfg.Reader.SubscribeRateLimit.RequestsPerSecond = 3
	}
	if cfg.Reader.SubscribeRateLimit.BurstSize <= 0 {
		cfg.Reader.SubscribeRateLimit.BurstSize = 1
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Okxflow.Name == "" {
		return fmt.Errorf("okxflow.name is required")
	}

	if cfg.Okxflow.Version == "" {
		return fmt.Errorf("okxflow.version is required")
	}

	if cfg.Source.Okx.WsURL == "" {
		return fmt.Errorf("source.okx.ws_url is required")
	}

	if cfg.Source.Okx.RestURL == "" {
		return fmt.Errorf("source.okx.rest_url is required")
	}

	if len(cfg.Source.Okx.Instruments) == 0 {
		return fmt.Errorf("source.okx.instruments must not be empty")
	}

	for i, inst := range cfg.Source.Okx.Instruments {
		if inst.Pair == "" || inst.InstID == "" {
			return fmt.Errorf("source.okx.instruments[%d]: pair and inst_id are required", i)
		}
	}

	return nil
}
