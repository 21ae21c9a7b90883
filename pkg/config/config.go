package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Store struct {
		Type          string `yaml:"type"`
		ReadingsCap   int    `yaml:"readings_cap"`
		AggregatesCap int    `yaml:"aggregates_cap"`
		AlertsCap     int    `yaml:"alerts_cap"`
		Redis         struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port"`
			Password     string        `yaml:"password"`
			DB           int           `yaml:"db"`
			Prefix       string        `yaml:"prefix"`
			PoolSize     int           `yaml:"pool_size"`
			MinIdleConns int           `yaml:"min_idle_conns"`
			PoolTimeout  time.Duration `yaml:"pool_timeout"`
		} `yaml:"redis"`
	} `yaml:"store"`
	Scheduler struct {
		Interval       time.Duration `yaml:"interval"`
		AdapterTimeout time.Duration `yaml:"adapter_timeout"`
		AdapterDelay   time.Duration `yaml:"adapter_delay"`
	} `yaml:"scheduler"`
	Sources struct {
		Tickers     []string `yaml:"tickers"`
		SearchTerms []string `yaml:"search_terms"`
		StockTwits  struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
			Limit   int    `yaml:"limit"`
		} `yaml:"stocktwits"`
		Reddit struct {
			Enabled    bool     `yaml:"enabled"`
			BaseURL    string   `yaml:"base_url"`
			Subreddits []string `yaml:"subreddits"`
			Limit      int      `yaml:"limit"`
		} `yaml:"reddit"`
		Twitter struct {
			Enabled bool          `yaml:"enabled"`
			Command string        `yaml:"command"`
			Terms   []string      `yaml:"terms"`
			Limit   int           `yaml:"limit"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"twitter"`
	} `yaml:"sources"`
	Alerts struct {
		Dedup bool `yaml:"dedup"`
		Kafka struct {
			Enabled      bool          `yaml:"enabled"`
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic"`
			RequiredAcks int           `yaml:"required_acks"`
			Compression  string        `yaml:"compression"`
			MaxAttempts  int           `yaml:"max_attempts"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"kafka"`
	} `yaml:"alerts"`
	Archive struct {
		Enabled    bool `yaml:"enabled"`
		ClickHouse struct {
			Host             string        `yaml:"host"`
			Port             int           `yaml:"port"`
			Database         string        `yaml:"database"`
			User             string        `yaml:"user"`
			Password         string        `yaml:"password"`
			UseHTTP          bool          `yaml:"use_http"`
			AsyncInsert      bool          `yaml:"async_insert"`
			WaitForAsync     bool          `yaml:"wait_for_async_insert"`
			DialTimeout      time.Duration `yaml:"dial_timeout"`
			ReadTimeout      time.Duration `yaml:"read_timeout"`
			WriteTimeout     time.Duration `yaml:"write_timeout"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		} `yaml:"clickhouse"`
	} `yaml:"archive"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("TICKERS"); v != "" {
		c.Sources.Tickers = strings.Split(v, ",")
	}
	if v := os.Getenv("SEARCH_TERMS"); v != "" {
		c.Sources.SearchTerms = strings.Split(v, ",")
	}
	if v := os.Getenv("STORE_TYPE"); v != "" {
		c.Store.Type = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Store.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Alerts.Kafka.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Store.ReadingsCap == 0 {
		c.Store.ReadingsCap = 1000
	}
	if c.Store.AggregatesCap == 0 {
		c.Store.AggregatesCap = 500
	}
	if c.Store.AlertsCap == 0 {
		c.Store.AlertsCap = 100
	}
	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = 15 * time.Minute
	}
	if c.Scheduler.AdapterTimeout == 0 {
		c.Scheduler.AdapterTimeout = 30 * time.Second
	}
	if c.Scheduler.AdapterDelay == 0 {
		c.Scheduler.AdapterDelay = 500 * time.Millisecond
	}
	if c.Sources.StockTwits.Limit == 0 {
		c.Sources.StockTwits.Limit = 30
	}
	if c.Sources.Reddit.Limit == 0 {
		c.Sources.Reddit.Limit = 50
	}
	if c.Sources.Twitter.Limit == 0 {
		c.Sources.Twitter.Limit = 30
	}
	if c.Sources.Twitter.Command == "" {
		c.Sources.Twitter.Command = "bird"
	}
	if c.Sources.Twitter.Timeout == 0 {
		c.Sources.Twitter.Timeout = 30 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Store.Type == "" {
		return fmt.Errorf("store.type is required")
	}
	if c.Store.Type != "memory" && c.Store.Type != "redis" {
		return fmt.Errorf("store.type must be 'memory' or 'redis', got '%s'", c.Store.Type)
	}
	if c.Sources.StockTwits.Enabled && len(c.Sources.Tickers) == 0 {
		return fmt.Errorf("sources.tickers cannot be empty when stocktwits is enabled")
	}
	if c.Sources.Reddit.Enabled && len(c.Sources.Reddit.Subreddits) == 0 {
		return fmt.Errorf("sources.reddit.subreddits cannot be empty when reddit is enabled")
	}
	if c.Alerts.Kafka.Enabled && len(c.Alerts.Kafka.Brokers) == 0 {
		return fmt.Errorf("alerts.kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Archive.Enabled && c.Archive.ClickHouse.Host == "" {
		return fmt.Errorf("archive.clickhouse.host is required when archive is enabled")
	}
	return nil
}
