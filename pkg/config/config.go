package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Logging     struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	} `yaml:"server"`
	Exchange struct {
		BaseURL   string `yaml:"base_url" default:"https://api2.nicehash.com"`
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		OrgID     string `yaml:"org_id"`
	} `yaml:"exchange"`
	Cache struct {
		TTL     time.Duration `yaml:"ttl" default:"5m"`
		Backend string        `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Fetch struct {
		MaxWorkers int           `yaml:"max_workers" default:"3" validate:"gt=0"`
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"fetch"`
	Retry struct {
		MaxAttempts   int     `yaml:"max_attempts" default:"3" validate:"gt=0"`
		BackoffFactor float64 `yaml:"backoff_factor" default:"2" validate:"gte=1"`
	} `yaml:"retry"`
	Sources struct {
		RefreshInterval time.Duration `yaml:"refresh_interval" default:"10m"`
		ProbeTimeout    time.Duration `yaml:"probe_timeout" default:"10s"`
	} `yaml:"sources"`
	Trading struct {
		ProfitThreshold         float64       `yaml:"profit_threshold" default:"0.001"`
		MinOrderAmount          float64       `yaml:"min_order_amount" default:"0.001"`
		MaxOrderAmount          float64       `yaml:"max_order_amount" default:"0.01"`
		MaxOrders               int           `yaml:"max_orders" default:"5" validate:"gt=0"`
		MinProfitableAlgorithms int           `yaml:"min_profitable_algorithms" default:"3" validate:"gt=0"`
		RateLimitDelay          time.Duration `yaml:"rate_limit_delay" default:"2s"`
		CheckInterval           time.Duration `yaml:"check_interval" default:"60s"`
	} `yaml:"trading"`
	Recharge struct {
		Enabled             bool    `yaml:"enabled"`
		Amount              float64 `yaml:"amount" default:"0.005"`
		MinBalanceThreshold float64 `yaml:"min_balance_threshold" default:"0.001"`
		MaxDailyRecharges   int     `yaml:"max_daily_recharges" default:"3" validate:"gte=0"`
		CooldownMinutes     int     `yaml:"cooldown_minutes" default:"60" validate:"gte=0"`
	} `yaml:"recharge"`
	Speed struct {
		Mode             string  `yaml:"mode" default:"adaptive" validate:"oneof=fixed adaptive dynamic"`
		FixedLimit       float64 `yaml:"fixed_limit" default:"500"`
		MinLimit         float64 `yaml:"min_limit" default:"100"`
		MaxLimit         float64 `yaml:"max_limit" default:"1000"`
		Increment        float64 `yaml:"increment" default:"50" validate:"gt=0"`
		AdaptiveFactor   float64 `yaml:"adaptive_factor" default:"0.8" validate:"gt=0,lte=1"`
		DynamicThreshold float64 `yaml:"dynamic_threshold" default:"0.005" validate:"gt=0"`
	} `yaml:"speed"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"hasharb.events"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
	} `yaml:"kafka"`
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

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("EXCHANGE_API_KEY"); v != "" {
		c.Exchange.APIKey = v
	}
	if v := os.Getenv("EXCHANGE_API_SECRET"); v != "" {
		c.Exchange.APISecret = v
	}
	if v := os.Getenv("EXCHANGE_ORG_ID"); v != "" {
		c.Exchange.OrgID = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Trading.MinOrderAmount > c.Trading.MaxOrderAmount {
		return fmt.Errorf("trading.min_order_amount must not exceed trading.max_order_amount")
	}
	if c.Speed.MinLimit > c.Speed.MaxLimit {
		return fmt.Errorf("speed.min_limit must not exceed speed.max_limit")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
