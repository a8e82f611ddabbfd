package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Listing struct {
		URL         string        `yaml:"url"`
		TTL         time.Duration `yaml:"ttl"`
		Timeout     time.Duration `yaml:"timeout"`
		RefreshCron string        `yaml:"refresh_cron"`
	} `yaml:"listing"`
	DataSource struct {
		Provider  string        `yaml:"provider"`
		BaseURL   string        `yaml:"base_url"`
		Timeout   time.Duration `yaml:"timeout"`
		RateLimit int           `yaml:"rate_limit"`
	} `yaml:"data_source"`
	Indicators struct {
		MAWindows []int `yaml:"ma_windows"`
		RSIPeriod int   `yaml:"rsi_period"`
	} `yaml:"indicators"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy    string `yaml:"proxy"`
	UserName string `yaml:"user_name"`

	ttlSet bool
	rsiSet bool
}

// Load reads .env, then the YAML file at path, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		var raw struct {
			Listing    map[string]interface{} `yaml:"listing"`
			Indicators map[string]interface{} `yaml:"indicators"`
		}
		if yaml.Unmarshal(data, &raw) == nil {
			_, cfg.ttlSet = raw.Listing["ttl"]
			_, cfg.rsiSet = raw.Indicators["rsi_period"]
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("LISTING_URL"); v != "" {
		c.Listing.URL = v
	}
	if v := os.Getenv("LISTING_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LISTING_TTL: %w", err)
		}
		c.Listing.TTL = d
		c.ttlSet = true
	}
	if v := os.Getenv("CRON_LISTING_REFRESH"); v != "" {
		c.Listing.RefreshCron = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MY_NAME"); v != "" {
		c.UserName = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if !c.ttlSet {
		c.Listing.TTL = 6 * time.Hour
	}
	if c.Listing.Timeout == 0 {
		c.Listing.Timeout = 30 * time.Second
	}
	if c.Listing.RefreshCron == "" {
		c.Listing.RefreshCron = "0 0 8 * * 1-5"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "naver"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.DataSource.RateLimit == 0 {
		c.DataSource.RateLimit = 5
	}
	if len(c.Indicators.MAWindows) == 0 {
		c.Indicators.MAWindows = []int{5, 20}
	}
	if !c.rsiSet && c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stocklens.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.UserName == "" {
		c.UserName = "Guest"
	}
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Listing.TTL < 0 {
		return fmt.Errorf("listing.ttl must not be negative")
	}
	switch c.DataSource.Provider {
	case "naver", "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider %q is not one of naver, yahoo, mock", c.DataSource.Provider)
	}
	if c.DataSource.RateLimit < 0 {
		return fmt.Errorf("data_source.rate_limit must not be negative")
	}
	for _, w := range c.Indicators.MAWindows {
		if w <= 0 {
			return fmt.Errorf("indicators.ma_windows: %d is not positive", w)
		}
	}
	if c.Indicators.RSIPeriod < 0 {
		return fmt.Errorf("indicators.rsi_period must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}
