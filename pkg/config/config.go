// Package config loads handset's settings from a YAML file and HANDSET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pixperk/handset/pkg/logging"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Mobiles         []string      `yaml:"mobiles"`
	StrictCatalog   bool          `yaml:"strict_catalog"`
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       RateLimit     `yaml:"rate_limit"`
	Notify          Notify        `yaml:"notify"`
}

// RateLimit allows Requests per Window with bursts up to Burst; zero Requests disables it.
type RateLimit struct {
	Requests int           `yaml:"requests"`
	Burst    int           `yaml:"burst"`
	Window   time.Duration `yaml:"window"`
}

type Notify struct {
	QueueSize int           `yaml:"queue_size"`
	Timeout   time.Duration `yaml:"timeout"`
	Log       bool          `yaml:"log"`
	Websocket bool          `yaml:"websocket"`
	Redis     Redis         `yaml:"redis"`
	Journal   Journal       `yaml:"journal"`
}

// Redis is disabled when Addr is empty.
type Redis struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

// Journal is disabled when Path is empty.
type Journal struct {
	Path   string `yaml:"path"`
	Retain int    `yaml:"retain"`
}

// DefaultMobiles is the device pool handed out when nothing is configured.
var DefaultMobiles = []string{
	"Samsung Galaxy S9",
	"Samsung Galaxy S8 #1",
	"Samsung Galaxy S8 #2",
	"Motorola Nexus 6",
	"Oneplus 9",
	"Apple iPhone 13",
	"Apple iPhone 12",
	"Apple iPhone 11",
	"iPhone X",
	"Nokia 3310",
}

func Default() Config {
	return Config{
		Mobiles:         append([]string(nil), DefaultMobiles...),
		HTTPAddr:        ":8080",
		GRPCAddr:        ":9090",
		LogLevel:        "info",
		LogFormat:       "text",
		ShutdownTimeout: 10 * time.Second,
		RateLimit: RateLimit{
			Window: time.Second,
		},
		Notify: Notify{
			QueueSize: 256,
			Timeout:   2 * time.Second,
			Log:       true,
			Websocket: true,
			Redis: Redis{
				ChannelPrefix: "handset",
			},
		},
	}
}

// Load reads path over the defaults (a missing path means defaults only),
// then applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if list := os.Getenv("HANDSET_MOBILES"); list != "" {
		c.Mobiles = strings.Split(list, ",")
	}
	c.HTTPAddr = envOrDefault("HANDSET_HTTP_ADDR", c.HTTPAddr)
	c.GRPCAddr = envOrDefault("HANDSET_GRPC_ADDR", c.GRPCAddr)
	c.LogLevel = envOrDefault("HANDSET_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOrDefault("HANDSET_LOG_FORMAT", c.LogFormat)
	c.Notify.Redis.Addr = envOrDefault("HANDSET_REDIS_ADDR", c.Notify.Redis.Addr)
	c.Notify.Redis.Password = envOrDefault("HANDSET_REDIS_PASSWORD", c.Notify.Redis.Password)
	c.Notify.Journal.Path = envOrDefault("HANDSET_JOURNAL_PATH", c.Notify.Journal.Path)

	var err error
	if c.StrictCatalog, err = boolOrDefault("HANDSET_STRICT_CATALOG", c.StrictCatalog); err != nil {
		return err
	}
	if c.ShutdownTimeout, err = durationOrDefault("HANDSET_SHUTDOWN_TIMEOUT", c.ShutdownTimeout); err != nil {
		return err
	}
	if c.RateLimit.Requests, err = intOrDefault("HANDSET_RATE_LIMIT_REQUESTS", c.RateLimit.Requests); err != nil {
		return err
	}
	if c.RateLimit.Burst, err = intOrDefault("HANDSET_RATE_LIMIT_BURST", c.RateLimit.Burst); err != nil {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error

	hasMobile := false
	for _, m := range c.Mobiles {
		if strings.TrimSpace(m) != "" {
			hasMobile = true
			break
		}
	}
	if !hasMobile {
		errs = append(errs, errors.New("at least one mobile is required"))
	}
	if strings.TrimSpace(c.HTTPAddr) == "" && strings.TrimSpace(c.GRPCAddr) == "" {
		errs = append(errs, errors.New("http_addr or grpc_addr is required"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	if c.RateLimit.Requests < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit values must not be negative"))
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit.window must be positive"))
	}
	if c.Notify.QueueSize <= 0 {
		errs = append(errs, errors.New("notify.queue_size must be positive"))
	}
	if c.Notify.Timeout <= 0 {
		errs = append(errs, errors.New("notify.timeout must be positive"))
	}
	if c.Notify.Journal.Retain < 0 {
		errs = append(errs, errors.New("notify.journal.retain must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func intOrDefault(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func boolOrDefault(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "":
		return fallback, nil
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return fallback, fmt.Errorf("%s: invalid boolean %q", key, value)
	}
}
