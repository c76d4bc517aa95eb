package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the runtime settings of the calculator service. Every field
// maps to an environment variable of the same name in upper case, e.g.
// log_level -> LOG_LEVEL.
type Config struct {
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
	Host string `mapstructure:"host"`

	LogLevel  string `mapstructure:"log_level"  validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json console"`
	LogDir    string `mapstructure:"log_dir"`

	RateLimit      float64 `mapstructure:"rate_limit"       validate:"gte=0"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"gte=0"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`

	TracingEnabled  bool `mapstructure:"tracing_enabled"`
	MetricsEnabled  bool `mapstructure:"metrics_enabled"`
	OTELLogsEnabled bool `mapstructure:"otel_logs_enabled"`
}

// Addr returns the listen address for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewViper returns a viper instance bound to the process environment with
// all defaults set. Keys without a default are invisible to Unmarshal, so
// every Config field must be listed here.
func NewViper() *viper.Viper {
	vip := viper.New()

	vip.SetDefault("port", 4000)
	vip.SetDefault("host", "")

	vip.SetDefault("log_level", "info")
	vip.SetDefault("log_format", "json")
	vip.SetDefault("log_dir", "logs")

	vip.SetDefault("rate_limit", 100)
	vip.SetDefault("rate_limit_burst", 200)

	vip.SetDefault("read_timeout", 10*time.Second)
	vip.SetDefault("write_timeout", 10*time.Second)
	vip.SetDefault("shutdown_timeout", 5*time.Second)

	vip.SetDefault("tracing_enabled", true)
	vip.SetDefault("metrics_enabled", true)
	vip.SetDefault("otel_logs_enabled", false)

	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	return vip
}

// Load decodes vip into a Config and validates it.
func Load(vip *viper.Viper) (*Config, error) {
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
