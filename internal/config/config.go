package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	LogLevel       string        `mapstructure:"log_level"`
	AllowedOrigins []string      `mapstructure:"-"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
	Backpressure   string        `mapstructure:"backpressure"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 5000)
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("rate_limit", 20)
	v.SetDefault("rate_burst", 40)
	v.SetDefault("backpressure", "drop")
}

// Load builds the config from defaults, an optional YAML file, the
// environment and command line flags, in increasing precedence.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("huddle", pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file (default config/config.$CONFIG_ENV.yaml)")
	fs.Int("port", 5000, "listen port")
	fs.String("mode", "release", "debug or release")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	for key, env := range map[string]string{
		"port":            "PORT",
		"allowed_origins": "ALLOWED_ORIGINS",
		"mode":            "MODE",
		"log_level":       "LOG_LEVEL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}
	if err := v.BindPFlag("port", fs.Lookup("port")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("mode", fs.Lookup("mode")); err != nil {
		return nil, err
	}

	fileName, explicit := fs.Lookup("config").Value.String(), true
	if fileName == "" {
		explicit = false
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)
	if err := v.ReadInConfig(); err != nil {
		if explicit {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Info().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	origins, err := parseOrigins(v.Get("allowed_origins"))
	if err != nil {
		return nil, err
	}
	cfg.AllowedOrigins = origins

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Strs("origins", cfg.AllowedOrigins).Msg("config ready")
	return &cfg, nil
}

// parseOrigins accepts a single origin, a comma separated list or a YAML list.
func parseOrigins(raw any) ([]string, error) {
	var items []string
	if s, ok := raw.(string); ok {
		items = strings.Split(s, ",")
	} else {
		var err error
		if items, err = cast.ToStringSliceE(raw); err != nil {
			return nil, fmt.Errorf("allowed_origins: %w", err)
		}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Mode != "debug" && c.Mode != "release" {
		errs = append(errs, fmt.Errorf("mode must be debug or release, got %q", c.Mode))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative"))
	}
	return errors.Join(errs...)
}
