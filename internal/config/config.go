package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const DefaultService = "soilservice"

var ErrUnknownService = errors.New("unknown service")

type Config struct {
	Mode           string                   `mapstructure:"mode"`
	Port           int                      `mapstructure:"port"`
	StaticPath     string                   `mapstructure:"static_path"`
	ReadLimit      int64                    `mapstructure:"read_limit"`
	PingPeriod     time.Duration            `mapstructure:"ping_period"`
	Secret         string                   `mapstructure:"secret"`
	LogLevel       string                   `mapstructure:"log_level"`
	UserCacheSize  int                      `mapstructure:"user_cache_size"`
	DefaultService string                   `mapstructure:"default_service"`
	Services       map[string]ServiceConfig `mapstructure:"services"`
}

// ServiceConfig locates one named GraphQL backend.
type ServiceConfig struct {
	HTTPURL string        `mapstructure:"http_url"`
	WSURL   string        `mapstructure:"ws_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Service returns the named backend. Names are case-insensitive, as viper lowercases keys.
func (c *Config) Service(name string) (ServiceConfig, error) {
	svc, ok := c.Services[strings.ToLower(name)]
	if !ok {
		return ServiceConfig{}, fmt.Errorf("%w: %s", ErrUnknownService, name)
	}
	if svc.Timeout <= 0 {
		svc.Timeout = 10 * time.Second
	}
	return svc, nil
}

func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName on top of the defaults. A missing file is not an error.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("EDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("log_level", "info")
	v.SetDefault("user_cache_size", 1024)
	v.SetDefault("default_service", DefaultService)
	v.SetDefault("services.soilservice.http_url", "http://localhost:5001/graphql")
	v.SetDefault("services.soilservice.ws_url", "ws://localhost:5001/graphql")
	v.SetDefault("services.soilservice.timeout", "10s")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Str("service", cfg.DefaultService).
		Msg("config ready")
	return &cfg, nil
}
