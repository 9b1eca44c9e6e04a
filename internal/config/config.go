package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode              string        `mapstructure:"mode"`
	Port              int           `mapstructure:"port"`
	LogLevel          string        `mapstructure:"log_level"`
	TemplatePath      string        `mapstructure:"template_path"`
	Secret            string        `mapstructure:"secret"`
	ReadLimit         int64         `mapstructure:"read_limit"`
	PingPeriod        time.Duration `mapstructure:"ping_period"`
	PongWait          time.Duration `mapstructure:"pong_wait"`
	WriteWait         time.Duration `mapstructure:"write_wait"`
	SendBuffer        int           `mapstructure:"send_buffer"`
	SendTimeout       time.Duration `mapstructure:"send_timeout"`
	FanoutWorkers     int           `mapstructure:"fanout_workers"`
	OnDeliveryFailure string        `mapstructure:"on_delivery_failure"`
	EvictEmptyRooms   bool          `mapstructure:"evict_empty_rooms"`
}

const envPrefix = "RELAY"

// Load reads config/config.<CONFIG_ENV>.yaml, then RELAY_* environment
// variables, then command-line flags, each overriding the previous.
func Load(args []string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	fs := pflag.NewFlagSet("relay", pflag.ContinueOnError)
	fs.String("config", "", "path to config file")
	fs.Int("port", 8080, "listen port")
	fs.String("mode", "release", "gin mode: release, debug or test")
	fs.String("log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	fileName, _ := fs.GetString("config")
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("template_path", "")
	v.SetDefault("secret", "")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("send_timeout", "2s")
	v.SetDefault("fanout_workers", 0)
	v.SetDefault("on_delivery_failure", "drop")
	v.SetDefault("evict_empty_rooms", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{"port": "port", "mode": "mode", "log_level": "log-level"} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Secret == "" {
		// Sessions do not survive a restart with a generated key.
		cfg.Secret = uuid.NewString()
		log.Warn().Str("module", "config").Msg("no secret configured, generated an ephemeral one")
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Msg("config ready")
	return &cfg, nil
}

var ErrNoSecret = errors.New("secret is required outside debug and test mode")

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.OnDeliveryFailure {
	case "drop", "close":
	default:
		return fmt.Errorf("invalid on_delivery_failure %q", c.OnDeliveryFailure)
	}
	if c.Secret == "" && c.Mode == "release" {
		return ErrNoSecret
	}
	return nil
}
