package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	ProviderIdentity = "identity"
	ProviderGemini   = "gemini"
)

type Config struct {
	Mode            string           `mapstructure:"mode"`
	Port            int              `mapstructure:"port"`
	LogLevel        string           `mapstructure:"log_level"`
	ReadLimit       int64            `mapstructure:"read_limit"`
	PingPeriod      time.Duration    `mapstructure:"ping_period"`
	PongWait        time.Duration    `mapstructure:"pong_wait"`
	WriteWait       time.Duration    `mapstructure:"write_wait"`
	SendBuffer      int              `mapstructure:"send_buffer"`
	ShutdownTimeout time.Duration    `mapstructure:"shutdown_timeout"`
	Translator      TranslatorConfig `mapstructure:"translator"`
}

type TranslatorConfig struct {
	Provider      string        `mapstructure:"provider"`
	Model         string        `mapstructure:"model"`
	APIKey        string        `mapstructure:"api_key"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int64         `mapstructure:"max_concurrent"`
}

// Load reads config/config.<CONFIG_ENV>.yaml, then RELAY_* environment
// variables. A .env file in the working directory is loaded first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg("failed to read .env")
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
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
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("translator", cfg.Translator.Provider).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("shutdown_timeout", "5s")
	v.SetDefault("translator.provider", ProviderIdentity)
	v.SetDefault("translator.model", "gemini-2.0-flash")
	// Registered so AutomaticEnv can see RELAY_TRANSLATOR_API_KEY during Unmarshal.
	v.SetDefault("translator.api_key", "")
	v.SetDefault("translator.timeout", "10s")
	v.SetDefault("translator.max_concurrent", 16)
}

func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.SendBuffer <= 0:
		return fmt.Errorf("send_buffer must be positive, got %d", c.SendBuffer)
	case c.PingPeriod <= 0 || c.PongWait <= c.PingPeriod:
		return fmt.Errorf("pong_wait (%s) must exceed ping_period (%s)", c.PongWait, c.PingPeriod)
	case c.Translator.Timeout <= 0:
		return fmt.Errorf("translator.timeout must be positive, got %s", c.Translator.Timeout)
	case c.Translator.MaxConcurrent <= 0:
		return fmt.Errorf("translator.max_concurrent must be positive, got %d", c.Translator.MaxConcurrent)
	}
	switch c.Translator.Provider {
	case ProviderIdentity:
	case ProviderGemini:
		if c.Translator.APIKey == "" {
			return errors.New("translator.api_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown translator provider %q", c.Translator.Provider)
	}
	return nil
}
