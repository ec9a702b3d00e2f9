package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flaneur2020/card-png/cardpng/logger"
	"github.com/flaneur2020/card-png/cardpng/pngutil"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CARDPNG_LOG_LEVEL.
const EnvPrefix = "CARDPNG"

// Config holds the settings shared by the cardpng commands.
type Config struct {
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// Keyword is the tEXt keyword cards are read from and written to.
	Keyword string `yaml:"keyword" mapstructure:"keyword"`
	// Append keeps existing card chunks when embedding instead of replacing them.
	Append bool `yaml:"append" mapstructure:"append"`
	// Workers bounds the number of cards scanned concurrently.
	Workers  int  `yaml:"workers" mapstructure:"workers"`
	Progress bool `yaml:"progress" mapstructure:"progress"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "error",
		Keyword:  "ccv3",
		Append:   false,
		Workers:  4,
		Progress: true,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := logger.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level must be one of: silent, debug, info, warn, error")
	}
	if err := pngutil.ValidateKeyword(c.Keyword); err != nil {
		return fmt.Errorf("keyword: %w", err)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	return nil
}

// Load reads configuration from configFile, or from cardpng.yaml in the
// working directory when configFile is empty, and applies CARDPNG_*
// environment overrides on top of the defaults. A missing default file is not
// an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("cardpng")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("keyword", c.Keyword)
	v.SetDefault("append", c.Append)
	v.SetDefault("workers", c.Workers)
	v.SetDefault("progress", c.Progress)
}
