// Package config loads record-mapper settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"record-mapper/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. RECORD_MAPPER_CACHE_DIR.
const EnvPrefix = "RECORD_MAPPER"

// ErrInvalidConfig is returned when a loaded setting fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the record-mapper configuration.
type Config struct {
	Cache CacheConfig `mapstructure:"cache"`
	Log   LogConfig   `mapstructure:"log"`
	// Declarations lists YAML declaration files read at startup.
	Declarations []string `mapstructure:"declarations"`
}

// CacheConfig configures the on-disk metadata cache.
type CacheConfig struct {
	// Dir is the cache root; empty disables the cache.
	Dir string `mapstructure:"dir"`
	// Umask is an octal mask applied to created files and directories.
	Umask string `mapstructure:"umask"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration. An empty path looks for record-mapper.yaml in
// the working directory and falls back to defaults when there is none; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.umask", "022")
	v.SetDefault("log.level", string(logger.InfoLevel))
	v.SetDefault("log.format", string(logger.FormatConsole))
	v.SetDefault("declarations", []string{})

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("record-mapper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if _, err := c.Cache.FileMode(); err != nil {
		return err
	}

	switch logger.Level(strings.ToUpper(c.Log.Level)) {
	case logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel:
	default:
		return fmt.Errorf("%w: log.level must be one of DEBUG, INFO, WARN, ERROR, got %q", ErrInvalidConfig, c.Log.Level)
	}

	switch logger.Format(strings.ToUpper(c.Log.Format)) {
	case logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: log.format must be CONSOLE or JSON, got %q", ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

// FileMode parses Umask.
func (c CacheConfig) FileMode() (os.FileMode, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(c.Umask, "0o"), "0O")

	mask, err := strconv.ParseUint(s, 8, 32)
	if err != nil || mask > 0o777 {
		return 0, fmt.Errorf("%w: cache.umask must be an octal mask such as 022, got %q", ErrInvalidConfig, c.Umask)
	}

	return os.FileMode(mask), nil
}

// Logger builds the logger described by the configuration.
func (c *Config) Logger() *zap.Logger {
	return logger.New(logger.Level(c.Log.Level), logger.ParseFormat(c.Log.Format))
}
