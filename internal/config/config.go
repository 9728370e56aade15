// Package config loads the miracl settings from defaults, config files and MIRACL_ environment
// variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the settings shared by every command.
type Config struct {
	Log LogConfig `mapstructure:"log"`
	// Python is the interpreter used for python pipeline scripts.
	Python string `mapstructure:"python"`
	// DryRun prints pipeline invocations instead of running them.
	DryRun bool `mapstructure:"dry_run"`
}

// LogConfig configures logging. When File is set, logs are also written, as JSON, to a rotated
// log file.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"console", "json"}
)

// Load reads the configuration. If file is empty, a "miracl" config file is searched for in
// <installDir>/config and then in ~/.miracl; not finding one is not an error. Environment
// variables override files, e.g. MIRACL_LOG_LEVEL for log.level.
func Load(installDir, file string) (*Config, error) {
	v := viper.New()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("python", "python3")
	v.SetDefault("dry_run", false)

	v.SetEnvPrefix("MIRACL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		expanded, err := homedir.Expand(file)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", file, err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", expanded, err)
		}
	} else {
		v.SetConfigName("miracl")
		v.SetConfigType("yaml")
		if installDir != "" {
			v.AddConfigPath(filepath.Join(installDir, "config"))
		}
		if userDir, err := homedir.Expand("~/.miracl"); err == nil {
			v.AddConfigPath(userDir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	c.Log.Level = strings.ToLower(c.Log.Level)
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("invalid log.level %q: must be one of %s", c.Log.Level, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("invalid log.format %q: must be one of %s", c.Log.Format, strings.Join(logFormats, ", "))
	}
	if c.Log.MaxSize <= 0 {
		return fmt.Errorf("invalid log.max_size %d: must be positive", c.Log.MaxSize)
	}
	if c.Python == "" {
		return errors.New("python must not be empty")
	}
	return nil
}
