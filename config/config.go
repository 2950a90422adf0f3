// Package config loads settings from a config file, SITECMS_* environment
// variables and defaults.
package config

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"site_cms/generator"
)

const EnvPrefix = "SITECMS"

type Config struct {
	ServerAddr   string                `mapstructure:"server_addr"`
	Database     Database              `mapstructure:"database"`
	LogLevel     string                `mapstructure:"log_level"`
	LogFormat    string                `mapstructure:"log_format"`
	SanitizeHTML bool                  `mapstructure:"sanitize_html"`
	AuthorID     string                `mapstructure:"author_id"`
	AuthorName   string                `mapstructure:"author_name"`
	LLM          generator.LLMSettings `mapstructure:"llm"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "site_cms.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("sanitize_html", true)
	v.SetDefault("author_id", "")
	v.SetDefault("author_name", "admin")
	v.SetDefault("llm.provider", "mock")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
}

// Load reads path when given, or ./config.yaml when present. A missing
// default file is not an error; a missing explicit one is.
func Load(path string) (Config, string, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return cfg, "", errors.Wrap(err, "read config")
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, "", errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return errors.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// NewLogger builds the process logger from the log settings.
func (c Config) NewLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
