package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CLINICFORM_PORT.
const EnvPrefix = "CLINICFORM"

// Keys understood by Load. They double as flag binding targets.
const (
	KeyPort             = "PORT"
	KeyEnv              = "ENV"
	KeyLogLevel         = "LOG_LEVEL"
	KeyDatabaseURL      = "DATABASE_URL"
	KeyDBMaxConns       = "DB_MAX_CONNS"
	KeyDBMinConns       = "DB_MIN_CONNS"
	KeyStagesDir        = "STAGES_DIR"
	KeyFormTemplatesDir = "FORM_TEMPLATES_DIR"
	KeyLocale           = "LOCALE"
	KeyTimezone         = "TIMEZONE"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	StagesDir   string `mapstructure:"STAGES_DIR"`
	// FormTemplatesDir overrides the embedded HTML form templates. It must
	// hold templates/form.tmpl.
	FormTemplatesDir string `mapstructure:"FORM_TEMPLATES_DIR"`
	Locale           string `mapstructure:"LOCALE"`
	Timezone         string `mapstructure:"TIMEZONE"`
}

// Option adjusts the viper instance before the config is read.
type Option func(*viper.Viper) error

// WithConfigFile reads an explicit config file. Without it an optional
// clinicform.yaml in the working directory is tried.
func WithConfigFile(path string) Option {
	return func(v *viper.Viper) error {
		if path != "" {
			v.SetConfigFile(path)
		}
		return nil
	}
}

// WithFlags binds command line flags over the environment. Flags are looked
// up by key, lower-cased with dashes ("db-max-conns").
func WithFlags(flags *pflag.FlagSet) Option {
	return func(v *viper.Viper) error {
		if flags == nil {
			return nil
		}
		for _, key := range keys {
			flag := flags.Lookup(FlagName(key))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("config: bind flag %s: %w", flag.Name, err)
			}
		}
		return nil
	}
}

var keys = []string{
	KeyPort, KeyEnv, KeyLogLevel, KeyDatabaseURL, KeyDBMaxConns,
	KeyDBMinConns, KeyStagesDir, KeyFormTemplatesDir, KeyLocale, KeyTimezone,
}

// FlagName maps a key onto its command line flag.
func FlagName(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

func Load(options ...Option) (*Config, error) {
	v := viper.New()
	v.SetConfigName("clinicform")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Defaults
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyEnv, "development")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyDBMaxConns, 10)
	v.SetDefault(KeyDBMinConns, 1)
	v.SetDefault(KeyStagesDir, "")
	v.SetDefault(KeyFormTemplatesDir, "")
	v.SetDefault(KeyLocale, "fr-FR")
	v.SetDefault(KeyTimezone, "Europe/Paris")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind env %s: %w", key, err)
		}
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	// A missing default file is fine; a missing explicit file is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsesDatabase reports whether records live in PostgreSQL rather than
// memory.
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Env {
	case "development", "test", "production":
	default:
		return fmt.Errorf("config: ENV must be development, test or production, got %q", c.Env)
	}
	if c.Port == "" {
		return fmt.Errorf("config: PORT is required")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("config: DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("config: DB_MIN_CONNS must be between 0 and DB_MAX_CONNS, got %d", c.DBMinConns)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.FormTemplatesDir != "" {
		info, err := os.Stat(filepath.Join(c.FormTemplatesDir, "templates", "form.tmpl"))
		if err != nil || info.IsDir() {
			return fmt.Errorf("config: FORM_TEMPLATES_DIR %q has no templates/form.tmpl", c.FormTemplatesDir)
		}
	}
	return nil
}
