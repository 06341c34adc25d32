// Package config loads the settings of the tsstat command.
//
// Values are resolved in three layers: the defaults in the struct tags, an
// optional YAML profile, then TSSTAT_* environment variables. Command-line
// flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sartorproj/tsstat/internal/logging"
	"github.com/sartorproj/tsstat/timeseries"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TSSTAT"

// PathEnv names the variable that points at a YAML profile when no path is
// given explicitly.
const PathEnv = EnvPrefix + "_CONFIG"

// Config holds the command settings.
type Config struct {
	Alpha       float64 `yaml:"alpha" envconfig:"ALPHA" default:"0.05" validate:"gt=0,lt=1"`
	Output      string  `yaml:"output" envconfig:"OUTPUT" default:"text" validate:"oneof=text json"`
	LogLevel    string  `yaml:"log_level" envconfig:"LOG_LEVEL" default:"warn" validate:"oneof=debug info warn warning error"`
	LogFormat   string  `yaml:"log_format" envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
	Column      string  `yaml:"column" envconfig:"COLUMN" default:"y"`
	TimeColumn  string  `yaml:"time_column" envconfig:"TIME_COLUMN"`
	Delimiter   string  `yaml:"delimiter" envconfig:"DELIMITER" default:"," validate:"len=1"`
	DropMissing bool    `yaml:"drop_missing" envconfig:"DROP_MISSING" default:"false"`
	Concurrency int     `yaml:"concurrency" envconfig:"CONCURRENCY" default:"0" validate:"gte=0"`
}

var validate = validator.New()

// Load resolves the configuration. When path is empty $TSSTAT_CONFIG names
// the profile; with neither set only defaults and the environment apply.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		if err := cfg.applyEnv(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv copies the fields whose variables are set, so the environment
// wins over the profile without the tag defaults clobbering it.
func (c *Config) applyEnv() error {
	var env Config
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to load config from env: %w", err)
	}
	dst, src := reflect.ValueOf(c).Elem(), reflect.ValueOf(env)
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("envconfig")
		if _, ok := os.LookupEnv(EnvPrefix + "_" + name); ok {
			dst.Field(i).Set(src.Field(i))
		}
	}
	return nil
}

// Validate checks the struct tags and reports every failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fieldRule(fe), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// CSVOptions returns loader options for the configured columns.
func (c *Config) CSVOptions() *timeseries.CSVOptions {
	opts := timeseries.DefaultCSVOptions()
	opts.ValueColumn = c.Column
	opts.DateColumn = c.TimeColumn
	if r := []rune(c.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	return opts
}

// Level returns the parsed log level.
func (c *Config) Level() logging.Level {
	l, _ := logging.ParseLevel(c.LogLevel)
	return l
}

// Logger builds the logger the configuration describes, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return logging.New(c.Level(), logging.Format(c.LogFormat), w)
}
