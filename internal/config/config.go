// Package config loads the settings of the mapping pipeline from defaults,
// an optional YAML file and SIP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the mapping pipeline
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging"`
	Execution   ExecutionConfig   `mapstructure:"execution"`
	Interactive InteractiveConfig `mapstructure:"interactive"`
	Validation  ValidationConfig  `mapstructure:"validation"`
	Generator   GeneratorConfig   `mapstructure:"generator"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// ExecutionConfig holds bulk processing configuration
type ExecutionConfig struct {
	Workers         int           `mapstructure:"workers" validate:"min=1,max=256"`
	QueueSize       int           `mapstructure:"queue_size" validate:"min=1"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// InteractiveConfig holds settings of the interactive editing session
type InteractiveConfig struct {
	// Debounce delays recompilation while the curator is still typing.
	Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`
}

// ValidationConfig selects the validation stages run on every output
type ValidationConfig struct {
	Schema    bool   `mapstructure:"schema"`
	URI       bool   `mapstructure:"uri"`
	RDF       bool   `mapstructure:"rdf"`
	RDFFormat string `mapstructure:"rdf_format" validate:"oneof=turtle ntriples"`
}

// GeneratorConfig holds code generation configuration
type GeneratorConfig struct {
	Trace    bool `mapstructure:"trace"`
	Comments bool `mapstructure:"comments"`
}

// EnvPrefix prefixes environment overrides, e.g. SIP_EXECUTION_WORKERS.
const EnvPrefix = "SIP"

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("execution.workers", 4)
	v.SetDefault("execution.queue_size", 256)
	v.SetDefault("execution.shutdown_timeout", "30s")
	v.SetDefault("interactive.debounce", "500ms")
	v.SetDefault("validation.schema", true)
	v.SetDefault("validation.uri", true)
	v.SetDefault("validation.rdf", false)
	v.SetDefault("validation.rdf_format", "turtle")
	v.SetDefault("generator.trace", false)
	v.SetDefault("generator.comments", true)
}

// Default returns the configuration built from defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults do not unmarshal: %v", err))
	}

	return &cfg
}

// Load reads configuration. file may be empty, in which case "sip.yaml" is
// looked up in the working directory and ./config; a missing file is not an
// error. Environment variables override both.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("sip")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report keys as they are written in the file
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Validate checks value ranges and enumerations.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s", fe.Namespace(), errorMessage(fe)))
	}

	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
