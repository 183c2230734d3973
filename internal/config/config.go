package config

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"os"
	"strings"
	"time"
)

const (
	envPrefix     = "OTK"
	configFileEnv = "OTK_CONFIG_FILE"
)

var validate = validator.New()

var defaults = map[string]any{
	"log.level":                 "info",
	"log.development":           false,
	"decode.max_depth":          64,
	"decode.max_nodes":          1 << 20,
	"decode.id_policy":          "strict",
	"report.host":               "localhost",
	"report.port":               0,
	"report.protocol":           "grpc",
	"report.timeout":            10 * time.Second,
	"receiver.grpc_address":     ":4317",
	"receiver.http_address":     ":4318",
	"receiver.capture_capacity": 1024,
	"elasticsearch.addresses":   []string{},
	"elasticsearch.index":       "otk_spans",
	"elasticsearch.flush_size":  30,
	"kafka.brokers":             []string{"localhost:9092"},
	"kafka.topic":               "otlp_spans",
	"kafka.group_id":            "otk",
	"kafka.signal":              "traces",
}

// Load reads configuration from defaults, an optional YAML file and OTK_*
// environment variables, in increasing order of precedence. An empty path
// falls back to OTK_CONFIG_FILE; when neither is set no file is read.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(configFileEnv)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks struct tags. It is exported so commands can re-validate
// after applying flag overrides.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s", e.Namespace(), validationMessage(e)))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "url":
		return "must be a URL"
	default:
		return fmt.Sprintf("failed validation tag: %s", e.Tag())
	}
}
