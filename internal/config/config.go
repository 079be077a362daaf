package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the application configuration.
type Config struct {
	Registry  RegistryConfig  `yaml:"registry" envconfig:"REGISTRY"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// RegistryConfig locates the buyer registry.
type RegistryConfig struct {
	SpreadsheetID string        `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID" validate:"required"`
	SheetName     string        `yaml:"sheet_name" envconfig:"SHEET_NAME" validate:"required"`
	URL           string        `yaml:"url" envconfig:"URL" validate:"omitempty,url"`
	APIKey        string        `yaml:"api_key" envconfig:"API_KEY"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	RatePerMinute float64       `yaml:"rate_per_minute" envconfig:"RATE_PER_MINUTE" validate:"gte=0"`
	Burst         int           `yaml:"burst" envconfig:"BURST" validate:"gte=1"`
}

// ExportURL returns the CSV export endpoint, or URL when one is configured.
func (r RegistryConfig) ExportURL() string {
	if r.URL != "" {
		return r.URL
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		url.PathEscape(r.SpreadsheetID), url.QueryEscape(r.SheetName))
}

// UseSheetsAPI reports whether the registry is read through the Sheets API
// instead of the public CSV export.
func (r RegistryConfig) UseSheetsAPI() bool {
	return r.APIKey != ""
}

// PathsConfig overrides directory resolution. Empty values mean "resolve".
type PathsConfig struct {
	BaseDir  string `yaml:"base_dir" envconfig:"BASE_DIR"`
	StateDir string `yaml:"state_dir" envconfig:"STATE_DIR"`
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig configures OpenTelemetry.
type TelemetryConfig struct {
	Enabled        bool    `yaml:"enabled" envconfig:"ENABLED"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	MetricsAddr    string  `yaml:"metrics_addr" envconfig:"METRICS_ADDR" validate:"omitempty,hostname_port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			SpreadsheetID: DefaultSpreadsheetID,
			SheetName:     DefaultSheetName,
			Timeout:       RegistryTimeout,
			RatePerMinute: RegistryRatePerMin,
			Burst:         RegistryBurst,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "file",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}

// Load builds the configuration from defaults, the config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadFile(configFilePath())
}

// LoadFile is Load with an explicit file. An empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := mergeFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	case "gt", "gte", "lte":
		return fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func configFilePath() string {
	if p := os.Getenv(ConfigEnvVar); p != "" {
		return p
	}

	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "config.yaml"))
	}
	candidates = append(candidates, "config.yaml")

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
