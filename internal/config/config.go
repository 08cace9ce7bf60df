package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"talentmetrics/domain/labels"
	"talentmetrics/internal/errors"
)

// EnvPrefix prefixes every environment variable, e.g. TALENT_INPUT_EXITS_FILE
const EnvPrefix = "TALENT"

// Config represents the complete application configuration
type Config struct {
	Input    InputConfig    `envconfig:"INPUT"`
	Output   OutputConfig   `envconfig:"OUTPUT"`
	Labels   LabelConfig    `envconfig:"LABELS"`
	Model    ModelConfig    `envconfig:"MODEL"`
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DATABASE"`
	Cache    CacheConfig    `envconfig:"CACHE"`
}

// InputConfig locates the three source spreadsheets. Any of them may be
// empty; the pipeline then skips everything that depends on it.
type InputConfig struct {
	HeadcountFile  string `envconfig:"HEADCOUNT_FILE"`
	HeadcountSheet string `envconfig:"HEADCOUNT_SHEET"`
	ExitsFile      string `envconfig:"EXITS_FILE"`
	ExitsSheet     string `envconfig:"EXITS_SHEET"`
	TrainingFile   string `envconfig:"TRAINING_FILE"`
	TrainingSheet  string `envconfig:"TRAINING_SHEET"`
}

// OutputConfig selects the report sinks
type OutputConfig struct {
	Workbook string `envconfig:"WORKBOOK" default:"Talent_Metrics_Model_2025.xlsx"`
	HTML     string `envconfig:"HTML"`
	Store    bool   `envconfig:"STORE" default:"false"`
}

// LabelConfig picks the department label map
type LabelConfig struct {
	File     string `envconfig:"FILE"`
	Builtin  string `envconfig:"BUILTIN" default:"workbook" validate:"oneof=workbook dashboard"`
	Fallback string `envconfig:"FALLBACK" validate:"omitempty,oneof=passthrough sentinel"`
	Sentinel string `envconfig:"SENTINEL"`
}

// ModelConfig holds the estimation constants
type ModelConfig struct {
	AnnualChurnRate   float64 `envconfig:"ANNUAL_CHURN_RATE" default:"0.17" validate:"gte=0,lte=1"`
	MonthlyGrowthRate float64 `envconfig:"MONTHLY_GROWTH_RATE" default:"0.01" validate:"gte=0,lte=1"`
	ForecastHorizon   int     `envconfig:"FORECAST_HORIZON" default:"6" validate:"gte=1,lte=60"`
	ReplacementCost   float64 `envconfig:"REPLACEMENT_COST" default:"12000" validate:"gte=0"`
	OpsLossValue      float64 `envconfig:"OPS_LOSS_VALUE" default:"8000" validate:"gte=0"`
	HighRiskThreshold float64 `envconfig:"HIGH_RISK_THRESHOLD" default:"5" validate:"gte=0"`
	MixWindow         int     `envconfig:"MIX_WINDOW" default:"24" validate:"gte=0"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	GinMode string `envconfig:"GIN_MODE" default:"release" validate:"oneof=debug release test"`
}

// DatabaseConfig holds the optional report store connection
type DatabaseConfig struct {
	URL          string `envconfig:"URL"`
	MaxOpenConns int    `envconfig:"MAX_OPEN_CONNS" default:"5" validate:"gte=1"`
}

// CacheConfig controls grid memoization
type CacheConfig struct {
	WatchInputs bool `envconfig:"WATCH_INPUTS" default:"true"`
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeConfigInvalid, err), "failed to read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.ConfigInvalid(describe(err))
	}
	if c.Output.Store && c.Database.URL == "" {
		return errors.ConfigInvalid("TALENT_DATABASE_URL is required when TALENT_OUTPUT_STORE is set")
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return strings.Join(msgs, "; ")
}

// LabelMap resolves the configured label map: a YAML file when set,
// otherwise a built-in map, with the fallback and sentinel overrides applied.
func (c *Config) LabelMap() (*labels.Map, error) {
	var m *labels.Map
	if c.Labels.File != "" {
		loaded, err := labels.LoadFile(c.Labels.File)
		if err != nil {
			return nil, errors.Wrapf(errors.WithCode(errors.CodeConfigInvalid, err), "failed to load label map %s", c.Labels.File)
		}
		m = loaded
	} else {
		builtin, ok := labels.Builtin(c.Labels.Builtin)
		if !ok {
			return nil, errors.ConfigInvalid(fmt.Sprintf("unknown label map %q", c.Labels.Builtin))
		}
		m = builtin
	}

	if c.Labels.Fallback != "" {
		policy, err := labels.ParseFallbackPolicy(c.Labels.Fallback)
		if err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, err)
		}
		m = m.WithFallback(policy)
	}
	if c.Labels.Sentinel != "" {
		m = m.WithSentinel(c.Labels.Sentinel)
	}
	return m, nil
}
