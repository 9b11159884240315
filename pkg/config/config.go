package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/learner-grades-api/internal/models"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Log     LogConfig
	Metrics MetricsConfig
	Docs    DocsConfig
	Grading GradingConfig
	Export  ExportConfig
	HTTP    HTTPConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoints.
type MetricsConfig struct {
	Enabled bool
}

// DocsConfig toggles the swagger UI.
type DocsConfig struct {
	Enabled bool
}

// GradingConfig controls how learner data is evaluated.
type GradingConfig struct {
	// EvaluationTime pins "now" for every computation; nil uses the wall clock.
	EvaluationTime *time.Time
}

// ExportConfig tunes rendered reports.
type ExportConfig struct {
	Title string
}

// HTTPConfig bounds request handling.
type HTTPConfig struct {
	MaxBodyBytes int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	docsEnabled := cfg.Env != EnvProduction
	if v.IsSet("ENABLE_DOCS") {
		docsEnabled = v.GetBool("ENABLE_DOCS")
	}
	cfg.Docs = DocsConfig{Enabled: docsEnabled}

	evaluationTime, err := parseEvaluationTime(v.GetString("GRADING_EVALUATION_TIME"))
	if err != nil {
		return nil, err
	}
	cfg.Grading = GradingConfig{EvaluationTime: evaluationTime}

	cfg.Export = ExportConfig{Title: v.GetString("EXPORT_TITLE")}

	maxBody := v.GetInt64("MAX_BODY_BYTES")
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	cfg.HTTP = HTTPConfig{MaxBodyBytes: maxBody}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("GRADING_EVALUATION_TIME", "")
	v.SetDefault("EXPORT_TITLE", "Learner Grade Report")
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
}

// Clock returns the evaluation clock described by the grading config.
func (g GradingConfig) Clock() func() time.Time {
	if g.EvaluationTime != nil {
		pinned := *g.EvaluationTime
		return func() time.Time { return pinned }
	}
	return func() time.Time { return time.Now().UTC() }
}

func parseEvaluationTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("GRADING_EVALUATION_TIME: %w", err)
	}
	return &d.Time, nil
}
