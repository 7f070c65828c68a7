// Package config defines the environment configuration and validates it
// once at process start.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ResponseMode selects what a successful run returns to the caller.
type ResponseMode string

const (
	// ResponseAck returns {ok:true} after the fan-out completes.
	ResponseAck ResponseMode = "ack"
	// ResponseBase64 returns the PDF bytes base64-encoded in JSON.
	ResponseBase64 ResponseMode = "base64"
)

type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	AnthropicAPIKey   string        `env:"ANTHROPIC_API_KEY"`
	Model             string        `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	Temperature       float64       `env:"GENERATION_TEMPERATURE" envDefault:"0.7"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"120s"`
	RenderTimeout     time.Duration `env:"RENDER_TIMEOUT" envDefault:"30s"`

	SMTPHost    string        `env:"SMTP_HOST"`
	SMTPPort    int           `env:"SMTP_PORT" envDefault:"465"`
	SMTPSecure  bool          `env:"SMTP_SECURE" envDefault:"true"`
	SMTPUser    string        `env:"SMTP_USER"`
	SMTPPass    string        `env:"SMTP_PASS"`
	FromEmail   string        `env:"FROM_EMAIL"`
	MailTimeout time.Duration `env:"MAIL_TIMEOUT" envDefault:"30s"`

	// ReportCopyEmail always receives a copy of every generated report.
	ReportCopyEmail string `env:"REPORT_COPY_EMAIL"`

	StrictGenerationFormat bool         `env:"STRICT_GENERATION_FORMAT" envDefault:"false"`
	ResponseMode           ResponseMode `env:"RESPONSE_MODE" envDefault:"ack"`
	EmailMandatory         bool         `env:"EMAIL_MANDATORY" envDefault:"false"`

	DeliveryLogPath string `env:"DELIVERY_LOG_PATH"`
	QuestionsPath   string `env:"QUESTIONS_PATH"`
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		cfg.FromEmail = cfg.SMTPUser
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on missing credentials so no request can reach a
// half-configured backend.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.AnthropicAPIKey) == "" {
		problems = append(problems, "ANTHROPIC_API_KEY is required")
	}
	if strings.TrimSpace(c.SMTPHost) == "" || strings.TrimSpace(c.SMTPUser) == "" || strings.TrimSpace(c.SMTPPass) == "" {
		problems = append(problems, "SMTP_HOST, SMTP_USER and SMTP_PASS are required")
	}
	switch c.ResponseMode {
	case ResponseAck, ResponseBase64:
	default:
		problems = append(problems, fmt.Sprintf("RESPONSE_MODE must be %q or %q", ResponseAck, ResponseBase64))
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		problems = append(problems, "GENERATION_TEMPERATURE must be between 0 and 1")
	}
	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
