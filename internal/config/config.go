package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	// Database
	DatabaseURL string `env:"DATABASE_URL"`

	// JWT (access tokens issued by the identity provider)
	JWTSecret string `env:"JWT_SECRET"`

	// Background Workers
	WorkerCount int `env:"WORKER_COUNT" envDefault:"5"`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Email (Resend)
	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromEmail    string `env:"FROM_EMAIL" envDefault:"onboarding@resend.dev"`
	FromName     string `env:"FROM_NAME" envDefault:"Work Permit System"`

	// Email (SMTP), used when Resend is not configured
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPTLS      bool   `env:"SMTP_TLS" envDefault:"false"`

	// Outbound notifications per second, 0 disables throttling
	NotifyRatePerSecond float64 `env:"NOTIFY_RATE_PER_SECOND" envDefault:"2"`

	// Sentry
	SentryDSN string `env:"SENTRY_DSN"`

	// Approver tables
	EHSManagerEmail        string            `env:"EHS_MANAGER_EMAIL"`
	EHSEmails              []string          `env:"EHS_EMAILS" envSeparator:","`
	OperationsManagerEmail string            `env:"OPERATIONS_MANAGER_EMAIL"`
	DepartmentManagers     map[string]string `env:"DEPARTMENT_MANAGERS" envSeparator:"," envKeyValSeparator:":"`
	AreaSupervisors        map[string]string `env:"AREA_SUPERVISORS" envSeparator:"," envKeyValSeparator:":"`
	AdminEmails            []string          `env:"ADMIN_EMAILS" envSeparator:","`
	Applicants             []string          `env:"APPLICANTS" envSeparator:","`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.IsProduction() {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return &cfg, nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Roles builds the approver snapshot consumed by the role resolver.
// Keys and values are trimmed; entries with an empty side are dropped.
func (c *Config) Roles() RoleTables {
	t := RoleTables{
		OperationsManagerEmail: strings.TrimSpace(c.OperationsManagerEmail),
		DepartmentManagers:     cleanMap(c.DepartmentManagers),
		AreaSupervisors:        cleanMap(c.AreaSupervisors),
		AdminEmails:            cleanList(c.AdminEmails),
	}

	if ehs := strings.TrimSpace(c.EHSManagerEmail); ehs != "" {
		t.EHSEmails = append(t.EHSEmails, ehs)
	}
	t.EHSEmails = append(t.EHSEmails, cleanList(c.EHSEmails)...)

	for _, entry := range c.Applicants {
		name, email, ok := strings.Cut(entry, ":")
		name, email = strings.TrimSpace(name), strings.TrimSpace(email)
		if !ok || name == "" || email == "" {
			continue
		}
		t.Applicants = append(t.Applicants, Applicant{Name: name, Email: email})
	}

	return t
}

// RoleTables is an immutable snapshot of who approves what
type RoleTables struct {
	// EHSEmails lists every address holding the EHS capability; the first one receives notifications
	EHSEmails []string
	// OperationsManagerEmail, when set, approves the final stage for every department
	OperationsManagerEmail string
	// DepartmentManagers maps a department to its operations manager
	DepartmentManagers map[string]string
	// AreaSupervisors maps a named supervisor role (e.g. "Production Manager") to an email
	AreaSupervisors map[string]string
	AdminEmails     []string
	// Applicants restricts who may submit; empty means any authenticated user
	Applicants []Applicant
}

// Applicant is an entry of the applicant picker
type Applicant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func cleanMap(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
