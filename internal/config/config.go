package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Auth    AuthConfig
	Health  HealthConfig
	Sheets  SheetsConfig
	Alerts  AlertsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AuthConfig holds bearer-token verification settings.
type AuthConfig struct {
	JWTSecret string
}

// HealthConfig drives the data-health re-check and export jobs.
type HealthConfig struct {
	RecheckSchedule  string
	RecheckWindow    time.Duration
	RecheckBatchSize int64
	AlertThreshold   int
	ExportSchedule   string
}

// SheetsConfig configures the optional health report export. Export is
// enabled only when both fields are set.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Sheets export should run.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// AlertsConfig configures the optional low-health webhook. Alerting is
// enabled only when a webhook URL is set.
type AlertsConfig struct {
	WebhookURL string
	Token      string
}

// Enabled reports whether webhook alerting should run.
func (c AlertsConfig) Enabled() bool {
	return c.WebhookURL != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	recheckWindow, err := time.ParseDuration(getenvWithDefault("HEALTH_RECHECK_WINDOW", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid HEALTH_RECHECK_WINDOW: %w", err)
	}

	batchSize, err := strconv.ParseInt(getenvWithDefault("HEALTH_RECHECK_BATCH_SIZE", "500"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HEALTH_RECHECK_BATCH_SIZE: %w", err)
	}

	alertThreshold, err := strconv.Atoi(getenvWithDefault("HEALTH_ALERT_THRESHOLD", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid HEALTH_ALERT_THRESHOLD: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "agritrack"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Health: HealthConfig{
			RecheckSchedule:  getenvWithDefault("HEALTH_RECHECK_SCHEDULE", "0 3 * * *"),
			RecheckWindow:    recheckWindow,
			RecheckBatchSize: batchSize,
			AlertThreshold:   alertThreshold,
			ExportSchedule:   getenvWithDefault("HEALTH_EXPORT_SCHEDULE", "0 6 * * 1"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_REPORT_ID"),
		},
		Alerts: AlertsConfig{
			WebhookURL: os.Getenv("HEALTH_ALERT_WEBHOOK_URL"),
			Token:      os.Getenv("HEALTH_ALERT_WEBHOOK_TOKEN"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	if c.Health.RecheckSchedule == "" {
		return errors.New("HEALTH_RECHECK_SCHEDULE must be provided")
	}
	if c.Health.RecheckWindow <= 0 {
		return errors.New("HEALTH_RECHECK_WINDOW must be positive")
	}
	if c.Health.RecheckBatchSize <= 0 {
		return errors.New("HEALTH_RECHECK_BATCH_SIZE must be positive")
	}
	if c.Health.AlertThreshold < 0 || c.Health.AlertThreshold > 100 {
		return errors.New("HEALTH_ALERT_THRESHOLD must be between 0 and 100")
	}

	// Either both Sheets fields or neither; a half-configured export is a
	// deployment mistake.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_REPORT_ID must be set together")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
