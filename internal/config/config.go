package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Pending-appointment cancellation policies.
const (
	CancelPolicyRetain = "retain"
	CancelPolicyDelete = "delete"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	AppURL                    string
	Timezone                  string
	JWTSecret                 string
	JWTRefreshSecret          string
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	PendingCancelPolicy       string
	SweepCron                 string
	ShutdownTimeout           time.Duration
	Database                  DatabaseConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Environment == "development"
}

// Location resolves the configured time zone. Slot labels and "today" are
// evaluated in this zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LoadConfig loads configuration from environment variables (and .env when present).
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("ORIGIN", "http://localhost:3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USERNAME", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "nutricare")
	v.SetDefault("JWT_SECRET", "default_jwt_secret")
	v.SetDefault("JWT_REFRESH_SECRET", "default_refresh_secret")
	v.SetDefault("JWT_EXPIRATION_MINUTES", 60)
	v.SetDefault("JWT_REFRESH_EXPIRATION_HOURS", 168) // 7 days
	v.SetDefault("PENDING_CANCEL_POLICY", CancelPolicyRetain)
	v.SetDefault("SWEEP_CRON", "*/5 * * * *")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	// .env is optional; real environment variables win through AutomaticEnv.
	_ = v.ReadInConfig()

	driver := strings.ToLower(v.GetString("DB_DRIVER"))
	dbConfig := DatabaseConfig{
		Driver:   driver,
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		Username: v.GetString("DB_USERNAME"),
		Password: v.GetString("DB_PASSWORD"),
		Name:     v.GetString("DB_NAME"),
	}

	cfg := &Config{
		Port:                      v.GetString("PORT"),
		Origin:                    v.GetString("ORIGIN"),
		Environment:               v.GetString("APP_ENV"),
		AppURL:                    strings.TrimRight(v.GetString("APP_URL"), "/"),
		Timezone:                  v.GetString("TIMEZONE"),
		JWTSecret:                 v.GetString("JWT_SECRET"),
		JWTRefreshSecret:          v.GetString("JWT_REFRESH_SECRET"),
		JWTExpirationMinutes:      v.GetInt("JWT_EXPIRATION_MINUTES"),
		JWTRefreshExpirationHours: v.GetInt("JWT_REFRESH_EXPIRATION_HOURS"),
		PendingCancelPolicy:       strings.ToLower(v.GetString("PENDING_CANCEL_POLICY")),
		SweepCron:                 v.GetString("SWEEP_CRON"),
		ShutdownTimeout:           time.Duration(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	switch driver {
	case "mysql":
		if dbConfig.Port == "" {
			dbConfig.Port = "3306"
		}
		dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=%s",
			dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name,
			url.QueryEscape(cfg.Timezone))
	case "postgres":
		if dbConfig.Port == "" {
			dbConfig.Port = "5432"
		}
		dbConfig.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
			dbConfig.Host, dbConfig.Username, dbConfig.Password, dbConfig.Name, dbConfig.Port, cfg.Timezone)
	case "sqlite":
		// DB_NAME is the database file path.
		if dbConfig.Name == "" {
			dbConfig.Name = "nutricare.db"
		}
		dbConfig.DSN = dbConfig.Name + "?_pragma=foreign_keys(1)"
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: expected mysql, postgres or sqlite", driver)
	}
	cfg.Database = dbConfig

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTExpirationMinutes <= 0 {
		return fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %d", c.JWTExpirationMinutes)
	}
	if c.JWTRefreshExpirationHours <= 0 {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %d", c.JWTRefreshExpirationHours)
	}
	if c.PendingCancelPolicy != CancelPolicyRetain && c.PendingCancelPolicy != CancelPolicyDelete {
		return fmt.Errorf("invalid PENDING_CANCEL_POLICY %q: expected %s or %s",
			c.PendingCancelPolicy, CancelPolicyRetain, CancelPolicyDelete)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return nil
}
