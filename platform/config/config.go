// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDBMaxConns() int32
	GetDBMinConns() int32
	GetDBConnMaxLifetime() time.Duration
	GetDBStatementTimeout() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// PricingConfig provides settings for the external pricing collaborator
// and the local add-on catalog.
type PricingConfig interface {
	GetPricingAPIURL() string
	GetPricingAPITimeout() time.Duration
	GetPricingCatalogPath() string
	GetQuoteCacheTTL() time.Duration
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// MapsConfig provides settings for address suggestions.
type MapsConfig interface {
	GetMapsSearchURL() string
	GetMapsCountryCodes() string
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// NotificationConfig provides settings for customer notifications.
type NotificationConfig interface {
	GetAppBaseURL() string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketJobPhotos() string
	IsMinIOEnabled() bool
}

// PortalConfig provides settings for the booking self-service portal.
type PortalConfig interface {
	GetPortalViewTTL() time.Duration
	GetSuccessDisplayDelay() time.Duration
	GetSupportPhone() string
	GetAppBaseURL() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	DBMaxConns          int
	DBMinConns          int
	DBConnMaxLifetime   time.Duration
	DBStatementTimeout  time.Duration
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	AppBaseURL          string
	RedisURL            string
	RedisTLSInsecure    bool
	AsynqQueueName      string
	AsynqConcurrency    int
	PricingAPIURL       string
	PricingAPITimeout   time.Duration
	PricingCatalogPath  string
	QuoteCacheTTL       time.Duration
	MapsSearchURL       string
	MapsCountryCodes    string
	EmailEnabled        bool
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	EmailFromName       string
	EmailFromAddress    string
	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOUseSSL         bool
	MinioBucketJobPhoto string
	PortalViewTTL       time.Duration
	SuccessDisplayDelay time.Duration
	SupportPhone        string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string               { return c.DatabaseURL }
func (c *Config) GetDBMaxConns() int32                 { return int32(c.DBMaxConns) }
func (c *Config) GetDBMinConns() int32                 { return int32(c.DBMinConns) }
func (c *Config) GetDBConnMaxLifetime() time.Duration  { return c.DBConnMaxLifetime }
func (c *Config) GetDBStatementTimeout() time.Duration { return c.DBStatementTimeout }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// PricingConfig implementation
func (c *Config) GetPricingAPIURL() string            { return c.PricingAPIURL }
func (c *Config) GetPricingAPITimeout() time.Duration { return c.PricingAPITimeout }
func (c *Config) GetPricingCatalogPath() string       { return c.PricingCatalogPath }
func (c *Config) GetQuoteCacheTTL() time.Duration     { return c.QuoteCacheTTL }

// MapsConfig implementation
func (c *Config) GetMapsSearchURL() string    { return c.MapsSearchURL }
func (c *Config) GetMapsCountryCodes() string { return c.MapsCountryCodes }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketJobPhotos() string { return c.MinioBucketJobPhoto }
func (c *Config) IsMinIOEnabled() bool            { return c.MinIOEndpoint != "" }

// PortalConfig implementation
func (c *Config) GetPortalViewTTL() time.Duration       { return c.PortalViewTTL }
func (c *Config) GetSuccessDisplayDelay() time.Duration { return c.SuccessDisplayDelay }
func (c *Config) GetSupportPhone() string               { return c.SupportPhone }
func (c *Config) GetAppBaseURL() string                 { return c.AppBaseURL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DBMaxConns:          mustInt(getEnv("DB_MAX_CONNS", "10")),
		DBMinConns:          mustInt(getEnv("DB_MIN_CONNS", "2")),
		DBConnMaxLifetime:   mustDuration(getEnv("DB_CONN_MAX_LIFETIME", "1h")),
		DBStatementTimeout:  mustDuration(getEnv("DB_STATEMENT_TIMEOUT", "10s")),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:          getEnv("APP_BASE_URL", "http://localhost:3000"),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:    mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		PricingAPIURL:       getEnv("PRICING_API_URL", ""),
		PricingAPITimeout:   mustDuration(getEnv("PRICING_API_TIMEOUT", "10s")),
		PricingCatalogPath:  getEnv("PRICING_CATALOG_PATH", ""),
		QuoteCacheTTL:       mustDuration(getEnv("QUOTE_CACHE_TTL", "10m")),
		MapsSearchURL:       getEnv("MAPS_SEARCH_URL", "https://nominatim.openstreetmap.org/search"),
		MapsCountryCodes:    getEnv("MAPS_COUNTRY_CODES", "se"),
		EmailEnabled:        emailEnabled && smtpHost != "",
		SMTPHost:            smtpHost,
		SMTPPort:            mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		EmailFromName:       getEnv("EMAIL_FROM_NAME", "Nordflytt"),
		EmailFromAddress:    getEnv("EMAIL_FROM_ADDRESS", ""),
		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:         strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketJobPhoto: getEnv("MINIO_BUCKET_JOB_PHOTOS", "job-photos"),
		PortalViewTTL:       mustDuration(getEnv("PORTAL_VIEW_TTL", "30m")),
		SuccessDisplayDelay: mustDuration(getEnv("PORTAL_SUCCESS_DISPLAY_DELAY", "1500ms")),
		SupportPhone:        getEnv("SUPPORT_PHONE", "010-555 12 89"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.DBMaxConns <= 0 || cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS, and DB_MAX_CONNS positive")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.PortalViewTTL <= 0 {
		return nil, fmt.Errorf("PORTAL_VIEW_TTL must be a positive duration")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
