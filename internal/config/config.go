package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName    string
	AppEnv     string
	Port       string
	CORSOrigin string
	LogLevel   string

	// Persistence: memory, sqlite, postgres or firestore
	DBProvider         string
	DBConnection       string
	FirestoreProjectID string
	GoogleCredentials  string // service account file path

	// Auth: dev or jwt
	AuthMode  string
	JWTSecret string
	JWTExpiry time.Duration
	DevUserID string

	// AI evaluation: mock or openai
	AIProvider    string
	AITimeout     time.Duration
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Audit log: console, sheets, s3, redis or none
	LogSink            string
	AuditBatchSize     int
	AuditFlushInterval time.Duration
	AuditFlushTimeout  time.Duration

	// Audit log - Google Sheets
	SheetsSpreadsheetID         string
	SheetsTabPrefix             string
	GoogleServiceAccountEmail   string
	GoogleServiceAccountKey     string
	GoogleCredentialsJSONBase64 string

	// Audit log - S3-compatible object storage (MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services
	S3Prefix    string

	// Audit log - Redis stream
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisAuditStream string
	RedisAuditMaxLen int64

	// Rate limiting (per client IP, sliding window)
	RateLimitMax    int
	RateLimitWindow time.Duration
	TrustProxy      bool // honor X-Forwarded-For / X-Real-IP

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	appEnv := envRequired("APP_ENV") // Required: 'development' or 'production'

	cfg := &Config{
		// Application
		AppName:    envString("APP_NAME", "Liflo"),
		AppEnv:     appEnv,
		Port:       envString("PORT", envString("APP_PORT", "8787")),
		CORSOrigin: envString("CORS_ORIGIN", "*"),
		LogLevel:   envString("LOG_LEVEL", defaultLogLevel(appEnv)),

		// Persistence
		DBProvider:         strings.ToLower(envString("DB_PROVIDER", "memory")),
		DBConnection:       envString("DB_CONNECTION", ""),
		FirestoreProjectID: envString("FIRESTORE_PROJECT_ID", envString("FB_PROJECT_ID", "")),
		GoogleCredentials:  envString("GOOGLE_APPLICATION_CREDENTIALS", ""),

		// Auth
		AuthMode:  strings.ToLower(envString("AUTH_MODE", "dev")),
		JWTSecret: envString("JWT_SECRET", ""),
		JWTExpiry: envDuration("JWT_EXPIRY", 720*time.Hour), // 30 days
		DevUserID: envString("DEV_USER_ID", "u_demo"),

		// AI
		AIProvider:    strings.ToLower(envString("AI_PROVIDER", "mock")),
		AITimeout:     envDuration("AI_TIMEOUT", 10*time.Second),
		OpenAIAPIKey:  envString("OPENAI_API_KEY", ""),
		OpenAIModel:   envString("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: strings.TrimRight(envString("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),

		// Audit log
		LogSink:            strings.ToLower(envString("LOG_SINK", "console")),
		AuditBatchSize:     envInt("AUDIT_BATCH_SIZE", envInt("SHEETS_BATCH_SIZE", 20)),
		AuditFlushInterval: envDuration("AUDIT_FLUSH_INTERVAL", envMillis("SHEETS_FLUSH_INTERVAL_MS", 3*time.Second)),
		AuditFlushTimeout:  envDuration("AUDIT_FLUSH_TIMEOUT", 10*time.Second),

		SheetsSpreadsheetID:         envString("SHEETS_SPREADSHEET_ID", ""),
		SheetsTabPrefix:             envString("SHEETS_TAB_PREFIX", "logs_"),
		GoogleServiceAccountEmail:   envString("GOOGLE_SERVICE_ACCOUNT_EMAIL", ""),
		GoogleServiceAccountKey:     strings.ReplaceAll(envString("GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY", ""), `\n`, "\n"),
		GoogleCredentialsJSONBase64: envString("GOOGLE_CREDENTIALS_JSON_BASE64", ""),

		S3Region:    envString("S3_REGION", "us-east-1"),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
		S3Prefix:    envString("S3_PREFIX", "audit/"),

		RedisAddr:        envString("REDIS_ADDR", ""),
		RedisPassword:    envString("REDIS_PASSWORD", ""),
		RedisDB:          envInt("REDIS_DB", 0),
		RedisAuditStream: envString("REDIS_AUDIT_STREAM", "liflo:audit"),
		RedisAuditMaxLen: int64(envInt("REDIS_AUDIT_MAXLEN", 10000)),

		// Rate limiting
		RateLimitMax:    envInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", envMillis("RATE_LIMIT_WINDOW_MS", time.Minute)),
		TrustProxy:      envBool("TRUST_PROXY", true),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	if cfg.DBConnection == "" && cfg.DBProvider == "sqlite" {
		cfg.DBConnection = "./data/liflo.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("config invalid", "error", err)
		os.Exit(1)
	}

	return cfg
}

// Validate checks that every selected provider has what it needs to start.
// Unknown provider names are reported by the factories that build them.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBProvider {
	case "postgres":
		if c.DBConnection == "" {
			errs = append(errs, errors.New("DB_PROVIDER=postgres requires DB_CONNECTION"))
		}
	case "firestore":
		if c.FirestoreProjectID == "" {
			errs = append(errs, errors.New("DB_PROVIDER=firestore requires FIRESTORE_PROJECT_ID"))
		}
	}

	if c.AuthMode == "jwt" && c.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_MODE=jwt requires JWT_SECRET"))
	}

	if c.AIProvider == "openai" && c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("AI_PROVIDER=openai requires OPENAI_API_KEY"))
	}

	switch c.LogSink {
	case "sheets":
		if c.SheetsSpreadsheetID == "" {
			errs = append(errs, errors.New("LOG_SINK=sheets requires SHEETS_SPREADSHEET_ID"))
		}
		hasKey := c.GoogleServiceAccountEmail != "" && c.GoogleServiceAccountKey != ""
		if !hasKey && c.GoogleCredentialsJSONBase64 == "" {
			errs = append(errs, errors.New("LOG_SINK=sheets requires GOOGLE_SERVICE_ACCOUNT_EMAIL and GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY or GOOGLE_CREDENTIALS_JSON_BASE64"))
		}
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("LOG_SINK=s3 requires S3_BUCKET"))
		}
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("LOG_SINK=redis requires REDIS_ADDR"))
		}
	}

	if c.AuditBatchSize < 1 {
		errs = append(errs, fmt.Errorf("AUDIT_BATCH_SIZE must be at least 1, got %d", c.AuditBatchSize))
	}
	if c.AuditFlushInterval < 0 {
		errs = append(errs, fmt.Errorf("AUDIT_FLUSH_INTERVAL must not be negative, got %s", c.AuditFlushInterval))
	}

	if c.IsProduction() {
		if err := validateProduction(c); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// validateProduction rejects development-only shortcuts in production deployments.
func validateProduction(cfg *Config) error {
	if cfg.AuthMode == "dev" {
		return errors.New("production deployment requires AUTH_MODE=jwt")
	}
	if cfg.DBProvider == "memory" {
		return errors.New("production deployment requires a persistent DB_PROVIDER")
	}
	return nil
}

func defaultLogLevel(appEnv string) string {
	if appEnv == "development" {
		return "debug"
	}
	return "info"
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envMillis reads legacy *_MS variables holding a plain millisecond count.
func envMillis(key string, def time.Duration) time.Duration {
	ms := envInt(key, -1)
	if ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:    c.AppName,
		AppEnv:     c.AppEnv,
		Port:       c.Port,
		CORSOrigin: c.CORSOrigin,
		LogLevel:   c.LogLevel,

		DBProvider:         c.DBProvider,
		FirestoreProjectID: c.FirestoreProjectID,

		AuthMode:  c.AuthMode,
		JWTExpiry: c.JWTExpiry,

		AIProvider:    c.AIProvider,
		AITimeout:     c.AITimeout,
		OpenAIModel:   c.OpenAIModel,
		OpenAIBaseURL: c.OpenAIBaseURL,

		LogSink:            c.LogSink,
		AuditBatchSize:     c.AuditBatchSize,
		AuditFlushInterval: c.AuditFlushInterval,
		AuditFlushTimeout:  c.AuditFlushTimeout,
		SheetsTabPrefix:    c.SheetsTabPrefix,
		S3Region:           c.S3Region,
		S3Bucket:           c.S3Bucket,
		S3Endpoint:         c.S3Endpoint,
		S3Prefix:           c.S3Prefix,
		RedisAuditStream:   c.RedisAuditStream,

		RateLimitMax:    c.RateLimitMax,
		RateLimitWindow: c.RateLimitWindow,
		TrustProxy:      c.TrustProxy,
	}
}

// LogAttrs returns the sanitized config as slog attributes for the startup log line.
func (c *Config) LogAttrs() []any {
	s := c.Sanitized()
	return []any{
		"env", s.AppEnv,
		"port", s.Port,
		"db", s.DBProvider,
		"auth", s.AuthMode,
		"ai", s.AIProvider,
		"sink", s.LogSink,
		"batchSize", s.AuditBatchSize,
		"flushInterval", s.AuditFlushInterval.String(),
	}
}
