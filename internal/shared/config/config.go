package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
)

// Config holds configuration shared by the three services. Each binary
// reads the whole set and uses the parts it needs.
type Config struct {
	Service string
	Port    string
	Env     string

	DatabaseURL  string
	DatabaseName string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int

	CORSAllowOrigin []string
	MaxUploadSize   int64

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	GCSBucket       string
	GCSPrefix       string
	ExportDir       string

	RateLimitMax    int
	RateLimitWindow time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	AuthServiceURL    string
	AuthClientTimeout time.Duration
}

const (
	defaultJWTSecret     = "dev-secret"
	defaultMaxUploadSize = 10 << 20
)

// Load reads configuration from environment variables with sensible defaults.
func Load(service, defaultPort string) (Config, error) {
	// Best-effort load of local env files for dev convenience.
	for _, f := range []string{".env", "cmd/.env"} {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				telemetry.Warn("config.dotenv_failed", map[string]any{"file": f, "error": err})
			}
		}
	}

	env := normalizeEnv(getEnv("ENV", getEnv("NODE_ENV", "development")))
	cfg := Config{
		Service:           service,
		Port:              getEnv("PORT", defaultPort),
		Env:               env,
		DatabaseURL:       getEnv("DATABASE_URL", os.Getenv("MONGODB_URL")),
		DatabaseName:      getEnv("DATABASE_NAME", "legalassist"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenTTL:    time.Duration(getEnvInt("JWT_ACCESS_EXPIRATION_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL:   time.Duration(getEnvInt("JWT_REFRESH_EXPIRATION_DAYS", 30)) * 24 * time.Hour,
		BcryptCost:        getEnvInt("BCRYPT_COST", 10),
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ORIGIN", "http://localhost:3000")),
		MaxUploadSize:     int64(getEnvInt("MAX_FILE_SIZE", defaultMaxUploadSize)),
		ObjectStoreType:   normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:     getEnv("UPLOAD_DIR", "uploads"),
		AWSRegion:         getEnv("AWS_REGION", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:       getEnv("S3_KMS_KEY_ID", ""),
		GCSBucket:         getEnv("GCS_BUCKET", ""),
		GCSPrefix:         getEnv("GCS_PREFIX", ""),
		ExportDir:         getEnv("EXPORT_DIR", "exports"),
		RateLimitMax:      getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		AuthServiceURL:    strings.TrimRight(getEnv("AUTH_SERVICE_URL", ""), "/"),
		AuthClientTimeout: getEnvDuration("AUTH_CLIENT_TIMEOUT", 5*time.Second),
	}

	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = defaultJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that are unsafe to run in production.
func (c Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" || c.JWTSecret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required in production"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevLike reports whether in-memory fallbacks and debug payloads are allowed.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "development", "local", "":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "test":
		return "test"
	case "local":
		return "local"
	default:
		return "development"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "gcs":
		return "gcs"
	default:
		return "local"
	}
}
