package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DurabilityMode selects how multi-entity writes are applied.
type DurabilityMode string

const (
	// DurabilityStrict runs multi-entity writes inside one database transaction.
	DurabilityStrict DurabilityMode = "strict"
	// DurabilityBestEffort applies writes one by one; a reconciliation job repairs
	// projects left without a workspace.
	DurabilityBestEffort DurabilityMode = "best-effort"
)

const (
	FileStorageLocal = "local"
	FileStorageS3    = "s3"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
	App      AppConfig
	Collabo  CollaboConfig
	LLM      LLMConfig
	Payment  PaymentConfig
	Storage  StorageConfig
	Events   EventsConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type DatabaseConfig struct {
	DSN      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsPath string
}

// Enabled reports whether ID tokens should be verified with Firebase.
func (f FirebaseConfig) Enabled() bool {
	return f.CredentialsPath != ""
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

type CollaboConfig struct {
	DurabilityMode            DurabilityMode
	InviteLimit               int
	ActivationRequiresFunding bool
	EnforceChannelMembership  bool
	ReconcileSchedule         string
	// ReconcileGrace keeps the reconciler away from projects whose create is still running.
	ReconcileGrace            time.Duration
}

type LLMConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	RequestsPerSec float64
	Timeout        time.Duration
	CacheTTL       time.Duration
}

type PaymentConfig struct {
	BaseURL     string
	SecretKey   string
	Currency    string
	RedirectURL string
}

type StorageConfig struct {
	Backend       string
	UploadDir     string
	S3Bucket      string
	S3Region      string
	PublicBaseURL string
}

type EventsConfig struct {
	MaxAttempts  int
	PollInterval time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Collabo: CollaboConfig{
			DurabilityMode:            DurabilityMode(getEnv("DURABILITY_MODE", string(DurabilityStrict))),
			InviteLimit:               getEnvAsInt("INVITE_LIMIT", 5),
			ActivationRequiresFunding: getEnvAsBool("ACTIVATION_REQUIRES_FUNDING", false),
			EnforceChannelMembership:  getEnvAsBool("ENFORCE_CHANNEL_MEMBERSHIP", false),
			ReconcileSchedule:         getEnv("RECONCILE_SCHEDULE", "0 */10 * * * *"),
			ReconcileGrace:            getEnvAsDuration("RECONCILE_GRACE", 5*time.Minute),
		},
		LLM: LLMConfig{
			BaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:         getEnv("LLM_API_KEY", ""),
			Model:          getEnv("LLM_MODEL", "gpt-4o-mini"),
			RequestsPerSec: getEnvAsFloat("LLM_RPS", 2),
			Timeout:        getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			CacheTTL:       getEnvAsDuration("SCOPE_CACHE_TTL", 24*time.Hour),
		},
		Payment: PaymentConfig{
			BaseURL:     getEnv("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com/v3"),
			SecretKey:   getEnv("FLUTTERWAVE_SECRET_KEY", ""),
			Currency:    getEnv("PAYMENT_CURRENCY", "NGN"),
			RedirectURL: getEnv("PAYMENT_REDIRECT_URL", "https://connecta.app/payment/callback"),
		},
		Storage: StorageConfig{
			Backend:       getEnv("FILE_STORAGE", FileStorageLocal),
			UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
			S3Bucket:      getEnv("S3_BUCKET", ""),
			S3Region:      getEnv("S3_REGION", "us-east-1"),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_FILE_BASE_URL", ""), "/"),
		},
		Events: EventsConfig{
			MaxAttempts:  getEnvAsInt("EVENT_MAX_ATTEMPTS", 5),
			PollInterval: getEnvAsDuration("EVENT_POLL_INTERVAL", 500*time.Millisecond),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	switch c.Collabo.DurabilityMode {
	case DurabilityStrict, DurabilityBestEffort:
	default:
		return fmt.Errorf("DURABILITY_MODE must be %q or %q, got %q", DurabilityStrict, DurabilityBestEffort, c.Collabo.DurabilityMode)
	}

	if c.Collabo.InviteLimit <= 0 {
		return fmt.Errorf("INVITE_LIMIT must be positive")
	}

	switch c.Storage.Backend {
	case FileStorageLocal:
	case FileStorageS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when FILE_STORAGE=s3")
		}
	default:
		return fmt.Errorf("FILE_STORAGE must be %q or %q", FileStorageLocal, FileStorageS3)
	}

	if c.App.Environment == "production" && !c.Firebase.Enabled() {
		return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required in production")
	}

	if c.Collabo.ReconcileGrace < 0 {
		return fmt.Errorf("RECONCILE_GRACE must not be negative")
	}

	if c.Events.MaxAttempts <= 0 {
		return fmt.Errorf("EVENT_MAX_ATTEMPTS must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
