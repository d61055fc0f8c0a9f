package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	DBUrl       string
	// Run embedded migrations on startup
	AutoMigrate bool

	// Hosted auth (Supabase)
	SupabaseUrl       string
	SupabaseKey       string
	SupabaseJWTSecret string
	DefaultRole       string

	// Token function
	TokenSigningSecret string
	TokenIssuer        string
	TokenTTL           time.Duration
	TokenMaxTTL        time.Duration
	FunctionKeyHash    string // bcrypt hash of the X-Function-Key value

	// SMTP
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SMTPFromEmail   string
	SMTPFromName    string
	MailPerSecond   float64
	MailBurst       int
	OperationsEmail string

	// Redis
	RedisURL      string
	RedisPassword string

	// S3 compatible object storage
	S3Provider        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
	MaxUploadBytes    int64

	// Uploads
	UploadsPerMinute int
	UploadsPerDay    int
	ClamAVAddress    string // empty disables antivirus scanning
	ClamAVTimeout    time.Duration

	// Rate limiting
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	RateLimitMailThreshold   int
	RateLimitTokenThreshold  int

	// Scheduler
	CertificateExpiryCron   string
	CertificateExpiryWindow int // days
	StaleSolicitudCron      string
	StaleSolicitudAfter     time.Duration

	AllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	// .env is optional; deployed environments set real variables
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", false),

		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:       getEnv("SUPABASE_KEY", getEnv("SUPABASE_ANON_KEY", "")),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		DefaultRole:       getEnv("DEFAULT_ROLE", "pendiente"),

		TokenSigningSecret: getEnv("TOKEN_SIGNING_SECRET", getEnv("SUPABASE_JWT_SECRET", "")),
		TokenIssuer:        getEnv("TOKEN_ISSUER", "saludocupacional"),
		TokenTTL:           getEnvDuration("TOKEN_TTL", time.Hour),
		TokenMaxTTL:        getEnvDuration("TOKEN_MAX_TTL", 24*time.Hour),
		FunctionKeyHash:    getEnv("FUNCTION_KEY_HASH", ""),

		SMTPHost:        getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:   getEnv("SMTP_FROM_EMAIL", "notificaciones@saludocupacional.co"),
		SMTPFromName:    getEnv("SMTP_FROM_NAME", "Salud Ocupacional"),
		MailPerSecond:   getEnvFloat("MAIL_PER_SECOND", 2),
		MailBurst:       getEnvInt("MAIL_BURST", 5),
		OperationsEmail: getEnv("OPERATIONS_EMAIL", ""),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,

		UploadsPerMinute: getEnvInt("UPLOADS_PER_MINUTE", 10),
		UploadsPerDay:    getEnvInt("UPLOADS_PER_DAY", 200),
		ClamAVAddress:    getEnv("CLAMAV_ADDRESS", ""),
		ClamAVTimeout:    getEnvDuration("CLAMAV_TIMEOUT", 30*time.Second),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 300),
		RateLimitMailThreshold:   getEnvInt("RATE_LIMIT_MAIL_THRESHOLD", 20),
		RateLimitTokenThreshold:  getEnvInt("RATE_LIMIT_TOKEN_THRESHOLD", 60),

		CertificateExpiryCron:   getEnv("CERTIFICATE_EXPIRY_CRON", "0 7 * * *"),
		CertificateExpiryWindow: getEnvInt("CERTIFICATE_EXPIRY_WINDOW_DAYS", 30),
		StaleSolicitudCron:      getEnv("STALE_SOLICITUD_CRON", "0 * * * *"),
		StaleSolicitudAfter:     getEnvDuration("STALE_SOLICITUD_AFTER", 48*time.Hour),

		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.TokenSigningSecret == "" {
		log.Println("WARNING: TOKEN_SIGNING_SECRET not configured. Token function and HS256 auth are disabled.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Cache and rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SMTPConfigured checks the minimum SMTP settings needed to relay mail
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

// StorageConfigured checks the minimum object storage settings
func (c *Config) StorageConfigured() bool {
	return c.S3Bucket != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90m") or plain seconds
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
