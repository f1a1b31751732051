package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	AppEnv string

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	SQLitePath string

	JWTKey         string
	JWTExpiryHours int
	SaltRound      int
	OTPTTLMinutes  int
	CORSOrigins    string

	RedisAddr string

	VideoBucket       string
	ThumbnailBucket   string
	CertificateBucket string
	GCSSignerEmail    string
	GCSSignerKeyFile  string
	LocalStorageDir   string
	PublicBaseURL     string
	CertificateFont   string

	SendgridAPIKey string
	EmailSender    string

	AuditCron        string
	AuditConcurrency int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = FromEnv()

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.DBDriver == "sqlite" && !AppConfig.IsProduction() {
		log.Printf("Warning: Using sqlite database at %s.", AppConfig.SQLitePath)
	}
	return AppConfig
}

// FromEnv reads the configuration without touching .env files.
func FromEnv() *Config {
	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: strings.ToLower(getEnv("APP_ENV", "development")),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "devlaunch"),
		DBPort:     getEnv("DB_PORT", "5432"),
		SQLitePath: getEnv("SQLITE_PATH", "devlaunch.db"),

		JWTKey:         getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		SaltRound:      getEnvInt("SALT_ROUND", 10),
		OTPTTLMinutes:  getEnvInt("OTP_TTL_MINUTES", 10),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:5173"),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		VideoBucket:       getEnv("GCS_VIDEO_BUCKET", ""),
		ThumbnailBucket:   getEnv("GCS_THUMBNAIL_BUCKET", ""),
		CertificateBucket: getEnv("GCS_CERTIFICATE_BUCKET", ""),
		GCSSignerEmail:    getEnv("GCS_SIGNER_EMAIL", ""),
		GCSSignerKeyFile:  getEnv("GCS_SIGNER_KEY_FILE", ""),
		LocalStorageDir:   getEnv("LOCAL_STORAGE_DIR", "./uploads"),
		PublicBaseURL:     strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		CertificateFont:   getEnv("CERTIFICATE_FONT_PATH", ""),

		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "noreply@devlaunch.local"),

		AuditCron:        getEnv("AUDIT_CRON", "0 3 * * *"),
		AuditConcurrency: getEnvInt("AUDIT_CONCURRENCY", 4),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// UsesGCS reports whether all three buckets are configured.
func (c *Config) UsesGCS() bool {
	return c.VideoBucket != "" && c.ThumbnailBucket != "" && c.CertificateBucket != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
