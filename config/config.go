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

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Redis    RedisConfig
	Email    EmailConfig
	Storage  StorageConfig
	Diary    DiaryConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
	// Requests per second allowed per client IP on the /email routes
	EmailRouteRPS   float64
	EmailRouteBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Driver   string // postgres, sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is used by the sqlite driver
	Path string
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// EmailConfig controls verification code issuance and mail delivery.
type EmailConfig struct {
	Provider string // smtp, resend, console

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	ResendAPIKey string

	CodeLength          int
	CodeExpireMinutes   int
	MaxAttempts         int
	RateLimitMinutes    int
	EnableRateLimiting  bool
	EnableAutoCleanup   bool
	LogVerifyAttempts   bool
	LogSendResults      bool
	CleanupCronSchedule string

	Template EmailTemplate
}

// EmailTemplate holds the user-facing strings of the verification mail.
type EmailTemplate struct {
	Subject        string
	Title          string
	Greeting       string
	Instruction    string
	SecurityNotice string
	Footer         string
}

type StorageConfig struct {
	Driver   string // local, s3
	ImageDir string
	S3       S3Config
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

type DiaryConfig struct {
	MaxImages     int
	MaxImageBytes int64
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			GinMode:         getEnv("GIN_MODE", "debug"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			EmailRouteRPS:   getEnvFloat("EMAIL_ROUTE_RPS", 1),
			EmailRouteBurst: getEnvInt("EMAIL_ROUTE_BURST", 5),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "sudays"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "sudays.db"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "30m"), 30*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Email: EmailConfig{
			Provider:     getEnv("EMAIL_PROVIDER", "console"),
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@sudays.app"),
			FromName:     getEnv("FROM_NAME", "Sudays"),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),

			CodeLength:          getEnvInt("VERIFICATION_CODE_LENGTH", 6),
			CodeExpireMinutes:   getEnvInt("VERIFICATION_CODE_EXPIRE_MINUTES", 10),
			MaxAttempts:         getEnvInt("MAX_VERIFICATION_ATTEMPTS", 3),
			RateLimitMinutes:    getEnvInt("RATE_LIMIT_MINUTES", 20),
			EnableRateLimiting:  getEnvBool("ENABLE_RATE_LIMITING", true),
			EnableAutoCleanup:   getEnvBool("ENABLE_AUTO_CLEANUP", true),
			LogVerifyAttempts:   getEnvBool("LOG_VERIFICATION_ATTEMPTS", true),
			LogSendResults:      getEnvBool("LOG_EMAIL_SEND_RESULTS", true),
			CleanupCronSchedule: getEnv("VERIFICATION_CLEANUP_SCHEDULE", "*/30 * * * *"),

			Template: EmailTemplate{
				Subject:        getEnv("EMAIL_SUBJECT", "[Sudays] 이메일 인증코드"),
				Title:          getEnv("EMAIL_TITLE", "Sudays 이메일 인증"),
				Greeting:       getEnv("EMAIL_GREETING", "안녕하세요! Sudays에 가입해 주셔서 감사합니다."),
				Instruction:    getEnv("EMAIL_INSTRUCTION", "아래 인증코드를 입력하여 이메일 인증을 완료해 주세요."),
				SecurityNotice: getEnv("EMAIL_SECURITY_NOTICE", "본인이 요청하지 않은 경우 이 메일을 무시해 주세요."),
				Footer:         getEnv("EMAIL_FOOTER", "© Sudays. All rights reserved."),
			},
		},
		Storage: StorageConfig{
			Driver:   getEnv("STORAGE_DRIVER", "local"),
			ImageDir: getEnv("IMAGE_DIR", "./data/images"),
			S3: S3Config{
				Region:          getEnv("AWS_REGION", "ap-northeast-2"),
				Bucket:          getEnv("AWS_S3_BUCKET", "sudays-diary-images"),
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				Prefix:          getEnv("AWS_S3_PREFIX", "diary"),
			},
		},
		Diary: DiaryConfig{
			MaxImages:     getEnvInt("DIARY_MAX_IMAGES", 5),
			MaxImageBytes: int64(getEnvInt("DIARY_MAX_IMAGE_BYTES", 5*1024*1024)),
		},
	}

	if err := config.Email.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the verification settings against their allowed ranges.
func (c *EmailConfig) Validate() error {
	checks := []struct {
		name     string
		value    int
		min, max int
	}{
		{"VERIFICATION_CODE_LENGTH", c.CodeLength, 4, 8},
		{"VERIFICATION_CODE_EXPIRE_MINUTES", c.CodeExpireMinutes, 1, 60},
		{"MAX_VERIFICATION_ATTEMPTS", c.MaxAttempts, 1, 10},
		{"RATE_LIMIT_MINUTES", c.RateLimitMinutes, 1, 1440},
	}
	for _, ch := range checks {
		if ch.value < ch.min || ch.value > ch.max {
			return fmt.Errorf("%s must be between %d and %d, got %d", ch.name, ch.min, ch.max, ch.value)
		}
	}

	switch c.Provider {
	case "smtp", "resend", "console":
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.Provider)
	}
	return nil
}

// CodeExpiry returns the lifetime of an issued code.
func (c *EmailConfig) CodeExpiry() time.Duration {
	return time.Duration(c.CodeExpireMinutes) * time.Minute
}

// RateLimitWindow returns the sliding window used for send rate limiting.
func (c *EmailConfig) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitMinutes) * time.Minute
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %s, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Invalid number for %s: %s, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid boolean for %s: %s, using default %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
