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

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Email (SMTP) configuration
	Email EmailConfig

	// SMS (Twilio) configuration
	SMS SMSConfig

	// OTP configuration
	OTP OTPConfig

	// Paystack gateway configuration
	Paystack PaystackConfig

	// M-Pesa gateway configuration
	Mpesa MpesaConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
	BaseURL     string // public URL of this server, used to build callback URLs
	ClientURL   string // frontend URL, used in password reset links
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration // session token lifetime (30 days)
}

// EmailConfig holds SMTP gateway configuration
type EmailConfig struct {
	Mode     string // "dev" logs messages instead of sending
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMSConfig holds Twilio SMS gateway configuration
type SMSConfig struct {
	Mode                string // "dev" logs messages instead of sending
	AccountSID          string
	AuthToken           string
	MessagingServiceSID string
}

// OTPConfig holds OTP-related configuration
type OTPConfig struct {
	Length        int
	ExpiryMinutes int
}

// PaystackConfig holds Paystack card gateway configuration
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}

// MpesaConfig holds Safaricom M-Pesa Daraja configuration
type MpesaConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	BaseURL        string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost      int
	AdminSecretCode string // required to create admin accounts
	ResetTokenTTL   time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
			ClientURL:   getEnv("CLIENT_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			TokenExpiry: time.Duration(getEnvAsInt("JWT_TOKEN_EXPIRY_HOURS", 720)) * time.Hour,
		},
		Email: EmailConfig{
			Mode:     getEnv("EMAIL_MODE", "dev"),
			Host:     getEnv("EMAIL_HOST", "smtp.gmail.com"),
			Port:     getEnv("EMAIL_PORT", "587"),
			Username: getEnv("EMAIL_USERNAME", ""),
			Password: getEnv("EMAIL_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "LandLink Ltd"),
		},
		SMS: SMSConfig{
			Mode:                getEnv("SMS_MODE", "dev"),
			AccountSID:          getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:           getEnv("TWILIO_AUTH_TOKEN", ""),
			MessagingServiceSID: getEnv("TWILIO_MESSAGING_SERVICE_SID", ""),
		},
		OTP: OTPConfig{
			Length:        getEnvAsInt("OTP_LENGTH", 6),
			ExpiryMinutes: getEnvAsInt("OTP_EXPIRY_MINUTES", 3),
		},
		Paystack: PaystackConfig{
			SecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
			BaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		},
		Mpesa: MpesaConfig{
			ConsumerKey:    getEnv("MPESA_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("MPESA_CONSUMER_SECRET", ""),
			Shortcode:      getEnv("MPESA_SHORTCODE", ""),
			Passkey:        getEnv("MPESA_PASSKEY", ""),
			BaseURL:        getEnv("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:      getEnvAsInt("BCRYPT_COST", 10),
			AdminSecretCode: getEnv("ADMIN_SECRET_CODE", ""),
			ResetTokenTTL:   time.Duration(getEnvAsInt("RESET_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration. A missing required secret is a
// fatal configuration error: the server refuses to start rather than fail
// every dependent request later.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Security.AdminSecretCode == "" {
		return fmt.Errorf("ADMIN_SECRET_CODE is required")
	}

	if c.Email.Mode == "production" {
		if c.Email.Username == "" {
			return fmt.Errorf("EMAIL_USERNAME is required in production email mode")
		}
		if c.Email.Password == "" {
			return fmt.Errorf("EMAIL_PASSWORD is required in production email mode")
		}
	}

	if c.SMS.Mode == "production" {
		if c.SMS.AccountSID == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID is required in production SMS mode")
		}
		if c.SMS.AuthToken == "" {
			return fmt.Errorf("TWILIO_AUTH_TOKEN is required in production SMS mode")
		}
		if c.SMS.MessagingServiceSID == "" {
			return fmt.Errorf("TWILIO_MESSAGING_SERVICE_SID is required in production SMS mode")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
