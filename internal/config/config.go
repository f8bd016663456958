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
	AppMode       string
	Port          string
	FrontendURL   string
	Database      DatabaseConfig
	JWT           JWTConfig
	Cookie        CookieConfig
	Mail          MailConfig
	Cloudinary    CloudinaryConfig
	Redis         RedisConfig
	RateLimit     RateLimitConfig
	ResetTokenTTL time.Duration
	Admin         AdminConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mongo | mysql | postgres | memory
	URL      string
	Name     string
	Host     string
	Port     string
	User     string
	Password string
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// CookieConfig holds session cookie configuration
type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite string
	Domain   string
}

// MailConfig holds SMTP configuration for reset emails
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether outbound mail is configured
func (m MailConfig) Enabled() bool {
	return m.User != ""
}

// CloudinaryConfig holds the avatar host configuration
type CloudinaryConfig struct {
	URL    string
	Folder string
}

// RedisConfig holds the optional rate limiter storage
type RedisConfig struct {
	URL string
}

// RateLimitConfig holds per-minute request budgets
type RateLimitConfig struct {
	Enabled    bool
	GeneralMax int
	AuthMax    int
	StrictMax  int
}

// AdminConfig holds the seeded administrator account
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

// Database drivers
const (
	DriverMongo    = "mongo"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database, err := loadDatabaseConfig(appMode)
	if err != nil {
		return nil, err
	}

	jwtConfig, err := loadJWTConfig(appMode)
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:       appMode,
		Port:          getEnv("PORT", "5000"),
		FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		Database:      database,
		JWT:           jwtConfig,
		Cookie:        loadCookieConfig(appMode),
		Mail:          loadMailConfig(),
		Cloudinary:    CloudinaryConfig{URL: getEnv("CLOUDINARY_URL", ""), Folder: getEnv("CLOUDINARY_FOLDER", "hostel-avatars")},
		Redis:         RedisConfig{URL: getEnv("REDIS_URL", "")},
		RateLimit:     loadRateLimitConfig(),
		ResetTokenTTL: getDuration("RESET_TOKEN_TTL", 15*time.Minute),
		Admin: AdminConfig{
			Name:     getEnv("ADMIN_NAME", "Hostel Admin"),
			Email:    strings.ToLower(getEnv("ADMIN_EMAIL", "")),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s, DB: %s]", appMode, database.Driver)
	return config, nil
}

// loadDatabaseConfig loads database config; a missing connection is an error
func loadDatabaseConfig(mode string) (DatabaseConfig, error) {
	driver := strings.ToLower(getEnv("DB_DRIVER", DriverMongo))

	d := DatabaseConfig{
		Driver:   driver,
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", ""),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASS", ""),
	}

	switch driver {
	case DriverMongo:
		d.URL = getEnv("MONGODB_CONN", "")
		d.Name = getEnv("DB_NAME", "Hostel-Leave-Management")
		if d.URL == "" {
			return d, fmt.Errorf("MONGODB_CONN is not set")
		}
	case DriverMySQL, DriverPostgres:
		d.URL = getEnv("DATABASE_URL", "")
		d.Name = getEnv("DB_NAME", "hostel_leave")
		if d.URL == "" && d.Host == "" {
			return d, fmt.Errorf("DATABASE_URL or DB_HOST must be set for %s", driver)
		}
		if d.Port == "" {
			d.Port = "3306"
			if driver == DriverPostgres {
				d.Port = "5432"
			}
		}
	case DriverMemory:
		if mode == "prod" {
			return d, fmt.Errorf("DB_DRIVER=memory is not allowed in prod")
		}
	default:
		return d, fmt.Errorf("invalid DB_DRIVER: '%s'", driver)
	}

	return d, nil
}

// loadJWTConfig loads the token signing config; prod requires an explicit secret
func loadJWTConfig(mode string) (JWTConfig, error) {
	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		if mode == "prod" {
			return JWTConfig{}, fmt.Errorf("JWT_SECRET is required in prod")
		}
		secret = "dev_secret_change_me"
	}

	return JWTConfig{
		Secret: secret,
		Issuer: getEnv("JWT_ISSUER", "hostel-leave-api"),
		TTL:    getDuration("JWT_TTL", 7*24*time.Hour),
	}, nil
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secureDefault, sameSiteDefault := "false", "Lax"
	if mode == "prod" {
		secureDefault, sameSiteDefault = "true", "None"
	}

	secure, _ := strconv.ParseBool(getEnv("COOKIE_SECURE", secureDefault))

	return CookieConfig{
		Name:     "access_token",
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", sameSiteDefault),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadMailConfig() MailConfig {
	user := getEnv("GMAIL_USER", getEnv("SMTP_USER", ""))
	return MailConfig{
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:     getInt("SMTP_PORT", 587),
		User:     user,
		Password: getEnv("GMAIL_PASS", getEnv("SMTP_PASS", "")),
		From:     getEnv("MAIL_FROM", user),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	enabled, err := strconv.ParseBool(getEnv("RATE_LIMIT_ENABLED", "true"))
	if err != nil {
		enabled = true
	}
	return RateLimitConfig{
		Enabled:    enabled,
		GeneralMax: getInt("RATE_LIMIT_GENERAL", 100),
		AuthMax:    getInt("RATE_LIMIT_AUTH", 5),
		StrictMax:  getInt("RATE_LIMIT_STRICT", 3),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		return c.FrontendURL
	}
	return origins
}

// ResetURL builds the frontend link carrying a password reset token
func (c *Config) ResetURL(token string) string {
	return c.FrontendURL + "/reset-password/" + token
}
