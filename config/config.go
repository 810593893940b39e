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
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Razorpay RazorpayConfig
	Gemini   GeminiConfig
	CORS     CORSConfig
	Platform PlatformConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// RazorpayConfig holds gateway credentials. When KeyID/KeySecret are empty or
// still carry the placeholder values from a sample .env, the server runs with
// the mock provider and skips signature verification (development posture).
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type CORSConfig struct {
	AllowOrigin string
}

type PlatformConfig struct {
	Currency        string
	MinContribution float64
}

// Configured reports whether real gateway credentials are present.
// "XXXX" and "your_" match the placeholders shipped in the sample .env.
func (c *RazorpayConfig) Configured() bool {
	if c.KeyID == "" || c.KeySecret == "" {
		return false
	}
	if strings.Contains(c.KeyID, "XXXX") || strings.Contains(c.KeySecret, "your_") {
		return false
	}
	return true
}

func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env")
	}
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second, // AI proxy responses can take up to 55s
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=milestofund port=5432 sslmode=disable"),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-me-in-production"),
			Expiry: 168 * time.Hour,
			Issuer: "milestofund",
		},
		Razorpay: RazorpayConfig{
			KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
			BaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			Timeout:   30 * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout: 55 * time.Second, // hosting platforms cap requests at 60s
		},
		CORS: CORSConfig{
			AllowOrigin: getEnv("CLIENT_URL", "http://localhost:5173"),
		},
		Platform: PlatformConfig{
			Currency:        "INR",
			MinContribution: 1,
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
