package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppName  string
	HTTPPort string

	DatabaseURL string

	AccessTokenSecret      string
	AccessTokenExpiration  time.Duration
	RefreshTokenSecret     string
	RefreshTokenExpiration time.Duration

	OTPExpiration time.Duration

	SecretAPIKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads the process environment. Secrets have no defaults; callers are
// expected to fail fast when the ones they need are empty.
func Load() Config {
	return Config{
		AppName:  envOr("APP_NAME", "QR Ordering"),
		HTTPPort: envOr("HTTP_PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		AccessTokenSecret:      os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenExpiration:  envDuration("ACCESS_TOKEN_EXPIRATION", 15*time.Minute),
		RefreshTokenSecret:     os.Getenv("REFRESH_TOKEN_SECRET"),
		RefreshTokenExpiration: envDuration("REFRESH_TOKEN_EXPIRATION", 720*time.Hour),

		OTPExpiration: envDuration("OTP_EXPIRATION", 5*time.Minute),

		SecretAPIKey: os.Getenv("SECRET_API_KEY"),

		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envOr("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
