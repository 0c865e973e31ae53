package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"procurely/email"
)

type Config struct {
	DatabaseURL   string
	SessionSecret string
	Port          string
	SessionTTL    time.Duration
	SecureCookies bool
	CacheSize     int
	CacheTTL      time.Duration
	LogLevel      string
	GinMode       string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	SettingsSeed string

	SMTP email.Config
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return configFromEnv(os.Getenv)
}

func configFromEnv(get func(string) string) (*Config, error) {
	or := func(key, def string) string {
		if v := get(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		DatabaseURL:   get("DATABASE_URL"),
		SessionSecret: get("SESSION_SECRET"),
		Port:          or("PORT", "8080"),
		LogLevel:      or("LOG_LEVEL", "info"),
		GinMode:       get("GIN_MODE"),
		AdminEmail:    get("ADMIN_EMAIL"),
		AdminPassword: get("ADMIN_PASSWORD"),
		AdminName:     or("ADMIN_NAME", "Administrator"),
		SettingsSeed:  get("SETTINGS_SEED"),
		SMTP: email.Config{
			Host:     get("SMTP_HOST"),
			Port:     or("SMTP_PORT", "587"),
			User:     get("SMTP_USER"),
			Password: get("SMTP_PASSWORD"),
			From:     get("SMTP_FROM"),
			NotifyTo: get("NOTIFY_EMAIL"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(or("SESSION_TTL", "12h")); err != nil || cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL: invalid duration %q", get("SESSION_TTL"))
	}
	if cfg.CacheTTL, err = time.ParseDuration(or("CACHE_TTL", "60s")); err != nil || cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("CACHE_TTL: invalid duration %q", get("CACHE_TTL"))
	}
	if cfg.CacheSize, err = strconv.Atoi(or("CACHE_SIZE", "256")); err != nil || cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("CACHE_SIZE: invalid size %q", get("CACHE_SIZE"))
	}
	if cfg.SecureCookies, err = strconv.ParseBool(or("SECURE_COOKIES", "false")); err != nil {
		return nil, fmt.Errorf("SECURE_COOKIES: %w", err)
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

// RequireSessionSecret checks the secret needed to serve admin requests.
func (c *Config) RequireSessionSecret() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable not set")
	}
	if len(c.SessionSecret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 bytes")
	}
	return nil
}
