package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppName  string
	Env      string
	LogLevel string
	Host     string
	Port     int

	DataFile     string
	StaticDir    string
	CORSOrigins  []string
	MaxBodyBytes int64

	FlushDebounce       time.Duration
	FlushMinInterval    time.Duration
	MaintenanceInterval time.Duration
	PresenceTTL         time.Duration
	TypingTTL           time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		AppName:  getEnv("APP_NAME", "Talkie"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Host:     getEnv("HTTP_HOST", ""),
		Port:     getEnvAsInt("PORT", 3000),

		DataFile:     getEnv("DATA_FILE", "data.json"),
		StaticDir:    getEnv("STATIC_DIR", ""),
		MaxBodyBytes: int64(getEnvAsInt("MAX_BODY_BYTES", 10<<20)),

		FlushDebounce:       getEnvAsMillis("FLUSH_DEBOUNCE_MS", 500),
		FlushMinInterval:    getEnvAsMillis("FLUSH_MIN_INTERVAL_MS", 100),
		MaintenanceInterval: time.Duration(getEnvAsInt("MAINTENANCE_INTERVAL_SECONDS", 30)) * time.Second,
		PresenceTTL:         getEnvAsMillis("PRESENCE_TTL_MS", 10000),
		TypingTTL:           getEnvAsMillis("TYPING_TTL_MS", 3000),
	}

	cors := getEnv("CORS_ORIGINS", "")
	if cors != "" {
		parts := strings.Split(cors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"*"}
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.DataFile == "" {
		return nil, fmt.Errorf("DATA_FILE is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	for name, d := range map[string]time.Duration{
		"FLUSH_DEBOUNCE_MS":            cfg.FlushDebounce,
		"FLUSH_MIN_INTERVAL_MS":        cfg.FlushMinInterval,
		"MAINTENANCE_INTERVAL_SECONDS": cfg.MaintenanceInterval,
		"PRESENCE_TTL_MS":              cfg.PresenceTTL,
		"TYPING_TTL_MS":                cfg.TypingTTL,
	} {
		if d <= 0 {
			return nil, fmt.Errorf("%s must be positive", name)
		}
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment reports whether human-readable console logging is wanted.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsMillis(key string, def int) time.Duration {
	return time.Duration(getEnvAsInt(key, def)) * time.Millisecond
}
