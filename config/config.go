package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Model    ModelConfig
	Log      LogConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Port int
	// MetricsAddr starts a separate /metrics listener when non-empty.
	MetricsAddr string
}

type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// GetDSN returns the postgres connection string. The sqlite driver uses Path.
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type SessionConfig struct {
	Secret      string
	CookieName  string
	ExpiryHours int
	Secure      bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins string
}

type ModelConfig struct {
	Dir string
}

type LogConfig struct {
	Level string
	Dev   bool
}

type SecurityConfig struct {
	PasswordHashing string
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	HashingPlain  = "plain"
	HashingBcrypt = "bcrypt"
)

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	expiryHours, err := getIntEnv("SESSION_EXPIRY_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_EXPIRY_HOURS: %w", err)
	}

	cookieSecure, err := getBoolEnv("COOKIE_SECURE", false)
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	redisEnabled, err := getBoolEnv("REDIS_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_ENABLED: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	logDev, err := getBoolEnv("LOG_DEV", false)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_DEV: %w", err)
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want %q or %q", driver, DriverSQLite, DriverPostgres)
	}

	hashing := strings.ToLower(getEnv("PASSWORD_HASHING", HashingPlain))
	if hashing != HashingPlain && hashing != HashingBcrypt {
		return nil, fmt.Errorf("invalid PASSWORD_HASHING %q: want %q or %q", hashing, HashingPlain, HashingBcrypt)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        serverPort,
			MetricsAddr: getEnv("METRICS_ADDR", ""),
		},
		Database: DatabaseConfig{
			Driver:   driver,
			Path:     getEnv("DB_PATH", "database.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "flightdelay"),
			Password: getEnv("DB_PASSWORD", "flightdelay_dev_password"),
			Name:     getEnv("DB_NAME", "flightdelay"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Session: SessionConfig{
			Secret:      getEnv("SESSION_SECRET", "dev-session-secret-change-me"),
			CookieName:  getEnv("SESSION_COOKIE", "session"),
			ExpiryHours: expiryHours,
			Secure:      cookieSecure,
		},
		Redis: RedisConfig{
			Enabled:  redisEnabled,
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Model: ModelConfig{
			Dir: getEnv("MODEL_DIR", "."),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Dev:   logDev,
		},
		Security: SecurityConfig{
			PasswordHashing: hashing,
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}
