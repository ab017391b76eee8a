package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	GinMode  string
	TZ       string
	HTTPAddr string
	LogLevel string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPass     string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PolicyFile string

	TrustedProxies []string
}

// findEnvDir walks up from the working directory to the first one holding
// filename.
func findEnvDir(filename string) (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, filename)); err == nil {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func Load() *Config {
	env := getenv("GIN_MODE", "debug")

	if env == "debug" {
		filename := ".env.dev"
		if root, ok := findEnvDir(filename); ok {
			envPath := filepath.Join(root, filename)
			if err := godotenv.Load(envPath); err != nil {
				log.Warn().Err(err).Str("path", envPath).Msg("could not load env file")
			} else {
				log.Info().Str("path", envPath).Msg("loaded env file")
			}
		}
	}

	cfg := &Config{
		GinMode:  getenv("GIN_MODE", "debug"),
		TZ:       getenv("TZ", "UTC"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:   getenv("DB_DRIVER", DriverPostgres),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPass:     getenv("DB_PASS", ""),
		DBName:     getenv("DB_NAME", "locallibrary"),
		DBSSLMode:  os.Getenv("DB_SSLMODE"),
		SQLitePath: getenv("SQLITE_PATH", "locallibrary.db"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),

		PolicyFile: os.Getenv("LIBRARY_POLICY_FILE"),

		TrustedProxies: strings.Split(getenv("TRUSTED_PROXIES", "127.0.0.1,::1"), ","),
	}

	if cfg.DBSSLMode == "" {
		if cfg.GinMode == "release" {
			cfg.DBSSLMode = "require"
		} else {
			cfg.DBSSLMode = "disable"
		}
	}

	return cfg
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost,
		c.DBUser,
		c.DBPass,
		c.DBName,
		c.DBPort,
		c.DBSSLMode,
		c.TZ,
	)
}

// Location resolves TZ, the zone in which "today" is decided.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ %q: %w", c.TZ, err)
	}
	return loc, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring non-numeric value")
		return def
	}
	return n
}
