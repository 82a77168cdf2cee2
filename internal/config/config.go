package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

type Config struct {
	Env      string
	Database DatabaseConfig
	Server   ServerConfig
	Log      LogConfig
	CORS     CORSConfig
	Events   EventsConfig
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// EventsConfig holds the broker settings. An empty AMQPURL disables publishing.
type EventsConfig struct {
	AMQPURL    string
	OrderQueue string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", EnvDevelopment)
	switch env {
	case EnvDevelopment, EnvProduction, EnvTesting:
	default:
		return nil, fmt.Errorf("unknown APP_ENV %q", env)
	}

	defaultLevel := "info"
	if env == EnvDevelopment {
		defaultLevel = "debug"
	}

	var vars envReader

	cfg := &Config{
		Env: env,
		Database: DatabaseConfig{
			URL:             databaseURL(env),
			MaxOpenConns:    vars.getInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    vars.getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: vars.getDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     vars.getBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "5000"),
			ReadTimeout:     vars.getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    vars.getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: vars.getDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", defaultLevel),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Events: EventsConfig{
			AMQPURL:    getEnv("AMQP_URL", ""),
			OrderQueue: getEnv("AMQP_ORDER_QUEUE", "order.created"),
		},
	}

	if err := vars.err(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// databaseURL prefers an explicit URL and otherwise assembles one from the DB_* parts.
func databaseURL(env string) string {
	if env == EnvTesting {
		if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
			return url
		}
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "dragon"),
		getEnv("DB_HOST", "postgres"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "flaskdb"),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables and keeps every malformed value so Load
// can report them together instead of silently using defaults.
type envReader struct {
	errs []error
}

func (r *envReader) getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid integer for %s: %q", key, value))
		return defaultValue
	}
	return intVal
}

func (r *envReader) getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid boolean for %s: %q", key, value))
		return defaultValue
	}
	return boolVal
}

func (r *envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid duration for %s: %q", key, value))
		return defaultValue
	}
	return duration
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
