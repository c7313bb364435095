package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"go-shop-api/internal/auth"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	LogFormatPretty = "pretty"
	LogFormatJSON   = "json"

	minSecretLength = 16
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	ShutdownTimeout         time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	HashMemoryKiB      int
	HashIterations     int
	HashParallelism    int
	HashMaxConcurrency int

	StoreDriver string
	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	CORSOrigins []string
	SeedCatalog bool

	LogLevel  string
	LogFormat string

	devSecret bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:         getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:                getDuration("TOKEN_TTL", auth.DefaultTokenTTL),
		HashMemoryKiB:           getInt("HASH_MEMORY_KIB", int(auth.DefaultHashParams().MemoryKiB)),
		HashIterations:          getInt("HASH_ITERATIONS", int(auth.DefaultHashParams().Iterations)),
		HashParallelism:         getInt("HASH_PARALLELISM", int(auth.DefaultHashParams().Parallelism)),
		HashMaxConcurrency:      getInt("HASH_MAX_CONCURRENCY", runtime.NumCPU()),
		StoreDriver:             strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              getInt("DB_MAX_CONNS", 10),
		DBMinConns:              getInt("DB_MIN_CONNS", 2),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		SeedCatalog:             getBool("SEED_CATALOG", true),
		LogLevel:                strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:               strings.ToLower(getEnv("LOG_FORMAT", LogFormatPretty)),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = auth.DevelopmentSecret
		cfg.devSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UsingDevSecret reports whether tokens are signed with the public
// development secret because JWT_SECRET was not set.
func (c *Config) UsingDevSecret() bool {
	return c.devSecret
}

func (c *Config) HashParams() auth.HashParams {
	params := auth.DefaultHashParams()
	params.MemoryKiB = uint32(c.HashMemoryKiB)
	params.Iterations = uint32(c.HashIterations)
	params.Parallelism = uint8(c.HashParallelism)
	return params
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}

	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}

	if c.TokenTTL < time.Second {
		return fmt.Errorf("TOKEN_TTL must be at least 1s")
	}

	if c.HashIterations < 1 || c.HashIterations > auth.MaxHashIterations {
		return fmt.Errorf("HASH_ITERATIONS must be between 1 and %d", auth.MaxHashIterations)
	}

	if c.HashParallelism < 1 || c.HashParallelism > 255 {
		return fmt.Errorf("HASH_PARALLELISM must be between 1 and 255")
	}

	if c.HashMemoryKiB < 8*c.HashParallelism || c.HashMemoryKiB > auth.MaxHashMemoryKiB {
		return fmt.Errorf("HASH_MEMORY_KIB must be between %d and %d", 8*c.HashParallelism, auth.MaxHashMemoryKiB)
	}

	if c.HashMaxConcurrency < 1 {
		return fmt.Errorf("HASH_MAX_CONCURRENCY must be at least 1")
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StorePostgres)
		}
		if c.DBMaxConns < 1 {
			return fmt.Errorf("DB_MAX_CONNS must be at least 1")
		}
		if c.DBMinConns < 0 {
			return fmt.Errorf("DB_MIN_CONNS cannot be negative")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMemory, StorePostgres, c.StoreDriver)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}

	if c.LogFormat != LogFormatPretty && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", LogFormatPretty, LogFormatJSON, c.LogFormat)
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
