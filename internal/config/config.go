package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const defaultEnvFile = ".env"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort   string
	DatabaseURL  string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	JWTSecret    string
	TokenTTL     time.Duration
	BcryptCost   int
	LogLevel     string
	LogFormat    string
	SwaggerHost  string
	CORSOrigins  []string
	AutoMigrate  bool
	SeedOnStart  bool
	ShutdownWait time.Duration
}

// Load builds Config from an optional .env file, the environment and
// command-line flags, in increasing order of precedence. Every invalid value
// is reported in the returned error, not just the first.
func Load(args []string) (*Config, error) {
	return load(args, true)
}

// LoadForTools is Load for commands that never issue tokens: JWT_SECRET is optional.
func LoadForTools(args []string) (*Config, error) {
	return load(args, false)
}

func load(args []string, requireSecret bool) (*Config, error) {
	fl := pflag.NewFlagSet("muchasvidas", pflag.ContinueOnError)
	envFile := fl.String("env-file", defaultEnvFile, "path to a .env file")
	port := fl.String("port", "", "HTTP listen port (overrides PORT)")
	databaseURL := fl.String("database-url", "", "database connection string (overrides DATABASE_URL)")
	migrate := fl.Bool("migrate", false, "run schema auto-migration on startup")
	seed := fl.Bool("seed", false, "seed reference data on startup")
	if err := fl.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := godotenv.Load(*envFile); err != nil {
		if *envFile != defaultEnvFile || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
		}
	}

	var problems []string
	cfg := &Config{
		ServerPort:   getEnv("PORT", "3000"),
		DatabaseURL:  getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/muchasvidas?charset=utf8mb4&parseTime=True&loc=UTC"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0, &problems),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     getEnvDuration("TOKEN_TTL", 7*24*time.Hour, &problems),
		BcryptCost:   getEnvInt("BCRYPT_COST", 10, &problems),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		SwaggerHost:  os.Getenv("SWAGGER_HOST"),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "*")),
		AutoMigrate:  getEnvBool("AUTO_MIGRATE", true, &problems),
		SeedOnStart:  getEnvBool("SEED_ON_START", false, &problems),
		ShutdownWait: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second, &problems),
	}

	if *port != "" {
		cfg.ServerPort = *port
	}
	if *databaseURL != "" {
		cfg.DatabaseURL = *databaseURL
	}
	if fl.Changed("migrate") {
		cfg.AutoMigrate = *migrate
	}
	if fl.Changed("seed") {
		cfg.SeedOnStart = *seed
	}

	if requireSecret && cfg.JWTSecret == "" {
		problems = append(problems, "missing required environment variable: JWT_SECRET")
	}
	if cfg.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(problems, "\n- "))
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int, problems *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("invalid value for %s: expected integer, got %q", key, v))
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool, problems *[]string) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("invalid value for %s: expected boolean, got %q", key, v))
		return def
	}
	return parsed
}

func getEnvDuration(key string, def time.Duration, problems *[]string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("invalid value for %s: expected duration, got %q", key, v))
		return def
	}
	return parsed
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
