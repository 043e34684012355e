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

type OAuth struct {
	DiscordKey         string
	DiscordSecret      string
	DiscordCallbackURL string
	GoogleKey          string
	GoogleSecret       string
	GoogleCallbackURL  string
}

type Config struct {
	DBDriver           string
	DatabaseURL        string
	MigrationsPath     string
	Port               int
	SessionLifetime    time.Duration
	JWTSecretKey       string
	CORSAllowedOrigins []string
	StatusSyncSchedule string
	OAuth              OAuth
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDriver:           getEnv("DB_DRIVER", "sqlite3"),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", "migrations"),
		JWTSecretKey:       os.Getenv("JWT_SECRET_KEY"),
		StatusSyncSchedule: getEnv("STATUS_SYNC_SCHEDULE", "@every 1m"),
		OAuth: OAuth{
			DiscordKey:         os.Getenv("DISCORD_KEY"),
			DiscordSecret:      os.Getenv("DISCORD_SECRET"),
			DiscordCallbackURL: os.Getenv("DISCORD_CALLBACK_URL"),
			GoogleKey:          os.Getenv("GOOGLE_KEY"),
			GoogleSecret:       os.Getenv("GOOGLE_SECRET"),
			GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		},
	}

	switch cfg.DBDriver {
	case "sqlite3":
		cfg.DatabaseURL = getEnv("DATABASE_URL", "op_chess.db?_journal_mode=WAL&_foreign_keys=on")
	case "postgres":
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for postgres")
		}
	default:
		return nil, fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", cfg.DBDriver)
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	cfg.Port = port

	lifetime, err := time.ParseDuration(getEnv("SESSION_LIFETIME", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME environment variable: %w", err)
	}
	cfg.SessionLifetime = lifetime

	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
