package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	// Ladder tuning.
	StartingElo     int
	EloKFactor      int
	MinBadgeMatches int
	PageSize        int

	// Optional integrations.
	SeedPath      string // CSV roster loaded when the players table is empty
	PresenceURL   string // game-server endpoint listing online players
	OCRServiceURL string // text-extraction service for scoreboard screenshots

	OnlineRefreshInterval time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:                getEnv("DB_PATH", "ladder.db"),
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		StartingElo:           getEnvInt("STARTING_ELO", 1000),
		EloKFactor:            getEnvInt("ELO_K_FACTOR", 25),
		MinBadgeMatches:       getEnvInt("MIN_BADGE_MATCHES", 5),
		PageSize:              getEnvInt("PAGE_SIZE", 10),
		SeedPath:              getEnv("SEED_PATH", ""),
		PresenceURL:           getEnv("PRESENCE_URL", ""),
		OCRServiceURL:         getEnv("OCR_SERVICE_URL", ""),
		OnlineRefreshInterval: getEnvDuration("ONLINE_REFRESH_INTERVAL", time.Hour),
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Int("starting_elo", cfg.StartingElo).
		Int("elo_k_factor", cfg.EloKFactor).
		Dur("online_refresh_interval", cfg.OnlineRefreshInterval).
		Msg("configuration loaded")

	return cfg, nil
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
