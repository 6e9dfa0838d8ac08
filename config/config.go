package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Турнир, который обслуживает этот инстанс движка.
	TournamentID int

	// Внешний солвер расписания.
	SolverURL              string
	SolverServiceToken     string
	SolverTimeLimitSeconds int

	// Исходящее зеркалирование состояния; пустой URL отключает синк.
	SyncTargetURL    string
	SyncServiceToken string

	// Публикация публичного табло в Cloudflare R2; пустой AccountID отключает.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	tournamentID, err := intEnv("TOURNAMENT_ID", 0)
	if err != nil {
		return nil, err
	}
	if tournamentID <= 0 {
		return nil, fmt.Errorf("TOURNAMENT_ID environment variable is not set")
	}

	solverURL := os.Getenv("SOLVER_URL")
	if solverURL == "" {
		return nil, fmt.Errorf("SOLVER_URL environment variable is not set")
	}
	solverTimeLimit, err := intEnv("SOLVER_TIME_LIMIT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	if solverTimeLimit <= 0 {
		return nil, fmt.Errorf("SOLVER_TIME_LIMIT_SECONDS must be positive, got %d", solverTimeLimit)
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,

		TournamentID: tournamentID,

		SolverURL:              solverURL,
		SolverServiceToken:     os.Getenv("SOLVER_SERVICE_TOKEN"),
		SolverTimeLimitSeconds: solverTimeLimit,

		SyncTargetURL:    os.Getenv("SYNC_TARGET_URL"),
		SyncServiceToken: os.Getenv("SYNC_SERVICE_TOKEN"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// R2Enabled — публикация табло настроена полностью.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}
