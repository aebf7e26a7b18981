package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	WorkerCount     int
	ScheduleBackoff time.Duration
	RealtimeLimit   time.Duration
	FrameLimit      int64
	EventThreshold  int64

	PublishDir    string
	PublishWindow time.Duration

	MapPool []string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	workerCount, err := getEnvInt("WORKER_COUNT", 4)
	if err != nil {
		return nil, err
	}
	backoffMs, err := getEnvInt("SCHEDULE_BACKOFF_MS", 1000)
	if err != nil {
		return nil, err
	}
	realtimeLimitSec, err := getEnvInt("REALTIME_LIMIT_SECONDS", 3600)
	if err != nil {
		return nil, err
	}
	frameLimit, err := getEnvInt("FRAME_LIMIT", 85714)
	if err != nil {
		return nil, err
	}
	eventThreshold, err := getEnvInt("EVENT_THRESHOLD", 8)
	if err != nil {
		return nil, err
	}
	publishWindowHours, err := getEnvInt("PUBLISH_WINDOW_HOURS", 24)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "ladder.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		WorkerCount:     int(workerCount),
		ScheduleBackoff: time.Duration(backoffMs) * time.Millisecond,
		RealtimeLimit:   time.Duration(realtimeLimitSec) * time.Second,
		FrameLimit:      frameLimit,
		EventThreshold:  eventThreshold,
		PublishDir:      getEnv("PUBLISH_DIR", "published"),
		PublishWindow:   time.Duration(publishWindowHours) * time.Hour,
		MapPool:         getEnvList("MAP_POOL", []string{"Fighting Spirit", "Circuit Breaker", "Python", "Heartbreak Ridge"}),
	}

	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("WORKER_COUNT must be at least 1, got %d", cfg.WorkerCount)
	}
	if len(cfg.MapPool) == 0 {
		return nil, fmt.Errorf("MAP_POOL must not be empty")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Int("worker_count", cfg.WorkerCount).
		Dur("schedule_backoff", cfg.ScheduleBackoff).
		Dur("realtime_limit", cfg.RealtimeLimit).
		Int64("frame_limit", cfg.FrameLimit).
		Int64("event_threshold", cfg.EventThreshold).
		Str("publish_dir", cfg.PublishDir).
		Dur("publish_window", cfg.PublishWindow).
		Int("map_pool_size", len(cfg.MapPool)).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
