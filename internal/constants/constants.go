package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	PublishTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// RecordRetryAttempts bounds retries of a failed result write. Losing a
	// computed game is worse than delaying the worker loop.
	RecordRetryAttempts = 5
	RecordRetryBase     = 100 * time.Millisecond
)
