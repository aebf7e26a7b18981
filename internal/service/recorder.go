package service

import (
	"context"
	"fmt"

	"bot-ladder/internal/constants"
	"bot-ladder/internal/domain"
	"bot-ladder/internal/repository"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// Recorder persists game outcomes. Pure durability: the only logic here
// is retrying transient storage faults, because losing a computed result
// is worse than delaying the worker loop.
type Recorder struct {
	games  repository.GameStore
	logger zerolog.Logger
}

func NewRecorder(games repository.GameStore, logger zerolog.Logger) *Recorder {
	return &Recorder{games: games, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, result *domain.GameResult, events []domain.GameEvent) error {
	backoff := retry.WithMaxRetries(constants.RecordRetryAttempts, retry.NewFibonacci(constants.RecordRetryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := r.games.Save(ctx, result, events); err != nil {
			r.logger.Warn().
				Err(err).
				Str("game_id", result.ID.String()).
				Msg("failed to save game result, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record game %s: %w", result.ID, err)
	}

	r.logger.Info().
		Str("game_id", result.ID.String()).
		Str("bot_a", result.BotA.Name).
		Str("bot_b", result.BotB.Name).
		Str("map", result.Map).
		Bool("invalid", result.InvalidGame()).
		Msg("game recorded")
	return nil
}
