package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bot-ladder/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MatchSource is the scheduler's view of the matchmaker.
type MatchSource interface {
	Next(ctx context.Context) (domain.Matchup, error)
	Release(matchup domain.Matchup)
}

// GameExecutor is the scheduler's view of the executor.
type GameExecutor interface {
	Run(ctx context.Context, matchup domain.Matchup) (*domain.GameResult, []domain.GameEvent, error)
}

// ResultRecorder is the scheduler's view of the recorder.
type ResultRecorder interface {
	Record(ctx context.Context, result *domain.GameResult, events []domain.GameEvent) error
}

// Pool runs a fixed number of independent workers, each looping
// fetch → execute → record. Workers share no state with each other; all
// coordination goes through the matchmaker's reservation and the store's
// durability. An unrecognized failure terminates the whole pool so the
// supervisor can alert or restart instead of silently running degraded.
type Pool struct {
	matchmaker MatchSource
	executor   GameExecutor
	recorder   ResultRecorder
	workers    int
	backoff    time.Duration
	logger     zerolog.Logger
}

func NewPool(matchmaker MatchSource, executor GameExecutor, recorder ResultRecorder, workers int, backoff time.Duration, logger zerolog.Logger) *Pool {
	return &Pool{
		matchmaker: matchmaker,
		executor:   executor,
		recorder:   recorder,
		workers:    workers,
		backoff:    backoff,
		logger:     logger,
	}
}

// Run blocks until the context is canceled (returns nil) or a worker hits
// a fatal error (returns it after the remaining workers wind down).
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info().Int("workers", p.workers).Msg("starting game scheduler")

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		workerID := i
		g.Go(func() error {
			return p.worker(ctx, workerID)
		})
	}
	return g.Wait()
}

func (p *Pool) worker(ctx context.Context, id int) error {
	log := p.logger.With().Int("worker", id).Logger()
	log.Info().Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker stopped")
			return nil
		default:
		}

		matchup, err := p.matchmaker.Next(ctx)
		switch {
		case errors.Is(err, ErrNoEligibleMatchup) || errors.Is(err, ErrBotDisabled):
			log.Debug().Msg("no bots to schedule, pausing")
			if !sleepCtx(ctx, p.backoff) {
				log.Info().Msg("worker stopped")
				return nil
			}
			continue
		case errors.Is(err, context.Canceled):
			log.Info().Msg("worker stopped")
			return nil
		case err != nil:
			log.Error().Err(err).Msg("worker terminating on unexpected error")
			return fmt.Errorf("worker %d: %w", id, err)
		}

		if err := p.playOne(ctx, log, matchup); err != nil {
			log.Error().Err(err).Msg("worker terminating on unexpected error")
			return fmt.Errorf("worker %d: %w", id, err)
		}
	}
}

// playOne runs and records a single game. The in-flight reservation is
// released no matter how execution or recording ends.
func (p *Pool) playOne(ctx context.Context, log zerolog.Logger, matchup domain.Matchup) error {
	defer p.matchmaker.Release(matchup)

	// A matchup already handed out is played to completion: shutdown
	// cancellation must not abort the game or drop its computed result.
	// The executor's realtime budget still bounds the game itself; the
	// worker stops at the top of its loop afterwards.
	gameCtx := context.WithoutCancel(ctx)

	result, events, err := p.executor.Run(gameCtx, matchup)

	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		log.Warn().Err(execErr).Msg("game abandoned, no result recorded")
		return nil
	}
	if err != nil {
		return err
	}

	return p.recorder.Record(gameCtx, result, events)
}

// sleepCtx waits for the backoff interval; returns false when the context
// is canceled first, so shutdown never waits out a full backoff window.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
