package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"bot-ladder/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine runs one game in the sandbox. The returned result may be
// non-nil alongside an error when the game failed mid-way but produced a
// usable partial outcome; a nil result with an error means the game could
// not run at all.
type Engine interface {
	Play(ctx context.Context, matchup domain.Matchup) (*EngineResult, error)
}

// EngineResult is the raw outcome reported by the sandbox.
type EngineResult struct {
	WinnerBotID *int64
	LoserBotID  *int64
	BotACrashed bool
	BotBCrashed bool
	FrameCount  int64
	Record      []byte
	Events      []domain.GameEvent
}

// Executor turns engine outcomes into persistent game results: it times
// the game, applies the realtime and frame budgets, and computes the
// content hash of the game record.
type Executor struct {
	engine        Engine
	realtimeLimit time.Duration
	frameLimit    int64
	logger        zerolog.Logger
	now           func() time.Time
}

func NewExecutor(engine Engine, realtimeLimit time.Duration, frameLimit int64, logger zerolog.Logger) *Executor {
	return &Executor{
		engine:        engine,
		realtimeLimit: realtimeLimit,
		frameLimit:    frameLimit,
		logger:        logger,
		now:           time.Now,
	}
}

// Run executes a matchup. A timeout of either kind invalidates the
// outcome: the winner/loser reported by the engine is discarded, but the
// game itself is still recordable. Crash flags survive independently of
// the outcome.
func (e *Executor) Run(ctx context.Context, matchup domain.Matchup) (*domain.GameResult, []domain.GameEvent, error) {
	start := e.now()

	playCtx, cancel := context.WithTimeout(ctx, e.realtimeLimit)
	defer cancel()

	engineResult, playErr := e.engine.Play(playCtx, matchup)
	duration := e.now().Sub(start)

	if engineResult == nil {
		return nil, nil, &ExecutionError{Matchup: matchup, Err: playErr}
	}

	realtimeTimeout := errors.Is(playErr, context.DeadlineExceeded) ||
		errors.Is(playCtx.Err(), context.DeadlineExceeded)
	frameTimeout := e.frameLimit > 0 && engineResult.FrameCount > e.frameLimit

	result := &domain.GameResult{
		ID:              uuid.New(),
		Time:            start.UTC(),
		GameRealtime:    duration.Seconds(),
		RealtimeTimeout: realtimeTimeout,
		FrameTimeout:    frameTimeout,
		Map:             matchup.Map,
		BotA:            matchup.BotA,
		RaceA:           matchup.RaceA,
		BotB:            matchup.BotB,
		RaceB:           matchup.RaceB,
		BotACrashed:     engineResult.BotACrashed,
		BotBCrashed:     engineResult.BotBCrashed,
		GameHash:        e.gameHash(matchup, engineResult),
		FrameCount:      &engineResult.FrameCount,
	}

	// A timed-out game has no attributable outcome, no matter what the
	// engine reported.
	if !result.InvalidGame() {
		result.Winner = engineResult.WinnerBotID
		result.Loser = engineResult.LoserBotID
	}

	events := make([]domain.GameEvent, len(engineResult.Events))
	for i, ev := range engineResult.Events {
		ev.GameID = result.ID
		events[i] = ev
	}

	if playErr != nil && !realtimeTimeout {
		e.logger.Warn().
			Err(playErr).
			Str("game_id", result.ID.String()).
			Str("bot_a", matchup.BotA.Name).
			Str("bot_b", matchup.BotB.Name).
			Msg("game failed mid-way, recording partial outcome")
	}

	return result, events, nil
}

// gameHash is a stable content hash of the game record, used for audit
// and dedup. Falls back to the canonical matchup summary when the engine
// produced no record bytes.
func (e *Executor) gameHash(matchup domain.Matchup, engineResult *EngineResult) string {
	h := sha256.New()
	if len(engineResult.Record) > 0 {
		h.Write(engineResult.Record)
	} else {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%d",
			matchup.Map, matchup.BotA.Name, matchup.RaceA, matchup.BotB.Name, matchup.RaceB,
			engineResult.FrameCount)
	}
	return hex.EncodeToString(h.Sum(nil))
}
