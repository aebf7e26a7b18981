package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bot-ladder/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSource struct {
	mu       sync.Mutex
	matchups []domain.Matchup
	nextErr  error

	nextCalls atomic.Int32
	releases  atomic.Int32
}

func (s *scriptedSource) Next(context.Context) (domain.Matchup, error) {
	s.nextCalls.Add(1)
	if s.nextErr != nil {
		return domain.Matchup{}, s.nextErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.matchups) == 0 {
		return domain.Matchup{}, ErrNoEligibleMatchup
	}
	matchup := s.matchups[0]
	s.matchups = s.matchups[1:]
	return matchup, nil
}

func (s *scriptedSource) Release(domain.Matchup) {
	s.releases.Add(1)
}

type funcExecutor struct {
	run func(ctx context.Context, matchup domain.Matchup) (*domain.GameResult, []domain.GameEvent, error)
}

func (f *funcExecutor) Run(ctx context.Context, matchup domain.Matchup) (*domain.GameResult, []domain.GameEvent, error) {
	return f.run(ctx, matchup)
}

type countingRecorder struct {
	records atomic.Int32
	err     error
}

func (r *countingRecorder) Record(context.Context, *domain.GameResult, []domain.GameEvent) error {
	r.records.Add(1)
	return r.err
}

func someMatchups(n int) []domain.Matchup {
	matchups := make([]domain.Matchup, n)
	for i := range matchups {
		matchups[i] = domain.Matchup{
			BotA: domain.Bot{ID: int64(2*i + 1)},
			BotB: domain.Bot{ID: int64(2*i + 2)},
			Map:  "map",
		}
	}
	return matchups
}

func okExecutor() *funcExecutor {
	return &funcExecutor{run: func(_ context.Context, matchup domain.Matchup) (*domain.GameResult, []domain.GameEvent, error) {
		return &domain.GameResult{BotA: matchup.BotA, BotB: matchup.BotB, Map: matchup.Map}, nil, nil
	}}
}

func TestPoolPlaysAndRecordsAllMatchups(t *testing.T) {
	source := &scriptedSource{matchups: someMatchups(3)}
	recorder := &countingRecorder{}
	pool := NewPool(source, okExecutor(), recorder, 2, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	require.Eventually(t, func() bool { return recorder.records.Load() == 3 },
		2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, int32(3), source.releases.Load(), "every matchup must be released")
}

func TestPoolBacksOffOnStarvation(t *testing.T) {
	source := &scriptedSource{}
	pool := NewPool(source, okExecutor(), &countingRecorder{}, 1, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	require.Eventually(t, func() bool { return source.nextCalls.Load() >= 3 },
		2*time.Second, 5*time.Millisecond, "starved worker should keep retrying")
	cancel()
	require.NoError(t, <-done)
}

func TestPoolTerminatesOnUnexpectedError(t *testing.T) {
	source := &scriptedSource{nextErr: errors.New("storage corrupted")}
	pool := NewPool(source, okExecutor(), &countingRecorder{}, 2, time.Millisecond, zerolog.Nop())

	err := pool.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage corrupted")
}

func TestPoolAbandonsGameOnExecutionFault(t *testing.T) {
	source := &scriptedSource{matchups: someMatchups(1)}
	recorder := &countingRecorder{}
	executor := &funcExecutor{run: func(_ context.Context, matchup domain.Matchup) (*domain.GameResult, []domain.GameEvent, error) {
		return nil, nil, &ExecutionError{Matchup: matchup, Err: errors.New("sandbox exploded")}
	}}
	pool := NewPool(source, executor, recorder, 1, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	require.Eventually(t, func() bool { return source.releases.Load() == 1 },
		2*time.Second, 5*time.Millisecond, "abandoned game must release its reservation")
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, int32(0), recorder.records.Load(), "no result may be recorded for an abandoned game")
}

func TestPoolFinishesInFlightGameOnShutdown(t *testing.T) {
	source := &scriptedSource{matchups: someMatchups(1)}
	recorder := &countingRecorder{}
	started := make(chan struct{})
	executor := &funcExecutor{run: func(ctx context.Context, matchup domain.Matchup) (*domain.GameResult, []domain.GameEvent, error) {
		close(started)
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
		return &domain.GameResult{BotA: matchup.BotA, BotB: matchup.BotB, Map: matchup.Map}, nil, nil
	}}
	pool := NewPool(source, executor, recorder, 1, time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	<-started
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), recorder.records.Load(), "a game in flight at shutdown must finish and be recorded")
	assert.Equal(t, int32(1), source.releases.Load())
}

func TestPoolTerminatesOnPersistenceFailure(t *testing.T) {
	source := &scriptedSource{matchups: someMatchups(1)}
	recorder := &countingRecorder{err: errors.New("disk full")}
	pool := NewPool(source, okExecutor(), recorder, 1, time.Millisecond, zerolog.Nop())

	err := pool.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, int32(1), source.releases.Load())
}

func TestPoolShutdownIsPromptDuringBackoff(t *testing.T) {
	source := &scriptedSource{}
	pool := NewPool(source, okExecutor(), &countingRecorder{}, 4, 10*time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	start := time.Now()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pool did not shut down promptly while workers were backing off")
	}
	assert.Less(t, time.Since(start), time.Second)
}
