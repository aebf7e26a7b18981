package service

import (
	"context"
	"errors"
	"testing"

	"bot-ladder/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResult() *domain.GameResult {
	return &domain.GameResult{
		ID:   uuid.New(),
		Map:  "map",
		BotA: domain.Bot{ID: 1, Name: "botA"},
		BotB: domain.Bot{ID: 2, Name: "botB"},
	}
}

func TestRecorderPersistsResultWithEvents(t *testing.T) {
	games := &fakeGameStore{}
	rec := NewRecorder(games, zerolog.Nop())

	result := testResult()
	events := []domain.GameEvent{{GameID: result.ID, Unit: domain.UnitZergZergling, Event: domain.UnitEventCreate, Amount: 12}}
	require.NoError(t, rec.Record(context.Background(), result, events))

	require.Len(t, games.saved, 1)
	assert.Equal(t, result, games.saved[0].result)
	assert.Equal(t, events, games.saved[0].events)
}

func TestRecorderRetriesTransientFaults(t *testing.T) {
	games := &fakeGameStore{saveFailures: 2}
	rec := NewRecorder(games, zerolog.Nop())

	require.NoError(t, rec.Record(context.Background(), testResult(), nil))
	require.Len(t, games.saved, 1)
}

func TestRecorderSurfacesPersistentFaults(t *testing.T) {
	games := &fakeGameStore{saveErr: errors.New("database is locked")}
	rec := NewRecorder(games, zerolog.Nop())

	err := rec.Record(context.Background(), testResult(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Empty(t, games.saved)
}
