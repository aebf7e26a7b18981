// Package engine contains the built-in simulation engine. It stands in
// for the real game sandbox so the ladder can run end-to-end; outcomes
// are random but structurally faithful (winners, crashes, frame counts,
// unit-event traces).
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"bot-ladder/internal/domain"
	"bot-ladder/internal/service"
)

type Sim struct {
	mu  sync.Mutex
	rng *rand.Rand

	// GameDuration bounds the simulated wall-clock time per game.
	GameDuration time.Duration
}

func NewSim() *Sim {
	return &Sim{
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		GameDuration: 2 * time.Second,
	}
}

var simUnits = []domain.UnitType{
	domain.UnitTerranMarine,
	domain.UnitZergZergling,
	domain.UnitZergMutalisk,
	domain.UnitProtossZealot,
	domain.UnitProtossDragoon,
	domain.UnitProtossCarrier,
}

func (s *Sim) Play(ctx context.Context, matchup domain.Matchup) (*service.EngineResult, error) {
	s.mu.Lock()
	duration := time.Duration(s.rng.Int63n(int64(s.GameDuration)))
	winnerIsA := s.rng.Intn(2) == 0
	crashed := s.rng.Intn(20) == 0
	frameCount := 5000 + s.rng.Int63n(80000)
	events := s.randomEvents()
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(duration):
	}

	result := &service.EngineResult{
		FrameCount: frameCount,
		Events:     events,
		Record: []byte(fmt.Sprintf("%s|%s|%s|%s|%s|%d",
			matchup.Map, matchup.BotA.Name, matchup.RaceA, matchup.BotB.Name, matchup.RaceB, frameCount)),
	}
	if winnerIsA {
		result.WinnerBotID = &matchup.BotA.ID
		result.LoserBotID = &matchup.BotB.ID
		result.BotBCrashed = crashed
	} else {
		result.WinnerBotID = &matchup.BotB.ID
		result.LoserBotID = &matchup.BotA.ID
		result.BotACrashed = crashed
	}
	return result, nil
}

func (s *Sim) randomEvents() []domain.GameEvent {
	var events []domain.GameEvent
	for _, unit := range simUnits {
		if s.rng.Intn(3) != 0 {
			continue
		}
		events = append(events, domain.GameEvent{
			Unit:   unit,
			Event:  domain.UnitEventCreate,
			Amount: 1 + s.rng.Int63n(30),
		})
	}
	return events
}
