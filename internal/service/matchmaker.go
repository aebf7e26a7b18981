package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"bot-ladder/internal/domain"
	"bot-ladder/internal/repository"

	"github.com/rs/zerolog"
)

// Matchmaker hands out matchups between enabled bots and tracks which
// bots are in-flight. Selection and in-flight marking happen under one
// lock, so a bot can never be handed out twice concurrently.
type Matchmaker struct {
	bots    repository.BotStore
	mapPool []string
	logger  zerolog.Logger

	mu       sync.Mutex
	inFlight map[int64]bool
	rng      *rand.Rand
}

func NewMatchmaker(bots repository.BotStore, mapPool []string, logger zerolog.Logger) *Matchmaker {
	return &Matchmaker{
		bots:     bots,
		mapPool:  mapPool,
		logger:   logger,
		inFlight: make(map[int64]bool),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next selects two enabled, non-in-flight bots, resolves RANDOM races,
// picks a map and marks both bots in-flight. The caller must Release the
// matchup once the outcome is durably recorded or the game is abandoned.
func (m *Matchmaker) Next(ctx context.Context) (domain.Matchup, error) {
	bots, err := m.bots.ListEnabledBots(ctx)
	if err != nil {
		return domain.Matchup{}, fmt.Errorf("failed to list bots for matchmaking: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	eligible := make([]domain.Bot, 0, len(bots))
	for _, bot := range bots {
		if !bot.Enabled {
			return domain.Matchup{}, ErrBotDisabled
		}
		if !m.inFlight[bot.ID] {
			eligible = append(eligible, bot)
		}
	}
	if len(eligible) < 2 {
		return domain.Matchup{}, ErrNoEligibleMatchup
	}

	perm := m.rng.Perm(len(eligible))
	botA := eligible[perm[0]]
	botB := eligible[perm[1]]

	m.inFlight[botA.ID] = true
	m.inFlight[botB.ID] = true

	matchup := domain.Matchup{
		BotA:  botA,
		RaceA: m.resolveRace(botA.Race),
		BotB:  botB,
		RaceB: m.resolveRace(botB.Race),
		Map:   m.mapPool[m.rng.Intn(len(m.mapPool))],
	}

	m.logger.Debug().
		Str("bot_a", botA.Name).
		Str("race_a", string(matchup.RaceA)).
		Str("bot_b", botB.Name).
		Str("race_b", string(matchup.RaceB)).
		Str("map", matchup.Map).
		Msg("matchup selected")

	return matchup, nil
}

// Release clears the in-flight markers for both bots of a matchup. Safe
// to call after failed executions; releasing a bot twice is a no-op.
func (m *Matchmaker) Release(matchup domain.Matchup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, matchup.BotA.ID)
	delete(m.inFlight, matchup.BotB.ID)
}

// InFlight reports whether a bot is currently assigned to a game.
func (m *Matchmaker) InFlight(botID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight[botID]
}

func (m *Matchmaker) resolveRace(race domain.Race) domain.Race {
	if race != domain.RaceRandom {
		return race
	}
	concrete := []domain.Race{domain.RaceProtoss, domain.RaceZerg, domain.RaceTerran}
	return concrete[m.rng.Intn(len(concrete))]
}
