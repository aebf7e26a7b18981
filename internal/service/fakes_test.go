package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"bot-ladder/internal/domain"
	"bot-ladder/internal/publish"
	"bot-ladder/internal/repository"
)

type rankingUpdate struct {
	botID  int64
	rating int
	rank   domain.Rank
	at     time.Time
}

type fakeBotStore struct {
	mu       sync.Mutex
	bots     []domain.Bot
	listErr  error
	rankings []rankingUpdate
}

func (f *fakeBotStore) ListEnabledBots(context.Context) ([]domain.Bot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Bot, len(f.bots))
	copy(out, f.bots)
	return out, nil
}

func (f *fakeBotStore) GetBotByName(_ context.Context, name string) (*domain.Bot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bots {
		if f.bots[i].Name == name {
			bot := f.bots[i]
			return &bot, nil
		}
	}
	return nil, nil
}

func (f *fakeBotStore) CreateBot(_ context.Context, bot *domain.Bot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	bot.ID = int64(len(f.bots) + 1)
	f.bots = append(f.bots, *bot)
	return nil
}

func (f *fakeBotStore) SetBotEnabled(_ context.Context, id int64, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bots {
		if f.bots[i].ID == id {
			f.bots[i].Enabled = enabled
		}
	}
	return nil
}

func (f *fakeBotStore) UpdateBotRanking(_ context.Context, id int64, rating int, rank domain.Rank, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rankings = append(f.rankings, rankingUpdate{botID: id, rating: rating, rank: rank, at: at})
	return nil
}

type savedGame struct {
	result *domain.GameResult
	events []domain.GameEvent
}

type fakeGameStore struct {
	mu             sync.Mutex
	saved          []savedGame
	saveErr        error
	saveFailures   int
	results        []domain.GameResult
	watermarkStats []repository.BotStat
	mapStats       map[int64][]repository.MapStat
	raceStats      []repository.BotRaceVsRace
	events         []domain.GameEvent
	lastSince      time.Time
	lastMinCount   int64
}

func (f *fakeGameStore) Save(_ context.Context, result *domain.GameResult, events []domain.GameEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveFailures > 0 {
		f.saveFailures--
		return errors.New("transient save failure")
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, savedGame{result: result, events: events})
	return nil
}

func (f *fakeGameStore) GameResultsSince(_ context.Context, since time.Time) ([]domain.GameResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSince = since
	return f.results, nil
}

func (f *fakeGameStore) GamesSinceBotWatermark(context.Context) ([]repository.BotStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watermarkStats, nil
}

func (f *fakeGameStore) MapStats(_ context.Context, botID int64) ([]repository.MapStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mapStats[botID], nil
}

func (f *fakeGameStore) RaceVsRaceStats(context.Context) ([]repository.BotRaceVsRace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raceStats, nil
}

func (f *fakeGameStore) AggregateEventsWithThreshold(_ context.Context, since time.Time, minCount int64) ([]domain.GameEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSince = since
	f.lastMinCount = minCount
	return f.events, nil
}

type fakePublisher struct {
	mu            sync.Mutex
	results       []domain.GameResult
	events        []domain.GameEvent
	ranking       []publish.RankingEntry
	resultsCalls  int
	rankingCalls  int
	blockUntil    chan struct{}
	started       chan struct{}
	publishErrors error
}

func (f *fakePublisher) PublishResults(results []domain.GameResult, events []domain.GameEvent) error {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.blockUntil != nil {
		<-f.blockUntil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = results
	f.events = events
	f.resultsCalls++
	return f.publishErrors
}

func (f *fakePublisher) PublishRanking(entries []publish.RankingEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranking = entries
	f.rankingCalls++
	return f.publishErrors
}

type fakeEngine struct {
	play func(ctx context.Context, matchup domain.Matchup) (*EngineResult, error)
}

func (f *fakeEngine) Play(ctx context.Context, matchup domain.Matchup) (*EngineResult, error) {
	return f.play(ctx, matchup)
}
