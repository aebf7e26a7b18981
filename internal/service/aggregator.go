package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bot-ladder/internal/constants"
	"bot-ladder/internal/domain"
	"bot-ladder/internal/publish"
	"bot-ladder/internal/repository"

	"github.com/rs/zerolog"
)

// ratingStep is the rating delta applied per decisive game. The exact
// model is deliberately simple; what matters is that the new rating is
// monotonic in the win/loss differential since the bot's watermark.
const ratingStep = 16

// Publisher renders and writes the per-cycle artifacts.
type Publisher interface {
	PublishResults(results []domain.GameResult, events []domain.GameEvent) error
	PublishRanking(entries []publish.RankingEntry) error
}

// Aggregator turns accumulated game history into ratings, ranks and
// published artifacts. One cycle at a time: a trigger arriving while a
// cycle runs is rejected, not queued. It reads durable state only, so it
// can run alongside live game traffic.
type Aggregator struct {
	bots      repository.BotStore
	games     repository.GameStore
	publisher Publisher
	window    time.Duration
	threshold int64
	logger    zerolog.Logger
	now       func() time.Time

	mu sync.Mutex
}

func NewAggregator(bots repository.BotStore, games repository.GameStore, publisher Publisher, window time.Duration, threshold int64, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		bots:      bots,
		games:     games,
		publisher: publisher,
		window:    window,
		threshold: threshold,
		logger:    logger,
		now:       time.Now,
	}
}

// PreparePublish runs one aggregation-and-publish cycle: fold new game
// results into each bot's rating and rank, then render the results and
// ranking artifacts from the recent-results window.
func (a *Aggregator) PreparePublish(ctx context.Context) error {
	if !a.mu.TryLock() {
		return ErrPublishInProgress
	}
	defer a.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, constants.PublishTimeout)
	defer cancel()

	cycleStart := a.now().UTC()
	a.logger.Info().Time("cycle_start", cycleStart).Msg("publish cycle starting")

	if err := a.updateRankings(ctx, cycleStart); err != nil {
		return err
	}

	since := cycleStart.Add(-a.window)
	results, err := a.games.GameResultsSince(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to load recent game results: %w", err)
	}
	events, err := a.games.AggregateEventsWithThreshold(ctx, since, a.threshold)
	if err != nil {
		return fmt.Errorf("failed to load aggregated game events: %w", err)
	}
	if err := a.publisher.PublishResults(results, events); err != nil {
		return fmt.Errorf("failed to publish results: %w", err)
	}

	if err := a.publishRanking(ctx); err != nil {
		return err
	}

	a.logger.Info().
		Int("results", len(results)).
		Int("event_groups", len(events)).
		Msg("publish cycle completed")
	return nil
}

// updateRankings folds each bot's wins and losses since its watermark
// into its rating, derives the tier, and advances the watermark.
func (a *Aggregator) updateRankings(ctx context.Context, now time.Time) error {
	stats, err := a.games.GamesSinceBotWatermark(ctx)
	if err != nil {
		return fmt.Errorf("failed to load games since watermark: %w", err)
	}

	for _, st := range stats {
		rating := st.Bot.Rating + int(st.Won-st.Lost)*ratingStep
		rank := domain.RankForRating(rating)
		if err := a.bots.UpdateBotRanking(ctx, st.Bot.ID, rating, rank, now); err != nil {
			return fmt.Errorf("failed to update ranking for %q: %w", st.Bot.Name, err)
		}

		a.logger.Debug().
			Str("bot", st.Bot.Name).
			Int64("won", st.Won).
			Int64("lost", st.Lost).
			Int("old_rating", st.Bot.Rating).
			Int("new_rating", rating).
			Str("rank", string(rank)).
			Msg("bot ranking recomputed")
	}
	return nil
}

func (a *Aggregator) publishRanking(ctx context.Context) error {
	bots, err := a.bots.ListEnabledBots(ctx)
	if err != nil {
		return fmt.Errorf("failed to list bots for ranking: %w", err)
	}

	raceStats, err := a.games.RaceVsRaceStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load race vs race stats: %w", err)
	}
	racesByBot := make(map[int64][]publish.RaceTally)
	for _, st := range raceStats {
		racesByBot[st.Bot.ID] = append(racesByBot[st.Bot.ID], publish.RaceTally{
			Race:      st.Race,
			EnemyRace: st.EnemyRace,
			Won:       st.Won,
			Lost:      st.Lost,
		})
	}

	entries := make([]publish.RankingEntry, 0, len(bots))
	for _, bot := range bots {
		mapStats, err := a.games.MapStats(ctx, bot.ID)
		if err != nil {
			return fmt.Errorf("failed to load map stats for %q: %w", bot.Name, err)
		}
		maps := make([]publish.MapTally, len(mapStats))
		for i, st := range mapStats {
			maps[i] = publish.MapTally{Map: st.Map, Won: st.Won, Lost: st.Lost}
		}
		entries = append(entries, publish.RankingEntry{
			Bot:   bot,
			Maps:  maps,
			Races: racesByBot[bot.ID],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Bot.Rating != entries[j].Bot.Rating {
			return entries[i].Bot.Rating > entries[j].Bot.Rating
		}
		return entries[i].Bot.Name < entries[j].Bot.Name
	})

	return a.publisher.PublishRanking(entries)
}
