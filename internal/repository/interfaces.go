package repository

import (
	"context"
	"time"

	"bot-ladder/internal/domain"
)

// BotStat is a bot's win/loss tally over games newer than its watermark.
type BotStat struct {
	Bot  domain.Bot
	Won  int64
	Lost int64
}

// MapStat is a single bot's win/loss tally on one map.
type MapStat struct {
	Map  string
	Won  int64
	Lost int64
}

// BotRaceVsRace is a bot's win/loss tally for one race-vs-race pairing,
// using the races actually assigned per game (RANDOM already resolved).
type BotRaceVsRace struct {
	Bot       domain.Bot
	Race      domain.Race
	EnemyRace domain.Race
	Won       int64
	Lost      int64
}

// BotStore is the bot side of the storage port.
type BotStore interface {
	ListEnabledBots(ctx context.Context) ([]domain.Bot, error)
	GetBotByName(ctx context.Context, name string) (*domain.Bot, error)
	CreateBot(ctx context.Context, bot *domain.Bot) error
	SetBotEnabled(ctx context.Context, id int64, enabled bool) error
	UpdateBotRanking(ctx context.Context, id int64, rating int, rank domain.Rank, updatedAt time.Time) error
}

// GameStore is the game-result side of the storage port. Save is atomic:
// the result and its events land together or not at all.
type GameStore interface {
	Save(ctx context.Context, result *domain.GameResult, events []domain.GameEvent) error
	GameResultsSince(ctx context.Context, since time.Time) ([]domain.GameResult, error)
	GamesSinceBotWatermark(ctx context.Context) ([]BotStat, error)
	MapStats(ctx context.Context, botID int64) ([]MapStat, error)
	RaceVsRaceStats(ctx context.Context) ([]BotRaceVsRace, error)
	AggregateEventsWithThreshold(ctx context.Context, since time.Time, minCount int64) ([]domain.GameEvent, error)
}
