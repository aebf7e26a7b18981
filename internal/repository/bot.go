package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bot-ladder/internal/constants"
	"bot-ladder/internal/domain"

	"github.com/rs/zerolog"
)

type BotRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewBotRepository(sqlDB *sql.DB, logger zerolog.Logger) *BotRepository {
	return &BotRepository{
		db:     sqlDB,
		logger: logger,
	}
}

const botColumns = "id, enabled, parent_id, name, race, binary_path, rank, rating, last_updated"

func scanBot(row interface{ Scan(...any) error }) (domain.Bot, error) {
	var bot domain.Bot
	var race, rank string
	err := row.Scan(&bot.ID, &bot.Enabled, &bot.ParentID, &bot.Name, &race, &bot.BinaryPath, &rank, &bot.Rating, &bot.LastUpdated)
	if err != nil {
		return domain.Bot{}, err
	}
	bot.Race = domain.Race(race)
	bot.Rank = domain.Rank(rank)
	return bot, nil
}

func (r *BotRepository) ListEnabledBots(ctx context.Context) ([]domain.Bot, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+botColumns+" FROM bots WHERE enabled ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled bots: %w", err)
	}
	defer rows.Close()

	var bots []domain.Bot
	for rows.Next() {
		bot, err := scanBot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bot: %w", err)
		}
		bots = append(bots, bot)
	}
	return bots, rows.Err()
}

func (r *BotRepository) GetBotByName(ctx context.Context, name string) (*domain.Bot, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx,
		"SELECT "+botColumns+" FROM bots WHERE name = ?", name)
	bot, err := scanBot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bot %q: %w", name, err)
	}
	return &bot, nil
}

func (r *BotRepository) CreateBot(ctx context.Context, bot *domain.Bot) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if bot.Rank == "" {
		bot.Rank = domain.RankUnknown
	}
	if bot.Rating == 0 {
		bot.Rating = domain.DefaultRating
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bots (enabled, parent_id, name, race, binary_path, rank, rating, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bot.Enabled, bot.ParentID, bot.Name, string(bot.Race), bot.BinaryPath,
		string(bot.Rank), bot.Rating, bot.LastUpdated.UTC())
	if err != nil {
		return fmt.Errorf("failed to create bot %q: %w", bot.Name, err)
	}
	bot.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read bot id: %w", err)
	}

	r.logger.Info().
		Int64("bot_id", bot.ID).
		Str("name", bot.Name).
		Str("race", string(bot.Race)).
		Msg("bot registered")
	return nil
}

func (r *BotRepository) SetBotEnabled(ctx context.Context, id int64, enabled bool) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "UPDATE bots SET enabled = ? WHERE id = ?", enabled, id)
	if err != nil {
		return fmt.Errorf("failed to update bot %d enabled flag: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	r.logger.Info().Int64("bot_id", id).Bool("enabled", enabled).Msg("bot enabled flag updated")
	return nil
}

func (r *BotRepository) UpdateBotRanking(ctx context.Context, id int64, rating int, rank domain.Rank, updatedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		"UPDATE bots SET rating = ?, rank = ?, last_updated = ? WHERE id = ?",
		rating, string(rank), updatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update ranking for bot %d: %w", id, err)
	}

	r.logger.Debug().
		Int64("bot_id", id).
		Int("rating", rating).
		Str("rank", string(rank)).
		Time("last_updated", updatedAt).
		Msg("bot ranking updated")
	return nil
}
