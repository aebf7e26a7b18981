package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bot-ladder/internal/constants"
	"bot-ladder/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type GameRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewGameRepository(sqlDB *sql.DB, logger zerolog.Logger) *GameRepository {
	return &GameRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Save persists a game result and its event groups in one transaction.
func (r *GameRepository) Save(ctx context.Context, result *domain.GameResult, events []domain.GameEvent) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO game_results (id, time, game_realtime, realtime_timeout, frame_timeout, map,
		 bot_a, race_a, bot_b, race_b, winner, loser, bot_a_crashed, bot_b_crashed, game_hash, frame_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID.String(), result.Time.UTC(), result.GameRealtime,
		result.RealtimeTimeout, result.FrameTimeout, result.Map,
		result.BotA.ID, string(result.RaceA), result.BotB.ID, string(result.RaceB),
		result.Winner, result.Loser, result.BotACrashed, result.BotBCrashed,
		result.GameHash, result.FrameCount)
	if err != nil {
		return fmt.Errorf("failed to insert game result: %w", err)
	}

	for _, ev := range events {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO game_events (game_id, unit, event, amount) VALUES (?, ?, ?, ?)",
			result.ID.String(), int(ev.Unit), int(ev.Event), ev.Amount)
		if err != nil {
			return fmt.Errorf("failed to insert game event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit game result: %w", err)
	}

	r.logger.Debug().
		Str("game_id", result.ID.String()).
		Str("map", result.Map).
		Int("event_groups", len(events)).
		Msg("game result saved")
	return nil
}

// GameResultsSince returns results newer than the given instant, with both
// participating bots joined in, ordered by time then id so repeated reads
// of the same snapshot yield the same sequence.
func (r *GameRepository) GameResultsSince(ctx context.Context, since time.Time) ([]domain.GameResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.time, r.game_realtime, r.realtime_timeout, r.frame_timeout, r.map,
		        a.id, a.enabled, a.parent_id, a.name, a.race, a.binary_path, a.rank, a.rating, a.last_updated,
		        r.race_a,
		        b.id, b.enabled, b.parent_id, b.name, b.race, b.binary_path, b.rank, b.rating, b.last_updated,
		        r.race_b,
		        r.winner, r.loser, r.bot_a_crashed, r.bot_b_crashed, r.game_hash, r.frame_count
		 FROM game_results r
		 JOIN bots a ON a.id = r.bot_a
		 JOIN bots b ON b.id = r.bot_b
		 WHERE r.time > ?
		 ORDER BY r.time, r.id`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query game results: %w", err)
	}
	defer rows.Close()

	var results []domain.GameResult
	for rows.Next() {
		var res domain.GameResult
		var id string
		var raceA, raceB, botARace, botBRace, botARank, botBRank string
		var winner, loser, frameCount sql.NullInt64

		err := rows.Scan(&id, &res.Time, &res.GameRealtime, &res.RealtimeTimeout, &res.FrameTimeout, &res.Map,
			&res.BotA.ID, &res.BotA.Enabled, &res.BotA.ParentID, &res.BotA.Name, &botARace, &res.BotA.BinaryPath, &botARank, &res.BotA.Rating, &res.BotA.LastUpdated,
			&raceA,
			&res.BotB.ID, &res.BotB.Enabled, &res.BotB.ParentID, &res.BotB.Name, &botBRace, &res.BotB.BinaryPath, &botBRank, &res.BotB.Rating, &res.BotB.LastUpdated,
			&raceB,
			&winner, &loser, &res.BotACrashed, &res.BotBCrashed, &res.GameHash, &frameCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}

		res.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid game id %q: %w", id, err)
		}
		res.BotA.Race = domain.Race(botARace)
		res.BotA.Rank = domain.Rank(botARank)
		res.BotB.Race = domain.Race(botBRace)
		res.BotB.Rank = domain.Rank(botBRank)
		res.RaceA = domain.Race(raceA)
		res.RaceB = domain.Race(raceB)
		if winner.Valid {
			res.Winner = &winner.Int64
		}
		if loser.Valid {
			res.Loser = &loser.Int64
		}
		if frameCount.Valid {
			res.FrameCount = &frameCount.Int64
		}

		results = append(results, res)
	}
	return results, rows.Err()
}

// GamesSinceBotWatermark tallies decisive games newer than each enabled
// bot's last_updated watermark.
func (r *GameRepository) GamesSinceBotWatermark(ctx context.Context) ([]BotStat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.enabled, b.parent_id, b.name, b.race, b.binary_path, b.rank, b.rating, b.last_updated,
		        SUM(CASE WHEN r.winner = b.id THEN 1 ELSE 0 END),
		        SUM(CASE WHEN r.loser = b.id THEN 1 ELSE 0 END)
		 FROM game_results r
		 JOIN bots b ON b.id IN (r.bot_a, r.bot_b)
		 WHERE r.time > b.last_updated AND (r.winner = b.id OR r.loser = b.id) AND b.enabled
		 GROUP BY b.id
		 ORDER BY b.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query games since watermark: %w", err)
	}
	defer rows.Close()

	var stats []BotStat
	for rows.Next() {
		var st BotStat
		var race, rank string
		err := rows.Scan(&st.Bot.ID, &st.Bot.Enabled, &st.Bot.ParentID, &st.Bot.Name, &race, &st.Bot.BinaryPath, &rank, &st.Bot.Rating, &st.Bot.LastUpdated,
			&st.Won, &st.Lost)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bot stat: %w", err)
		}
		st.Bot.Race = domain.Race(race)
		st.Bot.Rank = domain.Rank(rank)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// MapStats tallies one bot's decisive games per map.
func (r *GameRepository) MapStats(ctx context.Context, botID int64) ([]MapStat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT r.map,
		        SUM(CASE WHEN r.winner = ? THEN 1 ELSE 0 END),
		        SUM(CASE WHEN r.loser = ? THEN 1 ELSE 0 END)
		 FROM game_results r
		 WHERE r.winner = ? OR r.loser = ?
		 GROUP BY r.map
		 ORDER BY r.map`, botID, botID, botID, botID)
	if err != nil {
		return nil, fmt.Errorf("failed to query map stats: %w", err)
	}
	defer rows.Close()

	var stats []MapStat
	for rows.Next() {
		var st MapStat
		if err := rows.Scan(&st.Map, &st.Won, &st.Lost); err != nil {
			return nil, fmt.Errorf("failed to scan map stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// RaceVsRaceStats tallies each enabled bot's games per assigned-race
// pairing, using the race the bot actually played that game.
func (r *GameRepository) RaceVsRaceStats(ctx context.Context) ([]BotRaceVsRace, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.enabled, b.parent_id, b.name, b.race, b.binary_path, b.rank, b.rating, b.last_updated,
		        CASE WHEN r.bot_a = b.id THEN r.race_a ELSE r.race_b END AS race,
		        CASE WHEN r.bot_a = b.id THEN r.race_b ELSE r.race_a END AS enemy_race,
		        SUM(CASE WHEN r.winner = b.id THEN 1 ELSE 0 END),
		        SUM(CASE WHEN r.loser = b.id THEN 1 ELSE 0 END)
		 FROM game_results r
		 JOIN bots b ON b.id IN (r.bot_a, r.bot_b)
		 WHERE b.enabled
		 GROUP BY b.id, race, enemy_race
		 ORDER BY b.id, race, enemy_race`)
	if err != nil {
		return nil, fmt.Errorf("failed to query race vs race stats: %w", err)
	}
	defer rows.Close()

	var stats []BotRaceVsRace
	for rows.Next() {
		var st BotRaceVsRace
		var botRace, rank, race, enemyRace string
		err := rows.Scan(&st.Bot.ID, &st.Bot.Enabled, &st.Bot.ParentID, &st.Bot.Name, &botRace, &st.Bot.BinaryPath, &rank, &st.Bot.Rating, &st.Bot.LastUpdated,
			&race, &enemyRace, &st.Won, &st.Lost)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race vs race stat: %w", err)
		}
		st.Bot.Race = domain.Race(botRace)
		st.Bot.Rank = domain.Rank(rank)
		st.Race = domain.Race(race)
		st.EnemyRace = domain.Race(enemyRace)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// AggregateEventsWithThreshold returns event groups for games newer than
// the given instant whose total amount meets minCount, in a stable
// (game, unit, event) order.
func (r *GameRepository) AggregateEventsWithThreshold(ctx context.Context, since time.Time, minCount int64) ([]domain.GameEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT e.game_id, e.unit, e.event, SUM(e.amount)
		 FROM game_events e
		 JOIN game_results r ON r.id = e.game_id
		 WHERE r.time > ?
		 GROUP BY e.game_id, e.unit, e.event
		 HAVING SUM(e.amount) >= ?
		 ORDER BY e.game_id, e.unit, e.event`, since.UTC(), minCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query aggregated events: %w", err)
	}
	defer rows.Close()

	var events []domain.GameEvent
	for rows.Next() {
		var ev domain.GameEvent
		var id string
		var unit, event int
		if err := rows.Scan(&id, &unit, &event, &ev.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan game event: %w", err)
		}
		ev.GameID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid game id %q: %w", id, err)
		}
		ev.Unit = domain.UnitType(unit)
		ev.Event = domain.UnitEventType(event)
		events = append(events, ev)
	}
	return events, rows.Err()
}
