package publish

import (
	"encoding/json"
	"fmt"

	"bot-ladder/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	ResultsArtifact = "results.json"
	RankingArtifact = "ranking.json"
)

// MapTally is one bot's win/loss tally on a map, as published.
type MapTally struct {
	Map  string `json:"map"`
	Won  int64  `json:"won"`
	Lost int64  `json:"lost"`
}

// RaceTally is one bot's win/loss tally for a race pairing, as published.
type RaceTally struct {
	Race      domain.Race `json:"race"`
	EnemyRace domain.Race `json:"enemyRace"`
	Won       int64       `json:"won"`
	Lost      int64       `json:"lost"`
}

// RankingEntry is one bot's row in the ranking artifact.
type RankingEntry struct {
	Bot   domain.Bot
	Maps  []MapTally
	Races []RaceTally
}

// GameResultsPublisher renders the per-cycle JSON artifacts. Output is
// deterministic: identical input renders byte-identical documents.
type GameResultsPublisher struct {
	sink   Sink
	logger zerolog.Logger
}

func NewGameResultsPublisher(sink Sink, logger zerolog.Logger) *GameResultsPublisher {
	return &GameResultsPublisher{sink: sink, logger: logger}
}

type botJSON struct {
	Name   string `json:"name"`
	Race   string `json:"race"`
	Rank   string `json:"rank"`
	Rating int    `json:"rating"`
}

type participantJSON struct {
	BotIndex int    `json:"botIndex"`
	Race     string `json:"race"`
	Winner   bool   `json:"winner"`
	Loser    bool   `json:"loser"`
	Crashed  bool   `json:"crashed"`
}

type eventJSON struct {
	Unit   int   `json:"unit"`
	Event  int   `json:"event"`
	Amount int64 `json:"amount"`
}

type resultJSON struct {
	BotA         participantJSON `json:"botA"`
	BotB         participantJSON `json:"botB"`
	InvalidGame  bool            `json:"invalidGame"`
	RealTimeout  bool            `json:"realTimeout"`
	FrameTimeout bool            `json:"frameTimeout"`
	EndedAt      int64           `json:"endedAt"`
	MapIndex     int             `json:"mapIndex"`
	GameHash     string          `json:"gameHash"`
	FrameCount   *int64          `json:"frameCount"`
	GameEvents   []eventJSON     `json:"gameEvents"`
}

type resultsDocument struct {
	Bots    []botJSON    `json:"bots"`
	Maps    []string     `json:"maps"`
	Results []resultJSON `json:"results"`
}

// PublishResults renders the results artifact. Bots and maps are indexed
// in first-seen order over the result list; gameEvents stays null for
// games with no qualifying event group.
func (p *GameResultsPublisher) PublishResults(results []domain.GameResult, events []domain.GameEvent) error {
	doc := resultsDocument{
		Bots:    []botJSON{},
		Maps:    []string{},
		Results: []resultJSON{},
	}

	botIndex := make(map[int64]int)
	mapIndex := make(map[string]int)
	eventsByGame := make(map[uuid.UUID][]eventJSON)
	for _, ev := range events {
		eventsByGame[ev.GameID] = append(eventsByGame[ev.GameID], eventJSON{
			Unit:   int(ev.Unit),
			Event:  int(ev.Event),
			Amount: ev.Amount,
		})
	}

	internBot := func(bot domain.Bot) int {
		if idx, ok := botIndex[bot.ID]; ok {
			return idx
		}
		idx := len(doc.Bots)
		botIndex[bot.ID] = idx
		rank := bot.Rank
		if rank == "" {
			rank = domain.RankUnknown
		}
		doc.Bots = append(doc.Bots, botJSON{
			Name:   bot.Name,
			Race:   bot.Race.Code(),
			Rank:   string(rank),
			Rating: bot.Rating,
		})
		return idx
	}
	internMap := func(name string) int {
		if idx, ok := mapIndex[name]; ok {
			return idx
		}
		idx := len(doc.Maps)
		mapIndex[name] = idx
		doc.Maps = append(doc.Maps, name)
		return idx
	}

	for _, res := range results {
		doc.Results = append(doc.Results, resultJSON{
			BotA:         renderParticipant(internBot(res.BotA), res.BotA.ID, res.RaceA, &res),
			BotB:         renderParticipant(internBot(res.BotB), res.BotB.ID, res.RaceB, &res),
			InvalidGame:  res.InvalidGame(),
			RealTimeout:  res.RealtimeTimeout,
			FrameTimeout: res.FrameTimeout,
			EndedAt:      res.Time.Unix(),
			MapIndex:     internMap(res.Map),
			GameHash:     res.GameHash,
			FrameCount:   res.FrameCount,
			GameEvents:   eventsByGame[res.ID],
		})
	}

	return p.write(ResultsArtifact, doc)
}

func renderParticipant(index int, botID int64, race domain.Race, res *domain.GameResult) participantJSON {
	return participantJSON{
		BotIndex: index,
		Race:     race.Code(),
		Winner:   res.Winner != nil && *res.Winner == botID,
		Loser:    res.Loser != nil && *res.Loser == botID,
		Crashed:  (botID == res.BotA.ID && res.BotACrashed) || (botID == res.BotB.ID && res.BotBCrashed),
	}
}

type rankingBotJSON struct {
	Name      string      `json:"name"`
	Race      string      `json:"race"`
	Rank      string      `json:"rank"`
	Rating    int         `json:"rating"`
	Maps      []MapTally  `json:"maps"`
	RaceStats []RaceTally `json:"raceStats"`
}

type rankingDocument struct {
	Bots []rankingBotJSON `json:"bots"`
}

// PublishRanking renders the per-bot ranking artifact. Entries arrive
// pre-sorted; order is preserved as-is.
func (p *GameResultsPublisher) PublishRanking(entries []RankingEntry) error {
	doc := rankingDocument{Bots: []rankingBotJSON{}}
	for _, entry := range entries {
		rank := entry.Bot.Rank
		if rank == "" {
			rank = domain.RankUnknown
		}
		row := rankingBotJSON{
			Name:      entry.Bot.Name,
			Race:      entry.Bot.Race.Code(),
			Rank:      string(rank),
			Rating:    entry.Bot.Rating,
			Maps:      entry.Maps,
			RaceStats: entry.Races,
		}
		if row.Maps == nil {
			row.Maps = []MapTally{}
		}
		if row.RaceStats == nil {
			row.RaceStats = []RaceTally{}
		}
		doc.Bots = append(doc.Bots, row)
	}
	return p.write(RankingArtifact, doc)
}

func (p *GameResultsPublisher) write(name string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to render %q: %w", name, err)
	}

	w, err := p.sink.OpenWriter(name)
	if err != nil {
		return fmt.Errorf("failed to open sink for %q: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %q: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize %q: %w", name, err)
	}

	p.logger.Info().Str("artifact", name).Int("bytes", len(data)).Msg("artifact published")
	return nil
}
