package domain

import (
	"time"

	"github.com/google/uuid"
)

// Race is a bot's declared race. RANDOM is resolved to a concrete race
// per game at matchup time.
type Race string

const (
	RaceProtoss Race = "PROTOSS"
	RaceZerg    Race = "ZERG"
	RaceTerran  Race = "TERRAN"
	RaceRandom  Race = "RANDOM"
)

// Code returns the single-letter wire code used in published artifacts.
// Unrecognized races render "?" rather than failing.
func (r Race) Code() string {
	switch r {
	case RaceProtoss:
		return "P"
	case RaceZerg:
		return "Z"
	case RaceTerran:
		return "T"
	case RaceRandom:
		return "R"
	default:
		return "?"
	}
}

// Rank is the presentation tier derived from a bot's rating. RankUnknown
// is the state of a bot that has never been through a ranking cycle.
type Rank string

const (
	RankS       Rank = "S"
	RankA       Rank = "A"
	RankB       Rank = "B"
	RankC       Rank = "C"
	RankD       Rank = "D"
	RankE       Rank = "E"
	RankF       Rank = "F"
	RankUnknown Rank = "U"
)

// DefaultRating is the rating assigned to a freshly registered bot.
const DefaultRating = 2000

// RankForRating maps a continuous rating onto a presentation tier.
// RankUnknown is never returned here; it only exists for bots that were
// never ranked.
func RankForRating(rating int) Rank {
	switch {
	case rating >= 2400:
		return RankS
	case rating >= 2200:
		return RankA
	case rating >= 2000:
		return RankB
	case rating >= 1800:
		return RankC
	case rating >= 1600:
		return RankD
	case rating >= 1400:
		return RankE
	default:
		return RankF
	}
}

type Bot struct {
	ID          int64
	Enabled     bool
	ParentID    *int64
	Name        string
	Race        Race
	BinaryPath  string
	Rank        Rank
	Rating      int
	LastUpdated time.Time
}

// Matchup is a selected pair of bots with per-game race assignments and a
// map, ready for execution. Both bots are in-flight from the moment the
// matchup is handed out until it is released.
type Matchup struct {
	BotA  Bot
	RaceA Race
	BotB  Bot
	RaceB Race
	Map   string
}

// GameResult is the immutable record of one executed game. Winner and
// Loser are either both set and distinct, or both nil (timeout / draw /
// invalid). Crash flags are independent of win/loss attribution.
type GameResult struct {
	ID              uuid.UUID
	Time            time.Time
	GameRealtime    float64
	RealtimeTimeout bool
	FrameTimeout    bool
	Map             string
	BotA            Bot
	RaceA           Race
	BotB            Bot
	RaceB           Race
	Winner          *int64
	Loser           *int64
	BotACrashed     bool
	BotBCrashed     bool
	GameHash        string
	FrameCount      *int64
}

// InvalidGame reports whether the outcome is not attributable to a
// winner/loser because a timeout budget was exceeded.
func (g *GameResult) InvalidGame() bool {
	return g.RealtimeTimeout || g.FrameTimeout
}

// GameEvent is one aggregated unit-event group for a game: Amount
// occurrences of (Unit, Event) were observed.
type GameEvent struct {
	GameID uuid.UUID
	Unit   UnitType
	Event  UnitEventType
	Amount int64
}
