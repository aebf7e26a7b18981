package domain_test

import (
	"testing"

	"bot-ladder/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestRaceCodes(t *testing.T) {
	tests := []struct {
		race domain.Race
		want string
	}{
		{domain.RaceProtoss, "P"},
		{domain.RaceZerg, "Z"},
		{domain.RaceTerran, "T"},
		{domain.RaceRandom, "R"},
		{domain.Race("KLINGON"), "?"},
		{domain.Race(""), "?"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.race.Code(), "race %q", tt.race)
	}
}

func TestRankForRating(t *testing.T) {
	tests := []struct {
		rating int
		want   domain.Rank
	}{
		{2500, domain.RankS},
		{2400, domain.RankS},
		{2399, domain.RankA},
		{2200, domain.RankA},
		{2000, domain.RankB},
		{1999, domain.RankC},
		{1800, domain.RankC},
		{1600, domain.RankD},
		{1400, domain.RankE},
		{1399, domain.RankF},
		{0, domain.RankF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.RankForRating(tt.rating), "rating %d", tt.rating)
	}
}

func TestInvalidGame(t *testing.T) {
	assert.False(t, (&domain.GameResult{}).InvalidGame())
	assert.True(t, (&domain.GameResult{RealtimeTimeout: true}).InvalidGame())
	assert.True(t, (&domain.GameResult{FrameTimeout: true}).InvalidGame())
	assert.True(t, (&domain.GameResult{RealtimeTimeout: true, FrameTimeout: true}).InvalidGame())
}
