package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-greising/game-theory-sub000/models"
)

func TestRecordMatchResultClassification(t *testing.T) {
	cases := []struct {
		name   string
		scores map[string]float64
		wins   map[string]int
		losses map[string]int
		draws  map[string]int
	}{
		{
			name:   "clear winner and loser",
			scores: map[string]float64{"a": 10, "b": 4},
			wins:   map[string]int{"a": 1},
			losses: map[string]int{"b": 1},
		},
		{
			name:   "full tie is a draw for everyone",
			scores: map[string]float64{"a": 6, "b": 6},
			draws:  map[string]int{"a": 1, "b": 1},
		},
		{
			name:   "shared top is a draw, bottom still loses",
			scores: map[string]float64{"a": 8, "b": 8, "c": 2},
			draws:  map[string]int{"a": 1, "b": 1},
			losses: map[string]int{"c": 1},
		},
		{
			name:   "middle scores count as draws",
			scores: map[string]float64{"a": 9, "b": 5, "c": 1},
			wins:   map[string]int{"a": 1},
			draws:  map[string]int{"b": 1},
			losses: map[string]int{"c": 1},
		},
		{
			name:   "shared bottom all lose",
			scores: map[string]float64{"a": 9, "b": 2, "c": 2},
			wins:   map[string]int{"a": 1},
			losses: map[string]int{"b": 1, "c": 1},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			standings := map[string]*models.StandingsEntry{}
			RecordMatchResult(standings, tc.scores)

			for id, score := range tc.scores {
				entry := standings[id]
				require.NotNil(t, entry)
				assert.Equal(t, score, entry.TotalScore)
				assert.Equal(t, 1, entry.MatchesPlayed)
				assert.Equal(t, tc.wins[id], entry.Wins, "wins for %s", id)
				assert.Equal(t, tc.losses[id], entry.Losses, "losses for %s", id)
				assert.Equal(t, tc.draws[id], entry.Draws, "draws for %s", id)
			}
		})
	}
}

func TestRecordMatchResultAccumulatesAcrossMatches(t *testing.T) {
	standings := map[string]*models.StandingsEntry{}

	RecordMatchResult(standings, map[string]float64{"a": 10, "b": 4})
	RecordMatchResult(standings, map[string]float64{"a": 3, "c": 7})

	assert.Equal(t, 13.0, standings["a"].TotalScore)
	assert.Equal(t, 2, standings["a"].MatchesPlayed)
	assert.Equal(t, 1, standings["a"].Wins)
	assert.Equal(t, 1, standings["a"].Losses)
}

func TestRecordMatchResultIgnoresEmptyScores(t *testing.T) {
	standings := map[string]*models.StandingsEntry{}
	RecordMatchResult(standings, nil)
	assert.Empty(t, standings)
}

func TestRecordActionClass(t *testing.T) {
	standings := map[string]*models.StandingsEntry{}

	RecordActionClass(standings, "a", true)
	RecordActionClass(standings, "a", true)
	RecordActionClass(standings, "a", false)

	assert.Equal(t, 2, standings["a"].CooperativeActions)
	assert.Equal(t, 1, standings["a"].DefectiveActions)
	assert.Zero(t, standings["a"].MatchesPlayed)
}

func TestSortedStandingsOrder(t *testing.T) {
	standings := map[string]*models.StandingsEntry{
		"c": {ParticipantID: "c", TotalScore: 5},
		"a": {ParticipantID: "a", TotalScore: 5},
		"b": {ParticipantID: "b", TotalScore: 9},
		"d": {ParticipantID: "d", TotalScore: 1},
	}

	sorted := SortedStandings(standings)
	require.Len(t, sorted, 4)
	assert.Equal(t, "b", sorted[0].ParticipantID)
	// При равных очках порядок стабилен по id.
	assert.Equal(t, "a", sorted[1].ParticipantID)
	assert.Equal(t, "c", sorted[2].ParticipantID)
	assert.Equal(t, "d", sorted[3].ParticipantID)
}

func TestClampActionPolicy(t *testing.T) {
	cfg := models.GameConfig{MinAction: 0, MaxAction: 10}

	got, ok := clampAction(cfg, 4)
	assert.True(t, ok)
	assert.Equal(t, 4, got)

	got, ok = clampAction(cfg, 15)
	assert.True(t, ok)
	assert.Equal(t, 10, got)

	got, ok = clampAction(cfg, -3)
	assert.True(t, ok)
	assert.Equal(t, 0, got)

	cfg.RejectOutOfRange = true
	_, ok = clampAction(cfg, 15)
	assert.False(t, ok)
}
