package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchKeyIsSymmetric(t *testing.T) {
	assert.Equal(t, MatchKey("a", "b"), MatchKey("b", "a"))
	assert.Equal(t, "a:b", MatchKey("b", "a"))

	a, b := SplitMatchKey("a:b")
	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
}

func TestMatchForTournament(t *testing.T) {
	match := &MatchState{Participants: map[string]*ParticipantRoundData{
		"a": {}, "b": {},
	}}
	session := &Session{
		IsTournament: true,
		Pairing:      map[string]string{"a": "b", "b": "a", "c": PairingWaiting},
		Matches:      map[string]*MatchState{MatchKey("a", "b"): match},
	}

	assert.Same(t, match, session.MatchFor("a"))
	assert.Same(t, match, session.MatchFor("b"))
	assert.Nil(t, session.MatchFor("c"), "waiting participant has no active match")
	assert.Nil(t, session.MatchFor("unknown"))
}

func TestAllReadyAndActions(t *testing.T) {
	match := &MatchState{Participants: map[string]*ParticipantRoundData{
		"a": {CurrentAction: 1, Ready: true},
		"b": {CurrentAction: ActionUnset},
	}}
	assert.False(t, match.AllReady())

	match.Participants["b"].CurrentAction = 0
	match.Participants["b"].Ready = true
	require.True(t, match.AllReady())
	assert.Equal(t, map[string]int{"a": 1, "b": 0}, match.Actions())

	empty := &MatchState{}
	assert.False(t, empty.AllReady())
}
