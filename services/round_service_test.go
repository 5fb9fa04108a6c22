package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-greising/game-theory-sub000/games"
	"github.com/rodrigo-greising/game-theory-sub000/models"
	"github.com/rodrigo-greising/game-theory-sub000/realtime"
)

func TestStartRequiresHost(t *testing.T) {
	env := newTestEnv(t)
	session, ids := createLobby(t, env, pdInput(), 2)

	_, err := env.rounds.Start(context.Background(), session.ID, ids[1])
	assert.ErrorIs(t, err, ErrHostOnly)

	_, err = env.rounds.Start(context.Background(), session.ID, "nobody")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestStartValidatesPlayerCount(t *testing.T) {
	env := newTestEnv(t)
	session, ids := createLobby(t, env, pdInput(), 1)

	_, err := env.rounds.Start(context.Background(), session.ID, ids[0])
	assert.ErrorIs(t, err, ErrInvalidPlayerCount)
}

func TestStartSeedsSharedMatch(t *testing.T) {
	env := newTestEnv(t)
	session, ids := createLobby(t, env, pdInput(), 2)

	started, err := env.rounds.Start(context.Background(), session.ID, ids[0])
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusPlaying, started.Status)
	require.NotNil(t, started.Match)
	assert.Equal(t, models.MatchStatusInProgress, started.Match.Status)
	assert.Equal(t, 1, started.Match.Round)
	assert.Equal(t, 2, started.Match.MaxRounds)
	for _, id := range ids {
		data := started.Match.Participants[id]
		require.NotNil(t, data)
		assert.Equal(t, models.ActionUnset, data.CurrentAction)
		assert.False(t, data.Ready)
	}

	_, err = env.rounds.Start(context.Background(), session.ID, ids[0])
	assert.ErrorIs(t, err, ErrSessionAlreadyStarted)
}

func TestSubmitActionRejectedBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	session, ids := createLobby(t, env, pdInput(), 2)

	_, err := env.rounds.SubmitAction(context.Background(), session.ID, ids[0], games.ActionCooperate)
	assert.ErrorIs(t, err, ErrMatchNotInProgress)
}

// Раунд разрешается ровно после последней подачи, независимо от порядка,
// и до нее результат недоступен.
func TestRoundResolvesOnLastSubmission(t *testing.T) {
	env := newTestEnv(t)
	session, ids := createLobby(t, env, pdInput(), 2)
	_, err := env.rounds.Start(context.Background(), session.ID, ids[0])
	require.NoError(t, err)

	after, err := env.rounds.SubmitAction(context.Background(), session.ID, ids[1], games.ActionDefect)
	require.NoError(t, err)
	assert.Empty(t, after.Match.History)
	assert.Empty(t, env.hub.byType(realtime.EventRoundResolved))

	after, err = env.rounds.SubmitAction(context.Background(), session.ID, ids[0], games.ActionCooperate)
	require.NoError(t, err)

	require.Len(t, after.Match.History, 1)
	result := after.Match.History[0]
	assert.Equal(t, 1, result.Round)
	assert.Equal(t, games.ActionCooperate, result.Actions[ids[0]])
	assert.Equal(t, games.ActionDefect, result.Actions[ids[1]])
	assert.Equal(t, 0.0, result.Payoffs[ids[0]])
	assert.Equal(t, 5.0, result.Payoffs[ids[1]])
	assert.Len(t, env.hub.byType(realtime.EventRoundResolved), 1)

	// Переходные поля сброшены, матч перешел на следующий раунд.
	assert.Equal(t, 2, after.Match.Round)
	for _, id := range ids {
		assert.False(t, after.Match.Participants[id].Ready)
		assert.Equal(t, models.ActionUnset, after.Match.Participants[id].CurrentAction)
	}
}

func TestResubmissionRejected(t *testing.T) {
	env := newTestEnv(t)
	session, ids := createLobby(t, env, pdInput(), 2)
	_, err := env.rounds.Start(context.Background(), session.ID, ids[0])
	require.NoError(t, err)

	_, err = env.rounds.SubmitAction(context.Background(), session.ID, ids[0], games.ActionCooperate)
	require.NoError(t, err)
	_, err = env.rounds.SubmitAction(context.Background(), session.ID, ids[0], games.ActionDefect)
	assert.ErrorIs(t, err, ErrActionAlreadySubmitted)

	// Отклоненная повторная подача не меняет сохраненное действие.
	fetched, err := env.sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, games.ActionCooperate, fetched.Match.Participants[ids[0]].CurrentAction)
}

func TestOutOfRangeActionClamped(t *testing.T) {
	env := newTestEnv(t)
	session, ids := createLobby(t, env, pdInput(), 2)
	_, err := env.rounds.Start(context.Background(), session.ID, ids[0])
	require.NoError(t, err)

	after, err := env.rounds.SubmitAction(context.Background(), session.ID, ids[0], 99)
	require.NoError(t, err)
	assert.Equal(t, games.ActionDefect, after.Match.Participants[ids[0]].CurrentAction)

	after, err = env.rounds.SubmitAction(context.Background(), session.ID, ids[1], -7)
	require.NoError(t, err)
	require.Len(t, after.Match.History, 1)
	assert.Equal(t, games.ActionCooperate, after.Match.History[0].Actions[ids[1]])
}

func TestOutOfRangeActionRejectedWhenConfigured(t *testing.T) {
	env := newTestEnv(t)
	session, ids := createLobby(t, env, pdInput(), 2)
	_, err := env.rounds.Start(context.Background(), session.ID, ids[0])
	require.NoError(t, err)

	_, err = env.store.Update(context.Background(), session.ID, func(session *models.Session) error {
		session.Match.Config.RejectOutOfRange = true
		return nil
	})
	require.NoError(t, err)

	_, err = env.rounds.SubmitAction(context.Background(), session.ID, ids[0], 99)
	assert.ErrorIs(t, err, ErrActionOutOfRange)
}

func TestMatchCompletesAtMaxRoundsAndArchives(t *testing.T) {
	env := newTestEnv(t)
	session, ids := createLobby(t, env, pdInput(), 2)
	_, err := env.rounds.Start(context.Background(), session.ID, ids[0])
	require.NoError(t, err)

	var after *models.Session
	for round := 0; round < 2; round++ {
		for _, id := range ids {
			after, err = env.rounds.SubmitAction(context.Background(), session.ID, id, games.ActionCooperate)
			require.NoError(t, err)
		}
	}

	assert.Equal(t, models.MatchStatusCompleted, after.Match.Status)
	assert.Equal(t, models.SessionStatusFinished, after.Status)
	assert.Len(t, after.Match.History, 2)
	assert.Equal(t, 6.0, after.Match.Participants[ids[0]].TotalScore)
	assert.Equal(t, 6.0, after.Match.Participants[ids[1]].TotalScore)
	assert.Len(t, env.hub.byType(realtime.EventMatchCompleted), 1)

	select {
	case archived := <-env.archiver.archived:
		assert.Equal(t, session.ID, archived.ID)
	case <-time.After(time.Second):
		t.Fatal("finished session was not archived")
	}

	// Завершенный матч больше не принимает действий.
	_, err = env.rounds.SubmitAction(context.Background(), session.ID, ids[0], games.ActionCooperate)
	assert.ErrorIs(t, err, ErrMatchNotInProgress)
}

func TestScoresAccumulateMonotonically(t *testing.T) {
	env := newTestEnv(t)
	input := pdInput()
	input.MaxRounds = 4
	session, ids := createLobby(t, env, input, 2)
	_, err := env.rounds.Start(context.Background(), session.ID, ids[0])
	require.NoError(t, err)

	prev := map[string]float64{ids[0]: 0, ids[1]: 0}
	actions := [][2]int{
		{games.ActionCooperate, games.ActionCooperate},
		{games.ActionDefect, games.ActionCooperate},
		{games.ActionDefect, games.ActionDefect},
		{games.ActionCooperate, games.ActionDefect},
	}
	for _, pair := range actions {
		_, err = env.rounds.SubmitAction(context.Background(), session.ID, ids[0], pair[0])
		require.NoError(t, err)
		after, err := env.rounds.SubmitAction(context.Background(), session.ID, ids[1], pair[1])
		require.NoError(t, err)

		match := after.Match
		for _, id := range ids {
			assert.GreaterOrEqual(t, match.Participants[id].TotalScore, prev[id])
			prev[id] = match.Participants[id].TotalScore
		}
	}
	assert.Equal(t, 9.0, prev[ids[0]])
	assert.Equal(t, 9.0, prev[ids[1]])
}

func TestUltimatumRolesRotateAcrossRounds(t *testing.T) {
	env := newTestEnv(t)
	input := CreateSessionInput{
		Name:      "split the pot",
		GameID:    "ultimatum",
		HostName:  "alice",
		MaxRounds: 2,
	}
	session, ids := createLobby(t, env, input, 2)
	started, err := env.rounds.Start(context.Background(), session.ID, ids[0])
	require.NoError(t, err)

	// Роли раздаются в порядке входа: хост первым предлагает.
	assert.Equal(t, games.RoleProposer, started.Match.Participants[ids[0]].Role)
	assert.Equal(t, games.RoleResponder, started.Match.Participants[ids[1]].Role)

	_, err = env.rounds.SubmitAction(context.Background(), session.ID, ids[0], 5)
	require.NoError(t, err)
	after, err := env.rounds.SubmitAction(context.Background(), session.ID, ids[1], 3)
	require.NoError(t, err)

	require.Len(t, after.Match.History, 1)
	assert.Equal(t, 1.0, after.Match.History[0].Derived["accepted"])
	assert.Equal(t, games.RoleResponder, after.Match.Participants[ids[0]].Role)
	assert.Equal(t, games.RoleProposer, after.Match.Participants[ids[1]].Role)
}

func TestResetReturnsSessionToLobby(t *testing.T) {
	env := newTestEnv(t)
	session, ids := createLobby(t, env, pdInput(), 2)
	_, err := env.rounds.Start(context.Background(), session.ID, ids[0])
	require.NoError(t, err)
	_, err = env.rounds.SubmitAction(context.Background(), session.ID, ids[0], games.ActionDefect)
	require.NoError(t, err)

	_, err = env.rounds.Reset(context.Background(), session.ID, ids[1])
	assert.ErrorIs(t, err, ErrHostOnly)

	reset, err := env.rounds.Reset(context.Background(), session.ID, ids[0])
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusWaiting, reset.Status)
	require.NotNil(t, reset.Match)
	assert.Equal(t, models.MatchStatusSetup, reset.Match.Status)
	assert.Empty(t, reset.Match.History)
	assert.Len(t, reset.Participants, 2)
	for _, id := range ids {
		assert.Zero(t, reset.Match.Participants[id].TotalScore)
		assert.False(t, reset.Match.Participants[id].Ready)
	}
}
