package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-greising/game-theory-sub000/models"
)

// newMatch готовит состояние матча варианта на заданный состав.
func newMatch(def Definition, ids ...string) *models.MatchState {
	state := def.DefaultState()
	state.Status = models.MatchStatusInProgress
	state.Participants = make(map[string]*models.ParticipantRoundData, len(ids))
	for _, id := range ids {
		state.Participants[id] = &models.ParticipantRoundData{CurrentAction: models.ActionUnset}
	}
	if init, ok := def.(Initializer); ok {
		init.Initialize(&state, ids)
	}
	return &state
}

func TestRegistryKnowsAllVariants(t *testing.T) {
	registry := NewRegistry()

	for _, id := range []string{"prisoners_dilemma", "stag_hunt", "volunteer_dilemma", "ultimatum", "public_goods"} {
		def, err := registry.Get(id)
		require.NoError(t, err)
		assert.Equal(t, id, def.ID())
		assert.NotEmpty(t, def.DisplayName())
	}
	assert.Len(t, registry.List(), 5)
}

func TestRegistryUnknownVariant(t *testing.T) {
	_, err := NewRegistry().Get("rock_paper_scissors")
	assert.ErrorIs(t, err, ErrUnknownGameVariant)
}

func TestPrisonersDilemmaPayoffMatrix(t *testing.T) {
	cases := []struct {
		name             string
		actionA, actionB int
		payoffA, payoffB float64
	}{
		{"both cooperate", ActionCooperate, ActionCooperate, 3, 3},
		{"both defect", ActionDefect, ActionDefect, 1, 1},
		{"a defects", ActionDefect, ActionCooperate, 5, 0},
		{"b defects", ActionCooperate, ActionDefect, 0, 5},
	}

	def := PrisonersDilemma{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := newMatch(def, "alice", "bob")
			result, totals, err := def.ResolveRound(state, map[string]int{"alice": tc.actionA, "bob": tc.actionB})
			require.NoError(t, err)

			assert.Equal(t, tc.payoffA, result.Payoffs["alice"])
			assert.Equal(t, tc.payoffB, result.Payoffs["bob"])
			assert.Equal(t, tc.payoffA, totals["alice"])
			assert.Equal(t, tc.payoffB, totals["bob"])
		})
	}
}

func TestPrisonersDilemmaAccumulatesTotals(t *testing.T) {
	def := PrisonersDilemma{}
	state := newMatch(def, "alice", "bob")
	state.Participants["alice"].TotalScore = 7
	state.Participants["bob"].TotalScore = 2

	_, totals, err := def.ResolveRound(state, map[string]int{"alice": ActionDefect, "bob": ActionCooperate})
	require.NoError(t, err)

	assert.Equal(t, 12.0, totals["alice"])
	assert.Equal(t, 2.0, totals["bob"])
	// Резолвер не мутирует состояние: totals применяет координатор.
	assert.Equal(t, 7.0, state.Participants["alice"].TotalScore)
}

func TestResolveRoundIsDeterministic(t *testing.T) {
	def := StagHunt{}
	state := newMatch(def, "alice", "bob")
	actions := map[string]int{"alice": ActionStag, "bob": ActionHare}

	first, firstTotals, err := def.ResolveRound(state, actions)
	require.NoError(t, err)
	second, secondTotals, err := def.ResolveRound(state, actions)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstTotals, secondTotals)
}

func TestResolveRoundRejectsIncompleteActions(t *testing.T) {
	def := PrisonersDilemma{}
	state := newMatch(def, "alice", "bob")

	_, _, err := def.ResolveRound(state, map[string]int{"alice": ActionCooperate})
	assert.ErrorIs(t, err, ErrIncompleteActions)

	_, _, err = def.ResolveRound(state, map[string]int{"alice": ActionCooperate, "carol": ActionDefect})
	assert.ErrorIs(t, err, ErrIncompleteActions)
}

func TestStagHuntPayoffs(t *testing.T) {
	def := StagHunt{}
	state := newMatch(def, "alice", "bob")

	result, _, err := def.ResolveRound(state, map[string]int{"alice": ActionStag, "bob": ActionStag})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.Payoffs["alice"])
	assert.Equal(t, 5.0, result.Payoffs["bob"])

	result, _, err = def.ResolveRound(state, map[string]int{"alice": ActionStag, "bob": ActionHare})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Payoffs["alice"])
	assert.Equal(t, 4.0, result.Payoffs["bob"])
}

func TestVolunteerDilemmaPayoffs(t *testing.T) {
	def := VolunteerDilemma{}
	state := newMatch(def, "alice", "bob", "carol")

	// Один вызвавшийся платит cost, остальные получают полный benefit.
	result, _, err := def.ResolveRound(state, map[string]int{
		"alice": ActionVolunteer,
		"bob":   ActionAbstain,
		"carol": ActionAbstain,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, result.Payoffs["alice"])
	assert.Equal(t, 4.0, result.Payoffs["bob"])
	assert.Equal(t, 4.0, result.Payoffs["carol"])
	assert.Equal(t, 1.0, result.Derived["volunteers"])

	// Никто не вызвался - никто ничего не получает.
	result, _, err = def.ResolveRound(state, map[string]int{
		"alice": ActionAbstain,
		"bob":   ActionAbstain,
		"carol": ActionAbstain,
	})
	require.NoError(t, err)
	for _, id := range []string{"alice", "bob", "carol"} {
		assert.Equal(t, 0.0, result.Payoffs[id])
	}
}

func TestPublicGoodsPayoffs(t *testing.T) {
	def := PublicGoods{}
	state := newMatch(def, "alice", "bob")

	result, _, err := def.ResolveRound(state, map[string]int{"alice": 20, "bob": 0})
	require.NoError(t, err)

	// Котел 20 * 1.6 = 32, доля каждого 16.
	assert.Equal(t, 20.0, result.Derived["total_contributed"])
	assert.Equal(t, 16.0, result.Payoffs["alice"])  // 20 - 20 + 16
	assert.Equal(t, 36.0, result.Payoffs["bob"])    // 20 - 0 + 16
}

func TestUltimatumAcceptAndReject(t *testing.T) {
	def := Ultimatum{}
	state := newMatch(def, "alice", "bob")
	require.Equal(t, RoleProposer, state.Participants["alice"].Role)
	require.Equal(t, RoleResponder, state.Participants["bob"].Role)

	// Предложение 4 при пороге 3 принимается.
	result, _, err := def.ResolveRound(state, map[string]int{"alice": 4, "bob": 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Derived["accepted"])
	assert.Equal(t, 6.0, result.Payoffs["alice"])
	assert.Equal(t, 4.0, result.Payoffs["bob"])

	// Предложение 2 при пороге 5 отклоняется - оба уходят ни с чем.
	result, _, err = def.ResolveRound(state, map[string]int{"alice": 2, "bob": 5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Derived["accepted"])
	assert.Equal(t, 0.0, result.Payoffs["alice"])
	assert.Equal(t, 0.0, result.Payoffs["bob"])
}

func TestUltimatumRoleSwap(t *testing.T) {
	def := Ultimatum{}
	state := newMatch(def, "alice", "bob")

	def.AdvanceRound(state)
	assert.Equal(t, RoleResponder, state.Participants["alice"].Role)
	assert.Equal(t, RoleProposer, state.Participants["bob"].Role)

	// После смены ролей выплаты следуют за ролями, а не за id.
	result, _, err := def.ResolveRound(state, map[string]int{"bob": 4, "alice": 3})
	require.NoError(t, err)
	assert.Equal(t, 6.0, result.Payoffs["bob"])
	assert.Equal(t, 4.0, result.Payoffs["alice"])
}

func TestBinaryVariantsClassifyCooperation(t *testing.T) {
	assert.True(t, PrisonersDilemma{}.IsCooperative(ActionCooperate))
	assert.False(t, PrisonersDilemma{}.IsCooperative(ActionDefect))
	assert.True(t, StagHunt{}.IsCooperative(ActionStag))
	assert.True(t, VolunteerDilemma{}.IsCooperative(ActionVolunteer))

	// Градуированные игры классификатор не реализуют.
	_, ok := Definition(Ultimatum{}).(Classifier)
	assert.False(t, ok)
	_, ok = Definition(PublicGoods{}).(Classifier)
	assert.False(t, ok)
}

func TestPlayerCountBounds(t *testing.T) {
	assert.True(t, PrisonersDilemma{}.ValidatePlayerCount(2))
	assert.False(t, PrisonersDilemma{}.ValidatePlayerCount(3))
	assert.True(t, PublicGoods{}.ValidatePlayerCount(10))
	assert.False(t, PublicGoods{}.ValidatePlayerCount(11))
	assert.False(t, VolunteerDilemma{}.ValidatePlayerCount(1))
}
