package games

import "github.com/rodrigo-greising/game-theory-sub000/models"

const (
	ActionCooperate = 0
	ActionDefect    = 1
)

// PrisonersDilemma - классическая матрица T > R > P > S.
type PrisonersDilemma struct{}

func (PrisonersDilemma) ID() string          { return "prisoners_dilemma" }
func (PrisonersDilemma) DisplayName() string { return "Prisoner's Dilemma" }
func (PrisonersDilemma) MinPlayers() int     { return 2 }
func (PrisonersDilemma) MaxPlayers() int     { return 2 }

func (g PrisonersDilemma) ValidatePlayerCount(n int) bool {
	return n >= g.MinPlayers() && n <= g.MaxPlayers()
}

func (PrisonersDilemma) DefaultState() models.MatchState {
	return models.MatchState{
		Round:     1,
		MaxRounds: 10,
		Status:    models.MatchStatusSetup,
		History:   []models.RoundResult{},
		Config: models.GameConfig{
			MinAction: ActionCooperate,
			MaxAction: ActionDefect,
			Params: map[string]float64{
				"reward":     3,
				"sucker":     0,
				"temptation": 5,
				"punishment": 1,
			},
		},
	}
}

func (PrisonersDilemma) ResolveRound(state *models.MatchState, actions map[string]int) (models.RoundResult, map[string]float64, error) {
	if err := checkComplete(state, actions); err != nil {
		return models.RoundResult{}, nil, err
	}

	p := state.Config.Params
	a, b := pairIDs(state)
	payoffs := map[string]float64{}

	switch {
	case actions[a] == ActionCooperate && actions[b] == ActionCooperate:
		payoffs[a], payoffs[b] = p["reward"], p["reward"]
	case actions[a] == ActionDefect && actions[b] == ActionDefect:
		payoffs[a], payoffs[b] = p["punishment"], p["punishment"]
	case actions[a] == ActionDefect:
		payoffs[a], payoffs[b] = p["temptation"], p["sucker"]
	default:
		payoffs[a], payoffs[b] = p["sucker"], p["temptation"]
	}

	result := models.RoundResult{
		Round:   state.Round,
		Actions: map[string]int{a: actions[a], b: actions[b]},
		Payoffs: payoffs,
	}
	return result, cumulativeScores(state, payoffs), nil
}

func (PrisonersDilemma) IsCooperative(action int) bool {
	return action == ActionCooperate
}
