package games

import "github.com/rodrigo-greising/game-theory-sub000/models"

const (
	ActionStag = 0
	ActionHare = 1
)

// StagHunt - координационная игра: охота на оленя окупается только вдвоем.
type StagHunt struct{}

func (StagHunt) ID() string          { return "stag_hunt" }
func (StagHunt) DisplayName() string { return "Stag Hunt" }
func (StagHunt) MinPlayers() int     { return 2 }
func (StagHunt) MaxPlayers() int     { return 2 }

func (g StagHunt) ValidatePlayerCount(n int) bool {
	return n >= g.MinPlayers() && n <= g.MaxPlayers()
}

func (StagHunt) DefaultState() models.MatchState {
	return models.MatchState{
		Round:     1,
		MaxRounds: 10,
		Status:    models.MatchStatusSetup,
		History:   []models.RoundResult{},
		Config: models.GameConfig{
			MinAction: ActionStag,
			MaxAction: ActionHare,
			Params: map[string]float64{
				"stag_both": 5,
				"stag_solo": 0,
				"hare_vs_stag": 4,
				"hare_both": 2,
			},
		},
	}
}

func (StagHunt) ResolveRound(state *models.MatchState, actions map[string]int) (models.RoundResult, map[string]float64, error) {
	if err := checkComplete(state, actions); err != nil {
		return models.RoundResult{}, nil, err
	}

	p := state.Config.Params
	a, b := pairIDs(state)

	payoff := func(own, other int) float64 {
		if own == ActionStag {
			if other == ActionStag {
				return p["stag_both"]
			}
			return p["stag_solo"]
		}
		if other == ActionStag {
			return p["hare_vs_stag"]
		}
		return p["hare_both"]
	}

	payoffs := map[string]float64{
		a: payoff(actions[a], actions[b]),
		b: payoff(actions[b], actions[a]),
	}

	result := models.RoundResult{
		Round:   state.Round,
		Actions: map[string]int{a: actions[a], b: actions[b]},
		Payoffs: payoffs,
	}
	return result, cumulativeScores(state, payoffs), nil
}

func (StagHunt) IsCooperative(action int) bool {
	return action == ActionStag
}
