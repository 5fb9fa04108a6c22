package games

import "github.com/rodrigo-greising/game-theory-sub000/models"

// PublicGoods: каждый вкладывает часть эндаумента в общий котел, котел
// умножается и делится поровну независимо от вкладов.
type PublicGoods struct{}

func (PublicGoods) ID() string          { return "public_goods" }
func (PublicGoods) DisplayName() string { return "Public Goods Game" }
func (PublicGoods) MinPlayers() int     { return 2 }
func (PublicGoods) MaxPlayers() int     { return 10 }

func (g PublicGoods) ValidatePlayerCount(n int) bool {
	return n >= g.MinPlayers() && n <= g.MaxPlayers()
}

func (PublicGoods) DefaultState() models.MatchState {
	return models.MatchState{
		Round:     1,
		MaxRounds: 10,
		Status:    models.MatchStatusSetup,
		History:   []models.RoundResult{},
		Config: models.GameConfig{
			MinAction: 0,
			MaxAction: 20,
			Params: map[string]float64{
				"endowment":  20,
				"multiplier": 1.6,
			},
		},
	}
}

func (PublicGoods) ResolveRound(state *models.MatchState, actions map[string]int) (models.RoundResult, map[string]float64, error) {
	if err := checkComplete(state, actions); err != nil {
		return models.RoundResult{}, nil, err
	}

	p := state.Config.Params
	total := 0.0
	resolved := make(map[string]int, len(state.Participants))
	for id := range state.Participants {
		resolved[id] = actions[id]
		total += float64(actions[id])
	}

	share := total * p["multiplier"] / float64(len(state.Participants))
	payoffs := make(map[string]float64, len(state.Participants))
	for id := range state.Participants {
		payoffs[id] = p["endowment"] - float64(actions[id]) + share
	}

	result := models.RoundResult{
		Round:   state.Round,
		Actions: resolved,
		Payoffs: payoffs,
		Derived: map[string]float64{"total_contributed": total},
	}
	return result, cumulativeScores(state, payoffs), nil
}
