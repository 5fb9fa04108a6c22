package games

import "github.com/rodrigo-greising/game-theory-sub000/models"

const (
	ActionAbstain   = 0
	ActionVolunteer = 1
)

// VolunteerDilemma: всем хорошо, если вызвался хотя бы один, но вызвавшиеся
// платят за это из своей выплаты.
type VolunteerDilemma struct{}

func (VolunteerDilemma) ID() string          { return "volunteer_dilemma" }
func (VolunteerDilemma) DisplayName() string { return "Volunteer's Dilemma" }
func (VolunteerDilemma) MinPlayers() int     { return 2 }
func (VolunteerDilemma) MaxPlayers() int     { return 10 }

func (g VolunteerDilemma) ValidatePlayerCount(n int) bool {
	return n >= g.MinPlayers() && n <= g.MaxPlayers()
}

func (VolunteerDilemma) DefaultState() models.MatchState {
	return models.MatchState{
		Round:     1,
		MaxRounds: 10,
		Status:    models.MatchStatusSetup,
		History:   []models.RoundResult{},
		Config: models.GameConfig{
			MinAction: ActionAbstain,
			MaxAction: ActionVolunteer,
			Params: map[string]float64{
				"benefit": 4,
				"cost":    2,
			},
		},
	}
}

func (VolunteerDilemma) ResolveRound(state *models.MatchState, actions map[string]int) (models.RoundResult, map[string]float64, error) {
	if err := checkComplete(state, actions); err != nil {
		return models.RoundResult{}, nil, err
	}

	p := state.Config.Params
	volunteers := 0
	for id := range state.Participants {
		if actions[id] == ActionVolunteer {
			volunteers++
		}
	}

	resolved := make(map[string]int, len(state.Participants))
	payoffs := make(map[string]float64, len(state.Participants))
	for id := range state.Participants {
		resolved[id] = actions[id]
		switch {
		case volunteers == 0:
			payoffs[id] = 0
		case actions[id] == ActionVolunteer:
			payoffs[id] = p["benefit"] - p["cost"]
		default:
			payoffs[id] = p["benefit"]
		}
	}

	result := models.RoundResult{
		Round:   state.Round,
		Actions: resolved,
		Payoffs: payoffs,
		Derived: map[string]float64{"volunteers": float64(volunteers)},
	}
	return result, cumulativeScores(state, payoffs), nil
}

func (VolunteerDilemma) IsCooperative(action int) bool {
	return action == ActionVolunteer
}
