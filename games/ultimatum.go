package games

import "github.com/rodrigo-greising/game-theory-sub000/models"

const (
	RoleProposer  = "proposer"
	RoleResponder = "responder"
)

// Ultimatum играется стратегическим методом: оба ходят одновременно -
// proposer подает предложение, responder подает минимально приемлемую
// сумму. Роли раздает Initialize и меняет местами каждый раунд.
type Ultimatum struct{}

func (Ultimatum) ID() string          { return "ultimatum" }
func (Ultimatum) DisplayName() string { return "Ultimatum Game" }
func (Ultimatum) MinPlayers() int     { return 2 }
func (Ultimatum) MaxPlayers() int     { return 2 }

func (g Ultimatum) ValidatePlayerCount(n int) bool {
	return n >= g.MinPlayers() && n <= g.MaxPlayers()
}

func (Ultimatum) DefaultState() models.MatchState {
	return models.MatchState{
		Round:     1,
		MaxRounds: 10,
		Status:    models.MatchStatusSetup,
		History:   []models.RoundResult{},
		Config: models.GameConfig{
			MinAction: 0,
			MaxAction: 10,
			Params: map[string]float64{
				"pot": 10,
			},
		},
	}
}

// Initialize раздает роли в порядке входа участников.
func (Ultimatum) Initialize(state *models.MatchState, participantIDs []string) {
	for i, id := range participantIDs {
		data := state.Participants[id]
		if i == 0 {
			data.Role = RoleProposer
		} else {
			data.Role = RoleResponder
		}
	}
}

// AdvanceRound меняет роли местами, чтобы оба участника побывали
// в каждой из них.
func (Ultimatum) AdvanceRound(state *models.MatchState) {
	for _, data := range state.Participants {
		if data.Role == RoleProposer {
			data.Role = RoleResponder
		} else {
			data.Role = RoleProposer
		}
	}
}

func (Ultimatum) ResolveRound(state *models.MatchState, actions map[string]int) (models.RoundResult, map[string]float64, error) {
	if err := checkComplete(state, actions); err != nil {
		return models.RoundResult{}, nil, err
	}

	a, b := pairIDs(state)
	proposer, responder := a, b
	if state.Participants[b].Role == RoleProposer {
		proposer, responder = b, a
	}

	pot := state.Config.Params["pot"]
	offer := float64(actions[proposer])
	threshold := float64(actions[responder])

	accepted := offer >= threshold
	payoffs := map[string]float64{proposer: 0, responder: 0}
	if accepted {
		payoffs[proposer] = pot - offer
		payoffs[responder] = offer
	}

	acceptedFlag := 0.0
	if accepted {
		acceptedFlag = 1
	}

	result := models.RoundResult{
		Round:   state.Round,
		Actions: map[string]int{proposer: actions[proposer], responder: actions[responder]},
		Payoffs: payoffs,
		Derived: map[string]float64{
			"offer":    offer,
			"accepted": acceptedFlag,
		},
	}
	return result, cumulativeScores(state, payoffs), nil
}
