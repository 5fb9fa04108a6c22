package models

type MatchStatus string

const (
	MatchStatusSetup      MatchStatus = "setup"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// ActionUnset - сентинел для еще не поданного решения. Валидные действия
// всех вариантов неотрицательны.
const ActionUnset = -1

type ParticipantRoundData struct {
	TotalScore    float64 `json:"total_score"`
	CurrentAction int     `json:"current_action"`
	Ready         bool    `json:"ready"`
	// Role заполняется инициализатором варианта (например, proposer и
	// responder в ультиматуме) и пустая для симметричных игр.
	Role string `json:"role,omitempty"`
}

// GameConfig - вариантные константы, которые резолвер читает из состояния
// матча, а не из глобалов.
type GameConfig struct {
	MinAction int `json:"min_action"`
	MaxAction int `json:"max_action"`
	// RejectOutOfRange переключает политику координатора с подрезания
	// действия к границам на отклонение с ошибкой.
	RejectOutOfRange bool               `json:"reject_out_of_range,omitempty"`
	Params           map[string]float64 `json:"params,omitempty"`
}

type MatchState struct {
	Round        int                              `json:"round"`
	MaxRounds    int                              `json:"max_rounds"`
	Status       MatchStatus                      `json:"status"`
	Participants map[string]*ParticipantRoundData `json:"participants"`
	History      []RoundResult                    `json:"history"`
	Config       GameConfig                       `json:"config"`
}

// RoundResult неизменяем после добавления в историю.
type RoundResult struct {
	Round   int                `json:"round"`
	Actions map[string]int     `json:"actions"`
	Payoffs map[string]float64 `json:"payoffs"`
	// Derived - производные величины конкретной игры (total_contributed,
	// accepted и т.п.).
	Derived map[string]float64 `json:"derived,omitempty"`
}

// AllReady сообщает, подали ли решение все участники матча.
func (m *MatchState) AllReady() bool {
	if len(m.Participants) == 0 {
		return false
	}
	for _, data := range m.Participants {
		if !data.Ready {
			return false
		}
	}
	return true
}

// Actions собирает поданные решения текущего раунда.
func (m *MatchState) Actions() map[string]int {
	actions := make(map[string]int, len(m.Participants))
	for id, data := range m.Participants {
		actions[id] = data.CurrentAction
	}
	return actions
}

// FinalScores возвращает накопленные очки всех участников матча.
func (m *MatchState) FinalScores() map[string]float64 {
	scores := make(map[string]float64, len(m.Participants))
	for id, data := range m.Participants {
		scores[id] = data.TotalScore
	}
	return scores
}
