package services

import (
	"github.com/rodrigo-greising/game-theory-sub000/games"
	"github.com/rodrigo-greising/game-theory-sub000/models"
)

// Broadcaster - то, что сервисам нужно от realtime-хаба. Интерфейс
// локальный, чтобы тесты могли подставить запись сообщений.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// SessionRoom строит id комнаты хаба для сессии.
func SessionRoom(sessionID string) string {
	return "session_" + sessionID
}

// seedMatch собирает свежий MatchState варианта для конкретного состава:
// дефолтная конфигурация, пустая история, несданные действия, затем
// вариантный инициализатор, если он есть.
func seedMatch(def games.Definition, participantIDs []string, maxRounds int, status models.MatchStatus) *models.MatchState {
	state := def.DefaultState()
	state.Status = status
	state.Round = 1
	if maxRounds > 0 {
		state.MaxRounds = maxRounds
	}
	if state.History == nil {
		state.History = []models.RoundResult{}
	}
	state.Participants = make(map[string]*models.ParticipantRoundData, len(participantIDs))
	for _, id := range participantIDs {
		state.Participants[id] = &models.ParticipantRoundData{CurrentAction: models.ActionUnset}
	}
	if init, ok := def.(games.Initializer); ok {
		init.Initialize(&state, participantIDs)
	}
	return &state
}

// clampAction приводит действие к границам варианта. Возвращает второе
// значение false, если вариант требует отклонять выход за границы.
func clampAction(cfg models.GameConfig, action int) (int, bool) {
	if action >= cfg.MinAction && action <= cfg.MaxAction {
		return action, true
	}
	if cfg.RejectOutOfRange {
		return action, false
	}
	if action < cfg.MinAction {
		return cfg.MinAction, true
	}
	return cfg.MaxAction, true
}
