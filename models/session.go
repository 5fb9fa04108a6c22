package models

import "time"

type SessionStatus string

const (
	SessionStatusWaiting  SessionStatus = "waiting"
	SessionStatusPlaying  SessionStatus = "playing"
	SessionStatusFinished SessionStatus = "finished"
)

type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	IsHost   bool      `json:"is_host"`
	JoinedAt time.Time `json:"joined_at"`
}

// Session - корневой документ. Все мутации проходят через store.Update,
// поэтому структура должна полностью сериализоваться в JSON.
type Session struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	GameID       string        `json:"game_id"`
	CreatorID    string        `json:"creator_id"`
	CreatedAt    time.Time     `json:"created_at"`
	Status       SessionStatus `json:"status"`
	IsTournament bool          `json:"is_tournament"`
	MaxRounds    int           `json:"max_rounds"`

	// PasscodeHash пустой для открытых сессий. Наружу не отдается,
	// хендлеры строят отдельное представление.
	PasscodeHash string `json:"passcode_hash,omitempty"`

	// Participants упорядочены по времени входа; первый из оставшихся
	// становится хостом, если хост выходит.
	Participants []Participant `json:"participants"`

	// Match используется вне турнирного режима: один общий инстанс игры.
	Match *MatchState `json:"match,omitempty"`

	// Matches используется в турнирном режиме: один MatchState на пару,
	// ключ - MatchKey двух участников.
	Matches map[string]*MatchState `json:"matches,omitempty"`

	Pairing   map[string]string          `json:"pairing,omitempty"`
	Standings map[string]*StandingsEntry `json:"standings,omitempty"`

	// EmptySince выставляется, когда завершенная сессия остается без
	// участников; sweeper удаляет ее по истечении срока хранения.
	EmptySince *time.Time `json:"empty_since,omitempty"`
}

func (s *Session) FindParticipant(id string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return &s.Participants[i]
		}
	}
	return nil
}

func (s *Session) HostID() string {
	for i := range s.Participants {
		if s.Participants[i].IsHost {
			return s.Participants[i].ID
		}
	}
	return ""
}

func (s *Session) ParticipantIDs() []string {
	ids := make([]string, 0, len(s.Participants))
	for i := range s.Participants {
		ids = append(ids, s.Participants[i].ID)
	}
	return ids
}

// MatchFor возвращает активный матч участника: общий матч вне турнира,
// либо матч его текущей пары. Для участника в статусе waiting - nil.
func (s *Session) MatchFor(participantID string) *MatchState {
	if !s.IsTournament {
		return s.Match
	}
	opponent, ok := s.Pairing[participantID]
	if !ok || opponent == PairingWaiting {
		return nil
	}
	return s.Matches[MatchKey(participantID, opponent)]
}
