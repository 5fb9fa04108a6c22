package models

import "strings"

// PairingWaiting - сентинел в карте пар для участника без соперника
// (нечетное количество игроков).
const PairingWaiting = "waiting"

// MatchKey строит канонический ключ матча пары: id сортируются, поэтому
// MatchKey(a, b) == MatchKey(b, a).
func MatchKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// SplitMatchKey возвращает обе стороны ключа матча.
func SplitMatchKey(key string) (string, string) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return key, ""
	}
	return parts[0], parts[1]
}

// StandingsEntry - сквозная турнирная статистика участника. Создается лениво
// при первом завершенном матче и переживает решафлы.
type StandingsEntry struct {
	ParticipantID      string  `json:"participant_id"`
	TotalScore         float64 `json:"total_score"`
	MatchesPlayed      int     `json:"matches_played"`
	Wins               int     `json:"wins"`
	Losses             int     `json:"losses"`
	Draws              int     `json:"draws"`
	CooperativeActions int     `json:"cooperative_actions"`
	DefectiveActions   int     `json:"defective_actions"`
}
