package services

import (
	"sort"

	"github.com/rodrigo-greising/game-theory-sub000/models"
)

// Standings Aggregator: чистые функции над картой standings, не зависящие
// от того, какая игра произвела результат.

func ensureStandingsEntry(standings map[string]*models.StandingsEntry, participantID string) *models.StandingsEntry {
	entry, ok := standings[participantID]
	if !ok {
		entry = &models.StandingsEntry{ParticipantID: participantID}
		standings[participantID] = entry
	}
	return entry
}

// RecordMatchResult накапливает итог одного завершенного матча.
// Классификация единая для всех вариантов: единоличный максимум - победа,
// дележ максимума - ничья, минимум (в т.ч. разделенный) - поражение,
// остальные - ничьи. Для двух игроков это вырождается в обычные
// победа/поражение/ничья.
func RecordMatchResult(standings map[string]*models.StandingsEntry, finalScores map[string]float64) {
	if len(finalScores) == 0 {
		return
	}

	high := false
	low := false
	var highScore, lowScore float64
	for _, score := range finalScores {
		if !high || score > highScore {
			highScore = score
			high = true
		}
		if !low || score < lowScore {
			lowScore = score
			low = true
		}
	}

	topCount := 0
	for _, score := range finalScores {
		if score == highScore {
			topCount++
		}
	}

	for participantID, score := range finalScores {
		entry := ensureStandingsEntry(standings, participantID)
		entry.MatchesPlayed++
		entry.TotalScore += score

		switch {
		case score == highScore && topCount == 1:
			entry.Wins++
		case score == highScore:
			// Дележ первого места, в том числе полный дележ (все равны).
			entry.Draws++
		case score == lowScore:
			entry.Losses++
		default:
			entry.Draws++
		}
	}
}

// RecordActionClass ведет счет кооперативных/некооперативных решений.
// Что именно считается кооперативным, решает игра - агрегатор агностичен.
func RecordActionClass(standings map[string]*models.StandingsEntry, participantID string, cooperative bool) {
	entry := ensureStandingsEntry(standings, participantID)
	if cooperative {
		entry.CooperativeActions++
	} else {
		entry.DefectiveActions++
	}
}

// SortedStandings возвращает таблицу по убыванию totalScore; при равных
// очках порядок стабилен по id участника.
func SortedStandings(standings map[string]*models.StandingsEntry) []*models.StandingsEntry {
	entries := make([]*models.StandingsEntry, 0, len(standings))
	for _, entry := range standings {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].ParticipantID < entries[j].ParticipantID
	})
	return entries
}
