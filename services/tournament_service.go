package services

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/rodrigo-greising/game-theory-sub000/games"
	"github.com/rodrigo-greising/game-theory-sub000/models"
	"github.com/rodrigo-greising/game-theory-sub000/realtime"
	"github.com/rodrigo-greising/game-theory-sub000/store"
)

// Matchmaker разбивает участников на непересекающиеся пары.
type Matchmaker interface {
	Pair(participantIDs []string) map[string]string
}

type TournamentService interface {
	Matchmaker
	Reshuffle(ctx context.Context, sessionID, participantID string) (*models.Session, error)
	Standings(ctx context.Context, sessionID string) ([]*models.StandingsEntry, error)
}

type tournamentService struct {
	store    store.SessionStore
	registry *games.Registry
	hub      Broadcaster
	logger   *slog.Logger
	shuffle  func(ids []string)
}

func NewTournamentService(sessionStore store.SessionStore, registry *games.Registry, hub Broadcaster, logger *slog.Logger) TournamentService {
	return &tournamentService{
		store:    sessionStore,
		registry: registry,
		hub:      hub,
		logger:   logger,
		shuffle: func(ids []string) {
			rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		},
	}
}

// Pair перемешивает список равномерной случайной перестановкой и жадно
// соединяет соседей; при нечетном количестве последний получает сентинел
// waiting. Отношение симметрично, каждый не-waiting участник входит ровно
// в одну пару.
func (s *tournamentService) Pair(participantIDs []string) map[string]string {
	shuffled := make([]string, len(participantIDs))
	copy(shuffled, participantIDs)
	s.shuffle(shuffled)

	pairing := make(map[string]string, len(shuffled))
	for i := 0; i+1 < len(shuffled); i += 2 {
		pairing[shuffled[i]] = shuffled[i+1]
		pairing[shuffled[i+1]] = shuffled[i]
	}
	if len(shuffled)%2 == 1 {
		pairing[shuffled[len(shuffled)-1]] = models.PairingWaiting
	}
	return pairing
}

// Reshuffle - только для хоста: пары генерируются заново, матчи нового
// этапа пересоздаются с нуля, накопленные standings не трогаются.
func (s *tournamentService) Reshuffle(ctx context.Context, sessionID, participantID string) (*models.Session, error) {
	session, err := s.store.Update(ctx, sessionID, func(session *models.Session) error {
		caller := session.FindParticipant(participantID)
		if caller == nil {
			return ErrParticipantNotFound
		}
		if !caller.IsHost {
			return ErrHostOnly
		}
		if !session.IsTournament {
			return ErrNotTournament
		}
		if len(session.Participants) < 2 {
			return ErrInsufficientParticipantsForTourney
		}

		def, defErr := s.registry.Get(session.GameID)
		if defErr != nil {
			return defErr
		}

		session.Pairing = s.Pair(session.ParticipantIDs())
		session.Matches = seedPairedMatches(def, session.Pairing, session.MaxRounds)
		if session.Standings == nil {
			session.Standings = make(map[string]*models.StandingsEntry)
		}
		session.Status = models.SessionStatusPlaying
		return nil
	})
	if err != nil {
		return nil, err
	}

	room := SessionRoom(sessionID)
	s.hub.BroadcastToRoom(room, realtime.Message{
		Type:    realtime.EventPairingUpdated,
		RoomID:  room,
		Payload: session.Pairing,
	})
	s.hub.BroadcastToRoom(room, realtime.Message{
		Type:    realtime.EventSessionUpdated,
		RoomID:  room,
		Payload: session,
	})
	s.logger.Info("tournament reshuffled",
		slog.String("session_id", sessionID),
		slog.Int("matches", len(session.Matches)))
	return session, nil
}

// Standings отдает таблицу, отсортированную по убыванию totalScore.
func (s *tournamentService) Standings(ctx context.Context, sessionID string) ([]*models.StandingsEntry, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsTournament {
		return nil, ErrNotTournament
	}
	return SortedStandings(session.Standings), nil
}

// seedPairedMatches строит по свежему матчу на каждую реальную пару.
func seedPairedMatches(def games.Definition, pairing map[string]string, maxRounds int) map[string]*models.MatchState {
	matches := make(map[string]*models.MatchState)
	for a, b := range pairing {
		if b == models.PairingWaiting || a > b {
			continue
		}
		matches[models.MatchKey(a, b)] = seedMatch(def, []string{a, b}, maxRounds, models.MatchStatusInProgress)
	}
	return matches
}
