package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rodrigo-greising/game-theory-sub000/games"
	"github.com/rodrigo-greising/game-theory-sub000/models"
	"github.com/rodrigo-greising/game-theory-sub000/realtime"
	"github.com/rodrigo-greising/game-theory-sub000/store"
	"github.com/rodrigo-greising/game-theory-sub000/utils"
)

// maxTournamentParticipants ограничивает турнирные сессии; пары формируются
// при старте, поэтому вариантные границы игроков применяются к матчу, а не
// к сессии.
const maxTournamentParticipants = 32

type CreateSessionInput struct {
	Name         string
	GameID       string
	HostName     string
	IsTournament bool
	MaxRounds    int
	Passcode     string
}

type SessionService interface {
	Create(ctx context.Context, input CreateSessionInput) (*models.Session, *models.Participant, error)
	Join(ctx context.Context, sessionID, displayName, passcode string) (*models.Session, *models.Participant, error)
	Leave(ctx context.Context, sessionID, participantID string) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	List(ctx context.Context) ([]*models.Session, error)
	DeleteStale(ctx context.Context, retention time.Duration) (int, error)
}

type sessionService struct {
	store    store.SessionStore
	registry *games.Registry
	hub      Broadcaster
	logger   *slog.Logger
	now      func() time.Time
}

func NewSessionService(sessionStore store.SessionStore, registry *games.Registry, hub Broadcaster, logger *slog.Logger) SessionService {
	return &sessionService{
		store:    sessionStore,
		registry: registry,
		hub:      hub,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *sessionService) Create(ctx context.Context, input CreateSessionInput) (*models.Session, *models.Participant, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nil, errors.New("session name is required")
	}
	hostName := strings.TrimSpace(input.HostName)
	if hostName == "" {
		return nil, nil, errors.New("host display name is required")
	}
	if input.MaxRounds < 0 {
		return nil, nil, ErrInvalidMaxRounds
	}

	def, err := s.registry.Get(input.GameID)
	if err != nil {
		return nil, nil, err
	}

	// Имя должно быть уникально среди живых сессий, чтобы лобби-список
	// оставался различимым.
	existing, err := s.store.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, other := range existing {
		if other.Status != models.SessionStatusFinished && strings.EqualFold(other.Name, name) {
			return nil, nil, ErrSessionNameTaken
		}
	}

	host := models.Participant{
		ID:       utils.NewID(),
		Name:     hostName,
		IsHost:   true,
		JoinedAt: s.now().UTC(),
	}

	session := &models.Session{
		ID:           utils.NewID(),
		Name:         name,
		GameID:       def.ID(),
		CreatorID:    host.ID,
		CreatedAt:    s.now().UTC(),
		Status:       models.SessionStatusWaiting,
		IsTournament: input.IsTournament,
		MaxRounds:    input.MaxRounds,
		Participants: []models.Participant{host},
	}

	if input.Passcode != "" {
		hash, hashErr := utils.HashPasscode(input.Passcode)
		if hashErr != nil {
			return nil, nil, fmt.Errorf("failed to hash session passcode: %w", hashErr)
		}
		session.PasscodeHash = hash
	}

	if err := s.store.Create(ctx, session); err != nil {
		return nil, nil, err
	}

	s.logger.Info("session created",
		slog.String("session_id", session.ID),
		slog.String("game_id", session.GameID),
		slog.Bool("tournament", session.IsTournament))
	return session, &host, nil
}

func (s *sessionService) Join(ctx context.Context, sessionID, displayName, passcode string) (*models.Session, *models.Participant, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, nil, errors.New("display name is required")
	}

	joined := models.Participant{
		ID:       utils.NewID(),
		Name:     displayName,
		JoinedAt: s.now().UTC(),
	}

	session, err := s.store.Update(ctx, sessionID, func(session *models.Session) error {
		if session.Status != models.SessionStatusWaiting {
			return ErrSessionNotJoinable
		}
		if session.PasscodeHash != "" && !utils.CheckPasscodeHash(passcode, session.PasscodeHash) {
			return ErrInvalidPasscode
		}

		capacity := maxTournamentParticipants
		if !session.IsTournament {
			def, defErr := s.registry.Get(session.GameID)
			if defErr != nil {
				return defErr
			}
			capacity = def.MaxPlayers()
		}
		if len(session.Participants)+1 > capacity {
			return ErrSessionFull
		}

		session.Participants = append(session.Participants, joined)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.hub.BroadcastToRoom(SessionRoom(sessionID), realtime.Message{
		Type:    realtime.EventSessionUpdated,
		RoomID:  SessionRoom(sessionID),
		Payload: session,
	})
	return session, &joined, nil
}

func (s *sessionService) Leave(ctx context.Context, sessionID, participantID string) error {
	session, err := s.store.Update(ctx, sessionID, func(session *models.Session) error {
		leaving := session.FindParticipant(participantID)
		if leaving == nil {
			return ErrParticipantNotFound
		}
		wasHost := leaving.IsHost

		remaining := make([]models.Participant, 0, len(session.Participants)-1)
		for _, p := range session.Participants {
			if p.ID != participantID {
				remaining = append(remaining, p)
			}
		}
		session.Participants = remaining

		// Хостом становится участник, вошедший раньше всех из оставшихся.
		if wasHost && len(remaining) > 0 {
			session.Participants[0].IsHost = true
		}

		if len(remaining) == 0 && session.Status == models.SessionStatusFinished {
			now := s.now().UTC()
			session.EmptySince = &now
		}

		if session.Status == models.SessionStatusPlaying {
			s.logger.Warn("participant left a session in progress",
				slog.String("session_id", session.ID),
				slog.String("participant_id", participantID))
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Пустая незавершенная сессия удаляется сразу; завершенная остается
	// историей и вычищается sweeper-ом по retention.
	if len(session.Participants) == 0 && session.Status != models.SessionStatusFinished {
		if delErr := s.store.Delete(ctx, sessionID); delErr != nil && !errors.Is(delErr, store.ErrSessionNotFound) {
			return delErr
		}
		s.logger.Info("empty session deleted", slog.String("session_id", sessionID))
		return nil
	}

	s.hub.BroadcastToRoom(SessionRoom(sessionID), realtime.Message{
		Type:    realtime.EventSessionUpdated,
		RoomID:  SessionRoom(sessionID),
		Payload: session,
	})
	return nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.store.Get(ctx, sessionID)
}

func (s *sessionService) List(ctx context.Context) ([]*models.Session, error) {
	return s.store.List(ctx)
}

// DeleteStale удаляет завершенные сессии, простоявшие пустыми дольше
// retention. Вызывается планировщиком из cmd.
func (s *sessionService) DeleteStale(ctx context.Context, retention time.Duration) (int, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().UTC().Add(-retention)
	deleted := 0
	for _, session := range sessions {
		if session.EmptySince == nil || session.EmptySince.After(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, session.ID); err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				continue
			}
			return deleted, err
		}
		deleted++
	}
	if deleted > 0 {
		s.logger.Info("stale sessions deleted", slog.Int("count", deleted))
	}
	return deleted, nil
}
