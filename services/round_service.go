package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rodrigo-greising/game-theory-sub000/games"
	"github.com/rodrigo-greising/game-theory-sub000/models"
	"github.com/rodrigo-greising/game-theory-sub000/realtime"
	"github.com/rodrigo-greising/game-theory-sub000/store"
)

// Archiver выгружает завершенные сессии в объектное хранилище.
// Реализация может отсутствовать (nil) - архивирование best-effort.
type Archiver interface {
	ArchiveSession(ctx context.Context, session *models.Session) error
}

// RoundService - Round Coordinator. Каждая операция - один вызов
// store.Update: проверки, мутация и детекция "все готовы" выполняются над
// свежепрочитанным документом и коммитятся атомарно по версии, поэтому два
// гонящихся клиента не могут оба разрешить один раунд.
type RoundService interface {
	Start(ctx context.Context, sessionID, participantID string) (*models.Session, error)
	SubmitAction(ctx context.Context, sessionID, participantID string, action int) (*models.Session, error)
	Reset(ctx context.Context, sessionID, participantID string) (*models.Session, error)
}

type roundService struct {
	store      store.SessionStore
	registry   *games.Registry
	matchmaker Matchmaker
	hub        Broadcaster
	archiver   Archiver
	logger     *slog.Logger
}

func NewRoundService(
	sessionStore store.SessionStore,
	registry *games.Registry,
	matchmaker Matchmaker,
	hub Broadcaster,
	archiver Archiver,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		store:      sessionStore,
		registry:   registry,
		matchmaker: matchmaker,
		hub:        hub,
		archiver:   archiver,
		logger:     logger,
	}
}

func (s *roundService) Start(ctx context.Context, sessionID, participantID string) (*models.Session, error) {
	session, err := s.store.Update(ctx, sessionID, func(session *models.Session) error {
		caller := session.FindParticipant(participantID)
		if caller == nil {
			return ErrParticipantNotFound
		}
		if !caller.IsHost {
			return ErrHostOnly
		}
		if session.Status != models.SessionStatusWaiting {
			return ErrSessionAlreadyStarted
		}

		def, defErr := s.registry.Get(session.GameID)
		if defErr != nil {
			return defErr
		}

		ids := session.ParticipantIDs()
		if session.IsTournament {
			if len(ids) < 2 {
				return ErrInsufficientParticipantsForTourney
			}
			if !def.ValidatePlayerCount(2) {
				return ErrInvalidPlayerCount
			}
			session.Pairing = s.matchmaker.Pair(ids)
			session.Matches = seedPairedMatches(def, session.Pairing, session.MaxRounds)
			if session.Standings == nil {
				session.Standings = make(map[string]*models.StandingsEntry)
			}
		} else {
			if !def.ValidatePlayerCount(len(ids)) {
				return ErrInvalidPlayerCount
			}
			session.Match = seedMatch(def, ids, session.MaxRounds, models.MatchStatusInProgress)
		}

		session.Status = models.SessionStatusPlaying
		return nil
	})
	if err != nil {
		return nil, err
	}

	room := SessionRoom(sessionID)
	if session.IsTournament {
		s.hub.BroadcastToRoom(room, realtime.Message{
			Type:    realtime.EventPairingUpdated,
			RoomID:  room,
			Payload: session.Pairing,
		})
	}
	s.hub.BroadcastToRoom(room, realtime.Message{
		Type:    realtime.EventSessionUpdated,
		RoomID:  room,
		Payload: session,
	})
	s.logger.Info("match started",
		slog.String("session_id", sessionID),
		slog.Bool("tournament", session.IsTournament),
		slog.Int("participants", len(session.Participants)))
	return session, nil
}

func (s *roundService) SubmitAction(ctx context.Context, sessionID, participantID string, action int) (*models.Session, error) {
	var (
		resolved        *models.RoundResult
		matchCompleted  bool
		sessionFinished bool
	)

	session, err := s.store.Update(ctx, sessionID, func(session *models.Session) error {
		// Функция может перезапускаться на свежем чтении - события
		// предыдущей (несостоявшейся) попытки сбрасываются.
		resolved = nil
		matchCompleted = false
		sessionFinished = false

		if session.Status != models.SessionStatusPlaying {
			return ErrMatchNotInProgress
		}
		if session.FindParticipant(participantID) == nil {
			return ErrParticipantNotFound
		}

		match := session.MatchFor(participantID)
		if match == nil {
			if session.IsTournament {
				return ErrNoActiveMatch
			}
			return ErrMatchNotInProgress
		}
		if match.Status != models.MatchStatusInProgress {
			return ErrMatchNotInProgress
		}

		data := match.Participants[participantID]
		if data == nil {
			return ErrParticipantNotFound
		}
		if data.Ready {
			return ErrActionAlreadySubmitted
		}

		accepted, ok := clampAction(match.Config, action)
		if !ok {
			return ErrActionOutOfRange
		}
		data.CurrentAction = accepted
		data.Ready = true

		if !match.AllReady() {
			return nil
		}

		def, defErr := s.registry.Get(session.GameID)
		if defErr != nil {
			return defErr
		}

		result, err := s.resolveRound(session, match, def)
		if err != nil {
			return err
		}
		resolved = &result

		if match.Status == models.MatchStatusCompleted {
			matchCompleted = true
			sessionFinished = s.finishIfDone(session)
		}
		return nil
	})
	if err != nil {
		s.logProtocolViolation(sessionID, participantID, err)
		return nil, err
	}

	s.publishRoundEvents(sessionID, session, resolved, matchCompleted)

	if sessionFinished && s.archiver != nil {
		archived := session
		go func() {
			if err := s.archiver.ArchiveSession(context.Background(), archived); err != nil {
				s.logger.Error("failed to archive finished session",
					slog.String("session_id", archived.ID),
					slog.Any("error", err))
			}
		}()
	}
	return session, nil
}

// resolveRound применяет результат одного раунда: выплаты, история, сброс
// переходных полей, вариантный hook смены ролей, переход раунда или
// завершение матча. Вызывается ровно один раз на раунд - гонку снимает CAS
// в store.Update.
func (s *roundService) resolveRound(session *models.Session, match *models.MatchState, def games.Definition) (models.RoundResult, error) {
	actions := match.Actions()
	result, totals, err := def.ResolveRound(match, actions)
	if err != nil {
		// Контрактная ошибка резолвера: координатор гарантирует полноту
		// действий, так что сюда попадает только баг.
		return models.RoundResult{}, fmt.Errorf("resolver failed for game %s round %d: %w", session.GameID, match.Round, err)
	}

	if session.IsTournament && session.Standings != nil {
		if classifier, ok := def.(games.Classifier); ok {
			for id, act := range actions {
				RecordActionClass(session.Standings, id, classifier.IsCooperative(act))
			}
		}
	}

	for id, total := range totals {
		match.Participants[id].TotalScore = total
	}
	match.History = append(match.History, result)
	for _, data := range match.Participants {
		data.Ready = false
		data.CurrentAction = models.ActionUnset
	}

	if match.Round == match.MaxRounds {
		match.Status = models.MatchStatusCompleted
		if session.IsTournament && session.Standings != nil {
			RecordMatchResult(session.Standings, match.FinalScores())
		}
	} else {
		if advancer, ok := def.(games.RoundAdvancer); ok {
			advancer.AdvanceRound(match)
		}
		match.Round++
	}
	return result, nil
}

// finishIfDone переводит сессию в finished, когда играть больше нечего:
// вне турнира - сразу после общего матча, в турнире - когда завершены все
// матчи этапа (waiting-участники завершение не блокируют).
func (s *roundService) finishIfDone(session *models.Session) bool {
	if !session.IsTournament {
		session.Status = models.SessionStatusFinished
		return true
	}
	for _, match := range session.Matches {
		if match.Status != models.MatchStatusCompleted {
			return false
		}
	}
	session.Status = models.SessionStatusFinished
	return true
}

func (s *roundService) Reset(ctx context.Context, sessionID, participantID string) (*models.Session, error) {
	session, err := s.store.Update(ctx, sessionID, func(session *models.Session) error {
		caller := session.FindParticipant(participantID)
		if caller == nil {
			return ErrParticipantNotFound
		}
		if !caller.IsHost {
			return ErrHostOnly
		}

		def, defErr := s.registry.Get(session.GameID)
		if defErr != nil {
			return defErr
		}

		// Ростер и турнирные standings не трогаем: reset возвращает матчи
		// к стартовой конфигурации, а не историю турнира.
		if session.IsTournament {
			for key := range session.Matches {
				a, b := models.SplitMatchKey(key)
				session.Matches[key] = seedMatch(def, []string{a, b}, session.MaxRounds, models.MatchStatusSetup)
			}
		} else {
			session.Match = seedMatch(def, session.ParticipantIDs(), session.MaxRounds, models.MatchStatusSetup)
		}
		session.Status = models.SessionStatusWaiting
		return nil
	})
	if err != nil {
		return nil, err
	}

	room := SessionRoom(sessionID)
	s.hub.BroadcastToRoom(room, realtime.Message{
		Type:    realtime.EventSessionUpdated,
		RoomID:  room,
		Payload: session,
	})
	return session, nil
}

func (s *roundService) publishRoundEvents(sessionID string, session *models.Session, resolved *models.RoundResult, matchCompleted bool) {
	room := SessionRoom(sessionID)
	if resolved != nil {
		s.hub.BroadcastToRoom(room, realtime.Message{
			Type:    realtime.EventRoundResolved,
			RoomID:  room,
			Payload: resolved,
		})
	}
	if matchCompleted {
		s.hub.BroadcastToRoom(room, realtime.Message{
			Type:    realtime.EventMatchCompleted,
			RoomID:  room,
			Payload: session,
		})
	}
	s.hub.BroadcastToRoom(room, realtime.Message{
		Type:    realtime.EventSessionUpdated,
		RoomID:  room,
		Payload: session,
	})
}

// logProtocolViolation логирует отклоненные мутации, которые при корректной
// работе клиентов не должны случаться.
func (s *roundService) logProtocolViolation(sessionID, participantID string, err error) {
	if errors.Is(err, ErrActionAlreadySubmitted) || errors.Is(err, ErrMatchNotInProgress) {
		s.logger.Warn("rejected protocol violation",
			slog.String("session_id", sessionID),
			slog.String("participant_id", participantID),
			slog.Any("error", err))
	}
	if errors.Is(err, store.ErrSyncConflict) {
		s.logger.Warn("session update retries exhausted",
			slog.String("session_id", sessionID),
			slog.String("participant_id", participantID))
	}
}
