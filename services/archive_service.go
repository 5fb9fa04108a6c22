package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/rodrigo-greising/game-theory-sub000/models"
	"github.com/rodrigo-greising/game-theory-sub000/storage"
)

// ArchiveService выгружает историю и standings завершенной сессии в
// объектное хранилище под archives/{sessionID}/. Ошибки здесь никогда не
// видны пользователю - вызывающий логирует и продолжает.
type ArchiveService struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewArchiveService(uploader storage.FileUploader, logger *slog.Logger) *ArchiveService {
	return &ArchiveService{uploader: uploader, logger: logger}
}

func (s *ArchiveService) ArchiveSession(ctx context.Context, session *models.Session) error {
	if session.Status != models.SessionStatusFinished {
		return fmt.Errorf("session %s is not finished, refusing to archive", session.ID)
	}

	type object struct {
		key     string
		payload interface{}
	}

	objects := []object{
		{key: s.objectKey(session.ID, "session.json"), payload: sessionSummary(session)},
	}
	if session.IsTournament {
		for key, match := range session.Matches {
			objects = append(objects, object{
				key:     s.objectKey(session.ID, "matches/"+key+".json"),
				payload: match.History,
			})
		}
		objects = append(objects, object{
			key:     s.objectKey(session.ID, "standings.json"),
			payload: SortedStandings(session.Standings),
		})
	} else if session.Match != nil {
		objects = append(objects, object{
			key:     s.objectKey(session.ID, "history.json"),
			payload: session.Match.History,
		})
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, obj := range objects {
		obj := obj
		g.Go(func() error {
			data, err := json.Marshal(obj.payload)
			if err != nil {
				return fmt.Errorf("failed to encode archive object %s: %w", obj.key, err)
			}
			result, err := s.uploader.Upload(gCtx, obj.key, "application/json", bytes.NewReader(data))
			if err != nil {
				return err
			}
			s.logger.Info("archive object uploaded",
				slog.String("session_id", session.ID),
				slog.String("key", result.Key))
			return nil
		})
	}
	return g.Wait()
}

func (s *ArchiveService) objectKey(sessionID, name string) string {
	return "archives/" + sessionID + "/" + name
}

// sessionSummary - срез сессии без хэша пасскода.
func sessionSummary(session *models.Session) map[string]interface{} {
	return map[string]interface{}{
		"id":            session.ID,
		"name":          session.Name,
		"game_id":       session.GameID,
		"created_at":    session.CreatedAt,
		"is_tournament": session.IsTournament,
		"participants":  session.Participants,
	}
}
