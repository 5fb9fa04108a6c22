package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/rodrigo-greising/game-theory-sub000/models"
)

// PostgresSessionStore хранит каждую сессию одним jsonb-документом с
// счетчиком версии. Update - оптимистичная запись: SELECT doc+version,
// применение функции, UPDATE ... WHERE version = прочитанной; ноль
// затронутых строк означает проигранную гонку и повтор с нового чтения.
type PostgresSessionStore struct {
	db *sql.DB
}

func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

// EnsureSchema создает таблицу документов, если ее еще нет.
func (s *PostgresSessionStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS game_sessions (
			id         text PRIMARY KEY,
			doc        jsonb NOT NULL,
			version    bigint NOT NULL DEFAULT 1,
			created_at timestamptz NOT NULL DEFAULT now()
		)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure game_sessions schema: %w", err)
	}
	return nil
}

func (s *PostgresSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	session, _, err := s.getWithVersion(ctx, id)
	return session, err
}

func (s *PostgresSessionStore) getWithVersion(ctx context.Context, id string) (*models.Session, int64, error) {
	query := `SELECT doc, version FROM game_sessions WHERE id = $1`

	var doc []byte
	var version int64
	err := s.db.QueryRowContext(ctx, query, id).Scan(&doc, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrSessionNotFound
		}
		return nil, 0, fmt.Errorf("failed to scan session %s: %w", id, err)
	}

	session, err := decodeSession(doc)
	if err != nil {
		return nil, 0, err
	}
	return session, version, nil
}

func (s *PostgresSessionStore) List(ctx context.Context) ([]*models.Session, error) {
	query := `SELECT doc FROM game_sessions ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.Session, 0)
	for rows.Next() {
		var doc []byte
		if scanErr := rows.Scan(&doc); scanErr != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", scanErr)
		}
		session, decodeErr := decodeSession(doc)
		if decodeErr != nil {
			return nil, decodeErr
		}
		sessions = append(sessions, session)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during session rows iteration: %w", err)
	}
	return sessions, nil
}

func (s *PostgresSessionStore) Create(ctx context.Context, session *models.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	query := `INSERT INTO game_sessions (id, doc) VALUES ($1, $2)`
	if _, err := s.db.ExecContext(ctx, query, session.ID, doc); err != nil {
		return s.handleSessionError(session.ID, err)
	}
	return nil
}

func (s *PostgresSessionStore) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Session, error) {
	query := `UPDATE game_sessions SET doc = $1, version = version + 1 WHERE id = $2 AND version = $3`

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		session, version, err := s.getWithVersion(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := fn(session); err != nil {
			return nil, err
		}

		doc, err := json.Marshal(session)
		if err != nil {
			return nil, fmt.Errorf("failed to encode session %s: %w", id, err)
		}

		result, err := s.db.ExecContext(ctx, query, doc, id, version)
		if err != nil {
			return nil, s.handleSessionError(id, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to check affected rows: %w", err)
		}
		if rowsAffected == 0 {
			// Версия ушла вперед или документ удален - перечитываем.
			continue
		}
		return session, nil
	}
	return nil, ErrSyncConflict
}

func (s *PostgresSessionStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM game_sessions WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return s.handleSessionError(id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *PostgresSessionStore) handleSessionError(id string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// "23505": unique_violation по первичному ключу id
		if pqErr.Code == "23505" {
			return fmt.Errorf("session id conflict for %s: %w", id, err)
		}
	}
	return fmt.Errorf("session store error for %s: %w", id, err)
}
