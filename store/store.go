package store

import (
	"context"
	"errors"

	"github.com/rodrigo-greising/game-theory-sub000/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")

	// ErrSyncConflict возвращается, когда оптимистичная запись исчерпала
	// попытки. UI должен повторить операцию, пользователю это не видно.
	ErrSyncConflict = errors.New("session update conflict: retries exhausted")
)

// maxUpdateAttempts ограничивает retry-цикл read-modify-write.
const maxUpdateAttempts = 5

// UpdateFunc применяется к свежепрочитанному документу. Возврат ошибки
// отменяет запись; ошибка пробрасывается вызывающему как есть.
type UpdateFunc func(session *models.Session) error

// SessionStore - общий документный стор сессий. Update обязан выполнять
// read-modify-write с контролем версии: функция применяется к последнему
// закоммиченному значению и перезапускается при конфликте записи. Это
// единственная примитива, на которой держится exactly-once разрешение
// раунда при гонке клиентов.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context) ([]*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}
