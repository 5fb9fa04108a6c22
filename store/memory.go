package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rodrigo-greising/game-theory-sub000/models"
)

type versionedDoc struct {
	doc     []byte
	version int64
}

// MemorySessionStore хранит документы как сериализованный JSON, чтобы
// читатели всегда получали глубокую копию - та же семантика, что у
// документного стора. Update честно проходит через CAS по версии, поэтому
// retry-дисциплина тестируется без базы.
type MemorySessionStore struct {
	mu   sync.RWMutex
	docs map[string]versionedDoc
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{docs: make(map[string]versionedDoc)}
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	entry, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSession(entry.doc)
}

func (s *MemorySessionStore) List(ctx context.Context) ([]*models.Session, error) {
	s.mu.RLock()
	entries := make([][]byte, 0, len(s.docs))
	for _, entry := range s.docs {
		entries = append(entries, entry.doc)
	}
	s.mu.RUnlock()

	sessions := make([]*models.Session, 0, len(entries))
	for _, doc := range entries {
		session, err := decodeSession(doc)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (s *MemorySessionStore) Create(ctx context.Context, session *models.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	s.docs[session.ID] = versionedDoc{doc: doc, version: 1}
	return nil
}

func (s *MemorySessionStore) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Session, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.mu.RLock()
		entry, ok := s.docs[id]
		s.mu.RUnlock()
		if !ok {
			return nil, ErrSessionNotFound
		}

		session, err := decodeSession(entry.doc)
		if err != nil {
			return nil, err
		}

		// fn выполняется вне блокировки: конкурентный коммит другой
		// горутины обнаружится по версии и вызовет повтор на свежем чтении.
		if err := fn(session); err != nil {
			return nil, err
		}

		next, err := json.Marshal(session)
		if err != nil {
			return nil, fmt.Errorf("failed to encode session %s: %w", id, err)
		}

		s.mu.Lock()
		current, ok := s.docs[id]
		if !ok {
			s.mu.Unlock()
			return nil, ErrSessionNotFound
		}
		if current.version != entry.version {
			s.mu.Unlock()
			continue
		}
		s.docs[id] = versionedDoc{doc: next, version: entry.version + 1}
		s.mu.Unlock()
		return session, nil
	}
	return nil, ErrSyncConflict
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.docs, id)
	return nil
}

func decodeSession(doc []byte) (*models.Session, error) {
	session := &models.Session{}
	if err := json.Unmarshal(doc, session); err != nil {
		return nil, fmt.Errorf("failed to decode session document: %w", err)
	}
	return session, nil
}
