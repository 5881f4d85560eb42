package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/antigravity/minigolfscore/internal/storage"
)

// Manager hands out one Session per card key.
type Manager struct {
	mu       sync.Mutex
	store    storage.Store
	log      *zap.SugaredLogger
	sessions map[string]*Session
}

func NewManager(store storage.Store, log *zap.SugaredLogger) *Manager {
	return &Manager{
		store:    store,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Get returns the open session for key, loading it on first use. A key
// with no saved record is storage.ErrNotFound.
func (m *Manager) Get(ctx context.Context, key string) (*Session, error) {
	return m.get(ctx, key, false)
}

// Open is Get, except that a key with no saved record starts a fresh card.
func (m *Manager) Open(ctx context.Context, key string) (*Session, error) {
	return m.get(ctx, key, true)
}

func (m *Manager) get(ctx context.Context, key string, create bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[key]; ok {
		return s, nil
	}
	s, err := open(ctx, m.store, key, m.log, create)
	if err != nil {
		return nil, err
	}
	m.sessions[key] = s
	return s, nil
}

// Create starts a new card under a random key and saves it right away so it
// shows up in List.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	key := uuid.NewString()
	s, err := m.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.Suspend(ctx); err != nil {
		m.forget(key)
		return nil, err
	}
	m.log.Infow("Card created", zap.String("card", key))
	return s, nil
}

func (m *Manager) forget(key string) {
	m.mu.Lock()
	delete(m.sessions, key)
	m.mu.Unlock()
}

// Delete closes the session for key and removes its saved record.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	_, open := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	err := m.store.Delete(ctx, key)
	if open && errors.Is(err, storage.ErrNotFound) {
		// Opened but never saved.
		err = nil
	}
	if err == nil {
		m.log.Infow("Card deleted", zap.String("card", key))
	}
	return err
}

// List returns saved card keys plus any open but unsaved ones.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	saved, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(saved))
	for _, key := range saved {
		seen[key] = true
	}

	m.mu.Lock()
	for key := range m.sessions {
		if !seen[key] {
			saved = append(saved, key)
		}
	}
	m.mu.Unlock()

	sort.Strings(saved)
	return saved, nil
}

// SuspendAll saves every open session and reports all failures together.
func (m *Manager) SuspendAll(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Suspend(ctx); err != nil {
			errs = append(errs, fmt.Errorf("card %s: %w", s.Key(), err))
		}
	}
	return errors.Join(errs...)
}
