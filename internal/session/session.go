// Package session gives each scorecard exactly one owner. A Session holds
// the record for one storage key and serializes every read, edit and save.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/antigravity/minigolfscore/internal/scorecard"
	"github.com/antigravity/minigolfscore/internal/storage"
)

type Session struct {
	mu     sync.Mutex
	key    string
	record *scorecard.Record
	store  storage.Store
	log    *zap.SugaredLogger
}

// Open loads the record saved under key. A missing or corrupt record is
// logged and replaced with a fresh one. Any other load failure, including a
// cancelled ctx, is returned.
func Open(ctx context.Context, store storage.Store, key string, log *zap.SugaredLogger) (*Session, error) {
	return open(ctx, store, key, log, true)
}

func open(ctx context.Context, store storage.Store, key string, log *zap.SugaredLogger, create bool) (*Session, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	s := &Session{
		key:    key,
		record: scorecard.New(),
		store:  store,
		log:    log.With(zap.String("card", key)),
	}
	err := s.record.Load(ctx, store, key)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		if !create {
			return nil, err
		}
		s.log.Infow("No saved card, starting fresh")
	case errors.Is(err, scorecard.ErrCorruptRecord):
		s.log.Warnw("Saved card unusable, starting fresh", zap.Error(err))
	default:
		return nil, err
	}
	return s, nil
}

func (s *Session) Key() string { return s.key }

// Update runs fn with exclusive access to the record.
func (s *Session) Update(fn func(r *scorecard.Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.record)
}

// View runs fn with exclusive access; fn must not modify the record.
func (s *Session) View(fn func(r *scorecard.Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.record)
}

// Suspend saves the record. It holds the lock, so the saved bytes never
// include a half-applied edit.
func (s *Session) Suspend(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record.Save(ctx, s.store, s.key); err != nil {
		s.log.Errorw("Failed to save card", zap.Error(err))
		return err
	}
	s.log.Debugw("Card saved")
	return nil
}
