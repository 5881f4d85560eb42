package scorecard

import (
	"context"
	"fmt"

	"github.com/antigravity/minigolfscore/internal/storage"
)

// Load replaces r with the record saved under key. If the record is missing,
// unreadable or does not decode, r is reset to defaults and the cause is
// returned for the caller to log. Either way r is usable afterwards.
func (r *Record) Load(ctx context.Context, st storage.Store, key string) error {
	data, err := st.Load(ctx, key)
	if err != nil {
		r.reset()
		return fmt.Errorf("%w: load %s: %w", ErrPersistenceUnavailable, key, err)
	}
	if err := r.UnmarshalBinary(data); err != nil {
		r.reset()
		return fmt.Errorf("load %s: %w", key, err)
	}
	return nil
}

// Save writes r under key.
func (r *Record) Save(ctx context.Context, st storage.Store, key string) error {
	data, err := r.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := st.Save(ctx, key, data); err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrPersistenceUnavailable, key, err)
	}
	return nil
}
