package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// StagingPrefix holds uncommitted objects. Nothing below it is ever served.
const StagingPrefix = "staging/"

// Staged is data written under a key private to one write attempt. It
// reaches its final key only on Commit, so an attempt that is rejected
// later never touches objects a committed row may reference.
type Staged struct {
	store Store
	key   string
	tmp   string
	data  []byte
}

// Stage writes data under a fresh temporary key. The caller must Discard
// the result once the attempt is over, committed or not.
func Stage(ctx context.Context, store Store, key string, data []byte) (*Staged, error) {
	if _, err := sanitizeKey(key); err != nil {
		return nil, err
	}
	tmp := StagingPrefix + uuid.NewString()
	if err := store.Write(ctx, tmp, data); err != nil {
		return nil, fmt.Errorf("staging %s: %w", key, err)
	}
	return &Staged{store: store, key: key, tmp: tmp, data: data}, nil
}

// Key is the final key Commit writes to.
func (s *Staged) Key() string { return s.key }

// TempKey is where the data sits until the attempt is over.
func (s *Staged) TempKey() string { return s.tmp }

// Commit writes the staged data to its final key, replacing any object there.
func (s *Staged) Commit(ctx context.Context) error {
	if err := s.store.Write(ctx, s.key, s.data); err != nil {
		return fmt.Errorf("writing %s: %w", s.key, err)
	}
	return nil
}

// Discard removes the temporary copy. It is a no-op on a nil Staged.
func (s *Staged) Discard(ctx context.Context) error {
	if s == nil {
		return nil
	}
	err := s.store.Delete(ctx, s.tmp)
	if errors.Is(err, ErrNotExist) {
		return nil
	}
	return err
}
