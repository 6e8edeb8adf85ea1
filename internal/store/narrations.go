package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/narravoapp/narravo-server/internal/domain"
	apperrors "github.com/narravoapp/narravo-server/internal/errors"
)

const (
	narrationPrefix = "nar:"
	audioPrefix     = "audio:"
)

// ErrNarrationNotFound is returned when a narration ID does not exist.
var ErrNarrationNotFound = apperrors.NotFound("narration not found")

// CreateNarration stores a narration record and its audio payload atomically.
// Narration records are immutable - there is no update path; a new generation
// creates a new narration.
func (s *Store) CreateNarration(ctx context.Context, n *domain.Narration, audio []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal narration: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(narrationPrefix+n.ID), data); err != nil {
			return fmt.Errorf("set narration: %w", err)
		}
		if err := txn.Set([]byte(audioPrefix+n.ID), audio); err != nil {
			return fmt.Errorf("set audio payload: %w", err)
		}
		return nil
	})
}

// GetNarration retrieves a narration record by ID.
func (s *Store) GetNarration(ctx context.Context, id string) (*domain.Narration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var narration domain.Narration
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(narrationPrefix + id))
		if apperrors.Is(err, badger.ErrKeyNotFound) {
			return ErrNarrationNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &narration)
		})
	})

	if err != nil {
		return nil, err
	}
	return &narration, nil
}

// GetNarrationAudio retrieves the WAV payload for a narration.
func (s *Store) GetNarrationAudio(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var audio []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(audioPrefix + id))
		if apperrors.Is(err, badger.ErrKeyNotFound) {
			return ErrNarrationNotFound
		}
		if err != nil {
			return err
		}

		audio, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}
	return audio, nil
}

// ListNarrations returns all narration records, newest first.
func (s *Store) ListNarrations(ctx context.Context) ([]*domain.Narration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var narrations []*domain.Narration
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(narrationPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var n domain.Narration
				if err := json.Unmarshal(val, &n); err != nil {
					return err
				}
				narrations = append(narrations, &n)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	slices.SortFunc(narrations, func(a, b *domain.Narration) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return narrations, nil
}

// DeleteNarration removes a narration record and its audio payload.
func (s *Store) DeleteNarration(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		// Verify existence so callers get a clean not-found.
		if _, err := txn.Get([]byte(narrationPrefix + id)); apperrors.Is(err, badger.ErrKeyNotFound) {
			return ErrNarrationNotFound
		} else if err != nil {
			return err
		}

		if err := txn.Delete([]byte(narrationPrefix + id)); err != nil {
			return fmt.Errorf("delete narration: %w", err)
		}
		if err := txn.Delete([]byte(audioPrefix + id)); err != nil {
			return fmt.Errorf("delete audio payload: %w", err)
		}
		return nil
	})
}
