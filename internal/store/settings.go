package store

import (
	"context"
	"encoding/json/v2"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/narravoapp/narravo-server/internal/domain"
	apperrors "github.com/narravoapp/narravo-server/internal/errors"
)

const playerSettingsKey = "settings:player"

// GetPlayerSettings retrieves the persisted playback preferences. Returns
// defaults if none have been saved yet.
func (s *Store) GetPlayerSettings(ctx context.Context) (domain.PlayerSettings, error) {
	settings := domain.DefaultPlayerSettings()

	if err := ctx.Err(); err != nil {
		return settings, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(playerSettingsKey))
		if apperrors.Is(err, badger.ErrKeyNotFound) {
			return nil // first run, defaults apply
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &settings)
		})
	})

	if err != nil {
		return domain.DefaultPlayerSettings(), err
	}
	return settings, nil
}

// SavePlayerSettings persists the playback preferences.
func (s *Store) SavePlayerSettings(ctx context.Context, settings domain.PlayerSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal player settings: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(playerSettingsKey), data)
	})
}
