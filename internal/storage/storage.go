// Package storage persists the chat document. Every adapter reads and
// writes the whole document as one unit; there are no partial writes.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"roomchat/backend/internal/apperr"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/models"
)

// ErrNotExist is returned by Load when no document has been written yet.
var ErrNotExist = errors.New("storage: document does not exist")

type Storage interface {
	// Load returns the persisted document, ErrNotExist if there is none, or a
	// STORE_UNAVAILABLE error if it cannot be read or is corrupt.
	Load(ctx context.Context) (*models.Snapshot, error)
	// Save durably replaces the persisted document.
	Save(ctx context.Context, snap *models.Snapshot) error
	Close() error
}

// Open connects the adapter selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case config.DriverFile:
		log.Printf("INFO: using file storage at %s", cfg.Path)
		return NewFileStorage(cfg.Path), nil
	case config.DriverPostgres:
		s, err := OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverRedis:
		s, err := OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func encodeSnapshot(snap *models.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, apperr.StoreUnavailable("encode document", err)
	}
	return data, nil
}

// decodeSnapshot parses and structurally validates a stored document.
func decodeSnapshot(data []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperr.StoreUnavailable("corrupt document", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, apperr.StoreUnavailable("corrupt document", err)
	}
	if snap.Users == nil {
		snap.Users = make(map[string]models.User)
	}
	return &snap, nil
}
