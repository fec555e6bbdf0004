package storage

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"roomchat/backend/internal/apperr"
	"roomchat/backend/internal/models"
)

// FileStorage keeps the document in a single JSON file. Saves write a
// temporary file in the same directory, fsync it and rename it over the
// target, so readers see either the old or the new document.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Load(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, apperr.StoreUnavailable("read document", err)
	}
	return decodeSnapshot(data)
}

func (s *FileStorage) Save(ctx context.Context, snap *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return apperr.StoreUnavailable("save document", err)
	}
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.StoreUnavailable("create document directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperr.StoreUnavailable("create temp document", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperr.StoreUnavailable("write temp document", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperr.StoreUnavailable("sync temp document", err)
	}
	if err := tmp.Close(); err != nil {
		return apperr.StoreUnavailable("close temp document", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return apperr.StoreUnavailable("replace document", err)
	}
	committed = true

	// The rename is durable once the directory entry is synced. Failing here
	// is logged only: the new document is already in place.
	if d, err := os.Open(dir); err == nil {
		if err := d.Sync(); err != nil {
			log.Printf("WARNING: failed to sync directory %s: %v", dir, err)
		}
		d.Close()
	}
	return nil
}

func (s *FileStorage) Close() error { return nil }
