package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cppla/momentum/ledger"
)

// FileStore keeps one JSON document per profile under a data directory.
type FileStore struct {
	dir string
}

var _ ledger.Store = (*FileStore)(nil)

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(profile string) (string, error) {
	if profile == "" || profile == "." || profile == ".." || strings.ContainsAny(profile, `/\`) {
		return "", fmt.Errorf("invalid profile id %q", profile)
	}
	return filepath.Join(s.dir, profile+".json"), nil
}

func (s *FileStore) Load(ctx context.Context, profile string) ([]byte, error) {
	_ = ctx

	p, err := s.path(profile)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ledger.ErrNoDocument
		}
		return nil, err
	}
	return b, nil
}

// Save writes through a temp file and rename so readers never see a partial document.
func (s *FileStore) Save(ctx context.Context, profile string, doc []byte) error {
	_ = ctx

	p, err := s.path(profile)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, profile+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
