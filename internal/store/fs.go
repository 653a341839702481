package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSStore keeps objects as plain files under a root directory. Writes go
// through a temp file + rename so readers never see a torn object. It has no
// conditional write: concurrent writers race and the last rename wins.
type FSStore struct {
	Root string
}

func NewFSStore(root string) (*FSStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("fs store: missing root dir")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{Root: root}, nil
}

func (s *FSStore) objectPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || strings.Contains(path, "..") {
		return "", fmt.Errorf("fs store: invalid object path %q", path)
	}
	return filepath.Join(s.Root, filepath.FromSlash(path)), nil
}

func (s *FSStore) Has(ctx context.Context, path string) (bool, error) {
	p, err := s.objectPath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *FSStore) Get(ctx context.Context, path string) ([]byte, error) {
	p, err := s.objectPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotExist
		}
		return nil, err
	}
	return b, nil
}

func (s *FSStore) Put(ctx context.Context, path string, data []byte) error {
	p, err := s.objectPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), filepath.Base(p)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}
