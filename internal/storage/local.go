package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// Local writes objects under Root and serves them at /<dir>/<name>.
type Local struct {
	Root string
}

func (s *Local) Save(_ context.Context, dir, name string, data []byte, _ string) (string, error) {
	target := filepath.Join(s.Root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(target, name), data, 0o644); err != nil {
		return "", err
	}
	return "/" + dir + "/" + name, nil
}

func (s *Local) Remove(_ context.Context, dir, name string) error {
	err := os.Remove(filepath.Join(s.Root, dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
