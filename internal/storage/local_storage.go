package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sudays/sudays-backend/pkg/logger"
)

// LocalStorage keeps blobs as files inside a single directory
type LocalStorage struct {
	baseDir string
	log     *logger.Logger
}

func NewLocalStorage(baseDir string, log *logger.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, log: log.Component("local_storage")}, nil
}

func (s *LocalStorage) Location() string {
	return s.baseDir
}

func (s *LocalStorage) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.baseDir, key), nil
}

func (s *LocalStorage) Write(ctx context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	// O_EXCL keeps keys write-once
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.log.Error("Failed to create blob", err, map[string]interface{}{"key": key})
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(p)
		s.log.Error("Failed to write blob", err, map[string]interface{}{"key": key})
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return err
	}

	s.log.Debug("Blob written", map[string]interface{}{"key": key, "size": len(data)})
	return nil
}

func (s *LocalStorage) Read(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return data, err
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
