package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"orggov-backend/internal/logger"

	"github.com/google/uuid"
)

// LocalStorageService keeps uploads on the local filesystem
type LocalStorageService struct {
	uploadsDir string
}

// NewLocalStorageService creates the uploads directory tree if needed
func NewLocalStorageService(uploadsDir string) (*LocalStorageService, error) {
	for _, sub := range []string{CategoryDocuments, CategoryPictures} {
		if err := os.MkdirAll(filepath.Join(uploadsDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", sub, err)
		}
	}
	return &LocalStorageService{uploadsDir: uploadsDir}, nil
}

func (s *LocalStorageService) SaveFile(ctx context.Context, category, filename string, reader io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := category + "/" + uuid.New().String() + ext

	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logger.Debug("Stored upload", "key", key)
	return key, nil
}

func (s *LocalStorageService) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorageService) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStorageService) ReadFile(key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// resolve maps a key to a path below uploadsDir, refusing traversal.
func (s *LocalStorageService) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.uploadsDir, clean), nil
}
