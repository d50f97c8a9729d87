package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type Local struct {
	baseDir string
}

func NewLocal(baseDir string) (*Local, error) {
	for _, dir := range []string{"photos", "videos", "documents", "others"} {
		if err := os.MkdirAll(filepath.Join(baseDir, dir), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("invalid base path: %v", err)
	}
	return &Local{baseDir: abs}, nil
}

func (l *Local) Mode() string { return "local" }

// Dir is the absolute directory files are kept under.
func (l *Local) Dir() string { return l.baseDir }

func (l *Local) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	key := objectKey(filename, contentType)
	full, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %v", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("failed to save file: %v", err)
	}
	return key, nil
}

func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	full, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (l *Local) Delete(ctx context.Context, key string) error {
	full, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

// resolve maps a storage key to a path that must stay under baseDir.
func (l *Local) resolve(key string) (string, error) {
	key = strings.TrimPrefix(filepath.FromSlash(key), string(filepath.Separator))
	full := filepath.Join(l.baseDir, key)
	if full != l.baseDir && !strings.HasPrefix(full, l.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("file path outside uploads directory")
	}
	return full, nil
}
