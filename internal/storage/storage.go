// Package storage keeps uploaded content files either on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("stored file not found")

type Storage interface {
	// Save stores r and returns the storage path of the new object.
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	// Open returns ErrNotFound when no object lives at path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete succeeds when the object is already gone.
	Delete(ctx context.Context, path string) error
	Mode() string
}

// objectKey builds "<folder>/<yyyy>/<mm>/<uuid><ext>".
func objectKey(filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s/%s%s",
		determineFolder(contentType),
		time.Now().Format("2006/01"),
		uuid.New().String(),
		ext,
	)
}

func determineFolder(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "photos"
	case strings.HasPrefix(contentType, "video/"):
		return "videos"
	case strings.HasPrefix(contentType, "application/pdf"),
		strings.HasPrefix(contentType, "application/msword"),
		strings.HasPrefix(contentType, "application/vnd.openxmlformats"):
		return "documents"
	default:
		return "others"
	}
}
