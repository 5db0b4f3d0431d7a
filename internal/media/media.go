// Package media stores career guide images on the local disk or in an
// S3-compatible bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 5 << 20

var (
	// ErrUnsupportedType is returned for uploads that are not an accepted image type.
	ErrUnsupportedType = errors.New("media: unsupported image type")
	// ErrTooLarge is returned for uploads above MaxImageSize.
	ErrTooLarge = errors.New("media: image too large")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Store persists uploaded objects. Put returns the stored path, which is what
// gets recorded on a guide; URL turns it back into something a browser can load.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// NewObjectName returns a collision-free object name that keeps the extension
// of filename.
func NewObjectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return uuid.NewString() + ext
}

// ExtensionFor returns the canonical file extension of an accepted image type.
func ExtensionFor(contentType string) string {
	return imageExtensions[contentType]
}

// ValidateImage checks the declared content type and size of an upload.
func ValidateImage(contentType string, size int64) error {
	if _, ok := imageExtensions[contentType]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	if size > MaxImageSize {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	return nil
}

// Resolve returns the display URL of a stored path. Absolute URLs recorded by
// older rows pass through unchanged.
func Resolve(s Store, path string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	case s == nil:
		return path
	}
	return s.URL(path)
}
