// Package images stores uploaded link images on local disk.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"shortlink/internal/links/models"
)

// PublicPrefix is the URL path images are served under.
const PublicPrefix = "/uploads/"

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// DiskStorage writes images as <uuid><ext> into a single directory.
type DiskStorage struct {
	dir      string
	maxBytes int64
}

// NewDiskStorage creates dir if needed.
func NewDiskStorage(dir string, maxBytes int64) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStorage{dir: dir, maxBytes: maxBytes}, nil
}

// Dir is the directory served under PublicPrefix.
func (s *DiskStorage) Dir() string {
	return s.dir
}

// Save writes the upload and returns its public path. Content beyond the
// size limit is a validation error even when the declared size was smaller.
func (s *DiskStorage) Save(ctx context.Context, upload *models.ImageUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := uuid.NewString() + extension(upload)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename
	}()

	written, err := io.Copy(tmp, io.LimitReader(upload.Content, s.maxBytes+1))
	closeErr := tmp.Close()
	if err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close image: %w", closeErr)
	}
	if written > s.maxBytes {
		return "", models.ImageTooLarge(s.maxBytes)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return PublicPrefix + name, nil
}

// Remove deletes the image behind publicPath. A file that is already gone is
// not an error.
func (s *DiskStorage) Remove(_ context.Context, publicPath string) error {
	name, ok := strings.CutPrefix(publicPath, PublicPrefix)
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return fmt.Errorf("image path %q is outside the upload dir", publicPath)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// extension keeps an allowed extension from the client file name and
// otherwise derives one from the content type.
func extension(upload *models.ImageUpload) string {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if allowedExtensions[ext] {
		return ext
	}
	if ext, ok := models.AllowedImageTypes[strings.ToLower(upload.ContentType)]; ok {
		return ext
	}
	return ".img"
}
