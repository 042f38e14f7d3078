package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "eventify-backend/pkg/app_errors"
	"eventify-backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DiskStoreImpl struct {
	dir         string
	maxFileSize int64
	now         func() time.Time
}

func NewDiskStore(dir string, maxFileSize int64) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStoreImpl{
		dir:         dir,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}, nil
}

// Save writes the file as <field>-<unix millis>-<uuid><ext> under the upload dir.
func (s *DiskStoreImpl) Save(ctx context.Context, field string, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", apperrors.NewValidationError(fmt.Sprintf("%s is required", field))
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return "", apperrors.NewValidationError(fmt.Sprintf("%s exceeds the %d byte limit", field, s.maxFileSize))
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("%s-%d-%s%s", field, s.now().UnixMilli(), uuid.New().String(), ext)
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close blob: %w", err)
	}

	logger.WithComponent("blob").Debug("blob saved", zap.String("path", path), zap.Int64("size", file.Size))
	return path, nil
}

func (s *DiskStoreImpl) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	// Only paths inside the upload dir may be removed.
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q", ErrOutsideStore, path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}
