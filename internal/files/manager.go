package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/workbook"
)

// Manager stores uploaded order files
type Manager struct {
	uploadDir string
	maxBytes  int64
	logger    *slog.Logger
}

// NewManager creates a manager writing into uploadDir. maxBytes <= 0 disables the size limit.
func NewManager(uploadDir string, maxBytes int64, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
		logger:    logger.With(slog.String("component", "files")),
	}
}

// SaveUpload copies r into the upload directory. The stored name keeps the
// original base name behind a unique prefix, so output names stay readable.
func (m *Manager) SaveUpload(name string, r io.Reader) (string, error) {
	base := sanitizeName(name)
	if !workbook.IsSupported(base) {
		return "", apperrors.NewUnsupportedFormatError(strings.ToLower(filepath.Ext(base)))
	}
	if err := os.MkdirAll(m.uploadDir, 0755); err != nil {
		return "", apperrors.NewStorageError("failed to create upload directory", err)
	}

	path := filepath.Join(m.uploadDir, uuid.NewString()[:8]+"_"+base)
	dst, err := os.Create(path)
	if err != nil {
		return "", apperrors.NewStorageError("failed to create upload file", err)
	}

	src := r
	if m.maxBytes > 0 {
		src = io.LimitReader(r, m.maxBytes+1)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", apperrors.NewStorageError("failed to write upload", err)
	}
	if m.maxBytes > 0 && n > m.maxBytes {
		os.Remove(path)
		return "", apperrors.NewAppValidationError(fmt.Sprintf("upload exceeds %d bytes", m.maxBytes)).
			WithContext("max_bytes", m.maxBytes)
	}

	m.logger.Debug("upload_saved",
		slog.String("name", base),
		slog.String("path", path),
		slog.Int64("bytes", n))
	return path, nil
}

// Remove deletes a stored upload. Missing files are not an error.
func (m *Manager) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return base
}
