package workbook

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	apperrors "ordermacro/internal/errors"
)

// Supported input extensions
var SupportedExtensions = []string{".xlsx", ".xlsm", ".csv"}

// Loader returns a document for a file path
type Loader interface {
	Load(ctx context.Context, path string) (*Document, error)
}

// Sink persists a finished document and returns where it was written
type Sink interface {
	Save(ctx context.Context, doc *Document, path string) (string, error)
}

// FileStore is the filesystem Loader and Sink
type FileStore struct{}

// Load implements Loader
func (FileStore) Load(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(path)
}

// Save implements Sink
func (FileStore) Save(ctx context.Context, doc *Document, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := Save(doc, path); err != nil {
		return "", err
	}
	return path, nil
}

// Load dispatches on the file extension
func Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewSourceNotFoundError(path, err)
		}
		return nil, apperrors.NewStorageError("stat "+path, err)
	}
	if info.IsDir() {
		return nil, apperrors.NewSourceNotFoundError(path, errors.New("is a directory"))
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	case ".csv":
		return LoadCSV(path)
	default:
		return nil, apperrors.NewUnsupportedFormatError(ext)
	}
}

// IsSupported reports whether path has a loadable extension
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
