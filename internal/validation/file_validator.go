package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ordermacro/internal/config"
	"ordermacro/internal/workbook"
)

// FileValidator checks order exports and directories before a run touches them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory checks that dir exists and is a directory.
// It returns how many loadable order exports dir holds; zero is not an error.
func (v *FileValidator) ValidateInputDirectory(dir string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("input_directory_missing",
			slog.String("directory", dir))
		return 0, fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if v.classify(e.Name()) == "" {
			count++
		}
	}

	if count == 0 {
		v.logger.Warn("input_directory_empty",
			slog.String("directory", dir))
	} else {
		v.logger.Debug("input_directory_validated",
			slog.String("directory", dir),
			slog.Int("files_found", count))
	}
	return count, nil
}

// ValidateOutputDirectory ensures dir exists or can be created and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("output_directory_not_writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return nil
}

// ValidateOrderFile checks that path is a readable, non-empty order export
// in a supported format that is not itself a macro output
func (v *FileValidator) ValidateOrderFile(path string) error {
	if reason := v.classify(filepath.Base(path)); reason != "" {
		return fmt.Errorf("file %s %s", path, reason)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file %s is empty", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	f.Close()

	v.logger.Debug("order_file_validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// classify returns why name cannot be an order export, or "" when it can
func (v *FileValidator) classify(name string) string {
	switch {
	case strings.HasPrefix(name, "~$"):
		return "is a temporary Excel file"
	case strings.HasPrefix(name, "."):
		return "is a hidden file"
	case strings.EqualFold(filepath.Ext(name), ".xls"):
		return "is a legacy .xls workbook, save it as .xlsx first"
	case !workbook.IsSupported(name):
		return fmt.Sprintf("has unsupported extension %q", filepath.Ext(name))
	case config.IsOutputName(name):
		return "is already a macro output"
	}
	return ""
}
