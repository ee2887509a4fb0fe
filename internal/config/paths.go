package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the resolved directories a run reads from and writes to
type Paths struct {
	BaseDir      string
	InputDir     string
	OutputDir    string
	HappojangDir string
	UploadDir    string
	LogsDir      string
	ChannelsFile string
}

// ResolvePaths joins every relative entry of cfg onto base.
// The happojang directory lives under the output directory unless it is absolute.
func ResolvePaths(cfg PathsConfig, base string) *Paths {
	resolve := func(root, p string) string {
		if p == "" {
			return ""
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(root, p)
	}

	output := resolve(base, cfg.OutputDir)
	return &Paths{
		BaseDir:      base,
		InputDir:     resolve(base, cfg.InputDir),
		OutputDir:    output,
		HappojangDir: resolve(output, cfg.HappojangDir),
		UploadDir:    resolve(base, cfg.UploadDir),
		LogsDir:      resolve(base, cfg.LogsDir),
		ChannelsFile: resolve(base, cfg.ChannelsFile),
	}
}

// EnsureDirectories creates the output, upload and log directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.HappojangDir, p.UploadDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OutputFor returns where a finished workbook for input is written.
// Bundle runs go to the happojang directory.
func (p *Paths) OutputFor(input string, bundle bool) string {
	dir := p.OutputDir
	if bundle {
		dir = p.HappojangDir
	}
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, OutputName(input))
}

// OutputSuffix marks a processed workbook
const OutputSuffix = "_매크로_완료"

// OutputName derives "<stem>_매크로_완료.xlsx" from any input path
func OutputName(input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + OutputSuffix + ".xlsx"
}

// IsOutputName reports whether path already is a macro output
func IsOutputName(path string) bool {
	base := filepath.Base(path)
	return strings.Contains(strings.TrimSuffix(base, filepath.Ext(base)), OutputSuffix)
}

// LogPathResolution writes the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("paths_resolved",
		slog.String("base_dir", p.BaseDir),
		slog.String("input_dir", p.InputDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("happojang_dir", p.HappojangDir),
		slog.String("upload_dir", p.UploadDir),
		slog.String("channels_file", p.ChannelsFile))
}
