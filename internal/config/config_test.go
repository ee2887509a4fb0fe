package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadFrom(t *testing.T) {
	chdir(t, t.TempDir())

	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 4, cfg.Batch.Workers)
				assert.Equal(t, "sheet", cfg.Lookup.Source)
				assert.Equal(t, "happojang", cfg.Paths.HappojangDir)
			},
		},
		{
			name: "file overrides defaults",
			file: "server:\n  port: 9000\nbatch:\n  workers: 2\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 2, cfg.Batch.Workers)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9000\n",
			env:  map[string]string{"MACRO_SERVER_PORT": "9100", "MACRO_LOGGING_LEVEL": "debug"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"MACRO_SERVER_PORT": "70000"},
			wantErr: "Port",
		},
		{
			name:    "google lookup needs a spreadsheet",
			file:    "lookup:\n  source: google\n",
			wantErr: "SpreadsheetID",
		},
		{
			name:    "unknown log output",
			file:    "logging:\n  output: syslog\n",
			wantErr: "Output",
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, t.TempDir(), "config.yaml", tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, ".env", "MACRO_BATCH_WORKERS=7\n")
	t.Cleanup(func() { os.Unsetenv("MACRO_BATCH_WORKERS") })

	cfg, err := LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Batch.Workers)
}

func TestValidate_ForcesJSONAndLogFile(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "both"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "logs/macro.log", cfg.Logging.FilePath)
}

func TestResolvePaths(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "srv", "macro")
	abs := filepath.Join(string(filepath.Separator), "data", "bundles")

	p := ResolvePaths(PathsConfig{
		InputDir:     "in",
		OutputDir:    "out",
		HappojangDir: "happojang",
		UploadDir:    "uploads",
	}, base)

	assert.Equal(t, filepath.Join(base, "in"), p.InputDir)
	assert.Equal(t, filepath.Join(base, "out"), p.OutputDir)
	assert.Equal(t, filepath.Join(base, "out", "happojang"), p.HappojangDir)
	assert.Empty(t, p.LogsDir)

	p = ResolvePaths(PathsConfig{OutputDir: "out", HappojangDir: abs}, base)
	assert.Equal(t, abs, p.HappojangDir)
}

func TestOutputFor(t *testing.T) {
	p := &Paths{OutputDir: "out", HappojangDir: filepath.Join("out", "happojang")}

	assert.Equal(t, filepath.Join("out", "주문_매크로_완료.xlsx"), p.OutputFor(filepath.Join("in", "주문.xlsx"), false))
	assert.Equal(t, filepath.Join("out", "happojang", "orders_매크로_완료.xlsx"), p.OutputFor("orders.csv", true))

	empty := &Paths{}
	assert.Equal(t, filepath.Join("in", "a_매크로_완료.xlsx"), empty.OutputFor(filepath.Join("in", "a.xlsm"), false))
}

func TestIsOutputName(t *testing.T) {
	assert.True(t, IsOutputName("주문_매크로_완료.xlsx"))
	assert.True(t, IsOutputName(filepath.Join("x", "a_매크로_완료_2.xlsx")))
	assert.False(t, IsOutputName("주문.xlsx"))
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	p := ResolvePaths(Default().Paths, base)
	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{p.OutputDir, p.HappojangDir, p.UploadDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestLoadChannels(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		o, err := LoadChannels(filepath.Join(dir, "none.yaml"))
		require.NoError(t, err)
		assert.Empty(t, o)
	})

	t.Run("overrides", func(t *testing.T) {
		path := writeFile(t, dir, "channels.yaml",
			"gmarket:\n  accounts:\n    새계정: OK,CL,BB\nali:\n  lookup_default: \"M\"\n")
		o, err := LoadChannels(path)
		require.NoError(t, err)

		g, ok := o.For("gmarket")
		require.True(t, ok)
		assert.Equal(t, "OK,CL,BB", g.Accounts["새계정"])

		a, ok := o.For("ali")
		require.True(t, ok)
		require.NotNil(t, a.LookupDefault)
		assert.Equal(t, "M", *a.LookupDefault)

		_, ok = o.For("zigzag")
		assert.False(t, ok)
	})

	t.Run("empty mapping rejected", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "etc:\n  accounts:\n    오케이마트: \"\"\n")
		_, err := LoadChannels(path)
		require.Error(t, err)
	})
}
