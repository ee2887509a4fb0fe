package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"ordermacro/internal/config"
)

type fixedClients int

func (f fixedClients) ClientCount() int { return int(f) }

func TestHealthService_Readiness(t *testing.T) {
	root := t.TempDir()
	ready := config.ResolvePaths(config.PathsConfig{OutputDir: "out", HappojangDir: "hp", UploadDir: "up"}, root)
	_ = ready.EnsureDirectories()

	tests := []struct {
		name   string
		paths  *config.Paths
		want   string
		failed string
	}{
		{"all writable", ready, "ready", ""},
		{"missing upload dir", &config.Paths{OutputDir: ready.OutputDir, HappojangDir: ready.HappojangDir, UploadDir: filepath.Join(root, "nope")}, "not_ready", "upload"},
		{"output dir unset", &config.Paths{HappojangDir: ready.HappojangDir, UploadDir: ready.UploadDir}, "ready", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("test", tt.paths, fixedClients(2), discardLogger)
			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, "2 clients", status.Services["websocket"].Message)
			if tt.failed != "" {
				assert.Equal(t, "not_ready", status.Services[tt.failed].Status)
			}
		})
	}
}

func TestHealthService_ReadinessFileInsteadOfDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out")
	_ = os.WriteFile(file, []byte("x"), 0644)

	hs := NewHealthService("test", &config.Paths{OutputDir: file}, nil, nil)
	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
	assert.NotContains(t, status.Services, "websocket")
}

func TestHealthService_Liveness(t *testing.T) {
	hs := NewHealthService("1.2.3", nil, nil, discardLogger)
	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Contains(t, status.Runtime, "goroutines")
}
