package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ordermacro/internal/config"
	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/operations"
	"ordermacro/internal/services"
	"ordermacro/pkg/contracts/domain"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// MockMacroRunner is a mock implementation of MacroRunner
type MockMacroRunner struct {
	mock.Mock
}

func (m *MockMacroRunner) Run(ctx context.Context, req services.RunRequest) (*domain.RunResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunResult), args.Error(1)
}

func (m *MockMacroRunner) GetRun(id string) (*domain.RunResult, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunResult), args.Error(1)
}

func (m *MockMacroRunner) ListRuns(filter operations.RunFilter) []*domain.RunResult {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.RunResult)
}

func (m *MockMacroRunner) Macros() []services.MacroInfo {
	args := m.Called()
	return args.Get(0).([]services.MacroInfo)
}

// memUploads records saved and removed uploads
type memUploads struct {
	mu      sync.Mutex
	saved   map[string][]byte
	removed []string
}

func newMemUploads() *memUploads {
	return &memUploads{saved: make(map[string][]byte)}
}

func (u *memUploads) SaveUpload(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	path := "/uploads/" + name
	u.saved[path] = data
	return path, nil
}

func (u *memUploads) Remove(path string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.removed = append(u.removed, path)
	return nil
}

func newTestRouter(t *testing.T, runner MacroRunner, uploads UploadStore, server config.ServerConfig) chi.Router {
	t.Helper()
	eh := apperrors.NewErrorHandler(discardLogger, false)
	return NewRouter(RouterDeps{
		Macros: NewMacroHandler(runner, uploads, eh, discardLogger),
		Health: NewHealthHandler(services.NewHealthService("test", nil, nil, discardLogger), discardLogger),
		Server: server,
		Errors: eh,
		Logger: discardLogger,
	})
}

// uploadRequest builds a multipart POST with an optional file part and extra fields
func uploadRequest(t *testing.T, target, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
