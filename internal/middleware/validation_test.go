package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "ordermacro/internal/errors"
)

type uploadForm struct {
	Mode    string `json:"mode" validate:"required,macro_mode"`
	Channel string `json:"channel" validate:"required,macro_channel"`
	File    string `json:"file" validate:"required,order_file"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name   string
		form   uploadForm
		fields []string
	}{
		{"valid", uploadForm{"erp", "zigzag", "orders.xlsx"}, nil},
		{"korean channel and happojang", uploadForm{"happojang", "지그재그", "orders.CSV"}, nil},
		{"legacy xls", uploadForm{"erp", "brandi", "orders.xls"}, []string{"file"}},
		{"unknown mode and channel", uploadForm{"retail", "coupang", "a.xlsm"}, []string{"mode", "channel"}},
		{"missing everything", uploadForm{}, []string{"mode", "channel", "file"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.form)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

			details, ok := apiErr.Details.([]apierrors.ValidationError)
			require.True(t, ok)
			var got []string
			for _, d := range details {
				got = append(got, d.Field)
				assert.NotEmpty(t, d.Message)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestUploadLimit(t *testing.T) {
	eh := apierrors.NewErrorHandler(discardLogger, false)
	h := UploadLimit(8, eh, discardLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		n, err := r.Body.Read(buf)
		if err != nil && n == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "PAYLOAD_TOO_LARGE")
}

func TestContentTypeValidator(t *testing.T) {
	eh := apierrors.NewErrorHandler(discardLogger, false)
	h := ContentTypeValidator(eh, "multipart/form-data")(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		method string
		ct     string
		want   int
	}{
		{"get skips", http.MethodGet, "", http.StatusOK},
		{"multipart", http.MethodPost, "multipart/form-data; boundary=x", http.StatusOK},
		{"json rejected", http.MethodPost, "application/json", http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.ct != "" {
				req.Header.Set("Content-Type", tt.ct)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
