package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppError(ErrTypeSortKey, "bad key", nil),
			want: "[SORT_KEY] bad key",
		},
		{
			name: "with cause",
			err:  NewAppError(ErrTypeSourceNotFound, "orders.xlsx not found", fmt.Errorf("open failed")),
			want: "[SOURCE_NOT_FOUND] orders.xlsx not found: open failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewSourceNotFoundError("orders.xlsx", cause)

	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("load: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeSourceNotFound, appErr.Type)
	assert.Equal(t, "orders.xlsx", appErr.Context["source"])
}

func TestAppError_IsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want bool
	}{
		{"value coercion is soft", NewValueCoercionError("P2", "abc", nil), false},
		{"lookup miss is soft", NewLookupMiss("1234"), false},
		{"sort key aborts", NewSortKeyError(3, "E", nil), true},
		{"missing source aborts", NewSourceNotFoundError("Sheet1", nil), true},
		{"deletion order aborts", NewDeletionIndexError(5, 2), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.IsFatal())
		})
	}
}

func TestConstructors_Context(t *testing.T) {
	err := NewSortKeyError(7, "C", errors.New("text vs number"))
	assert.Equal(t, 7, err.Context["row"])
	assert.Equal(t, "C", err.Context["column"])
	assert.Contains(t, err.Error(), "row 7 column C")

	del := NewDeletionIndexError(4, 9)
	assert.Equal(t, 4, del.Context["index"])
	assert.Equal(t, 9, del.Context["previous"])

	unsupported := NewUnsupportedFormatError(".xls")
	assert.Equal(t, ErrTypeUnsupported, unsupported.Type)
	assert.Equal(t, ".xls", unsupported.Context["extension"])
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("x"), ""},
		{"direct", NewLookupMiss("k"), ErrTypeLookupMiss},
		{"wrapped", fmt.Errorf("stage: %w", NewSortKeyError(1, "B", nil)), ErrTypeSortKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
			if tt.want != "" {
				assert.True(t, Is(tt.err, tt.want))
			}
		})
	}
}

func TestWithContext_NilMap(t *testing.T) {
	err := &AppError{Type: ErrTypeConfig, Message: "bad"}
	err.WithContext("key", "value")
	assert.Equal(t, "value", err.Context["key"])
}
