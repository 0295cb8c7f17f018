package apierror_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/paygate-io/paygate/internal/apierror"
	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	details := "Some internal error details"
	apiErr := apierror.NewAPIError(apierror.ErrInternalServer, "Something went wrong", details)

	assert.Equal(t, apierror.ErrInternalServer, apiErr.Code)
	assert.Equal(t, "Something went wrong", apiErr.Message)
	assert.Equal(t, details, apiErr.Details)
	assert.Equal(t, "INTERNAL_SERVER_ERROR: Something went wrong", apiErr.Error())
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "NotFound Error",
			err:      apierror.NewAPIError(apierror.ErrNotFound, "Resource not found", nil),
			expected: http.StatusNotFound,
		},
		{
			name:     "Conflict Error",
			err:      apierror.NewAPIError(apierror.ErrConflict, "Conflict occurred", nil),
			expected: http.StatusConflict,
		},
		{
			name:     "InvalidInput Error",
			err:      apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid input", nil),
			expected: http.StatusBadRequest,
		},
		{
			name:     "Unprocessable Error",
			err:      apierror.NewAPIError(apierror.ErrUnprocessable, "No wallet for address", nil),
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "Unavailable Error",
			err:      apierror.NewAPIError(apierror.ErrUnavailable, "Queue is down", nil),
			expected: http.StatusServiceUnavailable,
		},
		{
			name:     "InternalServerError",
			err:      apierror.NewAPIError(apierror.ErrInternalServer, "Something broke", nil),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "Plain error",
			err:      errors.New("not an api error"),
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, apierror.MapErrorToHTTPStatus(tt.err))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, apierror.IsTransient(apierror.NewAPIError(apierror.ErrUnavailable, "store down", nil)))
	assert.False(t, apierror.IsTransient(apierror.NewAPIError(apierror.ErrConflict, "duplicate", nil)))
	assert.False(t, apierror.IsTransient(errors.New("plain")))
}
