package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"help-desk/domain"

	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name     string
		err      error
		expected domain.ErrorCategory
	}{
		{"nil error", nil, domain.ErrorCategoryNone},
		{"wrapped auth failure", fmt.Errorf("%w: status 401", ErrProviderAuth), domain.ErrorCategoryAuth},
		{"rate limit", ErrProviderRateLimited, domain.ErrorCategoryRateLimit},
		{"provider timeout", ErrProviderTimeout, domain.ErrorCategoryTimeout},
		{"context deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), domain.ErrorCategoryTimeout},
		{"anything else", fmt.Errorf("boom"), domain.ErrorCategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Equal(tt.expected, Categorize(tt.err))
		})
	}
}

func TestMapToHTTPStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{nil, http.StatusOK},
		{ErrEmptyQuestion, http.StatusBadRequest},
		{fmt.Errorf("%w: app too long", ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("%w: 2001 characters", ErrQuestionTooLong), http.StatusRequestEntityTooLarge},
		{ErrInvalidToken, http.StatusUnauthorized},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, MapToHTTPStatus(tt.err))
	}
}
