package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Unauthenticated("x"), http.StatusUnauthorized},
		{InvalidToken("x"), http.StatusUnauthorized},
		{New(TokenMalformed, "x"), http.StatusBadRequest},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Validation("x", nil), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{Capacity("x"), http.StatusBadRequest},
		{New(TooManyRequests, "x"), http.StatusTooManyRequests},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Status(), tt.err.Message)
	}
}

func TestFromKeepsWrappedError(t *testing.T) {
	orig := NotFound("schedule not found")
	wrapped := fmt.Errorf("load schedule: %w", orig)

	got := From(wrapped)
	assert.Same(t, orig, got)
	assert.True(t, Is(wrapped, EntityNotFound))
}

func TestFromHidesUnknownErrors(t *testing.T) {
	got := From(errors.New("pq: relation does not exist"))
	assert.Equal(t, InternalFailure, got.Kind)
	assert.Equal(t, "internal server error", got.Message)
	assert.Nil(t, From(nil))
}
