package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", NotFound("Thread not found"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("Error while creating thread: %w", NotFound("Thread not found")), http.StatusNotFound},
		{"validation", Validation("Text is too short"), http.StatusBadRequest},
		{"connection", &ConnectionError{Err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable},
		{"partial write over connection", &PartialWriteError{Id: "t", Step: "invalidation", Err: &ConnectionError{Err: errors.New("x")}}, http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusCode(tt.err))
		})
	}
}

func TestCategories(t *testing.T) {
	assert.ErrorIs(t, NotFound("x"), ErrNotFound)
	assert.ErrorIs(t, Validation("x"), ErrValidation)
	assert.ErrorIs(t, &ConnectionError{Err: errors.New("x")}, ErrConnection)
	assert.ErrorIs(t, &PartialWriteError{Err: errors.New("x")}, ErrPartialWrite)
	assert.NotErrorIs(t, NotFound("x"), ErrValidation)
}
