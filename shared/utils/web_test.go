package utils

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidate(t *testing.T) {
	type TestStruct struct {
		Field1 string `json:"field1" validate:"required"`
		Field2 int    `json:"field2"`
	}

	tests := []struct {
		name        string
		requestBody string
		expectedErr *internal_errors.ErrorWithStatusCode
	}{
		{
			name:        "Valid JSON and Validation",
			requestBody: `{"field1": "value", "field2": 123}`,
		},
		{
			name:        "Valid JSON and Validation [2]",
			requestBody: `{"field1": "value"}`,
		},
		{
			name:        "Invalid JSON",
			requestBody: `{"field1": "value", "field2": 123`,
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400},
		},
		{
			name:        "Missing Required Field",
			requestBody: `{"field2": 123}`,
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: 400},
		},
		{
			name:        "Empty Body",
			requestBody: "",
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400},
		},
	}

	logger.Discard()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte(tt.requestBody)))

			err := DecodeValidate(req.Body, &TestStruct{})

			if tt.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			var e *internal_errors.ErrorWithStatusCode
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.expectedErr.Message, e.Message)
			assert.Equal(t, tt.expectedErr.StatusCode, e.StatusCode)
			assert.ErrorIs(t, err, internal_errors.ErrValidation)
		})
	}
}

func TestWriteErrorAndStatusCode(t *testing.T) {
	logger.Discard()

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{"not found", internal_errors.NotFound("Thread not found"), http.StatusNotFound, "Thread not found\n"},
		{"validation", internal_errors.Validation("Text is too short"), http.StatusBadRequest, "Text is too short\n"},
		{"connection", &internal_errors.ConnectionError{Err: errors.New("refused")}, http.StatusServiceUnavailable, "Service unavailable\n"},
		{"internal details hidden", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "Internal server error\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteErrorAndStatusCode(rr, tt.err)
			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Equal(t, tt.expectedBody, rr.Body.String())
		})
	}
}

func TestParseId(t *testing.T) {
	id := NewId()

	parsed, err := ParseId(id, "thread ID")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.True(t, IsId(id))

	_, err = ParseId("nonexistent", "thread ID")
	assert.ErrorIs(t, err, internal_errors.ErrValidation)
	assert.EqualError(t, err, "Invalid thread ID")
	assert.False(t, IsId("nonexistent"))
}
