package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkeditor/spark/internal/domain"
)

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSONError(w, "Invalid request body", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestWriteHTML(t *testing.T) {
	w := httptest.NewRecorder()

	writeHTML(w, http.StatusOK, "<p>Hi</p>")

	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<p>Hi</p>", w.Body.String())
}

func TestErrorStatus(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		status     int
		message    string
		unexpected bool
	}{
		{
			name:    "validation",
			err:     fmt.Errorf("item 2: %w", domain.NewValidationError("name is required")),
			status:  http.StatusBadRequest,
			message: "name is required",
		},
		{
			name:    "not found",
			err:     domain.ErrDocumentNotFound("abc"),
			status:  http.StatusNotFound,
			message: "document not found with ID: abc",
		},
		{
			name:    "input too large",
			err:     &domain.ErrInputTooLarge{Size: 10, Limit: 5},
			status:  http.StatusRequestEntityTooLarge,
			message: "input of 10 bytes exceeds the 5 byte limit",
		},
		{
			name:    "body too large",
			err:     &http.MaxBytesError{Limit: 5},
			status:  http.StatusRequestEntityTooLarge,
			message: "Request body too large",
		},
		{
			name:       "unexpected",
			err:        errors.New("db down"),
			status:     http.StatusInternalServerError,
			message:    "Internal server error",
			unexpected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, message, unexpected := errorStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.message, message)
			assert.Equal(t, tc.unexpected, unexpected)
		})
	}
}
