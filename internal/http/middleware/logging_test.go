package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkeditor/spark/pkg/logger"
)

func TestLoggingMiddleware(t *testing.T) {
	t.Run("logs handled requests at debug", func(t *testing.T) {
		log := logger.NewTestLogger(t)
		handler := LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/documents.create", nil))

		entries := log.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "debug", entries[0].Level)
		assert.Equal(t, http.StatusCreated, entries[0].Fields["status"])
		assert.Equal(t, "/api/documents.create", entries[0].Fields["path"])
	})

	t.Run("logs server errors at error", func(t *testing.T) {
		log := logger.NewTestLogger(t)
		handler := LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/documents.list", nil))

		assert.Equal(t, []string{"Request failed"}, log.Messages("error"))
	})
}
