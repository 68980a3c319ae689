package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sparkeditor/spark/internal/domain"
)

// WriteJSONError writes a JSON error response with the given message and status code.
// It sets the Content-Type header to application/json and automatically formats
// the response as {"error": "message"}.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeHTML writes markup as a text/html response
func writeHTML(w http.ResponseWriter, status int, markup string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(markup))
}

// errorStatus maps domain errors to an HTTP status and a client message. The
// last result reports whether the error is unexpected.
func errorStatus(err error) (int, string, bool) {
	var (
		validation domain.ValidationError
		tooLarge   *domain.ErrInputTooLarge
		maxBytes   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message, false
	case domain.IsNotFound(err):
		return http.StatusNotFound, err.Error(), false
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, tooLarge.Error(), false
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "Request body too large", false
	default:
		return http.StatusInternalServerError, "Internal server error", true
	}
}
