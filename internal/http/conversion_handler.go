package http

import (
	"encoding/json"
	"net/http"

	"github.com/sparkeditor/spark/internal/domain"
	"github.com/sparkeditor/spark/pkg/logger"
)

// ConversionHandler exposes the stateless import and export endpoints
type ConversionHandler struct {
	service domain.ConversionService
	logger  logger.Logger
}

func NewConversionHandler(service domain.ConversionService, logger logger.Logger) *ConversionHandler {
	return &ConversionHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ConversionHandler) RegisterRoutes(mux *http.ServeMux) {
	// Register RPC-style endpoints with dot notation
	mux.HandleFunc("/api/documents.import", h.handleImport)
	mux.HandleFunc("/api/documents.importBatch", h.handleImportBatch)
	mux.HandleFunc("/api/documents.export", h.handleExport)
}

func (h *ConversionHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ImportRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	result, err := h.service.Import(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to import markup")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ConversionHandler) handleImportBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ImportBatchRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	results, err := h.service.ImportBatch(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to import batch")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}

func (h *ConversionHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ExportRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	markup, err := h.service.Export(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to export sections")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"html": markup,
	})
}

// decodeBody reads a JSON request body into v and writes the error response
// when it cannot
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, log logger.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if status, msg, _ := errorStatus(err); status == http.StatusRequestEntityTooLarge {
			WriteJSONError(w, msg, status)
			return false
		}
		log.WithField("error", err.Error()).Debug("Failed to decode request body")
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error, log logger.Logger, message string) {
	status, clientMessage, unexpected := errorStatus(err)
	if unexpected {
		log.WithField("error", err.Error()).Error(message)
		clientMessage = message
	}
	WriteJSONError(w, clientMessage, status)
}
