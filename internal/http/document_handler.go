package http

import (
	"net/http"

	"github.com/sparkeditor/spark/internal/domain"
	"github.com/sparkeditor/spark/pkg/logger"
)

// DocumentHandler exposes the document store. It is only registered when the
// store is enabled.
type DocumentHandler struct {
	service domain.DocumentService
	logger  logger.Logger
}

func NewDocumentHandler(service domain.DocumentService, logger logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger,
	}
}

func (h *DocumentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/documents.create", h.handleCreate)
	mux.HandleFunc("/api/documents.update", h.handleUpdate)
	mux.HandleFunc("/api/documents.get", h.handleGet)
	mux.HandleFunc("/api/documents.list", h.handleList)
	mux.HandleFunc("/api/documents.delete", h.handleDelete)
	mux.HandleFunc("/api/documents.render", h.handleRender)
}

func (h *DocumentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CreateDocumentRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	doc, err := h.service.CreateFromHTML(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to create document")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"document": doc,
	})
}

func (h *DocumentHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.UpdateDocumentRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	doc, err := h.service.Save(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to update document")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"document": doc,
	})
}

func (h *DocumentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.GetDocumentRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		writeServiceError(w, err, h.logger, "Invalid request")
		return
	}

	doc, err := h.service.Get(r.Context(), req.ID)
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to get document")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"document": doc,
	})
}

func (h *DocumentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ListDocumentsRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		writeServiceError(w, err, h.logger, "Invalid request")
		return
	}

	list, err := h.service.List(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to list documents")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *DocumentHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.DeleteDocumentRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, err, h.logger, "Invalid request")
		return
	}

	if err := h.service.Delete(r.Context(), req.ID); err != nil {
		writeServiceError(w, err, h.logger, "Failed to delete document")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"success": true,
	})
}

// handleRender serves a stored document as HTML rather than JSON
func (h *DocumentHandler) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.RenderDocumentRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		writeServiceError(w, err, h.logger, "Invalid request")
		return
	}

	markup, err := h.service.Render(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to render document")
		return
	}

	writeHTML(w, http.StatusOK, markup)
}
