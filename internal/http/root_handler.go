package http

import (
	"net/http"
	"strings"
)

// RootHandler answers the API root, the health check and unknown paths
type RootHandler struct {
	version      string
	storeEnabled bool
}

func NewRootHandler(version string, storeEnabled bool) *RootHandler {
	return &RootHandler{
		version:      version,
		storeEnabled: storeEnabled,
	}
}

func (h *RootHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/", h.Handle)
}

func (h *RootHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" || r.URL.Path == "/api" || r.URL.Path == "/api/" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":        "api running",
			"version":       h.version,
			"store_enabled": h.storeEnabled,
		})
		return
	}

	if strings.HasPrefix(r.URL.Path, "/api/documents.") && !h.storeEnabled {
		WriteJSONError(w, "Document store is disabled", http.StatusNotFound)
		return
	}

	WriteJSONError(w, "Not found", http.StatusNotFound)
}

func (h *RootHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
