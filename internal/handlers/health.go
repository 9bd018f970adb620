package handlers

import "net/http"

// HandleHealth is a liveness probe; it never checks dependencies.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		sendError(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{
		"message": "Task Management API",
		"version": "1.0.0",
	})
}
