package handlers

import (
	"net/http"

	"github.com/rs/cors"
)

// Routes builds the full HTTP handler: task API, health, event feed and
// metrics behind the middleware chain.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.HandleRoot)
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/tasks", h.HandleTasks)
	mux.HandleFunc("/tasks/", h.HandleTaskByID)
	mux.HandleFunc("/ws", h.HandleWebSocket)
	if h.Metrics != nil {
		mux.Handle("/metrics", h.Metrics.Handler())
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   h.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return RequestID(h.instrument(Recover(c.Handler(mux))))
}
