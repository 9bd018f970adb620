package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/chepyr/task-api/internal/db"
	"github.com/chepyr/task-api/internal/metrics"
	"github.com/chepyr/task-api/internal/models"
	"github.com/chepyr/task-api/internal/service"
)

const defaultRequestTimeout = 5 * time.Second

type Handler struct {
	Store          *db.Store
	Hub            *Hub
	RateLimiter    *RateLimiter
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
	CORSOrigins    []string
	Debug          bool
}

type errorResponse struct {
	Error   string              `json:"error"`
	Details []models.FieldError `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// withTaskService runs fn against a session that is released when fn returns,
// including when it panics.
func (h *Handler) withTaskService(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, svc *service.TaskService)) {
	timeout := h.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	sess, err := h.Store.Session(ctx)
	if err != nil {
		internalError(w, r, err)
		return
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Printf("[db] release session: %v", err)
		}
	}()

	fn(ctx, service.NewTaskService(sess.Tasks()))
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, errorResponse{Error: message})
}

func sendValidationError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		sendError(w, "Validation failed", http.StatusUnprocessableEntity)
		return
	}
	sendJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:   "Validation failed",
		Details: verr.Fields,
	})
}

// internalError logs err and answers with a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("[http] %s %s request_id=%s: %v",
		r.Method, r.URL.Path, RequestIDFromContext(r.Context()), err)
	sendError(w, "Internal server error", http.StatusInternalServerError)
}
