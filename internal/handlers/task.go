package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/chepyr/task-api/internal/models"
	"github.com/chepyr/task-api/internal/service"
)

const maxBodyBytes = 1 << 20 // 1MB

/*
handles routes:
- GET /tasks - list all tasks
- POST /tasks - create a new task
*/
func (h *Handler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTasks(w, r)
	case http.MethodPost:
		h.createTask(w, r)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

/*
routes:
- GET /tasks/{id}
- PUT /tasks/{id}
- DELETE /tasks/{id}
*/
func (h *Handler) HandleTaskByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/tasks/")
	if idStr == "" {
		h.HandleTasks(w, r)
		return
	}
	if strings.Contains(idStr, "/") {
		sendError(w, "Not found", http.StatusNotFound)
		return
	}
	taskID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		sendValidationError(w, models.NewValidationError("task_id", "must be an integer"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getTask(w, r, taskID)
	case http.MethodPut:
		h.updateTask(w, r, taskID)
	case http.MethodDelete:
		h.deleteTask(w, r, taskID)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	h.withTaskService(w, r, func(ctx context.Context, svc *service.TaskService) {
		tasks, err := svc.ListTasks(ctx)
		if err != nil {
			internalError(w, r, err)
			return
		}
		sendJSON(w, http.StatusOK, models.NewTaskResponses(tasks))
	})
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	input, err := models.DecodeTaskCreate(body)
	if err != nil {
		sendValidationError(w, err)
		return
	}

	h.withTaskService(w, r, func(ctx context.Context, svc *service.TaskService) {
		task, err := svc.CreateTask(ctx, input)
		if err != nil {
			internalError(w, r, err)
			return
		}
		h.publish(EventTaskCreated, task.ID, task)
		sendJSON(w, http.StatusOK, models.NewTaskResponse(task))
	})
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request, taskID int64) {
	h.withTaskService(w, r, func(ctx context.Context, svc *service.TaskService) {
		task, err := svc.GetTask(ctx, taskID)
		if errors.Is(err, models.ErrTaskNotFound) {
			sendError(w, "Task not found", http.StatusNotFound)
			return
		}
		if err != nil {
			internalError(w, r, err)
			return
		}
		sendJSON(w, http.StatusOK, models.NewTaskResponse(task))
	})
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request, taskID int64) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	input, err := models.DecodeTaskUpdate(body)
	if err != nil {
		sendValidationError(w, err)
		return
	}

	h.withTaskService(w, r, func(ctx context.Context, svc *service.TaskService) {
		task, err := svc.UpdateTask(ctx, taskID, input)
		if errors.Is(err, models.ErrTaskNotFound) {
			sendError(w, "Task not found", http.StatusNotFound)
			return
		}
		if err != nil {
			internalError(w, r, err)
			return
		}
		if !input.Empty() {
			h.publish(EventTaskUpdated, task.ID, task)
		}
		sendJSON(w, http.StatusOK, models.NewTaskResponse(task))
	})
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request, taskID int64) {
	h.withTaskService(w, r, func(ctx context.Context, svc *service.TaskService) {
		deleted, err := svc.DeleteTask(ctx, taskID)
		if err != nil {
			internalError(w, r, err)
			return
		}
		if !deleted {
			sendError(w, "Task not found", http.StatusNotFound)
			return
		}
		h.publish(EventTaskDeleted, taskID, nil)
		sendJSON(w, http.StatusOK, messageResponse{Message: "Task deleted successfully"})
	})
}

func (h *Handler) publish(event string, taskID int64, task *models.Task) {
	h.Metrics.IncTaskEvent(event)
	evt := Event{Event: event, TaskID: taskID}
	if task != nil {
		view := models.NewTaskResponse(task)
		evt.Task = &view
	}
	h.Hub.Broadcast(evt)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		sendError(w, "Cannot read request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}
