package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/auth"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

var errBadID = errors.New("task id must be a positive number")

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

type createRequest struct {
	Text string `json:"text"`
}

type createResponse struct {
	ID int64 `json:"id"`
}

type shareRequest struct {
	UserID string `json:"user_id"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	list, err := h.service.GetTasks(r.Context(), userID)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, list)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.service.AddTask(r.Context(), userID, req.Text)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", id))
	respond.JSON(w, r, http.StatusCreated, createResponse{ID: id})
}

func (h *TaskHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, err := taskID(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	var req shareRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.service.ShareTask(r.Context(), id, userID, req.UserID)
	h.outcome(w, r, ok, err)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, err := taskID(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	ok, err := h.service.CompleteTask(r.Context(), id, userID)
	h.outcome(w, r, ok, err)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, err := taskID(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	ok, err := h.service.DeleteTask(r.Context(), id, userID)
	h.outcome(w, r, ok, err)
}

// outcome: отказ и отсутствие задачи неразличимы, оба дают 404
func (h *TaskHandler) outcome(w http.ResponseWriter, r *http.Request, ok bool, err error) {
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if !ok {
		respond.Error(w, r, http.StatusNotFound, "not found")
		return
	}
	respond.NoContent(w, r)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadID):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation error")
	default:
		h.logger.Error("internal error",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

func taskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}
