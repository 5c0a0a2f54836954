package handler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/auth"
	"github.com/BuzzLyutic/task-tracker/internal/command"
	"github.com/BuzzLyutic/task-tracker/internal/worker"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

const failureText = "Sorry, something went wrong. Please try again."

type Submitter interface {
	Submit(ctx context.Context, job worker.Job) (command.Reply, error)
}

// CommandHandler принимает slash-команды чата. На любой запрос с
// известным пользователем отвечает 200 с текстом ответа.
type CommandHandler struct {
	pool   Submitter
	logger *zap.Logger
}

func NewCommandHandler(pool Submitter, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{pool: pool, logger: logger}
}

type commandRequest struct {
	Command string `json:"command"`
	Text    string `json:"text"`
}

func (h *CommandHandler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req commandRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.JSON(w, r, http.StatusOK, command.Reply{Text: err.Error()})
		return
	}

	parsed, err := command.Parse(req.Command, req.Text)
	if err != nil {
		respond.JSON(w, r, http.StatusOK, command.Reply{Text: err.Error()})
		return
	}

	reply, err := h.pool.Submit(r.Context(), worker.Job{UserID: userID, Request: parsed})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			h.logger.Error("command failed",
				zap.String("user_id", userID),
				zap.Stringer("command", parsed.Kind),
				zap.Error(err))
		}
		respond.JSON(w, r, http.StatusOK, command.Reply{Text: failureText})
		return
	}

	respond.JSON(w, r, http.StatusOK, reply)
}
