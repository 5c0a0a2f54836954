package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/service"
)

type Service interface {
	AddTask(ctx context.Context, ownerID, text string) (int64, error)
	GetTasks(ctx context.Context, userID string) (model.TaskList, error)
	ShareTask(ctx context.Context, taskID int64, actingUserID, targetUserID string) (bool, error)
	CompleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error)
	DeleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error)
}

// Resolver maps a user id to something printable. Identity lookup belongs to
// the chat platform; the default renders a mention and lets the platform
// expand it.
type Resolver interface {
	DisplayName(ctx context.Context, userID string) string
}

type MentionResolver struct{}

func (MentionResolver) DisplayName(_ context.Context, userID string) string {
	return "<@" + userID + ">"
}

type Reply struct {
	Text string `json:"text"`
	OK   bool   `json:"ok"`
}

const emptyList = "No tasks yet. Add some tasks to get started!"

type Handler struct {
	svc   Service
	names Resolver
}

func NewHandler(svc Service, names Resolver) *Handler {
	if names == nil {
		names = MentionResolver{}
	}
	return &Handler{svc: svc, names: names}
}

// Execute runs exactly one service operation for userID. Refusals and
// validation failures come back as replies; the error is reserved for
// storage failures.
func (h *Handler) Execute(ctx context.Context, userID string, req Request) (Reply, error) {
	reply, err := h.execute(ctx, userID, req)
	if errors.Is(err, service.ErrValidation) {
		return Reply{Text: "That command is missing something. Check the task number and text and try again."}, nil
	}
	return reply, err
}

func (h *Handler) execute(ctx context.Context, userID string, req Request) (Reply, error) {
	switch req.Kind {
	case KindList:
		list, err := h.svc.GetTasks(ctx, userID)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: h.renderList(ctx, list), OK: true}, nil

	case KindAdd:
		id, err := h.svc.AddTask(ctx, userID, req.Text)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: fmt.Sprintf("Task #%d added! Use `/tasks` to see your tasks.", id), OK: true}, nil

	case KindShare:
		ok, err := h.svc.ShareTask(ctx, req.TaskID, userID, req.Target)
		if err != nil {
			return Reply{}, err
		}
		if !ok {
			return notFound(req.TaskID), nil
		}
		return Reply{Text: fmt.Sprintf("Task #%d shared with %s!", req.TaskID, h.names.DisplayName(ctx, req.Target)), OK: true}, nil

	case KindComplete:
		ok, err := h.svc.CompleteTask(ctx, req.TaskID, userID)
		if err != nil {
			return Reply{}, err
		}
		if !ok {
			return notFound(req.TaskID), nil
		}
		return Reply{Text: fmt.Sprintf("Task #%d marked as complete! ✓", req.TaskID), OK: true}, nil

	case KindDelete:
		ok, err := h.svc.DeleteTask(ctx, req.TaskID, userID)
		if err != nil {
			return Reply{}, err
		}
		if !ok {
			return notFound(req.TaskID), nil
		}
		return Reply{Text: fmt.Sprintf("Task #%d deleted.", req.TaskID), OK: true}, nil
	}

	return Reply{}, usagef("Unknown command")
}

// RefusalText is shared by every refusal so the reply never reveals whether
// the task exists.
func RefusalText(id int64) string {
	return fmt.Sprintf("Task %d not found. Use `/tasks` to see your tasks.", id)
}

func notFound(id int64) Reply {
	return Reply{Text: RefusalText(id)}
}

func (h *Handler) renderList(ctx context.Context, list model.TaskList) string {
	if list.Empty() {
		return emptyList
	}

	var b strings.Builder
	if len(list.Own) > 0 {
		b.WriteString("Your tasks:\n")
		for _, t := range list.Own {
			b.WriteString(h.line(t))
			if len(t.SharedWith) > 0 {
				names := make([]string, 0, len(t.SharedWith))
				for _, u := range t.SharedWith {
					names = append(names, h.names.DisplayName(ctx, u))
				}
				fmt.Fprintf(&b, " (shared with %s)", strings.Join(names, ", "))
			}
			b.WriteByte('\n')
		}
	}
	if len(list.Shared) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Shared with you:\n")
		for _, t := range list.Shared {
			b.WriteString(h.line(t))
			fmt.Fprintf(&b, " (from %s)\n", h.names.DisplayName(ctx, t.OwnerID))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *Handler) line(t model.TaskView) string {
	s := fmt.Sprintf("• #%d %s", t.ID, t.Text)
	if t.Completed {
		s += " ✓"
	}
	return s
}
