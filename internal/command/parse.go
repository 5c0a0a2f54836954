// Package command implements the chat-style command surface: parsing raw
// slash commands, invoking exactly one service operation and rendering the
// outcome as reply text.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUsage marks malformed commands. The error text is meant for the user.
var ErrUsage = errors.New("usage error")

type Kind int

const (
	KindList Kind = iota
	KindAdd
	KindShare
	KindComplete
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindAdd:
		return "add"
	case KindShare:
		return "share"
	case KindComplete:
		return "complete"
	case KindDelete:
		return "delete"
	}
	return "unknown"
}

// Request is a parsed command ready to be executed on behalf of a user.
type Request struct {
	Kind   Kind
	Text   string // add
	TaskID int64  // share, complete, delete
	Target string // share
}

var kinds = map[string]Kind{
	"tasks":        KindList,
	"list":         KindList,
	"addtask":      KindAdd,
	"add":          KindAdd,
	"sharetask":    KindShare,
	"share":        KindShare,
	"completetask": KindComplete,
	"complete":     KindComplete,
	"done":         KindComplete,
	"deletetask":   KindDelete,
	"delete":       KindDelete,
}

type usageError struct {
	msg string
}

func (e *usageError) Error() string        { return e.msg }
func (e *usageError) Is(target error) bool { return target == ErrUsage }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// Parse turns a command name ("/sharetask", "share") and its argument text
// into a Request.
func Parse(name, text string) (Request, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	kind, ok := kinds[key]
	if !ok {
		return Request{}, usagef("Unknown command %q. Available: /tasks, /addtask, /sharetask, /completetask, /deletetask", name)
	}

	text = strings.TrimSpace(text)
	args := strings.Fields(text)

	switch kind {
	case KindAdd:
		if text == "" {
			return Request{}, usagef("Please provide the task text. Example: `/addtask Buy milk`")
		}
		return Request{Kind: KindAdd, Text: text}, nil

	case KindShare:
		if len(args) < 2 {
			return Request{}, usagef("Please provide a task number and user to share with. Example: `/sharetask 1 @username`")
		}
		id, err := parseTaskID(args[0], "/sharetask 1 @username")
		if err != nil {
			return Request{}, err
		}
		target := ParseUser(args[1])
		if target == "" {
			return Request{}, usagef("Please provide a user to share with. Example: `/sharetask 1 @username`")
		}
		return Request{Kind: KindShare, TaskID: id, Target: target}, nil

	case KindComplete, KindDelete:
		example := "/completetask 1"
		if kind == KindDelete {
			example = "/deletetask 1"
		}
		if len(args) < 1 {
			return Request{}, usagef("Please provide a task number. Example: `%s`", example)
		}
		id, err := parseTaskID(args[0], example)
		if err != nil {
			return Request{}, err
		}
		return Request{Kind: kind, TaskID: id}, nil
	}

	return Request{Kind: KindList}, nil
}

// ParseUser accepts "@bob", "<@U123>", "<@U123|bob>" or a bare id.
func ParseUser(raw string) string {
	u := strings.Trim(raw, "<>@")
	if i := strings.IndexByte(u, '|'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimSpace(u)
}

func parseTaskID(raw, example string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usagef("Task number must be a positive number, got %q. Example: `%s`", raw, example)
	}
	return id, nil
}
