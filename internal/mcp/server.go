// Package mcp exposes the task store to a local coding agent over the stdio
// MCP transport. Every tool acts on behalf of the single user the server was
// started for.
package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/BuzzLyutic/task-tracker/internal/command"
	"github.com/BuzzLyutic/task-tracker/internal/service"
)

// Version is reported in the MCP handshake.
var Version = "dev"

func NewServer(svc *service.TaskService, userID string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("task-tracker", Version)
	registerTools(s, &tools{svc: svc, user: userID})
	return s
}

// Serve blocks until stdin closes.
func Serve(svc *service.TaskService, userID string) error {
	return mcpserver.ServeStdio(NewServer(svc, userID))
}

type tools struct {
	svc  *service.TaskService
	user string
}

func registerTools(s *mcpserver.MCPServer, t *tools) {
	s.AddTool(mcp.NewTool("task_list",
		mcp.WithDescription("List your own tasks (with the users each one is shared with) and the tasks other users shared with you."),
	), t.list)

	s.AddTool(mcp.NewTool("task_add",
		mcp.WithDescription("Add a new task owned by you. Returns the new task id."),
		mcp.WithString("text",
			mcp.Description("Task text."),
			mcp.Required(),
		),
	), t.add)

	s.AddTool(mcp.NewTool("task_share",
		mcp.WithDescription("Share one of your own tasks with another user. Sharing twice is harmless."),
		mcp.WithNumber("task_id",
			mcp.Description("Id of a task you own."),
			mcp.Required(),
		),
		mcp.WithString("user_id",
			mcp.Description("User to share with."),
			mcp.Required(),
		),
	), t.share)

	s.AddTool(mcp.NewTool("task_complete",
		mcp.WithDescription("Mark a task you own or that was shared with you as completed."),
		mcp.WithNumber("task_id",
			mcp.Description("Task id."),
			mcp.Required(),
		),
	), t.complete)

	s.AddTool(mcp.NewTool("task_delete",
		mcp.WithDescription("Delete one of your own tasks together with all of its shares."),
		mcp.WithNumber("task_id",
			mcp.Description("Id of a task you own."),
			mcp.Required(),
		),
	), t.remove)
}

func (t *tools) list(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := t.svc.GetTasks(ctx, t.user)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(list)
}

func (t *tools) add(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.svc.AddTask(ctx, t.user, req.GetString("text", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(map[string]any{"id": id})
}

func (t *tools) share(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := int64(req.GetInt("task_id", 0))
	target := command.ParseUser(req.GetString("user_id", ""))

	ok, err := t.svc.ShareTask(ctx, id, t.user, target)
	return outcome(id, ok, err, map[string]any{"id": id, "shared_with": target})
}

func (t *tools) complete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := int64(req.GetInt("task_id", 0))

	ok, err := t.svc.CompleteTask(ctx, id, t.user)
	return outcome(id, ok, err, map[string]any{"id": id, "completed": true})
}

func (t *tools) remove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := int64(req.GetInt("task_id", 0))

	ok, err := t.svc.DeleteTask(ctx, id, t.user)
	return outcome(id, ok, err, map[string]any{"id": id, "deleted": true})
}

func outcome(id int64, ok bool, err error, body any) (*mcp.CallToolResult, error) {
	if err != nil {
		return toolError(err), nil
	}
	if !ok {
		return mcp.NewToolResultError(command.RefusalText(id)), nil
	}
	return jsonResult(body)
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, service.ErrValidation) {
		return mcp.NewToolResultError("invalid arguments: task_id must be positive and text/user_id non-empty")
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
