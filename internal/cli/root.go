// Package cli wires the taskctl command tree.
package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/config"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
)

var errNoUser = errors.New("no acting user: pass --user or set MCP_USER")

// Context carries the persistent flags shared by every subcommand.
type Context struct {
	User       string
	ConfigPath string
	Verbose    bool
}

func New() *cobra.Command {
	ctx := &Context{}

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Shared task tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	root.PersistentFlags().StringVarP(&ctx.User, "user", "u", "", "Acting user id (default: $MCP_USER)")
	root.PersistentFlags().StringVar(&ctx.ConfigPath, "config", "", "YAML config file (default: $CONFIG_FILE)")
	root.PersistentFlags().BoolVarP(&ctx.Verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		newTaskCmd(ctx, "list", "List your tasks and tasks shared with you", cobra.NoArgs),
		newTaskCmd(ctx, "add <text...>", "Add a task", cobra.MinimumNArgs(1)),
		newTaskCmd(ctx, "share <task-id> <user>", "Share one of your tasks with another user", cobra.ExactArgs(2)),
		newTaskCmd(ctx, "complete <task-id>", "Mark a task as completed", cobra.ExactArgs(1)),
		newTaskCmd(ctx, "delete <task-id>", "Delete one of your tasks", cobra.ExactArgs(1)),
		newMigrateCmd(ctx),
		newMCPCmd(ctx),
		newTokenCmd(ctx),
	)

	return root
}

func (c *Context) config() (config.Config, error) {
	return config.Load(c.ConfigPath)
}

func (c *Context) logger() *zap.Logger {
	if !c.Verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (c *Context) actingUser(cfg config.Config) (string, error) {
	user := strings.TrimSpace(c.User)
	if user == "" {
		user = strings.TrimSpace(cfg.MCP.User)
	}
	if user == "" {
		return "", errNoUser
	}
	return user, nil
}

// open returns the service over the configured store; the caller closes it
// through the returned func.
func (c *Context) open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*service.TaskService, func(), error) {
	logger.Debug("opening store", zap.String("driver", cfg.Store.Driver))

	store, err := repo.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return service.NewTaskService(store), func() { store.Close() }, nil
}
