package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/task-tracker/internal/command"
)

// taskCmd runs one chat command from the terminal; output is the same
// reply text the chat users get.
type taskCmd struct {
	ctx  *Context
	name string
}

func newTaskCmd(ctx *Context, use, short string, args cobra.PositionalArgs) *cobra.Command {
	c := &taskCmd{ctx: ctx, name: strings.Fields(use)[0]}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE:  c.run,
	}
}

func (c *taskCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := c.ctx.config()
	if err != nil {
		return err
	}
	user, err := c.ctx.actingUser(cfg)
	if err != nil {
		return err
	}

	req, err := command.Parse(c.name, strings.Join(args, " "))
	if err != nil {
		return err
	}

	logger := c.ctx.logger()
	defer logger.Sync()

	svc, closeStore, err := c.ctx.open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	reply, err := command.NewHandler(svc, plainNames{}).Execute(cmd.Context(), user, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return nil
}

// plainNames prints raw user ids: a terminal cannot expand chat mentions.
type plainNames struct{}

func (plainNames) DisplayName(_ context.Context, userID string) string { return userID }
