package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/auth"
	internalmcp "github.com/BuzzLyutic/task-tracker/internal/mcp"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

func newMigrateCmd(ctx *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			logger := ctx.logger()
			defer logger.Sync()

			// Open применяет схему сам
			store, err := repo.Open(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer store.Close()

			logger.Info("schema applied", zap.String("driver", cfg.Store.Driver))
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", cfg.Store.Driver)
			return nil
		},
	}
}

func newMCPCmd(ctx *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve task tools to a local agent over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			user, err := ctx.actingUser(cfg)
			if err != nil {
				return err
			}

			// stdout занят протоколом, логи только в stderr
			logger := ctx.logger()
			defer logger.Sync()

			svc, closeStore, err := ctx.open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			logger.Info("mcp server started", zap.String("user_id", user))
			return internalmcp.Serve(svc, user)
		},
	}
}

func newTokenCmd(ctx *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user>",
		Short: "Mint a bearer token for the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}

			token, err := auth.NewJWTManager(cfg.Auth).Generate(args[0])
			if err != nil {
				return fmt.Errorf("token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
