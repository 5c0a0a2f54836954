package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/BuzzLyutic/task-tracker/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return cli.New().ExecuteContext(ctx)
}
