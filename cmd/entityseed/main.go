/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command entityseed finds or creates the records listed in YAML seed files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/suparena/entityseed/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
