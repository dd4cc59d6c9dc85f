// Command cookietap boots a reference host, activates cookie interception on it
// and drives cookie calls through the intercepted provider.
//
// Usage:
//
//	cookietap demo
//	cookietap run --script calls.txt
//	cookietap run --script - < calls.txt
//
// Configuration comes from a YAML file (--config), COOKIETAP_ prefixed environment
// variables and flags, in increasing order of precedence.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
