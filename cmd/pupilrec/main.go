// Package main provides the pupilrec command.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/pupilrec/internal/cli"
)

func main() {
	cfg, err := cli.ParseConfig(flag.NewFlagSet("pupilrec", flag.ExitOnError), os.Args[1:])
	if err != nil {
		cli.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := cli.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		cli.Exitf("Error: %v", err)
	}
}
