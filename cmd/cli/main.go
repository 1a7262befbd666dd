package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/vk/stencilgrid/internal/app"
	"github.com/vk/stencilgrid/internal/cli"
	"github.com/vk/stencilgrid/internal/hcl_adapter"
)

// main is the entrypoint for the stencilgrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Core packages panic on broken invariants; report those as a clean error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("a critical error occurred: %v", r)
		}
	}()

	stencilApp := app.New(outW, errW, appConfig, hcl_adapter.NewLoader())
	return stencilApp.Run(ctx)
}
