// Package main is the entry point for the transmute CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskforge/transmute/internal/app"
	"github.com/taskforge/transmute/internal/cli"
	"github.com/taskforge/transmute/internal/domain"
)

// version is set at build time using -ldflags.
var version = "dev"

// newContainer is a variable so tests can replace repository detection.
var newContainer = app.New

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	container, err := newContainer(ctx, cwd)
	if err != nil {
		// Allow help and version without a git repository
		if errors.Is(err, domain.ErrNoGitRepo) {
			return runWithoutContainer(ctx, args, err)
		}
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() { _ = container.Close() }()

	rootCmd := cli.NewRootCommand(container, version)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// runWithoutContainer handles cases where git repo is not found.
func runWithoutContainer(ctx context.Context, args []string, gitErr error) error {
	if !canRunWithoutGit(args) {
		return gitErr
	}
	rootCmd := cli.NewRootCommand(nil, version)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func canRunWithoutGit(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "help", "completion":
		return true
	}
	for _, arg := range args {
		if arg == "--version" || arg == "-v" || arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}
