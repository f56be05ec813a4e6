package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/jacoelho/tabc/internal/exit"
	"github.com/jacoelho/tabc/internal/logger"
	"github.com/jacoelho/tabc/internal/tabc/config"
	"github.com/jacoelho/tabc/internal/tabc/files"
	"github.com/jacoelho/tabc/internal/tabc/report"
	"github.com/jacoelho/tabc/internal/tabc/toolchain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	result := execute(ctx, args, stdin, stdout, stderr)
	result.Print()
	return result.ExitCode
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) *exit.Result {
	cfg, err := config.Parse(args)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			return exit.Success(stdout, config.Usage()+"\n")
		}
		return exit.Usage(stderr, fmt.Sprintf("Error: %v\n\n%s\n", err, config.Usage()))
	}

	log, err := logger.New(cfg.LogLevel, stderr)
	if err != nil {
		return exit.Errorf(stderr, "Error: %v\n", err)
	}

	service := files.New(*cfg, files.WithStdio(stdin, stdout, stderr), files.WithLogger(log))
	summary, runErr := service.Execute(ctx)

	if err := report.WriteIssues(stderr, summary.Issues(), colorEnabled(stderr)); err != nil {
		return exit.Errorf(stderr, "Error: failed to write diagnostics: %v\n", err)
	}

	var exitErr *toolchain.ExitError
	if errors.As(runErr, &exitErr) {
		return exit.Status(exitErr.Code)
	}
	if runErr != nil {
		return exit.Errorf(stderr, "Error: %v\n", runErr)
	}

	if cfg.Command != config.CommandRun {
		out := stdout
		if cfg.ToStdout() {
			out = stderr
		}
		if err := summary.Write(out, cfg.ReportFormat); err != nil {
			return exit.Errorf(stderr, "Error: failed to write report: %v\n", err)
		}
	}

	if summary.HasErrors() {
		return exit.Status(exit.CodeFailure)
	}

	return exit.Status(exit.CodeSuccess)
}

// colorEnabled reports whether w is a terminal that should receive ANSI colors.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
