package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jacoelho/tabc/internal/ratelimit"
)

// DefaultCompiler is used when neither --cc nor $CC is set.
const DefaultCompiler = "cc"

var (
	ErrCompileFailed = errors.New("compilation failed")
	ErrNoCompiler    = errors.New("no C compiler configured")
)

// ExitError reports a program that ran to completion with a non-zero status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("program exited with status %d", e.Code)
}

// CompileError carries the compiler's diagnostics output.
type CompileError struct {
	Source string
	Output string
	Err    error
}

func (e *CompileError) Error() string {
	output := strings.TrimSpace(e.Output)
	if output == "" {
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %v\n%s", e.Source, e.Err, output)
}

func (e *CompileError) Unwrap() []error {
	return []error{ErrCompileFailed, e.Err}
}

// Compiler drives an external C compiler.
type Compiler struct {
	CC      string
	CFlags  []string
	WorkDir string
	Keep    bool
	Limiter *ratelimit.Limiter

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Workspace holds the artifacts of one build.
type Workspace struct {
	Dir    string
	Source string
	Binary string
	keep   bool
}

// Cleanup removes the workspace unless artifacts are kept.
func (w *Workspace) Cleanup() error {
	if w == nil || w.keep || w.Dir == "" {
		return nil
	}
	return os.RemoveAll(w.Dir)
}

// Prepare writes unit to a fresh work directory. Artifact names are derived
// from name with a random suffix, so concurrent builds never collide.
func (c *Compiler) Prepare(name string, unit string) (*Workspace, error) {
	dir, err := os.MkdirTemp(c.WorkDir, "tabc-*")
	if err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}

	base := fmt.Sprintf("%s-%s", name, uuid.New().String()[:8])
	workspace := &Workspace{
		Dir:    dir,
		Source: filepath.Join(dir, base+".c"),
		Binary: filepath.Join(dir, base),
		keep:   c.Keep,
	}

	if err := os.WriteFile(workspace.Source, []byte(unit), 0o644); err != nil {
		_ = workspace.Cleanup()
		return nil, fmt.Errorf("write translation unit: %w", err)
	}

	return workspace, nil
}

// Compile builds source into binary. Launches wait on the limiter.
func (c *Compiler) Compile(ctx context.Context, source string, binary string) error {
	cc := c.CC
	if cc == "" {
		return ErrNoCompiler
	}

	if err := c.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for compiler slot: %w", err)
	}

	args := make([]string, 0, len(c.CFlags)+4)
	args = append(args, c.CFlags...)
	args = append(args, "-o", binary, source, "-lm")

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, cc, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return &CompileError{Source: source, Output: output.String(), Err: err}
	}

	return nil
}

// Run executes binary with args, forwarding the configured stdio.
// A non-zero exit status is returned as *ExitError.
func (c *Compiler) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return &ExitError{Code: exitErr.ExitCode()}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return fmt.Errorf("run %s: %w", filepath.Base(binary), err)
}

// Resolve picks the compiler from flag, then environment, then the default.
func Resolve(flag string, env string) string {
	if flag != "" {
		return flag
	}
	if env != "" {
		return env
	}
	return DefaultCompiler
}
