package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/jacoelho/tabc/internal/ratelimit"
	"github.com/jacoelho/tabc/internal/tabc/config"
	"github.com/jacoelho/tabc/internal/tabc/diagnostics"
	"github.com/jacoelho/tabc/internal/tabc/naming"
	"github.com/jacoelho/tabc/internal/tabc/report"
	"github.com/jacoelho/tabc/internal/tabc/source"
	"github.com/jacoelho/tabc/internal/tabc/toolchain"
	"github.com/jacoelho/tabc/internal/tabc/translate"
)

const (
	sourceExt = ".c"
	binaryExt = ""
)

var errOutputExists = errors.New("output file already exists")

// Service translates, builds and runs source files according to a Config.
type Service struct {
	cfg      config.Config
	compiler *toolchain.Compiler
	stdout   io.Writer
	logger   *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithStdio sets the streams used for stdout output and the run command.
func WithStdio(stdin io.Reader, stdout io.Writer, stderr io.Writer) Option {
	return func(s *Service) {
		s.stdout = stdout
		s.compiler.Stdin = stdin
		s.compiler.Stdout = stdout
		s.compiler.Stderr = stderr
	}
}

// WithLogger sets the logger for progress records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a service for cfg.
func New(cfg config.Config, opts ...Option) *Service {
	jobs := max(cfg.Jobs, 1)
	s := &Service{
		cfg: cfg,
		compiler: &toolchain.Compiler{
			CC:      cfg.CC,
			CFlags:  cfg.CFlags,
			WorkDir: cfg.WorkDir,
			Keep:    cfg.Keep,
			Limiter: ratelimit.New(cfg.CompileRate, jobs),
			Stdin:   os.Stdin,
			Stdout:  os.Stdout,
			Stderr:  os.Stderr,
		},
		stdout: os.Stdout,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Execute dispatches to the configured command.
func (s *Service) Execute(ctx context.Context) (report.Summary, error) {
	switch s.cfg.Command {
	case config.CommandTranslate:
		return s.Translate(ctx)
	case config.CommandBuild:
		return s.Build(ctx)
	case config.CommandRun:
		return s.Run(ctx)
	default:
		return report.Summary{}, fmt.Errorf("%w: %s", config.ErrUnknownCommand, s.cfg.Command)
	}
}

// job is one input with its planned output location.
type job struct {
	input  string
	stem   string
	output string
}

// translated is the outcome of translating one job.
type translated struct {
	result report.FileResult
	unit   string
	ok     bool
}

// Translate writes C for every input to its output file, or to stdout in
// input order when no output location is configured.
func (s *Service) Translate(ctx context.Context) (report.Summary, error) {
	jobs := s.plan(sourceExt)

	outcomes, err := s.each(ctx, jobs, func(ctx context.Context, j job) (translated, error) {
		outcome := s.translate(j)
		if !outcome.ok || s.cfg.ToStdout() {
			return outcome, nil
		}

		if err := writeOutput(j.output, s.cfg.Overwrite, outcome.unit); err != nil {
			if !errors.Is(err, errOutputExists) {
				return outcome, fmt.Errorf("write output file: %w", err)
			}
			outcome.result.Translated = false
			outcome.result.Issues = append(outcome.result.Issues, outputExists(j.output))
			s.logger.Warn("output exists", "path", j.output)
			return outcome, nil
		}

		outcome.result.OutputPath = j.output
		s.logger.Info("wrote translation", "source", j.input, "output", j.output)
		return outcome, nil
	})
	if err != nil {
		return report.Summary{}, err
	}

	var summary report.Summary
	for _, outcome := range outcomes {
		if s.cfg.ToStdout() && outcome.ok {
			if _, err := io.WriteString(s.stdout, outcome.unit); err != nil {
				return report.Summary{}, fmt.Errorf("write output: %w", err)
			}
		}
		summary.Add(outcome.result)
	}

	return summary, nil
}

// Build translates and compiles every input to an executable.
func (s *Service) Build(ctx context.Context) (report.Summary, error) {
	jobs := s.plan(binaryExt)

	outcomes, err := s.each(ctx, jobs, func(ctx context.Context, j job) (translated, error) {
		outcome := s.translate(j)
		if !outcome.ok || diagnostics.HasErrors(outcome.result.Issues) {
			return outcome, nil
		}

		if err := checkOutput(j.output, s.cfg.Overwrite); err != nil {
			if !errors.Is(err, errOutputExists) {
				return outcome, err
			}
			outcome.result.Issues = append(outcome.result.Issues, outputExists(j.output))
			s.logger.Warn("output exists", "path", j.output)
			return outcome, nil
		}
		if err := os.MkdirAll(filepath.Dir(j.output), 0755); err != nil {
			return outcome, fmt.Errorf("create output directory: %w", err)
		}

		workspace, err := s.compiler.Prepare(j.stem, outcome.unit)
		if err != nil {
			return outcome, err
		}
		defer s.cleanup(workspace)

		if s.cfg.Keep {
			outcome.result.OutputPath = workspace.Source
		}

		if err := s.compile(ctx, &outcome, workspace.Source, j.output); err != nil {
			return outcome, err
		}
		return outcome, nil
	})
	if err != nil {
		return report.Summary{}, err
	}

	var summary report.Summary
	for _, outcome := range outcomes {
		summary.Add(outcome.result)
	}

	return summary, nil
}

// Run translates, compiles and executes the single input with cfg.Args.
// A program exiting non-zero is reported as *toolchain.ExitError.
func (s *Service) Run(ctx context.Context) (report.Summary, error) {
	if len(s.cfg.Inputs) != 1 {
		return report.Summary{}, fmt.Errorf("run expects one input, got %d", len(s.cfg.Inputs))
	}

	j := job{input: s.cfg.Inputs[0], stem: naming.Stem(s.cfg.Inputs[0])}
	outcome := s.translate(j)

	var summary report.Summary
	if !outcome.ok || diagnostics.HasErrors(outcome.result.Issues) {
		summary.Add(outcome.result)
		return summary, nil
	}

	workspace, err := s.compiler.Prepare(j.stem, outcome.unit)
	if err != nil {
		return report.Summary{}, err
	}
	defer s.cleanup(workspace)

	if s.cfg.Keep {
		outcome.result.OutputPath = workspace.Source
	}

	if err := s.compile(ctx, &outcome, workspace.Source, workspace.Binary); err != nil {
		return report.Summary{}, err
	}
	summary.Add(outcome.result)
	if outcome.result.BinaryPath == "" {
		return summary, nil
	}

	s.logger.Debug("running program", "binary", workspace.Binary, "args", len(s.cfg.Args))
	if err := s.compiler.Run(ctx, workspace.Binary, s.cfg.Args); err != nil {
		return summary, err
	}

	return summary, nil
}

// plan assigns output paths in input order so names are deterministic.
func (s *Service) plan(ext string) []job {
	planner := naming.NewPlanner()
	jobs := make([]job, len(s.cfg.Inputs))

	for index, input := range s.cfg.Inputs {
		name := planner.Next(input, ext)
		output := name
		switch {
		case s.cfg.Output != "":
			output = s.cfg.Output
		case s.cfg.OutputDir != "":
			output = filepath.Join(s.cfg.OutputDir, name)
		}

		jobs[index] = job{input: input, stem: naming.Stem(name), output: output}
	}

	return jobs
}

// each runs fn over jobs with at most cfg.Jobs in flight, keeping input order.
func (s *Service) each(ctx context.Context, jobs []job, fn func(context.Context, job) (translated, error)) ([]translated, error) {
	outcomes := make([]translated, len(jobs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(s.cfg.Jobs, 1))

	for index, j := range jobs {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome, err := fn(ctx, j)
			if err != nil {
				return fmt.Errorf("%s: %w", j.input, err)
			}
			outcomes[index] = outcome
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

func (s *Service) translate(j job) translated {
	outcome := translated{result: report.FileResult{SourcePath: j.input}}

	reader, err := source.Open(j.input, s.cfg.Encoding)
	if err != nil {
		issue := diagnostics.New(diagnostics.CodeInputUnavailable, 0, "%v", err)
		outcome.result.Issues = diagnostics.Qualify(j.input, []diagnostics.Issue{issue})
		s.logger.Warn("input unavailable", "path", j.input, "error", err)
		return outcome
	}
	defer reader.Close()

	result := translate.Source(reader, translate.Options{StrictExpressions: s.cfg.Strict})

	outcome.ok = result.OK
	outcome.unit = result.Output
	outcome.result.Translated = result.OK
	outcome.result.Functions = result.Functions
	outcome.result.Statements = result.Statements
	outcome.result.Issues = diagnostics.Qualify(j.input, result.Issues)
	if result.OK {
		outcome.result.OutputBytes = len(result.Output)
	}

	s.logger.Debug("translated",
		"path", j.input,
		"functions", result.Functions,
		"statements", result.Statements,
		"skipped", result.Skipped,
		"variables", len(result.Variables),
	)

	return outcome
}

// compile records a compiler failure as an issue; other errors abort.
func (s *Service) compile(ctx context.Context, outcome *translated, sourcePath string, binary string) error {
	err := s.compiler.Compile(ctx, sourcePath, binary)
	if err == nil {
		outcome.result.BinaryPath = binary
		s.logger.Info("compiled", "source", outcome.result.SourcePath, "binary", binary)
		return nil
	}

	if errors.Is(err, toolchain.ErrCompileFailed) && ctx.Err() == nil {
		outcome.result.Issues = append(outcome.result.Issues, report.Issue{
			Code:     diagnostics.CodeCompileFailed,
			Stage:    diagnostics.StageToolchain,
			Severity: diagnostics.SeverityError,
			Path:     outcome.result.SourcePath,
			Message:  err.Error(),
		})
		return nil
	}

	return err
}

func (s *Service) cleanup(workspace *toolchain.Workspace) {
	if err := workspace.Cleanup(); err != nil {
		s.logger.Warn("cleanup failed", "dir", workspace.Dir, "error", err)
	}
}

func outputExists(path string) report.Issue {
	issue := diagnostics.New(diagnostics.CodeOutputExists, 0, "output file exists and --overwrite is false: %s", path)
	issue.Path = path
	return issue
}

func checkOutput(filename string, overwrite bool) error {
	if overwrite {
		return nil
	}
	if _, err := os.Stat(filename); err == nil {
		return errOutputExists
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat output file: %w", err)
	}
	return nil
}

func writeOutput(filename string, overwrite bool, unit string) error {
	if err := checkOutput(filename, overwrite); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := os.WriteFile(filename, []byte(unit), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
