package files

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jacoelho/tabc/internal/tabc/config"
	"github.com/jacoelho/tabc/internal/tabc/diagnostics"
	"github.com/jacoelho/tabc/internal/tabc/source"
	"github.com/jacoelho/tabc/internal/tabc/toolchain"
	"github.com/jacoelho/tabc/internal/tabc/translate"
)

const addProgram = "function add a b\n\treturn a + b\nx <- add(2, 3)\nprint x\n"

// fakeCompiler writes a shell script to the -o path. The script echoes its
// arguments and exits 4.
const fakeCompiler = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
	if [ "$1" = "-o" ]; then
		out="$2"
		shift
	fi
	shift
done
printf '#!/bin/sh\necho ran "$@"\nexit 4\n' > "$out"
chmod +x "$out"
`

const failingCompiler = `#!/bin/sh
echo "syntax error" >&2
exit 1
`

func writeFile(t *testing.T, path string, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func script(t *testing.T, content string) string {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	path := filepath.Join(t.TempDir(), "cc")
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newService(cfg config.Config, stdout *bytes.Buffer) *Service {
	if cfg.Jobs == 0 {
		cfg.Jobs = 2
	}
	if cfg.Encoding == "" {
		cfg.Encoding = source.EncodingUTF8
	}
	return New(cfg, WithStdio(strings.NewReader(""), stdout, &bytes.Buffer{}), WithLogger(slog.New(slog.DiscardHandler)))
}

func expectedUnit(t *testing.T, program string) string {
	t.Helper()
	return translate.Source(strings.NewReader(program), translate.Options{}).Output
}

func TestTranslateToOutputDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := writeFile(t, filepath.Join(dir, "one", "add.tl"), addProgram)
	second := writeFile(t, filepath.Join(dir, "two", "add.tl"), "print 1\n")
	outDir := filepath.Join(dir, "out")

	var stdout bytes.Buffer
	service := newService(config.Config{
		Command:   config.CommandTranslate,
		Inputs:    []string{first, second},
		OutputDir: outDir,
	}, &stdout)

	summary, err := service.Translate(context.Background())
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	if summary.Total != 2 || summary.Translated != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout = %q, want empty", stdout.String())
	}

	payload, err := os.ReadFile(filepath.Join(outDir, "add.c"))
	if err != nil {
		t.Fatalf("ReadFile(add.c) error = %v", err)
	}
	if string(payload) != expectedUnit(t, addProgram) {
		t.Fatalf("add.c = %q", payload)
	}

	payload, err = os.ReadFile(filepath.Join(outDir, "add-1.c"))
	if err != nil {
		t.Fatalf("ReadFile(add-1.c) error = %v", err)
	}
	if string(payload) != expectedUnit(t, "print 1\n") {
		t.Fatalf("add-1.c = %q", payload)
	}

	if summary.Files[1].OutputPath != filepath.Join(outDir, "add-1.c") {
		t.Fatalf("OutputPath = %q", summary.Files[1].OutputPath)
	}
	if summary.Files[0].Functions != 1 || summary.Files[0].OutputBytes != len(expectedUnit(t, addProgram)) {
		t.Fatalf("file result = %+v", summary.Files[0])
	}
}

func TestTranslateToStdoutKeepsInputOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	programs := []string{"print 1\n", "print 2\n", "print 3\n"}
	inputs := make([]string, len(programs))
	var want strings.Builder
	for index, program := range programs {
		inputs[index] = writeFile(t, filepath.Join(dir, "p"+string(rune('a'+index))+".tl"), program)
		want.WriteString(expectedUnit(t, program))
	}

	var stdout bytes.Buffer
	service := newService(config.Config{Command: config.CommandTranslate, Inputs: inputs, Jobs: 3}, &stdout)

	if _, err := service.Translate(context.Background()); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if stdout.String() != want.String() {
		t.Fatalf("stdout = %q, want %q", stdout.String(), want.String())
	}
}

func TestTranslateMissingInput(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.tl")

	var stdout bytes.Buffer
	service := newService(config.Config{Command: config.CommandTranslate, Inputs: []string{missing}}, &stdout)

	summary, err := service.Translate(context.Background())
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	if summary.Failed != 1 {
		t.Fatalf("Failed = %d", summary.Failed)
	}
	issue := summary.Files[0].Issues[0]
	if issue.Code != diagnostics.CodeInputUnavailable || issue.Path != missing {
		t.Fatalf("issue = %+v", issue)
	}
	if !summary.HasErrors() {
		t.Fatal("HasErrors() = false, want true")
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout = %q, want empty", stdout.String())
	}
}

func TestTranslateReportsLineIssues(t *testing.T) {
	t.Parallel()

	input := writeFile(t, filepath.Join(t.TempDir(), "bad.tl"), "x <- 1\n@@ nonsense\nprint x\n")

	var stdout bytes.Buffer
	service := newService(config.Config{Command: config.CommandTranslate, Inputs: []string{input}}, &stdout)

	summary, err := service.Translate(context.Background())
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	if summary.Partial != 1 {
		t.Fatalf("Partial = %d", summary.Partial)
	}
	issue := summary.Files[0].Issues[0]
	if issue.Code != diagnostics.CodeUnknownStatement || issue.Path != input || issue.Span == nil || issue.Span.Line != 2 {
		t.Fatalf("issue = %+v", issue)
	}
	if !strings.Contains(stdout.String(), "tabc_print(x);") {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestTranslateOutputExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "prog.tl"), "print 1\n")
	output := writeFile(t, filepath.Join(dir, "prog.c"), "existing")

	var stdout bytes.Buffer
	cfg := config.Config{Command: config.CommandTranslate, Inputs: []string{input}, Output: output}

	summary, err := newService(cfg, &stdout).Translate(context.Background())
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if summary.Failed != 1 || summary.ByCode[diagnostics.CodeOutputExists] != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.HasErrors() {
		t.Fatal("output_exists should be a warning")
	}
	if payload, _ := os.ReadFile(output); string(payload) != "existing" {
		t.Fatalf("output overwritten: %q", payload)
	}

	cfg.Overwrite = true
	summary, err = newService(cfg, &stdout).Translate(context.Background())
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if summary.Translated != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if payload, _ := os.ReadFile(output); string(payload) != expectedUnit(t, "print 1\n") {
		t.Fatalf("output = %q", payload)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	cc := script(t, fakeCompiler)
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "add.tl"), addProgram)
	outDir := filepath.Join(dir, "bin")

	var stdout bytes.Buffer
	service := newService(config.Config{
		Command:   config.CommandBuild,
		Inputs:    []string{input},
		OutputDir: outDir,
		CC:        cc,
		WorkDir:   t.TempDir(),
	}, &stdout)

	summary, err := service.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := filepath.Join(outDir, "add")
	if summary.Files[0].BinaryPath != want {
		t.Fatalf("BinaryPath = %q, want %q", summary.Files[0].BinaryPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if summary.HasErrors() {
		t.Fatalf("issues = %+v", summary.Issues())
	}
}

func TestBuildCompileFailure(t *testing.T) {
	t.Parallel()

	cc := script(t, failingCompiler)
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "add.tl"), addProgram)

	var stdout bytes.Buffer
	service := newService(config.Config{
		Command:   config.CommandBuild,
		Inputs:    []string{input},
		OutputDir: filepath.Join(dir, "bin"),
		CC:        cc,
		WorkDir:   t.TempDir(),
	}, &stdout)

	summary, err := service.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if summary.ByCode[diagnostics.CodeCompileFailed] != 1 {
		t.Fatalf("ByCode = %v", summary.ByCode)
	}
	if !strings.Contains(summary.Issues()[0].Message, "syntax error") {
		t.Fatalf("message = %q", summary.Issues()[0].Message)
	}
	if summary.Files[0].BinaryPath != "" {
		t.Fatalf("BinaryPath = %q, want empty", summary.Files[0].BinaryPath)
	}
}

func TestRunForwardsArgumentsAndExitCode(t *testing.T) {
	t.Parallel()

	cc := script(t, fakeCompiler)
	workDir := t.TempDir()
	input := writeFile(t, filepath.Join(t.TempDir(), "add.tl"), addProgram)

	var stdout bytes.Buffer
	service := newService(config.Config{
		Command: config.CommandRun,
		Inputs:  []string{input},
		Args:    []string{"a", "b"},
		CC:      cc,
		WorkDir: workDir,
	}, &stdout)

	summary, err := service.Run(context.Background())

	var exitErr *toolchain.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 4 {
		t.Fatalf("Run() error = %v, want exit status 4", err)
	}
	if stdout.String() != "ran a b\n" {
		t.Fatalf("stdout = %q", stdout.String())
	}
	if summary.Total != 1 {
		t.Fatalf("Total = %d", summary.Total)
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("work dir not cleaned: %v", entries)
	}
}

func TestRunSkipsCompileOnTranslationErrors(t *testing.T) {
	t.Parallel()

	input := writeFile(t, filepath.Join(t.TempDir(), "bad.tl"), "@@\n")

	var stdout bytes.Buffer
	service := newService(config.Config{
		Command: config.CommandRun,
		Inputs:  []string{input},
		CC:      filepath.Join(t.TempDir(), "no-such-cc"),
	}, &stdout)

	summary, err := service.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !summary.HasErrors() {
		t.Fatal("HasErrors() = false, want true")
	}
	if summary.Files[0].BinaryPath != "" {
		t.Fatalf("BinaryPath = %q", summary.Files[0].BinaryPath)
	}
}

func TestRunWithSystemCompiler(t *testing.T) {
	t.Parallel()

	cc, err := exec.LookPath(toolchain.Resolve("", os.Getenv("CC")))
	if err != nil {
		t.Skip("C compiler not available")
	}

	input := writeFile(t, filepath.Join(t.TempDir(), "add.tl"), addProgram)

	var stdout bytes.Buffer
	service := newService(config.Config{
		Command: config.CommandRun,
		Inputs:  []string{input},
		CC:      cc,
		WorkDir: t.TempDir(),
	}, &stdout)

	if _, err := service.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stdout.String() != "5\n" {
		t.Fatalf("stdout = %q, want %q", stdout.String(), "5\n")
	}
}

func TestExecuteCancelled(t *testing.T) {
	t.Parallel()

	input := writeFile(t, filepath.Join(t.TempDir(), "add.tl"), addProgram)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	service := newService(config.Config{Command: config.CommandTranslate, Inputs: []string{input}}, &stdout)

	if _, err := service.Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
}
