package translate

import (
	"errors"
	"io"

	"github.com/jacoelho/tabc/internal/tabc/diagnostics"
	"github.com/jacoelho/tabc/internal/tabc/emit"
	"github.com/jacoelho/tabc/internal/tabc/expr"
	"github.com/jacoelho/tabc/internal/tabc/header"
	"github.com/jacoelho/tabc/internal/tabc/lex"
	"github.com/jacoelho/tabc/internal/tabc/scope"
	"github.com/jacoelho/tabc/internal/tabc/statement"
	"github.com/jacoelho/tabc/internal/tabc/symbols"
)

// Options tunes a translation run.
type Options struct {
	// StrictExpressions validates expression text before emitting it.
	StrictExpressions bool
}

// Result contains the generated C unit and the diagnostics of one run.
// OK is false only when the input could not be read; per-line problems are
// reported in Issues and do not stop translation.
type Result struct {
	Output     string
	Issues     []diagnostics.Issue
	OK         bool
	Functions  int
	Statements int
	Skipped    int
	Variables  []string
}

// Source translates the program read from r.
func Source(r io.Reader, opts Options) Result {
	lines, err := lex.Scan(r)
	if err != nil {
		return Result{
			Issues: []diagnostics.Issue{
				diagnostics.New(diagnostics.CodeInputUnavailable, 0, "cannot read input: %v", err),
			},
		}
	}

	return Lines(lines, opts)
}

// Lines translates already normalized lines. Every call starts from an
// empty symbol table, so concurrent calls do not interfere.
func Lines(lines []lex.Line, opts Options) Result {
	table := symbols.New()
	run := &run{
		tracker:    scope.New(),
		statements: statement.NewTranslator(table, opts.StrictExpressions),
		result:     Result{OK: true},
	}

	for _, line := range lines {
		run.line(line)
	}
	run.apply(run.tracker.Step(scope.InputEnd), lex.Line{}, header.Signature{})

	run.result.Output = run.unit.String()
	run.result.Variables = table.Names()
	return run.result
}

type run struct {
	unit       emit.Unit
	tracker    *scope.Tracker
	statements *statement.Translator
	result     Result
}

func (r *run) line(line lex.Line) {
	switch {
	case header.IsHeader(line.Text):
		signature, err := header.Parse(line.Text)
		if err != nil {
			r.apply(r.tracker.Step(scope.InputMalformedHeader), line, header.Signature{})
			r.report(headerCode(err), line, err)
			return
		}
		r.apply(r.tracker.Step(scope.InputHeader), line, signature)
	case line.Indented:
		r.apply(r.tracker.Step(scope.InputIndented), line, header.Signature{})
	default:
		r.apply(r.tracker.Step(scope.InputUnindented), line, header.Signature{})
	}
}

func (r *run) apply(transition scope.Transition, line lex.Line, signature header.Signature) {
	if transition.CloseFunction {
		r.unit.CloseFunction()
	}

	if transition.OpenFunction {
		r.unit.OpenFunction(signature.Declaration())
		r.result.Functions++
	}

	if !transition.Statement {
		return
	}

	emitted, err := r.statements.Translate(line.Body())
	if err != nil {
		r.report(statementCode(err), line, err)
		return
	}

	section := emit.SectionEntry
	if transition.Next == scope.Inside {
		section = emit.SectionFunction
	}

	switch {
	case emitted.Declaration == "":
	case section == emit.SectionEntry:
		r.unit.Global(emitted.Declaration)
	default:
		r.unit.Statement(section, emitted.Declaration)
	}
	r.unit.Statement(section, emitted.Lines...)
	r.result.Statements++
}

func (r *run) report(code diagnostics.Code, line lex.Line, err error) {
	r.result.Skipped++
	r.result.Issues = append(r.result.Issues, diagnostics.New(code, line.Number, "%v", err))
}

func headerCode(err error) diagnostics.Code {
	if errors.Is(err, header.ErrDuplicateParameter) {
		return diagnostics.CodeDuplicateParameter
	}
	return diagnostics.CodeInvalidHeader
}

func statementCode(err error) diagnostics.Code {
	switch {
	case errors.Is(err, expr.ErrInvalidExpression):
		return diagnostics.CodeInvalidExpression
	case errors.Is(err, statement.ErrReservedName):
		return diagnostics.CodeReservedName
	default:
		return diagnostics.CodeUnknownStatement
	}
}
