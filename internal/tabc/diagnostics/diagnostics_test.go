package diagnostics

import "testing"

func TestDefinitionForKnownCodes(t *testing.T) {
	t.Parallel()

	codes := []Code{
		CodeInputUnavailable,
		CodeInvalidHeader,
		CodeDuplicateParameter,
		CodeUnknownStatement,
		CodeInvalidExpression,
		CodeReservedName,
		CodeOutputExists,
		CodeCompileFailed,
	}

	for _, code := range codes {
		definition := DefinitionFor(code)
		if definition.Code != code {
			t.Fatalf("definition.Code = %q, want %q", definition.Code, code)
		}
		if definition.DefaultStage == "" {
			t.Fatalf("definition.DefaultStage is empty for code %q", code)
		}
		if definition.DefaultSeverity == "" {
			t.Fatalf("definition.DefaultSeverity is empty for code %q", code)
		}
		if definition.Summary == "" {
			t.Fatalf("definition.Summary is empty for code %q", code)
		}
	}
}

func TestDefinitionForUnknownCodeDefaultsToWarning(t *testing.T) {
	t.Parallel()

	definition := DefinitionFor(Code("made_up"))
	if definition.DefaultSeverity != SeverityWarning {
		t.Fatalf("DefaultSeverity = %q, want %q", definition.DefaultSeverity, SeverityWarning)
	}
}

func TestNewAppliesDefinitionDefaults(t *testing.T) {
	t.Parallel()

	issue := New(CodeUnknownStatement, 3, "unknown statement: %s", "x ?? y")
	if issue.Stage != StageStatement {
		t.Fatalf("Stage = %q, want %q", issue.Stage, StageStatement)
	}
	if issue.Severity != SeverityError {
		t.Fatalf("Severity = %q, want %q", issue.Severity, SeverityError)
	}
	if issue.Message != "unknown statement: x ?? y" {
		t.Fatalf("Message = %q", issue.Message)
	}
	if issue.Span == nil || issue.Span.Line != 3 {
		t.Fatalf("Span = %+v, want line 3", issue.Span)
	}

	if unspanned := New(CodeInputUnavailable, 0, "boom"); unspanned.Span != nil {
		t.Fatalf("Span = %+v, want nil", unspanned.Span)
	}
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	if HasErrors(nil) {
		t.Fatal("HasErrors(nil) = true")
	}
	if HasErrors([]Issue{{Code: CodeOutputExists, Severity: SeverityWarning}}) {
		t.Fatal("HasErrors(warning) = true")
	}
	if !HasErrors([]Issue{{Code: CodeUnknownStatement, Severity: SeverityError}}) {
		t.Fatal("HasErrors(error) = false")
	}
}

func TestQualifyKeepsExistingPaths(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		{Code: CodeUnknownStatement},
		{Code: CodeOutputExists, Path: "out/prog.c"},
	}

	qualified := Qualify("prog.tl", issues)
	if qualified[0].Path != "prog.tl" {
		t.Fatalf("qualified[0].Path = %q, want prog.tl", qualified[0].Path)
	}
	if qualified[1].Path != "out/prog.c" {
		t.Fatalf("qualified[1].Path = %q, want out/prog.c", qualified[1].Path)
	}
	if issues[0].Path != "" {
		t.Fatal("Qualify mutated its input")
	}
}
