package diagnostics

import "fmt"

// Code classifies translation failures and skips.
type Code string

const (
	CodeInputUnavailable   Code = "input_unavailable"
	CodeInvalidHeader      Code = "invalid_header"
	CodeDuplicateParameter Code = "duplicate_parameter"
	CodeUnknownStatement   Code = "unknown_statement"
	CodeInvalidExpression  Code = "invalid_expression"
	CodeReservedName       Code = "reserved_name"
	CodeOutputExists       Code = "output_exists"
	CodeCompileFailed      Code = "compile_failed"
)

// Stage identifies the pipeline stage where a diagnostic was raised.
type Stage string

const (
	StageSource    Stage = "source"
	StageHeader    Stage = "header"
	StageStatement Stage = "statement"
	StageFiles     Stage = "files"
	StageToolchain Stage = "toolchain"
)

// Severity indicates diagnostic impact.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Definition is canonical metadata for one diagnostic code.
type Definition struct {
	Code            Code
	DefaultStage    Stage
	DefaultSeverity Severity
	Summary         string
}

var definitions = map[Code]Definition{
	CodeInputUnavailable: {
		Code:            CodeInputUnavailable,
		DefaultStage:    StageSource,
		DefaultSeverity: SeverityError,
		Summary:         "cannot open input",
	},
	CodeInvalidHeader: {
		Code:            CodeInvalidHeader,
		DefaultStage:    StageHeader,
		DefaultSeverity: SeverityError,
		Summary:         "invalid function definition",
	},
	CodeDuplicateParameter: {
		Code:            CodeDuplicateParameter,
		DefaultStage:    StageHeader,
		DefaultSeverity: SeverityError,
		Summary:         "duplicate parameter",
	},
	CodeUnknownStatement: {
		Code:            CodeUnknownStatement,
		DefaultStage:    StageStatement,
		DefaultSeverity: SeverityError,
		Summary:         "unknown statement",
	},
	CodeInvalidExpression: {
		Code:            CodeInvalidExpression,
		DefaultStage:    StageStatement,
		DefaultSeverity: SeverityError,
		Summary:         "invalid expression",
	},
	CodeReservedName: {
		Code:            CodeReservedName,
		DefaultStage:    StageStatement,
		DefaultSeverity: SeverityError,
		Summary:         "reserved identifier",
	},
	CodeOutputExists: {
		Code:            CodeOutputExists,
		DefaultStage:    StageFiles,
		DefaultSeverity: SeverityWarning,
		Summary:         "output file already exists",
	},
	CodeCompileFailed: {
		Code:            CodeCompileFailed,
		DefaultStage:    StageToolchain,
		DefaultSeverity: SeverityError,
		Summary:         "compilation failed",
	},
}

// DefinitionFor resolves canonical metadata for a diagnostic code.
func DefinitionFor(code Code) Definition {
	if definition, ok := definitions[code]; ok {
		return definition
	}

	return Definition{
		Code:            code,
		DefaultStage:    StageStatement,
		DefaultSeverity: SeverityWarning,
		Summary:         string(code),
	}
}

// Span identifies a source range.
type Span struct {
	Line   int `json:"line,omitempty" yaml:"line,omitempty"`
	Column int `json:"column,omitempty" yaml:"column,omitempty"`
}

// Issue is a single translation diagnostic.
type Issue struct {
	Code     Code     `json:"code" yaml:"code"`
	Stage    Stage    `json:"stage,omitempty" yaml:"stage,omitempty"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
	Severity Severity `json:"severity,omitempty" yaml:"severity,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Span     *Span    `json:"span,omitempty" yaml:"span,omitempty"`
}

// New builds an issue with the code's default stage and severity.
// A line of zero or less leaves the span unset.
func New(code Code, line int, format string, args ...any) Issue {
	definition := DefinitionFor(code)
	issue := Issue{
		Code:     code,
		Stage:    definition.DefaultStage,
		Severity: definition.DefaultSeverity,
		Message:  fmt.Sprintf(format, args...),
	}
	if line > 0 {
		issue.Span = &Span{Line: line}
	}

	return issue
}

// HasErrors reports whether any issue is error-severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}

	return false
}

// Qualify fills the path of every issue that does not carry one.
func Qualify(path string, issues []Issue) []Issue {
	if len(issues) == 0 {
		return nil
	}

	qualified := make([]Issue, len(issues))
	for index := range issues {
		qualified[index] = issues[index]
		if qualified[index].Path == "" {
			qualified[index].Path = path
		}
	}

	return qualified
}
