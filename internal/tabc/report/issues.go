package report

import (
	"fmt"
	"io"

	"github.com/jacoelho/tabc/internal/tabc/diagnostics"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// WriteIssues prints one line per issue as path:line: severity: message [code].
// color adds ANSI colors to the severity.
func WriteIssues(w io.Writer, issues []Issue, color bool) error {
	for _, issue := range issues {
		if _, err := fmt.Fprintf(w, "%s: %s: %s [%s]\n",
			location(issue), severity(issue.Severity, color), issue.Message, issue.Code); err != nil {
			return err
		}
	}

	return nil
}

func location(issue Issue) string {
	path := issue.Path
	if path == "" {
		path = "<input>"
	}
	if issue.Span == nil || issue.Span.Line <= 0 {
		return path
	}
	return fmt.Sprintf("%s:%d", path, issue.Span.Line)
}

func severity(value diagnostics.Severity, color bool) string {
	if value == "" {
		value = diagnostics.SeverityWarning
	}
	if !color {
		return string(value)
	}

	code := colorCyan
	switch value {
	case diagnostics.SeverityError:
		code = colorRed
	case diagnostics.SeverityWarning:
		code = colorYellow
	}
	return code + string(value) + colorReset
}
