package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"

	"github.com/jacoelho/tabc/internal/tabc/diagnostics"
)

// Format determines how summaries are printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Issue captures a specific translation warning/error.
type Issue = diagnostics.Issue

// FileResult is the per-input translation outcome.
type FileResult struct {
	SourcePath  string  `json:"source_path" yaml:"source_path"`
	OutputPath  string  `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	BinaryPath  string  `json:"binary_path,omitempty" yaml:"binary_path,omitempty"`
	Translated  bool    `json:"translated" yaml:"translated"`
	OutputBytes int     `json:"output_bytes,omitempty" yaml:"output_bytes,omitempty"`
	Functions   int     `json:"functions" yaml:"functions"`
	Statements  int     `json:"statements" yaml:"statements"`
	Issues      []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Summary aggregates outcomes across all translated inputs.
type Summary struct {
	Total      int                      `json:"total" yaml:"total"`
	Translated int                      `json:"translated" yaml:"translated"`
	Partial    int                      `json:"partial" yaml:"partial"`
	Failed     int                      `json:"failed" yaml:"failed"`
	ByCode     map[diagnostics.Code]int `json:"by_code,omitempty" yaml:"by_code,omitempty"`
	Files      []FileResult             `json:"files,omitempty" yaml:"files,omitempty"`
}

// HasErrors reports whether the summary contains any error-severity issue.
func (s Summary) HasErrors() bool {
	for _, file := range s.Files {
		if diagnostics.HasErrors(file.Issues) {
			return true
		}
	}

	return false
}

// Issues returns every issue in file order.
func (s Summary) Issues() []Issue {
	var issues []Issue
	for _, file := range s.Files {
		issues = append(issues, file.Issues...)
	}
	return issues
}

// Add records one file result into the summary.
func (s *Summary) Add(result FileResult) {
	s.Total++
	if s.ByCode == nil {
		s.ByCode = make(map[diagnostics.Code]int)
	}

	for _, issue := range result.Issues {
		s.ByCode[issue.Code]++
	}

	s.Files = append(s.Files, result)

	switch {
	case !result.Translated:
		s.Failed++
	case len(result.Issues) > 0:
		s.Partial++
	default:
		s.Translated++
	}
}

// Write prints the summary in the requested format.
func (s Summary) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s)
	case FormatYAML:
		payload, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		_, err = w.Write(payload)
		return err
	case FormatText, "":
		return s.writeText(w)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

func (s Summary) writeText(w io.Writer) error {
	writef := func(format string, args ...any) error {
		if _, err := fmt.Fprintf(w, format, args...); err != nil {
			return err
		}
		return nil
	}

	if err := writef("Translation summary\n"); err != nil {
		return err
	}
	if err := writef("  total files: %d\n", s.Total); err != nil {
		return err
	}
	if err := writef("  translated: %d\n", s.Translated); err != nil {
		return err
	}
	if err := writef("  partial: %d\n", s.Partial); err != nil {
		return err
	}
	if err := writef("  failed: %d\n", s.Failed); err != nil {
		return err
	}

	for _, file := range s.Files {
		if !file.Translated || file.OutputPath == "" {
			continue
		}
		if err := writef("  %s -> %s (%s)\n", file.SourcePath, file.OutputPath, humanize.Bytes(uint64(file.OutputBytes))); err != nil {
			return err
		}
	}

	if len(s.ByCode) > 0 {
		if err := writef("\nIssues by code:\n"); err != nil {
			return err
		}
		codes := make([]diagnostics.Code, 0, len(s.ByCode))
		for code := range s.ByCode {
			codes = append(codes, code)
		}
		slices.Sort(codes)
		for _, code := range codes {
			if err := writef("  - %s: %d\n", code, s.ByCode[code]); err != nil {
				return err
			}
		}
	}

	return nil
}
