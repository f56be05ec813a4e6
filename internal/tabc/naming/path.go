package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Planner generates deterministic output file names for a batch of inputs.
type Planner struct {
	used map[string]int
}

// NewPlanner creates a planner with collision tracking.
func NewPlanner() *Planner {
	return &Planner{used: make(map[string]int)}
}

// Next returns a unique file name for input with its extension replaced by
// ext. Repeated stems get -1, -2, ... suffixes.
func (p *Planner) Next(input string, ext string) string {
	stem := Stem(input)
	key := strings.ToLower(stem + ext)

	p.used[key]++
	count := p.used[key]

	if count > 1 {
		stem = fmt.Sprintf("%s-%d", stem, count-1)
	}

	return stem + ext
}

// Stem returns the file-safe base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = unsafeChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")
	if base == "" {
		return "program"
	}
	return base
}
