package header

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jacoelho/tabc/internal/tabc/emit"
	"github.com/jacoelho/tabc/internal/tabc/symbols"
)

// Keyword introduces a function header.
const Keyword = "function"

var (
	ErrInvalidHeader      = errors.New("invalid function definition")
	ErrDuplicateParameter = errors.New("duplicate parameter")
)

var (
	headerPattern   = regexp.MustCompile(`^` + Keyword + `(?:[ \t]|$)`)
	namePattern     = regexp.MustCompile(`^` + Keyword + `[ \t]+(\S+)`)
	partsPattern    = regexp.MustCompile(`^` + Keyword + `[ \t]+(\S+)[ \t]+(\S.*)$`)
	paramsSeparator = regexp.MustCompile(`[ \t,]+`)
)

// Signature is a parsed function header.
type Signature struct {
	Name       string
	Parameters []string
}

// IsHeader reports whether line, taken as written, starts a function.
// Indented lines are never headers.
func IsHeader(line string) bool {
	return headerPattern.MatchString(line)
}

// Parse splits a header line into its name and parameter list.
func Parse(line string) (Signature, error) {
	line = strings.TrimRight(line, " \t")
	matches := partsPattern.FindStringSubmatch(line)
	if matches == nil {
		if name := namePattern.FindStringSubmatch(line); name != nil {
			return Signature{}, fmt.Errorf("%w: function %s has no parameter list", ErrInvalidHeader, name[1])
		}
		return Signature{}, fmt.Errorf("%w: missing function name", ErrInvalidHeader)
	}

	name := matches[1]
	if err := checkName("function name", name); err != nil {
		return Signature{}, err
	}

	signature := Signature{Name: name}
	seen := make(map[string]struct{})
	for _, param := range paramsSeparator.Split(matches[2], -1) {
		if param == "" {
			continue
		}
		if err := checkName("parameter", param); err != nil {
			return Signature{}, err
		}
		if _, exists := seen[param]; exists {
			return Signature{}, fmt.Errorf("%w %q in function %s", ErrDuplicateParameter, param, name)
		}
		seen[param] = struct{}{}
		signature.Parameters = append(signature.Parameters, param)
	}

	return signature, nil
}

func checkName(kind, name string) error {
	if !symbols.IsIdentifier(name) {
		return fmt.Errorf("%w: %s %q is not an identifier of at most %d characters",
			ErrInvalidHeader, kind, name, symbols.MaxIdentifierLength)
	}
	if symbols.IsReserved(name) {
		return fmt.Errorf("%w: %s %q is reserved", ErrInvalidHeader, kind, name)
	}
	return nil
}

// Declaration renders the C declarator, without a trailing brace or semicolon.
func (s Signature) Declaration() string {
	params := "void"
	if len(s.Parameters) > 0 {
		typed := make([]string, len(s.Parameters))
		for index, param := range s.Parameters {
			typed[index] = emit.NumericType + " " + param
		}
		params = strings.Join(typed, ", ")
	}

	return fmt.Sprintf("%s %s(%s)", emit.NumericType, s.Name, params)
}
