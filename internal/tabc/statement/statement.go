package statement

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jacoelho/tabc/internal/tabc/emit"
	"github.com/jacoelho/tabc/internal/tabc/expr"
	"github.com/jacoelho/tabc/internal/tabc/symbols"
)

var (
	// ErrUnknownStatement is returned for lines no matcher accepts.
	ErrUnknownStatement = errors.New("unknown statement")
	// ErrReservedName is returned for assignments to reserved identifiers.
	ErrReservedName = errors.New("reserved identifier")
)

// Kind tags a statement form.
type Kind string

const (
	KindReturn Kind = "return"
	KindAssign Kind = "assign"
	KindPrint  Kind = "print"
	KindCall   Kind = "call"
)

// Statement is one classified body line. Target holds the assigned variable
// or the called function; Expr holds the expression or argument text as
// written.
type Statement struct {
	Kind   Kind
	Target string
	Expr   string
}

// Matcher recognizes one statement shape.
type Matcher struct {
	Name  string
	Match func(line string) (Statement, bool)
}

var (
	returnPattern     = regexp.MustCompile(`^return (.+)$`)
	assignPattern     = regexp.MustCompile(`^(` + symbols.IdentifierPattern + `)\s*<-\s*(.+)$`)
	printPattern      = regexp.MustCompile(`^print (.+)$`)
	callPattern       = regexp.MustCompile(`^(` + symbols.IdentifierPattern + `)\((.*)\)$`)
	spacedCallPattern = regexp.MustCompile(`^(` + symbols.IdentifierPattern + `) +\((.*)$`)
)

// matchers is ordered by precedence; later shapes are more permissive and
// would shadow earlier ones.
var matchers = []Matcher{
	{Name: "return", Match: matchReturn},
	{Name: "assign", Match: matchAssign},
	{Name: "print", Match: matchPrint},
	{Name: "call", Match: matchCall},
	{Name: "spaced_call", Match: matchSpacedCall},
}

// Matchers returns the statement matchers in precedence order.
func Matchers() []Matcher {
	return append([]Matcher(nil), matchers...)
}

// Classify returns the first statement shape line matches.
func Classify(line string) (Statement, bool) {
	for _, matcher := range matchers {
		if statement, ok := matcher.Match(line); ok {
			return statement, true
		}
	}

	return Statement{}, false
}

func matchReturn(line string) (Statement, bool) {
	matches := returnPattern.FindStringSubmatch(line)
	if matches == nil {
		return Statement{}, false
	}
	return Statement{Kind: KindReturn, Expr: strings.TrimSpace(matches[1])}, true
}

func matchAssign(line string) (Statement, bool) {
	matches := assignPattern.FindStringSubmatch(line)
	if matches == nil {
		return Statement{}, false
	}
	return Statement{Kind: KindAssign, Target: matches[1], Expr: strings.TrimSpace(matches[2])}, true
}

func matchPrint(line string) (Statement, bool) {
	matches := printPattern.FindStringSubmatch(line)
	if matches == nil {
		return Statement{}, false
	}
	return Statement{Kind: KindPrint, Expr: strings.TrimSpace(matches[1])}, true
}

func matchCall(line string) (Statement, bool) {
	matches := callPattern.FindStringSubmatch(line)
	if matches == nil {
		return Statement{}, false
	}
	return Statement{Kind: KindCall, Target: matches[1], Expr: matches[2]}, true
}

func matchSpacedCall(line string) (Statement, bool) {
	matches := spacedCallPattern.FindStringSubmatch(line)
	if matches == nil {
		return Statement{}, false
	}
	return Statement{Kind: KindCall, Target: matches[1], Expr: stripUnmatchedClose(matches[2])}, true
}

// stripUnmatchedClose drops one trailing ')' the spaced call pattern captures
// along with the arguments.
func stripUnmatchedClose(args string) string {
	if strings.HasSuffix(args, ")") && strings.Count(args, ")") > strings.Count(args, "(") {
		return args[:len(args)-1]
	}
	return args
}

// Emitted is the C text for one statement. Declaration is set only for the
// first assignment to a variable, so the caller can place it in scope.
type Emitted struct {
	Declaration string
	Lines       []string
}

// Translator rewrites body statements into C, declaring variables in the
// run's symbol table on first assignment.
type Translator struct {
	symbols *symbols.Table
	strict  bool
}

// NewTranslator binds a translator to one run's symbol table. With strict
// set, expressions are validated before anything is emitted.
func NewTranslator(table *symbols.Table, strict bool) *Translator {
	return &Translator{symbols: table, strict: strict}
}

// Translate returns the C text for one body line with leading tabs removed.
func (t *Translator) Translate(line string) (Emitted, error) {
	statement, ok := Classify(line)
	if !ok {
		if strings.HasPrefix(line, " ") {
			return Emitted{}, fmt.Errorf("%w: %s (body lines are indented with a tab, not spaces)",
				ErrUnknownStatement, strings.TrimLeft(line, " \t"))
		}
		return Emitted{}, fmt.Errorf("%w: %s", ErrUnknownStatement, line)
	}

	if statement.Kind == KindAssign && symbols.IsReserved(statement.Target) {
		return Emitted{}, fmt.Errorf("%w: cannot assign to %q", ErrReservedName, statement.Target)
	}

	if t.strict {
		if err := validate(statement); err != nil {
			return Emitted{}, err
		}
	}

	return t.Emit(statement), nil
}

// Emit renders statement, registering assignment targets on first use.
func (t *Translator) Emit(statement Statement) Emitted {
	switch statement.Kind {
	case KindReturn:
		return Emitted{Lines: []string{fmt.Sprintf("return %s;", statement.Expr)}}
	case KindAssign:
		var emitted Emitted
		if t.symbols.Declare(statement.Target) {
			emitted.Declaration = fmt.Sprintf("%s %s = 0;", emit.NumericType, statement.Target)
		}
		emitted.Lines = []string{fmt.Sprintf("%s = %s;", statement.Target, statement.Expr)}
		return emitted
	case KindPrint:
		return Emitted{Lines: []string{fmt.Sprintf("%s(%s);", emit.PrintHelper, statement.Expr)}}
	case KindCall:
		return Emitted{Lines: []string{fmt.Sprintf("%s(%s);", statement.Target, statement.Expr)}}
	default:
		return Emitted{}
	}
}

func validate(statement Statement) error {
	var err error
	if statement.Kind == KindCall {
		err = expr.ValidateArguments(statement.Expr)
	} else {
		err = expr.Validate(statement.Expr)
	}
	if err != nil {
		return fmt.Errorf("%s statement: %w", statement.Kind, err)
	}
	return nil
}
