package symbols

import "regexp"

// MaxIdentifierLength is the number of significant characters in a name.
const MaxIdentifierLength = 12

// IdentifierPattern matches one identifier; it is unanchored so statement
// patterns can embed it.
const IdentifierPattern = `[A-Za-z_][A-Za-z0-9_]{0,11}`

var identifierPattern = regexp.MustCompile(`^` + IdentifierPattern + `$`)

// reserved holds names a translated program cannot declare: C keywords plus
// the names the generated unit already defines.
var reserved = map[string]struct{}{
	"auto": {}, "break": {}, "case": {}, "char": {}, "const": {}, "continue": {},
	"default": {}, "do": {}, "double": {}, "else": {}, "enum": {}, "extern": {},
	"float": {}, "for": {}, "goto": {}, "if": {}, "inline": {}, "int": {},
	"long": {}, "register": {}, "restrict": {}, "return": {}, "short": {},
	"signed": {}, "sizeof": {}, "static": {}, "struct": {}, "switch": {},
	"typedef": {}, "union": {}, "unsigned": {}, "void": {}, "volatile": {},
	"while": {}, "main": {}, "tabc_print": {},
}

// IsIdentifier reports whether name is a valid identifier of at most
// MaxIdentifierLength characters.
func IsIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// IsReserved reports whether name collides with a C keyword or a name the
// generated unit defines.
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// Table is the set of identifiers declared as numeric variables during one
// translation run. It only grows and is not safe for concurrent use.
type Table struct {
	declared map[string]struct{}
	order    []string
}

// New returns an empty table.
func New() *Table {
	return &Table{declared: make(map[string]struct{})}
}

// Declare inserts name and reports whether it was absent.
func (t *Table) Declare(name string) bool {
	if _, exists := t.declared[name]; exists {
		return false
	}

	t.declared[name] = struct{}{}
	t.order = append(t.order, name)
	return true
}

func (t *Table) Has(name string) bool {
	_, exists := t.declared[name]
	return exists
}

func (t *Table) Len() int {
	return len(t.order)
}

// Names returns the declared identifiers in declaration order.
func (t *Table) Names() []string {
	return append([]string(nil), t.order...)
}
