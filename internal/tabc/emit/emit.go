package emit

import "strings"

const (
	// PrintHelper is the name of the generated numeric print function.
	PrintHelper = "tabc_print"

	// NumericType is the C type of every value.
	NumericType = "double"

	BlockOpen  = "{"
	BlockClose = "}"
	Indent     = "\t"
)

const prelude = `#include <math.h>
#include <stdio.h>

static void ` + PrintHelper + `(double value) {
	if (value == floor(value)) {
		printf("%.0f\n", value);
	} else {
		printf("%.6f\n", value);
	}
}
`

const (
	entryOpen  = "int main(void) {\n"
	entryClose = "\treturn 0;\n}\n"
)

// Section selects where a statement is written.
type Section int

const (
	SectionEntry Section = iota
	SectionFunction
)

// Unit accumulates a C translation unit. Function definitions and
// entry-point statements are kept apart so that the rendered unit defines
// every function at file scope ahead of main; each section keeps the order
// in which it was written. Globals are declared ahead of every function.
type Unit struct {
	prototypes []string
	globals    []string
	functions  strings.Builder
	entry      strings.Builder
}

// Global adds a file-scope declaration.
func (u *Unit) Global(declaration string) {
	u.globals = append(u.globals, declaration)
}

// OpenFunction starts a definition for declaration and records its prototype.
func (u *Unit) OpenFunction(declaration string) {
	u.prototypes = append(u.prototypes, declaration+";")
	u.functions.WriteString(declaration)
	u.functions.WriteString(" " + BlockOpen + "\n")
}

// CloseFunction ends the definition started by OpenFunction.
func (u *Unit) CloseFunction() {
	u.functions.WriteString(BlockClose + "\n\n")
}

// Statement writes lines, one indentation level deep, to section.
func (u *Unit) Statement(section Section, lines ...string) {
	target := &u.entry
	if section == SectionFunction {
		target = &u.functions
	}

	for _, line := range lines {
		target.WriteString(Indent)
		target.WriteString(line)
		target.WriteString("\n")
	}
}

// String renders the complete unit.
func (u *Unit) String() string {
	var b strings.Builder
	b.WriteString(prelude)

	if len(u.prototypes) > 0 {
		b.WriteString("\n")
		for _, prototype := range u.prototypes {
			b.WriteString(prototype)
			b.WriteString("\n")
		}
	}

	if len(u.globals) > 0 {
		b.WriteString("\n")
		for _, global := range u.globals {
			b.WriteString(global)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(u.functions.String())
	b.WriteString(entryOpen)
	b.WriteString(u.entry.String())
	b.WriteString(entryClose)

	return b.String()
}
