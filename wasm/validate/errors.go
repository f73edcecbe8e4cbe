// Package validate type-checks a decoded module against the WebAssembly
// 1.0 validation rules: operand typing, branch and index bounds,
// constant-expression restrictions, and export uniqueness.
package validate

import "fmt"

// Kind discriminates the reasons a structurally well-formed module can
// fail validation. Its string value is the message the upstream
// WebAssembly spec test suite expects for that failure.
type Kind string

const (
	StartFunctionType                     Kind = "start function"
	TypeMismatch                          Kind = "type mismatch"
	TypeMustBeNumeric                     Kind = "type mismatch"
	UnknownLabel                          Kind = "unknown label"
	UnknownLocal                          Kind = "unknown local"
	UnknownGlobal                         Kind = "unknown global"
	UnknownFunction                       Kind = "unknown function"
	UnknownTable                          Kind = "unknown table"
	UnknownMemory                         Kind = "unknown memory"
	UnknownElement                        Kind = "unknown elem segment"
	UnknownData                           Kind = "unknown data segment"
	UnknownType                           Kind = "unknown type"
	ImmutableGlobal                       Kind = "global is immutable"
	BadAlignment                          Kind = "alignment must not be larger than natural"
	MultipleMemories                      Kind = "multiple memories"
	MemoryMaxPagesExceeded                Kind = "memory size must be at most 65536 pages (4GiB)"
	MemorySizeMinExceedsMax               Kind = "size minimum must not be greater than maximum"
	BadConstantExpression                 Kind = "constant expression required"
	ConstantExpressionGlobalMustBeImport  Kind = "unknown global"
	ConstantExpressionGlobalMustBeImmutable Kind = "constant expression required"
	FuncRefUndeclared                     Kind = "undeclared function reference"
	DuplicateExportName                   Kind = "duplicate export name"
	IfElseMismatch                        Kind = "type mismatch"
	InvalidResultArity                    Kind = "invalid result arity"
	UnusedStackValues                     Kind = "type mismatch"
)

// Error reports a semantic, as opposed to structural, failure to
// validate a module. The caller should discard the module.
type Error struct {
	Kind    Kind
	Detail  string
	FuncIdx int
	HasFunc bool
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.HasFunc {
		msg = fmt.Sprintf("%s (function %d)", msg, e.FuncIdx)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

func newErr(kind Kind, detail string) error {
	return &Error{Kind: kind, Detail: detail}
}

func newFuncErr(kind Kind, funcIdx int, detail string) error {
	return &Error{Kind: kind, Detail: detail, FuncIdx: funcIdx, HasFunc: true}
}

// Is reports whether err is a validation *Error of the given kind.
func Is(err error, kind Kind) bool {
	ve, ok := err.(*Error)
	return ok && ve.Kind == kind
}
