package exec

import "fmt"

// UnlinkableKind discriminates why instantiation could not resolve a
// module's declared imports against the supplied import sets.
type UnlinkableKind string

const (
	UnlinkableUnknownImport          UnlinkableKind = "unknown import"
	UnlinkableIncompatibleImportType UnlinkableKind = "incompatible import type"
)

// UnlinkableError reports a failure to resolve or type-check one of a
// module's declared imports.
type UnlinkableError struct {
	Kind       UnlinkableKind
	ModuleName string
	FieldName  string
}

func (e *UnlinkableError) Error() string {
	return fmt.Sprintf("%s: %s.%s", e.Kind, e.ModuleName, e.FieldName)
}

// UninstantiableKind discriminates why an otherwise linkable module
// failed to instantiate.
type UninstantiableKind string

const (
	UninstantiableOutOfBoundsTableAccess  UninstantiableKind = "out of bounds table access"
	UninstantiableOutOfBoundsMemoryAccess UninstantiableKind = "out of bounds memory access"
)

// UninstantiableError reports an instantiation-time semantic failure:
// an active segment whose offset falls outside its target.
type UninstantiableError struct {
	Kind UninstantiableKind
}

func (e *UninstantiableError) Error() string { return string(e.Kind) }

// InvocationKind discriminates why a call into an exported or table
// function was rejected before its body ever ran.
type InvocationKind string

const (
	InvocationArityMismatch InvocationKind = "argument count mismatch"
	InvocationTypeMismatch  InvocationKind = "argument type mismatch"
)

// InvocationError reports that the arguments passed to Function.Call did
// not match its declared signature.
type InvocationError struct {
	Kind   InvocationKind
	Detail string
}

func (e *InvocationError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}
