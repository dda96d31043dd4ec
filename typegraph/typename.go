package typegraph

import "strings"

// TypeName is a fully qualified type identifier. Schema definition names are
// used as-is ("io.k8s.api.core.v1.Pod"); the package is everything before the
// last dot. Two TypeNames are equal iff their qualified strings are equal.
type TypeName string

// Built-in scalar types. These never produce a dependency edge.
const (
	String  TypeName = "string"
	Int     TypeName = "int32"
	Long    TypeName = "int64"
	Boolean TypeName = "bool"
	Double  TypeName = "float64"
	Bytes   TypeName = "[]byte"
)

// Platform types. They are not schema definitions but still need an import.
const (
	Timestamp TypeName = "time.Time"
	Decimal   TypeName = "math/big.Float"
)

var builtins = map[TypeName]struct{}{
	String:  {},
	Int:     {},
	Long:    {},
	Boolean: {},
	Double:  {},
	Bytes:   {},
}

// IsBuiltin reports whether n names a language built-in scalar.
func IsBuiltin(n TypeName) bool {
	_, ok := builtins[n]
	return ok
}

// RequiresImport reports whether a reference to n is a dependency edge.
func (n TypeName) RequiresImport() bool { return n != "" && !IsBuiltin(n) }

// Package returns the qualifier before the last dot, or "" when unqualified.
func (n TypeName) Package() string {
	if IsBuiltin(n) {
		return ""
	}
	i := strings.LastIndex(string(n), ".")
	if i < 0 {
		return ""
	}
	return string(n[:i])
}

// Name returns the unqualified type name.
func (n TypeName) Name() string {
	if IsBuiltin(n) {
		return string(n)
	}
	i := strings.LastIndex(string(n), ".")
	return string(n[i+1:])
}

func (n TypeName) String() string { return string(n) }

// Ptr returns a pointer to a copy of n, for optional TypeName fields.
func (n TypeName) Ptr() *TypeName { return &n }
