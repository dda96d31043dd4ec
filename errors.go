package kindgraph

import (
	"errors"

	"github.com/reoring/kindgraph/internal/diag"
)

// Fatal codes.
const (
	CodeMissingGVKKey        = diag.CodeMissingGVKKey
	CodeInvalidGVK           = diag.CodeInvalidGVK
	CodeUnsupportedParameter = diag.CodeUnsupportedParameter
	CodeUnmappedUnionToken   = diag.CodeUnmappedUnionToken
	CodeNoWritableKinds      = diag.CodeNoWritableKinds
	CodeMetadataUnresolved   = diag.CodeMetadataUnresolved
	CodeDuplicateType        = diag.CodeDuplicateType
)

// Non-fatal codes.
const (
	CodeUnmappedFormat    = diag.CodeUnmappedFormat
	CodeUntypedProperty   = diag.CodeUntypedProperty
	CodeUnhandledProperty = diag.CodeUnhandledProperty
	CodeSkippedDefinition = diag.CodeSkippedDefinition
	CodeKindWithoutTypes  = diag.CodeKindWithoutTypes
	CodeIgnoredAlias      = diag.CodeIgnoredAlias
)

// Issue is a single non-fatal diagnostic: a code, the JSON pointer of the
// schema element (for example /definitions/io.k8s.Foo/properties/bar) and a
// message.
type Issue = diag.Issue

// Issues is an ordered collection of diagnostics that implements error.
type Issues = diag.Issues

// Error is a fatal compilation error.
type Error = diag.Error

// Sentinels for errors.Is. Every fatal error is either ErrMalformedInput or
// ErrUnsatisfiable, and additionally matches the sentinel of its code.
var (
	ErrMalformedInput     = diag.ErrMalformedInput
	ErrUnsatisfiable      = diag.ErrUnsatisfiable
	ErrNoWritableKinds    = diag.ErrNoWritableKinds
	ErrMetadataUnresolved = diag.ErrMetadataUnresolved
	ErrDuplicateType      = diag.ErrDuplicateType
	ErrUnmappedUnionToken = diag.ErrUnmappedUnionToken
)

// AsError extracts the fatal compilation error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
