// Package diag holds the diagnostic and fatal error model shared by the
// compiler stages. The root package re-exports these types.
package diag

import (
	"fmt"
	"strings"
)

// Fatal codes. Any of these aborts a compilation.
const (
	CodeMissingGVKKey        = "missing_gvk_key"
	CodeInvalidGVK           = "invalid_gvk"
	CodeUnsupportedParameter = "unsupported_parameter"
	CodeUnmappedUnionToken   = "unmapped_union_token"
	CodeNoWritableKinds      = "no_writable_kinds"
	CodeMetadataUnresolved   = "metadata_unresolved"
	CodeDuplicateType        = "duplicate_type"
)

// Non-fatal codes. The element is skipped or degraded and compilation continues.
const (
	CodeUnmappedFormat    = "unmapped_format"
	CodeUntypedProperty   = "untyped_property"
	CodeUnhandledProperty = "unhandled_property"
	CodeSkippedDefinition = "skipped_definition"
	CodeKindWithoutTypes  = "kind_without_types"
	CodeIgnoredAlias      = "ignored_alias"
)

// Class groups fatal codes into the error taxonomy.
type Class int

const (
	ClassMalformedInput Class = iota
	ClassUnsatisfiable
)

func (c Class) String() string {
	switch c {
	case ClassMalformedInput:
		return "malformed input"
	case ClassUnsatisfiable:
		return "unsatisfiable invariant"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// ClassOf reports the taxonomy class of a fatal code.
func ClassOf(code string) Class {
	switch code {
	case CodeNoWritableKinds, CodeMetadataUnresolved, CodeDuplicateType:
		return ClassUnsatisfiable
	default:
		return ClassMalformedInput
	}
}

// Issue is a single non-fatal diagnostic.
type Issue struct {
	Code    string
	Path    string // JSON Pointer into the schema document, "/" for the whole document.
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s at %s: %s", i.Code, i.Path, i.Message)
}

// Issues is an ordered collection of diagnostics.
type Issues []Issue

// Error reports how many diagnostics each code produced, in first-seen order,
// with the schema location of the first one. Issues can then travel as an
// error when a caller treats warnings as failures.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	var codes []string
	first := make(map[string]Issue)
	count := make(map[string]int)
	for _, it := range iss {
		if _, seen := first[it.Code]; !seen {
			codes = append(codes, it.Code)
			first[it.Code] = it
		}
		count[it.Code]++
	}
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		part := fmt.Sprintf("%s at %s", code, first[code].Path)
		if n := count[code]; n > 1 {
			part += fmt.Sprintf(" (+%d more)", n-1)
		}
		parts = append(parts, part)
	}
	return fmt.Sprintf("%d schema diagnostics: %s", len(iss), strings.Join(parts, "; "))
}

// ByCode returns the issues carrying the given code.
func (iss Issues) ByCode(code string) Issues {
	var out Issues
	for _, it := range iss {
		if it.Code == code {
			out = append(out, it)
		}
	}
	return out
}

// Error is a fatal compilation error. It names the offending schema element.
type Error struct {
	Code    string
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", ClassOf(e.Code), e.Message)
	if e.Path != "" && e.Path != "/" {
		fmt.Fprintf(&b, " (at %s)", e.Path)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches sentinels by code, and class sentinels by taxonomy class.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return t.Code == e.Code
	case classSentinel:
		return ClassOf(e.Code) == t.class
	}
	return false
}

type classSentinel struct{ class Class }

func (c classSentinel) Error() string { return c.class.String() }

// Sentinels for errors.Is.
var (
	ErrMalformedInput     error = classSentinel{class: ClassMalformedInput}
	ErrUnsatisfiable      error = classSentinel{class: ClassUnsatisfiable}
	ErrNoWritableKinds    error = &Error{Code: CodeNoWritableKinds}
	ErrMetadataUnresolved error = &Error{Code: CodeMetadataUnresolved}
	ErrDuplicateType      error = &Error{Code: CodeDuplicateType}
	ErrUnmappedUnionToken error = &Error{Code: CodeUnmappedUnionToken}
)

// Fatalf builds a fatal error at the given path.
func Fatalf(code string, p Pointer, format string, a ...any) *Error {
	return &Error{Code: code, Path: p.String(), Message: fmt.Sprintf(format, a...)}
}

// Collector accumulates non-fatal issues for one compilation.
type Collector struct {
	issues Issues
}

// Warnf records a non-fatal issue.
func (c *Collector) Warnf(code string, p Pointer, format string, a ...any) {
	c.issues = append(c.issues, Issue{Code: code, Path: p.String(), Message: fmt.Sprintf(format, a...)})
}

// HasWarnings reports whether any issue was recorded.
func (c *Collector) HasWarnings() bool { return len(c.issues) > 0 }

// Warnings returns a copy of the recorded issues.
func (c *Collector) Warnings() []string {
	out := make([]string, 0, len(c.issues))
	for _, it := range c.issues {
		out = append(out, it.String())
	}
	return out
}

// Issues returns a copy of the recorded issues in recording order.
func (c *Collector) Issues() Issues { return append(Issues(nil), c.issues...) }
