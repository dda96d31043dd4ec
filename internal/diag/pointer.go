package diag

import (
	"strconv"
	"strings"
)

// Pointer builds RFC 6901 JSON Pointers to schema elements. The zero value is
// the document root. Pointers are immutable; every builder returns a copy.
type Pointer struct {
	parts []string
}

// Root returns the document root pointer.
func Root() Pointer { return Pointer{} }

// Definition points at #/definitions/<name>.
func Definition(name string) Pointer { return Root().Field("definitions").Field(name) }

// PathItem points at #/paths/<url>.
func PathItem(url string) Pointer { return Root().Field("paths").Field(url) }

// Field appends an escaped object key.
func (p Pointer) Field(name string) Pointer {
	if name == "" {
		return p
	}
	return Pointer{parts: append(append([]string{}, p.parts...), Escape(name))}
}

// Index appends an array index.
func (p Pointer) Index(i int) Pointer {
	return Pointer{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

// Property points at properties/<name> below p.
func (p Pointer) Property(name string) Pointer { return p.Field("properties").Field(name) }

func (p Pointer) String() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Escape escapes '~' -> '~0' and '/' -> '~1'.
func Escape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
