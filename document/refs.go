package document

import (
	"strings"

	"k8s.io/kube-openapi/pkg/validation/spec"
)

const (
	definitionsPrefix = "#/definitions/"
	parametersPrefix  = "#/parameters/"
)

// RefName returns the simple name a local reference points at
// ("#/definitions/io.k8s.Foo" -> "io.k8s.Foo"). Non-local references keep
// their last path segment.
func RefName(ref string) string {
	if ref == "" {
		return ""
	}
	var name string
	switch {
	case strings.HasPrefix(ref, definitionsPrefix):
		name = strings.TrimPrefix(ref, definitionsPrefix)
	case strings.HasPrefix(ref, parametersPrefix):
		name = strings.TrimPrefix(ref, parametersPrefix)
	default:
		name = ref[strings.LastIndex(ref, "/")+1:]
	}
	return strings.ReplaceAll(strings.ReplaceAll(name, "~1", "/"), "~0", "~")
}

// DefinitionRef builds a local reference to a definition.
func DefinitionRef(name string) string {
	return definitionsPrefix + strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
}

func schemaRef(s *spec.Schema) string {
	if s == nil {
		return ""
	}
	return s.Ref.String()
}

func parameterRef(p *spec.Parameter) string {
	return p.Ref.String()
}

// Extension looks up a vendor extension, matching the key case-insensitively.
func Extension(ext spec.Extensions, key string) (any, bool) {
	if ext == nil {
		return nil, false
	}
	if v, ok := ext[key]; ok {
		return v, true
	}
	for k, v := range ext {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}
