// Package document is the read-only view of a Swagger 2.0 API schema that the
// compiler consumes: operations by URL and method, definitions in document
// order, vendor extensions and tagged schema nodes.
package document

import (
	"net/http"
	"strings"

	"k8s.io/kube-openapi/pkg/validation/spec"

	"github.com/reoring/kindgraph/internal/diag"
	"github.com/reoring/kindgraph/typegraph"
)

// Vendor extension keys. Lookups are case-insensitive.
const (
	ExtGroupVersionKind = "x-kubernetes-group-version-kind"
	ExtAction           = "x-kubernetes-action"
	ExtIntOrString      = "x-kubernetes-int-or-string"
)

// Document is a parsed schema document. It is immutable once loaded.
type Document struct {
	swagger *spec.Swagger
	order   keyOrder
}

// New wraps an in-memory Swagger document. Without a raw source the key order
// of paths, definitions and properties falls back to sorted order.
func New(sw *spec.Swagger) *Document {
	if sw == nil {
		sw = &spec.Swagger{}
	}
	return &Document{swagger: sw, order: keyOrder{}}
}

// Swagger returns the underlying typed document.
func (d *Document) Swagger() *spec.Swagger { return d.swagger }

// Title returns info.title, or "" when absent.
func (d *Document) Title() string {
	if d.swagger.Info == nil {
		return ""
	}
	return d.swagger.Info.Title
}

// Platform derives the platform package prefixes from the document title.
func (d *Document) Platform() typegraph.PlatformSpecifics {
	prefixes := []string{"io.k8s"}
	if strings.Contains(strings.ToLower(d.Title()), "openshift") {
		prefixes = append(prefixes, "com.github")
	}
	return typegraph.PlatformSpecifics{PackagePrefixes: prefixes}
}

// Operation is one HTTP operation of a path, with parameters resolved and
// merged with those declared on the path item.
type Operation struct {
	URL         string
	Method      string
	ID          string
	Description string
	// Kind is the raw x-kubernetes-group-version-kind value, nil when absent.
	Kind       any
	Action     string
	Parameters []spec.Parameter
	Extensions spec.Extensions
	Pointer    diag.Pointer

	responses *spec.Responses
}

// BodyRef returns the definition referenced by the single body parameter, or
// "" when there is none or it is not a reference.
func (o *Operation) BodyRef() string {
	var body *spec.Parameter
	for i := range o.Parameters {
		if o.Parameters[i].In != "body" {
			continue
		}
		if body != nil {
			return ""
		}
		body = &o.Parameters[i]
	}
	if body == nil {
		return ""
	}
	return RefName(schemaRef(body.Schema))
}

// ResponseRef returns the definition referenced by the response for status
// code, or "".
func (o *Operation) ResponseRef(code int) string {
	if o.responses == nil {
		return ""
	}
	r, ok := o.responses.StatusCodeResponses[code]
	if !ok {
		return ""
	}
	return RefName(schemaRef(r.Schema))
}

// ParametersIn returns the parameters of one location ("query", "path", ...)
// in declaration order.
func (o *Operation) ParametersIn(in string) []spec.Parameter {
	var out []spec.Parameter
	for _, p := range o.Parameters {
		if p.In == in {
			out = append(out, p)
		}
	}
	return out
}

// Paths returns the path URLs in document order.
func (d *Document) Paths() []string {
	if d.swagger.Paths == nil {
		return nil
	}
	return orderedKeys(d.order, diag.Root().Field("paths"), d.swagger.Paths.Paths)
}

// Operations returns every operation, paths in document order and methods in
// the fixed order GET, PUT, POST, DELETE, OPTIONS, HEAD, PATCH.
func (d *Document) Operations() []Operation {
	var out []Operation
	for _, url := range d.Paths() {
		item := d.swagger.Paths.Paths[url]
		methods := []struct {
			name string
			op   *spec.Operation
		}{
			{http.MethodGet, item.Get},
			{http.MethodPut, item.Put},
			{http.MethodPost, item.Post},
			{http.MethodDelete, item.Delete},
			{http.MethodOptions, item.Options},
			{http.MethodHead, item.Head},
			{http.MethodPatch, item.Patch},
		}
		for _, m := range methods {
			if m.op == nil {
				continue
			}
			out = append(out, d.operation(url, m.name, item.Parameters, m.op))
		}
	}
	return out
}

func (d *Document) operation(url, method string, shared []spec.Parameter, op *spec.Operation) Operation {
	o := Operation{
		URL:         url,
		Method:      method,
		ID:          op.ID,
		Description: op.Description,
		Extensions:  op.Extensions,
		Pointer:     diag.PathItem(url).Field(strings.ToLower(method)),
		responses:   op.Responses,
	}
	if v, ok := Extension(op.Extensions, ExtGroupVersionKind); ok {
		o.Kind = v
	}
	if v, ok := Extension(op.Extensions, ExtAction); ok {
		o.Action, _ = v.(string)
	}
	own := make([]spec.Parameter, 0, len(op.Parameters))
	for _, p := range op.Parameters {
		own = append(own, d.resolveParameter(p))
	}
	type paramKey struct{ in, name string }
	overridden := make(map[paramKey]struct{}, len(own))
	for _, p := range own {
		overridden[paramKey{p.In, p.Name}] = struct{}{}
	}
	for _, p := range shared {
		p = d.resolveParameter(p)
		if _, ok := overridden[paramKey{p.In, p.Name}]; ok {
			continue
		}
		o.Parameters = append(o.Parameters, p)
	}
	o.Parameters = append(o.Parameters, own...)
	return o
}

// resolveParameter replaces a #/parameters/<name> reference with the shared
// parameter. Unresolvable references are returned unchanged.
func (d *Document) resolveParameter(p spec.Parameter) spec.Parameter {
	ref := parameterRef(&p)
	if ref == "" || d.swagger.Parameters == nil {
		return p
	}
	if shared, ok := d.swagger.Parameters[RefName(ref)]; ok {
		return shared
	}
	return p
}

// DefinitionNames returns the definition names in document order.
func (d *Document) DefinitionNames() []string {
	return orderedKeys(d.order, diag.Root().Field("definitions"), d.swagger.Definitions)
}

// Definition looks up a definition by raw name.
func (d *Document) Definition(name string) (*Definition, bool) {
	s, ok := d.swagger.Definitions[name]
	if !ok {
		return nil, false
	}
	return d.definition(name, &s), true
}

// Definitions returns every definition in document order.
func (d *Document) Definitions() []*Definition {
	names := d.DefinitionNames()
	out := make([]*Definition, 0, len(names))
	for _, name := range names {
		s := d.swagger.Definitions[name]
		out = append(out, d.definition(name, &s))
	}
	return out
}
