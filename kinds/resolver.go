// Package kinds discovers resource kinds from the group-version-kind vendor
// extension: the API actions of every kind, the definitions implementing it,
// and which kinds are writable.
package kinds

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-logr/logr"
	"k8s.io/kube-openapi/pkg/validation/spec"

	"github.com/reoring/kindgraph/document"
	"github.com/reoring/kindgraph/internal/diag"
	"github.com/reoring/kindgraph/typegraph"
)

// Options configures Resolve.
type Options struct {
	Logger logr.Logger
}

// Registry is the result of kind resolution. It is read-only.
type Registry struct {
	actionKinds []typegraph.Kind
	actions     map[typegraph.Kind][]typegraph.KindAction

	postKinds []typegraph.Kind
	writable  []typegraph.Kind

	typeKinds []typegraph.Kind
	types     map[typegraph.Kind][]typegraph.TypeName
	kindOf    map[typegraph.TypeName][]typegraph.Kind

	issues diag.Issues
}

// Resolve scans every operation and definition of doc. It fails when a
// group-version-kind extension is malformed, when a parameter type has no
// mapping, or when no writable kind is found.
func Resolve(doc *document.Document, opts Options) (*Registry, error) {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	r := &Registry{
		actions: make(map[typegraph.Kind][]typegraph.KindAction),
		types:   make(map[typegraph.Kind][]typegraph.TypeName),
		kindOf:  make(map[typegraph.TypeName][]typegraph.Kind),
	}
	var issues diag.Collector

	for _, op := range doc.Operations() {
		if op.Kind == nil {
			continue
		}
		kind, err := parseKind(op.Kind, op.Pointer.Field(document.ExtGroupVersionKind))
		if err != nil {
			return nil, err
		}
		action, err := newAction(kind, op)
		if err != nil {
			return nil, err
		}
		if _, seen := r.actions[kind]; !seen {
			r.actionKinds = append(r.actionKinds, kind)
		}
		r.actions[kind] = append(r.actions[kind], action)
		if action.Writable() && !slices.Contains(r.postKinds, kind) {
			r.postKinds = append(r.postKinds, kind)
		}
	}

	for _, def := range doc.Definitions() {
		if def.Kinds == nil {
			continue
		}
		name := typegraph.TypeName(def.Name)
		base := def.Pointer.Field(document.ExtGroupVersionKind)
		for i, raw := range def.Kinds {
			kind, err := parseKind(raw, base.Index(i))
			if err != nil {
				return nil, err
			}
			if slices.Contains(r.types[kind], name) {
				continue
			}
			if _, seen := r.types[kind]; !seen {
				r.typeKinds = append(r.typeKinds, kind)
			}
			r.types[kind] = append(r.types[kind], name)
			r.kindOf[name] = append(r.kindOf[name], kind)
		}
	}

	for _, k := range r.postKinds {
		if len(r.types[k]) == 0 {
			issues.Warnf(diag.CodeKindWithoutTypes, diag.Root(), "kind %s has a create operation but no definition", k)
			continue
		}
		r.writable = append(r.writable, k)
	}
	r.issues = issues.Issues()

	if len(r.writable) == 0 {
		return nil, diag.Fatalf(diag.CodeNoWritableKinds, diag.Root(),
			"no writable kinds found, kubernetes metadata missing (%d kinds with actions, %d with definitions)",
			len(r.actionKinds), len(r.typeKinds))
	}
	log.V(1).Info("kinds resolved",
		"actionKinds", len(r.actionKinds), "writableKinds", len(r.writable), "typedKinds", len(r.typeKinds))
	return r, nil
}

// parseKind reads one {group, kind, version} map with case-insensitive keys.
func parseKind(raw any, at diag.Pointer) (typegraph.Kind, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return typegraph.Kind{}, diag.Fatalf(diag.CodeInvalidGVK, at, "group-version-kind must be a map, got %T", raw)
	}
	norm := make(map[string]any, len(m))
	for k, v := range m {
		norm[strings.ToLower(k)] = v
	}
	var parts [3]string
	for i, key := range []string{"group", "kind", "version"} {
		v, ok := norm[key]
		if !ok {
			return typegraph.Kind{}, diag.Fatalf(diag.CodeMissingGVKKey, at, "group-version-kind is missing %q", key)
		}
		s, ok := v.(string)
		if !ok {
			return typegraph.Kind{}, diag.Fatalf(diag.CodeInvalidGVK, at, "group-version-kind %q must be a string, got %T", key, v)
		}
		parts[i] = s
	}
	return typegraph.NewKind(parts[0], parts[1], parts[2]), nil
}

func newAction(kind typegraph.Kind, op document.Operation) (typegraph.KindAction, error) {
	a := typegraph.KindAction{
		Kind:        kind,
		URL:         op.URL,
		Method:      op.Method,
		Action:      op.Action,
		Description: op.Description,
	}
	if ref := op.BodyRef(); ref != "" {
		a.RequestType = typegraph.TypeName(ref).Ptr()
	}
	if ref := op.ResponseRef(200); ref != "" {
		a.ResponseType = typegraph.TypeName(ref).Ptr()
	}
	var err error
	if a.QueryParameters, err = actionParameters(op, "query"); err != nil {
		return a, err
	}
	if a.PathParameters, err = actionParameters(op, "path"); err != nil {
		return a, err
	}
	return a, nil
}

var parameterTypes = map[string]typegraph.TypeName{
	"string":  typegraph.String,
	"boolean": typegraph.Boolean,
	"integer": typegraph.Int,
}

func actionParameters(op document.Operation, in string) ([]typegraph.ActionParameter, error) {
	params := op.ParametersIn(in)
	if len(params) == 0 {
		return nil, nil
	}
	out := make([]typegraph.ActionParameter, 0, len(params))
	for _, p := range params {
		t, err := parameterType(op, p)
		if err != nil {
			return nil, err
		}
		out = append(out, typegraph.ActionParameter{
			Name:        p.Name,
			Description: p.Description,
			Type:        t,
			UniqueItems: p.UniqueItems,
			Required:    p.Required,
		})
	}
	return out, nil
}

func parameterType(op document.Operation, p spec.Parameter) (typegraph.TypeName, error) {
	if t, ok := parameterTypes[p.Type]; ok {
		return t, nil
	}
	return "", diag.Fatalf(diag.CodeUnsupportedParameter, op.Pointer.Field("parameters"),
		"%s %s: %s parameter %q has unsupported type %q", op.Method, op.URL, p.In, p.Name, p.Type)
}

// Actions returns the API actions of a kind in discovery order.
func (r *Registry) Actions(k typegraph.Kind) []typegraph.KindAction {
	return append([]typegraph.KindAction(nil), r.actions[k]...)
}

// ActionKinds returns every kind with at least one action, in discovery order.
func (r *Registry) ActionKinds() []typegraph.Kind {
	return append([]typegraph.Kind(nil), r.actionKinds...)
}

// WritableKinds returns the kinds having a create operation and at least one
// definition, in the order their first create operation was found.
func (r *Registry) WritableKinds() []typegraph.Kind {
	return append([]typegraph.Kind(nil), r.writable...)
}

// Types returns the definitions implementing a kind, in document order.
func (r *Registry) Types(k typegraph.Kind) []typegraph.TypeName {
	return append([]typegraph.TypeName(nil), r.types[k]...)
}

// WritableKindTypes returns the candidate definitions of every writable kind.
func (r *Registry) WritableKindTypes() []typegraph.KindTypes {
	out := make([]typegraph.KindTypes, 0, len(r.writable))
	for _, k := range r.writable {
		out = append(out, typegraph.KindTypes{Kind: k, Types: r.Types(k)})
	}
	return out
}

// KindOf returns the kinds a definition declares itself a member of.
func (r *Registry) KindOf(definition string) []typegraph.Kind {
	return append([]typegraph.Kind(nil), r.kindOf[typegraph.TypeName(definition)]...)
}

// IsWritable reports whether k is a writable kind.
func (r *Registry) IsWritable(k typegraph.Kind) bool { return slices.Contains(r.writable, k) }

// Issues returns the non-fatal diagnostics found while resolving.
func (r *Registry) Issues() diag.Issues { return append(diag.Issues(nil), r.issues...) }

func (r *Registry) String() string {
	return fmt.Sprintf("kinds.Registry{actions: %d, writable: %d, typed: %d}", len(r.actionKinds), len(r.writable), len(r.typeKinds))
}
