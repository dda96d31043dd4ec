package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gobuffalo/flect"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/reoring/kindgraph/internal/diag"
)

// Canonical definitions CRD imports refer to.
const (
	ObjectMetaDefinition  = "io.k8s.apimachinery.pkg.apis.meta.v1.ObjectMeta"
	IntOrStringDefinition = "io.k8s.apimachinery.pkg.util.intstr.IntOrString"
)

// ErrNoCRDs is returned by FromCRDs when the bundle holds no
// CustomResourceDefinition.
var ErrNoCRDs = errors.New("document: no CustomResourceDefinition in bundle")

type crdVersion struct {
	gvk        schema.GroupVersionKind
	plural     string
	namespaced bool
	schema     map[string]any
	order      keyOrder
	src        diag.Pointer
}

// definitionName is "<reversed group>.<version>.<Kind>", the way the API
// server names published CRD schemas.
func (v crdVersion) definitionName() string {
	parts := strings.Split(v.gvk.Group, ".")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	prefix := strings.Join(parts, ".")
	if prefix == "" {
		return v.gvk.Version + "." + v.gvk.Kind
	}
	return prefix + "." + v.gvk.Version + "." + v.gvk.Kind
}

func (v crdVersion) collectionPath() string {
	base := "/apis/" + v.gvk.Group + "/" + v.gvk.Version
	if v.gvk.Group == "" {
		base = "/api/" + v.gvk.Version
	}
	if v.namespaced {
		return base + "/namespaces/{namespace}/" + v.plural
	}
	return base + "/" + v.plural
}

func (v crdVersion) gvkExtension() map[string]any {
	return map[string]any{"group": v.gvk.Group, "kind": v.gvk.Kind, "version": v.gvk.Version}
}

// FromCRDs converts a multi-document YAML bundle of CustomResourceDefinitions
// into a Swagger document: one definition and one collection path per served
// version. Documents of other kinds are ignored.
func FromCRDs(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var versions []crdVersion
	for i := 0; ; i++ {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("document: crd bundle document %d: %w", i, err)
		}
		order := keyOrder{}
		v, err := yamlToValue(&node, diag.Root(), order)
		if err != nil {
			return nil, fmt.Errorf("document: crd bundle document %d: %w", i, err)
		}
		m := stringMap(v)
		if k, _ := m["kind"].(string); k != "CustomResourceDefinition" {
			continue
		}
		vs, err := crdVersions(m, order)
		if err != nil {
			return nil, err
		}
		versions = append(versions, vs...)
	}
	if len(versions) == 0 {
		return nil, ErrNoCRDs
	}
	return crdDocument(versions)
}

// crdVersions reads spec.versions[].schema.openAPIV3Schema, falling back to
// the legacy spec.validation.openAPIV3Schema shared by all versions.
func crdVersions(crd map[string]any, order keyOrder) ([]crdVersion, error) {
	name, _ := stringMap(crd["metadata"])["name"].(string)
	sp := stringMap(crd["spec"])
	group, _ := sp["group"].(string)
	names := stringMap(sp["names"])
	kind, _ := names["kind"].(string)
	if kind == "" {
		return nil, fmt.Errorf("document: crd %q: spec.names.kind is required", name)
	}
	plural, _ := names["plural"].(string)
	if plural == "" {
		plural = flect.Pluralize(strings.ToLower(kind))
	}
	scope, _ := sp["scope"].(string)
	namespaced := scope == "" || scope == "Namespaced"

	specPtr := diag.Root().Field("spec")
	legacy := stringMap(stringMap(sp["validation"])["openAPIV3Schema"])
	legacyPtr := specPtr.Field("validation").Field("openAPIV3Schema")

	base := crdVersion{plural: plural, namespaced: namespaced, order: order}
	var out []crdVersion
	list, _ := sp["versions"].([]any)
	for i, raw := range list {
		vm := stringMap(raw)
		if vm == nil {
			continue
		}
		if served, ok := vm["served"].(bool); ok && !served {
			continue
		}
		version, _ := vm["name"].(string)
		v := base
		v.gvk = schema.GroupVersionKind{Group: group, Version: version, Kind: kind}
		if oas := stringMap(stringMap(vm["schema"])["openAPIV3Schema"]); oas != nil {
			v.schema = oas
			v.src = specPtr.Field("versions").Index(i).Field("schema").Field("openAPIV3Schema")
		} else {
			v.schema = legacy
			v.src = legacyPtr
		}
		out = append(out, v)
	}
	if len(list) == 0 {
		if version, _ := sp["version"].(string); version != "" {
			v := base
			v.gvk = schema.GroupVersionKind{Group: group, Version: version, Kind: kind}
			v.schema = legacy
			v.src = legacyPtr
			out = append(out, v)
		}
	}
	return out, nil
}

func crdDocument(versions []crdVersion) (*Document, error) {
	order := keyOrder{}
	defs := map[string]any{}
	var defOrder []string
	paths := map[string]any{}
	var pathOrder []string
	usesIntOrString := false

	for _, v := range versions {
		name := v.definitionName()
		if _, dup := defs[name]; dup {
			return nil, fmt.Errorf("document: crd version %s defined twice", v.gvk)
		}
		body := deepCopyValue(v.schema)
		def, _ := body.(map[string]any)
		if def == nil {
			def = map[string]any{}
		}
		if _, ok := def["type"]; !ok {
			def["type"] = "object"
		}
		def[ExtGroupVersionKind] = []any{v.gvkExtension()}
		props := stringMap(def["properties"])
		if props == nil {
			props = map[string]any{}
			def["properties"] = props
		}
		_, hadMetadata := props["metadata"]
		props["metadata"] = map[string]any{
			"$ref":        DefinitionRef(ObjectMetaDefinition),
			"description": "Standard object's metadata.",
		}
		for key, p := range props {
			if key == "metadata" {
				continue
			}
			replaced, found := rewriteIntOrString(p)
			props[key] = replaced
			usesIntOrString = usesIntOrString || found
		}

		defs[name] = def
		defOrder = append(defOrder, name)
		order.rebase(v.order, v.src.String(), diag.Definition(name).String())
		if !hadMetadata {
			propsPtr := diag.Definition(name).Field("properties").String()
			order[propsPtr] = append(order[propsPtr], "metadata")
		}

		path := v.collectionPath()
		paths[path] = crdPathItem(v, name)
		pathOrder = append(pathOrder, path)
	}

	defs[ObjectMetaDefinition] = objectMetaSchema()
	defOrder = append(defOrder, ObjectMetaDefinition)
	order[diag.Definition(ObjectMetaDefinition).Field("properties").String()] = []string{"name", "namespace", "labels", "annotations"}
	if usesIntOrString {
		defs[IntOrStringDefinition] = map[string]any{
			"description": "IntOrString is a type that can hold an int32 or a string.",
			"type":        "string",
			"format":      "int-or-string",
		}
		defOrder = append(defOrder, IntOrStringDefinition)
	}
	order[diag.Root().Field("definitions").String()] = defOrder
	order[diag.Root().Field("paths").String()] = pathOrder

	raw := map[string]any{
		"swagger": "2.0",
		"info": map[string]any{
			"title":   "Kubernetes CRD bundle",
			"version": "unversioned",
		},
		"paths":       paths,
		"definitions": defs,
		"parameters":  sharedCRDParameters(),
	}
	sw, err := swaggerFromValue(raw)
	if err != nil {
		return nil, err
	}
	return &Document{swagger: sw, order: order}, nil
}

func crdPathItem(v crdVersion, def string) map[string]any {
	ref := map[string]any{"$ref": DefinitionRef(def)}
	item := map[string]any{
		"post": map[string]any{
			"description": "create a " + v.gvk.Kind,
			"operationId": "create" + flect.Capitalize(v.gvk.Version) + v.gvk.Kind,
			"consumes":    []any{"application/json", "application/yaml"},
			"parameters": []any{
				map[string]any{"name": "body", "in": "body", "required": true, "schema": ref},
				map[string]any{"$ref": "#/parameters/dryRun"},
				map[string]any{"$ref": "#/parameters/fieldManager"},
			},
			"responses": map[string]any{
				"200": map[string]any{"description": "OK", "schema": ref},
				"201": map[string]any{"description": "Created", "schema": ref},
			},
			ExtAction:           "post",
			ExtGroupVersionKind: v.gvkExtension(),
		},
		"get": map[string]any{
			"description": "list or watch objects of kind " + v.gvk.Kind,
			"operationId": "list" + flect.Capitalize(v.gvk.Version) + v.gvk.Kind,
			"parameters": []any{
				map[string]any{"$ref": "#/parameters/labelSelector"},
				map[string]any{"$ref": "#/parameters/limit"},
				map[string]any{"$ref": "#/parameters/watch"},
			},
			"responses": map[string]any{
				"200": map[string]any{"description": "OK"},
			},
			ExtAction:           "list",
			ExtGroupVersionKind: v.gvkExtension(),
		},
	}
	if v.namespaced {
		item["parameters"] = []any{map[string]any{"$ref": "#/parameters/namespace"}}
	}
	return item
}

func sharedCRDParameters() map[string]any {
	return map[string]any{
		"namespace": map[string]any{
			"name": "namespace", "in": "path", "type": "string", "required": true, "uniqueItems": true,
			"description": "object name and auth scope, such as for teams and projects",
		},
		"dryRun": map[string]any{
			"name": "dryRun", "in": "query", "type": "string", "uniqueItems": true,
			"description": "When present, indicates that modifications should not be persisted.",
		},
		"fieldManager": map[string]any{
			"name": "fieldManager", "in": "query", "type": "string", "uniqueItems": true,
			"description": "fieldManager is a name associated with the actor or entity that is making these changes.",
		},
		"labelSelector": map[string]any{
			"name": "labelSelector", "in": "query", "type": "string", "uniqueItems": true,
			"description": "A selector to restrict the list of returned objects by their labels.",
		},
		"limit": map[string]any{
			"name": "limit", "in": "query", "type": "integer", "uniqueItems": true,
			"description": "limit is a maximum number of responses to return for a list call.",
		},
		"watch": map[string]any{
			"name": "watch", "in": "query", "type": "boolean", "uniqueItems": true,
			"description": "Watch for changes to the described resources.",
		},
	}
}

func objectMetaSchema() map[string]any {
	stringMapSchema := func(desc string) map[string]any {
		return map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "string"},
			"description":          desc,
		}
	}
	return map[string]any{
		"description": "ObjectMeta is metadata that all persisted resources must have.",
		"type":        "object",
		"properties": map[string]any{
			"name":        map[string]any{"type": "string", "description": "Name must be unique within a namespace."},
			"namespace":   map[string]any{"type": "string", "description": "Namespace defines the space within which each name must be unique."},
			"labels":      stringMapSchema("Map of string keys and values that can be used to organize and categorize objects."),
			"annotations": stringMapSchema("Annotations is an unstructured key value map stored with a resource."),
		},
	}
}

// rewriteIntOrString replaces every x-kubernetes-int-or-string schema below v
// with a reference to the IntOrString definition.
func rewriteIntOrString(v any) (any, bool) {
	m := stringMap(v)
	if m == nil {
		return v, false
	}
	if flag, _ := m[ExtIntOrString].(bool); flag {
		out := map[string]any{"$ref": DefinitionRef(IntOrStringDefinition)}
		if desc, ok := m["description"]; ok {
			out["description"] = desc
		}
		return out, true
	}
	found := false
	if props := stringMap(m["properties"]); props != nil {
		for k, p := range props {
			var f bool
			props[k], f = rewriteIntOrString(p)
			found = found || f
		}
	}
	for _, key := range []string{"items", "additionalProperties"} {
		if sub := stringMap(m[key]); sub != nil {
			var f bool
			m[key], f = rewriteIntOrString(sub)
			found = found || f
		}
	}
	return m, found
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = deepCopyValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = deepCopyValue(t[i])
		}
		return out
	default:
		return v
	}
}
