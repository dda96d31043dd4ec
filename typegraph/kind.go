package typegraph

import (
	"net/http"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Kind identifies a resource kind by group, version and kind. It is a value
// type usable as a map key.
type Kind = schema.GroupVersionKind

// NewKind builds a Kind from the (group, kind, version) triple found in
// x-kubernetes-group-version-kind.
func NewKind(group, kind, version string) Kind {
	return schema.GroupVersionKind{Group: group, Version: version, Kind: kind}
}

// ActionParameter describes one query or path parameter of a kind action.
type ActionParameter struct {
	Name        string
	Description string
	Type        TypeName
	UniqueItems bool
	Required    bool
}

// KindAction is one API operation acting on a kind.
type KindAction struct {
	Kind            Kind
	URL             string
	Method          string // upper-case HTTP verb
	Action          string // x-kubernetes-action, empty when absent
	Description     string
	RequestType     *TypeName
	ResponseType    *TypeName
	QueryParameters []ActionParameter
	PathParameters  []ActionParameter
}

// Writable reports whether the action creates resources of its kind.
func (a KindAction) Writable() bool { return a.Method == http.MethodPost }

// KindTypes lists the schema definitions that implement a kind, in document order.
type KindTypes struct {
	Kind  Kind
	Types []TypeName
}

// KindRegistration binds one definition type to the kind it implements.
type KindRegistration struct {
	Type    TypeName `json:"type" yaml:"type"`
	Group   string   `json:"group" yaml:"group"`
	Kind    string   `json:"kind" yaml:"kind"`
	Version string   `json:"version" yaml:"version"`
}

// GVK returns the registration's kind triple.
func (r KindRegistration) GVK() Kind { return NewKind(r.Group, r.Kind, r.Version) }

// APIVersion renders the apiVersion field value ("group/version", or the bare
// version for the core group).
func (r KindRegistration) APIVersion() string {
	return schema.GroupVersion{Group: r.Group, Version: r.Version}.String()
}

// PlatformSpecifics carries platform dependent naming: the definition-name
// prefixes that belong to the platform rather than to user packages.
type PlatformSpecifics struct {
	PackagePrefixes []string
}
