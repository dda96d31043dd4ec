package compiler

import (
	"github.com/reoring/kindgraph/document"
	"github.com/reoring/kindgraph/internal/diag"
	"github.com/reoring/kindgraph/typegraph"
)

// metadataProperty is the property that holds the resource metadata in every
// kind's definition.
const metadataProperty = "metadata"

// resolveMetadata finds the canonical resource metadata type: the target of the
// first "metadata" reference among the writable kinds' definitions, scanned in
// registration order.
func (b *builder) resolveMetadata() error {
	for _, kt := range b.reg.WritableKindTypes() {
		for _, t := range kt.Types {
			def, ok := b.doc.Definition(string(t))
			if !ok {
				continue
			}
			for _, p := range def.Properties {
				if p.Name != metadataProperty {
					continue
				}
				ref, isRef := p.Node.(document.RefNode)
				if !isRef {
					continue
				}
				b.log.V(1).Info("resource metadata type resolved", "type", ref.Name, "from", t)
				return b.graph.SetMetadataType(typegraph.TypeName(ref.Name))
			}
		}
	}
	return diag.Fatalf(diag.CodeMetadataUnresolved, diag.Root(),
		"no writable kind definition has a %q property referring to a definition", metadataProperty)
}
