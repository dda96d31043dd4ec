package compiler

import (
	"strings"

	"github.com/reoring/kindgraph/document"
	"github.com/reoring/kindgraph/internal/classify"
	"github.com/reoring/kindgraph/internal/diag"
	"github.com/reoring/kindgraph/typegraph"
)

// unionSeparator splits formats such as "int-or-string" into alternatives.
const unionSeparator = "-or-"

// unionTokens maps lower-cased union alternatives to their scalar types.
var unionTokens = map[string]typegraph.TypeName{
	"int":    typegraph.Int,
	"string": typegraph.String,
}

// define classifies one definition and registers its type node, or records
// why it was skipped.
func (b *builder) define(def *document.Definition) error {
	var err error
	switch {
	case def.IsObject():
		err = b.defineObject(def)
	case def.Type == "string":
		err = b.defineString(def)
	case def.Description != "" && !strings.HasPrefix(def.Description, "Deprecated"):
		err = b.register(&typegraph.InterfaceType{Meta: meta(def, nil)}, def.Pointer)
	default:
		b.skip(def, "%s is neither an object nor a string and carries no usable description", def.Name)
	}
	if err != nil {
		return err
	}
	return b.err
}

func (b *builder) defineObject(def *document.Definition) error {
	name := typegraph.TypeName(def.Name)
	shapes := make([]typegraph.Shape, 0, len(def.Properties))
	attrs := make([]typegraph.AttributeMeta, 0, len(def.Properties))
	for _, p := range def.Properties {
		shape, ok := b.classifier.Classify(name, p)
		if b.err != nil {
			return b.err
		}
		if !ok {
			continue
		}
		shapes = append(shapes, shape)
		if isReadOnly(p.Description) {
			continue
		}
		attrs = append(attrs, typegraph.AttributeMeta{
			Name:          p.Name,
			Documentation: p.Description,
			Required:      def.Required.Has(p.Name),
			Shape:         shape,
		})
	}
	deps := classify.Dependencies(shapes)
	obj := &typegraph.ObjectType{
		Meta:       meta(def, deps),
		Attributes: attrs,
		KindRoot:   b.kindRoots.Has(name),
	}
	if err := b.register(obj, def.Pointer); err != nil {
		return err
	}
	b.lookahead(deps)
	return nil
}

// defineString handles the string family: plain and date-time containers and
// "-or-" unions. Other formats are skipped.
func (b *builder) defineString(def *document.Definition) error {
	switch {
	case def.Format == "":
		return b.register(&typegraph.ContainerType{Meta: meta(def, nil), Element: typegraph.String}, def.Pointer)
	case def.Format == "date-time":
		elem := b.classifier.Scalar("string", def.Format, def.Pointer)
		return b.register(&typegraph.ContainerType{Meta: meta(def, classify.Dependencies([]typegraph.Shape{typegraph.Scalar(elem)})), Element: elem}, def.Pointer)
	case strings.Contains(def.Format, unionSeparator):
		alts, err := unionAlternatives(def)
		if err != nil {
			return err
		}
		return b.register(&typegraph.SealedType{Meta: meta(def, nil), Alternatives: alts}, def.Pointer)
	default:
		b.issues.Warnf(diag.CodeUnmappedFormat, def.Pointer, "string format %q has no type mapping", def.Format)
		b.skip(def, "string definition %s with format %q skipped", def.Name, def.Format)
		return nil
	}
}

func unionAlternatives(def *document.Definition) ([]typegraph.Alternative, error) {
	tokens := strings.Split(def.Format, unionSeparator)
	alts := make([]typegraph.Alternative, 0, len(tokens))
	for _, tok := range tokens {
		tag := strings.ToLower(tok)
		t, ok := unionTokens[tag]
		if !ok {
			return nil, diag.Fatalf(diag.CodeUnmappedUnionToken, def.Pointer.Field("format"),
				"don't know how to handle type split %q of format %q for %s", tok, def.Format, def.Name)
		}
		alts = append(alts, typegraph.Alternative{Tag: tag, Type: t})
	}
	return alts, nil
}

func (b *builder) skip(def *document.Definition, format string, a ...any) {
	name := typegraph.TypeName(def.Name)
	b.skipped.Insert(name)
	b.stats.SkippedDefinitions++
	b.issues.Warnf(diag.CodeSkippedDefinition, def.Pointer, format, a...)
	b.log.V(1).Info("skipped definition", "definition", def.Name)
}

func meta(def *document.Definition, deps []typegraph.TypeName) typegraph.Meta {
	return typegraph.Meta{
		Name:          typegraph.TypeName(def.Name),
		Documentation: def.Description,
		Dependencies:  deps,
	}
}
