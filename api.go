package kindgraph

import (
	"github.com/go-logr/logr"

	"github.com/reoring/kindgraph/document"
	"github.com/reoring/kindgraph/internal/classify"
	"github.com/reoring/kindgraph/internal/compiler"
	"github.com/reoring/kindgraph/typegraph"
)

// Options controls a compilation. The zero value is ready to use.
type Options struct {
	// Logger receives progress lines. Defaults to logr.Discard().
	Logger logr.Logger
	// ScalarFormats maps (type, format) pairs to scalar types. Nil means
	// classify.DefaultFormats(); classify.LegacyFormats() maps plain numbers to
	// float64 instead of a decimal.
	ScalarFormats classify.FormatTable
	// ShowIgnoredAliases reports alias definitions as diagnostics and logs
	// them at info level instead of debug.
	ShowIgnoredAliases bool
	// CollectionExclusions names attributes that get no list or map
	// descriptor. Nil means ["status"].
	CollectionExclusions []string
	// Platform overrides the package prefixes derived from the document title.
	Platform *typegraph.PlatformSpecifics
}

// Diag carries the non-fatal diagnostics of a compilation.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
	Issues() Issues
}

type issueDiag struct{ issues Issues }

func (d *issueDiag) HasWarnings() bool { return len(d.issues) > 0 }
func (d *issueDiag) Issues() Issues    { return append(Issues(nil), d.issues...) }

func (d *issueDiag) Warnings() []string {
	out := make([]string, 0, len(d.issues))
	for _, it := range d.issues {
		out = append(out, it.String())
	}
	return out
}

// Compile builds the frozen type graph of doc. Diag is non-nil even when err
// is, and holds what was reported before the failure. No partial graph is
// returned.
func Compile(doc *document.Document, opts Options) (*typegraph.Graph, Diag, error) {
	g, issues, err := compiler.Compile(doc, compiler.Options{
		Logger:               opts.Logger,
		Formats:              opts.ScalarFormats,
		ShowIgnoredAliases:   opts.ShowIgnoredAliases,
		CollectionExclusions: opts.CollectionExclusions,
		Platform:             opts.Platform,
	})
	return g, &issueDiag{issues: issues}, err
}

// CompileBytes loads a Swagger 2.0 document in JSON or YAML and compiles it.
func CompileBytes(data []byte, opts Options) (*typegraph.Graph, Diag, error) {
	doc, err := document.Load(data)
	if err != nil {
		return nil, &issueDiag{}, err
	}
	return Compile(doc, opts)
}

// CompileFile reads and compiles the document at path.
func CompileFile(path string, opts Options) (*typegraph.Graph, Diag, error) {
	doc, err := document.LoadFile(path)
	if err != nil {
		return nil, &issueDiag{}, err
	}
	return Compile(doc, opts)
}

// CompileCRDs compiles a multi-document YAML bundle of CustomResourceDefinitions.
func CompileCRDs(data []byte, opts Options) (*typegraph.Graph, Diag, error) {
	doc, err := document.FromCRDs(data)
	if err != nil {
		return nil, &issueDiag{}, err
	}
	return Compile(doc, opts)
}
