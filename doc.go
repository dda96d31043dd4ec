// Package kindgraph compiles Kubernetes-style Swagger documents into a type
// graph:
//
// - kinds are discovered from x-kubernetes-group-version-kind metadata
// - every definition is classified into an object, container, union or interface type
// - anonymous nested objects get synthesized types of their own
// - non-fatal diagnostics are returned with JSON pointers into the document
//
// Typical usage:
//
//	g, d, err := kindgraph.CompileFile("swagger.json", kindgraph.Options{})
//	if err != nil {
//		return err
//	}
//	for _, w := range d.Warnings() {
//		log.Println(w)
//	}
//	for _, k := range g.Kinds() {
//		fmt.Println(k.APIVersion(), k.Kind, k.Type)
//	}
//
// The graph is frozen when returned; generators read it and never mutate it.
package kindgraph
