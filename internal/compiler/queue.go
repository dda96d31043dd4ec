package compiler

import (
	"github.com/reoring/kindgraph/document"
	"github.com/reoring/kindgraph/typegraph"
)

// origin tells why a definition is waiting to be registered.
type origin int

const (
	// originDefinition is a schema definition fetched because something
	// depends on it before the main pass reached it.
	originDefinition origin = iota
	// originSynthesized is an inline object that gets a type of its own.
	originSynthesized
)

func (o origin) String() string {
	if o == originSynthesized {
		return "synthesized"
	}
	return "definition"
}

type pendingEntry struct {
	name   typegraph.TypeName
	def    *document.Definition
	origin origin
}

// pendingQueue is an insertion-ordered set of definitions awaiting
// registration. Entries can be dropped by name.
type pendingQueue struct {
	entries []pendingEntry
	index   map[typegraph.TypeName]int
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{index: make(map[typegraph.TypeName]int)}
}

func (q *pendingQueue) Len() int { return len(q.index) }

func (q *pendingQueue) Has(name typegraph.TypeName) bool {
	_, ok := q.index[name]
	return ok
}

// Push queues an entry. It reports false when the name is already queued.
func (q *pendingQueue) Push(e pendingEntry) bool {
	if q.Has(e.name) {
		return false
	}
	q.index[e.name] = len(q.entries)
	q.entries = append(q.entries, e)
	return true
}

// Drop removes a queued entry.
func (q *pendingQueue) Drop(name typegraph.TypeName) (pendingEntry, bool) {
	i, ok := q.index[name]
	if !ok {
		return pendingEntry{}, false
	}
	e := q.entries[i]
	q.entries[i] = pendingEntry{}
	delete(q.index, name)
	return e, true
}

// Take removes and returns every queued entry in insertion order.
func (q *pendingQueue) Take() []pendingEntry {
	out := make([]pendingEntry, 0, len(q.index))
	for _, e := range q.entries {
		if e.def != nil {
			out = append(out, e)
		}
	}
	q.entries = nil
	q.index = make(map[typegraph.TypeName]int)
	return out
}
