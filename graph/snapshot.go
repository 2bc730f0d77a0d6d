package graph

import "sort"

// ObjectSnapshot is a deterministic, point-in-time copy of one live object,
// used only by observational tooling (httpapi).
type ObjectSnapshot struct {
	ID           ID
	TypeName     string
	HasType      bool
	Fields       map[string]string // rendered via Value.String()
	ReverseEdges []ReverseEdgeSnapshot
}

// ReverseEdgeSnapshot is a copied (parent, field) back-edge.
type ReverseEdgeSnapshot struct {
	Parent ID
	Field  string
}

// Snapshot returns a deep, deterministic (sorted by id) copy of every live
// object and its reverse edges. Nothing in the cascade algorithm or the
// interpreter binding surface ever calls this; it exists purely so
// httpapi/repl can report heap state without holding a reference to the
// live, mutation-capable Heap.
func (h *Heap) Snapshot() []ObjectSnapshot {
	ids := make([]ID, 0, len(h.objects))
	for id := range h.objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]ObjectSnapshot, 0, len(ids))
	for _, id := range ids {
		o := h.objects[id]
		fields := make(map[string]string, len(o.order))
		for _, name := range o.order {
			v, _ := o.get(name)
			fields[name] = v.String()
		}
		edges := h.sortedBackEdges(id)
		revs := make([]ReverseEdgeSnapshot, len(edges))
		for i, e := range edges {
			revs[i] = ReverseEdgeSnapshot{Parent: e.parent, Field: e.field}
		}
		out = append(out, ObjectSnapshot{
			ID:           o.id,
			TypeName:     o.typeName,
			HasType:      o.hasType,
			Fields:       fields,
			ReverseEdges: revs,
		})
	}
	return out
}
