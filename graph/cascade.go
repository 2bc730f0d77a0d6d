package graph

import "sort"

// addBackEdge records that object parent references target via field,
// deduplicating repeated inserts of the same edge.
func (h *Heap) addBackEdge(target, parent ID, field string) {
	edges := h.reverse[target]
	for _, e := range edges {
		if e.parent == parent && e.field == field {
			return
		}
	}
	h.reverse[target] = append(edges, backEdge{parent: parent, field: field})
}

// removeBackEdge deletes the (parent, field) edge from target's reverse set,
// if present.
func (h *Heap) removeBackEdge(target, parent ID, field string) {
	edges := h.reverse[target]
	for i, e := range edges {
		if e.parent == parent && e.field == field {
			h.reverse[target] = append(edges[:i], edges[i+1:]...)
			break
		}
	}
	if len(h.reverse[target]) == 0 {
		delete(h.reverse, target)
	}
}

// sortedBackEdges returns a copy of target's back-edges sorted by
// (parent id, field name), so cascade propagation order is deterministic
// for any given insertion history regardless of slice-append order
// (spec.md §9's open question, resolved in favor of a sorted enumeration).
func (h *Heap) sortedBackEdges(target ID) []backEdge {
	edges := append([]backEdge(nil), h.reverse[target]...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].parent != edges[j].parent {
			return edges[i].parent < edges[j].parent
		}
		return edges[i].field < edges[j].field
	})
	return edges
}

// deleteCascade deletes root and propagates through mandatory back-edges, as
// specified in spec.md §4.3. It uses a work stack seeded with root and a
// visited set to terminate on cycles.
func (h *Heap) deleteCascade(root ID) {
	h.logEvent(EventCascadeTriggered, root, "", "")

	stack := []ID{root}
	visited := make(map[ID]bool)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[cur] {
			continue
		}
		visited[cur] = true

		o, ok := h.objects[cur]
		if !ok {
			continue
		}

		// 1. Propagate to parents through the reverse index.
		for _, e := range h.sortedBackEdges(cur) {
			p, ok := h.objects[e.parent]
			if !ok {
				continue
			}
			// Null out the forward link directly, bypassing SetField so the
			// cascade does not recurse indirectly before the parent's
			// mandatoriness is checked (spec.md §4.3).
			p.set(e.field, Null)
			h.removeBackEdge(cur, e.parent, e.field)
			h.logEvent(EventFieldNulledByCascade, e.parent, e.field, "")

			if h.registry.IsFieldMandatory(p.typeName, e.field) {
				stack = append(stack, e.parent)
			}
		}

		// 2. Sever outgoing links.
		for _, name := range append([]string(nil), o.order...) {
			v, ok := o.get(name)
			if !ok || !v.IsObject() {
				continue
			}
			h.removeBackEdge(v.ObjID(), cur, name)
		}

		// 3. Destroy cur.
		delete(h.objects, cur)
		delete(h.reverse, cur)
		h.logEvent(EventObjectDestroyed, cur, "", "")
	}
}
