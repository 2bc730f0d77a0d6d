package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caivega/cascadelang/graph"
	"github.com/caivega/cascadelang/schema"
)

func newTestHeap() (*graph.Heap, *schema.Registry) {
	reg := schema.NewRegistry()
	return graph.NewHeap(reg), reg
}

// Scenario 1 (spec.md §8): optional back-edge survives, mandatory field null
// destroys only the holder.
func TestOptionalBackEdgeSurvives(t *testing.T) {
	h, reg := newTestHeap()
	reg.DefineType("N", []schema.FieldDescriptor{
		{Name: "id", Mandatory: true},
		{Name: "next", Mandatory: false},
	})

	a := h.CreateObject("N", true, map[string]graph.Value{"id": graph.Number(1)})
	b := h.CreateObject("N", true, map[string]graph.Value{"id": graph.Number(2)})

	h.SetField(a, "next", graph.Object(b), reg.IsFieldMandatory("N", "next"))
	h.SetField(b, "id", graph.Null, reg.IsFieldMandatory("N", "id"))

	require.True(t, h.IsLive(a))
	require.False(t, h.IsLive(b))
	require.Equal(t, graph.Null, h.GetField(a, "next"))
}

// Scenario 3: when "next" is mandatory, nulling b.id cascades through
// a.next and destroys a too.
func TestMandatoryBackEdgeCascades(t *testing.T) {
	h, reg := newTestHeap()
	reg.DefineType("N", []schema.FieldDescriptor{
		{Name: "id", Mandatory: true},
		{Name: "next", Mandatory: true},
	})

	a := h.CreateObject("N", true, map[string]graph.Value{"id": graph.Number(1)})
	b := h.CreateObject("N", true, map[string]graph.Value{"id": graph.Number(2)})

	h.SetField(a, "next", graph.Object(b), reg.IsFieldMandatory("N", "next"))
	h.SetField(b, "id", graph.Null, reg.IsFieldMandatory("N", "id"))

	require.False(t, h.IsLive(a))
	require.False(t, h.IsLive(b))
}

// Scenario 4: a two-node cycle where every edge is mandatory is destroyed
// entirely when either node is deleted; the visited set prevents
// reprocessing.
func TestMandatoryCycleFullyDeleted(t *testing.T) {
	h, reg := newTestHeap()
	reg.DefineType("C", []schema.FieldDescriptor{{Name: "link", Mandatory: true}})

	x := h.CreateObject("C", true, nil)
	y := h.CreateObject("C", true, nil)
	h.SetField(x, "link", graph.Object(y), true)
	h.SetField(y, "link", graph.Object(x), true)

	h.SetField(x, "link", graph.Null, true)

	require.False(t, h.IsLive(x))
	require.False(t, h.IsLive(y))
}

// Scenario 5: an array element's cascade death nulls the slot but leaves
// the array (and its length) untouched; array fields are never mandatory.
func TestArrayElementCascadeLeavesArrayLive(t *testing.T) {
	h, reg := newTestHeap()
	reg.DefineType("Leaf", []schema.FieldDescriptor{{Name: "id", Mandatory: true}})

	a := h.CreateObject("Leaf", true, map[string]graph.Value{"id": graph.Number(1)})
	b := h.CreateObject("Leaf", true, map[string]graph.Value{"id": graph.Number(2)})
	arr := h.CreateArray([]graph.Value{graph.Object(a), graph.Object(b)})

	h.SetField(a, "id", graph.Null, reg.IsFieldMandatory("Leaf", "id"))

	require.False(t, h.IsLive(a))
	require.True(t, h.IsLive(arr))
	require.Equal(t, graph.Null, h.GetField(arr, "0"))
	require.Equal(t, graph.Object(b), h.GetField(arr, "1"))
	require.Equal(t, float64(2), h.GetField(arr, "length").Num())
}

// Scenario 6: untyped object literals have no mandatory fields at all.
func TestUntypedObjectNeverCascades(t *testing.T) {
	h, _ := newTestHeap()
	o := h.CreateObject("", false, map[string]graph.Value{"x": graph.Number(1)})
	h.SetField(o, "x", graph.Null, false)
	require.True(t, h.IsLive(o))
	require.Equal(t, graph.Null, h.GetField(o, "x"))
}

// Construction omitting a mandatory field never fires the cascade
// (spec.md §9 open question, resolved: legal).
func TestConstructionOmittingMandatoryFieldIsLegal(t *testing.T) {
	h, reg := newTestHeap()
	reg.DefineType("N", []schema.FieldDescriptor{{Name: "id", Mandatory: true}})
	id := h.CreateObject("N", true, nil)
	require.True(t, h.IsLive(id))
	require.Equal(t, graph.Null, h.GetField(id, "id"))
}

// Writes to a dead parent are silent no-ops.
func TestWriteToDeadParentIsNoOp(t *testing.T) {
	h, reg := newTestHeap()
	reg.DefineType("N", []schema.FieldDescriptor{{Name: "id", Mandatory: true}})
	id := h.CreateObject("N", true, map[string]graph.Value{"id": graph.Number(1)})
	h.SetField(id, "id", graph.Null, true)
	require.False(t, h.IsLive(id))

	require.NotPanics(t, func() {
		h.SetField(id, "id", graph.Number(42), true)
	})
	require.False(t, h.IsLive(id))
}

// Self-reference: an object mandatorily referencing itself is destroyed
// harmlessly without infinite recursion.
func TestSelfReferenceCascadeTerminates(t *testing.T) {
	h, reg := newTestHeap()
	reg.DefineType("Self", []schema.FieldDescriptor{
		{Name: "me", Mandatory: true},
		{Name: "tag", Mandatory: true},
	})
	id := h.CreateObject("Self", true, map[string]graph.Value{"tag": graph.Number(1)})
	h.SetField(id, "me", graph.Object(id), true)

	h.SetField(id, "tag", graph.Null, true)
	require.False(t, h.IsLive(id))
}

// P1/I1: forward/reverse symmetry holds after a sequence of writes that
// rebinds the same field repeatedly.
func TestForwardReverseSymmetry(t *testing.T) {
	h, reg := newTestHeap()
	reg.DefineType("N", []schema.FieldDescriptor{{Name: "next", Mandatory: false}})

	a := h.CreateObject("N", true, nil)
	b := h.CreateObject("N", true, nil)
	c := h.CreateObject("N", true, nil)

	h.SetField(a, "next", graph.Object(b), false)
	snap := snapshotByID(h, b)
	require.Len(t, snap.ReverseEdges, 1)
	require.Equal(t, a, snap.ReverseEdges[0].Parent)
	require.Equal(t, "next", snap.ReverseEdges[0].Field)

	// Rebind a.next to c: b's back-edge must be gone, c's must appear.
	h.SetField(a, "next", graph.Object(c), false)
	require.Empty(t, snapshotByID(h, b).ReverseEdges)
	snapC := snapshotByID(h, c)
	require.Len(t, snapC.ReverseEdges, 1)
	require.Equal(t, a, snapC.ReverseEdges[0].Parent)
}

// P4: deleting an object not reachable by any mandatory back-edge from a
// second object leaves that second object live.
func TestUnrelatedObjectSurvivesDeletion(t *testing.T) {
	h, reg := newTestHeap()
	reg.DefineType("N", []schema.FieldDescriptor{{Name: "id", Mandatory: true}})

	a := h.CreateObject("N", true, map[string]graph.Value{"id": graph.Number(1)})
	b := h.CreateObject("N", true, map[string]graph.Value{"id": graph.Number(2)})

	h.SetField(b, "id", graph.Null, true)

	require.True(t, h.IsLive(a))
	require.False(t, h.IsLive(b))
}

// ArrayPush and array growth via ArraySet past the current end.
func TestArrayGrowthLeavesHolesNull(t *testing.T) {
	h, _ := newTestHeap()
	arr := h.CreateArray(nil)
	h.ArrayPush(arr, graph.Number(1))
	h.ArraySet(arr, 3, graph.Number(9), false)

	require.Equal(t, float64(4), h.GetField(arr, "length").Num())
	require.Equal(t, graph.Null, h.GetField(arr, "1"))
	require.Equal(t, graph.Null, h.GetField(arr, "2"))
	require.Equal(t, float64(9), h.GetField(arr, "3").Num())
}

func snapshotByID(h *graph.Heap, id graph.ID) graph.ObjectSnapshot {
	for _, s := range h.Snapshot() {
		if s.ID == id {
			return s
		}
	}
	return graph.ObjectSnapshot{}
}
