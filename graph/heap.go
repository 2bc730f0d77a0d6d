package graph

import (
	"sort"
	"strconv"

	"github.com/cznic/mathutil"

	"github.com/caivega/cascadelang/schema"
)

// backEdge is the pair (parent identifier, field name) recorded in a target
// object's reverse index (spec.md §3).
type backEdge struct {
	parent ID
	field  string
}

// Heap is the sole owner of all CascadeLang objects: the forward store
// (id -> object) and the reverse index (id -> back-edges pointing at it). It
// also holds the type registry consulted during cascade propagation, since
// the registry is logically part of the heap (spec.md §2).
type Heap struct {
	registry *schema.Registry

	nextID  ID
	objects map[ID]*object

	// reverse[target] is the insertion-ordered, deduplicated set of
	// back-edges currently pointing at target.
	reverse map[ID][]backEdge

	events []CascadeEvent
}

// NewHeap creates an empty heap bound to the given type registry.
func NewHeap(registry *schema.Registry) *Heap {
	return &Heap{
		registry: registry,
		nextID:   1,
		objects:  make(map[ID]*object),
		reverse:  make(map[ID][]backEdge),
	}
}

// Registry returns the heap's bound type registry.
func (h *Heap) Registry() *schema.Registry { return h.registry }

// IsLive reports whether id currently names a live object.
func (h *Heap) IsLive(id ID) bool {
	if id == None {
		return false
	}
	_, ok := h.objects[id]
	return ok
}

// CreateObject allocates a new identifier, optionally typed, and installs
// any initial field values. It does not validate mandatoriness: an object
// may be born missing mandatory fields (spec.md §4.2); the cascade only
// fires on a later explicit null write.
func (h *Heap) CreateObject(typeName string, hasType bool, initial map[string]Value) ID {
	id := h.alloc()
	o := newObject(id, typeName, hasType)
	// Deterministic install order so reverse-edge bookkeeping (and hence
	// cascade propagation order) never depends on Go map iteration order.
	keys := make([]string, 0, len(initial))
	for k := range initial {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := initial[k]
		o.set(k, v)
		if v.IsObject() && h.IsLive(v.ObjID()) {
			h.addBackEdge(v.ObjID(), id, k)
		}
	}
	h.objects[id] = o
	h.logEvent(EventObjectCreated, id, "", typeLabel(typeName, hasType))
	return id
}

// CreateArray allocates an untyped array object, installing element slots at
// numeric field names and setting length.
func (h *Heap) CreateArray(elements []Value) ID {
	id := h.alloc()
	o := newObject(id, ArrayType, true)
	for i, v := range elements {
		name := strconv.Itoa(i)
		o.set(name, v)
		if v.IsObject() && h.IsLive(v.ObjID()) {
			h.addBackEdge(v.ObjID(), id, name)
		}
	}
	o.set(LengthField, Number(float64(len(elements))))
	h.objects[id] = o
	h.logEvent(EventObjectCreated, id, "", ArrayType)
	return id
}

// GetField returns the field value, or Null if absent or the object is dead.
func (h *Heap) GetField(id ID, name string) Value {
	o, ok := h.objects[id]
	if !ok {
		return Null
	}
	v, ok := o.get(name)
	if !ok {
		return Null
	}
	return v
}

// ObjectHandle is a read-only borrow of an object record, used by callers
// that need to introspect a type name (e.g. to query mandatoriness before a
// write) without being able to mutate heap state directly.
type ObjectHandle struct {
	ID       ID
	TypeName string
	HasType  bool
	IsArray  bool
	Length   int
}

// GetObject returns a handle for id, or ok=false if dead.
func (h *Heap) GetObject(id ID) (ObjectHandle, bool) {
	o, ok := h.objects[id]
	if !ok {
		return ObjectHandle{}, false
	}
	return ObjectHandle{
		ID:       o.id,
		TypeName: o.typeName,
		HasType:  o.hasType,
		IsArray:  o.isArray(),
		Length:   o.length(),
	}, true
}

// SetField is the single mutating entry point for field writes (spec.md
// §4.3). isMandatory must be the caller's mandatoriness query result for
// (parent's type, name) — typically via h.Registry().IsFieldMandatory.
func (h *Heap) SetField(parentID ID, name string, value Value, isMandatory bool) {
	o, ok := h.objects[parentID]
	if !ok {
		return // dead parent: silent no-op (spec.md §4.3 step 1)
	}

	if prev, had := o.get(name); had && prev.IsObject() {
		h.removeBackEdge(prev.ObjID(), parentID, name)
	}

	if value.IsNull() && isMandatory {
		h.deleteCascade(parentID)
		return
	}

	o.set(name, value)
	if value.IsObject() && h.IsLive(value.ObjID()) {
		h.addBackEdge(value.ObjID(), parentID, name)
	}
	h.logEvent(EventFieldSet, parentID, name, value.String())
}

// ArrayPush appends value at index == current length, growing length by one
// and tracking a back-edge if value is a live object reference.
func (h *Heap) ArrayPush(id ID, value Value) {
	o, ok := h.objects[id]
	if !ok {
		return
	}
	idx := o.length()
	name := strconv.Itoa(idx)
	o.set(name, value)
	if value.IsObject() && h.IsLive(value.ObjID()) {
		h.addBackEdge(value.ObjID(), id, name)
	}
	newLen := mathutil.Max(idx+1, o.length())
	o.set(LengthField, Number(float64(newLen)))
	h.logEvent(EventFieldSet, id, name, value.String())
}

// ArraySet writes value at an arbitrary index, extending length to
// index+1 if the index is at or past the current end (spec.md §4.4 /
// §9 open question: intermediate slots stay absent and read back as null).
func (h *Heap) ArraySet(id ID, index int, value Value, isMandatory bool) {
	o, ok := h.objects[id]
	if !ok {
		return
	}
	name := strconv.Itoa(index)
	h.SetField(id, name, value, isMandatory)
	if !h.IsLive(id) {
		return // the write above may have cascaded the array itself away
	}
	if index >= o.length() {
		o.set(LengthField, Number(float64(mathutil.Max(index+1, o.length()))))
	}
}

func (h *Heap) alloc() ID {
	id := h.nextID
	h.nextID++
	return id
}

func typeLabel(typeName string, hasType bool) string {
	if !hasType {
		return ""
	}
	return typeName
}
