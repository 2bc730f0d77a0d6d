package graph

// ArrayType is the reserved type name for array objects (spec.md §3).
const ArrayType = "__array__"

// LengthField is the distinguished field holding an array's element count.
const LengthField = "length"

// object is a single heap record: an identifier, an optional type name
// (absent for untyped literals; arrays carry the reserved ArrayType, which
// has no registered schema), and a field map. Key order is not semantically
// significant; it is kept as an insertion-ordered slice purely so Snapshot
// and value-printing produce deterministic output for tests and tooling.
type object struct {
	id       ID
	typeName string
	hasType  bool
	fields   map[string]Value
	order    []string // insertion order of keys currently present in fields
}

func newObject(id ID, typeName string, hasType bool) *object {
	return &object{
		id:       id,
		typeName: typeName,
		hasType:  hasType,
		fields:   make(map[string]Value),
	}
}

func (o *object) get(name string) (Value, bool) {
	v, ok := o.fields[name]
	return v, ok
}

// set installs fields[name] = v, tracking insertion order on first write.
func (o *object) set(name string, v Value) {
	if _, exists := o.fields[name]; !exists {
		o.order = append(o.order, name)
	}
	o.fields[name] = v
}

// unset removes a field entirely. The heap does not call it: destroying an
// object drops the whole record instead.
func (o *object) unset(name string) {
	if _, exists := o.fields[name]; !exists {
		return
	}
	delete(o.fields, name)
	for i, k := range o.order {
		if k == name {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// isArray reports whether this object is an array (spec.md §3).
func (o *object) isArray() bool {
	return o.hasType && o.typeName == ArrayType
}

// length returns the array's current length field, or 0 if absent/not numeric.
func (o *object) length() int {
	v, ok := o.fields[LengthField]
	if !ok || v.Kind() != KindNumber {
		return 0
	}
	return int(v.Num())
}
