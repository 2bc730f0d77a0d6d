// Package graph owns the CascadeLang heap: the set of live objects, the
// reverse-reference index, and the cascade-delete algorithm that enforces
// field-mandatoriness invariants on every write.
package graph

import (
	"fmt"
	"strconv"
)

// Kind discriminates the variants of Value. CascadeLang fields never hold a
// bare integer doing double duty as an object id; every value carries its
// own tag.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindString
	KindObject
)

// ID names a live or formerly-live object. Zero means "none" and is never
// allocated to a real object.
type ID uint64

// None is the reserved "no object" identifier.
const None ID = 0

// Value is the tagged union of primitive values a heap field can hold:
// number, boolean, string, null, or an object identifier. Callables are a
// distinct variant that lives only in interpreter environments (lang/interp)
// and is never representable as a Value, by construction.
type Value struct {
	kind Kind
	num  float64
	b    bool
	str  string
	obj  ID
}

// Null is the null value.
var Null = Value{kind: KindNull}

// Number builds a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool builds a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String builds a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Object builds a value referencing the object identified by id. id must not
// be None; use Null to represent the absence of a reference.
func Object(id ID) Value { return Value{kind: KindObject, obj: id} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) IsObject() bool { return v.kind == KindObject }

// Num returns the numeric payload; only meaningful when Kind() == KindNumber.
func (v Value) Num() float64 { return v.num }

// BoolVal returns the boolean payload; only meaningful when Kind() == KindBool.
func (v Value) BoolVal() bool { return v.b }

// Str returns the string payload; only meaningful when Kind() == KindString.
func (v Value) Str() string { return v.str }

// ObjID returns the referenced identifier; only meaningful when
// Kind() == KindObject.
func (v Value) ObjID() ID { return v.obj }

// String renders v per the value-printing rules: object ids as
// "[Object#<id>]", strings quoted, null as "null", booleans as "true"/"false",
// numbers in host-default decimal.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindString:
		return strconv.Quote(v.str)
	case KindObject:
		return fmt.Sprintf("[Object#%d]", v.obj)
	default:
		return "null"
	}
}
