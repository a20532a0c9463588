// Package sanejson is an in-memory JSON tree: a reference-counted value
// model, an incremental chunk-fed parser and a configurable serializer.
// It carries no I/O of its own, bytes enter through Tokener.Feed and
// leave through Encode or WriteTo.
package sanejson

import "sync/atomic"

const (
	Null Kind = iota
	Bool
	Int64
	Double
	String
	Array
	Object
)

type Kind int

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Int64:
		return "int"
	case Double:
		return "double"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Serializer is a per-node formatting override. It returns the exact
// bytes to emit in place of the default per-kind formatting.
type Serializer func(v *Value, userdata any, flags Flag, depth int) []byte

// liveValues tracks nodes that were built and not yet torn down. Only the
// tests look at it, through LiveValues.
var liveValues int64

// LiveValues reports how many values are currently alive. A build-tree /
// release-root cycle must bring it back to where it started.
func LiveValues() int64 {
	return atomic.LoadInt64(&liveValues)
}

/*
Value is a node of the JSON tree. There are seven kinds:
 1. Null
 2. Bool
 3. Int64
 4. Double
 5. String
 6. Array
 7. Object

A value's kind never changes after construction. Exactly one payload field
is meaningful per kind. Every value is reference counted: Acquire and
Release are safe to call from multiple goroutines, everything else assumes
a single writer per tree.
*/
type Value struct {
	kind Kind
	refs int32

	b   bool
	i   int64
	f   float64
	src string // preserved number source, emitted verbatim

	s   string
	arr *arrayList
	obj *hashTable

	ser      Serializer
	userdata any
	userFree func(any)

	buf []byte // reused across Encode calls on this node
}

func newValue(kind Kind) *Value {
	atomic.AddInt64(&liveValues, 1)
	return &Value{kind: kind, refs: 1}
}

func NewNull() *Value {
	return newValue(Null)
}

func NewBool(b bool) *Value {
	v := newValue(Bool)
	v.b = b
	return v
}

func NewInt32(i int32) *Value {
	v := newValue(Int64)
	v.i = int64(i)
	return v
}

func NewInt64(i int64) *Value {
	v := newValue(Int64)
	v.i = i
	return v
}

func NewDouble(f float64) *Value {
	v := newValue(Double)
	v.f = f
	return v
}

// NewDoubleSource builds a double that remembers the exact text it came
// from, so re-serialization reproduces formatting like trailing zeros or
// exponent style.
func NewDoubleSource(f float64, src string) *Value {
	v := newValue(Double)
	v.f = f
	v.src = src
	return v
}

func NewString(s string) *Value {
	v := newValue(String)
	v.s = s
	return v
}

// NewStringBytes copies b. The string payload is a byte sequence with an
// explicit length, an embedded NUL doesn't terminate anything.
func NewStringBytes(b []byte) *Value {
	v := newValue(String)
	v.s = string(b)
	return v
}

func NewArray() *Value {
	v := newValue(Array)
	v.arr = newArrayList(func(el *Value) {
		el.Release()
	})
	return v
}

func NewObject() *Value {
	v := newValue(Object)
	v.obj = newHashTable(func(e *htEntry) {
		e.val.Release()
	})
	return v
}

func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

func (v *Value) Is(kind Kind) bool {
	return v != nil && v.kind == kind
}

func (v *Value) IsNull() bool   { return v != nil && v.kind == Null }
func (v *Value) IsBool() bool   { return v != nil && v.kind == Bool }
func (v *Value) IsInt() bool    { return v != nil && v.kind == Int64 }
func (v *Value) IsDouble() bool { return v != nil && v.kind == Double }
func (v *Value) IsString() bool { return v != nil && v.kind == String }
func (v *Value) IsArray() bool  { return v != nil && v.kind == Array }
func (v *Value) IsObject() bool { return v != nil && v.kind == Object }

// Acquire takes one more reference and returns the same node.
func (v *Value) Acquire() *Value {
	if v == nil {
		return nil
	}
	atomic.AddInt32(&v.refs, 1)
	return v
}

// Release drops one reference. When the count hits zero the userdata
// destructor runs first, then the kind-specific teardown, which in turn
// releases all children of arrays and objects. Returns true if this call
// freed the node.
func (v *Value) Release() bool {
	if v == nil {
		return false
	}
	if atomic.AddInt32(&v.refs, -1) > 0 {
		return false
	}

	if v.userFree != nil {
		v.userFree(v.userdata)
		v.userFree = nil
	}
	v.userdata = nil
	v.ser = nil

	switch v.kind {
	case Array:
		v.arr.free()
		v.arr = nil
	case Object:
		v.obj.free()
		v.obj = nil
	}
	v.buf = nil

	atomic.AddInt64(&liveValues, -1)
	return true
}

// SetSerializer overrides the default per-kind formatting of this node.
// A previously attached userdata destructor is invoked before the
// replacement. Passing a nil fn restores the default formatter.
func (v *Value) SetSerializer(fn Serializer, userdata any, free func(any)) {
	if v == nil {
		return
	}
	if v.userFree != nil {
		v.userFree(v.userdata)
	}
	if fn == nil {
		v.ser = nil
		v.userdata = nil
		v.userFree = nil
		return
	}
	v.ser = fn
	v.userdata = userdata
	v.userFree = free
}

// Userdata returns the opaque payload attached by SetSerializer.
func (v *Value) Userdata() any {
	if v == nil {
		return nil
	}
	return v.userdata
}

// Equal compares two trees structurally: kind by kind, objects by key set
// and per-key equality, arrays index-wise. Doubles that both carry a
// preserved source are compared by that exact text.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.b == b.b
	case Int64:
		return a.i == b.i
	case Double:
		if a.src != "" && b.src != "" {
			return a.src == b.src
		}
		return a.f == b.f
	case String:
		return a.s == b.s
	case Array:
		if a.arr.length() != b.arr.length() {
			return false
		}
		for i := 0; i < a.arr.length(); i++ {
			if !Equal(a.arr.getIdx(i), b.arr.getIdx(i)) {
				return false
			}
		}
		return true
	case Object:
		if a.obj.count != b.obj.count {
			return false
		}
		equal := true
		a.obj.foreach(func(e *htEntry) bool {
			other := b.obj.lookup(e.key)
			if other == nil || !Equal(e.val, other.val) {
				equal = false
			}
			return equal
		})
		return equal
	default:
		return false
	}
}
