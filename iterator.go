package sanejson

// ObjectIterator walks an object in insertion order. It stays valid as
// long as the object isn't mutated. Key, Value and Next on an iterator
// already at the end are contract violations and panic.
//
//	for it := obj.ObjectBegin(); !it.Equal(obj.ObjectEnd()); it.Next() {
//		... it.Key(), it.Value() ...
//	}
type ObjectIterator struct {
	e *htEntry
}

// ObjectBegin returns an iterator at the first member, or the end
// iterator for an empty or non-object value.
func (v *Value) ObjectBegin() ObjectIterator {
	if v == nil || v.kind != Object {
		return ObjectIterator{}
	}
	return ObjectIterator{e: v.obj.head}
}

// ObjectEnd returns the past-the-last iterator. It is the same for every
// object.
func (v *Value) ObjectEnd() ObjectIterator {
	return ObjectIterator{}
}

func (it *ObjectIterator) Next() {
	if it.e == nil {
		panic("sanejson: Next on object iterator past the end")
	}
	it.e = it.e.ordNext
}

func (it ObjectIterator) Key() string {
	if it.e == nil {
		panic("sanejson: Key on object iterator past the end")
	}
	return it.e.key
}

func (it ObjectIterator) Value() *Value {
	if it.e == nil {
		panic("sanejson: Value on object iterator past the end")
	}
	return it.e.val
}

func (it ObjectIterator) Equal(other ObjectIterator) bool {
	return it.e == other.e
}
