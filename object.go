package sanejson

// SetOpt tweaks ObjectSetEx. The options are promises the caller makes,
// they never change what ends up in the object.
type SetOpt int

const (
	// KeyIsNew promises the key is not in the object yet, skipping the
	// existence lookup. Breaking the promise leaves two entries with the
	// same key and only one of them reachable.
	KeyIsNew SetOpt = 1 << iota
	// KeyIsConstant promises the key outlives the object, which would
	// let an implementation skip copying it. Go strings make the copy
	// free already, so the option is accepted and ignored.
	KeyIsConstant
)

// ObjectSet inserts val under key, taking ownership of val. Setting an
// existing key releases the old value and replaces it in place: the entry
// keeps its key slot and its position in insertion order.
func (v *Value) ObjectSet(key string, val *Value) {
	v.ObjectSetEx(key, val, 0)
}

func (v *Value) ObjectSetEx(key string, val *Value, opts SetOpt) {
	if v == nil || v.kind != Object {
		return
	}

	hash := hashKey(key)
	if opts&KeyIsNew == 0 {
		if e := v.obj.lookupHashed(key, hash); e != nil {
			e.val.Release()
			e.val = val
			return
		}
	}
	v.obj.insert(key, val, hash)
}

// ObjectGet returns the value under key or nil. The returned value is
// still owned by the object, Acquire it to keep it past the object.
func (v *Value) ObjectGet(key string) *Value {
	if v == nil || v.kind != Object {
		return nil
	}
	e := v.obj.lookup(key)
	if e == nil {
		return nil
	}
	return e.val
}

// ObjectGetChecked distinguishes a missing key from a stored null.
func (v *Value) ObjectGetChecked(key string) (*Value, bool) {
	if v == nil || v.kind != Object {
		return nil, false
	}
	e := v.obj.lookup(key)
	if e == nil {
		return nil, false
	}
	return e.val, true
}

// ObjectDel removes key, releasing the stored value. Re-adding the key
// afterwards puts it at the end of the insertion order.
func (v *Value) ObjectDel(key string) bool {
	if v == nil || v.kind != Object {
		return false
	}
	return v.obj.delete(key)
}

func (v *Value) ObjectLen() int {
	if v == nil || v.kind != Object {
		return 0
	}
	return v.obj.count
}

// ObjectForeach visits members in insertion order until fn returns false.
func (v *Value) ObjectForeach(fn func(key string, val *Value) bool) {
	if v == nil || v.kind != Object {
		return
	}
	v.obj.foreach(func(e *htEntry) bool {
		return fn(e.key, e.val)
	})
}

// ObjectKeys returns the keys in insertion order.
func (v *Value) ObjectKeys() []string {
	if v == nil || v.kind != Object {
		return nil
	}
	keys := make([]string, 0, v.obj.count)
	v.obj.foreach(func(e *htEntry) bool {
		keys = append(keys, e.key)
		return true
	})
	return keys
}
