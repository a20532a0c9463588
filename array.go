package sanejson

// ArrayAdd appends val, taking ownership of it. No-op on non-arrays.
func (v *Value) ArrayAdd(val *Value) {
	if v == nil || v.kind != Array {
		return
	}
	v.arr.add(val)
}

// ArrayPutIdx stores val at idx, releasing whatever occupied the slot and
// null-padding the gap when idx is past the end. The padding slots read
// back as nil values.
func (v *Value) ArrayPutIdx(idx int, val *Value) {
	if v == nil || v.kind != Array {
		return
	}
	v.arr.putIdx(idx, val)
}

// ArrayGetIdx returns the element at idx or nil when out of range. The
// element stays owned by the array.
func (v *Value) ArrayGetIdx(idx int) *Value {
	if v == nil || v.kind != Array {
		return nil
	}
	return v.arr.getIdx(idx)
}

func (v *Value) ArrayLen() int {
	if v == nil || v.kind != Array {
		return 0
	}
	return v.arr.length()
}

// ArraySort sorts in place, unstably. The comparator must tolerate nil
// elements left behind by sparse ArrayPutIdx calls.
func (v *Value) ArraySort(cmp func(a, b *Value) int) {
	if v == nil || v.kind != Array {
		return
	}
	v.arr.sort(cmp)
}

// ArrayBsearch finds an element equal to key under cmp. Valid only after
// ArraySort with a compatible comparator.
func (v *Value) ArrayBsearch(key *Value, cmp func(a, b *Value) int) *Value {
	if v == nil || v.kind != Array {
		return nil
	}
	return v.arr.bsearch(key, cmp)
}
