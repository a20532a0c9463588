package sanejson

import "sort"

// arrayList is the backing store for array values. It knows nothing about
// JSON, it only keeps an ordered sequence and runs the element destructor
// on teardown. Slots may be nil after a sparse putIdx.
type arrayList struct {
	items  []*Value
	freeFn func(*Value)
}

func newArrayList(freeFn func(*Value)) *arrayList {
	return &arrayList{freeFn: freeFn}
}

func (a *arrayList) add(v *Value) {
	a.items = append(a.items, v)
}

// putIdx places v at idx, extending the list with nil slots if idx is
// beyond the current length. An occupied slot is freed first.
func (a *arrayList) putIdx(idx int, v *Value) {
	if idx < 0 {
		return
	}
	for idx >= len(a.items) {
		a.items = append(a.items, nil)
	}
	if old := a.items[idx]; old != nil && a.freeFn != nil {
		a.freeFn(old)
	}
	a.items[idx] = v
}

func (a *arrayList) getIdx(idx int) *Value {
	if idx < 0 || idx >= len(a.items) {
		return nil
	}
	return a.items[idx]
}

func (a *arrayList) length() int {
	return len(a.items)
}

// sort is unstable and in-place.
func (a *arrayList) sort(cmp func(a, b *Value) int) {
	sort.Slice(a.items, func(i, j int) bool {
		return cmp(a.items[i], a.items[j]) < 0
	})
}

// bsearch is only valid after sort with a compatible comparator.
func (a *arrayList) bsearch(key *Value, cmp func(a, b *Value) int) *Value {
	i := sort.Search(len(a.items), func(i int) bool {
		return cmp(a.items[i], key) >= 0
	})
	if i < len(a.items) && cmp(a.items[i], key) == 0 {
		return a.items[i]
	}
	return nil
}

func (a *arrayList) free() {
	if a.freeFn != nil {
		for _, v := range a.items {
			if v != nil {
				a.freeFn(v)
			}
		}
	}
	a.items = nil
}
