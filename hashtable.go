package sanejson

import "github.com/cespare/xxhash/v2"

const htInitialBuckets = 16

// htEntry is a single object member. It sits on two chains at once: the
// bucket chain for lookup and the insertion-order chain for iteration.
// The entry itself is stable for its whole lifetime, only the chains are
// relinked on rehash, so callers holding keys are never invalidated.
type htEntry struct {
	key  string
	val  *Value
	hash uint64

	bucketNext *htEntry

	ordPrev *htEntry
	ordNext *htEntry
}

// hashTable is the order-preserving associative store behind object
// values. Lookup, insert and delete are O(1) expected; iteration follows
// the order keys were first added, independent of bucket layout.
type hashTable struct {
	buckets []*htEntry
	head    *htEntry
	tail    *htEntry
	count   int
	freeFn  func(*htEntry)
}

func newHashTable(freeFn func(*htEntry)) *hashTable {
	return &hashTable{
		buckets: make([]*htEntry, htInitialBuckets),
		freeFn:  freeFn,
	}
}

func hashKey(key string) uint64 {
	return xxhash.Sum64String(key)
}

func (h *hashTable) lookup(key string) *htEntry {
	return h.lookupHashed(key, hashKey(key))
}

// lookupHashed is the precomputed-hash twin of lookup, for the
// lookup-then-insert pattern where hashing the key twice would be waste.
func (h *hashTable) lookupHashed(key string, hash uint64) *htEntry {
	for e := h.buckets[hash&uint64(len(h.buckets)-1)]; e != nil; e = e.bucketNext {
		if e.hash == hash && e.key == key {
			return e
		}
	}
	return nil
}

// insert takes ownership of val and links the new entry at the back of
// the insertion-order chain. It must not be called for a key that is
// already present, that case is handled one level up by replacing the
// value in place.
func (h *hashTable) insert(key string, val *Value, hash uint64) *htEntry {
	// keep the table at most half full
	if (h.count+1)*2 > len(h.buckets) {
		h.rehash()
	}

	e := &htEntry{key: key, val: val, hash: hash}

	idx := hash & uint64(len(h.buckets)-1)
	e.bucketNext = h.buckets[idx]
	h.buckets[idx] = e

	if h.tail == nil {
		h.head = e
		h.tail = e
	} else {
		e.ordPrev = h.tail
		h.tail.ordNext = e
		h.tail = e
	}

	h.count++
	return e
}

// delete unlinks the entry from both chains in O(1) and runs the
// entry-free callback. Returns false if the key isn't present.
func (h *hashTable) delete(key string) bool {
	hash := hashKey(key)
	idx := hash & uint64(len(h.buckets)-1)

	var prev *htEntry
	for e := h.buckets[idx]; e != nil; prev, e = e, e.bucketNext {
		if e.hash != hash || e.key != key {
			continue
		}

		if prev == nil {
			h.buckets[idx] = e.bucketNext
		} else {
			prev.bucketNext = e.bucketNext
		}

		if e.ordPrev == nil {
			h.head = e.ordNext
		} else {
			e.ordPrev.ordNext = e.ordNext
		}
		if e.ordNext == nil {
			h.tail = e.ordPrev
		} else {
			e.ordNext.ordPrev = e.ordPrev
		}

		h.count--
		if h.freeFn != nil {
			h.freeFn(e)
		}
		return true
	}
	return false
}

// rehash doubles the bucket array and redistributes the bucket chains.
// The order chain is untouched, entries keep their identity.
func (h *hashTable) rehash() {
	buckets := make([]*htEntry, len(h.buckets)*2)
	mask := uint64(len(buckets) - 1)
	for e := h.head; e != nil; e = e.ordNext {
		idx := e.hash & mask
		e.bucketNext = buckets[idx]
		buckets[idx] = e
	}
	h.buckets = buckets
}

// foreach yields entries in insertion order. Returning false stops early.
func (h *hashTable) foreach(fn func(e *htEntry) bool) {
	for e := h.head; e != nil; {
		next := e.ordNext
		if !fn(e) {
			return
		}
		e = next
	}
}

func (h *hashTable) free() {
	if h.freeFn != nil {
		for e := h.head; e != nil; e = e.ordNext {
			h.freeFn(e)
		}
	}
	h.buckets = nil
	h.head = nil
	h.tail = nil
	h.count = 0
}
