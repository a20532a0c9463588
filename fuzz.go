package sanejson

// Fuzz is a go-fuzz entry point: parse whatever comes in, poke the tree
// and make sure it still serializes and round-trips.
func Fuzz(data []byte) int {
	v, err := ParseBytes(data)
	if err != nil {
		return -1
	}
	defer v.Release()

	if v.IsObject() {
		for _, key := range v.ObjectKeys() {
			v.ObjectGet(key).AsString()
		}
		v.ObjectSet("fuzz", NewInt64(int64(len(data))))
		v.ObjectDel("fuzz")
	}
	if v.IsArray() {
		for i := 0; i < v.ArrayLen(); i++ {
			v.ArrayGetIdx(i).AsFloat()
		}
	}

	out := v.Encode(Spaced)
	reparsed, err := ParseBytes(out)
	if err != nil {
		panic("reparse of own output failed: " + err.Error())
	}
	ok := Equal(v, reparsed)
	reparsed.Release()
	if !ok {
		panic("round-trip mismatch")
	}
	return 1
}
