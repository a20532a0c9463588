package sanejson

import (
	"fmt"
	"strings"
	"testing"

	"github.com/valyala/fastjson"
)

type benchDoc struct {
	name string
	json []byte
}

// getBenchDocs builds deterministic workloads covering the shapes that
// stress different parts of the parser: wide objects, deep nesting, long
// strings with escapes and number-heavy arrays.
func getBenchDocs() []benchDoc {
	var manyFields strings.Builder
	manyFields.WriteByte('{')
	for i := 0; i < 200; i++ {
		if i > 0 {
			manyFields.WriteByte(',')
		}
		fmt.Fprintf(&manyFields, `"field-%d":{"id":%d,"enabled":%t,"ratio":%d.%d}`, i, i, i%2 == 0, i, i)
	}
	manyFields.WriteByte('}')

	var deep strings.Builder
	for i := 0; i < 40; i++ {
		deep.WriteString(`{"deeper":`)
	}
	deep.WriteString(`"bottom"`)
	for i := 0; i < 40; i++ {
		deep.WriteByte('}')
	}

	var heavyStrings strings.Builder
	heavyStrings.WriteByte('[')
	for i := 0; i < 50; i++ {
		if i > 0 {
			heavyStrings.WriteByte(',')
		}
		fmt.Fprintf(&heavyStrings, `"%s quo\"ted \\ and\tplain tail %s"`,
			strings.Repeat("lorem ipsum ", 8), strings.Repeat("x", 64))
	}
	heavyStrings.WriteByte(']')

	var numbers strings.Builder
	numbers.WriteByte('[')
	for i := 0; i < 500; i++ {
		if i > 0 {
			numbers.WriteByte(',')
		}
		fmt.Fprintf(&numbers, "%d,%d.%de-%d", i*7919, i, i*31, i%20)
	}
	numbers.WriteByte(']')

	return []benchDoc{
		{name: "many-fields", json: []byte(manyFields.String())},
		{name: "deep-nesting", json: []byte(deep.String())},
		{name: "heavy-strings", json: []byte(heavyStrings.String())},
		{name: "numbers", json: []byte(numbers.String())},
	}
}

func BenchmarkParse(b *testing.B) {
	for _, doc := range getBenchDocs() {
		b.Run("sane-"+doc.name, func(b *testing.B) {
			b.SetBytes(int64(len(doc.json)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				v, err := ParseBytes(doc.json)
				if err != nil {
					b.Fatal(err)
				}
				v.Release()
			}
		})
		b.Run("fast-"+doc.name, func(b *testing.B) {
			parser := fastjson.Parser{}
			b.SetBytes(int64(len(doc.json)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = parser.ParseBytes(doc.json)
			}
		})
	}
}

func BenchmarkParseChunked(b *testing.B) {
	for _, doc := range getBenchDocs() {
		b.Run(doc.name, func(b *testing.B) {
			const chunk = 64
			tk := NewTokener()
			b.SetBytes(int64(len(doc.json)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				tk.Reset()
				var v *Value
				var err error
				for off := 0; off < len(doc.json) && v == nil && err == nil; off += chunk {
					end := off + chunk
					if end > len(doc.json) {
						end = len(doc.json)
					}
					v, err = tk.Feed(doc.json[off:end])
				}
				if v == nil && err == nil {
					v, err = tk.Finish()
				}
				if err != nil {
					b.Fatal(err)
				}
				v.Release()
			}
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	for _, doc := range getBenchDocs() {
		b.Run("sane-"+doc.name, func(b *testing.B) {
			v, err := ParseBytes(doc.json)
			if err != nil {
				b.Fatal(err)
			}
			b.SetBytes(int64(len(doc.json)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = v.Encode(0)
			}
			v.Release()
		})
		b.Run("fast-"+doc.name, func(b *testing.B) {
			parser := fastjson.Parser{}
			c, err := parser.ParseBytes(doc.json)
			if err != nil {
				b.Fatal(err)
			}
			s := make([]byte, 0, len(doc.json)*2)
			b.SetBytes(int64(len(doc.json)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s = c.MarshalTo(s[:0])
			}
		})
	}
}

func BenchmarkObjectGet(b *testing.B) {
	obj := NewObject()
	defer obj.Release()
	keys := make([]string, 0, 512)
	for i := 0; i < 512; i++ {
		key := fmt.Sprintf("key-%d", i)
		keys = append(keys, key)
		obj.ObjectSetEx(key, NewInt64(int64(i)), KeyIsNew)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		obj.ObjectGet(keys[i&511])
	}
}

func BenchmarkEscapeString(b *testing.B) {
	tests := []string{
		`"""\\\\\"""\'\"				\\\""|"|"|"|\\'\dasd'		|"|\\\\'\\\|||\\'"`,
		`plain long ascii with no escapes at all, the bulk-copy fast path x"`,
		strings.Repeat("clean ", 40),
	}

	wr := writer{buf: make([]byte, 0, 4096)}
	for i := 0; i < b.N; i++ {
		for _, test := range tests {
			wr.buf = wr.buf[:0]
			escapeStr(&wr, test)
		}
	}
}
