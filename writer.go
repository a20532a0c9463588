package sanejson

import (
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	// Pretty emits a newline per member and indents per nesting level.
	Pretty Flag = 1 << iota
	// PrettyTab indents with tabs instead of two spaces. Only meaningful
	// together with Pretty.
	PrettyTab
	// Spaced pads ':' and braces/brackets for readability without full
	// pretty-printing.
	Spaced
	// NoZero trims trailing zeros of a double down to one digit after
	// the point.
	NoZero
)

type Flag uint

const hexDigits = "0123456789abcdef"

// needsEscape answers "does this byte need escaping" in one lookup, so
// the common case, a run of clean bytes, is copied in bulk. The slow path
// picks the concrete escape. Escaping '/' as `\/` is not required by the
// JSON grammar but is traditional and kept for byte-exact compatibility.
var needsEscape [256]bool

func init() {
	for i := 0; i < 0x20; i++ {
		needsEscape[i] = true
	}
	needsEscape['"'] = true
	needsEscape['\\'] = true
	needsEscape['/'] = true
}

const writerFlushThreshold = 4096

// writer collects output bytes. With a sink attached it drains the buffer
// as it fills, so large documents never materialize in memory.
type writer struct {
	buf     []byte
	sink    io.Writer
	flags   Flag
	written int64
	err     error
}

func (wr *writer) append(b []byte) {
	wr.buf = append(wr.buf, b...)
	wr.maybeFlush()
}

func (wr *writer) appendString(s string) {
	wr.buf = append(wr.buf, s...)
	wr.maybeFlush()
}

func (wr *writer) appendByte(c byte) {
	wr.buf = append(wr.buf, c)
	wr.maybeFlush()
}

func (wr *writer) maybeFlush() {
	if wr.sink != nil && len(wr.buf) >= writerFlushThreshold {
		wr.flush()
	}
}

func (wr *writer) flush() {
	if wr.sink == nil || wr.err != nil || len(wr.buf) == 0 {
		return
	}
	n, err := wr.sink.Write(wr.buf)
	wr.written += int64(n)
	wr.err = err
	wr.buf = wr.buf[:0]
}

// Encode serializes the tree into the node's own buffer, which is reused
// by the next Encode call on the same node. Copy the result if it has to
// outlive that.
func (v *Value) Encode(flags Flag) []byte {
	if v == nil {
		return []byte("null")
	}
	wr := writer{buf: v.buf[:0], flags: flags}
	encodeValue(&wr, v, 0)
	v.buf = wr.buf
	return wr.buf
}

// EncodeString is Encode with an owned result.
func (v *Value) EncodeString(flags Flag) string {
	return string(v.Encode(flags))
}

// WriteTo streams the serialized tree into sink, flushing in chunks
// instead of building one buffer. Returns the byte count written.
func (v *Value) WriteTo(sink io.Writer, flags Flag) (int64, error) {
	wr := writer{flags: flags, sink: sink}
	if v == nil {
		wr.appendString("null")
	} else {
		encodeValue(&wr, v, 0)
	}
	wr.flush()
	return wr.written, wr.err
}

func indent(wr *writer, level int) {
	if wr.flags&Pretty == 0 {
		return
	}
	if wr.flags&PrettyTab != 0 {
		for i := 0; i < level; i++ {
			wr.appendByte('\t')
		}
	} else {
		for i := 0; i < level*2; i++ {
			wr.appendByte(' ')
		}
	}
}

func encodeValue(wr *writer, v *Value, depth int) {
	if v == nil {
		wr.appendString("null")
		return
	}
	if v.ser != nil {
		wr.append(v.ser(v, v.userdata, wr.flags, depth))
		return
	}

	switch v.kind {
	case Null:
		wr.appendString("null")
	case Bool:
		if v.b {
			wr.appendString("true")
		} else {
			wr.appendString("false")
		}
	case Int64:
		wr.buf = strconv.AppendInt(wr.buf, v.i, 10)
		wr.maybeFlush()
	case Double:
		encodeDouble(wr, v)
	case String:
		wr.appendByte('"')
		escapeStr(wr, v.s)
		wr.appendByte('"')
	case Array:
		encodeArray(wr, v, depth)
	case Object:
		encodeObject(wr, v, depth)
	}
}

func encodeObject(wr *writer, v *Value, depth int) {
	wr.appendByte('{')
	if wr.flags&Pretty != 0 {
		wr.appendByte('\n')
	}

	had := false
	v.obj.foreach(func(e *htEntry) bool {
		if had {
			wr.appendByte(',')
			if wr.flags&Pretty != 0 {
				wr.appendByte('\n')
			}
		}
		had = true
		if wr.flags&Spaced != 0 {
			wr.appendByte(' ')
		}
		indent(wr, depth+1)
		wr.appendByte('"')
		escapeStr(wr, e.key)
		if wr.flags&Spaced != 0 {
			wr.appendString(`": `)
		} else {
			wr.appendString(`":`)
		}
		encodeValue(wr, e.val, depth+1)
		return true
	})

	if wr.flags&Pretty != 0 {
		if had {
			wr.appendByte('\n')
		}
		indent(wr, depth)
	}
	if wr.flags&Spaced != 0 {
		wr.appendString(" }")
	} else {
		wr.appendByte('}')
	}
}

func encodeArray(wr *writer, v *Value, depth int) {
	wr.appendByte('[')
	if wr.flags&Pretty != 0 {
		wr.appendByte('\n')
	}

	for i := 0; i < v.arr.length(); i++ {
		if i > 0 {
			wr.appendByte(',')
			if wr.flags&Pretty != 0 {
				wr.appendByte('\n')
			}
		}
		if wr.flags&Spaced != 0 {
			wr.appendByte(' ')
		}
		indent(wr, depth+1)
		encodeValue(wr, v.arr.getIdx(i), depth+1)
	}

	if wr.flags&Pretty != 0 {
		if v.arr.length() > 0 {
			wr.appendByte('\n')
		}
		indent(wr, depth)
	}
	if wr.flags&Spaced != 0 {
		wr.appendString(" ]")
	} else {
		wr.appendByte(']')
	}
}

// encodeDouble emits the preserved source text when the value was parsed
// from one, otherwise the shortest representation that round-trips. NaN
// and the infinities come out as bare NaN/Infinity/-Infinity tokens. That
// deviates from the strict JSON grammar on purpose, it follows how ECMA
// stringifies these values and is not silently "fixed".
func encodeDouble(wr *writer, v *Value) {
	if v.src != "" {
		wr.appendString(noZeroTrim(v.src, wr.flags))
		return
	}
	switch {
	case math.IsNaN(v.f):
		wr.appendString("NaN")
	case math.IsInf(v.f, 1):
		wr.appendString("Infinity")
	case math.IsInf(v.f, -1):
		wr.appendString("-Infinity")
	default:
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		wr.appendString(noZeroTrim(s, wr.flags))
	}
}

// noZeroTrim drops trailing zeros after the decimal point, always keeping
// one digit. Numbers in exponent notation are left alone.
func noZeroTrim(s string, flags Flag) string {
	if flags&NoZero == 0 {
		return s
	}
	dot := strings.IndexByte(s, '.')
	if dot < 0 || strings.IndexAny(s, "eE") >= 0 {
		return s
	}
	end := len(s)
	for end-1 > dot+1 && s[end-1] == '0' {
		end--
	}
	return s[:end]
}

// escapeStr copies runs of clean bytes in one append and only drops into
// the per-byte path on the bytes the table flags. Control bytes become
// \u00XX, an embedded NUL included, it never truncates the string.
func escapeStr(wr *writer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !needsEscape[c] {
			continue
		}
		if i > start {
			wr.appendString(s[start:i])
		}
		switch c {
		case '"':
			wr.appendString(`\"`)
		case '\\':
			wr.appendString(`\\`)
		case '/':
			wr.appendString(`\/`)
		case '\b':
			wr.appendString(`\b`)
		case '\f':
			wr.appendString(`\f`)
		case '\n':
			wr.appendString(`\n`)
		case '\r':
			wr.appendString(`\r`)
		case '\t':
			wr.appendString(`\t`)
		default:
			wr.appendString(`\u00`)
			wr.appendByte(hexDigits[c>>4])
			wr.appendByte(hexDigits[c&0xf])
		}
		start = i + 1
	}
	if start < len(s) {
		wr.appendString(s[start:])
	}
}
