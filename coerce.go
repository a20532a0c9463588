package sanejson

import (
	"math"
	"strconv"
	"strings"
)

// Lenient accessors. Reading a value as the wrong kind never fails, it
// falls back by fixed rules and bottoms out at the kind's zero value.
// All of them are safe on a nil receiver.

// AsBool reports nonzero numbers and non-empty strings as true.
func (v *Value) AsBool() bool {
	if v == nil {
		return false
	}
	switch v.kind {
	case Bool:
		return v.b
	case Int64:
		return v.i != 0
	case Double:
		return v.f != 0
	case String:
		return len(v.s) != 0
	default:
		return false
	}
}

// AsInt is the narrowing accessor: 64-bit results that don't fit are
// clamped to the int32 bounds. Numeric strings are parsed by their
// leading digits, doubles are truncated.
func (v *Value) AsInt() int {
	if v == nil {
		return 0
	}

	i := v.i
	kind := v.kind
	if kind == String {
		parsed, ok := parseIntPrefix(v.s)
		if !ok {
			return 0
		}
		i = parsed
		kind = Int64
	}

	switch kind {
	case Int64:
		if i <= math.MinInt32 {
			return math.MinInt32
		}
		if i >= math.MaxInt32 {
			return math.MaxInt32
		}
		return int(i)
	case Double:
		if math.IsNaN(v.f) {
			return 0
		}
		if v.f >= math.MaxInt32 {
			return math.MaxInt32
		}
		if v.f <= math.MinInt32 {
			return math.MinInt32
		}
		return int(v.f)
	case Bool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v *Value) AsInt64() int64 {
	if v == nil {
		return 0
	}
	switch v.kind {
	case Int64:
		return v.i
	case Double:
		return int64(v.f)
	case Bool:
		if v.b {
			return 1
		}
		return 0
	case String:
		if i, ok := parseIntPrefix(v.s); ok {
			return i
		}
		return 0
	default:
		return 0
	}
}

// AsFloat parses numeric strings strictly: trailing garbage rejects the
// whole string ("123AB" is 0.0, not 123.0), and an overflow to infinity
// during string parsing is 0.0 as well.
func (v *Value) AsFloat() float64 {
	if v == nil {
		return 0
	}
	switch v.kind {
	case Double:
		return v.f
	case Int64:
		return float64(v.i)
	case Bool:
		if v.b {
			return 1
		}
		return 0
	case String:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange && math.IsInf(f, 0) {
				return 0
			}
			return 0
		}
		return f
	default:
		return 0
	}
}

// AsString returns the string payload as-is and every other kind in its
// serialized form.
func (v *Value) AsString() string {
	if v == nil {
		return ""
	}
	if v.kind == String {
		return v.s
	}
	return v.EncodeString(Spaced)
}

// AsBytes is AsString without the copy for string values.
func (v *Value) AsBytes() []byte {
	if v == nil {
		return nil
	}
	if v.kind == String {
		return []byte(v.s)
	}
	return v.Encode(Spaced)
}

// parseIntPrefix reads an optional sign plus leading digits, ignoring
// whatever follows, the way strtoll does. Out-of-range input saturates at
// the int64 bounds.
func parseIntPrefix(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	if len(s) == 0 {
		return 0, false
	}

	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	digits := s[:end]
	var num int64
	var err error
	if neg {
		num, err = strconv.ParseInt("-"+digits, 10, 64)
		if err != nil {
			return math.MinInt64, true
		}
	} else {
		num, err = strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return math.MaxInt64, true
		}
	}
	return num, true
}
