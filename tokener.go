package sanejson

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// DefaultDepthLimit caps container nesting for tokeners that don't set
// their own limit. It bounds both parse recursion and the teardown of the
// resulting tree.
var DefaultDepthLimit = 64

// numChars marks the bytes that may continue a number token.
var numChars [256]bool

func init() {
	for c := '0'; c <= '9'; c++ {
		numChars[c] = true
	}
	numChars['.'] = true
	numChars['-'] = true
	numChars['+'] = true
	numChars['e'] = true
	numChars['E'] = true
}

type lexState int

const (
	lexValue lexState = iota // between tokens, expectation comes from the frame stack
	lexStr
	lexEsc
	lexHex
	lexSurrSlash // high surrogate parsed, expecting the '\' of its pair
	lexSurrU     // expecting the 'u' of the pair
	lexNum
	lexLit
	lexDone // top-level value complete, only whitespace may follow
)

type phase int

const (
	phObjKeyOrClose phase = iota // right after '{'
	phObjKey                     // after ','
	phObjColon
	phObjValue
	phObjCommaOrClose
	phArrValOrClose // right after '['
	phArrVal        // after ','
	phArrCommaOrClose
)

// frame is one level of open container.
type frame struct {
	val      *Value
	isObject bool
	ph       phase
	key      string
}

/*
Tokener is the resumable parser state machine. Input arrives in chunks of
any size through Feed; a chunk may end in the middle of any token, escape
sequence or surrogate pair and the next chunk picks up exactly where it
left off. No byte ever has to be presented twice. Feeding a document whole
or split at every possible offset produces the same tree.

After an error the tokener discards the partial tree and refuses further
input until Reset. A tokener is not safe for concurrent use.

In strict mode only exact lowercase true/false/null literals are accepted,
raw control bytes inside strings are rejected, leading zeros in numbers
are rejected, and an unpaired \uXXXX surrogate escape is an error. In the
default lenient mode literals may be case-variant, raw control bytes pass
through, and an unpaired surrogate decodes to U+FFFD.
*/
type Tokener struct {
	strict     bool
	depthLimit int

	lex    lexState
	frames []frame
	tok    []byte

	inKey    bool
	pendHi   rune
	hexCount int
	hexVal   rune

	offset   int64 // bytes consumed across all chunks
	strStart int64
	escStart int64
	tokStart int64

	result    *Value
	delivered bool // the caller already owns result, never release it here
	err       error
}

func NewTokener() *Tokener {
	return &Tokener{depthLimit: DefaultDepthLimit}
}

// SetStrict toggles strict mode. Takes effect for bytes fed afterwards.
func (t *Tokener) SetStrict(strict bool) {
	t.strict = strict
}

// SetDepthLimit replaces the nesting depth limit.
func (t *Tokener) SetDepthLimit(limit int) {
	if limit > 0 {
		t.depthLimit = limit
	}
}

// Reset makes the tokener reusable after an error or a completed parse.
// Flags and the depth limit survive.
func (t *Tokener) Reset() {
	// every open frame is a root of its own until it gets attached on
	// close, drop each one
	for i := len(t.frames) - 1; i >= 0; i-- {
		t.frames[i].val.Release()
	}
	if t.result != nil && !t.delivered {
		t.result.Release()
	}
	t.lex = lexValue
	t.frames = t.frames[:0]
	t.tok = t.tok[:0]
	t.delivered = false
	t.inKey = false
	t.pendHi = 0
	t.hexCount = 0
	t.hexVal = 0
	t.offset = 0
	t.result = nil
	t.err = nil
}

// Parse is the one-shot convenience for callers holding the whole
// document: feed plus finish, with exactly-one-value semantics.
func Parse(json string) (*Value, error) {
	return ParseBytes([]byte(json))
}

func ParseBytes(json []byte) (*Value, error) {
	t := NewTokener()
	v, err := t.Feed(json)
	if err != nil {
		return nil, err
	}
	if v != nil {
		return v, nil
	}
	return t.Finish()
}

// ParseStrict is Parse in strict mode.
func ParseStrict(json string) (*Value, error) {
	t := NewTokener()
	t.SetStrict(true)
	v, err := t.Feed([]byte(json))
	if err != nil {
		return nil, err
	}
	if v != nil {
		return v, nil
	}
	return t.Finish()
}

// Feed consumes one chunk. It returns (tree, nil) once the top-level
// value is complete, (nil, nil) when more input is needed, and (nil, err)
// on a parse error. A completed tokener keeps returning the same tree for
// trailing whitespace-only chunks until Reset.
func (t *Tokener) Feed(chunk []byte) (*Value, error) {
	if t.err != nil {
		return nil, t.err
	}

	i := 0
	n := len(chunk)
	for i < n {
		c := chunk[i]

		switch t.lex {
		case lexDone:
			if isJSONSpace(c) {
				i++
				t.offset++
				continue
			}
			return nil, t.fail(ErrTrailingGarbage, t.offset)

		case lexValue:
			if isJSONSpace(c) {
				i++
				t.offset++
				continue
			}
			if err := t.structural(c); err != nil {
				return nil, err
			}
			i++
			t.offset++

		case lexStr:
			switch {
			case c == '"':
				t.endString()
				i++
				t.offset++
			case c == '\\':
				t.escStart = t.offset
				t.lex = lexEsc
				i++
				t.offset++
			case c < 0x20 && t.strict:
				return nil, t.fail(ErrUnexpectedChar, t.offset)
			default:
				t.tok = append(t.tok, c)
				i++
				t.offset++
			}

		case lexEsc:
			if err := t.escape(c); err != nil {
				return nil, err
			}
			i++
			t.offset++

		case lexHex:
			digit := hexValue(c)
			if digit < 0 {
				return nil, t.fail(ErrInvalidEscape, t.escStart)
			}
			t.hexVal = t.hexVal<<4 | rune(digit)
			t.hexCount++
			i++
			t.offset++
			if t.hexCount == 4 {
				if err := t.unicodeEscape(); err != nil {
					return nil, err
				}
			}

		case lexSurrSlash:
			if c == '\\' {
				t.lex = lexSurrU
				i++
				t.offset++
				break
			}
			if t.strict {
				return nil, t.fail(ErrInvalidEscape, t.escStart)
			}
			// unpaired high surrogate, substitute and reprocess c as a
			// plain string byte
			t.tok = utf8.AppendRune(t.tok, utf8.RuneError)
			t.pendHi = 0
			t.lex = lexStr

		case lexSurrU:
			if c == 'u' {
				t.hexCount = 0
				t.hexVal = 0
				t.lex = lexHex
				i++
				t.offset++
				break
			}
			if t.strict {
				return nil, t.fail(ErrInvalidEscape, t.escStart)
			}
			// the '\' turned out to start an ordinary escape
			t.tok = utf8.AppendRune(t.tok, utf8.RuneError)
			t.pendHi = 0
			t.lex = lexEsc

		case lexNum:
			if numChars[c] {
				t.tok = append(t.tok, c)
				i++
				t.offset++
				break
			}
			if err := t.finishNumber(); err != nil {
				return nil, err
			}
			// c is reprocessed under the new state

		case lexLit:
			if isASCIILetter(c) {
				if len(t.tok) >= 5 {
					return nil, t.fail(ErrUnexpectedChar, t.tokStart)
				}
				t.tok = append(t.tok, c)
				i++
				t.offset++
				break
			}
			if err := t.finishLiteral(); err != nil {
				return nil, err
			}
		}
	}

	if t.lex == lexDone {
		t.delivered = true
		return t.result, nil
	}
	return nil, nil
}

// Finish terminates the input, flushing a pending top-level number or
// literal, and returns the tree or an error for an incomplete document.
func (t *Tokener) Finish() (*Value, error) {
	if t.err != nil {
		return nil, t.err
	}

	switch t.lex {
	case lexDone:
		t.delivered = true
		return t.result, nil
	case lexNum:
		if len(t.frames) == 0 {
			if err := t.finishNumber(); err != nil {
				return nil, err
			}
			t.delivered = true
			return t.result, nil
		}
	case lexLit:
		if len(t.frames) == 0 {
			if err := t.finishLiteral(); err != nil {
				return nil, err
			}
			t.delivered = true
			return t.result, nil
		}
	case lexStr, lexEsc, lexHex, lexSurrSlash, lexSurrU:
		return nil, t.fail(ErrUnterminatedString, t.strStart)
	}
	return nil, t.fail(ErrUnexpectedEnd, t.offset)
}

// structural dispatches a non-whitespace byte between tokens according to
// what the innermost frame expects.
func (t *Tokener) structural(c byte) error {
	if len(t.frames) == 0 {
		return t.valueStart(c)
	}

	f := &t.frames[len(t.frames)-1]
	switch f.ph {
	case phObjKeyOrClose:
		if c == '}' {
			t.closeContainer()
			return nil
		}
		fallthrough
	case phObjKey:
		if c == '"' {
			t.startString(true)
			return nil
		}
		return t.fail(ErrUnexpectedChar, t.offset)

	case phObjColon:
		if c == ':' {
			f.ph = phObjValue
			return nil
		}
		return t.fail(ErrUnexpectedChar, t.offset)

	case phObjValue:
		return t.valueStart(c)

	case phObjCommaOrClose:
		switch c {
		case ',':
			f.ph = phObjKey
			return nil
		case '}':
			t.closeContainer()
			return nil
		}
		return t.fail(ErrUnexpectedChar, t.offset)

	case phArrValOrClose:
		if c == ']' {
			t.closeContainer()
			return nil
		}
		return t.valueStart(c)

	case phArrVal:
		return t.valueStart(c)

	case phArrCommaOrClose:
		switch c {
		case ',':
			f.ph = phArrVal
			return nil
		case ']':
			t.closeContainer()
			return nil
		}
		return t.fail(ErrUnexpectedChar, t.offset)
	}
	return t.fail(ErrUnexpectedChar, t.offset)
}

// valueStart begins a new value token at byte c.
func (t *Tokener) valueStart(c byte) error {
	switch {
	case c == '{':
		if len(t.frames) >= t.depthLimit {
			return t.fail(ErrDepthExceeded, t.offset)
		}
		t.frames = append(t.frames, frame{val: NewObject(), isObject: true, ph: phObjKeyOrClose})
		return nil
	case c == '[':
		if len(t.frames) >= t.depthLimit {
			return t.fail(ErrDepthExceeded, t.offset)
		}
		t.frames = append(t.frames, frame{val: NewArray(), ph: phArrValOrClose})
		return nil
	case c == '"':
		t.startString(false)
		return nil
	case c == '-' || (c >= '0' && c <= '9'):
		t.tok = t.tok[:0]
		t.tok = append(t.tok, c)
		t.tokStart = t.offset
		t.lex = lexNum
		return nil
	case isASCIILetter(c):
		t.tok = t.tok[:0]
		t.tok = append(t.tok, c)
		t.tokStart = t.offset
		t.lex = lexLit
		return nil
	}
	return t.fail(ErrUnexpectedChar, t.offset)
}

func (t *Tokener) startString(isKey bool) {
	t.tok = t.tok[:0]
	t.inKey = isKey
	t.strStart = t.offset
	t.lex = lexStr
}

func (t *Tokener) endString() {
	if t.inKey {
		f := &t.frames[len(t.frames)-1]
		f.key = string(t.tok)
		f.ph = phObjColon
		t.inKey = false
		t.lex = lexValue
		return
	}
	t.completeValue(NewStringBytes(t.tok))
}

func (t *Tokener) escape(c byte) error {
	switch c {
	case '"':
		t.tok = append(t.tok, '"')
	case '\\':
		t.tok = append(t.tok, '\\')
	case '/':
		t.tok = append(t.tok, '/')
	case 'b':
		t.tok = append(t.tok, '\b')
	case 'f':
		t.tok = append(t.tok, '\f')
	case 'n':
		t.tok = append(t.tok, '\n')
	case 'r':
		t.tok = append(t.tok, '\r')
	case 't':
		t.tok = append(t.tok, '\t')
	case 'u':
		t.hexCount = 0
		t.hexVal = 0
		t.lex = lexHex
		return nil
	default:
		return t.fail(ErrInvalidEscape, t.escStart)
	}
	t.lex = lexStr
	return nil
}

// unicodeEscape finishes a \uXXXX once all four hex digits are in,
// handling surrogate pairing across escape (and chunk) boundaries.
func (t *Tokener) unicodeEscape() error {
	r := t.hexVal

	if t.pendHi != 0 {
		if utf16.IsSurrogate(r) && r >= 0xDC00 {
			t.tok = utf8.AppendRune(t.tok, utf16.DecodeRune(t.pendHi, r))
			t.pendHi = 0
			t.lex = lexStr
			return nil
		}
		if t.strict {
			return t.fail(ErrInvalidEscape, t.escStart)
		}
		// the pair never materialized, replace the high half and fall
		// through to handle r on its own
		t.tok = utf8.AppendRune(t.tok, utf8.RuneError)
		t.pendHi = 0
	}

	switch {
	case utf16.IsSurrogate(r) && r < 0xDC00: // high half, needs a partner
		t.pendHi = r
		t.lex = lexSurrSlash
	case utf16.IsSurrogate(r): // stray low half
		if t.strict {
			return t.fail(ErrInvalidEscape, t.escStart)
		}
		t.tok = utf8.AppendRune(t.tok, utf8.RuneError)
		t.lex = lexStr
	default:
		t.tok = utf8.AppendRune(t.tok, r)
		t.lex = lexStr
	}
	return nil
}

func (t *Tokener) finishNumber() error {
	src := string(t.tok)
	hasFrac, hasExp, err := t.checkNumber(src)
	if err != nil {
		return err
	}

	if !hasFrac && !hasExp {
		if i, perr := strconv.ParseInt(src, 10, 64); perr == nil {
			t.completeValue(NewInt64(i))
			return nil
		}
		// out of int64 range, promote to double and keep the source
		f, perr := strconv.ParseFloat(src, 64)
		if perr != nil {
			if numErr, ok := perr.(*strconv.NumError); !ok || numErr.Err != strconv.ErrRange {
				return t.fail(ErrNumberOverflow, t.tokStart)
			}
		}
		t.completeValue(NewDoubleSource(f, src))
		return nil
	}

	f, perr := strconv.ParseFloat(src, 64)
	if perr != nil {
		if numErr, ok := perr.(*strconv.NumError); !ok || numErr.Err != strconv.ErrRange {
			return t.fail(ErrNumberOverflow, t.tokStart)
		}
	}
	t.completeValue(NewDoubleSource(f, src))
	return nil
}

// checkNumber validates the accumulated token against the JSON number
// grammar and reports whether it has fraction/exponent parts.
func (t *Tokener) checkNumber(s string) (hasFrac, hasExp bool, err error) {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return false, false, t.fail(ErrUnexpectedChar, t.tokStart)
	}
	if t.strict && s[start] == '0' && i-start > 1 {
		return false, false, t.fail(ErrUnexpectedChar, t.tokStart)
	}

	if i < len(s) && s[i] == '.' {
		hasFrac = true
		i++
		start = i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return false, false, t.fail(ErrUnexpectedChar, t.tokStart)
		}
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		hasExp = true
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start = i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return false, false, t.fail(ErrUnexpectedChar, t.tokStart)
		}
	}

	if i != len(s) {
		return false, false, t.fail(ErrUnexpectedChar, t.tokStart)
	}
	return hasFrac, hasExp, nil
}

func (t *Tokener) finishLiteral() error {
	lit := string(t.tok)
	cmp := lit
	if !t.strict {
		cmp = strings.ToLower(lit)
	}
	switch cmp {
	case "true":
		t.completeValue(NewBool(true))
	case "false":
		t.completeValue(NewBool(false))
	case "null":
		t.completeValue(NewNull())
	default:
		return t.fail(ErrUnexpectedChar, t.tokStart)
	}
	return nil
}

// completeValue attaches a finished value to the innermost container, or
// makes it the result when the stack is empty.
func (t *Tokener) completeValue(v *Value) {
	if len(t.frames) == 0 {
		t.result = v
		t.lex = lexDone
		return
	}

	f := &t.frames[len(t.frames)-1]
	if f.isObject {
		f.val.ObjectSet(f.key, v)
		f.ph = phObjCommaOrClose
	} else {
		f.val.ArrayAdd(v)
		f.ph = phArrCommaOrClose
	}
	t.lex = lexValue
}

func (t *Tokener) closeContainer() {
	f := t.frames[len(t.frames)-1]
	t.frames = t.frames[:len(t.frames)-1]
	t.completeValue(f.val)
}

// fail records the error, drops the partial tree and bricks the tokener
// until Reset.
func (t *Tokener) fail(kind error, offset int64) error {
	for i := len(t.frames) - 1; i >= 0; i-- {
		t.frames[i].val.Release()
	}
	t.frames = t.frames[:0]
	if t.result != nil && !t.delivered {
		t.result.Release()
	}
	t.result = nil
	t.err = parseErrAt(kind, offset)
	return t.err
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}
