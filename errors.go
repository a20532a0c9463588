package sanejson

import (
	"errors"
	"fmt"
)

var (
	// parse errors, wrapped into ParseError together with a byte offset
	ErrUnexpectedChar     = errors.New("unexpected character")
	ErrDepthExceeded      = errors.New("nesting depth limit exceeded")
	ErrInvalidEscape      = errors.New("invalid escape sequence")
	ErrNumberOverflow     = errors.New("number can't be represented")
	ErrTrailingGarbage    = errors.New("trailing garbage after top-level value")
	ErrUnterminatedString = errors.New("unterminated string")
	ErrUnexpectedEnd      = errors.New("unexpected end of json")
	// ErrOutOfMemory exists for taxonomy completeness. Allocation is owned
	// by the Go runtime, so the library itself never returns it.
	ErrOutOfMemory = errors.New("out of memory")
)

// ParseError is what the tokener reports: the error kind plus the byte
// offset into the overall input stream where it was detected. The offset
// counts all bytes fed so far, not just the current chunk.
type ParseError struct {
	Err    error
	Offset int64
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Err.Error(), e.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrAt(err error, offset int64) *ParseError {
	return &ParseError{Err: err, Offset: offset}
}
