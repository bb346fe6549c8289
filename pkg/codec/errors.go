// Copyright 2025 Meridian Protocol
//
// Codec Error Types

// Package codec implements the wire encoding shared by every chain adapter:
// the length-prefixed byte buffer used to build canonical transfer payloads,
// and the address/hash conversions between EVM's 20/32-byte native form and
// the field-element form used on the native-chain side.
package codec

import "errors"

// Sentinel errors for codec failures.
var (
	// ErrBufferUnderflow is returned when a read would run past the end of
	// the buffer.
	ErrBufferUnderflow = errors.New("codec: buffer underflow")
	// ErrInvalidUTF8 is returned when bytes expected to decode as a UTF-8
	// string do not.
	ErrInvalidUTF8 = errors.New("codec: invalid utf-8")
	// ErrMalformedVarint is returned when a length-prefix tag byte does not
	// match any of the defined varint forms.
	ErrMalformedVarint = errors.New("codec: malformed varint")
	// ErrFieldOverflow is returned when a value does not fit the target
	// field or fixed-width integer.
	ErrFieldOverflow = errors.New("codec: value overflows target width")
)

// EncodingError wraps a sentinel with the operation that failed, so log
// lines stay actionable without leaking internal buffer state.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string {
	return "codec: " + e.Op + ": " + e.Err.Error()
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func newErr(op string, err error) error {
	return &EncodingError{Op: op, Err: err}
}
