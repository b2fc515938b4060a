// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of
// these, so callers classify failures with errors.Is. None of them is
// recoverable: the upstream controller is the single authority for the
// session and a deviation from the protocol leaves the mirror in an
// unknown state.
var (
	// ErrArityExhausted: a field was read past the end of an array.
	ErrArityExhausted = errors.New("arity exhausted")

	// ErrTypeMismatch: a field has a different type than the message
	// layout requires.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrMalformedMessage: the bytes are not a valid encoding, or the
	// top-level value is not an array.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrUnknownOpcode: the leading integer names no known message.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrVersionMismatch: the controller speaks a different protocol
	// version.
	ErrVersionMismatch = errors.New("protocol version mismatch")

	// ErrUnknownPane: output was addressed to a pane that no window
	// sync has established.
	ErrUnknownPane = errors.New("unknown pane")

	// ErrMessageTooLarge: a complete or partially received message
	// exceeds the decoder's size limit.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrBufferOverrun: the caller committed more bytes than the
	// receive region it was handed.
	ErrBufferOverrun = errors.New("receive buffer overrun")
)

// DecodeError describes a field-level failure inside one message: what
// the unpacker expected to find and what was there instead.
type DecodeError struct {
	// Kind is ErrArityExhausted or ErrTypeMismatch.
	Kind error

	// Expected is the type the reader asked for ("integer",
	// "byte string", "array").
	Expected string

	// Actual is the type found, or "end of array" for exhaustion.
	Actual string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: expected %s, found %s", e.Kind, e.Expected, e.Actual)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}

// ProtocolError is a message-level failure. Opcode is zero when the
// failure happened before an opcode could be read.
type ProtocolError struct {
	// Kind is one of the protocol-level sentinels, or the Kind of the
	// wrapped DecodeError.
	Kind error

	// Opcode identifies the message being handled.
	Opcode Opcode

	// Detail carries human-readable context (the offending version
	// or pane id).
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

func (e *ProtocolError) Error() string {
	message := e.Kind.Error()
	if e.Err != nil && errors.Is(e.Err, e.Kind) {
		// The cause already names the kind (a DecodeError).
		message = e.Err.Error()
	}
	if e.Detail != "" {
		message += ": " + e.Detail
	}
	if e.Err != nil && !errors.Is(e.Err, e.Kind) {
		message += ": " + e.Err.Error()
	}
	if e.Opcode != 0 {
		message = e.Opcode.String() + ": " + message
	}
	return message
}

func (e *ProtocolError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// protocolError builds a ProtocolError for a failure detected while
// handling opcode. A DecodeError cause donates its Kind.
func protocolError(opcode Opcode, err error) *ProtocolError {
	var existing *ProtocolError
	if errors.As(err, &existing) {
		if existing.Opcode == 0 {
			existing.Opcode = opcode
		}
		return existing
	}
	var decodeError *DecodeError
	if errors.As(err, &decodeError) {
		return &ProtocolError{Kind: decodeError.Kind, Opcode: opcode, Err: err}
	}
	return &ProtocolError{Kind: ErrMalformedMessage, Opcode: opcode, Err: err}
}
