// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2).
var encMode cbor.EncMode

// decMode is the CBOR decoder used on the receive path. Limits are
// explicit because the peer is untrusted for sizing purposes: a header
// claiming a billion array elements must fail before anything is
// allocated.
var decMode cbor.DecMode

// Decoding limits. MaxArrayElements bounds a single array header, not
// the whole message; the message size bound is enforced by the caller.
const (
	maxNestedLevels  = 16
	maxArrayElements = 65536
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		MaxNestedLevels:  maxNestedLevels,
		MaxArrayElements: maxArrayElements,
		// The protocol never uses maps. If one arrives where the
		// message layer expects an integer or array it is reported as
		// a type mismatch there; string keys keep the decoded form
		// usable in diagnostics.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes exactly one CBOR item from data into v. Trailing
// bytes are an error.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// DecodeFirst decodes the first CBOR item in data into a generic value
// and returns the bytes that follow it.
//
// Integers decode as uint64 (non-negative) or int64 (negative), byte
// strings as []byte, text strings as string and arrays as []any.
//
// If data is empty or holds only a prefix of an item, DecodeFirst
// returns io.ErrUnexpectedEOF and the caller should wait for more
// bytes. Any other error is a malformed encoding.
func DecodeFirst(data []byte) (any, []byte, error) {
	if len(data) == 0 {
		return nil, data, io.ErrUnexpectedEOF
	}
	var value any
	rest, err := decMode.UnmarshalFirst(data, &value)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, data, io.ErrUnexpectedEOF
		}
		return nil, data, err
	}
	return value, rest, nil
}
