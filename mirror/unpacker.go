// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"fmt"
	"iter"
	"math"
)

// Unpacker reads the elements of one decoded array in order, checking
// the type of each element as it is consumed. Every successful Pop
// advances by exactly one element. Reading past the end is an error,
// never a zero value.
//
// An Unpacker is a view: it does not copy the array and must not
// outlive the value it was built from.
type Unpacker struct {
	elements []any
}

// NewUnpacker returns an Unpacker over value, which must be an array.
func NewUnpacker(value any) (*Unpacker, error) {
	elements, ok := value.([]any)
	if !ok {
		return nil, &DecodeError{Kind: ErrMalformedMessage, Expected: "array", Actual: typeName(value)}
	}
	return &Unpacker{elements: elements}, nil
}

// Remaining returns the number of elements not yet consumed.
func (u *Unpacker) Remaining() int {
	return len(u.elements)
}

// next checks arity and returns the next element without consuming it.
func (u *Unpacker) next(expected string) (any, error) {
	if len(u.elements) == 0 {
		return nil, &DecodeError{Kind: ErrArityExhausted, Expected: expected, Actual: "end of array"}
	}
	return u.elements[0], nil
}

func (u *Unpacker) advance() {
	u.elements = u.elements[1:]
}

// PopInt consumes the next element as a signed 64-bit integer.
func (u *Unpacker) PopInt() (int64, error) {
	element, err := u.next("integer")
	if err != nil {
		return 0, err
	}
	var value int64
	switch typed := element.(type) {
	case int64:
		value = typed
	case uint64:
		if typed > math.MaxInt64 {
			return 0, &DecodeError{Kind: ErrTypeMismatch, Expected: "integer", Actual: "integer out of range"}
		}
		value = int64(typed)
	default:
		return 0, &DecodeError{Kind: ErrTypeMismatch, Expected: "integer", Actual: typeName(element)}
	}
	u.advance()
	return value, nil
}

// popInt consumes the next element as a platform int. Protocol ids and
// geometry are small; a value outside the int range is a type mismatch.
func (u *Unpacker) popInt() (int, error) {
	value, err := u.PopInt()
	if err != nil {
		return 0, err
	}
	if value < math.MinInt || value > math.MaxInt {
		return 0, &DecodeError{Kind: ErrTypeMismatch, Expected: "int", Actual: "integer out of range"}
	}
	return int(value), nil
}

// PopBytes consumes the next element as a byte span. Byte strings and
// text strings are both accepted.
//
// The returned slice aliases the decoded value. It is valid only until
// the next Commit on the Decoder that produced the value; copy anything
// that must live longer.
func (u *Unpacker) PopBytes() ([]byte, error) {
	element, err := u.next("byte string")
	if err != nil {
		return nil, err
	}
	var value []byte
	switch typed := element.(type) {
	case []byte:
		value = typed
	case string:
		value = []byte(typed)
	default:
		return nil, &DecodeError{Kind: ErrTypeMismatch, Expected: "byte string", Actual: typeName(element)}
	}
	u.advance()
	return value, nil
}

// PopString consumes the next element as a byte span and returns an
// owned copy. Zero bytes inside the span are kept as data.
func (u *Unpacker) PopString() (string, error) {
	value, err := u.PopBytes()
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// PopArray consumes the next element, which must be an array, and
// returns an Unpacker over it.
func (u *Unpacker) PopArray() (*Unpacker, error) {
	element, err := u.next("array")
	if err != nil {
		return nil, err
	}
	elements, ok := element.([]any)
	if !ok {
		return nil, &DecodeError{Kind: ErrTypeMismatch, Expected: "array", Actual: typeName(element)}
	}
	u.advance()
	return &Unpacker{elements: elements}, nil
}

// Each consumes the next element as a list of arrays and yields one
// Unpacker per entry, in order. If the list itself is missing or is not
// an array, or an entry is not an array, the sequence yields a single
// error and stops.
//
//	for entry, err := range unpacker.Each() {
//	    if err != nil {
//	        return err
//	    }
//	    id, err := entry.PopInt()
//	    ...
//	}
func (u *Unpacker) Each() iter.Seq2[*Unpacker, error] {
	return func(yield func(*Unpacker, error) bool) {
		list, err := u.PopArray()
		if err != nil {
			yield(nil, err)
			return
		}
		for list.Remaining() > 0 {
			entry, err := list.PopArray()
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

// typeName names the generic type of a decoded value for diagnostics.
func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int64, uint64:
		return "integer"
	case float32, float64:
		return "float"
	case []byte:
		return "byte string"
	case string:
		return "text string"
	case []any:
		return "array"
	case map[string]any, map[any]any:
		return "map"
	default:
		return fmt.Sprintf("%T", value)
	}
}
