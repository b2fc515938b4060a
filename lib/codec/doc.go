// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration shared by every package
// that reads or writes the mirror protocol.
//
// The mirror protocol is a sequence of self-delimiting CBOR items with
// no outer length prefix. Each item is an array whose first element is
// an integer opcode. The receive path never decodes into structs: it
// cuts one item at a time off the front of a receive buffer with
// [DecodeFirst] and hands the generic value (integers, byte strings,
// text strings, arrays) to the message layer, which checks arity and
// types itself.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes, which is what makes
// snapshot digests and the size-limit tests stable.
//
//	data, err := codec.Marshal([]any{1, 1})
//	value, rest, err := codec.DecodeFirst(buffer)
//
// [DecodeFirst] reports [io.ErrUnexpectedEOF] when the buffer holds only
// a prefix of an item. Callers treat that as "wait for more bytes", not
// as a failure. Any other error means the bytes are not CBOR.
//
// This package depends on no other packages in this module.
package codec
