// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"testing"

	"github.com/bureau-foundation/termmirror/lib/codec"
)

// encodeRaw encodes an arbitrary element list, for messages the typed
// encoder cannot produce (wrong types, missing fields, bad opcodes).
func encodeRaw(t *testing.T, elements ...any) []byte {
	t.Helper()
	if elements == nil {
		// A nil slice encodes as CBOR null, not as an empty array.
		elements = []any{}
	}
	data, err := codec.Marshal(elements)
	if err != nil {
		t.Fatalf("codec.Marshal(%v): %v", elements, err)
	}
	return data
}

// mustEncode encodes a typed message.
func mustEncode(t *testing.T, message Message) []byte {
	t.Helper()
	data, err := Encode(message)
	if err != nil {
		t.Fatalf("Encode(%T): %v", message, err)
	}
	return data
}

// decodeValue turns wire bytes holding exactly one message into the
// generic value the Decoder would hand to a MessageHandler.
func decodeValue(t *testing.T, data []byte) any {
	t.Helper()
	value, rest, err := codec.DecodeFirst(data)
	if err != nil {
		t.Fatalf("codec.DecodeFirst: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("codec.DecodeFirst left %d trailing bytes", len(rest))
	}
	return value
}

// rawValue is encodeRaw followed by decodeValue.
func rawValue(t *testing.T, elements ...any) any {
	t.Helper()
	return decodeValue(t, encodeRaw(t, elements...))
}

// pane builds a PaneSpec.
func pane(id, width, height, xOffset, yOffset int) PaneSpec {
	return PaneSpec{ID: id, Geometry: Geometry{Width: width, Height: height, XOffset: xOffset, YOffset: yOffset}}
}

// dispatch encodes message, decodes it generically and dispatches it,
// exercising the same path as bytes arriving on a connection.
func dispatch(t *testing.T, mirror *Mirror, message Message) error {
	t.Helper()
	return mirror.Dispatch(decodeValue(t, mustEncode(t, message)))
}

// mustDispatch is dispatch that fails the test on error.
func mustDispatch(t *testing.T, mirror *Mirror, message Message) {
	t.Helper()
	if err := dispatch(t, mirror, message); err != nil {
		t.Fatalf("Dispatch(%s): %v", message.Opcode(), err)
	}
}

// paneIDs lists a window's pane ids in order.
func paneIDs(window *Window) []int {
	var ids []int
	for _, pane := range window.Panes() {
		ids = append(ids, pane.ID())
	}
	return ids
}
