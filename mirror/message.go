// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"fmt"

	"github.com/bureau-foundation/termmirror/lib/codec"
)

// Opcode identifies a message variant. Each message on the wire is an
// array whose first element is the opcode; the remaining elements are
// the variant's fields in declaration order.
type Opcode int64

const (
	// OpcodeHeader opens the stream: [1, protocol_version].
	OpcodeHeader Opcode = 1

	// OpcodeSyncWindow carries the full state of one window:
	// [2, id, name, width, height, [[pane_id, width, height, x, y], ...], active_pane_id].
	OpcodeSyncWindow Opcode = 2

	// OpcodePtyData carries output for one pane: [3, pane_id, bytes].
	OpcodePtyData Opcode = 3
)

// ProtocolVersion is the only protocol version this client speaks.
const ProtocolVersion = 1

// ParseOpcode converts a raw leading integer into an Opcode. Anything
// outside the enumeration is ErrUnknownOpcode.
func ParseOpcode(raw int64) (Opcode, error) {
	switch opcode := Opcode(raw); opcode {
	case OpcodeHeader, OpcodeSyncWindow, OpcodePtyData:
		return opcode, nil
	default:
		return 0, &ProtocolError{Kind: ErrUnknownOpcode, Detail: fmt.Sprintf("opcode %d", raw)}
	}
}

// String returns the wire name of the opcode.
func (opcode Opcode) String() string {
	switch opcode {
	case OpcodeHeader:
		return "header"
	case OpcodeSyncWindow:
		return "sync_window"
	case OpcodePtyData:
		return "pty_data"
	default:
		return fmt.Sprintf("opcode(%d)", int64(opcode))
	}
}

// Message is one decoded protocol message. The set of implementations
// is closed: Header, SyncWindow and PtyData.
type Message interface {
	Opcode() Opcode

	// fields returns the message's wire elements after the opcode.
	fields() []any
}

// Header announces the controller's protocol version.
type Header struct {
	ProtocolVersion int
}

// SyncWindow is the complete declared state of one window.
type SyncWindow struct {
	ID     int
	Name   string
	Width  int
	Height int
	Panes  []PaneSpec

	// ActivePaneID is applied after the pane list is reconciled. If no
	// pane in the window has this id the provisional choice stands.
	ActivePaneID int
}

// PtyData is output for one pane. Data aliases the receive buffer; see
// Unpacker.PopBytes.
type PtyData struct {
	PaneID int
	Data   []byte
}

// PaneSpec is the declared geometry of one pane.
type PaneSpec struct {
	ID int
	Geometry
}

// Geometry is a pane's size and position within its window, in cells.
type Geometry struct {
	Width   int `cbor:"width"`
	Height  int `cbor:"height"`
	XOffset int `cbor:"x_offset"`
	YOffset int `cbor:"y_offset"`
}

func (Header) Opcode() Opcode     { return OpcodeHeader }
func (SyncWindow) Opcode() Opcode { return OpcodeSyncWindow }
func (PtyData) Opcode() Opcode    { return OpcodePtyData }

func (message Header) fields() []any {
	return []any{message.ProtocolVersion}
}

func (message SyncWindow) fields() []any {
	panes := make([]any, 0, len(message.Panes))
	for _, pane := range message.Panes {
		panes = append(panes, []any{pane.ID, pane.Width, pane.Height, pane.XOffset, pane.YOffset})
	}
	// Window names are arbitrary bytes, so they go out as a byte string;
	// a text string must be valid UTF-8.
	return []any{message.ID, []byte(message.Name), message.Width, message.Height, panes, message.ActivePaneID}
}

func (message PtyData) fields() []any {
	data := message.Data
	if data == nil {
		data = []byte{}
	}
	return []any{message.PaneID, data}
}

// Encode returns the wire encoding of message.
func Encode(message Message) ([]byte, error) {
	elements := append([]any{int64(message.Opcode())}, message.fields()...)
	data, err := codec.Marshal(elements)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", message.Opcode(), err)
	}
	return data, nil
}

// DecodeMessage validates one decoded value and converts it into a
// Message. Every field the variant declares must be present with the
// right type; elements after the declared fields are ignored so that a
// newer controller can append fields without breaking older clients.
//
// The returned error is always a *ProtocolError.
func DecodeMessage(value any) (Message, error) {
	unpacker, err := NewUnpacker(value)
	if err != nil {
		return nil, &ProtocolError{Kind: ErrMalformedMessage, Err: err}
	}
	raw, err := unpacker.PopInt()
	if err != nil {
		return nil, protocolError(0, err)
	}
	opcode, err := ParseOpcode(raw)
	if err != nil {
		return nil, err
	}

	var message Message
	switch opcode {
	case OpcodeHeader:
		message, err = decodeHeader(unpacker)
	case OpcodeSyncWindow:
		message, err = decodeSyncWindow(unpacker)
	case OpcodePtyData:
		message, err = decodePtyData(unpacker)
	}
	if err != nil {
		return nil, protocolError(opcode, err)
	}
	return message, nil
}

func decodeHeader(unpacker *Unpacker) (Header, error) {
	version, err := unpacker.popInt()
	if err != nil {
		return Header{}, fmt.Errorf("protocol_version: %w", err)
	}
	return Header{ProtocolVersion: version}, nil
}

func decodeSyncWindow(unpacker *Unpacker) (SyncWindow, error) {
	var message SyncWindow
	var err error

	if message.ID, err = unpacker.popInt(); err != nil {
		return SyncWindow{}, fmt.Errorf("id: %w", err)
	}
	if message.Name, err = unpacker.PopString(); err != nil {
		return SyncWindow{}, fmt.Errorf("name: %w", err)
	}
	if message.Width, err = unpacker.popInt(); err != nil {
		return SyncWindow{}, fmt.Errorf("width: %w", err)
	}
	if message.Height, err = unpacker.popInt(); err != nil {
		return SyncWindow{}, fmt.Errorf("height: %w", err)
	}

	index := 0
	for entry, err := range unpacker.Each() {
		if err != nil {
			return SyncWindow{}, fmt.Errorf("panes[%d]: %w", index, err)
		}
		pane, err := decodePaneSpec(entry)
		if err != nil {
			return SyncWindow{}, fmt.Errorf("panes[%d].%w", index, err)
		}
		message.Panes = append(message.Panes, pane)
		index++
	}

	if message.ActivePaneID, err = unpacker.popInt(); err != nil {
		return SyncWindow{}, fmt.Errorf("active_pane_id: %w", err)
	}
	return message, nil
}

func decodePaneSpec(unpacker *Unpacker) (PaneSpec, error) {
	var pane PaneSpec
	fields := []struct {
		name  string
		value *int
	}{
		{"id", &pane.ID},
		{"width", &pane.Width},
		{"height", &pane.Height},
		{"x_offset", &pane.XOffset},
		{"y_offset", &pane.YOffset},
	}
	for _, field := range fields {
		value, err := unpacker.popInt()
		if err != nil {
			return PaneSpec{}, fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = value
	}
	return pane, nil
}

func decodePtyData(unpacker *Unpacker) (PtyData, error) {
	paneID, err := unpacker.popInt()
	if err != nil {
		return PtyData{}, fmt.Errorf("pane_id: %w", err)
	}
	data, err := unpacker.PopBytes()
	if err != nil {
		return PtyData{}, fmt.Errorf("data: %w", err)
	}
	return PtyData{PaneID: paneID, Data: data}, nil
}
