// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/termmirror/lib/codec"
)

// Snapshot is the structural state of a session: windows, panes,
// geometry and active pointers. Pane output is not included.
type Snapshot struct {
	Width         int              `cbor:"width"`
	Height        int              `cbor:"height"`
	CurrentWindow int              `cbor:"current_window"`
	Windows       []WindowSnapshot `cbor:"windows"`
}

// WindowSnapshot is one window within a Snapshot.
type WindowSnapshot struct {
	ID     int    `cbor:"id"`
	Name   string `cbor:"name"`
	Width  int    `cbor:"width"`
	Height int    `cbor:"height"`

	// ActivePane is -1 when the window has no panes.
	ActivePane int            `cbor:"active_pane"`
	Panes      []PaneSnapshot `cbor:"panes"`
}

// PaneSnapshot is one pane within a WindowSnapshot.
type PaneSnapshot struct {
	ID       int      `cbor:"id"`
	Geometry Geometry `cbor:"geometry"`
}

// Snapshot captures the session's current structure. Windows are
// ordered by id and panes by window order.
func (s *Session) Snapshot() Snapshot {
	snapshot := Snapshot{Width: s.width, Height: s.height, CurrentWindow: -1}
	if s.current != nil {
		snapshot.CurrentWindow = s.current.id
	}
	for _, window := range s.Windows() {
		windowSnapshot := WindowSnapshot{
			ID:         window.id,
			Name:       window.name,
			Width:      window.width,
			Height:     window.height,
			ActivePane: -1,
			Panes:      make([]PaneSnapshot, 0, len(window.panes)),
		}
		if window.active != nil {
			windowSnapshot.ActivePane = window.active.id
		}
		for _, pane := range window.panes {
			windowSnapshot.Panes = append(windowSnapshot.Panes, PaneSnapshot{ID: pane.id, Geometry: pane.geometry})
		}
		snapshot.Windows = append(snapshot.Windows, windowSnapshot)
	}
	return snapshot
}

// Digest returns the BLAKE3 hash of the snapshot's deterministic CBOR
// encoding. Two mirrors that applied equivalent message streams have
// equal digests.
func (snapshot Snapshot) Digest() ([32]byte, error) {
	data, err := codec.Marshal(snapshot)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	return blake3.Sum256(data), nil
}

// FormatDigest returns the hex encoding of a snapshot digest, the form
// used in logs and dumps.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}
