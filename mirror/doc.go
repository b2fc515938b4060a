// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mirror is the receiving end of the terminal sharing protocol:
// it keeps a local copy of a remote multiplexer session (windows, panes
// and pane output) by decoding the message stream a controller pushes.
//
// The receive path, leaf first:
//
//   - [Decoder] owns the receive buffer. The caller fills the region from
//     [Decoder.Buffer] and calls [Decoder.Commit]; every message that is
//     now complete is cut off the front and handed on in arrival order.
//     Messages are CBOR arrays (see lib/codec) bounded by
//     [MaxMessageSize].
//   - [Unpacker] reads one message's fields in order with strict arity
//     and type checks.
//   - [DecodeMessage] pops the leading opcode and decodes the variant:
//     [Header], [SyncWindow] or [PtyData].
//   - [Mirror] applies messages to its [Session]. A window sync runs the
//     pure [PlanPanes] reconciliation and then applies the resulting
//     [PanePlan]; pane output goes to the pane's [Scrollback] and
//     [Terminal].
//
// [Client] wires the Decoder to a Mirror and runs the read loop over a
// connection.
//
// Every error is fatal. The controller is the single authority for the
// session, so the mirror never resynchronizes or skips a bad message:
// the error is returned (as a [*ProtocolError] wrapping one of the
// Err* kinds) and the embedding application tears the connection down.
package mirror
