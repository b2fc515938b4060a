// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package recording captures the raw byte stream a mirror client
// receives from its controller, so a session can be replayed later
// through the same decoder path.
//
// A recording file is a fixed header followed by the stream body:
//
//	offset  size  field
//	0       4     magic "BMRC"
//	4       1     format version (1)
//	5       1     compression tag (none=0, lz4=1, zstd=2)
//	6       ...   body, compressed as a single stream
//
// The body is the inbound bytes exactly as read from the connection,
// message framing included. Nothing is re-encoded, so a replay
// exercises the decoder with the same byte sequence the live client
// saw (though not necessarily the same read boundaries).
package recording
