// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

// DefaultScrollbackSize is the per-pane raw output history kept for
// replay, in bytes.
const DefaultScrollbackSize = 256 * 1024

// Scrollback is a fixed-capacity circular store of a pane's raw output,
// escape sequences included. It tracks the total number of bytes ever
// written so a consumer can ask for "everything after offset N" and
// learn whether it missed anything.
//
// Scrollback is owned by its pane and follows the mirror's
// single-writer model; it is not safe for concurrent use.
type Scrollback struct {
	data []byte

	// head is the index in data where the next byte is written.
	head int

	// written is the total number of bytes ever written. The retained
	// bytes are the last min(written, len(data)) of them.
	written uint64
}

// NewScrollback returns a Scrollback holding at most capacity bytes.
func NewScrollback(capacity int) *Scrollback {
	if capacity <= 0 {
		capacity = DefaultScrollbackSize
	}
	return &Scrollback{data: make([]byte, capacity)}
}

// Write appends output, discarding the oldest bytes once full. It never
// fails.
func (s *Scrollback) Write(output []byte) (int, error) {
	total := len(output)
	capacity := len(s.data)
	if len(output) > capacity {
		// Only the tail can survive; skip straight to it.
		skipped := len(output) - capacity
		s.head = (s.head + skipped) % capacity
		s.written += uint64(skipped)
		output = output[skipped:]
	}
	for len(output) > 0 {
		copied := copy(s.data[s.head:], output)
		s.head = (s.head + copied) % capacity
		s.written += uint64(copied)
		output = output[copied:]
	}
	return total, nil
}

// Offset returns the total number of bytes written. Store it and pass
// it to Since later to fetch only newer output.
func (s *Scrollback) Offset() uint64 {
	return s.written
}

// Retained returns the number of bytes currently held.
func (s *Scrollback) Retained() int {
	if s.written < uint64(len(s.data)) {
		return int(s.written)
	}
	return len(s.data)
}

// Since returns a copy of the output written after offset. If offset
// predates the oldest retained byte, everything retained is returned
// and truncated reports true. An offset at or past the current one
// yields nil.
func (s *Scrollback) Since(offset uint64) (output []byte, truncated bool) {
	if offset >= s.written {
		return nil, false
	}
	retained := uint64(s.Retained())
	oldest := s.written - retained
	if offset < oldest {
		offset = oldest
		truncated = true
	}

	length := int(s.written - offset)
	output = make([]byte, length)
	// The newest byte sits just before head; walk back length bytes.
	begin := (s.head - length + len(s.data)) % len(s.data)
	copied := copy(output, s.data[begin:])
	if copied < length {
		copy(output[copied:], s.data[:length-copied])
	}
	return output, truncated
}

// Bytes returns a copy of everything retained, oldest first.
func (s *Scrollback) Bytes() []byte {
	output, _ := s.Since(0)
	return output
}
