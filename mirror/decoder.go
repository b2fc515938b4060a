// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/termmirror/lib/codec"
)

// MaxMessageSize is the largest encoded message the decoder accepts.
// Window syncs are a few hundred bytes; output is chunked by the
// controller well below this.
const MaxMessageSize = 16 * 1024

// MessageHandler receives each complete decoded value in arrival
// order. A non-nil error stops decoding permanently.
type MessageHandler func(value any) error

// Decoder cuts complete messages off the front of a byte stream.
//
// The caller asks for a receive region with Buffer, fills some prefix
// of it (typically with one Read call), and reports how many bytes it
// wrote with Commit. Commit decodes and dispatches every message that is
// now complete. Bytes of a message that has not fully arrived stay in
// the buffer until a later Commit completes it.
//
// The buffer starts at twice the message size limit and Buffer always
// leaves at least one limit's worth of spare room, so a maximal message
// never needs a second allocation mid-message.
//
// Errors are fatal. After Commit returns an error the Decoder returns
// the same error from every later Commit without decoding anything.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	maxMessageSize int
	handle         MessageHandler

	// buffer[start:end] holds received bytes not yet cut into a
	// message; buffer[end:] is spare room.
	buffer []byte
	start  int
	end    int

	// lent is the length of the region most recently returned by
	// Buffer, bounding the next Commit. Zero once committed.
	lent int

	err error
}

// NewDecoder returns a Decoder that enforces maxMessageSize and passes
// each decoded value to handle.
func NewDecoder(maxMessageSize int, handle MessageHandler) *Decoder {
	if maxMessageSize <= 0 {
		panic(fmt.Sprintf("mirror: invalid max message size %d", maxMessageSize))
	}
	return &Decoder{
		maxMessageSize: maxMessageSize,
		handle:         handle,
		buffer:         make([]byte, 2*maxMessageSize),
	}
}

// Buffer returns the region the caller may fill with newly received
// bytes. The region is at least MaxMessageSize bytes long. Calling
// Buffer may move unconsumed bytes within the internal buffer, so any
// byte span handed out by an earlier message is invalid afterwards.
func (d *Decoder) Buffer() []byte {
	if len(d.buffer)-d.end < d.maxMessageSize {
		d.compact()
	}
	d.lent = len(d.buffer) - d.end
	return d.buffer[d.end:]
}

// compact moves the pending bytes to the front of the buffer and grows
// it if that still leaves less than one message of spare room.
func (d *Decoder) compact() {
	pending := d.end - d.start
	if d.start > 0 {
		copy(d.buffer, d.buffer[d.start:d.end])
		d.start = 0
		d.end = pending
	}
	if len(d.buffer)-d.end < d.maxMessageSize {
		grown := make([]byte, pending+2*d.maxMessageSize)
		copy(grown, d.buffer[:d.end])
		d.buffer = grown
	}
}

// Commit records that n bytes of the region returned by the last Buffer
// call now hold received data, then dispatches every complete message
// in order. Each Commit uses up the region; call Buffer again before
// the next one.
func (d *Decoder) Commit(n int) error {
	if d.err != nil {
		return d.err
	}
	if n < 0 || n > d.lent {
		d.err = &ProtocolError{
			Kind:   ErrBufferOverrun,
			Detail: fmt.Sprintf("committed %d bytes into a %d byte region", n, d.lent),
		}
		return d.err
	}
	d.end += n
	d.lent = 0

	if err := d.drain(); err != nil {
		d.err = err
		return err
	}
	return nil
}

// drain decodes and dispatches complete messages, then enforces the
// size limit on whatever partial message remains.
func (d *Decoder) drain() error {
	for d.start < d.end {
		pending := d.buffer[d.start:d.end]
		value, rest, err := codec.DecodeFirst(pending)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return &ProtocolError{Kind: ErrMalformedMessage, Err: err}
		}

		size := len(pending) - len(rest)
		if size > d.maxMessageSize {
			return &ProtocolError{
				Kind:   ErrMessageTooLarge,
				Detail: fmt.Sprintf("%d bytes exceeds limit of %d", size, d.maxMessageSize),
			}
		}
		d.start += size

		if err := d.handle(value); err != nil {
			return err
		}
	}

	if d.start == d.end {
		d.start, d.end = 0, 0
	}

	if pending := d.end - d.start; pending > d.maxMessageSize {
		return &ProtocolError{
			Kind:   ErrMessageTooLarge,
			Detail: fmt.Sprintf("incomplete message already %d bytes, limit is %d", pending, d.maxMessageSize),
		}
	}
	return nil
}

// Pending returns the number of received bytes that belong to a message
// that has not fully arrived.
func (d *Decoder) Pending() int {
	return d.end - d.start
}

// Err returns the error that stopped the decoder, or nil.
func (d *Decoder) Err() error {
	return d.err
}
