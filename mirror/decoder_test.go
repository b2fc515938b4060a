// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

// collector is a MessageHandler that records every value.
type collector struct {
	values []any
}

func (c *collector) handle(value any) error {
	c.values = append(c.values, value)
	return nil
}

// feed writes data into decoder in chunks of at most chunkSize bytes,
// going through Buffer and Commit the way a read loop does.
func feed(decoder *Decoder, data []byte, chunkSize int) error {
	for len(data) > 0 {
		region := decoder.Buffer()
		count := copy(region[:min(len(region), chunkSize)], data)
		data = data[count:]
		if err := decoder.Commit(count); err != nil {
			return err
		}
	}
	return nil
}

func sampleStream(t *testing.T) []byte {
	t.Helper()
	var stream []byte
	for _, message := range []Message{
		Header{ProtocolVersion: 1},
		SyncWindow{ID: 0, Name: "shell", Width: 80, Height: 24, Panes: []PaneSpec{pane(0, 80, 24, 0, 0)}, ActivePaneID: 0},
		PtyData{PaneID: 0, Data: []byte("$ ls\r\n")},
		PtyData{PaneID: 0, Data: bytes.Repeat([]byte("x"), 3000)},
		SyncWindow{ID: 1, Name: "logs", Width: 80, Height: 24, Panes: []PaneSpec{pane(1, 40, 24, 0, 0), pane(2, 39, 24, 41, 0)}, ActivePaneID: 2},
		PtyData{PaneID: 2, Data: []byte("\x1b[31merror\x1b[0m")},
	} {
		stream = append(stream, mustEncode(t, message)...)
	}
	return stream
}

func TestDecoderChunkingIndependent(t *testing.T) {
	t.Parallel()
	stream := sampleStream(t)

	var whole collector
	if err := feed(NewDecoder(MaxMessageSize, whole.handle), stream, len(stream)); err != nil {
		t.Fatalf("feeding all at once: %v", err)
	}
	if len(whole.values) != 6 {
		t.Fatalf("all at once: got %d messages, want 6", len(whole.values))
	}

	for _, chunkSize := range []int{1, 2, 7, 100, 4096} {
		var chunked collector
		decoder := NewDecoder(MaxMessageSize, chunked.handle)
		if err := feed(decoder, stream, chunkSize); err != nil {
			t.Fatalf("chunk size %d: %v", chunkSize, err)
		}
		if !reflect.DeepEqual(chunked.values, whole.values) {
			t.Errorf("chunk size %d: decoded values differ from all-at-once decoding", chunkSize)
		}
		if decoder.Pending() != 0 {
			t.Errorf("chunk size %d: %d bytes pending after a complete stream", chunkSize, decoder.Pending())
		}
	}
}

func TestDecoderHoldsPartialMessage(t *testing.T) {
	t.Parallel()
	data := mustEncode(t, PtyData{PaneID: 1, Data: []byte("hello")})

	var got collector
	decoder := NewDecoder(MaxMessageSize, got.handle)
	if err := feed(decoder, data[:len(data)-1], len(data)); err != nil {
		t.Fatalf("partial feed: %v", err)
	}
	if len(got.values) != 0 {
		t.Fatalf("dispatched %d messages before the last byte arrived", len(got.values))
	}
	if decoder.Pending() != len(data)-1 {
		t.Errorf("Pending: got %d, want %d", decoder.Pending(), len(data)-1)
	}

	if err := feed(decoder, data[len(data)-1:], 1); err != nil {
		t.Fatalf("final byte: %v", err)
	}
	if len(got.values) != 1 {
		t.Errorf("got %d messages, want 1", len(got.values))
	}
}

// ptyDataOfSize returns an encoded PtyData message exactly size bytes
// long. The overhead is array(3) + opcode + pane id + a 3-byte byte
// string header, valid for payloads of 256 to 65535 bytes.
func ptyDataOfSize(t *testing.T, size int) []byte {
	t.Helper()
	const overhead = 6
	data := mustEncode(t, PtyData{PaneID: 1, Data: bytes.Repeat([]byte("z"), size-overhead)})
	if len(data) != size {
		t.Fatalf("encoded message is %d bytes, want %d", len(data), size)
	}
	return data
}

func TestDecoderMessageAtLimit(t *testing.T) {
	t.Parallel()
	for _, chunkSize := range []int{MaxMessageSize, 1000} {
		var got collector
		decoder := NewDecoder(MaxMessageSize, got.handle)
		if err := feed(decoder, ptyDataOfSize(t, MaxMessageSize), chunkSize); err != nil {
			t.Fatalf("chunk size %d: message at the limit rejected: %v", chunkSize, err)
		}
		if len(got.values) != 1 {
			t.Errorf("chunk size %d: got %d messages, want 1", chunkSize, len(got.values))
		}
	}
}

func TestDecoderMessageOverLimit(t *testing.T) {
	t.Parallel()
	for _, chunkSize := range []int{MaxMessageSize + 1, 1000, 1} {
		var got collector
		decoder := NewDecoder(MaxMessageSize, got.handle)
		err := feed(decoder, ptyDataOfSize(t, MaxMessageSize+1), chunkSize)
		if !errors.Is(err, ErrMessageTooLarge) {
			t.Fatalf("chunk size %d: got %v, want ErrMessageTooLarge", chunkSize, err)
		}
		if len(got.values) != 0 {
			t.Errorf("chunk size %d: oversized message was dispatched", chunkSize)
		}
	}
}

func TestDecoderRejectsOversizedPartial(t *testing.T) {
	t.Parallel()
	data := ptyDataOfSize(t, 20000)

	decoder := NewDecoder(MaxMessageSize, (&collector{}).handle)
	if err := feed(decoder, data[:MaxMessageSize], MaxMessageSize); err != nil {
		t.Fatalf("partial message at the limit rejected: %v", err)
	}
	err := feed(decoder, data[MaxMessageSize:MaxMessageSize+1], 1)
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("got %v, want ErrMessageTooLarge once the partial message passes the limit", err)
	}
}

func TestDecoderBufferAlwaysFitsAMessage(t *testing.T) {
	t.Parallel()
	decoder := NewDecoder(MaxMessageSize, (&collector{}).handle)
	if got := len(decoder.Buffer()); got != 2*MaxMessageSize {
		t.Fatalf("initial region: got %d bytes, want %d", got, 2*MaxMessageSize)
	}

	// Leave a partial message behind after many complete ones so the
	// buffer has to compact.
	message := ptyDataOfSize(t, 5000)
	var stream []byte
	for range 10 {
		stream = append(stream, message...)
	}
	stream = append(stream, message[:4000]...)

	for len(stream) > 0 {
		region := decoder.Buffer()
		if len(region) < MaxMessageSize {
			t.Fatalf("region of %d bytes is smaller than one message", len(region))
		}
		count := copy(region[:min(len(region), 3333)], stream)
		stream = stream[count:]
		if err := decoder.Commit(count); err != nil {
			t.Fatalf("Commit: %v", err)
		}
	}
	if decoder.Pending() != 4000 {
		t.Errorf("Pending: got %d, want 4000", decoder.Pending())
	}
}

func TestDecoderMalformedBytes(t *testing.T) {
	t.Parallel()
	decoder := NewDecoder(MaxMessageSize, (&collector{}).handle)
	err := feed(decoder, []byte{0xFF}, 1)
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("got %v, want ErrMalformedMessage", err)
	}
}

func TestDecoderErrorIsLatched(t *testing.T) {
	t.Parallel()
	calls := 0
	failure := errors.New("handler failed")
	decoder := NewDecoder(MaxMessageSize, func(any) error {
		calls++
		return failure
	})

	stream := append(mustEncode(t, Header{ProtocolVersion: 1}), mustEncode(t, Header{ProtocolVersion: 1})...)
	if err := feed(decoder, stream, len(stream)); !errors.Is(err, failure) {
		t.Fatalf("got %v, want handler error", err)
	}
	if calls != 1 {
		t.Errorf("handler called %d times, want 1 (decoding stops at the first failure)", calls)
	}

	decoder.Buffer()
	if err := decoder.Commit(0); !errors.Is(err, failure) {
		t.Errorf("Commit after failure: got %v, want the latched error", err)
	}
	if !errors.Is(decoder.Err(), failure) {
		t.Errorf("Err: got %v, want the latched error", decoder.Err())
	}
	if calls != 1 {
		t.Errorf("handler called again after failure")
	}
}

func TestDecoderBufferOverrun(t *testing.T) {
	t.Parallel()
	decoder := NewDecoder(MaxMessageSize, (&collector{}).handle)

	region := decoder.Buffer()
	if err := decoder.Commit(len(region) + 1); !errors.Is(err, ErrBufferOverrun) {
		t.Fatalf("got %v, want ErrBufferOverrun", err)
	}
}

func TestDecoderCommitWithoutBuffer(t *testing.T) {
	t.Parallel()
	decoder := NewDecoder(MaxMessageSize, (&collector{}).handle)

	decoder.Buffer()
	if err := decoder.Commit(0); err != nil {
		t.Fatalf("empty Commit: %v", err)
	}
	// The region was used up by the previous Commit.
	if err := decoder.Commit(1); !errors.Is(err, ErrBufferOverrun) {
		t.Errorf("Commit without Buffer: got %v, want ErrBufferOverrun", err)
	}
}
