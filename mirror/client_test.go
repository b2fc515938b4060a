// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/bureau-foundation/termmirror/lib/testutil"
)

func TestClientRun(t *testing.T) {
	t.Parallel()
	client := NewClient(Options{})

	if err := client.Run(context.Background(), bytes.NewReader(sampleStream(t))); err != nil {
		t.Fatalf("Run: %v", err)
	}
	session := client.Session()
	if session == nil {
		t.Fatal("no session after Run")
	}
	if session.Window(0) == nil {
		t.Fatal("window 0 not mirrored")
	}
}

func TestClientRunTruncatedStream(t *testing.T) {
	t.Parallel()
	stream := sampleStream(t)
	client := NewClient(Options{})

	err := client.Run(context.Background(), bytes.NewReader(stream[:len(stream)-1]))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("Run: got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestClientRunProtocolError(t *testing.T) {
	t.Parallel()
	var stream []byte
	stream = append(stream, mustEncode(t, Header{ProtocolVersion: ProtocolVersion})...)
	stream = append(stream, mustEncode(t, PtyData{PaneID: 3, Data: []byte("early")})...)
	stream = append(stream, mustEncode(t, Header{ProtocolVersion: ProtocolVersion})...)

	client := NewClient(Options{})
	err := client.Run(context.Background(), bytes.NewReader(stream))
	if !errors.Is(err, ErrUnknownPane) {
		t.Fatalf("Run: got %v, want ErrUnknownPane", err)
	}
	if client.Session() != nil {
		t.Error("session created despite the protocol error")
	}
}

func TestClientRunCancelled(t *testing.T) {
	t.Parallel()
	reader, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(Options{})
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx, reader) }()

	// The write completes only once Run has read it.
	if _, err := writer.Write(mustEncode(t, Header{ProtocolVersion: ProtocolVersion})); err != nil {
		t.Fatalf("writing header: %v", err)
	}
	cancel()

	if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Run to return"); !errors.Is(err, context.Canceled) {
		t.Errorf("Run: got %v, want context.Canceled", err)
	}
}

func TestClientBufferCommit(t *testing.T) {
	t.Parallel()
	client := NewClient(Options{})
	stream := sampleStream(t)

	for len(stream) > 0 {
		count := copy(client.Buffer(), stream[:min(len(stream), 3)])
		if err := client.Commit(count); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		stream = stream[count:]
	}
	if got := paneIDs(client.Session().Window(0)); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("panes: got %v, want [0]", got)
	}
}
