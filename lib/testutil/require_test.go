// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
	"time"
)

// fatalRecorder captures Fatalf instead of stopping the test. Fatalf
// panics so RequireReceive does not continue past the failure.
type fatalRecorder struct {
	message string
}

func (r *fatalRecorder) Helper() {}

func (r *fatalRecorder) Fatalf(format string, args ...any) {
	r.message = fmt.Sprintf(format, args...)
	panic(r)
}

func expectFatal(t *testing.T, body func(*fatalRecorder)) string {
	t.Helper()
	recorder := &fatalRecorder{}
	func() {
		defer func() {
			if recovered := recover(); recovered != recorder {
				t.Fatalf("expected Fatalf, got panic %v", recovered)
			}
		}()
		body(recorder)
	}()
	return recorder.message
}

func TestRequireReceiveValue(t *testing.T) {
	t.Parallel()
	ch := make(chan int, 1)
	ch <- 42
	if got := RequireReceive(t, ch, time.Second, "value"); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestRequireReceiveClosed(t *testing.T) {
	t.Parallel()
	ch := make(chan int)
	close(ch)
	message := expectFatal(t, func(recorder *fatalRecorder) {
		RequireReceive(recorder, ch, time.Second, "waiting for %s", "result")
	})
	if message != "channel closed without sending a value: waiting for result" {
		t.Errorf("message: got %q", message)
	}
}

func TestRequireReceiveTimeout(t *testing.T) {
	t.Parallel()
	message := expectFatal(t, func(recorder *fatalRecorder) {
		RequireReceive(recorder, make(chan int), time.Millisecond)
	})
	if message != "timed out after 1ms: (no message)" {
		t.Errorf("message: got %q", message)
	}
}
