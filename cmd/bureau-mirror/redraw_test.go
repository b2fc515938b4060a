// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/bureau-foundation/termmirror/mirror"
)

func TestLayoutLogReportsOutputSinceLastChange(t *testing.T) {
	t.Parallel()
	var records bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&records, &slog.HandlerOptions{Level: slog.LevelDebug}))
	layout := newLayoutLog(logger)

	sync := func(width int) mirror.SyncWindow {
		return mirror.SyncWindow{ID: 0, Name: "shell", Width: width, Height: 24,
			Panes: []mirror.PaneSpec{{ID: 4, Geometry: mirror.Geometry{Width: width, Height: 24}}}, ActivePaneID: 4}
	}
	stream := encodeStream(t,
		sync(80),
		mirror.PtyData{PaneID: 4, Data: []byte("$ make\r\n\x1b[32mok\x1b[0m\r\n")},
		sync(100),
		sync(120),
	)
	client := mirror.NewClient(mirror.Options{Redraw: layout.redraw})
	if err := client.Run(context.Background(), bytes.NewReader(stream)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	type layoutRecord struct {
		Message    string `json:"msg"`
		Pane       int    `json:"pane"`
		Width      int    `json:"width"`
		Bytes      int    `json:"output_bytes"`
		Truncated  bool   `json:"output_truncated"`
		LastOutput string `json:"last_output"`
	}
	var got []layoutRecord
	decoder := json.NewDecoder(&records)
	for decoder.More() {
		var record layoutRecord
		if err := decoder.Decode(&record); err != nil {
			t.Fatalf("decoding log record: %v", err)
		}
		if record.Message == "pane layout changed" {
			got = append(got, record)
		}
	}

	want := []layoutRecord{
		{Message: "pane layout changed", Pane: 4, Width: 80},
		{Message: "pane layout changed", Pane: 4, Width: 100, Bytes: 21, LastOutput: "ok"},
		{Message: "pane layout changed", Pane: 4, Width: 120},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d layout records, want %d: %+v", len(got), len(want), got)
	}
	for index := range want {
		if got[index] != want[index] {
			t.Errorf("record %d: got %+v, want %+v", index, got[index], want[index])
		}
	}
}

func TestLastLine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"empty", "", ""},
		{"trailing newline", "first\r\nsecond\r\n", "second"},
		{"escapes stripped", "\x1b[1mbold\x1b[0m", "bold"},
	}
	for _, test := range tests {
		if got := lastLine([]byte(test.output)); got != test.want {
			t.Errorf("%s: got %q, want %q", test.name, got, test.want)
		}
	}
}
