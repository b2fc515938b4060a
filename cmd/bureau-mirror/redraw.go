// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/termmirror/mirror"
)

const outputPreviewWidth = 60

// layoutLog is the mirror's Redraw callback for a headless client. For
// every pane a window sync changed, it logs the new geometry and a
// summary of the output the pane produced since its previous change.
type layoutLog struct {
	logger *slog.Logger

	// offsets holds each pane's scrollback offset at its last logged
	// change.
	offsets map[int]uint64
}

func newLayoutLog(logger *slog.Logger) *layoutLog {
	return &layoutLog{logger: logger, offsets: make(map[int]uint64)}
}

func (l *layoutLog) redraw(window *mirror.Window) {
	for _, pane := range window.Panes() {
		if !pane.TakeRedraw() {
			continue
		}
		scrollback := pane.Scrollback()
		since := l.offsets[pane.ID()]
		if since > scrollback.Offset() {
			// The id was reused by a new pane.
			since = 0
		}
		output, truncated := scrollback.Since(since)
		l.offsets[pane.ID()] = scrollback.Offset()

		geometry := pane.Geometry()
		l.logger.Debug("pane layout changed",
			"window", window.ID(),
			"pane", pane.ID(),
			"width", geometry.Width,
			"height", geometry.Height,
			"x", geometry.XOffset,
			"y", geometry.YOffset,
			"output_bytes", len(output),
			"output_truncated", truncated,
			"retained_bytes", scrollback.Retained(),
			"last_output", lastLine(output),
		)
	}
}

// lastLine returns the last non-empty line of output as plain text,
// cut to outputPreviewWidth cells.
func lastLine(output []byte) string {
	lines := strings.Split(ansi.Strip(string(output)), "\n")
	for index := len(lines) - 1; index >= 0; index-- {
		if line := strings.TrimSpace(lines[index]); line != "" {
			return ansi.Truncate(line, outputPreviewWidth, "…")
		}
	}
	return ""
}
