// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Terminal interprets the output stream of one pane. The mirror hands
// it every byte the controller sends for the pane, in order, and tells
// it when the pane changes size. Rendering is the Terminal's business;
// the mirror never reads cell contents back.
type Terminal interface {
	// Write interprets newly appended output.
	Write(output []byte)

	// Resize changes the pane's dimensions in cells.
	Resize(width, height int)
}

// TerminalFactory creates the Terminal for a newly introduced pane.
type TerminalFactory func(paneID int, geometry Geometry) Terminal

// Screen is a minimal Terminal that tracks the visible text of a pane:
// printable graphemes are placed at the cursor, carriage return,
// newline and backspace move the cursor, and every other control or
// escape sequence is dropped. Lines scroll off the top once the pane's
// height is reached. It is enough for text snapshots and tests; an
// embedding application with a full emulator supplies its own
// TerminalFactory.
type Screen struct {
	width  int
	height int

	// lines holds the visible rows, one entry per cell. The
	// cursor is always on the last row.
	lines  [][]string
	column int

	// state carries the ANSI parser state across writes so a sequence
	// split between two messages is still recognised.
	state byte
}

// NewScreen returns an empty Screen of the given size.
func NewScreen(width, height int) *Screen {
	screen := &Screen{}
	screen.Resize(width, height)
	screen.lines = [][]string{nil}
	return screen
}

// NewScreenTerminal is the default TerminalFactory.
func NewScreenTerminal(_ int, geometry Geometry) Terminal {
	return NewScreen(geometry.Width, geometry.Height)
}

// Write implements Terminal.
func (s *Screen) Write(output []byte) {
	remaining := string(output)
	for len(remaining) > 0 {
		sequence, width, consumed, state := ansi.DecodeSequence(remaining, s.state, nil)
		s.state = state
		if consumed <= 0 {
			break
		}
		remaining = remaining[consumed:]

		if width > 0 {
			s.put(sequence, width)
			continue
		}
		switch sequence {
		case "\n":
			s.newline()
		case "\r":
			s.column = 0
		case "\b":
			if s.column > 0 {
				s.column--
			}
		}
	}
}

// put writes one grapheme of the given cell width at the cursor,
// wrapping first if it does not fit in the rest of the row. The cells
// a wide grapheme covers after its first hold "".
func (s *Screen) put(grapheme string, width int) {
	if s.width > 0 && s.column > 0 && s.column+width > s.width {
		s.newline()
	}
	row := len(s.lines) - 1
	line := s.lines[row]
	for len(line) < s.column+width {
		line = append(line, " ")
	}
	line[s.column] = grapheme
	for cell := 1; cell < width; cell++ {
		line[s.column+cell] = ""
	}
	s.lines[row] = line
	s.column += width
}

func (s *Screen) newline() {
	s.lines = append(s.lines, nil)
	s.column = 0
	s.scroll()
}

// scroll drops rows above the pane height.
func (s *Screen) scroll() {
	if s.height > 0 && len(s.lines) > s.height {
		s.lines = s.lines[len(s.lines)-s.height:]
	}
}

// Resize implements Terminal. Rows beyond the new height scroll off;
// columns beyond the new width are cut.
func (s *Screen) Resize(width, height int) {
	s.width = max(width, 0)
	s.height = max(height, 0)
	if s.width > 0 {
		for row, line := range s.lines {
			if len(line) > s.width {
				s.lines[row] = line[:s.width]
			}
		}
		s.column = min(s.column, s.width)
	}
	s.scroll()
}

// Lines returns the visible rows as plain text, top to bottom.
func (s *Screen) Lines() []string {
	lines := make([]string, len(s.lines))
	for row, line := range s.lines {
		lines[row] = strings.Join(line, "")
	}
	return lines
}

// Size returns the current dimensions in cells.
func (s *Screen) Size() (width, height int) {
	return s.width, s.height
}
