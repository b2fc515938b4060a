// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/bureau-foundation/termmirror/mirror"
)

const defaultDumpWidth = 80

var (
	windowStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	paneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	markerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	summaryStyle = lipgloss.NewStyle().Faint(true)
)

// outputWidth returns the terminal width of file, or defaultDumpWidth
// when it is not a terminal.
func outputWidth(file *os.File) int {
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return defaultDumpWidth
	}
	return width
}

// writeDump prints the session structure and each pane's visible
// screen, cutting lines at width.
func writeDump(writer io.Writer, session *mirror.Session, width int) error {
	if session == nil {
		_, err := fmt.Fprintln(writer, summaryStyle.Render("no session: the controller never synced a window"))
		return err
	}

	var output strings.Builder
	sessionWidth, sessionHeight := session.Size()
	current := session.CurrentWindow()
	for _, window := range session.Windows() {
		windowWidth, windowHeight := window.Size()
		header := fmt.Sprintf("window %d %q %dx%d", window.ID(), window.Name(), windowWidth, windowHeight)
		output.WriteString(windowStyle.Render(header))
		if window == current {
			output.WriteString(" " + markerStyle.Render("(current)"))
		}
		if window.HasUnseenOutput() {
			output.WriteString(" " + markerStyle.Render("(activity)"))
		}
		output.WriteString("\n")

		active := window.ActivePane()
		for _, pane := range window.Panes() {
			geometry := pane.Geometry()
			line := fmt.Sprintf("  pane %d %dx%d+%d+%d", pane.ID(),
				geometry.Width, geometry.Height, geometry.XOffset, geometry.YOffset)
			output.WriteString(paneStyle.Render(line))
			if pane == active {
				output.WriteString(" " + markerStyle.Render("(active)"))
			}
			fmt.Fprintf(&output, " %d bytes\n", pane.Scrollback().Offset())

			screen, ok := pane.Terminal().(*mirror.Screen)
			if !ok {
				continue
			}
			gutter := gutterStyle.Render("    │ ")
			available := max(width-ansi.StringWidth(gutter), 1)
			for _, text := range screen.Lines() {
				output.WriteString(gutter + ansi.Truncate(text, available, "…") + "\n")
			}
		}
	}

	digest, err := session.Snapshot().Digest()
	if err != nil {
		return err
	}
	summary := fmt.Sprintf("session %dx%d, %d windows, digest %s",
		sessionWidth, sessionHeight, len(session.Windows()), mirror.FormatDigest(digest))
	output.WriteString(summaryStyle.Render(summary) + "\n")

	_, err = io.WriteString(writer, output.String())
	return err
}
