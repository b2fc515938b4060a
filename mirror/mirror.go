// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"fmt"
	"io"
	"log/slog"
)

// Options configures a Mirror.
type Options struct {
	// ScrollbackSize is the raw output history kept per pane, in
	// bytes. Zero means DefaultScrollbackSize.
	ScrollbackSize int

	// NewTerminal creates the terminal for each new pane. Nil means
	// NewScreenTerminal.
	NewTerminal TerminalFactory

	// Redraw is called after every window sync with the synced
	// window. Panes needing a repaint report it via TakeRedraw.
	Redraw func(window *Window)

	// Logger receives structured diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Mirror applies decoded protocol messages to a Session. It owns the
// session explicitly: there is no session until the first window sync
// creates one.
//
// A Mirror is not safe for concurrent use. Feed it from one goroutine.
type Mirror struct {
	options Options
	logger  *slog.Logger
	session *Session
}

// New returns a Mirror with no session yet.
func New(options Options) *Mirror {
	if options.NewTerminal == nil {
		options.NewTerminal = NewScreenTerminal
	}
	if options.ScrollbackSize <= 0 {
		options.ScrollbackSize = DefaultScrollbackSize
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Mirror{options: options, logger: logger}
}

// Session returns the mirrored session, or nil before the first window
// sync.
func (m *Mirror) Session() *Session {
	return m.session
}

// Dispatch decodes one value produced by the Decoder and applies it.
// It is a MessageHandler. The returned error is always a
// *ProtocolError and is never recoverable.
func (m *Mirror) Dispatch(value any) error {
	message, err := DecodeMessage(value)
	if err != nil {
		return err
	}
	if err := m.Apply(message); err != nil {
		return protocolError(message.Opcode(), err)
	}
	return nil
}

// Apply applies one decoded message.
func (m *Mirror) Apply(message Message) error {
	switch message := message.(type) {
	case Header:
		return m.handleHeader(message)
	case SyncWindow:
		return m.handleSyncWindow(message)
	case PtyData:
		return m.handlePtyData(message)
	default:
		return &ProtocolError{Kind: ErrUnknownOpcode, Detail: fmt.Sprintf("message type %T", message)}
	}
}

func (m *Mirror) handleHeader(message Header) error {
	if message.ProtocolVersion != ProtocolVersion {
		return &ProtocolError{
			Kind:   ErrVersionMismatch,
			Opcode: OpcodeHeader,
			Detail: fmt.Sprintf("controller speaks version %d, client speaks %d", message.ProtocolVersion, ProtocolVersion),
		}
	}
	m.logger.Debug("new controller", "protocol", message.ProtocolVersion)
	return nil
}

func (m *Mirror) handleSyncWindow(message SyncWindow) error {
	if m.session == nil {
		m.session = newSession(message.Width, message.Height,
			m.options.ScrollbackSize, m.options.NewTerminal, m.logger)
		m.logger.Info("session created", "width", message.Width, "height", message.Height)
	}
	session := m.session

	window := session.ensureWindow(message.ID)
	window.name = message.Name
	window.width, window.height = message.Width, message.Height
	session.width, session.height = message.Width, message.Height

	state := window.paneState()
	plan := PlanPanes(state, message.Panes, message.ActivePaneID)
	window.apply(plan)
	m.logger.Debug("window synced",
		"window", window.id,
		"name", window.name,
		"panes", plan.FinalIDs(state),
		"created", len(plan.Create),
		"destroyed", len(plan.Destroy),
	)

	if m.options.Redraw != nil {
		m.options.Redraw(window)
	}
	return nil
}

func (m *Mirror) handlePtyData(message PtyData) error {
	var pane *Pane
	if m.session != nil {
		pane = m.session.Pane(message.PaneID)
	}
	if pane == nil {
		return &ProtocolError{
			Kind:   ErrUnknownPane,
			Opcode: OpcodePtyData,
			Detail: fmt.Sprintf("pane %d", message.PaneID),
		}
	}
	pane.write(message.Data)
	return nil
}
