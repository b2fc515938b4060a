// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"cmp"
	"log/slog"
	"slices"
)

// Session is the mirror of the controller's session: a set of windows
// keyed by id, each holding panes. Pane ids are unique across the whole
// session, which is how pane output is addressed.
//
// The mirror is the only writer of a Session's structure. Readers on
// other goroutines must be serialized with the goroutine feeding the
// decoder.
type Session struct {
	width  int
	height int

	windows map[int]*Window
	current *Window

	// panes indexes every pane in every window by id.
	panes map[int]*Pane

	scrollbackSize int
	newTerminal    TerminalFactory
	logger         *slog.Logger
}

func newSession(width, height int, scrollbackSize int, newTerminal TerminalFactory, logger *slog.Logger) *Session {
	return &Session{
		width:          width,
		height:         height,
		windows:        make(map[int]*Window),
		panes:          make(map[int]*Pane),
		scrollbackSize: scrollbackSize,
		newTerminal:    newTerminal,
		logger:         logger,
	}
}

// Size returns the session's default size, which follows the most
// recently synced window.
func (s *Session) Size() (width, height int) {
	return s.width, s.height
}

// Window returns the window with the given id, or nil.
func (s *Session) Window(id int) *Window {
	return s.windows[id]
}

// Windows returns every window ordered by id.
func (s *Session) Windows() []*Window {
	windows := make([]*Window, 0, len(s.windows))
	for _, window := range s.windows {
		windows = append(windows, window)
	}
	slices.SortFunc(windows, func(a, b *Window) int { return cmp.Compare(a.id, b.id) })
	return windows
}

// CurrentWindow returns the selected window, or nil before the first
// window exists.
func (s *Session) CurrentWindow() *Window {
	return s.current
}

// Pane returns the pane with the given id from any window, or nil.
func (s *Session) Pane(id int) *Pane {
	return s.panes[id]
}

// ensureWindow returns the window with id, creating it if needed. A new
// window causes the lowest-id window to become current.
func (s *Session) ensureWindow(id int) *Window {
	if window, ok := s.windows[id]; ok {
		return window
	}
	window := &Window{id: id, session: s}
	s.windows[id] = window
	s.current = s.Windows()[0]
	s.logger.Info("window created", "window", id)
	return window
}

// Window is one window of the mirrored session.
type Window struct {
	id      int
	name    string
	width   int
	height  int
	session *Session

	// panes is in insertion order; destroyed panes are removed in place.
	panes  []*Pane
	active *Pane

	unseenOutput bool
}

// ID returns the controller-assigned window id.
func (w *Window) ID() int { return w.id }

// Name returns the window name from the most recent sync.
func (w *Window) Name() string { return w.name }

// Size returns the window size from the most recent sync.
func (w *Window) Size() (width, height int) { return w.width, w.height }

// Panes returns the window's panes in order.
func (w *Window) Panes() []*Pane {
	return slices.Clone(w.panes)
}

// ActivePane returns the active pane, or nil if the window has none.
func (w *Window) ActivePane() *Pane {
	return w.active
}

// HasUnseenOutput reports whether any pane received output since the
// last ClearUnseenOutput.
func (w *Window) HasUnseenOutput() bool {
	return w.unseenOutput
}

// ClearUnseenOutput resets the unseen-output flag, typically after the
// embedding application has notified the user.
func (w *Window) ClearUnseenOutput() {
	w.unseenOutput = false
}

// paneState describes the window for PlanPanes.
func (w *Window) paneState() WindowPanes {
	state := WindowPanes{IDs: make([]int, len(w.panes))}
	for index, pane := range w.panes {
		state.IDs[index] = pane.id
	}
	if w.active != nil {
		state.Active, state.HasActive = w.active.id, true
	}
	return state
}

// apply carries out a plan computed by PlanPanes for this window.
// Every pane named by the plan is flagged for redraw.
func (w *Window) apply(plan PanePlan) {
	for _, id := range plan.Destroy {
		w.removePane(w.session.panes[id])
	}

	for _, spec := range plan.Resize {
		pane := w.session.panes[spec.ID]
		pane.setGeometry(spec.Geometry)
		pane.needsRedraw = true
	}

	for _, spec := range plan.Create {
		if elsewhere, ok := w.session.panes[spec.ID]; ok {
			// The controller moved the pane to this window.
			w.session.logger.Info("pane moved between windows",
				"pane", spec.ID, "from_window", elsewhere.window.id, "to_window", w.id)
			elsewhere.window.removePane(elsewhere)
		}
		pane := w.session.newPane(w, spec)
		w.panes = append(w.panes, pane)
		pane.needsRedraw = true
	}

	w.active = nil
	if plan.HasActive {
		w.active = w.session.panes[plan.Active]
	}
}

// removePane destroys pane and takes it out of this window. If it was
// active, the first remaining pane becomes active.
func (w *Window) removePane(pane *Pane) {
	w.panes = slices.DeleteFunc(w.panes, func(candidate *Pane) bool { return candidate == pane })
	delete(w.session.panes, pane.id)
	if w.active == pane {
		w.active = nil
		if len(w.panes) > 0 {
			w.active = w.panes[0]
		}
	}
	pane.window = nil
	w.session.logger.Debug("pane destroyed", "window", w.id, "pane", pane.id)
}

// Pane is one pane of a mirrored window.
type Pane struct {
	id       int
	window   *Window
	geometry Geometry

	needsRedraw bool

	scrollback *Scrollback
	terminal   Terminal
}

func (s *Session) newPane(window *Window, spec PaneSpec) *Pane {
	pane := &Pane{
		id:         spec.ID,
		window:     window,
		geometry:   spec.Geometry,
		scrollback: NewScrollback(s.scrollbackSize),
		terminal:   s.newTerminal(spec.ID, spec.Geometry),
	}
	s.panes[spec.ID] = pane
	s.logger.Debug("pane created", "window", window.id, "pane", spec.ID,
		"width", spec.Width, "height", spec.Height)
	return pane
}

// ID returns the controller-assigned pane id.
func (p *Pane) ID() int { return p.id }

// Window returns the window holding the pane, or nil once destroyed.
func (p *Pane) Window() *Window { return p.window }

// Geometry returns the pane's size and position.
func (p *Pane) Geometry() Geometry { return p.geometry }

// Scrollback returns the pane's raw output history.
func (p *Pane) Scrollback() *Scrollback { return p.scrollback }

// Terminal returns the pane's terminal.
func (p *Pane) Terminal() Terminal { return p.terminal }

// TakeRedraw reports whether the pane changed since the last call and
// clears the flag.
func (p *Pane) TakeRedraw() bool {
	redraw := p.needsRedraw
	p.needsRedraw = false
	return redraw
}

func (p *Pane) setGeometry(geometry Geometry) {
	if geometry.Width != p.geometry.Width || geometry.Height != p.geometry.Height {
		p.terminal.Resize(geometry.Width, geometry.Height)
	}
	p.geometry = geometry
}

// write appends output to the scrollback and hands it to the terminal.
func (p *Pane) write(output []byte) {
	p.scrollback.Write(output)
	p.terminal.Write(output)
	p.window.unseenOutput = true
}
