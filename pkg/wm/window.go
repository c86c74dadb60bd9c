package wm

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/forgewm/forge/pkg/tree"
)

// Workspace is a virtual desktop.
type Workspace struct {
	index int
}

func (w *Workspace) Index() int { return w.index }

func (w *Workspace) String() string { return fmt.Sprintf("workspace %d", w.index) }

// Window is a simulated top-level window. Its state is guarded by the
// owning display.
type Window struct {
	display   *Display
	id        string
	class     string
	actor     uuid.UUID
	workspace *Workspace
	monitor   int
	minimized bool
	rect      tree.Rect
}

func (w *Window) ID() string      { return w.id }
func (w *Window) String() string  { return w.id }
func (w *Window) WMClass() string { return w.class }

// Actor returns the window's render handle, fixed when the window opened.
func (w *Window) Actor() tree.Actor { return w.actor }

func (w *Window) Minimized() bool {
	w.display.mu.Lock()
	defer w.display.mu.Unlock()
	return w.minimized
}

func (w *Window) Monitor() int {
	w.display.mu.Lock()
	defer w.display.mu.Unlock()
	return w.monitor
}

func (w *Window) Workspace() tree.Workspace {
	w.display.mu.Lock()
	defer w.display.mu.Unlock()
	return w.workspace
}

// Rect returns the geometry of the last placement.
func (w *Window) Rect() tree.Rect {
	w.display.mu.Lock()
	defer w.display.mu.Unlock()
	return w.rect
}

// SetMinimized changes the minimized flag.
func (w *Window) SetMinimized(v bool) {
	w.display.mu.Lock()
	defer w.display.mu.Unlock()
	w.minimized = v
}

// MoveTo reassigns the window to another workspace and monitor.
func (w *Window) MoveTo(workspace, monitor int) error {
	ws := w.display.workspace(workspace)
	if ws == nil {
		return fmt.Errorf("workspace %d: %w", workspace, ErrOutOfRange)
	}

	w.display.mu.Lock()
	defer w.display.mu.Unlock()
	if monitor < 0 || monitor >= len(w.display.monitors) {
		return fmt.Errorf("monitor %d: %w", monitor, ErrOutOfRange)
	}
	w.workspace = ws
	w.monitor = monitor
	return nil
}

var _ tree.Window = (*Window)(nil)
