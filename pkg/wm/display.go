// Package wm is an in-memory window system.
//
// A [Display] implements tree.WindowSystem over a fixed set of monitors and
// a growable set of workspaces. It records every placement the tree makes,
// which is how the CLI, the HTTP server and the tests observe a render.
// Each window gets a random render handle (a UUID) when it is opened.
package wm

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/forgewm/forge/pkg/tree"
)

var (
	// ErrUnknownWindow is returned for window IDs the display does not know.
	ErrUnknownWindow = errors.New("unknown window")

	// ErrDuplicateWindow is returned when opening a window ID twice.
	ErrDuplicateWindow = errors.New("window already open")

	// ErrOutOfRange is returned for monitor or workspace indices that do
	// not exist.
	ErrOutOfRange = errors.New("index out of range")
)

// Placement is one call to Move.
type Placement struct {
	Window string    `json:"window"`
	Class  string    `json:"class"`
	Rect   tree.Rect `json:"rect"`
}

// surface is the placeholder bound to the root node.
type surface struct{ name string }

func (s *surface) String() string { return s.name }

// Display is a simulated window system. It is safe for concurrent use.
type Display struct {
	mu         sync.Mutex
	root       *surface
	monitors   []tree.Rect
	workspaces []*Workspace
	windows    map[string]*Window
	order      []string
	placements []Placement
	// renderStart indexes the first placement of the current render pass.
	renderStart int
}

// NewDisplay creates a display with the given monitor work areas and
// workspace count.
func NewDisplay(monitors []tree.Rect, workspaces int) *Display {
	d := &Display{
		root:     &surface{name: "root"},
		monitors: slices.Clone(monitors),
		windows:  make(map[string]*Window),
	}
	for i := 0; i < workspaces; i++ {
		d.workspaces = append(d.workspaces, &Workspace{index: i})
	}
	return d
}

func (d *Display) RootSurface() any { return d.root }

func (d *Display) MonitorCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.monitors)
}

func (d *Display) WorkspaceCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.workspaces)
}

// WorkspaceByIndex returns nil when i is out of range.
func (d *Display) WorkspaceByIndex(i int) tree.Workspace {
	ws := d.workspace(i)
	if ws == nil {
		return nil
	}
	return ws
}

// workspace returns the concrete workspace at index i, or nil.
func (d *Display) workspace(i int) *Workspace {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.workspaces) {
		return nil
	}
	return d.workspaces[i]
}

// WorkArea returns the zero Rect for unknown monitors.
func (d *Display) WorkArea(monitor int) tree.Rect {
	d.mu.Lock()
	defer d.mu.Unlock()
	if monitor < 0 || monitor >= len(d.monitors) {
		return tree.Rect{}
	}
	return d.monitors[monitor]
}

// Move records the placement and updates the window's geometry. Windows
// from other window systems are recorded by class only.
func (d *Display) Move(w tree.Window, r tree.Rect) {
	p := Placement{Class: w.WMClass(), Rect: r}

	d.mu.Lock()
	defer d.mu.Unlock()
	if win, ok := w.(*Window); ok {
		win.rect = r
		p.Window = win.id
	}
	d.placements = append(d.placements, p)
}

// AddWorkspace appends a workspace and returns it.
func (d *Display) AddWorkspace() *Workspace {
	d.mu.Lock()
	defer d.mu.Unlock()
	ws := &Workspace{index: len(d.workspaces)}
	d.workspaces = append(d.workspaces, ws)
	return ws
}

// OpenWindow creates a window on the given workspace and monitor.
func (d *Display) OpenWindow(id, class string, workspace, monitor int) (*Window, error) {
	ws := d.workspace(workspace)
	if ws == nil {
		return nil, fmt.Errorf("workspace %d: %w", workspace, ErrOutOfRange)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if monitor < 0 || monitor >= len(d.monitors) {
		return nil, fmt.Errorf("monitor %d: %w", monitor, ErrOutOfRange)
	}
	if _, exists := d.windows[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateWindow, id)
	}

	w := &Window{
		display:   d,
		id:        id,
		class:     class,
		actor:     uuid.New(),
		workspace: ws,
		monitor:   monitor,
	}
	d.windows[id] = w
	d.order = append(d.order, id)
	return w, nil
}

// CloseWindow forgets the window and returns it.
func (d *Display) CloseWindow(id string) (*Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.windows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWindow, id)
	}
	delete(d.windows, id)
	d.order = slices.DeleteFunc(d.order, func(s string) bool { return s == id })
	return w, nil
}

// Window looks up an open window by ID.
func (d *Display) Window(id string) (*Window, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.windows[id]
	return w, ok
}

// Windows returns the open windows in the order they were opened.
func (d *Display) Windows() []*Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Window, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.windows[id])
	}
	return out
}

// Placements returns every placement recorded since the last reset.
func (d *Display) Placements() []Placement {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.placements)
}

// ResetPlacements clears the placement log.
func (d *Display) ResetPlacements() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.placements = nil
	d.renderStart = 0
}

// BeginRender marks the start of a render pass. Placements recorded
// before it no longer count towards [Display.LastPlacements].
func (d *Display) BeginRender() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renderStart = len(d.placements)
}

// LastPlacements returns the placement of each window made by the latest
// render pass, keyed by window ID. Windows the pass skipped, such as
// floating or minimized ones, have no entry.
func (d *Display) LastPlacements() map[string]tree.Rect {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]tree.Rect)
	for _, p := range d.placements[d.renderStart:] {
		if p.Window != "" {
			out[p.Window] = p.Rect
		}
	}
	return out
}

var (
	_ tree.WindowSystem   = (*Display)(nil)
	_ tree.RenderObserver = (*Display)(nil)
)
