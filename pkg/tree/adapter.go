package tree

import "fmt"

// Rect is a rectangle in screen coordinates.
type Rect struct {
	X      int `json:"x" toml:"x" yaml:"x"`
	Y      int `json:"y" toml:"y" yaml:"y"`
	Width  int `json:"width" toml:"width" yaml:"width"`
	Height int `json:"height" toml:"height" yaml:"height"`
}

// String formats the rectangle as WxH+X+Y, the X11 geometry notation.
func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Actor is the opaque on-screen handle of a window. It must be comparable.
type Actor any

// Workspace is a virtual desktop as reported by the window system.
type Workspace interface {
	Index() int
}

// Window is a top-level window as reported by the window system.
type Window interface {
	Minimized() bool
	Monitor() int
	Workspace() Workspace
	Actor() Actor
	WMClass() string
}

// WindowSystem is the host adapter the tree consumes. It enumerates
// monitors and workspaces, reports work areas and applies placements.
type WindowSystem interface {
	// RootSurface returns the placeholder payload bound to the root node.
	RootSurface() any
	MonitorCount() int
	WorkspaceCount() int
	// WorkspaceByIndex returns nil when i is out of range.
	WorkspaceByIndex(i int) Workspace
	// WorkArea returns the usable area of a monitor, excluding panels.
	WorkArea(monitor int) Rect
	// Move places w at r. The result is not observed by the tree.
	Move(w Window, r Rect)
}

// RenderObserver is implemented by window systems that track render
// passes. Render calls BeginRender before placing any window.
type RenderObserver interface {
	BeginRender()
}
