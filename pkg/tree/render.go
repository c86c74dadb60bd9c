package tree

import (
	"context"
	"time"

	"github.com/forgewm/forge/pkg/observability"
)

// Render places every attached, shown WINDOW node. See the package
// documentation for the algorithm. Detached windows, floating windows and
// minimized windows are skipped; nothing in the walk is fatal.
func (t *Tree) Render(ctx context.Context) {
	start := time.Now()
	hooks := observability.Tree()
	hooks.OnRenderStart(ctx)

	t.logger.Debug("render tree")
	if o, ok := t.ws.(RenderObserver); ok {
		o.BeginRender()
	}
	placed := 0
	t.WalkBreadthFirst(func(n *Node) {
		switch n.typ {
		case NodeWindow:
			if t.place(ctx, n) {
				placed++
			}
		case NodeRoot:
			t.logger.Debug(" root")
		case NodeSplit:
			t.logger.Debug(" split")
		}
	}, t.root)
	t.logger.Debug("render end", "placed", placed)

	hooks.OnRenderComplete(ctx, placed, time.Since(start))
}

// place computes and applies the rectangle for one window node. It reports
// whether a placement was made.
func (t *Tree) place(ctx context.Context, n *Node) bool {
	win, ok := n.window()
	if !ok {
		return false
	}
	t.logger.Debug(" window", "class", win.WMClass())

	parent := n.parent
	if parent == nil {
		t.logger.Debug("  detached, skipping")
		return false
	}

	monitor := win.Monitor()
	area := t.ws.WorkArea(monitor)
	shown := ShownChildren(parent.children)
	t.logger.Debug("  state", "mode", n.mode, "monitor", monitor, "container", parent.payload)

	if len(shown) == 0 || n.IsFloating() {
		return false
	}
	idx := indexOf(shown, n)
	if idx < 0 {
		// Minimized windows are not part of the shown set.
		return false
	}

	rect := Tile(area, parent.layout, len(shown), idx, t.opts.Gap)
	t.logger.Debug("  placed", "direction", parent.layout, "rect", rect)

	t.ws.Move(win, rect)
	observability.Tree().OnPlace(ctx, win.WMClass(), rect.X, rect.Y, rect.Width, rect.Height)
	return true
}

// ShownChildren filters items down to windows that are neither minimized
// nor floating, preserving order.
func ShownChildren(items []*Node) []*Node {
	var out []*Node
	for _, n := range items {
		if n.shown() {
			out = append(out, n)
		}
	}
	return out
}

// Tile returns the rectangle of slot idx out of n equal slots of area.
// LayoutHSplit divides the width; every other layout divides the height.
// The remainder of an uneven division is left unused. gap is then inset
// on all four sides. n <= 0 yields the zero Rect.
func Tile(area Rect, layout LayoutType, n, idx, gap int) Rect {
	var r Rect
	if n <= 0 {
		return r
	}
	if layout == LayoutHSplit {
		r.Width = area.Width / n
		r.Height = area.Height
		r.X = area.X + idx*r.Width
		r.Y = area.Y
	} else {
		r.Width = area.Width
		r.Height = area.Height / n
		r.X = area.X
		r.Y = area.Y + idx*r.Height
	}

	r.X += gap
	r.Y += gap
	r.Width -= 2 * gap
	r.Height -= 2 * gap
	return r
}
