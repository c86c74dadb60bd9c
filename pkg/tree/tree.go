package tree

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
)

// DefaultGap is the pixel inset applied to every side of a tiled window.
const DefaultGap = 8

// Options configures a Tree.
type Options struct {
	// Gap is the inset applied on all sides of each computed rectangle.
	// Negative values are treated as zero.
	Gap int

	// WorkspaceLayout and MonitorLayout are assigned to the containers the
	// tree creates for workspaces and monitors. Zero means LayoutHSplit.
	WorkspaceLayout LayoutType
	MonitorLayout   LayoutType

	// Logger receives render diagnostics at debug level. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns the options forge ships with.
func DefaultOptions() Options {
	return Options{
		Gap:             DefaultGap,
		WorkspaceLayout: LayoutHSplit,
		MonitorLayout:   LayoutHSplit,
	}
}

func (o *Options) setDefaults() {
	if o.Gap < 0 {
		o.Gap = 0
	}
	if o.WorkspaceLayout == 0 {
		o.WorkspaceLayout = LayoutHSplit
	}
	if o.MonitorLayout == 0 {
		o.MonitorLayout = LayoutHSplit
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Tree owns the root node and keeps the workspace/monitor/window hierarchy.
//
// The zero value is not usable; use [New]. A Tree is not safe for
// concurrent use.
type Tree struct {
	ws     WindowSystem
	root   *Node
	opts   Options
	logger *log.Logger
}

// New builds a tree from the live state of ws: a root bound to
// ws.RootSurface(), one WORKSPACE node per workspace and one MONITOR node
// per workspace and monitor pair.
func New(ws WindowSystem, opts Options) *Tree {
	opts.setDefaults()
	t := &Tree{
		ws:     ws,
		opts:   opts,
		logger: opts.Logger,
	}
	t.root = NewNode(NodeRoot, ws.RootSurface())
	t.root.layout = LayoutRoot

	t.initWorkspaces()
	t.initMonitors()
	return t
}

// MonitorPayload returns the payload key of the MONITOR container for the
// given monitor on the given workspace.
func MonitorPayload(monitor, workspace int) string {
	return fmt.Sprintf("mo%dws%d", monitor, workspace)
}

func (t *Tree) initWorkspaces() {
	n := t.ws.WorkspaceCount()
	for i := 0; i < n; i++ {
		ws := t.ws.WorkspaceByIndex(i)
		if ws == nil {
			continue
		}
		if _, exists := t.FindNode(ws); exists {
			continue
		}
		node, err := t.AddNode(t.root.payload, NodeWorkspace, ws)
		if err != nil {
			t.logger.Warn("skipping workspace", "index", i, "err", err)
			continue
		}
		node.layout = t.opts.WorkspaceLayout
	}
	t.logger.Debug("initial workspaces", "count", n)
}

func (t *Tree) initMonitors() {
	monitors := t.ws.MonitorCount()
	for _, wsNode := range t.Workspaces() {
		t.addMonitors(wsNode, monitors)
	}
	t.logger.Debug("initial monitors", "count", monitors)
}

func (t *Tree) addMonitors(wsNode *Node, monitors int) {
	ws, ok := wsNode.payload.(Workspace)
	if !ok {
		return
	}
	for mi := 0; mi < monitors; mi++ {
		node, err := t.AddNode(ws, NodeMonitor, MonitorPayload(mi, ws.Index()))
		if err != nil {
			t.logger.Warn("skipping monitor", "monitor", mi, "workspace", ws.Index(), "err", err)
			continue
		}
		node.layout = t.opts.MonitorLayout
	}
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Gap returns the inset applied by Render.
func (t *Tree) Gap() int { return t.opts.Gap }

// AddWorkspace attaches a WORKSPACE node for ws under the root, with one
// MONITOR container per current monitor. It is the hook for a
// "workspace added" event.
func (t *Tree) AddWorkspace(ws Workspace) (*Node, error) {
	node, err := t.AddNode(t.root.payload, NodeWorkspace, ws)
	if err != nil {
		return nil, err
	}
	node.layout = t.opts.WorkspaceLayout
	t.addMonitors(node, t.ws.MonitorCount())
	return node, nil
}

// AddNode creates a node of type typ wrapping payload and appends it to the
// children of the node carrying parent. The new node is returned.
//
// It returns ErrParentNotFound if no node carries parent,
// ErrDuplicatePayload if payload is already in the tree and
// ErrInvalidPayload if payload cannot serve as a lookup key. On error the
// tree is unchanged. No cycle check is made; the new node is always a leaf.
func (t *Tree) AddNode(parent any, typ NodeType, payload any) (*Node, error) {
	if !validPayload(payload) {
		return nil, fmt.Errorf("%w: %T", ErrInvalidPayload, payload)
	}
	p, ok := t.FindNode(parent)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrParentNotFound, parent)
	}
	if _, dup := t.FindNode(payload); dup {
		return nil, fmt.Errorf("%w: %v", ErrDuplicatePayload, payload)
	}

	child := NewNode(typ, payload)
	child.parent = p
	p.children = append(p.children, child)
	return child, nil
}

// RemoveNode detaches n from the children of the node carrying parent and
// returns it. The detached node keeps its own children, which become
// unreachable from the root; callers decide whether to discard or re-insert
// the subtree. Siblings keep their relative order.
//
// It returns ErrParentNotFound if no node carries parent and
// ErrNodeNotFound if n is not among the parent's children.
func (t *Tree) RemoveNode(parent any, n *Node) (*Node, error) {
	p, ok := t.FindNode(parent)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrParentNotFound, parent)
	}
	if n == nil {
		return nil, ErrNodeNotFound
	}
	i := indexOf(p.children, n)
	if i < 0 {
		return nil, fmt.Errorf("%w: %v under %v", ErrNodeNotFound, n.payload, parent)
	}

	removed := p.children[i]
	p.children = slices.Concat(p.children[:i], p.children[i+1:])
	removed.parent = nil
	return removed, nil
}

// FindNode returns the first node, in breadth-first order, whose payload is
// identical to payload.
func (t *Tree) FindNode(payload any) (*Node, bool) {
	var found *Node
	t.breadthFirst(t.root, func(n *Node) bool {
		if n.hasPayload(payload) {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// FindNodeByActor returns the first WINDOW node, in post-order, whose
// render handle is identical to actor.
func (t *Tree) FindNodeByActor(actor Actor) (*Node, bool) {
	var found *Node
	t.depthFirst(t.root, func(n *Node) bool {
		if n.typ == NodeWindow && samePayload(n.actor, actor) {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Workspaces returns every WORKSPACE node reachable from the root, in
// breadth-first order.
func (t *Tree) Workspaces() []*Node {
	var out []*Node
	t.WalkBreadthFirst(func(n *Node) {
		if n.typ == NodeWorkspace {
			out = append(out, n)
		}
	}, t.root)
	return out
}

// Windows returns every WINDOW node reachable from the root, in
// breadth-first order.
func (t *Tree) Windows() []*Node {
	var out []*Node
	t.WalkBreadthFirst(func(n *Node) {
		if n.typ == NodeWindow {
			out = append(out, n)
		}
	}, t.root)
	return out
}

// DepthOf would return the number of edges from the root to n. It is not
// implemented and always returns ErrUnsupported.
func (t *Tree) DepthOf(n *Node) (int, error) {
	return 0, fmt.Errorf("depth of %v: %w", n, ErrUnsupported)
}

// HeightOf would return the number of edges from n to its deepest leaf. It
// is not implemented and always returns ErrUnsupported.
func (t *Tree) HeightOf(n *Node) (int, error) {
	return 0, fmt.Errorf("height of %v: %w", n, ErrUnsupported)
}
