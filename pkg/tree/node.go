package tree

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// NodeType tags the role of a node in the tree.
type NodeType int

const (
	NodeRoot NodeType = iota
	NodeMonitor
	NodeSplit
	NodeWindow
	NodeWorkspace
)

var nodeTypeNames = [...]string{
	NodeRoot:      "ROOT",
	NodeMonitor:   "MONITOR",
	NodeSplit:     "SPLIT",
	NodeWindow:    "WINDOW",
	NodeWorkspace: "WORKSPACE",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// IsContainer reports whether nodes of this type hold children and a layout.
func (t NodeType) IsContainer() bool { return t != NodeWindow }

// LayoutType governs how a container divides its rectangle among children.
// The zero value means "unset" and is replaced by a default where one applies.
type LayoutType int

const (
	LayoutStack LayoutType = iota + 1
	LayoutTabbed
	LayoutRoot
	LayoutHSplit
	LayoutVSplit
)

var layoutNames = map[LayoutType]string{
	LayoutStack:  "stack",
	LayoutTabbed: "tabbed",
	LayoutRoot:   "root",
	LayoutHSplit: "hsplit",
	LayoutVSplit: "vsplit",
}

func (l LayoutType) String() string {
	if s, ok := layoutNames[l]; ok {
		return s
	}
	if l == 0 {
		return "unset"
	}
	return fmt.Sprintf("LayoutType(%d)", int(l))
}

// ParseLayout converts a case-insensitive layout name ("hsplit", "vsplit",
// "stack", "tabbed", "root") to a LayoutType.
func ParseLayout(s string) (LayoutType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for l, n := range layoutNames {
		if n == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

// WindowMode is the placement mode of a WINDOW node. Floating windows are
// excluded from tiling.
type WindowMode int

const (
	ModeTile WindowMode = iota
	ModeFloat
)

func (m WindowMode) String() string {
	switch m {
	case ModeTile:
		return "tile"
	case ModeFloat:
		return "float"
	default:
		return fmt.Sprintf("WindowMode(%d)", int(m))
	}
}

// ParseMode converts "tile" or "float" to a WindowMode.
func ParseMode(s string) (WindowMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tile", "tiled":
		return ModeTile, nil
	case "float", "floating":
		return ModeFloat, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Node is an element of the tree. The parent pointer is a back-reference
// only; a node is owned by its parent's children slice.
//
// The zero value is not usable; nodes are created by [NewNode] or
// [Tree.AddNode].
type Node struct {
	typ      NodeType
	payload  any
	parent   *Node
	children []*Node
	// floating is reserved for floating children. Floating windows stay in
	// children with ModeFloat, so nothing populates it yet.
	floating []*Node
	layout   LayoutType
	mode     WindowMode
	actor    Actor
}

// NewNode creates a detached node of type t wrapping payload. For WINDOW
// nodes whose payload implements [Window], the render handle is taken from
// the window here and never re-derived.
func NewNode(t NodeType, payload any) *Node {
	n := &Node{typ: t, payload: payload}
	if t == NodeWindow {
		if w, ok := payload.(Window); ok {
			n.actor = w.Actor()
		}
	}
	return n
}

func (n *Node) Type() NodeType { return n.typ }
func (n *Node) Payload() any   { return n.payload }

// Parent returns nil for the root and for detached nodes.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the ordered children.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Floating returns a copy of the floating children. The tree keeps
// floating windows in [Node.Children] with [ModeFloat], so this is
// currently always empty.
func (n *Node) Floating() []*Node { return slices.Clone(n.floating) }

func (n *Node) Layout() LayoutType     { return n.layout }
func (n *Node) SetLayout(l LayoutType) { n.layout = l }
func (n *Node) Mode() WindowMode       { return n.mode }
func (n *Node) SetMode(m WindowMode)   { n.mode = m }
func (n *Node) Actor() Actor           { return n.actor }
func (n *Node) IsFloating() bool       { return n.mode == ModeFloat }

func (n *Node) String() string {
	return fmt.Sprintf("%s(%v)", n.typ, n.payload)
}

func (n *Node) hasPayload(p any) bool { return samePayload(n.payload, p) }

func (n *Node) window() (Window, bool) {
	w, ok := n.payload.(Window)
	return w, ok
}

// shown reports whether n occupies tiled space: a window that is neither
// minimized nor floating.
func (n *Node) shown() bool {
	if n.typ != NodeWindow || n.IsFloating() {
		return false
	}
	w, ok := n.window()
	return ok && !w.Minimized()
}

// samePayload is identity equality over opaque payloads. Non-comparable
// dynamic types never match instead of panicking.
func samePayload(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func validPayload(p any) bool {
	return p != nil && reflect.TypeOf(p).Comparable()
}

// indexOf returns the position of n among items by payload, or -1.
func indexOf(items []*Node, n *Node) int {
	return slices.IndexFunc(items, func(c *Node) bool {
		return c.hasPayload(n.payload)
	})
}
