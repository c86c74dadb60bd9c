// Package snapshot captures a serializable view of a layout tree.
//
// A [Snapshot] holds the node hierarchy (types, labels, layouts, modes) and
// the rectangles of the last render. It is what the CLI prints, what the
// HTTP API returns and what the cache stores; nothing in it points back
// into the live tree.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/forgewm/forge/pkg/tree"
	"github.com/forgewm/forge/pkg/wm"
)

// Node is one tree node. ID is the dotted child-index path from the root
// ("0" is the root, "0.1.0" its second child's first child).
type Node struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Label     string     `json:"label"`
	Layout    string     `json:"layout,omitempty"`
	Mode      string     `json:"mode,omitempty"`
	Class     string     `json:"class,omitempty"`
	Minimized bool       `json:"minimized,omitempty"`
	Rect      *tree.Rect `json:"rect,omitempty"`
	Children  []*Node    `json:"children,omitempty"`
}

// IsWindow reports whether n is a WINDOW node.
func (n *Node) IsWindow() bool { return n.Type == tree.NodeWindow.String() }

// Snapshot is a captured tree plus its placements.
type Snapshot struct {
	Name       string         `json:"name,omitempty"`
	Gap        int            `json:"gap"`
	Root       *Node          `json:"root"`
	Placements []wm.Placement `json:"placements"`
}

// Capture walks t and records every node. placed maps window labels to
// their rectangle in the latest render, as returned by
// [wm.Display.LastPlacements]; windows without an entry were not placed. Placements are listed in breadth-first
// order.
func Capture(t *tree.Tree, placed map[string]tree.Rect) *Snapshot {
	s := &Snapshot{
		Gap:        t.Gap(),
		Root:       capture(t.Root(), "0", placed),
		Placements: []wm.Placement{},
	}

	t.WalkBreadthFirst(func(n *tree.Node) {
		if n.Type() != tree.NodeWindow {
			return
		}
		label := Label(n)
		if r, ok := placed[label]; ok {
			s.Placements = append(s.Placements, wm.Placement{Window: label, Class: windowClass(n), Rect: r})
		}
	}, nil)
	return s
}

func capture(n *tree.Node, id string, placed map[string]tree.Rect) *Node {
	out := &Node{
		ID:    id,
		Type:  n.Type().String(),
		Label: Label(n),
	}
	if n.Type() == tree.NodeWindow {
		out.Mode = n.Mode().String()
		if w, ok := n.Payload().(tree.Window); ok {
			out.Class = w.WMClass()
			out.Minimized = w.Minimized()
		}
		if r, ok := placed[out.Label]; ok {
			out.Rect = &r
		}
	} else {
		out.Layout = n.Layout().String()
	}

	for i, c := range n.Children() {
		out.Children = append(out.Children, capture(c, id+"."+strconv.Itoa(i), placed))
	}
	return out
}

// Label renders a node payload for display. Payloads implementing
// fmt.Stringer use it; the root surface of an unknown window system falls
// back to its type.
func Label(n *tree.Node) string {
	switch p := n.Payload().(type) {
	case fmt.Stringer:
		return p.String()
	case string:
		return p
	default:
		return fmt.Sprintf("%T", p)
	}
}

func windowClass(n *tree.Node) string {
	if w, ok := n.Payload().(tree.Window); ok {
		return w.WMClass()
	}
	return ""
}

// Walk visits every node of s in pre-order.
func (s *Snapshot) Walk(visit func(n *Node, depth int)) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		visit(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	if s.Root != nil {
		walk(s.Root, 0)
	}
}

// Count returns the number of nodes per type name.
func (s *Snapshot) Count() map[string]int {
	out := make(map[string]int)
	s.Walk(func(n *Node, _ int) { out[n.Type]++ })
	return out
}

// Marshal encodes s as indented JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Unmarshal decodes a snapshot produced by [Snapshot.Marshal].
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Root == nil {
		return nil, fmt.Errorf("decode snapshot: missing root")
	}
	return &s, nil
}

// WriteFile writes s as JSON to path.
func (s *Snapshot) WriteFile(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a snapshot written by [Snapshot.WriteFile].
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
