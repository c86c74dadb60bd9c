package tree_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/forgewm/forge/pkg/tree"
	"github.com/forgewm/forge/pkg/wm"
)

var fullHD = tree.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func newTree(t *testing.T, monitors []tree.Rect, workspaces int) (*tree.Tree, *wm.Display) {
	t.Helper()
	d := wm.NewDisplay(monitors, workspaces)
	return tree.New(d, tree.DefaultOptions()), d
}

// mapWindow opens a window on the display and attaches it under its
// monitor container.
func mapWindow(t *testing.T, tr *tree.Tree, d *wm.Display, id string, ws, mon int) (*wm.Window, *tree.Node) {
	t.Helper()
	w, err := d.OpenWindow(id, "class-"+id, ws, mon)
	if err != nil {
		t.Fatalf("OpenWindow(%s): %v", id, err)
	}
	n, err := tr.AddNode(tree.MonitorPayload(mon, ws), tree.NodeWindow, w)
	if err != nil {
		t.Fatalf("AddNode(%s): %v", id, err)
	}
	return w, n
}

func depth(n *tree.Node) int {
	d := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}

func countNodes(tr *tree.Tree) int {
	n := 0
	tr.WalkBreadthFirst(func(*tree.Node) { n++ }, nil)
	return n
}

func TestNewBuildsWorkspacesAndMonitors(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD, fullHD}, 3)

	root := tr.Root()
	if root.Type() != tree.NodeRoot || root.Layout() != tree.LayoutRoot || root.Parent() != nil {
		t.Fatalf("root = %v layout %v", root, root.Layout())
	}
	if root.Payload() != d.RootSurface() {
		t.Error("root should be bound to the display's root surface")
	}

	wss := tr.Workspaces()
	if len(wss) != 3 {
		t.Fatalf("got %d workspaces, want 3", len(wss))
	}
	for i, ws := range wss {
		if ws.Layout() != tree.LayoutHSplit {
			t.Errorf("workspace %d layout = %v", i, ws.Layout())
		}
		mons := ws.Children()
		if len(mons) != 2 {
			t.Fatalf("workspace %d has %d monitors, want 2", i, len(mons))
		}
		for mi, mon := range mons {
			if mon.Type() != tree.NodeMonitor || mon.Layout() != tree.LayoutHSplit {
				t.Errorf("monitor %d = %v layout %v", mi, mon, mon.Layout())
			}
			if want := tree.MonitorPayload(mi, i); mon.Payload() != want {
				t.Errorf("monitor payload = %v, want %s", mon.Payload(), want)
			}
		}
	}
}

func TestMonitorPayload(t *testing.T) {
	if got := tree.MonitorPayload(1, 3); got != "mo1ws3" {
		t.Errorf("MonitorPayload(1, 3) = %q", got)
	}
}

func TestAddNodeThenFind(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 1)
	w, n := mapWindow(t, tr, d, "a", 0, 0)

	got, ok := tr.FindNode(w)
	if !ok || got != n {
		t.Fatalf("FindNode = %v, %v; want %v", got, ok, n)
	}
	if n.Parent().Payload() != "mo0ws0" {
		t.Errorf("parent = %v", n.Parent())
	}
	if n.Actor() != w.Actor() {
		t.Error("window node should carry the window's actor")
	}
}

func TestAddNodeErrors(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 1)
	w, _ := mapWindow(t, tr, d, "a", 0, 0)
	before := countNodes(tr)

	tests := []struct {
		name    string
		parent  any
		payload any
		wantErr error
	}{
		{name: "unknown parent", parent: "mo9ws9", payload: "x", wantErr: tree.ErrParentNotFound},
		{name: "duplicate payload", parent: "mo0ws0", payload: w, wantErr: tree.ErrDuplicatePayload},
		{name: "nil payload", parent: "mo0ws0", payload: nil, wantErr: tree.ErrInvalidPayload},
		{name: "non-comparable payload", parent: "mo0ws0", payload: []string{"x"}, wantErr: tree.ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tr.AddNode(tt.parent, tree.NodeSplit, tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if n != nil {
				t.Errorf("node = %v, want nil", n)
			}
			if got := countNodes(tr); got != before {
				t.Errorf("node count = %d, want %d (no mutation)", got, before)
			}
		})
	}
}

func TestRemoveNodeKeepsSiblingOrder(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 1)
	var wins []*wm.Window
	for _, id := range []string{"a", "b", "c", "d"} {
		w, _ := mapWindow(t, tr, d, id, 0, 0)
		wins = append(wins, w)
	}
	mon, _ := tr.FindNode("mo0ws0")
	target, _ := tr.FindNode(wins[1])

	removed, err := tr.RemoveNode("mo0ws0", target)
	if err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if removed != target || removed.Parent() != nil {
		t.Errorf("removed = %v parent %v", removed, removed.Parent())
	}

	var got []any
	for _, c := range mon.Children() {
		got = append(got, c.Payload())
	}
	want := []any{wins[0], wins[2], wins[3]}
	if !slices.Equal(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}

	if _, ok := tr.FindNode(wins[1]); ok {
		t.Error("FindNode should not find a removed payload")
	}
}

func TestRemoveNodeReturnsDetachedSubtree(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 1)
	split, err := tr.AddNode("mo0ws0", tree.NodeSplit, "split-1")
	if err != nil {
		t.Fatal(err)
	}
	w, _ := d.OpenWindow("a", "term", 0, 0)
	if _, err := tr.AddNode("split-1", tree.NodeWindow, w); err != nil {
		t.Fatal(err)
	}

	removed, err := tr.RemoveNode("mo0ws0", split)
	if err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if kids := removed.Children(); len(kids) != 1 || kids[0].Payload() != w {
		t.Errorf("detached subtree children = %v", kids)
	}
	if _, ok := tr.FindNode(w); ok {
		t.Error("descendants of a removed node should be unreachable")
	}
}

func TestRemoveNodeErrors(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 2)
	_, n := mapWindow(t, tr, d, "a", 0, 0)

	if _, err := tr.RemoveNode("nope", n); !errors.Is(err, tree.ErrParentNotFound) {
		t.Errorf("unknown parent err = %v", err)
	}
	if _, err := tr.RemoveNode("mo0ws1", n); !errors.Is(err, tree.ErrNodeNotFound) {
		t.Errorf("wrong parent err = %v", err)
	}
	if _, err := tr.RemoveNode("mo0ws0", nil); !errors.Is(err, tree.ErrNodeNotFound) {
		t.Errorf("nil node err = %v", err)
	}
}

func TestFindNodeByActor(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 2)
	mapWindow(t, tr, d, "a", 0, 0)
	w, n := mapWindow(t, tr, d, "b", 1, 0)

	got, ok := tr.FindNodeByActor(w.Actor())
	if !ok || got != n {
		t.Errorf("FindNodeByActor = %v, %v; want %v", got, ok, n)
	}
	if _, ok := tr.FindNodeByActor("not-an-actor"); ok {
		t.Error("FindNodeByActor should miss unknown actors")
	}
}

func TestBreadthFirstDepthIsNonDecreasing(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD, fullHD}, 2)
	mapWindow(t, tr, d, "a", 0, 0)
	mapWindow(t, tr, d, "b", 1, 1)
	if _, err := tr.AddNode("mo0ws0", tree.NodeSplit, "split"); err != nil {
		t.Fatal(err)
	}
	w, _ := d.OpenWindow("c", "term", 0, 0)
	if _, err := tr.AddNode("split", tree.NodeWindow, w); err != nil {
		t.Fatal(err)
	}

	last := 0
	visited := 0
	tr.WalkBreadthFirst(func(n *tree.Node) {
		visited++
		if dep := depth(n); dep < last {
			t.Errorf("visited %v at depth %d after depth %d", n, dep, last)
		} else {
			last = dep
		}
	}, nil)
	// root + 2 workspaces + 4 monitors + 2 windows + split + nested window
	if visited != 11 {
		t.Errorf("visited %d nodes, want 11", visited)
	}
}

func TestDepthFirstIsPostOrder(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 2)
	mapWindow(t, tr, d, "a", 0, 0)
	mapWindow(t, tr, d, "b", 0, 0)

	pos := map[*tree.Node]int{}
	var order []*tree.Node
	tr.WalkDepthFirst(func(n *tree.Node) {
		pos[n] = len(order)
		order = append(order, n)
	}, nil)

	if order[len(order)-1] != tr.Root() {
		t.Error("root should be visited last")
	}
	for _, n := range order {
		for p := n.Parent(); p != nil; p = p.Parent() {
			if pos[p] <= pos[n] {
				t.Errorf("%v visited before its descendant %v", p, n)
			}
		}
	}
}

func TestWalkFromStartNode(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 2)
	mapWindow(t, tr, d, "a", 0, 0)
	ws0 := tr.Workspaces()[0]

	var got []tree.NodeType
	tr.WalkBreadthFirst(func(n *tree.Node) { got = append(got, n.Type()) }, ws0)
	want := []tree.NodeType{tree.NodeWorkspace, tree.NodeMonitor, tree.NodeWindow}
	if !slices.Equal(got, want) {
		t.Errorf("walk from workspace = %v, want %v", got, want)
	}
}

func TestWalkToleratesRemovalDuringVisit(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 1)
	mapWindow(t, tr, d, "a", 0, 0)
	mapWindow(t, tr, d, "b", 0, 0)
	mapWindow(t, tr, d, "c", 0, 0)

	visited := 0
	tr.WalkDepthFirst(func(n *tree.Node) {
		if n.Type() == tree.NodeWindow {
			visited++
			if _, err := tr.RemoveNode(n.Parent().Payload(), n); err != nil {
				t.Errorf("RemoveNode: %v", err)
			}
		}
	}, nil)

	if visited != 3 {
		t.Errorf("visited %d windows, want 3", visited)
	}
	if got := len(tr.Windows()); got != 0 {
		t.Errorf("%d windows left, want 0", got)
	}
}

func TestWorkspacesAtAnyDepth(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 2)
	extra := d.AddWorkspace()
	// Attach a workspace somewhere unusual; it must still be reported.
	if _, err := tr.AddNode("mo0ws1", tree.NodeWorkspace, extra); err != nil {
		t.Fatal(err)
	}
	mapWindow(t, tr, d, "a", 0, 0)

	wss := tr.Workspaces()
	if len(wss) != 3 {
		t.Fatalf("got %d workspaces, want 3", len(wss))
	}
	for _, ws := range wss {
		if ws.Type() != tree.NodeWorkspace {
			t.Errorf("non-workspace %v returned", ws)
		}
	}
	if wss[2].Payload() != extra {
		t.Error("nested workspace should come last in BFS order")
	}
}

func TestAddWorkspace(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD, fullHD}, 1)
	ws := d.AddWorkspace()

	n, err := tr.AddWorkspace(ws)
	if err != nil {
		t.Fatalf("AddWorkspace: %v", err)
	}
	if n.Parent() != tr.Root() || len(n.Children()) != 2 {
		t.Errorf("workspace node = %v with %d monitors", n, len(n.Children()))
	}
	if _, ok := tr.FindNode("mo1ws1"); !ok {
		t.Error("monitor container mo1ws1 missing")
	}
	if _, err := tr.AddWorkspace(ws); !errors.Is(err, tree.ErrDuplicatePayload) {
		t.Errorf("second AddWorkspace err = %v", err)
	}
}

func TestDepthAndHeightAreUnsupported(t *testing.T) {
	tr, _ := newTree(t, []tree.Rect{fullHD}, 1)
	if _, err := tr.DepthOf(tr.Root()); !errors.Is(err, tree.ErrUnsupported) {
		t.Errorf("DepthOf err = %v", err)
	}
	if _, err := tr.HeightOf(tr.Root()); !errors.Is(err, tree.ErrUnsupported) {
		t.Errorf("HeightOf err = %v", err)
	}
}

func TestRenderHorizontalSplit(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 1)
	a, _ := mapWindow(t, tr, d, "a", 0, 0)
	b, _ := mapWindow(t, tr, d, "b", 0, 0)

	tr.Render(context.Background())

	wantA := tree.Rect{X: 8, Y: 8, Width: 944, Height: 1064}
	wantB := tree.Rect{X: 968, Y: 8, Width: 944, Height: 1064}
	if a.Rect() != wantA {
		t.Errorf("a = %v, want %v", a.Rect(), wantA)
	}
	if b.Rect() != wantB {
		t.Errorf("b = %v, want %v", b.Rect(), wantB)
	}
	if a.Rect().Overlaps(b.Rect()) {
		t.Error("tiles overlap")
	}
	if n := len(d.Placements()); n != 2 {
		t.Errorf("%d placements, want 2", n)
	}
}

func TestRenderVerticalSplit(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 1)
	mon, _ := tr.FindNode("mo0ws0")
	mon.SetLayout(tree.LayoutVSplit)
	var wins []*wm.Window
	for _, id := range []string{"a", "b", "c"} {
		w, _ := mapWindow(t, tr, d, id, 0, 0)
		wins = append(wins, w)
	}

	tr.Render(context.Background())

	for i, w := range wins {
		want := tree.Rect{X: 8, Y: 360*i + 8, Width: 1904, Height: 344}
		if w.Rect() != want {
			t.Errorf("window %d = %v, want %v", i, w.Rect(), want)
		}
	}
}

func TestRenderUsesWindowMonitorWorkArea(t *testing.T) {
	second := tree.Rect{X: 1920, Y: 32, Width: 1280, Height: 992}
	tr, d := newTree(t, []tree.Rect{fullHD, second}, 1)
	w, _ := mapWindow(t, tr, d, "a", 0, 1)

	tr.Render(context.Background())

	want := tree.Rect{X: 1928, Y: 40, Width: 1264, Height: 976}
	if w.Rect() != want {
		t.Errorf("rect = %v, want %v", w.Rect(), want)
	}
}

func TestRenderSkipsFloatingAndMinimized(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 1)
	a, _ := mapWindow(t, tr, d, "a", 0, 0)
	_, floatNode := mapWindow(t, tr, d, "float", 0, 0)
	minWin, _ := mapWindow(t, tr, d, "min", 0, 0)
	b, _ := mapWindow(t, tr, d, "b", 0, 0)

	floatNode.SetMode(tree.ModeFloat)
	minWin.SetMinimized(true)

	tr.Render(context.Background())

	placed := d.LastPlacements()
	if len(placed) != 2 {
		t.Fatalf("placed %v, want only a and b", placed)
	}
	if _, ok := placed["float"]; ok {
		t.Error("floating window should not be placed")
	}
	if _, ok := placed["min"]; ok {
		t.Error("minimized window should not be placed")
	}
	if a.Rect().Width != 944 || b.Rect().X != 968 {
		t.Errorf("a = %v, b = %v; want a two-way split", a.Rect(), b.Rect())
	}
}

func TestRenderSkipsDetachedWindows(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 1)
	_, n := mapWindow(t, tr, d, "a", 0, 0)
	if _, err := tr.RemoveNode("mo0ws0", n); err != nil {
		t.Fatal(err)
	}

	tr.Render(context.Background())

	if ps := d.Placements(); len(ps) != 0 {
		t.Errorf("placements = %v, want none", ps)
	}
}

func TestRenderNestedSplit(t *testing.T) {
	tr, d := newTree(t, []tree.Rect{fullHD}, 1)
	split, err := tr.AddNode("mo0ws0", tree.NodeSplit, "split")
	if err != nil {
		t.Fatal(err)
	}
	split.SetLayout(tree.LayoutVSplit)
	a, _ := d.OpenWindow("a", "term", 0, 0)
	b, _ := d.OpenWindow("b", "term", 0, 0)
	tr.AddNode("split", tree.NodeWindow, a)
	tr.AddNode("split", tree.NodeWindow, b)

	tr.Render(context.Background())

	// Windows divide the monitor's work area among their own siblings.
	if a.Rect() != (tree.Rect{X: 8, Y: 8, Width: 1904, Height: 524}) {
		t.Errorf("a = %v", a.Rect())
	}
	if b.Rect() != (tree.Rect{X: 8, Y: 548, Width: 1904, Height: 524}) {
		t.Errorf("b = %v", b.Rect())
	}
}

func TestGapOption(t *testing.T) {
	d := wm.NewDisplay([]tree.Rect{fullHD}, 1)
	tr := tree.New(d, tree.Options{Gap: 0})
	w, _ := d.OpenWindow("a", "term", 0, 0)
	tr.AddNode("mo0ws0", tree.NodeWindow, w)

	tr.Render(context.Background())

	if w.Rect() != fullHD {
		t.Errorf("rect = %v, want the full work area", w.Rect())
	}
	if tr.Gap() != 0 {
		t.Errorf("Gap() = %d", tr.Gap())
	}
}

func TestTile(t *testing.T) {
	area := tree.Rect{X: 0, Y: 0, Width: 1000, Height: 600}
	tests := []struct {
		name   string
		layout tree.LayoutType
		n, idx int
		gap    int
		want   tree.Rect
	}{
		{name: "single hsplit", layout: tree.LayoutHSplit, n: 1, idx: 0, gap: 0, want: area},
		{name: "uneven hsplit floors", layout: tree.LayoutHSplit, n: 3, idx: 2, gap: 0, want: tree.Rect{X: 666, Y: 0, Width: 333, Height: 600}},
		{name: "vsplit with gap", layout: tree.LayoutVSplit, n: 2, idx: 1, gap: 4, want: tree.Rect{X: 4, Y: 304, Width: 992, Height: 292}},
		{name: "stack divides height", layout: tree.LayoutStack, n: 2, idx: 0, gap: 0, want: tree.Rect{X: 0, Y: 0, Width: 1000, Height: 300}},
		{name: "zero slots", layout: tree.LayoutHSplit, n: 0, idx: 0, gap: 8, want: tree.Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tree.Tile(area, tt.layout, tt.n, tt.idx, tt.gap); got != tt.want {
				t.Errorf("Tile() = %v, want %v", got, tt.want)
			}
		})
	}
}
