package snapshot

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/forgewm/forge/pkg/forge"
	"github.com/forgewm/forge/pkg/tree"
	"github.com/forgewm/forge/pkg/wm"
)

func capturedDesk(t *testing.T) *Snapshot {
	t.Helper()
	d := wm.NewDisplay([]tree.Rect{{Width: 1920, Height: 1080}}, 2)
	m := forge.New(d, forge.Options{Tree: tree.DefaultOptions()})
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		w, err := d.OpenWindow(id, "class-"+id, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := m.WindowCreated(ctx, w); err != nil {
			t.Fatal(err)
		}
	}
	c, _ := d.Window("c")
	if err := m.SetMode(ctx, c, tree.ModeFloat); err != nil {
		t.Fatal(err)
	}

	var s *Snapshot
	m.View(func(tr *tree.Tree) {
		s = Capture(tr, d.LastPlacements())
	})
	return s
}

func TestCaptureStructure(t *testing.T) {
	s := capturedDesk(t)

	if s.Root.Label != "root" || s.Root.Type != "ROOT" || s.Root.Layout != "root" {
		t.Errorf("root = %+v", s.Root)
	}
	if s.Gap != tree.DefaultGap {
		t.Errorf("Gap = %d", s.Gap)
	}

	want := map[string]int{"ROOT": 1, "WORKSPACE": 2, "MONITOR": 2, "WINDOW": 3}
	if got := s.Count(); !reflect.DeepEqual(got, want) {
		t.Errorf("Count() = %v, want %v", got, want)
	}

	mon := s.Root.Children[0].Children[0]
	if mon.ID != "0.0.0" || mon.Label != "mo0ws0" || mon.Layout != "hsplit" {
		t.Errorf("monitor = %+v", mon)
	}
	if len(mon.Children) != 3 {
		t.Fatalf("monitor children = %d", len(mon.Children))
	}

	a, c := mon.Children[0], mon.Children[2]
	if !a.IsWindow() || a.Class != "class-a" || a.Mode != "tile" || a.Rect == nil {
		t.Errorf("a = %+v", a)
	}
	if c.Mode != "float" {
		t.Errorf("c mode = %q", c.Mode)
	}
	if c.Rect == nil {
		t.Error("c was placed while tiled and should keep that rectangle")
	}
}

func TestCapturePlacementsOrder(t *testing.T) {
	s := capturedDesk(t)

	var ids []string
	for _, p := range s.Placements {
		ids = append(ids, p.Window)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b", "c"}) {
		t.Errorf("placement order = %v", ids)
	}
	if s.Placements[1].Rect != (tree.Rect{X: 968, Y: 8, Width: 944, Height: 1064}) {
		t.Errorf("b = %v", s.Placements[1].Rect)
	}
}

func TestWalkDepths(t *testing.T) {
	s := capturedDesk(t)
	depths := map[string]int{}
	s.Walk(func(n *Node, depth int) {
		if d, ok := depths[n.Type]; ok && d != depth {
			t.Errorf("%s at depths %d and %d", n.Type, d, depth)
		}
		depths[n.Type] = depth
	})
	want := map[string]int{"ROOT": 0, "WORKSPACE": 1, "MONITOR": 2, "WINDOW": 3}
	if !reflect.DeepEqual(depths, want) {
		t.Errorf("depths = %v, want %v", depths, want)
	}
}

func TestFileRoundTrip(t *testing.T) {
	s := capturedDesk(t)
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := s.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("round trip differs:\n%+v\n%+v", got, s)
	}
}

func TestUnmarshalRejects(t *testing.T) {
	for _, in := range []string{"{", `{"gap": 8}`} {
		if _, err := Unmarshal([]byte(in)); err == nil {
			t.Errorf("Unmarshal(%q) expected error", in)
		}
	}
}
