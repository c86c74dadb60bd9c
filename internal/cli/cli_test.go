package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgewm/forge/pkg/forge"
	"github.com/forgewm/forge/pkg/scenario"
	"github.com/forgewm/forge/pkg/snapshot"
	"github.com/forgewm/forge/pkg/tree"
)

const deskScenario = `name: desk
workspaces: 1
monitors:
  - {width: 1000, height: 500}
events:
  - {op: map, window: editor, class: code}
  - {op: map, window: term, class: kitty}
  - {op: map, window: video, class: mpv}
`

// workspace writes a scenario and a config whose file cache lives in a
// temporary directory.
func workspace(t *testing.T) (cfgPath, scenarioPath, cacheDir string) {
	t.Helper()
	dir := t.TempDir()
	cacheDir = filepath.Join(dir, "cache")
	cfgPath = filepath.Join(dir, "config.toml")
	scenarioPath = filepath.Join(dir, "desk.yaml")

	cfg := "float_classes = [\"mpv\"]\n\n[log]\nlevel = \"warn\"\n\n[cache]\nbackend = \"file\"\ndir = " +
		`"` + filepath.ToSlash(cacheDir) + `"` + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(scenarioPath, []byte(deskScenario), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, scenarioPath, cacheDir
}

// execute runs the CLI with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	cfg, path, _ := workspace(t)

	out, err := execute(t, "--config", cfg, "render", path)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, want := range []string{"desk", "editor", "term", "3 windows", "2 placed", iconFresh} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "video") {
		t.Errorf("floating window should not be listed:\n%s", out)
	}

	out, err = execute(t, "--config", cfg, "render", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, iconCached) {
		t.Errorf("second render should come from the cache:\n%s", out)
	}

	out, err = execute(t, "--config", cfg, "render", "--no-cache", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, iconFresh) {
		t.Errorf("--no-cache should replay:\n%s", out)
	}
}

func TestRenderJSON(t *testing.T) {
	cfg, path, _ := workspace(t)

	out, err := execute(t, "--config", cfg, "render", "--json", path)
	if err != nil {
		t.Fatal(err)
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if snap.Name != "desk" || len(snap.Placements) != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Placements[0].Window != "editor" || snap.Placements[1].Window != "term" {
		t.Errorf("placements = %+v", snap.Placements)
	}
}

func TestRenderMissingScenario(t *testing.T) {
	cfg, _, _ := workspace(t)
	if _, err := execute(t, "--config", cfg, "render", filepath.Join(t.TempDir(), "gone.toml")); err == nil {
		t.Error("render of a missing scenario should fail")
	}
}

func TestRenderBadConfig(t *testing.T) {
	_, path, _ := workspace(t)
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("gap = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", cfg, "render", path); err == nil {
		t.Error("render with an invalid config should fail")
	}
}

func TestTreeCommand(t *testing.T) {
	cfg, path, _ := workspace(t)
	out, err := execute(t, "--config", cfg, "tree", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"workspace 0", "mo0ws0", "hsplit", "video", "float"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
}

func TestDotCommand(t *testing.T) {
	cfg, path, _ := workspace(t)

	out, err := execute(t, "--config", cfg, "dot", "--detailed", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph") || !strings.Contains(out, "class: kitty") {
		t.Errorf("unexpected DOT:\n%s", out)
	}

	file := filepath.Join(t.TempDir(), "tree.dot")
	if _, err := execute(t, "--config", cfg, "dot", "-o", file, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "editor") {
		t.Errorf("written DOT = %s", data)
	}
}

func TestConfigCommand(t *testing.T) {
	cfg, _, _ := workspace(t)
	out, err := execute(t, "--config", cfg, "config")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"gap = 8", `float_classes = ["mpv"]`, `level = "warn"`} {
		if !strings.Contains(out, want) {
			t.Errorf("config missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "--config", cfg, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != cfg {
		t.Errorf("config path = %q, want %q", out, cfg)
	}
}

func TestCacheCommands(t *testing.T) {
	cfg, path, dir := workspace(t)

	out, err := execute(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(dir) {
		t.Errorf("cache path = %q, want %q", out, dir)
	}

	out, err = execute(t, "--config", cfg, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear before any render = %q", out)
	}

	if _, err := execute(t, "--config", cfg, "render", path); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "--config", cfg, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("clear after render = %q", out)
	}

	out, err = execute(t, "--config", cfg, "render", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, iconFresh) {
		t.Error("render after clear should replay")
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "forge") {
		t.Error("bash completion should mention the command name")
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func newReplay(t *testing.T) *scenario.Replay {
	t.Helper()
	s, err := scenario.Parse([]byte(deskScenario), scenario.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	r, err := scenario.Run(context.Background(), s, forge.Options{
		Tree:         tree.DefaultOptions(),
		FloatClasses: []string{"mpv"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func press(m tea.Model, keys string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return m
}

func TestInspectModel(t *testing.T) {
	r := newReplay(t)
	var m tea.Model = NewInspectModel(context.Background(), r)

	im := m.(InspectModel)
	if len(im.Windows) != 3 || im.Windows[0].Label != "editor" {
		t.Fatalf("windows = %v", im.Windows)
	}

	m = press(m, "k")
	if m.(InspectModel).Cursor != 0 {
		t.Error("cursor should not move above the first window")
	}

	m = press(m, "j")
	m = press(m, "f")
	im = m.(InspectModel)
	if im.Err != nil {
		t.Fatalf("toggle float error: %v", im.Err)
	}
	if im.Windows[1].Label != "term" || im.Windows[1].Mode != "float" {
		t.Errorf("term = %+v, want floating", im.Windows[1])
	}
	if got := r.Display.LastPlacements()["editor"]; got.Width != 1000-2*tree.DefaultGap {
		t.Errorf("editor = %v, want the full monitor", got)
	}

	m = press(m, "m")
	if w := m.(InspectModel).Windows[1]; !w.Minimized {
		t.Errorf("term = %+v, want minimized", w)
	}
	m = press(m, "m")
	if w := m.(InspectModel).Windows[1]; w.Minimized {
		t.Errorf("term = %+v, want restored", w)
	}

	view := m.View()
	for _, want := range []string{"desk", "editor", "[2/3]", "toggle float"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestInspectModelCursorBounds(t *testing.T) {
	var m tea.Model = NewInspectModel(context.Background(), newReplay(t))
	for range 10 {
		m = press(m, "j")
	}
	if got := m.(InspectModel).Cursor; got != 2 {
		t.Errorf("cursor = %d, want 2", got)
	}
}

func TestSideBySide(t *testing.T) {
	got := sideBySide(2, 1920, 1080)
	if len(got) != 2 || got[1].X != 1920 || got[1].Width != 1920 {
		t.Errorf("sideBySide(2) = %v", got)
	}
	if len(sideBySide(0, 10, 10)) != 1 {
		t.Error("sideBySide should return at least one monitor")
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 windows"},
		{1, "1 window"},
		{3, "3 windows"},
	}
	for _, tt := range tests {
		if got := pluralize(tt.n, "window"); got != tt.want {
			t.Errorf("pluralize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
