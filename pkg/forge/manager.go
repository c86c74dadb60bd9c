// Package forge wires window-system events into the layout tree.
//
// The tree itself never decides when to change; a [Manager] receives
// "window mapped", "window unmapped", "workspace added" and similar events,
// applies them to the tree and re-renders. Every method takes the manager's
// lock, so events arriving from several goroutines (for example HTTP
// handlers) are applied one at a time, which is the single control thread
// the tree expects.
package forge

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/forgewm/forge/pkg/observability"
	"github.com/forgewm/forge/pkg/tree"
)

// Options configures a Manager.
type Options struct {
	Tree tree.Options

	// FloatClasses lists WM classes that are mapped in floating mode.
	// Matching is case-insensitive.
	FloatClasses []string

	Logger *log.Logger
}

// Manager serializes events onto a tree.
type Manager struct {
	mu     sync.Mutex
	tree   *tree.Tree
	floats map[string]struct{}
	logger *log.Logger
}

// New builds the tree from the live state of ws.
func New(ws tree.WindowSystem, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Tree.Logger == nil {
		opts.Tree.Logger = logger
	}

	floats := make(map[string]struct{}, len(opts.FloatClasses))
	for _, c := range opts.FloatClasses {
		floats[strings.ToLower(c)] = struct{}{}
	}

	return &Manager{
		tree:   tree.New(ws, opts.Tree),
		floats: floats,
		logger: logger,
	}
}

// WindowCreated attaches w under the container of its monitor and
// workspace, then renders. Windows whose class is configured as floating
// are mapped in floating mode.
func (m *Manager) WindowCreated(ctx context.Context, w tree.Window) (*tree.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.attach(ctx, w)
	if err != nil {
		return nil, err
	}
	if _, ok := m.floats[strings.ToLower(w.WMClass())]; ok {
		n.SetMode(tree.ModeFloat)
	}
	m.logger.Debug("window mapped", "class", w.WMClass(), "mode", n.Mode(), "container", n.Parent().Payload())

	m.tree.Render(ctx)
	return n, nil
}

// WindowDestroyed detaches the node of w and renders. The node is located
// by the window's render handle.
func (m *Manager) WindowDestroyed(ctx context.Context, w tree.Window) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.nodeOf(w)
	if err != nil {
		return err
	}
	if err := m.detach(ctx, n); err != nil {
		return err
	}
	m.logger.Debug("window unmapped", "class", w.WMClass())

	m.tree.Render(ctx)
	return nil
}

// WindowChanged reconciles the tree after the window system changed w:
// a window that now lives on another workspace or monitor is moved to that
// container. The tree is rendered either way, which also picks up
// minimize and restore.
func (m *Manager) WindowChanged(ctx context.Context, w tree.Window) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.nodeOf(w)
	if err != nil {
		return err
	}

	ws := w.Workspace()
	if ws == nil {
		return fmt.Errorf("window %s has no workspace: %w", w.WMClass(), tree.ErrParentNotFound)
	}
	parent := n.Parent()
	want := tree.MonitorPayload(w.Monitor(), ws.Index())
	if parent != nil && parent.Type() == tree.NodeMonitor && parent.Payload() != want {
		if _, ok := m.tree.FindNode(want); !ok {
			return fmt.Errorf("window %s: %w: %s", w.WMClass(), tree.ErrParentNotFound, want)
		}
		mode := n.Mode()
		if err := m.detach(ctx, n); err != nil {
			return err
		}
		moved, err := m.attach(ctx, w)
		if err != nil {
			return err
		}
		moved.SetMode(mode)
		m.logger.Debug("window moved", "class", w.WMClass(), "from", parent.Payload(), "to", want)
	}

	m.tree.Render(ctx)
	return nil
}

// SetMode changes the placement mode of w and renders.
func (m *Manager) SetMode(ctx context.Context, w tree.Window, mode tree.WindowMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.nodeOf(w)
	if err != nil {
		return err
	}
	n.SetMode(mode)
	m.tree.Render(ctx)
	return nil
}

// ToggleFloat flips w between tiled and floating and returns the new mode.
func (m *Manager) ToggleFloat(ctx context.Context, w tree.Window) (tree.WindowMode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.nodeOf(w)
	if err != nil {
		return 0, err
	}
	mode := tree.ModeFloat
	if n.IsFloating() {
		mode = tree.ModeTile
	}
	n.SetMode(mode)
	m.tree.Render(ctx)
	return mode, nil
}

// WorkspaceAdded attaches a workspace with its monitor containers.
func (m *Manager) WorkspaceAdded(ctx context.Context, ws tree.Workspace) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.tree.AddWorkspace(ws); err != nil {
		return err
	}
	observability.Tree().OnNodeAdded(ctx, tree.NodeWorkspace.String())
	m.logger.Debug("workspace added", "index", ws.Index())
	return nil
}

// SetLayout changes the layout of a monitor container and renders.
func (m *Manager) SetLayout(ctx context.Context, monitor, workspace int, l tree.LayoutType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := tree.MonitorPayload(monitor, workspace)
	n, ok := m.tree.FindNode(key)
	if !ok {
		return fmt.Errorf("container %s: %w", key, tree.ErrNodeNotFound)
	}
	n.SetLayout(l)
	m.tree.Render(ctx)
	return nil
}

// Render re-renders the tree, for example after a monitor's work area
// changed.
func (m *Manager) Render(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.Render(ctx)
}

// View runs fn with exclusive access to the tree. fn must not retain the
// tree or call back into the manager.
func (m *Manager) View(fn func(*tree.Tree)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.tree)
}

func (m *Manager) attach(ctx context.Context, w tree.Window) (*tree.Node, error) {
	ws := w.Workspace()
	if ws == nil {
		return nil, fmt.Errorf("window %s has no workspace: %w", w.WMClass(), tree.ErrParentNotFound)
	}
	n, err := m.tree.AddNode(tree.MonitorPayload(w.Monitor(), ws.Index()), tree.NodeWindow, w)
	if err != nil {
		return nil, err
	}
	observability.Tree().OnNodeAdded(ctx, tree.NodeWindow.String())
	return n, nil
}

func (m *Manager) detach(ctx context.Context, n *tree.Node) error {
	parent := n.Parent()
	if parent == nil {
		return fmt.Errorf("%v is detached: %w", n, tree.ErrParentNotFound)
	}
	if _, err := m.tree.RemoveNode(parent.Payload(), n); err != nil {
		return err
	}
	observability.Tree().OnNodeRemoved(ctx, n.Type().String())
	return nil
}

func (m *Manager) nodeOf(w tree.Window) (*tree.Node, error) {
	n, ok := m.tree.FindNodeByActor(w.Actor())
	if !ok {
		return nil, fmt.Errorf("window %s: %w", w.WMClass(), tree.ErrNodeNotFound)
	}
	return n, nil
}
