package scenario

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/forgewm/forge/pkg/errors"
	"github.com/forgewm/forge/pkg/forge"
	"github.com/forgewm/forge/pkg/snapshot"
	"github.com/forgewm/forge/pkg/tree"
	"github.com/forgewm/forge/pkg/wm"
)

// Replay is the state left behind by running a scenario.
type Replay struct {
	Scenario *Scenario
	Display  *wm.Display
	Manager  *forge.Manager
	Duration time.Duration
}

// Run builds a display from s, wraps it in a manager and applies every
// event in order. The first failing event aborts the run.
func Run(ctx context.Context, s *Scenario, opts forge.Options) (*Replay, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	d := wm.NewDisplay(s.Monitors, s.Workspaces)
	m := forge.New(d, opts)
	m.Render(ctx)

	for i, e := range s.Events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Debug("event", "index", i, "event", e)
		if err := Apply(ctx, m, d, e); err != nil {
			return nil, fmt.Errorf("events[%d] %s: %w", i, e, err)
		}
	}

	return &Replay{
		Scenario: s,
		Display:  d,
		Manager:  m,
		Duration: time.Since(start),
	}, nil
}

// Snapshot captures the manager's tree and the display's last placements.
func (r *Replay) Snapshot() *snapshot.Snapshot {
	placed := r.Display.LastPlacements()
	var snap *snapshot.Snapshot
	r.Manager.View(func(t *tree.Tree) {
		snap = snapshot.Capture(t, placed)
	})
	snap.Name = r.Scenario.Name
	return snap
}

// Apply performs one event against the display and the manager.
func Apply(ctx context.Context, m *forge.Manager, d *wm.Display, e Event) error {
	switch e.Op {
	case OpAddWorkspace:
		return m.WorkspaceAdded(ctx, d.AddWorkspace())

	case OpLayout:
		l, err := tree.ParseLayout(e.Layout)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLayout, err, "layout")
		}
		if err := m.SetLayout(ctx, e.Monitor, e.Workspace, l); err != nil {
			return errors.Wrap(errors.ErrCodeContainerNotFound, err, "set layout")
		}
		return nil

	case OpMap:
		w, err := d.OpenWindow(e.Window, e.Class, e.Workspace, e.Monitor)
		if err != nil {
			code := errors.ErrCodeInvalidInput
			if stderrors.Is(err, wm.ErrDuplicateWindow) {
				code = errors.ErrCodeConflict
			}
			return errors.Wrap(code, err, "open %s", e.Window)
		}
		if _, err := m.WindowCreated(ctx, w); err != nil {
			_, _ = d.CloseWindow(e.Window)
			return err
		}
		return nil
	}

	w, ok := d.Window(e.Window)
	if !ok {
		return errors.New(errors.ErrCodeWindowNotFound, "window %q", e.Window)
	}

	switch e.Op {
	case OpUnmap:
		if err := m.WindowDestroyed(ctx, w); err != nil {
			return err
		}
		_, err := d.CloseWindow(e.Window)
		return err
	case OpFloat:
		return m.SetMode(ctx, w, tree.ModeFloat)
	case OpTile:
		return m.SetMode(ctx, w, tree.ModeTile)
	case OpToggleFloat:
		_, err := m.ToggleFloat(ctx, w)
		return err
	case OpMinimize, OpRestore:
		w.SetMinimized(e.Op == OpMinimize)
		return m.WindowChanged(ctx, w)
	case OpMove:
		if err := w.MoveTo(e.Workspace, e.Monitor); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "move %s", e.Window)
		}
		return m.WindowChanged(ctx, w)
	}
	return errors.New(errors.ErrCodeInvalidScenario, "unknown op %q", e.Op)
}
