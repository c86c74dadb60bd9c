package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgewm/forge/internal/server"
	"github.com/forgewm/forge/pkg/config"
	"github.com/forgewm/forge/pkg/forge"
	"github.com/forgewm/forge/pkg/observability"
	"github.com/forgewm/forge/pkg/observability/otelhooks"
	"github.com/forgewm/forge/pkg/scenario"
	"github.com/forgewm/forge/pkg/tree"
	"github.com/forgewm/forge/pkg/wm"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string // listen address, overrides server.addr
	scenario   string // scenario to replay before serving
	monitors   int    // monitor count when no scenario is given
	workspaces int    // workspace count when no scenario is given
}

// serveCommand creates the serve command, which exposes a live manager
// over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{monitors: 1, workspaces: 1}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a layout manager over HTTP",
		Long: `Serve a layout manager over HTTP. Window events are POSTed to /events and
the tree is read back from /tree, /tree.dot, /tree.svg and /placements.

With --scenario the display and initial windows come from a scenario file;
otherwise an empty display of 1920x1080 monitors placed side by side is used.`,
		Example: `  forge serve --scenario desk.toml
  curl -d '{"op":"map","window":"term","class":"kitty"}' localhost:7878/events`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.addr == "" {
				opts.addr = cfg.Server.Addr
			}

			shutdown, err := c.setupTracing(ctx, cfg)
			if err != nil {
				return err
			}
			defer shutdown()

			mopts, err := cfg.ManagerOptions(c.Logger)
			if err != nil {
				return err
			}

			var (
				m    *forge.Manager
				d    *wm.Display
				name string
			)
			if opts.scenario != "" {
				s, err := scenario.Load(opts.scenario)
				if err != nil {
					return err
				}
				r, err := scenario.Run(ctx, s, mopts)
				if err != nil {
					return err
				}
				m, d, name = r.Manager, r.Display, s.Name
				printInfo(cmd.ErrOrStderr(), "Replayed %s from %s", pluralize(len(s.Events), "event"), opts.scenario)
			} else {
				d = wm.NewDisplay(sideBySide(opts.monitors, 1920, 1080), max(opts.workspaces, 1))
				m = forge.New(d, mopts)
				m.Render(ctx)
			}

			srv := server.New(m, d, server.Options{Name: name, Logger: c.Logger})
			printSuccess(cmd.ErrOrStderr(), "Listening on http://%s", opts.addr)
			return srv.ListenAndServe(ctx, opts.addr)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config server.addr)")
	cmd.Flags().StringVar(&opts.scenario, "scenario", "", "scenario to replay before serving")
	cmd.Flags().IntVar(&opts.monitors, "monitors", opts.monitors, "monitor count without a scenario")
	cmd.Flags().IntVar(&opts.workspaces, "workspaces", opts.workspaces, "workspace count without a scenario")

	return cmd
}

// setupTracing installs OTLP tree hooks when trace.otlp_endpoint is set.
// The returned function flushes and shuts the exporter down.
func (c *CLI) setupTracing(ctx context.Context, cfg config.Config) (func(), error) {
	if cfg.Trace.OTLPEndpoint == "" {
		return func() {}, nil
	}
	tp, err := otelhooks.NewProvider(ctx, cfg.Trace.OTLPEndpoint, cfg.Trace.ServiceName)
	if err != nil {
		return nil, err
	}
	observability.SetTreeHooks(otelhooks.New(tp))
	c.Logger.Info("tracing enabled", "endpoint", cfg.Trace.OTLPEndpoint)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			c.Logger.Warn("trace shutdown", "err", err)
		}
		observability.Reset()
	}, nil
}

// sideBySide lays out n monitors of equal size left to right.
func sideBySide(n, width, height int) []tree.Rect {
	n = max(n, 1)
	rects := make([]tree.Rect, n)
	for i := range rects {
		rects[i] = tree.Rect{X: i * width, Width: width, Height: height}
	}
	return rects
}
