package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgewm/forge/pkg/cache"
	"github.com/forgewm/forge/pkg/render/nodelink"
)

// renderOpts holds the command-line flags shared by render, tree and dot.
type renderOpts struct {
	noCache  bool   // bypass the snapshot cache
	json     bool   // print JSON instead of a table
	output   string // output file path (dot only, stdout when empty)
	svg      bool   // render SVG through Graphviz (dot only)
	detailed bool   // include layouts, classes and rectangles in DOT labels
}

// renderCommand creates the render command, which replays a scenario and
// prints where every window was placed.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [scenario]",
		Short: "Replay a scenario and print window placements",
		Long: `Replay a scenario file (TOML or YAML) through the layout tree and print
the rectangle of every visible window.

Results are cached under the scenario content and the layout settings of the
configuration; use --no-cache to force a replay.`,
		Example: `  forge render desk.toml
  forge render desk.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ch := c.newCache(ctx, cfg, opts.noCache)
			defer ch.Close()

			res, err := c.runScenario(ctx, cfg, ch, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.json {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.snap)
			}

			title := res.snap.Name
			if title == "" {
				title = args[0]
			}
			fmt.Fprintln(out, StyleTitle.Render(title))
			fmt.Fprintln(out, placementTable(res.snap.Placements))
			printStats(out, res.snap, res.cached)
			printNextStep(out, "Export the tree", "forge dot "+args[0]+" --svg -o tree.svg")
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "replay even if a cached snapshot exists")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the snapshot as JSON")

	return cmd
}

// treeCommand creates the tree command, which prints the layout tree.
func (c *CLI) treeCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "tree [scenario]",
		Short: "Print the layout tree of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ch := c.newCache(ctx, cfg, opts.noCache)
			defer ch.Close()

			res, err := c.runScenario(ctx, cfg, ch, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), layoutTree(res.snap))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "replay even if a cached snapshot exists")

	return cmd
}

// dotCommand creates the dot command, which exports the layout tree as a
// Graphviz diagram.
func (c *CLI) dotCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "dot [scenario]",
		Short: "Export the layout tree as Graphviz DOT or SVG",
		Example: `  forge dot desk.toml | dot -Tpng > desk.png
  forge dot desk.toml --svg --detailed -o desk.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ch := c.newCache(ctx, cfg, opts.noCache)
			defer ch.Close()

			res, err := c.runScenario(ctx, cfg, ch, args[0])
			if err != nil {
				return err
			}

			dot := nodelink.ToDOT(res.snap, nodelink.Options{Detailed: opts.detailed})
			data := []byte(dot)
			if opts.svg {
				format := "svg"
				if opts.detailed {
					format = "svg-detailed"
				}
				key := cache.ArtifactKey(res.key, format)
				if cached, hit, _ := ch.Get(ctx, key); hit {
					data = cached
				} else {
					spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Rendering SVG...")
					spinner.Start()
					data, err = nodelink.RenderSVG(ctx, dot)
					spinner.Stop()
					if err != nil {
						return err
					}
					if err := ch.Set(ctx, key, data, cfg.Cache.TTL.Duration); err != nil {
						logger.Warn("cache write failed", "err", err)
					}
				}
			}

			if opts.output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return err
			}
			printSuccess(cmd.ErrOrStderr(), "Wrote %s", opts.output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "replay even if a cached snapshot exists")
	cmd.Flags().BoolVar(&opts.svg, "svg", false, "render SVG through Graphviz instead of printing DOT")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show layouts, classes and rectangles in labels")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")

	return cmd
}
