// Package nodelink draws a layout tree snapshot as a node-link diagram.
//
// Convert a snapshot to DOT, then render it to SVG:
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes are keyed by their snapshot ID, so two windows with the same label
// still get distinct boxes. Edges run from parent to child in child order.
//
// SVG rendering runs Graphviz in-process through
// [github.com/goccy/go-graphviz]; no external binary is needed. The DOT
// source can also be fed to the dot tool directly.
package nodelink
