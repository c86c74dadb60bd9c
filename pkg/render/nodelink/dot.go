package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/forgewm/forge/pkg/snapshot"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds layouts, modes and rectangles to node labels.
	// When false, only the node label is shown.
	Detailed bool
}

// ToDOT converts a snapshot to Graphviz DOT. The result can be rendered
// with [RenderSVG].
//
// Containers are drawn as rounded boxes, windows as plain boxes. Floating
// windows get a dashed outline and minimized windows a grey fill.
func ToDOT(s *snapshot.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	s.Walk(func(n *snapshot.Node, _ int) {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	})

	buf.WriteString("\n")
	s.Walk(func(n *snapshot.Node, _ int) {
		for _, c := range n.Children {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.ID, c.ID)
		}
	})

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *snapshot.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}

	parts := []string{strings.ToLower(n.Type)}
	if n.Layout != "" {
		parts = append(parts, "layout: "+n.Layout)
	}
	if n.IsWindow() {
		parts = append(parts, "class: "+n.Class, "mode: "+n.Mode)
		if n.Rect != nil {
			parts = append(parts, n.Rect.String())
		}
	}
	return n.Label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *snapshot.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if !n.IsWindow() {
		return attrs
	}

	style := "filled"
	if n.Mode == "float" {
		style += ",dashed"
	}
	fill := "lightblue"
	if n.Minimized {
		fill = "lightgrey"
	}
	return append(attrs, fmt.Sprintf("style=%q", style), "fillcolor="+fill, "fontcolor=black")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with one sized in
// pixels from the viewBox, so browsers scale the diagram.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
