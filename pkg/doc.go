// Package pkg provides the core libraries for forge window tiling.
//
// # Overview
//
// Forge keeps every window of a display in a tree: a root surface holds
// workspaces, each workspace holds one container per monitor, and
// containers hold windows. Rendering walks the tree and divides each
// monitor's work area among its visible windows. The pkg directory is
// organized into these areas:
//
//  1. [tree] - The layout tree, traversal and the tiling algorithm
//  2. [forge] - Event handling on top of the tree (the window manager)
//  3. [wm] - An in-memory window system the tree can drive
//  4. [scenario] - Scripted event replays (TOML and YAML)
//  5. [snapshot] - Serializable views of a tree and its placements
//  6. [render/nodelink] - Graphviz diagrams of snapshots
//  7. [cache], [config], [errors], [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	Scenario file or HTTP event
//	         ↓
//	    [scenario] package (parse, validate, apply)
//	         ↓
//	    [forge] package (attach, detach, float, render)
//	         ↓
//	    [tree] package (place windows)
//	         ↓
//	    [wm] display (window rectangles)
//	         ↓
//	    [snapshot] → table, tree, DOT/SVG or JSON output
//
// # Quick Start
//
//	d := wm.NewDisplay([]tree.Rect{{Width: 1920, Height: 1080}}, 2)
//	m := forge.New(d, forge.Options{Tree: tree.DefaultOptions()})
//
//	w, _ := d.OpenWindow("term", "kitty", 0, 0)
//	if _, err := m.WindowCreated(ctx, w); err != nil {
//	    return err
//	}
//	fmt.Println(d.LastPlacements()["term"]) // {8 8 1904 1064}
package pkg
