// Package render groups the visual outputs of a layout tree.
//
// The [nodelink] subpackage draws a [snapshot.Snapshot] as a node-link
// diagram: Graphviz DOT text, or SVG rendered in-process through
// go-graphviz. Terminal renderings (tables and trees) live with the CLI.
package render
