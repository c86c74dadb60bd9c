// Package tree is the spatial model of the forge tiling window manager.
//
// A [Tree] encodes how screen space is recursively subdivided among
// workspaces, monitors and windows. The shape is:
//
//	ROOT
//	├── WORKSPACE (one per workspace)
//	│   ├── MONITOR "mo0ws0"  (one per monitor, layout HSPLIT)
//	│   │   ├── WINDOW
//	│   │   └── SPLIT
//	│   │       └── WINDOW
//	│   └── MONITOR "mo1ws0"
//	└── WORKSPACE
//
// Every node carries an opaque payload. Payloads are the only key used to
// locate nodes: [Tree.FindNode], [Tree.AddNode] and [Tree.RemoveNode] match
// payloads with ==, so payloads must be comparable and should be pointers or
// other identity-like values. WINDOW nodes wrap a [Window] and record its
// [Actor] (the render handle) once, at creation.
//
// # Rendering
//
// [Tree.Render] walks the tree breadth-first and, for every WINDOW node that
// is attached to a parent, divides the work area of the window's monitor
// among the parent's shown children (windows that are neither minimized nor
// floating). HSPLIT containers divide the width, every other layout divides
// the height. A fixed gap is then inset on all four sides and the result is
// handed to [WindowSystem.Move].
//
// # Concurrency
//
// A Tree is not safe for concurrent use. All mutation and rendering is
// expected to happen on one control goroutine, driven by window-system
// events; see package forge for the serialized event layer.
//
// # Traversal and mutation
//
// Children slices are copy-on-write: [Tree.RemoveNode] builds a new slice
// instead of splicing in place. Walks capture each node's children before
// calling visit, so mutations made from inside a visit callback take effect
// on the next walk and never corrupt the one in flight.
package tree
