package tree

import "errors"

var (
	// ErrParentNotFound is returned by [Tree.AddNode] and [Tree.RemoveNode]
	// when no node carries the given parent payload. The tree is unchanged.
	ErrParentNotFound = errors.New("parent node not found")

	// ErrNodeNotFound is returned by [Tree.RemoveNode] when the node is not a
	// child of the resolved parent.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicatePayload is returned by [Tree.AddNode] when the payload is
	// already carried by a node in the tree. Payloads are lookup keys and
	// must be unique.
	ErrDuplicatePayload = errors.New("payload already in tree")

	// ErrInvalidPayload is returned by [Tree.AddNode] for nil or
	// non-comparable payloads, which could never be found again.
	ErrInvalidPayload = errors.New("payload must be non-nil and comparable")

	// ErrUnsupported is returned by queries the tree declares but does not
	// implement.
	ErrUnsupported = errors.New("unsupported")

	ErrUnknownLayout = errors.New("unknown layout")
	ErrUnknownMode   = errors.New("unknown window mode")
)
