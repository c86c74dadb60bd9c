package tree

// WalkBreadthFirst visits start and its descendants in level order. A nil
// start walks from the root. Each node's children are enqueued before visit
// runs on it, so the walk is unaffected by mutations made inside visit.
func (t *Tree) WalkBreadthFirst(visit func(*Node), start *Node) {
	t.breadthFirst(t.begin(start), func(n *Node) bool {
		visit(n)
		return true
	})
}

// WalkDepthFirst visits start and its descendants in post-order: every
// subtree is completed before its root is visited. A nil start walks from
// the root.
func (t *Tree) WalkDepthFirst(visit func(*Node), start *Node) {
	t.depthFirst(t.begin(start), func(n *Node) bool {
		visit(n)
		return true
	})
}

func (t *Tree) begin(start *Node) *Node {
	if start == nil {
		return t.root
	}
	return start
}

// breadthFirst stops as soon as visit returns false.
func (t *Tree) breadthFirst(start *Node, visit func(*Node) bool) {
	q := NewQueue[*Node]()
	q.Enqueue(start)
	for n, ok := q.Dequeue(); ok; n, ok = q.Dequeue() {
		for _, c := range n.children {
			q.Enqueue(c)
		}
		if !visit(n) {
			return
		}
	}
}

// depthFirst stops as soon as visit returns false.
func (t *Tree) depthFirst(start *Node, visit func(*Node) bool) {
	var recurse func(*Node) bool
	recurse = func(n *Node) bool {
		// Ranging over the header captured here is safe: children slices
		// are never spliced in place.
		for _, c := range n.children {
			if !recurse(c) {
				return false
			}
		}
		return visit(n)
	}
	recurse(start)
}
