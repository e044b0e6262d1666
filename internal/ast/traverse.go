package ast

// Inspect walks the tree rooted at n in pre-order, calling fn for each
// node. If fn returns false for a node, its children are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Inspect(c, fn)
	}
}

// FindDescendants returns all nodes of type T in the tree rooted at n,
// in pre-order. The root itself is included when it matches.
func FindDescendants[T Node](n Node) []T {
	var out []T
	Inspect(n, func(node Node) bool {
		if match, ok := node.(T); ok {
			out = append(out, match)
		}
		return true
	})
	return out
}

// FindAncestor walks Parent links upward from n and returns the first
// ancestor of type T. The search starts at n's parent, not n itself.
func FindAncestor[T Node](n Node) (T, bool) {
	var zero T
	if n == nil {
		return zero, false
	}
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if match, ok := cur.(T); ok {
			return match, true
		}
	}
	return zero, false
}

// NodeAt returns the innermost node whose span contains the byte offset,
// or nil when the offset falls outside the tree.
func NodeAt(root Node, offset int) Node {
	if root == nil || !root.Span().ContainsOffset(offset) {
		return nil
	}
	cur := root
	for {
		advanced := false
		for _, c := range cur.Children() {
			if c.Span().ContainsOffset(offset) {
				cur = c
				advanced = true
				break
			}
		}
		if !advanced {
			return cur
		}
	}
}
