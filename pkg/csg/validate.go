package csg

import "fmt"

// Validate checks the structural invariants of the subtree rooted at n and
// returns a *MalformedError for the first violation found. It never mutates
// the tree.
func Validate(n *Node) error {
	if n == nil {
		return malformed("root", "nil node")
	}
	owners := make(map[*Node]string)
	return validate(n, "root", owners)
}

// validate walks the tree recording the path that owns each node. Seeing a
// node twice means it is shared between parents or reachable through a cycle.
func validate(n *Node, path string, owners map[*Node]string) error {
	if prev, seen := owners[n]; seen {
		return malformed(path, fmt.Sprintf("node is also owned at %s", prev))
	}
	owners[n] = path

	switch {
	case n.op == Leaf:
		if n.HasChildren() {
			return malformed(path, "leaf node has children")
		}
		if n.shape == nil {
			return malformed(path, "leaf node has no shape")
		}
		return nil
	case n.op.IsOperator():
		if n.shape != nil {
			return malformed(path, fmt.Sprintf("%s node bears shape %q", n.op, n.shape.ID()))
		}
		if n.left == nil {
			return malformed(path, fmt.Sprintf("%s node has nil left child", n.op))
		}
		if n.right == nil {
			return malformed(path, fmt.Sprintf("%s node has nil right child", n.op))
		}
		if err := validate(n.left, path+".left", owners); err != nil {
			return err
		}
		return validate(n.right, path+".right", owners)
	default:
		return malformed(path, fmt.Sprintf("unknown node kind %s", n.op))
	}
}
