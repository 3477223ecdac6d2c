package csg

import "strings"

// rank orders node kinds: leaves before operators, then
// union < intersection < difference.
func rank(o Op) int {
	switch o {
	case Leaf:
		return 0
	case Add:
		return 1
	case Intersect:
		return 2
	case Subtract:
		return 3
	default:
		return 4
	}
}

// Compare is the total order used for canonical ordering. It returns a
// negative number when a sorts before b, zero when they are structurally
// equal and a positive number otherwise. Nodes are compared by kind, then
// operators by their children left to right, then leaves by shape identity.
func Compare(a, b *Node) int {
	if ra, rb := rank(a.op), rank(b.op); ra != rb {
		return ra - rb
	}
	if a.op == Leaf {
		return strings.Compare(string(shapeID(a.shape)), string(shapeID(b.shape)))
	}
	if c := Compare(a.left, b.left); c != 0 {
		return c
	}
	return Compare(a.right, b.right)
}

func shapeID(s Shape) ShapeID {
	if s == nil {
		return ""
	}
	return s.ID()
}
