package csg

import (
	"fmt"
	"strconv"
	"strings"
)

// Op enumerates the kinds of CSG nodes.
type Op int

const (
	Leaf      Op = iota // primitive shape, no children
	Add                 // union
	Intersect           // intersection
	Subtract            // difference, left minus right
)

func (o Op) String() string {
	switch o {
	case Leaf:
		return "shape"
	case Add:
		return "union"
	case Intersect:
		return "intersection"
	case Subtract:
		return "difference"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// IsOperator reports whether o is one of the binary set operators.
func (o Op) IsOperator() bool {
	return o == Add || o == Intersect || o == Subtract
}

// Commutative reports whether swapping the operands of o preserves the
// denoted set. Commutative operators are also associative.
func (o Op) Commutative() bool {
	return o == Add || o == Intersect
}

// ShapeID is the identity token of a shape. It breaks ties between leaves
// during canonical ordering.
type ShapeID string

// Shape is an opaque primitive solid. Implementations must be immutable once
// attached to a leaf.
type Shape interface {
	ID() ShapeID
}

// Token is a shape carrying nothing but its identity.
type Token string

// ID implements Shape.
func (t Token) ID() ShapeID { return ShapeID(t) }

// Node is a CSG tree node: either a leaf bearing a shape or an operator with
// exactly two children. The zero Node is a leaf with no shape attached.
type Node struct {
	op    Op
	left  *Node
	right *Node
	shape Shape
}

// NewLeaf returns a leaf bearing shape.
func NewLeaf(shape Shape) (*Node, error) {
	if shape == nil {
		return nil, malformed("", "leaf requires a shape")
	}
	return &Node{op: Leaf, shape: shape}, nil
}

// MustLeaf is like NewLeaf but panics on error.
func MustLeaf(shape Shape) *Node {
	n, err := NewLeaf(shape)
	if err != nil {
		panic(err)
	}
	return n
}

// NewOp returns an operator node owning left and right. The children must be
// distinct, non-nil and not owned by any other node.
func NewOp(op Op, left, right *Node) (*Node, error) {
	if !op.IsOperator() {
		return nil, malformed("", fmt.Sprintf("%s is not a set operator", op))
	}
	if left == nil || right == nil {
		return nil, malformed("", fmt.Sprintf("%s requires two non-nil children", op))
	}
	if left == right {
		return nil, malformed("", fmt.Sprintf("%s children must be distinct nodes", op))
	}
	return &Node{op: op, left: left, right: right}, nil
}

// MustOp is like NewOp but panics on error.
func MustOp(op Op, left, right *Node) *Node {
	n, err := NewOp(op, left, right)
	if err != nil {
		panic(err)
	}
	return n
}

// Union returns left ∪ right.
func Union(left, right *Node) (*Node, error) { return NewOp(Add, left, right) }

// Difference returns left - right.
func Difference(left, right *Node) (*Node, error) { return NewOp(Subtract, left, right) }

// Intersection returns left ∩ right.
func Intersection(left, right *Node) (*Node, error) { return NewOp(Intersect, left, right) }

// SetShape attaches shape to an unattached leaf. It fails with
// ErrInvalidNodeState if n has children or already bears a shape.
func (n *Node) SetShape(shape Shape) error {
	if shape == nil {
		return fmt.Errorf("%w: nil shape", ErrInvalidNodeState)
	}
	if n.HasChildren() || n.op != Leaf {
		return fmt.Errorf("%w: cannot attach shape %q to %s node", ErrInvalidNodeState, shape.ID(), n.op)
	}
	if n.shape != nil {
		return fmt.Errorf("%w: leaf already bears shape %q", ErrInvalidNodeState, n.shape.ID())
	}
	n.shape = shape
	return nil
}

// Op returns the node kind.
func (n *Node) Op() Op { return n.op }

// Left returns the left child, or nil for a leaf.
func (n *Node) Left() *Node { return n.left }

// Right returns the right child, or nil for a leaf.
func (n *Node) Right() *Node { return n.right }

// Shape returns the attached shape, or nil for an operator node.
func (n *Node) Shape() Shape { return n.shape }

// HasChildren reports whether n is an operator node.
func (n *Node) HasChildren() bool {
	return n.left != nil || n.right != nil
}

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool {
	return n.op == Leaf && !n.HasChildren()
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	return 1 + n.left.Size() + n.right.Size()
}

// Depth returns the height of the subtree rooted at n; a leaf has depth 1.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.left.Depth(), n.right.Depth())
}

// Walk visits the subtree in pre-order. Returning false from fn skips the
// children of the visited node.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	n.left.walk(fn, depth+1)
	n.right.walk(fn, depth+1)
}

// Clone returns a structural copy of the subtree. Shapes are immutable and
// are referenced, not copied.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return &Node{op: n.op, left: n.left.Clone(), right: n.right.Clone(), shape: n.shape}
}

// Equal reports whether a and b are structurally identical: same operators in
// the same positions and leaves with the same shape identities.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Compare(a, b) == 0
}

// Member reports whether a point belongs to the set denoted by n, given a
// membership oracle for the point against each leaf shape.
func Member(n *Node, inLeaf func(Shape) bool) bool {
	switch n.op {
	case Add:
		return Member(n.left, inLeaf) || Member(n.right, inLeaf)
	case Intersect:
		return Member(n.left, inLeaf) && Member(n.right, inLeaf)
	case Subtract:
		return Member(n.left, inLeaf) && !Member(n.right, inLeaf)
	default:
		return inLeaf(n.shape)
	}
}

// String renders n as an s-expression, e.g.
// (difference (shape "a") (union (shape "b") (shape "c"))).
func (n *Node) String() string {
	var sb strings.Builder
	n.format(&sb)
	return sb.String()
}

func (n *Node) format(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("nil")
		return
	}
	if n.op == Leaf && !n.HasChildren() {
		sb.WriteString("(shape ")
		if n.shape == nil {
			sb.WriteString("nil")
		} else {
			sb.WriteString(strconv.Quote(string(n.shape.ID())))
		}
		sb.WriteByte(')')
		return
	}
	sb.WriteByte('(')
	sb.WriteString(n.op.String())
	sb.WriteByte(' ')
	n.left.format(sb)
	sb.WriteByte(' ')
	n.right.format(sb)
	sb.WriteByte(')')
}
