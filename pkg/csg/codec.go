package csg

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// wireNode is the msgpack encoding of a node. Leaves carry the shape
// identity only; the shape itself is rebuilt by the decoder's resolver.
type wireNode struct {
	Op    Op        `msgpack:"op"`
	Shape ShapeID   `msgpack:"shape,omitempty"`
	Left  *wireNode `msgpack:"l,omitempty"`
	Right *wireNode `msgpack:"r,omitempty"`
}

// ShapeResolver maps a decoded shape identity back to a Shape.
type ShapeResolver func(id ShapeID) (Shape, error)

// TokenResolver resolves every identity to a Token.
func TokenResolver(id ShapeID) (Shape, error) {
	return Token(id), nil
}

// Encode writes the subtree rooted at n to w. Malformed trees are rejected.
func Encode(w io.Writer, n *Node) error {
	if err := Validate(n); err != nil {
		return fmt.Errorf("csg: encode: %w", err)
	}
	if err := msgpack.NewEncoder(w).Encode(toWire(n)); err != nil {
		return fmt.Errorf("csg: encode: %w", err)
	}
	return nil
}

// Decode reads a tree written by Encode. A nil resolver uses TokenResolver.
// The decoded tree is validated, so a truncated or hand-built payload with a
// missing child yields ErrMalformedTree.
func Decode(r io.Reader, resolve ShapeResolver) (*Node, error) {
	if resolve == nil {
		resolve = TokenResolver
	}
	var w wireNode
	if err := msgpack.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("csg: decode: %w", err)
	}
	n, err := fromWire(&w, resolve)
	if err != nil {
		return nil, fmt.Errorf("csg: decode: %w", err)
	}
	if err := Validate(n); err != nil {
		return nil, fmt.Errorf("csg: decode: %w", err)
	}
	return n, nil
}

func toWire(n *Node) *wireNode {
	if n == nil {
		return nil
	}
	w := &wireNode{Op: n.op, Left: toWire(n.left), Right: toWire(n.right)}
	if n.shape != nil {
		w.Shape = n.shape.ID()
	}
	return w
}

func fromWire(w *wireNode, resolve ShapeResolver) (*Node, error) {
	if w == nil {
		return nil, nil
	}
	n := &Node{op: w.Op}
	if w.Op == Leaf {
		s, err := resolve(w.Shape)
		if err != nil {
			return nil, fmt.Errorf("resolve shape %q: %w", w.Shape, err)
		}
		n.shape = s
	}
	var err error
	if n.left, err = fromWire(w.Left, resolve); err != nil {
		return nil, err
	}
	if n.right, err = fromWire(w.Right, resolve); err != nil {
		return nil, err
	}
	return n, nil
}
