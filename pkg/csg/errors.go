package csg

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTree reports a violated structural invariant: an operator
	// with a missing child, a tag inconsistent with the node's fields, or a
	// node owned by more than one parent.
	ErrMalformedTree = errors.New("malformed csg tree")

	// ErrInvalidNodeState reports a shape attached to a node that cannot
	// take one. It is a kind of ErrMalformedTree.
	ErrInvalidNodeState = fmt.Errorf("%w: invalid node state", ErrMalformedTree)

	// ErrNotConverged reports that equivalence rewriting did not reach a
	// fixed point within its pass budget.
	ErrNotConverged = errors.New("normalization did not converge")
)

// MalformedError describes where in a tree a structural violation was found.
type MalformedError struct {
	Path    string // e.g. "root.left.right"; empty when not known
	Message string
}

func (e *MalformedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedTree, e.Message)
	}
	return fmt.Sprintf("%s: at %s: %s", ErrMalformedTree, e.Path, e.Message)
}

// Unwrap returns ErrMalformedTree.
func (e *MalformedError) Unwrap() error { return ErrMalformedTree }

func malformed(path, msg string) error {
	return &MalformedError{Path: path, Message: msg}
}

// NotConvergedError carries the partially rewritten tree left behind when the
// pass budget or the node budget ran out. Callers may use Partial; it denotes
// the same set as the input. Nodes and MaxNodes are set only when the tree
// outgrew the node budget.
type NotConvergedError struct {
	Passes   int
	Partial  *Node
	Nodes    int
	MaxNodes int
}

func (e *NotConvergedError) Error() string {
	if e.MaxNodes > 0 {
		return fmt.Sprintf("%s after %d passes: tree grew past %d nodes", ErrNotConverged, e.Passes, e.MaxNodes)
	}
	return fmt.Sprintf("%s after %d passes", ErrNotConverged, e.Passes)
}

// Unwrap returns ErrNotConverged.
func (e *NotConvergedError) Unwrap() error { return ErrNotConverged }
