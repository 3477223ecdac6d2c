package csg

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
)

// Stage tracks how far normalization of a tree's root has progressed.
type Stage int

const (
	Unprocessed Stage = iota
	EquivalenceRewritten
	ChildrenNormalized
	CanonicalOrdered
)

func (s Stage) String() string {
	switch s {
	case Unprocessed:
		return "unprocessed"
	case EquivalenceRewritten:
		return "equivalence-rewritten"
	case ChildrenNormalized:
		return "children-normalized"
	case CanonicalOrdered:
		return "canonical-ordered"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Tree owns a CSG root and the rewrite configuration used to normalize it.
// A Tree is not safe for concurrent use. Once Stage reports CanonicalOrdered
// the root may be shared with readers as long as nobody normalizes it again.
type Tree struct {
	root         *Node
	stage        Stage
	rules        []Rule
	passesFactor int
	maxNodes     int
	log          logrus.FieldLogger
}

// Option configures a Tree.
type Option func(*Tree) error

// WithRules replaces the rewrite rules. Rules are tried in order at each node.
func WithRules(rules ...Rule) Option {
	return func(t *Tree) error {
		t.rules = rules
		return nil
	}
}

// WithConfig applies a decoded Config.
func WithConfig(cfg Config) Option {
	return func(t *Tree) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		rules, err := cfg.RuleSet()
		if err != nil {
			return err
		}
		t.rules = rules
		t.passesFactor = cfg.PassesFactor
		if cfg.MaxNodes > 0 {
			t.maxNodes = cfg.MaxNodes
		}
		return nil
	}
}

// WithPassesFactor sets the pass budget multiplier.
func WithPassesFactor(factor int) Option {
	return func(t *Tree) error {
		if factor < 1 {
			return fmt.Errorf("passes factor must be at least 1, got %d", factor)
		}
		t.passesFactor = factor
		return nil
	}
}

// WithMaxNodes bounds the size a tree may reach while it is rewritten.
func WithMaxNodes(limit int) Option {
	return func(t *Tree) error {
		if limit < 1 {
			return fmt.Errorf("max nodes must be at least 1, got %d", limit)
		}
		t.maxNodes = limit
		return nil
	}
}

// WithLogger sets the logger used for pass-level diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Tree) error {
		t.log = l
		return nil
	}
}

// NewTree takes ownership of root. The root is validated; a malformed root
// yields ErrMalformedTree and no tree.
func NewTree(root *Node, opts ...Option) (*Tree, error) {
	if err := Validate(root); err != nil {
		return nil, err
	}
	t := &Tree{
		root:         root,
		rules:        DefaultRules(),
		passesFactor: DefaultPassesFactor,
		maxNodes:     DefaultMaxNodes,
		log:          discardLogger(),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, fmt.Errorf("csg: tree option: %w", err)
		}
	}
	return t, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Root returns the owned root node.
func (t *Tree) Root() *Node { return t.root }

// Stage reports the normalization stage of the owned root.
func (t *Tree) Stage() Stage { return t.stage }

// ReplaceSetEquivalences performs one rewrite pass over the subtree rooted at
// n. Children are rewritten before their parent and at most one rule fires at
// each node. It returns the replacement subtree and whether anything changed;
// callers iterate until no change occurs (see Rewrite). The input subtree
// must not be used after a successful call. A pass that grows the subtree
// beyond the node budget stops early and returns the partial rewrite with a
// *NotConvergedError.
func (t *Tree) ReplaceSetEquivalences(n *Node) (*Node, bool, error) {
	if err := Validate(n); err != nil {
		return n, false, err
	}
	budget := t.nodeBudget(n)
	out, changed, size, ok := t.pass(n, budget)
	if !ok {
		return out, true, t.overflow(out, 1, size, budget)
	}
	return out, changed, nil
}

// nodeBudget is the largest size a rewrite of n may reach: the configured
// maximum, or twice the size of n when that is larger.
func (t *Tree) nodeBudget(n *Node) int {
	return max(t.maxNodes, 2*n.Size())
}

// pass rewrites n bottom-up and reports the size of the result. ok is false
// once a subtree outgrows budget; the rest of the tree is then left as it
// was so that the partial result stays valid and denotes the same set.
func (t *Tree) pass(n *Node, budget int) (out *Node, changed bool, size int, ok bool) {
	if n.op == Leaf {
		return n, false, 1, true
	}
	left, lc, ls, ok := t.pass(n.left, budget)
	if !ok {
		return op(n.op, left, n.right), true, ls, false
	}
	right, rc, rs, ok := t.pass(n.right, budget)
	if !ok {
		return op(n.op, left, right), true, rs, false
	}
	changed = lc || rc
	if changed {
		n = op(n.op, left, right)
	}
	size = 1 + ls + rs
	if size > budget {
		return n, changed, size, false
	}
	for _, r := range t.rules {
		if res, fired := r.Apply(n); fired {
			t.log.WithFields(logrus.Fields{
				"rule": r.Name(),
				"from": n.op.String(),
				"to":   res.op.String(),
			}).Trace("csg: rewrite")
			size = res.Size()
			return res, true, size, size <= budget
		}
	}
	return n, changed, size, true
}

// overflow logs and builds the error for a pass that outgrew its budget.
func (t *Tree) overflow(partial *Node, passes, size, budget int) error {
	t.log.WithFields(logrus.Fields{
		"passes": passes,
		"nodes":  size,
		"budget": budget,
	}).Warn("csg: rewriting outgrew node budget")
	return &NotConvergedError{Passes: passes, Partial: partial, Nodes: size, MaxNodes: budget}
}

// Rewrite applies ReplaceSetEquivalences until a pass makes no change. The
// number of passes is capped at the passes factor times the size of n, and
// the size of the tree at the node budget (see WithMaxNodes). When either
// cap is hit the partially rewritten tree is returned together with a
// *NotConvergedError. The returned count includes the final, unchanged pass.
func (t *Tree) Rewrite(n *Node) (*Node, int, error) {
	if err := Validate(n); err != nil {
		return n, 0, err
	}
	limit := t.passesFactor * n.Size()
	budget := t.nodeBudget(n)
	for passes := 1; passes <= limit; passes++ {
		out, changed, size, ok := t.pass(n, budget)
		if !ok {
			return out, passes, t.overflow(out, passes, size, budget)
		}
		t.log.WithFields(logrus.Fields{
			"pass":    passes,
			"changed": changed,
			"nodes":   size,
		}).Debug("csg: rewrite pass")
		n = out
		if !changed {
			return n, passes, nil
		}
	}
	t.log.WithFields(logrus.Fields{
		"passes": limit,
		"nodes":  n.Size(),
	}).Warn("csg: rewriting did not converge")
	return n, limit, &NotConvergedError{Passes: limit, Partial: n}
}

// Normalize rewrites n to a fixed point and returns its canonical form: every
// union and intersection chain flattened into a left-leaning chain over its
// sorted operands, differences kept in place. Malformed input is returned
// unchanged with ErrMalformedTree. If rewriting does not converge, the partial
// rewrite is returned with ErrNotConverged.
func (t *Tree) Normalize(n *Node) (*Node, error) {
	out, _, err := t.Rewrite(n)
	if err != nil {
		return out, err
	}
	return canonicalize(out), nil
}

// NormalizeRoot normalizes the owned root and replaces it with the result.
// On error the root is left as it was, and the partial tree carried by a
// *NotConvergedError is a copy sharing no nodes with it.
func (t *Tree) NormalizeRoot() error {
	out, passes, err := t.Rewrite(t.root)
	if err != nil {
		var nc *NotConvergedError
		if errors.As(err, &nc) {
			nc.Partial = nc.Partial.Clone()
		}
		return err
	}
	t.root, t.stage = out, EquivalenceRewritten
	t.root, t.stage = canonicalChildren(t.root), ChildrenNormalized
	t.root, t.stage = orderOperands(t.root), CanonicalOrdered
	t.log.WithFields(logrus.Fields{
		"passes": passes,
		"nodes":  t.root.Size(),
		"depth":  t.root.Depth(),
	}).Debug("csg: root normalized")
	return nil
}

// canonicalize orders and flattens a valid, already rewritten subtree. It is
// idempotent.
func canonicalize(n *Node) *Node {
	return orderOperands(canonicalChildren(n))
}

// canonicalChildren canonicalizes both children of n, post-order.
func canonicalChildren(n *Node) *Node {
	if n.op == Leaf {
		return n
	}
	left := canonicalize(n.left)
	right := canonicalize(n.right)
	if left == n.left && right == n.right {
		return n
	}
	return op(n.op, left, right)
}

// orderOperands flattens a union or intersection whose children are already
// canonical into a left-leaning chain over its sorted operands. Differences
// and leaves are returned as they are.
func orderOperands(n *Node) *Node {
	if !n.op.Commutative() {
		return n
	}
	var operands []*Node
	operands = collectOperands(n.op, n.left, operands)
	operands = collectOperands(n.op, n.right, operands)
	sort.SliceStable(operands, func(i, j int) bool {
		return Compare(operands[i], operands[j]) < 0
	})

	acc := operands[0]
	for _, o := range operands[1:] {
		acc = op(n.op, acc, o)
	}
	return acc
}

// collectOperands appends the operands of a chain of o rooted at n.
func collectOperands(o Op, n *Node, dst []*Node) []*Node {
	if n.op != o {
		return append(dst, n)
	}
	dst = collectOperands(o, n.left, dst)
	return collectOperands(o, n.right, dst)
}
