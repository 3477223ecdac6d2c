package csg

import (
	"fmt"
	"sort"
)

// Rule is a set-equivalence rewrite applied at a single node. Apply returns
// the replacement subtree and true when the rule matched, or n and false.
// A replacement must denote the same point set as n and must not share nodes
// with anything outside n; operands that appear twice in the result are
// cloned.
type Rule interface {
	Name() string
	Apply(n *Node) (*Node, bool)
}

// RuleFunc adapts a function to the Rule interface.
type RuleFunc struct {
	RuleName string
	Fn       func(n *Node) (*Node, bool)
}

// Name implements Rule.
func (r RuleFunc) Name() string { return r.RuleName }

// Apply implements Rule.
func (r RuleFunc) Apply(n *Node) (*Node, bool) { return r.Fn(n) }

// Rule names.
const (
	RuleDifferenceOfDifference   = "difference-of-difference"
	RuleDifferenceOfUnion        = "difference-of-union"
	RuleDifferenceOfIntersection = "difference-of-intersection"
	RuleCommutativeOrder         = "commutative-order"

	RuleDifferenceOfUnionChain     = "difference-of-union-chain"
	RuleIntersectionOverUnion      = "intersection-over-union"
	RuleIntersectionOverDifference = "intersection-over-difference"
	RuleUnionMinus                 = "union-minus"
)

// Presets.
const (
	PresetEquivalences  = "equivalences"
	PresetSumOfProducts = "sum-of-products"
)

var registry = map[string]Rule{
	RuleDifferenceOfDifference:     RuleFunc{RuleDifferenceOfDifference, differenceOfDifference},
	RuleDifferenceOfUnion:          RuleFunc{RuleDifferenceOfUnion, differenceOfUnion},
	RuleDifferenceOfIntersection:   RuleFunc{RuleDifferenceOfIntersection, differenceOfIntersection},
	RuleCommutativeOrder:           RuleFunc{RuleCommutativeOrder, commutativeOrder},
	RuleDifferenceOfUnionChain:     RuleFunc{RuleDifferenceOfUnionChain, differenceOfUnionChain},
	RuleIntersectionOverUnion:      RuleFunc{RuleIntersectionOverUnion, intersectionOverUnion},
	RuleIntersectionOverDifference: RuleFunc{RuleIntersectionOverDifference, intersectionOverDifference},
	RuleUnionMinus:                 RuleFunc{RuleUnionMinus, unionMinus},
}

// Rule order matters: at each node the first matching rule wins, and
// commutative-order comes last so that distribution sees operands in the
// position the rule was written for.
var presets = map[string][]string{
	PresetEquivalences: {
		RuleDifferenceOfDifference,
		RuleDifferenceOfUnion,
		RuleDifferenceOfIntersection,
		RuleCommutativeOrder,
	},
	PresetSumOfProducts: {
		RuleDifferenceOfDifference,
		RuleDifferenceOfUnionChain,
		RuleDifferenceOfIntersection,
		RuleUnionMinus,
		RuleIntersectionOverUnion,
		RuleIntersectionOverDifference,
		RuleCommutativeOrder,
	},
}

// LookupRule returns the built-in rule with the given name.
func LookupRule(name string) (Rule, error) {
	r, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown rewrite rule %q", name)
	}
	return r, nil
}

// RuleNames returns the names of all built-in rules, sorted.
func RuleNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the rules of a named preset in application order.
func Preset(name string) ([]Rule, error) {
	names, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown rule preset %q", name)
	}
	return lookupRules(names)
}

// DefaultRules returns the equivalences preset.
func DefaultRules() []Rule {
	rules, _ := Preset(PresetEquivalences)
	return rules
}

func lookupRules(names []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		r, err := LookupRule(name)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// op builds an operator node from children already known to be valid and
// disjoint.
func op(o Op, left, right *Node) *Node {
	return &Node{op: o, left: left, right: right}
}

// A - (B - C) → (A - B) ∪ (A ∩ C)
func differenceOfDifference(n *Node) (*Node, bool) {
	if n.op != Subtract || n.right.op != Subtract {
		return n, false
	}
	a, b, c := n.left, n.right.left, n.right.right
	return op(Add, op(Subtract, a, b), op(Intersect, a.Clone(), c)), true
}

// A - (B ∪ C) → (A - B) ∩ (A - C)
func differenceOfUnion(n *Node) (*Node, bool) {
	if n.op != Subtract || n.right.op != Add {
		return n, false
	}
	a, b, c := n.left, n.right.left, n.right.right
	return op(Intersect, op(Subtract, a, b), op(Subtract, a.Clone(), c)), true
}

// A - (B ∩ C) → (A - B) ∪ (A - C)
func differenceOfIntersection(n *Node) (*Node, bool) {
	if n.op != Subtract || n.right.op != Intersect {
		return n, false
	}
	a, b, c := n.left, n.right.left, n.right.right
	return op(Add, op(Subtract, a, b), op(Subtract, a.Clone(), c)), true
}

// commutativeOrder swaps the operands of a binary union or intersection
// that are out of order. Chains of the same operator are left to
// canonicalization, which orders the whole operand list at once.
func commutativeOrder(n *Node) (*Node, bool) {
	if !n.op.Commutative() || n.left.op == n.op || n.right.op == n.op {
		return n, false
	}
	if Compare(n.right, n.left) >= 0 {
		return n, false
	}
	return op(n.op, n.right, n.left), true
}

// X - (Y ∪ Z) → (X - Y) - Z
func differenceOfUnionChain(n *Node) (*Node, bool) {
	if n.op != Subtract || n.right.op != Add {
		return n, false
	}
	x, y, z := n.left, n.right.left, n.right.right
	return op(Subtract, op(Subtract, x, y), z), true
}

// X ∩ (Y ∪ Z) → (X ∩ Y) ∪ (X ∩ Z)
// (X ∪ Y) ∩ Z → (X ∩ Z) ∪ (Y ∩ Z)
func intersectionOverUnion(n *Node) (*Node, bool) {
	if n.op != Intersect {
		return n, false
	}
	if n.right.op == Add {
		x, y, z := n.left, n.right.left, n.right.right
		return op(Add, op(Intersect, x, y), op(Intersect, x.Clone(), z)), true
	}
	if n.left.op == Add {
		x, y, z := n.left.left, n.left.right, n.right
		return op(Add, op(Intersect, x, z), op(Intersect, y, z.Clone())), true
	}
	return n, false
}

// X ∩ (Y - Z) → (X ∩ Y) - Z
// (X - Y) ∩ Z → (X ∩ Z) - Y
func intersectionOverDifference(n *Node) (*Node, bool) {
	if n.op != Intersect {
		return n, false
	}
	if n.right.op == Subtract {
		x, y, z := n.left, n.right.left, n.right.right
		return op(Subtract, op(Intersect, x, y), z), true
	}
	if n.left.op == Subtract {
		x, y, z := n.left.left, n.left.right, n.right
		return op(Subtract, op(Intersect, x, z), y), true
	}
	return n, false
}

// (X ∪ Y) - Z → (X - Z) ∪ (Y - Z)
func unionMinus(n *Node) (*Node, bool) {
	if n.op != Subtract || n.left.op != Add {
		return n, false
	}
	x, y, z := n.left.left, n.left.right, n.right
	return op(Add, op(Subtract, x, z), op(Subtract, y, z.Clone())), true
}
