package csg

import (
	"fmt"
	"math/rand"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func leaf(id string) *Node { return MustLeaf(Token(id)) }

func add(l, r *Node) *Node { return MustOp(Add, l, r) }
func sub(l, r *Node) *Node { return MustOp(Subtract, l, r) }
func isect(l, r *Node) *Node { return MustOp(Intersect, l, r) }

// point is a cell of the sampling grid used as a membership oracle.
type point struct{ x, y int }

const gridSize = 8

// pointSet is a test shape defined as an explicit finite set of grid cells.
type pointSet struct {
	id  string
	pts map[point]bool
}

func (p *pointSet) ID() ShapeID { return ShapeID(p.id) }

// randomPointSet fills roughly half of the grid.
func randomPointSet(rng *rand.Rand, id string) *pointSet {
	ps := &pointSet{id: id, pts: make(map[point]bool)}
	for x := 0; x < gridSize; x++ {
		for y := 0; y < gridSize; y++ {
			if rng.Intn(2) == 0 {
				ps.pts[point{x, y}] = true
			}
		}
	}
	return ps
}

// shapePool builds n point-set shapes with ids s0..s(n-1).
func shapePool(rng *rand.Rand, n int) []*pointSet {
	pool := make([]*pointSet, n)
	for i := range pool {
		pool[i] = randomPointSet(rng, fmt.Sprintf("s%d", i))
	}
	return pool
}

// randomTree builds a tree of the given depth over shapes from pool. Leaves
// may repeat shapes but never nodes.
func randomTree(rng *rand.Rand, pool []*pointSet, depth int) *Node {
	if depth == 0 || rng.Intn(4) == 0 {
		return MustLeaf(pool[rng.Intn(len(pool))])
	}
	ops := []Op{Add, Intersect, Subtract}
	return MustOp(ops[rng.Intn(len(ops))],
		randomTree(rng, pool, depth-1),
		randomTree(rng, pool, depth-1))
}

// assertSameSet fails unless a and b agree on membership for every grid cell.
func assertSameSet(t *testing.T, a, b *Node) {
	t.Helper()
	for x := 0; x < gridSize; x++ {
		for y := 0; y < gridSize; y++ {
			p := point{x, y}
			in := func(s Shape) bool { return s.(*pointSet).pts[p] }
			if ma, mb := Member(a, in), Member(b, in); ma != mb {
				t.Fatalf("membership differs at %v: %s -> %v, %s -> %v", p, a, ma, b, mb)
			}
		}
	}
}

func mustTree(t *testing.T, root *Node, opts ...Option) *Tree {
	t.Helper()
	tr, err := NewTree(root, opts...)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	return tr
}
