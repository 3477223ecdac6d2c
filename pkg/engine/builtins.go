package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/csgtree/pkg/csg"
	"github.com/chazu/csgtree/pkg/kernel"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites DSL source before passing it to zygomys. It
// performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: left-leg -> left_leg
//     zygomys does not allow hyphens in identifiers (it reads them as the
//     subtraction operator). Kebab-case identifiers are converted to
//     underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNode wraps a CSG subtree so it can be passed between builtins.
//
// Trees are singly owned, but a Lisp variable may be referenced any number
// of times. The first consumer takes the node itself; later consumers get a
// deep copy, so no two parents ever share a child.
type sexpNode struct {
	node *csg.Node
	used bool
}

func (s *sexpNode) SexpString(ps *zygo.PrintState) string {
	return s.node.String()
}
func (s *sexpNode) Type() *zygo.RegisteredType { return nil }

// take hands out the wrapped node, cloning it on every call after the first.
func (s *sexpNode) take() *csg.Node {
	if s.used {
		return s.node.Clone()
	}
	s.used = true
	return s.node
}

// sexpVec3 wraps a 3-vector.
type sexpVec3 struct {
	vec [3]float64
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// unknownKeyword reports the first keyword not present in allowed.
func (a kwArgs) unknownKeyword(allowed ...string) error {
	for k := range a.kw {
		found := false
		for _, name := range allowed {
			if k == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown keyword :%s", k)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a 3-vector from a sexpVec3.
func toVec3(s zygo.Sexp) ([3]float64, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return [3]float64{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// operands collects the solids passed to a boolean builtin. A list or array
// argument is spliced in place, so (union (list a b c)) equals (union a b c).
func operands(args []zygo.Sexp) ([]*sexpNode, error) {
	var out []*sexpNode
	for i, arg := range args {
		switch v := arg.(type) {
		case *sexpNode:
			out = append(out, v)
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(v)
			if err != nil {
				return nil, err
			}
			inner, err := operands(items)
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		default:
			return nil, fmt.Errorf("operand %d: expected solid, got %T (%s)", i+1, arg, arg.SexpString(nil))
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Shape registry
// ---------------------------------------------------------------------------

// shapeRegistry tracks every shape named during one evaluation. A name may be
// referenced repeatedly but must always denote the same shape, since canonical
// ordering identifies shapes by name alone.
type shapeRegistry struct {
	shapes map[csg.ShapeID]csg.Shape
}

func newShapeRegistry() *shapeRegistry {
	return &shapeRegistry{shapes: make(map[csg.ShapeID]csg.Shape)}
}

// leaf returns a fresh leaf for s after checking it against earlier uses of
// the same name.
func (r *shapeRegistry) leaf(s csg.Shape) (*sexpNode, error) {
	if s.ID() == "" {
		return nil, fmt.Errorf("shape name must not be empty")
	}
	if prev, ok := r.shapes[s.ID()]; ok && prev != s {
		return nil, fmt.Errorf("shape %q redefined with different parameters", s.ID())
	}
	r.shapes[s.ID()] = s
	n, err := csg.NewLeaf(s)
	if err != nil {
		return nil, err
	}
	return &sexpNode{node: n}, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the CSG DSL builtins into a zygomys environment.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp) {
	reg := newShapeRegistry()

	// -----------------------------------------------------------------------
	// (shape "a")
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires exactly 1 argument, got %d", len(args))
		}
		id, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		n, err := reg.leaf(csg.Token(id))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: %w", err)
		}
		return n, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		var v [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (box "name" :size (vec3 10 20 30) :at (vec3 0 0 0))
	// (sphere "name" :radius 5 :at (vec3 0 0 0))
	// (cylinder "name" :height 10 :radius 2 :at (vec3 0 0 0))
	// -----------------------------------------------------------------------
	primitive := func(kind kernel.PrimitiveKind, keywords ...string) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires a name as its only positional argument", kind)
			}
			if err := pa.unknownKeyword(append(keywords, "at")...); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
			}
			primName, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: name: %w", kind, err)
			}

			p := kernel.Primitive{Name: primName, Kind: kind}
			if v, ok := pa.kw["size"]; ok {
				if p.Size, err = toVec3(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: size: %w", kind, err)
				}
			}
			if v, ok := pa.kw["radius"]; ok {
				if p.Radius, err = toFloat64(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: radius: %w", kind, err)
				}
			}
			if v, ok := pa.kw["height"]; ok {
				if p.Height, err = toFloat64(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: height: %w", kind, err)
				}
			}
			if v, ok := pa.kw["at"]; ok {
				if p.At, err = toVec3(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: at: %w", kind, err)
				}
			}
			if err := p.Validate(); err != nil {
				return zygo.SexpNull, err
			}

			n, err := reg.leaf(p)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
			}
			return n, nil
		}
	}
	env.AddFunction("box", primitive(kernel.PrimBox, "size"))
	env.AddFunction("sphere", primitive(kernel.PrimSphere, "radius"))
	env.AddFunction("cylinder", primitive(kernel.PrimCylinder, "height", "radius"))

	// -----------------------------------------------------------------------
	// (union a b ...), (intersection a b ...), (difference a b ...)
	//
	// Operands fold to the left: (difference a b c) is (a - b) - c.
	// -----------------------------------------------------------------------
	boolean := func(op csg.Op) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			ops, err := operands(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			if len(ops) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least 2 operands, got %d", op, len(ops))
			}

			acc := ops[0].take()
			for _, o := range ops[1:] {
				acc, err = csg.NewOp(op, acc, o.take())
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
				}
			}
			return &sexpNode{node: acc}, nil
		}
	}
	env.AddFunction("union", boolean(csg.Add))
	env.AddFunction("intersection", boolean(csg.Intersect))
	env.AddFunction("difference", boolean(csg.Subtract))
}
