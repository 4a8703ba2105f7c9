package irattr

import "github.com/llir/llvm/ir/types"

// Shape is the tagged-variant classification of a return type used by both
// the attribute/type gate (C1) and the structural equality comparator (C5).
// Reusing one predicate for both is what keeps the comparator from ever
// reaching an unsupported leaf type after the gate has already accepted the
// function (see the open question this resolves in DESIGN.md).
type Shape int

const (
	// ShapeUnsupported covers pointers, vectors, and anything else the pass
	// declines to harden.
	ShapeUnsupported Shape = iota
	ShapeInteger
	ShapeFloat
	ShapeStruct
	ShapeArray
)

// Classify maps an IR type to its comparison-strategy shape per the
// eligibility matrix.
func Classify(t types.Type) Shape {
	switch t.(type) {
	case *types.IntType:
		return ShapeInteger
	case *types.FloatType:
		return ShapeFloat
	case *types.StructType:
		return ShapeStruct
	case *types.ArrayType:
		return ShapeArray
	default:
		return ShapeUnsupported
	}
}

// Eligible walks t recursively and reports whether every leaf is a
// supported scalar, stopping at maxDepth to bound the recursion the
// comparator (C5) would otherwise perform. maxDepth <= 0 means unbounded.
//
// This is the single source of truth for return-type eligibility: the C1
// gate calls it before any mutation happens, and C5 never needs to decline
// mid-synthesis because C1 already proved every leaf is reachable and
// supported.
func Eligible(t types.Type, maxDepth int) bool {
	return eligible(t, maxDepth, 0)
}

func eligible(t types.Type, maxDepth, depth int) bool {
	if maxDepth > 0 && depth > maxDepth {
		return false
	}
	switch shape := Classify(t); shape {
	case ShapeInteger, ShapeFloat:
		return true
	case ShapeStruct:
		st := t.(*types.StructType)
		for _, field := range st.Fields {
			if !eligible(field, maxDepth, depth+1) {
				return false
			}
		}
		return true
	case ShapeArray:
		at := t.(*types.ArrayType)
		return eligible(at.ElemType, maxDepth, depth+1)
	default:
		return false
	}
}
