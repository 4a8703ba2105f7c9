package firvharden

import (
	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/flattte/firv-rust-llvm-project/internal/irattr"
	"github.com/flattte/firv-rust-llvm-project/internal/passconfig"
)

// compareReturnValue is C5: it emits, into cb, typed IR comparing the two
// values pointed to by ptr1/ptr2 (both pointers to t) for bit-exact
// equality, recursing through aggregates, and returns the final i1.
//
// Both the sret and the non-sret path hand this function *pointers*, never
// a loaded aggregate: the original source passed slot pointers into the
// struct comparator for sret but a loaded aggregate for non-sret (an
// inconsistency noted as a possibly-buggy source behavior). Normalizing to
// always recurse over pointers — GEP to a leaf, then load — works
// uniformly for both calling conventions, so that's what this does; see
// DESIGN.md for the open-question writeup.
//
// The only volatile loads this function issues are the top-level scalar
// loads from the two slots themselves (matching the original pass's
// CreateSlotCheck); loads of a leaf scalar reached by recursing through a
// struct/array are ordinary loads, matching the original's
// CompareArrayElements/CompareStructFields.
func compareReturnValue(funcName string, cb *ir.Block, t types.Type, ptr1, ptr2 value.Value, cfg passconfig.Config, diag Diagnostics) (value.Value, error) {
	switch irattr.Classify(t) {
	case irattr.ShapeInteger:
		v1 := cb.NewLoad(t, ptr1)
		v1.Volatile = true
		v2 := cb.NewLoad(t, ptr2)
		v2.Volatile = true
		return cb.NewICmp(enum.IPredEQ, v1, v2), nil
	case irattr.ShapeFloat:
		v1 := cb.NewLoad(t, ptr1)
		v1.Volatile = true
		v2 := cb.NewLoad(t, ptr2)
		v2.Volatile = true
		// Ordered equality: two runs that both produce NaN register as
		// unequal. Documented policy, not a bug — see spec.md §4.5.
		return cb.NewFCmp(enum.FPredOEQ, v1, v2), nil
	case irattr.ShapeStruct, irattr.ShapeArray:
		return compareAggregate(funcName, cb, t, ptr1, ptr2, cfg, diag, 1)
	default:
		return nil, internalf(funcName, "unsupported return type %s reached comparator synthesis after the gate accepted it", t)
	}
}

func compareAggregate(funcName string, cb *ir.Block, t types.Type, ptr1, ptr2 value.Value, cfg passconfig.Config, diag Diagnostics, depth int) (value.Value, error) {
	if cfg.MaxCompareDepth > 0 && depth > cfg.MaxCompareDepth {
		return nil, internalf(funcName, "comparator recursion exceeded max depth %d for type %s; the C1 gate should have declined this type before any mutation", cfg.MaxCompareDepth, t)
	}

	switch shape := irattr.Classify(t); shape {
	case irattr.ShapeStruct:
		st := t.(*types.StructType)
		diag.Warnf("comparing %s at depth %d", st, depth)
		acc := value.Value(constant.NewBool(true))
		zero := constant.NewInt(types.I32, 0)
		for i, field := range st.Fields {
			idx, err := safecast.Conv[int64](i)
			if err != nil {
				return nil, internalf(funcName, "field index %d overflows int64: %v", i, err)
			}
			fieldIdx := constant.NewInt(types.I32, idx)
			fp1 := cb.NewGetElementPtr(t, ptr1, zero, fieldIdx)
			fp2 := cb.NewGetElementPtr(t, ptr2, zero, fieldIdx)
			fieldEq, err := compareLeafOrAggregate(funcName, cb, field, fp1, fp2, cfg, diag, depth+1)
			if err != nil {
				return nil, err
			}
			acc = cb.NewAnd(acc, fieldEq)
		}
		return acc, nil
	case irattr.ShapeArray:
		at := t.(*types.ArrayType)
		diag.Warnf("comparing %s at depth %d", at, depth)
		acc := value.Value(constant.NewBool(true))
		zero := constant.NewInt(types.I32, 0)
		length, err := safecast.Conv[int64](at.Len)
		if err != nil {
			return nil, internalf(funcName, "array length %d overflows int64: %v", at.Len, err)
		}
		for i := int64(0); i < length; i++ {
			elemIdx := constant.NewInt(types.I32, i)
			ep1 := cb.NewGetElementPtr(t, ptr1, zero, elemIdx)
			ep2 := cb.NewGetElementPtr(t, ptr2, zero, elemIdx)
			elemEq, err := compareLeafOrAggregate(funcName, cb, at.ElemType, ep1, ep2, cfg, diag, depth+1)
			if err != nil {
				return nil, err
			}
			acc = cb.NewAnd(acc, elemEq)
		}
		return acc, nil
	default:
		return nil, internalf(funcName, "unsupported aggregate type %s reached comparator synthesis after the gate accepted it", t)
	}
}

// compareLeafOrAggregate loads+compares a scalar leaf in place, or recurses
// further for a nested struct/array, given a pointer to that leaf/aggregate.
func compareLeafOrAggregate(funcName string, cb *ir.Block, t types.Type, ptr1, ptr2 value.Value, cfg passconfig.Config, diag Diagnostics, depth int) (value.Value, error) {
	switch irattr.Classify(t) {
	case irattr.ShapeInteger:
		v1, v2 := cb.NewLoad(t, ptr1), cb.NewLoad(t, ptr2)
		return cb.NewICmp(enum.IPredEQ, v1, v2), nil
	case irattr.ShapeFloat:
		v1, v2 := cb.NewLoad(t, ptr1), cb.NewLoad(t, ptr2)
		return cb.NewFCmp(enum.FPredOEQ, v1, v2), nil
	case irattr.ShapeStruct, irattr.ShapeArray:
		return compareAggregate(funcName, cb, t, ptr1, ptr2, cfg, diag, depth)
	default:
		return nil, internalf(funcName, "unsupported leaf type %s reached comparator synthesis after the gate accepted it", t)
	}
}
