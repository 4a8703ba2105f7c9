package firvharden

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/llir/llvm/ir/types"
)

// storeSize is a minimal stand-in for the host's target data layout
// (spec.md treats the real one as an external collaborator; without a full
// TargetMachine behind this Go rewrite, the pass computes byte sizes itself
// for exactly the shapes the eligibility matrix allows). It intentionally
// ignores alignment padding between struct fields — a simplification
// recorded in DESIGN.md — since the only consumer is the sret memcpy size,
// which only needs to be large enough to round-trip every byte the function
// itself can observe through loads/stores of the same type.
func storeSize(t types.Type) (uint64, error) {
	switch ty := t.(type) {
	case *types.IntType:
		bits, err := safecast.Conv[uint64](ty.BitSize)
		if err != nil {
			return 0, fmt.Errorf("storeSize: %w", err)
		}
		return (bits + 7) / 8, nil
	case *types.FloatType:
		switch ty.Kind {
		case types.FloatKindHalf:
			return 2, nil
		case types.FloatKindFloat:
			return 4, nil
		case types.FloatKindDouble:
			return 8, nil
		case types.FloatKindX86_FP80:
			return 10, nil
		case types.FloatKindFP128, types.FloatKindPPC_FP128:
			return 16, nil
		default:
			return 0, fmt.Errorf("storeSize: unsupported float kind %v", ty.Kind)
		}
	case *types.StructType:
		var total uint64
		for _, field := range ty.Fields {
			sz, err := storeSize(field)
			if err != nil {
				return 0, err
			}
			total += sz
		}
		return total, nil
	case *types.ArrayType:
		elemSz, err := storeSize(ty.ElemType)
		if err != nil {
			return 0, err
		}
		length, err := safecast.Conv[uint64](ty.Len)
		if err != nil {
			return 0, fmt.Errorf("storeSize: %w", err)
		}
		return elemSz * length, nil
	default:
		return 0, fmt.Errorf("storeSize: unsupported type %s", t)
	}
}
