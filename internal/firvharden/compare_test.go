package firvharden

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flattte/firv-rust-llvm-project/internal/passconfig"
)

func newTestBlock(t *testing.T) (*ir.Func, *ir.Block) {
	m := ir.NewModule()
	f := m.NewFunc("cmp", types.Void)
	b := f.NewBlock("entry")
	return f, b
}

func TestCompareReturnValue_Integer(t *testing.T) {
	_, b := newTestBlock(t)
	ptr1 := b.NewAlloca(types.I32)
	ptr2 := b.NewAlloca(types.I32)

	eq, err := compareReturnValue("cmp", b, types.I32, ptr1, ptr2, passconfig.Default(), &recordingDiagnostics{})
	require.NoError(t, err)

	icmp, ok := eq.(*ir.InstICmp)
	require.True(t, ok)
	assert.Equal(t, enum.IPredEQ, icmp.Pred)
}

func TestCompareReturnValue_Float_UsesOrderedEquality(t *testing.T) {
	_, b := newTestBlock(t)
	ptr1 := b.NewAlloca(types.Double)
	ptr2 := b.NewAlloca(types.Double)

	eq, err := compareReturnValue("cmp", b, types.Double, ptr1, ptr2, passconfig.Default(), &recordingDiagnostics{})
	require.NoError(t, err)

	fcmp, ok := eq.(*ir.InstFCmp)
	require.True(t, ok)
	assert.Equal(t, enum.FPredOEQ, fcmp.Pred, "NaN must compare unequal, not equal, between the two runs")
}

func TestCompareReturnValue_Struct_RecursesPerField(t *testing.T) {
	_, b := newTestBlock(t)
	st := types.NewStruct(types.I32, types.Double)
	ptr1 := b.NewAlloca(st)
	ptr2 := b.NewAlloca(st)

	_, err := compareReturnValue("cmp", b, st, ptr1, ptr2, passconfig.Default(), &recordingDiagnostics{})
	require.NoError(t, err)

	// 2 fields * (2 GEPs + 2 loads + 1 icmp/fcmp) + 2 allocas + 1 "and" per
	// field accumulation, plus the constant true accumulator never emits an
	// instruction. At minimum every field must have produced a GEP into
	// both pointers.
	var gepCount int
	for _, inst := range b.Insts {
		if _, ok := inst.(*ir.InstGetElementPtr); ok {
			gepCount++
		}
	}
	assert.Equal(t, 4, gepCount, "2 fields x 2 pointers = 4 GEPs")
}

func TestCompareReturnValue_Array_RecursesPerElement(t *testing.T) {
	_, b := newTestBlock(t)
	at := types.NewArray(3, types.I32)
	ptr1 := b.NewAlloca(at)
	ptr2 := b.NewAlloca(at)

	_, err := compareReturnValue("cmp", b, at, ptr1, ptr2, passconfig.Default(), &recordingDiagnostics{})
	require.NoError(t, err)

	var gepCount int
	for _, inst := range b.Insts {
		if _, ok := inst.(*ir.InstGetElementPtr); ok {
			gepCount++
		}
	}
	assert.Equal(t, 6, gepCount, "3 elements x 2 pointers = 6 GEPs")
}

func TestCompareReturnValue_Unsupported(t *testing.T) {
	_, b := newTestBlock(t)
	ptrT := types.NewPointer(types.I8)
	ptr1 := b.NewAlloca(ptrT)
	ptr2 := b.NewAlloca(ptrT)

	_, err := compareReturnValue("cmp", b, ptrT, ptr1, ptr2, passconfig.Default(), &recordingDiagnostics{})
	require.Error(t, err)
	var internalErr *InternalError
	assert.ErrorAs(t, err, &internalErr)
}

func TestCompareAggregate_RecursionDepthExceeded(t *testing.T) {
	_, b := newTestBlock(t)
	st := types.NewStruct(types.I32)
	ptr1 := b.NewAlloca(st)
	ptr2 := b.NewAlloca(st)

	cfg := passconfig.Default()
	cfg.MaxCompareDepth = 1
	_, err := compareAggregate("cmp", b, st, ptr1, ptr2, cfg, &recordingDiagnostics{}, 2)
	require.Error(t, err, "depth 2 exceeds MaxCompareDepth 1")
	var internalErr *InternalError
	assert.ErrorAs(t, err, &internalErr)

	cfg.MaxCompareDepth = 0
	_, err = compareAggregate("cmp", b, st, ptr1, ptr2, cfg, &recordingDiagnostics{}, 100)
	require.NoError(t, err, "MaxCompareDepth <= 0 means unbounded")
}
