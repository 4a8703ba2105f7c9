package firvharden

import (
	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

var i8PtrType = types.NewPointer(types.I8)

const memcpyIntrinsicName = "llvm.memcpy.p0i8.p0i8.i64"

// createPrologue is C4's FirvPrologue: it becomes the new entry (inserted
// before StoreLoad) and allocates the two return-value slots.
func createPrologue(f *ir.Func, slotType types.Type, next *ir.Block) (*ir.Block, *ir.InstAlloca, *ir.InstAlloca) {
	pb := f.NewBlock("FirvPrologue")
	f.Blocks = append([]*ir.Block{pb}, f.Blocks[:len(f.Blocks)-1]...)

	slot1 := pb.NewAlloca(slotType)
	slot1.LocalName = "FirvSlot1"
	slot2 := pb.NewAlloca(slotType)
	slot2.LocalName = "FirvSlot2"
	pb.NewBr(next)

	return pb, slot1, slot2
}

// createInterlude is C4's FirvInterlude: an unconditional branch into the
// clone of what used to be the entry after StoreLoad, i.e. the first
// element of the clone list C3 produced.
func createInterlude(f *ir.Func, firstClone *ir.Block) *ir.Block {
	ib := f.NewBlock("FirvInterlude")
	ib.NewBr(firstClone)
	return ib
}

// createReturnBB is C4's ReturnBB, the function's unique exit. For a
// scalar/aggregate-by-value return it loads and returns Slot1; for sret it
// returns void. Both cases also volatile-load Slot2 purely to defeat
// dead-code elimination of the second copy — see DESIGN.md's writeup of
// spec.md's open question 2.
func createReturnBB(f *ir.Func, slotType types.Type, sret *ir.Param, slot1, slot2 value.Value) *ir.Block {
	rb := f.NewBlock("ReturnBB")

	v1 := rb.NewLoad(slotType, slot1)
	v1.Volatile = true
	v1.LocalName = "RetVal1"
	v2 := rb.NewLoad(slotType, slot2)
	v2.Volatile = true
	v2.LocalName = "RetVal2"

	if sret != nil {
		rb.NewRet(nil)
		return rb
	}
	rb.NewRet(v1)
	return rb
}

// rewriteReturns is C4's ReplaceReturns: every return terminator among
// blocks is replaced by a store (or, for sret, a memcpy from the sret
// buffer) into slot followed by an unconditional branch to next, preserving
// the original return terminator's debug location on the new branch.
func rewriteReturns(guard *ModuleGuard, funcName string, f *ir.Func, blocks []*ir.Block, slot value.Value, next *ir.Block, sret *ir.Param, sretType types.Type) error {
	for _, b := range blocks {
		ret, ok := b.Term.(*ir.TermRet)
		if !ok {
			continue
		}

		if sret != nil {
			size, err := storeSize(sretType)
			if err != nil {
				return internalf(funcName, "computing sret buffer size: %v", err)
			}
			n, err := safecast.Conv[int64](size)
			if err != nil {
				return internalf(funcName, "sret buffer size %d overflows int64: %v", size, err)
			}
			dst := b.NewBitCast(slot, i8PtrType)
			src := b.NewBitCast(sret, i8PtrType)
			memcpyFn := declareIntrinsic(guard, f.Parent, memcpyIntrinsicName, types.Void, i8PtrType, i8PtrType, types.I64, types.I1)
			b.NewCall(memcpyFn, dst, src, constant.NewInt(types.I64, n), constant.NewBool(false))
		} else {
			store := b.NewStore(ret.X, slot)
			store.Volatile = true
		}

		br := b.NewBr(next)
		copyMetadata(ret, br)
	}
	return nil
}
