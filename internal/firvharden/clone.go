package firvharden

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"
)

// valueMap is an injective mapping from original values to their clones
// (§3 of spec.md: "Value map"). Looking up a value that was defined outside
// the duplicated region — an argument, a constant, a global — simply misses;
// resolve treats a miss as "leave unremapped", which is the
// RF_IgnoreMissingLocals policy C3 specifies.
type valueMap map[value.Value]value.Value

func (vm valueMap) resolve(v value.Value) value.Value {
	if v == nil {
		return nil
	}
	if r, ok := vm[v]; ok {
		return r
	}
	return v
}

func (vm valueMap) resolveAll(vs []value.Value) []value.Value {
	if vs == nil {
		return nil
	}
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = vm.resolve(v)
	}
	return out
}

// blockMap is the dual of valueMap restricted to blocks (§3: "Block
// mapping"), used to rewrite terminator successors from originals to clones.
type blockMap map[*ir.Block]*ir.Block

// cloneShape creates, in cb, a structural copy of inst with operands copied
// verbatim from the original (not yet remapped — that happens in a second
// pass once every instruction in the duplicated region has been given a
// clone, exactly as the original pass's two-phase CloneBasicBlock /
// RemapInstruction split requires: a loop back-edge's Phi can reference a
// value defined later in block order than the Phi itself, so the clone of
// that value must already exist before any operand gets rewritten).
//
// github.com/llir/llvm does not provide a value-to-value cloning/remapping
// utility the way LLVM's own Cloning.h and ValueMapper do (spec.md treats
// that utility as an external collaborator; the Go binding we depend on
// simply doesn't expose an equivalent), so this switch is the bespoke
// replacement — enumerating the instruction kinds the pass needs to carry
// through a duplicated region.
func cloneShape(cb *ir.Block, inst ir.Instruction) (ir.Instruction, error) {
	switch in := inst.(type) {
	case *ir.InstAlloca:
		c := cb.NewAlloca(in.ElemType)
		c.NElems = in.NElems
		return c, nil
	case *ir.InstLoad:
		c := cb.NewLoad(in.ElemType, in.Src)
		c.Volatile = in.Volatile
		return c, nil
	case *ir.InstStore:
		c := cb.NewStore(in.Src, in.Dst)
		c.Volatile = in.Volatile
		return c, nil
	case *ir.InstGetElementPtr:
		c := cb.NewGetElementPtr(in.ElemType, in.Src, in.Indices...)
		c.InBounds = in.InBounds
		return c, nil
	case *ir.InstExtractValue:
		return cb.NewExtractValue(in.X, in.Indices...), nil
	case *ir.InstInsertValue:
		return cb.NewInsertValue(in.X, in.Elem, in.Indices...), nil
	case *ir.InstICmp:
		return cb.NewICmp(in.Pred, in.X, in.Y), nil
	case *ir.InstFCmp:
		return cb.NewFCmp(in.Pred, in.X, in.Y), nil
	case *ir.InstAnd:
		return cb.NewAnd(in.X, in.Y), nil
	case *ir.InstOr:
		return cb.NewOr(in.X, in.Y), nil
	case *ir.InstXor:
		return cb.NewXor(in.X, in.Y), nil
	case *ir.InstAdd:
		return cb.NewAdd(in.X, in.Y), nil
	case *ir.InstSub:
		return cb.NewSub(in.X, in.Y), nil
	case *ir.InstMul:
		return cb.NewMul(in.X, in.Y), nil
	case *ir.InstSDiv:
		return cb.NewSDiv(in.X, in.Y), nil
	case *ir.InstUDiv:
		return cb.NewUDiv(in.X, in.Y), nil
	case *ir.InstSRem:
		return cb.NewSRem(in.X, in.Y), nil
	case *ir.InstURem:
		return cb.NewURem(in.X, in.Y), nil
	case *ir.InstFAdd:
		return cb.NewFAdd(in.X, in.Y), nil
	case *ir.InstFSub:
		return cb.NewFSub(in.X, in.Y), nil
	case *ir.InstFMul:
		return cb.NewFMul(in.X, in.Y), nil
	case *ir.InstFDiv:
		return cb.NewFDiv(in.X, in.Y), nil
	case *ir.InstShl:
		return cb.NewShl(in.X, in.Y), nil
	case *ir.InstLShr:
		return cb.NewLShr(in.X, in.Y), nil
	case *ir.InstAShr:
		return cb.NewAShr(in.X, in.Y), nil
	case *ir.InstSelect:
		return cb.NewSelect(in.Cond, in.ValueTrue, in.ValueFalse), nil
	case *ir.InstCall:
		return cb.NewCall(in.Callee, in.Args...), nil
	case *ir.InstBitCast:
		return cb.NewBitCast(in.From, in.To), nil
	case *ir.InstTrunc:
		return cb.NewTrunc(in.From, in.To), nil
	case *ir.InstZExt:
		return cb.NewZExt(in.From, in.To), nil
	case *ir.InstSExt:
		return cb.NewSExt(in.From, in.To), nil
	case *ir.InstPtrToInt:
		return cb.NewPtrToInt(in.From, in.To), nil
	case *ir.InstIntToPtr:
		return cb.NewIntToPtr(in.From, in.To), nil
	case *ir.InstSIToFP:
		return cb.NewSIToFP(in.From, in.To), nil
	case *ir.InstUIToFP:
		return cb.NewUIToFP(in.From, in.To), nil
	case *ir.InstFPToSI:
		return cb.NewFPToSI(in.From, in.To), nil
	case *ir.InstFPToUI:
		return cb.NewFPToUI(in.From, in.To), nil
	case *ir.InstPhi:
		incs := make([]*ir.Incoming, len(in.Incs))
		for i, inc := range in.Incs {
			incs[i] = ir.NewIncoming(inc.X, inc.Pred.(*ir.Block))
		}
		return cb.NewPhi(incs...), nil
	default:
		return nil, fmt.Errorf("unsupported instruction kind %T in duplicated region", inst)
	}
}

// remapOperands rewrites clone's value operands through vm, in place. Block
// operands on terminators are handled separately by remapSuccessors, which
// uses the dual block mapping rather than vm.
func remapOperands(clone ir.Instruction, vm valueMap) error {
	switch c := clone.(type) {
	case *ir.InstAlloca:
		c.NElems = vm.resolve(c.NElems)
	case *ir.InstLoad:
		c.Src = vm.resolve(c.Src)
	case *ir.InstStore:
		c.Src = vm.resolve(c.Src)
		c.Dst = vm.resolve(c.Dst)
	case *ir.InstGetElementPtr:
		c.Src = vm.resolve(c.Src)
		c.Indices = vm.resolveAll(c.Indices)
	case *ir.InstExtractValue:
		c.X = vm.resolve(c.X)
	case *ir.InstInsertValue:
		c.X = vm.resolve(c.X)
		c.Elem = vm.resolve(c.Elem)
	case *ir.InstICmp:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstFCmp:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstAnd:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstOr:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstXor:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstAdd:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstSub:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstMul:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstSDiv:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstUDiv:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstSRem:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstURem:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstFAdd:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstFSub:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstFMul:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstFDiv:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstShl:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstLShr:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstAShr:
		c.X, c.Y = vm.resolve(c.X), vm.resolve(c.Y)
	case *ir.InstSelect:
		c.Cond = vm.resolve(c.Cond)
		c.ValueTrue, c.ValueFalse = vm.resolve(c.ValueTrue), vm.resolve(c.ValueFalse)
	case *ir.InstCall:
		c.Callee = vm.resolve(c.Callee)
		c.Args = vm.resolveAll(c.Args)
	case *ir.InstBitCast:
		c.From = vm.resolve(c.From)
	case *ir.InstTrunc:
		c.From = vm.resolve(c.From)
	case *ir.InstZExt:
		c.From = vm.resolve(c.From)
	case *ir.InstSExt:
		c.From = vm.resolve(c.From)
	case *ir.InstPtrToInt:
		c.From = vm.resolve(c.From)
	case *ir.InstIntToPtr:
		c.From = vm.resolve(c.From)
	case *ir.InstSIToFP:
		c.From = vm.resolve(c.From)
	case *ir.InstUIToFP:
		c.From = vm.resolve(c.From)
	case *ir.InstFPToSI:
		c.From = vm.resolve(c.From)
	case *ir.InstFPToUI:
		c.From = vm.resolve(c.From)
	case *ir.InstPhi:
		for _, inc := range c.Incs {
			inc.X = vm.resolve(inc.X)
		}
	default:
		return fmt.Errorf("unsupported instruction kind %T during operand remap", clone)
	}
	return nil
}

// remapPhiPreds rewrites a cloned Phi's incoming predecessor blocks through
// bm, separately from remapOperands, because Phi predecessors are block
// operands, not value operands.
func remapPhiPreds(clone ir.Instruction, bm blockMap) {
	phi, ok := clone.(*ir.InstPhi)
	if !ok {
		return
	}
	for _, inc := range phi.Incs {
		if mapped, ok := bm[inc.Pred.(*ir.Block)]; ok {
			inc.Pred = mapped
		}
	}
}

// cloneTerminatorShape creates, as cb's terminator, a structural copy of
// term with block operands still pointing at the *original* successors.
// remapSuccessors rewires them to clones once every block has one.
func cloneTerminatorShape(cb *ir.Block, term ir.Terminator) (ir.Terminator, error) {
	switch t := term.(type) {
	case *ir.TermRet:
		return cb.NewRet(t.X), nil
	case *ir.TermBr:
		return cb.NewBr(t.Target.(*ir.Block)), nil
	case *ir.TermCondBr:
		return cb.NewCondBr(t.Cond, t.TargetTrue.(*ir.Block), t.TargetFalse.(*ir.Block)), nil
	case *ir.TermSwitch:
		cases := make([]*ir.Case, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = ir.NewCase(c.X.(constant.Constant), c.Target.(*ir.Block))
		}
		return cb.NewSwitch(t.X, t.TargetDefault.(*ir.Block), cases...), nil
	case *ir.TermUnreachable:
		return cb.NewUnreachable(), nil
	default:
		return nil, fmt.Errorf("unsupported terminator kind %T in duplicated region", term)
	}
}

// remapSuccessors rewrites every successor slot of a cloned terminator from
// an original block to its clone via bm (§4.3: "for each successor slot of
// each branch terminator in a clone, look up the original successor in the
// block mapping and rewrite to its clone"). It also resolves the
// terminator's value operands (the branch condition, a switch selector,
// a return value) via vm. Absence of a block-mapping entry for a successor
// is a programming error, reported rather than silently left untouched.
func remapSuccessors(funcName string, term ir.Terminator, vm valueMap, bm blockMap) error {
	lookup := func(b *ir.Block) (*ir.Block, error) {
		mapped, ok := bm[b]
		if !ok {
			return b, internalf(funcName, "missing block-mapping entry for %q during terminator rewrite", b.LocalName)
		}
		return mapped, nil
	}

	switch t := term.(type) {
	case *ir.TermRet:
		t.X = vm.resolve(t.X)
		return nil
	case *ir.TermBr:
		mapped, err := lookup(t.Target.(*ir.Block))
		if err != nil {
			return err
		}
		t.Target = mapped
		return nil
	case *ir.TermCondBr:
		t.Cond = vm.resolve(t.Cond)
		trueB, err := lookup(t.TargetTrue.(*ir.Block))
		if err != nil {
			return err
		}
		falseB, err := lookup(t.TargetFalse.(*ir.Block))
		if err != nil {
			return err
		}
		t.TargetTrue, t.TargetFalse = trueB, falseB
		return nil
	case *ir.TermSwitch:
		t.X = vm.resolve(t.X)
		def, err := lookup(t.TargetDefault.(*ir.Block))
		if err != nil {
			return err
		}
		t.TargetDefault = def
		for _, c := range t.Cases {
			mapped, err := lookup(c.Target.(*ir.Block))
			if err != nil {
				return err
			}
			c.Target = mapped
		}
		return nil
	case *ir.TermUnreachable:
		return nil
	default:
		return fmt.Errorf("unsupported terminator kind %T during successor remap", term)
	}
}
