package firvharden

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// duplicateCFG is C3: it clones every block in originals, in iteration
// order, into new blocks appended to f, then remaps operands and rewires
// terminator successors so the clone is a self-contained copy of the
// duplicated region. It returns the clones in the same order as originals
// and the value/block maps built along the way (vm maps each original
// instruction to its clone, bm each original block to its clone). Run only
// uses the clone list; FirvInterlude targets clones[0].
func duplicateCFG(funcName string, f *ir.Func, originals []*ir.Block) (clones []*ir.Block, vm valueMap, bm blockMap, err error) {
	bm = make(blockMap, len(originals))
	clones = make([]*ir.Block, len(originals))
	for i, ob := range originals {
		cb := f.NewBlock(ob.LocalName + ".cl")
		bm[ob] = cb
		clones[i] = cb
	}

	vm = make(valueMap)

	// Phase 1: shape-clone every instruction and terminator with operands
	// still pointing at originals, while every clone gets recorded in vm.
	// This must complete across *all* blocks before phase 2 remaps any
	// operand, because a loop header's Phi can reference a value the loop
	// body defines later in block order (see clone.go's cloneShape doc).
	for i, ob := range originals {
		cb := clones[i]
		for _, inst := range ob.Insts {
			clone, cerr := cloneShape(cb, inst)
			if cerr != nil {
				return nil, nil, nil, internalf(funcName, "%v", cerr)
			}
			copyMetadata(inst, clone)
			if ov, ok := inst.(value.Value); ok {
				if cv, ok := clone.(value.Value); ok {
					vm[ov] = cv
				}
			}
		}
		if ob.Term != nil {
			cterm, cerr := cloneTerminatorShape(cb, ob.Term)
			if cerr != nil {
				return nil, nil, nil, internalf(funcName, "%v", cerr)
			}
			copyMetadata(ob.Term, cterm)
		}
	}

	// Phase 2: now that vm/bm cover the whole duplicated region, remap
	// every clone's operands and rewire every clone's terminator successors
	// to point at clones rather than originals.
	for _, cb := range clones {
		for _, inst := range cb.Insts {
			if rerr := remapOperands(inst, vm); rerr != nil {
				return nil, nil, nil, internalf(funcName, "%v", rerr)
			}
			remapPhiPreds(inst, bm)
		}
		if cb.Term != nil {
			if rerr := remapSuccessors(funcName, cb.Term, vm, bm); rerr != nil {
				return nil, nil, nil, rerr
			}
		}
	}

	return clones, vm, bm, nil
}
