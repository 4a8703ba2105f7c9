package firvharden

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// insertStoreLoad is C2: it prepends a new "StoreLoad" block to f and, for
// every argument, spills it to a stack slot and reloads it, replacing every
// use of the argument outside StoreLoad with the reloaded value. The
// duplicated body below shares the function's incoming argument registers,
// so forcing both copies to observe arguments through a committed memory
// round-trip means a transient fault that perturbs an argument register
// after entry can't desynchronize the two runs from a shared, clean input.
func insertStoreLoad(funcName string, f *ir.Func, diag Diagnostics) (*ir.Block, error) {
	oldEntry := f.Blocks[0]

	sl := f.NewBlock("StoreLoad")
	f.Blocks = append([]*ir.Block{sl}, f.Blocks[:len(f.Blocks)-1]...)

	rest := f.Blocks[1:]

	for _, arg := range f.Params {
		diag.Warnf("rematerializing argument %s %s through memory", arg.Type(), arg.LocalName)
		slot := sl.NewAlloca(arg.Type())
		slot.LocalName = arg.LocalName + ".st"
		store := sl.NewStore(arg, slot)
		store.Volatile = true
		reloaded := sl.NewLoad(arg.Type(), slot)
		reloaded.Volatile = true

		if err := replaceArgUses(funcName, rest, arg, reloaded); err != nil {
			return nil, err
		}
	}

	// StoreLoad must be a well-formed block, terminator included, before it
	// gets swept into the originals snapshot the caller takes right after
	// this returns: duplicateCFG clones every block in that snapshot,
	// StoreLoad among them.
	sl.NewBr(oldEntry)

	return sl, nil
}

// replaceArgUses rewrites every occurrence of arg in blocks (which must not
// include StoreLoad itself) with replacement, covering both instruction
// operands and terminator value operands. It deliberately does not touch
// terminator successor blocks — arguments are never block operands.
func replaceArgUses(funcName string, blocks []*ir.Block, arg *ir.Param, replacement value.Value) error {
	vm := valueMap{arg: replacement}
	for _, b := range blocks {
		for _, inst := range b.Insts {
			if err := remapOperands(inst, vm); err != nil {
				return internalf(funcName, "%v", err)
			}
		}
		if b.Term != nil {
			if err := replaceTermValueOperands(funcName, b.Term, vm); err != nil {
				return err
			}
		}
	}
	return nil
}

// replaceTermValueOperands rewrites only the value operands of term (not
// its successor blocks) through vm.
func replaceTermValueOperands(funcName string, term ir.Terminator, vm valueMap) error {
	switch t := term.(type) {
	case *ir.TermRet:
		t.X = vm.resolve(t.X)
	case *ir.TermCondBr:
		t.Cond = vm.resolve(t.Cond)
	case *ir.TermSwitch:
		t.X = vm.resolve(t.X)
	case *ir.TermBr, *ir.TermUnreachable:
		// no value operands
	default:
		return internalf(funcName, "unsupported terminator kind %T", term)
	}
	return nil
}
