package firvharden

import (
	"sync"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/metadata"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/flattte/firv-rust-llvm-project/internal/passconfig"
)

// trapIntrinsicName is the only intrinsic this pass ever emits a call to
// (§6 of spec.md: "Intrinsic surface... emits calls to trap only").
const trapIntrinsicName = "llvm.trap"

// ModuleGuard serializes the handful of module-level mutations this pass
// performs (lazily declaring an intrinsic) when Run is fanned out across a
// module's functions concurrently, per spec.md §5's "safe to run in a
// compilation pipeline that parallelizes across functions provided each
// function's IR is owned by one thread" — everything about f is
// single-owner, but f.Parent is shared with every other goroutine hardening
// a sibling function in the same module. A nil guard is fine for
// single-threaded callers (tests, a sequential CLI run).
type ModuleGuard struct {
	mu sync.Mutex
}

// NewModuleGuard returns a guard for fanning hardening out across a single
// module's functions.
func NewModuleGuard() *ModuleGuard {
	return &ModuleGuard{}
}

func (g *ModuleGuard) lock() {
	if g != nil {
		g.mu.Lock()
	}
}

func (g *ModuleGuard) unlock() {
	if g != nil {
		g.mu.Unlock()
	}
}

// declareIntrinsic finds or lazily declares name in m, matching §5's
// "intrinsic lookup may lazily declare a symbol, which is idempotent."
func declareIntrinsic(guard *ModuleGuard, m *ir.Module, name string, retType types.Type, paramTypes ...types.Type) *ir.Func {
	guard.lock()
	defer guard.unlock()

	for _, f := range m.Funcs {
		if f.GlobalName == name {
			return f
		}
	}
	params := make([]*ir.Param, len(paramTypes))
	for i, pt := range paramTypes {
		params[i] = ir.NewParam("", pt)
	}
	return m.NewFunc(name, retType, params...)
}

// createFailBlock is C6's FailBB: a trap call followed by unreachable. All
// failed equality checks funnel here.
func createFailBlock(guard *ModuleGuard, f *ir.Func) *ir.Block {
	trapFn := declareIntrinsic(guard, f.Parent, trapIntrinsicName, types.Void)
	fb := f.NewBlock("FailBB")
	fb.NewCall(trapFn)
	fb.NewUnreachable()
	return fb
}

// attachBranchWeights marks br's successors with LLVM's !prof
// branch_weights metadata, biased per cfg toward the equal-values branch so
// downstream code layout keeps the fail path cold (§4.6, invariant 6 of
// spec.md §8).
func attachBranchWeights(br *ir.TermCondBr, cfg passconfig.Config) {
	br.Metadata = append(br.Metadata, &metadata.Attachment{
		Name: "prof",
		Node: &metadata.Tuple{
			Fields: []metadata.Field{
				&metadata.String{Value: "branch_weights"},
				metadata.IntLit(cfg.BranchWeightTrue),
				metadata.IntLit(cfg.BranchWeightFalse),
			},
		},
	})
}

// createSlotCheck emits, into thisBB, one structural-equality check of the
// two slots and a conditional branch: to nextBB when equal, to failBB
// otherwise, carrying the cold-path branch weight.
func createSlotCheck(funcName string, thisBB, nextBB, failBB *ir.Block, t types.Type, ptr1, ptr2 value.Value, cfg passconfig.Config, diag Diagnostics) error {
	eq, err := compareReturnValue(funcName, thisBB, t, ptr1, ptr2, cfg, diag)
	if err != nil {
		return err
	}
	br := thisBB.NewCondBr(eq, nextBB, failBB)
	attachBranchWeights(br, cfg)
	return nil
}

// createEpilogue builds the two sequential, redundant checks of §4.6: a
// single-bit fault flipping one branch's outcome is still caught by the
// other. Returns the first epilogue block, the entry point FirvInterlude's
// successors eventually reach via the two copies' rewritten returns.
func createEpilogue(guard *ModuleGuard, funcName string, f *ir.Func, returnBB *ir.Block, t types.Type, ptr1, ptr2 value.Value, cfg passconfig.Config, diag Diagnostics) (*ir.Block, error) {
	failBB := createFailBlock(guard, f)
	epilogue1 := f.NewBlock("FirvEpilogue.1")
	epilogue2 := f.NewBlock("FirvEpilogue.2")

	if err := createSlotCheck(funcName, epilogue1, epilogue2, failBB, t, ptr1, ptr2, cfg, diag); err != nil {
		return nil, err
	}
	if err := createSlotCheck(funcName, epilogue2, returnBB, failBB, t, ptr1, ptr2, cfg, diag); err != nil {
		return nil, err
	}
	return epilogue1, nil
}
