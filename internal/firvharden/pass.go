// Package firvharden implements Fault-Injection Resilience Verification
// (FIRV) hardening: given a function carrying the FirvHarden attribute, it
// rewrites the function so its computation runs twice and its return value
// is compared bit-for-bit before the function returns, trapping on
// mismatch instead of returning a silently-faulted result.
package firvharden

import (
	"github.com/llir/llvm/ir"

	"github.com/flattte/firv-rust-llvm-project/internal/passconfig"
)

// PassName identifies this pass, the Go-idiomatic analog of LLVM's
// FirvHarden::ID static member (spec.md §9 design note: "expose this as a
// static token... documented as the only module-level state").
const PassName = "firv-harden"

// Run is the pass's function-scoped entry point (§6 of spec.md). It owns f
// exclusively for the duration of the call and mutates it in place; guard
// serializes the pass's handful of mutations to f.Parent (lazy intrinsic
// declarations) and may be nil when the caller isn't fanning Run out across
// a module's functions concurrently. The returned bool is true iff f was
// modified; both "attribute absent" and "return type ineligible" report
// false with a nil error. A non-nil error is always an *InternalError: a
// missing block-mapping entry or an unsupported instruction/type reached
// after the gate already accepted the function — a bug in the pass, never
// a normal declined-function outcome.
func Run(f *ir.Func, cfg passconfig.Config, diag Diagnostics, guard *ModuleGuard) (bool, error) {
	if diag == nil {
		diag = noopDiagnostics{}
	}

	retType, sret, ok := gate(f, cfg, diag)
	if !ok {
		return false, nil
	}
	funcName := funcDisplayName(f)

	storeLoad, err := insertStoreLoad(funcName, f, diag)
	if err != nil {
		return false, err
	}

	// Snapshot the block list now: everything in it (StoreLoad included) is
	// "OriginalBBs" for the rest of the transformation. Blocks appended
	// from here on (clones, prologue, interlude, epilogues, ReturnBB,
	// FailBB) are scaffolding, not duplicated region.
	originals := append([]*ir.Block(nil), f.Blocks...)

	clones, _, _, err := duplicateCFG(funcName, f, originals)
	if err != nil {
		return false, err
	}

	_, slot1, slot2 := createPrologue(f, retType, storeLoad)

	returnBB := createReturnBB(f, retType, sret, slot1, slot2)

	interlude := createInterlude(f, clones[0])

	epilogue1, err := createEpilogue(guard, funcName, f, returnBB, retType, slot1, slot2, cfg, diag)
	if err != nil {
		return false, err
	}

	if err := rewriteReturns(guard, funcName, f, originals, slot1, interlude, sret, retType); err != nil {
		return false, err
	}
	if err := rewriteReturns(guard, funcName, f, clones, slot2, epilogue1, sret, retType); err != nil {
		return false, err
	}

	return true, nil
}
