package firvharden

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/flattte/firv-rust-llvm-project/internal/irattr"
	"github.com/flattte/firv-rust-llvm-project/internal/passconfig"
)

// gate is C1: it decides whether f is eligible for hardening. It returns
// ok=false whenever the function should be left completely unchanged —
// either the FirvHarden attribute is absent (silently, no diagnostic: this
// is the overwhelmingly common case for any function not opted in) or the
// effective return type isn't in the eligibility matrix (reported on the
// diagnostic stream).
//
// Sharing irattr's one type classifier between this gate (through
// irattr.Eligible) and the comparator (C5, through irattr.Classify) is what makes
// spec.md's open question 1 — "should the comparator ever decline
// mid-synthesis" — moot by construction: nothing C5 encounters was not
// already proven reachable and supported by this exact predicate, before
// any mutation happened.
func gate(f *ir.Func, cfg passconfig.Config, diag Diagnostics) (types.Type, *ir.Param, bool) {
	if !irattr.HasFirvHarden(f) {
		return nil, nil, false
	}
	if len(f.Blocks) == 0 {
		// A declaration, not a definition: nothing to duplicate.
		return nil, nil, false
	}

	retType, sret := irattr.EffectiveReturnType(f)
	if !irattr.Eligible(retType, cfg.MaxCompareDepth) {
		diag.Declinef("function %s: return type %s is not eligible for FIRV hardening", funcDisplayName(f), retType)
		return nil, nil, false
	}

	diag.Warnf("FIRV hardening %s on type %s", funcDisplayName(f), retType)
	return retType, sret, true
}

// WouldHarden reports whether Run would modify f, without mutating
// anything — the predicate behind the CLI's check subcommand (§6 of
// spec.md's dry-run mention).
func WouldHarden(f *ir.Func, cfg passconfig.Config, diag Diagnostics) bool {
	_, _, ok := gate(f, cfg, diag)
	return ok
}

func funcDisplayName(f *ir.Func) string {
	if f.GlobalName != "" {
		return f.GlobalName
	}
	return "<anonymous>"
}
