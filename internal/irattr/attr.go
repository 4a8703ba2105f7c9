// Package irattr inspects the attribute surface of an LLVM function built
// with github.com/llir/llvm: the FirvHarden opt-in marker and the
// struct-return parameter attribute that redirects hardening to a pointed-to
// buffer.
package irattr

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// FirvHardenAttr is the function attribute string that opts a function into
// FIRV hardening. It is the Go-side analog of LLVM's Attribute::FirvHarden.
const FirvHardenAttr = "firv-harden"

// HasFirvHarden reports whether f carries the FirvHarden function attribute.
func HasFirvHarden(f *ir.Func) bool {
	for _, a := range f.FuncAttrs {
		if s, ok := a.(ir.AttrString); ok && string(s) == FirvHardenAttr {
			return true
		}
	}
	return false
}

// FindSRet returns the function's struct-return parameter and the type it
// points to, or (nil, nil) if the function has no sret parameter.
func FindSRet(f *ir.Func) (*ir.Param, types.Type) {
	for _, p := range f.Params {
		for _, a := range p.Attrs {
			if sr, ok := a.(ir.SRet); ok {
				return p, sr.Typ
			}
		}
	}
	return nil, nil
}

// EffectiveReturnType returns the type the pass must duplicate-and-compare:
// the sret pointee type when the function has a struct-return parameter,
// otherwise the function's declared return type. The second result is the
// sret carrier parameter, nil when there isn't one.
func EffectiveReturnType(f *ir.Func) (types.Type, *ir.Param) {
	if p, t := FindSRet(f); p != nil {
		return t, p
	}
	return f.Sig.RetType, nil
}
