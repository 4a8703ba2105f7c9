package firvharden

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/flattte/firv-rust-llvm-project/internal/irattr"
)

// newAddFunc builds:
//
//	define i32 @add(i32 %a, i32 %b) #0 {
//	entry:
//	  %sum = add i32 %a, %b
//	  ret i32 %sum
//	}
//
// with the firv-harden attribute, mirroring spec.md §8's "add" scenario.
func newAddFunc() *ir.Func {
	m := ir.NewModule()
	a := ir.NewParam("a", types.I32)
	b := ir.NewParam("b", types.I32)
	f := m.NewFunc("add", types.I32, a, b)
	f.FuncAttrs = append(f.FuncAttrs, ir.AttrString(irattr.FirvHardenAttr))

	entry := f.NewBlock("entry")
	sum := entry.NewAdd(a, b)
	sum.LocalName = "sum"
	entry.NewRet(sum)

	return f
}

// newLoopyFunc builds a function with a back-edge so its header Phi
// references a value the loop body defines later in block order,
// mirroring spec.md §8's "loopy" scenario:
//
//	define i32 @loopy(i32 %n) #0 {
//	entry:
//	  br label %loop
//	loop:
//	  %i = phi i32 [ 0, %entry ], [ %i.next, %loop ]
//	  %i.next = add i32 %i, 1
//	  %done = icmp eq i32 %i.next, %n
//	  br i1 %done, label %exit, label %loop
//	exit:
//	  ret i32 %i.next
//	}
func newLoopyFunc() *ir.Func {
	m := ir.NewModule()
	n := ir.NewParam("n", types.I32)
	f := m.NewFunc("loopy", types.I32, n)
	f.FuncAttrs = append(f.FuncAttrs, ir.AttrString(irattr.FirvHardenAttr))

	entry := f.NewBlock("entry")
	loop := f.NewBlock("loop")
	exit := f.NewBlock("exit")

	entry.NewBr(loop)

	phi := loop.NewPhi(ir.NewIncoming(constant.NewInt(types.I32, 0), entry))
	phi.LocalName = "i"
	inext := loop.NewAdd(phi, constant.NewInt(types.I32, 1))
	inext.LocalName = "i.next"
	phi.Incs = append(phi.Incs, ir.NewIncoming(inext, loop))
	done := loop.NewICmp(enum.IPredEQ, inext, n)
	done.LocalName = "done"
	loop.NewCondBr(done, exit, loop)

	exit.NewRet(inext)

	return f
}

// newBazFunc builds an sret-returning function, mirroring spec.md §8's
// "baz" scenario:
//
//	define void @baz(%Point* sret(%Point) %agg.result, i32 %x, i32 %y) #0 {
//	entry:
//	  %p0 = getelementptr %Point, %Point* %agg.result, i32 0, i32 0
//	  store i32 %x, i32* %p0
//	  %p1 = getelementptr %Point, %Point* %agg.result, i32 0, i32 1
//	  store i32 %y, i32* %p1
//	  ret void
//	}
func newBazFunc() (*ir.Func, types.Type) {
	m := ir.NewModule()
	pointT := types.NewStruct(types.I32, types.I32)
	pointPtrT := types.NewPointer(pointT)

	sretParam := ir.NewParam("agg.result", pointPtrT)
	sretParam.Attrs = append(sretParam.Attrs, ir.SRet{Typ: pointT})
	x := ir.NewParam("x", types.I32)
	y := ir.NewParam("y", types.I32)

	f := m.NewFunc("baz", types.Void, sretParam, x, y)
	f.FuncAttrs = append(f.FuncAttrs, ir.AttrString(irattr.FirvHardenAttr))

	entry := f.NewBlock("entry")
	zero := constant.NewInt(types.I32, 0)
	one := constant.NewInt(types.I32, 1)
	p0 := entry.NewGetElementPtr(pointT, sretParam, zero, zero)
	entry.NewStore(x, p0)
	p1 := entry.NewGetElementPtr(pointT, sretParam, zero, one)
	entry.NewStore(y, p1)
	entry.NewRet(nil)

	return f, pointT
}

// newBarFunc builds a pointer-returning function, mirroring spec.md §8's
// "bar" scenario: its return type is never eligible, so the gate must
// decline it regardless of the firv-harden attribute.
func newBarFunc() *ir.Func {
	m := ir.NewModule()
	f := m.NewFunc("bar", types.NewPointer(types.I32))
	f.FuncAttrs = append(f.FuncAttrs, ir.AttrString(irattr.FirvHardenAttr))

	entry := f.NewBlock("entry")
	entry.NewRet(constant.NewNull(types.NewPointer(types.I32)))

	return f
}

// newFooFunc builds a function with no firv-harden attribute at all,
// mirroring spec.md §8's "foo" scenario: the gate must decline it before
// ever inspecting its return type.
func newFooFunc() *ir.Func {
	m := ir.NewModule()
	f := m.NewFunc("foo", types.I32)
	entry := f.NewBlock("entry")
	entry.NewRet(constant.NewInt(types.I32, 0))
	return f
}
