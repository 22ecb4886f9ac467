package comet

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// defineBuiltins declares the C runtime entry points the backend lowers
// OUTPUT and INPUT onto, plus the shared format strings.
func defineBuiltins(b *LLVMBuilder) {
	b.printf = b.mod.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	b.printf.Sig.Variadic = true

	b.scanf = b.mod.NewFunc("scanf", types.I32, ir.NewParam("format", types.I8Ptr))
	b.scanf.Sig.Variadic = true

	b.numFmt = defineCString(b.mod, "._fmt_num", "%g\n")
	b.strFmt = defineCString(b.mod, "._fmt_str", "%s\n")
	b.promptFmt = defineCString(b.mod, "._fmt_prompt", "%s ")
	b.scanFmt = defineCString(b.mod, "._fmt_scan", "%lf")
}

// cstring interns a user string literal as a NUL-terminated global and
// returns an i8* to its first character.
func (b *LLVMBuilder) cstring(s string) constant.Constant {
	b.strCount++
	return defineCString(b.mod, fmt.Sprintf("._str%d", b.strCount), s)
}

func defineCString(mod *ir.Module, name, s string) constant.Constant {
	arr := constant.NewCharArrayFromString(s + "\x00")
	glob := mod.NewGlobalDef(name, arr)

	zero := constant.NewInt(types.I32, 0)
	return constant.NewGetElementPtr(arr.Typ, glob, zero, zero)
}
