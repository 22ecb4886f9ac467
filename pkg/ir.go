package comet

import (
	"fmt"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// LLVMBuilder compiles a numeric Comet program into an LLVM module.
// Numbers are doubles held in stack slots, OUTPUT lowers to printf and
// INPUT to scanf. String values are supported only as OUTPUT operands and
// INPUT prompts; a program that computes with strings is reported as
// unsupported rather than half-compiled.
type LLVMBuilder struct {
	mod   *ir.Module
	fn    *ir.Func
	entry *ir.Block
	block *ir.Block

	vars        map[string]value.Value
	breakBlocks []*ir.Block

	printf *ir.Func
	scanf  *ir.Func

	numFmt    constant.Constant
	strFmt    constant.Constant
	promptFmt constant.Constant
	scanFmt   constant.Constant

	strCount int
}

func NewLLVMBuilder() *LLVMBuilder {
	b := &LLVMBuilder{
		mod:  ir.NewModule(),
		vars: make(map[string]value.Value),
	}

	defineBuiltins(b)
	return b
}

// BuildLLVM compiles a whole program into a module with a single main
// function returning 0.
func BuildLLVM(prog *Program) (*ir.Module, error) {
	b := NewLLVMBuilder()

	b.fn = b.mod.NewFunc("main", types.I32)
	b.entry = b.fn.NewBlock("")
	b.block = b.entry

	for _, stmt := range prog.Statements {
		if err := b.statement(stmt); err != nil {
			return nil, err
		}
	}

	if b.block.Term == nil {
		b.block.NewRet(constant.NewInt(types.I32, 0))
	}

	return b.mod, nil
}

func (b *LLVMBuilder) statement(stmt Stmt) error {
	switch s := stmt.(type) {
	case *Assignment:
		v, err := b.expr(s.Value)
		if err != nil {
			return err
		}

		slot, ok := b.vars[s.Target]
		if !ok {
			// Slots live in the entry block so every later block sees them
			slot = b.entry.NewAlloca(types.Double)
			b.vars[s.Target] = slot
		}

		b.block.NewStore(b.asDouble(v), slot)
		return nil
	case *Output:
		return b.output(s)
	case *If:
		return b.ifStatement(s)
	case *Loop:
		return b.loopStatement(s)
	case *Break:
		b.block.NewBr(b.breakBlocks[len(b.breakBlocks)-1])

		// Anything after a BREAK is unreachable, park it in a dead block
		b.block = b.fn.NewBlock("")
		return nil
	default:
		panic(fmt.Sprintf("unknown statement variant %T", stmt))
	}
}

func (b *LLVMBuilder) output(s *Output) error {
	if lit, ok := unwrap(s.Value).(*StringLit); ok {
		b.block.NewCall(b.printf, b.strFmt, b.cstring(lit.Value))
		return nil
	}

	v, err := b.expr(s.Value)
	if err != nil {
		return err
	}

	b.block.NewCall(b.printf, b.numFmt, b.asDouble(v))
	return nil
}

func (b *LLVMBuilder) ifStatement(s *If) error {
	cond, err := b.condition(s.Condition, s.Negated)
	if err != nil {
		return err
	}

	thenBlock := b.fn.NewBlock("")
	elseBlock := b.fn.NewBlock("")
	contBlock := b.fn.NewBlock("")

	b.block.NewCondBr(cond, thenBlock, elseBlock)

	b.block = thenBlock
	for _, stmt := range s.Then {
		if err := b.statement(stmt); err != nil {
			return err
		}
	}
	if b.block.Term == nil {
		b.block.NewBr(contBlock)
	}

	b.block = elseBlock
	for _, stmt := range s.Else {
		if err := b.statement(stmt); err != nil {
			return err
		}
	}
	if b.block.Term == nil {
		b.block.NewBr(contBlock)
	}

	b.block = contBlock
	return nil
}

func (b *LLVMBuilder) loopStatement(s *Loop) error {
	bodyBlock := b.fn.NewBlock("")
	exitBlock := b.fn.NewBlock("")

	b.block.NewBr(bodyBlock)
	b.block = bodyBlock

	b.breakBlocks = append(b.breakBlocks, exitBlock)
	for _, stmt := range s.Body {
		if err := b.statement(stmt); err != nil {
			return err
		}
	}
	b.breakBlocks = b.breakBlocks[:len(b.breakBlocks)-1]

	// Back-edge: the body loops until a BREAK branched out
	if b.block.Term == nil {
		b.block.NewBr(bodyBlock)
	}

	b.block = exitBlock
	return nil
}

func (b *LLVMBuilder) expr(expr Expr) (value.Value, error) {
	switch e := expr.(type) {
	case *BinaryExpr:
		return b.binaryExpr(e)
	case *UnaryExpr:
		v, err := b.expr(e.Operand)
		if err != nil {
			return nil, err
		}

		return b.block.NewFSub(constant.NewFloat(types.Double, 0), b.asDouble(v)), nil
	case *Identifier:
		slot, ok := b.vars[e.Name]
		if !ok {
			return nil, fmt.Errorf("%s: variable '%s' is not defined", e.Loc, e.Name)
		}

		return b.block.NewLoad(types.Double, slot), nil
	case *NumberLit:
		num, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad number literal '%s'", e.Loc, e.Value)
		}

		return constant.NewFloat(types.Double, num), nil
	case *BoolLit:
		if e.Value {
			return constant.True, nil
		}

		return constant.False, nil
	case *StringLit:
		return nil, fmt.Errorf("%s: string values are only supported as OUTPUT operands or INPUT prompts", e.Loc)
	case *InputCall:
		return b.inputCall(e)
	case *Grouping:
		return b.expr(e.Inner)
	default:
		panic(fmt.Sprintf("unknown expression variant %T", expr))
	}
}

func (b *LLVMBuilder) binaryExpr(e *BinaryExpr) (value.Value, error) {
	left, err := b.expr(e.Op1)
	if err != nil {
		return nil, err
	}

	right, err := b.expr(e.Op2)
	if err != nil {
		return nil, err
	}

	l := b.asDouble(left)
	r := b.asDouble(right)

	switch e.Operation {
	case BinaryAddition:
		return b.block.NewFAdd(l, r), nil
	case BinarySubtraction:
		return b.block.NewFSub(l, r), nil
	case BinaryMultiplication:
		return b.block.NewFMul(l, r), nil
	case BinaryDivision:
		return b.block.NewFDiv(l, r), nil
	case BinaryModulo:
		return b.block.NewFRem(l, r), nil
	case BinaryEquals:
		return b.block.NewFCmp(enum.FPredOEQ, l, r), nil
	case BinaryNotEquals:
		return b.block.NewFCmp(enum.FPredONE, l, r), nil
	case BinaryLess:
		return b.block.NewFCmp(enum.FPredOLT, l, r), nil
	case BinaryLessEquals:
		return b.block.NewFCmp(enum.FPredOLE, l, r), nil
	case BinaryGreater:
		return b.block.NewFCmp(enum.FPredOGT, l, r), nil
	case BinaryGreaterEquals:
		return b.block.NewFCmp(enum.FPredOGE, l, r), nil
	default:
		panic("unknown binary operation: " + e.Operation)
	}
}

func (b *LLVMBuilder) inputCall(e *InputCall) (value.Value, error) {
	lit, ok := unwrap(e.Prompt).(*StringLit)
	if !ok {
		return nil, fmt.Errorf("%s: INPUT prompt must be a string literal", e.Loc)
	}

	b.block.NewCall(b.printf, b.promptFmt, b.cstring(lit.Value))

	slot := b.entry.NewAlloca(types.Double)
	b.block.NewCall(b.scanf, b.scanFmt, slot)

	return b.block.NewLoad(types.Double, slot), nil
}

// condition lowers an expression to an i1: comparisons and booleans pass
// through, numbers test against zero.
func (b *LLVMBuilder) condition(expr Expr, negated bool) (value.Value, error) {
	v, err := b.expr(expr)
	if err != nil {
		return nil, err
	}

	var cond value.Value
	if v.Type().Equal(types.I1) {
		cond = v
	} else {
		cond = b.block.NewFCmp(enum.FPredONE, v, constant.NewFloat(types.Double, 0))
	}

	if negated {
		cond = b.block.NewXor(cond, constant.True)
	}

	return cond, nil
}

// asDouble widens an i1 into a double so booleans can feed arithmetic.
func (b *LLVMBuilder) asDouble(v value.Value) value.Value {
	if v.Type().Equal(types.I1) {
		return b.block.NewUIToFP(v, types.Double)
	}

	return v
}

func unwrap(expr Expr) Expr {
	for {
		g, ok := expr.(*Grouping)
		if !ok {
			return expr
		}

		expr = g.Inner
	}
}
