package comet

import (
	"fmt"
	"strings"
)

// Expression precedence tiers, lowest binding first. Atoms sit above every
// operator tier.
const (
	precEquality       = 1
	precRelational     = 2
	precAdditive       = 3
	precMultiplicative = 4
	precUnary          = 5
	precAtom           = 6
)

func precedenceOf(op BinaryOp) int {
	switch op {
	case BinaryEquals, BinaryNotEquals:
		return precEquality
	case BinaryLess, BinaryLessEquals, BinaryGreater, BinaryGreaterEquals:
		return precRelational
	case BinaryAddition, BinarySubtraction:
		return precAdditive
	case BinaryMultiplication, BinaryDivision, BinaryModulo:
		return precMultiplicative
	default:
		panic("unknown binary operation: " + op)
	}
}

// EmitDSL renders a program back into Comet source. The output is a pure
// function of the tree: one statement per line, two-space indentation per
// nesting level, and parentheses only where the precedence table would
// otherwise reassociate the expression. Reparsing the output yields a tree
// equal to the input.
func EmitDSL(prog *Program) string {
	var b strings.Builder
	emitStmts(&b, prog.Statements, 0)

	return b.String()
}

func emitStmts(b *strings.Builder, stmts []Stmt, depth int) {
	for _, stmt := range stmts {
		emitStmt(b, stmt, depth)
	}
}

func emitStmt(b *strings.Builder, stmt Stmt, depth int) {
	ind := strings.Repeat("  ", depth)

	switch s := stmt.(type) {
	case *Assignment:
		fmt.Fprintf(b, "%s%s := %s;\n", ind, s.Target, emitExpr(s.Value, 0, false))
	case *Output:
		fmt.Fprintf(b, "%sOUTPUT %s;\n", ind, emitExpr(s.Value, 0, false))
	case *Break:
		fmt.Fprintf(b, "%sBREAK;\n", ind)
	case *If:
		not := ""
		if s.Negated {
			not = "NOT "
		}

		fmt.Fprintf(b, "%sIF %s%s THEN\n", ind, not, emitExpr(s.Condition, 0, false))
		emitStmts(b, s.Then, depth+1)

		if len(s.Else) > 0 {
			fmt.Fprintf(b, "%sELSE\n", ind)
			emitStmts(b, s.Else, depth+1)
		}

		fmt.Fprintf(b, "%sENDIF\n", ind)
	case *Loop:
		fmt.Fprintf(b, "%sLOOP\n", ind)
		emitStmts(b, s.Body, depth+1)
		fmt.Fprintf(b, "%sENDLOOP\n", ind)
	default:
		panic(fmt.Sprintf("unknown statement variant %T", stmt))
	}
}

// emitExpr renders an expression appearing as an operand of a parent with
// the given precedence. rightSide marks the right operand of a binary
// operator: equal-precedence subtrees there need parentheses because every
// tier is left-associative.
func emitExpr(expr Expr, parentPrec int, rightSide bool) string {
	switch e := expr.(type) {
	case *BinaryExpr:
		prec := precedenceOf(e.Operation)
		out := fmt.Sprintf("%s %s %s",
			emitExpr(e.Op1, prec, false),
			e.Operation,
			emitExpr(e.Op2, prec, true))

		if prec < parentPrec || (prec == parentPrec && rightSide) {
			return "(" + out + ")"
		}

		return out
	case *UnaryExpr:
		return string(e.Operation) + emitExpr(e.Operand, precUnary, false)
	case *Identifier:
		return e.Name
	case *StringLit:
		return quoteString(e.Value)
	case *NumberLit:
		return e.Value
	case *BoolLit:
		if e.Value {
			return "TRUE"
		}

		return "FALSE"
	case *InputCall:
		return "INPUT(" + emitExpr(e.Prompt, 0, false) + ")"
	case *Grouping:
		return "(" + emitExpr(e.Inner, 0, false) + ")"
	default:
		panic(fmt.Sprintf("unknown expression variant %T", expr))
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte('"')
	return b.String()
}
