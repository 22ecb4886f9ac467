package comet

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// errBreak unwinds the interpreter out of the innermost loop body. The
// parser rejects BREAK outside a LOOP, so it never escapes Run.
var errBreak = errors.New("break")

// Interpreter executes a program over a flat variable namespace. Values
// are float64, string or bool. OUTPUT writes to out, INPUT reads a line
// from in: a number when it parses as one, a string otherwise.
type Interpreter struct {
	in     *bufio.Scanner
	out    io.Writer
	memory map[string]interface{}
}

func NewInterpreter(in io.Reader, out io.Writer) *Interpreter {
	return &Interpreter{
		in:     bufio.NewScanner(in),
		out:    out,
		memory: make(map[string]interface{}),
	}
}

func (i *Interpreter) Run(prog *Program) error {
	return i.execAll(prog.Statements)
}

func (i *Interpreter) execAll(stmts []Stmt) error {
	for _, stmt := range stmts {
		if err := i.exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (i *Interpreter) exec(stmt Stmt) error {
	switch s := stmt.(type) {
	case *Assignment:
		value, err := i.eval(s.Value)
		if err != nil {
			return err
		}

		i.memory[s.Target] = value
		return nil
	case *Output:
		value, err := i.eval(s.Value)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(i.out, formatValue(value))
		return err
	case *If:
		cond, err := i.eval(s.Condition)
		if err != nil {
			return err
		}

		truth := isTruthy(cond)
		if s.Negated {
			truth = !truth
		}

		if truth {
			return i.execAll(s.Then)
		}

		return i.execAll(s.Else)
	case *Loop:
		for {
			err := i.execAll(s.Body)
			if err == errBreak {
				return nil
			}

			if err != nil {
				return err
			}
		}
	case *Break:
		return errBreak
	default:
		panic(fmt.Sprintf("unknown statement variant %T", stmt))
	}
}

func (i *Interpreter) eval(expr Expr) (interface{}, error) {
	switch e := expr.(type) {
	case *BinaryExpr:
		return i.evalBinary(e)
	case *UnaryExpr:
		operand, err := i.eval(e.Operand)
		if err != nil {
			return nil, err
		}

		num, ok := operand.(float64)
		if !ok {
			return nil, i.typeError(e, "cannot apply unary '-' to %s", typeName(operand))
		}

		return -num, nil
	case *Identifier:
		value, ok := i.memory[e.Name]
		if !ok {
			return nil, &RuntimeError{Loc: e.Loc, Message: fmt.Sprintf("variable '%s' is not defined", e.Name)}
		}

		return value, nil
	case *StringLit:
		return e.Value, nil
	case *NumberLit:
		num, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			return nil, &RuntimeError{Loc: e.Loc, Message: fmt.Sprintf("bad number literal '%s'", e.Value)}
		}

		return num, nil
	case *BoolLit:
		return e.Value, nil
	case *InputCall:
		return i.evalInput(e)
	case *Grouping:
		return i.eval(e.Inner)
	default:
		panic(fmt.Sprintf("unknown expression variant %T", expr))
	}
}

func (i *Interpreter) evalBinary(e *BinaryExpr) (interface{}, error) {
	left, err := i.eval(e.Op1)
	if err != nil {
		return nil, err
	}

	right, err := i.eval(e.Op2)
	if err != nil {
		return nil, err
	}

	switch e.Operation {
	case BinaryEquals:
		return left == right, nil
	case BinaryNotEquals:
		return left != right, nil
	}

	// Addition concatenates as soon as either operand is a string,
	// everything else below is strictly numeric
	if e.Operation == BinaryAddition {
		if ls, ok := left.(string); ok {
			return ls + formatValue(right), nil
		}

		if rs, ok := right.(string); ok {
			return formatValue(left) + rs, nil
		}
	}

	ln, lok := left.(float64)
	rn, rok := right.(float64)
	if !lok || !rok {
		return nil, i.typeError(e, "cannot apply operator '%s' to %s and %s",
			e.Operation, typeName(left), typeName(right))
	}

	switch e.Operation {
	case BinaryAddition:
		return ln + rn, nil
	case BinarySubtraction:
		return ln - rn, nil
	case BinaryMultiplication:
		return ln * rn, nil
	case BinaryDivision:
		if rn == 0 {
			return nil, &RuntimeError{Loc: e.Op2.GetLocation(), Message: "division by zero"}
		}

		return ln / rn, nil
	case BinaryModulo:
		if rn == 0 {
			return nil, &RuntimeError{Loc: e.Op2.GetLocation(), Message: "division by zero"}
		}

		return math.Mod(ln, rn), nil
	case BinaryLess:
		return ln < rn, nil
	case BinaryLessEquals:
		return ln <= rn, nil
	case BinaryGreater:
		return ln > rn, nil
	case BinaryGreaterEquals:
		return ln >= rn, nil
	default:
		panic("unknown binary operation: " + e.Operation)
	}
}

func (i *Interpreter) evalInput(e *InputCall) (interface{}, error) {
	prompt, err := i.eval(e.Prompt)
	if err != nil {
		return nil, err
	}

	if _, err := fmt.Fprint(i.out, formatValue(prompt)+" "); err != nil {
		return nil, err
	}

	if !i.in.Scan() {
		if err := i.in.Err(); err != nil {
			return nil, &RuntimeError{Loc: e.Loc, Message: "reading input: " + err.Error()}
		}

		return "", nil
	}

	line := strings.TrimSpace(i.in.Text())
	if num, err := strconv.ParseFloat(line, 64); err == nil {
		return num, nil
	}

	return line, nil
}

func (i *Interpreter) typeError(e Expr, format string, args ...interface{}) error {
	return &RuntimeError{
		Loc:     e.GetLocation(),
		Message: fmt.Sprintf(format, args...),
	}
}

func isTruthy(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return false
	}
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case bool:
		if v {
			return "TRUE"
		}

		return "FALSE"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func typeName(value interface{}) string {
	switch value.(type) {
	case float64:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "unknown"
	}
}
