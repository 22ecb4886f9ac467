package comet

import (
	"fmt"
	"sort"
)

// Analyzer walks a parsed program and collects flowchart metrics plus
// definite-misuse warnings. It never rejects a program: emitters accept
// any well-formed tree, the analysis is advisory.
type Analyzer struct {
	assigned map[string]bool
	counts   map[string]int
	vars     map[string]bool
	warnings []Warning
}

// Warning flags a suspicious construct with its source position.
type Warning struct {
	Loc     *Location
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Loc, w.Message)
}

// Metrics summarizes a program the way flowchart tools grade charts:
// node counts per variant and a cyclomatic complexity approximation
// (decision points plus one).
type Metrics struct {
	TotalNodes           int
	DecisionNodes        int
	CyclomaticComplexity int
	Variables            []string
	NodeCounts           map[string]int
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		assigned: make(map[string]bool),
		counts:   make(map[string]int),
		vars:     make(map[string]bool),
	}
}

// Do analyzes the program and returns its metrics. Warnings accumulate on
// the analyzer, see Warnings.
func (a *Analyzer) Do(prog *Program) *Metrics {
	a.statements(prog.Statements)

	variables := make([]string, 0, len(a.vars))
	for name := range a.vars {
		variables = append(variables, name)
	}
	sort.Strings(variables)

	total := 0
	for _, n := range a.counts {
		total += n
	}

	decisions := a.counts["If"] + a.counts["Loop"]

	return &Metrics{
		TotalNodes:           total,
		DecisionNodes:        decisions,
		CyclomaticComplexity: decisions + 1,
		Variables:            variables,
		NodeCounts:           a.counts,
	}
}

func (a *Analyzer) Warnings() []Warning {
	return a.warnings
}

func (a *Analyzer) statements(stmts []Stmt) {
	for _, stmt := range stmts {
		a.statement(stmt)
	}
}

func (a *Analyzer) statement(stmt Stmt) {
	switch s := stmt.(type) {
	case *Assignment:
		a.count("Assignment")
		a.expression(s.Value)

		// The target counts as defined only after its value is evaluated
		a.vars[s.Target] = true
		a.assigned[s.Target] = true
	case *Output:
		a.count("Output")
		a.expression(s.Value)
	case *If:
		a.count("If")
		a.expression(s.Condition)

		// Branches are analyzed against the same incoming state; a
		// variable assigned in only one branch stays maybe-undefined,
		// which is good enough for an advisory pass
		a.statements(s.Then)
		a.statements(s.Else)
	case *Loop:
		a.count("Loop")
		a.statements(s.Body)
	case *Break:
		a.count("Break")
	default:
		panic(fmt.Sprintf("unknown statement variant %T", stmt))
	}
}

func (a *Analyzer) expression(expr Expr) {
	switch e := expr.(type) {
	case *BinaryExpr:
		a.expression(e.Op1)
		a.expression(e.Op2)
	case *UnaryExpr:
		a.expression(e.Operand)
	case *Identifier:
		a.vars[e.Name] = true
		if !a.assigned[e.Name] {
			a.warn(e.Loc, "variable '%s' may be read before assignment", e.Name)
		}
	case *InputCall:
		a.expression(e.Prompt)
	case *Grouping:
		a.expression(e.Inner)
	case *StringLit, *NumberLit, *BoolLit:
		// Literals carry no analysis state
	default:
		panic(fmt.Sprintf("unknown expression variant %T", expr))
	}
}

func (a *Analyzer) count(variant string) {
	a.counts[variant]++
}

func (a *Analyzer) warn(loc *Location, format string, args ...interface{}) {
	a.warnings = append(a.warnings, Warning{
		Loc:     loc,
		Message: fmt.Sprintf(format, args...),
	})
}
