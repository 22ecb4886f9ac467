package comet

// The Comet AST is a closed set of node variants. Statements and
// expressions are separate interfaces with unexported marker methods, so
// every emitter can switch exhaustively over the set and treat an unknown
// variant as a programming error.

type Node interface {
	GetLocation() *Location
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed translation: a flat statement sequence.
type Program struct {
	Filename   string
	Statements []Stmt
}

// Assignment: IDENTIFIER ':=' expr
type Assignment struct {
	Target string
	Value  Expr
	Loc    *Location
}

func (s *Assignment) GetLocation() *Location { return s.Loc }
func (s *Assignment) stmtNode()              {}

// Output: 'OUTPUT' expr
type Output struct {
	Value Expr
	Loc   *Location
}

func (s *Output) GetLocation() *Location { return s.Loc }
func (s *Output) stmtNode()              {}

// If: 'IF' 'NOT'? expr 'THEN' ... ('ELSE' ...)? 'ENDIF'. Negated records
// a leading NOT on the condition.
type If struct {
	Condition Expr
	Negated   bool
	Then      []Stmt
	Else      []Stmt
	Loc       *Location
}

func (s *If) GetLocation() *Location { return s.Loc }
func (s *If) stmtNode()              {}

// Loop: 'LOOP' ... 'ENDLOOP'. The body runs until a BREAK fires.
type Loop struct {
	Body []Stmt
	Loc  *Location
}

func (s *Loop) GetLocation() *Location { return s.Loc }
func (s *Loop) stmtNode()              {}

type Break struct {
	Loc *Location
}

func (s *Break) GetLocation() *Location { return s.Loc }
func (s *Break) stmtNode()              {}

type BinaryOp string

const (
	BinaryEquals         BinaryOp = "="
	BinaryNotEquals      BinaryOp = "!="
	BinaryLess           BinaryOp = "<"
	BinaryLessEquals     BinaryOp = "<="
	BinaryGreater        BinaryOp = ">"
	BinaryGreaterEquals  BinaryOp = ">="
	BinaryAddition       BinaryOp = "+"
	BinarySubtraction    BinaryOp = "-"
	BinaryMultiplication BinaryOp = "*"
	BinaryDivision       BinaryOp = "/"
	BinaryModulo         BinaryOp = "%"
)

type BinaryExpr struct {
	Operation BinaryOp
	Op1       Expr
	Op2       Expr
	Loc       *Location
}

func (e *BinaryExpr) GetLocation() *Location { return e.Loc }
func (e *BinaryExpr) exprNode()              {}

type UnaryOp string

const (
	UnaryNegative UnaryOp = "-"
)

type UnaryExpr struct {
	Operation UnaryOp
	Operand   Expr
	Loc       *Location
}

func (e *UnaryExpr) GetLocation() *Location { return e.Loc }
func (e *UnaryExpr) exprNode()              {}

type Identifier struct {
	Name string
	Loc  *Location
}

func (e *Identifier) GetLocation() *Location { return e.Loc }
func (e *Identifier) exprNode()              {}

// StringLit holds the decoded string value, escapes already resolved.
type StringLit struct {
	Value string
	Loc   *Location
}

func (e *StringLit) GetLocation() *Location { return e.Loc }
func (e *StringLit) exprNode()              {}

// NumberLit keeps the raw lexeme so that emission reproduces the literal
// exactly as written ("1.50" stays "1.50").
type NumberLit struct {
	Value string
	Loc   *Location
}

func (e *NumberLit) GetLocation() *Location { return e.Loc }
func (e *NumberLit) exprNode()              {}

type BoolLit struct {
	Value bool
	Loc   *Location
}

func (e *BoolLit) GetLocation() *Location { return e.Loc }
func (e *BoolLit) exprNode()              {}

// InputCall: 'INPUT' '(' expr ')', the expression is the prompt.
type InputCall struct {
	Prompt Expr
	Loc    *Location
}

func (e *InputCall) GetLocation() *Location { return e.Loc }
func (e *InputCall) exprNode()              {}

// Grouping is an explicit parenthesization. The parser collapses
// parentheses instead of producing these: precedence is already structural
// in the tree, and the DSL emitter reinserts parentheses where the fixed
// precedence table demands them. The variant exists for trees built by
// hand; every emitter treats it as transparent.
type Grouping struct {
	Inner Expr
	Loc   *Location
}

func (e *Grouping) GetLocation() *Location { return e.Loc }
func (e *Grouping) exprNode()              {}
