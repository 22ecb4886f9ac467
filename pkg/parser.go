package comet

// Parser consumes the token stream produced by a Tokenizer and builds the
// AST by recursive descent, with a precedence climb for expressions.
// Parsing halts on the first malformed token: the grammar has no recovery
// productions, a translation either yields a complete tree or an error.
type Parser struct {
	filename  string
	tokenizer Tokenizer
	buf       *Token

	loopDepth int
}

func NewParser(tokenizer Tokenizer) *Parser {
	return &Parser{
		tokenizer: tokenizer,
		filename:  tokenizer.GetFilename(),
	}
}

// Run starts the tokenizer and parses a whole program. On failure the
// remaining token stream is drained so the tokenizer can finish; without
// that, a halted parse would strand the lexer goroutine on its send.
func (p *Parser) Run() (*Program, error) {
	go p.tokenizer.Do()

	prog, err := p.program()
	if err != nil {
		p.drain()
		return nil, err
	}

	return prog, nil
}

func (p *Parser) program() (*Program, error) {
	prog := &Program{Filename: p.filename}
	for {
		switch tok := p.peek(); tok.Typ {
		case TokenEOF:
			return prog, nil
		case TokenError:
			return nil, &LexError{Loc: tok.Loc, Message: tok.Value}
		default:
			stmt, err := p.statement()
			if err != nil {
				return nil, err
			}

			prog.Statements = append(prog.Statements, stmt)
		}
	}
}

// drain consumes tokens until the stream ends. Receiving from a closed
// token channel yields the zero token, which is a TokenError.
func (p *Parser) drain() {
	for {
		tok := p.tokenizer.Get()
		if tok.Typ == TokenEOF || tok.Typ == TokenError {
			return
		}
	}
}

func (p *Parser) peek() Token {
	if p.buf == nil {
		temp := p.next()
		p.buf = &temp
	}

	return *p.buf
}

func (p *Parser) next() Token {
	if p.buf != nil {
		if !p.buf.isValid() {
			// Keep an error or EOF token buffered, no more tokens follow it
			return *p.buf
		}

		temp := p.buf
		p.buf = nil

		return *temp
	}

	tok := p.tokenizer.Get()
	if !tok.isValid() {
		p.buf = &tok
	}

	return tok
}

func (p *Parser) expect(typ TokenType) (Token, error) {
	tok := p.next()
	if tok.Typ == TokenError {
		return tok, &LexError{Loc: tok.Loc, Message: tok.Value}
	}

	if tok.Typ != typ {
		return tok, p.syntaxError(tok, typ)
	}

	return tok, nil
}

func (p *Parser) check(typ TokenType) bool {
	return p.peek().Typ == typ
}

func (p *Parser) syntaxError(found Token, expected ...TokenType) error {
	return &SyntaxError{
		Loc:      found.Loc,
		Expected: expected,
		Found:    found,
	}
}

func (p *Parser) statement() (Stmt, error) {
	var stmt Stmt
	var err error

	switch tok := p.peek(); tok.Typ {
	case TokenIdentifier:
		stmt, err = p.assignment()
	case TokenOutput:
		stmt, err = p.output()
	case TokenIf:
		stmt, err = p.ifStatement()
	case TokenLoop:
		stmt, err = p.loop()
	case TokenBreak:
		stmt, err = p.breakStatement()
	case TokenError:
		return nil, &LexError{Loc: tok.Loc, Message: tok.Value}
	default:
		return nil, p.syntaxError(tok, TokenIdentifier, TokenOutput, TokenIf, TokenLoop, TokenBreak)
	}

	if err != nil {
		return nil, err
	}

	// Statement terminators are optional
	if p.check(TokenSemicolon) {
		p.next()
	}

	return stmt, nil
}

// block parses statements until one of the given closing keywords is seen.
// The closer itself is left in the stream for the caller.
func (p *Parser) block(closers ...TokenType) ([]Stmt, error) {
	var stmts []Stmt
	for {
		tok := p.peek()
		for _, closer := range closers {
			if tok.Typ == closer {
				return stmts, nil
			}
		}

		if tok.Typ == TokenError {
			return nil, &LexError{Loc: tok.Loc, Message: tok.Value}
		}

		if tok.Typ == TokenEOF {
			return nil, p.syntaxError(tok, closers...)
		}

		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)
	}
}

func (p *Parser) assignment() (Stmt, error) {
	id := p.next()

	if _, err := p.expect(TokenAssign); err != nil {
		return nil, err
	}

	value, err := p.expr()
	if err != nil {
		return nil, err
	}

	return &Assignment{
		Target: id.Value,
		Value:  value,
		Loc:    id.Loc,
	}, nil
}

func (p *Parser) output() (Stmt, error) {
	kw := p.next()

	value, err := p.expr()
	if err != nil {
		return nil, err
	}

	return &Output{
		Value: value,
		Loc:   kw.Loc,
	}, nil
}

func (p *Parser) ifStatement() (Stmt, error) {
	kw := p.next()

	negated := false
	if p.check(TokenNot) {
		p.next()
		negated = true
	}

	cond, err := p.expr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenThen); err != nil {
		return nil, err
	}

	then, err := p.block(TokenElse, TokenEndIf)
	if err != nil {
		return nil, err
	}

	var alt []Stmt
	if p.check(TokenElse) {
		p.next()

		alt, err = p.block(TokenEndIf)
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokenEndIf); err != nil {
		return nil, err
	}

	return &If{
		Condition: cond,
		Negated:   negated,
		Then:      then,
		Else:      alt,
		Loc:       kw.Loc,
	}, nil
}

func (p *Parser) loop() (Stmt, error) {
	kw := p.next()

	p.loopDepth++
	body, err := p.block(TokenEndLoop)
	p.loopDepth--

	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenEndLoop); err != nil {
		return nil, err
	}

	return &Loop{
		Body: body,
		Loc:  kw.Loc,
	}, nil
}

func (p *Parser) breakStatement() (Stmt, error) {
	kw := p.next()

	// BREAK is only meaningful lexically inside a LOOP, reject it statically
	if p.loopDepth == 0 {
		return nil, &SyntaxError{
			Loc:     kw.Loc,
			Found:   kw,
			Message: "'BREAK' outside of a 'LOOP' body",
		}
	}

	return &Break{Loc: kw.Loc}, nil
}

// Expressions, lowest to highest binding. Every tier is left-associative.

func (p *Parser) expr() (Expr, error) {
	return p.equalityExpr()
}

func (p *Parser) equalityExpr() (Expr, error) {
	return p.binaryExpr(p.relationalExpr, TokenEquals, TokenNotEquals)
}

func (p *Parser) relationalExpr() (Expr, error) {
	return p.binaryExpr(p.additiveExpr, TokenLess, TokenLessEquals, TokenGreater, TokenGreaterEquals)
}

func (p *Parser) additiveExpr() (Expr, error) {
	return p.binaryExpr(p.multiplicativeExpr, TokenPlus, TokenMinus)
}

func (p *Parser) multiplicativeExpr() (Expr, error) {
	return p.binaryExpr(p.unaryExpr, TokenStar, TokenSlash, TokenPercent)
}

func (p *Parser) binaryExpr(operand func() (Expr, error), ops ...TokenType) (Expr, error) {
	lhs, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		matched := false
		for _, op := range ops {
			if tok.Typ == op {
				matched = true
				break
			}
		}

		if !matched {
			return lhs, nil
		}

		p.next()

		rhs, err := operand()
		if err != nil {
			return nil, err
		}

		lhs = &BinaryExpr{
			Operation: BinaryOp(tok.Value),
			Op1:       lhs,
			Op2:       rhs,
			Loc:       tok.Loc,
		}
	}
}

func (p *Parser) unaryExpr() (Expr, error) {
	if p.check(TokenMinus) {
		tok := p.next()

		operand, err := p.unaryExpr()
		if err != nil {
			return nil, err
		}

		return &UnaryExpr{
			Operation: UnaryNegative,
			Operand:   operand,
			Loc:       tok.Loc,
		}, nil
	}

	return p.atom()
}

func (p *Parser) atom() (Expr, error) {
	switch tok := p.peek(); tok.Typ {
	case TokenIdentifier:
		p.next()
		return &Identifier{Name: tok.Value, Loc: tok.Loc}, nil
	case TokenString:
		p.next()
		return &StringLit{Value: tok.Value, Loc: tok.Loc}, nil
	case TokenNumber:
		p.next()
		return &NumberLit{Value: tok.Value, Loc: tok.Loc}, nil
	case TokenTrue:
		p.next()
		return &BoolLit{Value: true, Loc: tok.Loc}, nil
	case TokenFalse:
		p.next()
		return &BoolLit{Value: false, Loc: tok.Loc}, nil
	case TokenInput:
		return p.inputCall()
	case TokenOpenParen:
		// Parentheses collapse: grouping is structural in the tree
		p.next()

		inner, err := p.expr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(TokenCloseParen); err != nil {
			return nil, err
		}

		return inner, nil
	case TokenError:
		return nil, &LexError{Loc: tok.Loc, Message: tok.Value}
	default:
		return nil, p.syntaxError(tok,
			TokenIdentifier, TokenString, TokenNumber, TokenTrue, TokenFalse, TokenInput, TokenOpenParen)
	}
}

func (p *Parser) inputCall() (Expr, error) {
	kw := p.next()

	if _, err := p.expect(TokenOpenParen); err != nil {
		return nil, err
	}

	prompt, err := p.expr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenCloseParen); err != nil {
		return nil, err
	}

	return &InputCall{
		Prompt: prompt,
		Loc:    kw.Loc,
	}, nil
}
