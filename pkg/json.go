package comet

import (
	"encoding/json"
	"fmt"
)

// The archival format: every node becomes an object with a "type"
// discriminator matching its variant name plus one key per field, nested
// recursively. MarshalProgram and DecodeProgram are exact inverses for any
// tree the parser can produce.

// MarshalProgram serializes a program to indented JSON.
func MarshalProgram(prog *Program) ([]byte, error) {
	return json.MarshalIndent(programToMap(prog), "", "  ")
}

// DecodeProgram rebuilds a program from the output of MarshalProgram.
func DecodeProgram(data []byte) (*Program, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("JSON root must be an object")
	}

	typ, _ := m["type"].(string)
	if typ != "Program" {
		return nil, fmt.Errorf("JSON root must have type Program, got %q", typ)
	}

	prog := &Program{}
	prog.Filename, _ = m["filename"].(string)

	stmts, err := decodeStmts(m["statements"], 0)
	if err != nil {
		return nil, err
	}

	prog.Statements = stmts
	return prog, nil
}

func programToMap(prog *Program) map[string]interface{} {
	return map[string]interface{}{
		"type":       "Program",
		"filename":   prog.Filename,
		"statements": stmtsToList(prog.Statements),
	}
}

func stmtsToList(stmts []Stmt) []interface{} {
	list := make([]interface{}, 0, len(stmts))
	for _, stmt := range stmts {
		list = append(list, stmtToMap(stmt))
	}

	return list
}

func stmtToMap(stmt Stmt) map[string]interface{} {
	switch s := stmt.(type) {
	case *Assignment:
		return withLoc(map[string]interface{}{
			"type":   "Assignment",
			"target": s.Target,
			"value":  exprToMap(s.Value),
		}, s.Loc)
	case *Output:
		return withLoc(map[string]interface{}{
			"type":  "Output",
			"value": exprToMap(s.Value),
		}, s.Loc)
	case *If:
		m := map[string]interface{}{
			"type":       "If",
			"condition":  exprToMap(s.Condition),
			"negated":    s.Negated,
			"thenBranch": stmtsToList(s.Then),
		}
		if len(s.Else) > 0 {
			m["elseBranch"] = stmtsToList(s.Else)
		}

		return withLoc(m, s.Loc)
	case *Loop:
		return withLoc(map[string]interface{}{
			"type": "Loop",
			"body": stmtsToList(s.Body),
		}, s.Loc)
	case *Break:
		return withLoc(map[string]interface{}{
			"type": "Break",
		}, s.Loc)
	default:
		panic(fmt.Sprintf("unknown statement variant %T", stmt))
	}
}

func exprToMap(expr Expr) map[string]interface{} {
	switch e := expr.(type) {
	case *BinaryExpr:
		return withLoc(map[string]interface{}{
			"type":     "BinaryOp",
			"operator": string(e.Operation),
			"left":     exprToMap(e.Op1),
			"right":    exprToMap(e.Op2),
		}, e.Loc)
	case *UnaryExpr:
		return withLoc(map[string]interface{}{
			"type":    "UnaryMinus",
			"operand": exprToMap(e.Operand),
		}, e.Loc)
	case *Identifier:
		return withLoc(map[string]interface{}{
			"type": "Identifier",
			"name": e.Name,
		}, e.Loc)
	case *StringLit:
		return withLoc(map[string]interface{}{
			"type":  "StringLiteral",
			"value": e.Value,
		}, e.Loc)
	case *NumberLit:
		// The raw lexeme, kept as a string so "1.50" survives unchanged
		return withLoc(map[string]interface{}{
			"type":  "NumberLiteral",
			"value": e.Value,
		}, e.Loc)
	case *BoolLit:
		return withLoc(map[string]interface{}{
			"type":  "BooleanLiteral",
			"value": e.Value,
		}, e.Loc)
	case *InputCall:
		return withLoc(map[string]interface{}{
			"type":   "InputCall",
			"prompt": exprToMap(e.Prompt),
		}, e.Loc)
	case *Grouping:
		return withLoc(map[string]interface{}{
			"type":  "Grouping",
			"inner": exprToMap(e.Inner),
		}, e.Loc)
	default:
		panic(fmt.Sprintf("unknown expression variant %T", expr))
	}
}

func withLoc(m map[string]interface{}, loc *Location) map[string]interface{} {
	if loc != nil {
		m["loc"] = map[string]interface{}{
			"file": loc.File,
			"line": loc.Line,
			"col":  loc.Col,
		}
	}

	return m
}

// loopDepth mirrors the parser's BREAK-placement rule: a decoded tree is
// held to the same grammar, so a Break node outside any Loop is rejected.
func decodeStmts(raw interface{}, loopDepth int) ([]Stmt, error) {
	if raw == nil {
		return nil, nil
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("statement list must be an array, got %T", raw)
	}

	if len(list) == 0 {
		return nil, nil
	}

	stmts := make([]Stmt, 0, len(list))
	for _, item := range list {
		stmt, err := decodeStmt(item, loopDepth)
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)
	}

	return stmts, nil
}

func decodeStmt(raw interface{}, loopDepth int) (Stmt, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("statement must be an object, got %T", raw)
	}

	typ, _ := m["type"].(string)
	loc := decodeLoc(m["loc"])

	switch typ {
	case "Assignment":
		target, ok := m["target"].(string)
		if !ok {
			return nil, fmt.Errorf("Assignment needs a string target")
		}

		value, err := decodeExpr(m["value"])
		if err != nil {
			return nil, err
		}

		return &Assignment{Target: target, Value: value, Loc: loc}, nil
	case "Output":
		value, err := decodeExpr(m["value"])
		if err != nil {
			return nil, err
		}

		return &Output{Value: value, Loc: loc}, nil
	case "If":
		cond, err := decodeExpr(m["condition"])
		if err != nil {
			return nil, err
		}

		negated, _ := m["negated"].(bool)

		then, err := decodeStmts(m["thenBranch"], loopDepth)
		if err != nil {
			return nil, err
		}

		alt, err := decodeStmts(m["elseBranch"], loopDepth)
		if err != nil {
			return nil, err
		}

		return &If{Condition: cond, Negated: negated, Then: then, Else: alt, Loc: loc}, nil
	case "Loop":
		body, err := decodeStmts(m["body"], loopDepth+1)
		if err != nil {
			return nil, err
		}

		return &Loop{Body: body, Loc: loc}, nil
	case "Break":
		if loopDepth == 0 {
			return nil, fmt.Errorf("Break outside of a Loop body")
		}

		return &Break{Loc: loc}, nil
	default:
		return nil, fmt.Errorf("unknown statement type %q", typ)
	}
}

func decodeExpr(raw interface{}) (Expr, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expression must be an object, got %T", raw)
	}

	typ, _ := m["type"].(string)
	loc := decodeLoc(m["loc"])

	switch typ {
	case "BinaryOp":
		op, _ := m["operator"].(string)

		left, err := decodeExpr(m["left"])
		if err != nil {
			return nil, err
		}

		right, err := decodeExpr(m["right"])
		if err != nil {
			return nil, err
		}

		return &BinaryExpr{Operation: BinaryOp(op), Op1: left, Op2: right, Loc: loc}, nil
	case "UnaryMinus":
		operand, err := decodeExpr(m["operand"])
		if err != nil {
			return nil, err
		}

		return &UnaryExpr{Operation: UnaryNegative, Operand: operand, Loc: loc}, nil
	case "Identifier":
		name, ok := m["name"].(string)
		if !ok {
			return nil, fmt.Errorf("Identifier needs a string name")
		}

		return &Identifier{Name: name, Loc: loc}, nil
	case "StringLiteral":
		value, ok := m["value"].(string)
		if !ok {
			return nil, fmt.Errorf("StringLiteral needs a string value")
		}

		return &StringLit{Value: value, Loc: loc}, nil
	case "NumberLiteral":
		value, ok := m["value"].(string)
		if !ok {
			return nil, fmt.Errorf("NumberLiteral needs a string value")
		}

		return &NumberLit{Value: value, Loc: loc}, nil
	case "BooleanLiteral":
		value, ok := m["value"].(bool)
		if !ok {
			return nil, fmt.Errorf("BooleanLiteral needs a bool value")
		}

		return &BoolLit{Value: value, Loc: loc}, nil
	case "InputCall":
		prompt, err := decodeExpr(m["prompt"])
		if err != nil {
			return nil, err
		}

		return &InputCall{Prompt: prompt, Loc: loc}, nil
	case "Grouping":
		inner, err := decodeExpr(m["inner"])
		if err != nil {
			return nil, err
		}

		return &Grouping{Inner: inner, Loc: loc}, nil
	default:
		return nil, fmt.Errorf("unknown expression type %q", typ)
	}
}

func decodeLoc(raw interface{}) *Location {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}

	loc := &Location{}
	loc.File, _ = m["file"].(string)

	if line, ok := m["line"].(float64); ok {
		loc.Line = int(line)
	}

	if col, ok := m["col"].(float64); ok {
		loc.Col = int(col)
	}

	return loc
}
