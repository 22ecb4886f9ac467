package comet

import (
	"fmt"
	"strings"
)

// DiagramNodeKind classifies a flowchart node for the rendering engine.
type DiagramNodeKind string

const (
	NodeStart    DiagramNodeKind = "start"
	NodeEnd      DiagramNodeKind = "end"
	NodeProcess  DiagramNodeKind = "process"
	NodeIO       DiagramNodeKind = "io"
	NodeDecision DiagramNodeKind = "decision"
	NodeJunction DiagramNodeKind = "junction"
)

type DiagramNode struct {
	ID    string
	Kind  DiagramNodeKind
	Label string
}

// DiagramEdge is a directed edge; Label is empty or a branch tag such as
// "yes"/"no" out of a decision node.
type DiagramEdge struct {
	From  string
	To    string
	Label string
}

// Diagram is the node/edge description handed to an external rendering
// engine. It knows nothing about the AST it came from.
type Diagram struct {
	Nodes []DiagramNode
	Edges []DiagramEdge
}

// diagramBuilder threads a sequential ID counter through one emission.
// The counter lives on the builder, never in package state, so concurrent
// emissions cannot collide.
type diagramBuilder struct {
	diagram *Diagram
	seq     int

	// innermost-first stack of loop exit junctions, targeted by BREAK
	breakTargets []string
}

// EmitDiagram walks the program and produces its control-flow diagram:
// decisions fork into labeled yes/no paths that reconverge at a junction,
// loops close with a back-edge to their entry junction, and BREAK jumps
// straight to the innermost loop's exit junction.
func EmitDiagram(prog *Program) *Diagram {
	b := &diagramBuilder{diagram: &Diagram{}}

	start := b.node(NodeStart, "Start")
	exit := b.sequence(prog.Statements, start, "")

	end := b.node(NodeEnd, "End")
	if exit != "" {
		b.edge(exit, end, "")
	}

	return b.diagram
}

func (b *diagramBuilder) node(kind DiagramNodeKind, label string) string {
	b.seq++
	id := fmt.Sprintf("n%d", b.seq)

	b.diagram.Nodes = append(b.diagram.Nodes, DiagramNode{
		ID:    id,
		Kind:  kind,
		Label: label,
	})

	return id
}

func (b *diagramBuilder) edge(from, to, label string) {
	b.diagram.Edges = append(b.diagram.Edges, DiagramEdge{
		From:  from,
		To:    to,
		Label: label,
	})
}

// sequence emits a statement list entered from the given node. It returns
// the node control flow leaves through, or "" when the list diverts flow
// unconditionally (a BREAK). The label applies to the entry edge only.
func (b *diagramBuilder) sequence(stmts []Stmt, from, label string) string {
	cur := from
	for _, stmt := range stmts {
		cur = b.statement(stmt, cur, label)
		label = ""

		if cur == "" {
			return ""
		}
	}

	return cur
}

func (b *diagramBuilder) statement(stmt Stmt, from, label string) string {
	switch s := stmt.(type) {
	case *Assignment:
		n := b.node(NodeProcess, s.Target+" := "+emitExpr(s.Value, 0, false))
		b.edge(from, n, label)
		return n
	case *Output:
		n := b.node(NodeIO, "OUTPUT "+emitExpr(s.Value, 0, false))
		b.edge(from, n, label)
		return n
	case *If:
		cond := emitExpr(s.Condition, 0, false)
		if s.Negated {
			cond = "NOT " + cond
		}

		decision := b.node(NodeDecision, cond+"?")
		b.edge(from, decision, label)

		junction := b.node(NodeJunction, "")

		thenExit := b.sequence(s.Then, decision, "yes")
		if thenExit != "" {
			b.edge(thenExit, junction, "")
		}

		if len(s.Else) > 0 {
			elseExit := b.sequence(s.Else, decision, "no")
			if elseExit != "" {
				b.edge(elseExit, junction, "")
			}
		} else {
			b.edge(decision, junction, "no")
		}

		return junction
	case *Loop:
		entry := b.node(NodeJunction, "LOOP")
		b.edge(from, entry, label)

		exit := b.node(NodeJunction, "")
		b.breakTargets = append(b.breakTargets, exit)

		bodyExit := b.sequence(s.Body, entry, "")
		b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]

		// Back-edge closing the loop
		if bodyExit != "" {
			b.edge(bodyExit, entry, "")
		}

		return exit
	case *Break:
		n := b.node(NodeProcess, "BREAK")
		b.edge(from, n, label)
		b.edge(n, b.breakTargets[len(b.breakTargets)-1], "")

		// Flow never continues past a BREAK
		return ""
	default:
		panic(fmt.Sprintf("unknown statement variant %T", stmt))
	}
}

// Mermaid renders the diagram as a Mermaid "flowchart TD" document.
func (d *Diagram) Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	for _, n := range d.Nodes {
		label := sanitizeLabel(n.Label)
		if label == "" {
			label = " "
		}

		switch n.Kind {
		case NodeStart, NodeEnd:
			fmt.Fprintf(&b, "    %s((%s))\n", n.ID, label)
		case NodeIO:
			fmt.Fprintf(&b, "    %s[[%s]]\n", n.ID, label)
		case NodeDecision:
			fmt.Fprintf(&b, "    %s{%s}\n", n.ID, label)
		case NodeJunction:
			fmt.Fprintf(&b, "    %s((%s))\n", n.ID, label)
		default:
			fmt.Fprintf(&b, "    %s[%s]\n", n.ID, label)
		}
	}

	for _, e := range d.Edges {
		if e.Label != "" {
			fmt.Fprintf(&b, "    %s -->|%s| %s\n", e.From, e.Label, e.To)
		} else {
			fmt.Fprintf(&b, "    %s --> %s\n", e.From, e.To)
		}
	}

	return b.String()
}

// DOT renders the diagram in the Graphviz DOT language.
func (d *Diagram) DOT() string {
	var b strings.Builder
	b.WriteString("digraph flowchart {\n")
	b.WriteString("    rankdir=TB;\n")

	for _, n := range d.Nodes {
		shape := "rectangle"
		switch n.Kind {
		case NodeStart, NodeEnd:
			shape = "oval"
		case NodeIO:
			shape = "parallelogram"
		case NodeDecision:
			shape = "diamond"
		case NodeJunction:
			shape = "point"
		}

		fmt.Fprintf(&b, "    %s [shape=%s, label=%q];\n", n.ID, shape, n.Label)
	}

	for _, e := range d.Edges {
		if e.Label != "" {
			fmt.Fprintf(&b, "    %s -> %s [label=%q];\n", e.From, e.To, e.Label)
		} else {
			fmt.Fprintf(&b, "    %s -> %s;\n", e.From, e.To)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// Mermaid labels cannot hold quotes, colons or parentheses without
// shape-delimiter ambiguity, strip them the way the upstream renderer does.
func sanitizeLabel(label string) string {
	r := strings.NewReplacer(
		":", " ",
		`"`, "'",
		"\n", " ",
		"(", "",
		")", "",
		"{", "",
		"}", "",
	)

	return strings.TrimSpace(r.Replace(label))
}
