package comet

import (
	"io"
)

// Artifacts bundles every output the pipeline produces from one source
// text. Each artifact is derived independently from the same immutable
// tree.
type Artifacts struct {
	Program *Program
	JSON    []byte
	DSL     string
	Diagram *Diagram
}

// Translator runs the full pipeline: lex, parse, then each emitter once.
type Translator struct{}

func NewTranslator() *Translator {
	return &Translator{}
}

func (t *Translator) Translate(filename string) (*Artifacts, error) {
	lexer, err := NewLexer(filename)
	if err != nil {
		return nil, err
	}

	return t.translate(lexer)
}

func (t *Translator) TranslateFromReader(filename string, reader io.Reader) (*Artifacts, error) {
	return t.translate(NewLexerFromReader(filename, reader))
}

func (t *Translator) TranslateSource(source string) (*Artifacts, error) {
	return t.translate(NewLexerFromString(source))
}

func (t *Translator) translate(lexer *Lexer) (*Artifacts, error) {
	prog, err := NewParser(lexer).Run()
	if err != nil {
		return nil, err
	}

	jsonTree, err := MarshalProgram(prog)
	if err != nil {
		return nil, err
	}

	return &Artifacts{
		Program: prog,
		JSON:    jsonTree,
		DSL:     EmitDSL(prog),
		Diagram: EmitDiagram(prog),
	}, nil
}

// Parse is the lex+parse front half on its own, for callers that only
// need the tree.
func Parse(source string) (*Program, error) {
	return NewParser(NewLexerFromString(source)).Run()
}
