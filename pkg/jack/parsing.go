package jack

import "io"

// ----------------------------------------------------------------------------
// Jack Parser

// Parser turns a stream of Jack source into a single Class. Unlike pkg/vm and
// pkg/asm's text formats, Jack cannot be parsed with whole-buffer parser
// combinators without giving up the bounded-memory streaming guarantee (spec
// §4.C): instead it drives the bounded Tokenizer through the pushdown builder
// stack in engine.go, one token at a time (see DESIGN.md).
type Parser struct {
	skipComments bool
	tokenizer    *Tokenizer
}

// NewParser wraps 'r', tokenizing and parsing a single Jack class out of it.
func NewParser(r io.Reader) Parser {
	return Parser{tokenizer: NewTokenizer(r, true)}
}

// Parse drains the underlying Tokenizer through a fresh engine and returns
// the single Class the source file reduces to.
func (p *Parser) Parse() (Class, error) {
	e := newEngine(p.tokenizer)
	return e.buildClass()
}
