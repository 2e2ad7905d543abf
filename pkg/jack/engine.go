package jack

import (
	"fmt"

	"n2t.dev/toolchain/pkg/utils"
)

// response is what a builder reports after consuming (or declining) a token,
// directing the engine's pushdown scope stack. See _examples/original_source's
// JackAstBuilderResponse for the Rust vocabulary this mirrors.
type response int

const (
	respContinue   response = iota // token consumed, this builder stays on top and keeps waiting
	respReady                      // token consumed, this builder is finished; pop it, move on
	respMoveParent                 // token NOT consumed, pop this builder and re-feed the same token below
	respMove                       // token will be consumed by a newly pushed child; re-feed it there
)

// builder is the single production-agnostic interface every grammar
// component implements: feed one token, report how the engine's scope stack
// should react. Builders additionally expose a typed ready()/build() pair
// (declBuilder, stmtBuilder, ...) so their parent can harvest a finished
// result once it's done.
type builder interface {
	feed(tok Token) (response, builder, error)
}

type declBuilder interface {
	builder
	ready() bool
	build() []Variable
}

type subBuilder interface {
	builder
	ready() bool
	build() Subroutine
}

type blockBuilderIface interface {
	builder
	ready() bool
	build() []Statement
}

type stmtBuilder interface {
	builder
	ready() bool
	build() (Statement, error)
}

type exprBuilder interface {
	builder
	ready() bool
	build() (Expression, error)
}

type argsBuilder interface {
	builder
	ready() bool
	build() ([]Expression, error)
}

// engine drives the pushdown builder stack: each incoming token is fed to the
// top-of-stack builder, which either keeps it (Continue/Ready) or declines it
// (MoveParent, re-fed one scope down) or spawns a child to handle it (Move,
// re-fed one scope up). This is the synchronous Go counterpart of the
// feed/Ready/MoveParent/Move engine in the original Rust sources, adapted
// from an async token stream to a plain io.Reader-backed Tokenizer.
type engine struct {
	tokenizer *Tokenizer
	root      *classBuilder
	stack     utils.Stack[builder]
}

func newEngine(tz *Tokenizer) *engine {
	root := newClassBuilder()
	return &engine{tokenizer: tz, root: root, stack: utils.NewStack[builder](root)}
}

// buildClass drains the tokenizer until the root classBuilder reports Ready.
func (e *engine) buildClass() (Class, error) {
	for {
		tok, err := e.tokenizer.Next()
		if err != nil {
			return Class{}, err
		}

		if tok.Kind == TokEOF {
			if e.stack.Count() != 0 {
				return Class{}, fmt.Errorf("unexpected end of input while parsing class")
			}
			break
		}

		if err := e.feed(tok); err != nil {
			return Class{}, err
		}

		if e.stack.Count() == 0 {
			break
		}
	}

	return e.root.class, nil
}

func (e *engine) feed(tok Token) error {
	for {
		if e.stack.Count() == 0 {
			return fmt.Errorf("%d:%d: unexpected %s, no scope left to handle it", tok.Line, tok.Col, tok)
		}

		top, _ := e.stack.Top()
		resp, child, err := top.feed(tok)
		if err != nil {
			return err
		}

		switch resp {
		case respContinue:
			return nil
		case respReady:
			e.stack.Pop()
			return nil
		case respMoveParent:
			e.stack.Pop()
			continue
		case respMove:
			e.stack.Push(child)
			continue
		default:
			return fmt.Errorf("unrecognized builder response %d", resp)
		}
	}
}
