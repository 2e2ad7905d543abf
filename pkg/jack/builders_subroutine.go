package jack

import (
	"fmt"

	"n2t.dev/toolchain/pkg/utils"
)

type subStage int

const (
	subAwaitKind subStage = iota
	subAwaitReturnType
	subAwaitName
	subAwaitOpenParen
	subAwaitParamTypeOrClose
	subAwaitParamName
	subAwaitParamCommaOrClose
	subAwaitOpenBrace
	subAwaitBodyVars
	subAwaitBodyStatements
	subDone
)

// subroutineBuilder parses '(constructor|function|method) (void|type) name
// '(' paramList ')' '{' varDec* statements '}'', grounded on
// rust_code/jack_ast/src/gramar/subroutine_dec.rs and subroutine_body.rs.
// Parameters are parsed inline (the grammar is small and linear); the local
// 'var' declarations and the statement block are each delegated to their own
// builder, same split as classBuilder's vars/subroutines sections.
type subroutineBuilder struct {
	stage subStage
	sub   Subroutine

	paramDataType  DataType
	paramClassName string

	pendingVar   declBuilder
	pendingBlock blockBuilderIface
}

func newSubroutineBuilder() *subroutineBuilder {
	return &subroutineBuilder{sub: Subroutine{Arguments: utils.NewOrderedMap[string, Variable]()}}
}

func (sb *subroutineBuilder) feed(tok Token) (response, builder, error) {
	switch sb.stage {
	case subAwaitKind:
		switch tok.Text {
		case "constructor":
			sb.sub.Type = Constructor
		case "function":
			sb.sub.Type = Function
		case "method":
			sb.sub.Type = Method
		default:
			return 0, nil, fmt.Errorf("%d:%d: expected a subroutine kind, got %s", tok.Line, tok.Col, tok)
		}
		sb.stage = subAwaitReturnType
		return respContinue, nil, nil

	case subAwaitReturnType:
		if tok.Kind == TokKeyword && tok.Text == "void" {
			sb.sub.Return = Void
		} else if tok.Kind == TokKeyword {
			dt, _ := dataTypeOf(tok.Text)
			sb.sub.Return = dt
		} else if tok.Kind == TokIdent {
			sb.sub.Return = Object // class-typed return value, see DESIGN.md
		} else {
			return 0, nil, fmt.Errorf("%d:%d: expected a return type, got %s", tok.Line, tok.Col, tok)
		}
		sb.stage = subAwaitName
		return respContinue, nil, nil

	case subAwaitName:
		if tok.Kind != TokIdent {
			return 0, nil, fmt.Errorf("%d:%d: expected a subroutine name, got %s", tok.Line, tok.Col, tok)
		}
		sb.sub.Name = tok.Text
		sb.stage = subAwaitOpenParen
		return respContinue, nil, nil

	case subAwaitOpenParen:
		if tok.Kind != TokSymbol || tok.Text != "(" {
			return 0, nil, fmt.Errorf("%d:%d: expected '(', got %s", tok.Line, tok.Col, tok)
		}
		sb.stage = subAwaitParamTypeOrClose
		return respContinue, nil, nil

	case subAwaitParamTypeOrClose:
		if tok.Kind == TokSymbol && tok.Text == ")" {
			sb.stage = subAwaitOpenBrace
			return respContinue, nil, nil
		}
		if !isTypeToken(tok) {
			return 0, nil, fmt.Errorf("%d:%d: expected a parameter type or ')', got %s", tok.Line, tok.Col, tok)
		}
		if tok.Kind == TokKeyword {
			dt, _ := dataTypeOf(tok.Text)
			sb.paramDataType, sb.paramClassName = dt, ""
		} else {
			sb.paramDataType, sb.paramClassName = Object, tok.Text
		}
		sb.stage = subAwaitParamName
		return respContinue, nil, nil

	case subAwaitParamName:
		if tok.Kind != TokIdent {
			return 0, nil, fmt.Errorf("%d:%d: expected a parameter name, got %s", tok.Line, tok.Col, tok)
		}
		arg := Variable{Name: tok.Text, Type: Parameter, DataType: sb.paramDataType, ClassName: sb.paramClassName}
		sb.sub.Arguments.Set(arg.Name, arg)
		sb.stage = subAwaitParamCommaOrClose
		return respContinue, nil, nil

	case subAwaitParamCommaOrClose:
		if tok.Kind == TokSymbol && tok.Text == "," {
			sb.stage = subAwaitParamTypeOrClose
			return respContinue, nil, nil
		}
		if tok.Kind == TokSymbol && tok.Text == ")" {
			sb.stage = subAwaitOpenBrace
			return respContinue, nil, nil
		}
		return 0, nil, fmt.Errorf("%d:%d: expected ',' or ')', got %s", tok.Line, tok.Col, tok)

	case subAwaitOpenBrace:
		if tok.Kind != TokSymbol || tok.Text != "{" {
			return 0, nil, fmt.Errorf("%d:%d: expected '{', got %s", tok.Line, tok.Col, tok)
		}
		sb.stage = subAwaitBodyVars
		return respContinue, nil, nil

	case subAwaitBodyVars:
		return sb.feedBodyVars(tok)

	case subAwaitBodyStatements:
		return sb.feedBodyStatements(tok)

	default:
		// The body already finished (block consumed the closing brace); this
		// token belongs to whoever encloses us, pass it up unconsumed.
		return respMoveParent, nil, nil
	}
}

func (sb *subroutineBuilder) feedBodyVars(tok Token) (response, builder, error) {
	// Local 'var' declarations are ordinary VarStmt statements (see jack.go),
	// prepended ahead of whatever the body's actual statements turn out to be.
	if sb.pendingVar != nil {
		sb.sub.Statements = append(sb.sub.Statements, VarStmt{Vars: sb.pendingVar.build()})
		sb.pendingVar = nil
	}

	if tok.Kind == TokKeyword && tok.Text == "var" {
		child := newDeclarationBuilder()
		sb.pendingVar = child
		return respMove, child, nil
	}

	sb.stage = subAwaitBodyStatements
	return sb.feedBodyStatements(tok)
}

func (sb *subroutineBuilder) feedBodyStatements(tok Token) (response, builder, error) {
	if sb.pendingBlock != nil {
		sb.sub.Statements = append(sb.sub.Statements, sb.pendingBlock.build()...)
		sb.pendingBlock = nil
		sb.stage = subDone
		return respMoveParent, nil, nil
	}

	child := newBlockBuilder()
	sb.pendingBlock = child
	return respMove, child, nil
}

func (sb *subroutineBuilder) ready() bool { return sb.stage == subDone }

func (sb *subroutineBuilder) build() Subroutine { return sb.sub }
