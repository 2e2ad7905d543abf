package jack

import (
	"fmt"

	"n2t.dev/toolchain/pkg/utils"
)

type classStage int

const (
	csAwaitClass classStage = iota
	csAwaitName
	csAwaitBrace
	csAwaitVars
	csAwaitSubroutines
	csReady
)

// classBuilder parses 'class Name { classVarDec* subroutineDec* }', the
// single top-level production every Jack source file reduces to.
type classBuilder struct {
	stage classStage
	class Class

	pendingVar declBuilder
	pendingSub subBuilder
}

func newClassBuilder() *classBuilder {
	return &classBuilder{
		class: Class{
			Fields:      utils.NewOrderedMap[string, Variable](),
			Subroutines: utils.NewOrderedMap[string, Subroutine](),
		},
	}
}

func (cb *classBuilder) harvestVar() {
	if cb.pendingVar == nil {
		return
	}
	for _, v := range cb.pendingVar.build() {
		cb.class.Fields.Set(v.Name, v)
	}
	cb.pendingVar = nil
}

func (cb *classBuilder) harvestSub() {
	if cb.pendingSub == nil {
		return
	}
	sub := cb.pendingSub.build()
	cb.class.Subroutines.Set(sub.Name, sub)
	cb.pendingSub = nil
}

func (cb *classBuilder) feed(tok Token) (response, builder, error) {
	switch cb.stage {
	case csAwaitClass:
		if tok.Kind == TokKeyword && tok.Text == "class" {
			cb.stage = csAwaitName
			return respContinue, nil, nil
		}
		return 0, nil, fmt.Errorf("%d:%d: expected 'class', got %s", tok.Line, tok.Col, tok)

	case csAwaitName:
		if tok.Kind != TokIdent {
			return 0, nil, fmt.Errorf("%d:%d: expected class name, got %s", tok.Line, tok.Col, tok)
		}
		cb.class.Name = tok.Text
		cb.stage = csAwaitBrace
		return respContinue, nil, nil

	case csAwaitBrace:
		if tok.Kind != TokSymbol || tok.Text != "{" {
			return 0, nil, fmt.Errorf("%d:%d: expected '{', got %s", tok.Line, tok.Col, tok)
		}
		cb.stage = csAwaitVars
		return respContinue, nil, nil

	case csAwaitVars:
		return cb.feedAwaitVars(tok)

	case csAwaitSubroutines:
		return cb.feedAwaitSubroutines(tok)

	default:
		return 0, nil, fmt.Errorf("%d:%d: unexpected %s after class body is closed", tok.Line, tok.Col, tok)
	}
}

func (cb *classBuilder) feedAwaitVars(tok Token) (response, builder, error) {
	if tok.Kind == TokKeyword && isVarDeclKeyword(tok.Text) {
		cb.harvestVar()
		child := newDeclarationBuilder()
		cb.pendingVar = child
		return respMove, child, nil
	}

	if tok.Kind == TokSymbol && tok.Text == "}" {
		cb.harvestVar()
		cb.stage = csReady
		return respReady, nil, nil
	}

	cb.harvestVar()
	cb.stage = csAwaitSubroutines
	return cb.feedAwaitSubroutines(tok)
}

func (cb *classBuilder) feedAwaitSubroutines(tok Token) (response, builder, error) {
	if tok.Kind == TokKeyword && isSubroutineKeyword(tok.Text) {
		cb.harvestSub()
		child := newSubroutineBuilder()
		cb.pendingSub = child
		return respMove, child, nil
	}

	if tok.Kind == TokSymbol && tok.Text == "}" {
		cb.harvestSub()
		cb.stage = csReady
		return respReady, nil, nil
	}

	return 0, nil, fmt.Errorf("%d:%d: expected a subroutine declaration or '}', got %s", tok.Line, tok.Col, tok)
}

type declStage int

const (
	dAwaitKeyword declStage = iota
	dAwaitType
	dAwaitName
	dAwaitCommaOrSemi
)

// declarationBuilder parses one '(static|field|var) type name (, name)* ;'
// declaration, shared by class member declarations and subroutine-local 'var'
// declarations (grounded on rust_code/jack_ast/src/gramar/class_var.rs).
type declarationBuilder struct {
	stage declStage

	varType   VarType
	dataType  DataType
	className string
	names     []string

	done bool
}

func newDeclarationBuilder() *declarationBuilder { return &declarationBuilder{} }

func (db *declarationBuilder) feed(tok Token) (response, builder, error) {
	switch db.stage {
	case dAwaitKeyword:
		switch tok.Text {
		case "field":
			db.varType = Field
		case "static":
			db.varType = Static
		case "var":
			db.varType = Local
		default:
			return 0, nil, fmt.Errorf("%d:%d: expected 'field', 'static' or 'var', got %s", tok.Line, tok.Col, tok)
		}
		db.stage = dAwaitType
		return respContinue, nil, nil

	case dAwaitType:
		if !isTypeToken(tok) {
			return 0, nil, fmt.Errorf("%d:%d: expected a type, got %s", tok.Line, tok.Col, tok)
		}
		if tok.Kind == TokKeyword {
			dt, _ := dataTypeOf(tok.Text)
			db.dataType = dt
		} else {
			// Class-typed declaration, including the 'Array'/'String' library
			// classes: modeled as an ordinary Object reference, see DESIGN.md.
			db.dataType = Object
			db.className = tok.Text
		}
		db.stage = dAwaitName
		return respContinue, nil, nil

	case dAwaitName:
		if tok.Kind != TokIdent {
			return 0, nil, fmt.Errorf("%d:%d: expected a variable name, got %s", tok.Line, tok.Col, tok)
		}
		db.names = append(db.names, tok.Text)
		db.stage = dAwaitCommaOrSemi
		return respContinue, nil, nil

	case dAwaitCommaOrSemi:
		if tok.Kind == TokSymbol && tok.Text == "," {
			db.stage = dAwaitName
			return respContinue, nil, nil
		}
		if tok.Kind == TokSymbol && tok.Text == ";" {
			db.done = true
			return respReady, nil, nil
		}
		return 0, nil, fmt.Errorf("%d:%d: expected ',' or ';', got %s", tok.Line, tok.Col, tok)

	default:
		return 0, nil, fmt.Errorf("internal error: unreachable declaration stage")
	}
}

func (db *declarationBuilder) ready() bool { return db.done }

func (db *declarationBuilder) build() []Variable {
	vars := make([]Variable, 0, len(db.names))
	for _, name := range db.names {
		vars = append(vars, Variable{Name: name, Type: db.varType, DataType: db.dataType, ClassName: db.className})
	}
	return vars
}
