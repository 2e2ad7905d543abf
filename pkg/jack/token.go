package jack

import "fmt"

// TokenKind classifies a lexical token produced by the Tokenizer.
type TokenKind uint8

const (
	TokEOF TokenKind = iota
	TokKeyword
	TokSymbol
	TokIdent
	TokIntConst
	TokStringConst
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "eof"
	case TokKeyword:
		return "keyword"
	case TokSymbol:
		return "symbol"
	case TokIdent:
		return "identifier"
	case TokIntConst:
		return "integer constant"
	case TokStringConst:
		return "string constant"
	default:
		return "unknown"
	}
}

// Token is a single lexeme plus the source position it was read from, used to
// build the 'Compilation error <file>:<line>:<column>' diagnostics spec §6 requires.
type Token struct {
	Kind  TokenKind
	Text  string // Keyword/symbol spelling, identifier name, or the literal's raw text
	Line  int    // 1-indexed line the token starts on
	Col   int    // 1-indexed column the token starts on

	Offset int // byte offset of the token's first byte within the source stream
	Length int // byte length of the token, 0 for TokEOF
	Index  int // monotonic, dense index of this token within the stream (first token is 0)
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Text, t.Line, t.Col)
}

// keywords is the full Jack keyword set.
var keywords = map[string]bool{
	"class": true, "constructor": true, "function": true, "method": true,
	"field": true, "static": true, "var": true,
	"int": true, "char": true, "boolean": true, "void": true,
	"true": true, "false": true, "null": true, "this": true,
	"let": true, "do": true, "if": true, "else": true, "while": true, "return": true,
}

// symbols is the full Jack single-character symbol set.
var symbols = map[byte]bool{
	'{': true, '}': true, '(': true, ')': true, '[': true, ']': true,
	'.': true, ',': true, ';': true,
	'+': true, '-': true, '*': true, '/': true, '&': true, '|': true,
	'<': true, '>': true, '=': true, '~': true,
}

// isVarDeclKeyword reports whether 'text' starts a class-level or local variable
// declaration ('static'/'field' at class scope, 'var' inside a subroutine body).
func isVarDeclKeyword(text string) bool {
	return text == "static" || text == "field" || text == "var"
}

// isSubroutineKeyword reports whether 'text' starts a subroutine declaration.
func isSubroutineKeyword(text string) bool {
	return text == "constructor" || text == "function" || text == "method"
}

// isTypeToken reports whether 'tok' can start a Jack type (a primitive keyword
// or a class-name identifier).
func isTypeToken(tok Token) bool {
	if tok.Kind == TokIdent {
		return true
	}
	return tok.Kind == TokKeyword && (tok.Text == "int" || tok.Text == "char" || tok.Text == "boolean")
}

// isBinaryOpSymbol reports whether 'text' is one of the 9 Jack binary operators.
func isBinaryOpSymbol(text string) bool {
	switch text {
	case "+", "-", "*", "/", "&", "|", "<", ">", "=":
		return true
	default:
		return false
	}
}

// dataTypeOf maps a primitive type keyword to its DataType; returns (Void, false)
// for anything else (callers fall back to treating the token as a class name).
func dataTypeOf(keyword string) (DataType, bool) {
	switch keyword {
	case "int":
		return Int, true
	case "char":
		return Char, true
	case "boolean":
		return Bool, true
	case "void":
		return Void, true
	default:
		return Void, false
	}
}
