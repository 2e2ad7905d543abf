package jack

import (
	"fmt"
	"io"
)

// bufSize is the bounded residency window the Tokenizer keeps in memory at
// once (spec §4.C): large enough for ordinary Jack tokens plus refill slack
// (a longer token grows the buffer, see fill), small enough that tokenizing a
// multi-megabyte source file never requires buffering it whole.
const bufSize = 4096

// Tokenizer turns a byte stream into Jack tokens one at a time, refilling its
// bounded buffer from the underlying io.Reader as it's consumed. It holds at
// most bufSize bytes of source text in memory regardless of input size, unless
// a single token is longer than that, in which case the buffer grows to fit
// the token (see fill). The original Rust lexer's fixed-size ring applied a
// similar bound to its own buffer (see _examples/original_source's JackTokenizer).
type Tokenizer struct {
	reader io.Reader
	buf    []byte
	start  int // first unconsumed byte in buf
	end    int // one past the last valid byte in buf
	eof    bool

	line, col int // position of buf[start], 1-indexed
	consumed  int // total bytes advanced past since the start of the stream
	index     int // monotonic count of tokens emitted so far

	skipComments bool
}

// NewTokenizer wraps 'r'. The 'skipComments' flag is stored but has no effect:
// comments are always skipped and no comment tokens are ever produced.
func NewTokenizer(r io.Reader, skipComments bool) *Tokenizer {
	return &Tokenizer{reader: r, buf: make([]byte, bufSize), line: 1, col: 1, skipComments: skipComments}
}

// fill slides any unconsumed bytes to the front of the buffer and reads more
// from the reader, growing the buffer only if a single token would otherwise
// not fit (an identifier or string literal longer than bufSize).
func (t *Tokenizer) fill() error {
	if t.eof {
		return nil
	}

	residency := t.end - t.start
	if t.start > 0 {
		copy(t.buf, t.buf[t.start:t.end])
		t.start, t.end = 0, residency
	}

	if t.end == len(t.buf) { // current token doesn't fit, grow the window
		grown := make([]byte, len(t.buf)*2)
		copy(grown, t.buf[:t.end])
		t.buf = grown
	}

	n, err := t.reader.Read(t.buf[t.end:])
	t.end += n
	if err == io.EOF || n == 0 {
		t.eof = true
	} else if err != nil {
		return fmt.Errorf("error refilling tokenizer buffer: %w", err)
	}
	return nil
}

// peek returns the byte 'offset' positions ahead of the cursor, refilling as
// needed, and ok=false once the stream is exhausted.
func (t *Tokenizer) peek(offset int) (byte, bool, error) {
	for t.start+offset >= t.end {
		if t.eof {
			return 0, false, nil
		}
		if err := t.fill(); err != nil {
			return 0, false, err
		}
		if t.start+offset >= t.end && t.eof {
			return 0, false, nil
		}
	}
	return t.buf[t.start+offset], true, nil
}

func (t *Tokenizer) advance() {
	if t.buf[t.start] == '\n' {
		t.line++
		t.col = 1
	} else {
		t.col++
	}
	t.start++
	t.consumed++
}

func (t *Tokenizer) skipWhitespaceAndComments() error {
	for {
		c, ok, err := t.peek(0)
		if err != nil || !ok {
			return err
		}

		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			t.advance()
			continue
		}

		if c == '/' {
			c2, ok2, err := t.peek(1)
			if err != nil {
				return err
			}
			if ok2 && c2 == '/' { // single-line comment
				for {
					c, ok, err := t.peek(0)
					if err != nil {
						return err
					}
					if !ok || c == '\n' {
						break
					}
					t.advance()
				}
				continue
			}
			// '/*' and '/**' are both terminated by the first '*/' and are not
			// treated differently in any way (spec §9(c)): one rule handles both.
			if ok2 && c2 == '*' {
				t.advance()
				t.advance()
				for {
					c, ok, err := t.peek(0)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("unterminated block comment")
					}
					if c == '*' {
						c2, ok2, err := t.peek(1)
						if err != nil {
							return err
						}
						if ok2 && c2 == '/' {
							t.advance()
							t.advance()
							break
						}
					}
					t.advance()
				}
				continue
			}
		}

		return nil
	}
}

// Next returns the next token in the stream, or a TokEOF token once exhausted.
// Every returned token carries its byte offset/length and a monotonic, dense
// index within the stream (spec §3's file-context invariant).
func (t *Tokenizer) Next() (Token, error) {
	if err := t.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	offset, index := t.consumed, t.index
	tok, err := t.next()
	if err != nil {
		return Token{}, err
	}

	tok.Offset, tok.Length, tok.Index = offset, t.consumed-offset, index
	if tok.Kind != TokEOF {
		t.index++
	}
	return tok, nil
}

// next performs the actual lexical classification; Next wraps it to stamp
// file-context fields uniformly regardless of which branch below fires.
func (t *Tokenizer) next() (Token, error) {
	c, ok, err := t.peek(0)
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{Kind: TokEOF, Line: t.line, Col: t.col}, nil
	}

	line, col := t.line, t.col

	if symbols[c] {
		t.advance()
		return Token{Kind: TokSymbol, Text: string(c), Line: line, Col: col}, nil
	}

	if c == '"' {
		t.advance()
		text := []byte{}
		for {
			c, ok, err := t.peek(0)
			if err != nil {
				return Token{}, err
			}
			if !ok {
				return Token{}, fmt.Errorf("%d:%d: unterminated string literal", line, col)
			}
			if c == '"' {
				t.advance()
				break
			}
			if c == '\n' {
				return Token{}, fmt.Errorf("%d:%d: newline in string literal", line, col)
			}
			text = append(text, c)
			t.advance()
		}
		return Token{Kind: TokStringConst, Text: string(text), Line: line, Col: col}, nil
	}

	if c >= '0' && c <= '9' {
		text := []byte{}
		for {
			c, ok, err := t.peek(0)
			if err != nil {
				return Token{}, err
			}
			if !ok || c < '0' || c > '9' {
				break
			}
			text = append(text, c)
			t.advance()
		}
		return Token{Kind: TokIntConst, Text: string(text), Line: line, Col: col}, nil
	}

	if isIdentStart(c) {
		text := []byte{}
		for {
			c, ok, err := t.peek(0)
			if err != nil {
				return Token{}, err
			}
			if !ok || !isIdentPart(c) {
				break
			}
			text = append(text, c)
			t.advance()
		}

		kind := TokIdent
		if keywords[string(text)] {
			kind = TokKeyword
		}
		return Token{Kind: kind, Text: string(text), Line: line, Col: col}, nil
	}

	return Token{}, fmt.Errorf("%d:%d: unrecognized character %q", line, col, c)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
