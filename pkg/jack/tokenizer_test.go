package jack_test

import (
	"strings"
	"testing"

	"n2t.dev/toolchain/pkg/jack"
)

// collect drains every non-EOF token off 'src', skipping comments (mirroring
// the default 'skipComments=true' CLI usage).
func collect(t *testing.T, src string) []jack.Token {
	t.Helper()

	tz := jack.NewTokenizer(strings.NewReader(src), true)
	tokens := []jack.Token{}
	for {
		tok, err := tz.Next()
		if err != nil {
			t.Fatalf("unexpected tokenizer error: %s", err)
		}
		if tok.Kind == jack.TokEOF {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func TestTokenizerIndicesAreMonotonicAndDense(t *testing.T) {
	src := `class Main { function void main() { do Output.printString("hi"); return; } }`
	tokens := collect(t, src)

	if len(tokens) == 0 {
		t.Fatalf("expected at least one token")
	}
	for i, tok := range tokens {
		if tok.Index != i {
			t.Fatalf("token %d (%s): expected dense Index %d, got %d", i, tok, i, tok.Index)
		}
		if i > 0 && tok.Index != tokens[i-1].Index+1 {
			t.Fatalf("token indices not monotonic at %d: %d -> %d", i, tokens[i-1].Index, tok.Index)
		}
	}
}

// TestTokenizerRoundTrip checks spec §8 testable property #1: rejoining
// tokens with single spaces and re-tokenizing yields the same token sequence.
func TestTokenizerRoundTrip(t *testing.T) {
	sources := []string{
		`class Main { function void main() { var int x; let x = 1 + 2 * 3; return; } }`,
		`class Fraction { field int num, denom; constructor Fraction new(int n, int d) { let num = n; let denom = d; return this; } }`,
		`class Strings { function void go() { do Output.printString("hello, world!"); return; } }`,
	}

	for _, src := range sources {
		original := collect(t, src)

		words := make([]string, len(original))
		for i, tok := range original {
			if tok.Kind == jack.TokStringConst {
				words[i] = `"` + tok.Text + `"`
			} else {
				words[i] = tok.Text
			}
		}
		rejoined := collect(t, strings.Join(words, " "))

		if len(rejoined) != len(original) {
			t.Fatalf("round-trip length mismatch: got %d tokens, want %d", len(rejoined), len(original))
		}
		for i := range original {
			if original[i].Kind != rejoined[i].Kind || original[i].Text != rejoined[i].Text {
				t.Fatalf("token %d mismatch: got %s, want %s", i, rejoined[i], original[i])
			}
		}
	}
}

func TestTokenizerComments(t *testing.T) {
	t.Run("line comment elided", func(t *testing.T) {
		tokens := collect(t, "let x = 1; // trailing comment\nlet y = 2;")
		if len(tokens) != 10 {
			t.Fatalf("expected 10 tokens (2x 'let x = 1 ;'), got %d: %v", len(tokens), tokens)
		}
	})

	t.Run("block and doc-block comments treated identically", func(t *testing.T) {
		a := collect(t, "/* a block comment */ let x = 1;")
		b := collect(t, "/** a doc-style block comment */ let x = 1;")
		if len(a) != len(b) {
			t.Fatalf("expected '/*' and '/**' comments to be elided identically, got %d vs %d tokens", len(a), len(b))
		}
	})

	t.Run("unterminated block comment is an error", func(t *testing.T) {
		tz := jack.NewTokenizer(strings.NewReader("/* never closed"), true)
		if _, err := tz.Next(); err == nil {
			t.Fatalf("expected an error for an unterminated block comment")
		}
	})
}

func TestTokenizerStringLiteralRejectsEmbeddedNewline(t *testing.T) {
	tz := jack.NewTokenizer(strings.NewReader("\"broken\nstring\""), true)
	if _, err := tz.Next(); err == nil {
		t.Fatalf("expected an error for a newline inside a string literal")
	}
}

func TestTokenizerLongTokenAcrossBufferBoundary(t *testing.T) {
	// Exercise the refill/grow path: an identifier longer than the 4 KiB buffer
	// must still come back as a single, whole token (spec §4.C step 7).
	long := strings.Repeat("x", 8192)
	tokens := collect(t, long+" 1")

	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Kind != jack.TokIdent || len(tokens[0].Text) != len(long) {
		t.Fatalf("expected the oversized identifier to come back whole, got length %d", len(tokens[0].Text))
	}
}
