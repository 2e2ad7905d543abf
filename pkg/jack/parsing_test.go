package jack_test

import (
	"strings"
	"testing"

	"n2t.dev/toolchain/pkg/jack"
)

func TestParseExpressions(t *testing.T) {
	test := func(src string, check func(t *testing.T, c jack.Class), fail bool) {
		parser := jack.NewParser(strings.NewReader(src))
		class, err := parser.Parse()
		if err != nil {
			if !fail {
				t.Fatalf("unexpected error: %s", err)
			}
			return
		}
		if fail {
			t.Fatalf("expected an error, got none")
		}
		check(t, class)
	}

	// firstStatement skips the leading 'var' declarations, which the parser keeps
	// in the subroutine body as VarStmt entries.
	firstStatement := func(c jack.Class) jack.Statement {
		sub, _ := c.Subroutines.Get("main")
		for _, stmt := range sub.Statements {
			if _, isVar := stmt.(jack.VarStmt); !isVar {
				return stmt
			}
		}
		return nil
	}

	t.Run("Left-associative binary chain", func(t *testing.T) {
		src := `
		class Main {
			function void main() {
				var int x;
				let x = 1 + 2 * 3;
				return;
			}
		}`
		test(src, func(t *testing.T, c jack.Class) {
			let := firstStatement(c).(jack.LetStmt)
			top, ok := let.Rhs.(jack.BinaryExpr)
			if !ok || top.Type != jack.Multiply {
				t.Fatalf("expected top-level '*' (applied last), got %+v", let.Rhs)
			}
			lhs, ok := top.Lhs.(jack.BinaryExpr)
			if !ok || lhs.Type != jack.Plus {
				t.Fatalf("expected left-hand '+', got %+v", top.Lhs)
			}
		}, false)
	})

	t.Run("Parenthesized sub-expression unwraps directly", func(t *testing.T) {
		src := `
		class Main {
			function void main() {
				var int x;
				let x = (1 + 2) * 3;
				return;
			}
		}`
		test(src, func(t *testing.T, c jack.Class) {
			top := firstStatement(c).(jack.LetStmt).Rhs.(jack.BinaryExpr)
			if top.Type != jack.Multiply {
				t.Fatalf("expected top-level '*', got %+v", top)
			}
			if _, ok := top.Lhs.(jack.BinaryExpr); !ok {
				t.Fatalf("expected parenthesized lhs to unwrap to a BinaryExpr, got %+v", top.Lhs)
			}
		}, false)
	})

	t.Run("Unary negation and bitwise-not", func(t *testing.T) {
		src := `
		class Main {
			function void main() {
				var int x;
				let x = -x;
				let x = ~x;
				return;
			}
		}`
		test(src, func(t *testing.T, c jack.Class) {
			sub, _ := c.Subroutines.Get("main")
			neg := sub.Statements[1].(jack.LetStmt).Rhs.(jack.UnaryExpr)
			if neg.Type != jack.Minus {
				t.Fatalf("expected unary minus, got %+v", neg)
			}
			not := sub.Statements[2].(jack.LetStmt).Rhs.(jack.UnaryExpr)
			if not.Type != jack.BoolNot {
				t.Fatalf("expected unary bool-not, got %+v", not)
			}
		}, false)
	})

	t.Run("Array indexing", func(t *testing.T) {
		src := `
		class Main {
			function void main() {
				var Array a;
				var int x;
				let x = a[1];
				return;
			}
		}`
		test(src, func(t *testing.T, c jack.Class) {
			arr := firstStatement(c).(jack.LetStmt).Rhs.(jack.ArrayExpr)
			if arr.Var != "a" {
				t.Fatalf("expected index into 'a', got %+v", arr)
			}
		}, false)
	})

	t.Run("Unqualified and qualified calls", func(t *testing.T) {
		src := `
		class Main {
			function void main() {
				var int x;
				let x = helper(1, 2);
				let x = Math.multiply(1, 2);
				return;
			}
		}`
		test(src, func(t *testing.T, c jack.Class) {
			sub, _ := c.Subroutines.Get("main")

			bare := sub.Statements[1].(jack.LetStmt).Rhs.(jack.FuncCallExpr)
			if bare.IsExtCall || bare.FuncName != "helper" || len(bare.Arguments) != 2 {
				t.Fatalf("expected bare call to 'helper' with 2 args, got %+v", bare)
			}

			qualified := sub.Statements[2].(jack.LetStmt).Rhs.(jack.FuncCallExpr)
			if !qualified.IsExtCall || qualified.Var != "Math" || qualified.FuncName != "multiply" {
				t.Fatalf("expected qualified call to 'Math.multiply', got %+v", qualified)
			}
		}, false)
	})

	t.Run("Keyword constants", func(t *testing.T) {
		src := `
		class Main {
			function void main() {
				var boolean x;
				let x = true;
				let x = false;
				let x = null;
				return;
			}
		}`
		test(src, func(t *testing.T, c jack.Class) {
			sub, _ := c.Subroutines.Get("main")
			for i, want := range []string{"true", "false", "null"} {
				lit := sub.Statements[i+1].(jack.LetStmt).Rhs.(jack.LiteralExpr)
				if lit.Value != want {
					t.Fatalf("statement %d: expected literal %q, got %+v", i, want, lit)
				}
			}
		}, false)
	})

	t.Run("Unmatched bracket is an error", func(t *testing.T) {
		src := `
		class Main {
			function void main() {
				var Array a;
				var int x;
				let x = a[1;
				return;
			}
		}`
		test(src, nil, true)
	})
}
