package jack_test

import (
	"strings"
	"testing"

	"n2t.dev/toolchain/pkg/jack"
	"n2t.dev/toolchain/pkg/vm"
)

// compile parses a single-class source and lowers it straight to its VM-IR
// text lines, for comparison against the exact sequences spec §8 names.
func compile(t *testing.T, src string) []string {
	t.Helper()

	parser := jack.NewParser(strings.NewReader(src))
	class, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}

	lowerer := jack.NewLowerer(jack.Program{class.Name: class})
	program, err := lowerer.Lowerer()
	if err != nil {
		t.Fatalf("unexpected lowering error: %s", err)
	}

	codegen := vm.NewCodeGenerator(program)
	compiled, err := codegen.Generate()
	if err != nil {
		t.Fatalf("unexpected codegen error: %s", err)
	}
	return compiled[class.Name]
}

// TestS2FunctionReturningConstant is spec §8 scenario S2.
func TestS2FunctionReturningConstant(t *testing.T) {
	got := compile(t, `class X { function int f() { return 42; } }`)
	want := []string{"function X.f 0", "push constant 42", "return"}

	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("got:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

// TestS3ConstructorAllocatesAndReturnsThis is spec §8 scenario S3.
func TestS3ConstructorAllocatesAndReturnsThis(t *testing.T) {
	got := compile(t, `class X { field int a, b; constructor X new() { let a = 1; let b = 2; return this; } }`)

	wantPrefix := []string{
		"function X.new 0",
		"push constant 2",
		"call Memory.alloc 1",
		"pop pointer 0",
	}
	wantSuffix := []string{"push pointer 0", "return"}

	if len(got) < len(wantPrefix)+len(wantSuffix) {
		t.Fatalf("compiled output too short: %v", got)
	}
	for i, line := range wantPrefix {
		if got[i] != line {
			t.Fatalf("prefix mismatch at %d: got %q, want %q\nfull: %v", i, got[i], line, got)
		}
	}
	for i, line := range wantSuffix {
		if got[len(got)-len(wantSuffix)+i] != line {
			t.Fatalf("suffix mismatch at %d: got %q, want %q\nfull: %v", i, got[len(got)-len(wantSuffix)+i], line, got)
		}
	}
}

// TestS4ArrayAssignmentEvaluatesRhsBeforeFinalizingAddress is spec §8 scenario S4:
// 'let a[i+1] = a[i] + 1;' must compute the RHS before the index write finalizes
// 'that'/'pointer 1', so a self-referential index expression observes the old value.
func TestS4ArrayAssignmentEvaluatesRhsBeforeFinalizingAddress(t *testing.T) {
	got := compile(t, `
		class X {
			field Array a;
			field int i;
			method void bump() {
				let a[i+1] = a[i] + 1;
				return;
			}
		}`)

	joined := strings.Join(got, "\n")

	// The RHS ('a[i] + 1', itself an array read through pointer 1) must be fully
	// evaluated, and the base+index for the LHS computed, before the second
	// 'pop pointer 1' (which finalizes the write address) executes.
	firstPopPointer1 := strings.Index(joined, "pop pointer 1")
	lastPopPointer1 := strings.LastIndex(joined, "pop pointer 1")
	if firstPopPointer1 == -1 || firstPopPointer1 == lastPopPointer1 {
		t.Fatalf("expected two distinct 'pop pointer 1' (one for the RHS read, one for the LHS write), got:\n%s", joined)
	}

	popTemp0 := strings.Index(joined, "pop temp 0")
	if popTemp0 == -1 || popTemp0 < firstPopPointer1 {
		t.Fatalf("expected the RHS value to be stashed in temp 0 after being computed but before the write address is finalized:\n%s", joined)
	}
	if popTemp0 > lastPopPointer1 {
		t.Fatalf("expected 'pop temp 0' (stash RHS) to precede the final 'pop pointer 1' (commit write address):\n%s", joined)
	}
}

// TestS5IfElseLabelNaming is spec §8 scenario S5: the first if/else inside
// Main.run must produce IF_TRUE_Main_run_0 / IF_FALSE_Main_run_0 / IF_END_Main_run_0.
func TestS5IfElseLabelNaming(t *testing.T) {
	got := compile(t, `
		class Main {
			function void run() {
				var int x, y;
				if (x) {
					let y = 1;
				} else {
					let y = 2;
				}
				return;
			}
		}`)

	joined := strings.Join(got, "\n")
	for _, label := range []string{"IF_TRUE_Main_run_0", "IF_FALSE_Main_run_0", "IF_END_Main_run_0"} {
		if !strings.Contains(joined, label) {
			t.Fatalf("expected label %q in compiled output:\n%s", label, joined)
		}
	}
}

// TestStackBalance is spec §8 testable property #5: simulating the VM ops
// with a symbolic stack must leave a net height of exactly +1 at every
// 'return'. Per the Jack VM calling convention (spec §4.E), a void return
// still pushes a throwaway 'constant 0' immediately before the 'return' op,
// so every call - void or not - leaves exactly one word for its caller to
// either use or discard (the latter via the 'do' statement's 'pop temp 0').
func TestStackBalance(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"void function", `class X { function void f() { do X.g(); return; } function void g() { return; } }`},
		{"non-void function", `class X { function int f() { var int a; let a = 1 + 2; return a; } }`},
		{"method with control flow", `class X {
			field int a;
			method int get() {
				if (a) { let a = a + 1; } else { let a = a - 1; }
				while (a) { let a = a - 1; }
				return a;
			}
		}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := compile(t, tc.src)

			height := 0
			for _, line := range got {
				fields := strings.Fields(line)
				switch fields[0] {
				case "function":
					height = 0 // each function starts from its own empty working stack
				case "push":
					height++
				case "pop", "if-goto":
					height--
				case "add", "sub", "and", "or", "eq", "gt", "lt":
					height--
				case "neg", "not":
					// unary: no net change
				case "call":
					nArgs := fields[len(fields)-1]
					n := 0
					for _, r := range nArgs {
						n = n*10 + int(r-'0')
					}
					height -= n
					height++ // the call leaves exactly one return value on the stack
				case "return":
					if height != 1 {
						t.Fatalf("%s: stack height at 'return' is %d, want 1\nfull:\n%s", tc.name, height, strings.Join(got, "\n"))
					}
				}
			}
		})
	}
}
