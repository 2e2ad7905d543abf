package hack_test

import (
	"fmt"
	"testing"

	"n2t.dev/toolchain/pkg/hack"
)

func TestAInstructions(t *testing.T) {
	table := hack.SymbolTable{"Test1": 0, "Test2": 67, "hmny": 9393, "n2t": 754, "JUMP": 90}
	codegen := hack.NewCodeGenerator(hack.Program{}, table)

	test := func(inst hack.AInstruction, expected string, fail bool) {
		res, err := codegen.GenerateAInst(inst)
		if err == nil && res != expected {
			t.Fatalf("expected %q, got %q", expected, res)
		}
		if err != nil && !fail {
			t.Fatalf("unexpected error: %s", err)
		}
	}

	t.Run("Raw memory access", func(t *testing.T) {
		test(hack.AInstruction{LocType: hack.Raw, LocName: "38"}, fmt.Sprintf("%016b", 38), false)
		test(hack.AInstruction{LocType: hack.Raw, LocName: "32767"}, fmt.Sprintf("%016b", 32767), false)
		test(hack.AInstruction{LocType: hack.Raw, LocName: "32768"}, "", true)
		test(hack.AInstruction{LocType: hack.Raw, LocName: "70000"}, "", true)
	})

	t.Run("Hack built-in labels", func(t *testing.T) {
		test(hack.AInstruction{LocType: hack.BuiltIn, LocName: "SP"}, fmt.Sprintf("%016b", 0), false)
		test(hack.AInstruction{LocType: hack.BuiltIn, LocName: "LCL"}, fmt.Sprintf("%016b", 1), false)
		test(hack.AInstruction{LocType: hack.BuiltIn, LocName: "R13"}, fmt.Sprintf("%016b", 13), false)
		test(hack.AInstruction{LocType: hack.BuiltIn, LocName: "SCREEN"}, fmt.Sprintf("%016b", 16384), false)
		test(hack.AInstruction{LocType: hack.BuiltIn, LocName: "KBD"}, fmt.Sprintf("%016b", 24576), false)
	})

	t.Run("User-defined labels", func(t *testing.T) {
		test(hack.AInstruction{LocType: hack.Label, LocName: "Test1"}, fmt.Sprintf("%016b", table["Test1"]), false)
		test(hack.AInstruction{LocType: hack.Label, LocName: "JUMP"}, fmt.Sprintf("%016b", table["JUMP"]), false)
	})

	t.Run("Unresolved label auto-allocates a variable", func(t *testing.T) {
		res, err := codegen.GenerateAInst(hack.AInstruction{LocType: hack.Label, LocName: "counter"})
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if res != fmt.Sprintf("%016b", 16) {
			t.Fatalf("expected first auto-allocated variable at address 16, got %q", res)
		}
	})
}

func TestCInstructions(t *testing.T) {
	codegen := hack.NewCodeGenerator(hack.Program{}, nil)

	test := func(inst hack.CInstruction, expected string, fail bool) {
		res, err := codegen.GenerateCInst(inst)
		if err == nil && res != expected {
			t.Fatalf("expected %q, got %q", expected, res)
		}
		if err != nil && !fail {
			t.Fatalf("unexpected error: %s", err)
		}
	}

	t.Run("Comps and Jumps", func(t *testing.T) {
		test(hack.CInstruction{Comp: "M", Jump: ""}, "1111110000000000", false)
		test(hack.CInstruction{Comp: "0", Jump: "JGT"}, "1110101010000001", false)
		test(hack.CInstruction{Comp: "D+A", Dest: ""}, "1110000010000000", false)
		test(hack.CInstruction{Comp: "M-D", Dest: "D"}, "1111000111010000", false)
		test(hack.CInstruction{Comp: "-1", Dest: "AMD"}, "1110111010111000", false)
	})

	t.Run("Dest and Jump together", func(t *testing.T) {
		// Dest and Jump are independent bit-fields, both can be set at once (e.g. 'D=D+1;JGT').
		test(hack.CInstruction{Comp: "D+1", Dest: "D", Jump: "JGT"}, "1110011111010001", false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(hack.CInstruction{Comp: ""}, "", true)
		test(hack.CInstruction{Comp: "D", Dest: "X"}, "", true)
	})
}

func TestEncodeSymbolic(t *testing.T) {
	test := func(inst hack.Instruction, expected string, fail bool) {
		res, err := hack.EncodeSymbolic(inst)
		if err == nil && res != expected {
			t.Fatalf("expected %q, got %q", expected, res)
		}
		if err != nil && !fail {
			t.Fatalf("unexpected error: %s", err)
		}
	}

	test(hack.AInstruction{LocName: "LOOP"}, "@LOOP", false)
	test(hack.CInstruction{Comp: "D+1", Dest: "D"}, "D=D+1", false)
	test(hack.CInstruction{Comp: "0", Jump: "JMP"}, "0;JMP", false)
	test(hack.CInstruction{Comp: "D", Dest: "D", Jump: "JMP"}, "D=D;JMP", false)
	test(hack.Helper{Kind: hack.HelperLabel, Text: "LOOP"}, "(LOOP)", false)
}
