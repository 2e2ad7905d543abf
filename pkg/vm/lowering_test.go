package vm_test

import (
	"testing"

	"n2t.dev/toolchain/pkg/asm"
	"n2t.dev/toolchain/pkg/vm"
)

func countKind[T any](program asm.Program) int {
	count := 0
	for _, inst := range program {
		if _, ok := inst.(T); ok {
			count++
		}
	}
	return count
}

func TestLowererMemoryOp(t *testing.T) {
	lowerer := vm.NewLowerer(vm.Program{"Main": vm.Module{
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 7},
	}})

	program, err := lowerer.Lower()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if countKind[asm.AInstruction](program) == 0 {
		t.Fatalf("expected at least one A instruction in lowered output")
	}
}

func TestLowererStaticSegmentScopedByModule(t *testing.T) {
	lowerer := vm.NewLowerer(vm.Program{"Foo": vm.Module{
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Static, Offset: 3},
	}})

	program, err := lowerer.Lower()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	found := false
	for _, inst := range program {
		if a, ok := inst.(asm.AInstruction); ok && a.Location == "Foo.3" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a reference to 'Foo.3', module-scoped static variable not found")
	}
}

func TestLowererFunctionCallReturnConvention(t *testing.T) {
	lowerer := vm.NewLowerer(vm.Program{"Main": vm.Module{
		vm.FuncDecl{Name: "Main.main", NLocal: 1},
		vm.FuncCallOp{Name: "Main.helper", NArgs: 2},
		vm.ReturnOp{},
	}})

	program, err := lowerer.Lower()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	labels := countKind[asm.LabelDecl](program)
	if labels < 2 { // function label + generated return label
		t.Fatalf("expected at least 2 labels (function + return site), got %d", labels)
	}
}

func TestLowererInvalidTempOffset(t *testing.T) {
	lowerer := vm.NewLowerer(vm.Program{"Main": vm.Module{
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Temp, Offset: 9},
	}})

	if _, err := lowerer.Lower(); err == nil {
		t.Fatalf("expected error for out-of-range temp offset")
	}
}

func TestLowererPopIntoConstantFails(t *testing.T) {
	lowerer := vm.NewLowerer(vm.Program{"Main": vm.Module{
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.Constant, Offset: 0},
	}})

	if _, err := lowerer.Lower(); err == nil {
		t.Fatalf("expected error popping into the virtual 'constant' segment")
	}
}

func TestBootstrap(t *testing.T) {
	lowerer := vm.NewLowerer(vm.Program{"Main": vm.Module{}})
	program := lowerer.Bootstrap()

	if len(program) == 0 {
		t.Fatalf("expected a non-empty bootstrap sequence")
	}
	// The call sequence ends with '@Sys.init', '0;JMP' and the return label.
	last, ok := program[len(program)-3].(asm.AInstruction)
	if !ok || last.Location != "Sys.init" {
		t.Fatalf("expected bootstrap to call Sys.init, got %+v", program[len(program)-3])
	}
}
