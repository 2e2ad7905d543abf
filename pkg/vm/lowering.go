package vm

import (
	"fmt"
	"sort"

	"n2t.dev/toolchain/pkg/asm"
	"n2t.dev/toolchain/pkg/utils"
)

// ----------------------------------------------------------------------------
// Vm Lowerer

// The Lowerer takes a 'vm.Program' (one or more modules of VM-IR operations) and produces
// the 'asm.Program' (symbolic Hack assembly) that implements it, following the nand2tetris
// stack-machine calling convention: a shared stack starting at RAM[256], four frame
// pointers (LCL/ARG/THIS/THAT) saved and restored around every call, and labels scoped to
// the enclosing function so that nested or repeated constructs never collide.
//
// Per the windowed-pipeline design, operations are drained from a bounded queue rather
// than a plain slice: each module's operations are windowed through 'queue' (capacity
// OperationQueueCapacity) so that very large translation units don't need to be held
// fully materialized in memory at once.
type Lowerer struct {
	program Program

	currentModule   string
	currentFunction string

	nBranch uint // per-comparison branch-label counter, unique across the whole program
	nReturn uint // per-call return-label counter, unique across the whole program

	queue utils.Ring[Operation] // windowed view over the module currently being lowered
}

// OperationQueueCapacity bounds how many still-untranslated vm.Operation values are
// windowed at once; InstructionQueueCapacity is only the initial capacity of the slice
// that collects the lowered asm.Instruction values, which grows past it as needed.
const (
	OperationQueueCapacity   = 64
	InstructionQueueCapacity = 2048
)

// NewLowerer initializes a Lowerer over the given Program.
func NewLowerer(p Program) Lowerer {
	return Lowerer{program: p}
}

// Lower translates every module in the Program to its Hack assembly counterpart. The
// returned asm.Program does not include the bootstrap sequence; callers translating a
// multi-module program should prepend the result of Bootstrap().
func (l *Lowerer) Lower() (asm.Program, error) {
	if len(l.program) == 0 {
		return nil, fmt.Errorf("the given 'program' is empty")
	}

	out := make(asm.Program, 0, InstructionQueueCapacity)

	// 'nBranch'/'nReturn' are incremented per comparison/call as we go, so the order modules
	// are visited in determines every COMP_*/F$ret.N label name downstream. Go maps don't
	// iterate in a stable order, so (as with 'jack.NewLowerer') we sort the keys first:
	// same input modules always produce the same labels, regardless of run.
	modules := make([]string, 0, len(l.program))
	for module := range l.program {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	for _, module := range modules {
		l.currentModule = module

		lowered, err := l.LowerModule(l.program[module])
		if err != nil {
			return nil, fmt.Errorf("error lowering module '%s': %w", module, err)
		}
		out = append(out, lowered...)
	}

	return out, nil
}

// Bootstrap returns the fixed prelude every multi-module Hack program needs: it
// initializes SP to 256 and calls Sys.init, per the nand2tetris VM spec.
func (l *Lowerer) Bootstrap() asm.Program {
	l.currentFunction = ""
	call, _ := l.HandleFuncCallOp(FuncCallOp{Name: "Sys.init", NArgs: 0})
	return append(asm.Program{
		aInst("256"), cInst("A", "D", ""),
		aInst("SP"), cInst("D", "M", ""),
	}, call...)
}

// LowerModule lowers a single module's operations, windowing them through a bounded
// Ring (rather than ranging the slice directly) so the translation loop's working set
// stays fixed regardless of module size.
func (l *Lowerer) LowerModule(module Module) (asm.Program, error) {
	out := make(asm.Program, 0, len(module)*4)
	l.queue = utils.NewRing[Operation](OperationQueueCapacity)

	push := func(op Operation) error {
		if l.queue.Full() {
			if err := l.drainOne(&out); err != nil {
				return err
			}
		}
		l.queue.Push(op)
		return nil
	}

	for _, operation := range module {
		if err := push(operation); err != nil {
			return nil, err
		}
	}
	for l.queue.Count() > 0 {
		if err := l.drainOne(&out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// drainOne pops the oldest queued operation, lowers it, and appends the result to 'out'.
func (l *Lowerer) drainOne(out *asm.Program) error {
	operation, err := l.queue.Pop()
	if err != nil {
		return err
	}

	var lowered asm.Program
	switch op := operation.(type) {
	case MemoryOp:
		lowered, err = l.HandleMemoryOp(op)
	case ArithmeticOp:
		lowered, err = l.HandleArithmeticOp(op)
	case LabelDecl:
		lowered, err = l.HandleLabelDecl(op)
	case GotoOp:
		lowered, err = l.HandleGotoOp(op)
	case FuncDecl:
		lowered, err = l.HandleFuncDecl(op)
	case ReturnOp:
		lowered, err = l.HandleReturnOp(op)
	case FuncCallOp:
		lowered, err = l.HandleFuncCallOp(op)
	default:
		err = fmt.Errorf("unrecognized operation %T", operation)
	}
	if err != nil {
		return err
	}

	*out = append(*out, lowered...)
	return nil
}

// ----------------------------------------------------------------------------
// Small codegen helpers

func aInst(location string) asm.Instruction { return asm.AInstruction{Location: location} }
func cInst(comp, dest, jump string) asm.Instruction {
	return asm.CInstruction{Comp: comp, Dest: dest, Jump: jump}
}
func label(name string) asm.Instruction { return asm.LabelDecl{Name: name} }

// pushD emits the common "push whatever is in D onto the stack" sequence.
func pushD() asm.Program {
	return asm.Program{
		aInst("SP"), cInst("M", "A", ""), cInst("D", "M", ""),
		aInst("SP"), cInst("M+1", "M", ""),
	}
}

// popToD emits the common "pop the stack's top into D, SP already adjusted" sequence.
func popToD() asm.Program {
	return asm.Program{aInst("SP"), cInst("M-1", "AM", ""), cInst("M", "D", "")}
}

// ----------------------------------------------------------------------------
// Memory Op

// segmentBase maps a real (non-virtual) segment to the built-in register holding its
// base address; 'constant', 'temp' and 'pointer' are handled separately since they
// address memory directly rather than through an indirection.
var segmentBase = map[SegmentType]string{
	Local: "LCL", Argument: "ARG", This: "THIS", That: "THAT",
}

func (l *Lowerer) HandleMemoryOp(op MemoryOp) (asm.Program, error) {
	switch op.Segment {
	case Constant:
		if op.Operation == Pop {
			return nil, fmt.Errorf("cannot 'pop' into the virtual 'constant' segment")
		}
		out := asm.Program{aInst(fmt.Sprint(op.Offset)), cInst("A", "D", "")}
		return append(out, pushD()...), nil

	case Local, Argument, This, That:
		return l.handleIndirectSegment(op, segmentBase[op.Segment])

	case Temp:
		if op.Offset > 7 {
			return nil, fmt.Errorf("invalid 'temp' offset, got %d", op.Offset)
		}
		return l.handleDirectSegment(op, fmt.Sprint(5+op.Offset))

	case Pointer:
		if op.Offset > 1 {
			return nil, fmt.Errorf("invalid 'pointer' offset, got %d", op.Offset)
		}
		target := "THIS"
		if op.Offset == 1 {
			target = "THAT"
		}
		return l.handleDirectSegment(op, target)

	case Static:
		return l.handleDirectSegment(op, fmt.Sprintf("%s.%d", l.currentModule, op.Offset))

	default:
		return nil, fmt.Errorf("unrecognized segment '%s'", op.Segment)
	}
}

// handleIndirectSegment lowers push/pop for a segment addressed as *(base + offset)
// (local, argument, this, that). Offset zero is special-cased to avoid the D+A
// arithmetic, matching the idiom every nand2tetris reference translator uses.
func (l *Lowerer) handleIndirectSegment(op MemoryOp, base string) (asm.Program, error) {
	resolveAddr := func() asm.Program {
		if op.Offset == 0 {
			return asm.Program{aInst(base), cInst("M", "A", "")}
		}
		return asm.Program{
			aInst(base), cInst("M", "D", ""),
			aInst(fmt.Sprint(op.Offset)), cInst("D+A", "A", ""),
		}
	}

	if op.Operation == Push {
		out := resolveAddr()
		out = append(out, cInst("M", "D", ""))
		return append(out, pushD()...), nil
	}

	// Pop: compute the target address first, stash it in R13 (it would otherwise be
	// clobbered once we touch SP/M to pop the value off the stack), then pop into D
	// and store D at the stashed address.
	out := resolveAddr()
	out = append(out, cInst("A", "D", ""), aInst("R13"), cInst("D", "M", ""))
	out = append(out, popToD()...)
	out = append(out, aInst("R13"), cInst("M", "A", ""), cInst("D", "M", ""))
	return out, nil
}

// handleDirectSegment lowers push/pop for a segment addressed by a single fixed
// symbol (temp, pointer, static) with no base+offset indirection required.
func (l *Lowerer) handleDirectSegment(op MemoryOp, symbol string) (asm.Program, error) {
	if op.Operation == Push {
		out := asm.Program{aInst(symbol), cInst("M", "D", "")}
		return append(out, pushD()...), nil
	}

	out := popToD()
	return append(out, aInst(symbol), cInst("D", "M", "")), nil
}

// ----------------------------------------------------------------------------
// Arithmetic Op

func (l *Lowerer) HandleArithmeticOp(op ArithmeticOp) (asm.Program, error) {
	switch op.Operation {
	case Neg:
		return asm.Program{aInst("SP"), cInst("M-1", "A", ""), cInst("-M", "M", "")}, nil
	case Not:
		return asm.Program{aInst("SP"), cInst("M-1", "A", ""), cInst("!M", "M", "")}, nil
	case Add:
		return l.binaryOp("D+M")
	case Sub:
		return l.binaryOp("M-D")
	case And:
		return l.binaryOp("D&M")
	case Or:
		return l.binaryOp("D|M")
	case Eq:
		return l.comparisonOp("JEQ")
	case Gt:
		return l.comparisonOp("JGT")
	case Lt:
		return l.comparisonOp("JLT")
	default:
		return nil, fmt.Errorf("unrecognized arithmetic operation '%s'", op.Operation)
	}
}

// binaryOp pops the top two stack values into D (top) and M (second-from-top), applies
// 'comp' and leaves the result on top of the stack without needing an extra push.
func (l *Lowerer) binaryOp(comp string) (asm.Program, error) {
	return asm.Program{
		aInst("SP"), cInst("M-1", "AM", ""), cInst("M", "D", ""),
		cInst("A-1", "A", ""), cInst(comp, "M", ""),
	}, nil
}

// comparisonOp pops the top two values, subtracts them and jumps to one of two unique,
// freshly minted labels depending on the sign of the result, pushing -1 (true) or 0
// (false) accordingly. The counter guarantees label uniqueness program-wide.
func (l *Lowerer) comparisonOp(jump string) (asm.Program, error) {
	n := l.nBranch
	l.nBranch++
	trueLabel := fmt.Sprintf("COMP_TRUE_%d", n)
	endLabel := fmt.Sprintf("COMP_END_%d", n)

	return asm.Program{
		aInst("SP"), cInst("M-1", "AM", ""), cInst("M", "D", ""),
		cInst("A-1", "A", ""), cInst("M-D", "D", ""),
		aInst("SP"), cInst("M-1", "A", ""),
		aInst(trueLabel), cInst("D", "", jump),
		aInst("SP"), cInst("M-1", "A", ""), cInst("0", "M", ""),
		aInst(endLabel), cInst("0", "", "JMP"),
		label(trueLabel),
		aInst("SP"), cInst("M-1", "A", ""), cInst("-1", "M", ""),
		label(endLabel),
	}, nil
}

// ----------------------------------------------------------------------------
// Branching Ops

// scopedLabel prefixes a user label with the enclosing function's name so that the
// same label text used in two different functions never collides once flattened into
// one global Hack assembly namespace.
func (l *Lowerer) scopedLabel(name string) string {
	if l.currentFunction == "" {
		return name
	}
	return fmt.Sprintf("%s$%s", l.currentFunction, name)
}

func (l *Lowerer) HandleLabelDecl(op LabelDecl) (asm.Program, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("unable to produce empty label declaration")
	}
	return asm.Program{label(l.scopedLabel(op.Name))}, nil
}

func (l *Lowerer) HandleGotoOp(op GotoOp) (asm.Program, error) {
	if op.Label == "" {
		return nil, fmt.Errorf("unable to produce empty jump label")
	}

	target := l.scopedLabel(op.Label)
	if op.Jump == Unconditional {
		return asm.Program{aInst(target), cInst("0", "", "JMP")}, nil
	}

	out := popToD()
	return append(out, aInst(target), cInst("D", "", "JNE")), nil
}

// ----------------------------------------------------------------------------
// Function Ops

func (l *Lowerer) HandleFuncDecl(op FuncDecl) (asm.Program, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("unable to produce empty function declaration")
	}
	l.currentFunction = op.Name

	out := asm.Program{label(op.Name)}
	for i := uint16(0); i < op.NLocal; i++ {
		out = append(out, aInst("0"), cInst("A", "D", ""))
		out = append(out, pushD()...)
	}
	return out, nil
}

func (l *Lowerer) HandleReturnOp(op ReturnOp) (asm.Program, error) {
	// frame (R13) = LCL; retAddr (R14) = *(frame-5), saved before ARG is overwritten
	// since a zero-argument function would otherwise clobber it first.
	out := asm.Program{
		aInst("LCL"), cInst("M", "D", ""), aInst("R13"), cInst("D", "M", ""),
		aInst("5"), cInst("D-A", "A", ""), cInst("M", "D", ""), aInst("R14"), cInst("D", "M", ""),
	}
	// *ARG = pop(); SP = ARG + 1
	out = append(out, popToD()...)
	out = append(out, aInst("ARG"), cInst("M", "A", ""), cInst("D", "M", ""))
	out = append(out, aInst("ARG"), cInst("M+1", "D", ""), aInst("SP"), cInst("D", "M", ""))

	// Each restore steps R13 down by one (frame-1, frame-2, ...), since Hack has no
	// 'M-n' comp for n > 1.
	restore := func(reg string) asm.Program {
		return asm.Program{
			aInst("R13"), cInst("M-1", "AM", ""),
			cInst("M", "D", ""), aInst(reg), cInst("D", "M", ""),
		}
	}
	out = append(out, restore("THAT")...)
	out = append(out, restore("THIS")...)
	out = append(out, restore("ARG")...)
	out = append(out, restore("LCL")...)

	out = append(out, aInst("R14"), cInst("M", "A", ""), cInst("0", "", "JMP"))
	return out, nil
}

func (l *Lowerer) HandleFuncCallOp(op FuncCallOp) (asm.Program, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("unable to produce empty function call")
	}

	n := l.nReturn
	l.nReturn++
	returnLabel := fmt.Sprintf("%s$ret.%d", op.Name, n)

	out := asm.Program{aInst(returnLabel), cInst("A", "D", "")}
	out = append(out, pushD()...)
	for _, saved := range []string{"LCL", "ARG", "THIS", "THAT"} {
		out = append(out, aInst(saved), cInst("M", "D", ""))
		out = append(out, pushD()...)
	}

	// ARG = SP - 5 - NArgs; LCL = SP
	out = append(out, aInst("SP"), cInst("M", "D", ""))
	out = append(out, aInst(fmt.Sprint(5+int(op.NArgs))), cInst("D-A", "D", ""))
	out = append(out, aInst("ARG"), cInst("D", "M", ""))
	out = append(out, aInst("SP"), cInst("M", "D", ""), aInst("LCL"), cInst("D", "M", ""))

	out = append(out, aInst(op.Name), cInst("0", "", "JMP"))
	out = append(out, label(returnLabel))
	return out, nil
}
