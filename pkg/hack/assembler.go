package hack

import (
	"bufio"
	"fmt"
	"io"
)

// Assembler drives the two-pass resolution described by the Hack assembler
// component: pass one (delegated to asm.Lowerer upstream) counts materialized
// instructions and assigns every label its address; pass two (here) streams
// 16-bit words to 'out', allocating a fresh RAM slot for each previously
// unseen variable starting at address 16.
//
// Unlike CodeGenerator.Generate (which buffers every line before returning),
// Assembler.Write streams directly to an io.Writer so very large programs
// never need to be held fully in memory at once.
type Assembler struct {
	program Program
	table   SymbolTable
}

// NewAssembler wires a Program together with the SymbolTable produced for it
// (by asm.Lowerer.Lower, or supplied directly by a caller assembling an
// already-resolved in-memory Program).
func NewAssembler(p Program, st SymbolTable) Assembler {
	if st == nil {
		st = SymbolTable{}
	}
	return Assembler{program: p, table: st}
}

// Write emits one 16-character binary line per instruction to 'out'.
func (a *Assembler) Write(out io.Writer) error {
	codegen := NewCodeGenerator(a.program, a.table)
	buffered := bufio.NewWriter(out)

	for i, instruction := range a.program {
		var line string
		var err error

		switch inst := instruction.(type) {
		case AInstruction:
			line, err = codegen.GenerateAInst(inst)
		case CInstruction:
			line, err = codegen.GenerateCInst(inst)
		default:
			err = fmt.Errorf("unrecognized instruction %T at index %d", instruction, i)
		}
		if err != nil {
			return fmt.Errorf("unable to assemble instruction %d: %w", i, err)
		}
		if _, err := buffered.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("unable to write instruction %d: %w", i, err)
		}
	}

	return buffered.Flush()
}
