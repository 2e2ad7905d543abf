package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/teris-io/cli"
	"n2t.dev/toolchain/pkg/asm"
	"n2t.dev/toolchain/pkg/hack"
)

var Description = strings.ReplaceAll(`
The Hack Assembler takes assembly language code written in the Hack assembly language
and translates it into machine code that can be executed by the Hack computer. The process
involves parsing the assembly code, resolving symbols, and generating machine code.
`, "\n", " ")

var HackAssembler = cli.New(Description).
	WithArg(cli.NewArg("input", "The assembler (.asm) file to be compiled")).
	WithArg(cli.NewArg("output", "The compiled output (.hack or .asm)")).
	WithOption(cli.NewOption("binary", "Emits 16-bit binary (.hack) instead of symbolic (.asm) output").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	input, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("ERROR: Unable to open input file: %s\n", err)
		return -1
	}

	output, err := os.Create(args[1])
	if err != nil {
		fmt.Printf("ERROR: Unable to open output file: %s\n", err)
		return -1
	}
	defer output.Close()

	// Instantiate a parser for the Asm program
	parser := asm.NewParser(bytes.NewReader(input))
	// Parses the input file content and extract an AST (as a 'asm.Program') from it.
	asmProgram, err := parser.Parse()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'parsing' pass: %s\n", err)
		return -1
	}

	// Instantiate a lowerer to convert the program from Asm to Hack
	lowerer := asm.NewLowerer(asmProgram)
	// Lowers the asm.Program to an in-memory/IR representation of its Hack counterpart 'hack.Program'.
	hackProgram, table, err := lowerer.Lower()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'lowering' pass: %s\n", err)
		return -1
	}

	// TO_BINARY (or --binary) selects 16-bit word output; otherwise the resolved
	// program is re-rendered as symbolic Hack ASM (labels already inlined to raw
	// addresses, so this is not a mere copy of the input).
	_, binaryFlag := options["binary"]
	toBinary := binaryFlag || os.Getenv("TO_BINARY") != ""

	if toBinary {
		// Instantiate a code generator for the Hack (compiled) program
		codegen := hack.NewCodeGenerator(hackProgram, table)
		// Iterates over each instruction and spits out its 16-bit binary encoding.
		compiled, err := codegen.Generate()
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'codegen' pass:\n\t %s", err)
			return -1
		}

		for _, comp := range compiled {
			output.Write([]byte(fmt.Sprintf("%s\n", comp)))
		}
		return 0
	}

	for _, inst := range hackProgram {
		// Label declarations were consumed by the lowering pass, so references to them
		// are rewritten to the address recorded in the symbol table.
		if aInst, ok := inst.(hack.AInstruction); ok && aInst.LocType == hack.Label {
			if address, found := table[aInst.LocName]; found {
				inst = hack.AInstruction{LocType: hack.Raw, LocName: fmt.Sprint(address)}
			}
		}
		line, err := hack.EncodeSymbolic(inst)
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'codegen' pass:\n\t %s", err)
			return -1
		}
		output.Write([]byte(fmt.Sprintf("%s\n", line)))
	}

	return 0
}

func main() { os.Exit(HackAssembler.Run(os.Args, os.Stdout)) }
