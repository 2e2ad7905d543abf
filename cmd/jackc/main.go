package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"n2t.dev/toolchain/pkg/jack"
	"n2t.dev/toolchain/pkg/utils"
	"n2t.dev/toolchain/pkg/vm"

	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The Jack Compiler compiles programs (composed of multiple classes/files) written in
the Jack language into VM modules that can be further elaborated. The Jack language
is a higher-level OOP language tailored for use with the Hack computer architecture.
`, "\n", " ")

var JackCompiler = cli.New(Description).
	// 'AsOptional()' allows to have more than one input .jack file or directory
	WithArg(cli.NewArg("inputs", "The source (.jack) files or directories to be compiled").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("stdlib", "Uses the built-in ABI of the standard library for lowering").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("typecheck", "Does a full type check of source code before emitting any output").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	// The first is the aggregation of all the Translation Units (TUs) found during the input walk (just the paths)
	// The second is the container of the full program (a basic collection of parsed classes that can be explored)
	TUs, program := []string{}, jack.Program{}

	for _, input := range args {
		filepath.Walk(input, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || filepath.Ext(path) != ".jack" {
				return nil // We recurse on dirs and ignore other filetypes
			}

			TUs = append(TUs, path)
			return nil
		})
	}

	for _, tu := range TUs {
		content, err := os.ReadFile(tu)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		// Instantiate a parser for the Jack program
		parser := jack.NewParser(bytes.NewReader(content))
		// Removes root directory and file extension to use as module name
		filename, extension := path.Base(tu), path.Ext(tu)
		// Parses the input file content and extracts an AST (as a 'jack.Class') from it.
		class, err := parser.Parse()
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'parsing' pass (%s): %s\n", tu, err)
			return -1
		}
		program[strings.TrimSuffix(filename, extension)] = class
	}

	// Adds to the jack.Program the stdlib ABI, this will help resolve stdlib functions w/o adding
	// them to the final executable (they are ignored after the codegen phase, since they're not
	// part of 'TUs'). This allows compiling a program that merely calls into the OS classes
	// without having to provide source for them.
	if _, enabled := options["stdlib"]; enabled {
		for name, abi := range jack.StandardLibraryABI {
			def := jack.Class{Name: name, Subroutines: utils.NewOrderedMap[string, jack.Subroutine]()}
			for _, fName := range abi.Subroutines.Keys() {
				subroutine, _ := abi.Subroutines.Get(fName)
				def.Subroutines.Set(fName, subroutine)
			}
			program[name] = def
		}
	}

	if _, enabled := options["typecheck"]; enabled {
		checker := jack.NewTypeChecker(program)
		if _, err := checker.Check(); err != nil {
			fmt.Printf("ERROR: Unable to complete 'typecheck' pass: %s\n", err)
			return -1
		}
	}

	// Identifier naming conventions are only enforced under STRICT_MODE (spec env surface).
	if os.Getenv("STRICT_MODE") != "" {
		style := jack.NewStyleChecker(program)
		if err := style.Check(); err != nil {
			fmt.Printf("ERROR: Unable to complete 'style' pass: %s\n", err)
			return -1
		}
	}

	// Instantiate a lowerer to convert the program from Jack to Vm
	lowerer := jack.NewLowerer(program)
	// Lowers the jack.Program to an in-memory/IR representation of its Vm counterpart 'vm.Program'.
	vmProgram, err := lowerer.Lowerer()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'lowering' pass: %s\n", err)
		return -1
	}

	// Now, instantiates a code generator for the Vm (compiled) program
	codegen := vm.NewCodeGenerator(vmProgram)
	// Iterates over each instruction and spits out the relative textual representation.
	compiled, err := codegen.Generate()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'codegen' pass: %s\n", err)
		return -1
	}

	for _, tu := range TUs {
		// Removes root directory and file extension to use as module name
		filename, extension := path.Base(tu), path.Ext(tu)
		module, ok := compiled[strings.TrimSuffix(filename, extension)]
		if !ok {
			fmt.Printf("ERROR: Unable to compile module for class file '%s'\n", tu)
			return -1
		}

		output, err := os.Create(fmt.Sprintf("%s.vm", strings.TrimSuffix(tu, extension)))
		if err != nil {
			fmt.Printf("ERROR: Unable to open output file: %s\n", err)
			return -1
		}
		defer output.Close()

		for _, ops := range module {
			line := fmt.Sprintf("%s\n", ops)
			output.Write([]byte(line))
		}
	}

	return 0
}

func main() { os.Exit(JackCompiler.Run(os.Args, os.Stdout)) }
