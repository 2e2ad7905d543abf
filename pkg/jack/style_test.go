package jack_test

import (
	"testing"

	"n2t.dev/toolchain/pkg/jack"
	"n2t.dev/toolchain/pkg/utils"
)

func TestStyleChecker(t *testing.T) {
	test := func(p jack.Program, fail bool) {
		checker := jack.NewStyleChecker(p)
		err := checker.Check()
		if err != nil && !fail {
			t.Fatalf("unexpected error: %s", err)
		}
		if err == nil && fail {
			t.Fatalf("expected a naming violation, got none")
		}
	}

	t.Run("Well-formed program passes", func(t *testing.T) {
		program := jack.Program{
			"Main": jack.Class{
				Name: "Main",
				Subroutines: withSubroutine("main", jack.Subroutine{
					Name: "main", Type: jack.Function, Return: jack.Void,
				}),
			},
		}
		test(program, false)
	})

	t.Run("Lowercase class name fails", func(t *testing.T) {
		program := jack.Program{
			"main": jack.Class{
				Name: "main",
			},
		}
		test(program, true)
	})

	t.Run("PascalCase subroutine name fails", func(t *testing.T) {
		program := jack.Program{
			"Main": jack.Class{
				Name: "Main",
				Subroutines: withSubroutine("Main", jack.Subroutine{
					Name: "Main", Type: jack.Function, Return: jack.Void,
				}),
			},
		}
		test(program, true)
	})

	t.Run("Static field not CONSTANT_CASE fails", func(t *testing.T) {
		program := jack.Program{
			"Main": jack.Class{
				Name:   "Main",
				Fields: withVariable("maxSize", jack.Variable{Name: "maxSize", Type: jack.Static, DataType: jack.Int}),
			},
		}
		test(program, true)
	})

	t.Run("Static field CONSTANT_CASE passes", func(t *testing.T) {
		program := jack.Program{
			"Main": jack.Class{
				Name:   "Main",
				Fields: withVariable("MAX_SIZE", jack.Variable{Name: "MAX_SIZE", Type: jack.Static, DataType: jack.Int}),
			},
		}
		test(program, false)
	})

	t.Run("Referenced class-typed field must be PascalCase", func(t *testing.T) {
		program := jack.Program{
			"Main": jack.Class{
				Name: "Main",
				Fields: withVariable("buf", jack.Variable{
					Name: "buf", Type: jack.Field, DataType: jack.Object, ClassName: "array",
				}),
			},
		}
		test(program, true)
	})

	t.Run("Array and String class references are accepted", func(t *testing.T) {
		program := jack.Program{
			"Main": jack.Class{
				Name: "Main",
				Fields: withVariable("buf", jack.Variable{
					Name: "buf", Type: jack.Field, DataType: jack.Object, ClassName: "Array",
				}),
			},
		}
		test(program, false)
	})
}

func withSubroutine(name string, s jack.Subroutine) utils.OrderedMap[string, jack.Subroutine] {
	m := utils.NewOrderedMap[string, jack.Subroutine]()
	m.Set(name, s)
	return m
}

func withVariable(name string, v jack.Variable) utils.OrderedMap[string, jack.Variable] {
	m := utils.NewOrderedMap[string, jack.Variable]()
	m.Set(name, v)
	return m
}
