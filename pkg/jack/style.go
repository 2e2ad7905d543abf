package jack

import (
	"fmt"
	"unicode"
)

// StyleChecker validates Jack identifier naming conventions: PascalCase for
// class names (and any referenced class-typed name, including the 'Array'/
// 'String' library classes — see DESIGN.md Open Question (b)), camelCase for
// subroutine names, fields, parameters and locals, CONSTANT_CASE for statics.
// Grounded on rust_code/jack_ast/src/gramar/units/style.rs.
type StyleChecker struct {
	program Program
}

// NewStyleChecker returns a StyleChecker ready to validate 'p'.
func NewStyleChecker(p Program) StyleChecker {
	return StyleChecker{program: p}
}

// Check walks every class in the program, reporting the first naming
// violation encountered.
func (sc *StyleChecker) Check() error {
	for _, class := range sc.program {
		if err := sc.HandleClass(class); err != nil {
			return err
		}
	}
	return nil
}

func (sc *StyleChecker) HandleClass(c Class) error {
	if !isPascalCase(c.Name) {
		return fmt.Errorf("class %q: class names must be PascalCase", c.Name)
	}

	for _, field := range c.Fields.Entries() {
		if err := sc.HandleVariable(field); err != nil {
			return fmt.Errorf("class %s: %w", c.Name, err)
		}
	}
	for _, sub := range c.Subroutines.Entries() {
		if err := sc.HandleSubroutine(c.Name, sub); err != nil {
			return err
		}
	}
	return nil
}

func (sc *StyleChecker) HandleSubroutine(className string, s Subroutine) error {
	if !isCamelCase(s.Name) {
		return fmt.Errorf("%s.%s: subroutine names must be camelCase", className, s.Name)
	}

	for _, arg := range s.Arguments.Entries() {
		if err := sc.HandleVariable(arg); err != nil {
			return fmt.Errorf("%s.%s: %w", className, s.Name, err)
		}
	}
	for _, stmt := range s.Statements {
		if err := sc.HandleStatement(className, s.Name, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (sc *StyleChecker) HandleStatement(className, subName string, stmt Statement) error {
	switch st := stmt.(type) {
	case VarStmt:
		for _, v := range st.Vars {
			if err := sc.HandleVariable(v); err != nil {
				return fmt.Errorf("%s.%s: %w", className, subName, err)
			}
		}
	case IfStmt:
		for _, s := range st.ThenBlock {
			if err := sc.HandleStatement(className, subName, s); err != nil {
				return err
			}
		}
		for _, s := range st.ElseBlock {
			if err := sc.HandleStatement(className, subName, s); err != nil {
				return err
			}
		}
	case WhileStmt:
		for _, s := range st.Block {
			if err := sc.HandleStatement(className, subName, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (sc *StyleChecker) HandleVariable(v Variable) error {
	// A referenced class (the variable's own ClassName, including the
	// 'Array'/'String' library classes) is always PascalCase-reserved,
	// independent of the variable's own kind.
	if v.DataType == Object && v.ClassName != "" && !isPascalCase(v.ClassName) {
		return fmt.Errorf("variable %q: referenced class %q must be PascalCase", v.Name, v.ClassName)
	}

	if v.Type == Static {
		if !isConstantCase(v.Name) {
			return fmt.Errorf("static %q: statics must be CONSTANT_CASE", v.Name)
		}
		return nil
	}

	if !isCamelCase(v.Name) {
		return fmt.Errorf("variable %q: fields/parameters/locals must be camelCase", v.Name)
	}
	return nil
}

func isPascalCase(name string) bool {
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return false
	}
	return !containsUnderscore(name)
}

func isCamelCase(name string) bool {
	if name == "" || !unicode.IsLower(rune(name[0])) {
		return false
	}
	return !containsUnderscore(name)
}

func isConstantCase(name string) bool {
	seenLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			seenLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return seenLetter
}

func containsUnderscore(name string) bool {
	for _, r := range name {
		if r == '_' {
			return true
		}
	}
	return false
}
