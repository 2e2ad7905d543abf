package jack

import "fmt"

// TypeChecker performs a static analysis pass over a 'jack.Program' before it is
// handed to the Lowerer. It validates the control-flow shape the VM calling
// convention relies on (every path through a non-void subroutine produces a
// value; every constructor hands back the object it builds) and, when
// STRICT_MODE is set, rejects reads of a variable that no earlier statement
// could have assigned.
type TypeChecker struct {
	program Program
	scopes  ScopeTable // Keeps track of the scopes and declared variables inside each one

	strict  bool            // Mirrors STRICT_MODE, see Lowerer
	assigns map[string]bool // Per-subroutine tracking of which names have been assigned to
}

func NewTypeChecker(program Program) TypeChecker {
	return TypeChecker{program: program, strict: isStrictMode()}
}

func (tc *TypeChecker) Check() (bool, error) {
	if tc.program == nil {
		return false, fmt.Errorf("the given 'program' is empty or nil")
	}

	for name, class := range tc.program {
		if _, err := tc.HandleClass(class); err != nil {
			return false, fmt.Errorf("error type-checking class '%s': %w", name, err)
		}
	}

	return true, nil
}

// Specialized function to type-check a 'jack.Class' and nested fields.
func (tc *TypeChecker) HandleClass(class Class) (bool, error) {
	tc.scopes.PushClassScope(class.Name) // Keep track of the current scope being processed
	defer tc.scopes.PopClassScope()      // Reset the function name after processing

	for _, field := range class.Fields.Entries() {
		if _, err := tc.HandleVarStmt(VarStmt{Vars: []Variable{field}}); err != nil {
			return false, fmt.Errorf("error handling field '%s' in class '%s': %w", field.Name, class.Name, err)
		}
	}

	for _, subroutine := range class.Subroutines.Entries() {
		if _, err := tc.HandleSubroutine(class, subroutine); err != nil {
			return false, fmt.Errorf("error handling subroutine '%s' in class '%s': %w", subroutine.Name, class.Name, err)
		}
	}

	return true, nil
}

// Specialized function to type-check a 'jack.Subroutine' and nested fields.
//
// Enforces that: a non-void subroutine's last statement is a return carrying a
// value, a void subroutine's last statement (if any) carries none, and a
// constructor's last statement returns 'this' (see spec §4.E).
func (tc *TypeChecker) HandleSubroutine(class Class, subroutine Subroutine) (bool, error) {
	tc.scopes.PushSubRoutineScope(subroutine.Name) // Keep track of the current subroutine function being processed
	defer tc.scopes.PopSubroutineScope()           // Reset the function name after processing

	tc.assigns = map[string]bool{} // Reset use-before-assign tracking for the new subroutine

	if subroutine.Type == Method {
		tc.scopes.RegisterVariable(Variable{Name: "this", Type: Parameter, DataType: Object, ClassName: class.Name})
	}

	for _, arg := range subroutine.Arguments.Entries() {
		tc.scopes.RegisterVariable(arg)
		tc.assigns[arg.Name] = true
	}
	for _, field := range class.Fields.Entries() {
		if field.Type == Static {
			tc.assigns[field.Name] = true
		}
	}
	if subroutine.Type == Constructor {
		for _, field := range class.Fields.Entries() {
			if field.Type == Field {
				tc.assigns[field.Name] = true
			}
		}
	}

	for _, stmt := range subroutine.Statements {
		if _, err := tc.HandleStatement(stmt); err != nil {
			return false, fmt.Errorf("error handling nested statement %T: %w", stmt, err)
		}
	}

	last, hasReturn := tc.lastReturn(subroutine.Statements)

	if subroutine.Type == Constructor {
		if !hasReturn {
			return false, fmt.Errorf("constructor '%s' must end with 'return this'", subroutine.Name)
		}
		this, isVar := last.Expr.(VarExpr)
		if !isVar || this.Var != "this" {
			return false, fmt.Errorf("constructor '%s' must end with 'return this', not a different expression", subroutine.Name)
		}
		return true, nil
	}

	if subroutine.Return == Void {
		if hasReturn && last.Expr != nil {
			return false, fmt.Errorf("void subroutine '%s' must not return a value", subroutine.Name)
		}
		return true, nil
	}

	if !hasReturn || last.Expr == nil {
		return false, fmt.Errorf("subroutine '%s' declares return type '%s' but does not end with 'return <expr>'", subroutine.Name, subroutine.Return)
	}

	return true, nil
}

// lastReturn reports the final ReturnStmt in 'statements' (only looking at the
// top level, a return nested inside an if/while does not satisfy the
// end-with-return requirement) and whether one was found at all.
func (tc *TypeChecker) lastReturn(statements []Statement) (ReturnStmt, bool) {
	if len(statements) == 0 {
		return ReturnStmt{}, false
	}

	last, ok := statements[len(statements)-1].(ReturnStmt)
	return last, ok
}

// Generalized function to type-check multiple statements types.
func (tc *TypeChecker) HandleStatement(stmt Statement) (bool, error) {
	switch tStmt := stmt.(type) {
	case DoStmt:
		return tc.HandleDoStmt(tStmt)
	case VarStmt:
		return tc.HandleVarStmt(tStmt)
	case LetStmt:
		return tc.HandleLetStmt(tStmt)
	case IfStmt:
		return tc.HandleIfStmt(tStmt)
	case WhileStmt:
		return tc.HandleWhileStmt(tStmt)
	case ReturnStmt:
		return tc.HandleReturnStmt(tStmt)
	default:
		return false, fmt.Errorf("unrecognized statement: %T", stmt)
	}
}

func (tc *TypeChecker) HandleDoStmt(statement DoStmt) (bool, error) {
	for _, arg := range statement.FuncCall.Arguments {
		if _, err := tc.HandleExpression(arg); err != nil {
			return false, fmt.Errorf("error handling do-call argument: %w", err)
		}
	}
	return true, nil
}

func (tc *TypeChecker) HandleVarStmt(statement VarStmt) (bool, error) {
	for _, variable := range statement.Vars {
		tc.scopes.RegisterVariable(variable)
	}
	return true, nil
}

func (tc *TypeChecker) HandleLetStmt(statement LetStmt) (bool, error) {
	if _, err := tc.HandleExpression(statement.Rhs); err != nil {
		return false, fmt.Errorf("error handling RHS expression: %w", err)
	}

	switch lhs := statement.Lhs.(type) {
	case VarExpr:
		if _, _, err := tc.scopes.ResolveVariable(lhs.Var); err != nil {
			return false, fmt.Errorf("error resolving assignment target '%s': %w", lhs.Var, err)
		}
		tc.assigns[lhs.Var] = true
		return true, nil
	case ArrayExpr:
		if err := tc.checkAssigned(lhs.Var); err != nil {
			return false, err
		}
		if _, _, err := tc.scopes.ResolveVariable(lhs.Var); err != nil {
			return false, fmt.Errorf("error resolving assignment target '%s': %w", lhs.Var, err)
		}
		if _, err := tc.HandleExpression(lhs.Index); err != nil {
			return false, fmt.Errorf("error handling array index expression: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("LHS expression must be either a 'VarExpr' or an 'ArrayExpr', got: %T", statement.Lhs)
	}
}

func (tc *TypeChecker) HandleIfStmt(statement IfStmt) (bool, error) {
	if _, err := tc.HandleExpression(statement.Condition); err != nil {
		return false, fmt.Errorf("error handling if condition expression: %w", err)
	}
	for _, stmt := range statement.ThenBlock {
		if _, err := tc.HandleStatement(stmt); err != nil {
			return false, fmt.Errorf("error handling statement in 'then' block: %w", err)
		}
	}
	for _, stmt := range statement.ElseBlock {
		if _, err := tc.HandleStatement(stmt); err != nil {
			return false, fmt.Errorf("error handling statement in 'else' block: %w", err)
		}
	}
	return true, nil
}

func (tc *TypeChecker) HandleWhileStmt(statement WhileStmt) (bool, error) {
	if _, err := tc.HandleExpression(statement.Condition); err != nil {
		return false, fmt.Errorf("error handling while condition expression: %w", err)
	}
	for _, stmt := range statement.Block {
		if _, err := tc.HandleStatement(stmt); err != nil {
			return false, fmt.Errorf("error handling statement in while block: %w", err)
		}
	}
	return true, nil
}

func (tc *TypeChecker) HandleReturnStmt(statement ReturnStmt) (bool, error) {
	if statement.Expr == nil {
		return true, nil
	}
	if _, err := tc.HandleExpression(statement.Expr); err != nil {
		return false, fmt.Errorf("error handling return expression: %w", err)
	}
	return true, nil
}

// checkAssigned enforces use-before-assign under STRICT_MODE (see spec §4.E, §7).
func (tc *TypeChecker) checkAssigned(name string) error {
	if !tc.strict || name == "this" {
		return nil
	}
	if tc.assigns == nil || tc.assigns[name] {
		return nil
	}
	return fmt.Errorf("variable '%s' used before being assigned a value", name)
}

// Generalized function to type-check multiple expression types, resolving
// every referenced variable against the current scope table.
func (tc *TypeChecker) HandleExpression(expr Expression) (bool, error) {
	switch tExpr := expr.(type) {
	case VarExpr:
		if tExpr.Var == "this" {
			return true, nil
		}
		if err := tc.checkAssigned(tExpr.Var); err != nil {
			return false, err
		}
		if _, _, err := tc.scopes.ResolveVariable(tExpr.Var); err != nil {
			return false, fmt.Errorf("error resolving variable '%s': %w", tExpr.Var, err)
		}
		return true, nil

	case LiteralExpr:
		return true, nil

	case ArrayExpr:
		if err := tc.checkAssigned(tExpr.Var); err != nil {
			return false, err
		}
		if _, _, err := tc.scopes.ResolveVariable(tExpr.Var); err != nil {
			return false, fmt.Errorf("error resolving array variable '%s': %w", tExpr.Var, err)
		}
		return tc.HandleExpression(tExpr.Index)

	case UnaryExpr:
		return tc.HandleExpression(tExpr.Rhs)

	case BinaryExpr:
		if _, err := tc.HandleExpression(tExpr.Lhs); err != nil {
			return false, fmt.Errorf("error handling LHS expression: %w", err)
		}
		return tc.HandleExpression(tExpr.Rhs)

	case FuncCallExpr:
		for _, arg := range tExpr.Arguments {
			if _, err := tc.HandleExpression(arg); err != nil {
				return false, fmt.Errorf("error handling call argument: %w", err)
			}
		}
		return true, nil

	default:
		return false, fmt.Errorf("unrecognized expression: %T", expr)
	}
}
