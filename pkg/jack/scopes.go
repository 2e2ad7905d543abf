package jack

import (
	"fmt"
	"strings"
)

// Scope is a named, ordered list of declarations sharing one VM memory
// segment (field, static, argument or local). Entries are appended in
// declaration order and never removed in place: re-declaring a name pushes a
// new entry that shadows the earlier one on lookup while still occupying its
// own segment slot, mirroring how a real compiler would treat a redeclaration
// it chooses to tolerate rather than reject outright.
type Scope struct {
	name    string
	entries []Variable
}

func (s *Scope) register(v Variable) uint16 {
	idx := uint16(len(s.entries))
	s.entries = append(s.entries, v)
	return idx
}

func (s *Scope) resolve(name string) (uint16, Variable, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Name == name {
			return uint16(i), s.entries[i], true
		}
	}
	return 0, Variable{}, false
}

// ScopeTable layers the scopes every Jack symbol lookup needs to check: the
// enclosing class's field/static declarations, and (while compiling a
// subroutine) its parameter/local declarations. Subroutine-scoped entries
// shadow class-scoped ones, matching the resolution order in ResolveVariable.
type ScopeTable struct {
	static Scope

	local     Scope
	field     Scope
	parameter Scope
}

// NewScopeTable returns an empty, ready-to-use ScopeTable.
func NewScopeTable() *ScopeTable { return &ScopeTable{} }

// PushClassScope opens the field and static scopes for 'class', to be
// populated by RegisterVariable as its Declaration statements are processed.
// Static indices reset here since each class owns its own static segment.
func (st *ScopeTable) PushClassScope(class string) {
	st.field = Scope{name: fmt.Sprintf("%s.Global", class)}
	st.static = Scope{name: fmt.Sprintf("%s.Global", class)}
}

// PopClassScope discards the current field scope once a class is fully
// compiled. The static scope is left in place: nothing but the next
// PushClassScope call is allowed to reset it.
func (st *ScopeTable) PopClassScope() { st.field = Scope{} }

// PushSubRoutineScope opens the parameter/local scopes for 'method', named
// after the enclosing class so that diagnostics can report "Class.method".
func (st *ScopeTable) PushSubRoutineScope(method string) {
	scope := strings.ReplaceAll(st.GetScope(), "Global", method)
	st.local = Scope{name: scope}
	st.parameter = Scope{name: scope}
}

// PopSubroutineScope discards the parameter/local scopes once a subroutine is
// fully compiled.
func (st *ScopeTable) PopSubroutineScope() { st.local, st.parameter = Scope{}, Scope{} }

// GetScope reports the most specific scope name currently open, used purely
// for diagnostics ("Class.method" vs "Class.Global").
func (st *ScopeTable) GetScope() string {
	if st.local.name != "" || st.parameter.name != "" {
		return st.local.name
	}
	if st.field.name != "" {
		return st.field.name
	}
	return "Global"
}

// RegisterVariable declares 'new' in the scope matching its VarType, assigning
// it the next free index in that scope.
func (st *ScopeTable) RegisterVariable(new Variable) uint16 {
	switch new.Type {
	case Local:
		return st.local.register(new)
	case Field:
		return st.field.register(new)
	case Parameter:
		return st.parameter.register(new)
	case Static:
		return st.static.register(new)
	default:
		return 0
	}
}

// ResolveVariable looks 'name' up across every open scope, in the precedence
// order the Jack language itself uses: local, then parameter, then field,
// then static. The returned index is the VM segment offset of the resolved
// Variable.
func (st *ScopeTable) ResolveVariable(name string) (uint16, Variable, error) {
	for _, scope := range []*Scope{&st.local, &st.parameter, &st.field, &st.static} {
		if idx, v, ok := scope.resolve(name); ok {
			return idx, v, nil
		}
	}
	return 0, Variable{}, fmt.Errorf("variable '%s' undeclared, not found in any scope", name)
}

// Count returns how many entries are registered in the scope matching 'kind'.
func (st *ScopeTable) Count(kind VarType) int {
	switch kind {
	case Local:
		return len(st.local.entries)
	case Field:
		return len(st.field.entries)
	case Parameter:
		return len(st.parameter.entries)
	case Static:
		return len(st.static.entries)
	default:
		return 0
	}
}
