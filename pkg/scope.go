package quill

import (
	"fmt"
	"sort"
	"strings"
)

type SymbolKind int

const (
	BuiltInTypeSymbol SymbolKind = iota
	VarSymbol
	FunctionSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case BuiltInTypeSymbol:
		return "BuiltInTypeSymbol"
	case VarSymbol:
		return "VarSymbol"
	case FunctionSymbol:
		return "FunctionSymbol"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
}

// Symbol is a declared name. Type points at the builtin type symbol of a
// variable and is nil for builtin types and functions. Params lists the
// parameter variables of a function.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Type   *Symbol
	Params []*Symbol
}

func NewVarSymbol(name string, typ *Symbol) *Symbol {
	return &Symbol{Name: name, Kind: VarSymbol, Type: typ}
}

func NewFunctionSymbol(name string, params ...*Symbol) *Symbol {
	return &Symbol{Name: name, Kind: FunctionSymbol, Params: params}
}

func (s *Symbol) TypeName() string {
	if s == nil || s.Type == nil {
		return ""
	}

	return s.Type.Name
}

func (s *Symbol) String() string {
	switch s.Kind {
	case VarSymbol:
		return fmt.Sprintf("<VarSymbol(name='%s', type='%s')>", s.Name, s.TypeName())
	case FunctionSymbol:
		params := make([]string, len(s.Params))
		for i, p := range s.Params {
			params[i] = p.TypeName() + " " + p.Name
		}
		return fmt.Sprintf("<FunctionSymbol(name='%s', params='%s')>", s.Name, strings.Join(params, ", "))
	default:
		return fmt.Sprintf("<BuiltInTypeSymbol(name='%s')>", s.Name)
	}
}

type ScopeID int

// NoScope is the parent of the global scope.
const NoScope ScopeID = -1

// ScopedSymbolTable is one lexical scope. Variables live apart from other
// symbols: variable lookups stay in the scope, symbol lookups walk up.
type ScopedSymbolTable struct {
	Name   string
	Level  int
	Parent ScopeID

	symbols   map[string]*Symbol
	variables map[string]*Symbol
}

func NewScopedSymbolTable(name string, level int, parent ScopeID) *ScopedSymbolTable {
	return &ScopedSymbolTable{
		Name:      name,
		Level:     level,
		Parent:    parent,
		symbols:   make(map[string]*Symbol),
		variables: make(map[string]*Symbol),
	}
}

func (t *ScopedSymbolTable) InsertSymbol(sym *Symbol) {
	t.symbols[sym.Name] = sym
}

func (t *ScopedSymbolTable) InsertVariable(sym *Symbol) {
	t.variables[sym.Name] = sym
}

func (t *ScopedSymbolTable) LookupVariable(name string) *Symbol {
	return t.variables[name]
}

func (t *ScopedSymbolTable) HasSymbol(name string) bool {
	_, ok := t.symbols[name]
	return ok
}

func (t *ScopedSymbolTable) HasVariable(name string) bool {
	_, ok := t.variables[name]
	return ok
}

func (t *ScopedSymbolTable) Variables() []*Symbol {
	return sortedSymbols(t.variables)
}

func (t *ScopedSymbolTable) Symbols() []*Symbol {
	return sortedSymbols(t.symbols)
}

func (t *ScopedSymbolTable) String() string {
	var str strings.Builder

	fmt.Fprintf(&str, "SCOPE %s (level %d)\n", t.Name, t.Level)
	str.WriteString("-------------------------------------------------=( VARIABLES )=--\n")
	fmt.Fprintf(&str, "%-12s | %s\n\n", "Name", "Symbol")
	for _, sym := range t.Variables() {
		fmt.Fprintf(&str, "%-12s | %s\n", sym.Name, sym)
	}

	str.WriteString("-----------------------------------------------------=( OTHER )=--\n")
	fmt.Fprintf(&str, "%-12s | %s\n\n", "Name", "Symbol")
	for _, sym := range t.Symbols() {
		fmt.Fprintf(&str, "%-12s | %s\n", sym.Name, sym)
	}
	str.WriteString("------------------------------------------------------------------\n")

	return str.String()
}

func sortedSymbols(m map[string]*Symbol) []*Symbol {
	syms := make([]*Symbol, 0, len(m))
	for _, sym := range m {
		syms = append(syms, sym)
	}

	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Name < syms[j].Name
	})

	return syms
}

// Scopes is an arena of symbol tables addressed by ScopeID. Tables refer to
// their parent by index only. The global scope sits at index 0.
type Scopes struct {
	tables []*ScopedSymbolTable
}

// NewScopes returns an arena holding only the global scope, seeded with the
// builtin types.
func NewScopes() *Scopes {
	global := NewScopedSymbolTable("global", 0, NoScope)
	defineBuiltinTypes(global)

	return &Scopes{
		tables: []*ScopedSymbolTable{global},
	}
}

func (s *Scopes) Global() ScopeID {
	return 0
}

func (s *Scopes) Len() int {
	return len(s.tables)
}

func (s *Scopes) Get(id ScopeID) *ScopedSymbolTable {
	if id < 0 || int(id) >= len(s.tables) {
		return nil
	}

	return s.tables[id]
}

// Last returns the innermost scope still held by the arena.
func (s *Scopes) Last() *ScopedSymbolTable {
	return s.tables[len(s.tables)-1]
}

// Push opens a child of parent one level deeper.
func (s *Scopes) Push(name string, parent ScopeID) ScopeID {
	level := 0
	if p := s.Get(parent); p != nil {
		level = p.Level + 1
	}

	s.tables = append(s.tables, NewScopedSymbolTable(name, level, parent))
	return ScopeID(len(s.tables) - 1)
}

// Pop drops the innermost scope. The global scope is never dropped.
func (s *Scopes) Pop() {
	if len(s.tables) > 1 {
		s.tables = s.tables[:len(s.tables)-1]
	}
}

// Truncate drops every scope after id.
func (s *Scopes) Truncate(id ScopeID) {
	if int(id)+1 < len(s.tables) && id >= 0 {
		s.tables = s.tables[:id+1]
	}
}

// LookupSymbol finds a non-variable symbol in scope or any of its parents.
func (s *Scopes) LookupSymbol(scope ScopeID, name string) *Symbol {
	for t := s.Get(scope); t != nil; t = s.Get(t.Parent) {
		if sym, ok := t.symbols[name]; ok {
			return sym
		}
	}

	return nil
}

// LookupVariable finds a variable in scope only.
func (s *Scopes) LookupVariable(scope ScopeID, name string) *Symbol {
	t := s.Get(scope)
	if t == nil {
		return nil
	}

	return t.LookupVariable(name)
}

func (s *Scopes) String() string {
	var str strings.Builder
	for _, t := range s.tables {
		str.WriteString(t.String())
	}

	return str.String()
}
