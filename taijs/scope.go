package taijs

// scope holds the names declared in one function body.
// The top level scope is global: its names live in the VM's global env.
type scope struct {
	parent *scope
	global bool
	names  map[string]bool
}

func newScope(parent *scope) *scope {
	return &scope{
		parent: parent,
		global: parent == nil,
		names:  make(map[string]bool),
	}
}

func (s *scope) declare(name string) {
	s.names[name] = true
}

// resolve returns the env depth of name relative to s, or ok=false for globals.
func (s *scope) resolve(name string) (depth int, ok bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.global {
			return 0, false
		}
		if cur.names[name] {
			return depth, true
		}
		depth++
	}
	return 0, false
}

// hoisted collects the var names and function declarations of a body, in source order.
// Nested function bodies are not entered.
type hoisted struct {
	vars  []*Ident
	funcs []*FuncDecl
	seen  map[string]bool
}

func collectHoisted(stmts []Stmt) *hoisted {
	h := &hoisted{
		seen: make(map[string]bool),
	}
	for _, stmt := range stmts {
		h.stmt(stmt)
	}
	return h
}

func (h *hoisted) addVar(ident *Ident) {
	if h.seen[ident.Name] {
		return
	}
	h.seen[ident.Name] = true
	h.vars = append(h.vars, ident)
}

func (h *hoisted) stmt(stmt Stmt) {
	switch stmt := stmt.(type) {
	case *VarDecl:
		for _, decl := range stmt.Decls {
			h.addVar(decl.Name)
		}
	case *FuncDecl:
		h.funcs = append(h.funcs, stmt)
	case *BlockStmt:
		for _, s := range stmt.List {
			h.stmt(s)
		}
	case *IfStmt:
		h.stmt(stmt.Then)
		if stmt.Else != nil {
			h.stmt(stmt.Else)
		}
	case *WhileStmt:
		h.stmt(stmt.Body)
	case *DoWhileStmt:
		h.stmt(stmt.Body)
	case *ForStmt:
		if decl, ok := stmt.Init.(*VarDecl); ok {
			h.stmt(decl)
		}
		h.stmt(stmt.Body)
	}
}
