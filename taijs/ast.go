package taijs

import "github.com/reusee/taijs/taivm"

// Pos holds the indexes of the first and last token of a node.
type Pos struct {
	First int
	Last  int
}

func (p Pos) Range() taivm.TokenRange {
	return taivm.TokenRange{
		First: p.First,
		Last:  p.Last,
	}
}

type Node interface {
	Range() taivm.TokenRange
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

type Program struct {
	Pos
	Body []Stmt
}

// statements

type VarDecl struct {
	Pos
	Decls []*VarDeclarator
}

type VarDeclarator struct {
	Pos
	Name *Ident
	Init Expr // nil when absent
}

type FuncDecl struct {
	Pos
	Func *FuncLit
}

type ExprStmt struct {
	Pos
	X Expr
}

type IfStmt struct {
	Pos
	// Header spans `if (cond)`.
	Header Pos
	Cond   Expr
	Then   Stmt
	Else   Stmt // nil when absent
}

type WhileStmt struct {
	Pos
	Header Pos
	Cond   Expr
	Body   Stmt
}

type DoWhileStmt struct {
	Pos
	Body Stmt
	// Tail spans `while (cond)`.
	Tail Pos
	Cond Expr
}

type ForStmt struct {
	Pos
	Init   Node // *VarDecl, Expr or nil
	Cond   Expr // nil when absent
	Update Expr // nil when absent
	Body   Stmt
}

type BlockStmt struct {
	Pos
	List []Stmt
}

type ReturnStmt struct {
	Pos
	Result Expr // nil when absent
}

type BreakStmt struct {
	Pos
}

type ContinueStmt struct {
	Pos
}

type EmptyStmt struct {
	Pos
}

type DebuggerStmt struct {
	Pos
}

func (*VarDecl) stmtNode()      {}
func (*FuncDecl) stmtNode()     {}
func (*ExprStmt) stmtNode()     {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*DoWhileStmt) stmtNode()  {}
func (*ForStmt) stmtNode()      {}
func (*BlockStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*EmptyStmt) stmtNode()    {}
func (*DebuggerStmt) stmtNode() {}

// expressions

type Ident struct {
	Pos
	Name string
}

type NumberLit struct {
	Pos
	Value float64
}

type StringLit struct {
	Pos
	Value string
}

type BoolLit struct {
	Pos
	Value bool
}

type NullLit struct {
	Pos
}

type ThisExpr struct {
	Pos
}

type ArrayLit struct {
	Pos
	Elems []Expr
}

type Property struct {
	Pos
	Key   string
	Value Expr
}

type ObjectLit struct {
	Pos
	Props []*Property
}

type FuncLit struct {
	Pos
	Name   *Ident // nil for anonymous functions
	Params []*Ident
	Body   *BlockStmt
}

type UnaryExpr struct {
	Pos
	Op string
	X  Expr
}

// UpdateExpr is ++ or --.
type UpdateExpr struct {
	Pos
	Op     string
	Prefix bool
	X      Expr
}

type BinaryExpr struct {
	Pos
	Op string
	X  Expr
	Y  Expr
}

// LogicalExpr is && or ||.
type LogicalExpr struct {
	Pos
	Op string
	X  Expr
	Y  Expr
}

type AssignExpr struct {
	Pos
	Op     string
	Target Expr
	Value  Expr
}

type CondExpr struct {
	Pos
	Cond Expr
	Then Expr
	Else Expr
}

type CallExpr struct {
	Pos
	Callee Expr
	Args   []Expr
}

type NewExpr struct {
	Pos
	Callee Expr
	Args   []Expr
}

// MemberExpr is x.name.
type MemberExpr struct {
	Pos
	X    Expr
	Name *Ident
}

// IndexExpr is x[index].
type IndexExpr struct {
	Pos
	X     Expr
	Index Expr
}

type SeqExpr struct {
	Pos
	List []Expr
}

func (*Ident) exprNode()       {}
func (*NumberLit) exprNode()   {}
func (*StringLit) exprNode()   {}
func (*BoolLit) exprNode()     {}
func (*NullLit) exprNode()     {}
func (*ThisExpr) exprNode()    {}
func (*ArrayLit) exprNode()    {}
func (*ObjectLit) exprNode()   {}
func (*FuncLit) exprNode()     {}
func (*UnaryExpr) exprNode()   {}
func (*UpdateExpr) exprNode()  {}
func (*BinaryExpr) exprNode()  {}
func (*LogicalExpr) exprNode() {}
func (*AssignExpr) exprNode()  {}
func (*CondExpr) exprNode()    {}
func (*CallExpr) exprNode()    {}
func (*NewExpr) exprNode()     {}
func (*MemberExpr) exprNode()  {}
func (*IndexExpr) exprNode()   {}
func (*SeqExpr) exprNode()     {}
