package taijs

import (
	"fmt"
	"math"

	"github.com/reusee/taijs/taivm"
)

const (
	maxArg      = 1<<24 - 1
	maxVarConst = 0xffff
	maxVarDepth = 0xff
)

// unit is the state shared by the compilers of one program.
type unit struct {
	src       string
	tokens    []Token
	functions []*taivm.Function
}

type loopContext struct {
	breaks    []int
	continues []int
}

type compiler struct {
	unit   *unit
	scope  *scope
	fn     *taivm.Function
	consts map[any]int
	loops  []*loopContext
	// current is the token range recorded for emitted instructions
	current taivm.TokenRange
	// mark is the statement range attached to the next emitted instruction
	mark *taivm.TokenRange
	err  error
}

func newCompiler(u *unit, s *scope, name string) *compiler {
	fn := &taivm.Function{
		Name:  name,
		Index: len(u.functions),
	}
	u.functions = append(u.functions, fn)
	return &compiler{
		unit:   u,
		scope:  s,
		fn:     fn,
		consts: make(map[any]int),
	}
}

func (c *compiler) errorf(node Node, format string, args ...any) error {
	return c.errorAt(node.Range(), format, args...)
}

func (c *compiler) errorAt(r taivm.TokenRange, format string, args ...any) error {
	err := &CompileError{
		Message: fmt.Sprintf(format, args...),
		First:   r.First,
		Last:    r.Last,
	}
	if r.First >= 0 && r.Last < len(c.unit.tokens) && r.First <= r.Last {
		start := c.unit.tokens[r.First].Start
		err.Source = c.unit.src[start:c.unit.tokens[r.Last].End]
		err.Line, err.Column = position(c.unit.src, start)
	}
	return err
}

// fail records the first error.
func (c *compiler) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// enter sets the range for instructions emitted until the returned func is called.
func (c *compiler) enter(node Node) func() {
	saved := c.current
	c.current = node.Range()
	return func() {
		c.current = saved
	}
}

func (c *compiler) markStatement(r taivm.TokenRange) {
	c.mark = &r
}

func (c *compiler) emit(op taivm.OpCode) int {
	ip := len(c.fn.Code)
	c.fn.Code = append(c.fn.Code, op)
	c.fn.Ranges = append(c.fn.Ranges, c.current)
	if c.mark != nil {
		c.fn.Statements = append(c.fn.Statements, taivm.StatementMark{
			IP:    ip,
			Range: *c.mark,
		})
		c.mark = nil
	}
	return ip
}

func (c *compiler) emitArg(op taivm.OpCode, arg int) int {
	if arg < 0 || arg > maxArg {
		c.fail(c.errorAt(c.current, "operand %d out of range", arg))
	}
	return c.emit(op.With(arg))
}

func (c *compiler) currentIP() int {
	return len(c.fn.Code)
}

func (c *compiler) addConst(val any) int {
	if _, ok := val.(*taivm.Function); !ok {
		if idx, ok := c.consts[val]; ok {
			return idx
		}
	}
	c.fn.Constants = append(c.fn.Constants, val)
	idx := len(c.fn.Constants) - 1
	if _, ok := val.(*taivm.Function); !ok {
		c.consts[val] = idx
	}
	return idx
}

func (c *compiler) loadConst(val any) {
	c.emitArg(taivm.OpLoadConst, c.addConst(val))
}

func (c *compiler) emitJump(op taivm.OpCode) int {
	return c.emit(op)
}

func (c *compiler) patchJump(ip int, target int) {
	offset := target - ip - 1
	c.fn.Code[ip] = c.fn.Code[ip].Op().With(offset)
}

func (c *compiler) jumpTo(target int) {
	ip := c.currentIP()
	c.emit(taivm.OpJump.With(target - ip - 1))
}

func (c *compiler) emitName(op taivm.OpCode, name string) {
	c.emitArg(op, c.addConst(name))
}

func (c *compiler) emitVar(op taivm.OpCode, name string, depth int) {
	idx := c.addConst(name)
	if idx > maxVarConst || depth > maxVarDepth {
		c.fail(c.errorAt(c.current, "too many constants or nested functions for %s", name))
	}
	c.emit(op.With(taivm.VarArg(idx, depth)))
}

func (c *compiler) loadIdent(name string) {
	if depth, ok := c.scope.resolve(name); ok {
		c.emitVar(taivm.OpLoadVar, name, depth)
		return
	}
	switch name {
	case "undefined":
		c.emit(taivm.OpLoadUndefined)
	case "NaN":
		c.loadConst(math.NaN())
	case "Infinity":
		c.loadConst(math.Inf(1))
	default:
		c.emitName(taivm.OpLoadGlobal, name)
	}
}

// storeIdent pops the top of stack into name.
func (c *compiler) storeIdent(name string) {
	if depth, ok := c.scope.resolve(name); ok {
		c.emitVar(taivm.OpSetVar, name, depth)
		return
	}
	c.emitName(taivm.OpSetGlobal, name)
}

// compile

// CompileProgram compiles source into a Program without creating a VM.
func CompileProgram(name string, source string) (*taivm.Program, error) {
	ast, tokens, err := Parse(source)
	if err != nil {
		return nil, err
	}

	u := &unit{
		src:    source,
		tokens: tokens,
	}
	if err := u.compileMain(ast); err != nil {
		return nil, err
	}

	spans := make([]taivm.Span, len(tokens))
	for i, tok := range tokens {
		spans[i] = taivm.Span{
			Start: tok.Start,
			End:   tok.End,
		}
	}
	return taivm.NewProgram(name, source, spans, u.functions), nil
}

func (u *unit) compileMain(prog *Program) error {
	c := newCompiler(u, newScope(nil), "main")
	c.current = prog.Range()

	h := collectHoisted(prog.Body)
	c.prologue(h)
	for _, stmt := range prog.Body {
		c.compileStmt(stmt)
	}

	c.mark = nil
	c.current = taivm.TokenRange{
		First: len(u.tokens) - 1,
		Last:  len(u.tokens) - 1,
	}
	c.emit(taivm.OpLoadUndefined)
	c.emit(taivm.OpReturn)
	return c.finish(h)
}

// prologue declares hoisted names and creates closures for function declarations.
func (c *compiler) prologue(h *hoisted) {
	for _, ident := range h.vars {
		c.scope.declare(ident.Name)
		restore := c.enter(ident)
		c.emitName(taivm.OpDeclareVar, ident.Name)
		restore()
	}
	for _, decl := range h.funcs {
		c.scope.declare(decl.Func.Name.Name)
	}
	for _, decl := range h.funcs {
		restore := c.enter(decl.Func.Name)
		c.makeClosure(decl.Func, decl.Func.Name.Name, false)
		c.emitName(taivm.OpDefVar, decl.Func.Name.Name)
		restore()
	}
}

func (c *compiler) finish(h *hoisted) error {
	if c.err != nil {
		return c.err
	}
	for _, ident := range h.vars {
		c.fn.Locals = append(c.fn.Locals, ident.Name)
	}
	for _, decl := range h.funcs {
		c.fn.Locals = append(c.fn.Locals, decl.Func.Name.Name)
	}
	return nil
}

// makeClosure compiles lit into a new section and emits the closure creation.
// Function expressions with a name can refer to themselves by it.
func (c *compiler) makeClosure(lit *FuncLit, name string, isExpr bool) {
	if lit.Name != nil {
		name = lit.Name.Name
	}
	sub := newCompiler(c.unit, newScope(c.scope), name)
	sub.current = lit.Range()

	for _, param := range lit.Params {
		sub.fn.ParamNames = append(sub.fn.ParamNames, param.Name)
		sub.scope.declare(param.Name)
	}
	sub.fn.NumParams = len(lit.Params)

	h := collectHoisted(lit.Body.List)
	if isExpr && lit.Name != nil &&
		!sub.scope.names[lit.Name.Name] &&
		!h.seen[lit.Name.Name] &&
		!declaresFunc(h, lit.Name.Name) {
		sub.scope.declare(lit.Name.Name)
		restore := sub.enter(lit.Name)
		sub.emit(taivm.OpLoadCallee)
		sub.emitName(taivm.OpDefVar, lit.Name.Name)
		restore()
	}
	params := sub.scope.names
	var vars []*Ident
	for _, ident := range h.vars {
		if !params[ident.Name] {
			vars = append(vars, ident)
		}
	}
	h.vars = vars
	sub.prologue(h)

	for _, stmt := range lit.Body.List {
		sub.compileStmt(stmt)
	}

	sub.mark = nil
	sub.current = taivm.TokenRange{
		First: lit.Body.Last,
		Last:  lit.Body.Last,
	}
	sub.emit(taivm.OpLoadUndefined)
	sub.emit(taivm.OpReturn)

	if err := sub.finish(h); err != nil {
		c.fail(err)
	}
	c.emitArg(taivm.OpMakeClosure, c.addConst(sub.fn))
}

func declaresFunc(h *hoisted, name string) bool {
	for _, decl := range h.funcs {
		if decl.Func.Name.Name == name {
			return true
		}
	}
	return false
}

// statements

func (c *compiler) compileStmt(stmt Stmt) {
	if c.err != nil {
		return
	}
	defer c.enter(stmt)()

	switch stmt := stmt.(type) {

	case *VarDecl:
		c.markStatement(stmt.Range())
		c.compileVarDecl(stmt)
		// declarations without initializers emit nothing
		c.mark = nil

	case *FuncDecl:
		// hoisted

	case *ExprStmt:
		c.markStatement(stmt.Range())
		c.compileExpr(stmt.X)
		c.emit(taivm.OpPop)

	case *IfStmt:
		c.markStatement(stmt.Header.Range())
		restore := c.enter(stmt.Header)
		c.compileExpr(stmt.Cond)
		elseJump := c.emitJump(taivm.OpJumpFalse)
		restore()
		c.compileStmt(stmt.Then)
		if stmt.Else == nil {
			c.patchJump(elseJump, c.currentIP())
			return
		}
		endJump := c.emitJump(taivm.OpJump)
		c.patchJump(elseJump, c.currentIP())
		c.compileStmt(stmt.Else)
		c.patchJump(endJump, c.currentIP())

	case *WhileStmt:
		loop := c.pushLoop()
		start := c.currentIP()
		c.markStatement(stmt.Header.Range())
		restore := c.enter(stmt.Header)
		c.compileExpr(stmt.Cond)
		exitJump := c.emitJump(taivm.OpJumpFalse)
		restore()
		c.compileStmt(stmt.Body)
		c.jumpTo(start)
		c.popLoop(loop, c.currentIP(), start)
		c.patchJump(exitJump, c.currentIP())

	case *DoWhileStmt:
		loop := c.pushLoop()
		start := c.currentIP()
		c.compileStmt(stmt.Body)
		condIP := c.currentIP()
		c.markStatement(stmt.Tail.Range())
		restore := c.enter(stmt.Tail)
		c.compileExpr(stmt.Cond)
		exitJump := c.emitJump(taivm.OpJumpFalse)
		c.jumpTo(start)
		restore()
		c.popLoop(loop, c.currentIP(), condIP)
		c.patchJump(exitJump, c.currentIP())

	case *ForStmt:
		c.compileFor(stmt)

	case *BlockStmt:
		for _, s := range stmt.List {
			c.compileStmt(s)
		}

	case *ReturnStmt:
		if c.scope.global {
			c.fail(c.errorf(stmt, "return outside function"))
			return
		}
		c.markStatement(stmt.Range())
		if stmt.Result != nil {
			c.compileExpr(stmt.Result)
		} else {
			c.emit(taivm.OpLoadUndefined)
		}
		c.emit(taivm.OpReturn)

	case *BreakStmt:
		if len(c.loops) == 0 {
			c.fail(c.errorf(stmt, "break outside loop"))
			return
		}
		c.markStatement(stmt.Range())
		loop := c.loops[len(c.loops)-1]
		loop.breaks = append(loop.breaks, c.emitJump(taivm.OpJump))

	case *ContinueStmt:
		if len(c.loops) == 0 {
			c.fail(c.errorf(stmt, "continue outside loop"))
			return
		}
		c.markStatement(stmt.Range())
		loop := c.loops[len(c.loops)-1]
		loop.continues = append(loop.continues, c.emitJump(taivm.OpJump))

	case *EmptyStmt:

	case *DebuggerStmt:
		c.markStatement(stmt.Range())
		c.emit(taivm.OpDebugger)

	default:
		c.fail(c.errorf(stmt, "unknown statement %T", stmt))

	}
}

func (c *compiler) compileVarDecl(decl *VarDecl) {
	for _, d := range decl.Decls {
		if d.Init == nil {
			continue
		}
		restore := c.enter(d)
		c.compileValue(d.Init, d.Name.Name)
		c.storeIdent(d.Name.Name)
		restore()
	}
}

func (c *compiler) compileFor(stmt *ForStmt) {
	switch init := stmt.Init.(type) {
	case nil:
	case *VarDecl:
		c.markStatement(init.Range())
		restore := c.enter(init)
		c.compileVarDecl(init)
		c.mark = nil
		restore()
	case Expr:
		c.markStatement(init.Range())
		restore := c.enter(init)
		c.compileExpr(init)
		c.emit(taivm.OpPop)
		restore()
	}

	loop := c.pushLoop()
	start := c.currentIP()
	exitJump := -1
	if stmt.Cond != nil {
		c.markStatement(stmt.Cond.Range())
		restore := c.enter(stmt.Cond)
		c.compileExpr(stmt.Cond)
		exitJump = c.emitJump(taivm.OpJumpFalse)
		restore()
	}

	c.compileStmt(stmt.Body)

	continueTarget := c.currentIP()
	if stmt.Update != nil {
		c.markStatement(stmt.Update.Range())
		restore := c.enter(stmt.Update)
		c.compileExpr(stmt.Update)
		c.emit(taivm.OpPop)
		restore()
	}
	c.jumpTo(start)

	c.popLoop(loop, c.currentIP(), continueTarget)
	if exitJump >= 0 {
		c.patchJump(exitJump, c.currentIP())
	}
}

func (c *compiler) pushLoop() *loopContext {
	loop := &loopContext{}
	c.loops = append(c.loops, loop)
	return loop
}

func (c *compiler) popLoop(loop *loopContext, breakTarget int, continueTarget int) {
	c.loops = c.loops[:len(c.loops)-1]
	for _, ip := range loop.breaks {
		c.patchJump(ip, breakTarget)
	}
	for _, ip := range loop.continues {
		c.patchJump(ip, continueTarget)
	}
}

// expressions

var binaryOps = map[string]taivm.OpCode{
	"+":   taivm.OpAdd,
	"-":   taivm.OpSub,
	"*":   taivm.OpMul,
	"/":   taivm.OpDiv,
	"%":   taivm.OpMod,
	"**":  taivm.OpPow,
	"&":   taivm.OpBitAnd,
	"|":   taivm.OpBitOr,
	"^":   taivm.OpBitXor,
	"<<":  taivm.OpBitLsh,
	">>":  taivm.OpBitRsh,
	">>>": taivm.OpBitURsh,
	"==":  taivm.OpEq,
	"!=":  taivm.OpNe,
	"===": taivm.OpStrictEq,
	"!==": taivm.OpStrictNe,
	"<":   taivm.OpLt,
	"<=":  taivm.OpLe,
	">":   taivm.OpGt,
	">=":  taivm.OpGe,
}

var compoundOps = map[string]taivm.OpCode{
	"+=":   taivm.OpAdd,
	"-=":   taivm.OpSub,
	"*=":   taivm.OpMul,
	"/=":   taivm.OpDiv,
	"%=":   taivm.OpMod,
	"**=":  taivm.OpPow,
	"&=":   taivm.OpBitAnd,
	"|=":   taivm.OpBitOr,
	"^=":   taivm.OpBitXor,
	"<<=":  taivm.OpBitLsh,
	">>=":  taivm.OpBitRsh,
	">>>=": taivm.OpBitURsh,
}

var unaryOps = map[string]taivm.OpCode{
	"-": taivm.OpNeg,
	"+": taivm.OpPos,
	"!": taivm.OpNot,
	"~": taivm.OpBitNot,
}

// compileValue compiles an expression whose value is bound to name.
// Anonymous functions take the name.
func (c *compiler) compileValue(expr Expr, name string) {
	if lit, ok := expr.(*FuncLit); ok && lit.Name == nil {
		defer c.enter(lit)()
		c.makeClosure(lit, name, true)
		return
	}
	c.compileExpr(expr)
}

// compileExpr pushes exactly one value.
func (c *compiler) compileExpr(expr Expr) {
	if c.err != nil {
		return
	}
	defer c.enter(expr)()

	switch expr := expr.(type) {

	case *NumberLit:
		c.loadConst(expr.Value)

	case *StringLit:
		c.loadConst(expr.Value)

	case *BoolLit:
		c.loadConst(expr.Value)

	case *NullLit:
		c.loadConst(taivm.Null)

	case *ThisExpr:
		c.emit(taivm.OpLoadThis)

	case *Ident:
		c.loadIdent(expr.Name)

	case *ArrayLit:
		for _, elem := range expr.Elems {
			c.compileExpr(elem)
		}
		c.emitArg(taivm.OpMakeArray, len(expr.Elems))

	case *ObjectLit:
		for _, prop := range expr.Props {
			restore := c.enter(prop)
			c.loadConst(prop.Key)
			c.compileValue(prop.Value, prop.Key)
			restore()
		}
		c.emitArg(taivm.OpMakeObject, len(expr.Props))

	case *FuncLit:
		c.makeClosure(expr, "", true)

	case *UnaryExpr:
		c.compileUnary(expr)

	case *UpdateExpr:
		c.compileUpdate(expr)

	case *BinaryExpr:
		op, ok := binaryOps[expr.Op]
		if !ok {
			c.fail(c.errorf(expr, "unknown operator %s", expr.Op))
			return
		}
		c.compileExpr(expr.X)
		c.compileExpr(expr.Y)
		c.emit(op)

	case *LogicalExpr:
		c.compileExpr(expr.X)
		var jump int
		if expr.Op == "&&" {
			jump = c.emitJump(taivm.OpJumpFalseKeep)
		} else {
			jump = c.emitJump(taivm.OpJumpTrueKeep)
		}
		c.compileExpr(expr.Y)
		c.patchJump(jump, c.currentIP())

	case *CondExpr:
		c.compileExpr(expr.Cond)
		elseJump := c.emitJump(taivm.OpJumpFalse)
		c.compileExpr(expr.Then)
		endJump := c.emitJump(taivm.OpJump)
		c.patchJump(elseJump, c.currentIP())
		c.compileExpr(expr.Else)
		c.patchJump(endJump, c.currentIP())

	case *AssignExpr:
		c.compileAssign(expr)

	case *CallExpr:
		c.compileCall(expr)

	case *NewExpr:
		c.compileExpr(expr.Callee)
		for _, arg := range expr.Args {
			c.compileExpr(arg)
		}
		c.emitArg(taivm.OpNew, len(expr.Args))

	case *MemberExpr, *IndexExpr:
		c.compileReference(expr)
		c.emit(taivm.OpGetIndex)

	case *SeqExpr:
		for i, x := range expr.List {
			c.compileExpr(x)
			if i < len(expr.List)-1 {
				c.emit(taivm.OpPop)
			}
		}

	default:
		c.fail(c.errorf(expr, "unknown expression %T", expr))

	}
}

// compileReference pushes the object and the key of a member or index expression.
func (c *compiler) compileReference(expr Expr) {
	switch expr := expr.(type) {
	case *MemberExpr:
		c.compileExpr(expr.X)
		restore := c.enter(expr.Name)
		c.loadConst(expr.Name.Name)
		restore()
	case *IndexExpr:
		c.compileExpr(expr.X)
		c.compileExpr(expr.Index)
	}
}

func (c *compiler) compileUnary(expr *UnaryExpr) {
	if expr.Op == "typeof" {
		if ident, ok := expr.X.(*Ident); ok {
			if _, local := c.scope.resolve(ident.Name); !local {
				c.emitName(taivm.OpTypeofGlobal, ident.Name)
				return
			}
		}
		c.compileExpr(expr.X)
		c.emit(taivm.OpTypeof)
		return
	}
	op, ok := unaryOps[expr.Op]
	if !ok {
		c.fail(c.errorf(expr, "unknown operator %s", expr.Op))
		return
	}
	c.compileExpr(expr.X)
	c.emit(op)
}

func (c *compiler) compileAssign(expr *AssignExpr) {
	var op taivm.OpCode
	if expr.Op != "=" {
		var ok bool
		op, ok = compoundOps[expr.Op]
		if !ok {
			c.fail(c.errorf(expr, "unknown operator %s", expr.Op))
			return
		}
	}

	switch target := expr.Target.(type) {

	case *Ident:
		if expr.Op == "=" {
			c.compileValue(expr.Value, target.Name)
		} else {
			c.loadIdent(target.Name)
			c.compileExpr(expr.Value)
			c.emit(op)
		}
		c.emit(taivm.OpDup)
		c.storeIdent(target.Name)

	case *MemberExpr, *IndexExpr:
		// the reference is evaluated once
		c.compileReference(target)
		if expr.Op == "=" {
			c.compileExpr(expr.Value)
		} else {
			c.emit(taivm.OpDup2)
			c.emit(taivm.OpGetIndex)
			c.compileExpr(expr.Value)
			c.emit(op)
		}
		c.emit(taivm.OpSetIndex)

	default:
		c.fail(c.errorf(expr.Target, "invalid assignment target"))

	}
}

func (c *compiler) compileUpdate(expr *UpdateExpr) {
	op := taivm.OpAdd
	if expr.Op == "--" {
		op = taivm.OpSub
	}

	switch target := expr.X.(type) {

	case *Ident:
		c.loadIdent(target.Name)
		c.emit(taivm.OpPos)
		if expr.Prefix {
			c.loadConst(1.0)
			c.emit(op)
			c.emit(taivm.OpDup)
		} else {
			c.emit(taivm.OpDup)
			c.loadConst(1.0)
			c.emit(op)
		}
		c.storeIdent(target.Name)

	case *MemberExpr, *IndexExpr:
		c.compileReference(target)
		c.emit(taivm.OpDup2)
		c.emit(taivm.OpGetIndex)
		c.emit(taivm.OpPos)
		if expr.Prefix {
			c.loadConst(1.0)
			c.emit(op)
			c.emit(taivm.OpSetIndex)
			return
		}
		// keep the old value below the reference
		c.emit(taivm.OpDup)
		c.emitArg(taivm.OpInsertBelow, 3)
		c.loadConst(1.0)
		c.emit(op)
		c.emit(taivm.OpSetIndex)
		c.emit(taivm.OpPop)

	default:
		c.fail(c.errorf(expr.X, "invalid %s operand", expr.Op))

	}
}

func (c *compiler) compileCall(expr *CallExpr) {
	switch callee := expr.Callee.(type) {

	case *MemberExpr, *IndexExpr:
		// receiver, method, args
		var obj Expr
		if m, ok := callee.(*MemberExpr); ok {
			obj = m.X
		} else {
			obj = callee.(*IndexExpr).X
		}
		c.compileExpr(obj)
		restore := c.enter(callee)
		c.emit(taivm.OpDup)
		switch callee := callee.(type) {
		case *MemberExpr:
			restore := c.enter(callee.Name)
			c.loadConst(callee.Name.Name)
			restore()
		case *IndexExpr:
			c.compileExpr(callee.Index)
		}
		c.emit(taivm.OpGetIndex)
		restore()
		for _, arg := range expr.Args {
			c.compileExpr(arg)
		}
		c.emitArg(taivm.OpCallMethod, len(expr.Args))

	default:
		c.compileExpr(expr.Callee)
		for _, arg := range expr.Args {
			c.compileExpr(arg)
		}
		c.emitArg(taivm.OpCall, len(expr.Args))

	}
}
