package taijs

import (
	"fmt"

	"github.com/reusee/taijs/taivm"
)

type parser struct {
	src    string
	tokens []Token
	// pos is the index of the current token, never a comment
	pos int
	// last is the index of the last consumed token
	last int
}

// Parse lexes and parses source. The returned tokens include comments; node positions index into them.
func Parse(source string) (*Program, []Token, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, nil, err
	}
	p := &parser{
		src:    source,
		tokens: tokens,
	}
	p.skipComments()
	prog, err := p.parseProgram()
	if err != nil {
		return nil, nil, err
	}
	return prog, tokens, nil
}

func (p *parser) skipComments() {
	for p.pos < len(p.tokens)-1 && p.tokens[p.pos].Kind == TokenComment {
		p.pos++
	}
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	p.last = p.pos
	if tok.Kind != TokenEOF {
		p.pos++
		p.skipComments()
	}
	return tok
}

func (p *parser) is(text string) bool {
	tok := p.tokens[p.pos]
	return (tok.Kind == TokenPunct || tok.Kind == TokenKeyword) && tok.Text == text
}

func (p *parser) isAny(texts ...string) bool {
	for _, text := range texts {
		if p.is(text) {
			return true
		}
	}
	return false
}

func (p *parser) atEOF() bool {
	return p.tokens[p.pos].Kind == TokenEOF
}

func (p *parser) expect(text string) (int, error) {
	if !p.is(text) {
		return 0, p.errorf("expected %q, got %s", text, p.peek())
	}
	p.next()
	return p.last, nil
}

func (p *parser) errorf(format string, args ...any) error {
	tok := p.peek()
	line, col := position(p.src, tok.Start)
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Token:   p.pos,
		Offset:  tok.Start,
		Line:    line,
		Column:  col,
	}
}

// semicolon consumes a statement terminator. It may be omitted before `}`, at the end of input,
// or when the next token starts a new line.
func (p *parser) semicolon() error {
	if p.is(";") {
		p.next()
		return nil
	}
	if p.is("}") || p.atEOF() || p.peek().NewlineBefore {
		return nil
	}
	return p.errorf("expected \";\", got %s", p.peek())
}

func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{
		Pos: Pos{
			First: 0,
			Last:  len(p.tokens) - 1,
		},
	}
	for !p.atEOF() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, stmt)
	}
	return prog, nil
}

func (p *parser) parseStatement() (Stmt, error) {
	first := p.pos
	tok := p.peek()

	if tok.Kind == TokenPunct {
		switch tok.Text {
		case "{":
			return p.parseBlock()
		case ";":
			p.next()
			return &EmptyStmt{
				Pos: Pos{first, first},
			}, nil
		}
	}

	if tok.Kind == TokenKeyword {
		switch tok.Text {

		case "var":
			decl, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			return decl, p.semicolon()

		case "function":
			fn, err := p.parseFunction(true)
			if err != nil {
				return nil, err
			}
			return &FuncDecl{
				Pos:  fn.Pos,
				Func: fn,
			}, nil

		case "if":
			return p.parseIf()

		case "while":
			return p.parseWhile()

		case "do":
			return p.parseDoWhile()

		case "for":
			return p.parseFor()

		case "return":
			p.next()
			stmt := &ReturnStmt{}
			if !p.is(";") && !p.is("}") && !p.atEOF() && !p.peek().NewlineBefore {
				result, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				stmt.Result = result
			}
			stmt.Pos = Pos{first, p.last}
			return stmt, p.semicolon()

		case "break":
			p.next()
			return &BreakStmt{
				Pos: Pos{first, first},
			}, p.semicolon()

		case "continue":
			p.next()
			return &ContinueStmt{
				Pos: Pos{first, first},
			}, p.semicolon()

		case "debugger":
			p.next()
			return &DebuggerStmt{
				Pos: Pos{first, first},
			}, p.semicolon()

		}
	}

	x, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{
		Pos: Pos{first, p.last},
		X:   x,
	}, p.semicolon()
}

func (p *parser) parseBlock() (*BlockStmt, error) {
	first, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	block := &BlockStmt{}
	for !p.is("}") {
		if p.atEOF() {
			return nil, p.errorf("expected \"}\", got %s", p.peek())
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.List = append(block.List, stmt)
	}
	p.next()
	block.Pos = Pos{first, p.last}
	return block, nil
}

// parseVarDecl parses declarators without the terminator.
func (p *parser) parseVarDecl() (*VarDecl, error) {
	first, err := p.expect("var")
	if err != nil {
		return nil, err
	}
	decl := &VarDecl{}
	for {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		declarator := &VarDeclarator{
			Name: name,
		}
		if p.is("=") {
			p.next()
			init, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			declarator.Init = init
		}
		declarator.Pos = Pos{name.First, p.last}
		decl.Decls = append(decl.Decls, declarator)
		if !p.is(",") {
			break
		}
		p.next()
	}
	decl.Pos = Pos{first, p.last}
	return decl, nil
}

func (p *parser) parseIdent() (*Ident, error) {
	tok := p.peek()
	if tok.Kind != TokenIdent {
		return nil, p.errorf("expected identifier, got %s", tok)
	}
	p.next()
	return &Ident{
		Pos:  Pos{p.last, p.last},
		Name: tok.Text,
	}, nil
}

func (p *parser) parseFunction(requireName bool) (*FuncLit, error) {
	first, err := p.expect("function")
	if err != nil {
		return nil, err
	}
	fn := &FuncLit{}
	if p.peek().Kind == TokenIdent {
		fn.Name, _ = p.parseIdent()
	} else if requireName {
		return nil, p.errorf("expected function name, got %s", p.peek())
	}

	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	for !p.is(")") {
		param, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, param)
		if !p.is(",") {
			break
		}
		p.next()
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	fn.Pos = Pos{first, p.last}
	return fn, nil
}

// parseParenCond parses `(expr)` and returns the index of the closing paren.
func (p *parser) parseParenCond() (Expr, int, error) {
	if _, err := p.expect("("); err != nil {
		return nil, 0, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, 0, err
	}
	rparen, err := p.expect(")")
	if err != nil {
		return nil, 0, err
	}
	return cond, rparen, nil
}

func (p *parser) parseIf() (Stmt, error) {
	first, _ := p.expect("if")
	cond, rparen, err := p.parseParenCond()
	if err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{
		Header: Pos{first, rparen},
		Cond:   cond,
		Then:   then,
	}
	if p.is("else") {
		p.next()
		els, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}
	stmt.Pos = Pos{first, p.last}
	return stmt, nil
}

func (p *parser) parseWhile() (Stmt, error) {
	first, _ := p.expect("while")
	cond, rparen, err := p.parseParenCond()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{
		Pos:    Pos{first, p.last},
		Header: Pos{first, rparen},
		Cond:   cond,
		Body:   body,
	}, nil
}

func (p *parser) parseDoWhile() (Stmt, error) {
	first, _ := p.expect("do")
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	while, err := p.expect("while")
	if err != nil {
		return nil, err
	}
	cond, rparen, err := p.parseParenCond()
	if err != nil {
		return nil, err
	}
	if p.is(";") {
		p.next()
	}
	return &DoWhileStmt{
		Pos:  Pos{first, rparen},
		Body: body,
		Tail: Pos{while, rparen},
		Cond: cond,
	}, nil
}

func (p *parser) parseFor() (Stmt, error) {
	first, _ := p.expect("for")
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	stmt := &ForStmt{}

	if !p.is(";") {
		if p.is("var") {
			decl, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			stmt.Init = decl
		} else {
			init, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			stmt.Init = init
		}
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}

	if !p.is(";") {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}

	if !p.is(")") {
		update, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Update = update
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.Pos = Pos{first, p.last}
	return stmt, nil
}

// expressions

func (p *parser) parseExpression() (Expr, error) {
	first := p.pos
	x, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if !p.is(",") {
		return x, nil
	}
	seq := &SeqExpr{
		List: []Expr{x},
	}
	for p.is(",") {
		p.next()
		x, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		seq.List = append(seq.List, x)
	}
	seq.Pos = Pos{first, p.last}
	return seq, nil
}

var assignOps = map[string]bool{
	"=":    true,
	"+=":   true,
	"-=":   true,
	"*=":   true,
	"/=":   true,
	"%=":   true,
	"**=":  true,
	"<<=":  true,
	">>=":  true,
	">>>=": true,
	"&=":   true,
	"|=":   true,
	"^=":   true,
}

func (p *parser) parseAssign() (Expr, error) {
	first := p.pos
	target, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if tok.Kind != TokenPunct || !assignOps[tok.Text] {
		return target, nil
	}
	p.next()
	value, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return &AssignExpr{
		Pos:    Pos{first, p.last},
		Op:     tok.Text,
		Target: target,
		Value:  value,
	}, nil
}

func (p *parser) parseConditional() (Expr, error) {
	first := p.pos
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if !p.is("?") {
		return cond, nil
	}
	p.next()
	then, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	els, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return &CondExpr{
		Pos:  Pos{first, p.last},
		Cond: cond,
		Then: then,
		Else: els,
	}, nil
}

var binaryPrecedence = map[string]int{
	"||":  1,
	"&&":  2,
	"|":   3,
	"^":   4,
	"&":   5,
	"==":  6,
	"!=":  6,
	"===": 6,
	"!==": 6,
	"<":   7,
	"<=":  7,
	">":   7,
	">=":  7,
	"<<":  8,
	">>":  8,
	">>>": 8,
	"+":   9,
	"-":   9,
	"*":   10,
	"/":   10,
	"%":   10,
	"**":  11,
}

func (p *parser) parseBinary(minPrec int) (Expr, error) {
	first := p.pos
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != TokenPunct {
			return x, nil
		}
		prec := binaryPrecedence[tok.Text]
		if prec == 0 || prec < minPrec {
			return x, nil
		}
		p.next()

		nextMin := prec + 1
		if tok.Text == "**" {
			nextMin = prec
		}
		y, err := p.parseBinary(nextMin)
		if err != nil {
			return nil, err
		}

		pos := Pos{first, p.last}
		if tok.Text == "&&" || tok.Text == "||" {
			x = &LogicalExpr{
				Pos: pos,
				Op:  tok.Text,
				X:   x,
				Y:   y,
			}
		} else {
			x = &BinaryExpr{
				Pos: pos,
				Op:  tok.Text,
				X:   x,
				Y:   y,
			}
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	first := p.pos
	switch {

	case p.isAny("!", "-", "+", "~", "typeof"):
		op := p.next().Text
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			Pos: Pos{first, p.last},
			Op:  op,
			X:   x,
		}, nil

	case p.isAny("++", "--"):
		op := p.next().Text
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UpdateExpr{
			Pos:    Pos{first, p.last},
			Op:     op,
			Prefix: true,
			X:      x,
		}, nil

	}

	x, err := p.parseCallMember()
	if err != nil {
		return nil, err
	}
	if p.isAny("++", "--") && !p.peek().NewlineBefore {
		op := p.next().Text
		return &UpdateExpr{
			Pos: Pos{first, p.last},
			Op:  op,
			X:   x,
		}, nil
	}
	return x, nil
}

func (p *parser) parseCallMember() (Expr, error) {
	first := p.pos
	var x Expr
	var err error
	if p.is("new") {
		x, err = p.parseNew()
	} else {
		x, err = p.parsePrimary()
	}
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.is("."), p.is("["):
			x, err = p.parseMember(first, x)
			if err != nil {
				return nil, err
			}
		case p.is("("):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			x = &CallExpr{
				Pos:    Pos{first, p.last},
				Callee: x,
				Args:   args,
			}
		default:
			return x, nil
		}
	}
}

func (p *parser) parseMember(first int, x Expr) (Expr, error) {
	if p.is(".") {
		p.next()
		tok := p.peek()
		if tok.Kind != TokenIdent && tok.Kind != TokenKeyword {
			return nil, p.errorf("expected property name, got %s", tok)
		}
		p.next()
		return &MemberExpr{
			Pos: Pos{first, p.last},
			X:   x,
			Name: &Ident{
				Pos:  Pos{p.last, p.last},
				Name: tok.Text,
			},
		}, nil
	}

	p.next()
	index, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("]"); err != nil {
		return nil, err
	}
	return &IndexExpr{
		Pos:   Pos{first, p.last},
		X:     x,
		Index: index,
	}, nil
}

func (p *parser) parseNew() (Expr, error) {
	first, _ := p.expect("new")
	calleeFirst := p.pos
	var callee Expr
	var err error
	if p.is("new") {
		callee, err = p.parseNew()
	} else {
		callee, err = p.parsePrimary()
	}
	if err != nil {
		return nil, err
	}
	for p.is(".") || p.is("[") {
		callee, err = p.parseMember(calleeFirst, callee)
		if err != nil {
			return nil, err
		}
	}
	expr := &NewExpr{
		Callee: callee,
	}
	if p.is("(") {
		expr.Args, err = p.parseArgs()
		if err != nil {
			return nil, err
		}
	}
	expr.Pos = Pos{first, p.last}
	return expr, nil
}

func (p *parser) parseArgs() ([]Expr, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var args []Expr
	for !p.is(")") {
		arg, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.is(",") {
			break
		}
		p.next()
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	first := p.pos
	tok := p.peek()

	switch tok.Kind {

	case TokenNumber:
		p.next()
		return &NumberLit{
			Pos:   Pos{first, first},
			Value: tok.Value.(float64),
		}, nil

	case TokenString:
		p.next()
		return &StringLit{
			Pos:   Pos{first, first},
			Value: tok.Value.(string),
		}, nil

	case TokenIdent:
		return p.parseIdent()

	case TokenKeyword:
		switch tok.Text {
		case "true", "false":
			p.next()
			return &BoolLit{
				Pos:   Pos{first, first},
				Value: tok.Text == "true",
			}, nil
		case "null":
			p.next()
			return &NullLit{
				Pos: Pos{first, first},
			}, nil
		case "this":
			p.next()
			return &ThisExpr{
				Pos: Pos{first, first},
			}, nil
		case "function":
			return p.parseFunction(false)
		}

	case TokenPunct:
		switch tok.Text {
		case "(":
			p.next()
			x, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
			return x, nil
		case "[":
			return p.parseArrayLit()
		case "{":
			return p.parseObjectLit()
		}

	}

	return nil, p.errorf("unexpected %s", tok)
}

func (p *parser) parseArrayLit() (Expr, error) {
	first, _ := p.expect("[")
	lit := &ArrayLit{}
	for !p.is("]") {
		elem, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		lit.Elems = append(lit.Elems, elem)
		if !p.is(",") {
			break
		}
		p.next()
	}
	if _, err := p.expect("]"); err != nil {
		return nil, err
	}
	lit.Pos = Pos{first, p.last}
	return lit, nil
}

func (p *parser) parseObjectLit() (Expr, error) {
	first, _ := p.expect("{")
	lit := &ObjectLit{}
	for !p.is("}") {
		keyTok := p.peek()
		keyIdx := p.pos
		var key string
		switch keyTok.Kind {
		case TokenIdent, TokenKeyword:
			key = keyTok.Text
		case TokenString:
			key = keyTok.Value.(string)
		case TokenNumber:
			key = taivm.FormatNumber(keyTok.Value.(float64))
		default:
			return nil, p.errorf("expected property key, got %s", keyTok)
		}
		p.next()

		prop := &Property{
			Key: key,
		}
		if p.is(":") {
			p.next()
			value, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			prop.Value = value
		} else if keyTok.Kind == TokenIdent {
			prop.Value = &Ident{
				Pos:  Pos{keyIdx, keyIdx},
				Name: key,
			}
		} else {
			return nil, p.errorf("expected \":\", got %s", p.peek())
		}
		prop.Pos = Pos{keyIdx, p.last}
		lit.Props = append(lit.Props, prop)

		if !p.is(",") {
			break
		}
		p.next()
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	lit.Pos = Pos{first, p.last}
	return lit, nil
}
