package taivm

import (
	"fmt"
	"strconv"
	"strings"
)

// Decompile renders every section of the program as text.
// The format is for humans and may change.
func (p *Program) Decompile() string {
	var b strings.Builder
	for i, fn := range p.Functions {
		if i > 0 {
			b.WriteByte('\n')
		}
		p.decompileFunction(&b, fn)
	}
	return b.String()
}

func (v *VM) Decompile() string {
	return v.Program.Decompile()
}

func (p *Program) decompileFunction(b *strings.Builder, fn *Function) {
	name := fn.Name
	if name == "" {
		name = "<anonymous>"
	}
	fmt.Fprintf(b, "== %s (section %d", name, fn.Index)
	if len(fn.ParamNames) > 0 {
		fmt.Fprintf(b, ", params: %s", strings.Join(fn.ParamNames, ", "))
	}
	if len(fn.Locals) > 0 {
		fmt.Fprintf(b, ", locals: %s", strings.Join(fn.Locals, ", "))
	}
	b.WriteString(") ==\n")

	for ip, inst := range fn.Code {
		marker := ' '
		if _, ok := fn.StatementAt(ip); ok {
			marker = '>'
		}
		line := fmt.Sprintf("%c%04d  %-16s %s", marker, ip, inst.String(), operand(fn, ip, inst))
		if r, ok := fn.RangeAt(ip); ok {
			if src, ok := p.SourceOf(r); ok {
				line = fmt.Sprintf("%-48s ; %s", line, snippet(src))
			}
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
}

func operand(fn *Function, ip int, inst OpCode) string {
	switch inst.Op() {

	case OpLoadConst:
		return fmt.Sprintf("%d (%s)", inst.Arg(), constString(fn.Constants[inst.Arg()]))

	case OpDefVar, OpDeclareVar, OpLoadGlobal, OpSetGlobal, OpTypeofGlobal:
		return fmt.Sprintf("%d (%s)", inst.Arg(), constString(fn.Constants[inst.Arg()]))

	case OpLoadVar, OpSetVar:
		idx, depth := splitVarArg(inst.Arg())
		return fmt.Sprintf("%d (%s) depth %d", idx, constString(fn.Constants[idx]), depth)

	case OpJump, OpJumpFalse, OpJumpFalseKeep, OpJumpTrueKeep:
		return fmt.Sprintf("-> %04d", ip+1+inst.Offset())

	case OpMakeClosure:
		return fmt.Sprintf("%d (%s)", inst.Arg(), constString(fn.Constants[inst.Arg()]))

	case OpCall, OpCallMethod, OpNew, OpMakeArray, OpMakeObject, OpInsertBelow:
		return strconv.Itoa(inst.Arg())

	}
	return ""
}

func constString(c any) string {
	switch c := c.(type) {
	case string:
		return strconv.Quote(c)
	case *Function:
		if c.Name == "" {
			return fmt.Sprintf("<function #%d>", c.Index)
		}
		return fmt.Sprintf("<function %s #%d>", c.Name, c.Index)
	}
	return ToString(c)
}

func snippet(src string) string {
	src = strings.Join(strings.Fields(src), " ")
	if len(src) > 40 {
		src = src[:37] + "..."
	}
	return src
}
