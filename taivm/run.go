package taivm

import (
	"fmt"
	"math"
)

type signal uint8

const (
	sigNone signal = iota
	sigBreakpoint
	sigHostReturn
	sigDone
)

// Run executes from the current instruction. It yields InterruptBreakpoint at each debugger
// statement and yields the error that faults the VM. Stopping the iteration at a breakpoint
// leaves the VM paused there.
func (v *VM) Run(yield func(*Interrupt, error) bool) {
	v.run(false, yield)
}

// RunInDebug is Run with diagnostic output routed to OnDebugLog.
func (v *VM) RunInDebug(yield func(*Interrupt, error) bool) {
	v.run(true, yield)
}

func (v *VM) run(debug bool, yield func(*Interrupt, error) bool) {
	switch v.state {
	case StateCompleted:
		return
	case StateFaulted:
		yield(nil, v.err)
		return
	case StateRunning:
		yield(nil, fmt.Errorf("vm is already running"))
		return
	}

	v.debug = debug
	defer func() {
		v.debug = false
	}()
	v.state = StateRunning
	v.debugLog("run from %s:%d", v.CurrentFun.Name, v.IP)

	for {
		sig, err := v.execOne()
		if err != nil {
			err = v.fault(err)
			v.debugLog("fault: %v", err)
			yield(nil, err)
			return
		}

		switch sig {
		case sigBreakpoint:
			v.state = StatePausedAtBreakpoint
			v.debugLog("breakpoint before %q", v.PendingSource())
			if !yield(InterruptBreakpoint, nil) {
				return
			}
			v.state = StateRunning
		case sigDone:
			v.state = StateCompleted
			v.debugLog("completed")
			return
		}
	}
}

// Continue runs until the next breakpoint or completion.
func (v *VM) Continue() error {
	for intr, err := range v.Run {
		if err != nil {
			return err
		}
		if intr != nil {
			break
		}
	}
	return nil
}

func (v *VM) ContinueInDebug() error {
	for intr, err := range v.RunInDebug {
		if err != nil {
			return err
		}
		if intr != nil {
			break
		}
	}
	return nil
}

// RunToCompletion runs past every breakpoint.
func (v *VM) RunToCompletion() error {
	for _, err := range v.Run {
		if err != nil {
			return err
		}
	}
	return nil
}

func (v *VM) execOne() (signal, error) {
	if v.IP < 0 || v.IP >= len(v.CurrentFun.Code) {
		return v.doReturn(Undefined)
	}

	v.execIP = v.IP
	inst := v.CurrentFun.Code[v.IP]
	v.IP++

	if v.debug && v.Trace {
		if mark, ok := v.CurrentFun.StatementAt(v.execIP); ok {
			src, _ := v.programOf(v.CurrentFun).SourceOf(mark.Range)
			v.debugLog("statement %s:%d: %s", v.CurrentFun.Name, v.execIP, src)
		}
	}

	switch op := inst.Op(); op {

	case OpLoadConst:
		v.push(v.CurrentFun.Constants[inst.Arg()])

	case OpLoadUndefined:
		v.push(Undefined)

	case OpLoadVar:
		idx, depth := splitVarArg(inst.Arg())
		name := v.CurrentFun.Constants[idx].(string)
		env := v.Scope.Up(depth)
		if env == nil {
			return sigNone, fmt.Errorf("bad scope depth %d for %s", depth, name)
		}
		val, ok := env.Vars[name]
		if !ok {
			return sigNone, fmt.Errorf("%s is not defined", name)
		}
		v.push(val)

	case OpSetVar:
		idx, depth := splitVarArg(inst.Arg())
		name := v.CurrentFun.Constants[idx].(string)
		env := v.Scope.Up(depth)
		if env == nil {
			return sigNone, fmt.Errorf("bad scope depth %d for %s", depth, name)
		}
		env.Def(name, v.pop())

	case OpDefVar:
		name := v.CurrentFun.Constants[inst.Arg()].(string)
		v.Scope.Def(name, v.pop())

	case OpDeclareVar:
		name := v.CurrentFun.Constants[inst.Arg()].(string)
		v.Scope.Declare(name)

	case OpLoadGlobal:
		name := v.CurrentFun.Constants[inst.Arg()].(string)
		val, ok := v.Globals.Vars[name]
		if !ok {
			return sigNone, fmt.Errorf("%s is not defined", name)
		}
		v.push(val)

	case OpSetGlobal:
		name := v.CurrentFun.Constants[inst.Arg()].(string)
		v.Globals.Def(name, v.pop())

	case OpLoadThis:
		v.push(v.This)

	case OpLoadCallee:
		if v.Callee == nil {
			v.push(Undefined)
		} else {
			v.push(v.Callee)
		}

	case OpPop:
		v.drop(1)

	case OpDup:
		v.push(v.peek(0))

	case OpDup2:
		a := v.peek(1)
		b := v.peek(0)
		v.push(a)
		v.push(b)

	case OpInsertBelow:
		n := inst.Arg()
		if v.SP < n+1 {
			return sigNone, fmt.Errorf("stack underflow during insert")
		}
		top := v.OperandStack[v.SP-1]
		pos := v.SP - 1 - n
		copy(v.OperandStack[pos+1:v.SP], v.OperandStack[pos:v.SP-1])
		v.OperandStack[pos] = top

	case OpJump:
		v.IP += inst.Offset()

	case OpJumpFalse:
		if !Truthy(v.pop()) {
			v.IP += inst.Offset()
		}

	case OpJumpFalseKeep:
		if !Truthy(v.peek(0)) {
			v.IP += inst.Offset()
		} else {
			v.drop(1)
		}

	case OpJumpTrueKeep:
		if Truthy(v.peek(0)) {
			v.IP += inst.Offset()
		} else {
			v.drop(1)
		}

	case OpCall:
		argc := inst.Arg()
		if v.SP < argc+1 {
			return sigNone, fmt.Errorf("stack underflow during call")
		}
		base := v.SP - argc - 1
		return sigNone, v.callValue(v.OperandStack[base], Undefined, base, argc, false)

	case OpCallMethod:
		argc := inst.Arg()
		if v.SP < argc+2 {
			return sigNone, fmt.Errorf("stack underflow during call")
		}
		base := v.SP - argc - 2
		return sigNone, v.callValue(v.OperandStack[base+1], v.OperandStack[base], base, argc, false)

	case OpNew:
		argc := inst.Arg()
		if v.SP < argc+1 {
			return sigNone, fmt.Errorf("stack underflow during new")
		}
		base := v.SP - argc - 1
		callee := v.OperandStack[base]
		var this any = Undefined
		if _, ok := callee.(*Closure); ok {
			this = NewObject()
		}
		return sigNone, v.callValue(callee, this, base, argc, true)

	case OpReturn:
		return v.doReturn(v.pop())

	case OpMakeClosure:
		fun := v.CurrentFun.Constants[inst.Arg()].(*Function)
		v.push(&Closure{
			Fun: fun,
			Env: v.Scope,
		})

	case OpMakeArray:
		n := inst.Arg()
		if v.SP < n {
			return sigNone, fmt.Errorf("stack underflow during array creation")
		}
		elems := make([]any, n)
		copy(elems, v.OperandStack[v.SP-n:v.SP])
		v.drop(n)
		v.push(NewArray(elems...))

	case OpMakeObject:
		n := inst.Arg()
		if v.SP < n*2 {
			return sigNone, fmt.Errorf("stack underflow during object creation")
		}
		obj := NewObject()
		start := v.SP - n*2
		for i := range n {
			obj.Set(
				ToString(v.OperandStack[start+i*2]),
				v.OperandStack[start+i*2+1],
			)
		}
		v.drop(n * 2)
		v.push(obj)

	case OpGetIndex:
		key := v.pop()
		target := v.pop()
		val, err := v.GetMember(target, key)
		if err != nil {
			return sigNone, err
		}
		v.push(val)

	case OpSetIndex:
		val := v.pop()
		key := v.pop()
		target := v.pop()
		if err := v.SetMember(target, key, val); err != nil {
			return sigNone, err
		}
		v.push(val)

	case OpBitAnd, OpBitOr, OpBitXor, OpBitLsh, OpBitRsh, OpBitURsh:
		b := v.pop()
		a := v.pop()
		v.push(bitwise(op, ToNumber(a), ToNumber(b)))

	case OpBitNot:
		v.push(float64(^toInt32(ToNumber(v.pop()))))

	case OpAdd:
		b := v.pop()
		a := v.pop()
		v.push(add(a, b))

	case OpSub, OpMul, OpDiv, OpMod, OpPow:
		b := ToNumber(v.pop())
		a := ToNumber(v.pop())
		v.push(arith(op, a, b))

	case OpNeg:
		v.push(-ToNumber(v.pop()))

	case OpPos:
		v.push(ToNumber(v.pop()))

	case OpNot:
		v.push(!Truthy(v.pop()))

	case OpTypeof:
		v.push(TypeOf(v.pop()))

	case OpTypeofGlobal:
		name := v.CurrentFun.Constants[inst.Arg()].(string)
		val, ok := v.Globals.Vars[name]
		if !ok {
			val = Undefined
		}
		v.push(TypeOf(val))

	case OpEq, OpNe, OpStrictEq, OpStrictNe:
		b := v.pop()
		a := v.pop()
		var res bool
		switch op {
		case OpEq:
			res = Equal(a, b)
		case OpNe:
			res = !Equal(a, b)
		case OpStrictEq:
			res = StrictEqual(a, b)
		case OpStrictNe:
			res = !StrictEqual(a, b)
		}
		v.push(res)

	case OpLt, OpLe, OpGt, OpGe:
		b := v.pop()
		a := v.pop()
		v.push(compare(op, a, b))

	case OpDebugger:
		return sigBreakpoint, nil

	default:
		return sigNone, fmt.Errorf("unknown opcode: %v", inst)
	}

	return sigNone, nil
}

func add(a, b any) any {
	if isPrimitive(a) && isPrimitive(b) {
		sa, ok1 := a.(string)
		sb, ok2 := b.(string)
		switch {
		case ok1 && ok2:
			return sa + sb
		case ok1:
			return sa + ToString(b)
		case ok2:
			return ToString(a) + sb
		}
		return ToNumber(a) + ToNumber(b)
	}
	return ToString(a) + ToString(b)
}

func isPrimitive(v any) bool {
	switch KindOf(v) {
	case KindUndefined, KindNull, KindBool, KindNumber, KindString:
		return true
	}
	return false
}

func arith(op OpCode, a, b float64) float64 {
	switch op {
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	case OpMod:
		return math.Mod(a, b)
	case OpPow:
		return math.Pow(a, b)
	}
	return math.NaN()
}

func compare(op OpCode, a, b any) bool {
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			switch op {
			case OpLt:
				return sa < sb
			case OpLe:
				return sa <= sb
			case OpGt:
				return sa > sb
			case OpGe:
				return sa >= sb
			}
		}
	}
	x := ToNumber(a)
	y := ToNumber(b)
	switch op {
	case OpLt:
		return x < y
	case OpLe:
		return x <= y
	case OpGt:
		return x > y
	case OpGe:
		return x >= y
	}
	return false
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Mod(math.Trunc(f), 1<<32)
	if f < 0 {
		f += 1 << 32
	}
	return int32(uint32(f))
}

func bitwise(op OpCode, a, b float64) float64 {
	x := toInt32(a)
	y := toInt32(b)
	shift := uint32(y) & 31
	switch op {
	case OpBitAnd:
		return float64(x & y)
	case OpBitOr:
		return float64(x | y)
	case OpBitXor:
		return float64(x ^ y)
	case OpBitLsh:
		return float64(x << shift)
	case OpBitRsh:
		return float64(x >> shift)
	case OpBitURsh:
		return float64(uint32(x) >> shift)
	}
	return math.NaN()
}
