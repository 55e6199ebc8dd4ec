package taivm

import (
	"errors"
)

// Step advances to the next statement boundary, descending into calls.
// From the ready state the first Step stops before the first statement.
// Debugger statements are executed as no-ops.
func (v *VM) Step() error {
	switch v.state {
	case StateCompleted:
		return nil
	case StateFaulted:
		return v.err
	case StateRunning:
		return errors.New("vm is already running")
	}

	fromStart := v.state == StateReady
	v.state = StateRunning
	executed := false
	for {
		if (executed || fromStart) && v.atStatement() {
			v.state = StatePausedAfterStep
			v.debugLog("step to %q", v.PendingSource())
			return nil
		}
		sig, err := v.execOne()
		executed = true
		if err != nil {
			return v.fault(err)
		}
		if sig == sigDone {
			v.state = StateCompleted
			v.debugLog("completed")
			return nil
		}
	}
}

func (v *VM) atStatement() bool {
	_, ok := v.CurrentFun.StatementAt(v.IP)
	return ok
}

func (v *VM) pendingRange() (TokenRange, bool) {
	if mark, ok := v.CurrentFun.StatementAt(v.IP); ok {
		return mark.Range, true
	}
	return v.CurrentFun.RangeAt(v.IP)
}

// PendingSource returns the source text of the statement or instruction about to execute.
func (v *VM) PendingSource() string {
	if v.state == StateCompleted {
		return ""
	}
	r, ok := v.pendingRange()
	if !ok {
		return ""
	}
	src, _ := v.programOf(v.CurrentFun).SourceOf(r)
	return src
}

type Location struct {
	Function string
	IP       int
	Range    TokenRange
	Line     int
	Column   int
}

// Location describes the pending instruction.
func (v *VM) Location() Location {
	loc := Location{
		Function: v.CurrentFun.Name,
		IP:       v.IP,
	}
	if r, ok := v.pendingRange(); ok {
		loc.Range = r
		loc.Line, loc.Column = v.tokenPosition(v.CurrentFun, r.First)
	}
	return loc
}

// programOf returns the program whose token table fn's ranges index into.
func (v *VM) programOf(fn *Function) *Program {
	if fn != nil && fn.Program != nil {
		return fn.Program
	}
	return v.Program
}

func (v *VM) tokenPosition(fn *Function, token int) (line int, column int) {
	p := v.programOf(fn)
	if token < 0 || token >= len(p.Tokens) {
		return 0, 0
	}
	return p.Position(p.Tokens[token].Start)
}

func (v *VM) frameInfo(fn *Function, ip int) FrameInfo {
	info := FrameInfo{
		Function: fn.Name,
		IP:       ip,
	}
	r, ok := fn.RangeAt(ip)
	if mark, isStmt := fn.StatementAt(ip); isStmt {
		r, ok = mark.Range, true
	}
	if ok {
		info.Source, _ = v.programOf(fn).SourceOf(r)
		info.Line, info.Column = v.tokenPosition(fn, r.First)
	}
	return info
}

// CallStackInfo lists active calls, outermost first. The last entry is the pending instruction.
func (v *VM) CallStackInfo() []FrameInfo {
	ret := make([]FrameInfo, 0, len(v.CallStack)+1)
	for _, frame := range v.CallStack {
		ret = append(ret, v.frameInfo(frame.Fun, frame.ReturnIP-1))
	}
	return append(ret, v.frameInfo(v.CurrentFun, v.IP))
}

func (v *VM) fault(err error) error {
	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) {
		runtimeErr = v.newRuntimeError(err)
	}
	v.state = StateFaulted
	v.err = runtimeErr
	v.Logger.Debug("vm faulted",
		"vm", v.ID,
		"function", runtimeErr.Function,
		"ip", runtimeErr.IP,
		"error", runtimeErr.Message,
	)
	return runtimeErr
}

func (v *VM) newRuntimeError(err error) *RuntimeError {
	fn := v.CurrentFun
	ret := &RuntimeError{
		Message:  err.Error(),
		Function: fn.Name,
		IP:       v.execIP,
		Cause:    err,
	}
	if r, ok := fn.RangeAt(v.execIP); ok {
		ret.Range = r
		ret.Source, _ = v.programOf(fn).SourceOf(r)
		ret.Line, ret.Column = v.tokenPosition(fn, r.First)
	}
	for _, frame := range v.CallStack {
		ret.Stack = append(ret.Stack, v.frameInfo(frame.Fun, frame.ReturnIP-1))
	}
	ret.Stack = append(ret.Stack, v.frameInfo(fn, v.execIP))
	return ret
}
