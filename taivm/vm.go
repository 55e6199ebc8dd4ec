package taivm

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type State uint8

const (
	StateReady State = iota
	StateRunning
	StatePausedAtBreakpoint
	StatePausedAfterStep
	StateCompleted
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StatePausedAtBreakpoint:
		return "paused at breakpoint"
	case StatePausedAfterStep:
		return "paused after step"
	case StateCompleted:
		return "completed"
	case StateFaulted:
		return "faulted"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

const (
	DefaultMaxCallDepth   = 1024
	DefaultMaxArrayLength = 1 << 24
)

type VM struct {
	ID      string
	Program *Program

	CurrentFun   *Function
	IP           int
	OperandStack []any
	SP           int
	CallStack    []Frame
	Scope        *Env
	Globals      *Env
	This         any
	Callee       *Closure

	MaxCallDepth int
	// MaxArrayLength bounds the length scripts can give an array by index or length assignment.
	MaxArrayLength int
	Stdout         io.Writer
	Logger         *slog.Logger
	// OnDebugLog receives diagnostic text during debug runs.
	OnDebugLog func(string)
	// Trace logs every statement during debug runs.
	Trace bool

	methods map[Kind]map[string]Callable
	state   State
	err     error
	debug   bool
	execIP  int
}

func NewVM(program *Program) *VM {
	globals := &Env{}
	return &VM{
		ID:             uuid.NewString(),
		Program:        program,
		CurrentFun:     program.Main(),
		Scope:          globals,
		Globals:        globals,
		This:           Undefined,
		OperandStack:   make([]any, 1024),
		CallStack:      make([]Frame, 0, 64),
		MaxCallDepth:   DefaultMaxCallDepth,
		Stdout:         os.Stdout,
		MaxArrayLength: DefaultMaxArrayLength,
		Logger:         slog.New(slog.DiscardHandler),
		methods:        make(map[Kind]map[string]Callable),
	}
}

// Fork returns a ready VM for program that shares globals, methods and output settings with v.
func (v *VM) Fork(program *Program) *VM {
	sub := NewVM(program)
	sub.Globals = v.Globals
	sub.Scope = v.Globals
	sub.methods = v.methods
	sub.MaxCallDepth = v.MaxCallDepth
	sub.MaxArrayLength = v.MaxArrayLength
	sub.Stdout = v.Stdout
	sub.Logger = v.Logger
	sub.OnDebugLog = v.OnDebugLog
	sub.Trace = v.Trace
	return sub
}

// CheckArrayLength reports an error if n exceeds MaxArrayLength.
func (v *VM) CheckArrayLength(n int) error {
	if v.MaxArrayLength > 0 && n > v.MaxArrayLength {
		return fmt.Errorf("array length %d exceeds limit %d", n, v.MaxArrayLength)
	}
	return nil
}

func (v *VM) State() State {
	return v.state
}

// Err returns the error that faulted the VM.
func (v *VM) Err() error {
	return v.err
}

func (v *VM) Get(name string) (any, bool) {
	return v.Globals.Get(name)
}

func (v *VM) Def(name string, val any) {
	v.Globals.Def(name, val)
}

func (v *VM) Set(name string, val any) bool {
	return v.Globals.Set(name, val)
}

// GlobalNames returns the names bound in the global env, sorted.
func (v *VM) GlobalNames() []string {
	names := lo.Keys(v.Globals.Vars)
	slices.Sort(names)
	return names
}

// DefMethod installs a method for every value of kind.
// The receiver is passed to the callable as the first argument.
func (v *VM) DefMethod(kind Kind, name string, method Callable) {
	m, ok := v.methods[kind]
	if !ok {
		m = make(map[string]Callable)
		v.methods[kind] = m
	}
	m[name] = method
}

func (v *VM) method(kind Kind, name string) (Callable, bool) {
	c, ok := v.methods[kind][name]
	return c, ok
}

// Debugging reports whether the VM is running in debug mode.
func (v *VM) Debugging() bool {
	return v.debug
}

func (v *VM) debugLog(format string, args ...any) {
	if !v.debug {
		return
	}
	msg := fmt.Sprintf(format, args...)
	v.Logger.Debug(msg, "vm", v.ID, "function", v.CurrentFun.Name, "ip", v.IP)
	if v.OnDebugLog != nil {
		v.OnDebugLog(msg)
	}
}

// Print writes script output. In debug runs with a sink attached, output goes to OnDebugLog.
func (v *VM) Print(s string) {
	if v.debug && v.OnDebugLog != nil {
		v.OnDebugLog(s)
		return
	}
	if v.Stdout != nil {
		fmt.Fprintln(v.Stdout, s)
	}
}

func (v *VM) push(val any) {
	if v.SP >= len(v.OperandStack) {
		v.growOperandStack()
	}
	v.OperandStack[v.SP] = val
	v.SP++
}

func (v *VM) growOperandStack() {
	newCap := len(v.OperandStack) * 2
	if newCap == 0 {
		newCap = 8
	}
	newStack := make([]any, newCap)
	copy(newStack, v.OperandStack)
	v.OperandStack = newStack
}

func (v *VM) pop() any {
	if v.SP <= 0 {
		return Undefined
	}
	v.SP--
	val := v.OperandStack[v.SP]
	v.OperandStack[v.SP] = nil
	return val
}

func (v *VM) peek(n int) any {
	return v.OperandStack[v.SP-1-n]
}

func (v *VM) drop(n int) {
	if n <= 0 {
		return
	}
	if n > v.SP {
		n = v.SP
	}
	start := v.SP - n
	clear(v.OperandStack[start:v.SP])
	v.SP = start
}
