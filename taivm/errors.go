package taivm

import (
	"fmt"
	"strings"
)

// FrameInfo describes one entry of a call stack.
type FrameInfo struct {
	Function string
	IP       int
	Line     int
	Column   int
	Source   string
}

func (f FrameInfo) String() string {
	name := f.Function
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%s:%d:%d (%s)", name, f.Line, f.Column, f.Source)
}

type RuntimeError struct {
	Message  string
	Function string
	IP       int
	Range    TokenRange
	Source   string
	Line     int
	Column   int
	Stack    []FrameInfo
	Cause    error
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "runtime error: %s", e.Message)
	if e.Line > 0 {
		fmt.Fprintf(&b, " at %d:%d", e.Line, e.Column)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, ": %s", e.Source)
	}
	return b.String()
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// StackTrace renders the call stack, innermost first.
func (e *RuntimeError) StackTrace() string {
	var b strings.Builder
	for i := len(e.Stack) - 1; i >= 0; i-- {
		b.WriteString("\tat ")
		b.WriteString(e.Stack[i].String())
		b.WriteByte('\n')
	}
	return b.String()
}

type TypeConversionError struct {
	Name   string
	Value  any
	Target string
	Reason string
}

func (e *TypeConversionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("convert %s to %s: %s", e.Name, e.Target, e.Reason)
	}
	return fmt.Sprintf("convert %s (%s) to %s", e.Name, TypeOf(e.Value), e.Target)
}

var errStackOverflow = fmt.Errorf("maximum call stack size exceeded")
