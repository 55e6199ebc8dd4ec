package taivm

import (
	"fmt"
)

// Callable is implemented by every value that can be called from script.
type Callable interface {
	// Arity is the minimum argument count, or -1 when unchecked.
	Arity() int
	Call(vm *VM, args []any) (any, error)
}

type NativeFunc struct {
	Name    string
	NumArgs int
	Func    func(vm *VM, args []any) (any, error)
	// Props holds static members such as Object.keys.
	Props *Object
}

var _ Callable = new(NativeFunc)

func (n *NativeFunc) Arity() int {
	return n.NumArgs
}

func (n *NativeFunc) Call(vm *VM, args []any) (any, error) {
	if n.Func == nil {
		return nil, fmt.Errorf("native function %s is missing", n.Name)
	}
	return n.Func(vm, args)
}

func (n *NativeFunc) String() string {
	return "[Function: " + n.Name + "]"
}

// BoundMethod is a method looked up on a receiver.
// The receiver is passed as the first argument.
type BoundMethod struct {
	Receiver any
	Method   Callable
}

var _ Callable = new(BoundMethod)

func (b *BoundMethod) Arity() int {
	n := b.Method.Arity()
	if n <= 0 {
		return n
	}
	return n - 1
}

func (b *BoundMethod) Call(vm *VM, args []any) (any, error) {
	withReceiver := make([]any, 0, len(args)+1)
	withReceiver = append(withReceiver, b.Receiver)
	withReceiver = append(withReceiver, args...)
	return b.Method.Call(vm, withReceiver)
}
