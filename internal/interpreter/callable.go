package interpreter

import (
	"context"
	"fmt"
	"strconv"
)

type Arity int

func (a Arity) String() string {
	return strconv.Itoa(int(a))
}

// Callable is implemented by functions, bound methods, classes and natives.
// Call is invoked only after the argument count has been checked against Arity.
type Callable interface {
	Arity() Arity
	Call(ctx context.Context, interpreter *interpreter, arguments []Value) (Value, error)
	String() string
}

// nativeFunction is a built-in implemented in Go.
// It is a pointer type so ValueCallable stays comparable.
type nativeFunction struct {
	name  string
	arity Arity
	fn    func(ctx context.Context, interpreter *interpreter, args []Value) (Value, error)
}

func newNativeFunction(name string, arity Arity, fn func(ctx context.Context, interpreter *interpreter, args []Value) (Value, error)) *nativeFunction {
	return &nativeFunction{name: name, arity: arity, fn: fn}
}

// Arity implements Callable.
func (n *nativeFunction) Arity() Arity {
	return n.arity
}

// Call implements Callable.
func (n *nativeFunction) Call(ctx context.Context, interpreter *interpreter, arguments []Value) (Value, error) {
	return n.fn(ctx, interpreter, arguments)
}

// String implements fmt.Stringer.
func (n *nativeFunction) String() string {
	return "<native fn>"
}

// GoString implements fmt.GoStringer.
func (n *nativeFunction) GoString() string {
	return fmt.Sprintf("<native fn %s/%s>", n.name, n.arity)
}

var (
	_ Callable       = (*nativeFunction)(nil)
	_ fmt.Stringer   = (*nativeFunction)(nil)
	_ fmt.GoStringer = (*nativeFunction)(nil)
)
