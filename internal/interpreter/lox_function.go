package interpreter

import (
	"context"
	"fmt"

	"github.com/loxwell/loxwell/internal/parser"
)

// LoxFunction is a user function or method together with the frame it closes over.
type LoxFunction struct {
	Declaration   *parser.StmtFunction
	Closure       *environment
	IsInitializer bool
}

func NewLoxFunction(declaration *parser.StmtFunction, closure *environment, isInitializer bool) *LoxFunction {
	return &LoxFunction{Declaration: declaration, Closure: closure, IsInitializer: isInitializer}
}

// Arity implements Callable.
func (l *LoxFunction) Arity() Arity {
	return Arity(len(l.Declaration.Parameters))
}

// Call implements Callable.
func (l *LoxFunction) Call(ctx context.Context, interpreter *interpreter, arguments []Value) (Value, error) {
	env := l.Closure.Nest()
	for idx, param := range l.Declaration.Parameters {
		env.Define(param.Lexeme, arguments[idx])
	}

	result, err := interpreter.executeBlock(ctx, l.Declaration.Body, env)
	if err != nil {
		return nil, err
	}

	// An initializer always yields its instance, even on an early "return;".
	if l.IsInitializer {
		return l.Closure.GetAt(0, "this")
	}

	if result.kind == flowReturn {
		return result.value, nil
	}
	return NilValue, nil
}

// Bind returns a copy of the method whose closure defines "this" as instance.
func (l *LoxFunction) Bind(instance *LoxInstance) *LoxFunction {
	env := l.Closure.Nest()
	env.Define("this", ValueObject{instance})
	return NewLoxFunction(l.Declaration, env, l.IsInitializer)
}

// String implements fmt.Stringer.
func (l *LoxFunction) String() string {
	return fmt.Sprintf("<fn %s>", l.Declaration.Name.Lexeme)
}

// GoString implements fmt.GoStringer.
func (l *LoxFunction) GoString() string {
	return fmt.Sprintf("<fn %s/%s>", l.Declaration.Name.Lexeme, l.Arity())
}

var (
	_ Callable       = (*LoxFunction)(nil)
	_ fmt.Stringer   = (*LoxFunction)(nil)
	_ fmt.GoStringer = (*LoxFunction)(nil)
)
