package interpreter

import (
	"context"
	"fmt"

	"github.com/loxwell/loxwell/internal/loxerrors"
	"github.com/loxwell/loxwell/internal/token"
)

// initializerName is the only method name treated as a constructor.
const initializerName = "init"

type LoxClass struct {
	Name string

	// Single inheritance chain, nil at the root.
	SuperClass *LoxClass

	Methods map[string]*LoxFunction
}

func NewLoxClass(name string, superClass *LoxClass, methods map[string]*LoxFunction) *LoxClass {
	return &LoxClass{Name: name, SuperClass: superClass, Methods: methods}
}

// Arity implements Callable.
func (l *LoxClass) Arity() Arity {
	if init := l.FindMethod(initializerName); init != nil {
		return init.Arity()
	}
	return Arity(0)
}

// Call implements Callable.
func (l *LoxClass) Call(ctx context.Context, interpreter *interpreter, arguments []Value) (Value, error) {
	instance := NewLoxInstance(l)
	if init := l.FindMethod(initializerName); init != nil {
		if _, err := init.Bind(instance).Call(ctx, interpreter, arguments); err != nil {
			return nil, err
		}
	}
	return ValueObject{instance}, nil
}

// FindMethod looks name up in this class, then in each ancestor in turn.
func (l *LoxClass) FindMethod(name string) *LoxFunction {
	for cl := l; cl != nil; cl = cl.SuperClass {
		if method, ok := cl.Methods[name]; ok {
			return method
		}
	}

	return nil
}

// String implements fmt.Stringer.
func (l *LoxClass) String() string {
	return l.Name
}

// GoString implements fmt.GoStringer.
func (l *LoxClass) GoString() string {
	if l.SuperClass != nil {
		return fmt.Sprintf("<class %s < %s>", l.Name, l.SuperClass.Name)
	}
	return fmt.Sprintf("<class %s>", l.Name)
}

type LoxInstance struct {
	Class  *LoxClass
	Fields map[string]Value
}

func NewLoxInstance(class *LoxClass) *LoxInstance {
	return &LoxInstance{Class: class, Fields: make(map[string]Value)}
}

// Get returns a field, or else a method bound to this instance.
// Fields shadow methods.
func (l *LoxInstance) Get(name *token.Token) (Value, error) {
	if value, ok := l.Fields[name.Lexeme]; ok {
		return value, nil
	}

	if method := l.Class.FindMethod(name.Lexeme); method != nil {
		return ValueCallable{method.Bind(l)}, nil
	}

	return nil, loxerrors.NewRuntimeError(name, loxerrors.ErrRuntimeUndefinedProperty(name.Lexeme))
}

func (l *LoxInstance) Set(name *token.Token, value Value) {
	l.Fields[name.Lexeme] = value
}

// String implements fmt.Stringer.
func (l *LoxInstance) String() string {
	return l.Class.Name + " instance"
}

// GoString implements fmt.GoStringer.
func (l *LoxInstance) GoString() string {
	return fmt.Sprintf("<%s instance %v>", l.Class.Name, l.Fields)
}

var (
	_ Callable       = (*LoxClass)(nil)
	_ fmt.Stringer   = (*LoxClass)(nil)
	_ fmt.GoStringer = (*LoxClass)(nil)
)

var (
	_ fmt.Stringer   = (*LoxInstance)(nil)
	_ fmt.GoStringer = (*LoxInstance)(nil)
)
