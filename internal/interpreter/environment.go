package interpreter

import (
	"fmt"
	"strings"

	"github.com/loxwell/loxwell/internal/loxerrors"
	"github.com/loxwell/loxwell/internal/token"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// environment is a scope frame. Frames are shared by reference between the
// closures that captured them; a frame's parent never changes after Nest.
type environment struct {
	enclosing *environment
	values    map[string]Value
}

func NewEnvironment() *environment {
	return &environment{}
}

func (e *environment) Define(name string, value Value) {
	if e.values == nil {
		e.values = make(map[string]Value)
	}
	e.values[name] = value
}

func (e *environment) Get(name *token.Token) (Value, error) {
	for env := e; env != nil; env = env.enclosing {
		if value, ok := env.values[name.Lexeme]; ok {
			return value, nil
		}
	}

	return nil, e.undefinedVariable(name)
}

func (e *environment) Assign(name *token.Token, value Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = value
			return nil
		}
	}

	return e.undefinedVariable(name)
}

// GetAt reads name from the frame exactly distance hops up the chain.
func (e *environment) GetAt(distance int, name string) (Value, error) {
	if value, ok := e.ancestor(distance).values[name]; ok {
		return value, nil
	}

	return nil, loxerrors.ErrRuntimeUndefinedVariableName(name)
}

// AssignAt writes name into the frame exactly distance hops up the chain.
func (e *environment) AssignAt(distance int, name *token.Token, value Value) {
	e.ancestor(distance).Define(name.Lexeme, value)
}

func (e *environment) Nest() *environment {
	env := NewEnvironment()
	env.enclosing = e
	return env
}

func (e *environment) ancestor(distance int) *environment {
	self := e
	for distance > 0 {
		self = self.enclosing
		distance--
	}

	return self
}

func (e *environment) undefinedVariable(name *token.Token) error {
	return loxerrors.NewRuntimeError(name, loxerrors.ErrRuntimeUndefinedVariableName(name.Lexeme))
}

// String implements fmt.Stringer. Names are sorted so dumps are stable.
func (e *environment) String() string {
	w := new(strings.Builder)

	for self := e; self != nil; self = self.enclosing {
		keys := maps.Keys(self.values)
		slices.Sort(keys)

		_, _ = w.WriteString("{")
		for idx, k := range keys {
			if idx > 0 {
				_, _ = w.WriteString(", ")
			}
			_, _ = fmt.Fprintf(w, "%s=%v", k, self.values[k])
		}
		_, _ = w.WriteString("}")
		if self.enclosing != nil {
			_, _ = w.WriteString(" -> ")
		}
	}

	return w.String()
}

var _ fmt.Stringer = (*environment)(nil)
