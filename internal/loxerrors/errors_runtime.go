package loxerrors

import (
	"errors"
	"fmt"

	"github.com/loxwell/loxwell/internal/token"
)

var (
	ErrRuntimeOperandMustBeNumber          = errors.New("Operand must be a number.")
	ErrRuntimeOperandsMustBeNumbers        = errors.New("Operands must be numbers.")
	ErrRuntimeOperandsMustNumbersOrStrings = errors.New("Operands must be two numbers or two strings.")
	ErrRuntimeUndefinedVariable            = errors.New("Undefined variable")
	ErrRuntimeCalleeMustBeCallable         = errors.New("Can only call functions and classes.")
	ErrRuntimeOnlyInstancesHaveProperties  = errors.New("Only instances have properties.")
	ErrRuntimeOnlyInstancesHaveFields      = errors.New("Only instances have fields.")
	ErrRuntimeSuperClassMustBeClass        = errors.New("Superclass must be a class.")
	ErrRuntimeStackOverflow                = errors.New("Stack overflow.")
)

func ErrRuntimeCalleeArityError(expectedArity int, actualArity int) error {
	return fmt.Errorf("Expected %d arguments but got %d.", expectedArity, actualArity)
}

func ErrRuntimeUndefinedProperty(name string) error {
	return fmt.Errorf("Undefined property '%s'.", name)
}

func ErrRuntimeUndefinedVariableName(name string) error {
	return fmt.Errorf("%w '%s'.", ErrRuntimeUndefinedVariable, name)
}

func NewRuntimeError(tok *token.Token, cause error) error {
	return &RuntimeError{tok, cause}
}

type RuntimeError struct {
	tok   *token.Token
	cause error
}

// Token returns the token the error is attributed to.
func (r *RuntimeError) Token() *token.Token {
	return r.tok
}

// Error implements error.
func (r *RuntimeError) Error() string {
	return fmt.Sprintf("%v\n[line %d] at '%s'", r.cause, r.tok.Line, r.tok.Lexeme)
}

func (r *RuntimeError) Unwrap() error {
	return r.cause
}

// IsRuntimeError reports whether err carries a *RuntimeError.
func IsRuntimeError(err error) bool {
	var rerr *RuntimeError
	return errors.As(err, &rerr)
}

var (
	_ error           = (*RuntimeError)(nil)
	_ unwrapInterface = (*RuntimeError)(nil)
)
