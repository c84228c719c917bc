package interpreter

import (
	"context"
	"fmt"
	"io"

	"github.com/loxwell/loxwell/internal/loxerrors"
	"github.com/loxwell/loxwell/internal/parser"
	"github.com/loxwell/loxwell/internal/token"
)

type Interpreter interface {
	// Interpret executes the statements against the persistent global frame.
	// Returns the stringified value of the last statement when it is an
	// expression statement, "nil" otherwise.
	//
	// A runtime error stops execution, is sent to the error reporter and returned.
	// Globals and resolved bindings survive between calls, so a REPL can feed one line at a time.
	//
	// Not thread safe.
	Interpret(ctx context.Context, statements []parser.Stmt) (string, error)
}

type flowKind uint8

const (
	flowNormal flowKind = iota
	flowReturn
)

// flow is the completion of a statement: either fall through to the next
// statement, or unwind to the enclosing call carrying a return value.
type flow struct {
	kind  flowKind
	value Value
}

var flowNext = flow{kind: flowNormal}

type interpreter struct {
	globals      *environment
	env          *environment
	locals       map[parser.NodeID]int
	stdout       io.Writer
	reporter     loxerrors.ErrReporter
	maxCallDepth int
	callDepth    int
}

func NewInterpreter(options ...InterpreterOption) Interpreter {
	opts := newInterpreterOpts(options...)

	globals := NewEnvironment()
	defineStd(globals, opts.clock)

	return &interpreter{
		globals:      globals,
		env:          globals,
		locals:       make(map[parser.NodeID]int),
		stdout:       opts.stdout,
		reporter:     opts.reporter,
		maxCallDepth: opts.maxCallDepth,
	}
}

// Interpret implements Interpreter.
func (i *interpreter) Interpret(ctx context.Context, statements []parser.Stmt) (string, error) {
	var last Value = NilValue

	for _, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		var err error
		if expr, ok := stmt.(*parser.StmtExpression); ok {
			last, err = i.evaluate(ctx, expr.Expression)
		} else {
			last = NilValue
			_, err = i.execute(ctx, stmt)
		}

		if err != nil {
			i.env = i.globals
			i.callDepth = 0
			if loxerrors.IsRuntimeError(err) {
				i.reporter.ReportRuntimeError(err)
			}
			return "", err
		}
	}

	return i.stringify(last), nil
}

// resolve records the binding distance computed by the resolver.
func (i *interpreter) resolve(id parser.NodeID, depth int) {
	i.locals[id] = depth
}

func (i *interpreter) execute(ctx context.Context, stmt parser.Stmt) (flow, error) {
	switch s := stmt.(type) {
	case *parser.StmtBlock:
		return i.executeBlock(ctx, s.Statements, i.env.Nest())
	case *parser.StmtClass:
		return flowNext, i.executeClass(ctx, s)
	case *parser.StmtExpression:
		_, err := i.evaluate(ctx, s.Expression)
		return flowNext, err
	case *parser.StmtFunction:
		fn := NewLoxFunction(s, i.env, false)
		i.env.Define(s.Name.Lexeme, ValueCallable{fn})
		return flowNext, nil
	case *parser.StmtIf:
		return i.executeIf(ctx, s)
	case *parser.StmtPrint:
		value, err := i.evaluate(ctx, s.Expression)
		if err != nil {
			return flowNext, err
		}
		_, err = fmt.Fprintln(i.stdout, i.stringify(value))
		return flowNext, err
	case *parser.StmtReturn:
		var value Value = NilValue
		if s.Value != nil {
			var err error
			if value, err = i.evaluate(ctx, s.Value); err != nil {
				return flowNext, err
			}
		}
		return flow{kind: flowReturn, value: value}, nil
	case *parser.StmtVar:
		var value Value = NilValue
		if s.Initializer != nil {
			var err error
			if value, err = i.evaluate(ctx, s.Initializer); err != nil {
				return flowNext, err
			}
		}
		i.env.Define(s.Name.Lexeme, value)
		return flowNext, nil
	case *parser.StmtWhile:
		return i.executeWhile(ctx, s)
	}

	panic(fmt.Sprintf("unexpected statement type %T", stmt))
}

// executeBlock runs statements in env and always restores the previous frame.
// It stops at the first statement that does not complete normally.
func (i *interpreter) executeBlock(ctx context.Context, statements []parser.Stmt, env *environment) (flow, error) {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, stmt := range statements {
		result, err := i.execute(ctx, stmt)
		if err != nil || result.kind != flowNormal {
			return result, err
		}
	}

	return flowNext, nil
}

func (i *interpreter) executeIf(ctx context.Context, s *parser.StmtIf) (flow, error) {
	condition, err := i.evaluate(ctx, s.Condition)
	if err != nil {
		return flowNext, err
	}

	if i.isTruthy(condition) {
		return i.execute(ctx, s.ThenBranch)
	}
	if s.ElseBranch != nil {
		return i.execute(ctx, s.ElseBranch)
	}
	return flowNext, nil
}

func (i *interpreter) executeWhile(ctx context.Context, s *parser.StmtWhile) (flow, error) {
	for {
		if err := ctx.Err(); err != nil {
			return flowNext, err
		}

		condition, err := i.evaluate(ctx, s.Condition)
		if err != nil {
			return flowNext, err
		}
		if !i.isTruthy(condition) {
			return flowNext, nil
		}

		result, err := i.execute(ctx, s.Body)
		if err != nil || result.kind != flowNormal {
			return result, err
		}
	}
}

func (i *interpreter) executeClass(ctx context.Context, s *parser.StmtClass) error {
	var superClass *LoxClass
	if s.SuperClass != nil {
		value, err := i.evaluate(ctx, s.SuperClass)
		if err != nil {
			return err
		}
		class, ok := value.(ValueClass)
		if !ok {
			return loxerrors.NewRuntimeError(s.SuperClass.Name, loxerrors.ErrRuntimeSuperClassMustBeClass)
		}
		superClass = class.LoxClass
	}

	i.env.Define(s.Name.Lexeme, NilValue)

	closure := i.env
	if superClass != nil {
		closure = closure.Nest()
		closure.Define("super", ValueClass{superClass})
	}

	methods := make(map[string]*LoxFunction, len(s.Methods))
	for _, method := range s.Methods {
		methods[method.Name.Lexeme] = NewLoxFunction(method, closure, method.Name.Lexeme == initializerName)
	}

	class := NewLoxClass(s.Name.Lexeme, superClass, methods)
	return i.env.Assign(s.Name, ValueClass{class})
}

func (i *interpreter) evaluate(ctx context.Context, expr parser.Expr) (Value, error) {
	switch e := expr.(type) {
	case *parser.ExprAssign:
		value, err := i.evaluate(ctx, e.Value)
		if err != nil {
			return nil, err
		}
		if distance, ok := i.locals[e.ID()]; ok {
			i.env.AssignAt(distance, e.Name, value)
		} else if err := i.globals.Assign(e.Name, value); err != nil {
			return nil, err
		}
		return value, nil
	case *parser.ExprBinary:
		return i.evaluateBinary(ctx, e)
	case *parser.ExprCall:
		return i.evaluateCall(ctx, e)
	case *parser.ExprGet:
		value, err := i.evaluate(ctx, e.Instance)
		if err != nil {
			return nil, err
		}
		if object, ok := value.(ValueObject); ok {
			return object.Get(e.Name)
		}
		return nil, loxerrors.NewRuntimeError(e.Name, loxerrors.ErrRuntimeOnlyInstancesHaveProperties)
	case *parser.ExprGrouping:
		return i.evaluate(ctx, e.Expression)
	case *parser.ExprLiteral:
		return fromLiteral(e.Value), nil
	case *parser.ExprLogical:
		return i.evaluateLogical(ctx, e)
	case *parser.ExprSet:
		value, err := i.evaluate(ctx, e.Instance)
		if err != nil {
			return nil, err
		}
		object, ok := value.(ValueObject)
		if !ok {
			return nil, loxerrors.NewRuntimeError(e.Name, loxerrors.ErrRuntimeOnlyInstancesHaveFields)
		}
		if value, err = i.evaluate(ctx, e.Value); err != nil {
			return nil, err
		}
		object.Set(e.Name, value)
		return value, nil
	case *parser.ExprSuper:
		return i.evaluateSuper(e)
	case *parser.ExprThis:
		return i.lookUpVariable(e.Keyword, e)
	case *parser.ExprUnary:
		return i.evaluateUnary(ctx, e)
	case *parser.ExprVariable:
		return i.lookUpVariable(e.Name, e)
	}

	panic(fmt.Sprintf("unexpected expression type %T", expr))
}

func (i *interpreter) evaluateBinary(ctx context.Context, expr *parser.ExprBinary) (Value, error) {
	left, err := i.evaluate(ctx, expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(ctx, expr.Right)
	if err != nil {
		return nil, err
	}

	switch expr.Operator.Type {
	case token.BANG_EQUAL:
		return ValueBool(!i.isEqual(left, right)), nil
	case token.EQUAL_EQUAL:
		return ValueBool(i.isEqual(left, right)), nil
	case token.PLUS:
		if l, ok := left.(ValueString); ok {
			if r, ok := right.(ValueString); ok {
				return l + r, nil
			}
		}
		if l, ok := left.(ValueFloat); ok {
			if r, ok := right.(ValueFloat); ok {
				return l + r, nil
			}
		}
		return nil, loxerrors.NewRuntimeError(expr.Operator, loxerrors.ErrRuntimeOperandsMustNumbersOrStrings)
	}

	l, r, err := i.checkNumberOperands(expr.Operator, left, right)
	if err != nil {
		return nil, err
	}

	switch expr.Operator.Type {
	case token.GREATER:
		return ValueBool(l > r), nil
	case token.GREATER_EQUAL:
		return ValueBool(l >= r), nil
	case token.LESS:
		return ValueBool(l < r), nil
	case token.LESS_EQUAL:
		return ValueBool(l <= r), nil
	case token.MINUS:
		return l - r, nil
	case token.SLASH:
		return l / r, nil
	case token.STAR:
		return l * r, nil
	}

	return i.unreachable()
}

func (i *interpreter) evaluateUnary(ctx context.Context, expr *parser.ExprUnary) (Value, error) {
	right, err := i.evaluate(ctx, expr.Right)
	if err != nil {
		return nil, err
	}

	switch expr.Operator.Type {
	case token.MINUS:
		number, ok := right.(ValueFloat)
		if !ok {
			return nil, loxerrors.NewRuntimeError(expr.Operator, loxerrors.ErrRuntimeOperandMustBeNumber)
		}
		return -number, nil
	case token.BANG:
		return ValueBool(!i.isTruthy(right)), nil
	}

	return i.unreachable()
}

// evaluateLogical returns the deciding operand itself, not a coerced boolean.
func (i *interpreter) evaluateLogical(ctx context.Context, expr *parser.ExprLogical) (Value, error) {
	left, err := i.evaluate(ctx, expr.Left)
	if err != nil {
		return nil, err
	}

	if expr.Operator.Type == token.OR {
		if i.isTruthy(left) {
			return left, nil
		}
	} else if !i.isTruthy(left) {
		return left, nil
	}

	return i.evaluate(ctx, expr.Right)
}

func (i *interpreter) evaluateCall(ctx context.Context, expr *parser.ExprCall) (Value, error) {
	callee, err := i.evaluate(ctx, expr.Callee)
	if err != nil {
		return nil, err
	}

	arguments := make([]Value, 0, len(expr.Arguments))
	for _, arg := range expr.Arguments {
		value, err := i.evaluate(ctx, arg)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, value)
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, loxerrors.NewRuntimeError(expr.Paren, loxerrors.ErrRuntimeCalleeMustBeCallable)
	}

	if arity := callable.Arity(); int(arity) != len(arguments) {
		return nil, loxerrors.NewRuntimeError(expr.Paren, loxerrors.ErrRuntimeCalleeArityError(int(arity), len(arguments)))
	}

	return i.call(ctx, expr.Paren, callable, arguments)
}

func (i *interpreter) call(ctx context.Context, paren *token.Token, callable Callable, arguments []Value) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if i.callDepth >= i.maxCallDepth {
		return nil, loxerrors.NewRuntimeError(paren, loxerrors.ErrRuntimeStackOverflow)
	}
	i.callDepth++
	defer func() { i.callDepth-- }()

	return callable.Call(ctx, i, arguments)
}

// evaluateSuper finds the method on the superclass captured by the class
// declaration and binds it to the current "this", one frame below "super".
func (i *interpreter) evaluateSuper(expr *parser.ExprSuper) (Value, error) {
	distance, ok := i.locals[expr.ID()]
	if !ok {
		return nil, loxerrors.NewRuntimeError(expr.Keyword, loxerrors.ErrRuntimeUndefinedVariableName("super"))
	}

	superValue, err := i.env.GetAt(distance, "super")
	if err != nil {
		return nil, loxerrors.NewRuntimeError(expr.Keyword, err)
	}
	thisValue, err := i.env.GetAt(distance-1, "this")
	if err != nil {
		return nil, loxerrors.NewRuntimeError(expr.Keyword, err)
	}

	superClass := superValue.(ValueClass)
	object := thisValue.(ValueObject)

	method := superClass.FindMethod(expr.Method.Lexeme)
	if method == nil {
		return nil, loxerrors.NewRuntimeError(expr.Method, loxerrors.ErrRuntimeUndefinedProperty(expr.Method.Lexeme))
	}

	return ValueCallable{method.Bind(object.LoxInstance)}, nil
}

// lookUpVariable reads a resolved local at its static distance, or else a global.
func (i *interpreter) lookUpVariable(name *token.Token, expr parser.Resolvable) (Value, error) {
	if distance, ok := i.locals[expr.ID()]; ok {
		value, err := i.env.GetAt(distance, name.Lexeme)
		if err != nil {
			return nil, loxerrors.NewRuntimeError(name, err)
		}
		return value, nil
	}

	return i.globals.Get(name)
}

func (i *interpreter) stringify(value Value) string {
	return value.String()
}

// isTruthy: nil and false are falsey, everything else is truthy.
func (i *interpreter) isTruthy(value Value) bool {
	switch v := value.(type) {
	case ValueNil:
		return false
	case ValueBool:
		return bool(v)
	}

	return true
}

// isEqual never fails: values of different types are unequal,
// functions, classes and instances compare by identity.
func (i *interpreter) isEqual(left, right Value) bool {
	return left == right
}

func (i *interpreter) checkNumberOperands(operator *token.Token, left, right Value) (ValueFloat, ValueFloat, error) {
	l, ok := left.(ValueFloat)
	if !ok {
		return 0, 0, loxerrors.NewRuntimeError(operator, loxerrors.ErrRuntimeOperandsMustBeNumbers)
	}
	r, ok := right.(ValueFloat)
	if !ok {
		return 0, 0, loxerrors.NewRuntimeError(operator, loxerrors.ErrRuntimeOperandsMustBeNumbers)
	}
	return l, r, nil
}

func (i *interpreter) unreachable() (Value, error) {
	panic("unreachable")
}

// String implements fmt.Stringer.
func (i *interpreter) String() string {
	return fmt.Sprintf("interpreter{globals: %v, locals: %d, depth: %d}", i.globals, len(i.locals), i.callDepth)
}

var (
	_ Interpreter  = (*interpreter)(nil)
	_ fmt.Stringer = (*interpreter)(nil)
)
