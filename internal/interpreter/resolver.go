package interpreter

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/loxwell/loxwell/internal/loxerrors"
	"github.com/loxwell/loxwell/internal/parser"
	"github.com/loxwell/loxwell/internal/token"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Resolver interface {
	// Resolve computes binding distances for the statements and stores them in the interpreter.
	// Every static error is reported and resolution continues; the result joins them all.
	Resolve(ctx context.Context, statements []parser.Stmt) error
}

type VarState int

const (
	VarStateDeclared VarState = iota
	VarStateDefined
	VarStateRead
)

type FunctionType int

const (
	FnTypeNone FunctionType = iota
	FnTypeFunction
	FnTypeMethod
	FnTypeInitializer
)

type ClassType int

const (
	CTypeNone ClassType = iota
	CTypeClass
	CTypeSubclass
)

const (
	ProfileDefault = "default"
	ProfileStrict  = "strict"
)

// profiles maps a resolver profile to the diagnostics it suppresses.
var profiles = map[string][]error{
	ProfileDefault: {
		loxerrors.ErrParseLocalVariableNotUsed,
	},
	ProfileStrict: {},
}

// IsKnownProfile reports whether name is a resolver profile.
func IsKnownProfile(name string) bool {
	_, ok := profiles[name]
	return ok
}

// Profiles lists the resolver profile names in order.
func Profiles() []string {
	names := maps.Keys(profiles)
	slices.Sort(names)
	return names
}

type ResolverVariable struct {
	Name  *token.Token
	State VarState
}

type resolver struct {
	interpreter     *interpreter
	scopes          *list.List
	err             []error
	currentFunction FunctionType
	currentClass    ClassType
	profile         string
}

func NewResolver(interpreterInstance Interpreter, profile string) Resolver {
	interpreterPtr, ok := interpreterInstance.(*interpreter)
	if !ok {
		panic("failed to cast interpreter to struct *interpreter")
	}

	if !IsKnownProfile(profile) {
		profile = ProfileDefault
	}

	return &resolver{
		interpreter:     interpreterPtr,
		scopes:          list.New(),
		err:             nil,
		currentFunction: FnTypeNone,
		currentClass:    CTypeNone,
		profile:         profile,
	}
}

// Resolve implements Resolver.
func (r *resolver) Resolve(ctx context.Context, statements []parser.Stmt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.err = nil
	r.scopes.Init()
	r.currentFunction = FnTypeNone
	r.currentClass = CTypeNone

	r.resolveStmts(statements)
	return errors.Join(r.err...)
}

func (r *resolver) resolveStmts(stmts []parser.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt parser.Stmt) {
	switch s := stmt.(type) {
	case *parser.StmtBlock:
		r.beginScope()
		r.resolveStmts(s.Statements)
		r.endScope()
	case *parser.StmtClass:
		r.resolveClass(s)
	case *parser.StmtExpression:
		r.resolveExpr(s.Expression)
	case *parser.StmtFunction:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, FnTypeFunction)
	case *parser.StmtIf:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.ThenBranch)
		if s.ElseBranch != nil {
			r.resolveStmt(s.ElseBranch)
		}
	case *parser.StmtPrint:
		r.resolveExpr(s.Expression)
	case *parser.StmtReturn:
		if r.currentFunction == FnTypeNone {
			r.reportError(s.Keyword, loxerrors.ErrParseReturnOutsideFunction)
		}
		if s.Value != nil {
			if r.currentFunction == FnTypeInitializer {
				r.reportError(s.Keyword, loxerrors.ErrParseCantReturnValueFromInitializer)
			}
			r.resolveExpr(s.Value)
		}
	case *parser.StmtVar:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)
	case *parser.StmtWhile:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
	default:
		panic(fmt.Sprintf("unexpected statement type %T", stmt))
	}
}

func (r *resolver) resolveClass(stmtClass *parser.StmtClass) {
	enclosingClass := r.currentClass
	defer func() { r.currentClass = enclosingClass }()
	r.currentClass = CTypeClass

	r.declare(stmtClass.Name)
	r.define(stmtClass.Name)

	if stmtClass.SuperClass != nil && stmtClass.Name.Lexeme == stmtClass.SuperClass.Name.Lexeme {
		r.reportError(stmtClass.SuperClass.Name, loxerrors.ErrParseClassCantInheritFromItself)
	}

	if stmtClass.SuperClass != nil {
		r.currentClass = CTypeSubclass
		r.resolveExpr(stmtClass.SuperClass)

		r.beginScope()
		defer r.endScope()
		r.defineInternal("super")
	}

	r.beginScope()
	defer r.endScope()
	r.defineInternal("this")

	for _, method := range stmtClass.Methods {
		functionType := FnTypeMethod
		if method.Name.Lexeme == initializerName {
			functionType = FnTypeInitializer
		}
		r.resolveFunction(method, functionType)
	}
}

func (r *resolver) resolveFunction(function *parser.StmtFunction, declaration FunctionType) {
	enclosingFunction := r.currentFunction
	r.beginScope()
	r.currentFunction = declaration

	defer func() { r.currentFunction = enclosingFunction }()
	defer r.endScope()

	for _, param := range function.Parameters {
		r.declare(param)
		r.define(param)
	}

	r.resolveStmts(function.Body)
}

func (r *resolver) resolveExpr(expr parser.Expr) {
	switch e := expr.(type) {
	case *parser.ExprAssign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name, false)
	case *parser.ExprBinary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *parser.ExprCall:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Arguments {
			r.resolveExpr(arg)
		}
	case *parser.ExprGet:
		r.resolveExpr(e.Instance)
	case *parser.ExprGrouping:
		r.resolveExpr(e.Expression)
	case *parser.ExprLiteral:
	case *parser.ExprLogical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *parser.ExprSet:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Instance)
	case *parser.ExprSuper:
		switch r.currentClass {
		case CTypeSubclass:
		case CTypeNone:
			r.reportError(e.Keyword, loxerrors.ErrParseCantUseSuperOutsideClass)
		default:
			r.reportError(e.Keyword, loxerrors.ErrParseCantUseSuperInClassWithNoSuperclass)
		}
		r.resolveLocal(e, e.Keyword, true)
	case *parser.ExprThis:
		if r.currentClass == CTypeNone {
			r.reportError(e.Keyword, loxerrors.ErrParseThisOutsideClass)
			return
		}
		r.resolveLocal(e, e.Keyword, true)
	case *parser.ExprUnary:
		r.resolveExpr(e.Right)
	case *parser.ExprVariable:
		if state, ok := r.peekScopeVar(e.Name.Lexeme); ok && state.State == VarStateDeclared {
			r.reportError(e.Name, loxerrors.ErrParseCantInitVarSelfReference)
		}
		r.resolveLocal(e, e.Name, true)
	default:
		panic(fmt.Sprintf("unexpected expression type %T", expr))
	}
}

func (r *resolver) beginScope() {
	r.scopes.PushBack(map[string]*ResolverVariable{})
}

// endScope pops the innermost scope, flagging locals that were never read.
func (r *resolver) endScope() {
	if scope, ok := r.peekScope(); ok {
		names := maps.Keys(scope)
		slices.Sort(names)
		for _, name := range names {
			if v := scope[name]; v.State == VarStateDefined {
				r.reportError(v.Name, loxerrors.ErrParseLocalVariableNotUsed)
			}
		}
	}

	r.scopes.Remove(r.scopes.Back())
}

// resolveLocal records how many scopes separate the use from the declaration.
// Names not found in any scope are left to the global frame.
func (r *resolver) resolveLocal(expr parser.Resolvable, tok *token.Token, isRead bool) {
	depth := r.scopes.Len()
	back := r.scopes.Back()
	for i := 0; i < depth; i++ {
		scope := r.scopeFromListElem(back)
		if v, ok := scope[tok.Lexeme]; ok {
			r.interpreter.resolve(expr.ID(), i)

			if isRead && v.State != VarStateDeclared {
				v.State = VarStateRead
			}
			return
		}
		back = back.Prev()
	}
}

func (r *resolver) declare(tok *token.Token) {
	if scope, ok := r.peekScope(); ok {
		if _, ok := scope[tok.Lexeme]; ok {
			r.reportError(tok, loxerrors.ErrParseCantDuplicateVariableDefinition)
		}
		scope[tok.Lexeme] = &ResolverVariable{Name: tok, State: VarStateDeclared}
	}
}

func (r *resolver) define(tok *token.Token) {
	if scope, ok := r.peekScope(); ok {
		scope[tok.Lexeme].State = VarStateDefined
	}
}

func (r *resolver) defineInternal(name string) {
	if scope, ok := r.peekScope(); ok {
		scope[name] = &ResolverVariable{Name: nil, State: VarStateRead}
	}
}

func (r *resolver) peekScope() (map[string]*ResolverVariable, bool) {
	if r.scopes.Len() == 0 {
		return nil, false
	}
	return r.scopeFromListElem(r.scopes.Back()), true
}

func (r *resolver) peekScopeVar(name string) (*ResolverVariable, bool) {
	if scope, ok := r.peekScope(); ok {
		if value, ok := scope[name]; ok {
			return value, true
		}
	}
	return nil, false
}

func (r *resolver) scopeFromListElem(el *list.Element) map[string]*ResolverVariable {
	return el.Value.(map[string]*ResolverVariable)
}

func (r *resolver) reportError(tok *token.Token, err error) {
	for _, ignoredError := range profiles[r.profile] {
		if errors.Is(err, ignoredError) {
			return
		}
	}

	perr := loxerrors.NewParseError(tok, err)
	r.err = append(r.err, perr)
	r.interpreter.reporter.ReportError(perr)
}

func (r *resolver) String() string {
	w := new(strings.Builder)

	index := 0
	delimiter := ""
	element := r.scopes.Front()
	for element != nil {
		scope := r.scopeFromListElem(element)
		names := maps.Keys(scope)
		slices.Sort(names)
		_, _ = fmt.Fprintf(w, "%s%d%v", delimiter, index, names)
		index++
		element = element.Next()
		delimiter = " -> "
	}

	return fmt.Sprintf("resolver{profile: %s, err: %v, scopes: %s}", r.profile, r.err, w)
}

var (
	_ Resolver     = (*resolver)(nil)
	_ fmt.Stringer = (*resolver)(nil)
)
