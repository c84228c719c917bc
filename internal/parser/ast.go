package parser

import (
	"sync/atomic"

	"github.com/loxwell/loxwell/internal/token"
)

// Node is implemented by every expression and statement node.
// Passes dispatch on the concrete node type with a type switch.
type Node interface {
	node()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// NodeID identifies a resolvable node (variable, assignment, this, super).
// IDs are assigned at construction and are unique for the process lifetime,
// so resolver output stays valid across REPL lines.
type NodeID uint64

// Resolvable is an expression whose binding distance is computed by the resolver.
type Resolvable interface {
	Expr
	ID() NodeID
}

var lastNodeID atomic.Uint64

func nextNodeID() NodeID {
	return NodeID(lastNodeID.Add(1))
}

type resolvable struct {
	id NodeID
}

func newResolvable() resolvable {
	return resolvable{id: nextNodeID()}
}

// ID implements Resolvable.
func (r resolvable) ID() NodeID {
	return r.id
}

// Expression nodes.
type (
	ExprAssign struct {
		resolvable
		Name  *token.Token
		Value Expr
	}

	ExprBinary struct {
		Left     Expr
		Operator *token.Token
		Right    Expr
	}

	ExprCall struct {
		Callee    Expr
		Paren     *token.Token
		Arguments []Expr
	}

	ExprGet struct {
		Instance Expr
		Name     *token.Token
	}

	ExprGrouping struct {
		Expression Expr
	}

	// ExprLiteral holds nil, bool, float64 or string.
	ExprLiteral struct {
		Value any
	}

	// ExprLogical is a short-circuit "and" / "or".
	ExprLogical struct {
		Left     Expr
		Operator *token.Token
		Right    Expr
	}

	ExprSet struct {
		Instance Expr
		Name     *token.Token
		Value    Expr
	}

	ExprSuper struct {
		resolvable
		Keyword *token.Token
		Method  *token.Token
	}

	ExprThis struct {
		resolvable
		Keyword *token.Token
	}

	ExprUnary struct {
		Operator *token.Token
		Right    Expr
	}

	ExprVariable struct {
		resolvable
		Name *token.Token
	}
)

func NewExprAssign(name *token.Token, value Expr) *ExprAssign {
	return &ExprAssign{resolvable: newResolvable(), Name: name, Value: value}
}

func NewExprSuper(keyword, method *token.Token) *ExprSuper {
	return &ExprSuper{resolvable: newResolvable(), Keyword: keyword, Method: method}
}

func NewExprThis(keyword *token.Token) *ExprThis {
	return &ExprThis{resolvable: newResolvable(), Keyword: keyword}
}

func NewExprVariable(name *token.Token) *ExprVariable {
	return &ExprVariable{resolvable: newResolvable(), Name: name}
}

// Statement nodes.
type (
	StmtBlock struct {
		Statements []Stmt
	}

	StmtClass struct {
		Name       *token.Token
		SuperClass *ExprVariable
		Methods    []*StmtFunction
	}

	StmtExpression struct {
		Expression Expr
	}

	StmtFunction struct {
		Name       *token.Token
		Parameters []*token.Token
		Body       []Stmt
	}

	StmtIf struct {
		Condition  Expr
		ThenBranch Stmt
		ElseBranch Stmt
	}

	StmtPrint struct {
		Expression Expr
	}

	StmtReturn struct {
		Keyword *token.Token
		Value   Expr
	}

	StmtVar struct {
		Name        *token.Token
		Initializer Expr
	}

	StmtWhile struct {
		Condition Expr
		Body      Stmt
	}
)

func (*ExprAssign) node()     {}
func (*ExprBinary) node()     {}
func (*ExprCall) node()       {}
func (*ExprGet) node()        {}
func (*ExprGrouping) node()   {}
func (*ExprLiteral) node()    {}
func (*ExprLogical) node()    {}
func (*ExprSet) node()        {}
func (*ExprSuper) node()      {}
func (*ExprThis) node()       {}
func (*ExprUnary) node()      {}
func (*ExprVariable) node()   {}
func (*StmtBlock) node()      {}
func (*StmtClass) node()      {}
func (*StmtExpression) node() {}
func (*StmtFunction) node()   {}
func (*StmtIf) node()         {}
func (*StmtPrint) node()      {}
func (*StmtReturn) node()     {}
func (*StmtVar) node()        {}
func (*StmtWhile) node()      {}

func (*ExprAssign) exprNode()   {}
func (*ExprBinary) exprNode()   {}
func (*ExprCall) exprNode()     {}
func (*ExprGet) exprNode()      {}
func (*ExprGrouping) exprNode() {}
func (*ExprLiteral) exprNode()  {}
func (*ExprLogical) exprNode()  {}
func (*ExprSet) exprNode()      {}
func (*ExprSuper) exprNode()    {}
func (*ExprThis) exprNode()     {}
func (*ExprUnary) exprNode()    {}
func (*ExprVariable) exprNode() {}

func (*StmtBlock) stmtNode()      {}
func (*StmtClass) stmtNode()      {}
func (*StmtExpression) stmtNode() {}
func (*StmtFunction) stmtNode()   {}
func (*StmtIf) stmtNode()         {}
func (*StmtPrint) stmtNode()      {}
func (*StmtReturn) stmtNode()     {}
func (*StmtVar) stmtNode()        {}
func (*StmtWhile) stmtNode()      {}

var (
	_ Resolvable = (*ExprAssign)(nil)
	_ Resolvable = (*ExprSuper)(nil)
	_ Resolvable = (*ExprThis)(nil)
	_ Resolvable = (*ExprVariable)(nil)
	_ Expr       = (*ExprBinary)(nil)
	_ Expr       = (*ExprCall)(nil)
	_ Expr       = (*ExprGet)(nil)
	_ Expr       = (*ExprGrouping)(nil)
	_ Expr       = (*ExprLiteral)(nil)
	_ Expr       = (*ExprLogical)(nil)
	_ Expr       = (*ExprSet)(nil)
	_ Expr       = (*ExprUnary)(nil)
	_ Stmt       = (*StmtBlock)(nil)
	_ Stmt       = (*StmtClass)(nil)
	_ Stmt       = (*StmtExpression)(nil)
	_ Stmt       = (*StmtFunction)(nil)
	_ Stmt       = (*StmtIf)(nil)
	_ Stmt       = (*StmtPrint)(nil)
	_ Stmt       = (*StmtReturn)(nil)
	_ Stmt       = (*StmtVar)(nil)
	_ Stmt       = (*StmtWhile)(nil)
)
