package parser

import (
	"fmt"
	"strings"

	"github.com/loxwell/loxwell/internal/token"
)

// RPNPrinter renders expressions in reverse Polish notation: "(1 + 2) * 3" is "1 2 + 3 *".
// Unary minus prints as "~" to tell it apart from subtraction.
type RPNPrinter struct{}

func NewRPNPrinter() *RPNPrinter {
	return &RPNPrinter{}
}

func (p *RPNPrinter) Print(expr Expr) string {
	switch e := expr.(type) {
	case *ExprAssign:
		return p.Print(e.Value) + " =" + e.Name.Lexeme
	case *ExprBinary:
		return p.reverse(e.Operator.Lexeme, e.Left, e.Right)
	case *ExprCall:
		return p.reverse(fmt.Sprintf("call/%d", len(e.Arguments)), append([]Expr{e.Callee}, e.Arguments...)...)
	case *ExprGet:
		return p.reverse("."+e.Name.Lexeme, e.Instance)
	case *ExprGrouping:
		return p.reverse("", e.Expression)
	case *ExprLiteral:
		return literalString(e.Value)
	case *ExprLogical:
		return p.reverse(e.Operator.Lexeme, e.Left, e.Right)
	case *ExprSet:
		return p.reverse("."+e.Name.Lexeme+"=", e.Instance, e.Value)
	case *ExprSuper:
		return "super." + e.Method.Lexeme
	case *ExprThis:
		return "this"
	case *ExprUnary:
		operator := e.Operator.Lexeme
		if e.Operator.Type == token.MINUS {
			operator = "~"
		}
		return p.reverse(operator, e.Right)
	case *ExprVariable:
		return e.Name.Lexeme
	}
	panic(fmt.Sprintf("unexpected expression type %T", expr))
}

func (p *RPNPrinter) reverse(name string, exprs ...Expr) string {
	out := new(strings.Builder)
	for _, expr := range exprs {
		_, _ = out.WriteString(p.Print(expr))
		_, _ = out.WriteString(" ")
	}
	_, _ = out.WriteString(name)
	return strings.TrimSuffix(out.String(), " ")
}
