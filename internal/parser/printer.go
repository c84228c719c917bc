package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// AstPrinter renders nodes in parenthesized prefix form, e.g. "(* (- 123) (group 45.67))".
type AstPrinter struct{}

func NewAstPrinter() *AstPrinter {
	return &AstPrinter{}
}

// Print renders an expression.
func (p *AstPrinter) Print(expr Expr) string {
	switch e := expr.(type) {
	case nil:
		return "<nil>"
	case *ExprAssign:
		return p.parenthesize("= "+e.Name.Lexeme, e.Value)
	case *ExprBinary:
		return p.parenthesize(e.Operator.Lexeme, e.Left, e.Right)
	case *ExprCall:
		return p.parenthesize("call", append([]Expr{e.Callee}, e.Arguments...)...)
	case *ExprGet:
		return p.parenthesize(". "+e.Name.Lexeme, e.Instance)
	case *ExprGrouping:
		return p.parenthesize("group", e.Expression)
	case *ExprLiteral:
		return literalString(e.Value)
	case *ExprLogical:
		return p.parenthesize(e.Operator.Lexeme, e.Left, e.Right)
	case *ExprSet:
		return p.parenthesize("set "+e.Name.Lexeme, e.Instance, e.Value)
	case *ExprSuper:
		return "(super " + e.Method.Lexeme + ")"
	case *ExprThis:
		return "this"
	case *ExprUnary:
		return p.parenthesize(e.Operator.Lexeme, e.Right)
	case *ExprVariable:
		return e.Name.Lexeme
	}
	panic(fmt.Sprintf("unexpected expression type %T", expr))
}

// PrintStmt renders a statement.
func (p *AstPrinter) PrintStmt(stmt Stmt) string {
	out := new(strings.Builder)

	switch s := stmt.(type) {
	case nil:
		return "<nil>"
	case *StmtBlock:
		_, _ = out.WriteString("(block")
		p.writeStmts(out, s.Statements)
	case *StmtClass:
		_, _ = out.WriteString("(class ")
		_, _ = out.WriteString(s.Name.Lexeme)
		if s.SuperClass != nil {
			_, _ = out.WriteString(" < ")
			_, _ = out.WriteString(s.SuperClass.Name.Lexeme)
		}
		for _, method := range s.Methods {
			_, _ = out.WriteString(" ")
			_, _ = out.WriteString(p.PrintStmt(method))
		}
	case *StmtExpression:
		_, _ = out.WriteString("(; ")
		_, _ = out.WriteString(p.Print(s.Expression))
	case *StmtFunction:
		_, _ = out.WriteString("(fun ")
		_, _ = out.WriteString(s.Name.Lexeme)
		_, _ = out.WriteString(" (")
		for i, param := range s.Parameters {
			if i > 0 {
				_, _ = out.WriteString(" ")
			}
			_, _ = out.WriteString(param.Lexeme)
		}
		_, _ = out.WriteString(")")
		p.writeStmts(out, s.Body)
	case *StmtIf:
		_, _ = out.WriteString("(if ")
		_, _ = out.WriteString(p.Print(s.Condition))
		_, _ = out.WriteString(" ")
		_, _ = out.WriteString(p.PrintStmt(s.ThenBranch))
		if s.ElseBranch != nil {
			_, _ = out.WriteString(" ")
			_, _ = out.WriteString(p.PrintStmt(s.ElseBranch))
		}
	case *StmtPrint:
		_, _ = out.WriteString("(print ")
		_, _ = out.WriteString(p.Print(s.Expression))
	case *StmtReturn:
		_, _ = out.WriteString("(return")
		if s.Value != nil {
			_, _ = out.WriteString(" ")
			_, _ = out.WriteString(p.Print(s.Value))
		}
	case *StmtVar:
		_, _ = out.WriteString("(var ")
		_, _ = out.WriteString(s.Name.Lexeme)
		if s.Initializer != nil {
			_, _ = out.WriteString(" ")
			_, _ = out.WriteString(p.Print(s.Initializer))
		}
	case *StmtWhile:
		_, _ = out.WriteString("(while ")
		_, _ = out.WriteString(p.Print(s.Condition))
		_, _ = out.WriteString(" ")
		_, _ = out.WriteString(p.PrintStmt(s.Body))
	default:
		panic(fmt.Sprintf("unexpected statement type %T", stmt))
	}

	_, _ = out.WriteString(")")
	return out.String()
}

func (p *AstPrinter) writeStmts(out *strings.Builder, stmts []Stmt) {
	for _, stmt := range stmts {
		_, _ = out.WriteString(" ")
		_, _ = out.WriteString(p.PrintStmt(stmt))
	}
}

func (p *AstPrinter) parenthesize(name string, exprs ...Expr) string {
	out := new(strings.Builder)
	_, _ = out.WriteString("(")
	_, _ = out.WriteString(name)
	for _, expr := range exprs {
		_, _ = out.WriteString(" ")
		_, _ = out.WriteString(p.Print(expr))
	}
	_, _ = out.WriteString(")")
	return out.String()
}

func literalString(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
