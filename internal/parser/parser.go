package parser

import (
	"errors"
	"fmt"

	"github.com/loxwell/loxwell/internal/loxerrors"
	"github.com/loxwell/loxwell/internal/token"
)

const maxArguments = 255

var (
	nilExpr       Expr   = nil
	nilStmt       Stmt   = nil
	nilStatements []Stmt = nil
)

type Parser interface {
	// Parse returns every statement that parsed cleanly.
	// Malformed declarations are reported, dropped and parsing resumes
	// at the next statement boundary; the returned error joins all diagnostics.
	Parse() ([]Stmt, error)
}

type parser struct {
	tokens   []token.Token
	current  int
	err      error
	errs     []error
	reporter loxerrors.ErrReporter
}

func NewParser(tokens []token.Token, reporter loxerrors.ErrReporter) Parser {
	if len(tokens) == 0 {
		panic("tokens cannot be empty")
	}
	if tokens[len(tokens)-1].Type != token.EOF {
		panic("tokens must end with EOF")
	}

	return &parser{
		tokens:   tokens,
		current:  0,
		reporter: reporter,
	}
}

// GoString implements fmt.GoStringer.
func (p *parser) GoString() string {
	return fmt.Sprintf("parser{tokens: %#v, current: %d, err: %#v}", p.tokens, p.current, p.err)
}

// String implements fmt.Stringer.
func (p *parser) String() string {
	return fmt.Sprintf("parser{tokens: %d, errs: %v}", len(p.tokens), p.errs)
}

// Parse implements Parser.
func (p *parser) Parse() ([]Stmt, error) {
	var statements []Stmt
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}

	return statements, errors.Join(p.errs...)
}

// declaration parses one declaration and recovers from a parse error in it:
// the partial statement is dropped and tokens are skipped up to the next statement boundary.
func (p *parser) declaration() Stmt {
	stmt := p.declarationOrStatement()
	if p.err != nil {
		p.synchronize()
		p.err = nil
		return nilStmt
	}
	return stmt
}

func (p *parser) declarationOrStatement() Stmt {
	if p.match(token.CLASS) {
		return p.classDeclaration()
	}

	if p.match(token.FUN) {
		if fn := p.function("function"); fn != nil {
			return fn
		}
		return nilStmt
	}

	if p.match(token.VAR) {
		return p.varDeclaration()
	}

	return p.statement()
}

func (p *parser) classDeclaration() Stmt {
	if !p.match(token.IDENTIFIER) {
		return p.reportStmtError(loxerrors.ErrParseExpectedIdentifierKindError("class"))
	}
	name := p.previous()

	var superClass *ExprVariable
	if p.match(token.LESS) {
		if !p.match(token.IDENTIFIER) {
			return p.reportStmtError(loxerrors.ErrParseExpectedSuperclassName)
		}
		superClass = NewExprVariable(p.previous())
	}

	if !p.match(token.LEFT_BRACE) {
		return p.reportStmtError(loxerrors.ErrParseExpectedLeftBraceFunToken("class"))
	}

	var methods []*StmtFunction
	for !p.check(token.RIGHT_BRACE) && !p.isDone() {
		if method := p.function("method"); method != nil {
			methods = append(methods, method)
		}
	}

	if !p.match(token.RIGHT_BRACE) {
		return p.reportStmtError(loxerrors.ErrParseExpectedRightCurlyClassToken)
	}

	return &StmtClass{Name: name, SuperClass: superClass, Methods: methods}
}

func (p *parser) function(kind string) *StmtFunction {
	if !p.match(token.IDENTIFIER) {
		p.reportStmtError(loxerrors.ErrParseExpectedIdentifierKindError(kind))
		return nil
	}
	name := p.previous()

	if !p.match(token.LEFT_PAREN) {
		p.reportStmtError(loxerrors.ErrParseExpectedLeftParenError(kind))
		return nil
	}

	var parameters []*token.Token
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(parameters) >= maxArguments {
				p.reportNonFatal(p.peek(), loxerrors.ErrParseTooManyParameters)
			}
			if !p.match(token.IDENTIFIER) {
				p.reportStmtError(loxerrors.ErrParseUnexpectedParameterName)
				return nil
			}
			parameters = append(parameters, p.previous())
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	if !p.match(token.RIGHT_PAREN) {
		p.reportStmtError(loxerrors.ErrParseExpectedRightParentFunToken)
		return nil
	}

	if !p.match(token.LEFT_BRACE) {
		p.reportStmtError(loxerrors.ErrParseExpectedLeftBraceFunToken(kind))
		return nil
	}

	body := p.blockStatement()
	if p.err != nil {
		return nil
	}

	return &StmtFunction{Name: name, Parameters: parameters, Body: body}
}

func (p *parser) varDeclaration() Stmt {
	if !p.match(token.IDENTIFIER) {
		return p.reportStmtError(loxerrors.ErrParseUnexpectedVariableName)
	}
	name := p.previous()

	var initializer Expr = nilExpr
	if p.match(token.EQUAL) {
		initializer = p.expression()
	}

	if !p.match(token.SEMICOLON) {
		return p.reportStmtError(loxerrors.ErrParseExpectedSemicolonTokenAfterVar)
	}

	return &StmtVar{Name: name, Initializer: initializer}
}

func (p *parser) statement() Stmt {
	if p.match(token.IF) {
		return p.ifStatement()
	}

	if p.match(token.FOR) {
		return p.forStatement()
	}

	if p.match(token.PRINT) {
		return p.printStatement()
	}

	if p.match(token.RETURN) {
		return p.returnStatement()
	}

	if p.match(token.WHILE) {
		return p.whileStatement()
	}

	if p.match(token.LEFT_BRACE) {
		block := p.blockStatement()
		return &StmtBlock{Statements: block}
	}

	return p.expressionStatement()
}

func (p *parser) ifStatement() Stmt {
	if !p.match(token.LEFT_PAREN) {
		return p.reportStmtError(loxerrors.ErrParseExpectedLeftParentIfToken)
	}

	condition := p.expression()

	if !p.match(token.RIGHT_PAREN) {
		return p.reportStmtError(loxerrors.ErrParseExpectedRightParentIfToken)
	}

	thenBranch := p.statement()
	var elseBranch Stmt
	if p.match(token.ELSE) {
		elseBranch = p.statement()
	}

	return &StmtIf{Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

// forStatement desugars "for (init; cond; incr) body" into
// { init; while (cond) { body; incr; } }.
func (p *parser) forStatement() Stmt {
	if !p.match(token.LEFT_PAREN) {
		return p.reportStmtError(loxerrors.ErrParseExpectedLeftParentForToken)
	}

	var initializer Stmt
	if p.match(token.SEMICOLON) {
		initializer = nilStmt
	} else if p.match(token.VAR) {
		initializer = p.varDeclaration()
	} else {
		initializer = p.expressionStatement()
	}

	var condition Expr
	if !p.check(token.SEMICOLON) {
		condition = p.expression()
	}
	if !p.match(token.SEMICOLON) {
		return p.reportStmtError(loxerrors.ErrParseExpectedSemicolonAfterForLoopCond)
	}

	var increment Expr
	if !p.check(token.RIGHT_PAREN) {
		increment = p.expression()
	}
	if !p.match(token.RIGHT_PAREN) {
		return p.reportStmtError(loxerrors.ErrParseExpectedRightParentForToken)
	}

	body := p.statement()
	if increment != nilExpr {
		body = &StmtBlock{
			Statements: []Stmt{body, &StmtExpression{Expression: increment}},
		}
	}
	if condition == nilExpr {
		condition = &ExprLiteral{Value: true}
	}
	body = &StmtWhile{Condition: condition, Body: body}
	if initializer != nilStmt {
		body = &StmtBlock{Statements: []Stmt{initializer, body}}
	}
	return body
}

func (p *parser) printStatement() Stmt {
	expr := p.expression()

	if !p.match(token.SEMICOLON) {
		return p.reportStmtError(loxerrors.ErrParseExpectedSemicolonTokenAfterPrintValue)
	}

	return &StmtPrint{Expression: expr}
}

func (p *parser) returnStatement() Stmt {
	keyword := p.previous()

	var value Expr = nilExpr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}

	if !p.match(token.SEMICOLON) {
		return p.reportStmtError(loxerrors.ErrParseExpectedSemicolonTokenAfterReturn)
	}

	return &StmtReturn{Keyword: keyword, Value: value}
}

func (p *parser) whileStatement() Stmt {
	if !p.match(token.LEFT_PAREN) {
		return p.reportStmtError(loxerrors.ErrParseExpectedLeftParentWhileToken)
	}
	condition := p.expression()
	if !p.match(token.RIGHT_PAREN) {
		return p.reportStmtError(loxerrors.ErrParseExpectedRightParentWhileToken)
	}

	body := p.statement()

	return &StmtWhile{Condition: condition, Body: body}
}

func (p *parser) blockStatement() []Stmt {
	var stmts []Stmt

	for !p.check(token.RIGHT_BRACE) && !p.isDone() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	if !p.match(token.RIGHT_BRACE) {
		return p.reportStmtsError(loxerrors.ErrParseExpectedRightCurlyBlockToken)
	}

	return stmts
}

func (p *parser) expressionStatement() Stmt {
	expr := p.expression()
	if !p.match(token.SEMICOLON) {
		return p.reportStmtError(loxerrors.ErrParseExpectedSemicolonTokenAfterExpr)
	}
	return &StmtExpression{Expression: expr}
}

func (p *parser) expression() Expr {
	return p.assignment()
}

func (p *parser) assignment() Expr {
	expr := p.logicOr()

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ExprVariable:
			return NewExprAssign(target.Name, value)
		case *ExprGet:
			return &ExprSet{Instance: target.Instance, Name: target.Name, Value: value}
		}

		p.reportNonFatal(equals, loxerrors.ErrParseInvalidAssignmentTarget)
	}

	return expr
}

func (p *parser) logicOr() Expr {
	expr := p.logicAnd()

	for p.match(token.OR) {
		operator := p.previous()
		right := p.logicAnd()
		expr = &ExprLogical{Left: expr, Operator: operator, Right: right}
	}

	return expr
}

func (p *parser) logicAnd() Expr {
	expr := p.equality()

	for p.match(token.AND) {
		operator := p.previous()
		right := p.equality()
		expr = &ExprLogical{Left: expr, Operator: operator, Right: right}
	}

	return expr
}

func (p *parser) equality() Expr {
	expr := p.comparison()

	for p.anyMatch(token.BANG_EQUAL, token.EQUAL_EQUAL) {
		operator := p.previous()
		right := p.comparison()
		expr = &ExprBinary{Left: expr, Operator: operator, Right: right}
	}

	return expr
}

func (p *parser) comparison() Expr {
	expr := p.term()

	for p.anyMatch(token.GREATER, token.GREATER_EQUAL, token.LESS, token.LESS_EQUAL) {
		operator := p.previous()
		right := p.term()
		expr = &ExprBinary{Left: expr, Operator: operator, Right: right}
	}

	return expr
}

func (p *parser) term() Expr {
	expr := p.factor()

	for p.anyMatch(token.MINUS, token.PLUS) {
		operator := p.previous()
		right := p.factor()
		expr = &ExprBinary{Left: expr, Operator: operator, Right: right}
	}

	return expr
}

func (p *parser) factor() Expr {
	expr := p.unary()

	for p.anyMatch(token.SLASH, token.STAR) {
		operator := p.previous()
		right := p.unary()
		expr = &ExprBinary{Left: expr, Operator: operator, Right: right}
	}

	return expr
}

func (p *parser) unary() Expr {
	if p.anyMatch(token.BANG, token.MINUS) {
		operator := p.previous()
		right := p.unary()
		return &ExprUnary{
			Operator: operator,
			Right:    right,
		}
	}

	return p.call()
}

func (p *parser) call() Expr {
	expr := p.primary()

	for {
		if p.match(token.LEFT_PAREN) {
			expr = p.finishCall(expr)
		} else if p.match(token.DOT) {
			if !p.match(token.IDENTIFIER) {
				return p.reportExprError(loxerrors.ErrParseExpectedPropertyName)
			}
			expr = &ExprGet{Instance: expr, Name: p.previous()}
		} else {
			break
		}
	}

	return expr
}

func (p *parser) finishCall(callee Expr) Expr {
	var arguments []Expr

	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(arguments) >= maxArguments {
				p.reportNonFatal(p.peek(), loxerrors.ErrParseTooManyArguments)
			}
			arguments = append(arguments, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	if !p.match(token.RIGHT_PAREN) {
		return p.reportExprError(loxerrors.ErrParseExpectedRightParenAfterArguments)
	}

	return &ExprCall{Callee: callee, Paren: p.previous(), Arguments: arguments}
}

func (p *parser) primary() Expr {
	if p.match(token.FALSE) {
		return &ExprLiteral{Value: false}
	}
	if p.match(token.TRUE) {
		return &ExprLiteral{Value: true}
	}
	if p.match(token.NIL) {
		return &ExprLiteral{Value: nil}
	}

	if p.anyMatch(token.NUMBER, token.STRING) {
		tok := p.previous()
		return &ExprLiteral{Value: tok.Literal}
	}

	if p.match(token.SUPER) {
		keyword := p.previous()
		if !p.match(token.DOT) {
			return p.reportExprError(loxerrors.ErrParseExpectedDotAfterSuper)
		}
		if !p.match(token.IDENTIFIER) {
			return p.reportExprError(loxerrors.ErrParseExpectedSuperclassMethodName)
		}
		return NewExprSuper(keyword, p.previous())
	}

	if p.match(token.THIS) {
		return NewExprThis(p.previous())
	}

	if p.match(token.IDENTIFIER) {
		return NewExprVariable(p.previous())
	}

	return p.grouping()
}

func (p *parser) grouping() Expr {
	if p.match(token.LEFT_PAREN) {
		expr := p.expression()
		if !p.match(token.RIGHT_PAREN) {
			return p.reportExprError(loxerrors.ErrParseExpectedRightParenToken)
		}
		return &ExprGrouping{Expression: expr}
	}

	return p.reportExprError(loxerrors.ErrParseUnexpectedToken)
}

func (p *parser) anyMatch(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) match(tokType token.TokenType) bool {
	if p.check(tokType) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) check(tokenType token.TokenType) bool {
	return !p.isDone() && p.peek().Type == tokenType
}

func (p *parser) peek() *token.Token {
	return &p.tokens[p.current]
}

func (p *parser) previous() *token.Token {
	return &p.tokens[p.current-1]
}

func (p *parser) advance() *token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// Be carefull with isAtEnd, it does not check for parse errors.
// Use isDone instead.
// isAtEnd is used from top level Parse, synchronize and advance ony.
func (p *parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

// isDone is true at the end of input or while a parse error unwinds the current declaration.
func (p *parser) isDone() bool {
	return p.isAtEnd() || p.err != nil
}

func (p *parser) reportStmtError(err error) Stmt {
	p.reportTokenError(p.peek(), err)
	return nilStmt
}

func (p *parser) reportStmtsError(err error) []Stmt {
	p.reportTokenError(p.peek(), err)
	return nilStatements
}

func (p *parser) reportExprError(err error) Expr {
	p.reportTokenError(p.peek(), err)
	return nilExpr
}

// reportTokenError records the first error of the current declaration and starts unwinding.
func (p *parser) reportTokenError(tok *token.Token, err error) {
	if p.err != nil {
		return
	}
	p.err = loxerrors.NewParseError(tok, err)
	p.record(p.err)
}

// reportNonFatal records an error without unwinding; parsing goes on with what was parsed.
func (p *parser) reportNonFatal(tok *token.Token, err error) {
	if p.err != nil {
		return
	}
	p.record(loxerrors.NewParseError(tok, err))
}

func (p *parser) record(err error) {
	p.errs = append(p.errs, err)
	if p.reporter != nil {
		p.reporter.ReportError(err)
	}
}

func (p *parser) synchronize() {
	p.advance()

	for !p.isAtEnd() {
		if p.previous().Type == token.SEMICOLON {
			return
		}

		switch p.peek().Type {
		case token.CLASS,
			token.FUN,
			token.VAR,
			token.FOR,
			token.IF,
			token.WHILE,
			token.PRINT,
			token.RETURN:
			return
		}

		p.advance()
	}
}

var (
	_ Parser         = (*parser)(nil)
	_ fmt.Stringer   = (*parser)(nil)
	_ fmt.GoStringer = (*parser)(nil)
)
