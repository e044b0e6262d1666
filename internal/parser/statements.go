package parser

import (
	"github.com/pcodetools/pcode/internal/ast"
	"github.com/pcodetools/pcode/internal/lexer"
	"github.com/pcodetools/pcode/internal/position"
)

// blockClosers are tokens that legitimately follow a statement without an
// intervening semicolon (the semicolon before a block closer is optional).
var blockClosers = []lexer.TokenType{
	lexer.TokenEndIf,
	lexer.TokenEndFor,
	lexer.TokenEndWhile,
	lexer.TokenEndEvaluate,
	lexer.TokenEndTry,
	lexer.TokenEndMethod,
	lexer.TokenEndFunction,
	lexer.TokenEndGet,
	lexer.TokenEndSet,
	lexer.TokenElse,
	lexer.TokenWhen,
	lexer.TokenWhenOther,
	lexer.TokenCatch,
	lexer.TokenUntil,
	lexer.TokenEOF,
}

// expectStatementEnd consumes the statement-terminating semicolon, or
// accepts a following block boundary where the semicolon is optional.
func (p *Parser) expectStatementEnd(context string) {
	if _, ok := p.match(lexer.TokenSemicolon); ok {
		return
	}
	if p.atAny(blockClosers...) {
		return
	}
	p.errorf(p.cur().Span, context, "expected ';', got %s", p.cur().Type)
	p.syncToStatementBoundary()
}

// parseBlock parses statements until one of the closing tokens (which is
// left unconsumed) or EOF.
func (p *Parser) parseBlock(closers ...lexer.TokenType) *ast.Block {
	start := p.cur().Span.Start
	stmts := make([]ast.Statement, 0)

	for !p.atAny(closers...) && !p.at(lexer.TokenEOF) {
		if p.at(lexer.TokenSemicolon) {
			p.advance()
			continue
		}
		if stmt := p.parseStatement(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	span := p.spanFrom(start)
	if len(stmts) == 0 {
		span = position.Between(start, start)
	}
	return ast.NewBlock(span, stmts)
}

// parseStatement parses a single statement.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case lexer.TokenLocal:
		return p.parseVarDeclStatement(ast.ScopeLocal)
	case lexer.TokenGlobal:
		return p.parseVarDeclStatement(ast.ScopeGlobal)
	case lexer.TokenComponent:
		return p.parseVarDeclStatement(ast.ScopeComponent)
	case lexer.TokenIf:
		return p.parseIfStatement()
	case lexer.TokenFor:
		return p.parseForStatement()
	case lexer.TokenWhile:
		return p.parseWhileStatement()
	case lexer.TokenRepeat:
		return p.parseRepeatStatement()
	case lexer.TokenEvaluate:
		return p.parseEvaluateStatement()
	case lexer.TokenTry:
		return p.parseTryStatement()
	case lexer.TokenReturn:
		return p.parseReturnStatement()
	case lexer.TokenBreak:
		return p.parseBranchStatement(ast.BranchBreak)
	case lexer.TokenContinue:
		return p.parseBranchStatement(ast.BranchContinue)
	case lexer.TokenExit:
		return p.parseBranchStatement(ast.BranchExit)
	case lexer.TokenThrow:
		return p.parseThrowStatement()
	case lexer.TokenErrorKw:
		return p.parseMessageStatement(ast.MessageError)
	case lexer.TokenWarning:
		return p.parseMessageStatement(ast.MessageWarning)
	case lexer.TokenFunction:
		return p.parseFunctionDecl()
	case lexer.TokenError:
		tok := p.advance()
		p.errorf(tok.Span, "statement", "unexpected input %q", tok.Lexeme)
		p.syncToStatementBoundary()
		return nil
	default:
		return p.parseSimpleStatement()
	}
}

// parseVarDeclStatement parses `Local type &a[, &b...];` or
// `Local type &a = expr;`.
func (p *Parser) parseVarDeclStatement(scope ast.VarScope) ast.Statement {
	start := p.cur().Span.Start
	p.advance() // Local / Global / Component

	typeSpec := p.parseTypeAnnotation()
	if typeSpec == nil {
		p.syncToStatementBoundary()
		return nil
	}

	names := p.parseVariableNameList()
	if len(names) == 0 {
		p.syncToStatementBoundary()
		return nil
	}

	if p.at(lexer.TokenEquals) {
		if len(names) > 1 {
			p.errorf(p.cur().Span, "variable declaration",
				"initializer is only allowed for a single declared variable")
		}
		p.advance()
		value := p.parseExpression()
		p.expectStatementEnd("variable declaration")
		return ast.NewLocalVarDeclAssign(p.spanFrom(start), scope, typeSpec, names[0], value)
	}

	p.expectStatementEnd("variable declaration")
	return ast.NewLocalVarDecl(p.spanFrom(start), scope, typeSpec, names)
}

// parseIfStatement parses `If cond Then ... [Else ...] End-If;`.
func (p *Parser) parseIfStatement() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // If

	cond := p.parseExpression()
	p.expect(lexer.TokenThen, "If statement")
	p.match(lexer.TokenSemicolon)

	then := p.parseBlock(lexer.TokenElse, lexer.TokenEndIf)

	var els *ast.Block
	if _, ok := p.match(lexer.TokenElse); ok {
		els = p.parseBlock(lexer.TokenEndIf)
	}

	p.expect(lexer.TokenEndIf, "If statement")
	p.expectStatementEnd("If statement")

	return ast.NewIfStmt(p.spanFrom(start), cond, then, els)
}

// parseForStatement parses `For &i = from To to [Step step]; ... End-For;`.
func (p *Parser) parseForStatement() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // For

	varTok, ok := p.expect(lexer.TokenVariable, "For statement")
	if !ok {
		p.syncToStatementBoundary()
		return nil
	}
	loopVar := ast.NewIdentifier(varTok.Span, varTok.Lexeme, ast.IdentUserVariable)

	p.expect(lexer.TokenEquals, "For statement")
	from := p.parseExpression()
	p.expect(lexer.TokenTo, "For statement")
	to := p.parseExpression()

	var step ast.Expression
	if _, ok := p.match(lexer.TokenStep); ok {
		step = p.parseExpression()
	}
	p.match(lexer.TokenSemicolon)

	body := p.parseBlock(lexer.TokenEndFor)
	p.expect(lexer.TokenEndFor, "For statement")
	p.expectStatementEnd("For statement")

	return ast.NewForStmt(p.spanFrom(start), loopVar, from, to, step, body)
}

// parseWhileStatement parses `While cond ... End-While;`.
func (p *Parser) parseWhileStatement() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // While

	cond := p.parseExpression()
	p.match(lexer.TokenSemicolon)

	body := p.parseBlock(lexer.TokenEndWhile)
	p.expect(lexer.TokenEndWhile, "While statement")
	p.expectStatementEnd("While statement")

	return ast.NewWhileStmt(p.spanFrom(start), cond, body)
}

// parseRepeatStatement parses `Repeat ... Until cond;`.
func (p *Parser) parseRepeatStatement() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // Repeat

	body := p.parseBlock(lexer.TokenUntil)
	p.expect(lexer.TokenUntil, "Repeat statement")
	cond := p.parseExpression()
	p.expectStatementEnd("Repeat statement")

	return ast.NewRepeatStmt(p.spanFrom(start), body, cond)
}

// parseEvaluateStatement parses
// `Evaluate subject When [op] expr ... [When-Other ...] End-Evaluate;`.
func (p *Parser) parseEvaluateStatement() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // Evaluate

	subject := p.parseExpression()
	p.match(lexer.TokenSemicolon)

	whens := make([]*ast.WhenClause, 0)
	var other *ast.Block

	for !p.atAny(lexer.TokenEndEvaluate, lexer.TokenEOF) {
		switch p.cur().Type {
		case lexer.TokenWhen:
			whens = append(whens, p.parseWhenClause())
		case lexer.TokenWhenOther:
			p.advance()
			p.match(lexer.TokenSemicolon)
			other = p.parseBlock(lexer.TokenEndEvaluate, lexer.TokenWhen)
		case lexer.TokenSemicolon:
			p.advance()
		default:
			p.errorf(p.cur().Span, "Evaluate statement",
				"expected When, When-Other, or End-Evaluate, got %s", p.cur().Type)
			p.syncToStatementBoundary()
			// Guarantee progress when synchronization stops on a token
			// that is not an Evaluate arm.
			if !p.atAny(lexer.TokenWhen, lexer.TokenWhenOther, lexer.TokenEndEvaluate,
				lexer.TokenSemicolon, lexer.TokenEOF) {
				p.advance()
			}
		}
	}

	p.expect(lexer.TokenEndEvaluate, "Evaluate statement")
	p.expectStatementEnd("Evaluate statement")

	return ast.NewEvaluateStmt(p.spanFrom(start), subject, whens, other)
}

// parseWhenClause parses `When [op] expr ...` up to the next arm.
func (p *Parser) parseWhenClause() *ast.WhenClause {
	start := p.cur().Span.Start
	p.advance() // When

	op := "="
	switch p.cur().Type {
	case lexer.TokenEquals:
		p.advance()
	case lexer.TokenNotEqual, lexer.TokenLess, lexer.TokenLessEqual,
		lexer.TokenGreater, lexer.TokenGreaterEqual:
		op = p.advance().Lexeme
	}

	value := p.parseExpression()
	p.match(lexer.TokenSemicolon)

	body := p.parseBlock(lexer.TokenWhen, lexer.TokenWhenOther, lexer.TokenEndEvaluate)
	return ast.NewWhenClause(p.spanFrom(start), op, value, body)
}

// parseTryStatement parses `Try ... Catch Exception &e ... End-Try;`.
func (p *Parser) parseTryStatement() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // Try

	body := p.parseBlock(lexer.TokenCatch, lexer.TokenEndTry)

	catches := make([]*ast.CatchClause, 0, 1)
	for p.at(lexer.TokenCatch) {
		catchStart := p.cur().Span.Start
		p.advance() // Catch

		excType := p.parseTypeAnnotation()

		var catchVar *ast.VariableName
		if tok, ok := p.match(lexer.TokenVariable); ok {
			catchVar = ast.NewVariableName(tok.Span, tok.Lexeme)
		}
		p.match(lexer.TokenSemicolon)

		catchBody := p.parseBlock(lexer.TokenCatch, lexer.TokenEndTry)
		catches = append(catches, ast.NewCatchClause(p.spanFrom(catchStart), excType, catchVar, catchBody))
	}

	p.expect(lexer.TokenEndTry, "Try statement")
	p.expectStatementEnd("Try statement")

	return ast.NewTryStmt(p.spanFrom(start), body, catches)
}

// parseReturnStatement parses `Return [expr];`.
func (p *Parser) parseReturnStatement() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // Return

	var value ast.Expression
	if !p.at(lexer.TokenSemicolon) && !p.atAny(blockClosers...) {
		value = p.parseExpression()
	}
	p.expectStatementEnd("Return statement")

	return ast.NewReturnStmt(p.spanFrom(start), value)
}

// parseBranchStatement parses `Break;`, `Continue;`, or `Exit;`.
func (p *Parser) parseBranchStatement(kind ast.BranchKind) ast.Statement {
	start := p.cur().Span.Start
	p.advance()
	p.expectStatementEnd("branch statement")
	return ast.NewBranchStmt(p.spanFrom(start), kind)
}

// parseThrowStatement parses `throw expr;`.
func (p *Parser) parseThrowStatement() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // throw
	value := p.parseExpression()
	p.expectStatementEnd("Throw statement")
	return ast.NewThrowStmt(p.spanFrom(start), value)
}

// parseMessageStatement parses `Error expr;` or `Warning expr;`.
func (p *Parser) parseMessageStatement(kind ast.MessageKind) ast.Statement {
	start := p.cur().Span.Start
	p.advance() // Error / Warning
	value := p.parseExpression()
	p.expectStatementEnd("message statement")
	return ast.NewMessageStmt(p.spanFrom(start), kind, value)
}

// parseSimpleStatement parses an assignment or expression statement. The
// target is parsed first as a postfix expression; a following '=' makes
// the statement an assignment, otherwise the target seeds a full
// expression parse (statement-position '=' is assignment, '=' inside an
// expression is comparison).
func (p *Parser) parseSimpleStatement() ast.Statement {
	start := p.cur().Span.Start

	posBefore := p.pos
	target := p.parsePostfixExpression()
	if target == nil {
		p.syncToStatementBoundary()
		// Synchronization leaves block closers unconsumed; if nothing moved,
		// consume one token so the enclosing block loop makes progress.
		if p.pos == posBefore {
			p.advance()
		}
		return nil
	}

	if p.at(lexer.TokenEquals) {
		p.advance()
		value := p.parseExpression()
		p.expectStatementEnd("assignment")
		return ast.NewAssignment(p.spanFrom(start), target, value)
	}

	expr := p.parseBinaryFrom(target, 0)
	p.expectStatementEnd("expression statement")
	return ast.NewExpressionStatement(p.spanFrom(start), expr)
}
