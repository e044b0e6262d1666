package parser

import (
	"github.com/pcodetools/pcode/internal/ast"
	"github.com/pcodetools/pcode/internal/lexer"
	"github.com/pcodetools/pcode/internal/position"
)

// Operator precedence, lowest binds loosest:
// Or < And < comparison < concatenation '|' < additive < multiplicative
// < power. Power is right associative, everything else left.
const (
	precOr = iota + 1
	precAnd
	precComparison
	precConcat
	precAdditive
	precMultiplicative
	precPower
)

// binaryOpFor maps a token to its binary operator and precedence.
func binaryOpFor(tt lexer.TokenType) (op ast.BinaryOp, prec int, rightAssoc bool, ok bool) {
	switch tt {
	case lexer.TokenOr:
		return ast.OpOr, precOr, false, true
	case lexer.TokenAnd:
		return ast.OpAnd, precAnd, false, true
	case lexer.TokenEquals:
		return ast.OpEqual, precComparison, false, true
	case lexer.TokenNotEqual:
		return ast.OpNotEqual, precComparison, false, true
	case lexer.TokenLess:
		return ast.OpLess, precComparison, false, true
	case lexer.TokenLessEqual:
		return ast.OpLessEqual, precComparison, false, true
	case lexer.TokenGreater:
		return ast.OpGreater, precComparison, false, true
	case lexer.TokenGreaterEqual:
		return ast.OpGreaterEqual, precComparison, false, true
	case lexer.TokenPipe:
		return ast.OpConcat, precConcat, false, true
	case lexer.TokenPlus:
		return ast.OpAdd, precAdditive, false, true
	case lexer.TokenMinus:
		return ast.OpSubtract, precAdditive, false, true
	case lexer.TokenMul:
		return ast.OpMultiply, precMultiplicative, false, true
	case lexer.TokenDiv:
		return ast.OpDivide, precMultiplicative, false, true
	case lexer.TokenPower:
		return ast.OpPower, precPower, true, true
	}
	return 0, 0, false, false
}

// parseExpression parses a full expression with precedence climbing.
func (p *Parser) parseExpression() ast.Expression {
	left := p.parseUnaryExpression()
	if left == nil {
		return nil
	}
	return p.parseBinaryFrom(left, precOr)
}

// parseBinaryFrom continues precedence climbing with an already-parsed
// left operand. Statement parsing uses this to seed an expression from an
// assignment-target candidate.
func (p *Parser) parseBinaryFrom(left ast.Expression, minPrec int) ast.Expression {
	for {
		op, prec, rightAssoc, ok := binaryOpFor(p.cur().Type)
		if !ok || prec < minPrec {
			return left
		}
		p.advance()

		nextMin := prec + 1
		if rightAssoc {
			nextMin = prec
		}

		right := p.parseUnaryExpression()
		if right != nil {
			right = p.parseBinaryFrom(right, nextMin)
		}

		span := position.Between(left.Span().Start, p.prevEnd)
		left = ast.NewBinaryExpr(span, left, op, right)
	}
}

// parseUnaryExpression parses `-x`, `Not x`, or a postfix expression.
func (p *Parser) parseUnaryExpression() ast.Expression {
	switch p.cur().Type {
	case lexer.TokenMinus:
		start := p.advance().Span.Start
		operand := p.parseUnaryExpression()
		return ast.NewUnaryExpr(p.spanFrom(start), ast.OpNegate, operand)
	case lexer.TokenNot:
		start := p.advance().Span.Start
		operand := p.parseUnaryExpression()
		return ast.NewUnaryExpr(p.spanFrom(start), ast.OpNot, operand)
	}
	return p.parsePostfixExpression()
}

// parsePostfixExpression parses a primary expression followed by any
// number of member accesses, index subscripts, and call argument lists.
func (p *Parser) parsePostfixExpression() ast.Expression {
	expr := p.parsePrimaryExpression()
	if expr == nil {
		return nil
	}

	for {
		switch p.cur().Type {
		case lexer.TokenDot:
			p.advance()
			memberTok := p.cur()
			if !isNameToken(memberTok) {
				p.errorf(memberTok.Span, "member access", "expected member name, got %s", memberTok.Type)
				return expr
			}
			p.advance()
			span := position.Between(expr.Span().Start, p.prevEnd)
			expr = ast.NewMemberAccess(span, expr, memberTok.Lexeme, memberTok.Span)

		case lexer.TokenLBracket:
			p.advance()
			indexes := make([]ast.Expression, 0, 1)
			if !p.at(lexer.TokenRBracket) {
				for {
					if ix := p.parseExpression(); ix != nil {
						indexes = append(indexes, ix)
					}
					if _, ok := p.match(lexer.TokenComma); !ok {
						break
					}
				}
			}
			p.expect(lexer.TokenRBracket, "index expression")
			span := position.Between(expr.Span().Start, p.prevEnd)
			expr = ast.NewIndexExpr(span, expr, indexes)

		case lexer.TokenLParen:
			args := p.parseArgumentList()
			span := position.Between(expr.Span().Start, p.prevEnd)
			expr = ast.NewFunctionCall(span, expr, args)

		default:
			return expr
		}
	}
}

// parseArgumentList parses `(expr, expr, ...)`.
func (p *Parser) parseArgumentList() []ast.Expression {
	args := make([]ast.Expression, 0)
	p.expect(lexer.TokenLParen, "argument list")
	if p.at(lexer.TokenRParen) {
		p.advance()
		return args
	}
	for {
		if arg := p.parseExpression(); arg != nil {
			args = append(args, arg)
		}
		if _, ok := p.match(lexer.TokenComma); !ok {
			break
		}
	}
	p.expect(lexer.TokenRParen, "argument list")
	return args
}

// parsePrimaryExpression parses literals, identifiers, parenthesized
// expressions, create expressions, and dynamic references.
func (p *Parser) parsePrimaryExpression() ast.Expression {
	tok := p.cur()

	switch tok.Type {
	case lexer.TokenInteger:
		p.advance()
		return ast.NewLiteral(tok.Span, ast.LiteralInteger, tok.Lexeme, tok.Lexeme)
	case lexer.TokenDecimal:
		p.advance()
		return ast.NewLiteral(tok.Span, ast.LiteralDecimal, tok.Lexeme, tok.Lexeme)
	case lexer.TokenString:
		p.advance()
		return ast.NewLiteral(tok.Span, ast.LiteralString, tok.Lexeme, lexer.StringValue(tok.Lexeme))
	case lexer.TokenBool:
		p.advance()
		return ast.NewLiteral(tok.Span, ast.LiteralBool, tok.Lexeme, tok.Lexeme)
	case lexer.TokenNull:
		p.advance()
		return ast.NewLiteral(tok.Span, ast.LiteralNull, tok.Lexeme, tok.Lexeme)

	case lexer.TokenVariable:
		p.advance()
		return ast.NewIdentifier(tok.Span, tok.Lexeme, ast.IdentUserVariable)
	case lexer.TokenSystemVar:
		p.advance()
		return ast.NewIdentifier(tok.Span, tok.Lexeme, ast.IdentSystemVariable)
	case lexer.TokenIdentifier:
		p.advance()
		return ast.NewIdentifier(tok.Span, tok.Lexeme, ast.IdentPlain)

	case lexer.TokenCreate:
		return p.parseCreateExpression()

	case lexer.TokenLParen:
		start := p.advance().Span.Start
		inner := p.parseExpression()
		p.expect(lexer.TokenRParen, "parenthesized expression")
		return ast.NewParenExpr(p.spanFrom(start), inner)

	case lexer.TokenAt:
		start := p.advance().Span.Start
		operand := p.parseUnaryExpression()
		return ast.NewAtExpr(p.spanFrom(start), operand)
	}

	p.errorf(tok.Span, "expression", "expected expression, got %s", tok.Type)
	return nil
}

// parseCreateExpression parses `create PKG:SUB:Class(args...)`.
func (p *Parser) parseCreateExpression() ast.Expression {
	start := p.cur().Span.Start
	p.advance() // create

	pathStart := p.cur().Span.Start
	first, ok := p.expect(lexer.TokenIdentifier, "create expression")
	if !ok {
		return nil
	}
	parts := []string{first.Lexeme}
	for p.at(lexer.TokenColon) {
		p.advance()
		next, ok := p.expect(lexer.TokenIdentifier, "create expression")
		if !ok {
			break
		}
		parts = append(parts, next.Lexeme)
	}
	class := ast.NewAppClassType(position.Between(pathStart, p.prevEnd), parts)

	var args []ast.Expression
	if p.at(lexer.TokenLParen) {
		args = p.parseArgumentList()
	}

	return ast.NewObjectCreate(p.spanFrom(start), class, args)
}

// isNameToken reports whether a token can serve as a member name after a
// dot. Keywords qualify: `.Value` and `.Name` are ordinary members.
func isNameToken(tok lexer.Token) bool {
	if tok.Type == lexer.TokenIdentifier {
		return true
	}
	if tok.Lexeme == "" {
		return false
	}
	c := tok.Lexeme[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
