package parser

import (
	"github.com/pcodetools/pcode/internal/ast"
	"github.com/pcodetools/pcode/internal/lexer"
)

// parseClassDecl parses `class Name [extends T] [implements T] ... end-class;`.
func (p *Parser) parseClassDecl() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // class

	nameTok, ok := p.expect(lexer.TokenIdentifier, "class declaration")
	if !ok {
		p.syncToStatementBoundary()
		return nil
	}

	var extends, implements ast.TypeNode
	if _, ok := p.match(lexer.TokenExtends); ok {
		extends = p.parseTypeAnnotation()
	}
	if _, ok := p.match(lexer.TokenImplements); ok {
		implements = p.parseTypeAnnotation()
	}

	methods, props, instances, constants := p.parseClassBody(lexer.TokenEndClass)

	p.expect(lexer.TokenEndClass, "class declaration")
	p.match(lexer.TokenSemicolon)

	return ast.NewClassDecl(p.spanFrom(start), nameTok.Lexeme, nameTok.Span,
		extends, implements, methods, props, instances, constants)
}

// parseInterfaceDecl parses `interface Name [extends T] ... end-interface;`.
func (p *Parser) parseInterfaceDecl() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // interface

	nameTok, ok := p.expect(lexer.TokenIdentifier, "interface declaration")
	if !ok {
		p.syncToStatementBoundary()
		return nil
	}

	var extends ast.TypeNode
	if _, ok := p.match(lexer.TokenExtends); ok {
		extends = p.parseTypeAnnotation()
	}

	methods, props, _, _ := p.parseClassBody(lexer.TokenEndInterface)

	p.expect(lexer.TokenEndInterface, "interface declaration")
	p.match(lexer.TokenSemicolon)

	return ast.NewInterfaceDecl(p.spanFrom(start), nameTok.Lexeme, nameTok.Span, extends, methods, props)
}

// parseClassBody parses the member declarations of a class or interface up
// to the closing token. Members before an access keyword are public.
func (p *Parser) parseClassBody(closer lexer.TokenType) (
	[]*ast.MethodHeader, []*ast.PropertyDecl, []*ast.InstanceDecl, []*ast.ConstantDecl) {

	methods := make([]*ast.MethodHeader, 0)
	props := make([]*ast.PropertyDecl, 0)
	instances := make([]*ast.InstanceDecl, 0)
	constants := make([]*ast.ConstantDecl, 0)
	access := ast.AccessPublic

	for !p.at(closer) && !p.at(lexer.TokenEOF) {
		switch p.cur().Type {
		case lexer.TokenSemicolon:
			p.advance()
		case lexer.TokenPrivate:
			access = ast.AccessPrivate
			p.advance()
		case lexer.TokenProtected:
			access = ast.AccessProtected
			p.advance()
		case lexer.TokenMethod:
			if m := p.parseMethodHeader(access); m != nil {
				methods = append(methods, m)
			}
		case lexer.TokenProperty:
			if prop := p.parsePropertyDecl(access); prop != nil {
				props = append(props, prop)
			}
		case lexer.TokenInstance:
			if inst := p.parseInstanceDecl(access); inst != nil {
				instances = append(instances, inst)
			}
		case lexer.TokenConstant:
			if c := p.parseConstantDecl(); c != nil {
				constants = append(constants, c)
			}
		default:
			p.errorf(p.cur().Span, "class body", "unexpected %s in class body", p.cur().Type)
			posBefore := p.pos
			p.syncToStatementBoundary()
			if p.pos == posBefore {
				p.advance()
			}
		}
	}

	return methods, props, instances, constants
}

// parseMethodHeader parses a method signature inside a class body:
// `method Name(&p As number, ...) [Returns type] [abstract];`.
func (p *Parser) parseMethodHeader(access ast.AccessLevel) *ast.MethodHeader {
	start := p.cur().Span.Start
	p.advance() // method

	nameTok, ok := p.expect(lexer.TokenIdentifier, "method declaration")
	if !ok {
		p.syncToStatementBoundary()
		return nil
	}

	params := p.parseParameterList()

	var returns ast.TypeNode
	if _, ok := p.match(lexer.TokenReturns); ok {
		returns = p.parseTypeAnnotation()
	}

	abstract := false
	if _, ok := p.match(lexer.TokenAbstract); ok {
		abstract = true
	}
	p.match(lexer.TokenSemicolon)

	return ast.NewMethodHeader(p.spanFrom(start), nameTok.Lexeme, nameTok.Span,
		params, returns, access, abstract)
}

// parsePropertyDecl parses `property type Name [get][set] | [readonly] [abstract];`.
func (p *Parser) parsePropertyDecl(access ast.AccessLevel) *ast.PropertyDecl {
	start := p.cur().Span.Start
	p.advance() // property

	typeSpec := p.parseTypeAnnotation()
	if typeSpec == nil {
		p.syncToStatementBoundary()
		return nil
	}

	nameTok, ok := p.expect(lexer.TokenIdentifier, "property declaration")
	if !ok {
		p.syncToStatementBoundary()
		return nil
	}

	hasGet, hasSet, readOnly, abstract := false, false, false, false
	for {
		switch p.cur().Type {
		case lexer.TokenGet:
			hasGet = true
			p.advance()
			continue
		case lexer.TokenSet:
			hasSet = true
			p.advance()
			continue
		case lexer.TokenReadonly:
			readOnly = true
			p.advance()
			continue
		case lexer.TokenAbstract:
			abstract = true
			p.advance()
			continue
		}
		break
	}
	p.match(lexer.TokenSemicolon)

	return ast.NewPropertyDecl(p.spanFrom(start), typeSpec, nameTok.Lexeme, nameTok.Span,
		hasGet, hasSet, readOnly, abstract, access)
}

// parseInstanceDecl parses `instance type &a, &b;`.
func (p *Parser) parseInstanceDecl(access ast.AccessLevel) *ast.InstanceDecl {
	start := p.cur().Span.Start
	p.advance() // instance

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
	p.match(lexer.TokenSemicolon)

	return ast.NewInstanceDecl(p.spanFrom(start), typeSpec, names, access)
}

// parseConstantDecl parses `constant &NAME = literal;`.
func (p *Parser) parseConstantDecl() *ast.ConstantDecl {
	start := p.cur().Span.Start
	p.advance() // constant

	nameTok, ok := p.expect(lexer.TokenVariable, "constant declaration")
	if !ok {
		p.syncToStatementBoundary()
		return nil
	}
	name := ast.NewVariableName(nameTok.Span, nameTok.Lexeme)

	if _, ok := p.expect(lexer.TokenEquals, "constant declaration"); !ok {
		p.syncToStatementBoundary()
		return nil
	}

	value := p.parseExpression()
	p.match(lexer.TokenSemicolon)

	return ast.NewConstantDecl(p.spanFrom(start), name, value)
}

// parseMethodImpl parses a method or property accessor implementation:
// `method Name ... end-method;`, `get Name ... end-get;`,
// `set Name ... end-set;`.
func (p *Parser) parseMethodImpl(kind ast.MethodImplKind) ast.Statement {
	start := p.cur().Span.Start
	p.advance() // method / get / set

	nameTok, ok := p.expect(lexer.TokenIdentifier, "method implementation")
	if !ok {
		p.syncToStatementBoundary()
		return nil
	}

	var params []*ast.Parameter
	if p.at(lexer.TokenLParen) {
		params = p.parseParameterList()
	}

	var returns ast.TypeNode
	if _, ok := p.match(lexer.TokenReturns); ok {
		returns = p.parseTypeAnnotation()
	}

	var closer lexer.TokenType
	switch kind {
	case ast.ImplGetter:
		closer = lexer.TokenEndGet
	case ast.ImplSetter:
		closer = lexer.TokenEndSet
	default:
		closer = lexer.TokenEndMethod
	}

	body := p.parseBlock(closer)
	p.expect(closer, "method implementation")
	p.match(lexer.TokenSemicolon)

	return ast.NewMethodImpl(p.spanFrom(start), kind, nameTok.Lexeme, nameTok.Span, params, returns, body)
}

// parseFunctionDecl parses `Function Name(...) [Returns type] ... End-Function;`.
func (p *Parser) parseFunctionDecl() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // function

	nameTok, ok := p.expect(lexer.TokenIdentifier, "function declaration")
	if !ok {
		p.syncToStatementBoundary()
		return nil
	}

	var params []*ast.Parameter
	if p.at(lexer.TokenLParen) {
		params = p.parseParameterList()
	}

	var returns ast.TypeNode
	if _, ok := p.match(lexer.TokenReturns); ok {
		returns = p.parseTypeAnnotation()
	}
	p.match(lexer.TokenSemicolon)

	body := p.parseBlock(lexer.TokenEndFunction)
	p.expect(lexer.TokenEndFunction, "function declaration")
	p.match(lexer.TokenSemicolon)

	return ast.NewFunctionDecl(p.spanFrom(start), nameTok.Lexeme, nameTok.Span, params, returns, body)
}

// parseParameterList parses `(&a As type [out], ...)`.
func (p *Parser) parseParameterList() []*ast.Parameter {
	params := make([]*ast.Parameter, 0)

	if _, ok := p.expect(lexer.TokenLParen, "parameter list"); !ok {
		return params
	}
	if p.at(lexer.TokenRParen) {
		p.advance()
		return params
	}

	for {
		if param := p.parseParameter(); param != nil {
			params = append(params, param)
		}
		if _, ok := p.match(lexer.TokenComma); !ok {
			break
		}
	}
	p.expect(lexer.TokenRParen, "parameter list")
	return params
}

// parseParameter parses one `&name [As type] [out]` formal parameter.
func (p *Parser) parseParameter() *ast.Parameter {
	start := p.cur().Span.Start

	nameTok, ok := p.expect(lexer.TokenVariable, "parameter")
	if !ok {
		// Skip to the next comma or closing paren.
		for !p.atAny(lexer.TokenComma, lexer.TokenRParen, lexer.TokenEOF) {
			p.advance()
		}
		return nil
	}
	name := ast.NewVariableName(nameTok.Span, nameTok.Lexeme)

	var typeSpec ast.TypeNode
	if _, ok := p.match(lexer.TokenAs); ok {
		typeSpec = p.parseTypeAnnotation()
	}

	mode := ast.ModeValue
	switch p.cur().Type {
	case lexer.TokenOut:
		mode = ast.ModeOut
		p.advance()
	case lexer.TokenRef:
		mode = ast.ModeRef
		p.advance()
	case lexer.TokenValue:
		p.advance()
	}

	return ast.NewParameter(p.spanFrom(start), name, typeSpec, mode)
}

// parseVariableNameList parses `&a, &b, &c`.
func (p *Parser) parseVariableNameList() []*ast.VariableName {
	names := make([]*ast.VariableName, 0, 1)
	for {
		tok, ok := p.expect(lexer.TokenVariable, "variable declaration")
		if !ok {
			return names
		}
		names = append(names, ast.NewVariableName(tok.Span, tok.Lexeme))
		if _, ok := p.match(lexer.TokenComma); !ok {
			return names
		}
	}
}

// parseTypeAnnotation parses a type reference: a builtin name, an
// `array of ...` chain, or a qualified application class path.
func (p *Parser) parseTypeAnnotation() ast.TypeNode {
	start := p.cur().Span.Start

	if p.at(lexer.TokenArray) {
		// `array of array of X` collapses into one node with dims=2.
		dims := 0
		var elem ast.TypeNode
		for p.at(lexer.TokenArray) {
			p.advance()
			dims++
			if _, ok := p.match(lexer.TokenOf); !ok {
				break
			}
			if !p.at(lexer.TokenArray) {
				elem = p.parseTypeAnnotation()
				break
			}
		}
		return ast.NewArrayType(p.spanFrom(start), dims, elem)
	}

	// Component doubles as a scope keyword and an object type name, so a
	// plain expect on IDENTIFIER would reject `Local Component &c`.
	var tok lexer.Token
	if p.at(lexer.TokenIdentifier) || p.at(lexer.TokenComponent) {
		tok = p.advance()
	} else {
		p.errorf(p.cur().Span, "type annotation", "expected %s, got %s",
			lexer.TokenIdentifier, p.cur().Type)
		return nil
	}

	if p.at(lexer.TokenColon) {
		parts := []string{tok.Lexeme}
		for p.at(lexer.TokenColon) {
			p.advance()
			next, ok := p.expect(lexer.TokenIdentifier, "application class path")
			if !ok {
				break
			}
			parts = append(parts, next.Lexeme)
		}
		return ast.NewAppClassType(p.spanFrom(start), parts)
	}

	return ast.NewBuiltInType(tok.Span, tok.Lexeme)
}
