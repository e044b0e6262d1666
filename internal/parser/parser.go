// Package parser implements the PeopleCode recursive descent parser. One
// function per grammar production; errors are collected, never thrown, and
// recovery synchronizes on statement and block boundary tokens so one
// malformed construct costs roughly one statement.
package parser

import (
	"fmt"

	"github.com/pcodetools/pcode/internal/ast"
	"github.com/pcodetools/pcode/internal/lexer"
	"github.com/pcodetools/pcode/internal/position"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Message string
	Span    position.Span
	Context string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Span, e.Message)
}

// Parser is the recursive descent parser over a finite token stream.
type Parser struct {
	tokens []lexer.Token
	pos    int
	errors []*ParseError

	// prevEnd is the end position of the last consumed token; node spans
	// close here so they bound their source text exactly.
	prevEnd position.Position
}

// New creates a parser over a token stream. The stream must be terminated
// by an EOF token, as produced by lexer.Tokenize.
func New(tokens []lexer.Token) *Parser {
	if len(tokens) == 0 {
		tokens = []lexer.Token{{Type: lexer.TokenEOF}}
	}
	return &Parser{tokens: tokens}
}

// ParseSource lexes and parses source text in one step. Lexical errors are
// folded into the returned parse error list.
func ParseSource(source, filename string) (*ast.Program, []*ParseError) {
	l := lexer.NewWithFilename(source, filename)
	tokens := l.Tokenize()

	p := New(tokens)
	program, errs := p.Parse()

	lexErrs := make([]*ParseError, 0, len(l.Errors()))
	for _, le := range l.Errors() {
		lexErrs = append(lexErrs, &ParseError{Message: le.Message, Span: le.Span, Context: "lexing"})
	}
	return program, append(lexErrs, errs...)
}

// Parse parses the token stream and returns the program root plus all
// collected errors. The root is always non-nil.
func (p *Parser) Parse() (*ast.Program, []*ParseError) {
	return p.parseProgram(), p.errors
}

// Errors returns the collected parse errors.
func (p *Parser) Errors() []*ParseError { return p.errors }

// ====== Token helpers ======

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) at(tt lexer.TokenType) bool {
	return p.cur().Type == tt
}

func (p *Parser) atAny(tts ...lexer.TokenType) bool {
	for _, tt := range tts {
		if p.cur().Type == tt {
			return true
		}
	}
	return false
}

// advance consumes the current token and returns it.
func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if tok.Type != lexer.TokenEOF {
		p.pos++
	}
	p.prevEnd = tok.Span.End
	return tok
}

// match consumes the current token if it has the given type.
func (p *Parser) match(tt lexer.TokenType) (lexer.Token, bool) {
	if p.at(tt) {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

// expect consumes the current token if it matches, or records an error.
func (p *Parser) expect(tt lexer.TokenType, context string) (lexer.Token, bool) {
	if p.at(tt) {
		return p.advance(), true
	}
	p.errorf(p.cur().Span, context, "expected %s, got %s", tt, p.cur().Type)
	return lexer.Token{}, false
}

func (p *Parser) errorf(span position.Span, context, format string, args ...any) {
	p.errors = append(p.errors, &ParseError{
		Message: fmt.Sprintf(format, args...),
		Span:    span,
		Context: context,
	})
}

// spanFrom closes a node span from a start position to the end of the last
// consumed token.
func (p *Parser) spanFrom(start position.Position) position.Span {
	return position.Between(start, p.prevEnd)
}

// statementBoundary holds the synchronization set: tokens that reliably
// begin or end a statement. After an error the parser skips to one of
// these and resumes.
var statementBoundary = []lexer.TokenType{
	lexer.TokenSemicolon,
	lexer.TokenEndIf,
	lexer.TokenEndFor,
	lexer.TokenEndWhile,
	lexer.TokenEndEvaluate,
	lexer.TokenEndTry,
	lexer.TokenEndMethod,
	lexer.TokenEndFunction,
	lexer.TokenEndClass,
	lexer.TokenEndInterface,
	lexer.TokenEndGet,
	lexer.TokenEndSet,
	lexer.TokenElse,
	lexer.TokenWhen,
	lexer.TokenWhenOther,
	lexer.TokenCatch,
	lexer.TokenUntil,
}

// syncToStatementBoundary skips tokens until a statement boundary. A
// semicolon is consumed so parsing resumes at the next statement; a block
// closer is left for the enclosing production to consume.
func (p *Parser) syncToStatementBoundary() {
	for !p.at(lexer.TokenEOF) {
		for _, tt := range statementBoundary {
			if p.at(tt) {
				if tt == lexer.TokenSemicolon {
					p.advance()
				}
				return
			}
		}
		p.advance()
	}
}

// ====== Program ======

// parseProgram parses an entire program: imports, then an optional class
// or interface declaration with its method implementations, functions,
// and top-level statements.
func (p *Parser) parseProgram() *ast.Program {
	start := p.cur().Span.Start
	p.prevEnd = start

	imports := make([]*ast.ImportDecl, 0)
	stmts := make([]ast.Statement, 0)

	for !p.at(lexer.TokenEOF) {
		switch p.cur().Type {
		case lexer.TokenSemicolon:
			p.advance()
		case lexer.TokenImport:
			if imp := p.parseImport(); imp != nil {
				imports = append(imports, imp)
			}
		case lexer.TokenError:
			tok := p.advance()
			p.errorf(tok.Span, "program", "unexpected input %q", tok.Lexeme)
			p.syncToStatementBoundary()
		default:
			if stmt := p.parseTopLevel(); stmt != nil {
				stmts = append(stmts, stmt)
			}
		}
	}

	// Close the program span at EOF.
	end := p.cur().Span.End
	return ast.NewProgram(position.Between(start, end), imports, stmts)
}

// parseTopLevel parses one top-level construct.
func (p *Parser) parseTopLevel() ast.Statement {
	switch p.cur().Type {
	case lexer.TokenClass:
		return p.parseClassDecl()
	case lexer.TokenInterface:
		return p.parseInterfaceDecl()
	case lexer.TokenMethod:
		return p.parseMethodImpl(ast.ImplMethod)
	case lexer.TokenGet:
		return p.parseMethodImpl(ast.ImplGetter)
	case lexer.TokenSet:
		return p.parseMethodImpl(ast.ImplSetter)
	case lexer.TokenFunction:
		return p.parseFunctionDecl()
	case lexer.TokenDeclare:
		p.parseDeclareFunction()
		return nil
	default:
		return p.parseStatement()
	}
}

// parseImport parses `import PKG:SUB:Class;` or `import PKG:*;`.
func (p *Parser) parseImport() *ast.ImportDecl {
	start := p.cur().Span.Start
	p.advance() // import

	path := make([]string, 0, 3)
	wildcard := false

	tok, ok := p.expect(lexer.TokenIdentifier, "import")
	if !ok {
		p.syncToStatementBoundary()
		return nil
	}
	path = append(path, tok.Lexeme)

	for p.at(lexer.TokenColon) {
		p.advance()
		if p.at(lexer.TokenMul) {
			p.advance()
			wildcard = true
			break
		}
		tok, ok := p.expect(lexer.TokenIdentifier, "import")
		if !ok {
			p.syncToStatementBoundary()
			return nil
		}
		path = append(path, tok.Lexeme)
	}

	p.expect(lexer.TokenSemicolon, "import")
	return ast.NewImportDecl(p.spanFrom(start), path, wildcard)
}

// parseDeclareFunction consumes a legacy external function declaration
// (`Declare Function F PeopleCode REC.FIELD FieldFormula;`). The reference
// carries no body or signature this core can use, so it is skipped.
func (p *Parser) parseDeclareFunction() {
	for !p.at(lexer.TokenSemicolon) && !p.at(lexer.TokenEOF) {
		p.advance()
	}
	p.match(lexer.TokenSemicolon)
}
