// Package lexer implements the PeopleCode lexical analyzer. The scanner is
// byte-driven and never fails hard: unrecognized input produces TokenError
// tokens and the scan continues, so the parser can report a diagnostic at
// that position instead of aborting the whole pass.
package lexer

import (
	"fmt"
	"strings"

	"github.com/pcodetools/pcode/internal/position"
)

// LexError records a lexical problem (unterminated string, stray character).
type LexError struct {
	Message string
	Span    position.Span
}

func (e LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

// Lexer represents the lexical analyzer. One Lexer scans one source text;
// it is not restartable.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // line of current char (1-based)
	column       int  // column of current char (1-based)

	filename string

	// Comments are kept off the significant token stream. Consumers scan
	// them for suppression directives.
	comments []Token
	errors   []LexError
}

// New creates a new lexer instance.
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with filename for error
// reporting.
func NewWithFilename(input, filename string) *Lexer {
	l := &Lexer{
		input:    input,
		line:     1,
		column:   0,
		filename: filename,
	}
	l.readChar()
	return l
}

// Tokenize scans the whole input and returns the significant token stream,
// terminated by a single EOF token. Comments are accumulated separately and
// available via Comments.
func (l *Lexer) Tokenize() []Token {
	tokens := make([]Token, 0, 64)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

// Comments returns the comment tokens collected so far, in source order.
func (l *Lexer) Comments() []Token {
	return l.comments
}

// Errors returns the lexical errors collected so far.
func (l *Lexer) Errors() []LexError {
	return l.errors
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0 // NUL represents EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing position.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// currentPos captures the position of the current character.
func (l *Lexer) currentPos() position.Position {
	offset := l.position
	if offset > len(l.input) {
		offset = len(l.input)
	}
	return position.Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.column,
		Offset:   offset,
	}
}

// skipWhitespace skips spaces, tabs, and line breaks. Line breaks carry no
// syntactic meaning in PeopleCode; statements end at semicolons.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// isIdentChar reports whether ch may appear inside an identifier. Record
// and field names may contain '_' and '#'.
func isIdentChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '#'
}

// NextToken scans the input and returns the next significant token.
// Comments are consumed and recorded on the side stream.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()

		startPos := l.currentPos()

		switch {
		case l.ch == 0:
			return Token{Type: TokenEOF, Lexeme: "", Span: position.Between(startPos, startPos)}

		case l.ch == '/' && l.peekChar() == '*':
			l.recordComment(l.readBlockComment("/*", "*/"), startPos)
			continue
		case l.ch == '/' && l.peekChar() == '+':
			// Method annotation comment inserted by Application Designer.
			l.recordComment(l.readBlockComment("/+", "+/"), startPos)
			continue
		case l.ch == '<' && l.peekChar() == '*':
			l.recordComment(l.readBlockComment("<*", "*>"), startPos)
			continue

		case l.ch == '&':
			return l.readVariable(startPos)
		case l.ch == '%':
			return l.readSystemVar(startPos)
		case l.ch == '"':
			return l.readString(startPos)
		case isDigit(l.ch):
			return l.readNumber(startPos)
		case isLetter(l.ch) || l.ch == '_':
			tok, isComment := l.readWord(startPos)
			if isComment {
				continue
			}
			return tok

		default:
			return l.readOperator(startPos)
		}
	}
}

// readOperator scans operator and punctuation tokens.
func (l *Lexer) readOperator(startPos position.Position) Token {
	mk := func(tt TokenType, lexeme string, advance int) Token {
		for i := 0; i < advance; i++ {
			l.readChar()
		}
		return Token{Type: tt, Lexeme: lexeme, Span: position.Between(startPos, l.currentPos())}
	}

	switch l.ch {
	case '=':
		return mk(TokenEquals, "=", 1)
	case '<':
		switch l.peekChar() {
		case '>':
			return mk(TokenNotEqual, "<>", 2)
		case '=':
			return mk(TokenLessEqual, "<=", 2)
		}
		return mk(TokenLess, "<", 1)
	case '>':
		if l.peekChar() == '=' {
			return mk(TokenGreaterEqual, ">=", 2)
		}
		return mk(TokenGreater, ">", 1)
	case '!':
		if l.peekChar() == '=' {
			return mk(TokenNotEqual, "!=", 2)
		}
	case '+':
		return mk(TokenPlus, "+", 1)
	case '-':
		return mk(TokenMinus, "-", 1)
	case '*':
		if l.peekChar() == '*' {
			return mk(TokenPower, "**", 2)
		}
		return mk(TokenMul, "*", 1)
	case '/':
		return mk(TokenDiv, "/", 1)
	case '|':
		return mk(TokenPipe, "|", 1)
	case '@':
		return mk(TokenAt, "@", 1)
	case '(':
		return mk(TokenLParen, "(", 1)
	case ')':
		return mk(TokenRParen, ")", 1)
	case '[':
		return mk(TokenLBracket, "[", 1)
	case ']':
		return mk(TokenRBracket, "]", 1)
	case ',':
		return mk(TokenComma, ",", 1)
	case ';':
		return mk(TokenSemicolon, ";", 1)
	case ':':
		return mk(TokenColon, ":", 1)
	case '.':
		return mk(TokenDot, ".", 1)
	}

	// Unrecognized character: emit an error token and continue scanning.
	lexeme := string(l.ch)
	l.readChar()
	tok := Token{Type: TokenError, Lexeme: lexeme, Span: position.Between(startPos, l.currentPos())}
	l.addError(fmt.Sprintf("unexpected character %q", lexeme), tok.Span)
	return tok
}

// readWord scans a bare word: keyword or identifier. Hyphenated keywords
// (End-If, When-Other) are joined into one token. The REM keyword consumes
// the rest of the statement as a comment; readWord reports that case via
// its second return value.
func (l *Lexer) readWord(startPos position.Position) (Token, bool) {
	start := l.position
	for isIdentChar(l.ch) {
		l.readChar()
	}
	word := l.input[start:l.position]
	lower := strings.ToLower(word)

	// REM comments run through the terminating semicolon.
	if lower == "rem" || lower == "remark" {
		for l.ch != ';' && l.ch != 0 {
			l.readChar()
		}
		if l.ch == ';' {
			l.readChar()
		}
		l.recordComment(l.input[start:l.position], startPos)
		return Token{}, true
	}

	// Join "End"/"When" with a following hyphenated word into one keyword.
	if hyphenJoiners[lower] && l.ch == '-' && isLetter(l.peekChar()) {
		l.readChar() // consume '-'
		for isIdentChar(l.ch) {
			l.readChar()
		}
		word = l.input[start:l.position]
	}

	tok := Token{
		Type:   LookupKeyword(word),
		Lexeme: word,
		Span:   position.Between(startPos, l.currentPos()),
	}
	return tok, false
}

// readVariable scans an &-prefixed variable name.
func (l *Lexer) readVariable(startPos position.Position) Token {
	start := l.position
	l.readChar() // consume '&'
	if !isLetter(l.ch) && l.ch != '_' {
		span := position.Between(startPos, l.currentPos())
		l.addError("expected variable name after '&'", span)
		return Token{Type: TokenError, Lexeme: "&", Span: span}
	}
	for isIdentChar(l.ch) {
		l.readChar()
	}
	return Token{
		Type:   TokenVariable,
		Lexeme: l.input[start:l.position],
		Span:   position.Between(startPos, l.currentPos()),
	}
}

// readSystemVar scans a %-prefixed system variable or constant.
func (l *Lexer) readSystemVar(startPos position.Position) Token {
	start := l.position
	l.readChar() // consume '%'
	if !isLetter(l.ch) {
		span := position.Between(startPos, l.currentPos())
		l.addError("expected name after '%'", span)
		return Token{Type: TokenError, Lexeme: "%", Span: span}
	}
	for isIdentChar(l.ch) {
		l.readChar()
	}
	return Token{
		Type:   TokenSystemVar,
		Lexeme: l.input[start:l.position],
		Span:   position.Between(startPos, l.currentPos()),
	}
}

// readString scans a double-quoted string literal. Two consecutive quote
// characters inside the literal represent one literal quote, not a
// terminator. An unterminated literal yields a TokenError spanning from
// the opening quote to end of input.
func (l *Lexer) readString(startPos position.Position) Token {
	start := l.position
	l.readChar() // consume opening quote
	terminated := false

	for l.ch != 0 {
		if l.ch == '"' {
			if l.peekChar() == '"' {
				l.readChar() // first quote of the doubled pair
				l.readChar() // second quote
				continue
			}
			l.readChar() // closing quote
			terminated = true
			break
		}
		l.readChar()
	}

	lexeme := l.input[start:l.position]
	span := position.Between(startPos, l.currentPos())

	if !terminated {
		l.addError("unterminated string literal", span)
		return Token{Type: TokenError, Lexeme: lexeme, Span: span}
	}
	return Token{Type: TokenString, Lexeme: lexeme, Span: span}
}

// readNumber scans an integer or decimal literal.
func (l *Lexer) readNumber(startPos position.Position) Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}

	tt := TokenInteger
	if l.ch == '.' && isDigit(l.peekChar()) {
		tt = TokenDecimal
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	lexeme := l.input[start:l.position]
	span := position.Between(startPos, l.currentPos())

	// Letters trailing a number make the whole run a malformed literal.
	if isLetter(l.ch) || l.ch == '_' {
		for isIdentChar(l.ch) {
			l.readChar()
		}
		lexeme = l.input[start:l.position]
		span = position.Between(startPos, l.currentPos())
		l.addError(fmt.Sprintf("malformed numeric literal %q", lexeme), span)
		return Token{Type: TokenError, Lexeme: lexeme, Span: span}
	}

	return Token{Type: tt, Lexeme: lexeme, Span: span}
}

// readBlockComment consumes a delimited comment and returns its text. An
// unterminated comment runs to end of input and is recorded as an error.
func (l *Lexer) readBlockComment(open, close string) string {
	start := l.position
	startPos := l.currentPos()
	l.readChar() // first delimiter char
	l.readChar() // second delimiter char

	for {
		if l.ch == 0 {
			l.addError(fmt.Sprintf("unterminated %s comment", open),
				position.Between(startPos, l.currentPos()))
			break
		}
		if l.ch == close[0] && l.peekChar() == close[1] {
			l.readChar()
			l.readChar()
			break
		}
		l.readChar()
	}
	return l.input[start:l.position]
}

// recordComment appends a comment token to the side stream.
func (l *Lexer) recordComment(text string, startPos position.Position) {
	l.comments = append(l.comments, Token{
		Type:   TokenComment,
		Lexeme: text,
		Span:   position.Between(startPos, l.currentPos()),
	})
}

// addError records a lexical error.
func (l *Lexer) addError(message string, span position.Span) {
	l.errors = append(l.errors, LexError{Message: message, Span: span})
}

// StringValue decodes a string literal lexeme (including its quotes) into
// its runtime value, collapsing doubled quotes.
func StringValue(lexeme string) string {
	s := strings.TrimPrefix(lexeme, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}
