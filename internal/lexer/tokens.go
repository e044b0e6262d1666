package lexer

import (
	"fmt"
	"strings"

	"github.com/pcodetools/pcode/internal/position"
)

// TokenType represents the type of a token.
type TokenType int

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// Token types for the PeopleCode language.
const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError
	TokenComment

	// Literals and identifiers
	TokenIdentifier // bare identifier: function names, types, members
	TokenVariable   // &-prefixed user variable
	TokenSystemVar  // %-prefixed system variable or constant
	TokenInteger
	TokenDecimal
	TokenString
	TokenBool
	TokenNull

	// Declaration keywords
	TokenLocal
	TokenGlobal
	TokenComponent
	TokenInstance
	TokenConstant
	TokenDeclare
	TokenFunction
	TokenEndFunction
	TokenPeopleCode
	TokenLibrary
	TokenReturns
	TokenImport

	// Class keywords
	TokenClass
	TokenEndClass
	TokenInterface
	TokenEndInterface
	TokenExtends
	TokenImplements
	TokenMethod
	TokenEndMethod
	TokenProperty
	TokenGet
	TokenEndGet
	TokenSet
	TokenEndSet
	TokenReadonly
	TokenAbstract
	TokenPrivate
	TokenProtected
	TokenOut
	TokenRef
	TokenValue
	TokenCreate

	// Statement keywords
	TokenIf
	TokenThen
	TokenElse
	TokenEndIf
	TokenFor
	TokenTo
	TokenStep
	TokenEndFor
	TokenWhile
	TokenEndWhile
	TokenRepeat
	TokenUntil
	TokenEvaluate
	TokenWhen
	TokenWhenOther
	TokenEndEvaluate
	TokenTry
	TokenCatch
	TokenEndTry
	TokenThrow
	TokenReturn
	TokenBreak
	TokenContinue
	TokenExit
	TokenErrorKw
	TokenWarning
	TokenAs
	TokenOf
	TokenArray

	// Operator keywords
	TokenAnd
	TokenOr
	TokenNot

	// Operators
	TokenEquals // '=' : assignment in statement position, comparison elsewhere
	TokenNotEqual
	TokenLess
	TokenLessEqual
	TokenGreater
	TokenGreaterEqual
	TokenPlus
	TokenMinus
	TokenMul
	TokenDiv
	TokenPower
	TokenPipe // '|' string concatenation
	TokenAt   // '@' dynamic reference

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenSemicolon
	TokenColon
	TokenDot
)

// tokenNames provides string representations for token types.
var tokenNames = map[TokenType]string{
	TokenEOF:     "EOF",
	TokenError:   "ERROR",
	TokenComment: "COMMENT",

	TokenIdentifier: "IDENTIFIER",
	TokenVariable:   "VARIABLE",
	TokenSystemVar:  "SYSTEM_VAR",
	TokenInteger:    "INTEGER",
	TokenDecimal:    "DECIMAL",
	TokenString:     "STRING",
	TokenBool:       "BOOL",
	TokenNull:       "NULL",

	TokenLocal:       "LOCAL",
	TokenGlobal:      "GLOBAL",
	TokenComponent:   "COMPONENT",
	TokenInstance:    "INSTANCE",
	TokenConstant:    "CONSTANT",
	TokenDeclare:     "DECLARE",
	TokenFunction:    "FUNCTION",
	TokenEndFunction: "END_FUNCTION",
	TokenPeopleCode:  "PEOPLECODE",
	TokenLibrary:     "LIBRARY",
	TokenReturns:     "RETURNS",
	TokenImport:      "IMPORT",

	TokenClass:        "CLASS",
	TokenEndClass:     "END_CLASS",
	TokenInterface:    "INTERFACE",
	TokenEndInterface: "END_INTERFACE",
	TokenExtends:      "EXTENDS",
	TokenImplements:   "IMPLEMENTS",
	TokenMethod:       "METHOD",
	TokenEndMethod:    "END_METHOD",
	TokenProperty:     "PROPERTY",
	TokenGet:          "GET",
	TokenEndGet:       "END_GET",
	TokenSet:          "SET",
	TokenEndSet:       "END_SET",
	TokenReadonly:     "READONLY",
	TokenAbstract:     "ABSTRACT",
	TokenPrivate:      "PRIVATE",
	TokenProtected:    "PROTECTED",
	TokenOut:          "OUT",
	TokenRef:          "REF",
	TokenValue:        "VALUE",
	TokenCreate:       "CREATE",

	TokenIf:          "IF",
	TokenThen:        "THEN",
	TokenElse:        "ELSE",
	TokenEndIf:       "END_IF",
	TokenFor:         "FOR",
	TokenTo:          "TO",
	TokenStep:        "STEP",
	TokenEndFor:      "END_FOR",
	TokenWhile:       "WHILE",
	TokenEndWhile:    "END_WHILE",
	TokenRepeat:      "REPEAT",
	TokenUntil:       "UNTIL",
	TokenEvaluate:    "EVALUATE",
	TokenWhen:        "WHEN",
	TokenWhenOther:   "WHEN_OTHER",
	TokenEndEvaluate: "END_EVALUATE",
	TokenTry:         "TRY",
	TokenCatch:       "CATCH",
	TokenEndTry:      "END_TRY",
	TokenThrow:       "THROW",
	TokenReturn:      "RETURN",
	TokenBreak:       "BREAK",
	TokenContinue:    "CONTINUE",
	TokenExit:        "EXIT",
	TokenErrorKw:     "ERROR_KW",
	TokenWarning:     "WARNING",
	TokenAs:          "AS",
	TokenOf:          "OF",
	TokenArray:       "ARRAY",

	TokenAnd: "AND",
	TokenOr:  "OR",
	TokenNot: "NOT",

	TokenEquals:       "EQUALS",
	TokenNotEqual:     "NOT_EQUAL",
	TokenLess:         "LESS",
	TokenLessEqual:    "LESS_EQUAL",
	TokenGreater:      "GREATER",
	TokenGreaterEqual: "GREATER_EQUAL",
	TokenPlus:         "PLUS",
	TokenMinus:        "MINUS",
	TokenMul:          "MUL",
	TokenDiv:          "DIV",
	TokenPower:        "POWER",
	TokenPipe:         "PIPE",
	TokenAt:           "AT",

	TokenLParen:    "LPAREN",
	TokenRParen:    "RPAREN",
	TokenLBracket:  "LBRACKET",
	TokenRBracket:  "RBRACKET",
	TokenComma:     "COMMA",
	TokenSemicolon: "SEMICOLON",
	TokenColon:     "COLON",
	TokenDot:       "DOT",
}

// keywords maps lower-cased keywords to their token types. PeopleCode is
// case-insensitive, so lookup always folds the lexeme first.
var keywords = map[string]TokenType{
	"local":         TokenLocal,
	"global":        TokenGlobal,
	"component":     TokenComponent,
	"instance":      TokenInstance,
	"constant":      TokenConstant,
	"declare":       TokenDeclare,
	"function":      TokenFunction,
	"end-function":  TokenEndFunction,
	"peoplecode":    TokenPeopleCode,
	"library":       TokenLibrary,
	"returns":       TokenReturns,
	"import":        TokenImport,
	"class":         TokenClass,
	"end-class":     TokenEndClass,
	"interface":     TokenInterface,
	"end-interface": TokenEndInterface,
	"extends":       TokenExtends,
	"implements":    TokenImplements,
	"method":        TokenMethod,
	"end-method":    TokenEndMethod,
	"property":      TokenProperty,
	"get":           TokenGet,
	"end-get":       TokenEndGet,
	"set":           TokenSet,
	"end-set":       TokenEndSet,
	"readonly":      TokenReadonly,
	"abstract":      TokenAbstract,
	"private":       TokenPrivate,
	"protected":     TokenProtected,
	"out":           TokenOut,
	"ref":           TokenRef,
	"value":         TokenValue,
	"create":        TokenCreate,
	"if":            TokenIf,
	"then":          TokenThen,
	"else":          TokenElse,
	"end-if":        TokenEndIf,
	"for":           TokenFor,
	"to":            TokenTo,
	"step":          TokenStep,
	"end-for":       TokenEndFor,
	"while":         TokenWhile,
	"end-while":     TokenEndWhile,
	"repeat":        TokenRepeat,
	"until":         TokenUntil,
	"evaluate":      TokenEvaluate,
	"when":          TokenWhen,
	"when-other":    TokenWhenOther,
	"end-evaluate":  TokenEndEvaluate,
	"try":           TokenTry,
	"catch":         TokenCatch,
	"end-try":       TokenEndTry,
	"throw":         TokenThrow,
	"return":        TokenReturn,
	"break":         TokenBreak,
	"continue":      TokenContinue,
	"exit":          TokenExit,
	"error":         TokenErrorKw,
	"warning":       TokenWarning,
	"as":            TokenAs,
	"of":            TokenOf,
	"array":         TokenArray,
	"and":           TokenAnd,
	"or":            TokenOr,
	"not":           TokenNot,
	"true":          TokenBool,
	"false":         TokenBool,
	"null":          TokenNull,
}

// hyphenJoiners are the word prefixes that may combine with a following
// hyphenated word into a single keyword token (End-If, When-Other, ...).
var hyphenJoiners = map[string]bool{
	"end":  true,
	"when": true,
}

// Token represents a lexical token with position information. Tokens are
// immutable once produced.
type Token struct {
	Type   TokenType
	Lexeme string
	Span   position.Span
}

// String returns a string representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Lexeme: %q, Span: %s}", t.Type, t.Lexeme, t.Span)
}

// Is reports whether the token has the given type.
func (t Token) Is(tt TokenType) bool {
	return t.Type == tt
}

// LookupKeyword resolves a word to its keyword token type, or
// TokenIdentifier if the word is not a keyword.
func LookupKeyword(word string) TokenType {
	if tt, ok := keywords[strings.ToLower(word)]; ok {
		return tt
	}
	return TokenIdentifier
}
