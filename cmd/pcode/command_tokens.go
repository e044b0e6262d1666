package main

import (
	"fmt"
	"os"

	"github.com/pcodetools/pcode/internal/lexer"
)

// TokensCmd dumps the token stream of a file, mainly for grammar
// debugging.
type TokensCmd struct {
	Path     string `arg:"" help:"PeopleCode source file" type:"existingfile"`
	Comments bool   `help:"Include the comment side stream" short:"c"`
}

func (cmd *TokensCmd) Run(ctx *Context) error {
	data, err := os.ReadFile(cmd.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", cmd.Path, err)
	}

	l := lexer.NewWithFilename(string(data), cmd.Path)
	for _, tok := range l.Tokenize() {
		fmt.Printf("%4d:%-3d %-14s %q\n",
			tok.Span.Start.Line, tok.Span.Start.Column, tok.Type, tok.Lexeme)
	}

	if cmd.Comments {
		for _, c := range l.Comments() {
			infoColor.Printf("%4d:%-3d comment        %q\n",
				c.Span.Start.Line, c.Span.Start.Column, c.Lexeme)
		}
	}
	for _, le := range l.Errors() {
		errorColor.Printf("%s: %s\n", le.Span, le.Message)
	}
	return nil
}
