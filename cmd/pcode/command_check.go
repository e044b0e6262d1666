package main

import (
	"fmt"
	"os"
)

// CheckCmd parses and type-checks one or more files.
type CheckCmd struct {
	Paths  []string `arg:"" help:"PeopleCode source files to check" type:"existingfile"`
	Unused bool     `help:"Also report unused variables" short:"u"`
}

func (cmd *CheckCmd) Run(ctx *Context) error {
	eng, cleanup, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	failed := false
	for _, path := range cmd.Paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		res := eng.Check(path, string(data))
		if printDiagnostics(res) {
			failed = true
		}

		if cmd.Unused {
			for _, v := range res.Registry.UnusedVariables() {
				warningColor.Printf("%s:%d:%d: [usage] %s %s is never used\n",
					path, v.DeclSpan.Start.Line, v.DeclSpan.Start.Column, v.Kind, v.Name)
			}
		}

		if len(res.Diagnostics) == 0 {
			okColor.Printf("%s: ok (%d statements, %s)\n",
				path, len(res.Program.Statements), res.Elapsed)
		}
	}

	if failed {
		os.Exit(1)
	}
	return nil
}
