package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/pcodetools/pcode/internal/engine"
	"github.com/pcodetools/pcode/internal/inference"
	"github.com/pcodetools/pcode/internal/metadata"
)

// buildEngine assembles the analysis engine from configuration. The
// returned cleanup releases provider resources and is never nil.
func buildEngine(ctx *Context) (*engine.Engine, func(), error) {
	cleanup := func() {}

	var provider metadata.Provider
	switch ctx.Config.Metadata.Provider {
	case "", "none":
		provider = metadata.NullProvider{}
	case "yaml":
		p, err := metadata.LoadYAMLFile(ctx.Config.Metadata.Path)
		if err != nil {
			return nil, cleanup, err
		}
		provider = p
	case "remote":
		var opts []metadata.RemoteOption
		if ctx.Config.Metadata.Insecure {
			opts = append(opts, metadata.WithTLSConfig(&tls.Config{
				InsecureSkipVerify: true,
				MinVersion:         tls.VersionTLS12,
			}))
		}
		p := metadata.NewRemoteProvider(ctx.Config.Metadata.URL, opts...)
		loadCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := p.Load(loadCtx); err != nil {
			p.Close()
			return nil, cleanup, err
		}
		cleanup = func() { p.Close() }
		provider = p
	default:
		return nil, cleanup, fmt.Errorf("unknown metadata provider %q", ctx.Config.Metadata.Provider)
	}

	engOpts := []engine.Option{
		engine.WithProvider(provider),
		engine.WithLogger(ctx.Logger),
	}
	if ctx.Config.CheckClasses {
		engOpts = append(engOpts, engine.WithClassExistenceCheck())
	}

	eng, err := engine.New(ctx.Config.ToolsRelease, engOpts...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return eng, cleanup, nil
}

var (
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgBlue)
	okColor      = color.New(color.FgGreen)
)

// printDiagnostics renders one result and reports whether it contained
// any error-severity findings.
func printDiagnostics(res *engine.Result) bool {
	hasErrors := false
	for _, d := range res.Diagnostics {
		painter := infoColor
		switch d.Severity {
		case inference.SeverityError:
			painter = errorColor
			hasErrors = true
		case inference.SeverityWarning:
			painter = warningColor
		}
		painter.Printf("%s:%d:%d: [%s] %s: %s\n",
			res.Filename, d.Span.Start.Line, d.Span.Start.Column,
			d.Phase, d.Severity, d.Message)
	}
	return hasErrors
}
