package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pcodetools/pcode/internal/engine"
	"github.com/pcodetools/pcode/internal/watch"
)

// WatchCmd re-checks files whenever they change on disk.
type WatchCmd struct {
	Paths []string `arg:"" optional:"" help:"Directories to watch" type:"existingdir"`
}

func (cmd *WatchCmd) Run(ctx *Context) error {
	eng, cleanup, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	paths := cmd.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	w, err := watch.New(eng, watch.Options{
		Debounce:     ctx.Config.Watch.Debounce.Duration,
		Extensions:   ctx.Config.Watch.Extensions,
		ExcludeDirs:  ctx.Config.Watch.ExcludeDirs,
		ExcludeFiles: ctx.Config.Watch.ExcludeFiles,
		Logger:       ctx.Logger,
	}, func(res *engine.Result) {
		if len(res.Diagnostics) == 0 {
			okColor.Printf("%s: ok\n", res.Filename)
			return
		}
		printDiagnostics(res)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(paths); err != nil {
		return err
	}
	fmt.Printf("watching %v (debounce %s), press Ctrl-C to stop\n",
		paths, ctx.Config.Watch.Debounce.Duration)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	return nil
}
