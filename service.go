package main

import (
	"context"
	"sync"

	"github.com/judwhite/go-svc"

	"github.com/ferama/volumelog/internal/logwriter"
)

// app hosts a single writer run under svc.Run. svc.Run returns once the
// run finishes (via Context) or on SIGINT/SIGTERM, whichever comes first.
type app struct {
	writer *logwriter.Writer

	runCtx    context.Context
	cancelRun context.CancelFunc

	doneCtx  context.Context
	markDone context.CancelFunc

	wg  sync.WaitGroup
	err error
}

func newApp(w *logwriter.Writer) *app {
	a := &app{writer: w}
	a.runCtx, a.cancelRun = context.WithCancel(context.Background())
	a.doneCtx, a.markDone = context.WithCancel(context.Background())
	return a
}

func (a *app) Init(env svc.Environment) error {
	l := getLogger("service")
	l.Printf("init, windows service: %v", env.IsWindowsService())
	return nil
}

func (a *app) Start() error {
	// Start must not block, the run happens in its own goroutine
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.markDone()
		a.err = a.writer.Run(a.runCtx)
	}()

	return nil
}

// Stop interrupts a run still in progress and waits for it to return.
func (a *app) Stop() error {
	a.cancelRun()
	a.wg.Wait()
	return nil
}

// Context lets svc.Run return as soon as the writer is done.
func (a *app) Context() context.Context {
	return a.doneCtx
}

// Err is the writer result, valid after Stop.
func (a *app) Err() error {
	return a.err
}
