package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// interrupted is the cancellation cause recorded when a signal stops the run.
type interrupted struct{ sig os.Signal }

func (i interrupted) Error() string { return fmt.Sprintf("interrupted by %v", i.sig) }

// SignalContext is cancelled by the first SIGINT or SIGTERM, by its parent, or
// by Cancel. The signal is kept as the context cause so commands can map it to
// a process exit status: ExitCode is 0 when no signal arrived and 128 plus the
// signal number otherwise (130 for Ctrl+C, 143 for SIGTERM).
type SignalContext struct {
	context.Context
	cancel context.CancelCauseFunc
}

// NewSignalContext starts listening for SIGINT and SIGTERM until the returned
// context is done.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancelCause(parent)
	sc := &SignalContext{Context: ctx, cancel: cancel}

	caught := make(chan os.Signal, 1)
	signal.Notify(caught, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(caught)
		select {
		case sig := <-caught:
			sc.interrupt(sig)
		case <-ctx.Done():
		}
	}()
	return sc
}

func (sc *SignalContext) interrupt(sig os.Signal) {
	sc.cancel(interrupted{sig: sig})
}

// Cancel stops the context without recording a signal.
func (sc *SignalContext) Cancel() {
	sc.cancel(nil)
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	var i interrupted
	if errors.As(context.Cause(sc.Context), &i) {
		return i.sig
	}
	return nil
}

// ExitCode returns the exit status for the run; see SignalContext.
func (sc *SignalContext) ExitCode() int {
	sig := sc.Signal()
	if sig == nil {
		return 0
	}
	if n, ok := sig.(syscall.Signal); ok {
		return 128 + int(n)
	}
	return 130
}
