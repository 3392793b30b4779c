// Package Signal provides the pause point between PLAY and TEARDOWN: a Waiter
// blocks until something outside the request sequence says stop.
package Signal

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

type Waiter interface {
	Wait(ctx context.Context) error
}

type WaiterFunc func(ctx context.Context) error

func (f WaiterFunc) Wait(ctx context.Context) error {
	return f(ctx)
}

// Chan returns when ch yields a value or is closed.
type Chan <-chan struct{}

func (c Chan) Wait(ctx context.Context) error {
	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// KeyPress returns after one byte has been read from In. When In is a
// terminal it is switched to raw mode for the read so no Enter is needed.
// End of input counts as a key press.
type KeyPress struct {
	In io.Reader
}

func (k KeyPress) Wait(ctx context.Context) error {
	in := k.In
	if in == nil {
		in = os.Stdin
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err == nil {
			defer term.Restore(int(f.Fd()), state)
		}
	}
	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		_, err := in.Read(buf)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil && err != io.EOF {
			return errors.Wrap(err, "read key")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OsSignal returns on SIGINT, SIGTERM or SIGQUIT.
type OsSignal struct{}

func (OsSignal) Wait(ctx context.Context) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(quit)
	select {
	case <-quit:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Any returns as soon as one of waiters does and stops the others.
func Any(waiters ...Waiter) Waiter {
	return WaiterFunc(func(ctx context.Context) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		done := make(chan error, len(waiters))
		for _, w := range waiters {
			go func(w Waiter) {
				done <- w.Wait(ctx)
			}(w)
		}
		return <-done
	})
}
