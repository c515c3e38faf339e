package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// setupSignalHandler returns a context derived from parent that is canceled on
// SIGTERM or SIGINT. callback, when set, runs before the cancellation. The
// returned stop function releases the signal subscription.
func setupSignalHandler(parent context.Context, callback func(os.Signal)) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		select {
		case sig := <-sigChan:
			if callback != nil {
				callback(sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	stop := func() {
		signal.Stop(sigChan)
		cancel()
	}
	return ctx, stop
}
