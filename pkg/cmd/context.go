package cmd

import (
	"context"
	"os"
	"os/signal"
)

// InterruptContext returns a context that's cancelled the moment one of
// TerminationSignals arrives, along with a stop function that releases the
// underlying signal subscription. Long-running commands (scan, dedupe) poll
// this context's cancellation alongside their own work so that Ctrl-C stops
// a multi-hour scan at the next cooperative checkpoint instead of killing the
// process mid-write.
func InterruptContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, TerminationSignals...)

	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(signals)
		cancel()
	}
}
