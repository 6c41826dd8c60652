package sigctx

import (
	"context"
	"os/signal"
	"syscall"
)

// NotifyContext is canceled on the first interrupt or termination signal.
func NotifyContext() (context.Context, context.CancelFunc) {
	return WithSignals(context.Background())
}

func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
}
