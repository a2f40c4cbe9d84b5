package httpapi

import (
	"context"
)

// serverBaseCtx is canceled when the daemon shuts down so publish requests
// blocked on queue admission return promptly.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
// nil restores Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context canceled when either a or b is done. Values
// come from b (the request context). cancel must be called when the handler
// returns.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(b)
	stop := context.AfterFunc(a, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
