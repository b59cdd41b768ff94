// Package pipeline composes a middleware chain into a single callable
// dispatch (§4.5). Continuations are explicit, at-most-once callables,
// which is the idiomatic Go shape for the spec's `next()` — the nimus
// reference package composes middleware the opposite way, pre-wrapping
// handlers with `func(Handler) Handler` at build time, which doesn't
// give each middleware a revocable continuation object; this package
// is grounded on that build-a-chain style but restructured around an
// explicit Next callable to satisfy §4.5's invariants.
package pipeline

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/fsroute/fsroute"
)

// Dispatch is a fully composed middleware pipeline ending in a final
// handler.
type Dispatch func(ctx *fsroute.Context, params map[string]string, logger *fsroute.Logger) error

// DoubleInvocationError reports that a middleware invoked its next()
// continuation more than once — a fatal programming error (§4.5).
type DoubleInvocationError struct {
	Middleware string
}

func (e *DoubleInvocationError) Error() string {
	return fmt.Sprintf("pipeline: middleware %q invoked next more than once", e.Middleware)
}

// Compose builds a Dispatch from an ordered middleware sequence and a
// final handler. An empty sequence yields a dispatch that invokes
// final directly (§4.5 "empty pipeline").
func Compose(middlewares []fsroute.Middleware, final fsroute.Handler) Dispatch {
	return func(ctx *fsroute.Context, params map[string]string, logger *fsroute.Logger) error {
		return runFrom(0, middlewares, final, ctx, params, logger)
	}
}

func runFrom(i int, mws []fsroute.Middleware, final fsroute.Handler, ctx *fsroute.Context, params map[string]string, logger *fsroute.Logger) error {
	if i >= len(mws) {
		return invokeFinal(final, ctx, params, logger)
	}

	mw := mws[i]
	if mw.Skip != nil && mw.Skip(ctx) {
		return runFrom(i+1, mws, final, ctx, params, logger)
	}

	var (
		mu      sync.Mutex
		invoked bool
	)
	next := func() error {
		mu.Lock()
		if invoked {
			mu.Unlock()
			return &DoubleInvocationError{Middleware: mw.Name}
		}
		invoked = true
		mu.Unlock()
		return runFrom(i+1, mws, final, ctx, params, logger)
	}

	childLogger := logger.With("middleware", mw.Name)
	if mw.Debug {
		childLogger.Debug("executing middleware")
	}
	return mw.Execute(ctx, next, childLogger)
}

func invokeFinal(final fsroute.Handler, ctx *fsroute.Context, params map[string]string, logger *fsroute.Logger) error {
	data, err := final(ctx, params, logger)
	if err != nil {
		return err
	}
	if ctx.Response.Sent {
		return nil
	}
	return ctx.Response.JSON(http.StatusOK, data)
}
