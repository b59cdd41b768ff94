package fsroute

// Next is the single-shot continuation passed to a Middleware's Execute.
// Calling it advances the pipeline to the next stage (or the final
// handler); calling it a second time is a programming error the
// pipeline package reports as DoubleInvocationError (§4.5).
type Next func() error

// Middleware is a named around-advice callable. Execute MUST invoke next
// at most once; failing to invoke it at all terminates the chain
// without calling the final handler.
//
// Code in Execute that runs after next() returns executes after every
// inner middleware and the final handler have returned — the "around"
// semantics in §4.5.
type Middleware struct {
	Name    string
	Execute func(ctx *Context, next Next, logger *Logger) error

	// Skip, if non-nil, is consulted before Execute on every dispatch. It
	// MUST be pure and side-effect-free (§4.5). When it returns true,
	// Execute is bypassed entirely and the pipeline proceeds to the next
	// stage as if this middleware were absent.
	Skip func(ctx *Context) bool

	// Debug marks a middleware as debug-only scaffolding; it has no effect
	// on dispatch but is surfaced to loggers and diagnostics.
	Debug bool
}
