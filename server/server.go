// Package server composes the matcher, middleware pipeline, and
// validators into an http.Handler, implementing the HTTP-facing
// behavior in §6 and the error boundary in §7.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fsroute/fsroute"
	"github.com/fsroute/fsroute/correlation"
	"github.com/fsroute/fsroute/errs"
	"github.com/fsroute/fsroute/matcher"
	"github.com/fsroute/fsroute/pipeline"
	"github.com/fsroute/fsroute/registry"
	"github.com/fsroute/fsroute/validate"
)

const correlationHeader = "x-correlation-id"

// HSTS configures the production-only Strict-Transport-Security header.
type HSTS struct {
	MaxAge            int
	IncludeSubDomains bool
	Preload           bool
}

// Options configures a Server.
type Options struct {
	Logger     *fsroute.Logger
	Production bool
	HSTS       HSTS
}

// Server is an http.Handler dispatching requests against a Matcher
// with the error boundary, correlation id, and HSTS behaviors in
// §5–§7 wired around it.
type Server struct {
	matcher  *matcher.Matcher
	registry *registry.Registry
	logger   *fsroute.Logger
	opts     Options
}

// New creates a Server. reg is stored on the Server but not consulted
// during dispatch; m is the authoritative source of truth for dispatch
// (§4.4).
func New(reg *registry.Registry, m *matcher.Matcher, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = fsroute.NewLogger()
	}
	return &Server{matcher: m, registry: reg, logger: opts.Logger, opts: opts}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	correlationID := correlation.FromHeaderOrGenerate(r.Header.Get(correlationHeader))
	w.Header().Set(correlationHeader, correlationID)
	s.applyHSTS(w)

	correlation.With(r.Context(), correlationID, func(c context.Context) {
		req := r.WithContext(c)
		ctx := fsroute.NewContext(req, w)
		s.dispatch(ctx, correlationID)
	})
}

func (s *Server) dispatch(ctx *fsroute.Context, correlationID string) {
	method := ctx.Request.Raw.Method
	path := ctx.Request.Raw.URL.Path

	result := s.matcher.Match(path, method)
	switch result.Outcome {
	case matcher.NoMatch:
		ctx.Response.JSON(http.StatusNotFound, map[string]string{"error": "Not Found"})
		return
	case matcher.MethodNotAllowed:
		ctx.Response.Writer.Header().Set("Allow", strings.Join(result.AllowedMethods, ", "))
		ctx.Response.JSON(http.StatusMethodNotAllowed, map[string]any{
			"error":   "Method Not Allowed",
			"allowed": result.AllowedMethods,
		})
		return
	}

	ctx.Request.Params = result.Params
	rm := result.Method

	dispatch := pipeline.Compose(buildMiddleware(rm), rm.Handler)
	if err := s.runGuarded(dispatch, ctx, result.Params); err != nil {
		s.renderError(ctx, correlationID, err)
	}
}

// buildMiddleware prepends/appends the schema-driven validators around
// a route's own middleware, per §4.6: "two middlewares are generated
// from a RouteSchema and inserted by the route executor."
func buildMiddleware(rm fsroute.RouteMethod) []fsroute.Middleware {
	mws := make([]fsroute.Middleware, 0, len(rm.Middleware)+2)
	if rm.Schema != nil {
		mws = append(mws, validate.RequestValidator(rm.Schema))
	}
	mws = append(mws, rm.Middleware...)
	if rm.Schema != nil && rm.Schema.Response != nil {
		mws = append(mws, validate.ResponseValidator(rm.Schema.Response))
	}
	return mws
}

// runGuarded invokes dispatch, converting a panic from user handler or
// middleware code into an InternalServerError rather than crashing the
// process — idiomatic Go hardening the original design leaves implicit.
func (s *Server) runGuarded(dispatch pipeline.Dispatch, ctx *fsroute.Context, params map[string]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = errs.Wrap(e)
			} else {
				err = errs.Wrap(fmt.Errorf("panic: %v", r))
			}
		}
	}()
	return dispatch(ctx, params, s.logger)
}

// renderError is the error boundary (§7): it is functionally
// equivalent to installing a head-of-chain middleware, since Go's
// synchronous error returns already bubble every inner failure up to
// this one call site without anything above it able to intercept.
func (s *Server) renderError(ctx *fsroute.Context, correlationID string, err error) {
	if ctx.Response.Sent {
		if s.logger.Enabled(slog.LevelDebug) {
			s.logger.Debug("error after response already sent", "error", err.Error())
		}
		return
	}

	appErr, ok := errs.As(err)
	if !ok {
		appErr = errs.Wrap(err)
	}

	envelope := errs.NewEnvelope(appErr, correlationID, time.Now().UTC().Format(time.RFC3339))
	ctx.Response.JSON(appErr.StatusCode(), envelope)
}

func (s *Server) applyHSTS(w http.ResponseWriter) {
	if !s.opts.Production || s.opts.HSTS.MaxAge <= 0 {
		return
	}
	value := fmt.Sprintf("max-age=%d", s.opts.HSTS.MaxAge)
	if s.opts.HSTS.IncludeSubDomains {
		value += "; includeSubDomains"
	}
	if s.opts.HSTS.Preload {
		value += "; preload"
	}
	w.Header().Set("Strict-Transport-Security", value)
}
