// Package validate builds the two schema-driven middlewares the route
// executor prepends/appends to a route's pipeline (§4.6), plus two
// concrete Schema backends (jsonschema.go, structtag.go) adapting
// third-party validation libraries to fsroute.Schema.
package validate

import (
	"sync"

	"github.com/fsroute/fsroute"
	"github.com/fsroute/fsroute/errs"
)

// RequestValidatorName and ResponseValidatorName are the child-logger
// middleware names of RequestValidator and ResponseValidator, which the
// server's route executor installs (§4.5 "middleware=name").
const (
	RequestValidatorName  = "request-validator"
	ResponseValidatorName = "response-validator"
)

type section struct {
	name string
	get  func(*fsroute.Request) any
	set  func(*fsroute.Request, any)
}

var sections = []section{
	{"params", func(r *fsroute.Request) any { return r.Params }, func(r *fsroute.Request, v any) { r.Params = v }},
	{"query", func(r *fsroute.Request) any { return r.Query }, func(r *fsroute.Request, v any) { r.Query = v }},
	{"body", func(r *fsroute.Request) any { return r.Body }, func(r *fsroute.Request, v any) { r.Body = v }},
	{"files", func(r *fsroute.Request) any { return r.Files }, func(r *fsroute.Request, v any) { r.Files = v }},
}

// RequestValidator builds the request validator middleware for schema,
// prepended to the pipeline by the route executor. It validates
// {params, query, body, files} in that order, stopping at the first
// failing section (§4.6).
func RequestValidator(schema *fsroute.RouteSchema) fsroute.Middleware {
	bySection := map[string]fsroute.Schema{
		"params": schema.Params,
		"query":  schema.Query,
		"body":   schema.Body,
		"files":  schema.Files,
	}

	return fsroute.Middleware{
		Name: RequestValidatorName,
		Execute: func(ctx *fsroute.Context, next fsroute.Next, logger *fsroute.Logger) error {
			for _, s := range sections {
				sc := bySection[s.name]
				if sc == nil {
					continue
				}
				parsed, fieldErrs := sc.Parse(s.get(ctx.Request))
				if fieldErrs.Len() > 0 {
					return errs.Validation("Request validation failed", map[string]any{
						"fields":     fieldErrs.Errors,
						"errorCount": fieldErrs.Len(),
						"section":    s.name,
					})
				}
				s.set(ctx.Request, parsed)
			}
			return next()
		},
	}
}

// ResponseValidator builds the response validator middleware for
// schema, appended to the pipeline by the route executor. It overrides
// ctx.Response's JSON writer with a single-shot, self-restoring wrapper
// (§4.6).
func ResponseValidator(schema fsroute.Schema) fsroute.Middleware {
	return fsroute.Middleware{
		Name: ResponseValidatorName,
		Execute: func(ctx *fsroute.Context, next fsroute.Next, logger *fsroute.Logger) error {
			original := ctx.Response.Current()

			var once sync.Once
			var restore func()

			wrapper := func(status int, body any) error {
				var callErr error
				once.Do(func() {
					restore()
					callErr = validateAndWrite(schema, original, status, body)
				})
				return callErr
			}

			restore = ctx.Response.OverrideJSON(wrapper)
			defer restore() // runs even if wrapper is never invoked, or if next() panics/errors first

			return next()
		},
	}
}

func validateAndWrite(schema fsroute.Schema, original fsroute.JSONWriter, status int, body any) error {
	switch body.(type) {
	case errs.Envelope, *errs.Envelope:
		return original(status, body)
	}

	parsed, fieldErrs := schema.Parse(body)
	if fieldErrs.Len() > 0 {
		return errs.InternalServer("Response validation failed", map[string]any{
			"validationError": fieldErrs.Errors,
			"hint":            "the handler's response did not match its declared response schema",
		})
	}
	return original(status, parsed)
}
