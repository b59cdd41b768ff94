package fsroute

import "net/http"

// Request is the per-request data the router and validators mutate.
// Params, Query, Body, and Files all start as the raw values the
// matcher/transport handed in (Params as map[string]string) and may
// each be replaced by the request validator with a parsed, typed value
// (§3, §4.6). Handlers also receive the matcher's raw path parameters
// directly as their params argument, independent of whatever Params
// holds here after validation.
type Request struct {
	Raw    *http.Request
	Params any
	Query  any
	Body   any
	Files  any
}

// JSONWriter writes status and body as the response. Response.JSON
// delegates to the current JSONWriter, which the response validator
// temporarily overrides (§4.6).
type JSONWriter func(status int, body any) error

// Response wraps the transport's http.ResponseWriter with the
// single-writer, write-once semantics §3 and §5 require: Sent
// transitions false→true exactly once; writes after that are dropped.
type Response struct {
	Writer http.ResponseWriter
	Sent   bool

	json JSONWriter
}

// NewResponse creates a Response around w with the default JSON writer.
func NewResponse(w http.ResponseWriter) *Response {
	r := &Response{Writer: w}
	r.json = r.writeJSON
	return r
}

// JSON sends body as status with the currently installed JSON writer
// (the default, or the response validator's wrapper if one is active).
// A second call after the response was already sent is a silent no-op.
func (r *Response) JSON(status int, body any) error {
	if r.Sent {
		return nil
	}
	return r.json(status, body)
}

// OverrideJSON temporarily replaces the JSON writer, returning a restore
// function that reinstates the previous one. Callers (the response
// validator) MUST call restore on every exit path, including panics.
func (r *Response) OverrideJSON(fn JSONWriter) (restore func()) {
	prev := r.json
	r.json = fn
	return func() { r.json = prev }
}

// Current returns the currently installed JSON writer, so an override can
// delegate to whatever was active before it (typically the default writer).
func (r *Response) Current() JSONWriter { return r.json }

func (r *Response) writeJSON(status int, body any) error {
	if r.Sent {
		return nil
	}
	r.Sent = true
	r.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	r.Writer.WriteHeader(status)
	return encodeJSON(r.Writer, body)
}

// Context is the request-scoped value threaded through discovery,
// matching, middleware, validators, and the handler (§3).
type Context struct {
	Request  *Request
	Response *Response
	State    map[string]any
	Services map[string]any
}

// NewContext creates a Context for an inbound HTTP request.
func NewContext(r *http.Request, w http.ResponseWriter) *Context {
	return &Context{
		Request:  &Request{Raw: r},
		Response: NewResponse(w),
		State:    make(map[string]any),
		Services: make(map[string]any),
	}
}
