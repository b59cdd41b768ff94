package fsroute

// Handler handles a matched request. It returns a value to be sent as
// the JSON response body, or (nil, nil) if it wrote the response
// directly (e.g. via ctx.Response).
type Handler func(ctx *Context, params map[string]string, logger *Logger) (any, error)

// Route is a registered path pattern and its per-method bundles.
// A route's identity is its Path (after any prefix has been applied at
// registration time — the matcher never applies prefixes itself, §4.4).
type Route struct {
	Path    string
	Methods map[string]RouteMethod
}

// RouteMethod bundles a handler with its middleware and optional schema.
type RouteMethod struct {
	Handler    Handler
	Middleware []Middleware
	Schema     *RouteSchema
}

// RouteSchema names the per-section schemas a route validates against.
// Each field is optional; an unset field means that section is not
// validated.
type RouteSchema struct {
	Params   Schema
	Query    Schema
	Body     Schema
	Files    Schema
	Response Schema
}

// Schema is the contract a validation library must satisfy to plug into
// fsroute's request/response validators (§4.6). It is intentionally
// narrow: fsroute does not care which validation library produced it.
type Schema interface {
	// Parse validates value and returns the (possibly transformed) value
	// to install back onto the request, or a non-nil *FieldErrors describing
	// why it failed.
	Parse(value any) (any, *FieldErrors)
}

// FieldError describes one failing field, e.g. {"field": "email",
// "messages": ["must be a valid email"]}.
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
}

// FieldErrors is an ordered list of FieldError, in validation order.
type FieldErrors struct {
	Errors []FieldError
}

// Add appends a field error, creating or extending its Messages if the
// field already has one.
func (fe *FieldErrors) Add(field string, message string) {
	for i := range fe.Errors {
		if fe.Errors[i].Field == field {
			fe.Errors[i].Messages = append(fe.Errors[i].Messages, message)
			return
		}
	}
	fe.Errors = append(fe.Errors, FieldError{Field: field, Messages: []string{message}})
}

// Len reports the number of distinct fields with errors.
func (fe *FieldErrors) Len() int {
	if fe == nil {
		return 0
	}
	return len(fe.Errors)
}
