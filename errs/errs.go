// Package errs is fsroute's error taxonomy (§7). Errors carry an
// ErrorKind and HTTP status so the error boundary middleware can render
// the standard envelope (§6) without type-switching on every call site.
package errs

import "fmt"

// ErrorKind is the stable "type" string in the error envelope.
type ErrorKind string

const (
	KindValidation         ErrorKind = "VALIDATION_ERROR"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindUnauthorized       ErrorKind = "UNAUTHORIZED"
	KindForbidden          ErrorKind = "FORBIDDEN"
	KindConflict           ErrorKind = "CONFLICT"
	KindInternalServer     ErrorKind = "INTERNAL_SERVER_ERROR"
)

// Error is a structured, client-facing error. Internal-only kinds
// (LoadError, DirectoryError, ParseError, ConfigError) are never sent
// to a client raw — they are wrapped into an Error (typically
// InternalServerError) before they reach the error boundary, per §7.
type Error struct {
	ErrKind ErrorKind
	Title   string
	Status  int
	Details any

	// OriginalMessage carries the message of a wrapped raw error, when
	// this Error was constructed from one (§7, InternalServerError).
	OriginalMessage string
	cause           error
}

func (e *Error) Error() string {
	if e.OriginalMessage != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.OriginalMessage)
	}
	return e.Title
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error's ErrorKind.
func (e *Error) Kind() ErrorKind { return e.ErrKind }

// StatusCode returns the HTTP status to send for this error.
func (e *Error) StatusCode() int { return e.Status }

// Validation builds a 400 VALIDATION_ERROR.
func Validation(title string, details any) *Error {
	return &Error{ErrKind: KindValidation, Title: title, Status: 400, Details: details}
}

// NotFound builds a 404 NOT_FOUND.
func NotFound(title string) *Error {
	return &Error{ErrKind: KindNotFound, Title: title, Status: 404}
}

// Unauthorized builds a 401 UNAUTHORIZED.
func Unauthorized(title string) *Error {
	return &Error{ErrKind: KindUnauthorized, Title: title, Status: 401}
}

// Forbidden builds a 403 FORBIDDEN.
func Forbidden(title string) *Error {
	return &Error{ErrKind: KindForbidden, Title: title, Status: 403}
}

// Conflict builds a 409 CONFLICT.
func Conflict(title string) *Error {
	return &Error{ErrKind: KindConflict, Title: title, Status: 409}
}

// InternalServer builds a 500 INTERNAL_SERVER_ERROR, optionally carrying
// structured details.
func InternalServer(title string, details any) *Error {
	return &Error{ErrKind: KindInternalServer, Title: title, Status: 500, Details: details}
}

// Wrap builds a 500 INTERNAL_SERVER_ERROR from an arbitrary Go error,
// the way §7 describes "wrapping a raw exception": the original
// message is preserved separately from the stable Title so clients
// never see library-specific text in the title field.
func Wrap(err error) *Error {
	return &Error{
		ErrKind:         KindInternalServer,
		Title:           "Internal Server Error",
		Status:          500,
		OriginalMessage: err.Error(),
		cause:           err,
	}
}

// As extracts an *Error from err via errors.As semantics (implemented
// directly here to avoid importing "errors" at every call site).
func As(err error) (*Error, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// LoadError signals that loading a single route file failed (§4.1).
// It never escapes the core raw — discovery collects it in LoadAll's
// failures and continues. The watcher does not wrap loader errors in
// it; it reports the loader's own error via OnError and continues.
type LoadError struct {
	File  string
	cause error
}

func NewLoadError(file string, cause error) *LoadError { return &LoadError{File: file, cause: cause} }
func (e *LoadError) Error() string                      { return fmt.Sprintf("load %s: %v", e.File, e.cause) }
func (e *LoadError) Unwrap() error                      { return e.cause }

// DirectoryError signals that a route discovery root does not exist or
// is not a directory (§4.1).
type DirectoryError struct {
	Dir   string
	cause error
}

func NewDirectoryError(dir string, cause error) *DirectoryError {
	return &DirectoryError{Dir: dir, cause: cause}
}
func (e *DirectoryError) Error() string { return fmt.Sprintf("directory %s: %v", e.Dir, e.cause) }
func (e *DirectoryError) Unwrap() error { return e.cause }

// ConflictError signals two sources claiming the same route path (§4.2).
// It is the registry's sole hard-fail.
type ConflictError struct {
	Path          string
	Source        string
	ExistingSource string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("route %q: %q conflicts with existing owner %q", e.Path, e.Source, e.ExistingSource)
}

// ParseError signals a multipart parsing failure (§4.7), including the
// limit kind that was breached when applicable.
type ParseError struct {
	Message   string
	LimitKind string
}

func NewParseError(message string) *ParseError { return &ParseError{Message: message} }

func NewLimitParseError(message, limitKind string) *ParseError {
	return &ParseError{Message: message, LimitKind: limitKind}
}

func (e *ParseError) Error() string { return e.Message }

// ConfigError signals invalid framework configuration (e.g. an unknown
// option value). Malformed size strings are not reported with it:
// sizeutil.ParseSize returns a ValidationError for those (§6).
type ConfigError struct {
	Message string
}

func NewConfigError(message string) *ConfigError { return &ConfigError{Message: message} }
func (e *ConfigError) Error() string              { return e.Message }

// Envelope is the stable JSON shape every error response uses (§6, §7):
// every client-facing error, regardless of ErrorKind, serializes to
// this shape. The response validator (package validate) recognizes any
// value of this type by its Go type alone and passes it through
// untouched rather than checking it against a route's response schema.
type Envelope struct {
	Type          ErrorKind `json:"type"`
	Title         string    `json:"title"`
	Status        int       `json:"status"`
	Details       any       `json:"details,omitempty"`
	CorrelationID string    `json:"correlationId"`
	Timestamp     string    `json:"timestamp"`
}

// NewEnvelope builds the wire envelope for e, stamping in the
// request's correlation id and a timestamp (RFC 3339, typically from
// time.Now().UTC().Format(time.RFC3339)).
func NewEnvelope(e *Error, correlationID, timestamp string) Envelope {
	return Envelope{
		Type:          e.ErrKind,
		Title:         e.Title,
		Status:        e.Status,
		Details:       e.Details,
		CorrelationID: correlationID,
		Timestamp:     timestamp,
	}
}
