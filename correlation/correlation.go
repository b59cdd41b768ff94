// Package correlation carries the ambient per-request correlation id
// (§5, §9). Go has no built-in async-local-storage primitive; the
// idiomatic equivalent is a value carried on context.Context and
// threaded explicitly through every suspension point (network read,
// schema parse, file-system read) — exactly what the stdlib already
// expects callers to do with context.Context.
package correlation

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type keyType struct{}

var key = keyType{}

// With derives a context carrying id and runs f with it. The outer id
// (if any) is restored once f returns, on every exit path, matching the
// nested-scope restore behavior §5 requires. Because Go contexts are
// immutable and derived rather than mutated, this falls out of plain
// context derivation — there is no separate "restore" step to forget.
func With(ctx context.Context, id string, f func(context.Context)) {
	f(context.WithValue(ctx, key, id))
}

// From returns the correlation id carried by ctx, if any.
func From(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key).(string)
	return id, ok
}

// FromHeaderOrGenerate returns header (trimmed) if non-empty, or a
// freshly Generate()'d id otherwise, per §5's inbound-header contract.
func FromHeaderOrGenerate(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed != "" {
		return trimmed
	}
	return Generate()
}

// Generate returns a fresh id of the form req_<base36-timestamp>_<random>,
// using a UUIDv4-derived random suffix (github.com/google/uuid) rather
// than hand-rolling one off crypto/rand.
func Generate() string {
	ts := strconv.FormatInt(time.Now().UnixNano(), 36)
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return "req_" + ts + "_" + suffix
}
