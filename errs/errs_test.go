package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesOriginalMessage(t *testing.T) {
	cause := fmt.Errorf("boom")
	e := Wrap(cause)

	assert.Equal(t, KindInternalServer, e.Kind())
	assert.Equal(t, 500, e.StatusCode())
	assert.Equal(t, "Internal Server Error", e.Title)
	assert.Equal(t, "boom", e.OriginalMessage)
}

func TestAsUnwrapsThroughWrapping(t *testing.T) {
	inner := Validation("Request validation failed", nil)
	wrapped := fmt.Errorf("while handling: %w", inner)

	found, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, found)
}

func TestAsReturnsFalseForPlainError(t *testing.T) {
	_, ok := As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestConflictErrorMessage(t *testing.T) {
	e := &ConflictError{Path: "/users", Source: "b.go", ExistingSource: "a.go"}
	assert.Contains(t, e.Error(), "/users")
	assert.Contains(t, e.Error(), "a.go")
}

func TestConfigErrorNeverEscapesAsAnErrorKind(t *testing.T) {
	e := NewConfigError("bad strategy \"zip\"")
	assert.Equal(t, "bad strategy \"zip\"", e.Error())

	// ConfigError has no ErrorKind/StatusCode of its own (§7: internal,
	// never escapes raw) — a caller must wrap it before it reaches a
	// client, same as LoadError/DirectoryError/ParseError.
	_, ok := As(e)
	assert.False(t, ok)
}
