package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchemaParseAcceptsValidDocument(t *testing.T) {
	schema, err := CompileJSONSchema("user.json", map[string]any{
		"type":     "object",
		"required": []any{"name"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
	})
	require.NoError(t, err)

	parsed, fieldErrs := schema.Parse(map[string]any{"name": "ada"})
	assert.Equal(t, 0, fieldErrs.Len())
	assert.Equal(t, map[string]any{"name": "ada"}, parsed)
}

func TestJSONSchemaParseRejectsMissingRequiredField(t *testing.T) {
	schema, err := CompileJSONSchema("user.json", map[string]any{
		"type":     "object",
		"required": []any{"name"},
	})
	require.NoError(t, err)

	_, fieldErrs := schema.Parse(map[string]any{})
	require.Greater(t, fieldErrs.Len(), 0)
}
