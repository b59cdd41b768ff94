package validate

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/fsroute/fsroute"
)

// JSONSchema adapts a compiled santhosh-tekuri/jsonschema/v6 schema to
// fsroute.Schema. It is the natural backend for the body/response
// sections, which typically arrive as arbitrary JSON-shaped data.
type JSONSchema struct {
	compiled *jsonschema.Schema
}

// CompileJSONSchema compiles the JSON Schema document doc (already
// decoded into Go values — map[string]any, []any, string, float64,
// bool, nil) under resource name name.
func CompileJSONSchema(name string, doc any) (*JSONSchema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource %s: %w", name, err)
	}
	compiled, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}
	return &JSONSchema{compiled: compiled}, nil
}

// Parse validates value against the compiled schema, translating any
// failure into FieldErrors keyed by the instance's dotted path ("$" for
// the document root).
func (s *JSONSchema) Parse(value any) (any, *fsroute.FieldErrors) {
	if err := s.compiled.Validate(value); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			fe := &fsroute.FieldErrors{}
			fe.Add("$", err.Error())
			return nil, fe
		}
		return nil, translateValidationError(ve)
	}
	return value, nil
}

// translateValidationError flattens jsonschema's cause tree (one
// ValidationError can wrap many nested Causes, one per failing
// sub-schema) into a flat FieldErrors list keyed by instance path.
func translateValidationError(ve *jsonschema.ValidationError) *fsroute.FieldErrors {
	fe := &fsroute.FieldErrors{}
	var walk func(*jsonschema.ValidationError)
	walk = func(v *jsonschema.ValidationError) {
		if len(v.Causes) == 0 {
			fe.Add(instancePath(v), v.Error())
			return
		}
		for _, cause := range v.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return fe
}

func instancePath(v *jsonschema.ValidationError) string {
	if len(v.InstanceLocation) == 0 {
		return "$"
	}
	return strings.Join(v.InstanceLocation, ".")
}
