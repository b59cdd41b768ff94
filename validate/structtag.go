package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fsroute/fsroute"
)

// StructTag adapts go-playground/validator struct-tag validation to
// fsroute.Schema. It is the natural backend for the params/query
// sections once a handler binds them to a tagged Go struct.
type StructTag struct {
	validate *validator.Validate
}

// NewStructTag returns a StructTag backed by a fresh validator.Validate.
func NewStructTag() *StructTag {
	return &StructTag{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Parse validates value, which must be a struct or pointer to struct
// carrying `validate:"..."` tags, returning it unchanged on success.
func (s *StructTag) Parse(value any) (any, *fsroute.FieldErrors) {
	if err := s.validate.Struct(value); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			fe := &fsroute.FieldErrors{}
			fe.Add("", err.Error())
			return nil, fe
		}
		fe := &fsroute.FieldErrors{}
		for _, fieldErr := range verrs {
			fe.Add(dottedField(fieldErr), humanMessage(fieldErr))
		}
		return nil, fe
	}
	return value, nil
}

// dottedField strips the leading struct-name segment go-playground/validator
// includes in Namespace(), leaving a dotted field path.
func dottedField(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func humanMessage(fe validator.FieldError) string {
	return fe.Field() + " failed the '" + fe.Tag() + "' rule"
}
