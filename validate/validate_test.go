package validate

import (
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsroute/fsroute"
	"github.com/fsroute/fsroute/errs"
)

type fakeSchema struct {
	parsed any
	fail   *fsroute.FieldErrors
}

func (f fakeSchema) Parse(value any) (any, *fsroute.FieldErrors) {
	if f.fail != nil {
		return nil, f.fail
	}
	if f.parsed != nil {
		return f.parsed, nil
	}
	return value, nil
}

func newCtx() *fsroute.Context {
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	return fsroute.NewContext(req, rec)
}

func passThrough(ctx *fsroute.Context, _ map[string]string, _ *fsroute.Logger) (any, error) {
	return map[string]string{"ok": "true"}, nil
}

func TestRequestValidatorReplacesSectionOnSuccess(t *testing.T) {
	schema := &fsroute.RouteSchema{Query: fakeSchema{parsed: map[string]string{"q": "parsed"}}}
	mw := RequestValidator(schema)

	ctx := newCtx()
	ctx.Request.Query = map[string]string{"q": "raw"}

	err := mw.Execute(ctx, func() error { return nil }, fsroute.NewLogger())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"q": "parsed"}, ctx.Request.Query)
}

func TestRequestValidatorFailsWithValidationError(t *testing.T) {
	fieldErrs := &fsroute.FieldErrors{}
	fieldErrs.Add("email", "must be a valid email")
	schema := &fsroute.RouteSchema{Body: fakeSchema{fail: fieldErrs}}

	mw := RequestValidator(schema)
	err := mw.Execute(newCtx(), func() error { return nil }, fsroute.NewLogger())

	require.Error(t, err)
	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindValidation, e.Kind())
	details := e.Details.(map[string]any)
	assert.Equal(t, "body", details["section"])
}

func TestRequestValidatorStopsAtFirstFailingSection(t *testing.T) {
	fieldErrs := &fsroute.FieldErrors{}
	fieldErrs.Add("id", "invalid")

	schema := &fsroute.RouteSchema{
		Params: fakeSchema{fail: fieldErrs},
		Body:   fakeSchema{parsed: "should not run"},
	}

	mw := RequestValidator(schema)
	err := mw.Execute(newCtx(), func() error { return nil }, fsroute.NewLogger())
	require.Error(t, err)
	e, _ := errs.As(err)
	assert.Equal(t, "params", e.Details.(map[string]any)["section"])
}

func TestRequestValidatorSkipsUnsetSections(t *testing.T) {
	mw := RequestValidator(&fsroute.RouteSchema{})
	nextCalled := false
	err := mw.Execute(newCtx(), func() error { nextCalled = true; return nil }, fsroute.NewLogger())
	require.NoError(t, err)
	assert.True(t, nextCalled)
}

func TestResponseValidatorPassesThroughErrorEnvelope(t *testing.T) {
	envelope := errs.NewEnvelope(errs.NotFound("Not Found"), "req_1", "2026-01-01T00:00:00Z")

	handler := func(ctx *fsroute.Context, _ map[string]string, _ *fsroute.Logger) (any, error) {
		return nil, ctx.Response.JSON(404, envelope)
	}

	mw := ResponseValidator(fakeSchema{})
	ctx := newCtx()
	err := mw.Execute(ctx, func() error {
		_, err := handler(ctx, nil, fsroute.NewLogger())
		return err
	}, fsroute.NewLogger())

	require.NoError(t, err)
	assert.True(t, ctx.Response.Sent)
}

func TestResponseValidatorFailsOnSchemaMismatch(t *testing.T) {
	fieldErrs := &fsroute.FieldErrors{}
	fieldErrs.Add("name", "required")
	mw := ResponseValidator(fakeSchema{fail: fieldErrs})

	ctx := newCtx()
	err := mw.Execute(ctx, func() error {
		return ctx.Response.JSON(200, map[string]string{"bad": "shape"})
	}, fsroute.NewLogger())

	require.Error(t, err)
	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindInternalServer, e.Kind())
}

func TestResponseValidatorRestoresWriterWhenNeverInvoked(t *testing.T) {
	mw := ResponseValidator(fakeSchema{})
	ctx := newCtx()
	before := ctx.Response.Current()

	err := mw.Execute(ctx, func() error { return nil }, fsroute.NewLogger())
	require.NoError(t, err)

	// After Execute returns without the handler ever calling JSON, the
	// writer must be back to what it was before the middleware ran.
	assert.NotNil(t, before)
	assert.Equal(t, reflect.ValueOf(before).Pointer(), reflect.ValueOf(ctx.Response.Current()).Pointer())
	require.NoError(t, ctx.Response.JSON(200, map[string]string{"anything": "goes"}))
	assert.True(t, ctx.Response.Sent)
}
