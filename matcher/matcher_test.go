package matcher

import (
	"testing"

	"github.com/fsroute/fsroute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyMethod() fsroute.RouteMethod {
	return fsroute.RouteMethod{Handler: func(ctx *fsroute.Context, params map[string]string, logger *fsroute.Logger) (any, error) {
		return nil, nil
	}}
}

func TestMatchLiteralRoute(t *testing.T) {
	m := New()
	m.Add("/users", "GET", dummyMethod())

	res := m.Match("/users", "GET")
	assert.Equal(t, Matched, res.Outcome)
	assert.Equal(t, "/users", res.Pattern)
	assert.Empty(t, res.Params)
}

func TestMatchParamRouteCapturesParams(t *testing.T) {
	m := New()
	m.Add("/users/:id", "GET", dummyMethod())

	res := m.Match("/users/42", "GET")
	require.Equal(t, Matched, res.Outcome)
	assert.Equal(t, "42", res.Params["id"])
}

func TestMatchRootRoute(t *testing.T) {
	m := New()
	m.Add("/", "GET", dummyMethod())

	res := m.Match("/", "GET")
	assert.Equal(t, Matched, res.Outcome)
}

func TestMethodNotAllowedListsSortedAllowedMethods(t *testing.T) {
	m := New()
	m.Add("/users", "POST", dummyMethod())
	m.Add("/users", "DELETE", dummyMethod())
	m.Add("/users", "GET", dummyMethod())

	res := m.Match("/users", "PUT")
	require.Equal(t, MethodNotAllowed, res.Outcome)
	assert.Equal(t, []string{"DELETE", "GET", "POST"}, res.AllowedMethods)
}

func TestNoMatchForUnknownPath(t *testing.T) {
	m := New()
	m.Add("/users", "GET", dummyMethod())

	res := m.Match("/orders", "GET")
	assert.Equal(t, NoMatch, res.Outcome)
}

func TestLiteralSegmentPreferredOverParam(t *testing.T) {
	m := New()
	m.Add("/users/:id", "GET", dummyMethod())
	m.Add("/users/new", "GET", dummyMethod())

	res := m.Match("/users/new", "GET")
	require.Equal(t, Matched, res.Outcome)
	assert.Equal(t, "/users/new", res.Pattern)
	assert.Empty(t, res.Params)

	res = m.Match("/users/42", "GET")
	require.Equal(t, Matched, res.Outcome)
	assert.Equal(t, "/users/:id", res.Pattern)
	assert.Equal(t, "42", res.Params["id"])
}

func TestRemoveDeletesRoute(t *testing.T) {
	m := New()
	m.Add("/users", "GET", dummyMethod())
	m.Remove("/users")

	res := m.Match("/users", "GET")
	assert.Equal(t, NoMatch, res.Outcome)
}

func TestRemoveOnlyAffectsItsOwnPath(t *testing.T) {
	m := New()
	m.Add("/users", "GET", dummyMethod())
	m.Add("/users/:id", "GET", dummyMethod())
	m.Remove("/users")

	assert.Equal(t, NoMatch, m.Match("/users", "GET").Outcome)
	assert.Equal(t, Matched, m.Match("/users/1", "GET").Outcome)
}

func TestClearRemovesEverything(t *testing.T) {
	m := New()
	m.Add("/users", "GET", dummyMethod())
	m.Add("/orders/:id", "GET", dummyMethod())
	m.Clear()

	assert.Equal(t, NoMatch, m.Match("/users", "GET").Outcome)
	assert.Equal(t, NoMatch, m.Match("/orders/1", "GET").Outcome)
}
