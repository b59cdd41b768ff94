package fingerprint

import (
	"testing"

	"github.com/fsroute/fsroute"
	"github.com/stretchr/testify/assert"
)

func handlerA(ctx *fsroute.Context, params map[string]string, logger *fsroute.Logger) (any, error) {
	return nil, nil
}

func handlerB(ctx *fsroute.Context, params map[string]string, logger *fsroute.Logger) (any, error) {
	return nil, nil
}

func route(methods map[string]fsroute.RouteMethod) fsroute.Route {
	return fsroute.Route{Path: "/users/:id", Methods: methods}
}

func TestOfStableUnderRepeatedCalls(t *testing.T) {
	r := route(map[string]fsroute.RouteMethod{"GET": {Handler: handlerA}})
	assert.Equal(t, Of(r), Of(r))
}

func TestOfDiffersWhenHandlerChanges(t *testing.T) {
	r1 := route(map[string]fsroute.RouteMethod{"GET": {Handler: handlerA}})
	r2 := route(map[string]fsroute.RouteMethod{"GET": {Handler: handlerB}})
	assert.NotEqual(t, Of(r1), Of(r2))
}

func TestOfDiffersWhenMethodSetChanges(t *testing.T) {
	r1 := route(map[string]fsroute.RouteMethod{"GET": {Handler: handlerA}})
	r2 := route(map[string]fsroute.RouteMethod{"GET": {Handler: handlerA}, "POST": {Handler: handlerA}})
	assert.NotEqual(t, Of(r1), Of(r2))
}

func TestOfIgnoresMethodMapIterationOrder(t *testing.T) {
	r1 := route(map[string]fsroute.RouteMethod{"GET": {Handler: handlerA}, "POST": {Handler: handlerB}})
	r2 := route(map[string]fsroute.RouteMethod{"POST": {Handler: handlerB}, "GET": {Handler: handlerA}})
	assert.Equal(t, Of(r1), Of(r2))
}

func TestOfDiffersWithSchemaPresence(t *testing.T) {
	r1 := route(map[string]fsroute.RouteMethod{"GET": {Handler: handlerA}})
	r2 := route(map[string]fsroute.RouteMethod{"GET": {Handler: handlerA, Schema: &fsroute.RouteSchema{}}})
	assert.NotEqual(t, Of(r1), Of(r2))
}
