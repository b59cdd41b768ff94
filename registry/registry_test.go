package registry

import (
	"testing"

	"github.com/fsroute/fsroute"
	"github.com/fsroute/fsroute/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handler(ctx *fsroute.Context, params map[string]string, logger *fsroute.Logger) (any, error) {
	return nil, nil
}

func route(path string) fsroute.Route {
	return fsroute.Route{Path: path, Methods: map[string]fsroute.RouteMethod{"GET": {Handler: handler}}}
}

func TestUpdateFromSourceReportsAdded(t *testing.T) {
	r := New()

	delta, err := r.UpdateFromSource("a.go", []fsroute.Route{route("/users"), route("/posts")})
	require.NoError(t, err)
	assert.Equal(t, []string{"/posts", "/users"}, delta.Added)
	assert.Empty(t, delta.Changed)
	assert.Empty(t, delta.Removed)

	assert.Len(t, r.GetAll(), 2)
}

func TestUpdateFromSourceDetectsRemoval(t *testing.T) {
	r := New()
	_, err := r.UpdateFromSource("a.go", []fsroute.Route{route("/users"), route("/posts")})
	require.NoError(t, err)

	delta, err := r.UpdateFromSource("a.go", []fsroute.Route{route("/users")})
	require.NoError(t, err)
	assert.Equal(t, []string{"/posts"}, delta.Removed)
	assert.Empty(t, delta.Added)
	assert.Len(t, r.GetAll(), 1)
}

func TestUpdateFromSourceElidesUnchangedRoutes(t *testing.T) {
	r := New()
	_, err := r.UpdateFromSource("a.go", []fsroute.Route{route("/users")})
	require.NoError(t, err)

	delta, err := r.UpdateFromSource("a.go", []fsroute.Route{route("/users")})
	require.NoError(t, err)
	assert.Empty(t, delta.Added)
	assert.Empty(t, delta.Changed)
	assert.Empty(t, delta.Removed)
}

func TestUpdateFromSourceDetectsContentChange(t *testing.T) {
	r := New()
	_, err := r.UpdateFromSource("a.go", []fsroute.Route{route("/users")})
	require.NoError(t, err)

	changedRoute := fsroute.Route{
		Path: "/users",
		Methods: map[string]fsroute.RouteMethod{
			"GET":  {Handler: handler},
			"POST": {Handler: handler},
		},
	}
	delta, err := r.UpdateFromSource("a.go", []fsroute.Route{changedRoute})
	require.NoError(t, err)
	assert.Equal(t, []string{"/users"}, delta.Changed)
}

func TestUpdateFromSourceConflictDoesNotMutate(t *testing.T) {
	r := New()
	_, err := r.UpdateFromSource("a.go", []fsroute.Route{route("/users")})
	require.NoError(t, err)

	_, err = r.UpdateFromSource("b.go", []fsroute.Route{route("/users")})
	require.Error(t, err)

	var conflictErr *errs.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "/users", conflictErr.Path)

	// Registry state is untouched by the rejected call.
	all := r.GetAll()
	require.Len(t, all, 1)
	assert.Equal(t, "/users", all[0].Path)
}

func TestConflictsEmptyImpliesSingleOwnerPerPath(t *testing.T) {
	r := New()
	_, err := r.UpdateFromSource("a.go", []fsroute.Route{route("/users")})
	require.NoError(t, err)
	_, err = r.UpdateFromSource("b.go", []fsroute.Route{route("/posts")})
	require.NoError(t, err)

	assert.Empty(t, r.Conflicts())
}

func TestUpdateFromSourceEmptyClearsSource(t *testing.T) {
	r := New()
	_, err := r.UpdateFromSource("a.go", []fsroute.Route{route("/users")})
	require.NoError(t, err)

	delta, err := r.UpdateFromSource("a.go", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/users"}, delta.Removed)
	assert.Empty(t, r.GetAll())
	assert.Empty(t, r.RoutesByFile())
}
