// Package registry owns the authoritative mapping of paths to route
// definitions, with per-source ownership tracking and conflict
// detection (§4.2). It is the sum-type-like narrow interface Design
// Note §9 describes: the only mutator is UpdateFromSource.
package registry

import (
	"sort"
	"sync"

	"github.com/fsroute/fsroute"
	"github.com/fsroute/fsroute/errs"
	"github.com/fsroute/fsroute/fingerprint"
)

// Delta reports what UpdateFromSource changed, in path order.
type Delta struct {
	Added   []string
	Changed []string
	Removed []string
}

// Conflict names a path and the sources disputing ownership of it,
// for diagnostic reporting via Conflicts().
type Conflict struct {
	Path    string
	Sources []string
}

// Registry is the mutable, concurrency-safe route store. The zero value
// is not usable; construct with New.
type Registry struct {
	mu sync.Mutex

	routesByPath map[string]fsroute.Route   // path -> route
	routesByFile map[string]map[string]bool // source -> set of paths it owns
	pathToFile   map[string]string          // path -> owning source
	fingerprints map[string]string          // path -> last known content fingerprint

	// conflicts accumulates diagnostic conflicts observed across the
	// registry's lifetime, for Conflicts(). A rejected UpdateFromSource
	// call does not mutate routesByPath et al, but it is still useful
	// diagnostic signal, so it is recorded here.
	conflicts []Conflict
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		routesByPath: make(map[string]fsroute.Route),
		routesByFile: make(map[string]map[string]bool),
		pathToFile:   make(map[string]string),
		fingerprints: make(map[string]string),
	}
}

// UpdateFromSource atomically replaces the set of paths owned by
// source with newRoutes, returning the precise delta (§4.2).
//
// If newRoutes contains a path already owned by a different source,
// the call fails with *errs.ConflictError and the registry is left
// unmodified — the sole hard-fail in the registry.
func (r *Registry) UpdateFromSource(source string, newRoutes []fsroute.Route) (Delta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := make([]fsroute.Route, len(newRoutes))
	copy(sorted, newRoutes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	newPaths := make(map[string]bool, len(sorted))
	for _, route := range sorted {
		if owner, exists := r.pathToFile[route.Path]; exists && owner != source {
			conflict := errs.ConflictError{Path: route.Path, Source: source, ExistingSource: owner}
			r.conflicts = append(r.conflicts, Conflict{Path: route.Path, Sources: []string{owner, source}})
			return Delta{}, &conflict
		}
		newPaths[route.Path] = true
	}

	prevPaths := r.routesByFile[source]

	var delta Delta

	// Deletions precede additions (§4.2 ordering/tie-breaks).
	var removedPaths []string
	for path := range prevPaths {
		if !newPaths[path] {
			removedPaths = append(removedPaths, path)
		}
	}
	sort.Strings(removedPaths)
	for _, path := range removedPaths {
		delete(r.routesByPath, path)
		delete(r.pathToFile, path)
		delete(r.fingerprints, path)
		delta.Removed = append(delta.Removed, path)
	}

	for _, route := range sorted {
		fp := fingerprint.Of(route)
		_, existed := prevPaths[route.Path]

		if !existed {
			delta.Added = append(delta.Added, route.Path)
		} else if r.fingerprints[route.Path] != fp {
			delta.Changed = append(delta.Changed, route.Path)
		}

		r.routesByPath[route.Path] = route
		r.pathToFile[route.Path] = source
		r.fingerprints[route.Path] = fp
	}

	if len(newPaths) == 0 {
		delete(r.routesByFile, source)
	} else {
		r.routesByFile[source] = newPaths
	}

	return delta, nil
}

// GetAll returns every currently registered route, in lexicographic
// path order for deterministic callers (discovery listings, tests).
func (r *Registry) GetAll() []fsroute.Route {
	r.mu.Lock()
	defer r.mu.Unlock()

	routes := make([]fsroute.Route, 0, len(r.routesByPath))
	for _, route := range r.routesByPath {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	return routes
}

// Conflicts returns diagnostic conflicts observed so far. An empty
// result implies pathToFile is currently a function — no path has more
// than one owner (§8).
func (r *Registry) Conflicts() []Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Conflict, len(r.conflicts))
	copy(out, r.conflicts)
	return out
}

// RoutesByFile returns a snapshot of source -> owned paths.
func (r *Registry) RoutesByFile() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string][]string, len(r.routesByFile))
	for source, paths := range r.routesByFile {
		list := make([]string, 0, len(paths))
		for path := range paths {
			list = append(list, path)
		}
		sort.Strings(list)
		out[source] = list
	}
	return out
}
