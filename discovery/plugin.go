package discovery

import (
	"path"
	"strings"

	"github.com/fsroute/fsroute"
	"github.com/fsroute/fsroute/errs"
)

// PluginDir is an additional routes directory mounted under Prefix
// (§6 "optional per-plugin directories, each with an optional prefix
// string").
type PluginDir struct {
	Dir    string
	Prefix string
}

// LoadPlugin loads every candidate file under p.Dir and applies p.Prefix
// to the resulting routes (§6). warn receives ApplyPrefix's diagnostic,
// if any; it may be nil.
func LoadPlugin(p PluginDir, loader Loader, extraIgnore map[string]bool, warn func(string)) ([]Result, []*errs.LoadError, error) {
	results, failures, err := LoadAll(p.Dir, loader, extraIgnore)
	if err != nil {
		return nil, nil, err
	}
	for i := range results {
		results[i].Routes = ApplyPrefix(results[i].Routes, p.Prefix, warn)
	}
	return results, failures, nil
}

// LoadAllWithPlugins loads dir as the primary routes directory, then
// loads and prefixes each of plugins in order, returning every file's
// results concatenated (primary first, then plugins in list order).
// A single plugin's or the primary directory's DirectoryError aborts
// the whole call, matching LoadAll's own directory-level failure
// behavior (§4.1); a single file's LoadError within any directory
// never does.
func LoadAllWithPlugins(dir string, plugins []PluginDir, loader Loader, extraIgnore map[string]bool, warn func(string)) ([]Result, []*errs.LoadError, error) {
	results, failures, err := LoadAll(dir, loader, extraIgnore)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range plugins {
		pluginResults, pluginFailures, err := LoadPlugin(p, loader, extraIgnore, warn)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, pluginResults...)
		failures = append(failures, pluginFailures...)
	}
	return results, failures, nil
}

// ApplyPrefix rewrites every route's Path by prepending prefix,
// leaving routes untouched when prefix is empty. Prefixing happens
// once, at registration time — the matcher never applies prefixes
// itself (§4.4).
//
// Open question (spec.md §9): the source logs a warning when basePath
// does not start with "/" and otherwise ignores the value; this
// implementation also warns, but then uses the prefix literally,
// neither normalizing nor rejecting it — since a
// caller who supplied a literal prefix most likely intends it exactly
// as written.
func ApplyPrefix(routes []fsroute.Route, prefix string, warn func(string)) []fsroute.Route {
	if prefix == "" {
		return routes
	}
	if !strings.HasPrefix(prefix, "/") && warn != nil {
		warn("route prefix " + prefix + " does not start with \"/\"; using it literally")
	}

	out := make([]fsroute.Route, len(routes))
	for i, r := range routes {
		out[i] = r
		out[i].Path = path.Join(prefix, r.Path)
		if r.Path == "/" {
			// path.Join("/api", "/") collapses to "/api"; keep the
			// trailing-slash index route meaningful under a prefix.
			out[i].Path = prefix
		}
	}
	return out
}
