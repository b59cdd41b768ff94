// Package discovery walks a directory tree, selects candidate route
// module files, and loads them into Route values with bounded
// concurrency (§4.1).
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/fsroute/fsroute"
	"github.com/fsroute/fsroute/errs"
)

// Loader materializes a route module file into Route values. How the
// module is materialized is external to fsroute (§4.1); fsroute only
// requires that Load be deterministic for a given file's content and
// never cache results across content changes — caching, if any, is the
// caller's responsibility to invalidate (see package watcher).
type Loader interface {
	Load(filePath, routesDir string) ([]fsroute.Route, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(filePath, routesDir string) ([]fsroute.Route, error)

// Load calls f.
func (f LoaderFunc) Load(filePath, routesDir string) ([]fsroute.Route, error) { return f(filePath, routesDir) }

// Result is one file's load outcome.
type Result struct {
	File   string
	Routes []fsroute.Route
}

// ListCandidates walks dir and returns the absolute paths of every
// route candidate file (§4.1's selection rule), pruning directories in
// extraIgnore in addition to the baseline ignore set. The result is in
// deterministic (lexicographic, depth-first) order.
func ListCandidates(dir string, extraIgnore map[string]bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errs.NewDirectoryError(dir, err)
	}
	if !info.IsDir() {
		return nil, errs.NewDirectoryError(dir, os.ErrInvalid)
	}

	var files []string
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && shouldIgnoreDir(d.Name(), extraIgnore) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsRouteCandidate(path) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, errs.NewDirectoryError(dir, walkErr)
	}

	sort.Strings(files)
	return files, nil
}

// LoadAll loads every candidate file under dir with loader, using
// bounded concurrency W = max(1, runtime.NumCPU()) (§4.1). A single
// file's load failure is reported in failures and omitted from
// results; it never aborts the batch. LoadAll fails outright only when
// dir itself cannot be walked (DirectoryError).
func LoadAll(dir string, loader Loader, extraIgnore map[string]bool) ([]Result, []*errs.LoadError, error) {
	files, err := ListCandidates(dir, extraIgnore)
	if err != nil {
		return nil, nil, err
	}
	results, failures := loadFiles(dir, files, loader)
	return results, failures, nil
}

// loadFiles loads files in parallel with a bounded worker pool and
// returns results and failures in file order (not completion order),
// so callers see deterministic output regardless of goroutine
// scheduling.
func loadFiles(routesDir string, files []string, loader Loader) ([]Result, []*errs.LoadError) {
	w := max(1, runtime.NumCPU())

	type outcome struct {
		result  *Result
		failure *errs.LoadError
	}
	outcomes := make([]outcome, len(files))

	sem := make(chan struct{}, w)
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, file string) {
			defer wg.Done()
			defer func() { <-sem }()

			routes, err := loader.Load(file, routesDir)
			if err != nil {
				outcomes[i] = outcome{failure: errs.NewLoadError(file, err)}
				return
			}
			outcomes[i] = outcome{result: &Result{File: file, Routes: routes}}
		}(i, file)
	}
	wg.Wait()

	var results []Result
	var failures []*errs.LoadError
	for _, o := range outcomes {
		if o.failure != nil {
			failures = append(failures, o.failure)
			continue
		}
		results = append(results, *o.result)
	}
	return results, failures
}
