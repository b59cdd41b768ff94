// Package watcher translates file-system events into registry updates
// with per-file debouncing, content-based change suppression, and
// module-cache invalidation (§4.3).
package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fsroute/fsroute"
	"github.com/fsroute/fsroute/discovery"
	"github.com/fsroute/fsroute/errs"
	"github.com/fsroute/fsroute/fingerprint"
	"github.com/fsroute/fsroute/registry"
)

// DefaultDebounce is the default per-file debounce delay (§4.3).
const DefaultDebounce = 16 * time.Millisecond

// CacheEntry is the watcher's record for one file: the routes it last
// produced, the mtime that produced them, and their combined content
// fingerprint (§3).
type CacheEntry struct {
	Routes []fsroute.Route
	Mtime  int64
	Hash   string
}

// Invalidator evicts a file from whatever host-level module cache
// would otherwise return stale code for it (§4.3, §9). When Invalidate
// fails, the watcher reports the error via OnError once per file and
// proceeds with the load. The default NoopInvalidator always succeeds —
// Go has no dynamic module cache to invalidate.
type Invalidator interface {
	Invalidate(file string) error
}

// NoopInvalidator is the default Invalidator for runtimes with no
// module cache to invalidate (Go's own compiled binaries included).
type NoopInvalidator struct{}

// Invalidate always succeeds and does nothing.
func (NoopInvalidator) Invalidate(string) error { return nil }

// Callbacks receives the watcher's notifications.
type Callbacks struct {
	OnRouteAdded   func(file string, routes []fsroute.Route)
	OnRouteChanged func(file string, routes []fsroute.Route)
	OnRouteRemoved func(file string, removed []fsroute.Route)
	OnError        func(file string, err error)
}

// Options configures a Watcher. The zero value is usable; unset fields
// fall back to their documented defaults.
type Options struct {
	Debounce    time.Duration
	IgnoreDirs  map[string]bool
	Invalidator Invalidator
	Callbacks   Callbacks
}

// Watcher watches dir for route-file changes and keeps reg in sync.
type Watcher struct {
	dir      string
	loader   discovery.Loader
	registry *registry.Registry
	opts     Options

	fsw *fsnotify.Watcher

	mu    sync.Mutex
	cache map[string]CacheEntry

	timersMu sync.Mutex
	timers   map[string]*time.Timer

	warnedOnce   sync.Map // file -> true, for the invalidation-unavailable log-once policy
	done         chan struct{}
	started      bool
}

// New creates a Watcher over dir. Call Start to begin watching.
func New(dir string, loader discovery.Loader, reg *registry.Registry, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Invalidator == nil {
		opts.Invalidator = NoopInvalidator{}
	}
	return &Watcher{
		dir:      dir,
		loader:   loader,
		registry: reg,
		opts:     opts,
		cache:    make(map[string]CacheEntry),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
}

// Start performs the initial load of dir and begins watching for
// changes. A directory-level error on the initial load is reported via
// OnError; the watcher stays alive to receive future events (§4.3).
// A missing dir is one such directory-level error. Start fails outright
// only if the fsnotify watcher cannot be created or a directory under
// dir cannot be added to it.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	walkErr := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.dir && shouldIgnoreDir(d.Name(), w.opts.IgnoreDirs) {
				return filepath.SkipDir
			}
			return fsw.Add(path)
		}
		return nil
	})
	if walkErr != nil {
		fsw.Close()
		return errs.NewDirectoryError(w.dir, walkErr)
	}

	w.initialLoad()

	w.started = true
	go w.loop()
	return nil
}

// initialLoad loads every currently-present candidate file once,
// synchronously, so GetRoutes reflects reality the instant Start
// returns.
func (w *Watcher) initialLoad() {
	files, err := discovery.ListCandidates(w.dir, w.opts.IgnoreDirs)
	if err != nil {
		w.reportError("", err)
		return
	}
	for _, file := range files {
		w.handleAddOrChange(file)
	}
}

// Close drains all pending debounce timers without processing them and
// stops watching (§4.3, §5).
func (w *Watcher) Close() error {
	if w.fsw != nil {
		w.fsw.Close()
	}

	w.timersMu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.timersMu.Unlock()

	if w.started {
		<-w.done
	}
	return nil
}

// GetRoutes returns every route currently tracked by the watcher's
// cache, flattened.
func (w *Watcher) GetRoutes() []fsroute.Route {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []fsroute.Route
	for _, entry := range w.cache {
		out = append(out, entry.Routes...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// GetRoutesByFile returns a snapshot of file -> routes.
func (w *Watcher) GetRoutesByFile() map[string][]fsroute.Route {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string][]fsroute.Route, len(w.cache))
	for file, entry := range w.cache {
		routes := make([]fsroute.Route, len(entry.Routes))
		copy(routes, entry.Routes)
		out[file] = routes
	}
	return out
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError("", err)
		}
	}
}

func (w *Watcher) handleFsEvent(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.watchNewDir(ev.Name)
			return
		}
	}

	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !discovery.IsRouteCandidate(ev.Name) {
		return
	}
	w.schedule(ev.Name)
}

// watchNewDir walks a newly created directory and adds its
// non-ignored subdirectories to the fsnotify watch list.
func (w *Watcher) watchNewDir(dir string) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if shouldIgnoreDir(d.Name(), w.opts.IgnoreDirs) {
				return filepath.SkipDir
			}
			w.fsw.Add(path)
		}
		return nil
	})
}

// schedule (re)arms path's debounce timer, canceling any pending one.
func (w *Watcher) schedule(path string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.timersMu.Lock()
		delete(w.timers, path)
		w.timersMu.Unlock()
		w.processFile(path)
	})
}

// processFile runs once the debounce window has quieted for path: it
// decides, from current disk state, whether this is a removal or an
// add/change.
func (w *Watcher) processFile(path string) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			w.handleRemoval(path)
			return
		}
		w.reportError(path, err)
		return
	}
	w.handleAddOrChange(path)
}

func (w *Watcher) handleAddOrChange(path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.reportError(path, err)
		return
	}
	mtime := info.ModTime().UnixNano()

	w.mu.Lock()
	cached, hadPrev := w.cache[path]
	w.mu.Unlock()

	if hadPrev && cached.Mtime == mtime {
		return // short-circuit: unchanged mtime, cached routes stand (§4.3 step 2)
	}

	if err := w.opts.Invalidator.Invalidate(path); err != nil {
		w.warnInvalidateOnce(path, err)
	}

	routes, err := w.loader.Load(path, w.dir)
	if err != nil {
		w.reportError(path, err)
		return
	}

	fp := combinedFingerprint(routes)
	if hadPrev && cached.Hash == fp {
		// Content unchanged (e.g. a touch or formatting-only save):
		// refresh the mtime-keyed cache entry but emit nothing (§4.3,
		// §8 "at most one onRouteChanged per distinct fingerprint").
		w.mu.Lock()
		w.cache[path] = CacheEntry{Routes: routes, Mtime: mtime, Hash: fp}
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.cache[path] = CacheEntry{Routes: routes, Mtime: mtime, Hash: fp}
	w.mu.Unlock()

	if _, err := w.registry.UpdateFromSource(path, routes); err != nil {
		w.reportError(path, err)
		return
	}

	if !hadPrev {
		if w.opts.Callbacks.OnRouteAdded != nil {
			w.opts.Callbacks.OnRouteAdded(path, routes)
		}
		return
	}
	if w.opts.Callbacks.OnRouteChanged != nil {
		w.opts.Callbacks.OnRouteChanged(path, routes)
	}
}

func (w *Watcher) handleRemoval(path string) {
	w.mu.Lock()
	cached, ok := w.cache[path]
	if ok {
		delete(w.cache, path)
	}
	w.mu.Unlock()
	if !ok {
		return
	}

	w.registry.UpdateFromSource(path, nil)

	if w.opts.Callbacks.OnRouteRemoved != nil {
		w.opts.Callbacks.OnRouteRemoved(path, cached.Routes)
	}
}

func (w *Watcher) reportError(file string, err error) {
	if w.opts.Callbacks.OnError != nil {
		w.opts.Callbacks.OnError(file, err)
	}
}

func (w *Watcher) warnInvalidateOnce(file string, err error) {
	if _, already := w.warnedOnce.LoadOrStore(file, true); already {
		return
	}
	w.reportError(file, err)
}

// combinedFingerprint joins the per-route fingerprints of a file's
// routes (sorted by path for stability) into one comparable string.
func combinedFingerprint(routes []fsroute.Route) string {
	sorted := make([]fsroute.Route, len(routes))
	copy(sorted, routes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	parts := make([]string, len(sorted))
	for i, r := range sorted {
		parts[i] = r.Path + ":" + fingerprint.Of(r)
	}
	return strings.Join(parts, "|")
}

// shouldIgnoreDir mirrors discovery's baseline ignore policy (hidden
// directories, node_modules, .git) plus any caller-supplied set.
func shouldIgnoreDir(name string, extra map[string]bool) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", ".git":
		return true
	}
	return extra[name]
}
