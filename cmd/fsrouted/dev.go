package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fsroute/fsroute"
	"github.com/fsroute/fsroute/discovery"
	"github.com/fsroute/fsroute/discovery/astloader"
	"github.com/fsroute/fsroute/matcher"
	"github.com/fsroute/fsroute/registry"
	"github.com/fsroute/fsroute/router"
	"github.com/fsroute/fsroute/server"
	"github.com/fsroute/fsroute/watcher"
)

func newDevCommand() *cobra.Command {
	var port string
	var dir string
	var plugins []string

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		RunE: func(cmd *cobra.Command, args []string) error {
			pluginDirs, err := parsePluginFlags(plugins)
			if err != nil {
				return err
			}
			return runDev(dir, port, pluginDirs)
		},
	}
	cmd.Flags().StringVar(&port, "port", "3000", "HTTP server port")
	cmd.Flags().StringVar(&dir, "dir", ".", "routes directory to watch")
	cmd.Flags().StringArrayVar(&plugins, "plugin", nil, "additional routes directory as dir:prefix (repeatable); loaded once at startup, not hot-reloaded")
	return cmd
}

// parsePluginFlags turns repeated --plugin dir:prefix flags into
// discovery.PluginDir values (§6 "optional per-plugin directories,
// each with an optional prefix string"). A flag with no ":prefix"
// suffix mounts at the root (empty prefix).
func parsePluginFlags(flags []string) ([]discovery.PluginDir, error) {
	out := make([]discovery.PluginDir, 0, len(flags))
	for _, f := range flags {
		dir, prefix, _ := strings.Cut(f, ":")
		if dir == "" {
			return nil, fmt.Errorf("invalid --plugin value %q: expected dir or dir:prefix", f)
		}
		out = append(out, discovery.PluginDir{Dir: dir, Prefix: prefix})
	}
	return out, nil
}

func runDev(dir, port string, plugins []discovery.PluginDir) error {
	logger := fsroute.NewLogger()
	reg := registry.New()
	m := matcher.New()
	loader := discovery.LoaderFunc(astloader.New())

	loadPlugins(reg, loader, plugins, logger)

	w := watcher.New(dir, loader, reg, watcher.Options{
		Callbacks: watcher.Callbacks{
			OnRouteAdded: func(file string, routes []fsroute.Route) {
				fmt.Printf("  [added]   %s (%d routes)\n", file, len(routes))
				rebuildMatcher(reg, m)
			},
			OnRouteChanged: func(file string, routes []fsroute.Route) {
				fmt.Printf("  [changed] %s (%d routes)\n", file, len(routes))
				rebuildMatcher(reg, m)
			},
			OnRouteRemoved: func(file string, removed []fsroute.Route) {
				fmt.Printf("  [removed] %s\n", file)
				rebuildMatcher(reg, m)
			},
			OnError: func(file string, err error) {
				fmt.Fprintf(os.Stderr, "  [error]   %s: %s\n", file, err)
			},
		},
	})

	fmt.Print("  Route discovery . ")
	t := time.Now()
	if err := w.Start(); err != nil {
		fmt.Println("FAILED")
		return fmt.Errorf("starting watcher: %w", err)
	}
	rebuildMatcher(reg, m) // catch plugin routes even if the primary dir had no files to trigger a callback
	fmt.Printf("done (%d routes) [%s]\n", len(reg.GetAll()), fmtDuration(time.Since(t)))

	for _, c := range reg.Conflicts() {
		fmt.Fprintf(os.Stderr, "  [conflict] %s: %v\n", c.Path, c.Sources)
	}

	srv := server.New(reg, m, server.Options{Logger: logger})
	mux := router.New(srv)

	httpServer := &http.Server{Addr: ":" + port, Handler: mux}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		fmt.Printf("  HTTP server ..... listening on :%s\n", port)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-sigCh:
		fmt.Println("\n  shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(ctx)
	}

	return w.Close()
}

// loadPlugins loads each plugin directory once and registers its
// (prefixed) routes into reg with each route file's path as source, so the
// registry's conflict detection and per-source tracking (§4.2) apply
// to plugin-owned routes exactly like file-owned ones. Unlike the
// primary dir, plugin directories are not watched: §6 only requires
// them to be discoverable at startup.
func loadPlugins(reg *registry.Registry, loader discovery.Loader, plugins []discovery.PluginDir, logger *fsroute.Logger) {
	for _, p := range plugins {
		warn := func(msg string) { logger.Warn(msg, "plugin", p.Dir) }
		results, failures, err := discovery.LoadPlugin(p, loader, nil, warn)
		if err != nil {
			logger.Error("loading plugin directory failed", "dir", p.Dir, "error", err.Error())
			continue
		}
		for _, f := range failures {
			logger.Error("loading plugin route file failed", "error", f.Error())
		}
		routeCount := 0
		for _, r := range results {
			if _, err := reg.UpdateFromSource(r.File, r.Routes); err != nil {
				logger.Error("registering plugin routes failed", "file", r.File, "error", err.Error())
			}
			routeCount += len(r.Routes)
		}
		fmt.Printf("  Plugin %s (prefix %q) . done (%d routes)\n", p.Dir, p.Prefix, routeCount)
	}
}

// rebuildMatcher rehydrates m from reg's full current state. Route
// tables are small enough in dev use that a full rebuild on every
// change is simpler and less error-prone than diffing registry deltas
// into matcher add/remove calls.
func rebuildMatcher(reg *registry.Registry, m *matcher.Matcher) {
	m.Clear()
	for _, route := range reg.GetAll() {
		for method, rm := range route.Methods {
			m.Add(route.Path, method, rm)
		}
	}
}

func fmtDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
