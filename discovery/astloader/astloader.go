// Package astloader is a reference discovery.Loader: it recognizes a
// route file that declares one exported function per HTTP method
// (GET, POST, PUT, PATCH, DELETE) matching fsroute.Handler's shape, and
// builds a Route from it. How a route module is actually materialized
// is external to fsroute (§4.1) — this loader is a worked example for
// tests and demos, grounded directly on the teacher's go/ast walk
// (internal/codegen/parse.go in the source pack), not a requirement.
package astloader

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/fsroute/fsroute"
)

// httpMethodFuncs are the exported function names this loader
// recognizes as route handlers, one per HTTP method.
var httpMethodFuncs = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// New returns a discovery.Loader backed by this package's Load.
func New() LoaderFunc { return Load }

// LoaderFunc matches discovery.LoaderFunc's signature without importing
// package discovery, keeping astloader usable standalone.
type LoaderFunc func(filePath, routesDir string) ([]fsroute.Route, error)

// Load parses filePath and, if it declares any recognized HTTP-method
// functions, returns a single Route for its directory (per FolderToURLPattern
// below) with one RouteMethod per recognized function.
//
// Load is deterministic for a given file content and performs no
// caching, satisfying the Loader contract in §4.1.
func Load(filePath, routesDir string) ([]fsroute.Route, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.AllErrors)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}

	methods := make(map[string]fsroute.RouteMethod)
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil {
			continue
		}
		if !httpMethodFuncs[fn.Name.Name] {
			continue
		}
		if !matchesHandlerShape(fn) {
			continue
		}
		// The actual handler body cannot be turned into a callable
		// fsroute.Handler without compiling the package; this loader
		// installs a stub that documents which function backs the route.
		// A production Loader compiled into the binary (not parsed at
		// runtime) installs the real function value here instead.
		methods[fn.Name.Name] = fsroute.RouteMethod{Handler: stubHandler(filePath, fn.Name.Name)}
	}

	if len(methods) == 0 {
		return nil, nil
	}

	relDir, err := filepath.Rel(routesDir, filepath.Dir(filePath))
	if err != nil {
		return nil, fmt.Errorf("relativizing %s: %w", filePath, err)
	}

	return []fsroute.Route{{
		Path:    FolderToURLPattern(filepath.ToSlash(relDir)),
		Methods: methods,
	}}, nil
}

// matchesHandlerShape checks the function looks like
// func NAME(ctx *fsroute.Context, params map[string]string, logger *fsroute.Logger) (any, error),
// tolerant of import aliases on *fsroute.Context / *fsroute.Logger.
func matchesHandlerShape(fn *ast.FuncDecl) bool {
	params := fn.Type.Params
	if params.NumFields() != 3 || fn.Type.Results.NumFields() != 2 {
		return false
	}
	isPtrTo := func(e ast.Expr, name string) bool {
		star, ok := e.(*ast.StarExpr)
		if !ok {
			return false
		}
		sel, ok := star.X.(*ast.SelectorExpr)
		return ok && sel.Sel.Name == name
	}
	return isPtrTo(params.List[0].Type, "Context") && isPtrTo(params.List[len(params.List)-1].Type, "Logger")
}

// stubHandler returns a Handler placeholder whose error names the source
// function it stands in for. Every stub shares one code location, so
// package fingerprint sees all of them as the same handler: with this
// loader a file's fingerprint changes only when its route path or its
// set of method functions changes, not when a function body is edited.
func stubHandler(filePath, method string) fsroute.Handler {
	return func(ctx *fsroute.Context, params map[string]string, logger *fsroute.Logger) (any, error) {
		return nil, fmt.Errorf("astloader: %s %s has no compiled handler; supply a real Loader in production", method, filePath)
	}
}

// FolderToURLPattern converts a route folder name to an fsroute URL
// pattern. Dots become path separators, $param becomes :param, and the
// folder name "index" maps to "/" — the same convention the teacher's
// internal/conventions.FolderToURLPattern uses, adapted from chi-style
// "{param}" to fsroute's ":param" matcher syntax (§4.4).
func FolderToURLPattern(folderName string) string {
	if folderName == "." || folderName == "index" {
		return "/"
	}

	segments := strings.Split(folderName, "/")
	var out []string
	for _, seg := range segments {
		for _, part := range strings.Split(seg, ".") {
			if part == "" {
				continue
			}
			if strings.HasPrefix(part, "$") {
				out = append(out, ":"+part[1:])
			} else {
				out = append(out, part)
			}
		}
	}
	return "/" + strings.Join(out, "/")
}
