package discovery

import (
	"path/filepath"
	"strings"
)

// defaultIgnoreDirs is the baseline ignore set (§4.1): "{node_modules,
// .git}". shouldIgnoreDir also prunes every hidden directory, as the
// watcher does (§4.3).
var defaultIgnoreDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// moduleExtensions are the file extensions the host recognizes as
// route module files.
var moduleExtensions = map[string]bool{
	".go": true,
}

// shouldIgnoreDir reports whether dirName should be pruned from a walk.
func shouldIgnoreDir(dirName string, extraIgnores map[string]bool) bool {
	if strings.HasPrefix(dirName, ".") {
		return true
	}
	if defaultIgnoreDirs[dirName] {
		return true
	}
	return extraIgnores[dirName]
}

// IsRouteCandidate reports whether path names a valid route module
// file, per §4.1's selection rule:
//
//   - does not begin with "_"
//   - has a recognized module-file extension
//   - is not named index.*
//   - does not match a test pattern (*.test.*, *.spec.*), type
//     declarations, source maps, or editor backup files
func IsRouteCandidate(path string) bool {
	name := filepath.Base(path)

	if strings.HasPrefix(name, "_") {
		return false
	}
	if strings.HasSuffix(name, "~") {
		return false // editor backup file
	}

	ext := filepath.Ext(name)
	if !moduleExtensions[ext] {
		return false
	}

	stem := strings.TrimSuffix(name, ext)
	if stem == "index" {
		return false
	}
	if strings.HasSuffix(stem, ".test") || strings.HasSuffix(stem, ".spec") {
		return false
	}
	if strings.HasSuffix(stem, ".d") {
		return false // type declaration, e.g. foo.d.go-style stub
	}
	if strings.HasSuffix(name, ".map") {
		return false // source map
	}

	return true
}
