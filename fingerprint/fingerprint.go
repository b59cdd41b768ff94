// Package fingerprint computes the canonical content fingerprint used
// by both the registry's change detection (§4.2) and the watcher's
// change-event suppression (§4.3), so the two always agree on whether
// a route's content changed.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"reflect"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/fsroute/fsroute"
)

// Of projects route onto the canonical form §9 specifies — path;
// sorted method names; handler source form; middleware count; presence
// of a schema and sorted schema section names — and returns its MD5
// digest, hex-encoded.
//
// This projection is deliberately coarse: it trades occasional false
// "unchanged" verdicts (e.g. a logically equivalent schema rewrite) for
// robust de-duplication of spurious change events (§9).
func Of(route fsroute.Route) string {
	h := md5.New()

	io.WriteString(h, route.Path)
	io.WriteString(h, "\n")

	methods := make([]string, 0, len(route.Methods))
	for m := range route.Methods {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	for _, m := range methods {
		rm := route.Methods[m]
		io.WriteString(h, m)
		io.WriteString(h, "\n")
		io.WriteString(h, handlerSourceForm(rm))
		io.WriteString(h, "\n")
		io.WriteString(h, strconv.Itoa(len(rm.Middleware)))
		io.WriteString(h, "\n")
		if rm.Schema == nil {
			io.WriteString(h, "no-schema\n")
			continue
		}
		io.WriteString(h, "schema:")
		io.WriteString(h, strings.Join(sortedSchemaSections(rm.Schema), ","))
		io.WriteString(h, "\n")
	}

	return hex.EncodeToString(h.Sum(nil))
}

// handlerSourceForm is a stable textual stand-in for "handler source
// form" (§9). fsroute cannot portably dump a function's source text at
// runtime, so it uses the handler's reflected pointer identity, which
// is stable across reloads only when the *same compiled code* backs
// the route — exactly the invariant the fingerprint needs to detect
// "this file's code changed" across a hot reload that recompiles and
// reloads the module.
func handlerSourceForm(rm fsroute.RouteMethod) string {
	if rm.Handler == nil {
		return "nil"
	}
	ptr := reflect.ValueOf(rm.Handler).Pointer()
	if fn := runtime.FuncForPC(ptr); fn != nil {
		file, line := fn.FileLine(ptr)
		return fmt.Sprintf("%s:%s:%d", fn.Name(), file, line)
	}
	return fmt.Sprintf("%#x", ptr)
}

func sortedSchemaSections(s *fsroute.RouteSchema) []string {
	var sections []string
	if s.Params != nil {
		sections = append(sections, "params")
	}
	if s.Query != nil {
		sections = append(sections, "query")
	}
	if s.Body != nil {
		sections = append(sections, "body")
	}
	if s.Files != nil {
		sections = append(sections, "files")
	}
	if s.Response != nil {
		sections = append(sections, "response")
	}
	sort.Strings(sections)
	return sections
}
