// Package matcher implements the route-matching core (§4.4): a
// segment trie preferring literal children over parameter children at
// every level, scanning segments left to right. The first segment
// where two overlapping patterns differ decides between them: a
// pattern with a literal there wins even if the other pattern has more
// literal segments in total. There is no separate ranking pass over
// the total number of literal or parameter segments.
//
// Grounded on the routing tree in the nimus reference package (tree.go),
// adapted from its byte-trie/priority design to a simpler per-segment
// trie matching fsroute's ":name" parameter syntax and explicit
// Match/MethodNotAllowed/NoMatch outcomes.
package matcher

import (
	"sort"
	"strings"
	"sync"

	"github.com/fsroute/fsroute"
)

// Outcome classifies a Match call's result.
type Outcome int

const (
	// NoMatch means no registered pattern matches path at all.
	NoMatch Outcome = iota
	// Matched means a pattern matches path and supports method.
	Matched
	// MethodNotAllowed means a pattern matches path but not for method.
	MethodNotAllowed
)

// Result is the outcome of a Match call.
type Result struct {
	Outcome        Outcome
	Method         fsroute.RouteMethod
	Params         map[string]string
	AllowedMethods []string // sorted, set only when Outcome == MethodNotAllowed
	Pattern        string   // the matched registration pattern, set when Outcome != NoMatch
}

type node struct {
	static    map[string]*node
	param     *node
	paramName string
	methods   map[string]fsroute.RouteMethod
	pattern   string
}

func isEmpty(n *node) bool {
	return len(n.methods) == 0 && len(n.static) == 0 && n.param == nil
}

// Matcher is the sole arbiter of routing (§4.4): plugin-directory
// prefixing happens upstream at registration time, never here.
type Matcher struct {
	mu   sync.RWMutex
	root *node
}

// New returns an empty Matcher.
func New() *Matcher {
	return &Matcher{root: &node{}}
}

// Add registers routeMethod for method at path, overwriting any
// existing registration for the same (path, method) pair.
func (m *Matcher) Add(path, method string, routeMethod fsroute.RouteMethod) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.root
	for _, seg := range splitPath(path) {
		if isParam(seg) {
			if n.param == nil {
				n.param = &node{}
				n.paramName = seg[1:]
			}
			n = n.param
			continue
		}
		if n.static == nil {
			n.static = make(map[string]*node)
		}
		child, ok := n.static[seg]
		if !ok {
			child = &node{}
			n.static[seg] = child
		}
		n = child
	}
	if n.methods == nil {
		n.methods = make(map[string]fsroute.RouteMethod)
	}
	n.methods[method] = routeMethod
	n.pattern = path
}

// Remove deletes every method registered at path.
func (m *Matcher) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removeRec(m.root, splitPath(path), 0)
}

func removeRec(n *node, segments []string, idx int) bool {
	if idx == len(segments) {
		n.methods = nil
		n.pattern = ""
		return isEmpty(n)
	}
	seg := segments[idx]
	if isParam(seg) {
		if n.param == nil {
			return isEmpty(n)
		}
		if removeRec(n.param, segments, idx+1) {
			n.param = nil
			n.paramName = ""
		}
		return isEmpty(n)
	}
	child, ok := n.static[seg]
	if !ok {
		return isEmpty(n)
	}
	if removeRec(child, segments, idx+1) {
		delete(n.static, seg)
	}
	return isEmpty(n)
}

// Clear removes every registered route.
func (m *Matcher) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = &node{}
}

// Match resolves (path, method) to a Match, MethodNotAllowed, or
// NoMatch outcome.
func (m *Matcher) Match(path, method string) Result {
	m.mu.RLock()
	defer m.mu.RUnlock()

	params := make(map[string]string)
	n := findRec(m.root, splitPath(path), 0, params)
	if n == nil || len(n.methods) == 0 {
		return Result{Outcome: NoMatch}
	}
	if rm, ok := n.methods[method]; ok {
		return Result{Outcome: Matched, Method: rm, Params: params, Pattern: n.pattern}
	}

	allowed := make([]string, 0, len(n.methods))
	for meth := range n.methods {
		allowed = append(allowed, meth)
	}
	sort.Strings(allowed)
	return Result{Outcome: MethodNotAllowed, AllowedMethods: allowed, Pattern: n.pattern}
}

// findRec tries the static child for each segment before the param
// child, backtracking on failure, and returns the first complete match
// in that order (literal preferred at the earliest differing segment).
func findRec(n *node, segments []string, idx int, params map[string]string) *node {
	if idx == len(segments) {
		if len(n.methods) > 0 {
			return n
		}
		return nil
	}

	seg := segments[idx]
	if child, ok := n.static[seg]; ok {
		if found := findRec(child, segments, idx+1, params); found != nil {
			return found
		}
	}
	if n.param != nil {
		params[n.paramName] = seg
		if found := findRec(n.param, segments, idx+1, params); found != nil {
			return found
		}
		delete(params, n.paramName)
	}
	return nil
}

func isParam(seg string) bool { return strings.HasPrefix(seg, ":") }

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
