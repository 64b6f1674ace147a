// Package router maps (method, path) pairs onto named routes and builds
// concrete hrefs back from route names. Patterns are literal segments
// interspersed with {name} placeholders; matching is segment-wise, first
// declared route wins on overlaps, and a trailing slash is a distinct
// (empty) segment rather than being normalised away. Query strings never
// participate in matching.
//
// The package also carries the middleware helpers route handlers are
// wrapped with at registration time: request logging, CORS, timeouts, and
// OpenAPI request validation.
package router

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrRouteNotRegistered reports a reverse lookup against an unknown route
// name.
var ErrRouteNotRegistered = errors.New("router: route not registered")

// MissingParamError reports a reverse lookup that left a placeholder
// unfilled.
type MissingParamError struct {
	Route string
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("router: route %q requires parameter %q", e.Route, e.Param)
}

// Route declares one entry of the table. Name identifies the handler for
// reverse lookups and must be unique.
type Route struct {
	Method  string
	Pattern string
	Name    string
}

// Params holds the path values captured by a match, keyed by placeholder
// name.
type Params map[string]string

// Match is the result of resolving a concrete request path.
type Match struct {
	Route  Route
	Params Params
}

type segment struct {
	literal string
	param   string
}

type compiledRoute struct {
	route    Route
	segments []segment
}

// Table is the compiled, immutable route set. Build it once at startup with
// NewTable.
type Table struct {
	routes []compiledRoute
	byName map[string]int
}

// NewTable compiles the declared routes. It fails fast on an invalid
// pattern, a duplicate method+pattern pair, or a duplicate name, so a
// misdeclared route aborts process start instead of shadowing silently.
func NewTable(routes ...Route) (*Table, error) {
	table := &Table{
		routes: make([]compiledRoute, 0, len(routes)),
		byName: make(map[string]int, len(routes)),
	}

	declared := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		if route.Method == "" {
			return nil, fmt.Errorf("router: route %q has no method", route.Name)
		}
		if route.Name == "" {
			return nil, fmt.Errorf("router: route %s %s has no name", route.Method, route.Pattern)
		}

		segments, err := compilePattern(route.Pattern)
		if err != nil {
			return nil, fmt.Errorf("router: route %q: %w", route.Name, err)
		}

		key := route.Method + " " + route.Pattern
		if _, dup := declared[key]; dup {
			return nil, fmt.Errorf("router: duplicate route %s %s", route.Method, route.Pattern)
		}
		declared[key] = struct{}{}

		if _, dup := table.byName[route.Name]; dup {
			return nil, fmt.Errorf("router: duplicate route name %q", route.Name)
		}

		table.byName[route.Name] = len(table.routes)
		table.routes = append(table.routes, compiledRoute{route: route, segments: segments})
	}

	return table, nil
}

func compilePattern(pattern string) ([]segment, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", pattern)
	}

	parts := strings.Split(pattern[1:], "/")
	segments := make([]segment, 0, len(parts))
	seen := make(map[string]struct{})
	for _, part := range parts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			name := part[1 : len(part)-1]
			if name == "" {
				return nil, fmt.Errorf("pattern %q has an unnamed placeholder", pattern)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("pattern %q repeats placeholder %q", pattern, name)
			}
			seen[name] = struct{}{}
			segments = append(segments, segment{param: name})
			continue
		}
		segments = append(segments, segment{literal: part})
	}

	return segments, nil
}

// Routes returns the declared routes in registration order.
func (t *Table) Routes() []Route {
	routes := make([]Route, 0, len(t.routes))
	for _, compiled := range t.routes {
		routes = append(routes, compiled.route)
	}
	return routes
}

// Match resolves a method and concrete path to the first declared route
// that accepts them. Methods compare exactly; placeholders match any
// non-empty segment and are captured by name.
func (t *Table) Match(method, path string) (*Match, bool) {
	if !strings.HasPrefix(path, "/") {
		return nil, false
	}

	parts := strings.Split(path[1:], "/")
	for _, compiled := range t.routes {
		if compiled.route.Method != method {
			continue
		}
		params, ok := matchSegments(compiled.segments, parts)
		if !ok {
			continue
		}
		return &Match{Route: compiled.route, Params: params}, true
	}

	return nil, false
}

func matchSegments(segments []segment, parts []string) (Params, bool) {
	if len(segments) != len(parts) {
		return nil, false
	}

	params := make(Params)
	for i, seg := range segments {
		part := parts[i]
		if seg.param != "" {
			if part == "" {
				return nil, false
			}
			value, err := url.PathUnescape(part)
			if err != nil {
				value = part
			}
			params[seg.param] = value
			continue
		}
		if seg.literal != part {
			return nil, false
		}
	}

	return params, true
}

// Href builds a concrete path for the named route by substituting the
// supplied parameter values into its pattern. Values are URL-escaped.
func (t *Table) Href(name string, params Params) (string, error) {
	idx, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRouteNotRegistered, name)
	}

	compiled := t.routes[idx]
	var b strings.Builder
	for _, seg := range compiled.segments {
		b.WriteByte('/')
		if seg.param == "" {
			b.WriteString(seg.literal)
			continue
		}
		value, ok := params[seg.param]
		if !ok || value == "" {
			return "", &MissingParamError{Route: name, Param: seg.param}
		}
		b.WriteString(url.PathEscape(value))
	}

	return b.String(), nil
}
