package dispatch

import (
	"context"
	"net/http"
	"net/url"

	"github.com/drblury/hyperweave/router"
)

// Request is what a resource handler receives: the raw request plus the
// path parameters captured by the route match and the parsed query.
type Request struct {
	HTTP   *http.Request
	Params router.Params
	Query  url.Values
}

// Param returns a captured path parameter, empty when absent.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// Header performs a case-insensitive header lookup.
func (r *Request) Header(name string) string {
	return r.HTTP.Header.Get(name)
}

type contextKey int

const paramsKey contextKey = iota

func contextWithParams(ctx context.Context, params router.Params) context.Context {
	return context.WithValue(ctx, paramsKey, params)
}

func paramsFromContext(r *http.Request) router.Params {
	if params, ok := r.Context().Value(paramsKey).(router.Params); ok {
		return params
	}
	return router.Params{}
}
