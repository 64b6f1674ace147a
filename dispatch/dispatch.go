// Package dispatch composes the hypermedia engine: it routes each request,
// invokes the resolved handler through its middleware chain, negotiates the
// response representation, renders the handler's resource, and maps typed
// errors onto problem responses. A Dispatcher is a plain http.Handler
// assembled once at startup; there is no implicit global state.
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/drblury/hyperweave/apierr"
	"github.com/drblury/hyperweave/httpcache"
	"github.com/drblury/hyperweave/hypermedia"
	"github.com/drblury/hyperweave/negotiate"
	"github.com/drblury/hyperweave/render"
	"github.com/drblury/hyperweave/router"
)

// Dispatcher routes requests to resource handlers and renders their
// results. Build one with New; the zero value is not usable.
type Dispatcher struct {
	table    *router.Table
	handlers map[string]http.Handler
	log      *slog.Logger
	base     hypermedia.Links
}

// New assembles a dispatcher from the declared routes. Route compilation
// and middleware chaining happen here, once; an invalid or duplicate
// declaration returns an error so the process aborts at startup instead of
// serving a broken table.
func New(opts ...Option) (*Dispatcher, error) {
	s := defaultSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	routes := make([]router.Route, 0, len(s.decls))
	for _, decl := range s.decls {
		if decl.Handler == nil {
			return nil, fmt.Errorf("dispatch: route %q has no handler", decl.Name)
		}
		routes = append(routes, router.Route{
			Method:  decl.Method,
			Pattern: decl.Pattern,
			Name:    decl.Name,
		})
	}

	table, err := router.NewTable(routes...)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		table:    table,
		handlers: make(map[string]http.Handler, len(s.decls)),
		log:      s.logger,
		base:     s.base,
	}

	store := s.store
	for _, decl := range s.decls {
		var chain []router.Middleware
		chain = append(chain, decl.Middlewares...)

		ttl := decl.CacheTTL
		if ttl == 0 && decl.Method == http.MethodGet {
			ttl = s.defaultTTL
		}
		if ttl > 0 {
			if store == nil {
				store = httpcache.NewMemoryStore()
			}
			chain = append(chain, httpcache.Conditional(store, ttl, decl.Vary, httpcache.WithLogger(s.logger)))
		}

		d.handlers[decl.Name] = router.Chain(d.resourceHandler(decl.Handler), chain...)
	}

	return d, nil
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Match against the escaped form: net/http already decoded r.URL.Path,
	// and the table performs the one decode per captured segment. Matching
	// the decoded path would decode twice and re-split values containing an
	// escaped slash.
	path := r.URL.EscapedPath()
	if path == "" {
		path = r.URL.Path
	}

	match, ok := d.table.Match(r.Method, path)
	if !ok {
		d.writeError(w, r, apierr.NotFound(fmt.Sprintf("no resource at %s %s", r.Method, r.URL.Path)))
		return
	}

	handler, ok := d.handlers[match.Route.Name]
	if !ok {
		d.writeError(w, r, apierr.Internal("route has no handler").Wrap(errors.New(match.Route.Name)))
		return
	}

	r = r.WithContext(contextWithParams(r.Context(), match.Params))
	handler.ServeHTTP(w, r)
}

// Routes returns the registered routes in declaration order.
func (d *Dispatcher) Routes() []router.Route {
	return d.table.Routes()
}

// Href builds a concrete path for a registered route so handlers can mint
// links without hardcoding URLs.
func (d *Dispatcher) Href(name string, params router.Params) (string, error) {
	return d.table.Href(name, params)
}

// resourceHandler adapts one resource handler into an http.Handler: invoke,
// negotiate, serialize, write. Errors, typed or not, become problem
// responses in the negotiated representation.
func (d *Dispatcher) resourceHandler(handler Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &Request{
			HTTP:   r,
			Params: paramsFromContext(r),
			Query:  r.URL.Query(),
		}

		resource, err := handler(req)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		if resource == nil {
			d.writeError(w, r, apierr.Internal("handler returned no resource"))
			return
		}

		representation := negotiate.Select(r.Header.Get("Accept"))
		doc := hypermedia.ToDocument(resource, d.base)

		body, err := renderDocument(doc, representation)
		if err != nil {
			d.writeError(w, r, apierr.Internal("failed to render resource").Wrap(err))
			return
		}

		w.Header().Set("Content-Type", representation.ContentType())
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			d.log.Error("failed to write response", "error", err)
		}
	})
}

func renderDocument(doc *hypermedia.Document, representation negotiate.Representation) ([]byte, error) {
	if representation == negotiate.StructuredData {
		return render.JSON(doc)
	}
	return render.HTML(doc)
}
