package dispatch

import (
	"log/slog"
	"time"

	"github.com/drblury/hyperweave/httpcache"
	"github.com/drblury/hyperweave/hypermedia"
	"github.com/drblury/hyperweave/router"
)

// Handler produces the hypermedia resource for a matched request, or a
// typed error from apierr. Handlers never write to the response themselves;
// the dispatcher negotiates the representation and renders the result.
type Handler func(*Request) (hypermedia.Resource, error)

// Decl declares one route: where it lives, what handles it, and the layers
// wrapped around it. Middlewares listed here run outside the caching layer,
// so logging and auth enforcement still see requests answered from cache.
type Decl struct {
	Method  string
	Pattern string
	Name    string
	Handler Handler

	Middlewares []router.Middleware

	// CacheTTL > 0 wraps the route with conditional GET caching; a negative
	// value opts the route out of a dispatcher-wide default TTL. Vary names
	// the request headers partitioning the route's cache entries; routes
	// serving per-caller content must list the headers that distinguish
	// callers or responses will be shared across them.
	CacheTTL time.Duration
	Vary     []string
}

// Option configures a Dispatcher via the functional options pattern.
type Option func(*settings)

type settings struct {
	decls      []Decl
	logger     *slog.Logger
	base       hypermedia.Links
	store      httpcache.Store
	defaultTTL time.Duration
}

func defaultSettings() *settings {
	return &settings{
		logger: slog.Default(),
		base:   hypermedia.NewLinks(),
	}
}

// WithRoutes appends route declarations. Declaration order is significant:
// the first matching route wins on overlapping patterns.
func WithRoutes(decls ...Decl) Option {
	return func(s *settings) {
		s.decls = append(s.decls, decls...)
	}
}

// WithLogger injects the structured logger used for request and problem
// logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBaseLink adds a base navigation link (home, sitemap) merged into
// every rendered document. Adapter-declared relations override base links
// on collision.
func WithBaseLink(rel string, link hypermedia.Link) Option {
	return func(s *settings) {
		s.base.Set(rel, link)
	}
}

// WithCacheStore replaces the cache store shared by the routes declaring a
// CacheTTL. Defaults to a fresh in-memory store per dispatcher.
func WithCacheStore(store httpcache.Store) Option {
	return func(s *settings) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDefaultCacheTTL enables conditional caching for every GET route that
// does not declare its own CacheTTL. Routes opt out with a negative CacheTTL.
func WithDefaultCacheTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}
