// Package info provides the discovery resources every hypermedia API
// carries: a home document as the entry point, a sitemap enumerating the
// registered routes, a status resource with embedded health-check results,
// a version resource with build metadata, and an OpenAPI document generated
// from the route table.
package info

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/drblury/hyperweave/dispatch"
	"github.com/drblury/hyperweave/probe"
)

const defaultProbeTimeout = 2 * time.Second

// Route names the service registers under; use these with Href.
const (
	HomeRoute    = "home"
	SitemapRoute = "sitemap"
	StatusRoute  = "status"
	VersionRoute = "version"
)

// VersionProvider returns the build metadata exposed by the version
// resource. Commonly backed by values stamped in at build time.
type VersionProvider func() map[string]string

// Option configures a Service via the functional options pattern.
type Option func(*Service)

// Service owns the discovery resources. Construct it with NewService,
// register Routes with the dispatcher, then Bind the dispatcher back so
// the resources can mint links through reverse routing.
type Service struct {
	log          *slog.Logger
	title        string
	description  string
	version      VersionProvider
	probes       []probe.Named
	probeTimeout time.Duration

	d *dispatch.Dispatcher
}

// NewService constructs a Service with sensible defaults.
func NewService(opts ...Option) *Service {
	s := &Service{
		log:          slog.Default(),
		title:        "API",
		description:  "Hypermedia entry point. Follow the links.",
		version:      func() map[string]string { return map[string]string{} },
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// WithTitle sets the API title shown on the home resource and in the
// OpenAPI document.
func WithTitle(title string) Option {
	return func(s *Service) {
		if title != "" {
			s.title = title
		}
	}
}

// WithDescription sets the home resource description.
func WithDescription(description string) Option {
	return func(s *Service) {
		if description != "" {
			s.description = description
		}
	}
}

// WithVersionProvider swaps the build metadata source.
func WithVersionProvider(provider VersionProvider) Option {
	return func(s *Service) {
		if provider != nil {
			s.version = provider
		}
	}
}

// WithProbes registers the health checks run by the status resource.
func WithProbes(probes ...probe.Named) Option {
	return func(s *Service) {
		s.probes = append(s.probes, probes...)
	}
}

// WithProbeTimeout bounds the combined runtime of the health checks.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.probeTimeout = timeout
		}
	}
}

// WithLogger injects the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.log = logger
		}
	}
}

// Routes returns the declarations for the discovery resources. Pass them to
// dispatch.WithRoutes alongside the domain routes.
func (s *Service) Routes() []dispatch.Decl {
	return []dispatch.Decl{
		{Method: http.MethodGet, Pattern: "/", Name: HomeRoute, Handler: s.Home},
		{Method: http.MethodGet, Pattern: "/sitemap", Name: SitemapRoute, Handler: s.Sitemap},
		{Method: http.MethodGet, Pattern: "/status", Name: StatusRoute, Handler: s.Status},
		{Method: http.MethodGet, Pattern: "/version", Name: VersionRoute, Handler: s.Version},
	}
}

// Bind attaches the dispatcher after construction so resources can build
// hrefs from the route table. Resources degrade to pattern literals until
// bound.
func (s *Service) Bind(d *dispatch.Dispatcher) {
	s.d = d
}

func (s *Service) href(name, fallback string) string {
	if s.d == nil {
		return fallback
	}
	href, err := s.d.Href(name, nil)
	if err != nil {
		s.log.Warn("failed to build href", "route", name, "error", err)
		return fallback
	}
	return href
}
