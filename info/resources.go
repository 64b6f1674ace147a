package info

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/drblury/hyperweave/dispatch"
	"github.com/drblury/hyperweave/hypermedia"
	"github.com/drblury/hyperweave/probe"
)

// Home is the API entry point: a message resource whose links lead to
// everything else.
func (s *Service) Home(_ *dispatch.Request) (hypermedia.Resource, error) {
	msg := hypermedia.NewMessage().
		Set("title", s.title).
		Set("description", s.description).
		Self(s.href(HomeRoute, "/"))
	msg.SetLink(SitemapRoute, hypermedia.Link{Href: s.href(SitemapRoute, "/sitemap"), Title: "Sitemap"})
	msg.SetLink(StatusRoute, hypermedia.Link{Href: s.href(StatusRoute, "/status"), Title: "Status"})
	msg.SetLink(VersionRoute, hypermedia.Link{Href: s.href(VersionRoute, "/version"), Title: "Version"})
	return msg, nil
}

// Sitemap enumerates the registered GET routes as one link per relation.
// Patterns with placeholders surface as templated links.
func (s *Service) Sitemap(_ *dispatch.Request) (hypermedia.Resource, error) {
	msg := hypermedia.NewMessage().Self(s.href(SitemapRoute, "/sitemap"))

	count := 0
	if s.d != nil {
		for _, route := range s.d.Routes() {
			if route.Method != http.MethodGet || route.Name == SitemapRoute {
				continue
			}
			msg.SetLink(route.Name, hypermedia.Link{
				Href:      route.Pattern,
				Templated: strings.Contains(route.Pattern, "{"),
			})
			count++
		}
	}
	msg.Set("routes", count)
	return msg, nil
}

// statusResource embeds one sub-resource per executed health check.
type statusResource struct {
	self      string
	checkedAt time.Time
	results   []probe.Result
}

func (r *statusResource) Links() hypermedia.Links {
	return hypermedia.NewLinks().Self(r.self)
}

func (r *statusResource) Fields() []hypermedia.Field {
	return []hypermedia.Field{
		{Name: "status", Value: func() any {
			for _, result := range r.results {
				if !result.Healthy {
					return "DEGRADED"
				}
			}
			return "HEALTHY"
		}},
		{Name: "checkedAt", Value: func() any { return r.checkedAt.Format(time.RFC3339) }},
	}
}

func (r *statusResource) Embedded() []hypermedia.Embed {
	if len(r.results) == 0 {
		return nil
	}

	resources := make([]hypermedia.Resource, 0, len(r.results))
	for _, result := range r.results {
		check := hypermedia.NewMessage().
			Set("name", result.Name).
			Set("healthy", result.Healthy)
		if result.Detail != "" {
			check.Set("detail", result.Detail)
		}
		resources = append(resources, check)
	}
	return []hypermedia.Embed{{Rel: "checks", Resources: resources}}
}

// Status runs the configured health checks and reports each outcome as an
// embedded sub-resource.
func (s *Service) Status(req *dispatch.Request) (hypermedia.Resource, error) {
	return &statusResource{
		self:      s.href(StatusRoute, "/status"),
		checkedAt: time.Now().UTC(),
		results:   probe.Run(req.HTTP.Context(), s.probeTimeout, s.probes),
	}, nil
}

// Version exposes the configured build metadata, keys sorted for stable
// output.
func (s *Service) Version(_ *dispatch.Request) (hypermedia.Resource, error) {
	msg := hypermedia.NewMessage().Self(s.href(VersionRoute, "/version"))

	values := s.version()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		msg.Set(key, values[key])
	}
	return msg, nil
}
