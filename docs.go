// Package hyperweave bundles composable building blocks for hypermedia-driven
// (HATEOAS) HTTP APIs in Go. The module stays intentionally small and
// encourages teams to pull in only the packages they need, keeping binaries
// lean and dependencies predictable.
//
// A domain object becomes a self-describing document carrying data, links,
// embedded sub-resources, and HAL-FORMS style action templates. The same
// document renders either as structured data for machine clients or as
// navigable hypertext for browsers, chosen per request from the Accept
// header.
//
// # Packages
//
//   - hypermedia: the resource model (links, embedded resources, action
//     templates) and the document serialization algorithm.
//   - render: renderers turning a document into application/hal+json or
//     text/html, including problem-document error rendering.
//   - negotiate: Accept header parsing and representation selection.
//   - router: route table with named path segments, reverse href building,
//     and middleware helpers (request logging, CORS, OpenAPI validation).
//   - httpcache: conditional GET middleware with ETag fingerprints and
//     pluggable stores (in-memory, Redis).
//   - dispatch: the dispatcher tying routing, negotiation, rendering, and
//     error handling together behind a plain http.Handler.
//   - apierr: the typed error taxonomy handlers raise and the dispatcher
//     maps onto HTTP problem responses.
//   - info: ready-made home, sitemap, status, and version resources plus an
//     OpenAPI document generated from the route table.
//   - probe: adapters that turn database ping functions or arbitrary
//     closures into named health checks for the status resource.
//   - jsonutil: tiny helpers around sonic for performance-sensitive encoding
//     tasks.
//
// # Quick Start
//
//	d, err := dispatch.New(
//	    dispatch.WithLogger(logger),
//	    dispatch.WithRoutes(
//	        dispatch.Decl{Method: http.MethodGet, Pattern: "/users/{userId}", Name: "user", Handler: getUser},
//	    ),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", d)
//
// Handlers return hypermedia resources instead of writing bytes; the
// dispatcher negotiates the representation, renders the document, and maps
// typed errors to problem responses with correlation identifiers.
package hyperweave
