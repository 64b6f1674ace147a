package httpcache

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/drblury/hyperweave/router"
)

// ConditionalOption configures the Conditional middleware.
type ConditionalOption func(*conditional)

// WithLogger injects the logger used to report store failures. Store errors
// degrade to cache misses; they never fail the request.
func WithLogger(logger *slog.Logger) ConditionalOption {
	return func(c *conditional) {
		if logger != nil {
			c.log = logger
		}
	}
}

type conditional struct {
	store Store
	ttl   time.Duration
	vary  []string
	log   *slog.Logger
}

// Conditional returns a middleware applying conditional GET semantics to
// the wrapped handler. Only GET requests participate; every other method
// passes through untouched, with no fingerprinting and no cache headers.
//
// A request whose If-None-Match equals the remembered unexpired fingerprint
// is answered 304 with an empty body and X-Cache: HIT without running the
// handler. Anything else runs the handler, fingerprints the rendered body,
// remembers it for ttl, and replies with ETag, Last-Modified,
// Cache-Control, Vary, and X-Cache: MISS headers. The vary arguments name
// the request headers whose values partition the cache for this route.
func Conditional(store Store, ttl time.Duration, vary []string, opts ...ConditionalOption) router.Middleware {
	c := &conditional{
		store: store,
		ttl:   ttl,
		vary:  append([]string(nil), vary...),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || c.store == nil || c.ttl <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := Key(r, c.vary)

			entry, ok, err := c.store.Get(r.Context(), key)
			if err != nil {
				c.log.Warn("cache store read failed, treating as miss", "error", err)
				ok = false
			}

			if ok && ifNoneMatchContains(r.Header.Get("If-None-Match"), entry.ETag) {
				c.writeCacheHeaders(w, entry)
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusNotModified)
				return
			}

			recorder := newResponseRecorder(w)
			next.ServeHTTP(recorder, r)

			if recorder.status < 200 || recorder.status >= 300 {
				recorder.flush()
				return
			}

			fresh := Entry{
				ETag:         ETagFor(recorder.body.Bytes()),
				LastModified: time.Now().UTC().Truncate(time.Second),
			}
			if err := c.store.Set(r.Context(), key, fresh, c.ttl); err != nil {
				c.log.Warn("cache store write failed", "error", err)
			}

			c.writeCacheHeaders(w, fresh)
			w.Header().Set("X-Cache", "MISS")
			recorder.flush()
		})
	}
}

func (c *conditional) writeCacheHeaders(w http.ResponseWriter, entry Entry) {
	w.Header().Set("ETag", entry.ETag)
	w.Header().Set("Last-Modified", entry.LastModified.UTC().Format(http.TimeFormat))
	w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d, must-revalidate", int(c.ttl.Seconds())))
	if len(c.vary) > 0 {
		w.Header().Set("Vary", strings.Join(c.vary, ", "))
	}
}

// ifNoneMatchContains reports whether the If-None-Match header names the
// given ETag. Weak prefixes are ignored for comparison and * matches any
// stored fingerprint.
func ifNoneMatchContains(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	if header == "*" {
		return true
	}

	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}

// responseRecorder buffers the wrapped handler's response so the body can
// be fingerprinted before anything reaches the client.
type responseRecorder struct {
	inner  http.ResponseWriter
	status int
	body   bytes.Buffer
}

func newResponseRecorder(inner http.ResponseWriter) *responseRecorder {
	return &responseRecorder{
		inner:  inner,
		status: http.StatusOK,
	}
}

func (r *responseRecorder) Header() http.Header {
	return r.inner.Header()
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	return r.body.Write(data)
}

func (r *responseRecorder) flush() {
	r.inner.WriteHeader(r.status)
	if r.body.Len() > 0 {
		// Write errors surface through the server's connection handling.
		_, _ = r.inner.Write(r.body.Bytes())
	}
}
