// Package httpcache implements conditional GET for rendered hypermedia
// responses. A middleware fingerprints each rendered body into an ETag,
// remembers it in a pluggable store, and answers a matching If-None-Match
// replay with 304 without invoking the wrapped handler again.
//
// Cache variance is opt-in: only the headers a route declares partition its
// entries. Two requests differing in an undeclared header share an entry on
// purpose, so routes serving per-caller content must declare the headers
// that distinguish callers (Authorization, typically). There is no active
// invalidation; staleness is bounded by the TTL alone.
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Entry is one remembered response fingerprint.
type Entry struct {
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"lastModified"`
}

// Store persists cache entries. Implementations must be safe for concurrent
// use; the dispatcher serves requests on many goroutines.
type Store interface {
	// Get returns the entry for key, reporting false when absent or expired.
	Get(ctx context.Context, key string) (Entry, bool, error)

	// Set stores the entry under key for the given TTL.
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
}

// ETagFor fingerprints a rendered body. The hash is truncated to 16 bytes
// for shorter headers and quoted per the ETag grammar.
func ETagFor(body []byte) string {
	sum := sha256.Sum256(body)
	return fmt.Sprintf("%q", hex.EncodeToString(sum[:16]))
}

// Key derives the cache key for a request: path, sorted query pairs, and
// the values of the declared varying headers, hashed into a fixed-size
// string.
func Key(r *http.Request, vary []string) string {
	parts := []string{r.URL.Path}

	if r.URL.RawQuery != "" {
		query := r.URL.Query()
		pairs := make([]string, 0, len(query))
		for name, values := range query {
			sorted := make([]string, len(values))
			copy(sorted, values)
			sort.Strings(sorted)
			for _, value := range sorted {
				pairs = append(pairs, name+"="+value)
			}
		}
		sort.Strings(pairs)
		parts = append(parts, strings.Join(pairs, "&"))
	}

	for _, header := range vary {
		parts = append(parts, header+"="+r.Header.Get(header))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
