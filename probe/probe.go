// Package probe turns backing-service ping functions into named health
// checks. The info status resource runs them and embeds each outcome as a
// sub-resource, so a browser or a monitor reads the same document.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Func is one health check; a non-nil error marks the probed dependency as
// unavailable.
type Func func(ctx context.Context) error

// Named pairs a check with the name it reports under.
type Named struct {
	Name  string
	Check Func
}

// Result is the outcome of one executed check.
type Result struct {
	Name    string
	Healthy bool
	Detail  string
}

// Run executes the checks sequentially under a shared timeout and reports
// one result per check. A nil check reports as unhealthy rather than being
// skipped, so a miswired probe is visible instead of silently green.
func Run(ctx context.Context, timeout time.Duration, probes []Named) []Result {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make([]Result, 0, len(probes))
	for _, p := range probes {
		result := Result{Name: p.Name, Healthy: true}
		if p.Check == nil {
			result.Healthy = false
			result.Detail = "probe is not configured"
		} else if err := p.Check(runCtx); err != nil {
			result.Healthy = false
			result.Detail = describeFailure(err, timeout)
		}
		results = append(results, result)
	}
	return results
}

func describeFailure(err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("timed out after %s", timeout)
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return err.Error()
}

// DBPinger captures the subset of *sql.DB used for health checks.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// MongoPinger captures the subset of the MongoDB client used for health
// checks.
type MongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// RedisPinger captures the subset of the go-redis client used for health
// checks.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// HTTPDoer captures the subset of *http.Client used by the HTTP probe.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Ping wraps an arbitrary ping function with standard error framing.
func Ping(name string, fn func(ctx context.Context) error) Func {
	return func(ctx context.Context) error {
		if fn == nil {
			return fmt.Errorf("%s probe: ping function is nil", name)
		}
		if err := fn(ctx); err != nil {
			return fmt.Errorf("%s probe failed: %w", name, err)
		}
		return nil
	}
}

// DBPing probes databases exposing database/sql ping semantics.
func DBPing(name string, db DBPinger) Func {
	return func(ctx context.Context) error {
		if db == nil {
			return fmt.Errorf("%s probe: db client is nil", name)
		}
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("%s probe failed: %w", name, err)
		}
		return nil
	}
}

// MongoPing probes MongoDB. A nil read preference defaults to primary.
func MongoPing(client MongoPinger, rp *readpref.ReadPref) Func {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("mongo probe: client is nil")
		}
		if rp == nil {
			rp = readpref.Primary()
		}
		if err := client.Ping(ctx, rp); err != nil {
			return fmt.Errorf("mongo probe failed: %w", err)
		}
		return nil
	}
}

// RedisPing probes Redis via the go-redis client.
func RedisPing(client RedisPinger) Func {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis probe: client is nil")
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis probe failed: %w", err)
		}
		return nil
	}
}

// HTTPPing probes an HTTP endpoint; any 2xx response counts as healthy.
func HTTPPing(name, target string, client HTTPDoer) Func {
	return func(ctx context.Context) error {
		if target == "" {
			return fmt.Errorf("%s probe: target URL is required", name)
		}
		if client == nil {
			client = http.DefaultClient
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("%s probe: failed to build request: %w", name, err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("%s probe request failed: %w", name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%s probe: unexpected status %d", name, resp.StatusCode)
		}
		return nil
	}
}
