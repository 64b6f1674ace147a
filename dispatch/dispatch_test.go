package dispatch

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drblury/hyperweave/apierr"
	"github.com/drblury/hyperweave/hypermedia"
	"github.com/drblury/hyperweave/negotiate"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userHandler(req *Request) (hypermedia.Resource, error) {
	id := req.Param("userId")
	if id == "missing" {
		return nil, apierr.NotFound("user does not exist")
	}
	return hypermedia.NewMessage().
		Set("userId", id).
		Set("email", id+"@example.com").
		Self("/users/" + id), nil
}

func testDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()

	base := []Option{
		WithLogger(quietLogger()),
		WithBaseLink("home", hypermedia.Link{Href: "/", Title: "Home"}),
		WithRoutes(
			Decl{Method: http.MethodGet, Pattern: "/users/{userId}", Name: "user", Handler: userHandler},
		),
	}

	d, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("failed to build dispatcher: %v", err)
	}
	return d
}

func TestDispatchRendersStructuredData(t *testing.T) {
	d := testDispatcher(t)

	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	req.Header.Set("Accept", negotiate.MediaJSON)
	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != negotiate.MediaHALJSON {
		t.Fatalf("unexpected content type: %q", got)
	}

	var decoded map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if decoded["userId"] != "42" {
		t.Fatalf("unexpected userId: %v", decoded["userId"])
	}

	links := decoded["_links"].(map[string]any)
	if _, ok := links["home"]; !ok {
		t.Fatal("expected base home link on rendered document")
	}
}

func TestDispatchRendersHypertextByDefault(t *testing.T) {
	d := testDispatcher(t)

	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type: %q", got)
	}
	if !strings.Contains(rr.Body.String(), "42@example.com") {
		t.Fatalf("expected property in hypertext body:\n%s", rr.Body.String())
	}
}

func TestDispatchNoMatchIsNotFoundProblem(t *testing.T) {
	d := testDispatcher(t)

	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	req.Header.Set("Accept", negotiate.MediaJSON)
	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != negotiate.MediaProblem {
		t.Fatalf("unexpected content type: %q", got)
	}

	var problem struct {
		Status  int    `json:"status"`
		Title   string `json:"title"`
		TraceID string `json:"traceId"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("invalid problem body: %v", err)
	}
	if problem.Status != http.StatusNotFound {
		t.Fatalf("unexpected problem status: %d", problem.Status)
	}
	if problem.TraceID == "" {
		t.Fatal("expected a trace id on the problem")
	}
}

func TestDispatchValidationErrorCarriesViolations(t *testing.T) {
	d, err := New(
		WithLogger(quietLogger()),
		WithRoutes(Decl{
			Method:  http.MethodPost,
			Pattern: "/users",
			Name:    "create-user",
			Handler: func(*Request) (hypermedia.Resource, error) {
				return nil, apierr.Validation("invalid user",
					apierr.Violation{Field: "email", Message: "must be a valid address"},
					apierr.Violation{Field: "name", Message: "is required"},
				)
			},
		}),
	)
	if err != nil {
		t.Fatalf("failed to build dispatcher: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	req.Header.Set("Accept", negotiate.MediaJSON)
	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var problem struct {
		Status     int `json:"status"`
		Violations []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"violations"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("invalid problem body: %v", err)
	}
	if problem.Status != 400 {
		t.Fatalf("unexpected problem status: %d", problem.Status)
	}
	if len(problem.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(problem.Violations))
	}
	if problem.Violations[0].Field != "email" || problem.Violations[0].Message != "must be a valid address" {
		t.Fatalf("unexpected first violation: %+v", problem.Violations[0])
	}
	if problem.Violations[1].Field != "name" || problem.Violations[1].Message != "is required" {
		t.Fatalf("unexpected second violation: %+v", problem.Violations[1])
	}
}

func TestDispatchHidesUntypedErrorDetail(t *testing.T) {
	secret := errors.New("pq: connection refused on 10.0.0.5")
	d, err := New(
		WithLogger(quietLogger()),
		WithRoutes(Decl{
			Method:  http.MethodGet,
			Pattern: "/broken",
			Name:    "broken",
			Handler: func(*Request) (hypermedia.Resource, error) {
				return nil, secret
			},
		}),
	)
	if err != nil {
		t.Fatalf("failed to build dispatcher: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/broken", nil)
	req.Header.Set("Accept", negotiate.MediaJSON)
	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "10.0.0.5") {
		t.Fatalf("internal detail leaked to the client:\n%s", rr.Body.String())
	}
}

func TestDispatchErrorHonoursNegotiatedHypertext(t *testing.T) {
	d := testDispatcher(t)

	req := httptest.NewRequest(http.MethodGet, "/users/missing", nil)
	req.Header.Set("Accept", "text/html")
	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type: %q", got)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Not Found") {
		t.Fatalf("expected problem title in hypertext:\n%s", body)
	}
	if !strings.Contains(body, `<a href="/">Home</a>`) {
		t.Fatalf("expected base navigation on error page:\n%s", body)
	}
}

func TestDispatchRejectsDuplicateRoutes(t *testing.T) {
	_, err := New(
		WithLogger(quietLogger()),
		WithRoutes(
			Decl{Method: http.MethodGet, Pattern: "/users", Name: "a", Handler: userHandler},
			Decl{Method: http.MethodGet, Pattern: "/users", Name: "b", Handler: userHandler},
		),
	)
	if err == nil {
		t.Fatal("expected duplicate declaration to fail construction")
	}
}

func TestDispatchCachedRoute(t *testing.T) {
	calls := 0
	d, err := New(
		WithLogger(quietLogger()),
		WithRoutes(Decl{
			Method:   http.MethodGet,
			Pattern:  "/reports/{reportId}",
			Name:     "report",
			CacheTTL: 300 * time.Second,
			Handler: func(req *Request) (hypermedia.Resource, error) {
				calls++
				return hypermedia.NewMessage().
					Set("reportId", req.Param("reportId")).
					Self("/reports/" + req.Param("reportId")), nil
			},
		}),
	)
	if err != nil {
		t.Fatalf("failed to build dispatcher: %v", err)
	}

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/weekly", nil)
	req.Header.Set("Accept", negotiate.MediaJSON)
	d.ServeHTTP(first, req)

	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("expected MISS, got %q", got)
	}
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag on the cached route")
	}

	replay := httptest.NewRequest(http.MethodGet, "/reports/weekly", nil)
	replay.Header.Set("Accept", negotiate.MediaJSON)
	replay.Header.Set("If-None-Match", etag)
	second := httptest.NewRecorder()
	d.ServeHTTP(second, replay)

	if second.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", second.Code)
	}
	if calls != 1 {
		t.Fatalf("handler must not run on a cache hit, ran %d times", calls)
	}
}

func TestDispatchDefaultCacheTTL(t *testing.T) {
	d, err := New(
		WithLogger(quietLogger()),
		WithDefaultCacheTTL(60*time.Second),
		WithRoutes(
			Decl{Method: http.MethodGet, Pattern: "/users/{userId}", Name: "user", Handler: userHandler},
			Decl{Method: http.MethodGet, Pattern: "/live", Name: "live", CacheTTL: -1, Handler: userHandler},
		),
	)
	if err != nil {
		t.Fatalf("failed to build dispatcher: %v", err)
	}

	cached := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	req.Header.Set("Accept", negotiate.MediaJSON)
	d.ServeHTTP(cached, req)
	if got := cached.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("default TTL route must be cached, got X-Cache %q", got)
	}

	uncached := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("Accept", negotiate.MediaJSON)
	d.ServeHTTP(uncached, req)
	if got := uncached.Header().Get("X-Cache"); got != "" {
		t.Fatalf("opted-out route must not be cached, got X-Cache %q", got)
	}
}

func TestDispatcherHref(t *testing.T) {
	d := testDispatcher(t)

	href, err := d.Href("user", map[string]string{"userId": "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if href != "/users/42" {
		t.Fatalf("unexpected href: %q", href)
	}
}

func dispatchedParam(t *testing.T, d *Dispatcher, target string) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept", negotiate.MediaJSON)
	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status for %q: %d (%s)", target, rr.Code, rr.Body.String())
	}

	var decoded struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	return decoded.UserID
}

func TestDispatchDecodesPathParamsExactlyOnce(t *testing.T) {
	d := testDispatcher(t)

	href, err := d.Href("user", map[string]string{"userId": "%41"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if href != "/users/%2541" {
		t.Fatalf("unexpected href: %q", href)
	}

	if got := dispatchedParam(t, d, href); got != "%41" {
		t.Fatalf("round-trip broke: want %q got %q", "%41", got)
	}
}

func TestDispatchMatchesEncodedSlashParams(t *testing.T) {
	d := testDispatcher(t)

	href, err := d.Href("user", map[string]string{"userId": "a/b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if href != "/users/a%2Fb" {
		t.Fatalf("unexpected href: %q", href)
	}

	if got := dispatchedParam(t, d, href); got != "a/b" {
		t.Fatalf("round-trip broke: want %q got %q", "a/b", got)
	}
}
