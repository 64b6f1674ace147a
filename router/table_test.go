package router

import (
	"errors"
	"net/http"
	"reflect"
	"testing"
)

func testTable(t *testing.T) *Table {
	t.Helper()

	table, err := NewTable(
		Route{Method: http.MethodGet, Pattern: "/users", Name: "users"},
		Route{Method: http.MethodGet, Pattern: "/users/{userId}", Name: "user"},
		Route{Method: http.MethodGet, Pattern: "/users/{userId}/sessions/list", Name: "user-sessions"},
		Route{Method: http.MethodPost, Pattern: "/users", Name: "create-user"},
		Route{Method: http.MethodGet, Pattern: "/files/", Name: "files-dir"},
	)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return table
}

func TestMatchCapturesParams(t *testing.T) {
	table := testTable(t)

	match, ok := table.Match(http.MethodGet, "/users/42/sessions/list")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Route.Name != "user-sessions" {
		t.Fatalf("unexpected route: %q", match.Route.Name)
	}
	if !reflect.DeepEqual(match.Params, Params{"userId": "42"}) {
		t.Fatalf("unexpected params: %v", match.Params)
	}
}

func TestMatchComparesMethodExactly(t *testing.T) {
	table := testTable(t)

	if _, ok := table.Match(http.MethodDelete, "/users"); ok {
		t.Fatal("DELETE must not match a GET route")
	}
	if match, ok := table.Match(http.MethodPost, "/users"); !ok || match.Route.Name != "create-user" {
		t.Fatalf("expected create-user for POST /users, got %+v ok=%v", match, ok)
	}
}

func TestMatchPlaceholderRejectsEmptySegment(t *testing.T) {
	table := testTable(t)

	if _, ok := table.Match(http.MethodGet, "/users//sessions/list"); ok {
		t.Fatal("placeholder must not match an empty segment")
	}
}

func TestMatchTrailingSlashIsSignificant(t *testing.T) {
	table := testTable(t)

	if _, ok := table.Match(http.MethodGet, "/files"); ok {
		t.Fatal("/files must not match the /files/ route")
	}
	if match, ok := table.Match(http.MethodGet, "/files/"); !ok || match.Route.Name != "files-dir" {
		t.Fatalf("expected files-dir for /files/, got %+v ok=%v", match, ok)
	}
}

func TestMatchFirstDeclaredWins(t *testing.T) {
	table, err := NewTable(
		Route{Method: http.MethodGet, Pattern: "/reports/{reportId}", Name: "report"},
		Route{Method: http.MethodGet, Pattern: "/reports/latest", Name: "latest-report"},
	)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}

	match, ok := table.Match(http.MethodGet, "/reports/latest")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Route.Name != "report" {
		t.Fatalf("declaration order not honoured: got %q", match.Route.Name)
	}
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	_, err := NewTable(
		Route{Method: http.MethodGet, Pattern: "/users", Name: "a"},
		Route{Method: http.MethodGet, Pattern: "/users", Name: "b"},
	)
	if err == nil {
		t.Fatal("expected duplicate method+pattern to fail registration")
	}

	_, err = NewTable(
		Route{Method: http.MethodGet, Pattern: "/users", Name: "same"},
		Route{Method: http.MethodPost, Pattern: "/users", Name: "same"},
	)
	if err == nil {
		t.Fatal("expected duplicate name to fail registration")
	}
}

func TestHrefBuildsAndEscapes(t *testing.T) {
	table := testTable(t)

	href, err := table.Href("user", Params{"userId": "a b/c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if href != "/users/a%20b%2Fc" {
		t.Fatalf("unexpected href: %q", href)
	}
}

func TestHrefErrors(t *testing.T) {
	table := testTable(t)

	if _, err := table.Href("nope", nil); !errors.Is(err, ErrRouteNotRegistered) {
		t.Fatalf("expected ErrRouteNotRegistered, got %v", err)
	}

	_, err := table.Href("user", Params{})
	var missing *MissingParamError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingParamError, got %v", err)
	}
	if missing.Param != "userId" {
		t.Fatalf("unexpected missing param: %q", missing.Param)
	}
}

func TestHrefMatchRoundTrip(t *testing.T) {
	table := testTable(t)

	params := Params{"userId": "jo hn"}
	href, err := table.Href("user-sessions", params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	match, ok := table.Match(http.MethodGet, href)
	if !ok {
		t.Fatalf("built href %q did not match", href)
	}
	if !reflect.DeepEqual(match.Params, params) {
		t.Fatalf("round-trip params differ: got %v want %v", match.Params, params)
	}
}
