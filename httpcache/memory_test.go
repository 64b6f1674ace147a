package httpcache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entry := Entry{ETag: `"abc"`, LastModified: time.Now().UTC()}
	if err := store.Set(ctx, "key", entry, time.Minute); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	got, ok, err := store.Get(ctx, "key")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.ETag != entry.ETag {
		t.Fatalf("unexpected etag: %q", got.ETag)
	}
}

func TestMemoryStoreMissOnUnknownKey(t *testing.T) {
	store := NewMemoryStore()

	_, ok, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected a miss")
	}
}

func TestMemoryStoreExpiresByTTL(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	ctx := context.Background()
	if err := store.Set(ctx, "key", Entry{ETag: `"abc"`}, 300*time.Second); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	now = now.Add(299 * time.Second)
	if _, ok, _ := store.Get(ctx, "key"); !ok {
		t.Fatal("entry expired too early")
	}

	now = now.Add(2 * time.Second)
	if _, ok, _ := store.Get(ctx, "key"); ok {
		t.Fatal("entry should have expired")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry not dropped, %d entries remain", store.Len())
	}
}

func TestKeyVariance(t *testing.T) {
	base := newGetRequest(t, "/users/42?page=1")
	sameQueryReordered := newGetRequest(t, "/users/42?page=1")
	differentQuery := newGetRequest(t, "/users/42?page=2")

	if Key(base, nil) != Key(sameQueryReordered, nil) {
		t.Fatal("identical requests must share a key")
	}
	if Key(base, nil) == Key(differentQuery, nil) {
		t.Fatal("different query strings must not share a key")
	}

	authed := newGetRequest(t, "/users/42?page=1")
	authed.Header.Set("Authorization", "Bearer token-a")
	other := newGetRequest(t, "/users/42?page=1")
	other.Header.Set("Authorization", "Bearer token-b")

	if Key(authed, nil) != Key(other, nil) {
		t.Fatal("undeclared headers must not partition the cache")
	}
	if Key(authed, []string{"Authorization"}) == Key(other, []string{"Authorization"}) {
		t.Fatal("declared varying headers must partition the cache")
	}
}

func TestETagForIsDeterministicAndQuoted(t *testing.T) {
	body := []byte("hello world")

	first := ETagFor(body)
	second := ETagFor(body)
	if first != second {
		t.Fatalf("fingerprint not deterministic: %q vs %q", first, second)
	}
	if first[0] != '"' || first[len(first)-1] != '"' {
		t.Fatalf("etag not quoted: %q", first)
	}
	if first == ETagFor([]byte("different")) {
		t.Fatal("different bodies must not share a fingerprint")
	}
}
