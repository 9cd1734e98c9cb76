package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/permflow/catalog"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisSessionStoreTest(t *testing.T, idleTTL time.Duration) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisSessionStore(rdb, "pfs", idleTTL), mr
}

func testEditSession() *EditSession {
	return &EditSession{
		ID:       "sess-1",
		Context:  catalog.ContextScope,
		Mode:     1,
		AgentID:  "agent-1",
		TargetID: "role-1",
		ScopeID:  "chan-1",
		Pages: map[int]PageSelection{
			0: {Allow: []string{"ViewChannel"}, Deny: []string{"SendMessages"}},
		},
	}
}

func TestRedisSessionRoundTrip(t *testing.T) {
	store, _ := newRedisSessionStoreTest(t, time.Minute)
	ctx := context.Background()
	sess := testEditSession()

	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Context != sess.Context || got.Mode != sess.Mode ||
		got.AgentID != sess.AgentID || got.TargetID != sess.TargetID || got.ScopeID != sess.ScopeID {
		t.Fatalf("session fields lost: %+v", got)
	}
	sel := got.Pages[0]
	if len(sel.Allow) != 1 || sel.Allow[0] != "ViewChannel" || len(sel.Deny) != 1 {
		t.Fatalf("page selection lost: %+v", sel)
	}
}

func TestRedisSessionSetPageAndMarkAll(t *testing.T) {
	store, _ := newRedisSessionStoreTest(t, time.Minute)
	ctx := context.Background()
	sess := testEditSession()

	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.SetPage(ctx, sess.ID, 2, PageSelection{Keys: []string{"AddReactions"}}); err != nil {
		t.Fatalf("set page: %v", err)
	}
	if err := store.MarkAll(ctx, sess.ID, true); err != nil {
		t.Fatalf("mark all: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.AllSelected {
		t.Fatal("all-selected sentinel lost")
	}
	if len(got.Pages[2].Keys) != 1 {
		t.Fatalf("page 2 lost: %+v", got.Pages)
	}

	// An empty replacement drops the page entirely.
	if err := store.SetPage(ctx, sess.ID, 2, PageSelection{}); err != nil {
		t.Fatalf("clear page: %v", err)
	}
	got, err = store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if _, ok := got.Pages[2]; ok {
		t.Fatal("empty selection must remove the page")
	}
}

func TestRedisSessionMissing(t *testing.T) {
	store, _ := newRedisSessionStoreTest(t, time.Minute)
	ctx := context.Background()

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.SetPage(ctx, "nope", 0, PageSelection{Keys: []string{"x"}}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound from mutate, got %v", err)
	}
}

func TestRedisSessionDeleteIdempotent(t *testing.T) {
	store, _ := newRedisSessionStoreTest(t, time.Minute)
	ctx := context.Background()
	sess := testEditSession()

	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestRedisSessionSlidingTTL(t *testing.T) {
	store, mr := newRedisSessionStoreTest(t, 10*time.Second)
	ctx := context.Background()
	sess := testEditSession()

	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Each mutation pushes the idle deadline forward.
	mr.FastForward(6 * time.Second)
	if err := store.SetPage(ctx, sess.ID, 0, PageSelection{Keys: []string{"ViewChannel"}}); err != nil {
		t.Fatalf("refresh via set page: %v", err)
	}
	mr.FastForward(6 * time.Second)
	if _, err := store.Get(ctx, sess.ID); err != nil {
		t.Fatalf("session must survive within the refreshed window: %v", err)
	}

	// Untouched past the idle TTL, it is gone.
	mr.FastForward(11 * time.Second)
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestRedisSessionCorruptRecord(t *testing.T) {
	store, _ := newRedisSessionStoreTest(t, time.Minute)
	ctx := context.Background()

	if err := store.redis.Set(ctx, store.key("bad"), []byte{9, 9, 9}, time.Minute).Err(); err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}
	if _, err := store.Get(ctx, "bad"); !errors.Is(err, errSessionRecordCorrupt) {
		t.Fatalf("expected corrupt sentinel, got %v", err)
	}
}

func TestMemorySessionStoreLifecycle(t *testing.T) {
	store := NewMemorySessionStore(time.Minute, time.Hour)
	defer store.Close()
	ctx := context.Background()
	sess := testEditSession()

	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// Get hands out a copy; mutating it must not leak into the store.
	got.Pages[5] = PageSelection{Keys: []string{"leak"}}
	again, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if _, ok := again.Pages[5]; ok {
		t.Fatal("store state aliased by a returned copy")
	}

	if err := store.MarkAll(ctx, sess.ID, true); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemorySessionExpiryEnforcedOnGet(t *testing.T) {
	// A deadline already in the past makes every session expired on arrival;
	// the long sweep interval proves Get enforces expiry on its own.
	store := NewMemorySessionStore(-time.Second, time.Hour)
	defer store.Close()
	ctx := context.Background()

	sess := testEditSession()
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expiry on get, got %v", err)
	}
	if err := store.MarkAll(ctx, sess.ID, true); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expiry on mutate, got %v", err)
	}
}

func TestMemorySessionReaperEvicts(t *testing.T) {
	store := NewMemorySessionStore(-time.Second, 10*time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	if err := store.Create(ctx, testEditSession()); err != nil {
		t.Fatalf("create: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		store.mu.Lock()
		n := len(store.sessions)
		store.mu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("reaper never evicted the expired session")
}
