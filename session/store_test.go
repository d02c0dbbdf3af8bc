package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, sliding bool) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, "test:session:", time.Minute, sliding), mr
}

func sampleRecord() Record {
	return Record{
		Role:        "student",
		PrimaryKey:  "b2512345",
		DisplayName: "Asha Rao",
		Batch:       "b1",
		Email:       "asha@example.com",
		Attributes:  map[string]string{"roll_no": "b2512345"},
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, false)
	ctx := context.Background()

	sid, err := store.Create(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sid == "" {
		t.Fatal("Create returned empty session id")
	}

	got, err := store.Get(ctx, sid)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SessionID != sid {
		t.Fatalf("SessionID = %q, want %q", got.SessionID, sid)
	}
	if got.Role != "student" || got.PrimaryKey != "b2512345" || got.Batch != "b1" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Attributes["roll_no"] != "b2512345" {
		t.Fatalf("attributes lost in round trip: %+v", got.Attributes)
	}
	if got.CreatedAt == 0 || got.ExpiresAt <= got.CreatedAt {
		t.Fatalf("timestamps not set: created=%d expires=%d", got.CreatedAt, got.ExpiresAt)
	}
}

func TestCreateAssignsDistinctIDs(t *testing.T) {
	store, _ := newTestStore(t, false)
	ctx := context.Background()

	a, err := store.Create(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := store.Create(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a == b {
		t.Fatalf("two sessions share id %q", a)
	}
}

func TestGetUnknownSession(t *testing.T) {
	store, _ := newTestStore(t, false)

	_, err := store.Get(context.Background(), "no-such-session")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestGetExpiredSession(t *testing.T) {
	store, mr := newTestStore(t, false)
	ctx := context.Background()

	sid, err := store.Create(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, sid)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestGetCorruptRecord(t *testing.T) {
	store, mr := newTestStore(t, false)

	mr.Set("test:session:broken", "{not json")

	_, err := store.Get(context.Background(), "broken")
	if !errors.Is(err, ErrSessionCorrupt) {
		t.Fatalf("err = %v, want ErrSessionCorrupt", err)
	}
}

func TestGetRecordWithMismatchedID(t *testing.T) {
	store, mr := newTestStore(t, false)

	// A valid blob filed under the wrong key must not resolve.
	mr.Set("test:session:stolen", `{"sid":"original","role":"admin","primary_key":"admin1","created_at":1,"expires_at":99999999999}`)

	_, err := store.Get(context.Background(), "stolen")
	if !errors.Is(err, ErrSessionCorrupt) {
		t.Fatalf("err = %v, want ErrSessionCorrupt", err)
	}
}

func TestSlidingRefreshExtendsTTL(t *testing.T) {
	store, mr := newTestStore(t, true)
	ctx := context.Background()

	sid, err := store.Create(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Burn most of the TTL, then touch the session.
	mr.FastForward(50 * time.Second)
	if _, err := store.Get(ctx, sid); err != nil {
		t.Fatalf("Get after 50s: %v", err)
	}

	// Without the refresh this would be past the original expiry.
	mr.FastForward(50 * time.Second)
	if _, err := store.Get(ctx, sid); err != nil {
		t.Fatalf("Get after refresh window: %v", err)
	}
}

func TestFixedTTLDoesNotRefresh(t *testing.T) {
	store, mr := newTestStore(t, false)
	ctx := context.Background()

	sid, err := store.Create(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	mr.FastForward(50 * time.Second)
	if _, err := store.Get(ctx, sid); err != nil {
		t.Fatalf("Get after 50s: %v", err)
	}

	mr.FastForward(50 * time.Second)
	if _, err := store.Get(ctx, sid); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound after fixed TTL", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t, false)
	ctx := context.Background()

	sid, err := store.Create(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	existed, err := store.Delete(ctx, sid)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !existed {
		t.Fatal("first Delete reported no record")
	}

	existed, err = store.Delete(ctx, sid)
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if existed {
		t.Fatal("second Delete reported a record")
	}

	if _, err := store.Get(ctx, sid); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after Delete: err = %v, want ErrSessionNotFound", err)
	}
}

func TestBackendDownSurfacesRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewStore(client, "test:session:", time.Minute, false)

	mr.Close()

	if _, err := store.Create(context.Background(), sampleRecord()); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("Create err = %v, want ErrRedisUnavailable", err)
	}
	if _, err := store.Get(context.Background(), "x"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("Get err = %v, want ErrRedisUnavailable", err)
	}
	if _, err := store.Delete(context.Background(), "x"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("Delete err = %v, want ErrRedisUnavailable", err)
	}
}
