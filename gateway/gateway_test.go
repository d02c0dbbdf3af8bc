package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.Handler, tables ...string) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	if len(tables) == 0 {
		tables = []string{"b1", "teachers"}
	}

	c, err := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, tables)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return c, srv
}

func TestFetchOneExactlyOneRow(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/b1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("roll_no"); got != "eq.b2512345" {
			t.Errorf("unexpected filter %q", got)
		}
		if got := r.Header.Get("apikey"); got != "test-key" {
			t.Errorf("missing apikey header, got %q", got)
		}
		w.Write([]byte(`[{"roll_no":"b2512345","student_name":"Asha"}]`))
	}))

	rec, err := c.FetchOne(context.Background(), "b1", "roll_no", "b2512345")
	if err != nil {
		t.Fatalf("FetchOne error: %v", err)
	}
	if rec["student_name"] != "Asha" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestFetchOneZeroRowsIsNotFound(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	_, err := c.FetchOne(context.Background(), "b1", "roll_no", "b2599999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchOneMultipleRowsIsAmbiguous(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"roll_no":"a"},{"roll_no":"b"}]`))
	}))

	_, err := c.FetchOne(context.Background(), "b1", "parent_email", "p@example.com")
	if !errors.Is(err, ErrAmbiguousMatch) {
		t.Fatalf("expected ErrAmbiguousMatch, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("ambiguous match must not read as not-found")
	}
}

func TestForbiddenTablePerformsNoIO(t *testing.T) {
	var hits atomic.Int64
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[]`))
	}))

	_, err := c.FetchOne(context.Background(), "secrets", "id", "1")
	if !errors.Is(err, ErrForbiddenTable) {
		t.Fatalf("expected ErrForbiddenTable, got %v", err)
	}
	if err := c.Insert(context.Background(), "secrets", Record{"x": 1}); !errors.Is(err, ErrForbiddenTable) {
		t.Fatalf("expected ErrForbiddenTable on insert, got %v", err)
	}
	if err := c.Update(context.Background(), "secrets", "id", "1", Record{"x": 2}); !errors.Is(err, ErrForbiddenTable) {
		t.Fatalf("expected ErrForbiddenTable on update, got %v", err)
	}
	if err := c.Delete(context.Background(), "secrets", "id", "1"); !errors.Is(err, ErrForbiddenTable) {
		t.Fatalf("expected ErrForbiddenTable on delete, got %v", err)
	}

	if hits.Load() != 0 {
		t.Fatalf("forbidden table reached the store %d times", hits.Load())
	}
}

func TestTransportFailureIsStoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c, err := New(Config{BaseURL: srv.URL}, []string{"b1"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	srv.Close() // connection refused from here on

	_, err = c.FetchOne(context.Background(), "b1", "roll_no", "b2512345")
	if !IsStoreError(err) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAmbiguousMatch) {
		t.Fatal("transport failure must not read as a row-count outcome")
	}
}

func TestServerErrorStatusIsStoreError(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.FetchOne(context.Background(), "b1", "roll_no", "b2512345")
	if !IsStoreError(err) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

func TestMalformedResponseIsStoreError(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))

	_, err := c.FetchOne(context.Background(), "b1", "roll_no", "b2512345")
	if !IsStoreError(err) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

func TestTimeoutIsStoreError(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	c.timeout = 20 * time.Millisecond

	_, err := c.FetchOne(context.Background(), "b1", "roll_no", "b2512345")
	if !IsStoreError(err) {
		t.Fatalf("expected StoreError on timeout, got %v", err)
	}
}

func TestInsertPostsPayload(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusCreated)
	}))

	err := c.Insert(context.Background(), "b1", Record{"roll_no": "b2512345"})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{}, []string{"b1"}); err == nil {
		t.Fatal("expected missing base URL to be rejected")
	}
	if _, err := New(Config{BaseURL: "http://x"}, nil); err == nil {
		t.Fatal("expected empty allow-list to be rejected")
	}
	if _, err := New(Config{BaseURL: "http://x"}, []string{" "}); err == nil {
		t.Fatal("expected blank table name to be rejected")
	}
}
