package itaka_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tour_scraper/internal/adapters/itaka"
	"tour_scraper/internal/domain"
)

func testParams() itaka.RateParams {
	return itaka.RateParams{Supplier: "itaka", Language: "pl", Currency: "PLN", Adults: 2}
}

func TestClient_Rates_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"rates": map[string]any{
						"ratesCount": 1,
						"list":       []map[string]any{{"id": "r-1"}},
					},
				},
			})
		}
	}))
	defer ts.Close()

	cl, err := itaka.New(ts.URL, 100, 2*time.Second, testParams()) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	items, total, err := cl.Rates(ctx, 0, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0]["id"] != "r-1" {
		t.Fatalf("unexpected payload: total=%d items=%+v", total, items)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_NotFound_NoRetry(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(404)
	}))
	defer ts.Close()

	cl, err := itaka.New(ts.URL, 100, time.Second, testParams())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.Destinations(ctx)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if domain.IsTransientFetch(err) {
		t.Fatalf("404 must classify as permanent")
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("permanent failure must not retry, got %d calls", hits)
	}
}

func TestClient_GraphQLErrors_Permanent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "unknown field"}},
		})
	}))
	defer ts.Close()

	cl, err := itaka.New(ts.URL, 100, time.Second, testParams())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err = cl.Destinations(context.Background())
	if err == nil {
		t.Fatalf("expected error for graphql errors payload")
	}
	if domain.IsTransientFetch(err) {
		t.Fatalf("graphql error must classify as permanent")
	}
}

func TestClient_MalformedBody_Permanent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	cl, err := itaka.New(ts.URL, 100, time.Second, testParams())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err = cl.Destinations(context.Background())
	if !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

type memCache struct {
	store map[string][]byte
	gets  int
	hits  int
}

func (m *memCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	m.gets++
	v, ok := m.store[key]
	if ok {
		m.hits++
	}
	return v, ok, nil
}

func (m *memCache) SetBytes(ctx context.Context, key string, v []byte, ttlSec int) error {
	if m.store == nil {
		m.store = map[string][]byte{}
	}
	m.store[key] = v
	return nil
}

func TestClient_CacheAvoidsSecondFetch(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(200)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"properties": map[string]any{
					"destinationRegions": []map[string]any{
						{"type": "country", "value": "portugalia", "title": "Portugalia"},
					},
				},
			},
		})
	}))
	defer ts.Close()

	cache := &memCache{}
	cl, err := itaka.New(ts.URL, 100, time.Second, testParams(), itaka.WithCache(cache, 60))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	for i := 0; i < 2; i++ {
		regions, err := cl.Destinations(context.Background())
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(regions) != 1 || regions[0]["value"] != "portugalia" {
			t.Fatalf("unexpected regions: %+v", regions)
		}
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected 1 upstream call with cache, got %d", hits)
	}
	if cache.hits != 1 {
		t.Fatalf("expected 1 cache hit, got %d", cache.hits)
	}
}
