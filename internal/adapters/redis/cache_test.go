package redisad_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "tour_scraper/internal/adapters/redis"
)

func TestCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	if _, ok, err := c.GetBytes(ctx, "gql:missing"); err != nil || ok {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}

	want := []byte(`{"rates":{"ratesCount":0,"list":[]}}`)
	if err := c.SetBytes(ctx, "gql:getRates:abc", want, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.GetBytes(ctx, "gql:getRates:abc")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %s, want %s", got, want)
	}

	// TTL expiry
	mr.FastForward(61 * time.Second)
	if _, ok, _ := c.GetBytes(ctx, "gql:getRates:abc"); ok {
		t.Fatalf("expected miss after TTL expiry")
	}
}
