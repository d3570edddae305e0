package itaka

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"tour_scraper/internal/adapters/observability"
	"tour_scraper/internal/domain"
)

// RateParams scope every query to one offer catalogue (original supplier
// params: language, currency, party size).
type RateParams struct {
	Supplier string `json:"supplier"`
	Language string `json:"language"`
	Currency string `json:"currency"`
	Adults   int    `json:"adultsNumber"`
}

// Client talks to the operator's GraphQL endpoint with client-side rate
// limiting and bounded retries. It does not interpret entity content.
type Client struct {
	url      string
	hc       *http.Client
	rl       *rate.Limiter
	params   RateParams
	cache    domain.ByteCache
	cacheTTL int
}

type Option func(*Client)

// WithCache installs a raw-response cache in front of the endpoint.
func WithCache(c domain.ByteCache, ttlSec int) Option {
	return func(cl *Client) { cl.cache = c; cl.cacheTTL = ttlSec }
}

func New(url string, rps int, timeout time.Duration, params RateParams, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("source URL is required")
	}
	if rps <= 0 {
		rps = 3
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	c := &Client{
		url:    url,
		hc:     &http.Client{Timeout: timeout},
		rl:     rate.NewLimiter(rate.Limit(rps), rps),
		params: params,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ---- Public API ----

func (c *Client) Destinations(ctx context.Context) ([]map[string]any, error) {
	data, err := c.gql(ctx, "getDestinations", getDestinationsQuery, map[string]any{
		"rateParams": c.params,
	})
	if err != nil {
		return nil, err
	}
	return listAt(data, "properties", "destinationRegions"), nil
}

func (c *Client) Rates(ctx context.Context, skip, take int) ([]map[string]any, int, error) {
	data, err := c.gql(ctx, "getRates", getRatesQuery, map[string]any{
		"rateParams": c.params,
		"skip":       skip,
		"take":       take,
		"order":      "popularity",
	})
	if err != nil {
		return nil, 0, err
	}
	total := 0
	if v, ok := lookup(data, "rates", "ratesCount").(float64); ok {
		total = int(v)
	}
	return listAt(data, "rates", "list"), total, nil
}

func (c *Client) TransportDetails(ctx context.Context, rateID string) ([]map[string]any, error) {
	data, err := c.gql(ctx, "getTransportDetails", getTransportDetailsQuery, map[string]any{
		"rateParams": c.params,
		"id":         rateID,
	})
	if err != nil {
		return nil, err
	}
	segs := listAt(data, "rate", "segments")
	if segs == nil {
		log.Warn().Str("rate", rateID).Msg("no transport details for rate")
	}
	return segs, nil
}

func (c *Client) ProductContent(ctx context.Context, supplierObjectID string) (map[string]any, error) {
	data, err := c.gql(ctx, "getProductContent", getProductContentQuery, map[string]any{
		"rateParams":       c.params,
		"supplierObjectId": supplierObjectID,
	})
	if err != nil {
		return nil, err
	}
	content, _ := lookup(data, "content", "newContent").(map[string]any)
	if content == nil {
		log.Warn().Str("supplierObjectId", supplierObjectID).Msg("no product content")
	}
	return content, nil
}

// ---- Internals ----

// gql posts one query and returns the decoded "data" object. Responses are
// cached by query+variables when a cache is configured.
func (c *Client) gql(ctx context.Context, op, query string, vars map[string]any) (map[string]any, error) {
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	if err != nil {
		return nil, err
	}

	var key string
	if c.cache != nil {
		sum := sha1.Sum(body)
		key = "gql:" + op + ":" + hex.EncodeToString(sum[:])
		if raw, ok, cerr := c.cache.GetBytes(ctx, key); cerr == nil && ok {
			observability.ObserveCache("source", "hit")
			var data map[string]any
			if err := json.Unmarshal(raw, &data); err == nil {
				return data, nil
			}
		} else {
			observability.ObserveCache("source", "miss")
		}
	}

	raw, err := c.post(ctx, op, body)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data   map[string]any `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &domain.FetchError{Op: op, Transient: false, Err: domain.ErrMalformed}
	}
	if len(envelope.Errors) > 0 {
		return nil, &domain.FetchError{
			Op: op, Transient: false,
			Err: fmt.Errorf("graphql: %s", envelope.Errors[0].Message),
		}
	}

	if c.cache != nil {
		if b, err := json.Marshal(envelope.Data); err == nil {
			observability.ObserveCache("source", "set")
			_ = c.cache.SetBytes(ctx, key, b, c.cacheTTL)
		}
	}
	return envelope.Data, nil
}

// post performs the POST with rate limiting and retries. Retries on 429 and
// transient 5xx, honoring Retry-After when provided.
func (c *Client) post(ctx context.Context, op string, body []byte) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "tour-scraper/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			observability.ObserveFetch(op, 0, time.Since(start))
			lastErr = &domain.FetchError{Op: op, Transient: true, Err: err}
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveFetch(op, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			b, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, &domain.FetchError{Op: op, Status: resp.StatusCode, Transient: true, Err: err}
			}
			return b, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, &domain.FetchError{Op: op, Status: 404, Transient: false, Err: domain.ErrNotFound}

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = &domain.FetchError{Op: op, Status: resp.StatusCode, Transient: true,
				Err: fmt.Errorf("remote %d", resp.StatusCode)}
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &domain.FetchError{Op: op, Status: resp.StatusCode, Transient: false,
				Err: fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))}
		}
	}

	return nil, lastErr
}

// lookup walks nested maps by key path, nil when any hop is missing.
func lookup(m map[string]any, path ...string) any {
	cur := any(m)
	for _, part := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// listAt returns the []map slice at path, nil when absent or mistyped.
func listAt(m map[string]any, path ...string) []map[string]any {
	raw, ok := lookup(m, path...).([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if obj, ok := it.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
