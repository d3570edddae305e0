package app

import (
	"context"
	"sync"

	"tour_scraper/internal/domain"
)

// RawDataset is everything the source returned during one run, in the shape
// it came in. Persisted next to the output it lets a later run replay the
// whole pipeline offline (schema tweaks, extractor fixes) without touching
// the operator again.
type RawDataset struct {
	Regions          []map[string]any            `json:"destination_regions"`
	Rates            []map[string]any            `json:"rates"`
	TransportDetails map[string][]map[string]any `json:"transport_details"`
	ProductContent   map[string]map[string]any   `json:"product_content"`
}

func NewRawDataset() *RawDataset {
	return &RawDataset{
		TransportDetails: make(map[string][]map[string]any),
		ProductContent:   make(map[string]map[string]any),
	}
}

// RecordingClient passes calls through to a live source and keeps a copy of
// every successful response.
type RecordingClient struct {
	inner domain.SourceClient

	mu  sync.Mutex
	raw *RawDataset
}

func NewRecordingClient(inner domain.SourceClient) *RecordingClient {
	return &RecordingClient{inner: inner, raw: NewRawDataset()}
}

// Snapshot returns the responses captured so far. The caller must not hold
// on to it across further client calls.
func (c *RecordingClient) Snapshot() *RawDataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw
}

func (c *RecordingClient) Destinations(ctx context.Context) ([]map[string]any, error) {
	regions, err := c.inner.Destinations(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.raw.Regions = regions
	c.mu.Unlock()
	return regions, nil
}

func (c *RecordingClient) Rates(ctx context.Context, skip, take int) ([]map[string]any, int, error) {
	items, total, err := c.inner.Rates(ctx, skip, take)
	if err != nil {
		return nil, 0, err
	}
	c.mu.Lock()
	c.raw.Rates = append(c.raw.Rates, items...)
	c.mu.Unlock()
	return items, total, nil
}

func (c *RecordingClient) TransportDetails(ctx context.Context, rateID string) ([]map[string]any, error) {
	segments, err := c.inner.TransportDetails(ctx, rateID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.raw.TransportDetails[rateID] = segments
	c.mu.Unlock()
	return segments, nil
}

func (c *RecordingClient) ProductContent(ctx context.Context, supplierObjectID string) (map[string]any, error) {
	content, err := c.inner.ProductContent(ctx, supplierObjectID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.raw.ProductContent[supplierObjectID] = content
	c.mu.Unlock()
	return content, nil
}

// SnapshotClient serves a previously captured RawDataset instead of the live
// source. Lookups that the capture never saw come back as ErrNotFound, the
// same way the live source reports them.
type SnapshotClient struct {
	raw *RawDataset
}

func NewSnapshotClient(raw *RawDataset) *SnapshotClient {
	return &SnapshotClient{raw: raw}
}

func (c *SnapshotClient) Destinations(ctx context.Context) ([]map[string]any, error) {
	return c.raw.Regions, nil
}

func (c *SnapshotClient) Rates(ctx context.Context, skip, take int) ([]map[string]any, int, error) {
	total := len(c.raw.Rates)
	if skip >= total {
		return nil, total, nil
	}
	end := skip + take
	if end > total {
		end = total
	}
	return c.raw.Rates[skip:end], total, nil
}

func (c *SnapshotClient) TransportDetails(ctx context.Context, rateID string) ([]map[string]any, error) {
	segments, ok := c.raw.TransportDetails[rateID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return segments, nil
}

func (c *SnapshotClient) ProductContent(ctx context.Context, supplierObjectID string) (map[string]any, error) {
	content, ok := c.raw.ProductContent[supplierObjectID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return content, nil
}
