package domain

import "context"

// SourceClient is the transport-layer collaborator. The pipeline depends
// only on this contract; the concrete client decides endpoints, retries and
// rate limiting.
type SourceClient interface {
	// Destinations returns the operator's destination-region listing.
	Destinations(ctx context.Context) ([]map[string]any, error)
	// Rates returns one page of tour-rate listings plus the total count the
	// source reports, so callers can drive pagination.
	Rates(ctx context.Context, skip, take int) (items []map[string]any, total int, err error)
	// TransportDetails returns the detailed transport segments for one rate.
	TransportDetails(ctx context.Context, rateID string) ([]map[string]any, error)
	// ProductContent returns the hotel/room content document for one rate's
	// supplier object.
	ProductContent(ctx context.Context, supplierObjectID string) (map[string]any, error)
}

// ByteCache is an optional raw-response cache in front of the source.
type ByteCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, v []byte, ttlSec int) error
}

// DatasetSink mirrors the finished dataset into secondary storage for the
// consuming application. Sink failures never fail the run.
type DatasetSink interface {
	ReplaceDataset(ctx context.Context, ds *Dataset) error
}
