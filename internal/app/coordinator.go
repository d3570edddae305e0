package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"tour_scraper/internal/domain"
)

// State of a pipeline run. Transitions are linear; Failed is reachable from
// any fetching or writing state.
type State string

const (
	StateIdle                      State = "idle"
	StateFetchingDestinations      State = "fetching_destinations"
	StateFetchingDependentEntities State = "fetching_dependent_entities"
	StateFetchingTourOptions       State = "fetching_tour_options"
	StateAssembling                State = "assembling"
	StateWriting                   State = "writing"
	StateDone                      State = "done"
	StateFailed                    State = "failed"
)

// CoordinatorConfig tunes one run. Zero values fall back to defaults that
// match the operator's page sizes.
type CoordinatorConfig struct {
	Workers      int64 // concurrent per-rate fetches
	RatesPerPage int
	MaxPages     int // hard stop against a source that keeps inflating totals
	Write        func(*domain.Dataset) error
	Now          func() time.Time
}

// Coordinator drives one extraction run end to end: fetch, extract, merge,
// resolve, assemble, write. Per-record failures degrade the dataset and land
// in diagnostics; only cancellation, an empty dataset or a write failure
// fail the run.
type Coordinator struct {
	client domain.SourceClient
	ex     Extractor
	diag   *Diagnostics
	cfg    CoordinatorConfig

	mu    sync.Mutex
	state State
}

func NewCoordinator(client domain.SourceClient, ex Extractor, diag *Diagnostics, cfg CoordinatorConfig) *Coordinator {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.RatesPerPage <= 0 {
		cfg.RatesPerPage = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Coordinator{client: client, ex: ex, diag: diag, cfg: cfg, state: StateIdle}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) Diagnostics() *Diagnostics { return c.diag }

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	log.Info().Str("state", string(s)).Msg("run state")
}

func (c *Coordinator) fail(err error) error {
	c.setState(StateFailed)
	return err
}

// rateResult keeps per-rate extraction output in submission order, so the
// merge stage sees candidates in a stable sequence regardless of which
// goroutine finished first.
type rateResult struct {
	hotel      *HotelCandidate
	tour       *TourOptionCandidate
	transports []*TransportCandidate
	dests      []*DestinationCandidate
}

// Run executes the full pipeline and returns the written dataset.
func (c *Coordinator) Run(ctx context.Context) (*domain.Dataset, error) {
	c.setState(StateFetchingDestinations)
	regions, err := c.client.Destinations(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.fail(ctx.Err())
		}
		c.diag.FetchFailure("getDestinations", err)
	}
	destCands := c.ex.Destinations(regions, c.diag)

	c.setState(StateFetchingDependentEntities)
	rates, err := c.fetchRates(ctx)
	if err != nil {
		return nil, c.fail(err)
	}
	results, err := c.fetchPerRate(ctx, rates)
	if err != nil {
		return nil, c.fail(err)
	}

	var hotelCands []*HotelCandidate
	var transportCands []*TransportCandidate
	var tourCands []*TourOptionCandidate
	for i := range results {
		res := &results[i]
		if res.hotel != nil {
			hotelCands = append(hotelCands, res.hotel)
		}
		if res.tour != nil {
			tourCands = append(tourCands, res.tour)
		}
		transportCands = append(transportCands, res.transports...)
		destCands = append(destCands, res.dests...)
	}

	dests := MergeDestinations(destCands, c.diag)
	hotels := MergeHotels(hotelCands, c.diag)
	transports := MergeTransports(transportCands, c.diag)

	c.setState(StateFetchingTourOptions)
	ix := NewCandidateIndex(dests, hotels, transports)
	resolver := NewResolver(c.client, c.ex, c.diag)
	resolvedTours, roomCands, err := resolver.ResolveTourOptions(ctx, tourCands, ix)
	if err != nil {
		return nil, c.fail(err)
	}
	rooms := MergeRoomTypes(roomCands, c.diag)
	tours := MergeTourOptions(resolvedTours, c.diag)

	c.setState(StateAssembling)
	ds := Assemble(dests, hotels, rooms, transports, tours, c.diag, 1, c.cfg.Now().UTC())
	if ds.Empty() {
		return nil, c.fail(domain.ErrEmptyDataset)
	}

	c.setState(StateWriting)
	if c.cfg.Write != nil {
		if err := c.cfg.Write(ds); err != nil {
			return nil, c.fail(err)
		}
	}

	c.setState(StateDone)
	log.Info().
		Int("destinations", len(ds.Destinations)).
		Int("hotels", len(ds.Hotels)).
		Int("room_types", len(ds.RoomTypes)).
		Int("transports", len(ds.Transports)).
		Int("tour_options", len(ds.TourOptions)).
		Int("pruned_tour_options", ds.Manifest.Pruned["tour_options"]).
		Msg("run complete")
	return ds, nil
}

// fetchRates walks the paginated rate listing until the reported total is
// reached. A failed page ends pagination (the skip offset would be off) but
// keeps the pages already fetched.
func (c *Coordinator) fetchRates(ctx context.Context) ([]map[string]any, error) {
	var rates []map[string]any
	skip := 0
	for page := 0; page < c.cfg.MaxPages; page++ {
		items, total, err := c.client.Rates(ctx, skip, c.cfg.RatesPerPage)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.diag.FetchFailure("getRates", err)
			break
		}
		rates = append(rates, items...)
		skip += len(items)
		if len(items) == 0 || skip >= total {
			break
		}
	}
	return rates, nil
}

// fetchPerRate extracts every rate and fetches its transport details, at
// most cfg.Workers rates in flight. Cancellation stops new submissions and
// waits for in-flight ones.
func (c *Coordinator) fetchPerRate(ctx context.Context, rates []map[string]any) ([]rateResult, error) {
	results := make([]rateResult, len(rates))
	sem := semaphore.NewWeighted(c.cfg.Workers)
	var wg sync.WaitGroup

	for i := range rates {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)

			res := &results[i]
			res.hotel, res.tour = c.ex.Rate(rates[i], c.diag)
			if res.tour == nil {
				return
			}
			segments, err := c.client.TransportDetails(ctx, res.tour.RateID)
			if err != nil {
				c.diag.FetchFailure("getTransportDetails", err)
				return
			}
			res.transports, res.dests = c.ex.Transports(res.tour.RateID, segments, c.diag)
			if len(res.transports) > 0 {
				// the outbound leg identifies the offer's transport
				res.tour.TransportKey = res.transports[0].Key()
			}
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
