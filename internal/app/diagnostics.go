package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tour_scraper/internal/adapters/observability"
	"tour_scraper/internal/domain"
)

// Diagnostics collects per-record failures, conflicts and pruning decisions
// across the run. It is the only mutable state shared between stages; the
// coordinator owns it and finalizes it into the manifest.
type Diagnostics struct {
	mu            sync.Mutex
	warnings      []string
	conflicts     []string
	pruned        map[string]int
	fetchFailures int
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{pruned: make(map[string]int)}
}

// Warnf records a non-fatal extraction warning for one entity type.
func (d *Diagnostics) Warnf(entity, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Warn().Str("entity", entity).Msg(msg)
	observability.ObserveWarning(entity)
	d.mu.Lock()
	d.warnings = append(d.warnings, entity+": "+msg)
	d.mu.Unlock()
}

// Conflict records a field disagreement between two candidates of the same
// identity. The first-seen value stays in effect.
func (d *Diagnostics) Conflict(entity, key, field string, kept, dropped any) {
	log.Warn().
		Str("entity", entity).
		Str("key", key).
		Str("field", field).
		Interface("kept", kept).
		Interface("dropped", dropped).
		Msg("merge conflict, first-seen value wins")
	observability.ObserveConflict(entity)
	d.mu.Lock()
	d.conflicts = append(d.conflicts, fmt.Sprintf("%s %s.%s: kept %v, dropped %v", entity, key, field, kept, dropped))
	d.mu.Unlock()
}

// Prune records the exclusion of a record whose references could not be
// satisfied within the dataset.
func (d *Diagnostics) Prune(entity, key, reason string) {
	log.Warn().Str("entity", entity).Str("key", key).Str("reason", reason).Msg("record pruned")
	observability.ObservePruned(entity)
	d.mu.Lock()
	d.pruned[entity]++
	d.mu.Unlock()
}

// FetchFailure records a recovered source failure (a page that never
// yielded content).
func (d *Diagnostics) FetchFailure(op string, err error) {
	log.Warn().Str("op", op).Err(err).Msg("fetch failed")
	d.mu.Lock()
	d.fetchFailures++
	d.mu.Unlock()
}

func (d *Diagnostics) WarningCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.warnings)
}

func (d *Diagnostics) PrunedCount(entity string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pruned[entity]
}

// Manifest snapshots the diagnostics into run metadata.
func (d *Diagnostics) Manifest(counts map[string]int, sourceCount int, now time.Time) domain.Manifest {
	d.mu.Lock()
	defer d.mu.Unlock()
	pruned := make(map[string]int, len(d.pruned))
	for k, v := range d.pruned {
		pruned[k] = v
	}
	return domain.Manifest{
		GeneratedAt:   now,
		SourceCount:   sourceCount,
		Counts:        counts,
		Warnings:      len(d.warnings),
		Conflicts:     len(d.conflicts),
		Pruned:        pruned,
		FetchFailures: d.fetchFailures,
	}
}
