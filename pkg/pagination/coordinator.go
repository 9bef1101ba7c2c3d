package pagination

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/geofetch/arcfetch/pkg/feature"
	"github.com/geofetch/arcfetch/pkg/logging"
	"github.com/geofetch/arcfetch/pkg/metadata"
)

// Prometheus metrics for fetch coordination.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcgis_pages_fetched_total",
		Help: "Total pages fetched by mode",
	}, []string{"mode"}) // "concurrent", "sequential"

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arcgis_fetch_duration_seconds",
		Help:    "Full fetch session duration in seconds by mode",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"mode"})

	fetchAbortsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arcgis_fetch_aborts_total",
		Help: "Total fetch sessions aborted by a page failure",
	})
)

// Coordinator drives a PageFetcher across all planned pages and merges
// the results into one ordered feature collection.
type Coordinator struct {
	fetcher PageFetcher
	logger  zerolog.Logger
}

// NewCoordinator creates a fetch coordinator.
func NewCoordinator(fetcher PageFetcher) *Coordinator {
	return &Coordinator{
		fetcher: fetcher,
		logger:  logging.NewLogger("fetch-coordinator"),
	}
}

// FetchAll fetches every planned page and returns the merged collection.
//
// Merge order is plan order, not arrival order: each page result lands in
// a slot indexed by its plan position and the slots are concatenated
// 0..N-1 once all pages are in, so concurrent and sequential runs produce
// identical collections. Any page failure aborts the whole fetch with a
// *FetchAbortedError carrying the failing offset; no partial collection
// is returned.
func (c *Coordinator) FetchAll(ctx context.Context, md *metadata.Metadata, concurrent bool) (*feature.Collection, error) {
	start := time.Now()

	plan, err := Plan(md.TotalRecords, md.MaxPageSize)
	if err != nil {
		return nil, err
	}

	mode := "sequential"
	if concurrent {
		mode = "concurrent"
	}

	c.logger.Info().
		Int("total_records", md.TotalRecords).
		Int("pages", len(plan)).
		Str("mode", mode).
		Msg("Starting page fetch")

	slots := make([][]json.RawMessage, len(plan))

	if concurrent {
		err = c.fetchConcurrent(ctx, plan, slots)
	} else {
		err = c.fetchSequential(ctx, plan, slots)
	}
	if err != nil {
		fetchAbortsTotal.Inc()
		return nil, err
	}

	pagesFetchedTotal.WithLabelValues(mode).Add(float64(len(plan)))
	fetchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	coll := &feature.Collection{
		Features:     feature.Merge(slots),
		GeometryType: md.GeometryType,
		Schema:       md.Fields,
	}

	c.logger.Info().
		Int("pages", len(plan)).
		Int("records", coll.Count()).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return coll, nil
}

// fetchConcurrent dispatches every page at once. Each goroutine writes
// only its own slot; the first failure cancels the shared context so
// outstanding requests are discarded best-effort.
func (c *Coordinator) fetchConcurrent(ctx context.Context, plan []Page, slots [][]json.RawMessage) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var abort *FetchAbortedError

	for _, page := range plan {
		wg.Add(1)
		go func(page Page) {
			defer wg.Done()

			features, err := c.fetcher.FetchPage(ctx, page)
			if err != nil {
				mu.Lock()
				if abort == nil {
					abort = &FetchAbortedError{Offset: page.Offset, Err: err}
					cancel()
				}
				mu.Unlock()

				c.logger.Warn().
					Err(err).
					Int("offset", page.Offset).
					Msg("Page fetch failed")
				return
			}

			slots[page.Index] = features
		}(page)
	}

	wg.Wait()

	if abort != nil {
		return abort
	}
	return nil
}

// fetchSequential processes pages strictly in plan order, one at a time.
func (c *Coordinator) fetchSequential(ctx context.Context, plan []Page, slots [][]json.RawMessage) error {
	for _, page := range plan {
		features, err := c.fetcher.FetchPage(ctx, page)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Int("offset", page.Offset).
				Msg("Page fetch failed")
			return &FetchAbortedError{Offset: page.Offset, Err: err}
		}
		slots[page.Index] = features
	}

	return nil
}
