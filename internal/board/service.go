// Package board assembles the four analytics views for one operating day and
// time window into a single snapshot document, recomputing from scratch
// whenever the underlying logs or the window change.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/finleymurray/scarepark-queue-sub000/internal/store"
	"github.com/finleymurray/scarepark-queue-sub000/internal/timeline"
)

const dateLayout = "2006-01-02"

// ErrInvalidDate is returned when the requested date is not a "2006-01-02"
// calendar day.
var ErrInvalidDate = errors.New("board: invalid date")

// Snapshot is the full analytics document for one (date, window) pair. All
// fields are plain serializable data.
type Snapshot struct {
	Date       string                              `json:"date"`
	Window     timeline.Window                     `json:"window"`
	Series     timeline.WaitSeries                 `json:"series"`
	Intervals  map[int64][]timeline.StatusInterval `json:"intervals"`
	Throughput timeline.ThroughputTable            `json:"throughput"`
	Downtime   map[int64]timeline.DowntimeSummary  `json:"downtime"`
	ComputedAt time.Time                           `json:"computedAt"`
}

// Service recomputes board snapshots on demand. Each computation is a pure
// function of the fetched record sets plus the window, so overlapping
// invocations are safe; the memo cache only trades repeat CPU for staleness
// bounded by explicit invalidation on every write.
type Service struct {
	store store.Store
	memo  *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewService creates a snapshot service memoizing results for ttl.
func NewService(s store.Store, ttl time.Duration) *Service {
	return &Service{
		store: s,
		memo:  cache.New(ttl, 2*ttl),
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot returns the analytics document for date ("2006-01-02", UTC day)
// and a validated window. Empty logs produce a well-formed empty snapshot,
// never an error.
func (s *Service) Snapshot(ctx context.Context, date string, w timeline.Window) (*Snapshot, error) {
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	key := memoKey(date, w)
	if cached, found := s.memo.Get(key); found {
		return cached.(*Snapshot), nil
	}

	dayEnd := day.Add(24 * time.Hour)
	samples, err := s.store.SamplesInRange(ctx, day, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status samples: %w", err)
	}
	events, err := s.store.EventsInRange(ctx, day, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status change events: %w", err)
	}
	recs, err := s.store.ThroughputForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch throughput records: %w", err)
	}
	directory, err := s.store.Directory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attraction directory: %w", err)
	}

	samples = timeline.FilterSamples(samples, w)
	events = timeline.FilterEvents(events, w)
	recs, err = timeline.FilterThroughput(recs, w)
	if err != nil {
		return nil, err
	}

	table, err := timeline.BuildThroughputTable(recs, samples, directory)
	if err != nil {
		return nil, err
	}

	// A still-open downtime event runs to "now", but never past the end of
	// the day being viewed: yesterday's un-cleared closure should not keep
	// growing on today's report.
	horizon := s.now()
	if horizon.After(dayEnd) {
		horizon = dayEnd
	}

	snapshot := &Snapshot{
		Date:       date,
		Window:     w,
		Series:     timeline.BuildWaitSeries(samples),
		Intervals:  timeline.BuildStatusIntervals(samples),
		Throughput: table,
		Downtime:   timeline.SummarizeDowntime(events, horizon),
		ComputedAt: s.now(),
	}
	s.memo.Set(key, snapshot, s.ttl)
	return snapshot, nil
}

// Invalidate drops every memoized snapshot for the given date. Writers call
// this after appending to any of the three logs.
func (s *Service) Invalidate(date string) {
	prefix := date + "|"
	for key := range s.memo.Items() {
		if strings.HasPrefix(key, prefix) {
			s.memo.Delete(key)
		}
	}
}

func memoKey(date string, w timeline.Window) string {
	return fmt.Sprintf("%s|%d|%d", date, w.FromMinute, w.ToMinute)
}
