package timeline

import (
	"sort"
	"time"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
)

// SeriesRow is one instant on the multi-line wait chart. Waits maps
// attraction name to its wait at that instant: a missing key means the
// attraction had not been observed yet, a nil value means it was observed in
// a non-operating state (the chart breaks the line there on purpose, since a
// closed ride has no wait time).
type SeriesRow struct {
	At    time.Time       `json:"at"`
	Waits map[string]*int `json:"waits"`
}

// WaitSeries is the dense, forward-filled wait-time table for one window.
// Attractions lists series in order of first observation, which is also the
// chart's color-assignment order.
type WaitSeries struct {
	Attractions []string    `json:"attractions"`
	Rows        []SeriesRow `json:"rows"`
}

// BuildWaitSeries turns sparse per-attraction samples into one row per
// distinct observation instant, carrying every previously-seen attraction's
// value forward into rows where it has no sample of its own. The input is
// sorted internally, so any permutation of the same record set reconstructs
// the same series.
func BuildWaitSeries(samples []model.StatusSample) WaitSeries {
	series := WaitSeries{Attractions: []string{}, Rows: []SeriesRow{}}
	if len(samples) == 0 {
		return series
	}

	sorted := make([]model.StatusSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ObservedAt.Before(sorted[j].ObservedAt)
	})

	seen := make(map[string]bool)
	for _, s := range sorted {
		if !seen[s.AttractionName] {
			seen[s.AttractionName] = true
			series.Attractions = append(series.Attractions, s.AttractionName)
		}
	}

	// last holds each attraction's most recent value; presence in the map
	// means "observed at least once", a nil entry means "observed, but not
	// operating".
	last := make(map[string]*int, len(series.Attractions))

	for i := 0; i < len(sorted); {
		at := sorted[i].ObservedAt

		// Apply every sample sharing this exact instant, later duplicates
		// winning in encounter order.
		j := i
		for ; j < len(sorted) && sorted[j].ObservedAt.Equal(at); j++ {
			s := sorted[j]
			if s.Status == model.StatusOperating {
				w := s.WaitMinutes
				last[s.AttractionName] = &w
			} else {
				last[s.AttractionName] = nil
			}
		}
		i = j

		waits := make(map[string]*int, len(last))
		for name, v := range last {
			if v == nil {
				waits[name] = nil
				continue
			}
			w := *v
			waits[name] = &w
		}
		series.Rows = append(series.Rows, SeriesRow{At: at, Waits: waits})
	}

	return series
}
