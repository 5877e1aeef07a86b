package timeline

import (
	"sort"
	"time"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
)

// StatusInterval is one maximal contiguous run during which an attraction's
// status stayed on a single non-operating value.
type StatusInterval struct {
	Status model.Status `json:"status"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
}

// BuildStatusIntervals segments each attraction's sample log into closed
// non-operating intervals, keyed by attraction ID. An operating sample ends
// any open interval; a different non-operating status ends the previous
// interval and opens the next one at the same boundary instant, so two
// back-to-back statuses at one timestamp produce a zero-width interval. An
// interval still open after the last sample is closed at the timestamp of the
// globally last sample in the set, which renders a still-ongoing closure up
// to the chart's right edge.
func BuildStatusIntervals(samples []model.StatusSample) map[int64][]StatusInterval {
	intervals := make(map[int64][]StatusInterval)
	if len(samples) == 0 {
		return intervals
	}

	sorted := make([]model.StatusSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ObservedAt.Before(sorted[j].ObservedAt)
	})
	horizon := sorted[len(sorted)-1].ObservedAt

	type openInterval struct {
		status model.Status
		start  time.Time
	}
	open := make(map[int64]*openInterval)

	// Keep per-attraction emit order stable without a second sort.
	var order []int64
	seen := make(map[int64]bool)

	for _, s := range sorted {
		if !seen[s.AttractionID] {
			seen[s.AttractionID] = true
			order = append(order, s.AttractionID)
		}

		cur := open[s.AttractionID]

		if s.Status == model.StatusOperating {
			if cur != nil {
				intervals[s.AttractionID] = append(intervals[s.AttractionID], StatusInterval{
					Status: cur.status,
					Start:  cur.start,
					End:    s.ObservedAt,
				})
				delete(open, s.AttractionID)
			}
			continue
		}

		if cur != nil && cur.status == s.Status {
			// Same non-operating status repeated; the interval continues.
			continue
		}
		if cur != nil {
			intervals[s.AttractionID] = append(intervals[s.AttractionID], StatusInterval{
				Status: cur.status,
				Start:  cur.start,
				End:    s.ObservedAt,
			})
		}
		open[s.AttractionID] = &openInterval{status: s.Status, start: s.ObservedAt}
	}

	for _, id := range order {
		if cur, ok := open[id]; ok {
			intervals[id] = append(intervals[id], StatusInterval{
				Status: cur.status,
				Start:  cur.start,
				End:    horizon,
			})
		}
	}

	return intervals
}
