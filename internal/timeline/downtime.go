package timeline

import (
	"math"
	"sort"
	"time"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
)

// DowntimeSummary aggregates an attraction's audit events into downtime and
// delay statistics for one window. AvgDelayMinutes averages only delays that
// have a resolution time; DelayCount includes unresolved ones, so "no delays"
// (count 0) is distinguishable from "delays nobody closed out" (count > 0,
// average 0).
type DowntimeSummary struct {
	AttractionID       int64 `json:"attractionId"`
	DowntimeMinutes    int   `json:"downtimeMinutes"`
	DelayCount         int   `json:"delayCount"`
	ResolvedDelayCount int   `json:"resolvedDelayCount"`
	AvgDelayMinutes    int   `json:"avgDelayMinutes"`
}

// SummarizeDowntime derives per-attraction downtime totals and average
// resolved-delay durations from the status-change audit stream. A Closed or
// Delayed event spans from its change time to the next event for the same
// attraction, or to now when it is the attraction's last event. Both outputs
// are minutes with standard rounding.
func SummarizeDowntime(events []model.StatusChangeEvent, now time.Time) map[int64]DowntimeSummary {
	summaries := make(map[int64]DowntimeSummary)
	if len(events) == 0 {
		return summaries
	}

	byAttraction := make(map[int64][]model.StatusChangeEvent)
	for _, e := range events {
		byAttraction[e.AttractionID] = append(byAttraction[e.AttractionID], e)
	}

	for id, evs := range byAttraction {
		sort.SliceStable(evs, func(i, j int) bool {
			return evs[i].ChangedAt.Before(evs[j].ChangedAt)
		})

		var downtime time.Duration
		var delaySum time.Duration
		summary := DowntimeSummary{AttractionID: id}

		for i, e := range evs {
			if e.Status.Down() {
				end := now
				if i+1 < len(evs) {
					end = evs[i+1].ChangedAt
				}
				if end.After(e.ChangedAt) {
					downtime += end.Sub(e.ChangedAt)
				}
			}

			if e.Status == model.StatusDelayed {
				summary.DelayCount++
				if e.ResolvedAt != nil {
					summary.ResolvedDelayCount++
					delaySum += e.ResolvedAt.Sub(e.ChangedAt)
				}
			}
		}

		summary.DowntimeMinutes = int(math.Round(downtime.Minutes()))
		if summary.ResolvedDelayCount > 0 {
			avg := delaySum.Minutes() / float64(summary.ResolvedDelayCount)
			summary.AvgDelayMinutes = int(math.Round(avg))
		}
		summaries[id] = summary
	}

	return summaries
}
