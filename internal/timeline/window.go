// Package timeline reconstructs the park's three sparse append-only logs
// (status/wait samples, throughput slot counts, status-change audit events)
// into dense, chart-ready timelines and summary statistics. Everything in
// this package is a pure function over already-fetched records: no I/O, no
// retained state, recomputed from scratch on every call.
package timeline

import (
	"errors"
	"time"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
	"github.com/finleymurray/scarepark-queue-sub000/internal/parse"
)

// ErrWindowInverted is returned when a window's start minute is after its end
// minute. The window is rejected before any filtering happens.
var ErrWindowInverted = errors.New("timeline: window start is after window end")

// Window restricts records to a minute-of-day range. Both bounds are
// inclusive, and the same window must be applied to every stream feeding one
// board snapshot so the downstream joins stay aligned.
type Window struct {
	FromMinute int `json:"fromMinute"`
	ToMinute   int `json:"toMinute"`
}

// FullDay covers every minute of an operating day.
var FullDay = Window{FromMinute: 0, ToMinute: 1439}

// NewWindow validates bounds and returns a window. Bounds outside the day are
// clamped rather than rejected; only an inverted range is an error.
func NewWindow(from, to int) (Window, error) {
	if from < 0 {
		from = 0
	}
	if to > 1439 {
		to = 1439
	}
	if from > to {
		return Window{}, ErrWindowInverted
	}
	return Window{FromMinute: from, ToMinute: to}, nil
}

// Contains reports whether a minute of day falls inside the window.
func (w Window) Contains(minute int) bool {
	return minute >= w.FromMinute && minute <= w.ToMinute
}

// MinuteOfDay converts a timestamp to minutes since midnight in its own
// location. Callers are expected to have normalized all record timestamps to
// one location before filtering.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FilterSamples returns the samples whose observation time falls inside w.
func FilterSamples(samples []model.StatusSample, w Window) []model.StatusSample {
	out := make([]model.StatusSample, 0, len(samples))
	for _, s := range samples {
		if w.Contains(MinuteOfDay(s.ObservedAt)) {
			out = append(out, s)
		}
	}
	return out
}

// FilterEvents returns the audit events whose change time falls inside w.
func FilterEvents(events []model.StatusChangeEvent, w Window) []model.StatusChangeEvent {
	out := make([]model.StatusChangeEvent, 0, len(events))
	for _, e := range events {
		if w.Contains(MinuteOfDay(e.ChangedAt)) {
			out = append(out, e)
		}
	}
	return out
}

// FilterThroughput returns the throughput records whose slot start falls
// inside w. A malformed slot clock fails the whole call; throughput rows are
// staff-entered and a bad clock means the record set needs fixing, not
// silently thinning.
func FilterThroughput(recs []model.ThroughputRecord, w Window) ([]model.ThroughputRecord, error) {
	out := make([]model.ThroughputRecord, 0, len(recs))
	for _, r := range recs {
		start, err := parse.Clock(r.SlotStart)
		if err != nil {
			return nil, err
		}
		if w.Contains(start) {
			out = append(out, r)
		}
	}
	return out, nil
}
