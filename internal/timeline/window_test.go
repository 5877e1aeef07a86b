package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
	"github.com/finleymurray/scarepark-queue-sub000/internal/parse"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 31, hour, minute, 0, 0, time.UTC)
}

func TestNewWindow(t *testing.T) {
	w, err := NewWindow(540, 1320)
	assert.NoError(t, err)
	assert.Equal(t, Window{FromMinute: 540, ToMinute: 1320}, w)

	// Out-of-day bounds clamp instead of failing.
	w, err = NewWindow(-10, 5000)
	assert.NoError(t, err)
	assert.Equal(t, FullDay, w)

	_, err = NewWindow(1320, 540)
	assert.ErrorIs(t, err, ErrWindowInverted)
}

func TestWindowContainsIsClosedInterval(t *testing.T) {
	w := Window{FromMinute: 600, ToMinute: 660}

	assert.False(t, w.Contains(599))
	assert.True(t, w.Contains(600))
	assert.True(t, w.Contains(660))
	assert.False(t, w.Contains(661))
}

func TestFilterSamples(t *testing.T) {
	samples := []model.StatusSample{
		{AttractionID: 1, ObservedAt: at(9, 59)},
		{AttractionID: 1, ObservedAt: at(10, 0)},
		{AttractionID: 2, ObservedAt: at(11, 0)},
		{AttractionID: 2, ObservedAt: at(11, 1)},
	}

	got := FilterSamples(samples, Window{FromMinute: 600, ToMinute: 660})
	require.Len(t, got, 2)
	assert.Equal(t, at(10, 0), got[0].ObservedAt)
	assert.Equal(t, at(11, 0), got[1].ObservedAt)

	assert.Empty(t, FilterSamples(nil, FullDay))
}

func TestFilterEvents(t *testing.T) {
	events := []model.StatusChangeEvent{
		{AttractionID: 1, ChangedAt: at(8, 30)},
		{AttractionID: 1, ChangedAt: at(18, 0)},
	}

	got := FilterEvents(events, Window{FromMinute: 17 * 60, ToMinute: 1439})
	require.Len(t, got, 1)
	assert.Equal(t, at(18, 0), got[0].ChangedAt)
}

func TestFilterThroughput(t *testing.T) {
	recs := []model.ThroughputRecord{
		{AttractionID: 1, SlotStart: "09:45", SlotEnd: "10:00"},
		{AttractionID: 1, SlotStart: "10:00", SlotEnd: "10:15"},
	}

	got, err := FilterThroughput(recs, Window{FromMinute: 600, ToMinute: 660})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "10:00", got[0].SlotStart)

	_, err = FilterThroughput([]model.ThroughputRecord{{SlotStart: "bogus"}}, FullDay)
	var parseErr *parse.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

// The same bounds applied to all three streams keep a cross-stream join
// aligned: nothing outside the window survives in any of them.
func TestFilterAlignmentAcrossStreams(t *testing.T) {
	w := Window{FromMinute: 600, ToMinute: 719}

	samples := FilterSamples([]model.StatusSample{{ObservedAt: at(12, 0)}}, w)
	events := FilterEvents([]model.StatusChangeEvent{{ChangedAt: at(12, 0)}}, w)
	recs, err := FilterThroughput([]model.ThroughputRecord{{SlotStart: "12:00", SlotEnd: "12:15"}}, w)

	require.NoError(t, err)
	assert.Empty(t, samples)
	assert.Empty(t, events)
	assert.Empty(t, recs)
}
