package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
)

func event(id int64, status model.Status, hour, minute int) model.StatusChangeEvent {
	return model.StatusChangeEvent{
		AttractionID: id,
		Status:       status,
		ChangedAt:    at(hour, minute),
	}
}

func resolved(e model.StatusChangeEvent, hour, minute int) model.StatusChangeEvent {
	r := at(hour, minute)
	e.ResolvedAt = &r
	return e
}

func TestSummarizeDowntime_Empty(t *testing.T) {
	got := SummarizeDowntime(nil, time.Now())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSummarizeDowntime_ClosedUntilNextEvent(t *testing.T) {
	events := []model.StatusChangeEvent{
		event(1, model.StatusClosed, 10, 0),
		event(1, model.StatusOperating, 10, 45),
	}

	got := SummarizeDowntime(events, at(12, 0))
	require.Contains(t, got, int64(1))
	assert.Equal(t, 45, got[1].DowntimeMinutes)
	assert.Zero(t, got[1].DelayCount)
}

func TestSummarizeDowntime_LastEventRunsToNow(t *testing.T) {
	events := []model.StatusChangeEvent{
		event(1, model.StatusOperating, 9, 0),
		event(1, model.StatusClosed, 10, 0),
	}

	got := SummarizeDowntime(events, at(11, 30))
	assert.Equal(t, 90, got[1].DowntimeMinutes)
}

func TestSummarizeDowntime_AtCapacityIsNotDowntime(t *testing.T) {
	events := []model.StatusChangeEvent{
		event(1, model.StatusAtCapacity, 10, 0),
		event(1, model.StatusOperating, 11, 0),
	}

	got := SummarizeDowntime(events, at(12, 0))
	assert.Zero(t, got[1].DowntimeMinutes)
}

func TestSummarizeDowntime_ResolvedDelayAverage(t *testing.T) {
	events := []model.StatusChangeEvent{
		resolved(event(1, model.StatusDelayed, 10, 0), 10, 20), // 20m
		event(1, model.StatusOperating, 10, 20),
		resolved(event(1, model.StatusDelayed, 14, 0), 14, 11), // 11m
		event(1, model.StatusOperating, 14, 11),
	}

	got := SummarizeDowntime(events, at(18, 0))
	summary := got[1]
	assert.Equal(t, 2, summary.DelayCount)
	assert.Equal(t, 2, summary.ResolvedDelayCount)
	// round(mean(20, 11)) = round(15.5) = 16
	assert.Equal(t, 16, summary.AvgDelayMinutes)
	assert.Equal(t, 31, summary.DowntimeMinutes)
}

// An unresolved delay still counts in DelayCount, so an average of 0 with a
// positive count reads as "open delays", not "no delays".
func TestSummarizeDowntime_UnresolvedDelay(t *testing.T) {
	events := []model.StatusChangeEvent{
		event(1, model.StatusDelayed, 10, 0),
	}

	got := SummarizeDowntime(events, at(10, 30))
	summary := got[1]
	assert.Equal(t, 1, summary.DelayCount)
	assert.Zero(t, summary.ResolvedDelayCount)
	assert.Zero(t, summary.AvgDelayMinutes)
	assert.Equal(t, 30, summary.DowntimeMinutes)
}

func TestSummarizeDowntime_PerAttractionIsolation(t *testing.T) {
	events := []model.StatusChangeEvent{
		event(1, model.StatusClosed, 10, 0),
		event(2, model.StatusOperating, 10, 30),
		event(1, model.StatusOperating, 11, 0),
	}

	got := SummarizeDowntime(events, at(12, 0))
	// Attraction 2's event must not terminate attraction 1's closure.
	assert.Equal(t, 60, got[1].DowntimeMinutes)
	assert.Zero(t, got[2].DowntimeMinutes)
}

func TestSummarizeDowntime_UnsortedInput(t *testing.T) {
	events := []model.StatusChangeEvent{
		event(1, model.StatusOperating, 10, 45),
		event(1, model.StatusClosed, 10, 0),
	}

	got := SummarizeDowntime(events, at(12, 0))
	assert.Equal(t, 45, got[1].DowntimeMinutes)
}
