package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
	"github.com/finleymurray/scarepark-queue-sub000/internal/parse"
)

func throughput(id int64, start, end string, count int) model.ThroughputRecord {
	return model.ThroughputRecord{
		AttractionID: id,
		LogDate:      "2026-10-31",
		SlotStart:    start,
		SlotEnd:      end,
		GuestCount:   count,
	}
}

func TestBuildThroughputTable_Empty(t *testing.T) {
	table, err := BuildThroughputTable(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Empty(t, table.Columns)
	assert.Zero(t, table.GrandTotal)
}

func TestBuildThroughputTable_TotalsAndOrdering(t *testing.T) {
	recs := []model.ThroughputRecord{
		throughput(2, "18:15", "18:30", 41),
		throughput(1, "18:00", "18:15", 37),
		throughput(2, "18:00", "18:15", 52),
	}
	directory := map[int64]string{1: "Terror Mine", 2: "Grave Robber"}

	table, err := BuildThroughputTable(recs, nil, directory)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, Slot{Start: "18:00", End: "18:15"}, table.Rows[0].Slot)
	assert.Equal(t, Slot{Start: "18:15", End: "18:30"}, table.Rows[1].Slot)

	require.Len(t, table.Columns, 2)
	assert.Equal(t, "Terror Mine", table.Columns[0].Name)
	assert.Equal(t, "Grave Robber", table.Columns[1].Name)

	// Missing (slot, attraction) pairs count as zero.
	assert.Equal(t, 37, table.Rows[0].Cells[0].GuestCount)
	assert.Equal(t, 52, table.Rows[0].Cells[1].GuestCount)
	assert.Equal(t, 0, table.Rows[1].Cells[0].GuestCount)
	assert.Equal(t, 41, table.Rows[1].Cells[1].GuestCount)

	assert.Equal(t, 89, table.Rows[0].Total)
	assert.Equal(t, 41, table.Rows[1].Total)
	assert.Equal(t, []int{37, 93}, table.ColumnTotals)
	assert.Equal(t, 130, table.GrandTotal)

	// Column totals always sum to the grand total.
	sum := 0
	for _, c := range table.ColumnTotals {
		sum += c
	}
	assert.Equal(t, table.GrandTotal, sum)
}

func TestBuildThroughputTable_Idempotent(t *testing.T) {
	recs := []model.ThroughputRecord{
		throughput(1, "18:00", "18:15", 37),
		throughput(2, "18:00", "18:15", 52),
	}

	first, err := BuildThroughputTable(recs, nil, nil)
	require.NoError(t, err)
	second, err := BuildThroughputTable(recs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// A sample exactly on a slot's end boundary belongs to the next slot only.
func TestBuildThroughputTable_BoundaryExclusivity(t *testing.T) {
	recs := []model.ThroughputRecord{
		throughput(1, "18:00", "18:15", 10),
		throughput(1, "18:15", "18:30", 12),
	}
	samples := []model.StatusSample{
		operating(1, "Terror Mine", 20, 18, 15),
	}

	table, err := BuildThroughputTable(recs, samples, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.Nil(t, table.Rows[0].Cells[0].AvgWaitMinutes)
	require.NotNil(t, table.Rows[1].Cells[0].AvgWaitMinutes)
	assert.Equal(t, 20, *table.Rows[1].Cells[0].AvgWaitMinutes)
}

func TestBuildThroughputTable_NameFallbacks(t *testing.T) {
	recs := []model.ThroughputRecord{
		throughput(1, "18:00", "18:15", 5),
		throughput(2, "18:00", "18:15", 6),
		throughput(3, "18:00", "18:15", 7),
	}
	samples := []model.StatusSample{
		operating(2, "Grave Robber", 20, 17, 0),
	}
	directory := map[int64]string{1: "Terror Mine"}

	table, err := BuildThroughputTable(recs, samples, directory)
	require.NoError(t, err)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, "Terror Mine", table.Columns[0].Name)
	assert.Equal(t, "Grave Robber", table.Columns[1].Name)
	assert.Equal(t, "attraction-3", table.Columns[2].Name)
}

func TestBuildThroughputTable_MalformedSlotClock(t *testing.T) {
	recs := []model.ThroughputRecord{
		{AttractionID: 1, SlotStart: "18:00", SlotEnd: "quarter past"},
	}
	_, err := BuildThroughputTable(recs, nil, nil)
	var parseErr *parse.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

// End-to-end scenario: a closure in the middle of a slot is excluded from the
// average, and the reopened wait pulls the mean to round(mean(10, 12)) = 11.
func TestBuildThroughputTable_AverageExcludesDownSamples(t *testing.T) {
	samples := []model.StatusSample{
		operating(1, "Terror Mine", 10, 10, 0),
		down(1, "Terror Mine", model.StatusClosed, 10, 5),
		operating(1, "Terror Mine", 12, 10, 10),
	}
	recs := []model.ThroughputRecord{
		throughput(1, "10:00", "10:15", 37),
	}

	table, err := BuildThroughputTable(recs, samples, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	cell := table.Rows[0].Cells[0]
	assert.Equal(t, 37, cell.GuestCount)
	require.NotNil(t, cell.AvgWaitMinutes)
	assert.Equal(t, 11, *cell.AvgWaitMinutes)

	// And the matching segmentation shows exactly the one closure.
	intervals := BuildStatusIntervals(samples)
	require.Len(t, intervals[1], 1)
	assert.Equal(t, StatusInterval{Status: model.StatusClosed, Start: at(10, 5), End: at(10, 10)}, intervals[1][0])
}
