package timeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
	"github.com/finleymurray/scarepark-queue-sub000/internal/parse"
)

// Slot identifies one fixed throughput window of the operating day. Two
// records belong to the same slot iff both clock strings match exactly.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SlotColumn is one attraction column of the throughput table.
type SlotColumn struct {
	AttractionID int64  `json:"attractionId"`
	Name         string `json:"name"`
}

// SlotCell holds one (slot, attraction) entry. AvgWaitMinutes is nil when no
// operating sample fell inside the slot; a zero there would be
// indistinguishable from a genuine walk-on wait.
type SlotCell struct {
	GuestCount     int  `json:"guestCount"`
	AvgWaitMinutes *int `json:"avgWaitMinutes"`
}

// SlotRow is one slot of the table with cells aligned to Columns.
type SlotRow struct {
	Slot  Slot       `json:"slot"`
	Cells []SlotCell `json:"cells"`
	Total int        `json:"total"`
}

// ThroughputTable is the slot × attraction guest-count matrix plus totals.
type ThroughputTable struct {
	Columns      []SlotColumn `json:"columns"`
	Rows         []SlotRow    `json:"rows"`
	ColumnTotals []int        `json:"columnTotals"`
	GrandTotal   int          `json:"grandTotal"`
}

// BuildThroughputTable groups throughput records by slot identity across
// attractions and folds in the average operating wait per slot from the
// sample log. Display names resolve through the directory first, then
// whatever name the sample log carries, then an ID-derived placeholder.
// Every slot present in the input appears exactly once, in start-time order;
// totals are plain sums of the exact inputs.
func BuildThroughputTable(recs []model.ThroughputRecord, samples []model.StatusSample, directory map[int64]string) (ThroughputTable, error) {
	table := ThroughputTable{Columns: []SlotColumn{}, Rows: []SlotRow{}, ColumnTotals: []int{}}
	if len(recs) == 0 {
		return table, nil
	}

	slotSet := make(map[Slot]bool)
	var slots []Slot
	idSet := make(map[int64]bool)
	var ids []int64
	counts := make(map[Slot]map[int64]int)

	for _, r := range recs {
		slot := Slot{Start: r.SlotStart, End: r.SlotEnd}
		if !slotSet[slot] {
			slotSet[slot] = true
			slots = append(slots, slot)
			counts[slot] = make(map[int64]int)
		}
		if !idSet[r.AttractionID] {
			idSet[r.AttractionID] = true
			ids = append(ids, r.AttractionID)
		}
		// Same-key records are upserted upstream; keep the last one if two
		// slip through in a single query result.
		counts[slot][r.AttractionID] = r.GuestCount
	}

	// Slots share a day, so zero-padded clock strings sort correctly as text.
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start != slots[j].Start {
			return slots[i].Start < slots[j].Start
		}
		return slots[i].End < slots[j].End
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	sampleNames := make(map[int64]string)
	samplesByID := make(map[int64][]model.StatusSample)
	for _, s := range samples {
		if _, ok := sampleNames[s.AttractionID]; !ok && s.AttractionName != "" {
			sampleNames[s.AttractionID] = s.AttractionName
		}
		samplesByID[s.AttractionID] = append(samplesByID[s.AttractionID], s)
	}

	for _, id := range ids {
		table.Columns = append(table.Columns, SlotColumn{AttractionID: id, Name: resolveName(id, directory, sampleNames)})
	}

	table.ColumnTotals = make([]int, len(ids))
	for _, slot := range slots {
		startMin, err := parse.Clock(slot.Start)
		if err != nil {
			return ThroughputTable{}, err
		}
		endMin, err := parse.Clock(slot.End)
		if err != nil {
			return ThroughputTable{}, err
		}

		row := SlotRow{Slot: slot, Cells: make([]SlotCell, len(ids))}
		for i, id := range ids {
			count := counts[slot][id]
			row.Cells[i] = SlotCell{
				GuestCount:     count,
				AvgWaitMinutes: averageWait(samplesByID[id], startMin, endMin),
			}
			row.Total += count
			table.ColumnTotals[i] += count
		}
		table.GrandTotal += row.Total
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// averageWait averages the operating waits observed in [startMin, endMin).
// The end bound is exclusive so a sample sitting exactly on a slot boundary
// lands in the next slot, never both. Returns nil when nothing qualifies.
func averageWait(samples []model.StatusSample, startMin, endMin int) *int {
	sum, n := 0, 0
	for _, s := range samples {
		if s.Status != model.StatusOperating {
			continue
		}
		m := MinuteOfDay(s.ObservedAt)
		if m >= startMin && m < endMin {
			sum += s.WaitMinutes
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := int(math.Round(float64(sum) / float64(n)))
	return &avg
}

func resolveName(id int64, directory, sampleNames map[int64]string) string {
	if name, ok := directory[id]; ok && name != "" {
		return name
	}
	if name, ok := sampleNames[id]; ok {
		return name
	}
	return fmt.Sprintf("attraction-%d", id)
}
