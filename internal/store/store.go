package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
)

// ErrUnknownAttraction is returned when a write references an attraction the
// directory has never seen.
var ErrUnknownAttraction = errors.New("store: unknown attraction")

// Store defines the interface for all database operations. Reads return
// records with no ordering guarantee; the timeline package sorts.
type Store interface {
	DB() *gorm.DB

	UpsertAttractions(ctx context.Context, items []FeedItem) error
	ApplyFeed(ctx context.Context, now time.Time, items []FeedItem, classify func(int) model.Status) (FeedResult, error)
	RecordStatusChange(ctx context.Context, change StatusChange) (*model.StatusChangeEvent, error)
	UpsertThroughput(ctx context.Context, rec *model.ThroughputRecord) error

	SamplesInRange(ctx context.Context, from, to time.Time) ([]model.StatusSample, error)
	EventsInRange(ctx context.Context, from, to time.Time) ([]model.StatusChangeEvent, error)
	ThroughputForDate(ctx context.Context, date string) ([]model.ThroughputRecord, error)
	Directory(ctx context.Context) (map[int64]string, error)
	CurrentStates(ctx context.Context) (map[int64]model.AttractionState, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// UpsertAttractions refreshes the attraction directory from a feed snapshot.
func (s *gormStore) UpsertAttractions(ctx context.Context, items []FeedItem) error {
	var toUpsert []model.Attraction
	for _, item := range items {
		if item.Name == "" {
			log.Printf("Skipping feed item %d with empty name", item.ID)
			continue
		}
		toUpsert = append(toUpsert, model.Attraction{
			ID:   item.ID,
			Name: item.Name,
			Zone: item.Zone,
		})
	}
	if len(toUpsert) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "zone", "updated_at"}),
	}).Create(&toUpsert).Error
}

// ApplyFeed diffs a feed snapshot against the current-state table and records
// a sample (and audit event, for status transitions) for every attraction
// whose observed state changed. It returns the IDs of attractions that came
// back to operating, which are the ones subscribers get notified about.
//
// An attraction missing from the snapshot keeps its last known state: a feed
// gap is not evidence of a closure, and the board never fabricates a record.
func (s *gormStore) ApplyFeed(ctx context.Context, now time.Time, items []FeedItem, classify func(int) model.Status) (FeedResult, error) {
	states, err := s.CurrentStates(ctx)
	if err != nil {
		return FeedResult{}, fmt.Errorf("failed to fetch current states: %w", err)
	}

	var result FeedResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			status := classify(item.State)
			observedAt := now
			if item.UpdatedTimeParsed != nil {
				observedAt = *item.UpdatedTimeParsed
			}

			prev, known := states[item.ID]
			if known && prev.Status == status && prev.WaitMinutes == item.WaitMinutes {
				continue
			}

			// Wait-only movement updates the sample log but is not a status
			// transition, so no audit event is written for it.
			if known && prev.Status == status {
				if err := writeSample(tx, item, status, observedAt); err != nil {
					return err
				}
				if err := writeState(tx, item, status, observedAt); err != nil {
					return err
				}
				result.Changed++
				continue
			}

			var previous model.Status
			if known {
				previous = prev.Status
			}

			if err := writeSample(tx, item, status, observedAt); err != nil {
				return err
			}
			if err := writeTransitionEvent(tx, item.ID, status, previous, "ride-ops feed", observedAt); err != nil {
				return err
			}
			if err := writeState(tx, item, status, observedAt); err != nil {
				return err
			}

			result.Changed++
			if known && status == model.StatusOperating && prev.Status != model.StatusOperating {
				result.Reopened = append(result.Reopened, item.ID)
			}
		}
		return nil
	})
	if err != nil {
		return FeedResult{}, err
	}
	return result, nil
}

// RecordStatusChange writes a staff-initiated transition: one sample, one
// audit event, and a refreshed current-state row, all in one transaction. If
// the attraction's most recent delay event is still open and the new status
// is not Delayed, the delay is resolved at the change time.
func (s *gormStore) RecordStatusChange(ctx context.Context, change StatusChange) (*model.StatusChangeEvent, error) {
	var attraction model.Attraction
	if err := s.db.WithContext(ctx).First(&attraction, change.AttractionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAttraction
		}
		return nil, fmt.Errorf("failed to look up attraction %d: %w", change.AttractionID, err)
	}

	if change.ChangedAt.IsZero() {
		change.ChangedAt = time.Now().UTC()
	}

	var event model.StatusChangeEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var previous model.Status
		var state model.AttractionState
		switch err := tx.First(&state, "attraction_id = ?", change.AttractionID).Error; {
		case err == nil:
			previous = state.Status
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First ever observation for this attraction.
		default:
			return fmt.Errorf("failed to fetch current state for attraction %d: %w", change.AttractionID, err)
		}

		if change.Status != model.StatusDelayed {
			if err := resolveOpenDelay(tx, change.AttractionID, change.ChangedAt); err != nil {
				return err
			}
		}

		sample := model.StatusSample{
			AttractionID:   change.AttractionID,
			AttractionName: attraction.Name,
			Status:         change.Status,
			WaitMinutes:    change.WaitMinutes,
			ObservedAt:     change.ChangedAt,
		}
		if err := tx.Create(&sample).Error; err != nil {
			return fmt.Errorf("failed to append status sample for attraction %d: %w", change.AttractionID, err)
		}

		event = model.StatusChangeEvent{
			ID:             uuid.NewString(),
			AttractionID:   change.AttractionID,
			Status:         change.Status,
			PreviousStatus: previous,
			Reason:         change.Reason,
			Notes:          change.Notes,
			ChangedAt:      change.ChangedAt,
			ChangedBy:      change.ChangedBy,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to append status change event for attraction %d: %w", change.AttractionID, err)
		}

		newState := model.AttractionState{
			AttractionID: change.AttractionID,
			Status:       change.Status,
			WaitMinutes:  change.WaitMinutes,
			ObservedAt:   change.ChangedAt,
		}
		if err := tx.Save(&newState).Error; err != nil {
			return fmt.Errorf("failed to update current state for attraction %d: %w", change.AttractionID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpsertThroughput creates or corrects the guest count for one slot. The row
// key is (attraction, date, slot); corrections overwrite the count, nothing
// is ever deleted.
func (s *gormStore) UpsertThroughput(ctx context.Context, rec *model.ThroughputRecord) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "attraction_id"}, {Name: "log_date"}, {Name: "slot_start"}, {Name: "slot_end"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"guest_count", "updated_at"}),
	}).Create(rec).Error
}

func (s *gormStore) SamplesInRange(ctx context.Context, from, to time.Time) ([]model.StatusSample, error) {
	var samples []model.StatusSample
	err := s.db.WithContext(ctx).
		Where("observed_at >= ? AND observed_at < ?", from, to).
		Find(&samples).Error
	return samples, err
}

func (s *gormStore) EventsInRange(ctx context.Context, from, to time.Time) ([]model.StatusChangeEvent, error) {
	var events []model.StatusChangeEvent
	err := s.db.WithContext(ctx).
		Where("changed_at >= ? AND changed_at < ?", from, to).
		Find(&events).Error
	return events, err
}

func (s *gormStore) ThroughputForDate(ctx context.Context, date string) ([]model.ThroughputRecord, error) {
	var recs []model.ThroughputRecord
	err := s.db.WithContext(ctx).Where("log_date = ?", date).Find(&recs).Error
	return recs, err
}

// Directory returns the id → display name mapping for all known attractions.
func (s *gormStore) Directory(ctx context.Context) (map[int64]string, error) {
	var attractions []model.Attraction
	if err := s.db.WithContext(ctx).Find(&attractions).Error; err != nil {
		return nil, err
	}
	directory := make(map[int64]string, len(attractions))
	for _, a := range attractions {
		directory[a.ID] = a.Name
	}
	return directory, nil
}

func (s *gormStore) CurrentStates(ctx context.Context) (map[int64]model.AttractionState, error) {
	var states []model.AttractionState
	if err := s.db.WithContext(ctx).Find(&states).Error; err != nil {
		return nil, err
	}
	stateMap := make(map[int64]model.AttractionState, len(states))
	for _, st := range states {
		stateMap[st.AttractionID] = st
	}
	return stateMap, nil
}

// --- transaction helpers ---

func writeSample(tx *gorm.DB, item FeedItem, status model.Status, observedAt time.Time) error {
	sample := model.StatusSample{
		AttractionID:   item.ID,
		AttractionName: item.Name,
		Status:         status,
		WaitMinutes:    item.WaitMinutes,
		ObservedAt:     observedAt,
	}
	if err := tx.Create(&sample).Error; err != nil {
		return fmt.Errorf("failed to append status sample for attraction %d: %w", item.ID, err)
	}
	return nil
}

func writeTransitionEvent(tx *gorm.DB, attractionID int64, status, previous model.Status, changedBy string, changedAt time.Time) error {
	if status != model.StatusDelayed {
		if err := resolveOpenDelay(tx, attractionID, changedAt); err != nil {
			return err
		}
	}
	event := model.StatusChangeEvent{
		ID:             uuid.NewString(),
		AttractionID:   attractionID,
		Status:         status,
		PreviousStatus: previous,
		ChangedAt:      changedAt,
		ChangedBy:      changedBy,
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to append status change event for attraction %d: %w", attractionID, err)
	}
	return nil
}

func writeState(tx *gorm.DB, item FeedItem, status model.Status, observedAt time.Time) error {
	state := model.AttractionState{
		AttractionID: item.ID,
		Status:       status,
		WaitMinutes:  item.WaitMinutes,
		ObservedAt:   observedAt,
	}
	if err := tx.Save(&state).Error; err != nil {
		return fmt.Errorf("failed to update current state for attraction %d: %w", item.ID, err)
	}
	return nil
}

// resolveOpenDelay closes the newest still-open delay event, if any. Delay
// events are the only ones that carry a resolution time; resolvedAt is never
// set earlier than the event's own change time.
func resolveOpenDelay(tx *gorm.DB, attractionID int64, resolvedAt time.Time) error {
	var open model.StatusChangeEvent
	err := tx.Where("attraction_id = ? AND status = ? AND resolved_at IS NULL", attractionID, model.StatusDelayed).
		Order("changed_at DESC").
		First(&open).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up open delay for attraction %d: %w", attractionID, err)
	}

	if resolvedAt.Before(open.ChangedAt) {
		resolvedAt = open.ChangedAt
	}
	if err := tx.Model(&open).Update("resolved_at", resolvedAt).Error; err != nil {
		return fmt.Errorf("failed to resolve delay %s: %w", open.ID, err)
	}
	return nil
}
