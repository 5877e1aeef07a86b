package model

import "time"

// StatusSample is one append-only status/wait observation for an attraction.
// Samples are written only when the observed state changes, never on a fixed
// cadence, so the log is sparse and irregular. Rows are immutable once
// created; ordering is by ObservedAt, not by insertion.
type StatusSample struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	AttractionID   int64     `gorm:"index:idx_sample_attraction_time;not null"`
	AttractionName string    `gorm:"size:256"`
	Status         Status    `gorm:"size:16;not null"`
	WaitMinutes    int       `gorm:"not null"`
	ObservedAt     time.Time `gorm:"index:idx_sample_attraction_time;index;not null"`
}
