package model

import "time"

// StatusChangeEvent is the structured audit record written alongside every
// status transition. ResolvedAt is set only on delay events once the delay is
// cleared; while it is nil the delay counts as still open.
type StatusChangeEvent struct {
	ID             string    `gorm:"primaryKey;size:36"`
	AttractionID   int64     `gorm:"index:idx_change_attraction_time;not null"`
	Status         Status    `gorm:"size:16;not null"`
	PreviousStatus Status    `gorm:"size:16"`
	Reason         string    `gorm:"size:256"`
	Notes          string    `gorm:"size:1024"`
	ChangedAt      time.Time `gorm:"index:idx_change_attraction_time;index;not null"`
	ChangedBy      string    `gorm:"size:128"`
	ResolvedAt     *time.Time
}
