package model

import "time"

// Attraction represents one ride, maze or show on the park board.
type Attraction struct {
	ID           int64  `gorm:"primaryKey"` // Upstream ID
	Name         string `gorm:"uniqueIndex;size:256;not null"`
	Zone         string `gorm:"size:128"`
	DisplayOrder int
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// AttractionState is the current-state hot row for an attraction, kept in
// sync by the feed poller and the staff status endpoint. The append-only
// sample log is the source of truth for history; this table only answers
// "what is it doing right now".
type AttractionState struct {
	AttractionID int64     `gorm:"primaryKey"`
	Status       Status    `gorm:"size:16;not null"`
	WaitMinutes  int       `gorm:"not null"`
	ObservedAt   time.Time `gorm:"not null"`
}
