package model

import "time"

// ThroughputRecord is the guest count an attraction admitted during one fixed
// time slot of an operating day. One row per (attraction, date, slot); staff
// may correct a count later, so the row is upsertable on that key, but the
// board never deletes it.
type ThroughputRecord struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	AttractionID int64  `gorm:"uniqueIndex:idx_throughput_slot;not null"`
	LogDate      string `gorm:"size:10;uniqueIndex:idx_throughput_slot;index;not null"` // "2006-01-02"
	SlotStart    string `gorm:"size:5;uniqueIndex:idx_throughput_slot;not null"`        // "HH:MM"
	SlotEnd      string `gorm:"size:5;uniqueIndex:idx_throughput_slot;not null"`        // "HH:MM"
	GuestCount   int    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
