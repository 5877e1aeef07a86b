package store

import (
	"time"

	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
)

// FeedItem represents a single attraction record from the upstream ride-ops
// feed. State is the feed's raw numeric code; classification into a board
// status happens in the feed service, which knows the configured code lists.
type FeedItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Zone        string  `json:"zone"`
	State       int     `json:"state"`
	WaitMinutes int     `json:"waitMinutes"`
	UpdatedTime *string `json:"updatedTime"`

	// UpdatedTimeParsed is filled by the feed service after timezone-aware
	// parsing; nil when the feed carried no usable timestamp.
	UpdatedTimeParsed *time.Time `json:"-"`
}

// FeedResult summarizes what one feed snapshot changed: how many attractions
// recorded new observations and which ones came back to operating.
type FeedResult struct {
	Changed  int
	Reopened []int64
}

// StatusChange is a staff-initiated status transition to be recorded.
type StatusChange struct {
	AttractionID int64
	Status       model.Status
	WaitMinutes  int
	Reason       string
	Notes        string
	ChangedBy    string
	ChangedAt    time.Time
}
