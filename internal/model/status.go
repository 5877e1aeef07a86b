package model

// Status is the closed set of operational states an attraction can be in.
// The board treats Operating as the only state with a meaningful wait time;
// everything else counts as downtime of one flavour or another.
type Status string

const (
	StatusOperating  Status = "operating"
	StatusClosed     Status = "closed"
	StatusDelayed    Status = "delayed"
	StatusAtCapacity Status = "at_capacity"
)

// Valid reports whether s is one of the recognized statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOperating, StatusClosed, StatusDelayed, StatusAtCapacity:
		return true
	}
	return false
}

// Down reports whether s counts toward an attraction's downtime total.
func (s Status) Down() bool {
	return s == StatusClosed || s == StatusDelayed
}
