package parse

import (
	"fmt"
	"regexp"
	"strconv"
)

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseError reports a clock string that does not look like "HH:MM" or whose
// fields are out of range. Callers decide whether to skip the record or abort;
// this package never substitutes a value.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid clock value %q, want HH:MM", e.Input)
}

// Clock converts a wall-clock string like "18:15" into minutes since
// midnight. Hours run 0-23 and minutes 0-59; "24:00" is not a valid slot
// boundary on the board.
func Clock(s string) (int, error) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, &ParseError{Input: s}
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return 0, &ParseError{Input: s}
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return 0, &ParseError{Input: s}
	}

	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight back into "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
