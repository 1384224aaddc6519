package timewindow

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrBadClock   = errors.New("timewindow: time must be HH:MM")
	ErrInverted   = errors.New("timewindow: start must be before end")
	ErrOutOfRange = errors.New("timewindow: clock out of range")
)

// Window is a half-open [Start, End) time-of-day interval, stored as
// minutes since midnight.
type Window struct {
	Start int
	End   int
}

// ParseClock parses an HH:MM string into minutes since midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, ErrBadClock
	}
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrBadClock
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrOutOfRange
	}
	return h*60 + m, nil
}

// New builds a window from HH:MM boundaries enforcing start < end.
func New(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	if s >= e {
		return Window{}, ErrInverted
	}
	return Window{Start: s, End: e}, nil
}

// Overlaps reports half-open interval overlap: start1 < end2 && start2 < end1.
// Back-to-back windows do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start < other.End && other.Start < w.End
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return time.Duration(w.End-w.Start) * time.Minute
}

// Hours returns the window length in fractional hours.
func (w Window) Hours() float64 {
	return float64(w.End-w.Start) / 60
}

// StartString renders the start boundary as HH:MM.
func (w Window) StartString() string {
	return clockString(w.Start)
}

// EndString renders the end boundary as HH:MM.
func (w Window) EndString() string {
	return clockString(w.End)
}

func clockString(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// At anchors the window start on the given calendar date.
func (w Window) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), w.Start/60, w.Start%60, 0, 0, time.UTC)
}
