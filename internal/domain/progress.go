package domain

import "time"

// Severity tags a progress event for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Event is one progress update from a download run. Progress runs 0-100 and
// is monotonically non-decreasing within a run; consumers treat >= 100 as
// the terminal signal. JSON field names match what the progress page reads.
type Event struct {
	Progress float64   `json:"progress"`
	Message  string    `json:"message"`
	Severity Severity  `json:"type"`
	Time     time.Time `json:"time"`
}

// NewEvent stamps an event with the package clock.
func NewEvent(progress float64, message string, severity Severity) Event {
	return Event{
		Progress: progress,
		Message:  message,
		Severity: severity,
		Time:     clock.Now(),
	}
}

// Tracker accumulates completed steps for one download run and converts the
// count into a percentage. A zero-total tracker reports 0 from Fraction;
// callers emit the terminal 100 explicitly so a zero-step run still ends at
// exactly 100 without dividing by zero.
type Tracker struct {
	total     int
	completed int
}

// NewTracker creates a tracker expecting the given number of steps.
func NewTracker(total int) *Tracker {
	return &Tracker{total: total}
}

// Step records one completed step, regardless of its outcome.
func (t *Tracker) Step() {
	t.completed++
}

// Fraction returns the completion percentage in [0, 100].
func (t *Tracker) Fraction() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(t.completed) / float64(t.total) * 100
}

// Completed returns how many steps have finished.
func (t *Tracker) Completed() int { return t.completed }

// Total returns the expected step count.
func (t *Tracker) Total() int { return t.total }
