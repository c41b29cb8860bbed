package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Fraction(t *testing.T) {
	tr := NewTracker(4)
	assert.Equal(t, 0.0, tr.Fraction())

	tr.Step()
	assert.Equal(t, 25.0, tr.Fraction())

	tr.Step()
	tr.Step()
	tr.Step()
	assert.Equal(t, 100.0, tr.Fraction())
	assert.Equal(t, 4, tr.Completed())
	assert.Equal(t, 4, tr.Total())
}

func TestTracker_ZeroTotal(t *testing.T) {
	tr := NewTracker(0)
	assert.Equal(t, 0.0, tr.Fraction())

	// Stepping a zero-total tracker must not panic or divide by zero.
	tr.Step()
	assert.Equal(t, 0.0, tr.Fraction())
}

func TestTracker_FractionIsMonotonic(t *testing.T) {
	tr := NewTracker(7)
	prev := tr.Fraction()
	for i := 0; i < 7; i++ {
		tr.Step()
		cur := tr.Fraction()
		assert.Greater(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, 100.0, prev)
}

func TestNewEvent_StampsWithClock(t *testing.T) {
	fixed := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(clockwork.NewRealClock())

	ev := NewEvent(50, "halfway", SeverityInfo)
	assert.Equal(t, fixed, ev.Time)
	assert.Equal(t, 50.0, ev.Progress)
	assert.Equal(t, SeverityInfo, ev.Severity)
}

func TestEvent_JSONFieldNames(t *testing.T) {
	ev := NewEvent(100, "--- FINISHED ---", SeveritySuccess)

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "progress")
	assert.Contains(t, decoded, "message")
	assert.Equal(t, "success", decoded["type"])
}
