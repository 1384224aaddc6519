package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		minutes, err := ParseClock("09:30")
		require.NoError(t, err)
		assert.Equal(t, 9*60+30, minutes)
	})

	t.Run("Midnight", func(t *testing.T) {
		minutes, err := ParseClock("00:00")
		require.NoError(t, err)
		assert.Equal(t, 0, minutes)
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, raw := range []string{"", "9:30", "0930", "ab:cd", "12:345"} {
			_, err := ParseClock(raw)
			assert.Error(t, err, "input %q", raw)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := ParseClock("24:00")
		assert.ErrorIs(t, err, ErrOutOfRange)
		_, err = ParseClock("12:60")
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestNew(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		w, err := New("10:00", "13:00")
		require.NoError(t, err)
		assert.Equal(t, 600, w.Start)
		assert.Equal(t, 780, w.End)
		assert.Equal(t, 3.0, w.Hours())
	})

	t.Run("Inverted", func(t *testing.T) {
		_, err := New("14:00", "10:00")
		assert.ErrorIs(t, err, ErrInverted)
	})

	t.Run("ZeroLength", func(t *testing.T) {
		_, err := New("10:00", "10:00")
		assert.ErrorIs(t, err, ErrInverted)
	})
}

func TestOverlaps(t *testing.T) {
	morning := Window{Start: 9 * 60, End: 12 * 60}

	t.Run("Overlapping", func(t *testing.T) {
		assert.True(t, morning.Overlaps(Window{Start: 11 * 60, End: 14 * 60}))
		assert.True(t, morning.Overlaps(Window{Start: 8 * 60, End: 10 * 60}))
		assert.True(t, morning.Overlaps(Window{Start: 10 * 60, End: 11 * 60}))
	})

	t.Run("BackToBack", func(t *testing.T) {
		assert.False(t, morning.Overlaps(Window{Start: 12 * 60, End: 15 * 60}))
		assert.False(t, morning.Overlaps(Window{Start: 6 * 60, End: 9 * 60}))
	})

	t.Run("Disjoint", func(t *testing.T) {
		assert.False(t, morning.Overlaps(Window{Start: 14 * 60, End: 18 * 60}))
	})
}

func TestStrings(t *testing.T) {
	w, err := New("08:05", "17:45")
	require.NoError(t, err)
	assert.Equal(t, "08:05", w.StartString())
	assert.Equal(t, "17:45", w.EndString())
}

func TestAt(t *testing.T) {
	w, err := New("10:30", "12:00")
	require.NoError(t, err)
	date := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC), w.At(date))
}
