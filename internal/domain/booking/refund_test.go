package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"venuebook/internal/domain/shared/money"
)

func TestCalculateRefund(t *testing.T) {
	eventStart := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	paid := money.Amount(6490)

	refundAt := func(hoursBefore float64) money.Amount {
		now := eventStart.Add(-time.Duration(hoursBefore * float64(time.Hour)))
		return CalculateRefund(paid, paid, eventStart, now)
	}

	t.Run("NinetyPercentTier", func(t *testing.T) {
		assert.Equal(t, money.Amount(5841), refundAt(72), "exactly 72h qualifies")
		assert.Equal(t, money.Amount(5841), refundAt(100))
	})

	t.Run("FiftyPercentTier", func(t *testing.T) {
		assert.Equal(t, money.Amount(3245), refundAt(24), "exactly 24h qualifies")
		assert.Equal(t, money.Amount(3245), refundAt(30))
		assert.Equal(t, money.Amount(3245), refundAt(71.9))
	})

	t.Run("QuarterTier", func(t *testing.T) {
		assert.Equal(t, money.Amount(1623), refundAt(12), "exactly 12h qualifies")
		assert.Equal(t, money.Amount(1623), refundAt(23.9))
	})

	t.Run("NoRefundUnderTwelveHours", func(t *testing.T) {
		assert.Equal(t, money.Amount(0), refundAt(11.9))
		assert.Equal(t, money.Amount(0), refundAt(0))
	})

	t.Run("EventAlreadyStarted", func(t *testing.T) {
		now := eventStart.Add(2 * time.Hour)
		assert.Equal(t, money.Amount(0), CalculateRefund(paid, paid, eventStart, now))
	})

	t.Run("RefundTracksPaidAmount", func(t *testing.T) {
		now := eventStart.Add(-100 * time.Hour)
		assert.Equal(t, money.Amount(900), CalculateRefund(paid, 1000, eventStart, now))
	})
}
