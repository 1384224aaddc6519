package booking

import (
	"time"

	"venuebook/internal/domain/shared/money"
)

// Refund tiers by hours remaining until the event starts.
const (
	fullRefundHours    = 72
	halfRefundHours    = 24
	quarterRefundHours = 12
)

// CalculateRefund maps the paid amount and the time remaining before the
// event to the refund owed on cancellation. It is pure: no I/O, no clock
// access. Past events refund nothing. The total is accepted alongside the
// paid amount because paid-amount tracking lives with the payments
// collaborator; until it reports partial payments the two coincide.
func CalculateRefund(total, paid money.Amount, eventStart, now time.Time) money.Amount {
	hours := eventStart.Sub(now).Hours()
	switch {
	case hours < 0:
		return 0
	case hours >= fullRefundHours:
		return money.Percent(paid, 90)
	case hours >= halfRefundHours:
		return money.Percent(paid, 50)
	case hours >= quarterRefundHours:
		return money.Percent(paid, 25)
	default:
		return 0
	}
}
