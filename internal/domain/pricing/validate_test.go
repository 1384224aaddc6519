package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuebook/internal/domain/shared/apperr"
)

func TestValidateRequest(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	valid := Request{
		VenueID:    "venue-1",
		EventDate:  time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		StartTime:  "10:00",
		EndTime:    "13:00",
		GuestCount: 10,
		Items:      []LineItem{{Type: ItemChair, Quantity: 10}},
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(valid, now))
	})

	t.Run("SameDayAllowed", func(t *testing.T) {
		req := valid
		req.EventDate = time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
		assert.NoError(t, ValidateRequest(req, now))
	})

	t.Run("PastDateRejected", func(t *testing.T) {
		req := valid
		req.EventDate = time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
		err := ValidateRequest(req, now)
		require.Error(t, err)
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("AccumulatesAllViolations", func(t *testing.T) {
		err := ValidateRequest(Request{
			StartTime:   "25:00",
			EndTime:     "13:00",
			GuestCount:  0,
			DiscountPct: 150,
		}, now)
		require.Error(t, err)

		var appErr *apperr.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperr.KindBadRequest, appErr.Kind)
		// venue id, event date, window, guests, items, discount
		assert.Len(t, appErr.Violations, 6)
	})

	t.Run("ItemViolationsNamed", func(t *testing.T) {
		req := valid
		req.Items = []LineItem{
			{Type: "SWIMMING_POOL", Quantity: 1},
			{Type: ItemChair, Quantity: 0},
		}
		err := ValidateRequest(req, now)
		require.Error(t, err)

		var appErr *apperr.Error
		require.True(t, errors.As(err, &appErr))
		assert.Len(t, appErr.Violations, 2)
	})

	t.Run("OverlongEvent", func(t *testing.T) {
		req := valid
		req.StartTime = "00:00"
		req.EndTime = "23:59"
		assert.NoError(t, ValidateRequest(req, now), "a day-long window is within the limit")
	})

	t.Run("DiscountBounds", func(t *testing.T) {
		req := valid
		req.DiscountPct = 100
		assert.NoError(t, ValidateRequest(req, now))
		req.DiscountPct = -1
		assert.Error(t, ValidateRequest(req, now))
	})
}
