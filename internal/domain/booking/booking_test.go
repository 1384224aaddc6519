package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuebook/internal/domain/pricing"
	"venuebook/internal/domain/shared/daterange"
	"venuebook/internal/domain/shared/timewindow"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	dates, err := daterange.New(
		time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	window, err := timewindow.New("10:00", "13:00")
	require.NoError(t, err)
	b, err := New(CreateParams{
		ID:         "bk-1",
		VenueID:    "venue-1",
		CustomerID: "cust-1",
		EventName:  "Launch Party",
		Dates:      dates,
		Window:     window,
		GuestCount: 50,
		Price:      pricing.Breakdown{Subtotal: 5500, TaxAmount: 990, Total: 6490, Deposit: 1947, Balance: 4543},
		CreatedAt:  testNow,
	})
	require.NoError(t, err)
	b.ClearEvents()
	return b
}

func TestNewBooking(t *testing.T) {
	b := newTestBooking(t)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentPending, b.PaymentStatus)
	assert.False(t, b.IsConfirmed)
	assert.False(t, b.IsCancelled)

	t.Run("RecordsCreatedEvent", func(t *testing.T) {
		fresh, err := New(CreateParams{
			ID:         "bk-2",
			VenueID:    "venue-1",
			CustomerID: "cust-1",
			Dates:      b.Dates,
			Window:     b.Window,
			GuestCount: 10,
			CreatedAt:  testNow,
		})
		require.NoError(t, err)
		events := fresh.PendingEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "booking.created", events[0].EventName())
	})

	t.Run("RejectsZeroGuests", func(t *testing.T) {
		_, err := New(CreateParams{ID: "bk-3", CustomerID: "cust-1", Dates: b.Dates, GuestCount: 0, CreatedAt: testNow})
		assert.ErrorIs(t, err, ErrInvalidGuests)
	})

	t.Run("RequiresCustomer", func(t *testing.T) {
		_, err := New(CreateParams{ID: "bk-4", Dates: b.Dates, GuestCount: 5, CreatedAt: testNow})
		assert.Error(t, err)
	})
}

func TestEventStart(t *testing.T) {
	b := newTestBooking(t)
	assert.Equal(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), b.EventStart())
}

func TestConfirm(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Confirm(testNow))
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.True(t, b.IsConfirmed)
	require.NotNil(t, b.ConfirmedAt)

	t.Run("TwiceFails", func(t *testing.T) {
		assert.ErrorIs(t, b.Confirm(testNow), ErrInvalidState)
	})

	t.Run("CancelledCannotConfirm", func(t *testing.T) {
		c := newTestBooking(t)
		require.NoError(t, c.Cancel("change of plans", 0, testNow))
		assert.ErrorIs(t, c.Confirm(testNow), ErrInvalidState)
		assert.Equal(t, StatusCancelled, c.Status, "failed transition must not mutate")
	})
}

func TestCheckInOut(t *testing.T) {
	t.Run("FullFlow", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Confirm(testNow))
		require.NoError(t, b.CheckIn(testNow))
		assert.Equal(t, StatusCheckedIn, b.Status)
		require.NoError(t, b.CheckOut(testNow))
		assert.Equal(t, StatusCompleted, b.Status)
	})

	t.Run("CheckInRequiresConfirmation", func(t *testing.T) {
		b := newTestBooking(t)
		assert.ErrorIs(t, b.CheckIn(testNow), ErrInvalidState)
		assert.Equal(t, StatusPending, b.Status)
	})

	t.Run("DoubleCheckIn", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Confirm(testNow))
		require.NoError(t, b.CheckIn(testNow))
		assert.ErrorIs(t, b.CheckIn(testNow), ErrInvalidState)
	})

	t.Run("CheckOutRequiresCheckIn", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Confirm(testNow))
		assert.ErrorIs(t, b.CheckOut(testNow), ErrInvalidState)
	})
}

func TestCancel(t *testing.T) {
	t.Run("WithRefund", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Cancel("venue flooded", 3245, testNow))
		assert.Equal(t, StatusCancelled, b.Status)
		assert.True(t, b.IsCancelled)
		assert.Equal(t, PaymentRefunded, b.PaymentStatus)
		assert.EqualValues(t, 3245, b.RefundAmount)
		assert.Equal(t, "venue flooded", b.CancellationReason)
		require.NotNil(t, b.CancelledAt)
	})

	t.Run("ZeroRefundKeepsPaymentPending", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Cancel("late cancellation", 0, testNow))
		assert.Equal(t, PaymentPending, b.PaymentStatus)
	})

	t.Run("ReasonRequired", func(t *testing.T) {
		b := newTestBooking(t)
		assert.ErrorIs(t, b.Cancel("   ", 0, testNow), ErrReasonRequired)
		assert.Equal(t, StatusPending, b.Status)
	})

	t.Run("TwiceFails", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Cancel("first", 0, testNow))
		assert.ErrorIs(t, b.Cancel("second", 0, testNow), ErrInvalidState)
	})

	t.Run("CompletedCannotCancel", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Confirm(testNow))
		require.NoError(t, b.CheckIn(testNow))
		require.NoError(t, b.CheckOut(testNow))
		assert.ErrorIs(t, b.Cancel("too late", 0, testNow), ErrInvalidState)
	})
}

func TestMarkNoShow(t *testing.T) {
	t.Run("ConfirmedBecomesNoShow", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Confirm(testNow))
		require.NoError(t, b.MarkNoShow(testNow))
		assert.Equal(t, StatusNoShow, b.Status)
	})

	t.Run("PendingCannotNoShow", func(t *testing.T) {
		b := newTestBooking(t)
		assert.ErrorIs(t, b.MarkNoShow(testNow), ErrInvalidState)
	})

	t.Run("CheckedInCannotNoShow", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Confirm(testNow))
		require.NoError(t, b.CheckIn(testNow))
		assert.ErrorIs(t, b.MarkNoShow(testNow), ErrInvalidState)
	})
}

func TestSlotChanged(t *testing.T) {
	b := newTestBooking(t)

	t.Run("NoChange", func(t *testing.T) {
		name := "renamed"
		assert.False(t, b.SlotChanged(UpdateParams{EventName: &name}))
		sameDates := b.Dates
		sameWindow := b.Window
		assert.False(t, b.SlotChanged(UpdateParams{Dates: &sameDates, Window: &sameWindow}))
	})

	t.Run("DateMoved", func(t *testing.T) {
		moved, err := daterange.New(
			time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.True(t, b.SlotChanged(UpdateParams{Dates: &moved}))
	})

	t.Run("WindowMoved", func(t *testing.T) {
		w, err := timewindow.New("14:00", "18:00")
		require.NoError(t, err)
		assert.True(t, b.SlotChanged(UpdateParams{Window: &w}))
	})
}

func TestApplyUpdate(t *testing.T) {
	t.Run("RepricesAndMutates", func(t *testing.T) {
		b := newTestBooking(t)
		name := "Rescheduled Gala"
		guests := 80
		price := pricing.Breakdown{Subtotal: 9000, TaxAmount: 1620, Total: 10620, Deposit: 3186, Balance: 7434}
		require.NoError(t, b.ApplyUpdate(UpdateParams{EventName: &name, GuestCount: &guests}, price, testNow))
		assert.Equal(t, "Rescheduled Gala", b.EventName)
		assert.Equal(t, 80, b.GuestCount)
		assert.EqualValues(t, 10620, b.TotalAmount)
	})

	t.Run("CancelledRejectsUpdate", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Cancel("gone", 0, testNow))
		name := "x"
		assert.ErrorIs(t, b.ApplyUpdate(UpdateParams{EventName: &name}, pricing.Breakdown{}, testNow), ErrInvalidState)
	})

	t.Run("ZeroGuestsRejected", func(t *testing.T) {
		b := newTestBooking(t)
		guests := 0
		assert.ErrorIs(t, b.ApplyUpdate(UpdateParams{GuestCount: &guests}, pricing.Breakdown{}, testNow), ErrInvalidGuests)
	})
}
