package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "venuebook/internal/domain/booking"
	"venuebook/internal/domain/pricing"
	domainquotation "venuebook/internal/domain/quotation"
	"venuebook/internal/domain/shared/daterange"
	"venuebook/internal/domain/shared/money"
	"venuebook/internal/domain/shared/timewindow"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func makeBooking(t *testing.T, id string, day time.Time, total int64) *domainbooking.Booking {
	t.Helper()
	dates, err := daterange.New(day, day)
	require.NoError(t, err)
	window, err := timewindow.New("10:00", "13:00")
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		VenueID:    "venue-1",
		CustomerID: "cust-1",
		Dates:      dates,
		Window:     window,
		GuestCount: 10,
		Price:      pricing.Breakdown{Total: money.Amount(total)},
		CreatedAt:  testNow,
	})
	require.NoError(t, err)
	return b
}

func TestBookingRepositorySave(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	t.Run("RoundTrip", func(t *testing.T) {
		b := makeBooking(t, "bk-1", day, 6490)
		require.NoError(t, repo.Save(ctx, b))

		got, err := repo.ByID(ctx, "bk-1")
		require.NoError(t, err)
		assert.Equal(t, b.TotalAmount, got.TotalAmount)
		assert.EqualValues(t, 1, got.Version)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.ByID(ctx, "missing")
		assert.ErrorIs(t, err, domainbooking.ErrNotFound)
	})

	t.Run("StaleVersionConflicts", func(t *testing.T) {
		b := makeBooking(t, "bk-2", day, 6490)
		require.NoError(t, repo.Save(ctx, b))

		fresh, err := repo.ByID(ctx, "bk-2")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, fresh))

		assert.ErrorIs(t, repo.Save(ctx, b), domainbooking.ErrConflict)
	})

	t.Run("ClonesOnRead", func(t *testing.T) {
		b := makeBooking(t, "bk-3", day, 6490)
		require.NoError(t, repo.Save(ctx, b))
		got, err := repo.ByID(ctx, "bk-3")
		require.NoError(t, err)
		got.EventName = "mutated"

		again, err := repo.ByID(ctx, "bk-3")
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.EventName)
	})
}

func TestBookingRepositoryQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	cheap := makeBooking(t, "bk-cheap", day, 1000)
	dear := makeBooking(t, "bk-dear", day.AddDate(0, 0, 1), 9000)
	cancelled := makeBooking(t, "bk-gone", day, 500)
	require.NoError(t, cancelled.Cancel("off", 0, testNow))
	for _, b := range []*domainbooking.Booking{cheap, dear, cancelled} {
		require.NoError(t, repo.Save(ctx, b))
	}

	t.Run("ActiveForVenueDateSkipsCancelled", func(t *testing.T) {
		active, err := repo.ActiveForVenueDate(ctx, "venue-1", day)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, domainbooking.BookingID("bk-cheap"), active[0].ID)
	})

	t.Run("ListByStatus", func(t *testing.T) {
		items, total, err := repo.List(ctx, domainbooking.Filter{Status: domainbooking.StatusCancelled, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, domainbooking.BookingID("bk-gone"), items[0].ID)
	})

	t.Run("SortTotalDesc", func(t *testing.T) {
		items, _, err := repo.List(ctx, domainbooking.Filter{Sort: domainbooking.SortTotalDesc, Limit: 10})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, domainbooking.BookingID("bk-dear"), items[0].ID)
	})

	t.Run("DateRangeFilter", func(t *testing.T) {
		items, _, err := repo.List(ctx, domainbooking.Filter{From: day.AddDate(0, 0, 1), Limit: 10})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, domainbooking.BookingID("bk-dear"), items[0].ID)
	})

	t.Run("Stats", func(t *testing.T) {
		stats, err := repo.Stats(ctx, domainbooking.Filter{VenueID: "venue-1"})
		require.NoError(t, err)
		assert.EqualValues(t, 3, stats.Total)
		assert.EqualValues(t, 10500, stats.RevenueTotal)
		assert.EqualValues(t, 2, stats.ByStatus[domainbooking.StatusPending])
		assert.EqualValues(t, 1, stats.ByStatus[domainbooking.StatusCancelled])
		assert.InDelta(t, 3500, stats.AverageTotal, 0.001)
	})
}

func TestQuotationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewQuotationRepository()
	dates, err := daterange.New(
		time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	newQuotation := func(t *testing.T, id string, validUntil time.Time) *domainquotation.Quotation {
		t.Helper()
		q, err := domainquotation.New(domainquotation.CreateParams{
			ID:         domainquotation.QuotationID(id),
			Number:     domainquotation.NewNumber(testNow),
			VenueID:    "venue-1",
			CustomerID: "cust-1",
			Dates:      dates,
			GuestCount: 10,
			ValidUntil: validUntil,
			CreatedAt:  testNow,
		})
		require.NoError(t, err)
		return q
	}

	t.Run("SaveAndConflict", func(t *testing.T) {
		q := newQuotation(t, "qt-1", testNow.Add(time.Hour))
		require.NoError(t, repo.Save(ctx, q))

		stale := newQuotation(t, "qt-1", testNow.Add(time.Hour))
		stale.Version = 5
		assert.ErrorIs(t, repo.Save(ctx, stale), domainquotation.ErrConflict)
	})

	t.Run("DueForExpiry", func(t *testing.T) {
		lapsing := newQuotation(t, "qt-due", testNow.Add(time.Hour))
		require.NoError(t, lapsing.Send(testNow))
		require.NoError(t, repo.Save(ctx, lapsing))

		accepted := newQuotation(t, "qt-accepted", testNow.Add(time.Hour))
		require.NoError(t, accepted.Send(testNow))
		require.NoError(t, accepted.Accept(testNow))
		require.NoError(t, repo.Save(ctx, accepted))

		alive := newQuotation(t, "qt-alive", testNow.Add(48*time.Hour))
		require.NoError(t, repo.Save(ctx, alive))

		due, err := repo.DueForExpiry(ctx, testNow.Add(2*time.Hour))
		require.NoError(t, err)
		ids := make([]domainquotation.QuotationID, 0, len(due))
		for _, q := range due {
			ids = append(ids, q.ID)
		}
		assert.Contains(t, ids, domainquotation.QuotationID("qt-due"))
		assert.NotContains(t, ids, domainquotation.QuotationID("qt-accepted"))
		assert.NotContains(t, ids, domainquotation.QuotationID("qt-alive"))
	})

	t.Run("ListByCustomer", func(t *testing.T) {
		items, total, err := repo.List(ctx, domainquotation.Filter{CustomerID: "cust-1", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int(total), len(items))
		assert.NotEmpty(t, items)
	})
}
