package quotation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuebook/internal/app/availability"
	bookingapp "venuebook/internal/app/booking"
	domainbooking "venuebook/internal/domain/booking"
	"venuebook/internal/domain/pricing"
	"venuebook/internal/domain/shared/apperr"
	domainquotation "venuebook/internal/domain/quotation"
	domainvenue "venuebook/internal/domain/venue"
	"venuebook/internal/infra/storage/memory"
)

type testEnv struct {
	svc        *Service
	bookingSvc *bookingapp.Service
	quotations *memory.QuotationRepository
	bookings   *memory.BookingRepository
	now        time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		quotations: memory.NewQuotationRepository(),
		bookings:   memory.NewBookingRepository(),
		now:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	venues := memory.NewVenueRepository()
	venues.Put(&domainvenue.Venue{
		ID:        "venue-1",
		Name:      "Grand Hall",
		Active:    true,
		Available: true,
		Rates:     domainvenue.RateCard{BaseRate: 5000},
	})
	engine := pricing.NewEngine(pricing.DefaultRates())
	clock := func() time.Time { return env.now }
	env.bookingSvc = &bookingapp.Service{
		Bookings: env.bookings,
		Venues:   venues,
		Availability: &availability.Checker{
			Venues:   venues,
			Bookings: env.bookings,
			Blocks:   memory.NewBlockRepository(),
		},
		Cost:      engine,
		Locks:     memory.NewLocker(),
		Cache:     memory.NewCache(),
		Publisher: memory.NewPublisher(),
		CacheTTL:  time.Minute,
		Clock:     clock,
	}
	env.svc = &Service{
		Quotations: env.quotations,
		Venues:     venues,
		Cost:       engine,
		Bookings:   env.bookingSvc,
		Atomic:     memory.Atomic{},
		Cache:      memory.NewCache(),
		Publisher:  memory.NewPublisher(),
		CacheTTL:   time.Minute,
		Clock:      clock,
	}
	return env
}

func validCreateParams() CreateParams {
	return CreateParams{
		VenueID:    "venue-1",
		CustomerID: "cust-1",
		EventName:  "Corporate Offsite",
		EventType:  "corporate",
		StartDate:  time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		StartTime:  "10:00",
		EndTime:    "13:00",
		GuestCount: 10,
		Items:      []pricing.LineItem{{Type: pricing.ItemChair, Quantity: 10}},
	}
}

func TestCreateQuotation(t *testing.T) {
	ctx := context.Background()

	t.Run("DraftWithNumber", func(t *testing.T) {
		env := newTestEnv(t)
		q, err := env.svc.Create(ctx, validCreateParams())
		require.NoError(t, err)
		assert.Equal(t, domainquotation.StatusDraft, q.Status)
		assert.True(t, strings.HasPrefix(q.Number, "QTN-"), q.Number)
		assert.EqualValues(t, 6490, q.TotalAmount)
		assert.Equal(t, env.now.Add(domainquotation.DefaultValidity), q.ValidUntil)
	})

	t.Run("NoAvailabilityHold", func(t *testing.T) {
		// Quoting does not reserve the slot: two quotations for the same
		// window coexist until one is accepted.
		env := newTestEnv(t)
		_, err := env.svc.Create(ctx, validCreateParams())
		require.NoError(t, err)
		_, err = env.svc.Create(ctx, validCreateParams())
		assert.NoError(t, err)
	})

	t.Run("Invalid", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Create(ctx, CreateParams{})
		require.Error(t, err)
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})
}

func TestAcceptQuotation(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesExactlyOneBooking", func(t *testing.T) {
		env := newTestEnv(t)
		q, err := env.svc.Create(ctx, validCreateParams())
		require.NoError(t, err)
		_, err = env.svc.Send(ctx, q.ID)
		require.NoError(t, err)

		accepted, b, err := env.svc.Accept(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, domainquotation.StatusAccepted, accepted.Status)
		require.NotNil(t, b)
		assert.Equal(t, domainbooking.StatusPending, b.Status)
		assert.Equal(t, q.VenueID, b.VenueID)
		assert.Equal(t, q.TotalAmount, b.TotalAmount)

		items, total, err := env.bookings.List(ctx, domainbooking.Filter{VenueID: "venue-1", Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, items, 1)
	})

	t.Run("DraftCannotAccept", func(t *testing.T) {
		env := newTestEnv(t)
		q, err := env.svc.Create(ctx, validCreateParams())
		require.NoError(t, err)

		_, _, err = env.svc.Accept(ctx, q.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

		_, total, err := env.bookings.List(ctx, domainbooking.Filter{Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total, "no booking on a refused accept")
	})

	t.Run("SlotTakenLeavesQuotationSent", func(t *testing.T) {
		env := newTestEnv(t)
		q, err := env.svc.Create(ctx, validCreateParams())
		require.NoError(t, err)
		_, err = env.svc.Send(ctx, q.ID)
		require.NoError(t, err)

		// Someone books the slot directly before the customer accepts.
		_, err = env.bookingSvc.Create(ctx, bookingapp.CreateParams{
			VenueID:    "venue-1",
			CustomerID: "cust-2",
			EventName:  "Rival Event",
			StartDate:  time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
			StartTime:  "11:00",
			EndTime:    "14:00",
			GuestCount: 5,
			Items:      []pricing.LineItem{{Type: pricing.ItemChair, Quantity: 5}},
		})
		require.NoError(t, err)

		_, _, err = env.svc.Accept(ctx, q.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

		reloaded, err := env.quotations.ByID(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, domainquotation.StatusSent, reloaded.Status, "quotation stays acceptable elsewhere")
	})

	t.Run("TwiceFails", func(t *testing.T) {
		env := newTestEnv(t)
		q, err := env.svc.Create(ctx, validCreateParams())
		require.NoError(t, err)
		_, err = env.svc.Send(ctx, q.ID)
		require.NoError(t, err)
		_, _, err = env.svc.Accept(ctx, q.ID)
		require.NoError(t, err)

		_, _, err = env.svc.Accept(ctx, q.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

		_, total, err := env.bookings.List(ctx, domainbooking.Filter{Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total, "still exactly one booking")
	})
}

func TestRejectAndExpire(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectSent", func(t *testing.T) {
		env := newTestEnv(t)
		q, err := env.svc.Create(ctx, validCreateParams())
		require.NoError(t, err)
		_, err = env.svc.Send(ctx, q.ID)
		require.NoError(t, err)
		rejected, err := env.svc.Reject(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, domainquotation.StatusRejected, rejected.Status)
	})

	t.Run("ExpireDueSweep", func(t *testing.T) {
		env := newTestEnv(t)
		params := validCreateParams()
		params.ValidUntil = env.now.Add(time.Hour)
		q, err := env.svc.Create(ctx, params)
		require.NoError(t, err)
		_, err = env.svc.Send(ctx, q.ID)
		require.NoError(t, err)

		env.now = env.now.Add(2 * time.Hour)
		expired, err := env.svc.ExpireDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		reloaded, err := env.quotations.ByID(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, domainquotation.StatusExpired, reloaded.Status)
	})

	t.Run("SweepSkipsLiveQuotations", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Create(ctx, validCreateParams())
		require.NoError(t, err)
		expired, err := env.svc.ExpireDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, expired)
	})
}

func TestUpdateQuotation(t *testing.T) {
	ctx := context.Background()

	t.Run("ItemsReplacedAndRepriced", func(t *testing.T) {
		env := newTestEnv(t)
		q, err := env.svc.Create(ctx, validCreateParams())
		require.NoError(t, err)

		updated, err := env.svc.Update(ctx, q.ID, UpdateParams{
			Items: []pricing.LineItem{{Type: pricing.ItemCatering, Quantity: 10}},
		})
		require.NoError(t, err)
		require.Len(t, updated.Items, 1)
		assert.Equal(t, pricing.ItemCatering, updated.Items[0].Type)
		// 5000 base + 10 catering at 500, taxed at 18%.
		assert.EqualValues(t, 11800, updated.TotalAmount)
	})

	t.Run("AcceptedRejectsUpdate", func(t *testing.T) {
		env := newTestEnv(t)
		q, err := env.svc.Create(ctx, validCreateParams())
		require.NoError(t, err)
		_, err = env.svc.Send(ctx, q.ID)
		require.NoError(t, err)
		_, _, err = env.svc.Accept(ctx, q.ID)
		require.NoError(t, err)

		name := "renamed"
		_, err = env.svc.Update(ctx, q.ID, UpdateParams{EventName: &name})
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestGetQuotation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	q, err := env.svc.Create(ctx, validCreateParams())
	require.NoError(t, err)

	got, err := env.svc.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Number, got.Number)

	_, err = env.svc.Get(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
