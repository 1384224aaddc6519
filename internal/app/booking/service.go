package booking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"venuebook/internal/app/availability"
	"venuebook/internal/app/ports"
	domainbooking "venuebook/internal/domain/booking"
	"venuebook/internal/domain/pricing"
	"venuebook/internal/domain/shared/apperr"
	"venuebook/internal/domain/shared/daterange"
	"venuebook/internal/domain/shared/timewindow"
	domainvenue "venuebook/internal/domain/venue"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service orchestrates the booking lifecycle: creation behind the
// availability check, status transitions, repricing updates and the
// read-side listing/statistics queries.
type Service struct {
	Bookings     domainbooking.Repository
	Venues       domainvenue.Repository
	Availability *availability.Checker
	Cost         *pricing.Engine
	Locks        ports.Locker
	Cache        ports.Cache
	Publisher    ports.Publisher
	CacheTTL     time.Duration
	Logger       *slog.Logger
	Clock        func() time.Time
}

type CreateParams struct {
	VenueID     domainvenue.VenueID
	CustomerID  string
	EventName   string
	EventType   string
	StartDate   time.Time
	EndDate     time.Time
	StartTime   string
	EndTime     string
	GuestCount  int
	Items       []pricing.LineItem
	DiscountPct float64
}

// Create validates the request, checks availability under a per-venue lock
// and persists a PENDING booking with the computed totals.
func (s *Service) Create(ctx context.Context, params CreateParams) (*domainbooking.Booking, error) {
	now := s.now()
	if err := pricing.ValidateRequest(pricing.Request{
		VenueID:     string(params.VenueID),
		EventDate:   params.StartDate,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		GuestCount:  params.GuestCount,
		Items:       params.Items,
		DiscountPct: params.DiscountPct,
	}, now); err != nil {
		return nil, err
	}
	window, err := timewindow.New(params.StartTime, params.EndTime)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "invalid time window", err)
	}
	endDate := params.EndDate
	if endDate.IsZero() {
		endDate = params.StartDate
	}
	dates, err := daterange.New(params.StartDate, endDate)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "invalid date range", err)
	}

	v, err := s.Venues.ByID(ctx, params.VenueID)
	if err != nil {
		return nil, s.repoErr("load venue", err)
	}

	unlock, err := s.lockVenue(ctx, params.VenueID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	free, err := s.Availability.IsAvailable(ctx, availability.Query{
		VenueID: params.VenueID,
		Dates:   dates,
		Window:  window,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "availability check failed", err)
	}
	if !free {
		return nil, apperr.New(apperr.KindConflict, "venue is not available for the requested window")
	}

	price := s.Cost.Calculate(pricing.Input{
		BaseRate:    v.Rates.BaseRate,
		EventDate:   dates.Start,
		Window:      window,
		GuestCount:  params.GuestCount,
		Items:       params.Items,
		DiscountPct: params.DiscountPct,
	})

	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:          domainbooking.BookingID(uuid.NewString()),
		VenueID:     params.VenueID,
		CustomerID:  params.CustomerID,
		EventName:   params.EventName,
		EventType:   params.EventType,
		Dates:       dates,
		Window:      window,
		GuestCount:  params.GuestCount,
		DiscountPct: params.DiscountPct,
		Price:       price,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "invalid booking", err)
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, s.repoErr("save booking", err)
	}
	s.afterMutation(ctx, b)
	return b, nil
}

func (s *Service) Confirm(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return s.transition(ctx, id, "confirm booking", func(b *domainbooking.Booking, now time.Time) error {
		return b.Confirm(now)
	})
}

func (s *Service) CheckIn(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return s.transition(ctx, id, "check in booking", func(b *domainbooking.Booking, now time.Time) error {
		return b.CheckIn(now)
	})
}

func (s *Service) CheckOut(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return s.transition(ctx, id, "check out booking", func(b *domainbooking.Booking, now time.Time) error {
		return b.CheckOut(now)
	})
}

func (s *Service) MarkNoShow(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return s.transition(ctx, id, "mark no-show", func(b *domainbooking.Booking, now time.Time) error {
		return b.MarkNoShow(now)
	})
}

// Cancel computes the refund from the time remaining before the event,
// persists it on the booking and returns the cancelled aggregate.
func (s *Service) Cancel(ctx context.Context, id domainbooking.BookingID, reason string) (*domainbooking.Booking, error) {
	return s.transition(ctx, id, "cancel booking", func(b *domainbooking.Booking, now time.Time) error {
		refund := domainbooking.CalculateRefund(b.TotalAmount, b.TotalAmount, b.EventStart(), now)
		return b.Cancel(reason, refund, now)
	})
}

type UpdateParams struct {
	EventName   *string
	EventType   *string
	StartDate   *time.Time
	EndDate     *time.Time
	StartTime   *string
	EndTime     *string
	GuestCount  *int
	Items       []pricing.LineItem
	DiscountPct *float64
}

// Update mutates event fields on a live booking. When the date or time
// window moves, availability is re-checked excluding the booking's own
// slot; the price is recomputed from the merged parameters either way.
func (s *Service) Update(ctx context.Context, id domainbooking.BookingID, params UpdateParams) (*domainbooking.Booking, error) {
	now := s.now()
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, s.repoErr("load booking", err)
	}

	dates := b.Dates
	if params.StartDate != nil || params.EndDate != nil {
		start, end := dates.Start, dates.End
		if params.StartDate != nil {
			start = *params.StartDate
		}
		if params.EndDate != nil {
			end = *params.EndDate
		}
		dates, err = daterange.New(start, end)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindBadRequest, "invalid date range", err)
		}
	}
	window := b.Window
	if params.StartTime != nil || params.EndTime != nil {
		start, end := b.Window.StartString(), b.Window.EndString()
		if params.StartTime != nil {
			start = *params.StartTime
		}
		if params.EndTime != nil {
			end = *params.EndTime
		}
		window, err = timewindow.New(start, end)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindBadRequest, "invalid time window", err)
		}
	}
	guests := b.GuestCount
	if params.GuestCount != nil {
		guests = *params.GuestCount
		if guests <= 0 {
			return nil, apperr.New(apperr.KindBadRequest, "guest count must be positive")
		}
	}
	discount := b.DiscountPct
	if params.DiscountPct != nil {
		discount = *params.DiscountPct
		if discount < 0 || discount > 100 {
			return nil, apperr.New(apperr.KindBadRequest, "discount percent must be between 0 and 100")
		}
	}
	items := b.Items
	if params.Items != nil {
		items = params.Items
	}

	domainParams := domainbooking.UpdateParams{
		EventName:   params.EventName,
		EventType:   params.EventType,
		GuestCount:  params.GuestCount,
		DiscountPct: params.DiscountPct,
	}
	if params.StartDate != nil || params.EndDate != nil {
		domainParams.Dates = &dates
	}
	if params.StartTime != nil || params.EndTime != nil {
		domainParams.Window = &window
	}

	if b.SlotChanged(domainParams) {
		unlock, err := s.lockVenue(ctx, b.VenueID)
		if err != nil {
			return nil, err
		}
		defer unlock()
		free, err := s.Availability.IsAvailable(ctx, availability.Query{
			VenueID:        b.VenueID,
			Dates:          dates,
			Window:         window,
			ExcludeBooking: b.ID,
		})
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "availability check failed", err)
		}
		if !free {
			return nil, apperr.New(apperr.KindConflict, "venue is not available for the requested window")
		}
	}

	v, err := s.Venues.ByID(ctx, b.VenueID)
	if err != nil {
		return nil, s.repoErr("load venue", err)
	}
	price := s.Cost.Calculate(pricing.Input{
		BaseRate:    v.Rates.BaseRate,
		EventDate:   dates.Start,
		Window:      window,
		GuestCount:  guests,
		Items:       items,
		DiscountPct: discount,
	})
	if err := b.ApplyUpdate(domainParams, price, now); err != nil {
		return nil, s.transitionErr("update booking", err)
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, s.repoErr("save booking", err)
	}
	s.afterMutation(ctx, b)
	return b, nil
}

// Get serves a single booking through the best-effort cache.
func (s *Service) Get(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	key := bookingKey(id)
	if data, ok := s.cacheGet(ctx, key); ok {
		var cached domainbooking.Booking
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, s.repoErr("load booking", err)
	}
	s.cacheSet(ctx, key, b)
	return b, nil
}

type ListResult struct {
	Items []*domainbooking.Booking
	Total int64
}

func (s *Service) List(ctx context.Context, filter domainbooking.Filter) (ListResult, error) {
	filter = normalizeFilter(filter)
	key := filterKey("bookings:list:", filter)
	if data, ok := s.cacheGet(ctx, key); ok {
		var cached ListResult
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}
	items, total, err := s.Bookings.List(ctx, filter)
	if err != nil {
		return ListResult{}, s.repoErr("list bookings", err)
	}
	result := ListResult{Items: items, Total: total}
	s.cacheSet(ctx, key, result)
	return result, nil
}

func (s *Service) Stats(ctx context.Context, filter domainbooking.Filter) (domainbooking.Stats, error) {
	key := filterKey("bookings:stats:", filter)
	if data, ok := s.cacheGet(ctx, key); ok {
		var cached domainbooking.Stats
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}
	stats, err := s.Bookings.Stats(ctx, filter)
	if err != nil {
		return domainbooking.Stats{}, s.repoErr("booking stats", err)
	}
	s.cacheSet(ctx, key, stats)
	return stats, nil
}

func (s *Service) transition(ctx context.Context, id domainbooking.BookingID, op string, fn func(b *domainbooking.Booking, now time.Time) error) (*domainbooking.Booking, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, s.repoErr("load booking", err)
	}
	if err := fn(b, s.now()); err != nil {
		return nil, s.transitionErr(op, err)
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, s.repoErr("save booking", err)
	}
	s.afterMutation(ctx, b)
	return b, nil
}

func (s *Service) transitionErr(op string, err error) error {
	switch {
	case errors.Is(err, domainbooking.ErrInvalidState):
		return apperr.Wrap(apperr.KindConflict, op, err)
	case errors.Is(err, domainbooking.ErrReasonRequired), errors.Is(err, domainbooking.ErrInvalidGuests):
		return apperr.Wrap(apperr.KindBadRequest, op, err)
	}
	return apperr.Wrap(apperr.KindInternal, op, err)
}

func (s *Service) repoErr(op string, err error) error {
	switch {
	case errors.Is(err, domainbooking.ErrNotFound), errors.Is(err, domainvenue.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, op, err)
	case errors.Is(err, domainbooking.ErrConflict):
		return apperr.Wrap(apperr.KindConflict, op, err)
	}
	return apperr.Wrap(apperr.KindInternal, op, err)
}

func (s *Service) lockVenue(ctx context.Context, id domainvenue.VenueID) (func(), error) {
	if s.Locks == nil {
		return func() {}, nil
	}
	unlock, err := s.Locks.Lock(ctx, "venue:"+string(id))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "acquire venue lock", err)
	}
	return unlock, nil
}

// afterMutation publishes recorded events and drops stale cache entries.
// Both are best-effort: failures are logged, never returned.
func (s *Service) afterMutation(ctx context.Context, b *domainbooking.Booking) {
	if s.Publisher != nil {
		for _, event := range b.PendingEvents() {
			if err := s.Publisher.Publish(ctx, event); err != nil {
				s.log().Warn("event publish failed", "event", event.EventName(), "booking_id", b.ID, "error", err)
			}
		}
	}
	b.ClearEvents()
	s.invalidate(ctx, b.ID)
}

func (s *Service) invalidate(ctx context.Context, id domainbooking.BookingID) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, bookingKey(id)); err != nil {
		s.log().Warn("cache invalidation failed", "booking_id", id, "error", err)
	}
	if bulk, ok := s.Cache.(ports.BulkInvalidator); ok {
		for _, prefix := range []string{"bookings:list:", "bookings:stats:"} {
			if err := bulk.DeletePrefix(ctx, prefix); err != nil {
				s.log().Warn("cache bulk invalidation failed", "prefix", prefix, "error", err)
			}
		}
	}
	// Backends without bulk invalidation rely on the bounded list TTL.
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.Cache == nil {
		return nil, false
	}
	data, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		s.log().Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	return data, ok
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.Cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := s.Cache.Set(ctx, key, data, ttl); err != nil {
		s.log().Warn("cache write failed", "key", key, "error", err)
	}
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func bookingKey(id domainbooking.BookingID) string {
	return "booking:" + string(id)
}

func filterKey(prefix string, filter any) string {
	data, _ := json.Marshal(filter)
	sum := sha256.Sum256(data)
	return prefix + hex.EncodeToString(sum[:8])
}

func normalizeFilter(filter domainbooking.Filter) domainbooking.Filter {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Sort == "" {
		filter.Sort = domainbooking.SortNewest
	}
	return filter
}
