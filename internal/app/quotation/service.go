package quotation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	bookingapp "venuebook/internal/app/booking"
	"venuebook/internal/app/ports"
	domainbooking "venuebook/internal/domain/booking"
	"venuebook/internal/domain/pricing"
	domainquotation "venuebook/internal/domain/quotation"
	"venuebook/internal/domain/shared/apperr"
	"venuebook/internal/domain/shared/daterange"
	"venuebook/internal/domain/shared/timewindow"
	domainvenue "venuebook/internal/domain/venue"
)

// Service drives the quotation lifecycle. Accepting a quotation and
// materializing its booking happen inside one atomic unit so an accepted
// quotation can never be left without a booking.
type Service struct {
	Quotations domainquotation.Repository
	Venues     domainvenue.Repository
	Cost       *pricing.Engine
	Bookings   *bookingapp.Service
	Atomic     ports.Atomic
	Cache      ports.Cache
	Publisher  ports.Publisher
	CacheTTL   time.Duration
	Logger     *slog.Logger
	Clock      func() time.Time
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
	ValidUntil  time.Time
}

// Create prices the proposed event and persists a DRAFT quotation with a
// freshly generated quotation number. Availability is not reserved at this
// stage; it is re-checked when the quotation is accepted.
func (s *Service) Create(ctx context.Context, params CreateParams) (*domainquotation.Quotation, error) {
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

	price := s.Cost.Calculate(pricing.Input{
		BaseRate:    v.Rates.BaseRate,
		EventDate:   dates.Start,
		Window:      window,
		GuestCount:  params.GuestCount,
		Items:       params.Items,
		DiscountPct: params.DiscountPct,
	})

	q, err := domainquotation.New(domainquotation.CreateParams{
		ID:          domainquotation.QuotationID(uuid.NewString()),
		Number:      domainquotation.NewNumber(now),
		VenueID:     params.VenueID,
		CustomerID:  params.CustomerID,
		EventName:   params.EventName,
		EventType:   params.EventType,
		Dates:       dates,
		Window:      window,
		GuestCount:  params.GuestCount,
		DiscountPct: params.DiscountPct,
		Price:       price,
		ValidUntil:  params.ValidUntil,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "invalid quotation", err)
	}
	if err := s.Quotations.Save(ctx, q); err != nil {
		return nil, s.repoErr("save quotation", err)
	}
	s.afterMutation(ctx, q)
	return q, nil
}

func (s *Service) Send(ctx context.Context, id domainquotation.QuotationID) (*domainquotation.Quotation, error) {
	return s.transition(ctx, id, "send quotation", func(q *domainquotation.Quotation, now time.Time) error {
		return q.Send(now)
	})
}

func (s *Service) Reject(ctx context.Context, id domainquotation.QuotationID) (*domainquotation.Quotation, error) {
	return s.transition(ctx, id, "reject quotation", func(q *domainquotation.Quotation, now time.Time) error {
		return q.Reject(now)
	})
}

func (s *Service) Expire(ctx context.Context, id domainquotation.QuotationID) (*domainquotation.Quotation, error) {
	return s.transition(ctx, id, "expire quotation", func(q *domainquotation.Quotation, now time.Time) error {
		return q.Expire(now)
	})
}

// Accept marks a SENT quotation accepted and creates exactly one booking
// from its parameters. The booking path re-checks availability under the
// venue lock; if it refuses, the whole unit rolls back and the quotation
// stays SENT.
func (s *Service) Accept(ctx context.Context, id domainquotation.QuotationID) (*domainquotation.Quotation, *domainbooking.Booking, error) {
	now := s.now()
	var q *domainquotation.Quotation
	var b *domainbooking.Booking
	run := func(ctx context.Context) error {
		var err error
		q, err = s.Quotations.ByID(ctx, id)
		if err != nil {
			return s.repoErr("load quotation", err)
		}
		if err := q.Accept(now); err != nil {
			return s.transitionErr("accept quotation", err)
		}
		b, err = s.Bookings.Create(ctx, bookingapp.CreateParams{
			VenueID:     q.VenueID,
			CustomerID:  q.CustomerID,
			EventName:   q.EventName,
			EventType:   q.EventType,
			StartDate:   q.Dates.Start,
			EndDate:     q.Dates.End,
			StartTime:   q.Window.StartString(),
			EndTime:     q.Window.EndString(),
			GuestCount:  q.GuestCount,
			Items:       q.Items,
			DiscountPct: q.DiscountPct,
		})
		if err != nil {
			return err
		}
		// The quotation is persisted only after its booking exists, so a
		// refused availability re-check leaves it SENT even without a
		// transactional store underneath.
		if err := s.Quotations.Save(ctx, q); err != nil {
			return s.repoErr("save quotation", err)
		}
		return nil
	}
	var err error
	if s.Atomic != nil {
		err = s.Atomic.Within(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	s.afterMutation(ctx, q)
	return q, b, nil
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
	ValidUntil  *time.Time
}

// Update mutates a negotiable quotation. Supplied line items replace the
// existing set wholesale and totals are recomputed from the merged event
// parameters.
func (s *Service) Update(ctx context.Context, id domainquotation.QuotationID, params UpdateParams) (*domainquotation.Quotation, error) {
	now := s.now()
	q, err := s.Quotations.ByID(ctx, id)
	if err != nil {
		return nil, s.repoErr("load quotation", err)
	}

	dates := q.Dates
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
	window := q.Window
	if params.StartTime != nil || params.EndTime != nil {
		start, end := q.Window.StartString(), q.Window.EndString()
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
	guests := q.GuestCount
	if params.GuestCount != nil {
		guests = *params.GuestCount
		if guests <= 0 {
			return nil, apperr.New(apperr.KindBadRequest, "guest count must be positive")
		}
	}
	discount := q.DiscountPct
	if params.DiscountPct != nil {
		discount = *params.DiscountPct
		if discount < 0 || discount > 100 {
			return nil, apperr.New(apperr.KindBadRequest, "discount percent must be between 0 and 100")
		}
	}
	items := q.Items
	if params.Items != nil {
		items = params.Items
	}

	v, err := s.Venues.ByID(ctx, q.VenueID)
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

	domainParams := domainquotation.UpdateParams{
		EventName:   params.EventName,
		EventType:   params.EventType,
		GuestCount:  params.GuestCount,
		DiscountPct: params.DiscountPct,
		Items:       params.Items,
		ValidUntil:  params.ValidUntil,
	}
	if params.StartDate != nil || params.EndDate != nil {
		domainParams.Dates = &dates
	}
	if params.StartTime != nil || params.EndTime != nil {
		domainParams.Window = &window
	}
	if err := q.ApplyUpdate(domainParams, price, now); err != nil {
		return nil, s.transitionErr("update quotation", err)
	}
	if err := s.Quotations.Save(ctx, q); err != nil {
		return nil, s.repoErr("save quotation", err)
	}
	s.afterMutation(ctx, q)
	return q, nil
}

// Get serves a single quotation through the best-effort cache.
func (s *Service) Get(ctx context.Context, id domainquotation.QuotationID) (*domainquotation.Quotation, error) {
	key := quotationKey(id)
	if data, ok := s.cacheGet(ctx, key); ok {
		var cached domainquotation.Quotation
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}
	q, err := s.Quotations.ByID(ctx, id)
	if err != nil {
		return nil, s.repoErr("load quotation", err)
	}
	s.cacheSet(ctx, key, q)
	return q, nil
}

type ListResult struct {
	Items []*domainquotation.Quotation
	Total int64
}

func (s *Service) List(ctx context.Context, filter domainquotation.Filter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	items, total, err := s.Quotations.List(ctx, filter)
	if err != nil {
		return ListResult{}, s.repoErr("list quotations", err)
	}
	return ListResult{Items: items, Total: total}, nil
}

// ExpireDue sweeps quotations whose validity lapsed into EXPIRED and
// returns how many were transitioned.
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.Quotations.DueForExpiry(ctx, now)
	if err != nil {
		return 0, s.repoErr("find expirable quotations", err)
	}
	expired := 0
	for _, q := range due {
		if err := q.Expire(now); err != nil {
			continue
		}
		if err := s.Quotations.Save(ctx, q); err != nil {
			s.log().Warn("expire sweep save failed", "quotation_id", q.ID, "error", err)
			continue
		}
		s.afterMutation(ctx, q)
		expired++
	}
	return expired, nil
}

func (s *Service) transition(ctx context.Context, id domainquotation.QuotationID, op string, fn func(q *domainquotation.Quotation, now time.Time) error) (*domainquotation.Quotation, error) {
	q, err := s.Quotations.ByID(ctx, id)
	if err != nil {
		return nil, s.repoErr("load quotation", err)
	}
	if err := fn(q, s.now()); err != nil {
		return nil, s.transitionErr(op, err)
	}
	if err := s.Quotations.Save(ctx, q); err != nil {
		return nil, s.repoErr("save quotation", err)
	}
	s.afterMutation(ctx, q)
	return q, nil
}

func (s *Service) transitionErr(op string, err error) error {
	switch {
	case errors.Is(err, domainquotation.ErrInvalidState):
		return apperr.Wrap(apperr.KindConflict, op, err)
	case errors.Is(err, domainquotation.ErrInvalidValidity), errors.Is(err, domainquotation.ErrInvalidGuests):
		return apperr.Wrap(apperr.KindBadRequest, op, err)
	}
	return apperr.Wrap(apperr.KindInternal, op, err)
}

func (s *Service) repoErr(op string, err error) error {
	switch {
	case errors.Is(err, domainquotation.ErrNotFound), errors.Is(err, domainvenue.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, op, err)
	case errors.Is(err, domainquotation.ErrConflict):
		return apperr.Wrap(apperr.KindConflict, op, err)
	}
	return apperr.Wrap(apperr.KindInternal, op, err)
}

func (s *Service) afterMutation(ctx context.Context, q *domainquotation.Quotation) {
	if s.Publisher != nil {
		for _, event := range q.PendingEvents() {
			if err := s.Publisher.Publish(ctx, event); err != nil {
				s.log().Warn("event publish failed", "event", event.EventName(), "quotation_id", q.ID, "error", err)
			}
		}
	}
	q.ClearEvents()
	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, quotationKey(q.ID)); err != nil {
			s.log().Warn("cache invalidation failed", "quotation_id", q.ID, "error", err)
		}
	}
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

func quotationKey(id domainquotation.QuotationID) string {
	return "quotation:" + string(id)
}
