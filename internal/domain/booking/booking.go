package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"venuebook/internal/domain/pricing"
	"venuebook/internal/domain/shared/daterange"
	"venuebook/internal/domain/shared/events"
	"venuebook/internal/domain/shared/money"
	"venuebook/internal/domain/shared/timewindow"
	"venuebook/internal/domain/venue"
)

var (
	ErrInvalidGuests  = errors.New("booking: guest count must be positive")
	ErrInvalidState   = errors.New("booking: invalid state transition")
	ErrReasonRequired = errors.New("booking: cancellation reason required")
	ErrNotFound       = errors.New("booking: not found")
	ErrConflict       = errors.New("booking: conflicting concurrent write")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCheckedIn Status = "CHECKED_IN"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Booking is the reservation aggregate. It is created once, mutated only
// through the transition methods below and never hard-deleted.
type Booking struct {
	ID                 BookingID
	VenueID            venue.VenueID
	CustomerID         string
	EventName          string
	EventType          string
	Dates              daterange.DateRange
	Window             timewindow.Window
	GuestCount         int
	Items              []pricing.LineItem
	DiscountPct        float64
	BaseAmount         money.Amount
	AdditionalCharges  money.Amount
	Discount           money.Amount
	TaxAmount          money.Amount
	TotalAmount        money.Amount
	DepositAmount      money.Amount
	BalanceAmount      money.Amount
	Status             Status
	PaymentStatus      PaymentStatus
	IsConfirmed        bool
	IsCancelled        bool
	CancellationReason string
	RefundAmount       money.Amount
	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
	events.EventRecorder
}

type CreateParams struct {
	ID          BookingID
	VenueID     venue.VenueID
	CustomerID  string
	EventName   string
	EventType   string
	Dates       daterange.DateRange
	Window      timewindow.Window
	GuestCount  int
	DiscountPct float64
	Price       pricing.Breakdown
	CreatedAt   time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.GuestCount <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.CustomerID == "" {
		return nil, errors.New("booking: customer id required")
	}
	if err := params.Dates.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:                params.ID,
		VenueID:           params.VenueID,
		CustomerID:        params.CustomerID,
		EventName:         params.EventName,
		EventType:         params.EventType,
		Dates:             params.Dates,
		Window:            params.Window,
		GuestCount:        params.GuestCount,
		DiscountPct:       params.DiscountPct,
		Items:             append([]pricing.LineItem(nil), params.Price.Items...),
		BaseAmount:        params.Price.BaseAmount,
		AdditionalCharges: params.Price.Subtotal - params.Price.BaseAmount,
		Discount:          params.Price.DiscountAmount,
		TaxAmount:         params.Price.TaxAmount,
		TotalAmount:       params.Price.Total,
		DepositAmount:     params.Price.Deposit,
		BalanceAmount:     params.Price.Balance,
		Status:            StatusPending,
		PaymentStatus:     PaymentPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	b.Record(Created{BookingID: b.ID, VenueID: b.VenueID, CustomerID: b.CustomerID, Total: b.TotalAmount, At: now})
	return b, nil
}

// EventStart anchors the booking's start time on its first event day.
func (b *Booking) EventStart() time.Time {
	return b.Window.At(b.Dates.Start)
}

func (b *Booking) Confirm(now time.Time) error {
	if b.IsCancelled || b.IsConfirmed {
		return ErrInvalidState
	}
	at := now.UTC()
	b.Status = StatusConfirmed
	b.IsConfirmed = true
	b.ConfirmedAt = &at
	b.UpdatedAt = at
	b.Record(Confirmed{BookingID: b.ID, VenueID: b.VenueID, At: at})
	return nil
}

func (b *Booking) CheckIn(now time.Time) error {
	if !b.IsConfirmed || b.IsCancelled || b.Status == StatusCheckedIn {
		return ErrInvalidState
	}
	b.Status = StatusCheckedIn
	b.UpdatedAt = now.UTC()
	b.Record(CheckedIn{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckOut(now time.Time) error {
	if b.Status != StatusCheckedIn {
		return ErrInvalidState
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(CheckedOut{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// Cancel records the cancellation and the refund owed to the customer.
// The refund is computed by the caller from the policy in refund.go.
func (b *Booking) Cancel(reason string, refund money.Amount, now time.Time) error {
	if b.IsCancelled || b.Status == StatusCompleted {
		return ErrInvalidState
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	at := now.UTC()
	b.Status = StatusCancelled
	b.IsCancelled = true
	b.CancellationReason = reason
	b.RefundAmount = refund
	if refund > 0 {
		b.PaymentStatus = PaymentRefunded
	}
	b.CancelledAt = &at
	b.UpdatedAt = at
	b.Record(Cancelled{BookingID: b.ID, VenueID: b.VenueID, Refund: refund, Reason: reason, At: at})
	return nil
}

func (b *Booking) MarkNoShow(now time.Time) error {
	if !b.IsConfirmed || b.IsCancelled || b.Status == StatusCheckedIn || b.Status == StatusCompleted {
		return ErrInvalidState
	}
	b.Status = StatusNoShow
	b.UpdatedAt = now.UTC()
	b.Record(NoShow{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// UpdateParams carries the mutable event fields; nil members are left as-is.
type UpdateParams struct {
	EventName   *string
	EventType   *string
	Dates       *daterange.DateRange
	Window      *timewindow.Window
	GuestCount  *int
	DiscountPct *float64
}

// SlotChanged reports whether applying the update would move the booking
// to a different date or time window.
func (b *Booking) SlotChanged(params UpdateParams) bool {
	if params.Dates != nil && (!params.Dates.Start.Equal(b.Dates.Start) || !params.Dates.End.Equal(b.Dates.End)) {
		return true
	}
	if params.Window != nil && *params.Window != b.Window {
		return true
	}
	return false
}

// ApplyUpdate mutates event fields; repricing is the service's concern.
func (b *Booking) ApplyUpdate(params UpdateParams, price pricing.Breakdown, now time.Time) error {
	if b.IsCancelled || b.Status == StatusCompleted {
		return ErrInvalidState
	}
	if params.EventName != nil {
		b.EventName = *params.EventName
	}
	if params.EventType != nil {
		b.EventType = *params.EventType
	}
	if params.Dates != nil {
		b.Dates = *params.Dates
	}
	if params.Window != nil {
		b.Window = *params.Window
	}
	if params.GuestCount != nil {
		if *params.GuestCount <= 0 {
			return ErrInvalidGuests
		}
		b.GuestCount = *params.GuestCount
	}
	if params.DiscountPct != nil {
		b.DiscountPct = *params.DiscountPct
	}
	b.Items = append([]pricing.LineItem(nil), price.Items...)
	b.BaseAmount = price.BaseAmount
	b.AdditionalCharges = price.Subtotal - price.BaseAmount
	b.Discount = price.DiscountAmount
	b.TaxAmount = price.TaxAmount
	b.TotalAmount = price.Total
	b.DepositAmount = price.Deposit
	b.BalanceAmount = price.Balance
	b.UpdatedAt = now.UTC()
	b.Record(Updated{BookingID: b.ID, VenueID: b.VenueID, At: b.UpdatedAt})
	return nil
}

// Filter narrows list and aggregation queries.
type Filter struct {
	VenueID    venue.VenueID
	CustomerID string
	Status     Status
	From       time.Time
	To         time.Time
	Sort       SortOrder
	Limit      int
	Offset     int
}

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortEventDate SortOrder = "event_date"
	SortTotalDesc SortOrder = "total_desc"
)

// Stats is the aggregate view over a filtered set of bookings.
type Stats struct {
	Total        int64
	ByStatus     map[Status]int64
	RevenueTotal money.Amount
	AverageTotal float64
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	// ActiveForVenueDate returns non-cancelled bookings whose date range
	// includes the given day.
	ActiveForVenueDate(ctx context.Context, id venue.VenueID, date time.Time) ([]*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int64, error)
	Stats(ctx context.Context, filter Filter) (Stats, error)
}
