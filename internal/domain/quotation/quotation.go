package quotation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"venuebook/internal/domain/pricing"
	"venuebook/internal/domain/shared/daterange"
	"venuebook/internal/domain/shared/events"
	"venuebook/internal/domain/shared/money"
	"venuebook/internal/domain/shared/timewindow"
	"venuebook/internal/domain/venue"
)

var (
	ErrInvalidState    = errors.New("quotation: invalid state transition")
	ErrInvalidValidity = errors.New("quotation: valid-until must be in the future")
	ErrInvalidGuests   = errors.New("quotation: guest count must be positive")
	ErrNotFound        = errors.New("quotation: not found")
	ErrConflict        = errors.New("quotation: conflicting concurrent write")
)

type QuotationID string

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// DefaultValidity is applied when a create request leaves validUntil unset.
const DefaultValidity = 7 * 24 * time.Hour

// Quotation is a priced, time-bounded offer. Accepting it produces exactly
// one booking; ACCEPTED, REJECTED and EXPIRED are terminal.
type Quotation struct {
	ID             QuotationID
	Number         string
	VenueID        venue.VenueID
	CustomerID     string
	EventName      string
	EventType      string
	Dates          daterange.DateRange
	Window         timewindow.Window
	GuestCount     int
	Items          []pricing.LineItem
	DiscountPct    float64
	BaseAmount     money.Amount
	Subtotal       money.Amount
	DiscountAmount money.Amount
	TaxAmount      money.Amount
	TotalAmount    money.Amount
	ValidUntil     time.Time
	Status         Status
	IsAccepted     bool
	IsExpired      bool
	AcceptedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
	events.EventRecorder
}

// NewNumber builds a quotation number from a fixed prefix, a second-level
// timestamp and a short random suffix to keep collisions unlikely.
func NewNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("QTN-%s-%s", now.UTC().Format("20060102150405"), suffix)
}

type CreateParams struct {
	ID          QuotationID
	Number      string
	VenueID     venue.VenueID
	CustomerID  string
	EventName   string
	EventType   string
	Dates       daterange.DateRange
	Window      timewindow.Window
	GuestCount  int
	DiscountPct float64
	Price       pricing.Breakdown
	ValidUntil  time.Time
	CreatedAt   time.Time
}

func New(params CreateParams) (*Quotation, error) {
	if params.GuestCount <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.CustomerID == "" {
		return nil, errors.New("quotation: customer id required")
	}
	if err := params.Dates.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	validUntil := params.ValidUntil
	if validUntil.IsZero() {
		validUntil = now.Add(DefaultValidity)
	}
	if !validUntil.After(now) {
		return nil, ErrInvalidValidity
	}
	q := &Quotation{
		ID:             params.ID,
		Number:         params.Number,
		VenueID:        params.VenueID,
		CustomerID:     params.CustomerID,
		EventName:      params.EventName,
		EventType:      params.EventType,
		Dates:          params.Dates,
		Window:         params.Window,
		GuestCount:     params.GuestCount,
		DiscountPct:    params.DiscountPct,
		Items:          append([]pricing.LineItem(nil), params.Price.Items...),
		BaseAmount:     params.Price.BaseAmount,
		Subtotal:       params.Price.Subtotal,
		DiscountAmount: params.Price.DiscountAmount,
		TaxAmount:      params.Price.TaxAmount,
		TotalAmount:    params.Price.Total,
		ValidUntil:     validUntil.UTC(),
		Status:         StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	q.Record(Drafted{QuotationID: q.ID, Number: q.Number, VenueID: q.VenueID, Total: q.TotalAmount, At: now})
	return q, nil
}

func (q *Quotation) Send(now time.Time) error {
	if q.IsExpired || q.Status != StatusDraft {
		return ErrInvalidState
	}
	q.Status = StatusSent
	q.UpdatedAt = now.UTC()
	q.Record(Sent{QuotationID: q.ID, At: q.UpdatedAt})
	return nil
}

func (q *Quotation) Accept(now time.Time) error {
	if q.IsAccepted || q.IsExpired || q.Status != StatusSent {
		return ErrInvalidState
	}
	at := now.UTC()
	q.Status = StatusAccepted
	q.IsAccepted = true
	q.AcceptedAt = &at
	q.UpdatedAt = at
	q.Record(Accepted{QuotationID: q.ID, VenueID: q.VenueID, At: at})
	return nil
}

func (q *Quotation) Reject(now time.Time) error {
	if q.IsAccepted || q.IsExpired {
		return ErrInvalidState
	}
	if q.Status != StatusDraft && q.Status != StatusSent {
		return ErrInvalidState
	}
	q.Status = StatusRejected
	q.UpdatedAt = now.UTC()
	q.Record(Rejected{QuotationID: q.ID, At: q.UpdatedAt})
	return nil
}

func (q *Quotation) Expire(now time.Time) error {
	if q.IsAccepted || q.IsExpired {
		return ErrInvalidState
	}
	q.Status = StatusExpired
	q.IsExpired = true
	q.UpdatedAt = now.UTC()
	q.Record(Expired{QuotationID: q.ID, At: q.UpdatedAt})
	return nil
}

// UpdateParams carries the mutable fields; nil members are left as-is.
// Supplied Items replace the existing ones wholesale.
type UpdateParams struct {
	EventName   *string
	EventType   *string
	Dates       *daterange.DateRange
	Window      *timewindow.Window
	GuestCount  *int
	DiscountPct *float64
	Items       []pricing.LineItem
	ValidUntil  *time.Time
}

// ApplyUpdate mutates event fields and re-applies the freshly computed
// price; allowed only while the quotation is still negotiable.
func (q *Quotation) ApplyUpdate(params UpdateParams, price pricing.Breakdown, now time.Time) error {
	if q.IsAccepted || q.IsExpired {
		return ErrInvalidState
	}
	if params.EventName != nil {
		q.EventName = *params.EventName
	}
	if params.EventType != nil {
		q.EventType = *params.EventType
	}
	if params.Dates != nil {
		q.Dates = *params.Dates
	}
	if params.Window != nil {
		q.Window = *params.Window
	}
	if params.GuestCount != nil {
		if *params.GuestCount <= 0 {
			return ErrInvalidGuests
		}
		q.GuestCount = *params.GuestCount
	}
	if params.DiscountPct != nil {
		q.DiscountPct = *params.DiscountPct
	}
	if params.ValidUntil != nil {
		if !params.ValidUntil.After(now.UTC()) {
			return ErrInvalidValidity
		}
		q.ValidUntil = params.ValidUntil.UTC()
	}
	q.Items = append([]pricing.LineItem(nil), price.Items...)
	q.BaseAmount = price.BaseAmount
	q.Subtotal = price.Subtotal
	q.DiscountAmount = price.DiscountAmount
	q.TaxAmount = price.TaxAmount
	q.TotalAmount = price.Total
	q.UpdatedAt = now.UTC()
	q.Record(Updated{QuotationID: q.ID, At: q.UpdatedAt})
	return nil
}

type Filter struct {
	VenueID    venue.VenueID
	CustomerID string
	Status     Status
	Limit      int
	Offset     int
}

type Repository interface {
	ByID(ctx context.Context, id QuotationID) (*Quotation, error)
	Save(ctx context.Context, q *Quotation) error
	List(ctx context.Context, filter Filter) ([]*Quotation, int64, error)
	// DueForExpiry returns non-terminal quotations whose validity lapsed.
	DueForExpiry(ctx context.Context, now time.Time) ([]*Quotation, error)
}
