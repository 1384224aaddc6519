package booking

import (
	"time"

	"venuebook/internal/domain/shared/money"
	"venuebook/internal/domain/venue"
)

type Created struct {
	BookingID  BookingID
	VenueID    venue.VenueID
	CustomerID string
	Total      money.Amount
	At         time.Time
}

func (e Created) EventName() string     { return "booking.created" }
func (e Created) AggregateID() string   { return string(e.BookingID) }
func (e Created) OccurredAt() time.Time { return e.At }

type Confirmed struct {
	BookingID BookingID
	VenueID   venue.VenueID
	At        time.Time
}

func (e Confirmed) EventName() string     { return "booking.confirmed" }
func (e Confirmed) AggregateID() string   { return string(e.BookingID) }
func (e Confirmed) OccurredAt() time.Time { return e.At }

type CheckedIn struct {
	BookingID BookingID
	At        time.Time
}

func (e CheckedIn) EventName() string     { return "booking.checked_in" }
func (e CheckedIn) AggregateID() string   { return string(e.BookingID) }
func (e CheckedIn) OccurredAt() time.Time { return e.At }

type CheckedOut struct {
	BookingID BookingID
	At        time.Time
}

func (e CheckedOut) EventName() string     { return "booking.checked_out" }
func (e CheckedOut) AggregateID() string   { return string(e.BookingID) }
func (e CheckedOut) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	BookingID BookingID
	VenueID   venue.VenueID
	Refund    money.Amount
	Reason    string
	At        time.Time
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.BookingID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }

type NoShow struct {
	BookingID BookingID
	At        time.Time
}

func (e NoShow) EventName() string     { return "booking.no_show" }
func (e NoShow) AggregateID() string   { return string(e.BookingID) }
func (e NoShow) OccurredAt() time.Time { return e.At }

type Updated struct {
	BookingID BookingID
	VenueID   venue.VenueID
	At        time.Time
}

func (e Updated) EventName() string     { return "booking.updated" }
func (e Updated) AggregateID() string   { return string(e.BookingID) }
func (e Updated) OccurredAt() time.Time { return e.At }
