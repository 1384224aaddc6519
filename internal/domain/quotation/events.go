package quotation

import (
	"time"

	"venuebook/internal/domain/shared/money"
	"venuebook/internal/domain/venue"
)

type Drafted struct {
	QuotationID QuotationID
	Number      string
	VenueID     venue.VenueID
	Total       money.Amount
	At          time.Time
}

func (e Drafted) EventName() string     { return "quotation.drafted" }
func (e Drafted) AggregateID() string   { return string(e.QuotationID) }
func (e Drafted) OccurredAt() time.Time { return e.At }

type Sent struct {
	QuotationID QuotationID
	At          time.Time
}

func (e Sent) EventName() string     { return "quotation.sent" }
func (e Sent) AggregateID() string   { return string(e.QuotationID) }
func (e Sent) OccurredAt() time.Time { return e.At }

type Accepted struct {
	QuotationID QuotationID
	VenueID     venue.VenueID
	At          time.Time
}

func (e Accepted) EventName() string     { return "quotation.accepted" }
func (e Accepted) AggregateID() string   { return string(e.QuotationID) }
func (e Accepted) OccurredAt() time.Time { return e.At }

type Rejected struct {
	QuotationID QuotationID
	At          time.Time
}

func (e Rejected) EventName() string     { return "quotation.rejected" }
func (e Rejected) AggregateID() string   { return string(e.QuotationID) }
func (e Rejected) OccurredAt() time.Time { return e.At }

type Expired struct {
	QuotationID QuotationID
	At          time.Time
}

func (e Expired) EventName() string     { return "quotation.expired" }
func (e Expired) AggregateID() string   { return string(e.QuotationID) }
func (e Expired) OccurredAt() time.Time { return e.At }

type Updated struct {
	QuotationID QuotationID
	At          time.Time
}

func (e Updated) EventName() string     { return "quotation.updated" }
func (e Updated) AggregateID() string   { return string(e.QuotationID) }
func (e Updated) OccurredAt() time.Time { return e.At }
