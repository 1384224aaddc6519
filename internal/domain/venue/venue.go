package venue

import (
	"context"
	"errors"
	"time"

	"venuebook/internal/domain/shared/money"
	"venuebook/internal/domain/shared/timewindow"
)

var ErrNotFound = errors.New("venue: not found")

type VenueID string

// RateCard holds the configured pricing knobs for a venue. BaseRate is the
// anchor the cost engine works from; the optional rates are administrative
// data carried for reporting.
type RateCard struct {
	BaseRate    money.Amount
	HourlyRate  money.Amount
	DailyRate   money.Amount
	WeekendRate money.Amount
}

// Venue is owned by an administrative collaborator and read-only here.
type Venue struct {
	ID        VenueID
	Name      string
	Capacity  int
	Location  string
	Rates     RateCard
	Active    bool
	Available bool
}

// Bookable reports whether the venue can take reservations at all.
func (v *Venue) Bookable() bool {
	return v != nil && v.Active && v.Available
}

type Repository interface {
	ByID(ctx context.Context, id VenueID) (*Venue, error)
}

// Block is an administrative override marking a venue unavailable for a
// date/time window independent of bookings.
type Block struct {
	VenueID VenueID
	Date    time.Time
	Window  timewindow.Window
	Reason  string
}

type BlockRepository interface {
	ForDate(ctx context.Context, id VenueID, date time.Time) ([]Block, error)
}
