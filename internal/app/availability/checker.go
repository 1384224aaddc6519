package availability

import (
	"context"
	"errors"
	"time"

	domainbooking "venuebook/internal/domain/booking"
	"venuebook/internal/domain/shared/daterange"
	"venuebook/internal/domain/shared/timewindow"
	domainvenue "venuebook/internal/domain/venue"
)

// Checker decides whether a venue is free for a date/time window. A venue
// that is missing, inactive or administratively unavailable is never free.
type Checker struct {
	Venues   domainvenue.Repository
	Bookings domainbooking.Repository
	Blocks   domainvenue.BlockRepository
}

type Query struct {
	VenueID domainvenue.VenueID
	Dates   daterange.DateRange
	Window  timewindow.Window
	// ExcludeBooking skips the booking's own current slot when re-checking
	// a reschedule.
	ExcludeBooking domainbooking.BookingID
}

// IsAvailable reports whether every day of the requested range is free of
// overlapping non-cancelled bookings and administrative blocks. Overlap is
// half-open: back-to-back windows do not conflict.
func (c *Checker) IsAvailable(ctx context.Context, q Query) (bool, error) {
	v, err := c.Venues.ByID(ctx, q.VenueID)
	if err != nil {
		if errors.Is(err, domainvenue.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !v.Bookable() {
		return false, nil
	}

	free := true
	var dayErr error
	q.Dates.EachDay(func(day time.Time) bool {
		existing, err := c.Bookings.ActiveForVenueDate(ctx, q.VenueID, day)
		if err != nil {
			dayErr = err
			return false
		}
		for _, b := range existing {
			if b.ID == q.ExcludeBooking || b.IsCancelled {
				continue
			}
			if b.Window.Overlaps(q.Window) {
				free = false
				return false
			}
		}
		if c.Blocks != nil {
			blocks, err := c.Blocks.ForDate(ctx, q.VenueID, day)
			if err != nil {
				dayErr = err
				return false
			}
			for _, block := range blocks {
				if block.Window.Overlaps(q.Window) {
					free = false
					return false
				}
			}
		}
		return true
	})
	if dayErr != nil {
		return false, dayErr
	}
	return free, nil
}
