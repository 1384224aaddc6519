package pricing

import (
	"fmt"
	"time"

	"venuebook/internal/domain/shared/apperr"
	"venuebook/internal/domain/shared/daterange"
	"venuebook/internal/domain/shared/timewindow"
)

// Request is an externally supplied cost calculation request, validated
// before any pricing happens.
type Request struct {
	VenueID     string
	EventDate   time.Time
	StartTime   string
	EndTime     string
	GuestCount  int
	Items       []LineItem
	DiscountPct float64
}

const maxEventHours = 24

// ValidateRequest checks the request and accumulates every violation into
// a single BadRequest instead of failing on the first one.
func ValidateRequest(req Request, now time.Time) error {
	var violations []string
	if req.VenueID == "" {
		violations = append(violations, "venue id is required")
	}
	if req.EventDate.IsZero() {
		violations = append(violations, "event date is required")
	} else if daterange.Day(req.EventDate).Before(daterange.Day(now)) {
		violations = append(violations, "event date must not be in the past")
	}
	window, err := timewindow.New(req.StartTime, req.EndTime)
	if err != nil {
		violations = append(violations, fmt.Sprintf("invalid time window: %v", err))
	} else if window.Hours() > maxEventHours {
		violations = append(violations, "event duration must not exceed 24 hours")
	}
	if req.GuestCount <= 0 {
		violations = append(violations, "guest count must be positive")
	}
	if len(req.Items) == 0 {
		violations = append(violations, "at least one line item is required")
	}
	for i, item := range req.Items {
		if !item.Type.Valid() {
			violations = append(violations, fmt.Sprintf("line item %d: unknown item type %q", i, item.Type))
		}
		if item.Quantity <= 0 {
			violations = append(violations, fmt.Sprintf("line item %d: quantity must be positive", i))
		}
	}
	if req.DiscountPct < 0 || req.DiscountPct > 100 {
		violations = append(violations, "discount percent must be between 0 and 100")
	}
	if len(violations) > 0 {
		return apperr.Validation("invalid cost request", violations)
	}
	return nil
}
