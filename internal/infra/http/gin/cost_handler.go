package ginserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"venuebook/internal/domain/pricing"
	"venuebook/internal/domain/shared/timewindow"
	"venuebook/internal/domain/venue"
)

// CostHandler exposes the price calculator as a standalone estimate
// endpoint, without touching booking or quotation state.
type CostHandler struct {
	Venues venue.Repository
	Cost   *pricing.Engine
	Clock  func() time.Time
}

type costRequest struct {
	VenueID     string        `json:"venue_id"`
	EventDate   string        `json:"event_date"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	GuestCount  int           `json:"guest_count"`
	Items       []lineItemDTO `json:"items"`
	DiscountPct float64       `json:"discount_pct"`
}

func (h CostHandler) Estimate(c *gin.Context) {
	var req costRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eventDate, err := parseDate(req.EventDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items := toLineItems(req.Items)
	if err := pricing.ValidateRequest(pricing.Request{
		VenueID:     req.VenueID,
		EventDate:   eventDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		GuestCount:  req.GuestCount,
		Items:       items,
		DiscountPct: req.DiscountPct,
	}, h.now()); err != nil {
		respondError(c, err)
		return
	}
	window, err := timewindow.New(req.StartTime, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.Venues.ByID(c.Request.Context(), venue.VenueID(req.VenueID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
		return
	}
	breakdown := h.Cost.Calculate(pricing.Input{
		BaseRate:    v.Rates.BaseRate,
		EventDate:   eventDate,
		Window:      window,
		GuestCount:  req.GuestCount,
		Items:       items,
		DiscountPct: req.DiscountPct,
	})
	c.JSON(http.StatusOK, breakdown)
}

func (h CostHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}
