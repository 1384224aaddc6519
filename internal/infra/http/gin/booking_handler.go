package ginserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	bookingapp "venuebook/internal/app/booking"
	domainbooking "venuebook/internal/domain/booking"
	"venuebook/internal/domain/venue"
)

type BookingHandler struct {
	Bookings *bookingapp.Service
}

type createBookingRequest struct {
	VenueID     string        `json:"venue_id"`
	CustomerID  string        `json:"customer_id"`
	EventName   string        `json:"event_name"`
	EventType   string        `json:"event_type"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	GuestCount  int           `json:"guest_count"`
	Items       []lineItemDTO `json:"items"`
	DiscountPct float64       `json:"discount_pct"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.Bookings.Create(c.Request.Context(), bookingapp.CreateParams{
		VenueID:     venue.VenueID(req.VenueID),
		CustomerID:  req.CustomerID,
		EventName:   req.EventName,
		EventType:   req.EventType,
		StartDate:   startDate,
		EndDate:     endDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		GuestCount:  req.GuestCount,
		Items:       toLineItems(req.Items),
		DiscountPct: req.DiscountPct,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h BookingHandler) Get(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), domainbooking.BookingID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h BookingHandler) List(c *gin.Context) {
	filter, err := bookingFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.Bookings.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result.Items, "total": result.Total})
}

func (h BookingHandler) Stats(c *gin.Context) {
	filter, err := bookingFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stats, err := h.Bookings.Stats(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type updateBookingRequest struct {
	EventName   *string       `json:"event_name"`
	EventType   *string       `json:"event_type"`
	StartDate   *string       `json:"start_date"`
	EndDate     *string       `json:"end_date"`
	StartTime   *string       `json:"start_time"`
	EndTime     *string       `json:"end_time"`
	GuestCount  *int          `json:"guest_count"`
	Items       []lineItemDTO `json:"items"`
	DiscountPct *float64      `json:"discount_pct"`
}

func (h BookingHandler) Update(c *gin.Context) {
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params := bookingapp.UpdateParams{
		EventName:   req.EventName,
		EventType:   req.EventType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		GuestCount:  req.GuestCount,
		DiscountPct: req.DiscountPct,
	}
	if req.StartDate != nil {
		d, err := parseDate(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		params.StartDate = &d
	}
	if req.EndDate != nil {
		d, err := parseDate(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		params.EndDate = &d
	}
	if req.Items != nil {
		params.Items = toLineItems(req.Items)
	}
	b, err := h.Bookings.Update(c.Request.Context(), domainbooking.BookingID(c.Param("id")), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, h.Bookings.Confirm)
}

func (h BookingHandler) CheckIn(c *gin.Context) {
	h.transition(c, h.Bookings.CheckIn)
}

func (h BookingHandler) CheckOut(c *gin.Context) {
	h.transition(c, h.Bookings.CheckOut)
}

func (h BookingHandler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.Bookings.MarkNoShow)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.Bookings.Cancel(c.Request.Context(), domainbooking.BookingID(c.Param("id")), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "refund_amount": b.RefundAmount})
}

func (h BookingHandler) transition(c *gin.Context, fn func(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error)) {
	b, err := fn(c.Request.Context(), domainbooking.BookingID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func bookingFilterFromQuery(c *gin.Context) (domainbooking.Filter, error) {
	filter := domainbooking.Filter{
		VenueID:    venue.VenueID(c.Query("venue_id")),
		CustomerID: c.Query("customer_id"),
		Status:     domainbooking.Status(c.Query("status")),
		Sort:       domainbooking.SortOrder(c.Query("sort")),
	}
	var err error
	if filter.From, err = parseDate(c.Query("from")); err != nil {
		return domainbooking.Filter{}, err
	}
	if filter.To, err = parseDate(c.Query("to")); err != nil {
		return domainbooking.Filter{}, err
	}
	if filter.Limit, err = parseIntQuery(c.Query("limit")); err != nil {
		return domainbooking.Filter{}, err
	}
	if filter.Offset, err = parseIntQuery(c.Query("offset")); err != nil {
		return domainbooking.Filter{}, err
	}
	return filter, nil
}

func parseIntQuery(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return n, nil
}

var _ BookingHTTP = BookingHandler{}
