package ginserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	quotationapp "venuebook/internal/app/quotation"
	domainquotation "venuebook/internal/domain/quotation"
	"venuebook/internal/domain/venue"
)

type QuotationHandler struct {
	Quotations *quotationapp.Service
}

type createQuotationRequest struct {
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
	ValidUntil  *time.Time    `json:"valid_until"`
}

func (h QuotationHandler) Create(c *gin.Context) {
	var req createQuotationRequest
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
	params := quotationapp.CreateParams{
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
	}
	if req.ValidUntil != nil {
		params.ValidUntil = *req.ValidUntil
	}
	q, err := h.Quotations.Create(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h QuotationHandler) Get(c *gin.Context) {
	q, err := h.Quotations.Get(c.Request.Context(), domainquotation.QuotationID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h QuotationHandler) List(c *gin.Context) {
	filter := domainquotation.Filter{
		VenueID:    venue.VenueID(c.Query("venue_id")),
		CustomerID: c.Query("customer_id"),
		Status:     domainquotation.Status(c.Query("status")),
	}
	var err error
	if filter.Limit, err = parseIntQuery(c.Query("limit")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.Offset, err = parseIntQuery(c.Query("offset")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.Quotations.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result.Items, "total": result.Total})
}

type updateQuotationRequest struct {
	EventName   *string       `json:"event_name"`
	EventType   *string       `json:"event_type"`
	StartDate   *string       `json:"start_date"`
	EndDate     *string       `json:"end_date"`
	StartTime   *string       `json:"start_time"`
	EndTime     *string       `json:"end_time"`
	GuestCount  *int          `json:"guest_count"`
	Items       []lineItemDTO `json:"items"`
	DiscountPct *float64      `json:"discount_pct"`
	ValidUntil  *time.Time    `json:"valid_until"`
}

func (h QuotationHandler) Update(c *gin.Context) {
	var req updateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params := quotationapp.UpdateParams{
		EventName:   req.EventName,
		EventType:   req.EventType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		GuestCount:  req.GuestCount,
		DiscountPct: req.DiscountPct,
		ValidUntil:  req.ValidUntil,
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
	q, err := h.Quotations.Update(c.Request.Context(), domainquotation.QuotationID(c.Param("id")), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h QuotationHandler) Send(c *gin.Context) {
	h.transition(c, h.Quotations.Send)
}

func (h QuotationHandler) Reject(c *gin.Context) {
	h.transition(c, h.Quotations.Reject)
}

func (h QuotationHandler) Expire(c *gin.Context) {
	h.transition(c, h.Quotations.Expire)
}

// Accept returns both the accepted quotation and the booking created
// from it.
func (h QuotationHandler) Accept(c *gin.Context) {
	q, b, err := h.Quotations.Accept(c.Request.Context(), domainquotation.QuotationID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotation": q, "booking": b})
}

func (h QuotationHandler) ExpireDue(c *gin.Context) {
	expired, err := h.Quotations.ExpireDue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": expired})
}

func (h QuotationHandler) transition(c *gin.Context, fn func(ctx context.Context, id domainquotation.QuotationID) (*domainquotation.Quotation, error)) {
	q, err := fn(c.Request.Context(), domainquotation.QuotationID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

var _ QuotationHTTP = QuotationHandler{}
