package ginserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"venuebook/internal/app/availability"
	"venuebook/internal/domain/shared/daterange"
	"venuebook/internal/domain/shared/timewindow"
	"venuebook/internal/domain/venue"
)

type AvailabilityHandler struct {
	Checker *availability.Checker
}

// Check reports whether a venue is free for every day of the requested
// range during the given time window.
func (h AvailabilityHandler) Check(c *gin.Context) {
	startDate, err := parseDate(c.Query("date"))
	if err != nil || startDate.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required as YYYY-MM-DD"})
		return
	}
	endDate, err := parseDate(c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if endDate.IsZero() {
		endDate = startDate
	}
	dates, err := daterange.New(startDate, endDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	window, err := timewindow.New(c.Query("start_time"), c.Query("end_time"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	free, err := h.Checker.IsAvailable(c.Request.Context(), availability.Query{
		VenueID: venue.VenueID(c.Param("id")),
		Dates:   dates,
		Window:  window,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": free})
}
