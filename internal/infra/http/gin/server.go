package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"venuebook/internal/infra/config"
	"venuebook/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Stats(c *gin.Context)
	Update(c *gin.Context)
	Confirm(c *gin.Context)
	CheckIn(c *gin.Context)
	CheckOut(c *gin.Context)
	Cancel(c *gin.Context)
	MarkNoShow(c *gin.Context)
}

type QuotationHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Update(c *gin.Context)
	Send(c *gin.Context)
	Accept(c *gin.Context)
	Reject(c *gin.Context)
	Expire(c *gin.Context)
	ExpireDue(c *gin.Context)
}

type AvailabilityHTTP interface {
	Check(c *gin.Context)
}

type CostHTTP interface {
	Estimate(c *gin.Context)
}

type Handlers struct {
	Booking      BookingHTTP
	Quotation    QuotationHTTP
	Availability AvailabilityHTTP
	Cost         CostHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings", h.Booking.List)
		api.GET("/bookings/stats", h.Booking.Stats)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PATCH("/bookings/:id", h.Booking.Update)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/check-in", h.Booking.CheckIn)
		api.POST("/bookings/:id/check-out", h.Booking.CheckOut)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/no-show", h.Booking.MarkNoShow)
	}
	if h.Quotation != nil {
		api.POST("/quotations", h.Quotation.Create)
		api.GET("/quotations", h.Quotation.List)
		api.GET("/quotations/:id", h.Quotation.Get)
		api.PATCH("/quotations/:id", h.Quotation.Update)
		api.POST("/quotations/:id/send", h.Quotation.Send)
		api.POST("/quotations/:id/accept", h.Quotation.Accept)
		api.POST("/quotations/:id/reject", h.Quotation.Reject)
		api.POST("/quotations/:id/expire", h.Quotation.Expire)
		api.POST("/quotations/expire-due", h.Quotation.ExpireDue)
	}
	if h.Availability != nil {
		api.GET("/venues/:id/availability", h.Availability.Check)
	}
	if h.Cost != nil {
		api.POST("/cost/estimate", h.Cost.Estimate)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
