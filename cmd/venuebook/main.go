package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venuebook/internal/app/availability"
	bookingapp "venuebook/internal/app/booking"
	"venuebook/internal/app/ports"
	quotationapp "venuebook/internal/app/quotation"
	domainbooking "venuebook/internal/domain/booking"
	"venuebook/internal/domain/pricing"
	domainquotation "venuebook/internal/domain/quotation"
	"venuebook/internal/domain/shared/money"
	"venuebook/internal/domain/venue"
	"venuebook/internal/infra/broker/kafka"
	rediscache "venuebook/internal/infra/cache/redis"
	"venuebook/internal/infra/config"
	mongodb "venuebook/internal/infra/db/mongo"
	ginserver "venuebook/internal/infra/http/gin"
	"venuebook/internal/infra/obs"
	"venuebook/internal/infra/storage/memory"
)

const expirySweepInterval = time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger := obs.NewLogger("dev")
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := seedVenues(ctx, app.venueSeed, logger); err != nil {
		logger.Warn("venue fixtures load failed", "error", err)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	go runExpirySweep(ctx, app.quotations, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	quotations *quotationapp.Service
	venueSeed  *memory.VenueRepository
	ready      func() error
}

// buildApplication wires the services against Mongo, Redis and Kafka when
// configured, falling back to in-process implementations otherwise.
func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	var (
		venues     venue.Repository
		blocks     venue.BlockRepository
		bookings   domainbooking.Repository
		quotations domainquotation.Repository
		atomic     ports.Atomic
		cache      ports.Cache
		locks      ports.Locker
		publisher  ports.Publisher
		venueSeed  *memory.VenueRepository
		readyFns   []func() error
		cleanups   []func()
	)

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, nil, fmt.Errorf("mongo connect: %w", err)
		}
		cleanups = append(cleanups, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		})
		bookingRepo := mongodb.NewBookingRepository(client.DB)
		quotationRepo := mongodb.NewQuotationRepository(client.DB)
		if err := bookingRepo.EnsureIndexes(ctx); err != nil {
			logger.Warn("booking index creation failed", "error", err)
		}
		if err := quotationRepo.EnsureIndexes(ctx); err != nil {
			logger.Warn("quotation index creation failed", "error", err)
		}
		venues = mongodb.NewVenueRepository(client.DB)
		blocks = mongodb.NewBlockRepository(client.DB)
		bookings = bookingRepo
		quotations = quotationRepo
		atomic = client
		readyFns = append(readyFns, func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		})
		logger.Info("storage: mongodb", "db", cfg.MongoDB)
	} else {
		venueSeed = memory.NewVenueRepository()
		venues = venueSeed
		blocks = memory.NewBlockRepository()
		bookings = memory.NewBookingRepository()
		quotations = memory.NewQuotationRepository()
		atomic = memory.Atomic{}
		logger.Info("storage: in-memory")
	}

	if cfg.RedisAddr != "" {
		client := rediscache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cleanups = append(cleanups, func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close failed", "error", err)
			}
		})
		cache = rediscache.NewCache(client)
		locks = rediscache.NewLocker(client, cfg.LockTTL)
		readyFns = append(readyFns, func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return rediscache.Ping(pingCtx, client)
		})
		logger.Info("cache: redis", "addr", cfg.RedisAddr)
	} else {
		cache = memory.NewCache()
		locks = memory.NewLocker()
		logger.Info("cache: in-memory")
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return application{}, nil, fmt.Errorf("kafka connect: %w", err)
		}
		cleanups = append(cleanups, func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka close failed", "error", err)
			}
		})
		publisher = &kafka.Publisher{
			Producer: producer,
			Topic:    cfg.KafkaTopicPrefix + "venuebook.events",
			Backoff:  cfg.RetryBackoff,
		}
		logger.Info("events: kafka", "brokers", cfg.KafkaBrokers)
	} else {
		publisher = memory.NewPublisher()
		logger.Info("events: in-memory")
	}

	engine := pricing.NewEngine(pricing.DefaultRates())
	checker := &availability.Checker{
		Venues:   venues,
		Bookings: bookings,
		Blocks:   blocks,
	}
	bookingSvc := &bookingapp.Service{
		Bookings:     bookings,
		Venues:       venues,
		Availability: checker,
		Cost:         engine,
		Locks:        locks,
		Cache:        cache,
		Publisher:    publisher,
		CacheTTL:     cfg.CacheTTL,
		Logger:       logger,
	}
	quotationSvc := &quotationapp.Service{
		Quotations: quotations,
		Venues:     venues,
		Cost:       engine,
		Bookings:   bookingSvc,
		Atomic:     atomic,
		Cache:      cache,
		Publisher:  publisher,
		CacheTTL:   cfg.CacheTTL,
		Logger:     logger,
	}

	app := application{
		handlers: ginserver.Handlers{
			Booking:      ginserver.BookingHandler{Bookings: bookingSvc},
			Quotation:    ginserver.QuotationHandler{Quotations: quotationSvc},
			Availability: ginserver.AvailabilityHandler{Checker: checker},
			Cost:         ginserver.CostHandler{Venues: venues, Cost: engine},
		},
		quotations: quotationSvc,
		venueSeed:  venueSeed,
		ready: func() error {
			for _, fn := range readyFns {
				if err := fn(); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return app, cleanup, nil
}

// runExpirySweep periodically moves lapsed quotations to EXPIRED.
func runExpirySweep(ctx context.Context, svc *quotationapp.Service, logger *slog.Logger) {
	ticker := time.NewTicker(expirySweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := svc.ExpireDue(ctx)
			if err != nil {
				logger.Warn("quotation expiry sweep failed", "error", err)
				continue
			}
			if expired > 0 {
				logger.Info("quotations expired", "count", expired)
			}
		}
	}
}

type venueFixture struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity"`
	BaseRate    int64  `json:"base_rate"`
	HourlyRate  int64  `json:"hourly_rate"`
	DailyRate   int64  `json:"daily_rate"`
	WeekendRate int64  `json:"weekend_rate"`
	Active      bool   `json:"active"`
	Available   bool   `json:"available"`
}

// seedVenues loads venue fixtures into the in-memory repository. Mongo
// deployments manage venues out of band.
func seedVenues(ctx context.Context, repo *memory.VenueRepository, logger *slog.Logger) error {
	if repo == nil {
		return nil
	}
	path := os.Getenv("VENUE_FIXTURES")
	if path == "" {
		path = "fixtures/venues.json"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("venue fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []venueFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	for _, fx := range fixtures {
		repo.Put(&venue.Venue{
			ID:        venue.VenueID(fx.ID),
			Name:      fx.Name,
			Location:  fx.Location,
			Capacity:  fx.Capacity,
			Active:    fx.Active,
			Available: fx.Available,
			Rates: venue.RateCard{
				BaseRate:    money.Amount(fx.BaseRate),
				HourlyRate:  money.Amount(fx.HourlyRate),
				DailyRate:   money.Amount(fx.DailyRate),
				WeekendRate: money.Amount(fx.WeekendRate),
			},
		})
	}
	logger.Info("venue fixtures loaded", "count", len(fixtures), "path", path)
	return nil
}
