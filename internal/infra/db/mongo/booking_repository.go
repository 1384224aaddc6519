package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "venuebook/internal/domain/booking"
	"venuebook/internal/domain/pricing"
	"venuebook/internal/domain/shared/daterange"
	"venuebook/internal/domain/shared/money"
	"venuebook/internal/domain/shared/timewindow"
	domainvenue "venuebook/internal/domain/venue"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

// EnsureIndexes creates the venue/date index the availability query leans
// on. Bookings are never hard-deleted, so the collection only grows.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "venue_id", Value: 1}, {Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}}},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts with an optimistic version CAS; a lost race surfaces as
// ErrConflict instead of silently overwriting a concurrent transition.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainbooking.ErrConflict
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ActiveForVenueDate(ctx context.Context, id domainvenue.VenueID, date time.Time) ([]*domainbooking.Booking, error) {
	day := daterange.Day(date).UnixMilli()
	filter := bson.M{
		"venue_id":   string(id),
		"start_date": bson.M{"$lte": day},
		"end_date":   bson.M{"$gte": day},
		"status":     bson.M{"$ne": string(domainbooking.StatusCancelled)},
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeBookings(ctx, cur)
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, int64, error) {
	query := listFilter(filter)
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(sortSpec(filter.Sort)).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	items, err := decodeBookings(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Stats folds count, revenue sum and average total over the filtered set
// with one aggregation per grouping.
func (r *BookingRepository) Stats(ctx context.Context, filter domainbooking.Filter) (domainbooking.Stats, error) {
	query := listFilter(filter)
	stats := domainbooking.Stats{ByStatus: make(map[domainbooking.Status]int64)}

	totals, err := r.col.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: query}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$total_amount"},
			"average": bson.M{"$avg": "$total_amount"},
		}}},
	})
	if err != nil {
		return domainbooking.Stats{}, err
	}
	defer totals.Close(ctx)
	if totals.Next(ctx) {
		var row struct {
			Count   int64   `bson:"count"`
			Revenue int64   `bson:"revenue"`
			Average float64 `bson:"average"`
		}
		if err := totals.Decode(&row); err != nil {
			return domainbooking.Stats{}, err
		}
		stats.Total = row.Count
		stats.RevenueTotal = money.Amount(row.Revenue)
		stats.AverageTotal = row.Average
	}

	byStatus, err := r.col.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: query}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return domainbooking.Stats{}, err
	}
	defer byStatus.Close(ctx)
	for byStatus.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := byStatus.Decode(&row); err != nil {
			return domainbooking.Stats{}, err
		}
		stats.ByStatus[domainbooking.Status(row.Status)] = row.Count
	}
	return stats, byStatus.Err()
}

func listFilter(filter domainbooking.Filter) bson.M {
	query := bson.M{}
	if filter.VenueID != "" {
		query["venue_id"] = string(filter.VenueID)
	}
	if filter.CustomerID != "" {
		query["customer_id"] = filter.CustomerID
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if !filter.From.IsZero() {
		query["end_date"] = bson.M{"$gte": daterange.Day(filter.From).UnixMilli()}
	}
	if !filter.To.IsZero() {
		query["start_date"] = bson.M{"$lte": daterange.Day(filter.To).UnixMilli()}
	}
	return query
}

func sortSpec(order domainbooking.SortOrder) bson.D {
	switch order {
	case domainbooking.SortEventDate:
		return bson.D{{Key: "start_date", Value: 1}}
	case domainbooking.SortTotalDesc:
		return bson.D{{Key: "total_amount", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func decodeBookings(ctx context.Context, cur *mongo.Cursor) ([]*domainbooking.Booking, error) {
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID                 string         `bson:"_id"`
	VenueID            string         `bson:"venue_id"`
	CustomerID         string         `bson:"customer_id"`
	EventName          string         `bson:"event_name"`
	EventType          string         `bson:"event_type"`
	StartDate          int64          `bson:"start_date"`
	EndDate            int64          `bson:"end_date"`
	StartMinute        int            `bson:"start_minute"`
	EndMinute          int            `bson:"end_minute"`
	GuestCount         int            `bson:"guest_count"`
	Items              []itemDocument `bson:"items"`
	DiscountPct        float64        `bson:"discount_pct"`
	BaseAmount         int64          `bson:"base_amount"`
	AdditionalCharges  int64          `bson:"additional_charges"`
	Discount           int64          `bson:"discount"`
	TaxAmount          int64          `bson:"tax_amount"`
	TotalAmount        int64          `bson:"total_amount"`
	DepositAmount      int64          `bson:"deposit_amount"`
	BalanceAmount      int64          `bson:"balance_amount"`
	Status             string         `bson:"status"`
	PaymentStatus      string         `bson:"payment_status"`
	IsConfirmed        bool           `bson:"is_confirmed"`
	IsCancelled        bool           `bson:"is_cancelled"`
	CancellationReason string         `bson:"cancellation_reason,omitempty"`
	RefundAmount       int64          `bson:"refund_amount"`
	ConfirmedAt        *int64         `bson:"confirmed_at,omitempty"`
	CancelledAt        *int64         `bson:"cancelled_at,omitempty"`
	CreatedAt          int64          `bson:"created_at"`
	UpdatedAt          int64          `bson:"updated_at"`
	Version            int64          `bson:"version"`
}

type itemDocument struct {
	ID         string `bson:"id"`
	Type       string `bson:"type"`
	Quantity   int    `bson:"quantity"`
	UnitPrice  int64  `bson:"unit_price"`
	TotalPrice int64  `bson:"total_price"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:                 string(b.ID),
		VenueID:            string(b.VenueID),
		CustomerID:         b.CustomerID,
		EventName:          b.EventName,
		EventType:          b.EventType,
		StartDate:          b.Dates.Start.UnixMilli(),
		EndDate:            b.Dates.End.UnixMilli(),
		StartMinute:        b.Window.Start,
		EndMinute:          b.Window.End,
		GuestCount:         b.GuestCount,
		Items:              newItemDocuments(b.Items),
		DiscountPct:        b.DiscountPct,
		BaseAmount:         int64(b.BaseAmount),
		AdditionalCharges:  int64(b.AdditionalCharges),
		Discount:           int64(b.Discount),
		TaxAmount:          int64(b.TaxAmount),
		TotalAmount:        int64(b.TotalAmount),
		DepositAmount:      int64(b.DepositAmount),
		BalanceAmount:      int64(b.BalanceAmount),
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		IsConfirmed:        b.IsConfirmed,
		IsCancelled:        b.IsCancelled,
		CancellationReason: b.CancellationReason,
		RefundAmount:       int64(b.RefundAmount),
		ConfirmedAt:        timePtrToMilli(b.ConfirmedAt),
		CancelledAt:        timePtrToMilli(b.CancelledAt),
		CreatedAt:          b.CreatedAt.UnixMilli(),
		UpdatedAt:          b.UpdatedAt.UnixMilli(),
		Version:            b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:                 domainbooking.BookingID(d.ID),
		VenueID:            domainvenue.VenueID(d.VenueID),
		CustomerID:         d.CustomerID,
		EventName:          d.EventName,
		EventType:          d.EventType,
		Dates:              daterange.DateRange{Start: time.UnixMilli(d.StartDate).UTC(), End: time.UnixMilli(d.EndDate).UTC()},
		Window:             timewindow.Window{Start: d.StartMinute, End: d.EndMinute},
		GuestCount:         d.GuestCount,
		Items:              itemsToDomain(d.Items),
		DiscountPct:        d.DiscountPct,
		BaseAmount:         money.Amount(d.BaseAmount),
		AdditionalCharges:  money.Amount(d.AdditionalCharges),
		Discount:           money.Amount(d.Discount),
		TaxAmount:          money.Amount(d.TaxAmount),
		TotalAmount:        money.Amount(d.TotalAmount),
		DepositAmount:      money.Amount(d.DepositAmount),
		BalanceAmount:      money.Amount(d.BalanceAmount),
		Status:             domainbooking.Status(d.Status),
		PaymentStatus:      domainbooking.PaymentStatus(d.PaymentStatus),
		IsConfirmed:        d.IsConfirmed,
		IsCancelled:        d.IsCancelled,
		CancellationReason: d.CancellationReason,
		RefundAmount:       money.Amount(d.RefundAmount),
		ConfirmedAt:        milliToTimePtr(d.ConfirmedAt),
		CancelledAt:        milliToTimePtr(d.CancelledAt),
		CreatedAt:          time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:          time.UnixMilli(d.UpdatedAt).UTC(),
		Version:            d.Version,
	}
}

func newItemDocuments(items []pricing.LineItem) []itemDocument {
	out := make([]itemDocument, 0, len(items))
	for _, item := range items {
		out = append(out, itemDocument{
			ID:         item.ID,
			Type:       string(item.Type),
			Quantity:   item.Quantity,
			UnitPrice:  int64(item.UnitPrice),
			TotalPrice: int64(item.TotalPrice),
		})
	}
	return out
}

func itemsToDomain(items []itemDocument) []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, pricing.LineItem{
			ID:         item.ID,
			Type:       pricing.ItemType(item.Type),
			Quantity:   item.Quantity,
			UnitPrice:  money.Amount(item.UnitPrice),
			TotalPrice: money.Amount(item.TotalPrice),
		})
	}
	return out
}

func timePtrToMilli(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func milliToTimePtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}
