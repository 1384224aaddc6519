package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainquotation "venuebook/internal/domain/quotation"
	"venuebook/internal/domain/shared/daterange"
	"venuebook/internal/domain/shared/money"
	"venuebook/internal/domain/shared/timewindow"
	domainvenue "venuebook/internal/domain/venue"
)

type QuotationRepository struct {
	col *mongo.Collection
}

func NewQuotationRepository(db *mongo.Database) *QuotationRepository {
	return &QuotationRepository{col: db.Collection("quotations")}
}

// EnsureIndexes enforces quotation number uniqueness at the store.
func (r *QuotationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "valid_until", Value: 1}}},
	})
	return err
}

func (r *QuotationRepository) ByID(ctx context.Context, id domainquotation.QuotationID) (*domainquotation.Quotation, error) {
	var doc quotationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainquotation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *QuotationRepository) Save(ctx context.Context, q *domainquotation.Quotation) error {
	doc := newQuotationDocument(q)
	filter := bson.M{"_id": doc.ID, "version": q.Version}
	doc.Version = q.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainquotation.ErrConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainquotation.ErrConflict
	}
	q.Version = doc.Version
	return nil
}

func (r *QuotationRepository) List(ctx context.Context, filter domainquotation.Filter) ([]*domainquotation.Quotation, int64, error) {
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
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var out []*domainquotation.Quotation
	for cur.Next(ctx) {
		var doc quotationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, total, cur.Err()
}

func (r *QuotationRepository) DueForExpiry(ctx context.Context, now time.Time) ([]*domainquotation.Quotation, error) {
	query := bson.M{
		"status":      bson.M{"$in": []string{string(domainquotation.StatusDraft), string(domainquotation.StatusSent)}},
		"valid_until": bson.M{"$lt": now.UTC().UnixMilli()},
	}
	cur, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainquotation.Quotation
	for cur.Next(ctx) {
		var doc quotationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type quotationDocument struct {
	ID             string         `bson:"_id"`
	Number         string         `bson:"number"`
	VenueID        string         `bson:"venue_id"`
	CustomerID     string         `bson:"customer_id"`
	EventName      string         `bson:"event_name"`
	EventType      string         `bson:"event_type"`
	StartDate      int64          `bson:"start_date"`
	EndDate        int64          `bson:"end_date"`
	StartMinute    int            `bson:"start_minute"`
	EndMinute      int            `bson:"end_minute"`
	GuestCount     int            `bson:"guest_count"`
	Items          []itemDocument `bson:"items"`
	DiscountPct    float64        `bson:"discount_pct"`
	BaseAmount     int64          `bson:"base_amount"`
	Subtotal       int64          `bson:"subtotal"`
	DiscountAmount int64          `bson:"discount_amount"`
	TaxAmount      int64          `bson:"tax_amount"`
	TotalAmount    int64          `bson:"total_amount"`
	ValidUntil     int64          `bson:"valid_until"`
	Status         string         `bson:"status"`
	IsAccepted     bool           `bson:"is_accepted"`
	IsExpired      bool           `bson:"is_expired"`
	AcceptedAt     *int64         `bson:"accepted_at,omitempty"`
	CreatedAt      int64          `bson:"created_at"`
	UpdatedAt      int64          `bson:"updated_at"`
	Version        int64          `bson:"version"`
}

func newQuotationDocument(q *domainquotation.Quotation) quotationDocument {
	return quotationDocument{
		ID:             string(q.ID),
		Number:         q.Number,
		VenueID:        string(q.VenueID),
		CustomerID:     q.CustomerID,
		EventName:      q.EventName,
		EventType:      q.EventType,
		StartDate:      q.Dates.Start.UnixMilli(),
		EndDate:        q.Dates.End.UnixMilli(),
		StartMinute:    q.Window.Start,
		EndMinute:      q.Window.End,
		GuestCount:     q.GuestCount,
		Items:          newItemDocuments(q.Items),
		DiscountPct:    q.DiscountPct,
		BaseAmount:     int64(q.BaseAmount),
		Subtotal:       int64(q.Subtotal),
		DiscountAmount: int64(q.DiscountAmount),
		TaxAmount:      int64(q.TaxAmount),
		TotalAmount:    int64(q.TotalAmount),
		ValidUntil:     q.ValidUntil.UnixMilli(),
		Status:         string(q.Status),
		IsAccepted:     q.IsAccepted,
		IsExpired:      q.IsExpired,
		AcceptedAt:     timePtrToMilli(q.AcceptedAt),
		CreatedAt:      q.CreatedAt.UnixMilli(),
		UpdatedAt:      q.UpdatedAt.UnixMilli(),
		Version:        q.Version,
	}
}

func (d quotationDocument) toAggregate() *domainquotation.Quotation {
	return &domainquotation.Quotation{
		ID:             domainquotation.QuotationID(d.ID),
		Number:         d.Number,
		VenueID:        domainvenue.VenueID(d.VenueID),
		CustomerID:     d.CustomerID,
		EventName:      d.EventName,
		EventType:      d.EventType,
		Dates:          daterange.DateRange{Start: time.UnixMilli(d.StartDate).UTC(), End: time.UnixMilli(d.EndDate).UTC()},
		Window:         timewindow.Window{Start: d.StartMinute, End: d.EndMinute},
		GuestCount:     d.GuestCount,
		Items:          itemsToDomain(d.Items),
		DiscountPct:    d.DiscountPct,
		BaseAmount:     money.Amount(d.BaseAmount),
		Subtotal:       money.Amount(d.Subtotal),
		DiscountAmount: money.Amount(d.DiscountAmount),
		TaxAmount:      money.Amount(d.TaxAmount),
		TotalAmount:    money.Amount(d.TotalAmount),
		ValidUntil:     time.UnixMilli(d.ValidUntil).UTC(),
		Status:         domainquotation.Status(d.Status),
		IsAccepted:     d.IsAccepted,
		IsExpired:      d.IsExpired,
		AcceptedAt:     milliToTimePtr(d.AcceptedAt),
		CreatedAt:      time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:      time.UnixMilli(d.UpdatedAt).UTC(),
		Version:        d.Version,
	}
}
