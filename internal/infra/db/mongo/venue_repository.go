package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"venuebook/internal/domain/shared/money"
	"venuebook/internal/domain/shared/timewindow"
	domainvenue "venuebook/internal/domain/venue"
)

// VenueRepository reads the venue catalogue maintained by the admin side.
type VenueRepository struct {
	col *mongo.Collection
}

func NewVenueRepository(db *mongo.Database) *VenueRepository {
	return &VenueRepository{col: db.Collection("venues")}
}

func (r *VenueRepository) ByID(ctx context.Context, id domainvenue.VenueID) (*domainvenue.Venue, error) {
	var doc venueDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainvenue.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

type venueDocument struct {
	ID          string `bson:"_id"`
	Name        string `bson:"name"`
	Capacity    int    `bson:"capacity"`
	Location    string `bson:"location"`
	BaseRate    int64  `bson:"base_rate"`
	HourlyRate  int64  `bson:"hourly_rate,omitempty"`
	DailyRate   int64  `bson:"daily_rate,omitempty"`
	WeekendRate int64  `bson:"weekend_rate,omitempty"`
	Active      bool   `bson:"active"`
	Available   bool   `bson:"available"`
}

func (d venueDocument) toDomain() *domainvenue.Venue {
	return &domainvenue.Venue{
		ID:       domainvenue.VenueID(d.ID),
		Name:     d.Name,
		Capacity: d.Capacity,
		Location: d.Location,
		Rates: domainvenue.RateCard{
			BaseRate:    money.Amount(d.BaseRate),
			HourlyRate:  money.Amount(d.HourlyRate),
			DailyRate:   money.Amount(d.DailyRate),
			WeekendRate: money.Amount(d.WeekendRate),
		},
		Active:    d.Active,
		Available: d.Available,
	}
}

// BlockRepository reads administrative availability blocks.
type BlockRepository struct {
	col *mongo.Collection
}

func NewBlockRepository(db *mongo.Database) *BlockRepository {
	return &BlockRepository{col: db.Collection("availability_blocks")}
}

func (r *BlockRepository) ForDate(ctx context.Context, id domainvenue.VenueID, date time.Time) ([]domainvenue.Block, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	cur, err := r.col.Find(ctx, bson.M{"venue_id": string(id), "date": day.UnixMilli()})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []domainvenue.Block
	for cur.Next(ctx) {
		var doc blockDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

type blockDocument struct {
	VenueID string `bson:"venue_id"`
	Date    int64  `bson:"date"`
	Start   int    `bson:"start"`
	End     int    `bson:"end"`
	Reason  string `bson:"reason,omitempty"`
}

func (d blockDocument) toDomain() domainvenue.Block {
	return domainvenue.Block{
		VenueID: domainvenue.VenueID(d.VenueID),
		Date:    time.UnixMilli(d.Date).UTC(),
		Window:  timewindow.Window{Start: d.Start, End: d.End},
		Reason:  d.Reason,
	}
}
