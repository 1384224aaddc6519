package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainbooking "venuebook/internal/domain/booking"
	"venuebook/internal/domain/pricing"
	domainquotation "venuebook/internal/domain/quotation"
	"venuebook/internal/domain/shared/daterange"
	domainvenue "venuebook/internal/domain/venue"
)

// VenueRepository is an in-memory venue store used by tests and the
// storage-less dev build.
type VenueRepository struct {
	mu    sync.RWMutex
	items map[domainvenue.VenueID]*domainvenue.Venue
}

func NewVenueRepository() *VenueRepository {
	return &VenueRepository{items: make(map[domainvenue.VenueID]*domainvenue.Venue)}
}

func (r *VenueRepository) ByID(ctx context.Context, id domainvenue.VenueID) (*domainvenue.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		return nil, domainvenue.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *VenueRepository) Put(v *domainvenue.Venue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *v
	r.items[v.ID] = &clone
}

// BlockRepository stores administrative availability blocks.
type BlockRepository struct {
	mu     sync.RWMutex
	blocks []domainvenue.Block
}

func NewBlockRepository() *BlockRepository {
	return &BlockRepository{}
}

func (r *BlockRepository) ForDate(ctx context.Context, id domainvenue.VenueID, date time.Time) ([]domainvenue.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	day := daterange.Day(date)
	var out []domainvenue.Block
	for _, b := range r.blocks {
		if b.VenueID == id && daterange.Day(b.Date).Equal(day) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *BlockRepository) Put(b domainvenue.Block) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = append(r.blocks, b)
}

// BookingRepository keeps bookings keyed by id with naive optimistic
// versioning, mirroring the version CAS the persistent store performs.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	clone := cloneBooking(b)
	return clone, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[b.ID]; ok && existing.Version != b.Version {
		return domainbooking.ErrConflict
	}
	b.Version++
	r.items[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) ActiveForVenueDate(ctx context.Context, id domainvenue.VenueID, date time.Time) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.VenueID != id || b.IsCancelled {
			continue
		}
		if b.Dates.ContainsDate(date) {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []*domainbooking.Booking
	for _, b := range r.items {
		if !matchBooking(b, filter) {
			continue
		}
		matches = append(matches, cloneBooking(b))
	}
	sortBookings(matches, filter.Sort)
	total := int64(len(matches))
	matches = paginate(matches, filter.Offset, filter.Limit)
	return matches, total, nil
}

func (r *BookingRepository) Stats(ctx context.Context, filter domainbooking.Filter) (domainbooking.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := domainbooking.Stats{ByStatus: make(map[domainbooking.Status]int64)}
	for _, b := range r.items {
		if !matchBooking(b, filter) {
			continue
		}
		stats.Total++
		stats.ByStatus[b.Status]++
		stats.RevenueTotal += b.TotalAmount
	}
	if stats.Total > 0 {
		stats.AverageTotal = float64(stats.RevenueTotal) / float64(stats.Total)
	}
	return stats, nil
}

func matchBooking(b *domainbooking.Booking, filter domainbooking.Filter) bool {
	if filter.VenueID != "" && b.VenueID != filter.VenueID {
		return false
	}
	if filter.CustomerID != "" && b.CustomerID != filter.CustomerID {
		return false
	}
	if filter.Status != "" && b.Status != filter.Status {
		return false
	}
	if !filter.From.IsZero() && b.Dates.End.Before(daterange.Day(filter.From)) {
		return false
	}
	if !filter.To.IsZero() && b.Dates.Start.After(daterange.Day(filter.To)) {
		return false
	}
	return true
}

func sortBookings(items []*domainbooking.Booking, order domainbooking.SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		switch order {
		case domainbooking.SortEventDate:
			return items[i].Dates.Start.Before(items[j].Dates.Start)
		case domainbooking.SortTotalDesc:
			return items[i].TotalAmount > items[j].TotalAmount
		default:
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
	})
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	clone := *b
	clone.Items = append([]pricing.LineItem(nil), b.Items...)
	return &clone
}

// QuotationRepository keeps quotations keyed by id.
type QuotationRepository struct {
	mu    sync.RWMutex
	items map[domainquotation.QuotationID]*domainquotation.Quotation
}

func NewQuotationRepository() *QuotationRepository {
	return &QuotationRepository{items: make(map[domainquotation.QuotationID]*domainquotation.Quotation)}
}

func (r *QuotationRepository) ByID(ctx context.Context, id domainquotation.QuotationID) (*domainquotation.Quotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.items[id]
	if !ok {
		return nil, domainquotation.ErrNotFound
	}
	return cloneQuotation(q), nil
}

func (r *QuotationRepository) Save(ctx context.Context, q *domainquotation.Quotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[q.ID]; ok && existing.Version != q.Version {
		return domainquotation.ErrConflict
	}
	q.Version++
	r.items[q.ID] = cloneQuotation(q)
	return nil
}

func (r *QuotationRepository) List(ctx context.Context, filter domainquotation.Filter) ([]*domainquotation.Quotation, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []*domainquotation.Quotation
	for _, q := range r.items {
		if filter.VenueID != "" && q.VenueID != filter.VenueID {
			continue
		}
		if filter.CustomerID != "" && q.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && q.Status != filter.Status {
			continue
		}
		matches = append(matches, cloneQuotation(q))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := int64(len(matches))
	matches = paginate(matches, filter.Offset, filter.Limit)
	return matches, total, nil
}

func (r *QuotationRepository) DueForExpiry(ctx context.Context, now time.Time) ([]*domainquotation.Quotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainquotation.Quotation
	for _, q := range r.items {
		if q.IsAccepted || q.IsExpired {
			continue
		}
		if q.Status == domainquotation.StatusRejected {
			continue
		}
		if q.ValidUntil.Before(now) {
			out = append(out, cloneQuotation(q))
		}
	}
	return out, nil
}

func cloneQuotation(q *domainquotation.Quotation) *domainquotation.Quotation {
	clone := *q
	clone.Items = append([]pricing.LineItem(nil), q.Items...)
	return &clone
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
