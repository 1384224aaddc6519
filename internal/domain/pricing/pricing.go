package pricing

import (
	"time"

	"venuebook/internal/domain/shared/money"
	"venuebook/internal/domain/shared/timewindow"
)

// ItemType enumerates the priced add-ons a quotation or booking can carry.
type ItemType string

const (
	ItemHallRental  ItemType = "HALL_RENTAL"
	ItemChair       ItemType = "CHAIR"
	ItemTable       ItemType = "TABLE"
	ItemDecoration  ItemType = "DECORATION"
	ItemLighting    ItemType = "LIGHTING"
	ItemAVEquipment ItemType = "AV_EQUIPMENT"
	ItemCatering    ItemType = "CATERING"
	ItemSecurity    ItemType = "SECURITY"
	ItemGenerator   ItemType = "GENERATOR"
	ItemCleaning    ItemType = "CLEANING"
	ItemParking     ItemType = "PARKING"
	ItemOther       ItemType = "OTHER"
)

var itemTypes = map[ItemType]struct{}{
	ItemHallRental: {}, ItemChair: {}, ItemTable: {}, ItemDecoration: {},
	ItemLighting: {}, ItemAVEquipment: {}, ItemCatering: {}, ItemSecurity: {},
	ItemGenerator: {}, ItemCleaning: {}, ItemParking: {}, ItemOther: {},
}

func (t ItemType) Valid() bool {
	_, ok := itemTypes[t]
	return ok
}

// GuestDependent reports whether the item quantity scales with attendance.
func (t ItemType) GuestDependent() bool {
	switch t {
	case ItemChair, ItemCatering, ItemCleaning:
		return true
	}
	return false
}

// LineItem is a priced add-on owned by exactly one quotation or booking.
type LineItem struct {
	ID         string
	Type       ItemType
	Quantity   int
	UnitPrice  money.Amount
	TotalPrice money.Amount
}

// Rates is the configured pricing table. Item types present in ItemRates
// have their unit price fixed by configuration regardless of what the
// request supplied; absent types keep the supplied price.
type Rates struct {
	ItemRates  map[ItemType]money.Amount
	TaxPct     float64
	DepositPct float64
}

// DefaultRates mirrors the standard rate table.
func DefaultRates() Rates {
	return Rates{
		ItemRates: map[ItemType]money.Amount{
			ItemChair:       50,
			ItemDecoration:  5000,
			ItemLighting:    3000,
			ItemAVEquipment: 4000,
			ItemCatering:    500,
			ItemSecurity:    1500,
			ItemGenerator:   2500,
		},
		TaxPct:     18,
		DepositPct: 30,
	}
}

const weekendMultiplier = 1.5

// Input carries everything Calculate needs; the venue's base rate is
// resolved by the caller so the engine stays free of I/O.
type Input struct {
	BaseRate    money.Amount
	EventDate   time.Time
	Window      timewindow.Window
	GuestCount  int
	Items       []LineItem
	DiscountPct float64
}

// Breakdown is the fully priced result. Total always equals
// Subtotal - DiscountAmount + TaxAmount.
type Breakdown struct {
	BaseAmount     money.Amount
	Items          []LineItem
	Subtotal       money.Amount
	DiscountAmount money.Amount
	TaxAmount      money.Amount
	Total          money.Amount
	Deposit        money.Amount
	Balance        money.Amount
	Categories     map[ItemType]money.Amount
}

// Engine computes deterministic price breakdowns from a configured rate
// table. It performs no I/O and never fails on valid input.
type Engine struct {
	rates Rates
}

func NewEngine(rates Rates) *Engine {
	if rates.ItemRates == nil {
		rates.ItemRates = map[ItemType]money.Amount{}
	}
	return &Engine{rates: rates}
}

// Calculate prices the proposed event. The base rate is surcharged 1.5x on
// Saturday and Sunday before the duration tier applies: up to 4 hours at
// the flat rate, up to 8 hours at 1.5x, anything longer at 2x.
func (e *Engine) Calculate(in Input) Breakdown {
	base := in.BaseRate
	switch in.EventDate.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		base = money.Scale(base, weekendMultiplier)
	}
	base = money.Scale(base, durationFactor(in.Window.Hours()))

	items := make([]LineItem, 0, len(in.Items))
	categories := map[ItemType]money.Amount{ItemHallRental: base}
	var itemsTotal money.Amount
	for _, item := range in.Items {
		priced := item
		if rate, ok := e.rates.ItemRates[item.Type]; ok {
			priced.UnitPrice = rate
		}
		if item.Type.GuestDependent() && priced.Quantity < in.GuestCount {
			priced.Quantity = in.GuestCount
		}
		priced.TotalPrice = priced.UnitPrice * money.Amount(priced.Quantity)
		itemsTotal += priced.TotalPrice
		categories[priced.Type] += priced.TotalPrice
		items = append(items, priced)
	}

	subtotal := base + itemsTotal
	discount := money.Percent(subtotal, in.DiscountPct)
	tax := money.Percent(subtotal-discount, e.rates.TaxPct)
	total := subtotal - discount + tax
	deposit := money.Percent(total, e.rates.DepositPct)

	return Breakdown{
		BaseAmount:     base,
		Items:          items,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          total,
		Deposit:        deposit,
		Balance:        total - deposit,
		Categories:     categories,
	}
}

func durationFactor(hours float64) float64 {
	switch {
	case hours <= 4:
		return 1
	case hours <= 8:
		return 1.5
	default:
		return 2
	}
}
