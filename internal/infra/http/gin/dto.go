package ginserver

import (
	"fmt"
	"time"

	"venuebook/internal/domain/pricing"
	"venuebook/internal/domain/shared/money"
)

const dateLayout = "2006-01-02"

type lineItemDTO struct {
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

func toLineItems(dtos []lineItemDTO) []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, pricing.LineItem{
			Type:      pricing.ItemType(d.Type),
			Quantity:  d.Quantity,
			UnitPrice: money.Amount(d.UnitPrice),
		})
	}
	return items
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return t, nil
}
