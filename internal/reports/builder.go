package reports

import (
	"time"

	"github.com/google/uuid"

	"github.com/tallyhq/tally/internal/records"
)

// quantityThreshold is the reporting cutoff: only items with a strictly
// greater quantity are retained.
const quantityThreshold = 10

// Build applies the reporting rules to validated items and produces the
// report document. Items with quantity > 10 are retained in input order,
// each retained item's TotalPrice is recomputed as quantity * price, and the
// summary totals are accumulated in retained order. Build stamps a
// provisional report id; the pipeline overwrites it with the id derived from
// the source object key.
func Build(items []records.Item) *Document {
	retained := make([]records.Item, 0, len(items))
	for _, item := range items {
		if item.Quantity > quantityThreshold {
			item.TotalPrice = item.Quantity * item.Price
			retained = append(retained, item)
		}
	}

	summary := Summary{TotalItems: len(retained)}
	for _, item := range retained {
		summary.GrandTotal += item.TotalPrice
	}

	return &Document{
		Metadata: Metadata{
			ReportID:    uuid.NewString(),
			ProcessedAt: time.Now().UTC(),
		},
		Items:   retained,
		Summary: summary,
	}
}
