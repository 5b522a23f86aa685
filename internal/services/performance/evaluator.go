// Package performance turns baseline and current prices into percent-change records
// and picks the worst performer of a watchlist.
package performance

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buylow/internal/domain"
)

// Report evaluation result for a watchlist.
type Report struct {
	// Records one record per watchlist symbol, in watchlist order.
	Records []domain.PerformanceRecord
	// Worst record with the lowest percent change; the earliest watchlist symbol wins ties.
	Worst domain.PerformanceRecord
}

// Evaluate computes a performance record for every watchlist symbol.
// current may contain symbols outside the watchlist, they are ignored.
func Evaluate(watchlist []string, baseline, current map[string]decimal.Decimal) (Report, error) {
	if len(watchlist) == 0 {
		return Report{}, domain.ErrEmptyWatchlist
	}

	records := make([]domain.PerformanceRecord, 0, len(watchlist))
	worst := -1
	for _, symbol := range watchlist {
		base, ok := baseline[symbol]
		if !ok {
			return Report{}, errors.Wrapf(&domain.InvalidBaselineError{Symbol: symbol, Price: decimal.Zero},
				"no baseline fetched for %s", symbol)
		}
		price, ok := current[symbol]
		if !ok {
			return Report{}, &domain.MissingPriceError{Symbol: symbol}
		}

		record, err := domain.NewPerformanceRecord(domain.PriceSample{
			Symbol:        symbol,
			BaselinePrice: base,
			CurrentPrice:  price,
		})
		if err != nil {
			return Report{}, err
		}

		records = append(records, record)
		// strict comparison keeps the first symbol on ties
		if worst < 0 || record.PercentChange.LessThan(records[worst].PercentChange) {
			worst = len(records) - 1
		}
	}

	return Report{Records: records, Worst: records[worst]}, nil
}

// Sorted returns a copy of the records ordered by percent change, worst first.
// Equal changes keep watchlist order, so sorting is idempotent.
func (r Report) Sorted() []domain.PerformanceRecord {
	sorted := make([]domain.PerformanceRecord, len(r.Records))
	copy(sorted, r.Records)
	SortByChange(sorted)
	return sorted
}

// SortByChange stable-sorts records ascending by percent change.
func SortByChange(records []domain.PerformanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PercentChange.LessThan(records[j].PercentChange)
	})
}
