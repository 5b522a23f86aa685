package orders

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/buylow/internal/domain"
)

// Sink stores order records.
type Sink interface {
	Save(ctx context.Context, record domain.OrderRecord) error
}

// Multi fans a record out to every sink and reports the first failure.
// All sinks are attempted even if one fails.
type Multi []Sink

// Save writes the record to each sink.
func (m Multi) Save(ctx context.Context, record domain.OrderRecord) error {
	var first error
	for _, sink := range m {
		if err := sink.Save(ctx, record); err != nil && first == nil {
			first = errors.Wrapf(err, "sink %T", sink)
		}
	}
	return first
}
