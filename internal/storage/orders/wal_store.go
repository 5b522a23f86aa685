// Package orders persists placed orders for later review.
package orders

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/buylow/internal/domain"
)

const (
	segmentLimit = 100
	maxSegments  = 10

	orderKeyPrefix = "order_"
)

// WALStore appends placed orders to a local write-ahead log.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed order store in dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		return nil, errors.New("order journal directory is required")
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "orders_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init orders WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the order record.
func (s *WALStore) Save(_ context.Context, record domain.OrderRecord) error {
	if s == nil || s.wal == nil {
		return errors.New("order store is not initialized")
	}
	if record.Symbol == "" {
		return errors.New("order record symbol is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal order record")
	}

	key := orderKeyPrefix + record.Symbol

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// Orders returns every order record written after index, oldest first.
func (s *WALStore) Orders(index uint64) ([]domain.OrderRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("order store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.OrderRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			// segments older than maxSegments are rotated away
			continue
		}
		if !strings.HasPrefix(key, orderKeyPrefix) {
			continue
		}

		var record domain.OrderRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, errors.Wrap(err, "decode order record")
		}
		records = append(records, record)
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("order store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
