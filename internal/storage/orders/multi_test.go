package orders

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/vadiminshakov/buylow/internal/domain"
)

type countingSink struct {
	saved int
	err   error
}

func (s *countingSink) Save(context.Context, domain.OrderRecord) error {
	s.saved++
	return s.err
}

func TestMulti_SavesToEverySink(t *testing.T) {
	failing := &countingSink{err: errors.New("down")}
	ok := &countingSink{}

	err := Multi{failing, ok}.Save(context.Background(), testRecord("1", "AAA", 1))
	assert.Error(t, err)
	assert.Equal(t, 1, failing.saved)
	assert.Equal(t, 1, ok.saved)
}

func TestMulti_Empty(t *testing.T) {
	assert.NoError(t, Multi(nil).Save(context.Background(), testRecord("1", "AAA", 1)))
}
