package orders

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Options selects the order logs to open.
type Options struct {
	// WALDir enables the local journal.
	WALDir string
	// Postgres enables the database log at PostgresDSN.
	Postgres    bool
	PostgresDSN string
}

// ErrMissingDSN postgres logging is enabled without a connection string.
var ErrMissingDSN = errors.New("postgres order log enabled without a connection string")

var connectPostgres = OpenPostgresStore

// Set the order logs opened for a run.
type Set struct {
	sinks   Multi
	closers []func() error
	logger  *zap.Logger
}

// Open opens every order log enabled in opts. On failure the logs opened so far are closed.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	set := &Set{logger: logger}

	if opts.WALDir != "" {
		wal, err := NewWALStore(opts.WALDir)
		if err != nil {
			return nil, err
		}
		set.add(wal, wal.Close)
	}

	if opts.Postgres {
		if opts.PostgresDSN == "" {
			set.Close()
			return nil, ErrMissingDSN
		}
		pg, err := connectPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			set.Close()
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			set.Close()
			return nil, err
		}
		set.add(pg, pg.Close)
	}

	return set, nil
}

func (s *Set) add(sink Sink, closer func() error) {
	s.sinks = append(s.sinks, sink)
	s.closers = append(s.closers, closer)
}

// Sink returns nil when no order log is enabled.
func (s *Set) Sink() Sink {
	if s == nil || len(s.sinks) == 0 {
		return nil
	}
	return s.sinks
}

// Len returns the number of open order logs.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.sinks)
}

// Close closes every order log, logging failures.
func (s *Set) Close() {
	if s == nil {
		return
	}
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.logger.Warn("failed to close order log", zap.Error(err))
		}
	}
	s.closers = nil
}
