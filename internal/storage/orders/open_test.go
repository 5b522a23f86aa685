package orders

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubConnect(t *testing.T, store *PostgresStore, err error) {
	t.Helper()
	prev := connectPostgres
	connectPostgres = func(context.Context, string) (*PostgresStore, error) {
		return store, err
	}
	t.Cleanup(func() { connectPostgres = prev })
}

func TestOpen_Nothing(t *testing.T) {
	set, err := Open(context.Background(), Options{}, nil)
	require.NoError(t, err)
	assert.Nil(t, set.Sink())
	assert.Equal(t, 0, set.Len())
	set.Close()
}

func TestOpen_WAL(t *testing.T) {
	dir := t.TempDir()
	set, err := Open(context.Background(), Options{WALDir: dir}, nil)
	require.NoError(t, err)
	require.NotNil(t, set.Sink())
	require.NoError(t, set.Sink().Save(context.Background(), testRecord("1", "AAA", 5)))
	set.Close()

	store, err := NewWALStore(dir)
	require.NoError(t, err)
	defer store.Close()
	records, err := store.Orders(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "AAA", records[0].Symbol)
}

func TestOpen_PostgresWithoutDSN(t *testing.T) {
	set, err := Open(context.Background(), Options{WALDir: t.TempDir(), Postgres: true}, nil)
	require.ErrorIs(t, err, ErrMissingDSN)
	assert.Nil(t, set)
}

func TestOpen_PostgresConnectFailure(t *testing.T) {
	stubConnect(t, nil, errors.New("connection refused"))

	_, err := Open(context.Background(), Options{Postgres: true, PostgresDSN: "postgres://x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOpen_SchemaFailureClosesDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	stubConnect(t, NewPostgresStore(sqlx.NewDb(db, "postgres")), nil)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS orders")).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectClose()

	_, err = Open(context.Background(), Options{Postgres: true, PostgresDSN: "postgres://x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create orders schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_WALAndPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	stubConnect(t, NewPostgresStore(sqlx.NewDb(db, "postgres")), nil)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS orders")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectClose()

	set, err := Open(context.Background(), Options{WALDir: t.TempDir(), Postgres: true, PostgresDSN: "postgres://x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	require.NoError(t, set.Sink().Save(context.Background(), testRecord("1", "AAA", 5)))

	set.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}
