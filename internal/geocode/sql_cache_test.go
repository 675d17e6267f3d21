package geocode

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLCacheGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	query := regexp.QuoteMeta(`SELECT address, resolved FROM reverse_geocode_cache WHERE cell_key = $1`)
	mock.ExpectQuery(query).
		WithArgs("s2_1").
		WillReturnRows(sqlmock.NewRows([]string{"address", "resolved"}).AddRow("역삼동 테헤란로", true))
	mock.ExpectQuery(query).
		WithArgs("s2_2").
		WillReturnRows(sqlmock.NewRows([]string{"address", "resolved"}))
	mock.ExpectQuery(query).
		WithArgs("s2_3").
		WillReturnError(errors.New("connection reset"))

	c := NewSQLCache(db)
	ctx := context.Background()

	e, ok, err := c.Get(ctx, "s2_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Entry{Text: "역삼동 테헤란로", Resolved: true}, e)

	_, ok, err = c.Get(ctx, "s2_2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.Get(ctx, "s2_3")
	assert.ErrorContains(t, err, "connection reset")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCachePut(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO reverse_geocode_cache`).
		WithArgs("s2_1", "", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewSQLCache(db).Put(context.Background(), "s2_1", Entry{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCacheMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS reverse_geocode_cache`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewSQLCache(db).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCacheNilDB(t *testing.T) {
	c := &SQLCache{}
	_, _, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, c.Put(context.Background(), "k", Entry{}))
}
