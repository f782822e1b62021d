package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresStore(db), mock
}

func TestPostgresStore_Init(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS items").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Init(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadKeepsPositionOrder(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "name", "price", "weight"}).
		AddRow(int64(4), "D", 4.5, 0.25).
		AddRow(int64(2), "B", 2.0, 1.0)
	mock.ExpectQuery("SELECT id, name, price, weight FROM items ORDER BY position ASC").
		WillReturnRows(rows)

	items, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Item{
		{ID: 4, Name: "D", Price: 4.5, Weight: 0.25},
		{ID: 2, Name: "B", Price: 2, Weight: 1},
	}, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, price, weight FROM items").
		WillReturnError(errors.New("connection refused"))

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReplacesRows(t *testing.T) {
	s, mock := newMockStore(t)

	items := []Item{
		{ID: 7, Name: "G", Price: 7, Weight: 0.7},
		{ID: 1, Name: "A", Price: 1, Weight: 0.1},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM items").WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare("INSERT INTO items")
	prep.ExpectExec().WithArgs(0, int64(7), "G", 7.0, 0.7).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(1, int64(1), "A", 1.0, 0.1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Save(context.Background(), items))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRollsBackOnInsertError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM items").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO items")
	prep.ExpectExec().WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := s.Save(context.Background(), []Item{{ID: 1, Name: "A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert item 1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ping(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectPing()
	require.NoError(t, s.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	require.Error(t, s.Ping(context.Background()))

	require.NoError(t, mock.ExpectationsWereMet())
}
