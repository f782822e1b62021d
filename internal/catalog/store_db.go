package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

const (
	createItemsTable = `CREATE TABLE IF NOT EXISTS items (position INTEGER NOT NULL, id BIGINT PRIMARY KEY, name TEXT NOT NULL, price DOUBLE PRECISION NOT NULL, weight DOUBLE PRECISION NOT NULL)`
	selectItems      = `SELECT id, name, price, weight FROM items ORDER BY position ASC`
	deleteItems      = `DELETE FROM items`
	insertItem       = `INSERT INTO items (position, id, name, price, weight) VALUES ($1, $2, $3, $4, $5)`
)

// PostgresStore keeps the catalog in the items table. Storage order is
// carried by the position column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Init(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, createItemsTable)
		return errors.Wrap(err, "create items table")
	})
}

func (s *PostgresStore) Load(ctx context.Context) ([]Item, error) {
	var out []Item

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, selectItems)
		if err != nil {
			return errors.Wrap(err, "query items")
		}
		defer rows.Close()

		out = make([]Item, 0, 16)
		for rows.Next() {
			var it Item
			if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.Weight); err != nil {
				return errors.Wrap(err, "scan item")
			}
			out = append(out, it)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Save replaces every row in one transaction.
func (s *PostgresStore) Save(ctx context.Context, items []Item) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return errors.Wrap(err, "begin")
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, deleteItems); err != nil {
			return errors.Wrap(err, "clear items")
		}

		stmt, err := tx.PrepareContext(ctx, insertItem)
		if err != nil {
			return errors.Wrap(err, "prepare insert")
		}
		defer stmt.Close()

		for i, it := range items {
			if _, err := stmt.ExecContext(ctx, i, it.ID, it.Name, it.Price, it.Weight); err != nil {
				return errors.Wrapf(err, "insert item %d", it.ID)
			}
		}

		return errors.Wrap(tx.Commit(), "commit")
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
