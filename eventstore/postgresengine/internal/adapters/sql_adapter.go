package adapters

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var serializableTxOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}

// SQLAdapter implements DBAdapter for database/sql, typically backed by lib/pq.
type SQLAdapter struct {
	db *sql.DB
}

func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (s *SQLAdapter) ExecSerializable(ctx context.Context, query string) (DBResult, error) {
	tx, err := s.db.BeginTx(ctx, serializableTxOptions)
	if err != nil {
		return nil, err
	}

	return execInTx(ctx, tx, query)
}

func (s *SQLAdapter) Exec(ctx context.Context, query string) error {
	_, err := s.db.ExecContext(ctx, query)

	return err
}

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db *sqlx.DB
}

func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

func (s *SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (s *SQLXAdapter) ExecSerializable(ctx context.Context, query string) (DBResult, error) {
	tx, err := s.db.BeginTxx(ctx, serializableTxOptions)
	if err != nil {
		return nil, err
	}

	return execInTx(ctx, tx.Tx, query)
}

func (s *SQLXAdapter) Exec(ctx context.Context, query string) error {
	_, err := s.db.ExecContext(ctx, query)

	return err
}

// *sql.Rows already satisfies DBRows.
var _ DBRows = (*sql.Rows)(nil)

func execInTx(ctx context.Context, tx *sql.Tx, query string) (DBResult, error) {
	result, err := tx.ExecContext(ctx, query)
	if err != nil {
		return nil, errors.Join(err, tx.Rollback())
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return result, nil
}
