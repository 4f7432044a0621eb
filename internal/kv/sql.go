package kv

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLStore keeps keys in the kv table created by db.Open. The same
// statements run on sqlite and postgres.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQL(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE name=$1`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv (name,value,updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (name) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`,
		key, value, s.now().Unix())
	return err
}
