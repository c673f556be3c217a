package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// KVRepository implements domain.KeyValueStore on the kv_store table.
type KVRepository struct {
	db *sql.DB
}

func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT v FROM kv_store WHERE k=? LIMIT 1;`
	var v []byte
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO kv_store (k, v, updated_at)
VALUES (?,?,?)
ON DUPLICATE KEY UPDATE v=VALUES(v), updated_at=VALUES(updated_at);
`
	_, err := r.db.ExecContext(ctx, q, key, value, time.Now().UTC())
	return err
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE k=?;`, key)
	return err
}
