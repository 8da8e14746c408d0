package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nodeAccess/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS access_requests (
	id           BIGSERIAL PRIMARY KEY,
	chain_id     BIGINT      NOT NULL,
	account      TEXT        NOT NULL,
	access_gate  TEXT        NOT NULL,
	strong_fee   NUMERIC     NOT NULL,
	naas_fee     NUMERIC     NOT NULL,
	allowance_tx TEXT,
	access_tx    TEXT        NOT NULL UNIQUE,
	node_id      NUMERIC     NOT NULL,
	pool_id      BIGINT,
	sign_tx      TEXT,
	failure      TEXT,
	created_at   TIMESTAMPTZ NOT NULL
)`

const migrateFailure = `ALTER TABLE access_requests ADD COLUMN IF NOT EXISTS failure TEXT`

// Store provides Postgres persistence for access records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the access_requests table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.pool.Exec(ctx, migrateFailure); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// PutRecord inserts an access record; a repeated access tx updates the relay and failure fields.
func (s *Store) PutRecord(ctx context.Context, rec model.AccessRecord) error {
	createdAt, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	var poolID *int64
	if rec.PoolID != nil {
		v := int64(*rec.PoolID)
		poolID = &v
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO access_requests (
			chain_id, account, access_gate, strong_fee, naas_fee, allowance_tx,
			access_tx, node_id, pool_id, sign_tx, failure, created_at
		) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8::numeric, $9, $10, $11, $12)
		ON CONFLICT (access_tx) DO UPDATE SET
			node_id = EXCLUDED.node_id,
			pool_id = EXCLUDED.pool_id,
			sign_tx = EXCLUDED.sign_tx,
			failure = EXCLUDED.failure
	`,
		int64(rec.ChainID),
		rec.Account,
		rec.AccessGate,
		numeric(rec.StrongFee),
		numeric(rec.NaaSFee),
		rec.AllowanceTx,
		rec.AccessTx,
		numeric(rec.NodeID),
		poolID,
		rec.SignTx,
		rec.Failure,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert access record: %w", err)
	}
	return nil
}

func numeric(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
