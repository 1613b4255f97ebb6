// pkg/db/schema.go
package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AmountScale is the number of fractional digits every NUMERIC(20, 4) money
// column keeps. Postgres rounds anything finer on write.
const AmountScale int32 = 4

// schema is valid for both PostgreSQL and SQLite. Production deployments
// should apply it through their migration tooling; Migrate exists for local
// development and tests.
const schema = `
CREATE TABLE IF NOT EXISTS wallets (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	currency   TEXT NOT NULL,
	balance    NUMERIC(20, 4) NOT NULL DEFAULT 0 CHECK (balance >= 0),
	version    BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_wallets_user_id ON wallets (user_id);

CREATE TABLE IF NOT EXISTS transactions (
	id                 TEXT PRIMARY KEY,
	sender_wallet_id   TEXT NOT NULL REFERENCES wallets (id),
	receiver_wallet_id TEXT NOT NULL REFERENCES wallets (id),
	amount             NUMERIC(20, 4) NOT NULL CHECK (amount > 0),
	currency           TEXT NOT NULL,
	initiated_by       TEXT NOT NULL,
	status             TEXT NOT NULL CHECK (status IN ('PENDING', 'APPROVED')),
	approved_by        TEXT,
	approved_at        TIMESTAMP,
	version            BIGINT NOT NULL DEFAULT 1,
	created_at         TIMESTAMP NOT NULL,
	updated_at         TIMESTAMP NOT NULL,
	CHECK (sender_wallet_id <> receiver_wallet_id)
);

CREATE INDEX IF NOT EXISTS idx_transactions_sender_status ON transactions (sender_wallet_id, status);
CREATE INDEX IF NOT EXISTS idx_transactions_initiated_by ON transactions (initiated_by, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions (status, created_at);

CREATE TABLE IF NOT EXISTS payments (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	amount            NUMERIC(20, 4) NOT NULL,
	currency          TEXT NOT NULL,
	gateway_reference TEXT,
	created_at        TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments (created_at);

CREATE TABLE IF NOT EXISTS payment_summaries (
	id                  TEXT PRIMARY KEY,
	month               INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
	year                INTEGER NOT NULL,
	total_payments      BIGINT NOT NULL,
	successful_payments BIGINT NOT NULL,
	pending_payments    BIGINT NOT NULL,
	generated_at        TIMESTAMP NOT NULL,
	UNIQUE (month, year)
);
`

// Migrate creates the schema if it does not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
