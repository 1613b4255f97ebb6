// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"custody-wallet/internal/domain"
	"custody-wallet/internal/repository"
	"custody-wallet/internal/util"
	"custody-wallet/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const walletColumns = `id, user_id, currency, balance, version, created_at, updated_at`

// WalletRepository implements repository.WalletRepository for PostgreSQL (and SQLite).
type WalletRepository struct {
	// Methods receive a DBExecutor so they can run inside the caller's transaction.
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

// CreateWallet inserts a new wallet using the provided DBExecutor.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := q.Rebind(`INSERT INTO wallets (` + walletColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := q.ExecContext(ctx, query,
		wallet.ID, wallet.UserID, wallet.Currency, wallet.Balance, wallet.Version, wallet.CreatedAt, wallet.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByID retrieves a wallet by its ID using the provided DBExecutor.
func (r *WalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id string, forUpdate bool) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := q.Rebind(`SELECT ` + walletColumns + ` FROM wallets WHERE id = ?` + db.LockClause(q.DriverName(), forUpdate))
	err := q.GetContext(ctx, &wallet, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by ID %s: %w", id, err)
	}
	return &wallet, nil
}

// GetWalletByIDAndOwner retrieves a wallet by ID only if ownerID owns it.
func (r *WalletRepository) GetWalletByIDAndOwner(ctx context.Context, q repository.DBExecutor, id, ownerID string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := q.Rebind(`SELECT ` + walletColumns + ` FROM wallets WHERE id = ? AND user_id = ?`)
	err := q.GetContext(ctx, &wallet, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet %s for owner %s: %w", id, ownerID, err)
	}
	return &wallet, nil
}

// UpdateWalletBalance writes newBalance if the row is still at expectedVersion.
// A version mismatch is reported as util.ErrConcurrentModification.
func (r *WalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, id string, newBalance decimal.Decimal, expectedVersion int64) (*domain.Wallet, error) {
	query := q.Rebind(`UPDATE wallets SET balance = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`)
	result, err := q.ExecContext(ctx, query, newBalance, time.Now().UTC(), id, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update wallet balance for ID %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected after updating wallet balance for ID %s: %w", id, err)
	}

	wallet, err := r.GetWalletByID(ctx, q, id, false)
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("wallet %s moved past version %d: %w", id, expectedVersion, util.ErrConcurrentModification)
	}
	return wallet, nil
}
