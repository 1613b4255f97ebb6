// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"custody-wallet/internal/domain"
	"custody-wallet/internal/repository"
	"custody-wallet/internal/util"
	"custody-wallet/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, sender_wallet_id, receiver_wallet_id, amount, currency, initiated_by, status,
	approved_by, approved_at, version, created_at, updated_at`

// TransactionRepository implements repository.TransactionRepository for PostgreSQL (and SQLite).
type TransactionRepository struct {
	// Methods receive a DBExecutor so they can run inside the caller's transaction.
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := q.Rebind(`INSERT INTO transactions (` + transactionColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := q.ExecContext(ctx, query,
		transaction.ID,
		transaction.SenderWalletID,
		transaction.ReceiverWalletID,
		transaction.Amount,
		transaction.Currency,
		transaction.InitiatedBy,
		transaction.Status,
		transaction.ApprovedBy,
		transaction.ApprovedAt,
		transaction.Version,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionByID retrieves a transaction by ID. When status is set, a
// transaction in any other status is reported as not found.
func (r *TransactionRepository) GetTransactionByID(ctx context.Context, q repository.DBExecutor, id string, status *domain.TransactionStatus, forUpdate bool) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`
	args := []interface{}{id}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, *status)
	}
	query += db.LockClause(q.DriverName(), forUpdate)

	var transaction domain.Transaction
	if err := q.GetContext(ctx, &transaction, q.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return &transaction, nil
}

// UpdateTransactionStatus performs a status-guarded transition. If the row is
// no longer in status from, nothing is written and
// util.ErrAlreadyProcessedOrNotFound is returned.
func (r *TransactionRepository) UpdateTransactionStatus(ctx context.Context, q repository.DBExecutor, id string, from, to domain.TransactionStatus, approverID string) (*domain.Transaction, error) {
	now := time.Now().UTC()
	query := q.Rebind(`UPDATE transactions
		SET status = ?, approved_by = ?, approved_at = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND status = ?`)
	result, err := q.ExecContext(ctx, query, to, approverID, now, now, id, from)
	if err != nil {
		return nil, fmt.Errorf("failed to update status of transaction %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected after updating transaction %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return nil, util.ErrAlreadyProcessedOrNotFound
	}

	return r.GetTransactionByID(ctx, q, id, nil, false)
}

// ListTransactions retrieves a paginated list of transactions.
// It performs two queries: one for the data and one for the total count.
func (r *TransactionRepository) ListTransactions(ctx context.Context, q repository.DBExecutor, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.InitiatedBy != "" {
		conditions = append(conditions, "initiated_by = ?")
		args = append(args, filter.InitiatedBy)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Query 1: Get the paginated transactions
	transactions := []domain.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + ` ORDER BY created_at DESC, id`
	pageArgs := args
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		pageArgs = append(append([]interface{}{}, args...), filter.Limit, filter.Offset)
	}
	if err := q.SelectContext(ctx, &transactions, q.Rebind(query), pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	// Query 2: Get the total count of matching transactions
	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, q.Rebind(`SELECT COUNT(*) FROM transactions`+where), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return transactions, totalCount, nil
}

// SumPendingOutgoing totals PENDING amounts sent from walletID.
func (r *TransactionRepository) SumPendingOutgoing(ctx context.Context, q repository.DBExecutor, walletID string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	query := q.Rebind(`SELECT SUM(amount) FROM transactions WHERE sender_wallet_id = ? AND status = ?`)
	if err := q.GetContext(ctx, &total, query, walletID, domain.TransactionStatusPending); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum pending transactions for wallet %s: %w", walletID, err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
