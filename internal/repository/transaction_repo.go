// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"custody-wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// TransactionRepository defines the interface for transaction data operations.
type TransactionRepository interface {
	// CreateTransaction adds a new transaction record using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionByID retrieves a transaction, optionally only if it is in status.
	GetTransactionByID(ctx context.Context, q DBExecutor, id string, status *domain.TransactionStatus, forUpdate bool) (*domain.Transaction, error)
	// UpdateTransactionStatus moves a transaction from one status to another and records the approver.
	UpdateTransactionStatus(ctx context.Context, q DBExecutor, id string, from, to domain.TransactionStatus, approverID string) (*domain.Transaction, error)
	// ListTransactions returns one page of transactions matching filter plus the total match count.
	ListTransactions(ctx context.Context, q DBExecutor, filter domain.TransactionFilter) ([]domain.Transaction, int64, error)
	// SumPendingOutgoing totals the amounts of PENDING transactions sent from walletID.
	SumPendingOutgoing(ctx context.Context, q DBExecutor, walletID string) (decimal.Decimal, error)
}
