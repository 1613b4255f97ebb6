// internal/service/approval_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"custody-wallet/internal/domain"
	"custody-wallet/internal/notify"
	"custody-wallet/internal/repository"
	"custody-wallet/internal/util"
	"custody-wallet/pkg/db"
)

// ApprovalService defines the admin-facing operations on transactions.
type ApprovalService interface {
	ApproveTransaction(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, caller domain.Caller, status *domain.TransactionStatus, limit, offset int) ([]domain.Transaction, int64, error)
	GetTransaction(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error)
}

type approvalService struct {
	uow             *unitOfWork
	dbExecutor      repository.DBExecutor
	transactionRepo repository.TransactionRepository
	mutator         *BalanceMutator
	publisher       notify.Publisher
	logger          *slog.Logger
}

// NewApprovalService creates a new instance of ApprovalService.
func NewApprovalService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	transactionRepo repository.TransactionRepository,
	mutator *BalanceMutator,
	publisher notify.Publisher,
	txFuncs TxFuncs,
	logger *slog.Logger,
) ApprovalService {
	return &approvalService{
		uow:             &unitOfWork{dbBeginner: dbBeginner, tx: txFuncs, logger: logger},
		dbExecutor:      dbExecutor,
		transactionRepo: transactionRepo,
		mutator:         mutator,
		publisher:       publisher,
		logger:          logger,
	}
}

// ApproveTransaction settles a PENDING transaction. Funds are re-validated at
// approval time; if they no longer suffice the transaction stays PENDING.
func (s *approvalService) ApproveTransaction(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error) {
	const op = "approve transaction"
	if err := authorize(caller, OpApproveTransaction); err != nil {
		return nil, err
	}

	var approved *domain.Transaction
	err := s.uow.run(ctx, op, func(q repository.DBExecutor) error {
		pending := domain.TransactionStatusPending
		transaction, err := s.transactionRepo.GetTransactionByID(ctx, q, transactionID, &pending, true)
		if err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return util.ErrAlreadyProcessedOrNotFound
			}
			return fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
		}

		if _, _, err := s.mutator.Move(ctx, q, transaction.SenderWalletID, transaction.ReceiverWalletID, transaction.Amount); err != nil {
			return err
		}

		approved, err = s.transactionRepo.UpdateTransactionStatus(ctx, q, transaction.ID,
			domain.TransactionStatusPending, domain.TransactionStatusApproved, caller.ID)
		return err
	})
	if err != nil {
		return nil, classify(op, err)
	}

	if pubErr := s.publisher.Publish(ctx, notify.NewTransactionEvent(notify.EventTransactionApproved, approved, caller.ID)); pubErr != nil {
		s.logger.WarnContext(ctx, "Failed to publish event", "type", notify.EventTransactionApproved, "transaction_id", approved.ID, "error", pubErr)
	}
	s.logger.InfoContext(ctx, "Transaction approved", "transaction_id", approved.ID, "approved_by", caller.ID)
	return approved, nil
}

// ListTransactions returns a page of all transactions, optionally narrowed to one status.
func (s *approvalService) ListTransactions(ctx context.Context, caller domain.Caller, status *domain.TransactionStatus, limit, offset int) ([]domain.Transaction, int64, error) {
	if err := authorize(caller, OpListAllTransactions); err != nil {
		return nil, 0, err
	}
	if status != nil && !status.Valid() {
		return nil, 0, util.ErrInvalidInput
	}
	transactions, total, err := s.transactionRepo.ListTransactions(ctx, s.dbExecutor, domain.TransactionFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, classify("list all transactions", err)
	}
	return transactions, total, nil
}

// GetTransaction returns any transaction by id.
func (s *approvalService) GetTransaction(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error) {
	if err := authorize(caller, OpGetAnyTransaction); err != nil {
		return nil, err
	}
	transaction, err := s.transactionRepo.GetTransactionByID(ctx, s.dbExecutor, transactionID, nil, false)
	if err != nil {
		return nil, classify("get any transaction", err)
	}
	return transaction, nil
}
