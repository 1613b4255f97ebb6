// internal/service/transfer_service.go
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

	"github.com/shopspring/decimal"
)

// TransferResult is returned by InitiateTransfer. Balance is the sender's
// balance after the call: reduced for a settled transfer, unchanged for a
// pending one.
type TransferResult struct {
	Transaction *domain.Transaction `json:"transaction"`
	Balance     decimal.Decimal     `json:"balance"`
}

// TransferService defines the caller-facing transfer operations.
type TransferService interface {
	InitiateTransfer(ctx context.Context, caller domain.Caller, senderWalletID, receiverWalletID string, amount decimal.Decimal) (*TransferResult, error)
	GetWallet(ctx context.Context, caller domain.Caller, walletID string) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, caller domain.Caller, status *domain.TransactionStatus, limit, offset int) ([]domain.Transaction, int64, error)
	GetTransaction(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error)
}

// transferService implements the TransferService interface.
type transferService struct {
	uow             *unitOfWork
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	mutator         *BalanceMutator
	threshold       decimal.Decimal
	publisher       notify.Publisher
	logger          *slog.Logger
}

// NewTransferService creates a new instance of TransferService.
// Transfers with an amount above threshold are held for admin approval.
func NewTransferService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	mutator *BalanceMutator,
	threshold decimal.Decimal,
	publisher notify.Publisher,
	txFuncs TxFuncs,
	logger *slog.Logger,
) TransferService {
	return &transferService{
		uow:             &unitOfWork{dbBeginner: dbBeginner, tx: txFuncs, logger: logger},
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		mutator:         mutator,
		threshold:       threshold,
		publisher:       publisher,
		logger:          logger,
	}
}

// validateTransfer holds the checks shared by the settle and hold branches.
// available is the sender's balance minus its pending outgoing transfers.
func validateTransfer(sender, receiver *domain.Wallet, available, amount decimal.Decimal) error {
	if sender.Currency != receiver.Currency {
		return util.ErrCurrencyMismatch
	}
	if amount.GreaterThan(available) {
		return util.ErrInsufficientFunds
	}
	if !validAmount(amount) {
		return util.ErrInvalidAmount
	}
	return nil
}

// InitiateTransfer moves amount from the caller's wallet to another wallet,
// or records a PENDING transaction when amount exceeds the threshold.
func (s *transferService) InitiateTransfer(ctx context.Context, caller domain.Caller, senderWalletID, receiverWalletID string, amount decimal.Decimal) (*TransferResult, error) {
	const op = "initiate transfer"
	if err := authorize(caller, OpInitiateTransfer); err != nil {
		return nil, err
	}

	var result *TransferResult
	err := s.uow.run(ctx, op, func(q repository.DBExecutor) error {
		var err error
		result, err = s.initiate(ctx, q, caller, senderWalletID, receiverWalletID, amount)
		return err
	})
	if err != nil {
		return nil, classify(op, err)
	}

	eventType := notify.EventTransferSettled
	if result.Transaction.IsPending() {
		eventType = notify.EventTransferPending
	}
	s.publish(ctx, notify.NewTransactionEvent(eventType, result.Transaction, caller.ID))

	s.logger.InfoContext(ctx, "Transfer initiated",
		"transaction_id", result.Transaction.ID,
		"status", result.Transaction.Status,
		"amount", amount.String(),
		"initiated_by", caller.ID,
	)
	return result, nil
}

func (s *transferService) initiate(ctx context.Context, q repository.DBExecutor, caller domain.Caller, senderWalletID, receiverWalletID string, amount decimal.Decimal) (*TransferResult, error) {
	if senderWalletID == receiverWalletID {
		if _, err := s.walletRepo.GetWalletByIDAndOwner(ctx, q, senderWalletID, caller.ID); err != nil {
			return nil, notFound(err)
		}
		return nil, util.ErrSameWalletTransfer
	}

	sender, receiver, err := s.mutator.lockPair(ctx, q, senderWalletID, receiverWalletID)
	if err != nil {
		return nil, notFound(err)
	}
	if !sender.OwnedBy(caller.ID) {
		return nil, util.ErrNotFound
	}

	held, err := s.transactionRepo.SumPendingOutgoing(ctx, q, sender.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending holds for wallet %s: %w", sender.ID, err)
	}
	if err := validateTransfer(sender, receiver, sender.Balance.Sub(held), amount); err != nil {
		return nil, err
	}

	if amount.GreaterThan(s.threshold) {
		transaction := domain.NewTransaction(sender.ID, receiver.ID, amount, sender.Currency, caller.ID, domain.TransactionStatusPending)
		if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
			return nil, fmt.Errorf("failed to record pending transaction: %w", err)
		}
		return &TransferResult{Transaction: transaction, Balance: sender.Balance}, nil
	}

	updatedSender, _, err := s.mutator.moveLocked(ctx, q, sender, receiver, amount)
	if err != nil {
		return nil, err
	}
	transaction := domain.NewTransaction(sender.ID, receiver.ID, amount, sender.Currency, caller.ID, domain.TransactionStatusApproved)
	if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
		return nil, fmt.Errorf("failed to record settled transaction: %w", err)
	}
	return &TransferResult{Transaction: transaction, Balance: updatedSender.Balance}, nil
}

// GetWallet returns one of the caller's own wallets.
func (s *transferService) GetWallet(ctx context.Context, caller domain.Caller, walletID string) (*domain.Wallet, error) {
	if err := authorize(caller, OpGetOwnWallet); err != nil {
		return nil, err
	}
	wallet, err := s.walletRepo.GetWalletByIDAndOwner(ctx, s.dbExecutor, walletID, caller.ID)
	if err != nil {
		return nil, classify("get wallet", err)
	}
	return wallet, nil
}

// ListTransactions returns a page of transactions the caller initiated,
// optionally narrowed to one status.
func (s *transferService) ListTransactions(ctx context.Context, caller domain.Caller, status *domain.TransactionStatus, limit, offset int) ([]domain.Transaction, int64, error) {
	if err := authorize(caller, OpListOwnTransactions); err != nil {
		return nil, 0, err
	}
	if status != nil && !status.Valid() {
		return nil, 0, util.ErrInvalidInput
	}
	filter := domain.TransactionFilter{InitiatedBy: caller.ID, Status: status, Limit: limit, Offset: offset}
	transactions, total, err := s.transactionRepo.ListTransactions(ctx, s.dbExecutor, filter)
	if err != nil {
		return nil, 0, classify("list transactions", err)
	}
	return transactions, total, nil
}

// GetTransaction returns a transaction the caller initiated. Transactions of
// other users are reported as not found.
func (s *transferService) GetTransaction(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error) {
	if err := authorize(caller, OpGetOwnTransaction); err != nil {
		return nil, err
	}
	transaction, err := s.transactionRepo.GetTransactionByID(ctx, s.dbExecutor, transactionID, nil, false)
	if err != nil {
		return nil, classify("get transaction", err)
	}
	if transaction.InitiatedBy != caller.ID {
		return nil, util.ErrNotFound
	}
	return transaction, nil
}

func (s *transferService) publish(ctx context.Context, event notify.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event", "type", event.Type, "transaction_id", event.TransactionID, "error", err)
	}
}

// notFound reports a missing wallet on the transfer path as util.ErrNotFound
// and leaves every other error untouched.
func notFound(err error) error {
	if util.IsError(err, util.ErrWalletNotFound) {
		return util.ErrNotFound
	}
	return err
}
