// internal/service/balance_mutator.go
package service

import (
	"context"
	"fmt"

	"custody-wallet/internal/domain"
	"custody-wallet/internal/repository"
	"custody-wallet/internal/util"
	"custody-wallet/pkg/db"

	"github.com/shopspring/decimal"
)

// BalanceMutator is the only component that writes wallet balances.
type BalanceMutator struct {
	walletRepo repository.WalletRepository
}

// validAmount reports whether amount is positive and has no digits beyond
// db.AmountScale.
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(db.AmountScale))
}

// NewBalanceMutator creates a new BalanceMutator.
func NewBalanceMutator(walletRepo repository.WalletRepository) *BalanceMutator {
	return &BalanceMutator{walletRepo: walletRepo}
}

// lockPair loads both wallets with row locks, always in ascending id order so
// two transfers between the same wallets cannot deadlock.
func (m *BalanceMutator) lockPair(ctx context.Context, q repository.DBExecutor, senderID, receiverID string) (*domain.Wallet, *domain.Wallet, error) {
	first, second := senderID, receiverID
	if second < first {
		first, second = second, first
	}

	locked := make(map[string]*domain.Wallet, 2)
	for _, id := range []string{first, second} {
		wallet, err := m.walletRepo.GetWalletByID(ctx, q, id, true)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to lock wallet %s: %w", id, err)
		}
		locked[id] = wallet
	}
	return locked[senderID], locked[receiverID], nil
}

// Move debits senderID and credits receiverID by amount inside the caller's
// transaction q. Both writes are version-guarded. It returns the updated
// sender and receiver.
func (m *BalanceMutator) Move(ctx context.Context, q repository.DBExecutor, senderID, receiverID string, amount decimal.Decimal) (*domain.Wallet, *domain.Wallet, error) {
	if !validAmount(amount) {
		return nil, nil, util.ErrInvalidAmount
	}
	if senderID == receiverID {
		return nil, nil, util.ErrSameWalletTransfer
	}

	sender, receiver, err := m.lockPair(ctx, q, senderID, receiverID)
	if err != nil {
		return nil, nil, err
	}
	return m.moveLocked(ctx, q, sender, receiver, amount)
}

// moveLocked is Move for wallets the caller already locked with lockPair in q.
// The sender balance is checked again against the locked row.
func (m *BalanceMutator) moveLocked(ctx context.Context, q repository.DBExecutor, sender, receiver *domain.Wallet, amount decimal.Decimal) (*domain.Wallet, *domain.Wallet, error) {
	if !validAmount(amount) {
		return nil, nil, util.ErrInvalidAmount
	}
	if sender.ID == receiver.ID {
		return nil, nil, util.ErrSameWalletTransfer
	}
	if sender.Balance.LessThan(amount) {
		return nil, nil, util.ErrInsufficientFunds
	}

	updatedSender, err := m.walletRepo.UpdateWalletBalance(ctx, q, sender.ID, sender.Balance.Sub(amount), sender.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to debit wallet %s: %w", sender.ID, err)
	}
	updatedReceiver, err := m.walletRepo.UpdateWalletBalance(ctx, q, receiver.ID, receiver.Balance.Add(amount), receiver.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to credit wallet %s: %w", receiver.ID, err)
	}

	return updatedSender, updatedReceiver, nil
}
