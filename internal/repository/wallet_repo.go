// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"custody-wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet adds a new wallet. Used for provisioning; the transfer engine never creates wallets.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByID retrieves a wallet by its ID. With forUpdate the row stays locked until the surrounding transaction ends.
	GetWalletByID(ctx context.Context, q DBExecutor, id string, forUpdate bool) (*domain.Wallet, error)
	// GetWalletByIDAndOwner retrieves a wallet only if it belongs to ownerID.
	GetWalletByIDAndOwner(ctx context.Context, q DBExecutor, id, ownerID string) (*domain.Wallet, error)
	// UpdateWalletBalance sets a new balance if the stored version still equals expectedVersion.
	UpdateWalletBalance(ctx context.Context, q DBExecutor, id string, newBalance decimal.Decimal, expectedVersion int64) (*domain.Wallet, error)
}
