// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Wallet represents a custodial wallet owned by a single user.
type Wallet struct {
	ID        string          `db:"id" json:"id"`                 // UUID primary key
	UserID    string          `db:"user_id" json:"user_id"`       // Owning user, resolved by the identity provider
	Currency  string          `db:"currency" json:"currency"`     // ISO currency code, e.g. "USD"
	Balance   decimal.Decimal `db:"balance" json:"balance"`       // Never negative, NUMERIC(20, 4) in DB
	Version   int64           `db:"version" json:"version"`       // Incremented on every balance write
	CreatedAt time.Time       `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"` // Timestamp of last update
}

// NewWallet creates a new Wallet instance with a zero balance.
func NewWallet(userID, currency string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Currency:  currency,
		Balance:   decimal.Zero,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// OwnedBy reports whether the wallet belongs to userID.
func (w *Wallet) OwnedBy(userID string) bool {
	return w.UserID == userID
}
