// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionStatus defines the status of a wallet-to-wallet transfer.
type TransactionStatus string

const (
	// TransactionStatusPending is a transfer above the settlement threshold
	// awaiting admin approval. No balance has moved yet.
	TransactionStatusPending TransactionStatus = "PENDING"
	// TransactionStatusApproved is terminal: funds have moved.
	TransactionStatusApproved TransactionStatus = "APPROVED"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	return s == TransactionStatusPending || s == TransactionStatusApproved
}

// Transaction represents a transfer record in the ledger.
type Transaction struct {
	ID               string            `db:"id" json:"id"`                                 // UUID generated by the engine
	SenderWalletID   string            `db:"sender_wallet_id" json:"sender_wallet_id"`     // Debited wallet
	ReceiverWalletID string            `db:"receiver_wallet_id" json:"receiver_wallet_id"` // Credited wallet
	Amount           decimal.Decimal   `db:"amount" json:"amount"`                         // Always positive
	Currency         string            `db:"currency" json:"currency"`                     // Shared currency of both wallets
	InitiatedBy      string            `db:"initiated_by" json:"initiated_by"`             // User who requested the transfer
	Status           TransactionStatus `db:"status" json:"status"`                         // PENDING or APPROVED
	ApprovedBy       *string           `db:"approved_by" json:"approved_by,omitempty"`     // Set only by admin approval
	ApprovedAt       *time.Time        `db:"approved_at" json:"approved_at,omitempty"`
	Version          int64             `db:"version" json:"version"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

// NewTransaction creates a new Transaction instance with a fresh identifier.
func NewTransaction(
	senderWalletID string,
	receiverWalletID string,
	amount decimal.Decimal,
	currency string,
	initiatedBy string,
	status TransactionStatus,
) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:               uuid.NewString(),
		SenderWalletID:   senderWalletID,
		ReceiverWalletID: receiverWalletID,
		Amount:           amount,
		Currency:         currency,
		InitiatedBy:      initiatedBy,
		Status:           status,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsPending reports whether the transaction still awaits approval.
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	InitiatedBy string
	Status      *TransactionStatus
	Limit       int
	Offset      int
}
