// Package notify publishes domain events after a unit of work commits.
// Delivery is best effort: a failed publish never undoes a committed transfer.
package notify

import (
	"context"
	"log/slog"
	"time"

	"custody-wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// EventType names a committed state change.
type EventType string

const (
	EventTransferSettled     EventType = "transfer.settled"
	EventTransferPending     EventType = "transfer.pending"
	EventTransactionApproved EventType = "transaction.approved"
)

// Event is the message body sent to subscribers.
type Event struct {
	Type             EventType                `json:"type"`
	TransactionID    string                   `json:"transaction_id"`
	SenderWalletID   string                   `json:"sender_wallet_id"`
	ReceiverWalletID string                   `json:"receiver_wallet_id"`
	Amount           decimal.Decimal          `json:"amount"`
	Currency         string                   `json:"currency"`
	Status           domain.TransactionStatus `json:"status"`
	Actor            string                   `json:"actor"`
	OccurredAt       time.Time                `json:"occurred_at"`
}

// NewTransactionEvent builds an event describing transaction after actor changed it.
func NewTransactionEvent(eventType EventType, transaction *domain.Transaction, actor string) Event {
	return Event{
		Type:             eventType,
		TransactionID:    transaction.ID,
		SenderWalletID:   transaction.SenderWalletID,
		ReceiverWalletID: transaction.ReceiverWalletID,
		Amount:           transaction.Amount,
		Currency:         transaction.Currency,
		Status:           transaction.Status,
		Actor:            actor,
		OccurredAt:       time.Now().UTC(),
	}
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the structured log. Used when no queue is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Make sure we conform to the interface
var _ Publisher = (*LogPublisher)(nil)

// Publish logs the event at info level.
func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "Domain event",
		"type", event.Type,
		"transaction_id", event.TransactionID,
		"amount", event.Amount.String(),
		"currency", event.Currency,
		"status", event.Status,
		"actor", event.Actor,
	)
	return nil
}
