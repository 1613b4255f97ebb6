// internal/repository/payment_repo.go
package repository

import (
	"context"
	"time"

	"custody-wallet/internal/domain"
)

// PaymentRepository reads externally captured payments. There are no write methods.
type PaymentRepository interface {
	// ListPayments returns payments created in [from, to). Zero times leave that side open.
	ListPayments(ctx context.Context, q DBExecutor, from, to time.Time) ([]domain.Payment, error)
	GetPaymentByID(ctx context.Context, q DBExecutor, id string) (*domain.Payment, error)
}

// SummaryRepository persists monthly payment summaries.
// It does not take a DBExecutor because not every backend is SQL.
type SummaryRepository interface {
	// UpsertPaymentSummary stores summary, replacing any previous one for the same month and year.
	UpsertPaymentSummary(ctx context.Context, summary *domain.PaymentSummary) error
	ListPaymentSummaries(ctx context.Context) ([]domain.PaymentSummary, error)
}
