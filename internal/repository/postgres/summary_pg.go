// internal/repository/postgres/summary_pg.go
package postgres

import (
	"context"
	"fmt"

	"custody-wallet/internal/domain"
	"custody-wallet/internal/repository"

	"github.com/jmoiron/sqlx"
)

// SummaryRepository stores payment summaries in the payment_summaries table.
type SummaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository creates a new SummaryRepository.
func NewSummaryRepository(db *sqlx.DB) repository.SummaryRepository {
	return &SummaryRepository{db: db}
}

// UpsertPaymentSummary inserts summary or overwrites the counts of the
// existing row for the same month and year. The original row id is kept.
func (r *SummaryRepository) UpsertPaymentSummary(ctx context.Context, summary *domain.PaymentSummary) error {
	query := r.db.Rebind(`INSERT INTO payment_summaries
		(id, month, year, total_payments, successful_payments, pending_payments, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (month, year) DO UPDATE SET
			total_payments = excluded.total_payments,
			successful_payments = excluded.successful_payments,
			pending_payments = excluded.pending_payments,
			generated_at = excluded.generated_at`)
	_, err := r.db.ExecContext(ctx, query,
		summary.ID,
		summary.Month,
		summary.Year,
		summary.TotalPayments,
		summary.SuccessfulPayments,
		summary.PendingPayments,
		summary.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert payment summary %02d/%d: %w", summary.Month, summary.Year, err)
	}

	// Report back the persisted id when the row already existed.
	var id string
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(`SELECT id FROM payment_summaries WHERE month = ? AND year = ?`), summary.Month, summary.Year); err != nil {
		return fmt.Errorf("failed to read back payment summary %02d/%d: %w", summary.Month, summary.Year, err)
	}
	summary.ID = id
	return nil
}

// ListPaymentSummaries returns every stored summary, newest period first.
func (r *SummaryRepository) ListPaymentSummaries(ctx context.Context) ([]domain.PaymentSummary, error) {
	summaries := []domain.PaymentSummary{}
	err := r.db.SelectContext(ctx, &summaries, `SELECT id, month, year, total_payments, successful_payments, pending_payments, generated_at
		FROM payment_summaries ORDER BY year DESC, month DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment summaries: %w", err)
	}
	return summaries, nil
}
