// internal/repository/postgres/payment_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"custody-wallet/internal/domain"
	"custody-wallet/internal/repository"
	"custody-wallet/internal/util"

	"github.com/jmoiron/sqlx"
)

const paymentColumns = `id, user_id, amount, currency, gateway_reference, created_at`

// PaymentRepository implements repository.PaymentRepository. Payments are
// written by the capture flow, so only reads live here.
type PaymentRepository struct{}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &PaymentRepository{}
}

// ListPayments returns payments created in [from, to), oldest first.
func (r *PaymentRepository) ListPayments(ctx context.Context, q repository.DBExecutor, from, to time.Time) ([]domain.Payment, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if !from.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conditions = append(conditions, "created_at < ?")
		args = append(args, to.UTC())
	}
	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at, id`

	payments := []domain.Payment{}
	if err := q.SelectContext(ctx, &payments, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// GetPaymentByID retrieves a single payment.
func (r *PaymentRepository) GetPaymentByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Payment, error) {
	var payment domain.Payment
	err := q.GetContext(ctx, &payment, q.Rebind(`SELECT `+paymentColumns+` FROM payments WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment %s: %w", id, err)
	}
	return &payment, nil
}
