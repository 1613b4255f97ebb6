// internal/domain/payment.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is an externally captured payment. The core reads these for
// reporting only and never writes them.
type Payment struct {
	ID               string          `db:"id" json:"id"`
	UserID           string          `db:"user_id" json:"user_id"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	Currency         string          `db:"currency" json:"currency"`
	GatewayReference *string         `db:"gateway_reference" json:"gateway_reference,omitempty"` // Set once the gateway confirms
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// Successful reports whether the gateway confirmed the payment.
func (p *Payment) Successful() bool {
	return p.GatewayReference != nil && *p.GatewayReference != ""
}

// PaymentSummary holds monthly payment counts. Derived data, recomputed per period.
type PaymentSummary struct {
	ID                 string    `db:"id" json:"id" dynamodbav:"id"`
	Month              int       `db:"month" json:"month" dynamodbav:"month"`
	Year               int       `db:"year" json:"year" dynamodbav:"year"`
	TotalPayments      int64     `db:"total_payments" json:"total_payments" dynamodbav:"total_payments"`
	SuccessfulPayments int64     `db:"successful_payments" json:"successful_payments" dynamodbav:"successful_payments"`
	PendingPayments    int64     `db:"pending_payments" json:"pending_payments" dynamodbav:"pending_payments"`
	GeneratedAt        time.Time `db:"generated_at" json:"generated_at" dynamodbav:"generated_at"`
}

// NewPaymentSummary aggregates payments into a summary for month/year.
func NewPaymentSummary(month, year int, payments []Payment) *PaymentSummary {
	var successful int64
	for i := range payments {
		if payments[i].Successful() {
			successful++
		}
	}
	total := int64(len(payments))
	return &PaymentSummary{
		ID:                 uuid.NewString(),
		Month:              month,
		Year:               year,
		TotalPayments:      total,
		SuccessfulPayments: successful,
		PendingPayments:    total - successful,
		GeneratedAt:        time.Now().UTC(),
	}
}

// MonthRange returns the half-open interval [first of month, first of next month) in UTC.
func MonthRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
