// internal/service/summary_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"custody-wallet/internal/domain"
	"custody-wallet/internal/repository"
	"custody-wallet/internal/util"
)

// SummaryService builds and serves monthly payment summaries. It never
// touches wallets or transactions.
type SummaryService interface {
	// GenerateSummary is the out-of-band entry point used by the scheduler.
	GenerateSummary(ctx context.Context, month, year int) (*domain.PaymentSummary, error)
	// GenerateMonthlySummary summarizes the calendar month before now.
	GenerateMonthlySummary(ctx context.Context, now time.Time) (*domain.PaymentSummary, error)
	// RequestSummary is GenerateSummary on behalf of an admin caller.
	RequestSummary(ctx context.Context, caller domain.Caller, month, year int) (*domain.PaymentSummary, error)
	ListSummaries(ctx context.Context, caller domain.Caller) ([]domain.PaymentSummary, error)
	ListPayments(ctx context.Context, caller domain.Caller) ([]domain.Payment, error)
	GetPayment(ctx context.Context, caller domain.Caller, paymentID string) (*domain.Payment, error)
}

type summaryService struct {
	dbExecutor  repository.DBExecutor
	paymentRepo repository.PaymentRepository
	summaryRepo repository.SummaryRepository
	logger      *slog.Logger
}

// NewSummaryService creates a new instance of SummaryService.
func NewSummaryService(
	dbExecutor repository.DBExecutor,
	paymentRepo repository.PaymentRepository,
	summaryRepo repository.SummaryRepository,
	logger *slog.Logger,
) SummaryService {
	return &summaryService{
		dbExecutor:  dbExecutor,
		paymentRepo: paymentRepo,
		summaryRepo: summaryRepo,
		logger:      logger,
	}
}

func (s *summaryService) GenerateSummary(ctx context.Context, month, year int) (*domain.PaymentSummary, error) {
	const op = "generate summary"
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return nil, fmt.Errorf("%s: month %d, year %d: %w", op, month, year, util.ErrInvalidInput)
	}

	from, to := domain.MonthRange(month, year)
	payments, err := s.paymentRepo.ListPayments(ctx, s.dbExecutor, from, to)
	if err != nil {
		return nil, classify(op, err)
	}

	summary := domain.NewPaymentSummary(month, year, payments)
	if err := s.summaryRepo.UpsertPaymentSummary(ctx, summary); err != nil {
		return nil, classify(op, err)
	}

	s.logger.InfoContext(ctx, "Payment summary generated",
		"month", month,
		"year", year,
		"total", summary.TotalPayments,
		"successful", summary.SuccessfulPayments,
		"pending", summary.PendingPayments,
	)
	return summary, nil
}

func (s *summaryService) GenerateMonthlySummary(ctx context.Context, now time.Time) (*domain.PaymentSummary, error) {
	now = now.UTC()
	previous := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return s.GenerateSummary(ctx, int(previous.Month()), previous.Year())
}

func (s *summaryService) RequestSummary(ctx context.Context, caller domain.Caller, month, year int) (*domain.PaymentSummary, error) {
	if err := authorize(caller, OpGenerateSummary); err != nil {
		return nil, err
	}
	return s.GenerateSummary(ctx, month, year)
}

func (s *summaryService) ListSummaries(ctx context.Context, caller domain.Caller) ([]domain.PaymentSummary, error) {
	if err := authorize(caller, OpListPaymentSummaries); err != nil {
		return nil, err
	}
	summaries, err := s.summaryRepo.ListPaymentSummaries(ctx)
	if err != nil {
		return nil, classify("list summaries", err)
	}
	return summaries, nil
}

func (s *summaryService) ListPayments(ctx context.Context, caller domain.Caller) ([]domain.Payment, error) {
	if err := authorize(caller, OpListPayments); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListPayments(ctx, s.dbExecutor, time.Time{}, time.Time{})
	if err != nil {
		return nil, classify("list payments", err)
	}
	return payments, nil
}

func (s *summaryService) GetPayment(ctx context.Context, caller domain.Caller, paymentID string) (*domain.Payment, error) {
	if err := authorize(caller, OpGetPayment); err != nil {
		return nil, err
	}
	payment, err := s.paymentRepo.GetPaymentByID(ctx, s.dbExecutor, paymentID)
	if err != nil {
		return nil, classify("get payment", err)
	}
	return payment, nil
}
