// internal/api/handler/admin.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"custody-wallet/internal/api/types"
	"custody-wallet/internal/domain"
	"custody-wallet/internal/service"
	"custody-wallet/internal/util"
)

// AdminHandler handles approval and reporting requests.
type AdminHandler struct {
	responder
	approvals service.ApprovalService
	summaries service.SummaryService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(approvals service.ApprovalService, summaries service.SummaryService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		responder: responder{logger: logger},
		approvals: approvals,
		summaries: summaries,
	}
}

// ApproveTransaction handles the approval request.
// POST /admin/transactions/{transactionID}/approve
func (h *AdminHandler) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	transaction, err := h.approvals.ApproveTransaction(r.Context(), caller, chi.URLParam(r, "transactionID"))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, transaction)
}

// ListTransactions handles the all-transactions request.
// GET /admin/transactions?status=&limit=&offset=
func (h *AdminHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	status, err := statusFilter(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	limit, offset := pagination(r)

	transactions, total, err := h.approvals.ListTransactions(r.Context(), caller, status, limit, offset)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: total,
	})
}

// GetTransaction handles the single transaction request.
// GET /admin/transactions/{transactionID}
func (h *AdminHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	transaction, err := h.approvals.GetTransaction(r.Context(), caller, chi.URLParam(r, "transactionID"))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, transaction)
}

// ListPayments handles the payments listing.
// GET /admin/payments
func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	payments, err := h.summaries.ListPayments(r.Context(), caller)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{"data": payments})
}

// GetPayment handles the single payment request.
// GET /admin/payments/{paymentID}
func (h *AdminHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	payment, err := h.summaries.GetPayment(r.Context(), caller, chi.URLParam(r, "paymentID"))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, payment)
}

// ListSummaries handles the payment summaries listing.
// GET /admin/payment-summaries
func (h *AdminHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	summaries, err := h.summaries.ListSummaries(r.Context(), caller)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{"data": summaries})
}

// SummaryRequest represents the request body for generating a summary.
type SummaryRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// GenerateSummary handles an on-demand summary request.
// POST /admin/payment-summaries
func (h *AdminHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}

	summary, err := h.summaries.RequestSummary(r.Context(), caller, req.Month, req.Year)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, summary)
}
