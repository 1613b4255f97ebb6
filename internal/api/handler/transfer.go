// internal/api/handler/transfer.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"custody-wallet/internal/api/types"
	"custody-wallet/internal/domain"
	"custody-wallet/internal/service"
	"custody-wallet/internal/util"
)

// TransferHandler handles HTTP requests made by wallet owners.
type TransferHandler struct {
	responder
	service service.TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(svc service.TransferService, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// TransferRequest represents the request body for a transfer.
type TransferRequest struct {
	ReceiverWalletID string          `json:"receiver_wallet_id"`
	Amount           decimal.Decimal `json:"amount"`
}

// InitiateTransfer handles the transfer request.
// POST /wallets/{walletID}/transfers
func (h *TransferHandler) InitiateTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}
	if req.ReceiverWalletID == "" {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}

	result, err := h.service.InitiateTransfer(r.Context(), caller, chi.URLParam(r, "walletID"), req.ReceiverWalletID, req.Amount)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Transaction.IsPending() {
		status = http.StatusAccepted
	}
	h.respondWithJSON(w, status, result)
}

// GetWallet handles the get wallet request.
// GET /wallets/{walletID}
func (h *TransferHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), caller, chi.URLParam(r, "walletID"))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, wallet)
}

// ListTransactions handles the caller's transaction history request.
// GET /transactions?status=&limit=&offset=
func (h *TransferHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
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

	transactions, total, err := h.service.ListTransactions(r.Context(), caller, status, limit, offset)
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

// GetTransaction handles the caller's single transaction request.
// GET /transactions/{transactionID}
func (h *TransferHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	transaction, err := h.service.GetTransaction(r.Context(), caller, chi.URLParam(r, "transactionID"))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, transaction)
}
