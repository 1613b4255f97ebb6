// internal/api/handler/response.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"custody-wallet/internal/api/middleware"
	"custody-wallet/internal/api/types"
	"custody-wallet/internal/domain"
	"custody-wallet/internal/util" // For custom errors
)

// DefaultTimeout bounds every request handled by the router.
const DefaultTimeout = 8 * time.Second

const (
	defaultLimit = 10
	maxLimit     = 100
)

// responder holds the JSON helpers shared by all handlers.
type responder struct {
	logger *slog.Logger
}

// respondWithJSON sends payload as a JSON response.
func (h responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// statusFor maps an error kind to its HTTP status code.
var statusFor = map[util.Kind]int{
	util.KindForbidden:                  http.StatusForbidden,
	util.KindUnauthenticated:            http.StatusUnauthorized,
	util.KindNotFound:                   http.StatusNotFound,
	util.KindWalletNotFound:             http.StatusNotFound,
	util.KindCurrencyMismatch:           http.StatusBadRequest,
	util.KindInvalidAmount:              http.StatusBadRequest,
	util.KindInvalidInput:               http.StatusBadRequest,
	util.KindInsufficientFunds:          http.StatusPaymentRequired, // 402 Payment Required
	util.KindSameWalletTransfer:         http.StatusBadRequest,
	util.KindAlreadyProcessedOrNotFound: http.StatusConflict,
	util.KindConflict:                   http.StatusConflict,
}

// respondWithError classifies err and sends the matching status. Internal
// errors are logged and their details are not exposed.
func (h responder) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	kind := util.KindOf(err)
	statusCode, ok := statusFor[kind]
	message := err.Error()
	if !ok {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
		h.logger.ErrorContext(r.Context(), "Unhandled service error", "error", err, "path", r.URL.Path)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message, Code: string(kind)})
}

// caller returns the authenticated caller or writes a 401.
func (h responder) caller(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		h.respondWithError(w, r, util.ErrUnauthenticated)
	}
	return caller, ok
}

// pagination parses limit and offset query parameters.
func pagination(r *http.Request) (int, int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit // Default limit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0 // Default offset
	}
	return limit, offset
}

// statusFilter parses the optional status query parameter.
func statusFilter(r *http.Request) (*domain.TransactionStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	status := domain.TransactionStatus(raw)
	if !status.Valid() {
		return nil, util.ErrInvalidInput
	}
	return &status, nil
}
