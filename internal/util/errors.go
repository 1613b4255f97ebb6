// internal/util/errors.go
package util

import (
	"errors"
	"fmt"
)

// Common application-specific errors.
var (
	ErrForbidden                  = errors.New("forbidden")
	ErrUnauthenticated            = errors.New("unauthenticated")
	ErrNotFound                   = errors.New("resource not found")
	ErrWalletNotFound             = errors.New("wallet not found")
	ErrCurrencyMismatch           = errors.New("currency mismatch")
	ErrInvalidAmount              = errors.New("invalid amount")
	ErrInvalidInput               = errors.New("invalid input provided")
	ErrInsufficientFunds          = errors.New("insufficient funds")
	ErrSameWalletTransfer         = errors.New("cannot transfer to the same wallet")
	ErrAlreadyProcessedOrNotFound = errors.New("transaction already processed or not found")
	ErrConcurrentModification     = errors.New("concurrent modification detected")
	ErrInternal                   = errors.New("internal error")
)

// Kind is the logical classification of an error returned by the service layer.
// Transport layers map kinds to their own status codes.
type Kind string

const (
	KindForbidden                  Kind = "FORBIDDEN"
	KindUnauthenticated            Kind = "UNAUTHENTICATED"
	KindNotFound                   Kind = "NOT_FOUND"
	KindWalletNotFound             Kind = "WALLET_NOT_FOUND"
	KindCurrencyMismatch           Kind = "CURRENCY_MISMATCH"
	KindInvalidAmount              Kind = "INVALID_AMOUNT"
	KindInvalidInput               Kind = "INVALID_INPUT"
	KindInsufficientFunds          Kind = "INSUFFICIENT_FUNDS"
	KindSameWalletTransfer         Kind = "SAME_WALLET_TRANSFER"
	KindAlreadyProcessedOrNotFound Kind = "ALREADY_PROCESSED_OR_NOT_FOUND"
	KindConflict                   Kind = "CONFLICT"
	KindInternal                   Kind = "INTERNAL"
)

// Order matters: ErrInternal is checked last so a classified cause joined
// with it keeps its own kind.
var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrForbidden, KindForbidden},
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrAlreadyProcessedOrNotFound, KindAlreadyProcessedOrNotFound},
	{ErrWalletNotFound, KindWalletNotFound},
	{ErrNotFound, KindNotFound},
	{ErrCurrencyMismatch, KindCurrencyMismatch},
	{ErrInvalidAmount, KindInvalidAmount},
	{ErrInvalidInput, KindInvalidInput},
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrSameWalletTransfer, KindSameWalletTransfer},
	{ErrConcurrentModification, KindConflict},
}

// IsError reports whether err matches target anywhere in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// KindOf classifies err. Unclassified errors are reported as KindInternal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsClassified reports whether err carries one of the known sentinel errors
// other than ErrInternal.
func IsClassified(err error) bool {
	return KindOf(err) != KindInternal
}

// Internal marks err as an infrastructure failure while keeping the cause
// reachable through errors.Is/As.
func Internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}
