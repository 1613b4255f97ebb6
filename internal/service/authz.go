// internal/service/authz.go
package service

import (
	"custody-wallet/internal/domain"
	"custody-wallet/internal/util"
)

// Operation names a service entry point that is subject to authorization.
type Operation string

const (
	OpInitiateTransfer     Operation = "InitiateTransfer"
	OpGetOwnWallet         Operation = "GetWallet"
	OpListOwnTransactions  Operation = "ListOwnTransactions"
	OpGetOwnTransaction    Operation = "GetOwnTransaction"
	OpApproveTransaction   Operation = "ApproveTransaction"
	OpListAllTransactions  Operation = "ListAllTransactions"
	OpGetAnyTransaction    Operation = "GetAnyTransaction"
	OpListPayments         Operation = "ListPayments"
	OpGetPayment           Operation = "GetPayment"
	OpListPaymentSummaries Operation = "ListPaymentSummaries"
	OpGenerateSummary      Operation = "GenerateSummary"
)

// requiredCapability is the single source of truth for who may call what.
var requiredCapability = map[Operation]domain.Capability{
	OpInitiateTransfer:     domain.CapTransfer,
	OpGetOwnWallet:         domain.CapReadOwn,
	OpListOwnTransactions:  domain.CapReadOwn,
	OpGetOwnTransaction:    domain.CapReadOwn,
	OpApproveTransaction:   domain.CapApprove,
	OpListAllTransactions:  domain.CapReadAll,
	OpGetAnyTransaction:    domain.CapReadAll,
	OpListPayments:         domain.CapReports,
	OpGetPayment:           domain.CapReports,
	OpListPaymentSummaries: domain.CapReports,
	OpGenerateSummary:      domain.CapReports,
}

// authorize returns util.ErrForbidden unless caller holds the capability op requires.
// Unknown operations are denied.
func authorize(caller domain.Caller, op Operation) error {
	capability, ok := requiredCapability[op]
	if !ok || !caller.Can(capability) {
		return util.ErrForbidden
	}
	return nil
}
