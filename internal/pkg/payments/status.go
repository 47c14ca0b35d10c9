package payments

import "strings"

// Outcome classifies an upstream gateway status for the verifier state
// machine.
type Outcome int

const (
	// OutcomeSuccess credits the ledger and completes the transaction.
	OutcomeSuccess Outcome = iota
	// OutcomeFailed marks the transaction failed, no credit.
	OutcomeFailed
	// OutcomeCancelled marks the transaction cancelled, no credit.
	OutcomeCancelled
	// OutcomePending leaves the transaction untouched ("still processing").
	OutcomePending
)

// ClassifyStatus maps raw gateway status strings onto verifier outcomes.
// Cashfree reports PAID/SUCCESS; Oxapay reports paid/success/confirming,
// where "confirming" already guarantees settlement and is treated as
// success. "waiting" and anything unrecognized stay non-terminal so a new
// gateway status can never strand or mis-settle an order.
func ClassifyStatus(status string) Outcome {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "paid", "success", "confirming":
		return OutcomeSuccess
	case "failed":
		return OutcomeFailed
	case "cancelled", "canceled":
		return OutcomeCancelled
	default:
		return OutcomePending
	}
}
