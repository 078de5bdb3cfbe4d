package stripe

import "strings"

// NormalizePaymentStatus folds Stripe checkout/payment-intent statuses into
// the small set stored on payments: paid | pending | failed | none.
func NormalizePaymentStatus(s string) string {
	switch strings.TrimSpace(s) {
	case "":
		return "none"
	case "paid", "succeeded", "no_payment_required":
		return "paid"
	case "unpaid", "processing", "requires_action", "requires_confirmation", "requires_payment_method":
		return "pending"
	case "canceled", "expired", "failed":
		return "failed"
	default:
		return strings.TrimSpace(s)
	}
}
