package payment

import "strings"

// MapProviderStatus translates the provider's status vocabulary into the
// internal enum. Unrecognized values map to PENDING so that an unknown
// callback never flips an order into a terminal state.
func MapProviderStatus(providerStatus string) Status {
	switch strings.ToUpper(strings.TrimSpace(providerStatus)) {
	case "PAID", "SETTLED":
		return StatusPaid
	case "EXPIRED", "VOIDED", "CANCELED", "CANCELLED":
		return StatusCancelled
	case "FAILED", "REFUNDED":
		return StatusFailed
	default:
		return StatusPending
	}
}
