package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapProviderStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{"PAID", StatusPaid},
		{"SETTLED", StatusPaid},
		{"paid", StatusPaid},
		{"settled", StatusPaid},
		{"EXPIRED", StatusCancelled},
		{"VOIDED", StatusCancelled},
		{"CANCELED", StatusCancelled},
		{"CANCELLED", StatusCancelled},
		{"FAILED", StatusFailed},
		{"REFUNDED", StatusFailed},
		{"PENDING", StatusPending},
		{"  paid  ", StatusPaid},
		{"anything-unrecognized", StatusPending},
		{"", StatusPending},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, MapProviderStatus(c.in))
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusPaid.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}
