package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	orderdom "agrifarm/internal/domain/order"
)

func TestMapGatewayStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want orderdom.PaymentStatus
	}{
		{"approved", orderdom.PaymentCompleted},
		{"declined", orderdom.PaymentFailed},
		{"canceled", orderdom.PaymentFailed},
		{"processing", orderdom.PaymentProcessing},
		{"pending", orderdom.PaymentPending},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, MapGatewayStatus(tc.raw), "raw=%q", tc.raw)
	}
}

func TestMapGatewayStatusUnknownNeverCompletes(t *testing.T) {
	for _, raw := range []string{"", "transferred", "refunded", "APPROVED", "expired", "weird-future-code"} {
		got := MapGatewayStatus(raw)
		assert.Equalf(t, orderdom.PaymentPending, got, "raw=%q", raw)
	}
}
