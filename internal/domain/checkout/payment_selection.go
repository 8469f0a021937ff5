package checkout

import (
	"strings"

	orderdom "agrifarm/internal/domain/order"
)

// PaymentSelection is the method the buyer picked, discriminated by
// Method. Exactly one method is active at a time; the mobile money fields
// are meaningful only for MethodMobileMoney.
type PaymentSelection struct {
	Method  orderdom.PaymentMethod `json:"method"`
	Network string                 `json:"network,omitempty"` // mtn | moov
	Phone   string                 `json:"phone,omitempty"`
}

// Normalize trims and lowercases the discriminating fields.
func (s PaymentSelection) Normalize() PaymentSelection {
	s.Method = orderdom.PaymentMethod(strings.ToLower(strings.TrimSpace(string(s.Method))))
	s.Network = strings.ToLower(strings.TrimSpace(s.Network))
	s.Phone = strings.TrimSpace(s.Phone)
	return s
}

// Validate checks structural validity of the selection. Whether the
// method is actually payable (wallet is a placeholder) is decided by the
// payment orchestrator, not here.
func (s PaymentSelection) Validate() error {
	s = s.Normalize()
	switch s.Method {
	case orderdom.MethodMobileMoney:
		if s.Phone == "" {
			return ErrInvalidSelection
		}
		for _, n := range MobileNetworks {
			if s.Network == n {
				return nil
			}
		}
		return ErrUnknownMobileMoney
	case orderdom.MethodCard, orderdom.MethodWallet:
		return nil
	default:
		return ErrInvalidSelection
	}
}
