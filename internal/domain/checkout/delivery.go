package checkout

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingField       = errors.New("checkout: required delivery field is empty")
	ErrBadDeliveryDate    = errors.New("checkout: delivery date is malformed")
	ErrPastDeliveryDate   = errors.New("checkout: delivery date is before today")
	ErrInvalidSelection   = errors.New("checkout: invalid payment selection")
	ErrUnknownMobileMoney = errors.New("checkout: unknown mobile money network")
)

const deliveryDateLayout = "2006-01-02"

// MobileNetworks are the supported mobile money operators.
var MobileNetworks = []string{"mtn", "moov"}

// DeliveryInfo is ephemeral, scoped to one checkout session. Instructions
// are the only optional field.
type DeliveryInfo struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Quarter      string `json:"quarter"`
	Commune      string `json:"commune"`
	DeliveryDate string `json:"deliveryDate"` // YYYY-MM-DD
	Instructions string `json:"instructions"`
}

// Normalize trims every field.
func (d DeliveryInfo) Normalize() DeliveryInfo {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address = strings.TrimSpace(d.Address)
	d.Quarter = strings.TrimSpace(d.Quarter)
	d.Commune = strings.TrimSpace(d.Commune)
	d.DeliveryDate = strings.TrimSpace(d.DeliveryDate)
	d.Instructions = strings.TrimSpace(d.Instructions)
	return d
}

// Validate checks structural validity: all required fields non-empty and
// the requested delivery date not earlier than today (local day of `now`).
func (d DeliveryInfo) Validate(now time.Time) error {
	d = d.Normalize()
	if d.FullName == "" || d.Phone == "" || d.Address == "" || d.Quarter == "" || d.Commune == "" || d.DeliveryDate == "" {
		return ErrMissingField
	}

	date, err := time.ParseInLocation(deliveryDateLayout, d.DeliveryDate, now.Location())
	if err != nil {
		return ErrBadDeliveryDate
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return ErrPastDeliveryDate
	}
	return nil
}

// CombinedAddress renders the address stored on the order ("address, quarter").
func (d DeliveryInfo) CombinedAddress() string {
	d = d.Normalize()
	if d.Quarter == "" {
		return d.Address
	}
	return d.Address + ", " + d.Quarter
}
