package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	orderdom "agrifarm/internal/domain/order"
	profiledom "agrifarm/internal/domain/profile"
)

// OrderMailer implements usecase.CompletionNotifier with SendGrid: when
// reconciliation moves an order to completed, the farmer gets a
// confirmation mail. Best-effort by contract; the caller logs and
// continues on failure.
type OrderMailer struct {
	apiKey   string
	from     string
	profiles profiledom.Repository
}

func NewOrderMailer(apiKey, from string, profiles profiledom.Repository) *OrderMailer {
	return &OrderMailer{apiKey: apiKey, from: from, profiles: profiles}
}

func (m *OrderMailer) OrderCompleted(ctx context.Context, o orderdom.Order) error {
	if m == nil || m.apiKey == "" {
		return fmt.Errorf("mail: sendgrid api key is empty")
	}
	if m.from == "" {
		return fmt.Errorf("mail: from address is empty")
	}

	// farmer address: profiles keyed by auth uid; email is optional in
	// the MVP schema, missing address is a log-only success
	to := ""
	if m.profiles != nil {
		if p, err := m.profiles.GetByID(ctx, o.FarmerID); err == nil {
			to = p.Email
		}
	}
	if to == "" {
		log.Printf("[mail] no farmer address for order=%s farmer=%s (skipping)", o.ID, o.FarmerID)
		return nil
	}

	subject := fmt.Sprintf("Commande AgriFarm #%s payée", o.ID)
	body := fmt.Sprintf(
		"Commande %s confirmée.\nMontant produits: %d XOF\nCommission: %d XOF\nLivraison: %s, %s le %s",
		o.ID, o.TotalAmount, o.CommissionAmount, o.DeliveryAddress, o.DeliveryCommune, o.DeliveryDate,
	)

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail("AgriFarm", m.from),
		subject,
		sgmail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	resp, err := sendgrid.NewSendClient(m.apiKey).Send(message)
	if err != nil {
		return fmt.Errorf("mail: sendgrid send error: %w", err)
	}
	if resp.StatusCode >= 400 {
		log.Printf("[mail] error status=%d body=%s", resp.StatusCode, resp.Body)
		return fmt.Errorf("mail: sendgrid send failed: status=%d", resp.StatusCode)
	}

	log.Printf("[mail] order completion mail sent order=%s to=%s status=%d", o.ID, to, resp.StatusCode)
	return nil
}
