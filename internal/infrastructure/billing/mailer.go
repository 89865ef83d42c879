package billing

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	billingport "molliebridge/internal/application/gateway/billing"
	"molliebridge/internal/shared/config"
)

// Template names looked up in the host email template table. The credit card
// fallbacks ship with the platform, so a fresh install can send mail before
// the operator customizes anything.
const (
	templatePaymentConfirmation = "Mollie Recurring Payment Confirmation"
	fallbackPaymentConfirmation = "Credit Card Payment Confirmation"
	templatePaymentFailed       = "Mollie Recurring Payment Failed"
	fallbackPaymentFailed       = "Credit Card Payment Failed"
)

type Mailer struct {
	dialer      *gomail.Dialer
	fromAddress string
	fromName    string
}

func NewMailer(cfg *config.EmailConfig) *Mailer {
	return &Mailer{
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
	}
}

func (m *Mailer) Send(toAddress, toName, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromAddress, m.fromName)
	msg.SetAddressHeader("To", toAddress, toName)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", toAddress, err)
	}
	return nil
}

type renderedMail struct {
	Subject string
	Body    string
}

// renderTemplate substitutes the merge fields the gateway templates use.
// Unknown fields are left in place for the operator to spot.
func renderTemplate(tmpl *EmailTemplateModel, client *billingport.Client, invoiceID uint) renderedMail {
	replacer := strings.NewReplacer(
		"%client_name%", client.FullName,
		"%invoice_id%", fmt.Sprintf("%d", invoiceID),
	)
	return renderedMail{
		Subject: replacer.Replace(tmpl.Subject),
		Body:    replacer.Replace(tmpl.Message),
	}
}
