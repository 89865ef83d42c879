// Package billing adapts the host billing platform's database tables to the
// gateway's billing port. Reads go straight at the host tables; payment and
// ledger writes are appended in the host's own conventions so the rest of
// the platform keeps working untouched.
package billing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	billingport "molliebridge/internal/application/gateway/billing"
	apperrors "molliebridge/internal/shared/errors"
	"molliebridge/internal/shared/goroutine"
	"molliebridge/internal/shared/logger"
)

const invoiceStatusCancelled = "Cancelled"

// Adapter implements the billing port against the host schema.
type Adapter struct {
	db      *gorm.DB
	gateway string
	mailer  *Mailer
	logger  logger.Interface
}

func NewAdapter(db *gorm.DB, gateway string, mailer *Mailer, logger logger.Interface) *Adapter {
	return &Adapter{db: db, gateway: gateway, mailer: mailer, logger: logger}
}

var _ billingport.Context = (*Adapter)(nil)

func (a *Adapter) Invoice(ctx context.Context, invoiceID uint) (*billingport.Invoice, error) {
	invoice, err := a.invoiceModel(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	currency, err := a.clientCurrency(ctx, invoice.UserID)
	if err != nil {
		return nil, err
	}

	return &billingport.Invoice{
		ID:           invoice.ID,
		UserID:       invoice.UserID,
		Status:       invoice.Status,
		Total:        invoice.Total,
		CurrencyCode: currency.Code,
	}, nil
}

func (a *Adapter) Client(ctx context.Context, clientID uint) (*billingport.Client, error) {
	var model ClientModel
	if err := a.db.WithContext(ctx).First(&model, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("client %d not found", clientID))
		}
		return nil, fmt.Errorf("failed to get client %d: %w", clientID, err)
	}

	return &billingport.Client{
		ID:       model.ID,
		FullName: strings.TrimSpace(model.FirstName + " " + model.LastName),
		Email:    model.Email,
	}, nil
}

// ValidateInvoice rejects invoices the gateway must not touch: unknown IDs
// and cancelled invoices. Paid invoices pass; the caller's idempotency check
// decides whether a duplicate notification is recorded.
func (a *Adapter) ValidateInvoice(ctx context.Context, invoiceID uint) error {
	invoice, err := a.invoiceModel(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice.Status == invoiceStatusCancelled {
		return apperrors.NewValidationError(fmt.Sprintf("invoice %d is cancelled", invoiceID))
	}
	return nil
}

// ConvertFromEUR maps a EUR amount into the invoice owner's billing currency
// using the host currency table. Rates in that table are relative to the
// platform's base currency, so the conversion goes through it: divide out
// the EUR rate, multiply in the target rate.
func (a *Adapter) ConvertFromEUR(ctx context.Context, invoiceID uint, amount float64) (float64, error) {
	invoice, err := a.invoiceModel(ctx, invoiceID)
	if err != nil {
		return 0, err
	}

	target, err := a.clientCurrency(ctx, invoice.UserID)
	if err != nil {
		return 0, err
	}
	if target.Code == "EUR" {
		return round2(amount), nil
	}

	var eur CurrencyModel
	if err := a.db.WithContext(ctx).Where("code = ?", "EUR").First(&eur).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NewInternalError("EUR currency is not configured")
		}
		return 0, fmt.Errorf("failed to get EUR currency: %w", err)
	}
	if eur.Rate == 0 || target.Rate == 0 {
		return 0, apperrors.NewInternalError("currency rate is zero")
	}

	return round2(amount / eur.Rate * target.Rate), nil
}

func (a *Adapter) PaymentExists(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	if err := a.db.WithContext(ctx).
		Model(&AccountModel{}).
		Where("gateway = ? AND transid = ?", a.gateway, transactionID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check transaction %s: %w", transactionID, err)
	}
	return count > 0, nil
}

// AddInvoicePayment appends the ledger entry and marks the invoice paid once
// the recorded payments cover its total.
func (a *Adapter) AddInvoicePayment(ctx context.Context, invoiceID uint, transactionID string, amount, fee float64) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice InvoiceModel
		if err := tx.First(&invoice, invoiceID).Error; err != nil {
			return fmt.Errorf("failed to get invoice %d: %w", invoiceID, err)
		}

		entry := AccountModel{
			UserID:    invoice.UserID,
			InvoiceID: invoiceID,
			TransID:   transactionID,
			Gateway:   a.gateway,
			AmountIn:  amount,
			Fees:      fee,
			Date:      time.Now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		var paid float64
		if err := tx.Model(&AccountModel{}).
			Where("invoiceid = ?", invoiceID).
			Select("COALESCE(SUM(amountin - amountout), 0)").
			Scan(&paid).Error; err != nil {
			return fmt.Errorf("failed to sum invoice payments: %w", err)
		}

		if paid >= invoice.Total {
			if err := tx.Model(&InvoiceModel{}).
				Where("id = ?", invoiceID).
				Update("status", billingport.InvoiceStatusPaid).Error; err != nil {
				return fmt.Errorf("failed to mark invoice %d paid: %w", invoiceID, err)
			}
		}

		return nil
	})
}

func (a *Adapter) MarkInvoiceUnpaid(ctx context.Context, invoiceID uint) error {
	if err := a.db.WithContext(ctx).
		Model(&InvoiceModel{}).
		Where("id = ?", invoiceID).
		Update("status", billingport.InvoiceStatusUnpaid).Error; err != nil {
		return fmt.Errorf("failed to mark invoice %d unpaid: %w", invoiceID, err)
	}
	return nil
}

func (a *Adapter) AddClientTransaction(ctx context.Context, clientID uint, description string, amountOut float64, transactionID string, invoiceID uint) error {
	entry := AccountModel{
		UserID:      clientID,
		InvoiceID:   invoiceID,
		TransID:     transactionID,
		Gateway:     a.gateway,
		Description: description,
		AmountOut:   amountOut,
		Date:        time.Now(),
	}
	if err := a.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record client transaction: %w", err)
	}
	return nil
}

func (a *Adapter) FindInvoiceByTransaction(ctx context.Context, transactionID string) (uint, error) {
	var entry AccountModel
	if err := a.db.WithContext(ctx).
		Where("gateway = ? AND transid = ?", a.gateway, transactionID).
		Order("id DESC").
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to look up transaction %s: %w", transactionID, err)
	}
	return entry.InvoiceID, nil
}

func (a *Adapter) SendPaymentConfirmation(ctx context.Context, invoiceID uint) error {
	return a.sendMail(ctx, invoiceID, templatePaymentConfirmation, fallbackPaymentConfirmation)
}

func (a *Adapter) SendPaymentFailed(ctx context.Context, invoiceID uint) error {
	return a.sendMail(ctx, invoiceID, templatePaymentFailed, fallbackPaymentFailed)
}

// sendMail resolves the recipient and template synchronously, then hands the
// SMTP round trip to a background goroutine so webhook handling never blocks
// on the mail server.
func (a *Adapter) sendMail(ctx context.Context, invoiceID uint, templateName, fallbackName string) error {
	invoice, err := a.invoiceModel(ctx, invoiceID)
	if err != nil {
		return err
	}

	client, err := a.Client(ctx, invoice.UserID)
	if err != nil {
		return err
	}

	tmpl, err := a.emailTemplate(ctx, templateName, fallbackName)
	if err != nil {
		return err
	}

	msg := renderTemplate(tmpl, client, invoiceID)

	goroutine.SafeGo(a.logger, "billing-mail", func() {
		if err := a.mailer.Send(client.Email, client.FullName, msg.Subject, msg.Body); err != nil {
			a.logger.Errorw("failed to send payment email",
				"invoice_id", invoiceID, "template", tmpl.Name, "error", err)
		}
	})

	return nil
}

func (a *Adapter) emailTemplate(ctx context.Context, name, fallback string) (*EmailTemplateModel, error) {
	var tmpl EmailTemplateModel
	err := a.db.WithContext(ctx).
		Where("type = ? AND name = ?", "invoice", name).
		First(&tmpl).Error
	if err == nil {
		return &tmpl, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get email template %q: %w", name, err)
	}

	if err := a.db.WithContext(ctx).
		Where("type = ? AND name = ?", "invoice", fallback).
		First(&tmpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("email template %q not found", name))
		}
		return nil, fmt.Errorf("failed to get email template %q: %w", fallback, err)
	}
	return &tmpl, nil
}

func (a *Adapter) invoiceModel(ctx context.Context, invoiceID uint) (*InvoiceModel, error) {
	var model InvoiceModel
	if err := a.db.WithContext(ctx).First(&model, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("invoice %d not found", invoiceID))
		}
		return nil, fmt.Errorf("failed to get invoice %d: %w", invoiceID, err)
	}
	return &model, nil
}

func (a *Adapter) clientCurrency(ctx context.Context, clientID uint) (*CurrencyModel, error) {
	var client ClientModel
	if err := a.db.WithContext(ctx).First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("client %d not found", clientID))
		}
		return nil, fmt.Errorf("failed to get client %d: %w", clientID, err)
	}

	var currency CurrencyModel
	if err := a.db.WithContext(ctx).First(&currency, client.CurrencyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewInternalError(
				fmt.Sprintf("currency %d for client %d is not configured", client.CurrencyID, clientID))
		}
		return nil, fmt.Errorf("failed to get currency %d: %w", client.CurrencyID, err)
	}
	return &currency, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
