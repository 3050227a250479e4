package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"jobsbreeze-backend/calculator"
	"jobsbreeze-backend/models"
	"jobsbreeze-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxInvoiceNumberAttempts = 3

// InvoiceInput defines the expected JSON structure for creating an invoice
type InvoiceInput struct {
	ClientID      uuid.UUID       `json:"clientId" binding:"required"`
	InvoiceDate   *time.Time      `json:"invoiceDate"`
	DueDate       *time.Time      `json:"dueDate"`
	TaxRate       *float64        `json:"taxRate"`
	Items         []LineItemInput `json:"items" binding:"required,min=1"`
	PaidAmount    float64         `json:"paidAmount" binding:"min=0"`
	PaymentMethod string          `json:"paymentMethod"`
	Notes         string          `json:"notes"`
}

// InvoiceUpdate defines the expected JSON structure for updating an invoice
type InvoiceUpdate struct {
	ClientID      *uuid.UUID       `json:"clientId"`
	InvoiceDate   *time.Time       `json:"invoiceDate"`
	DueDate       *time.Time       `json:"dueDate"`
	TaxRate       *float64         `json:"taxRate"`
	Items         *[]LineItemInput `json:"items"`
	PaymentMethod *string          `json:"paymentMethod"`
	Notes         *string          `json:"notes"`
}

type InvoiceFilter struct {
	PaymentStatus string
	ClientID      *uuid.UUID
}

type InvoiceService struct {
	db  *gorm.DB
	log *zap.Logger

	Now func() time.Time
}

func NewInvoiceService(db *gorm.DB, log *zap.Logger) *InvoiceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvoiceService{db: db, log: log, Now: time.Now}
}

// Create validates the lines, computes totals and stores the invoice.
func (s *InvoiceService) Create(ctx context.Context, owner uuid.UUID, in InvoiceInput) (*models.Invoice, error) {
	db := s.db.WithContext(ctx)
	client, err := ownedClient(db, owner, in.ClientID)
	if err != nil {
		return nil, err
	}
	profile, err := profileOf(db, owner)
	if err != nil {
		return nil, err
	}

	taxRate := profile.DefaultTaxRate
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	if err := calculator.ValidateTaxRate(taxRate); err != nil {
		verr := &ValidationError{}
		verr.addField("", err)
		return nil, verr
	}
	lines, err := buildLines(db, owner, in.Items)
	if err != nil {
		return nil, err
	}

	invoiceDate := s.Now()
	if in.InvoiceDate != nil {
		invoiceDate = *in.InvoiceDate
	}
	invoice := &models.Invoice{
		UserID:        owner,
		ClientID:      client.ID,
		InvoiceDate:   invoiceDate,
		DueDate:       in.DueDate,
		TaxRate:       taxRate,
		PaidAmount:    in.PaidAmount,
		PaymentMethod: in.PaymentMethod,
		Notes:         strings.TrimSpace(in.Notes),
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return s.insert(tx, invoice, lines)
	}); err != nil {
		return nil, err
	}
	invoice.Client = client
	return invoice, nil
}

// insert assigns an invoice number and writes the invoice with its items. The caller
// owns the transaction. A number already in use is regenerated.
func (s *InvoiceService) insert(tx *gorm.DB, invoice *models.Invoice, lines []calculator.Line) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	invoice.Items = toInvoiceItems(invoice.ID, lines)
	invoice.Recalculate()

	for attempt := 1; attempt <= maxInvoiceNumberAttempts; attempt++ {
		invoice.InvoiceNumber = "INV-" + invoice.InvoiceDate.Format("20060102") + "-" + utils.GenerateRandomString(6)

		var taken int64
		if err := tx.Model(&models.Invoice{}).Where("invoice_number = ?", invoice.InvoiceNumber).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			continue
		}
		if err := tx.Omit("Client").Create(invoice).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		s.log.Info("invoice created",
			zap.String("invoiceNumber", invoice.InvoiceNumber), zap.Float64("total", invoice.Total))
		return nil
	}
	return ErrInvoiceNumber
}

func (s *InvoiceService) Get(ctx context.Context, owner, id uuid.UUID) (*models.Invoice, error) {
	return s.load(s.db.WithContext(ctx), owner, id)
}

func (s *InvoiceService) load(db *gorm.DB, owner, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := db.Preload("Items").Preload("Client").
		Where("user_id = ? AND id = ?", owner, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (s *InvoiceService) List(ctx context.Context, owner uuid.UUID, f InvoiceFilter) ([]models.Invoice, error) {
	q := s.db.WithContext(ctx).Preload("Items").Preload("Client").Where("user_id = ?", owner)
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", strings.ToUpper(f.PaymentStatus))
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}

	var invoices []models.Invoice
	if err := q.Order("invoice_date DESC").Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Update applies a partial update; replacing items recomputes every total.
func (s *InvoiceService) Update(ctx context.Context, owner, id uuid.UUID, in InvoiceUpdate) (*models.Invoice, error) {
	var updated *models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.load(tx, owner, id)
		if err != nil {
			return err
		}

		if in.ClientID != nil {
			client, err := ownedClient(tx, owner, *in.ClientID)
			if err != nil {
				return err
			}
			invoice.ClientID = client.ID
			invoice.Client = client
		}
		if in.InvoiceDate != nil {
			invoice.InvoiceDate = *in.InvoiceDate
		}
		if in.DueDate != nil {
			invoice.DueDate = in.DueDate
		}
		if in.TaxRate != nil {
			if err := calculator.ValidateTaxRate(*in.TaxRate); err != nil {
				verr := &ValidationError{}
				verr.addField("", err)
				return verr
			}
			invoice.TaxRate = *in.TaxRate
		}
		if in.PaymentMethod != nil {
			invoice.PaymentMethod = *in.PaymentMethod
		}
		if in.Notes != nil {
			invoice.Notes = strings.TrimSpace(*in.Notes)
		}

		if in.Items != nil {
			lines, err := buildLines(tx, owner, *in.Items)
			if err != nil {
				return err
			}
			if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
				return fmt.Errorf("clear invoice items: %w", err)
			}
			invoice.Items = toInvoiceItems(invoice.ID, lines)
			if len(invoice.Items) > 0 {
				if err := tx.Create(&invoice.Items).Error; err != nil {
					return fmt.Errorf("create invoice items: %w", err)
				}
			}
		}

		invoice.Recalculate()
		if err := tx.Omit(clause.Associations).Save(invoice).Error; err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RecordPayment adds amount to the paid total and refreshes the payment status.
func (s *InvoiceService) RecordPayment(ctx context.Context, owner, id uuid.UUID, amount float64, method string) (*models.Invoice, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		verr := &ValidationError{}
		verr.add("amount", "Payment amount must be greater than 0")
		return nil, verr
	}

	var updated *models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.load(tx, owner, id)
		if err != nil {
			return err
		}
		invoice.PaidAmount += amount
		if method != "" {
			invoice.PaymentMethod = method
		}
		invoice.PaymentStatus = calculator.PaymentStatus(invoice.PaidAmount, invoice.Total)
		if err := tx.Model(invoice).Select("paid_amount", "payment_method", "payment_status").Updates(invoice).Error; err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the invoice and its items and unlinks the source estimate.
func (s *InvoiceService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Where("user_id = ? AND id = ?", owner, id).First(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return fmt.Errorf("delete invoice items: %w", err)
		}
		if err := tx.Model(&models.Estimate{}).Where("invoice_id = ?", invoice.ID).Update("invoice_id", nil).Error; err != nil {
			return fmt.Errorf("unlink estimate: %w", err)
		}
		return tx.Delete(&invoice).Error
	})
}
