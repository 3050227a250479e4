package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobsbreeze-backend/calculator"
	"jobsbreeze-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxEstimateIDAttempts = 5

// EstimateNotifier is told when an estimate is sent to its client.
type EstimateNotifier interface {
	NotifyEstimateSent(ctx context.Context, estimate *models.Estimate, client *models.Client) error
}

// EstimateInput creates an estimate together with its line items.
type EstimateInput struct {
	ClientID   uuid.UUID       `json:"clientId" binding:"required"`
	Date       *time.Time      `json:"date"`
	ExpiryDate *time.Time      `json:"expiryDate"`
	TaxRate    *float64        `json:"taxRate"`
	IsDraft    *bool           `json:"isDraft"`
	Notes      string          `json:"notes"`
	Terms      *string         `json:"terms"`
	LineItems  []LineItemInput `json:"lineItems"`
}

// EstimateUpdate is a partial update. Client, date, tax rate and line items can only
// change while the estimate is a draft.
type EstimateUpdate struct {
	ClientID   *uuid.UUID       `json:"clientId"`
	Date       *time.Time       `json:"date"`
	ExpiryDate *time.Time       `json:"expiryDate"`
	TaxRate    *float64         `json:"taxRate"`
	Notes      *string          `json:"notes"`
	Terms      *string          `json:"terms"`
	LineItems  *[]LineItemInput `json:"lineItems"`
}

func (u EstimateUpdate) touchesPricing() bool {
	return u.ClientID != nil || u.Date != nil || u.TaxRate != nil || u.LineItems != nil
}

// EstimateFilter narrows List. Status accepts DRAFT in addition to the stored statuses.
type EstimateFilter struct {
	Status   string
	ClientID *uuid.UUID
	Sort     string
	Order    string
}

var estimateSortColumns = map[string]string{
	"date":       "date",
	"amount":     "amount",
	"estimateId": "estimate_id",
	"status":     "status",
	"createdAt":  "created_at",
	"expiryDate": "expiry_date",
}

type EstimateService struct {
	db       *gorm.DB
	invoices *InvoiceService
	notifier EstimateNotifier
	log      *zap.Logger

	// Swappable for tests.
	NewEstimateID func(time.Time) string
	Now           func() time.Time
}

func NewEstimateService(db *gorm.DB, invoices *InvoiceService, notifier EstimateNotifier, log *zap.Logger) *EstimateService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EstimateService{
		db:            db,
		invoices:      invoices,
		notifier:      notifier,
		log:           log,
		NewEstimateID: calculator.GenerateEstimateID,
		Now:           time.Now,
	}
}

// Preview computes line amounts and totals without touching any estimate.
func (s *EstimateService) Preview(ctx context.Context, owner uuid.UUID, inputs []LineItemInput, taxRate float64) ([]calculator.Line, calculator.Totals, error) {
	if err := calculator.ValidateTaxRate(taxRate); err != nil {
		verr := &ValidationError{}
		verr.addField("", err)
		return nil, calculator.Totals{}, verr
	}
	lines, err := buildLines(s.db.WithContext(ctx), owner, inputs)
	if err != nil {
		return nil, calculator.Totals{}, err
	}
	return lines, calculator.ComputeTotals(lines, taxRate), nil
}

// Create stores the estimate and its line items in one transaction. A colliding
// identifier is regenerated up to maxEstimateIDAttempts times.
func (s *EstimateService) Create(ctx context.Context, owner uuid.UUID, in EstimateInput) (*models.Estimate, error) {
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
	verr := &ValidationError{}
	if err := calculator.ValidateTaxRate(taxRate); err != nil {
		verr.addField("", err)
	}
	lines, err := buildLines(db, owner, in.LineItems)
	if err != nil {
		var lineErr *ValidationError
		if !errors.As(err, &lineErr) {
			return nil, err
		}
		for k, v := range lineErr.Fields {
			verr.add(k, v)
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	date := s.Now()
	if in.Date != nil {
		date = *in.Date
	}
	expiry := in.ExpiryDate
	if expiry == nil && profile.EstimateValidityDays > 0 {
		e := date.AddDate(0, 0, profile.EstimateValidityDays)
		expiry = &e
	}
	terms := profile.DefaultTerms
	if in.Terms != nil {
		terms = *in.Terms
	}
	isDraft := true
	if in.IsDraft != nil {
		isDraft = *in.IsDraft
	}

	estimate := models.Estimate{
		ID:         uuid.New(),
		UserID:     owner,
		ClientID:   client.ID,
		Status:     models.StatusPending,
		IsDraft:    isDraft,
		TaxRate:    taxRate,
		Date:       date,
		ExpiryDate: expiry,
		Notes:      strings.TrimSpace(in.Notes),
		Terms:      terms,
	}
	estimate.LineItems = toLineItems(estimate.ID, lines)
	estimate.Recalculate()

	for attempt := 1; attempt <= maxEstimateIDAttempts; attempt++ {
		estimate.EstimateID = s.NewEstimateID(date)
		err = db.Transaction(func(tx *gorm.DB) error {
			var taken int64
			if err := tx.Model(&models.Estimate{}).Where("estimate_id = ?", estimate.EstimateID).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return gorm.ErrDuplicatedKey
			}
			return tx.Omit("Client").Create(&estimate).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Debug("estimate id collision",
				zap.String("estimateId", estimate.EstimateID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create estimate: %w", err)
		}

		estimate.Client = client
		s.log.Info("estimate created",
			zap.String("id", estimate.ID.String()),
			zap.String("estimateId", estimate.EstimateID),
			zap.Bool("draft", estimate.IsDraft))
		if !estimate.IsDraft {
			s.notify(ctx, &estimate, client)
		}
		return &estimate, nil
	}
	return nil, ErrEstimateIDExhausted
}

// Get loads one estimate with its client and line items.
func (s *EstimateService) Get(ctx context.Context, owner, id uuid.UUID) (*models.Estimate, error) {
	return s.load(s.db.WithContext(ctx), owner, id)
}

func (s *EstimateService) load(db *gorm.DB, owner, id uuid.UUID) (*models.Estimate, error) {
	var estimate models.Estimate
	err := db.Preload("Client").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("user_id = ? AND id = ?", owner, id).
		First(&estimate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &estimate, nil
}

// List returns the owner's estimates, newest first unless another sort is requested.
func (s *EstimateService) List(ctx context.Context, owner uuid.UUID, f EstimateFilter) ([]models.Estimate, error) {
	q := s.db.WithContext(ctx).Preload("Client").Preload("LineItems").Where("user_id = ?", owner)

	switch status := strings.ToUpper(f.Status); status {
	case "":
	case string(models.StageDraft):
		q = q.Where("is_draft = ?", true)
	default:
		q = q.Where("is_draft = ? AND status = ?", false, status)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}

	column, ok := estimateSortColumns[f.Sort]
	if !ok {
		column = "date"
	}
	desc := !strings.EqualFold(f.Order, "asc")
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order("created_at DESC")

	var estimates []models.Estimate
	if err := q.Find(&estimates).Error; err != nil {
		return nil, err
	}
	return estimates, nil
}

// Update applies a partial update and recomputes totals.
func (s *EstimateService) Update(ctx context.Context, owner, id uuid.UUID, in EstimateUpdate) (*models.Estimate, error) {
	var updated *models.Estimate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		estimate, err := s.load(tx, owner, id)
		if err != nil {
			return err
		}
		if in.touchesPricing() && !estimate.IsDraft {
			return ErrEstimateLocked
		}

		if in.ClientID != nil {
			client, err := ownedClient(tx, owner, *in.ClientID)
			if err != nil {
				return err
			}
			estimate.ClientID = client.ID
			estimate.Client = client
		}
		if in.Date != nil {
			estimate.Date = *in.Date
		}
		if in.ExpiryDate != nil {
			estimate.ExpiryDate = in.ExpiryDate
		}
		if in.Notes != nil {
			estimate.Notes = strings.TrimSpace(*in.Notes)
		}
		if in.Terms != nil {
			estimate.Terms = *in.Terms
		}
		if in.TaxRate != nil {
			if err := calculator.ValidateTaxRate(*in.TaxRate); err != nil {
				verr := &ValidationError{}
				verr.addField("", err)
				return verr
			}
			estimate.TaxRate = *in.TaxRate
		}

		if in.LineItems != nil {
			lines, err := buildLines(tx, owner, *in.LineItems)
			if err != nil {
				return err
			}
			if err := tx.Where("estimate_id = ?", estimate.ID).Delete(&models.LineItem{}).Error; err != nil {
				return fmt.Errorf("clear line items: %w", err)
			}
			estimate.LineItems = toLineItems(estimate.ID, lines)
			if len(estimate.LineItems) > 0 {
				if err := tx.Create(&estimate.LineItems).Error; err != nil {
					return fmt.Errorf("create line items: %w", err)
				}
			}
		}

		estimate.Recalculate()
		if err := tx.Omit(clause.Associations).Save(estimate).Error; err != nil {
			return fmt.Errorf("save estimate: %w", err)
		}
		updated = estimate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddLineItem appends a line to a draft estimate and persists the new totals.
func (s *EstimateService) AddLineItem(ctx context.Context, owner, id uuid.UUID, in LineItemInput) (*models.Estimate, error) {
	return s.editLines(ctx, owner, id, func(tx *gorm.DB, estimate *models.Estimate) error {
		line, err := buildLine(tx, owner, in)
		if err != nil {
			return lineError(err)
		}
		item := toLineItems(estimate.ID, []calculator.Line{line})[0]
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("create line item: %w", err)
		}
		estimate.LineItems = append(estimate.LineItems, item)
		return nil
	})
}

// UpdateLineItem edits one line of a draft estimate. Quantity and unit price changes
// recompute the line amount and the estimate totals.
func (s *EstimateService) UpdateLineItem(ctx context.Context, owner, id, lineID uuid.UUID, patch LineItemPatch) (*models.Estimate, error) {
	return s.editLines(ctx, owner, id, func(tx *gorm.DB, estimate *models.Estimate) error {
		idx := indexOfLine(estimate.LineItems, lineID)
		if idx < 0 {
			return ErrNotFound
		}
		line := patch.apply(lineOf(estimate.LineItems[idx]))
		if err := validateLine(line); err != nil {
			return lineError(err)
		}

		item := &estimate.LineItems[idx]
		item.Description = line.Description
		item.Quantity = line.Quantity
		item.UnitPrice = line.UnitPrice
		item.Amount = line.Amount
		if err := tx.Model(item).Select("description", "quantity", "unit_price", "amount").Updates(item).Error; err != nil {
			return fmt.Errorf("update line item: %w", err)
		}
		return nil
	})
}

// RemoveLineItem deletes one line of a draft estimate.
func (s *EstimateService) RemoveLineItem(ctx context.Context, owner, id, lineID uuid.UUID) (*models.Estimate, error) {
	return s.editLines(ctx, owner, id, func(tx *gorm.DB, estimate *models.Estimate) error {
		idx := indexOfLine(estimate.LineItems, lineID)
		if idx < 0 {
			return ErrNotFound
		}
		if err := tx.Delete(&models.LineItem{}, "id = ?", lineID).Error; err != nil {
			return fmt.Errorf("delete line item: %w", err)
		}
		estimate.LineItems = append(estimate.LineItems[:idx], estimate.LineItems[idx+1:]...)
		return nil
	})
}

func (s *EstimateService) editLines(ctx context.Context, owner, id uuid.UUID, edit func(tx *gorm.DB, estimate *models.Estimate) error) (*models.Estimate, error) {
	var updated *models.Estimate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		estimate, err := s.load(tx, owner, id)
		if err != nil {
			return err
		}
		if !estimate.IsDraft {
			return ErrEstimateLocked
		}
		if err := edit(tx, estimate); err != nil {
			return err
		}

		estimate.Recalculate()
		if err := tx.Model(estimate).Select("subtotal", "tax", "amount").Updates(estimate).Error; err != nil {
			return fmt.Errorf("update totals: %w", err)
		}
		updated = estimate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Finalize turns a draft into a pending estimate and notifies the client.
func (s *EstimateService) Finalize(ctx context.Context, owner, id uuid.UUID) (*models.Estimate, error) {
	return s.transition(ctx, owner, id, models.StagePending, true)
}

// SetStatus moves the estimate through its lifecycle.
func (s *EstimateService) SetStatus(ctx context.Context, owner, id uuid.UUID, status string) (*models.Estimate, error) {
	stage, err := models.ParseStage(strings.ToUpper(strings.TrimSpace(status)))
	if err != nil {
		verr := &ValidationError{}
		verr.add("status", "Status must be one of DRAFT, PENDING, APPROVED, REJECTED")
		return nil, verr
	}
	return s.transition(ctx, owner, id, stage, false)
}

func (s *EstimateService) transition(ctx context.Context, owner, id uuid.UUID, to models.Stage, requireDraft bool) (*models.Estimate, error) {
	var (
		estimate *models.Estimate
		sent     bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		estimate, err = s.load(tx, owner, id)
		if err != nil {
			return err
		}
		from := estimate.Stage()
		if requireDraft && from != models.StageDraft {
			return fmt.Errorf("%w: %s is not a draft", models.ErrInvalidTransition, estimate.EstimateID)
		}
		if err := estimate.TransitionTo(to); err != nil {
			return err
		}
		sent = from == models.StageDraft && to == models.StagePending
		return tx.Model(estimate).Select("is_draft", "status").Updates(map[string]interface{}{
			"is_draft": estimate.IsDraft,
			"status":   estimate.Status,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("estimate status changed",
		zap.String("estimateId", estimate.EstimateID), zap.String("stage", string(estimate.Stage())))
	if sent {
		s.notify(ctx, estimate, estimate.Client)
	}
	return estimate, nil
}

// Delete removes the estimate with its line items and notification logs.
func (s *EstimateService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var estimate models.Estimate
		if err := tx.Where("user_id = ? AND id = ?", owner, id).First(&estimate).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("estimate_id = ?", estimate.ID).Delete(&models.LineItem{}).Error; err != nil {
			return fmt.Errorf("delete line items: %w", err)
		}
		if err := tx.Where("estimate_id = ?", estimate.ID).Delete(&models.NotificationLog{}).Error; err != nil {
			return fmt.Errorf("delete notification logs: %w", err)
		}
		return tx.Delete(&estimate).Error
	})
}

// ConvertToInvoice creates an invoice from an approved estimate. Converting twice
// returns the invoice created the first time, with created=false.
func (s *EstimateService) ConvertToInvoice(ctx context.Context, owner, id uuid.UUID) (*models.Invoice, bool, error) {
	var (
		invoice *models.Invoice
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		estimate, err := s.load(tx, owner, id)
		if err != nil {
			return err
		}
		if estimate.InvoiceID != nil {
			invoice, err = s.invoices.load(tx, owner, *estimate.InvoiceID)
			return err
		}
		if estimate.Stage() != models.StageApproved {
			return ErrEstimateNotApproved
		}

		lines := make([]calculator.Line, 0, len(estimate.LineItems))
		for _, l := range estimate.LineItems {
			lines = append(lines, lineOf(l))
		}
		estimateID := estimate.ID
		invoice = &models.Invoice{
			UserID:      owner,
			ClientID:    estimate.ClientID,
			EstimateID:  &estimateID,
			InvoiceDate: s.Now(),
			TaxRate:     estimate.TaxRate,
			Notes:       estimate.Notes,
		}
		if err := s.invoices.insert(tx, invoice, lines); err != nil {
			return err
		}
		if err := tx.Model(estimate).Update("invoice_id", invoice.ID).Error; err != nil {
			return fmt.Errorf("link invoice: %w", err)
		}
		invoice.Client = estimate.Client
		created = true
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent conversion won the unique estimate_id index.
		if existing, lerr := s.invoiceFor(ctx, owner, id); lerr == nil {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, err
	}
	return invoice, created, nil
}

func (s *EstimateService) invoiceFor(ctx context.Context, owner, estimateID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.WithContext(ctx).Preload("Items").Preload("Client").
		Where("user_id = ? AND estimate_id = ?", owner, estimateID).
		First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *EstimateService) notify(ctx context.Context, estimate *models.Estimate, client *models.Client) {
	if s.notifier == nil || client == nil {
		return
	}
	if err := s.notifier.NotifyEstimateSent(ctx, estimate, client); err != nil {
		s.log.Warn("estimate notification failed",
			zap.String("estimateId", estimate.EstimateID), zap.Error(err))
	}
}

func indexOfLine(items []models.LineItem, id uuid.UUID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func lineError(err error) error {
	var fe *calculator.FieldError
	if errors.As(err, &fe) {
		verr := &ValidationError{}
		verr.add(fe.Field, fe.Message)
		return verr
	}
	return err
}
