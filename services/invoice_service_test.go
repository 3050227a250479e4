package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jobsbreeze-backend/calculator"
	"jobsbreeze-backend/models"
)

func TestCreateInvoice(t *testing.T) {
	db := newTestDB(t)
	f := seedOwner(t, db, "")
	svc := NewInvoiceService(db, nil)
	svc.Now = func() time.Time { return time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC) }

	invoice, err := svc.Create(context.Background(), f.owner, InvoiceInput{
		ClientID: f.client.ID,
		Items:    standardLines(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(invoice.InvoiceNumber, "INV-20240502-") || len(invoice.InvoiceNumber) != len("INV-20240502-")+6 {
		t.Errorf("invoice number = %q", invoice.InvoiceNumber)
	}
	if invoice.Subtotal != 125 || invoice.Total != invoice.Subtotal+invoice.Tax || invoice.TaxRate != 10 {
		t.Errorf("totals = %v/%v/%v at %v%%", invoice.Subtotal, invoice.Tax, invoice.Total, invoice.TaxRate)
	}
	if invoice.PaymentStatus != calculator.PaymentUnpaid {
		t.Errorf("payment status = %s", invoice.PaymentStatus)
	}

	stored, err := svc.Get(context.Background(), f.owner, invoice.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Items) != 2 || stored.Client == nil {
		t.Errorf("stored invoice missing items or client: %+v", stored)
	}
}

func TestCreateInvoiceRejectsBadLines(t *testing.T) {
	db := newTestDB(t)
	f := seedOwner(t, db, "")
	svc := NewInvoiceService(db, nil)

	_, err := svc.Create(context.Background(), f.owner, InvoiceInput{
		ClientID: f.client.ID,
		Items:    []LineItemInput{{Description: "Tile", Quantity: -2, UnitPrice: price(5)}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["lineItems[0].quantity"] == "" {
		t.Fatalf("expected quantity error, got %v", err)
	}
}

func TestRecordPayment(t *testing.T) {
	db := newTestDB(t)
	f := seedOwner(t, db, "")
	svc := NewInvoiceService(db, nil)
	ctx := context.Background()
	zero := 0.0

	invoice, err := svc.Create(ctx, f.owner, InvoiceInput{ClientID: f.client.ID, TaxRate: &zero, Items: standardLines()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	partial, err := svc.RecordPayment(ctx, f.owner, invoice.ID, 100, "check")
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if partial.PaymentStatus != calculator.PaymentPartial || partial.PaidAmount != 100 {
		t.Errorf("after 100: %s / %v", partial.PaymentStatus, partial.PaidAmount)
	}

	paid, err := svc.RecordPayment(ctx, f.owner, invoice.ID, 25, "")
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if paid.PaymentStatus != calculator.PaymentPaid || paid.PaymentMethod != "check" {
		t.Errorf("after 125: %s via %q", paid.PaymentStatus, paid.PaymentMethod)
	}

	var verr *ValidationError
	if _, err := svc.RecordPayment(ctx, f.owner, invoice.ID, 0, "cash"); !errors.As(err, &verr) {
		t.Errorf("zero payment: expected ValidationError, got %v", err)
	}
}

func TestUpdateInvoiceItems(t *testing.T) {
	db := newTestDB(t)
	f := seedOwner(t, db, "")
	svc := NewInvoiceService(db, nil)
	ctx := context.Background()
	zero := 0.0

	invoice, err := svc.Create(ctx, f.owner, InvoiceInput{ClientID: f.client.ID, TaxRate: &zero, Items: standardLines(), PaidAmount: 50})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	items := []LineItemInput{{Description: "Cleanup", Quantity: 1, UnitPrice: price(50)}}
	updated, err := svc.Update(ctx, f.owner, invoice.ID, InvoiceUpdate{Items: &items})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Total != 50 || updated.PaymentStatus != calculator.PaymentPaid {
		t.Errorf("after update: total %v status %s", updated.Total, updated.PaymentStatus)
	}
}

func TestDeleteInvoiceUnlinksEstimate(t *testing.T) {
	db := newTestDB(t)
	f := seedOwner(t, db, "")
	invoices := NewInvoiceService(db, nil)
	estimates := NewEstimateService(db, invoices, nil, nil)
	ctx := context.Background()
	sent := false

	est, err := estimates.Create(ctx, f.owner, EstimateInput{ClientID: f.client.ID, IsDraft: &sent, LineItems: standardLines()})
	if err != nil {
		t.Fatalf("create estimate: %v", err)
	}
	if _, err := estimates.SetStatus(ctx, f.owner, est.ID, "APPROVED"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	invoice, _, err := estimates.ConvertToInvoice(ctx, f.owner, est.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if err := invoices.Delete(ctx, f.owner, invoice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	reloaded, err := estimates.Get(ctx, f.owner, est.ID)
	if err != nil {
		t.Fatalf("get estimate: %v", err)
	}
	if reloaded.InvoiceID != nil {
		t.Errorf("estimate still linked to deleted invoice")
	}
	var items int64
	db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", invoice.ID).Count(&items)
	if items != 0 {
		t.Errorf("%d orphaned invoice items", items)
	}

	again, created, err := estimates.ConvertToInvoice(ctx, f.owner, est.ID)
	if err != nil || !created || again.ID == invoice.ID {
		t.Errorf("reconvert after delete: created=%v err=%v", created, err)
	}
}
