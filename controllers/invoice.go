package controllers

import (
	"net/http"

	"jobsbreeze-backend/services"
	"jobsbreeze-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentInput records money received against an invoice
type PaymentInput struct {
	Amount        float64 `json:"amount" binding:"required"`
	PaymentMethod string  `json:"paymentMethod"`
}

type InvoiceController struct {
	Invoices *services.InvoiceService
	Log      *zap.Logger
}

// CreateInvoice creates a standalone invoice, not backed by an estimate
func (ic *InvoiceController) CreateInvoice(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var input services.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, err := ic.Invoices.Create(c.Request.Context(), owner, input)
	if err != nil {
		respondServiceError(c, ic.Log, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// GetInvoices lists invoices. Supports ?paymentStatus= and ?clientId=
func (ic *InvoiceController) GetInvoices(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	filter := services.InvoiceFilter{PaymentStatus: c.Query("paymentStatus")}
	if raw := c.Query("clientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return
		}
		filter.ClientID = &id
	}

	invoices, err := ic.Invoices.List(c.Request.Context(), owner, filter)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := ic.Invoices.Get(c.Request.Context(), owner, id)
	if err != nil {
		respondServiceError(c, ic.Log, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (ic *InvoiceController) UpdateInvoice(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	var input services.InvoiceUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, err := ic.Invoices.Update(c.Request.Context(), owner, id, input)
	if err != nil {
		respondServiceError(c, ic.Log, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// RecordPayment adds a payment and returns the invoice with its new payment status
func (ic *InvoiceController) RecordPayment(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, err := ic.Invoices.RecordPayment(c.Request.Context(), owner, id, input.Amount, input.PaymentMethod)
	if err != nil {
		respondServiceError(c, ic.Log, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (ic *InvoiceController) DeleteInvoice(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	if err := ic.Invoices.Delete(c.Request.Context(), owner, id); err != nil {
		respondServiceError(c, ic.Log, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}
