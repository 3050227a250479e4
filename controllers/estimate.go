package controllers

import (
	"net/http"

	"jobsbreeze-backend/calculator"
	"jobsbreeze-backend/services"
	"jobsbreeze-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PreviewInput struct {
	TaxRate   float64                  `json:"taxRate"`
	LineItems []services.LineItemInput `json:"lineItems"`
}

type StatusInput struct {
	Status string `json:"status" binding:"required"`
}

type EstimateController struct {
	Estimates *services.EstimateService
	Log       *zap.Logger
}

// CreateEstimate stores a new estimate, a draft unless isDraft is false
func (ec *EstimateController) CreateEstimate(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var input services.EstimateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	estimate, err := ec.Estimates.Create(c.Request.Context(), owner, input)
	if err != nil {
		respondServiceError(c, ec.Log, err, "Estimate not found")
		return
	}
	c.JSON(http.StatusCreated, estimate)
}

// PreviewEstimate returns line amounts and totals for unsaved line items
func (ec *EstimateController) PreviewEstimate(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var input PreviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	lines, totals, err := ec.Estimates.Preview(c.Request.Context(), owner, input.LineItems, input.TaxRate)
	if err != nil {
		respondServiceError(c, ec.Log, err, "Estimate not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lineItems": lines,
		"subtotal":  totals.Subtotal,
		"tax":       totals.Tax,
		"total":     totals.Total,
		"formatted": gin.H{
			"subtotal": calculator.FormatMoney(totals.Subtotal),
			"tax":      calculator.FormatMoney(totals.Tax),
			"total":    calculator.FormatMoney(totals.Total),
		},
	})
}

// GetEstimates lists estimates. Supports ?status=, ?clientId=, ?sort= and ?order=
func (ec *EstimateController) GetEstimates(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	filter := services.EstimateFilter{
		Status: c.Query("status"),
		Sort:   c.Query("sort"),
		Order:  c.Query("order"),
	}
	if raw := c.Query("clientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return
		}
		filter.ClientID = &id
	}

	estimates, err := ec.Estimates.List(c.Request.Context(), owner, filter)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve estimates")
		return
	}
	c.JSON(http.StatusOK, estimates)
}

func (ec *EstimateController) GetEstimate(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "estimate")
	if !ok {
		return
	}

	estimate, err := ec.Estimates.Get(c.Request.Context(), owner, id)
	if err != nil {
		respondServiceError(c, ec.Log, err, "Estimate not found")
		return
	}
	c.JSON(http.StatusOK, estimate)
}

func (ec *EstimateController) UpdateEstimate(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "estimate")
	if !ok {
		return
	}

	var input services.EstimateUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	estimate, err := ec.Estimates.Update(c.Request.Context(), owner, id, input)
	if err != nil {
		respondServiceError(c, ec.Log, err, "Estimate not found")
		return
	}
	c.JSON(http.StatusOK, estimate)
}

func (ec *EstimateController) DeleteEstimate(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "estimate")
	if !ok {
		return
	}

	if err := ec.Estimates.Delete(c.Request.Context(), owner, id); err != nil {
		respondServiceError(c, ec.Log, err, "Estimate not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Estimate deleted successfully"})
}

// FinalizeEstimate sends a draft to the client
func (ec *EstimateController) FinalizeEstimate(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "estimate")
	if !ok {
		return
	}

	estimate, err := ec.Estimates.Finalize(c.Request.Context(), owner, id)
	if err != nil {
		respondServiceError(c, ec.Log, err, "Estimate not found")
		return
	}
	c.JSON(http.StatusOK, estimate)
}

func (ec *EstimateController) UpdateEstimateStatus(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "estimate")
	if !ok {
		return
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	estimate, err := ec.Estimates.SetStatus(c.Request.Context(), owner, id, input.Status)
	if err != nil {
		respondServiceError(c, ec.Log, err, "Estimate not found")
		return
	}
	c.JSON(http.StatusOK, estimate)
}

// ConvertEstimate turns an approved estimate into an invoice. Repeating the call
// returns the existing invoice with 200.
func (ec *EstimateController) ConvertEstimate(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "estimate")
	if !ok {
		return
	}

	invoice, created, err := ec.Estimates.ConvertToInvoice(c.Request.Context(), owner, id)
	if err != nil {
		respondServiceError(c, ec.Log, err, "Estimate not found")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, invoice)
}

func (ec *EstimateController) AddLineItem(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "estimate")
	if !ok {
		return
	}

	var input services.LineItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	estimate, err := ec.Estimates.AddLineItem(c.Request.Context(), owner, id, input)
	if err != nil {
		respondServiceError(c, ec.Log, err, "Estimate not found")
		return
	}
	c.JSON(http.StatusCreated, estimate)
}

func (ec *EstimateController) UpdateLineItem(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "estimate")
	if !ok {
		return
	}
	lineID, ok := paramID(c, "lineId", "line item")
	if !ok {
		return
	}

	var input services.LineItemPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	estimate, err := ec.Estimates.UpdateLineItem(c.Request.Context(), owner, id, lineID, input)
	if err != nil {
		respondServiceError(c, ec.Log, err, "Estimate or line item not found")
		return
	}
	c.JSON(http.StatusOK, estimate)
}

func (ec *EstimateController) RemoveLineItem(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "estimate")
	if !ok {
		return
	}
	lineID, ok := paramID(c, "lineId", "line item")
	if !ok {
		return
	}

	estimate, err := ec.Estimates.RemoveLineItem(c.Request.Context(), owner, id, lineID)
	if err != nil {
		respondServiceError(c, ec.Log, err, "Estimate or line item not found")
		return
	}
	c.JSON(http.StatusOK, estimate)
}
