package controllers

import (
	"net/http"
	"strings"

	"jobsbreeze-backend/models"
	"jobsbreeze-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ItemInput defines the expected JSON structure for creating a catalog item
type ItemInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"omitempty,oneof=materials labor equipment other"`
	Price       float64 `json:"price" binding:"min=0"`
	Taxable     *bool   `json:"taxable"`
}

// ItemUpdate defines the expected JSON structure for updating a catalog item
type ItemUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category" binding:"omitempty,oneof=materials labor equipment other"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	Taxable     *bool    `json:"taxable"`
}

type ItemController struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// CreateItem adds a reusable entry to the catalog
func (ic *ItemController) CreateItem(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var input ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	item := models.Item{
		UserID:      owner,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Taxable:     true,
	}
	if item.Category == "" {
		item.Category = models.CategoryOther
	}
	if input.Taxable != nil {
		item.Taxable = *input.Taxable
	}

	if err := ic.DB.Create(&item).Error; err != nil {
		respondServiceError(c, ic.Log, err, "Item not found")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItems lists the catalog, optionally filtered by ?category=
func (ic *ItemController) GetItems(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	q := ic.DB.Where("user_id = ?", owner)
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var items []models.Item
	if err := q.Order("name ASC").Find(&items).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve items")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ic *ItemController) GetItem(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "item")
	if !ok {
		return
	}

	var item models.Item
	if err := ic.DB.Where("user_id = ? AND id = ?", owner, id).First(&item).Error; err != nil {
		respondServiceError(c, ic.Log, err, "Item not found")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ic *ItemController) UpdateItem(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "item")
	if !ok {
		return
	}

	var input ItemUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var item models.Item
	if err := ic.DB.Where("user_id = ? AND id = ?", owner, id).First(&item).Error; err != nil {
		respondServiceError(c, ic.Log, err, "Item not found")
		return
	}
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.Price != nil {
		item.Price = *input.Price
	}
	if input.Taxable != nil {
		item.Taxable = *input.Taxable
	}

	if err := ic.DB.Save(&item).Error; err != nil {
		respondServiceError(c, ic.Log, err, "Item not found")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes a catalog entry. Line items copied from it are unaffected.
func (ic *ItemController) DeleteItem(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "item")
	if !ok {
		return
	}

	result := ic.DB.Where("user_id = ? AND id = ?", owner, id).Delete(&models.Item{})
	if result.Error != nil {
		respondServiceError(c, ic.Log, result.Error, "Item not found")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}
