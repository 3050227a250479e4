package controllers

import (
	"errors"
	"net/http"
	"strings"

	"jobsbreeze-backend/models"
	"jobsbreeze-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClientInput defines the expected JSON structure for creating a client
type ClientInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// ClientUpdate defines the expected JSON structure for updating a client
type ClientUpdate struct {
	Name    *string `json:"name"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type ClientController struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// CreateClient adds a client to the contractor's address book
func (cc *ClientController) CreateClient(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var input ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	client := models.Client{
		UserID:  owner,
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:   input.Phone,
		Address: input.Address,
		Notes:   input.Notes,
	}
	if err := cc.DB.Create(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Client with this email already exists")
			return
		}
		respondServiceError(c, cc.Log, err, "Client not found")
		return
	}

	c.JSON(http.StatusCreated, client)
}

// GetClients lists clients, optionally filtered by ?search= on name or email
func (cc *ClientController) GetClients(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	q := cc.DB.Where("user_id = ?", owner)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var clients []models.Client
	if err := q.Order("name ASC").Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetClient returns one client with its estimates
func (cc *ClientController) GetClient(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "client")
	if !ok {
		return
	}

	var client models.Client
	err := cc.DB.Preload("Estimates", func(db *gorm.DB) *gorm.DB { return db.Order("date DESC") }).
		Where("user_id = ? AND id = ?", owner, id).First(&client).Error
	if err != nil {
		respondServiceError(c, cc.Log, err, "Client not found")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (cc *ClientController) UpdateClient(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "client")
	if !ok {
		return
	}

	var input ClientUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var client models.Client
	if err := cc.DB.Where("user_id = ? AND id = ?", owner, id).First(&client).Error; err != nil {
		respondServiceError(c, cc.Log, err, "Client not found")
		return
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			utils.RespondWithFieldErrors(c, http.StatusBadRequest, map[string]string{"name": "Name is required"})
			return
		}
		client.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		client.Phone = *input.Phone
	}
	if input.Address != nil {
		client.Address = *input.Address
	}
	if input.Notes != nil {
		client.Notes = *input.Notes
	}

	if err := cc.DB.Save(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Client with this email already exists")
			return
		}
		respondServiceError(c, cc.Log, err, "Client not found")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient removes the client together with its estimates, invoices and
// notification history.
func (cc *ClientController) DeleteClient(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "client")
	if !ok {
		return
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.Where("user_id = ? AND id = ?", owner, id).First(&client).Error; err != nil {
			return err
		}
		estimates := tx.Model(&models.Estimate{}).Select("id").Where("client_id = ?", client.ID)
		invoices := tx.Model(&models.Invoice{}).Select("id").Where("client_id = ?", client.ID)

		steps := []struct {
			model interface{}
			query string
			arg   interface{}
		}{
			{&models.LineItem{}, "estimate_id IN (?)", estimates},
			{&models.InvoiceItem{}, "invoice_id IN (?)", invoices},
			{&models.NotificationLog{}, "client_id = ?", client.ID},
			{&models.Estimate{}, "client_id = ?", client.ID},
			{&models.Invoice{}, "client_id = ?", client.ID},
		}
		for _, s := range steps {
			if err := tx.Where(s.query, s.arg).Delete(s.model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&client).Error
	})
	if err != nil {
		respondServiceError(c, cc.Log, err, "Client not found")
		return
	}

	cc.Log.Info("client deleted", zap.String("clientId", id.String()))
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
